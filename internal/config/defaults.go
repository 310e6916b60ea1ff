package config

const (
	defaultConfigPath    = "~/.config/mediato115/config.toml"
	defaultStateDir      = "~/.local/share/mediato115"
	defaultLogDir        = "~/.local/share/mediato115/logs"
	defaultIndexBackend  = IndexBackendSQLite
	defaultIndexDBPath   = "~/.local/share/mediato115/media.db"
	defaultIndexTable    = "mediaserver_item"
	defaultQueuePath     = "~/.local/share/mediato115/transfers.db"
	defaultTargetStorage = "u115"
	defaultLogFormat     = "console"
	defaultLogLevel      = "info"
	defaultNotifyTimeout = 10
	defaultTelegramPoll  = 30
)

// Index backends understood by mediaindex.Open.
const (
	IndexBackendSQLite   = "sqlite"
	IndexBackendJellyfin = "jellyfin"
	IndexBackendPlex     = "plex"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Plugin: Plugin{
			Enabled:       false,
			AllowedPaths:  "",
			TargetStorage: defaultTargetStorage,
		},
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Index: Index{
			Backend: defaultIndexBackend,
			DBPath:  defaultIndexDBPath,
			Table:   defaultIndexTable,
		},
		Transfer: Transfer{
			QueuePath: defaultQueuePath,
			Targets:   []string{defaultTargetStorage},
		},
		Telegram: Telegram{
			PollTimeout: defaultTelegramPoll,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
