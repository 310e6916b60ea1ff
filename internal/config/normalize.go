package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizePlugin()
	if err := c.normalizeIndex(); err != nil {
		return err
	}
	if err := c.normalizeTransfer(); err != nil {
		return err
	}
	c.normalizeServers()
	c.normalizeChannels()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

// normalizePlugin trims the target storage but leaves allowed_paths as written;
// the handler normalizes the allow-list on every upload.
func (c *Config) normalizePlugin() {
	c.Plugin.TargetStorage = strings.TrimSpace(c.Plugin.TargetStorage)
	if c.Plugin.TargetStorage == "" {
		c.Plugin.TargetStorage = defaultTargetStorage
	}
}

func (c *Config) normalizeIndex() error {
	c.Index.Backend = strings.ToLower(strings.TrimSpace(c.Index.Backend))
	if c.Index.Backend == "" {
		c.Index.Backend = defaultIndexBackend
	}
	if strings.TrimSpace(c.Index.DBPath) == "" {
		c.Index.DBPath = defaultIndexDBPath
	}
	var err error
	if c.Index.DBPath, err = expandPath(c.Index.DBPath); err != nil {
		return fmt.Errorf("index.db_path: %w", err)
	}
	c.Index.Table = strings.TrimSpace(c.Index.Table)
	if c.Index.Table == "" {
		c.Index.Table = defaultIndexTable
	}
	return nil
}

func (c *Config) normalizeTransfer() error {
	if strings.TrimSpace(c.Transfer.QueuePath) == "" {
		c.Transfer.QueuePath = defaultQueuePath
	}
	var err error
	if c.Transfer.QueuePath, err = expandPath(c.Transfer.QueuePath); err != nil {
		return fmt.Errorf("transfer.queue_path: %w", err)
	}
	targets := make([]string, 0, len(c.Transfer.Targets)+1)
	seen := make(map[string]struct{}, len(c.Transfer.Targets)+1)
	for _, target := range append(c.Transfer.Targets, c.Plugin.TargetStorage) {
		normalized := strings.TrimSpace(target)
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		targets = append(targets, normalized)
	}
	c.Transfer.Targets = targets
	return nil
}

func (c *Config) normalizeServers() {
	c.Jellyfin.URL = strings.TrimRight(strings.TrimSpace(c.Jellyfin.URL), "/")
	c.Jellyfin.APIKey = strings.TrimSpace(c.Jellyfin.APIKey)
	c.Jellyfin.UserID = strings.TrimSpace(c.Jellyfin.UserID)
	c.Plex.URL = strings.TrimRight(strings.TrimSpace(c.Plex.URL), "/")
	c.Plex.Token = strings.TrimSpace(c.Plex.Token)
}

func (c *Config) normalizeChannels() {
	c.Discord.Token = strings.TrimSpace(c.Discord.Token)
	c.Discord.GuildID = strings.TrimSpace(c.Discord.GuildID)
	c.Discord.AllowFrom = trimList(c.Discord.AllowFrom)
	c.Telegram.Token = strings.TrimSpace(c.Telegram.Token)
	c.Telegram.AllowFrom = trimList(c.Telegram.AllowFrom)
	if c.Telegram.PollTimeout <= 0 {
		c.Telegram.PollTimeout = defaultTelegramPoll
	}
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func trimList(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
