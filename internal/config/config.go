package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Plugin contains the command handler settings.
type Plugin struct {
	Enabled bool `toml:"enabled"`
	// AllowedPaths is a newline-delimited list of local path prefixes that may
	// be uploaded. An empty list disables uploads entirely.
	AllowedPaths  string `toml:"allowed_paths"`
	TargetStorage string `toml:"target_storage"`
}

// Paths contains directory configuration.
type Paths struct {
	StateDir string `toml:"state_dir"`
	LogDir   string `toml:"log_dir"`
}

// Index selects and configures the media index backend.
type Index struct {
	Backend string `toml:"backend"`
	DBPath  string `toml:"db_path"`
	Table   string `toml:"table"`
}

// Jellyfin contains configuration for the Jellyfin index backend.
type Jellyfin struct {
	URL    string `toml:"url"`
	APIKey string `toml:"api_key"`
	UserID string `toml:"user_id"`
}

// Plex contains configuration for the Plex index backend.
type Plex struct {
	URL   string `toml:"url"`
	Token string `toml:"token"`
}

// Transfer contains configuration for the transfer handoff queue.
type Transfer struct {
	QueuePath string   `toml:"queue_path"`
	Targets   []string `toml:"targets"`
}

// Discord contains configuration for the Discord channel.
type Discord struct {
	Enabled   bool     `toml:"enabled"`
	Token     string   `toml:"token"`
	GuildID   string   `toml:"guild_id"`
	AllowFrom []string `toml:"allow_from"`
}

// Telegram contains configuration for the Telegram channel.
type Telegram struct {
	Enabled     bool     `toml:"enabled"`
	Token       string   `toml:"token"`
	AllowFrom   []string `toml:"allow_from"`
	PollTimeout int      `toml:"poll_timeout"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for mediato115.
//
// Configuration sections by subsystem:
//   - Plugin: enabled flag, upload allow-list and cloud storage target
//   - Paths: state and log directories
//   - Index: media index backend (sqlite, jellyfin, plex)
//   - Jellyfin / Plex: media server credentials for the HTTP backends
//   - Transfer: handoff queue database and accepted storage targets
//   - Discord / Telegram: chat channels
//   - Notifications: ntfy fallback channel
//   - Logging: log format and level
type Config struct {
	Plugin        Plugin        `toml:"plugin"`
	Paths         Paths         `toml:"paths"`
	Index         Index         `toml:"index"`
	Jellyfin      Jellyfin      `toml:"jellyfin"`
	Plex          Plex          `toml:"plex"`
	Transfer      Transfer      `toml:"transfer"`
	Discord       Discord       `toml:"discord"`
	Telegram      Telegram      `toml:"telegram"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()
	// Left empty so MEDIATO_TARGET_STORAGE can fill it; normalize restores the default.
	cfg.Plugin.TargetStorage = ""
	cfg.Transfer.Targets = nil

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(filepath.Dir(resolvedPath)); err != nil {
		return nil, "", false, err
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("mediato115.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the state and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// AllowedPaths returns the normalized allow-list: entries are trimmed and
// blank lines dropped. Order is preserved.
func (c *Config) AllowedPaths() []string {
	return SplitAllowedPaths(c.Plugin.AllowedPaths)
}

// SplitAllowedPaths normalizes a newline-delimited allow-list.
func SplitAllowedPaths(raw string) []string {
	var paths []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		paths = append(paths, line)
	}
	return paths
}

// LockPath returns the path of the bot's single-instance lock file.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "mediato115.lock")
}

// LogPath returns the path of the log file written by every command.
func (c *Config) LogPath() string {
	return filepath.Join(c.Paths.LogDir, "mediato115.log")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
