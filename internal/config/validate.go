package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate ensures the configuration is usable.
//
// An empty allow-list is deliberately not a validation error: the bot still
// starts and reports the misconfiguration to the user who runs the command.
func (c *Config) Validate() error {
	if err := c.validatePlugin(); err != nil {
		return err
	}
	if err := c.validateIndex(); err != nil {
		return err
	}
	if err := c.validateChannels(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePlugin() error {
	for _, prefix := range c.AllowedPaths() {
		if !filepath.IsAbs(prefix) {
			return fmt.Errorf("plugin.allowed_paths entry %q must be an absolute path", prefix)
		}
	}
	if c.Plugin.TargetStorage == "" {
		return errors.New("plugin.target_storage must be set")
	}
	return nil
}

func (c *Config) validateIndex() error {
	switch c.Index.Backend {
	case IndexBackendSQLite:
		if c.Index.DBPath == "" {
			return errors.New("index.db_path must be set when index.backend is sqlite")
		}
		if !tableNamePattern.MatchString(c.Index.Table) {
			return fmt.Errorf("index.table %q is not a valid table name", c.Index.Table)
		}
	case IndexBackendJellyfin:
		if c.Jellyfin.URL == "" {
			return errors.New("jellyfin.url must be set when index.backend is jellyfin")
		}
		if c.Jellyfin.APIKey == "" {
			return errors.New("jellyfin.api_key must be set when index.backend is jellyfin (or set JELLYFIN_API_KEY)")
		}
	case IndexBackendPlex:
		if c.Plex.URL == "" {
			return errors.New("plex.url must be set when index.backend is plex")
		}
		if c.Plex.Token == "" {
			return errors.New("plex.token must be set when index.backend is plex (or set PLEX_TOKEN)")
		}
	default:
		return fmt.Errorf("index.backend: unsupported value %q (want sqlite, jellyfin or plex)", c.Index.Backend)
	}
	return nil
}

func (c *Config) validateChannels() error {
	if c.Discord.Enabled && c.Discord.Token == "" {
		return errors.New("discord.token must be set when discord.enabled is true (or set MEDIATO_DISCORD_TOKEN)")
	}
	if c.Telegram.Enabled && c.Telegram.Token == "" {
		return errors.New("telegram.token must be set when telegram.enabled is true (or set MEDIATO_TELEGRAM_TOKEN)")
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive")
	}
	return nil
}
