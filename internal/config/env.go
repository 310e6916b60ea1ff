package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// envOverrides lists the environment variables that back-fill empty config
// values. Secrets usually live here rather than in config.toml.
type envOverrides struct {
	AllowedPaths   string `env:"MEDIATO_ALLOWED_PATHS"`
	TargetStorage  string `env:"MEDIATO_TARGET_STORAGE"`
	DiscordToken   string `env:"MEDIATO_DISCORD_TOKEN"`
	TelegramToken  string `env:"MEDIATO_TELEGRAM_TOKEN"`
	JellyfinAPIKey string `env:"JELLYFIN_API_KEY"`
	PlexToken      string `env:"PLEX_TOKEN"`
	NtfyTopic      string `env:"MEDIATO_NTFY_TOPIC"`
}

// applyEnv loads .env files (config directory first, then the working
// directory) and fills empty fields from the environment. Variables already
// present in the process environment win over .env contents.
func (c *Config) applyEnv(configDir string) error {
	if configDir != "" {
		_ = godotenv.Load(filepath.Join(configDir, ".env"))
	}
	_ = godotenv.Load()

	var overrides envOverrides
	if err := env.Parse(&overrides); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}

	fill := func(target *string, value string) {
		if strings.TrimSpace(*target) == "" {
			*target = value
		}
	}
	fill(&c.Plugin.AllowedPaths, overrides.AllowedPaths)
	fill(&c.Plugin.TargetStorage, overrides.TargetStorage)
	fill(&c.Discord.Token, overrides.DiscordToken)
	fill(&c.Telegram.Token, overrides.TelegramToken)
	fill(&c.Jellyfin.APIKey, overrides.JellyfinAPIKey)
	fill(&c.Plex.Token, overrides.PlexToken)
	fill(&c.Notifications.NtfyTopic, overrides.NtfyTopic)
	return nil
}
