package channels

import (
	"log/slog"

	"mediato115/internal/config"
)

// FromConfig builds the chat channels enabled in cfg.
func FromConfig(cfg *config.Config, logger *slog.Logger) ([]Channel, error) {
	var out []Channel
	if cfg.Discord.Enabled {
		d, err := NewDiscord(cfg.Discord, logger)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if cfg.Telegram.Enabled {
		t, err := NewTelegram(cfg.Telegram, logger)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}
