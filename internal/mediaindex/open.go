package mediaindex

import (
	"fmt"
	"net/http"
	"time"

	"mediato115/internal/config"
	"mediato115/internal/services"
	"mediato115/internal/services/jellyfin"
	"mediato115/internal/services/plex"
)

// Open returns the backend selected by cfg.Index.Backend.
func Open(cfg *config.Config) (Backend, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "mediaindex", "open", "config is nil", nil)
	}
	httpClient := &http.Client{Timeout: 15 * time.Second}
	switch cfg.Index.Backend {
	case config.IndexBackendSQLite, "":
		return openSQLiteFromConfig(cfg)
	case config.IndexBackendJellyfin:
		return NewJellyfinIndex(jellyfin.NewClient(cfg.Jellyfin.URL, cfg.Jellyfin.APIKey, cfg.Jellyfin.UserID, httpClient)), nil
	case config.IndexBackendPlex:
		return NewPlexIndex(plex.NewClient(cfg.Plex.URL, cfg.Plex.Token, httpClient)), nil
	default:
		return nil, services.Wrap(services.ErrConfiguration, "mediaindex", "open",
			fmt.Sprintf("unsupported backend %q", cfg.Index.Backend), nil)
	}
}
