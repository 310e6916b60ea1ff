package testsupport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mediato115/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The plugin is enabled and every path lives under one temp root.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Plugin.Enabled = true
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Index.DBPath = filepath.Join(base, "state", "media.db")
	cfgVal.Transfer.QueuePath = filepath.Join(base, "state", "transfers.db")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithAllowedPaths sets the newline-delimited upload allow-list.
func WithAllowedPaths(paths ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Plugin.AllowedPaths = strings.Join(paths, "\n")
	}
}

// WithMediaRoot creates a "media" directory under the temp root and allows it.
func WithMediaRoot() ConfigOption {
	return func(b *configBuilder) {
		root := filepath.Join(b.baseDir, "media")
		if err := os.MkdirAll(root, 0o755); err != nil {
			b.t.Fatalf("create media root: %v", err)
		}
		b.cfg.Plugin.AllowedPaths = root
	}
}

// WithDisabledPlugin turns the enabled flag off.
func WithDisabledPlugin() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Plugin.Enabled = false
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}

// MediaRoot returns the media directory created by WithMediaRoot.
func MediaRoot(cfg *config.Config) string {
	return filepath.Join(BaseDir(cfg), "media")
}
