package testsupport

import (
	"context"
	"testing"

	"mediato115/internal/config"
	"mediato115/internal/mediaindex"
	"mediato115/internal/queue"
)

// MustOpenQueue opens a queue.Store for tests and registers cleanup.
func MustOpenQueue(t testing.TB, cfg *config.Config) *queue.Store {
	t.Helper()
	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

// MustOpenIndex opens the SQLite media index for tests, seeds it with records,
// and registers cleanup.
func MustOpenIndex(t testing.TB, cfg *config.Config, records ...mediaindex.ImportRecord) *mediaindex.Store {
	t.Helper()
	store, err := mediaindex.OpenSQLite(cfg.Index.DBPath, cfg.Index.Table)
	if err != nil {
		t.Fatalf("mediaindex.OpenSQLite: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	for _, rec := range records {
		if err := store.Upsert(context.Background(), rec); err != nil {
			t.Fatalf("seed %s: %v", rec.ItemID, err)
		}
	}
	return store
}
