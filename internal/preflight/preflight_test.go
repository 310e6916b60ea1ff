package preflight

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mediato115/internal/config"
	"mediato115/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if !strings.Contains(result.Detail, "does not exist") {
		t.Fatalf("unexpected detail %q", result.Detail)
	}
}

func TestCheckAllowedRoot_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckAllowedRoot("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
	if ok := CheckAllowedRoot("test", filepath.Dir(f)); !ok.Passed {
		t.Fatalf("expected pass for directory, got %s", ok.Detail)
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	if results := RunAll(context.Background(), nil); results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_SQLiteBackend(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithMediaRoot())
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}

	results := RunAll(context.Background(), cfg)
	// state dir + one allowed root + index + queue
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d: %+v", len(results), results)
	}
	if failed := Failed(results); len(failed) != 0 {
		t.Fatalf("unexpected failures: %+v", failed)
	}
}

func TestRunAll_ReportsEmptyAllowList(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithAllowedPaths())
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	failed := Failed(RunAll(context.Background(), cfg))
	if len(failed) != 1 || failed[0].Name != "Allowed paths" {
		t.Fatalf("expected only the allow-list check to fail, got %+v", failed)
	}
}

func TestCheckIndex_JellyfinAuthFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	cfg := testsupport.NewConfig(t)
	cfg.Index.Backend = config.IndexBackendJellyfin
	cfg.Jellyfin.URL = srv.URL
	cfg.Jellyfin.APIKey = "bad-key"

	result := CheckIndex(context.Background(), cfg)
	if result.Passed {
		t.Fatal("expected failure for rejected api key")
	}
	if !strings.Contains(result.Name, "jellyfin") {
		t.Fatalf("unexpected name %q", result.Name)
	}
}

func TestCheckIndex_PlexReachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		_, _ = w.Write([]byte(`<MediaContainer machineIdentifier="abc" version="1.40.0"/>`))
	}))
	defer srv.Close()

	cfg := testsupport.NewConfig(t)
	cfg.Index.Backend = config.IndexBackendPlex
	cfg.Plex.URL = srv.URL
	cfg.Plex.Token = "token"

	if result := CheckIndex(context.Background(), cfg); !result.Passed {
		t.Fatalf("expected pass, got %s", result.Detail)
	}
}
