package plugin

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"mediato115/internal/bus"
	"mediato115/internal/logging"
	"mediato115/internal/mediaindex"
	"mediato115/internal/transfer"
)

type fakeIndex struct {
	entries  []mediaindex.Entry
	err      error
	searches []string
	lookups  []string
}

func (f *fakeIndex) SearchTitle(_ context.Context, query string) ([]mediaindex.Entry, error) {
	f.searches = append(f.searches, query)
	if f.err != nil {
		return nil, f.err
	}
	var out []mediaindex.Entry
	for _, e := range f.entries {
		if strings.Contains(strings.ToLower(e.Title), strings.ToLower(query)) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeIndex) LookupID(_ context.Context, id string) ([]mediaindex.Entry, error) {
	f.lookups = append(f.lookups, id)
	if f.err != nil {
		return nil, f.err
	}
	var out []mediaindex.Entry
	for _, e := range f.entries {
		if e.ID == id {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeTransfer struct {
	result   transfer.Result
	requests []transfer.Request
}

func (f *fakeTransfer) Submit(_ context.Context, req transfer.Request) transfer.Result {
	f.requests = append(f.requests, req)
	return f.result
}

type captureNotifier struct {
	mu   sync.Mutex
	sent []bus.Notification
}

func (c *captureNotifier) Post(_ context.Context, n bus.Notification) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, n)
	return nil
}

func (c *captureNotifier) last(t *testing.T) bus.Notification {
	t.Helper()
	if len(c.sent) == 0 {
		t.Fatal("expected a notification")
	}
	return c.sent[len(c.sent)-1]
}

type fixture struct {
	handler  *Handler
	index    *fakeIndex
	transfer *fakeTransfer
	notifier *captureNotifier
}

func newFixture(t *testing.T, settings Settings, entries ...mediaindex.Entry) *fixture {
	t.Helper()
	f := &fixture{
		index:    &fakeIndex{entries: entries},
		transfer: &fakeTransfer{result: transfer.Result{Accepted: true, TaskID: 1}},
		notifier: &captureNotifier{},
	}
	f.handler = NewHandler(settings, f.index, f.transfer, f.notifier, logging.NewNop())
	f.handler.exists = func(string) (bool, error) { return true, nil }
	return f
}

func defaultSettings() Settings {
	return Settings{Enabled: true, AllowedPaths: "/data/movies\n/data/tv", TargetStorage: "u115"}
}

var (
	inception = mediaindex.Entry{ID: "m1", Title: "Inception", Type: mediaindex.MediaTypeMovie, TypeLabel: "电影", Path: "/data/movies/Inception/Inception.mkv"}
	dark      = mediaindex.Entry{ID: "t1", Title: "Dark", Type: mediaindex.MediaTypeSeries, TypeLabel: "电视剧", Path: "/data/tv/Dark"}
)

func command(args string) bus.CommandEvent {
	return bus.CommandEvent{Action: CommandAction, Channel: "telegram", ChatID: "100", UserID: "7", Args: args}
}

func callback(plugin, data string) bus.CallbackEvent {
	return bus.CallbackEvent{PluginID: plugin, Channel: "telegram", ChatID: "100", UserID: "7", Data: data}
}

func TestSingleMatchQueuesUpload(t *testing.T) {
	f := newFixture(t, defaultSettings(), inception)
	if err := f.handler.Dispatch(context.Background(), command("Inception")); err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}

	if len(f.transfer.requests) != 1 {
		t.Fatalf("expected one transfer request, got %d", len(f.transfer.requests))
	}
	req := f.transfer.requests[0]
	if req.SourcePath != "/data/movies/Inception" || req.SourceKind != transfer.SourceKindDir ||
		req.Name != "Inception" || req.TargetStorage != "u115" || !req.Background {
		t.Fatalf("unexpected request: %+v", req)
	}
	if len(f.notifier.sent) != 1 {
		t.Fatalf("expected only the queued notification, got %+v", f.notifier.sent)
	}
	n := f.notifier.last(t)
	if !strings.Contains(n.Title, "Upload queued") || !strings.Contains(n.Title, "Inception") || n.HasButtons() {
		t.Fatalf("unexpected notification: %+v", n)
	}
	if n.Channel != "telegram" || n.ChatID != "100" || n.UserID != "7" {
		t.Fatalf("notification not addressed to origin: %+v", n)
	}
}

func TestTransferRejectionReportsMessage(t *testing.T) {
	f := newFixture(t, defaultSettings(), inception)
	f.transfer.result = transfer.Result{Accepted: false, Message: "disk full"}

	f.handler.HandleCommand(context.Background(), command("Inception"))
	n := f.notifier.last(t)
	if !strings.Contains(n.Title, "disk full") || !strings.HasPrefix(n.Title, "Transfer failed") {
		t.Fatalf("expected failure with cause, got %+v", n)
	}
}

func TestMultipleMatchesShowMenu(t *testing.T) {
	var entries []mediaindex.Entry
	for i := 1; i <= 6; i++ {
		entries = append(entries, mediaindex.Entry{
			ID:        fmt.Sprintf("id-%d", i),
			Title:     fmt.Sprintf("Dune %d", i),
			Type:      mediaindex.MediaTypeMovie,
			TypeLabel: "电影",
			Path:      fmt.Sprintf("/data/movies/Dune %d/d.mkv", i),
		})
	}
	for _, n := range []int{2, 4, 6} {
		t.Run(fmt.Sprintf("%d matches", n), func(t *testing.T) {
			f := newFixture(t, defaultSettings(), entries[:n]...)
			f.handler.HandleCommand(context.Background(), command("dune"))

			if len(f.transfer.requests) != 0 {
				t.Fatal("menu must not trigger an upload")
			}
			menu := f.notifier.last(t)
			if menu.Title != menuTitle {
				t.Fatalf("unexpected menu title %q", menu.Title)
			}
			want := min(n, MaxMenuOptions)
			if len(menu.Buttons) != 1 || len(menu.Buttons[0]) != want {
				t.Fatalf("expected %d buttons in one row, got %+v", want, menu.Buttons)
			}
			seen := map[string]bool{}
			for i, button := range menu.Buttons[0] {
				if button.Label != fmt.Sprint(i+1) {
					t.Fatalf("button %d labelled %q", i, button.Label)
				}
				wantPayload := fmt.Sprintf("[PLUGIN]MediaTo115|id-%d", i+1)
				if button.Payload != wantPayload {
					t.Fatalf("button %d payload %q, want %q", i, button.Payload, wantPayload)
				}
				if seen[button.Payload] {
					t.Fatalf("duplicate payload %q", button.Payload)
				}
				seen[button.Payload] = true
			}
			lines := strings.Split(strings.TrimRight(menu.Text, "\n"), "\n")
			if len(lines) != want || lines[0] != "1. Dune 1|电影" {
				t.Fatalf("unexpected menu text %q", menu.Text)
			}
		})
	}
}

func TestUsageErrors(t *testing.T) {
	for _, args := range []string{"", "   ", "Dune Part Two", "a\tb", "x\ny"} {
		f := newFixture(t, defaultSettings(), inception)
		f.handler.HandleCommand(context.Background(), command(args))
		if len(f.index.searches) != 0 {
			t.Fatalf("args %q: expected no query, got %v", args, f.index.searches)
		}
		if n := f.notifier.last(t); !strings.HasPrefix(n.Title, "Usage error") {
			t.Fatalf("args %q: expected usage error, got %+v", args, n)
		}
	}
}

func TestSurroundingWhitespaceIsOneToken(t *testing.T) {
	f := newFixture(t, defaultSettings(), inception)
	f.handler.HandleCommand(context.Background(), command("  Inception  "))
	if len(f.index.searches) != 1 || f.index.searches[0] != "Inception" {
		t.Fatalf("expected trimmed query, got %v", f.index.searches)
	}
}

func TestEmptyAllowListIsConfigurationError(t *testing.T) {
	for _, raw := range []string{"", "\n  \n\t\n"} {
		settings := defaultSettings()
		settings.AllowedPaths = raw
		f := newFixture(t, settings, inception)

		f.handler.HandleCommand(context.Background(), command("Inception"))
		if n := f.notifier.last(t); !strings.HasPrefix(n.Title, "Configuration error") {
			t.Fatalf("allow-list %q: expected configuration error, got %+v", raw, n)
		}
		if len(f.index.searches) != 0 || len(f.transfer.requests) != 0 {
			t.Fatalf("allow-list %q: expected no query or transfer", raw)
		}

		f.handler.HandleCallback(context.Background(), callback(PluginID, "m1"))
		if n := f.notifier.last(t); !strings.HasPrefix(n.Title, "Configuration error") {
			t.Fatalf("allow-list %q: expected configuration error on callback, got %+v", raw, n)
		}
		if len(f.transfer.requests) != 0 {
			t.Fatal("expected no transfer")
		}
	}
}

func TestNotFound(t *testing.T) {
	f := newFixture(t, defaultSettings(), inception)
	f.handler.HandleCommand(context.Background(), command("Tenet"))
	if n := f.notifier.last(t); !strings.HasPrefix(n.Title, "Not found") || !strings.Contains(n.Title, "Tenet") {
		t.Fatalf("expected not found, got %+v", n)
	}
}

func TestIndexErrorIsReported(t *testing.T) {
	f := newFixture(t, defaultSettings(), inception)
	f.index.err = errors.New("database is locked")
	f.handler.HandleCommand(context.Background(), command("Inception"))
	if n := f.notifier.last(t); !strings.Contains(n.Title, "database is locked") {
		t.Fatalf("expected index error in report, got %+v", n)
	}
}

func TestCallbackResolvesByID(t *testing.T) {
	f := newFixture(t, defaultSettings(), inception, dark)
	f.handler.HandleCallback(context.Background(), callback(PluginID, "t1"))

	if len(f.index.lookups) != 1 || f.index.lookups[0] != "t1" {
		t.Fatalf("expected lookup by id, got %v", f.index.lookups)
	}
	if len(f.transfer.requests) != 1 || f.transfer.requests[0].SourcePath != "/data/tv/Dark" {
		t.Fatalf("expected series root unchanged, got %+v", f.transfer.requests)
	}
}

func TestCallbackForOtherPluginIsNoop(t *testing.T) {
	f := newFixture(t, defaultSettings(), inception)
	f.handler.HandleCallback(context.Background(), callback("OtherPlugin", "m1"))
	if len(f.notifier.sent) != 0 || len(f.index.lookups) != 0 || len(f.transfer.requests) != 0 {
		t.Fatalf("expected no side effects, got sent=%v lookups=%v", f.notifier.sent, f.index.lookups)
	}
}

func TestCallbackWithoutItemIDIsDataError(t *testing.T) {
	f := newFixture(t, defaultSettings(), inception)
	f.handler.HandleCallback(context.Background(), callback(PluginID, " "))
	if n := f.notifier.last(t); !strings.HasPrefix(n.Title, "Data error") {
		t.Fatalf("expected data error, got %+v", n)
	}
	if len(f.index.lookups) != 0 {
		t.Fatal("expected no lookup")
	}
}

func TestCallbackUnknownIDIsNotFound(t *testing.T) {
	f := newFixture(t, defaultSettings(), inception)
	f.handler.HandleCallback(context.Background(), callback(PluginID, "gone"))
	if n := f.notifier.last(t); !strings.HasPrefix(n.Title, "Not found") {
		t.Fatalf("expected not found, got %+v", n)
	}
}

func TestDisabledPluginIgnoresEvents(t *testing.T) {
	settings := defaultSettings()
	settings.Enabled = false
	f := newFixture(t, settings, inception)
	f.handler.HandleCommand(context.Background(), command("Inception"))
	f.handler.HandleCallback(context.Background(), callback(PluginID, "m1"))
	if len(f.notifier.sent) != 0 || len(f.index.searches) != 0 || len(f.index.lookups) != 0 {
		t.Fatal("disabled plugin must not react")
	}
}

func TestOtherActionIsIgnored(t *testing.T) {
	f := newFixture(t, defaultSettings(), inception)
	ev := command("Inception")
	ev.Action = "other"
	f.handler.HandleCommand(context.Background(), ev)
	if len(f.notifier.sent) != 0 || len(f.index.searches) != 0 {
		t.Fatal("foreign action must be ignored")
	}
}

func TestDispatchRejectsInvalidEvents(t *testing.T) {
	f := newFixture(t, defaultSettings(), inception)
	if err := f.handler.Dispatch(context.Background(), bus.CommandEvent{Action: CommandAction, Args: "Inception"}); err == nil {
		t.Fatal("expected validation error for missing channel")
	}
	if err := f.handler.Dispatch(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil event")
	}
	if len(f.notifier.sent) != 0 {
		t.Fatal("invalid events must not produce replies")
	}
}

func TestPathRestriction(t *testing.T) {
	tests := []struct {
		name    string
		allowed string
		path    string
		wantOK  bool
	}{
		{"inside movies", "/data/movies", "/data/movies/Foo/Foo.mkv", true},
		{"other root", "/data/tv", "/data/movies/Foo/Foo.mkv", false},
		{"plain prefix match", "/data/movies", "/data/movies2/Foo/Foo.mkv", true},
		{"second entry", "/srv\n  /data/movies  ", "/data/movies/Foo/Foo.mkv", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			settings := defaultSettings()
			settings.AllowedPaths = tc.allowed
			entry := inception
			entry.Path = tc.path
			f := newFixture(t, settings, entry)

			f.handler.HandleCommand(context.Background(), command("Inception"))
			n := f.notifier.last(t)
			if tc.wantOK {
				if len(f.transfer.requests) != 1 {
					t.Fatalf("expected upload, got %+v", n)
				}
				return
			}
			if len(f.transfer.requests) != 0 || !strings.HasPrefix(n.Title, "Path restricted") {
				t.Fatalf("expected path restriction, got %+v", n)
			}
		})
	}
}

func TestMissingFileIsNotFound(t *testing.T) {
	f := newFixture(t, defaultSettings(), inception)
	f.handler.exists = func(string) (bool, error) { return false, nil }
	f.handler.HandleCommand(context.Background(), command("Inception"))
	n := f.notifier.last(t)
	if !strings.HasPrefix(n.Title, "Not found") || !strings.Contains(n.Title, inception.Path) {
		t.Fatalf("expected missing file report, got %+v", n)
	}
	if len(f.transfer.requests) != 0 {
		t.Fatal("expected no transfer")
	}
}

func TestIncompleteEntryIsDataError(t *testing.T) {
	for _, entry := range []mediaindex.Entry{
		{ID: "x", Title: "NoPath", Type: mediaindex.MediaTypeMovie, TypeLabel: "电影"},
		{ID: "y", Title: "NoType", Path: "/data/movies/NoType/n.mkv"},
	} {
		f := newFixture(t, defaultSettings(), entry)
		f.handler.HandleCallback(context.Background(), callback(PluginID, entry.ID))
		if n := f.notifier.last(t); !strings.HasPrefix(n.Title, "Data error") {
			t.Fatalf("entry %s: expected data error, got %+v", entry.ID, n)
		}
	}
}

func TestUnknownTypeIsDataError(t *testing.T) {
	entry := mediaindex.Entry{ID: "a1", Title: "Akira", Type: mediaindex.MediaTypeUnknown, TypeLabel: "动漫", Path: "/data/movies/Akira/a.mkv"}
	f := newFixture(t, defaultSettings(), entry)
	f.handler.HandleCommand(context.Background(), command("Akira"))
	n := f.notifier.last(t)
	if !strings.HasPrefix(n.Title, "Data error") || !strings.Contains(n.Title, "动漫") {
		t.Fatalf("expected data error naming the type, got %+v", n)
	}
	if len(f.transfer.requests) != 0 {
		t.Fatal("unknown type must not reach the transfer service")
	}
}

func TestTransferRoot(t *testing.T) {
	root, err := transferRoot(inception)
	if err != nil || root != "/data/movies/Inception" {
		t.Fatalf("movie root = %q, %v", root, err)
	}
	root, err = transferRoot(dark)
	if err != nil || root != "/data/tv/Dark" {
		t.Fatalf("series root = %q, %v", root, err)
	}
}

func TestUploadWithRealFilesystem(t *testing.T) {
	base := t.TempDir()
	moviePath := filepath.Join(base, "movies", "Arrival", "Arrival.mkv")
	if err := os.MkdirAll(filepath.Dir(moviePath), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(moviePath, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	settings := Settings{Enabled: true, AllowedPaths: filepath.Join(base, "movies"), TargetStorage: "u115"}
	idx := &fakeIndex{entries: []mediaindex.Entry{
		{ID: "a", Title: "Arrival", Type: mediaindex.MediaTypeMovie, TypeLabel: "Movie", Path: moviePath},
		{ID: "b", Title: "Ghost", Type: mediaindex.MediaTypeMovie, TypeLabel: "Movie", Path: filepath.Join(base, "movies", "Ghost", "g.mkv")},
	}}
	svc := &fakeTransfer{result: transfer.Result{Accepted: true}}
	notifier := &captureNotifier{}
	handler := NewHandler(settings, idx, svc, notifier, nil)

	handler.HandleCallback(context.Background(), callback(PluginID, "a"))
	if len(svc.requests) != 1 || svc.requests[0].SourcePath != filepath.Dir(moviePath) {
		t.Fatalf("unexpected requests: %+v", svc.requests)
	}

	handler.HandleCallback(context.Background(), callback(PluginID, "b"))
	if n := notifier.last(t); !strings.Contains(n.Title, "file does not exist") {
		t.Fatalf("expected missing file report, got %+v", n)
	}
}

func TestCommandSpec(t *testing.T) {
	spec := Command()
	if spec.Name != "/mediato115" || spec.Action != "mediato115" || spec.Keyword() != "mediato115" || spec.Description == "" {
		t.Fatalf("unexpected command spec: %+v", spec)
	}
}
