package plex

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"mediato115/internal/services"
)

const searchXML = `<?xml version="1.0" encoding="UTF-8"?>
<MediaContainer size="3">
  <Video ratingKey="101" type="movie" title="Inception">
    <Media><Part file="/data/movies/Inception/Inception.mkv"/></Media>
  </Video>
  <Video ratingKey="555" type="episode" title="Pilot">
    <Media><Part file="/data/tv/Show/S01E01.mkv"/></Media>
  </Video>
  <Directory ratingKey="202" type="show" title="Inception Stories"/>
</MediaContainer>`

const showXML = `<MediaContainer size="1">
  <Directory ratingKey="202" type="show" title="Inception Stories">
    <Location path="/data/tv/Inception Stories"/>
  </Directory>
</MediaContainer>`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token := r.Header.Get("X-Plex-Token"); token != "plex-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.URL.Path {
		case "/search":
			if r.URL.Query().Get("query") != "Inception" {
				t.Fatalf("unexpected query: %s", r.URL.RawQuery)
			}
			_, _ = w.Write([]byte(searchXML))
		case "/library/metadata/202":
			_, _ = w.Write([]byte(showXML))
		case "/library/metadata/404":
			w.WriteHeader(http.StatusNotFound)
		case "/identity":
			_, _ = w.Write([]byte(`<MediaContainer machineIdentifier="abc" version="1.40.0"/>`))
		default:
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
	}))
}

func TestSearchResolvesMoviesAndShows(t *testing.T) {
	server := newTestServer(t)
	defer server.Close()

	items, err := NewClient(server.URL, "plex-token", server.Client()).Search(context.Background(), "Inception")
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected movie and show, got %+v", items)
	}
	if items[0].Type != TypeMovie || items[0].Path != "/data/movies/Inception/Inception.mkv" {
		t.Fatalf("unexpected movie %+v", items[0])
	}
	if items[1].Type != TypeShow || items[1].Path != "/data/tv/Inception Stories" {
		t.Fatalf("unexpected show %+v", items[1])
	}
}

func TestMetadataMissingReturnsEmpty(t *testing.T) {
	server := newTestServer(t)
	defer server.Close()

	items, err := NewClient(server.URL, "plex-token", server.Client()).Metadata(context.Background(), "404")
	if err != nil {
		t.Fatalf("Metadata returned error: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected no items, got %+v", items)
	}
}

func TestBadTokenIsConfigurationError(t *testing.T) {
	server := newTestServer(t)
	defer server.Close()

	_, err := NewClient(server.URL, "wrong", server.Client()).Search(context.Background(), "Inception")
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestIdentity(t *testing.T) {
	server := newTestServer(t)
	defer server.Close()

	identity, err := NewClient(server.URL, "plex-token", server.Client()).Identity(context.Background())
	if err != nil || identity.MachineIdentifier != "abc" {
		t.Fatalf("Identity = %+v, %v", identity, err)
	}
}
