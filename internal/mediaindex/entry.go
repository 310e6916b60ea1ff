package mediaindex

import (
	"context"
	"strings"
)

// MediaType classifies an index entry for transfer-root derivation.
type MediaType string

const (
	MediaTypeMovie   MediaType = "movie"
	MediaTypeSeries  MediaType = "series"
	MediaTypeUnknown MediaType = ""
)

// ParseMediaType maps the labels used by the host and by media servers onto a
// MediaType. Unrecognised labels yield MediaTypeUnknown.
func ParseMediaType(raw string) MediaType {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "电影", "movie", "movies", "film":
		return MediaTypeMovie
	case "电视剧", "series", "tv", "show", "shows":
		return MediaTypeSeries
	default:
		return MediaTypeUnknown
	}
}

// Entry is one catalog row. ID is unique within an index.
type Entry struct {
	ID    string
	Title string
	Type  MediaType
	// TypeLabel is the type as stored by the source, shown to users in menus.
	TypeLabel string
	Path      string
}

// Label returns the type label users see, falling back to the parsed type.
func (e Entry) Label() string {
	if label := strings.TrimSpace(e.TypeLabel); label != "" {
		return label
	}
	return string(e.Type)
}

// Index answers title and identifier queries.
type Index interface {
	SearchTitle(ctx context.Context, query string) ([]Entry, error)
	LookupID(ctx context.Context, id string) ([]Entry, error)
}

// Backend is an Index that can be probed and released.
type Backend interface {
	Index
	// Name identifies the backend in diagnostics.
	Name() string
	Ping(ctx context.Context) error
	Close() error
}
