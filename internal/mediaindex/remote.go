package mediaindex

import (
	"context"

	"mediato115/internal/config"
	"mediato115/internal/services/jellyfin"
	"mediato115/internal/services/plex"
	"mediato115/internal/textutil"
)

// JellyfinIndex serves index queries from a Jellyfin server. Server-side search
// is fuzzy, so results are filtered again to the substring semantics of Store.
type JellyfinIndex struct {
	client *jellyfin.Client
}

// NewJellyfinIndex wraps a Jellyfin client.
func NewJellyfinIndex(client *jellyfin.Client) *JellyfinIndex {
	return &JellyfinIndex{client: client}
}

func (j *JellyfinIndex) Name() string { return config.IndexBackendJellyfin }

func (j *JellyfinIndex) SearchTitle(ctx context.Context, query string) ([]Entry, error) {
	items, err := j.client.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(items))
	for _, item := range items {
		if !textutil.ContainsFold(item.Name, query) {
			continue
		}
		entries = append(entries, jellyfinEntry(item))
	}
	return entries, nil
}

func (j *JellyfinIndex) LookupID(ctx context.Context, id string) ([]Entry, error) {
	items, err := j.client.ItemsByID(ctx, id)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(items))
	for _, item := range items {
		if item.ID != id {
			continue
		}
		entries = append(entries, jellyfinEntry(item))
	}
	return entries, nil
}

func (j *JellyfinIndex) Ping(ctx context.Context) error {
	_, err := j.client.Ping(ctx)
	return err
}

func (j *JellyfinIndex) Close() error { return nil }

func jellyfinEntry(item jellyfin.Item) Entry {
	return Entry{
		ID:        item.ID,
		Title:     item.Name,
		Type:      ParseMediaType(item.Type),
		TypeLabel: item.Type,
		Path:      item.Path,
	}
}

// PlexIndex serves index queries from a Plex Media Server.
type PlexIndex struct {
	client *plex.Client
}

// NewPlexIndex wraps a Plex client.
func NewPlexIndex(client *plex.Client) *PlexIndex {
	return &PlexIndex{client: client}
}

func (p *PlexIndex) Name() string { return config.IndexBackendPlex }

func (p *PlexIndex) SearchTitle(ctx context.Context, query string) ([]Entry, error) {
	items, err := p.client.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(items))
	for _, item := range items {
		if !textutil.ContainsFold(item.Title, query) {
			continue
		}
		entries = append(entries, plexEntry(item))
	}
	return entries, nil
}

func (p *PlexIndex) LookupID(ctx context.Context, id string) ([]Entry, error) {
	items, err := p.client.Metadata(ctx, id)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(items))
	for _, item := range items {
		entries = append(entries, plexEntry(item))
	}
	return entries, nil
}

func (p *PlexIndex) Ping(ctx context.Context) error {
	_, err := p.client.Identity(ctx)
	return err
}

func (p *PlexIndex) Close() error { return nil }

func plexEntry(item plex.Item) Entry {
	return Entry{
		ID:        item.RatingKey,
		Title:     item.Title,
		Type:      ParseMediaType(item.Type),
		TypeLabel: item.Type,
		Path:      item.Path,
	}
}
