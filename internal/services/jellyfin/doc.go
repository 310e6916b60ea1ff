// Package jellyfin queries a Jellyfin server for movies and series so it can
// stand in for the host media index.
//
// The Client speaks the subset of the Jellyfin HTTP API needed for title search,
// lookup by item ID, and a reachability probe. Requests authenticate with the
// X-Emby-Token header.
package jellyfin
