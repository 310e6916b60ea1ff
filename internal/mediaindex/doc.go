// Package mediaindex reads the catalog of media known to the host's media
// servers.
//
// The default backend is the host's SQLite table of media-server items
// (mediaserver_item). Jellyfin and Plex servers can be queried directly
// instead. All backends implement Index with the same semantics: title search
// is a case-insensitive substring match returned in catalog order, and lookup
// by ID returns at most the entries carrying that identifier.
package mediaindex
