// Package services defines shared utilities consumed by the command handler
// and its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp request IDs, chat channels, and users for
//     logging and tracing.
//   - Structured error markers plus the Wrap helper that translate failures
//     into the user-facing categories reported back to chat.
//
// Subpackages hold the media-server clients (Jellyfin, Plex) that can serve as
// the media index.
package services
