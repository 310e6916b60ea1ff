// Package plugin implements the /mediato115 chat command.
//
// A title command searches the media index. A single match is uploaded right
// away; several matches produce a numbered menu of at most four buttons whose
// payloads carry the plugin ID and the item ID. Pressing a button arrives later
// as a callback event that is resolved by item ID alone, so no selection state
// is kept between the menu and the callback.
//
// The upload step checks the entry's fields, the path allow-list, and the
// local filesystem before handing the transfer root to the transfer service.
// Every failure is reported back to the originating chat and never escapes the
// handler.
package plugin
