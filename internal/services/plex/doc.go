// Package plex queries a Plex Media Server for movies and shows so it can stand
// in for the host media index.
//
// Plex answers in XML. Movies carry their file under Media/Part, while shows
// only expose their folder through the Location element of the metadata
// endpoint, so show results are resolved with a second request.
package plex
