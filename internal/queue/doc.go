// Package queue persists transfer tasks in SQLite.
//
// Each task records one accepted handoff: the local source directory, the
// display name, and the storage target it should be copied to. The chat
// handler only ever creates tasks; the transfer executor owned by the host
// claims pending rows and moves them through running to completed or failed.
//
// The database is treated as transient storage for in-flight work rather than
// a long-term archive. Schema changes bump the version in schema.go; users
// clear the database to adopt the new schema.
package queue
