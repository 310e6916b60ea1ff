// Package main hosts the mediato115 CLI entrypoint and command graph.
//
// "serve" runs the chat bot daemon. "upload" and "select" drive the same
// /mediato115 handler from the terminal, printing replies through the console
// channel. The remaining commands maintain the SQLite media index and the
// transfer queue, run preflight checks, and scaffold configuration.
//
// Keep this package lean: behavior lives in the internal packages and is
// surfaced here through dedicated commands or flags.
package main
