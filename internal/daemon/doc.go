// Package daemon coordinates the long-running mediato115 process.
//
// It starts the configured chat channels, routes their events to the command
// handler and their replies back through the notification router, and holds a
// flock-based lock so only one instance serves a state directory. Each event
// is handled on its own goroutine with a fresh request ID; Stop waits for
// in-flight events before releasing the lock.
package daemon
