// Package notifications delivers handler replies.
//
// Router sends each notification to the chat channel it is addressed to and
// falls back to ntfy (or a no-op) when that channel is not running, so replies
// to events injected from the CLI or from a stopped bot are not silently lost.
package notifications
