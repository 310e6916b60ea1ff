// Package bus defines the typed events exchanged between chat channels and the
// command handler.
//
// Inbound traffic is either a CommandEvent (a user typed the slash command) or
// a CallbackEvent (a user pressed a menu button). Both satisfy the sealed Event
// interface and are validated at the channel boundary before dispatch. Outbound
// traffic is a Notification, optionally carrying rows of buttons whose payloads
// are echoed back verbatim in a later CallbackEvent.
package bus
