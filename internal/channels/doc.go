// Package channels connects chat platforms to the command handler.
//
// Each Channel turns platform updates into bus events (slash commands and
// button presses) and renders bus notifications back, including the
// disambiguation menu buttons. Discord uses discordgo application commands
// and message components, Telegram uses bot commands with inline keyboards,
// and Console prints to a writer for CLI-driven runs.
package channels
