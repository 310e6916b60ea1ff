package plugin

import (
	"strings"

	"mediato115/internal/config"
)

const (
	// PluginID is embedded in every menu payload and checked on callbacks.
	PluginID = "MediaTo115"
	// CommandName is the slash command users type.
	CommandName = "/mediato115"
	// CommandAction is the action carried by command events for this plugin.
	CommandAction = "mediato115"
	// CommandDescription is shown by chat clients next to the command.
	CommandDescription = "Pick a movie or series and upload its files to 115 cloud storage"
	// MaxMenuOptions caps the number of buttons in a disambiguation menu.
	MaxMenuOptions = 4
)

// CommandSpec describes the command channels register with their platform.
type CommandSpec struct {
	Name        string
	Description string
	Action      string
}

// Command returns the registration for the /mediato115 command.
func Command() CommandSpec {
	return CommandSpec{Name: CommandName, Description: CommandDescription, Action: CommandAction}
}

// Keyword returns the command name without the leading slash.
func (c CommandSpec) Keyword() string {
	return strings.TrimPrefix(c.Name, "/")
}

// Settings is the handler configuration. It is copied into the Handler at
// construction and never changed afterwards.
type Settings struct {
	Enabled bool
	// AllowedPaths is the raw newline-delimited allow-list.
	AllowedPaths  string
	TargetStorage string
}

// SettingsFromConfig extracts handler settings from the application config.
func SettingsFromConfig(cfg *config.Config) Settings {
	if cfg == nil {
		return Settings{}
	}
	return Settings{
		Enabled:       cfg.Plugin.Enabled,
		AllowedPaths:  cfg.Plugin.AllowedPaths,
		TargetStorage: cfg.Plugin.TargetStorage,
	}
}

// AllowList returns the normalized allow-list.
func (s Settings) AllowList() []string {
	return config.SplitAllowedPaths(s.AllowedPaths)
}
