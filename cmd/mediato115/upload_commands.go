package main

import (
	"strings"

	"github.com/spf13/cobra"

	"mediato115/internal/bus"
	"mediato115/internal/channels"
	"mediato115/internal/plugin"
)

func newUploadCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <title>",
		Short: "Run the /mediato115 command from the terminal",
		Long: "Search the media index for <title> and queue an upload of the match.\n" +
			"When several items match, a menu is printed; pass the chosen ID to \"mediato115 select\".",
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, func(a *app) error {
				return a.handler.Dispatch(cmd.Context(), bus.CommandEvent{
					Action:  plugin.CommandAction,
					Channel: channels.ConsoleName,
					UserID:  "cli",
					Args:    strings.Join(args, " "),
				})
			})
		},
	}
}

func newSelectCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "select <item-id>",
		Short: "Pick an item from a disambiguation menu",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, func(a *app) error {
				return a.handler.Dispatch(cmd.Context(), bus.CallbackEvent{
					PluginID: plugin.PluginID,
					Channel:  channels.ConsoleName,
					UserID:   "cli",
					Data:     strings.TrimSpace(args[0]),
				})
			})
		},
	}
}
