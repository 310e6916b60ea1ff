package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"mediato115/internal/preflight"
	"mediato115/internal/queue"
)

const (
	ansiReset = "\033[0m"
	ansiRed   = "\033[31m"
	ansiGreen = "\033[32m"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration, paths, index and transfer queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			fmt.Fprintf(out, "Plugin enabled: %s\n", yesNo(cfg.Plugin.Enabled))
			fmt.Fprintf(out, "Target storage: %s\n", cfg.Plugin.TargetStorage)
			fmt.Fprintf(out, "Channels: discord=%s telegram=%s ntfy=%s\n",
				yesNo(cfg.Discord.Enabled), yesNo(cfg.Telegram.Enabled), yesNo(cfg.Notifications.NtfyTopic != ""))

			results := preflight.RunAll(cmd.Context(), cfg)
			for _, r := range results {
				fmt.Fprintln(out, formatCheck(r, colorize))
			}

			if err := ctx.withQueue(func(store *queue.Store) error {
				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}
				parts := make([]string, 0, len(stats))
				for _, status := range queue.AllStatuses() {
					parts = append(parts, fmt.Sprintf("%s=%d", status, stats[status]))
				}
				fmt.Fprintf(out, "Transfers: %s\n", strings.Join(parts, " "))
				return nil
			}); err != nil {
				return err
			}

			if failed := preflight.Failed(results); len(failed) > 0 {
				return fmt.Errorf("%d check(s) failed", len(failed))
			}
			return nil
		},
	}
}

func formatCheck(r preflight.Result, colorize bool) string {
	mark := "✓"
	color := ansiGreen
	if !r.Passed {
		mark = "✗"
		color = ansiRed
	}
	if colorize {
		mark = color + mark + ansiReset
	}
	return fmt.Sprintf("%s %s: %s", mark, r.Name, r.Detail)
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
