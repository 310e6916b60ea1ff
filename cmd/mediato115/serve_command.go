package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"mediato115/internal/channels"
	"mediato115/internal/daemon"
	"mediato115/internal/logging"
	"mediato115/internal/preflight"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the chat bot until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.openApp(nil)
			if err != nil {
				return err
			}
			defer a.Close()

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			for _, r := range preflight.Failed(preflight.RunAll(runCtx, a.cfg)) {
				a.logger.Warn("preflight check failed",
					logging.String("check", r.Name),
					logging.String("detail", r.Detail),
				)
			}

			chans, err := channels.FromConfig(a.cfg, a.logger)
			if err != nil {
				return err
			}
			d, err := daemon.New(a.cfg, a.handler, a.router, chans, a.logger)
			if err != nil {
				return err
			}
			return d.Run(runCtx)
		},
	}
}
