package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"mediato115/internal/channels"
	"mediato115/internal/config"
	"mediato115/internal/logging"
	"mediato115/internal/mediaindex"
	"mediato115/internal/notifications"
	"mediato115/internal/plugin"
	"mediato115/internal/queue"
	"mediato115/internal/transfer"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg)
	})
	return c.logger, c.loggerErr
}

// app holds the components every handler-driven command needs.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	index   mediaindex.Backend
	queue   *queue.Store
	router  *notifications.Router
	handler *plugin.Handler
}

func (a *app) Close() {
	if a.index != nil {
		_ = a.index.Close()
	}
	if a.queue != nil {
		_ = a.queue.Close()
	}
}

// openApp wires index, queue, transfer service, notification router and the
// handler. When console is non-nil it receives replies addressed to the
// console channel.
func (c *commandContext) openApp(console io.Writer) (*app, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}

	index, err := mediaindex.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open media index: %w", err)
	}
	store, err := queue.Open(cfg)
	if err != nil {
		_ = index.Close()
		return nil, fmt.Errorf("open transfer queue: %w", err)
	}

	router := notifications.NewRouter(notifications.NewService(cfg), logger)
	if console != nil {
		router.Register(channels.ConsoleName, channels.NewConsole(console, logger))
	}
	svc := transfer.NewQueueService(store, cfg.Transfer.Targets, logger)
	handler := plugin.NewHandler(plugin.SettingsFromConfig(cfg), index, svc, router, logger)

	return &app{
		cfg:     cfg,
		logger:  logger,
		index:   index,
		queue:   store,
		router:  router,
		handler: handler,
	}, nil
}

func (c *commandContext) withApp(cmd *cobra.Command, fn func(*app) error) error {
	a, err := c.openApp(cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

func (c *commandContext) withQueue(fn func(*queue.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := queue.Open(cfg)
	if err != nil {
		return fmt.Errorf("open transfer queue: %w", err)
	}
	defer store.Close()
	return fn(store)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
