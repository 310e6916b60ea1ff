package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gofrs/flock"

	"mediato115/internal/bus"
	"mediato115/internal/channels"
	"mediato115/internal/config"
	"mediato115/internal/logging"
	"mediato115/internal/notifications"
	"mediato115/internal/services"
)

// Dispatcher handles one event. plugin.Handler satisfies it.
type Dispatcher interface {
	Dispatch(ctx context.Context, ev bus.Event) error
}

// Daemon runs chat channels against a dispatcher and enforces single-instance execution.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	handler  Dispatcher
	router   *notifications.Router
	channels []channels.Channel

	lockPath string
	lock     *flock.Flock

	mu      sync.Mutex
	started []channels.Channel
	events  sync.WaitGroup
	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	Channels     []string
	LockFilePath string
}

// New constructs a daemon. Channels are registered with router once started.
func New(cfg *config.Config, handler Dispatcher, router *notifications.Router, chans []channels.Channel, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || handler == nil || router == nil {
		return nil, errors.New("daemon requires config, handler, and notification router")
	}
	lockPath := cfg.LockPath()
	return &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		handler:  handler,
		router:   router,
		channels: chans,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Start acquires the lock and connects every channel. If any channel fails to
// start, the ones already started are stopped and the lock released.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}
	if err := d.cfg.EnsureDirectories(); err != nil {
		return err
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another mediato115 instance is already running")
	}

	// Events outlive the caller's context; Stop cancels them after they drain.
	d.mu.Lock()
	d.ctx, d.cancel = context.WithCancel(context.WithoutCancel(ctx))
	d.running.Store(true)
	d.mu.Unlock()
	for _, ch := range d.channels {
		if err := ch.Start(d.ctx, d.dispatch); err != nil {
			d.Stop(context.Background())
			return fmt.Errorf("start %s channel: %w", ch.Name(), err)
		}
		d.router.Register(ch.Name(), ch)
		d.mu.Lock()
		d.started = append(d.started, ch)
		d.mu.Unlock()
	}

	if len(d.channels) == 0 {
		d.logger.Warn("no chat channels enabled; commands can only be issued from the CLI")
	}
	d.logger.Info("mediato115 daemon started",
		logging.String("lock", d.lockPath),
		logging.Int("channels", len(d.channels)),
	)
	return nil
}

// Stop disconnects channels, waits for in-flight events and releases the lock.
func (d *Daemon) Stop(ctx context.Context) {
	d.mu.Lock()
	if !d.running.Swap(false) {
		d.mu.Unlock()
		return
	}
	started := d.started
	d.started = nil
	d.mu.Unlock()
	for i := len(started) - 1; i >= 0; i-- {
		ch := started[i]
		if err := ch.Stop(ctx); err != nil {
			d.logger.Warn("channel stop failed", logging.String(logging.FieldChannel, ch.Name()), logging.Error(err))
		}
		d.router.Unregister(ch.Name())
	}

	d.events.Wait()
	d.mu.Lock()
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.ctx = nil
	d.mu.Unlock()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.logger.Info("mediato115 daemon stopped")
}

// Run starts the daemon and blocks until ctx is cancelled.
func (d *Daemon) Run(ctx context.Context) error {
	if err := d.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	d.Stop(context.WithoutCancel(ctx))
	return nil
}

// Status returns the current daemon status.
func (d *Daemon) Status() Status {
	d.mu.Lock()
	names := make([]string, 0, len(d.started))
	for _, ch := range d.started {
		names = append(names, ch.Name())
	}
	d.mu.Unlock()
	return Status{
		Running:      d.running.Load(),
		Channels:     names,
		LockFilePath: d.lockPath,
	}
}

// dispatch is handed to channels. Each event runs on its own goroutine.
func (d *Daemon) dispatch(ev bus.Event) {
	if ev == nil {
		return
	}
	d.mu.Lock()
	if !d.running.Load() {
		d.mu.Unlock()
		return
	}
	ctx := d.ctx
	d.events.Add(1)
	d.mu.Unlock()
	go func() {
		defer d.events.Done()
		ctx = services.WithRequestID(ctx, services.NewRequestID())
		if err := d.handler.Dispatch(ctx, ev); err != nil {
			logging.WithContext(ctx, d.logger).Warn("event dropped", logging.Error(err))
		}
	}()
}
