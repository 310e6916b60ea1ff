package notifications

import (
	"context"
	"log/slog"
	"sync"

	"mediato115/internal/bus"
	"mediato115/internal/logging"
)

// Poster delivers a notification to one chat channel.
type Poster interface {
	Post(ctx context.Context, n bus.Notification) error
}

// Router dispatches notifications by channel name.
type Router struct {
	mu       sync.RWMutex
	channels map[string]Poster
	fallback Service
	logger   *slog.Logger
}

// NewRouter returns a router that uses fallback for unknown channels.
func NewRouter(fallback Service, logger *slog.Logger) *Router {
	if fallback == nil {
		fallback = noopService{}
	}
	return &Router{
		channels: make(map[string]Poster),
		fallback: fallback,
		logger:   logging.NewComponentLogger(logger, "notify"),
	}
}

// Register routes notifications addressed to name through poster.
func (r *Router) Register(name string, poster Poster) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.channels[name] = poster
}

// Unregister stops routing to name.
func (r *Router) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.channels, name)
}

// Post implements plugin.Notifier.
func (r *Router) Post(ctx context.Context, n bus.Notification) error {
	r.mu.RLock()
	poster, ok := r.channels[n.Channel]
	r.mu.RUnlock()
	if ok {
		return poster.Post(ctx, n)
	}
	r.logger.Debug("channel not registered, using fallback", logging.String(logging.FieldChannel, n.Channel))
	return r.fallback.Post(ctx, n)
}
