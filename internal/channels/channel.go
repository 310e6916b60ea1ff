package channels

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync/atomic"
	"time"
	"unicode"

	"mediato115/internal/bus"
	"mediato115/internal/logging"
)

const sendTimeout = 10 * time.Second

// Channel is a chat platform connection.
type Channel interface {
	Name() string
	// Start connects to the platform and begins delivering events to dispatch.
	// It returns once the connection is established.
	Start(ctx context.Context, dispatch bus.Dispatch) error
	Stop(ctx context.Context) error
	Post(ctx context.Context, n bus.Notification) error
}

type baseChannel struct {
	name      string
	allowFrom []string
	running   atomic.Bool
	logger    *slog.Logger
}

func newBaseChannel(name string, allowFrom []string, logger *slog.Logger) *baseChannel {
	allow := make([]string, 0, len(allowFrom))
	for _, id := range allowFrom {
		if id = strings.TrimSpace(id); id != "" {
			allow = append(allow, id)
		}
	}
	return &baseChannel{
		name:      name,
		allowFrom: allow,
		logger:    logging.NewComponentLogger(logger, name),
	}
}

func (b *baseChannel) Name() string {
	return b.name
}

// IsAllowed reports whether userID may use the bot. An empty allow list admits
// everyone.
func (b *baseChannel) IsAllowed(userID string) bool {
	if len(b.allowFrom) == 0 {
		return true
	}
	return slices.Contains(b.allowFrom, userID)
}

func (b *baseChannel) IsRunning() bool {
	return b.running.Load()
}

func (b *baseChannel) setRunning(v bool) {
	b.running.Store(v)
}

// emit forwards ev unless its user is rejected by the allow list.
func (b *baseChannel) emit(dispatch bus.Dispatch, ev bus.Event) {
	if dispatch == nil || ev == nil {
		return
	}
	origin := ev.Origin()
	if !b.IsAllowed(origin.UserID) {
		b.logger.Debug("event rejected by allowlist", logging.String(logging.FieldUserID, origin.UserID))
		return
	}
	dispatch(ev)
}

// parseCommand extracts the argument string of a "/keyword args" message.
// A "@botname" suffix on the command is ignored.
func parseCommand(text, keyword string) (string, bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", false
	}
	head, args := text[1:], ""
	if i := strings.IndexFunc(head, unicode.IsSpace); i >= 0 {
		head, args = head[:i], head[i:]
	}
	head, _, _ = strings.Cut(head, "@")
	if !strings.EqualFold(head, keyword) {
		return "", false
	}
	return strings.TrimSpace(args), true
}
