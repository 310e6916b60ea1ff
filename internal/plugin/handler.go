package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"mediato115/internal/bus"
	"mediato115/internal/fileutil"
	"mediato115/internal/logging"
	"mediato115/internal/mediaindex"
	"mediato115/internal/services"
	"mediato115/internal/transfer"
)

// Notifier delivers user-visible messages to a chat channel.
type Notifier interface {
	Post(ctx context.Context, n bus.Notification) error
}

// Handler resolves /mediato115 commands and menu callbacks.
type Handler struct {
	settings Settings
	index    mediaindex.Index
	transfer transfer.Service
	notifier Notifier
	logger   *slog.Logger
	exists   func(string) (bool, error)
}

// NewHandler wires a handler. The settings are copied and never mutated.
func NewHandler(settings Settings, index mediaindex.Index, svc transfer.Service, notifier Notifier, logger *slog.Logger) *Handler {
	return &Handler{
		settings: settings,
		index:    index,
		transfer: svc,
		notifier: notifier,
		logger:   logging.NewComponentLogger(logger, "mediato115"),
		exists:   fileutil.Exists,
	}
}

// Settings returns a copy of the handler settings.
func (h *Handler) Settings() Settings {
	return h.settings
}

// Dispatch validates ev and routes it to the matching trigger. Invalid events
// are dropped and the validation error returned; handler failures are reported
// to chat and never returned.
func (h *Handler) Dispatch(ctx context.Context, ev bus.Event) error {
	if ev == nil {
		return fmt.Errorf("dispatch: nil event")
	}
	if err := ev.Validate(); err != nil {
		h.logger.Warn("event rejected", logging.Error(err))
		return err
	}
	origin := ev.Origin()
	ctx = services.WithChannel(ctx, origin.Channel)
	ctx = services.WithUser(ctx, origin.UserID)
	if _, ok := services.RequestIDFromContext(ctx); !ok {
		ctx = services.WithRequestID(ctx, services.NewRequestID())
	}

	switch e := ev.(type) {
	case bus.CommandEvent:
		h.HandleCommand(ctx, e)
	case bus.CallbackEvent:
		h.HandleCallback(ctx, e)
	}
	return nil
}

// HandleCommand runs the title trigger.
func (h *Handler) HandleCommand(ctx context.Context, ev bus.CommandEvent) {
	if !h.settings.Enabled || ev.Action != CommandAction {
		return
	}
	logger := logging.WithContext(ctx, h.logger)
	origin := ev.Origin()

	if len(h.settings.AllowList()) == 0 {
		logger.Info("no allowed paths configured", logging.String(logging.FieldEventType, "config_missing"))
		h.fail(ctx, origin, services.ErrConfiguration, "no allowed upload paths are configured")
		return
	}

	tokens := strings.Fields(ev.Args)
	if len(tokens) != 1 {
		logger.Info("invalid arguments",
			logging.String(logging.FieldEventType, "usage"),
			logging.String("args", ev.Args),
		)
		h.fail(ctx, origin, services.ErrUsage, fmt.Sprintf("expected exactly one title, usage: %s <movie or series title>", CommandName))
		return
	}
	title := tokens[0]

	entries, err := h.index.SearchTitle(ctx, title)
	if err != nil {
		logger.Error("media index search failed", logging.String("title", title), logging.Error(err))
		h.fail(ctx, origin, services.ErrValidation, fmt.Sprintf("media index search failed: %v", err))
		return
	}

	switch len(entries) {
	case 0:
		logger.Info("media not found",
			logging.String(logging.FieldEventType, "not_found"),
			logging.String("title", title),
		)
		h.fail(ctx, origin, services.ErrNotFound, fmt.Sprintf("no media matches %q", title))
	case 1:
		h.upload(ctx, entries[0], origin)
	default:
		titles := make([]string, 0, len(entries))
		for _, entry := range entries {
			titles = append(titles, entry.Title)
		}
		logger.Info("multiple matches",
			logging.String(logging.FieldEventType, "menu"),
			logging.Int("matches", len(entries)),
			logging.String("titles", strings.Join(titles, ",")),
		)
		h.post(ctx, buildMenu(entries, origin))
	}
}

// HandleCallback runs the menu-selection trigger. Callbacks addressed to other
// plugins are ignored without any query or reply.
func (h *Handler) HandleCallback(ctx context.Context, ev bus.CallbackEvent) {
	if !h.settings.Enabled || ev.PluginID != PluginID {
		return
	}
	logger := logging.WithContext(ctx, h.logger)
	origin := ev.Origin()

	itemID := strings.TrimSpace(ev.Data)
	logger.Info("menu selection", logging.String(logging.FieldItemID, itemID))
	if itemID == "" {
		h.fail(ctx, origin, services.ErrValidation, "menu selection carries no item id")
		return
	}
	ctx = services.WithItemID(ctx, itemID)

	entries, err := h.index.LookupID(ctx, itemID)
	if err != nil {
		logger.Error("media index lookup failed", logging.String(logging.FieldItemID, itemID), logging.Error(err))
		h.fail(ctx, origin, services.ErrValidation, fmt.Sprintf("media index lookup failed: %v", err))
		return
	}
	if len(entries) == 0 {
		logger.Info("media not found",
			logging.String(logging.FieldEventType, "not_found"),
			logging.String(logging.FieldItemID, itemID),
		)
		h.fail(ctx, origin, services.ErrNotFound, fmt.Sprintf("no media with id %q", itemID))
		return
	}
	h.upload(ctx, entries[0], origin)
}

func (h *Handler) fail(ctx context.Context, origin bus.Origin, marker error, detail string) {
	h.post(ctx, origin.Reply(capitalize(services.Category(marker))+": "+detail, ""))
}

func (h *Handler) post(ctx context.Context, n bus.Notification) {
	if h.notifier == nil {
		return
	}
	if err := h.notifier.Post(ctx, n); err != nil {
		logging.WithContext(ctx, h.logger).Warn("notification delivery failed",
			logging.String(logging.FieldChannel, n.Channel),
			logging.Error(err),
		)
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
