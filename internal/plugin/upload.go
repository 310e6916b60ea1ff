package plugin

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"mediato115/internal/bus"
	"mediato115/internal/logging"
	"mediato115/internal/mediaindex"
	"mediato115/internal/services"
	"mediato115/internal/transfer"
)

// upload validates entry and hands its transfer root to the transfer service.
func (h *Handler) upload(ctx context.Context, entry mediaindex.Entry, origin bus.Origin) {
	ctx = services.WithItemID(ctx, entry.ID)
	logger := logging.WithContext(ctx, h.logger).With(
		logging.String(logging.FieldItemID, entry.ID),
		logging.String("title", entry.Title),
		logging.String("path", entry.Path),
	)
	logger.Info("upload candidate")

	if missing := missingFields(entry); len(missing) > 0 {
		logger.Info("incomplete media entry", logging.String(logging.FieldEventType, "data_error"))
		h.fail(ctx, origin, services.ErrValidation, fmt.Sprintf("media entry %q has no %s", entry.ID, strings.Join(missing, "/")))
		return
	}

	allowed := h.settings.AllowList()
	if len(allowed) == 0 {
		logger.Info("no allowed paths configured", logging.String(logging.FieldEventType, "config_missing"))
		h.fail(ctx, origin, services.ErrConfiguration, "no allowed upload paths are configured")
		return
	}

	if !hasAllowedPrefix(entry.Path, allowed) {
		logger.Info("path outside allow-list", logging.String(logging.FieldEventType, "path_restricted"))
		h.fail(ctx, origin, services.ErrPathRestricted, fmt.Sprintf("%s is not under an allowed path", entry.Path))
		return
	}

	ok, err := h.exists(entry.Path)
	if err != nil {
		logger.Warn("stat failed", logging.Error(err))
	}
	if !ok {
		logger.Info("file missing", logging.String(logging.FieldEventType, "not_found"))
		h.fail(ctx, origin, services.ErrNotFound, fmt.Sprintf("file does not exist: %s", entry.Path))
		return
	}

	root, err := transferRoot(entry)
	if err != nil {
		logger.Info("unsupported media type",
			logging.String(logging.FieldEventType, "data_error"),
			logging.String("type", entry.Label()),
		)
		h.fail(ctx, origin, services.ErrValidation, err.Error())
		return
	}

	result := h.transfer.Submit(ctx, transfer.Request{
		SourcePath:    root,
		SourceKind:    transfer.SourceKindDir,
		Name:          entry.Title,
		TargetStorage: h.settings.TargetStorage,
		Background:    true,
	})
	if !result.Accepted {
		logger.Info("transfer rejected",
			logging.String(logging.FieldEventType, "transfer_failed"),
			logging.String("reason", result.Message),
		)
		h.fail(ctx, origin, services.ErrTransfer, result.Message)
		return
	}

	logger.Info("transfer queued",
		logging.String(logging.FieldEventType, "transfer_queued"),
		logging.String("root", root),
		logging.Int64("task_id", result.TaskID),
	)
	h.post(ctx, origin.Reply(fmt.Sprintf("Upload queued: %s, the transfer will start shortly", entry.Title), ""))
}

func missingFields(entry mediaindex.Entry) []string {
	var missing []string
	if strings.TrimSpace(entry.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(entry.Label()) == "" {
		missing = append(missing, "type")
	}
	if strings.TrimSpace(entry.Path) == "" {
		missing = append(missing, "path")
	}
	return missing
}

// hasAllowedPrefix is a plain string-prefix test; "/data/movies2/x" passes an
// allow-list entry of "/data/movies".
func hasAllowedPrefix(path string, allowed []string) bool {
	for _, prefix := range allowed {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// transferRoot is the directory handed to the transfer service: the folder
// holding a movie file, or the series folder itself.
func transferRoot(entry mediaindex.Entry) (string, error) {
	switch entry.Type {
	case mediaindex.MediaTypeMovie:
		return filepath.Dir(entry.Path), nil
	case mediaindex.MediaTypeSeries:
		return entry.Path, nil
	default:
		return "", fmt.Errorf("unsupported media type %q for %s", entry.Label(), entry.Title)
	}
}
