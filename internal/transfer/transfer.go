package transfer

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"mediato115/internal/logging"
	"mediato115/internal/queue"
	"mediato115/internal/services"
	"mediato115/internal/textutil"
)

// SourceKindDir is the only source kind accepted for uploads.
const SourceKindDir = queue.SourceKindDir

// Request describes one upload handoff.
type Request struct {
	SourcePath    string
	SourceKind    string
	Name          string
	TargetStorage string
	// TargetPath is optional; the executor picks a default location when empty.
	TargetPath string
	// Background must be true: the handler never waits for the copy.
	Background bool
}

// Result is the initial accept/reject outcome of a submission.
type Result struct {
	Accepted bool
	// Message explains a rejection. It is empty on acceptance.
	Message string
	TaskID  int64
}

// Service accepts transfer requests.
type Service interface {
	Submit(ctx context.Context, req Request) Result
}

// Queue is the subset of queue.Store used by QueueService.
type Queue interface {
	FindActive(ctx context.Context, sourcePath, targetStorage string) (*queue.Task, error)
	Enqueue(ctx context.Context, task queue.NewTask) (*queue.Task, error)
}

// QueueService records accepted requests as pending queue tasks.
type QueueService struct {
	queue   Queue
	targets map[string]struct{}
	logger  *slog.Logger
}

// NewQueueService builds a service that accepts the given storage targets.
func NewQueueService(q Queue, targets []string, logger *slog.Logger) *QueueService {
	set := make(map[string]struct{}, len(targets))
	for _, target := range targets {
		if target = strings.TrimSpace(target); target != "" {
			set[target] = struct{}{}
		}
	}
	return &QueueService{
		queue:   q,
		targets: set,
		logger:  logging.NewComponentLogger(logger, "transfer"),
	}
}

// Submit validates req and enqueues it. It never returns an error; every
// failure becomes a rejected Result with a human-readable message.
func (s *QueueService) Submit(ctx context.Context, req Request) Result {
	logger := logging.WithContext(ctx, s.logger)
	if msg := s.validate(req); msg != "" {
		logger.Info("transfer rejected",
			logging.String(logging.FieldEventType, "transfer_rejected"),
			logging.String("source", req.SourcePath),
			logging.String("reason", msg),
		)
		return Result{Message: msg}
	}

	existing, err := s.queue.FindActive(ctx, req.SourcePath, req.TargetStorage)
	if err != nil {
		logger.Error("transfer queue lookup failed", logging.Error(err))
		return Result{Message: fmt.Sprintf("transfer queue unavailable: %v", err)}
	}
	if existing != nil {
		msg := fmt.Sprintf("already queued as task #%d (%s)", existing.ID, existing.Status)
		logger.Info("transfer rejected",
			logging.String(logging.FieldEventType, "transfer_duplicate"),
			logging.String("source", req.SourcePath),
			logging.Int64("task_id", existing.ID),
		)
		return Result{Message: msg}
	}

	channel, _ := services.ChannelFromContext(ctx)
	user, _ := services.UserFromContext(ctx)
	requestID, _ := services.RequestIDFromContext(ctx)
	task, err := s.queue.Enqueue(ctx, queue.NewTask{
		SourcePath:    req.SourcePath,
		SourceKind:    req.SourceKind,
		Name:          req.Name,
		Basename:      textutil.SanitizeFileName(req.Name),
		TargetStorage: req.TargetStorage,
		TargetPath:    req.TargetPath,
		RequestID:     requestID,
		Channel:       channel,
		UserID:        user,
	})
	if err != nil {
		logger.Error("transfer enqueue failed", logging.Error(err))
		return Result{Message: fmt.Sprintf("enqueue failed: %v", err)}
	}

	logger.Info("transfer queued",
		logging.String(logging.FieldEventType, "transfer_queued"),
		logging.Int64("task_id", task.ID),
		logging.String("source", task.SourcePath),
		logging.String("target", task.TargetStorage),
	)
	return Result{Accepted: true, TaskID: task.ID}
}

func (s *QueueService) validate(req Request) string {
	switch {
	case strings.TrimSpace(req.SourcePath) == "":
		return "source path is empty"
	case !filepath.IsAbs(req.SourcePath):
		return fmt.Sprintf("source path %q is not absolute", req.SourcePath)
	case req.SourceKind != SourceKindDir:
		return fmt.Sprintf("unsupported source kind %q", req.SourceKind)
	case strings.TrimSpace(req.Name) == "":
		return "display name is empty"
	case !req.Background:
		return "synchronous transfers are not supported"
	}
	if _, ok := s.targets[req.TargetStorage]; !ok {
		return fmt.Sprintf("unknown target storage %q", req.TargetStorage)
	}
	return ""
}
