package transfer_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"mediato115/internal/logging"
	"mediato115/internal/queue"
	"mediato115/internal/services"
	"mediato115/internal/testsupport"
	"mediato115/internal/transfer"
)

func validRequest() transfer.Request {
	return transfer.Request{
		SourcePath:    "/data/movies/Inception",
		SourceKind:    transfer.SourceKindDir,
		Name:          "Inception",
		TargetStorage: "u115",
		Background:    true,
	}
}

func TestSubmitQueuesPendingTask(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenQueue(t, cfg)
	svc := transfer.NewQueueService(store, []string{"u115"}, logging.NewNop())

	ctx := services.WithRequestID(context.Background(), "req-9")
	ctx = services.WithChannel(ctx, "telegram")
	result := svc.Submit(ctx, validRequest())
	if !result.Accepted || result.Message != "" || result.TaskID == 0 {
		t.Fatalf("unexpected result: %+v", result)
	}

	task, err := store.GetByID(context.Background(), result.TaskID)
	if err != nil || task == nil {
		t.Fatalf("expected stored task, got %#v (%v)", task, err)
	}
	if task.Status != queue.StatusPending || task.RequestID != "req-9" || task.Channel != "telegram" {
		t.Fatalf("unexpected task: %#v", task)
	}
}

func TestSubmitRejectsDuplicateActiveTask(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenQueue(t, cfg)
	svc := transfer.NewQueueService(store, []string{"u115"}, nil)

	first := svc.Submit(context.Background(), validRequest())
	if !first.Accepted {
		t.Fatalf("first submit rejected: %+v", first)
	}
	second := svc.Submit(context.Background(), validRequest())
	if second.Accepted || !strings.Contains(second.Message, "already queued") {
		t.Fatalf("expected duplicate rejection, got %+v", second)
	}

	if err := store.UpdateStatus(context.Background(), first.TaskID, queue.StatusCompleted, ""); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}
	third := svc.Submit(context.Background(), validRequest())
	if !third.Accepted {
		t.Fatalf("expected resubmission after completion, got %+v", third)
	}
}

func TestSubmitValidation(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenQueue(t, cfg)
	svc := transfer.NewQueueService(store, []string{"u115"}, nil)

	tests := []struct {
		name   string
		mutate func(*transfer.Request)
		want   string
	}{
		{"empty source", func(r *transfer.Request) { r.SourcePath = "" }, "source path is empty"},
		{"relative source", func(r *transfer.Request) { r.SourcePath = "movies/x" }, "not absolute"},
		{"file kind", func(r *transfer.Request) { r.SourceKind = "file" }, "unsupported source kind"},
		{"no name", func(r *transfer.Request) { r.Name = " " }, "display name is empty"},
		{"sync", func(r *transfer.Request) { r.Background = false }, "synchronous transfers are not supported"},
		{"unknown target", func(r *transfer.Request) { r.TargetStorage = "gdrive" }, "unknown target storage"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest()
			tc.mutate(&req)
			result := svc.Submit(context.Background(), req)
			if result.Accepted || !strings.Contains(result.Message, tc.want) {
				t.Fatalf("expected rejection containing %q, got %+v", tc.want, result)
			}
		})
	}
}

type failingQueue struct{}

func (failingQueue) FindActive(context.Context, string, string) (*queue.Task, error) {
	return nil, nil
}

func (failingQueue) Enqueue(context.Context, queue.NewTask) (*queue.Task, error) {
	return nil, errors.New("disk full")
}

func TestSubmitReportsEnqueueFailure(t *testing.T) {
	svc := transfer.NewQueueService(failingQueue{}, []string{"u115"}, nil)
	result := svc.Submit(context.Background(), validRequest())
	if result.Accepted || !strings.Contains(result.Message, "disk full") {
		t.Fatalf("expected failure message with cause, got %+v", result)
	}
}
