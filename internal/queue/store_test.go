package queue_test

import (
	"context"
	"path/filepath"
	"testing"

	"mediato115/internal/queue"
	"mediato115/internal/testsupport"
)

func newTask(path string) queue.NewTask {
	return queue.NewTask{
		SourcePath:    path,
		Name:          filepath.Base(path),
		TargetStorage: "u115",
		RequestID:     "req-1",
		Channel:       "console",
	}
}

func TestEnqueueAndGet(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenQueue(t, cfg)
	ctx := context.Background()

	task, err := store.Enqueue(ctx, newTask("/data/movies/Inception"))
	if err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	if task.ID == 0 || task.Status != queue.StatusPending {
		t.Fatalf("unexpected task: %#v", task)
	}
	if task.SourceKind != queue.SourceKindDir || task.SourceStorage != "local" {
		t.Fatalf("expected defaults to be applied, got %#v", task)
	}
	if task.CreatedAt.IsZero() {
		t.Fatal("expected created timestamp")
	}

	fetched, err := store.GetByID(ctx, task.ID)
	if err != nil || fetched == nil || fetched.Name != "Inception" || fetched.RequestID != "req-1" {
		t.Fatalf("unexpected fetched task: %#v (%v)", fetched, err)
	}

	missing, err := store.GetByID(ctx, 999)
	if err != nil || missing != nil {
		t.Fatalf("expected nil for missing task, got %#v (%v)", missing, err)
	}
}

func TestEnqueueRequiresSourceAndTarget(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenQueue(t, cfg)

	if _, err := store.Enqueue(context.Background(), queue.NewTask{TargetStorage: "u115"}); err == nil {
		t.Fatal("expected error without source path")
	}
	if _, err := store.Enqueue(context.Background(), queue.NewTask{SourcePath: "/x"}); err == nil {
		t.Fatal("expected error without target storage")
	}
}

func TestFindActiveIgnoresFinishedTasks(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenQueue(t, cfg)
	ctx := context.Background()

	task, err := store.Enqueue(ctx, newTask("/data/tv/Dark"))
	if err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	found, err := store.FindActive(ctx, "/data/tv/Dark", "u115")
	if err != nil || found == nil || found.ID != task.ID {
		t.Fatalf("expected active task, got %#v (%v)", found, err)
	}
	if other, _ := store.FindActive(ctx, "/data/tv/Dark", "gdrive"); other != nil {
		t.Fatalf("expected no task for other target, got %#v", other)
	}

	if err := store.UpdateStatus(ctx, task.ID, queue.StatusRunning, ""); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}
	if found, _ := store.FindActive(ctx, "/data/tv/Dark", "u115"); found == nil {
		t.Fatal("running task should still be active")
	}

	if err := store.UpdateStatus(ctx, task.ID, queue.StatusFailed, "disk full"); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}
	if found, _ := store.FindActive(ctx, "/data/tv/Dark", "u115"); found != nil {
		t.Fatalf("failed task should not be active, got %#v", found)
	}
	failed, _ := store.GetByID(ctx, task.ID)
	if failed.ErrorMessage != "disk full" {
		t.Fatalf("expected error message to be stored, got %q", failed.ErrorMessage)
	}
}

func TestUpdateStatusMissingTask(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenQueue(t, cfg)
	if err := store.UpdateStatus(context.Background(), 42, queue.StatusCompleted, ""); err == nil {
		t.Fatal("expected error for missing task")
	}
}

func TestListClearAndStats(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenQueue(t, cfg)
	ctx := context.Background()

	var ids []int64
	for _, path := range []string{"/a", "/b", "/c"} {
		task, err := store.Enqueue(ctx, newTask(path))
		if err != nil {
			t.Fatalf("Enqueue failed: %v", err)
		}
		ids = append(ids, task.ID)
	}
	if err := store.UpdateStatus(ctx, ids[1], queue.StatusCompleted, ""); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}

	pending, err := store.List(ctx, queue.StatusPending)
	if err != nil || len(pending) != 2 || pending[0].SourcePath != "/a" || pending[1].SourcePath != "/c" {
		t.Fatalf("unexpected pending list: %#v (%v)", pending, err)
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats[queue.StatusPending] != 2 || stats[queue.StatusCompleted] != 1 {
		t.Fatalf("unexpected stats: %v", stats)
	}

	removed, err := store.Clear(ctx, queue.StatusCompleted)
	if err != nil || removed != 1 {
		t.Fatalf("Clear(completed) = %d, %v", removed, err)
	}
	removed, err = store.Remove(ctx, ids[0])
	if err != nil || removed != 1 {
		t.Fatalf("Remove = %d, %v", removed, err)
	}
	removed, err = store.Clear(ctx)
	if err != nil || removed != 1 {
		t.Fatalf("Clear() = %d, %v", removed, err)
	}
	all, _ := store.List(ctx)
	if len(all) != 0 {
		t.Fatalf("expected empty queue, got %#v", all)
	}
}

func TestReopenKeepsSchema(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if _, err := store.Enqueue(context.Background(), newTask("/a")); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	_ = store.Close()

	reopened := testsupport.MustOpenQueue(t, cfg)
	tasks, err := reopened.List(context.Background())
	if err != nil || len(tasks) != 1 {
		t.Fatalf("expected persisted task, got %#v (%v)", tasks, err)
	}
}

func TestParseStatus(t *testing.T) {
	status, err := queue.ParseStatus(" Failed ")
	if err != nil || status != queue.StatusFailed {
		t.Fatalf("ParseStatus = %q, %v", status, err)
	}
	if _, err := queue.ParseStatus("bogus"); err == nil {
		t.Fatal("expected error for unknown status")
	}
	if !queue.StatusRunning.IsActive() || queue.StatusCompleted.IsActive() {
		t.Fatal("unexpected IsActive results")
	}
}
