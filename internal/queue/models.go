package queue

import (
	"fmt"
	"strings"
	"time"
)

// Status represents the lifecycle of a transfer task.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

var allStatuses = []Status{
	StatusPending,
	StatusRunning,
	StatusCompleted,
	StatusFailed,
}

// activeStatuses are the states in which a task still owns its source.
var activeStatuses = []Status{StatusPending, StatusRunning}

// AllStatuses returns every known status in lifecycle order.
func AllStatuses() []Status {
	out := make([]Status, len(allStatuses))
	copy(out, allStatuses)
	return out
}

// ParseStatus converts a user-supplied status name.
func ParseStatus(raw string) (Status, error) {
	normalized := Status(strings.ToLower(strings.TrimSpace(raw)))
	for _, status := range allStatuses {
		if status == normalized {
			return status, nil
		}
	}
	return "", fmt.Errorf("unknown status %q", raw)
}

// IsActive reports whether the status still blocks a duplicate submission.
func (s Status) IsActive() bool {
	return s == StatusPending || s == StatusRunning
}

// SourceKindDir marks a task whose source is a directory.
const SourceKindDir = "dir"

// NewTask describes a task to enqueue.
type NewTask struct {
	SourceStorage string
	SourcePath    string
	SourceKind    string
	Name          string
	Basename      string
	TargetStorage string
	TargetPath    string
	RequestID     string
	Channel       string
	UserID        string
}

// Task is a persisted transfer task.
type Task struct {
	ID            int64
	SourceStorage string
	SourcePath    string
	SourceKind    string
	Name          string
	Basename      string
	TargetStorage string
	TargetPath    string
	Status        Status
	ErrorMessage  string
	RequestID     string
	Channel       string
	UserID        string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Summary is a one-line description used in CLI output and logs.
func (t Task) Summary() string {
	return fmt.Sprintf("#%d %s -> %s (%s)", t.ID, t.Name, t.TargetStorage, t.Status)
}
