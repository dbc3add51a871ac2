// Package queue carries annotation tasks from the job API to the workers and
// stores their outcome for status lookups.
package queue

import (
	"context"
	"errors"
	"time"

	"github.com/agenthands/annotator/internal/core/model"
)

// ErrNoTask is returned by Dequeue when nothing arrived within the wait.
var ErrNoTask = errors.New("queue: no task available")

type Status string

const (
	StatusPending Status = "PENDING"
	StatusStarted Status = "STARTED"
	StatusSuccess Status = "SUCCESS"
	StatusFailure Status = "FAILURE"
)

// Task is one queued pipeline run.
type Task struct {
	ID         string        `json:"id"`
	Edges      []model.Edge  `json:"edges"`
	Directed   bool          `json:"directed"`
	Timeout    time.Duration `json:"timeout"`
	EnqueuedAt time.Time     `json:"enqueued_at"`
}

// TaskState is what a status lookup reports for a task.
type TaskState struct {
	ID        string            `json:"task_id"`
	Status    Status            `json:"status"`
	Result    *model.Annotation `json:"result,omitempty"`
	Error     string            `json:"error,omitempty"`
	UpdatedAt time.Time         `json:"updated_at"`
}

type Broker interface {
	Enqueue(ctx context.Context, task Task) error
	// Dequeue blocks up to wait for the next task and returns ErrNoTask if none came.
	Dequeue(ctx context.Context, wait time.Duration) (*Task, error)
	SetState(ctx context.Context, state TaskState) error
	// State reports StatusPending for ids it has never seen.
	State(ctx context.Context, id string) (TaskState, error)
	Ping(ctx context.Context) error
	Close() error
}
