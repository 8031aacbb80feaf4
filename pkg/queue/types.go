package queue

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Data is the payload submitted with a task.
type Data map[string]any

// TaskStatus represents the lifecycle status of a task record
type TaskStatus string

const (
	TaskStatusQueued    TaskStatus = "queued"
	TaskStatusRunning   TaskStatus = "running"
	TaskStatusSucceeded TaskStatus = "succeeded"
	TaskStatusFailed    TaskStatus = "failed"
	TaskStatusStopped   TaskStatus = "stopped"
)

// Event names a storage lifecycle event that observers can subscribe to
type Event string

const (
	// EventExecute fires once per execution attempt; the attempt fails if any observer fails.
	EventExecute Event = "execute"
	// EventError fires once per failed attempt.
	EventError Event = "error"
)

// TaskContext identifies a submitted task and, during execution, carries the
// per-attempt copy of its payload.
type TaskContext struct {
	ID      uuid.UUID `json:"id"`
	Key     string    `json:"key"`
	Data    Data      `json:"data"`
	Attempt int       `json:"attempt,omitempty"`
}

// ErrorEvent is delivered to error observers after a failed attempt
type ErrorEvent struct {
	Err  error
	Task TaskContext
}

type (
	// HandlerFunc processes a task registered under a key.
	HandlerFunc func(ctx context.Context, task TaskContext) error

	// ExecuteObserver receives every execution attempt emitted by a storage.
	ExecuteObserver func(ctx context.Context, task TaskContext) error

	// ErrorObserver receives failed attempts. Its own error is logged and otherwise ignored.
	ErrorObserver func(ctx context.Context, event ErrorEvent) error
)

// Task pairs a key with its handler for batch registration
type Task struct {
	Key     string
	Handler HandlerFunc
}

// TaskInfo is a read-only snapshot of a task record
type TaskInfo struct {
	ID        uuid.UUID  `json:"id"`
	Key       string     `json:"key"`
	Status    TaskStatus `json:"status"`
	Attempts  int        `json:"attempts"`
	LastError string     `json:"last_error,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
