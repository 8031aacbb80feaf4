package queue

import "context"

// Storage schedules, executes and retries submitted tasks.
// Any implementation (in-memory, persistent, remote) must honour the full contract
// for Queue to work unmodified.
type Storage interface {
	// EnqueueTask records a submission and returns once it is stored.
	// It must never wait for the task to execute.
	EnqueueTask(ctx context.Context, key string, data Data) (TaskContext, error)

	// EnqueueRemainingTasks re-activates every record that is neither finished nor stopped.
	// Calling it when nothing is pending is a no-op.
	EnqueueRemainingTasks(ctx context.Context) ([]TaskContext, error)

	// StopAllEnqueuedTasks moves every unfinished record to stopped, suppressing further
	// attempts. An attempt that is already running is not interrupted.
	StopAllEnqueuedTasks(ctx context.Context) error

	// On subscribes an observer to EventExecute or EventError.
	// Unknown events fail with ErrUnknownEvent, bad observers with ErrInvalidObserver.
	On(event Event, handler any) error
}

// StorageFactory creates the storage used by a Queue
type StorageFactory func() (Storage, error)

// Shutdowner is implemented by storages that can wait for in-flight attempts
type Shutdowner interface {
	Shutdown(ctx context.Context) error
}
