package queue

import "errors"

var (
	// ErrStorageNil is returned when a nil storage is provided or produced by a factory
	ErrStorageNil = errors.New("storage cannot be nil")

	// ErrStorageClosed is returned when a task is submitted to a storage that was shut down
	ErrStorageClosed = errors.New("storage is shut down")

	// ErrTaskNotRegistered is returned when enqueuing or executing a key without a handler
	ErrTaskNotRegistered = errors.New("no handler registered for task")

	// ErrDuplicateTask is returned when a key is registered more than once
	ErrDuplicateTask = errors.New("task already registered")

	// ErrInvalidHandler is returned when a task handler is nil
	ErrInvalidHandler = errors.New("task handler must be a non-nil function")

	// ErrEmptyTaskKey is returned when registering a task without a key
	ErrEmptyTaskKey = errors.New("task key cannot be empty")

	// ErrNoTasksToRegister is returned when batch registration is called with no tasks
	ErrNoTasksToRegister = errors.New("no tasks to register")

	// ErrUnknownEvent is returned when subscribing to an event that is not exposed
	ErrUnknownEvent = errors.New("unknown event")

	// ErrInvalidObserver is returned when an observer is nil or has the wrong signature
	ErrInvalidObserver = errors.New("invalid observer")

	// ErrObserverPanic wraps a panic recovered from an observer
	ErrObserverPanic = errors.New("observer panicked")

	// ErrShutdownTimeout is returned when in-flight attempts outlive the shutdown context
	ErrShutdownTimeout = errors.New("shutdown timed out waiting for running tasks")
)
