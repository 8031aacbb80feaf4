package queue

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync/atomic"
	"time"

	"github.com/dmitrymomot/taskqueue/pkg/logger"
)

// Queue binds a handler registry to a Storage.
// It validates submissions, executes tasks the storage emits and fans failures
// out to error observers.
type Queue struct {
	storage      Storage
	registry     *registry
	errObservers observerList[ErrorObserver]

	running         atomic.Bool
	shutdownTimeout time.Duration
	logger          *slog.Logger
}

// New creates a Queue and subscribes it to the storage's execute and error events
func New(opts ...Option) (*Queue, error) {
	options := &queueOptions{
		shutdownTimeout: 30 * time.Second,
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	storage := options.storage
	if storage == nil && options.factory != nil {
		s, err := options.factory()
		if err != nil {
			return nil, fmt.Errorf("failed to create storage: %w", err)
		}
		if s == nil {
			return nil, ErrStorageNil
		}
		storage = s
	}
	if storage == nil {
		memoryOpts := append([]MemoryStorageOption{WithStorageLogger(options.logger)}, options.memoryOpts...)
		storage = NewMemoryStorage(memoryOpts...)
	}

	q := &Queue{
		storage:         storage,
		registry:        newRegistry(),
		shutdownTimeout: options.shutdownTimeout,
		logger:          options.logger.With(logger.Component("queue")),
	}

	// The execute bridge goes last: once attached, the storage runs tasks through this queue
	if err := storage.On(EventError, ErrorObserver(q.dispatchError)); err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s events: %w", EventError, err)
	}
	if err := storage.On(EventExecute, ExecuteObserver(q.execute)); err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s events: %w", EventExecute, err)
	}

	return q, nil
}

// Storage returns the storage the queue runs on
func (q *Queue) Storage() Storage {
	return q.storage
}

// Register registers a single task handler
func (q *Queue) Register(key string, handler HandlerFunc) error {
	return q.registry.register(Task{Key: key, Handler: handler})
}

// RegisterTasks registers several handlers at once. Nothing is registered if any entry is invalid.
func (q *Queue) RegisterTasks(tasks ...Task) error {
	return q.registry.register(tasks...)
}

// RegisterMap registers every key/handler pair of m. Nothing is registered if any entry is invalid.
func (q *Queue) RegisterMap(m map[string]HandlerFunc) error {
	tasks := make([]Task, 0, len(m))
	for _, key := range slices.Sorted(maps.Keys(m)) {
		tasks = append(tasks, Task{Key: key, Handler: m[key]})
	}
	return q.registry.register(tasks...)
}

// Registered returns the registered task keys in sorted order
func (q *Queue) Registered() []string {
	return q.registry.keys()
}

// Enqueue submits a task. It fails with ErrTaskNotRegistered before touching the
// storage when key has no handler. Nil data is submitted as an empty payload.
func (q *Queue) Enqueue(ctx context.Context, key string, data Data) (TaskContext, error) {
	if _, ok := q.registry.resolve(key); !ok {
		return TaskContext{}, fmt.Errorf("%w: %q", ErrTaskNotRegistered, key)
	}

	if data == nil {
		data = Data{}
	}

	task, err := q.storage.EnqueueTask(ctx, key, data)
	if err != nil {
		return TaskContext{}, fmt.Errorf("failed to enqueue task %q: %w", key, err)
	}

	return task, nil
}

// On subscribes an observer to the queue's error event, the only event it exposes.
// The observer may be an ErrorObserver or a func(context.Context, ErrorEvent) error.
func (q *Queue) On(event Event, handler any) error {
	if event != EventError {
		return fmt.Errorf("%w: %q (queue only exposes %q)", ErrUnknownEvent, event, EventError)
	}

	obs, err := asErrorObserver(handler)
	if err != nil {
		return err
	}

	q.errObservers.add(obs)
	return nil
}

// Start marks the queue as running. Returns false if it already was.
// The flag is bookkeeping only: the storage executes tasks regardless.
func (q *Queue) Start() bool {
	return q.running.CompareAndSwap(false, true)
}

// Stop marks the queue as not running. Returns false if it already was.
// It does not pause the storage; use StopAll or Shutdown for that.
func (q *Queue) Stop() bool {
	return q.running.CompareAndSwap(true, false)
}

// IsRunning reports the flag toggled by Start and Stop
func (q *Queue) IsRunning() bool {
	return q.running.Load()
}

// StopAll stops every unfinished task in the storage
func (q *Queue) StopAll(ctx context.Context) error {
	return q.storage.StopAllEnqueuedTasks(ctx)
}

// Resume re-activates every unfinished, non-stopped task in the storage
func (q *Queue) Resume(ctx context.Context) ([]TaskContext, error) {
	return q.storage.EnqueueRemainingTasks(ctx)
}

// Shutdown marks the queue stopped and stops the storage. Storages implementing
// Shutdowner also wait for in-flight attempts.
func (q *Queue) Shutdown(ctx context.Context) error {
	q.Stop()

	if s, ok := q.storage.(Shutdowner); ok {
		return s.Shutdown(ctx)
	}
	return q.storage.StopAllEnqueuedTasks(ctx)
}

// Run starts the queue and returns a function suitable for errgroup.
// The function blocks until ctx is done, then shuts down within the shutdown timeout.
func (q *Queue) Run(ctx context.Context) func() error {
	return func() error {
		q.Start()
		q.logger.InfoContext(ctx, "queue started", slog.Any("tasks", q.Registered()))

		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), q.shutdownTimeout)
		defer cancel()

		if err := q.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("queue shutdown: %w", err)
		}

		q.logger.Info("queue stopped")
		return nil
	}
}

// execute resolves the handler for an attempt emitted by the storage.
// Its result decides whether the storage retries.
func (q *Queue) execute(ctx context.Context, task TaskContext) error {
	handler, ok := q.registry.resolve(task.Key)
	if !ok {
		return fmt.Errorf("%w: %q", ErrTaskNotRegistered, task.Key)
	}
	return handler(ctx, task)
}

// dispatchError fans a failed attempt out to the queue's error observers.
// A failing observer is logged and never stops the others.
func (q *Queue) dispatchError(ctx context.Context, event ErrorEvent) error {
	for _, obs := range q.errObservers.snapshot() {
		if err := callObserver(func() error { return obs(ctx, event) }); err != nil {
			q.logger.ErrorContext(ctx, "error observer failed",
				logger.TaskID(event.Task.ID),
				logger.TaskKey(event.Task.Key),
				logger.Error(err))
		}
	}
	return nil
}
