package queue

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/taskqueue/pkg/async"
	"github.com/dmitrymomot/taskqueue/pkg/logger"
)

// record is the storage-owned bookkeeping for one submitted task.
// All fields are guarded by MemoryStorage.mu.
type record struct {
	id        uuid.UUID
	key       string
	data      Data
	status    TaskStatus
	attempts  int
	lastErr   error
	createdAt time.Time

	// active is set while an execution loop owns the record, so a record never
	// has two loops and therefore never two concurrent attempts.
	active bool

	// stop is closed when the record enters Stopped, waking a loop that waits between attempts.
	stop chan struct{}
}

func newRecord(id uuid.UUID, key string, data Data) *record {
	return &record{
		id:        id,
		key:       key,
		data:      data,
		status:    TaskStatusQueued,
		createdAt: time.Now(),
		stop:      make(chan struct{}),
	}
}

func (r *record) fire(event lifecycleEvent) error {
	next, err := lifecycle.Fire(r.status, event)
	if err != nil {
		return err
	}
	r.status = next
	// Stopped is terminal, so this runs at most once per record
	if next == TaskStatusStopped {
		close(r.stop)
	}
	return nil
}

func (r *record) context() TaskContext {
	return TaskContext{ID: r.id, Key: r.key, Data: maps.Clone(r.data), Attempt: r.attempts}
}

func (r *record) info() TaskInfo {
	info := TaskInfo{
		ID:        r.id,
		Key:       r.key,
		Status:    r.status,
		Attempts:  r.attempts,
		CreatedAt: r.createdAt,
	}
	if r.lastErr != nil {
		info.LastError = r.lastErr.Error()
	}
	return info
}

// MemoryStorage is the default in-process Storage.
// Every active record is driven by its own goroutine that runs attempts until one
// succeeds or the record is stopped. Nothing survives a process restart.
type MemoryStorage struct {
	mu      sync.Mutex
	records []*record
	closed  bool

	execObservers observerList[ExecuteObserver]
	errObservers  observerList[ErrorObserver]

	retryDelay  time.Duration
	maxAttempts int
	logger      *slog.Logger

	// ctx is handed to observers. It is cancelled only when Shutdown stops waiting.
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewMemoryStorage creates a new in-memory storage
func NewMemoryStorage(opts ...MemoryStorageOption) *MemoryStorage {
	options := &memoryStorageOptions{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &MemoryStorage{
		retryDelay:  options.retryDelay,
		maxAttempts: options.maxAttempts,
		logger:      options.logger.With(logger.Component("memory_storage")),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// NewMemoryStorageFromConfig creates a storage using the retry policy from cfg.
// Explicit options win over the config.
func NewMemoryStorageFromConfig(cfg Config, opts ...MemoryStorageOption) *MemoryStorage {
	return NewMemoryStorage(append([]MemoryStorageOption{
		WithRetryDelay(cfg.RetryDelay),
		WithMaxAttempts(cfg.MaxAttempts),
	}, opts...)...)
}

// On implements Storage
func (ms *MemoryStorage) On(event Event, handler any) error {
	switch event {
	case EventExecute:
		obs, err := asExecuteObserver(handler)
		if err != nil {
			return err
		}
		ms.execObservers.add(obs)
	case EventError:
		obs, err := asErrorObserver(handler)
		if err != nil {
			return err
		}
		ms.errObservers.add(obs)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEvent, event)
	}
	return nil
}

// EnqueueTask implements Storage.
// The first attempt runs on a new goroutine, never inline with this call.
func (ms *MemoryStorage) EnqueueTask(ctx context.Context, key string, data Data) (TaskContext, error) {
	if err := ctx.Err(); err != nil {
		return TaskContext{}, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return TaskContext{}, fmt.Errorf("failed to generate task id: %w", err)
	}

	if data == nil {
		data = Data{}
	}

	rec := newRecord(id, key, maps.Clone(data))

	ms.mu.Lock()
	if ms.closed {
		ms.mu.Unlock()
		return TaskContext{}, ErrStorageClosed
	}
	ms.records = append(ms.records, rec)
	ms.activate(rec)
	task := rec.context()
	ms.mu.Unlock()

	go ms.run(rec)

	ms.logger.DebugContext(ctx, "task enqueued",
		logger.TaskID(id),
		logger.TaskKey(key))

	return task, nil
}

// EnqueueRemainingTasks implements Storage.
// Records that already have a running loop are reported but not scheduled twice.
func (ms *MemoryStorage) EnqueueRemainingTasks(ctx context.Context) ([]TaskContext, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ms.mu.Lock()
	if ms.closed {
		ms.mu.Unlock()
		return nil, ErrStorageClosed
	}

	var (
		remaining []TaskContext
		idle      []*record
	)
	for _, rec := range ms.records {
		if rec.status.IsTerminal() {
			continue
		}
		remaining = append(remaining, rec.context())
		if !rec.active {
			ms.activate(rec)
			idle = append(idle, rec)
		}
	}
	ms.mu.Unlock()

	for _, rec := range idle {
		go ms.run(rec)
	}

	if len(idle) > 0 {
		ms.logger.InfoContext(ctx, "resumed remaining tasks",
			slog.Int("remaining", len(remaining)),
			slog.Int("rescheduled", len(idle)))
	}

	return remaining, nil
}

// StopAllEnqueuedTasks implements Storage
func (ms *MemoryStorage) StopAllEnqueuedTasks(ctx context.Context) error {
	ms.mu.Lock()
	stopped := 0
	for _, rec := range ms.records {
		// Succeeded and already stopped records have no stop edge
		if !lifecycle.CanFire(rec.status, eventStop) {
			continue
		}
		_ = rec.fire(eventStop)
		stopped++
	}
	ms.mu.Unlock()

	if stopped > 0 {
		ms.logger.InfoContext(ctx, "stopped enqueued tasks", slog.Int("stopped", stopped))
	}

	return nil
}

// Shutdown stops every task and waits for in-flight attempts to settle.
// When ctx expires first, the context passed to observers is cancelled and
// ErrShutdownTimeout is returned. The storage accepts no new tasks afterwards.
// A handler that ignores cancellation keeps its goroutine, and the one waiting
// for it, alive until it returns.
func (ms *MemoryStorage) Shutdown(ctx context.Context) error {
	ms.mu.Lock()
	ms.closed = true
	ms.mu.Unlock()

	if err := ms.StopAllEnqueuedTasks(ctx); err != nil {
		return err
	}

	done := make(chan struct{})
	go func() {
		ms.wg.Wait()
		close(done)
	}()

	defer ms.cancel()

	select {
	case <-done:
		ms.logger.InfoContext(ctx, "memory storage shut down")
		return nil
	case <-ctx.Done():
		ms.logger.WarnContext(ctx, "memory storage shutdown timed out, cancelling running tasks")
		return fmt.Errorf("%w: %w", ErrShutdownTimeout, ctx.Err())
	}
}

// Tasks returns a snapshot of every record still held by the storage, in submission order
func (ms *MemoryStorage) Tasks() []TaskInfo {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	out := make([]TaskInfo, 0, len(ms.records))
	for _, rec := range ms.records {
		out = append(out, rec.info())
	}
	return out
}

// Stats counts records per status
func (ms *MemoryStorage) Stats() map[TaskStatus]int {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	stats := make(map[TaskStatus]int)
	for _, rec := range ms.records {
		stats[rec.status]++
	}
	return stats
}

// activate hands the record to a new execution loop. Must hold ms.mu.
func (ms *MemoryStorage) activate(rec *record) {
	rec.active = true
	ms.wg.Add(1)
}

// run is the execution loop of a single record.
// Retries iterate instead of recursing, so long failure streaks don't grow the stack.
func (ms *MemoryStorage) run(rec *record) {
	defer ms.wg.Done()

	for attempt := 1; ; attempt++ {
		task, observers, ok := ms.beginAttempt(rec)
		if !ok {
			return
		}

		start := time.Now()
		err := ms.dispatch(task, observers)
		if err == nil {
			ms.handleSuccess(rec, task, time.Since(start))
			return
		}

		ms.handleFailure(rec, task, err, time.Since(start))

		if !ms.shouldRetry(rec, attempt) {
			return
		}

		if ms.retryDelay > 0 {
			select {
			case <-time.After(ms.retryDelay):
			case <-rec.stop:
				ms.release(rec)
				return
			case <-ms.ctx.Done():
				ms.release(rec)
				return
			}
		}
	}
}

// beginAttempt moves the record to running and builds the attempt context.
// It returns false when the loop must exit; the record is released in that case.
func (ms *MemoryStorage) beginAttempt(rec *record) (TaskContext, []ExecuteObserver, bool) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	// Closes the window between a stop request and a pending attempt
	if rec.status == TaskStatusStopped || ms.ctx.Err() != nil {
		rec.active = false
		return TaskContext{}, nil, false
	}

	if err := rec.fire(eventSchedule); err != nil {
		rec.active = false
		ms.logger.Error("unexpected task state at schedule",
			logger.TaskID(rec.id),
			logger.TaskStatus(string(rec.status)),
			logger.Error(err))
		return TaskContext{}, nil, false
	}

	observers := ms.execObservers.snapshot()
	if len(observers) == 0 {
		// Nothing can drive the record; it stays queued until EnqueueRemainingTasks
		rec.active = false
		ms.logger.Warn("no execute observers subscribed, task left queued",
			logger.TaskID(rec.id),
			logger.TaskKey(rec.key))
		return TaskContext{}, nil, false
	}

	_ = rec.fire(eventStart)
	rec.attempts++

	return rec.context(), observers, true
}

// dispatch emits the attempt to every execute observer and waits for all of them.
// Each observer gets its own shallow copy of the payload.
func (ms *MemoryStorage) dispatch(task TaskContext, observers []ExecuteObserver) error {
	futures := make([]*async.Future[struct{}], len(observers))
	for i, obs := range observers {
		t := task
		t.Data = maps.Clone(task.Data)
		futures[i] = async.Async(ms.ctx, t, func(ctx context.Context, t TaskContext) (struct{}, error) {
			return struct{}{}, obs(ctx, t)
		})
	}

	_, err := async.AwaitAll(futures...)
	return err
}

func (ms *MemoryStorage) handleSuccess(rec *record, task TaskContext, duration time.Duration) {
	ms.mu.Lock()
	rec.active = false
	err := rec.fire(eventSucceed)
	if err == nil {
		// Cleanup sweep bounds memory; stopped and failed records stay
		ms.records = slices.DeleteFunc(ms.records, func(r *record) bool {
			return r.status == TaskStatusSucceeded
		})
	}
	ms.mu.Unlock()

	if err != nil {
		ms.logger.Info("task attempt succeeded after stop",
			logger.TaskID(task.ID),
			logger.TaskKey(task.Key),
			logger.Attempt(task.Attempt))
		return
	}

	ms.logger.Info("task completed successfully",
		logger.TaskID(task.ID),
		logger.TaskKey(task.Key),
		logger.Attempt(task.Attempt),
		logger.Duration(duration))
}

func (ms *MemoryStorage) handleFailure(rec *record, task TaskContext, execErr error, duration time.Duration) {
	ms.mu.Lock()
	rec.lastErr = execErr
	// A stopped record keeps its status; the failure is still reported
	_ = rec.fire(eventFail)
	status := rec.status
	ms.mu.Unlock()

	ms.logger.Warn("task attempt failed",
		logger.TaskID(task.ID),
		logger.TaskKey(task.Key),
		logger.TaskStatus(string(status)),
		logger.Attempt(task.Attempt),
		logger.Duration(duration),
		logger.Error(execErr))

	event := ErrorEvent{Err: execErr, Task: task}
	for _, obs := range ms.errObservers.snapshot() {
		if err := callObserver(func() error { return obs(ms.ctx, event) }); err != nil {
			ms.logger.Error("error observer failed",
				logger.TaskID(task.ID),
				logger.TaskKey(task.Key),
				logger.Error(err))
		}
	}
}

// shouldRetry decides whether the loop keeps the record after a failed attempt.
func (ms *MemoryStorage) shouldRetry(rec *record, attempt int) bool {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if rec.status == TaskStatusStopped {
		rec.active = false
		return false
	}

	if ms.maxAttempts > 0 && attempt >= ms.maxAttempts {
		rec.active = false
		ms.logger.Warn("task exhausted retry attempts",
			logger.TaskID(rec.id),
			logger.TaskKey(rec.key),
			slog.Int("max_attempts", ms.maxAttempts))
		return false
	}

	return true
}

func (ms *MemoryStorage) release(rec *record) {
	ms.mu.Lock()
	rec.active = false
	ms.mu.Unlock()
}
