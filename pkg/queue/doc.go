// Package queue provides an in-process, named-task dispatcher with a pluggable
// execution backend.
//
// Callers register handlers under string keys, then enqueue work items that reference
// those keys together with a Data payload. A Storage decides how and when the work
// actually runs.
//
// The package is organised around three components:
//
//   - Queue: the user-facing dispatcher with the handler registry and error observers
//   - Storage: the contract every execution backend implements
//   - MemoryStorage: the default backend, running tasks on goroutines and retrying failures
//
// # Architecture
//
//  1. Queue validates the task key and forwards the submission to Storage.EnqueueTask,
//     which returns as soon as the task is recorded.
//  2. The storage emits an EventExecute for every attempt. Queue subscribes to it at
//     construction, resolves the handler and runs it; the handler's error decides the
//     outcome of the attempt.
//  3. A failed attempt emits EventError. Queue forwards it to the observers registered
//     with Queue.On(EventError, ...). A failing observer is logged and never affects
//     the others or the retry.
//  4. MemoryStorage retries a failed task until it succeeds or StopAllEnqueuedTasks is
//     called. By default there is no delay and no attempt limit; see WithRetryDelay and
//     WithMaxAttempts.
//
// Task records move through queued → running → succeeded|failed, with failed → queued
// on retry and any unfinished state → stopped. Succeeded records are dropped by a
// cleanup sweep; stopped records are kept and never run again.
//
// If no EventExecute observer is subscribed when an attempt is scheduled, the record
// stays queued with no error surfaced. Queue always subscribes one, so this only
// affects direct users of a storage; EnqueueRemainingTasks picks such records up later.
//
// # Usage
//
//	q, err := queue.New(queue.WithLogger(log))
//	if err != nil {
//		return err
//	}
//
//	_ = q.Register("send_email", func(ctx context.Context, task queue.TaskContext) error {
//		return mailer.Send(ctx, task.Data["to"].(string))
//	})
//
//	_ = q.On(queue.EventError, func(ctx context.Context, e queue.ErrorEvent) error {
//		log.Warn("task failed", "key", e.Task.Key, "error", e.Err)
//		return nil
//	})
//
//	task, err := q.Enqueue(ctx, "send_email", queue.Data{"to": "user@example.com"})
//
// Start and Stop only toggle the IsRunning flag. They do not gate execution.
//
// # Error Handling
//
// Configuration mistakes (unknown keys, duplicate registrations, bad observers) are
// returned synchronously and can be checked with errors.Is against the package
// sentinels, e.g. ErrTaskNotRegistered or ErrDuplicateTask. Handler failures never
// reach the caller of Enqueue; they are only visible through EventError.
package queue
