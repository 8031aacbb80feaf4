// Package async provides generic helpers for running computations in goroutines and
// waiting for their completion.
//
// Async starts a function in its own goroutine and immediately returns a *Future. The
// caller waits with Await, bounds the wait with AwaitWithTimeout, or polls with
// IsComplete. AwaitAll collects a group of futures and, unlike a fail-fast join, only
// returns once every one of them has settled.
//
// # Usage
//
//	f1 := async.Async(ctx, "a", work)
//	f2 := async.Async(ctx, "b", work)
//
//	results, err := async.AwaitAll(f1, f2) // err joins every failure
//
// # Error Handling
//
// A panic in the supplied function is recovered and reported as an error wrapping
// ErrPanic. A context that is already cancelled completes the future with ctx.Err()
// without running the function.
package async
