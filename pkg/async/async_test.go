package async_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrymomot/taskqueue/pkg/async"
)

// TestAsyncFunctionality tests the basic functionality of the Async helper.
func TestAsyncFunctionality(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	futureString := async.Async(ctx, 42, func(ctx context.Context, num int) (string, error) {
		time.Sleep(20 * time.Millisecond)
		return fmt.Sprintf("Number: %d", num), nil
	})

	futureBool := async.Async(ctx, "test", func(ctx context.Context, s string) (bool, error) {
		return len(s) > 0, nil
	})

	resultString, errString := futureString.Await()
	resultBool, errBool := futureBool.Await()

	if errString != nil || resultString != "Number: 42" {
		t.Errorf("Expected 'Number: 42', got '%s', error: %v", resultString, errString)
	}

	if errBool != nil || !resultBool {
		t.Errorf("Expected true, got %v, error: %v", resultBool, errBool)
	}
}

func TestAsyncPreCancelledContext(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var called atomic.Bool
	future := async.Async(ctx, 1, func(ctx context.Context, n int) (int, error) {
		called.Store(true)
		return n, nil
	})

	_, err := future.Await()
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if called.Load() {
		t.Error("Function must not run when context is already cancelled")
	}
}

func TestAsyncErrorPropagation(t *testing.T) {
	t.Parallel()
	errBoom := errors.New("boom")

	future := async.Async(context.Background(), 0, func(context.Context, int) (int, error) {
		return 0, errBoom
	})

	if _, err := future.Await(); !errors.Is(err, errBoom) {
		t.Errorf("Expected %v, got %v", errBoom, err)
	}
}

func TestAsyncPanicRecovery(t *testing.T) {
	t.Parallel()

	future := async.Async(context.Background(), 0, func(context.Context, int) (int, error) {
		panic("handler exploded")
	})

	_, err := future.Await()
	if !errors.Is(err, async.ErrPanic) {
		t.Fatalf("Expected ErrPanic, got %v", err)
	}
	if err.Error() != "async: function panicked: handler exploded" {
		t.Errorf("Unexpected error message: %q", err.Error())
	}
}

func TestIsComplete(t *testing.T) {
	t.Parallel()
	release := make(chan struct{})

	future := async.Async(context.Background(), 0, func(context.Context, int) (int, error) {
		<-release
		return 1, nil
	})

	if future.IsComplete() {
		t.Error("Expected future to be pending")
	}

	close(release)
	_, _ = future.Await()

	if !future.IsComplete() {
		t.Error("Expected future to be complete after Await")
	}
}

func TestAwaitWithTimeout(t *testing.T) {
	t.Parallel()

	slow := async.Async(context.Background(), 0, func(context.Context, int) (int, error) {
		time.Sleep(200 * time.Millisecond)
		return 1, nil
	})

	if _, err := slow.AwaitWithTimeout(10 * time.Millisecond); !errors.Is(err, async.ErrTimeout) {
		t.Errorf("Expected ErrTimeout, got %v", err)
	}

	fast := async.Async(context.Background(), 7, func(_ context.Context, n int) (int, error) {
		return n, nil
	})

	res, err := fast.AwaitWithTimeout(time.Second)
	if err != nil || res != 7 {
		t.Errorf("Expected 7, got %d, error: %v", res, err)
	}
}

// TestAwaitAll verifies that every future settles before AwaitAll returns,
// even when an earlier one has already failed.
func TestAwaitAll(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	errFirst := errors.New("first failed")
	errThird := errors.New("third failed")

	var slowFinished atomic.Bool

	f1 := async.Async(ctx, 1, func(context.Context, int) (int, error) {
		return 0, errFirst
	})
	f2 := async.Async(ctx, 2, func(_ context.Context, n int) (int, error) {
		time.Sleep(50 * time.Millisecond)
		slowFinished.Store(true)
		return n, nil
	})
	f3 := async.Async(ctx, 3, func(context.Context, int) (int, error) {
		return 0, errThird
	})

	results, err := async.AwaitAll(f1, f2, f3)

	if !slowFinished.Load() {
		t.Error("AwaitAll returned before the slow future settled")
	}
	if !errors.Is(err, errFirst) || !errors.Is(err, errThird) {
		t.Errorf("Expected joined error with both failures, got %v", err)
	}
	if len(results) != 3 || results[1] != 2 {
		t.Errorf("Unexpected results: %v", results)
	}
}

func TestAwaitAllEmpty(t *testing.T) {
	t.Parallel()

	results, err := async.AwaitAll[int]()
	if err != nil {
		t.Errorf("Expected nil error, got %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Expected no results, got %v", results)
	}
}
