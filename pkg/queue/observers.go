package queue

import (
	"context"
	"fmt"
	"sync"
)

// observerList is an append-only, insertion-ordered list of observers.
// Dispatch iterates a snapshot, so subscriptions made during a pass only affect later passes.
type observerList[T any] struct {
	mu    sync.RWMutex
	items []T
}

func (l *observerList[T]) add(item T) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = append(l.items, item)
}

func (l *observerList[T]) snapshot() []T {
	l.mu.RLock()
	defer l.mu.RUnlock()
	// Clip so an append on the snapshot can never write into the shared backing array
	return l.items[:len(l.items):len(l.items)]
}

// callObserver runs fn, converting a panic into an error wrapping ErrObserverPanic.
func callObserver(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrObserverPanic, r)
		}
	}()
	return fn()
}

func asExecuteObserver(handler any) (ExecuteObserver, error) {
	var obs ExecuteObserver
	switch h := handler.(type) {
	case ExecuteObserver:
		obs = h
	case HandlerFunc:
		obs = ExecuteObserver(h)
	case func(context.Context, TaskContext) error:
		obs = h
	default:
		return nil, fmt.Errorf("%w: %s observer must be func(context.Context, TaskContext) error, got %T",
			ErrInvalidObserver, EventExecute, handler)
	}
	if obs == nil {
		return nil, fmt.Errorf("%w: %s observer is nil", ErrInvalidObserver, EventExecute)
	}
	return obs, nil
}

func asErrorObserver(handler any) (ErrorObserver, error) {
	var obs ErrorObserver
	switch h := handler.(type) {
	case ErrorObserver:
		obs = h
	case func(context.Context, ErrorEvent) error:
		obs = h
	default:
		return nil, fmt.Errorf("%w: %s observer must be func(context.Context, ErrorEvent) error, got %T",
			ErrInvalidObserver, EventError, handler)
	}
	if obs == nil {
		return nil, fmt.Errorf("%w: %s observer is nil", ErrInvalidObserver, EventError)
	}
	return obs, nil
}
