package queue

import (
	"fmt"
	"slices"
	"sync"
)

type registry struct {
	mu       sync.RWMutex
	handlers map[string]HandlerFunc
}

func newRegistry() *registry {
	return &registry{handlers: make(map[string]HandlerFunc)}
}

// register validates the whole batch before committing any of it.
func (r *registry) register(tasks ...Task) error {
	if len(tasks) == 0 {
		return ErrNoTasksToRegister
	}

	seen := make(map[string]struct{}, len(tasks))
	for i, t := range tasks {
		if t.Key == "" {
			return fmt.Errorf("task[%d]: %w", i, ErrEmptyTaskKey)
		}
		if t.Handler == nil {
			return fmt.Errorf("%w: task %q", ErrInvalidHandler, t.Key)
		}
		if _, dup := seen[t.Key]; dup {
			return fmt.Errorf("%w: %q appears more than once in batch", ErrDuplicateTask, t.Key)
		}
		seen[t.Key] = struct{}{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range tasks {
		if _, exists := r.handlers[t.Key]; exists {
			return fmt.Errorf("%w: %q", ErrDuplicateTask, t.Key)
		}
	}

	for _, t := range tasks {
		r.handlers[t.Key] = t.Handler
	}

	return nil
}

func (r *registry) resolve(key string) (HandlerFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[key]
	return h, ok
}

func (r *registry) keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.handlers))
	for k := range r.handlers {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
