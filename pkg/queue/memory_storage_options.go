package queue

import (
	"log/slog"
	"time"
)

// MemoryStorageOption is a functional option for configuring a MemoryStorage
type MemoryStorageOption func(*memoryStorageOptions)

type memoryStorageOptions struct {
	retryDelay  time.Duration
	maxAttempts int
	logger      *slog.Logger
}

// WithRetryDelay waits d between a failed attempt and the next one.
// The default is zero: retry on the next scheduling pass.
func WithRetryDelay(d time.Duration) MemoryStorageOption {
	return func(o *memoryStorageOptions) {
		if d >= 0 {
			o.retryDelay = d
		}
	}
}

// WithMaxAttempts caps consecutive attempts per activation; zero means unlimited.
// A record that runs out of attempts stays failed until EnqueueRemainingTasks revives it.
func WithMaxAttempts(n int) MemoryStorageOption {
	return func(o *memoryStorageOptions) {
		if n >= 0 {
			o.maxAttempts = n
		}
	}
}

// WithStorageLogger sets the logger for the storage
func WithStorageLogger(logger *slog.Logger) MemoryStorageOption {
	return func(o *memoryStorageOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}
