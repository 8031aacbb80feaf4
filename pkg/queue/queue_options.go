package queue

import (
	"log/slog"
	"time"
)

// Option is a functional option for configuring a Queue
type Option func(*queueOptions)

type queueOptions struct {
	storage         Storage
	factory         StorageFactory
	memoryOpts      []MemoryStorageOption
	shutdownTimeout time.Duration
	logger          *slog.Logger
}

// WithStorage runs tasks on the given storage instead of a new MemoryStorage.
// Storages have no unsubscribe, so a storage passed to a failed New should be discarded.
func WithStorage(storage Storage) Option {
	return func(o *queueOptions) {
		if storage != nil {
			o.storage = storage
		}
	}
}

// WithStorageFactory builds the storage lazily in New. WithStorage takes precedence.
func WithStorageFactory(factory StorageFactory) Option {
	return func(o *queueOptions) {
		if factory != nil {
			o.factory = factory
		}
	}
}

// WithMemoryStorageOptions configures the default MemoryStorage.
// Ignored when a storage or storage factory is supplied.
func WithMemoryStorageOptions(opts ...MemoryStorageOption) Option {
	return func(o *queueOptions) {
		o.memoryOpts = append(o.memoryOpts, opts...)
	}
}

// WithConfig applies the retry policy and shutdown timeout from cfg
func WithConfig(cfg Config) Option {
	return func(o *queueOptions) {
		o.memoryOpts = append(o.memoryOpts,
			WithRetryDelay(cfg.RetryDelay),
			WithMaxAttempts(cfg.MaxAttempts),
		)
		if cfg.ShutdownTimeout > 0 {
			o.shutdownTimeout = cfg.ShutdownTimeout
		}
	}
}

// WithShutdownTimeout bounds how long Run waits for in-flight tasks on exit
func WithShutdownTimeout(d time.Duration) Option {
	return func(o *queueOptions) {
		if d > 0 {
			o.shutdownTimeout = d
		}
	}
}

// WithLogger sets the logger for the queue and its default storage
func WithLogger(logger *slog.Logger) Option {
	return func(o *queueOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}
