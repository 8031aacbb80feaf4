package queue

import "time"

// Config holds the configuration for the task queue.
// Zero RetryDelay and MaxAttempts keep the default policy: retry immediately, forever.
type Config struct {
	RetryDelay      time.Duration `env:"QUEUE_RETRY_DELAY" envDefault:"0s"`
	MaxAttempts     int           `env:"QUEUE_MAX_ATTEMPTS" envDefault:"0"`
	ShutdownTimeout time.Duration `env:"QUEUE_SHUTDOWN_TIMEOUT" envDefault:"30s"`
}
