// Command taskqueue-demo runs an in-memory task queue that periodically enqueues
// a welcome email and a flaky inventory sync, until SIGINT or SIGTERM.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/taskqueue/pkg/config"
	"github.com/dmitrymomot/taskqueue/pkg/logger"
	"github.com/dmitrymomot/taskqueue/pkg/queue"
)

type appConfig struct {
	Env         string        `env:"APP_ENV" envDefault:"development"`
	ServiceName string        `env:"SERVICE_NAME" envDefault:"taskqueue-demo"`
	Interval    time.Duration `env:"DEMO_ENQUEUE_INTERVAL" envDefault:"2s"`
	FailureRate float64       `env:"DEMO_FAILURE_RATE" envDefault:"0.5"`
}

var errUpstreamUnavailable = errors.New("inventory upstream unavailable")

// runIDKey carries the id of this process run; the logger adds it to every context-aware record.
type runIDKey struct{}

func main() {
	var cfg appConfig
	config.MustLoad(&cfg)

	var queueCfg queue.Config
	config.MustLoad(&queueCfg)

	log := logger.New(
		logger.WithEnvironment(cfg.Env, cfg.ServiceName),
		logger.WithContextValue("run_id", runIDKey{}),
	)
	logger.SetAsDefault(log)

	if err := run(cfg, queueCfg, log); err != nil {
		log.Error("demo exited with error", logger.Error(err))
		os.Exit(1)
	}
}

func run(cfg appConfig, queueCfg queue.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ctx = context.WithValue(ctx, runIDKey{}, uuid.NewString())

	q, err := queue.New(queue.WithConfig(queueCfg), queue.WithLogger(log))
	if err != nil {
		return fmt.Errorf("failed to create queue: %w", err)
	}

	if err := q.RegisterMap(map[string]queue.HandlerFunc{
		"send_welcome":   sendWelcome(log),
		"sync_inventory": syncInventory(cfg.FailureRate),
	}); err != nil {
		return fmt.Errorf("failed to register handlers: %w", err)
	}

	if err := q.On(queue.EventError, func(ctx context.Context, e queue.ErrorEvent) error {
		log.WarnContext(ctx, "task attempt failed",
			logger.TaskID(e.Task.ID),
			logger.TaskKey(e.Task.Key),
			logger.Attempt(e.Task.Attempt),
			logger.Error(e.Err))
		return nil
	}); err != nil {
		return fmt.Errorf("failed to subscribe to errors: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(q.Run(ctx))
	g.Go(func() error {
		return produce(ctx, q, cfg.Interval, log)
	})

	return g.Wait()
}

// produce enqueues one task of each kind every interval until ctx is done.
func produce(ctx context.Context, q *queue.Queue, interval time.Duration, log *slog.Logger) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for n := 1; ; n++ {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		submissions := []struct {
			key  string
			data queue.Data
		}{
			{"send_welcome", queue.Data{"email": fmt.Sprintf("user%d@example.com", n)}},
			{"sync_inventory", queue.Data{"batch": n}},
		}

		for _, s := range submissions {
			task, err := q.Enqueue(ctx, s.key, s.data)
			if err != nil {
				if errors.Is(err, queue.ErrStorageClosed) || ctx.Err() != nil {
					return nil
				}
				return err
			}
			log.DebugContext(ctx, "task submitted", logger.TaskID(task.ID), logger.TaskKey(task.Key))
		}
	}
}

func sendWelcome(log *slog.Logger) queue.HandlerFunc {
	return func(ctx context.Context, task queue.TaskContext) error {
		email, ok := task.Data["email"].(string)
		if !ok || email == "" {
			return errors.New("missing email")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}

		log.InfoContext(ctx, "welcome email sent", slog.String("email", email))
		return nil
	}
}

func syncInventory(failureRate float64) queue.HandlerFunc {
	return func(ctx context.Context, task queue.TaskContext) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if rand.Float64() < failureRate {
			return fmt.Errorf("batch %v: %w", task.Data["batch"], errUpstreamUnavailable)
		}
		return nil
	}
}
