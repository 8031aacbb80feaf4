// Package logger builds *slog.Logger instances with functional options and provides
// attribute helpers so the task queue logs the same keys everywhere.
//
// New picks a text or JSON handler, applies static attributes and wraps the result in
// LogHandlerDecorator, which injects attributes extracted from the context of every
// record.
//
// # Usage
//
//	log := logger.New(
//		logger.WithEnvironment(os.Getenv("APP_ENV"), "taskqueue"),
//		logger.WithComponent("worker"),
//	)
//
//	log.Warn("task attempt failed",
//		logger.TaskID(id),
//		logger.TaskKey("send_email"),
//		logger.Attempt(3),
//		logger.Error(err),
//	)
//
// Error and Errors return an empty attribute for nil errors, so callers can log
// unconditionally.
package logger
