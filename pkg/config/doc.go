// Package config loads typed configuration from environment variables.
//
// It wraps github.com/joho/godotenv, which reads optional .env files into the process
// environment, and github.com/caarlos0/env/v11, which parses the environment into
// structs annotated with `env` and `envDefault` tags. Each configuration type is parsed
// once and cached for the lifetime of the process; ResetCache clears the cache in tests.
//
// # Usage
//
//	var cfg queue.Config
//	config.MustLoad(&cfg)
//
//	storage := queue.NewMemoryStorageFromConfig(cfg)
//
// # Error Handling
//
// Load returns errors wrapping ErrParsingConfig (missing required values, malformed
// durations) or ErrNilPointer. LoadEnv returns errors wrapping ErrLoadingEnvFile.
// MustLoad and MustLoadEnv panic instead.
package config
