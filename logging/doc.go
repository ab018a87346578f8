// Package logging provides a minimal logging interface and adapters for winemesh.
//
// The Logger interface defines the standard logging methods (Debug, Info, Warn, Error)
// that the runner, router and HTTP layer use for observability. This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - New, which picks a json, text or tint console handler and optional file rotation
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger, closer := logging.New(logging.Config{Level: logging.LogLevelInfo, Format: logging.FormatConsole})
//	defer closer.Close()
//	r := runner.New(m, func(o *runner.Options) { o.Logger = logger })
package logging
