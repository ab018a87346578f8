// Package logging provides a tiny abstraction over slog so downstream code can
// depend on a minimal interface (Logger) while the composition root decides
// how records are rendered (json, text or colorized console) and where they go.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogLevel is a thin enum for user friendly level configuration decoupled from slog.
type LogLevel int

const (
	// LogLevelDebug is the debug logging level.
	LogLevelDebug LogLevel = iota
	// LogLevelInfo is the informational logging level.
	LogLevelInfo
	// LogLevelWarn is the warning logging level.
	LogLevelWarn
	// LogLevelError is the error logging level.
	LogLevelError
)

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a case-insensitive level name into a LogLevel.
func ParseLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LogLevelDebug, nil
	case "", "info":
		return LogLevelInfo, nil
	case "warn", "warning":
		return LogLevelWarn, nil
	case "error":
		return LogLevelError, nil
	default:
		return LogLevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

func (l LogLevel) slog() slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Logger defines the minimal logging interface used across winemesh.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// SlogAdapter wraps *slog.Logger to implement the Logger interface.
type SlogAdapter struct {
	*slog.Logger
}

// NewSlogAdapter creates a Logger from *slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{Logger: logger}
}

// With returns a child logger carrying the given attributes.
func (s *SlogAdapter) With(args ...any) Logger {
	return &SlogAdapter{Logger: s.Logger.With(args...)}
}

// With attaches key/value pairs to l when it supports it and returns l unchanged otherwise.
func With(l Logger, args ...any) Logger {
	if w, ok := l.(interface{ With(...any) Logger }); ok {
		return w.With(args...)
	}
	return l
}

// Format selects the record encoding.
type Format string

const (
	FormatJSON    Format = "json"
	FormatText    Format = "text"
	FormatConsole Format = "console"
)

// Config configures construction of a Logger.
type Config struct {
	Level     LogLevel
	Format    Format
	Output    io.Writer
	AddSource bool

	// File, when set, routes records to a size-rotated file instead of Output.
	File       string
	MaxSizeMB  int
	MaxBackups int
}

// DefaultConfig returns a baseline JSON info level configuration on stdout.
func DefaultConfig() Config {
	return Config{Level: LogLevelInfo, Format: FormatJSON, Output: os.Stdout, MaxSizeMB: 50, MaxBackups: 3}
}

// New builds a slog backed Logger. The returned closer releases the rotated
// log file, if any, and is never nil.
func New(cfg Config) (*SlogAdapter, io.Closer) {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	var closer io.Closer = nopCloser{}
	if cfg.File != "" {
		lj := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			Compress:   true,
		}
		out, closer = lj, lj
	}

	return NewSlogAdapter(slog.New(newHandler(out, cfg))), closer
}

func newHandler(out io.Writer, cfg Config) slog.Handler {
	switch cfg.Format {
	case FormatConsole:
		return tint.NewHandler(out, &tint.Options{
			Level:      cfg.Level.slog(),
			AddSource:  cfg.AddSource,
			TimeFormat: time.DateTime,
			ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
				if a.Value.Kind() == slog.KindAny {
					if _, ok := a.Value.Any().(error); ok {
						return tint.Attr(9, a)
					}
				}
				return a
			},
		})
	case FormatText:
		return slog.NewTextHandler(out, &slog.HandlerOptions{Level: cfg.Level.slog(), AddSource: cfg.AddSource})
	default:
		return slog.NewJSONHandler(out, &slog.HandlerOptions{Level: cfg.Level.slog(), AddSource: cfg.AddSource})
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// LogModelCall records latency and outcome of a single provider round trip.
// attrs are appended to the record as key/value pairs.
func LogModelCall(l Logger, provider, model string, dur time.Duration, err error, attrs ...any) {
	args := append([]any{"provider", provider, "model", model, "duration_ms", dur.Milliseconds()}, attrs...)
	if err != nil {
		l.Error("model.call.failed", append(args, "error", err)...)
		return
	}
	l.Debug("model.call.completed", args...)
}

// NoOpLogger discards all log messages. Useful for testing or when logging is disabled.
type NoOpLogger struct{}

// Debug logs a debug message.
func (NoOpLogger) Debug(string, ...any) {}

// Info logs an informational message.
func (NoOpLogger) Info(string, ...any) {}

// Warn logs a warning message.
func (NoOpLogger) Warn(string, ...any) {}

// Error logs an error message.
func (NoOpLogger) Error(string, ...any) {}
