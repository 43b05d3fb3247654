// Package logger provides structured logging utilities for the application.
// It wraps log/slog with JSON formatting and supports context-based logging
// with request IDs and module names. Records can additionally be shipped to
// Better Stack through an asynchronous handler.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	slogbetterstack "github.com/samber/slog-betterstack"
)

// Options configures a Logger.
type Options struct {
	// Level is one of debug, info, warn, error. Anything else means info.
	Level string
	// Writer receives JSON records. Nil means os.Stdout.
	Writer io.Writer
	// BetterStackToken enables remote log shipping when set.
	BetterStackToken string
	// Async tunes the remote shipping queue.
	Async AsyncOptions
}

// Logger is the application logger
type Logger struct {
	*slog.Logger
	remote *AsyncHandler
}

// New creates a new logger instance with JSON formatting
func New(level string) *Logger {
	return NewWithWriter(level, os.Stdout)
}

// NewWithWriter creates a new logger instance with JSON formatting writing to the provided writer
func NewWithWriter(level string, w io.Writer) *Logger {
	return NewWithOptions(Options{Level: level, Writer: w})
}

// NewWithOptions builds the full handler chain: context values, local JSON
// output and, when a token is configured, asynchronous Better Stack shipping.
func NewWithOptions(opts Options) *Logger {
	w := opts.Writer
	if w == nil {
		w = os.Stdout
	}
	level := ParseLevel(opts.Level)

	var handler slog.Handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: replaceAttr,
	})

	var remote *AsyncHandler
	if opts.BetterStackToken != "" {
		bs := slogbetterstack.Option{
			Level: level,
			Token: opts.BetterStackToken,
		}.NewBetterstackHandler()
		remote = NewAsyncHandler(bs, opts.Async)
		handler = NewMultiHandler(handler, remote)
	}

	return &Logger{
		Logger: slog.New(NewContextHandler(handler)),
		remote: remote,
	}
}

// ParseLevel maps a level name to a slog.Level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func replaceAttr(_ []string, a slog.Attr) slog.Attr {
	switch a.Key {
	case slog.TimeKey:
		a.Key = "timestamp"
	case slog.LevelKey:
		a.Key = "level"
		level := a.Value.String()
		if level == "WARN" {
			level = "warning"
		} else {
			level = strings.ToLower(level)
		}
		a.Value = slog.StringValue(level)
	case slog.MessageKey:
		a.Key = "message"
	}
	return a
}

// Shutdown flushes records queued for remote shipping. It is a no-op when
// remote shipping is disabled.
func (l *Logger) Shutdown(ctx context.Context) error {
	if l == nil || l.remote == nil {
		return nil
	}
	return l.remote.Shutdown(ctx)
}

// DroppedRecords returns how many records remote shipping discarded.
func (l *Logger) DroppedRecords() uint64 {
	if l == nil {
		return 0
	}
	return l.remote.Dropped()
}

// RemoteEnabled reports whether records are shipped to Better Stack.
func (l *Logger) RemoteEnabled() bool {
	return l != nil && l.remote != nil
}

func (l *Logger) with(args ...any) *Logger {
	return &Logger{Logger: l.With(args...), remote: l.remote}
}

// WithModule creates a new entry with module field
func (l *Logger) WithModule(module string) *Logger {
	return l.with("module", module)
}

// WithRequestID creates a new entry with request ID field
func (l *Logger) WithRequestID(requestID string) *Logger {
	return l.with("request_id", requestID)
}

// WithError creates a new entry with error field
func (l *Logger) WithError(err error) *Logger {
	return l.with("error", err)
}

// WithField creates a new entry with a single field
func (l *Logger) WithField(key string, value any) *Logger {
	return l.with(key, value)
}

// WithFields creates a new entry with multiple fields
func (l *Logger) WithFields(fields map[string]any) *Logger {
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return l.with(args...)
}
