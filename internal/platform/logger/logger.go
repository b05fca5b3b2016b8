// Package logger wires log/slog for stopgate and carries the logger through context.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
)

type contextKey struct{}

var loggerKey = contextKey{}

// New creates a structured logger writing to stderr.
// Stdout is reserved for the decision payload, so diagnostics never go there.
func New(verbose, json bool) *slog.Logger {
	return NewWithWriter(os.Stderr, verbose, json)
}

// NewWithWriter creates a structured logger writing to w.
// If verbose is true, the log level is Debug, otherwise Warn: a normal run
// should leave stderr to the console summary.
func NewWithWriter(w io.Writer, verbose, json bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if json {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// WithContext returns a new context with the given logger attached.
func WithContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext returns the logger from the context.
// If no logger is found, it returns the default logger.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}
