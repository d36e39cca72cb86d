package logging

import (
	"io"
	"log/slog"
	"os"
)

// Logger is a thin wrapper around slog.Logger used across the application
type Logger struct {
	*slog.Logger
}

// NewLogger creates a logger writing to stdout.
// Development uses a human-readable text handler at debug level, everything else JSON at info.
func NewLogger(isDevelopment bool) *Logger {
	return New(os.Stdout, isDevelopment)
}

// New creates a logger writing to w
func New(w io.Writer, isDevelopment bool) *Logger {
	var handler slog.Handler
	if isDevelopment {
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
	}

	return &Logger{Logger: slog.New(handler)}
}

// WithFields returns a child logger that always includes the given fields
func (l *Logger) WithFields(fields map[string]any) *Logger {
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return &Logger{Logger: l.Logger.With(args...)}
}
