package slotgo

import (
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with slotgo-specific helpers.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// This is the default for every container.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

var defaultLogger = NoopLogger()

// LogGrow logs a block growth.
func (l *Logger) LogGrow(kind ContainerKind, from, to int, err error) {
	if err != nil {
		l.Error("grow failed",
			"kind", string(kind),
			"from", from,
			"to", to,
			"error", err,
		)
	} else {
		l.Debug("grow completed",
			"kind", string(kind),
			"from", from,
			"to", to,
		)
	}
}

// LogRehash logs a slot table rehash.
func (l *Logger) LogRehash(from, to, dropped int, fixedID bool) {
	l.Debug("rehash completed",
		"from", from,
		"to", to,
		"tombstones_dropped", dropped,
		"fixed_id", fixedID,
	)
}

// LogBurn logs a destructive freelist burn.
func (l *Logger) LogBurn(kind ContainerKind, cleared int) {
	l.Debug("freelist burned",
		"kind", string(kind),
		"cleared", cleared,
	)
}
