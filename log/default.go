package log

import (
	"context"
	"log/slog"
	"os"
	"sync"
)

// DefaultContextProvider supplies the context for log methods that do not
// take one explicitly.
var DefaultContextProvider = context.TODO

var (
	defaultMu  sync.RWMutex
	defaultLog = Make(os.Stderr)
)

// Default returns the process-wide logger.
func Default() Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()

	return defaultLog
}

// Config replaces the process-wide logger with one derived from it by opts.
func Config(opts ...Option) {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	defaultLog = defaultLog.Wrap(opts...)
}

// With returns the process-wide logger with attrs attached.
func With(attrs ...slog.Attr) Logger { return Default().With(attrs...) }

// Trace logs at Trace level using the process-wide logger.
func Trace(msg string, attrs ...slog.Attr) { Default().log(DefaultContextProvider(), LevelTrace, msg, attrs...) }

// Debug logs at Debug level using the process-wide logger.
func Debug(msg string, attrs ...slog.Attr) { Default().log(DefaultContextProvider(), LevelDebug, msg, attrs...) }

// Info logs at Info level using the process-wide logger.
func Info(msg string, attrs ...slog.Attr) { Default().log(DefaultContextProvider(), LevelInfo, msg, attrs...) }

// Warn logs at Warn level using the process-wide logger.
func Warn(msg string, attrs ...slog.Attr) { Default().log(DefaultContextProvider(), LevelWarn, msg, attrs...) }

// Error logs at Error level using the process-wide logger.
func Error(msg string, attrs ...slog.Attr) { Default().log(DefaultContextProvider(), LevelError, msg, attrs...) }

// TraceContext logs at Trace level using the process-wide logger.
func TraceContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	Default().log(ctx, LevelTrace, msg, attrs...)
}

// DebugContext logs at Debug level using the process-wide logger.
func DebugContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	Default().log(ctx, LevelDebug, msg, attrs...)
}

// InfoContext logs at Info level using the process-wide logger.
func InfoContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	Default().log(ctx, LevelInfo, msg, attrs...)
}

// WarnContext logs at Warn level using the process-wide logger.
func WarnContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	Default().log(ctx, LevelWarn, msg, attrs...)
}

// ErrorContext logs at Error level using the process-wide logger.
func ErrorContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	Default().log(ctx, LevelError, msg, attrs...)
}
