// Package logger configures the process-wide slog logger for the witness
// store binaries. Handlers write to stderr: text during development, JSON
// when ENV=production so log collectors get structured records.
package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

// ContextKey is the type for context keys the logger reads.
type ContextKey string

// RequestIDKey carries the request ID the middleware assigns; the
// *Context functions attach it to every record.
const RequestIDKey ContextKey = "request_id"

var root *slog.Logger

// Init installs the global logger at the given level. Unknown level
// strings fall back to info.
func Init(level string) {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	var h slog.Handler
	if os.Getenv("ENV") == "production" {
		h = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		h = slog.NewTextHandler(os.Stderr, opts)
	}
	root = slog.New(h)
	slog.SetDefault(root)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

func get() *slog.Logger {
	if root == nil {
		Init("info")
	}
	return root
}

// fromContext returns the root logger, annotated with the request ID
// when the context carries one.
func fromContext(ctx context.Context) *slog.Logger {
	l := get()
	if id, ok := ctx.Value(RequestIDKey).(string); ok && id != "" {
		l = l.With("request_id", id)
	}
	return l
}

func Debug(msg string, args ...any) { get().Debug(msg, args...) }
func Info(msg string, args ...any)  { get().Info(msg, args...) }
func Warn(msg string, args ...any)  { get().Warn(msg, args...) }
func Error(msg string, args ...any) { get().Error(msg, args...) }

// DebugContext logs at debug level with the context's request ID.
func DebugContext(ctx context.Context, msg string, args ...any) {
	fromContext(ctx).Debug(msg, args...)
}

// InfoContext logs at info level with the context's request ID.
func InfoContext(ctx context.Context, msg string, args ...any) {
	fromContext(ctx).Info(msg, args...)
}

// WarnContext logs at warn level with the context's request ID.
func WarnContext(ctx context.Context, msg string, args ...any) {
	fromContext(ctx).Warn(msg, args...)
}

// ErrorContext logs at error level with the context's request ID.
func ErrorContext(ctx context.Context, msg string, args ...any) {
	fromContext(ctx).Error(msg, args...)
}
