package logger

import (
	"context"
	"log/slog"
	"strings"

	"github.com/go-chi/httplog/v2"
)

type contextKey string

const loggerKey contextKey = "logger"

// New builds the process logger. Its embedded *slog.Logger is also installed
// as the slog default so packages without a request context log the same way.
func New(service, env, level string, json bool) *httplog.Logger {
	l := httplog.NewLogger(service, httplog.Options{
		LogLevel:         parseLevel(level),
		JSON:             json,
		Concise:          true,
		RequestHeaders:   false,
		MessageFieldName: "message",
		Tags: map[string]string{
			"env": env,
		},
	})
	slog.SetDefault(l.Logger)
	return l
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// FromContext retrieves the logger from the context.
// If no logger is found, it returns the default logger.
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey).(*slog.Logger); ok && l != nil {
		return l
	}
	return slog.Default()
}

// WithLogger adds a logger to the context
func WithLogger(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}
