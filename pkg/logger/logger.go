// Package logger wraps log/slog with the small amount of setup every service
// shares: level and format selection, a service attribute for log routing,
// and a Fatal helper for startup failures.
package logger

import (
	"io"
	"log/slog"
	"os"
)

// Output formats. JSON is the default so collectors can parse entries
// without a pipeline-specific decoder; Text is for local runs.
const (
	JSON = "json"
	Text = "text"
)

// Logger embeds *slog.Logger. Each service builds exactly one at startup and
// threads it through the config.
type Logger struct {
	*slog.Logger
}

type Config struct {
	Level     string
	Format    string
	Output    io.Writer
	AddSource bool
	Service   string
}

func New(cfg Config) *Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}

	opts := &slog.HandlerOptions{
		Level:     parseLevel(cfg.Level),
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	if cfg.Format == Text {
		handler = slog.NewTextHandler(cfg.Output, opts)
	} else {
		handler = slog.NewJSONHandler(cfg.Output, opts)
	}

	if cfg.Service != "" {
		handler = handler.WithAttrs([]slog.Attr{
			slog.String("service", cfg.Service),
		})
	}

	return &Logger{Logger: slog.New(handler)}
}

// parseLevel maps unknown or empty level strings to info rather than failing:
// a misconfigured level must not keep a service from starting.
func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Fatal logs at error level and exits with status 1. Only startup paths use
// it; request paths return errors instead.
func (l *Logger) Fatal(msg string, args ...any) {
	l.Error(msg, args...)
	os.Exit(1)
}
