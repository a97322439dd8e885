package logging

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/m-mizutani/clog"
	"github.com/m-mizutani/masq"
)

// Format selects the log output encoding.
type Format string

const (
	FormatConsole Format = "console"
	FormatJSON    Format = "json"
)

var (
	mu            sync.RWMutex
	defaultLogger = New(clog.WithColor(true))
)

type ctxLoggerKey struct{}

// Default returns the process-wide logger.
func Default() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return defaultLogger
}

// SetDefault replaces the process-wide logger.
func SetDefault(logger *slog.Logger) {
	mu.Lock()
	defer mu.Unlock()
	defaultLogger = logger
}

// With attaches a logger to the context.
func With(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxLoggerKey{}, logger)
}

// From extracts the logger from the context, falling back to Default.
func From(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(ctxLoggerKey{}).(*slog.Logger); ok {
		return logger
	}
	return Default()
}

// New builds a console-format logger. Values tagged `masq:"secret"` and
// fields named like credentials are redacted before emission.
func New(options ...clog.Option) *slog.Logger {
	opts := []clog.Option{
		clog.WithLevel(slog.LevelInfo),
		clog.WithReplaceAttr(redactor()),
	}
	opts = append(opts, options...)
	return slog.New(clog.New(opts...))
}

// NewWith builds a logger with explicit writer, level, and format.
func NewWith(w io.Writer, level slog.Level, format Format) *slog.Logger {
	switch format {
	case FormatJSON:
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:       level,
			ReplaceAttr: redactor(),
		}))
	default:
		return New(
			clog.WithWriter(w),
			clog.WithLevel(level),
		)
	}
}

func redactor() func(groups []string, a slog.Attr) slog.Attr {
	return masq.New(
		masq.WithTag("secret"),
		masq.WithFieldName("Authorization"),
		masq.WithFieldPrefix("secret"),
	)
}
