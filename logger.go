package textidx

import (
	"context"
	"log/slog"
	"os"

	"github.com/hupe1980/textidx/model"
)

// Logger wraps slog.Logger with textidx-specific context.
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
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithPK adds a primary key field to the logger.
func (l *Logger) WithPK(pk model.PrimaryKey) *Logger {
	return &Logger{
		Logger: l.Logger.With("pk", uint64(pk)),
	}
}

// WithTerm adds a term field to the logger.
func (l *Logger) WithTerm(term string) *Logger {
	return &Logger{
		Logger: l.Logger.With("term", term),
	}
}

// WithCount adds a count field to the logger.
func (l *Logger) WithCount(count int) *Logger {
	return &Logger{
		Logger: l.Logger.With("count", count),
	}
}

// LogAdd logs an add operation.
func (l *Logger) LogAdd(ctx context.Context, pk model.PrimaryKey, terms int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "add failed",
			"pk", uint64(pk),
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "add completed",
			"pk", uint64(pk),
			"terms", terms,
		)
	}
}

// LogUpdate logs an update operation.
func (l *Logger) LogUpdate(ctx context.Context, pk model.PrimaryKey, terms int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "update failed",
			"pk", uint64(pk),
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "update completed",
			"pk", uint64(pk),
			"terms", terms,
		)
	}
}

// LogBatchAdd logs a batch add operation.
func (l *Logger) LogBatchAdd(ctx context.Context, count, failed int) {
	if failed > 0 {
		l.WarnContext(ctx, "batch add completed with failures",
			"total", count,
			"failed", failed,
			"success", count-failed,
		)
	} else {
		l.InfoContext(ctx, "batch add completed",
			"count", count,
		)
	}
}

// LogDelete logs a delete operation.
func (l *Logger) LogDelete(ctx context.Context, pk model.PrimaryKey, err error) {
	if err != nil {
		l.ErrorContext(ctx, "delete failed",
			"pk", uint64(pk),
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "delete completed",
			"pk", uint64(pk),
		)
	}
}

// LogExpand logs a term expansion query.
func (l *Logger) LogExpand(ctx context.Context, kind QueryKind, query string, terms, results int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "expand failed",
			"kind", string(kind),
			"query", query,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "expand completed",
			"kind", string(kind),
			"query", query,
			"terms", terms,
			"results", results,
		)
	}
}

// LogDefrag logs a defragmentation pass.
func (l *Logger) LogDefrag(ctx context.Context, stats DefragStats, err error) {
	if err != nil {
		l.ErrorContext(ctx, "defrag failed",
			"nodes", stats.Nodes,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "defrag completed",
			"nodes", stats.Nodes,
			"words", stats.Words,
			"bytes_before", stats.BytesBefore,
			"bytes_after", stats.BytesAfter,
		)
	}
}
