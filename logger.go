package neighborhood

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with neighborhood-specific context.
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
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	}))
}

// WithCorpus tags the logger with a corpus role and id.
func (l *Logger) WithCorpus(role, corpusID string) *Logger {
	return &Logger{
		Logger: l.Logger.With("corpus", role, "corpus_id", corpusID),
	}
}

// LogOpen logs opening a corpus.
func (l *Logger) LogOpen(ctx context.Context, role, path string, rows, dim int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "open failed",
			"corpus", role,
			"path", path,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "corpus opened",
		"corpus", role,
		"path", path,
		"rows", rows,
		"dimension", dim,
	)
}

// LogNeighbors logs a neighbors query.
func (l *Logger) LogNeighbors(ctx context.Context, id string, n, results int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "neighbors failed",
			"id", id,
			"n", n,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "neighbors completed",
		"id", id,
		"n", n,
		"results", results,
	)
}

// LogLocation logs a location lookup.
func (l *Logger) LogLocation(ctx context.Context, id string, found bool) {
	l.DebugContext(ctx, "location completed",
		"id", id,
		"found", found,
	)
}

// LogAddTarget logs a growth transaction. index is -1 when a precondition
// rejected the identifier.
func (l *Logger) LogAddTarget(ctx context.Context, tx, id string, index int, err error) {
	switch {
	case err != nil:
		l.ErrorContext(ctx, "add target failed",
			"tx", tx,
			"id", id,
			"error", err,
		)
	case index < 0:
		l.DebugContext(ctx, "add target skipped",
			"tx", tx,
			"id", id,
		)
	default:
		l.InfoContext(ctx, "add target committed",
			"tx", tx,
			"id", id,
			"index", index,
		)
	}
}

// LogResync logs a reload of the published target after a failed reopen.
func (l *Logger) LogResync(ctx context.Context, published, stored int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "target resync failed",
			"published", published,
			"stored", stored,
			"error", err,
		)
		return
	}
	l.WarnContext(ctx, "target resynced",
		"published", published,
		"stored", stored,
	)
}
