package neighborhood

import (
	"log/slog"
	"runtime"

	"github.com/hupe1980/neighborhood/internal/fs"
	"github.com/hupe1980/neighborhood/internal/registry"
)

// DuplicatePolicy decides how a repeated identifier in an id column resolves.
type DuplicatePolicy = registry.DuplicatePolicy

const (
	// LastWins maps a repeated identifier to its last index (the default).
	LastWins = registry.LastWins
	// FirstWins maps a repeated identifier to its first index.
	FirstWins = registry.FirstWins
	// RejectDuplicates fails Open with ErrDuplicateIdentifier.
	RejectDuplicates = registry.Reject
)

type options struct {
	logger           *Logger
	metricsCollector MetricsCollector
	duplicatePolicy  DuplicatePolicy
	parallelism      int
	fileSystem       fs.FileSystem
}

// Option configures OpenCross and OpenSelf.
type Option func(*options)

func applyOptions(optFns []Option) options {
	o := options{
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
		duplicatePolicy:  LastWins,
		parallelism:      runtime.GOMAXPROCS(0),
		fileSystem:       fs.Default,
	}
	for _, fn := range optFns {
		fn(&o)
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.parallelism < 1 {
		o.parallelism = 1
	}
	return o
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := neighborhood.NewJSONLogger(slog.LevelInfo)
//	nb, _ := neighborhood.OpenCross(ctx, "users", "items", neighborhood.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &neighborhood.BasicMetricsCollector{}
//	nb, _ := neighborhood.OpenSelf(ctx, "items", neighborhood.WithMetricsCollector(metrics))
//	// ... use nb ...
//	stats := metrics.GetStats()
//	fmt.Printf("Queries: %d, Avg latency: %dns\n", stats.NeighborsCount, stats.NeighborsAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithDuplicatePolicy sets how repeated identifiers in an id column are
// registered. The default, LastWins, maps the identifier to its last index.
func WithDuplicatePolicy(p DuplicatePolicy) Option {
	return func(o *options) {
		o.duplicatePolicy = p
	}
}

// WithParallelism sets how many goroutines may score one query.
// Corpora too small to benefit are always scored on the calling goroutine.
// Defaults to GOMAXPROCS.
func WithParallelism(workers int) Option {
	return func(o *options) {
		o.parallelism = workers
	}
}

// withFileSystem sets the file system target appends go through.
func withFileSystem(fsys fs.FileSystem) Option {
	return func(o *options) {
		o.fileSystem = fsys
	}
}
