package pointloc

import (
	"log/slog"
	"runtime"

	"github.com/hupe1980/pointloc/grid"
)

// DefaultTargetOccupancy is the average number of points per cell used when
// no occupancy is configured.
const DefaultTargetOccupancy = 10

type options struct {
	targetOccupancy  float64
	maxCells         int
	concurrency      int
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures New.
type Option func(*options)

// WithTargetOccupancy sets the average number of points per cell. Smaller
// values give more, smaller cells: fewer candidates per query at the price
// of more empty cells to walk.
func WithTargetOccupancy(occupancy float64) Option {
	return func(o *options) {
		o.targetOccupancy = occupancy
	}
}

// WithMaxCells limits the number of cells the grid may span. Point sets that
// are nearly flat along one axis can otherwise produce a huge, mostly empty
// cell table.
//
// If maxCells <= 0, grid.DefaultMaxCells is used.
func WithMaxCells(maxCells int) Option {
	return func(o *options) {
		o.maxCells = maxCells
	}
}

// WithConcurrency sets the number of queries BatchNeighbours and
// DistanceHistogram run at the same time.
//
// If n <= 0, runtime.GOMAXPROCS(0) is used.
func WithConcurrency(n int) Option {
	return func(o *options) {
		o.concurrency = n
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &pointloc.BasicMetricsCollector{}
//	pl, _ := pointloc.New(points, pointloc.WithMetricsCollector(metrics))
//	// ... run queries ...
//	stats := metrics.GetStats()
//	fmt.Printf("Queries: %d, Avg latency: %dns\n", stats.QueryCount, stats.QueryAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := pointloc.NewJSONLogger(os.Stderr, slog.LevelInfo)
//	pl, _ := pointloc.New(points, pointloc.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel logs text to stderr at the given level.
// Shorthand for WithLogger(NewTextLogger(nil, level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(nil, level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		targetOccupancy:  DefaultTargetOccupancy,
		maxCells:         grid.DefaultMaxCells,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.concurrency <= 0 {
		o.concurrency = runtime.GOMAXPROCS(0)
	}
	if o.maxCells <= 0 {
		o.maxCells = grid.DefaultMaxCells
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	return o
}
