package pointloc

import (
	"log/slog"

	"gonum.org/v1/gonum/spatial/r3"
)

// Builder is an immutable fluent builder for PointLocations.
// Each method returns a new builder with the updated configuration.
//
// Example:
//
//	pl, err := pointloc.Points(points).
//	    TargetOccupancy(8).
//	    Concurrency(4).
//	    LogLevel(slog.LevelDebug).
//	    Build()
type Builder struct {
	points []r3.Vec
	opts   []Option
}

// Points starts a builder over the given point set.
func Points(points []r3.Vec) Builder {
	return Builder{points: points}
}

func (b Builder) with(opt Option) Builder {
	b.opts = append(b.opts[:len(b.opts):len(b.opts)], opt)
	return b
}

// TargetOccupancy sets the average number of points per cell.
// Default: 10.
func (b Builder) TargetOccupancy(occupancy float64) Builder {
	return b.with(WithTargetOccupancy(occupancy))
}

// MaxCells limits the number of cells the grid may span.
func (b Builder) MaxCells(n int) Builder {
	return b.with(WithMaxCells(n))
}

// Concurrency sets the number of parallel queries of batch operations.
// Default: GOMAXPROCS.
func (b Builder) Concurrency(n int) Builder {
	return b.with(WithConcurrency(n))
}

// Logger sets the structured logger.
func (b Builder) Logger(l *Logger) Builder {
	return b.with(WithLogger(l))
}

// LogLevel enables text logging at the given level.
func (b Builder) LogLevel(level slog.Level) Builder {
	return b.with(WithLogLevel(level))
}

// Metrics sets the metrics collector.
func (b Builder) Metrics(mc MetricsCollector) Builder {
	return b.with(WithMetricsCollector(mc))
}

// Build creates the PointLocations.
func (b Builder) Build() (*PointLocations, error) {
	return New(b.points, b.opts...)
}
