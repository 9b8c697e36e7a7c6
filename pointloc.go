package pointloc

import (
	"context"
	"time"

	"github.com/hupe1980/pointloc/grid"
	"gonum.org/v1/gonum/spatial/r3"
)

// PointLocations answers neighbour queries over an immutable point set.
type PointLocations struct {
	grid        *grid.Grid
	concurrency int
	metrics     MetricsCollector
	logger      *Logger
}

// New partitions points into a uniform grid.
//
// The points slice is retained and must not be modified while the
// PointLocations is in use. New fails with ErrConfiguration when the point
// set is empty, has zero extent along an axis, contains non-finite
// coordinates, or when the target occupancy is not positive.
func New(points []r3.Vec, optFns ...Option) (*PointLocations, error) {
	opts := applyOptions(optFns)

	start := time.Now()
	g, err := grid.Build(points, opts.targetOccupancy, grid.WithMaxCells(opts.maxCells))
	elapsed := time.Since(start)

	ctx := context.Background()
	if err != nil {
		err = translateError(err)
		opts.metricsCollector.RecordBuild(len(points), 0, elapsed, err)
		opts.logger.LogBuild(ctx, len(points), 0, 0, err)
		return nil, err
	}

	opts.metricsCollector.RecordBuild(g.Len(), g.NumCells(), elapsed, nil)
	opts.logger.LogBuild(ctx, g.Len(), g.NumCells(), g.CellSize(), nil)

	return &PointLocations{
		grid:        g,
		concurrency: opts.concurrency,
		metrics:     opts.metricsCollector,
		logger:      opts.logger,
	}, nil
}

// Query returns an iterator over the neighbours of point i, positioned on
// the cell that holds it.
func (pl *PointLocations) Query(i int) (*grid.Iterator, error) {
	it, err := pl.grid.Query(i)
	if err != nil {
		return nil, translateError(err)
	}
	return it, nil
}

// Grid returns the underlying partition.
func (pl *PointLocations) Grid() *grid.Grid { return pl.grid }

// Len returns the number of points.
func (pl *PointLocations) Len() int { return pl.grid.Len() }

// Position returns the coordinates of point i.
func (pl *PointLocations) Position(i int) r3.Vec { return pl.grid.Position(i) }
