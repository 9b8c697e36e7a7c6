package pointloc

import (
	"context"
	"math"
	"slices"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// HistogramConfig describes the logarithmic binning of nearest neighbour
// distances.
type HistogramConfig struct {
	NumBins int
	MinDist float64
	MaxDist float64
}

// Validate reports whether the configuration describes at least one bin
// over a positive, finite distance range.
func (c HistogramConfig) Validate() error {
	if c.NumBins <= 0 ||
		!(c.MinDist > 0) || math.IsInf(c.MinDist, 0) ||
		!(c.MaxDist > c.MinDist) || math.IsInf(c.MaxDist, 0) {
		return &ErrInvalidHistogram{Config: c}
	}
	return nil
}

// DistanceStats summarises the distance from every point to its nearest
// neighbour.
type DistanceStats struct {
	// Nearest holds the nearest neighbour distance of each point, by index.
	Nearest []float64

	// Dividers are the NumBins+1 log-spaced bin edges; bin k counts the
	// distances d with Dividers[k] <= d < Dividers[k+1].
	Dividers []float64
	Counts   []float64

	// Underflow and Overflow count distances below MinDist and at or above
	// MaxDist.
	Underflow int
	Overflow  int

	Min, Max     float64
	Mean, StdDev float64
}

// DistanceHistogram computes the nearest neighbour distance of every point
// and bins the distances into cfg.NumBins logarithmic bins.
func (pl *PointLocations) DistanceHistogram(ctx context.Context, cfg HistogramConfig) (*DistanceStats, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	n := pl.grid.Len()
	nearest := make([]float64, n)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(pl.concurrency)
	for _, chunk := range chunks(n, pl.concurrency) {
		g.Go(func() error {
			for i := chunk[0]; i < chunk[1]; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				qstart := time.Now()
				ns, levels, candidates, err := pl.nearestK(gctx, i, 1)
				pl.metrics.RecordQuery(levels, candidates, time.Since(qstart), err)
				if err != nil {
					return err
				}
				nearest[i] = math.Sqrt(ns[0].Distance2)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s := &DistanceStats{
		Nearest:  nearest,
		Dividers: floats.LogSpan(make([]float64, cfg.NumBins+1), cfg.MinDist, cfg.MaxDist),
		Min:      floats.Min(nearest),
		Max:      floats.Max(nearest),
	}
	// Pin the outer edges so that the range checks below agree with them.
	s.Dividers[0], s.Dividers[cfg.NumBins] = cfg.MinDist, cfg.MaxDist
	s.Mean, s.StdDev = stat.MeanStdDev(nearest, nil)

	sorted := slices.Clone(nearest)
	slices.Sort(sorted)
	lo := sort.SearchFloat64s(sorted, cfg.MinDist)
	hi := sort.SearchFloat64s(sorted, cfg.MaxDist)
	s.Underflow = lo
	s.Overflow = len(sorted) - hi
	s.Counts = stat.Histogram(nil, s.Dividers, sorted[lo:hi], nil)

	pl.logger.LogHistogram(ctx, s, time.Since(start))
	return s, nil
}

// chunks splits [0, n) into at most parts contiguous half-open ranges.
func chunks(n, parts int) [][2]int {
	parts = max(1, min(parts, n))
	out := make([][2]int, 0, parts)
	size := (n + parts - 1) / parts
	for lo := 0; lo < n; lo += size {
		out = append(out, [2]int{lo, min(lo+size, n)})
	}
	return out
}
