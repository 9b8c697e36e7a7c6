package pointloc

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    queryCounter   prometheus.Counter
//	    levelHistogram prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordQuery(levels, candidates int, duration time.Duration, err error) {
//	    p.queryCounter.Inc()
//	    p.levelHistogram.Observe(float64(levels))
//	}
type MetricsCollector interface {
	// RecordBuild is called once after the grid has been built.
	// points is the size of the point set, cells the number of cells spanned.
	RecordBuild(points, cells int, duration time.Duration, err error)

	// RecordQuery is called after each neighbour query.
	// levels is the number of shells expanded, candidates the number of
	// points whose distance was evaluated.
	RecordQuery(levels, candidates int, duration time.Duration, err error)

	// RecordBatch is called after each batch of queries.
	// count is the number of queries run and failed the number of those that
	// returned an error of their own. Queries skipped or interrupted after the
	// batch was cancelled are not counted as failed. A batch rejected before
	// any query runs counts every query as run and failed.
	RecordBatch(count, failed int, duration time.Duration)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordBuild(int, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordQuery(int, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordBatch(int, int, time.Duration)        {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	BuildCount      atomic.Int64
	BuildErrors     atomic.Int64
	BuildTotalNanos atomic.Int64
	QueryCount      atomic.Int64
	QueryErrors     atomic.Int64
	QueryTotalNanos atomic.Int64
	QueryLevels     atomic.Int64
	QueryCandidates atomic.Int64
	BatchCount      atomic.Int64
	BatchItems      atomic.Int64
	BatchFailed     atomic.Int64
	BatchTotalNanos atomic.Int64
	LastBuildCells  atomic.Int64
	LastBuildPoints atomic.Int64
}

// RecordBuild implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBuild(points, cells int, duration time.Duration, err error) {
	b.BuildCount.Add(1)
	b.BuildTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.BuildErrors.Add(1)
		return
	}
	b.LastBuildPoints.Store(int64(points))
	b.LastBuildCells.Store(int64(cells))
}

// RecordQuery implements MetricsCollector.
func (b *BasicMetricsCollector) RecordQuery(levels, candidates int, duration time.Duration, err error) {
	b.QueryCount.Add(1)
	b.QueryTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.QueryErrors.Add(1)
		return
	}
	b.QueryLevels.Add(int64(levels))
	b.QueryCandidates.Add(int64(candidates))
}

// RecordBatch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBatch(count, failed int, duration time.Duration) {
	b.BatchCount.Add(1)
	b.BatchItems.Add(int64(count))
	b.BatchFailed.Add(int64(failed))
	b.BatchTotalNanos.Add(duration.Nanoseconds())
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		BuildCount:         b.BuildCount.Load(),
		BuildErrors:        b.BuildErrors.Load(),
		LastBuildPoints:    b.LastBuildPoints.Load(),
		LastBuildCells:     b.LastBuildCells.Load(),
		QueryCount:         b.QueryCount.Load(),
		QueryErrors:        b.QueryErrors.Load(),
		QueryAvgNanos:      average(b.QueryTotalNanos.Load(), b.QueryCount.Load()),
		QueryAvgLevels:     b.avgPerSuccessfulQuery(b.QueryLevels.Load()),
		QueryAvgCandidates: b.avgPerSuccessfulQuery(b.QueryCandidates.Load()),
		BatchCount:         b.BatchCount.Load(),
		BatchItems:         b.BatchItems.Load(),
		BatchFailed:        b.BatchFailed.Load(),
		BatchAvgNanos:      average(b.BatchTotalNanos.Load(), b.BatchCount.Load()),
	}
}

func (b *BasicMetricsCollector) avgPerSuccessfulQuery(total int64) float64 {
	ok := b.QueryCount.Load() - b.QueryErrors.Load()
	if ok <= 0 {
		return 0
	}
	return float64(total) / float64(ok)
}

func average(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	BuildCount         int64
	BuildErrors        int64
	LastBuildPoints    int64
	LastBuildCells     int64
	QueryCount         int64
	QueryErrors        int64
	QueryAvgNanos      int64
	QueryAvgLevels     float64
	QueryAvgCandidates float64
	BatchCount         int64
	BatchItems         int64
	BatchFailed        int64
	BatchAvgNanos      int64
}
