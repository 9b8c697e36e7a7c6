package pointloc

import (
	"context"
	"math"
	"testing"

	"github.com/hupe1980/pointloc/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestHistogramConfig_Validate(t *testing.T) {
	tests := []struct {
		name  string
		cfg   HistogramConfig
		valid bool
	}{
		{"Valid", HistogramConfig{NumBins: 10, MinDist: 1e-3, MaxDist: 1}, true},
		{"NoBins", HistogramConfig{NumBins: 0, MinDist: 1e-3, MaxDist: 1}, false},
		{"ZeroMin", HistogramConfig{NumBins: 10, MinDist: 0, MaxDist: 1}, false},
		{"Inverted", HistogramConfig{NumBins: 10, MinDist: 1, MaxDist: 0.5}, false},
		{"Equal", HistogramConfig{NumBins: 10, MinDist: 1, MaxDist: 1}, false},
		{"InfMax", HistogramConfig{NumBins: 10, MinDist: 1, MaxDist: math.Inf(1)}, false},
		{"NaN", HistogramConfig{NumBins: 10, MinDist: math.NaN(), MaxDist: 1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrConfiguration)
			var he *ErrInvalidHistogram
			require.ErrorAs(t, err, &he)
			assert.Equal(t, tt.cfg.NumBins, he.Config.NumBins)
		})
	}
}

func TestDistanceHistogram_Lattice(t *testing.T) {
	pl, err := New(testutil.LatticePoints(5, 1), WithConcurrency(3))
	require.NoError(t, err)

	s, err := pl.DistanceHistogram(context.Background(), HistogramConfig{NumBins: 3, MinDist: 0.1, MaxDist: 10})
	require.NoError(t, err)

	assert.Len(t, s.Nearest, 125)
	for _, d := range s.Nearest {
		assert.Equal(t, 1.0, d)
	}
	assert.Equal(t, []float64{0, 125, 0}, s.Counts)
	assert.Equal(t, 0.1, s.Dividers[0])
	assert.Equal(t, 10.0, s.Dividers[3])
	assert.Zero(t, s.Underflow)
	assert.Zero(t, s.Overflow)
	assert.Equal(t, 1.0, s.Min)
	assert.Equal(t, 1.0, s.Max)
	assert.InDelta(t, 1.0, s.Mean, 1e-12)
	assert.InDelta(t, 0.0, s.StdDev, 1e-12)

	s, err = pl.DistanceHistogram(context.Background(), HistogramConfig{NumBins: 2, MinDist: 2, MaxDist: 10})
	require.NoError(t, err)
	assert.Equal(t, 125, s.Underflow)
	assert.Equal(t, []float64{0, 0}, s.Counts)

	s, err = pl.DistanceHistogram(context.Background(), HistogramConfig{NumBins: 2, MinDist: 0.1, MaxDist: 1})
	require.NoError(t, err)
	assert.Equal(t, 125, s.Overflow, "the upper edge is exclusive")
}

func TestDistanceHistogram_Random(t *testing.T) {
	points := testutil.NewRNG(20).ClusteredPoints(2000, 4, 0.05)
	pl, err := New(points)
	require.NoError(t, err)

	cfg := HistogramConfig{NumBins: 12, MinDist: 1e-3, MaxDist: 0.05}
	s, err := pl.DistanceHistogram(context.Background(), cfg)
	require.NoError(t, err)

	require.Len(t, s.Dividers, cfg.NumBins+1)
	require.Len(t, s.Counts, cfg.NumBins)
	assert.Equal(t, float64(len(points)), floats.Sum(s.Counts)+float64(s.Underflow+s.Overflow))

	// Log-spaced: constant ratio between neighbouring edges.
	ratio := s.Dividers[1] / s.Dividers[0]
	for k := 2; k <= cfg.NumBins; k++ {
		assert.InEpsilon(t, ratio, s.Dividers[k]/s.Dividers[k-1], 1e-9)
	}

	for _, i := range []int{0, 99, 1999} {
		nearest := testutil.BruteForceNearest(points, i, 1)
		want := math.Sqrt(r3.Norm2(r3.Sub(points[nearest[0]], points[i])))
		assert.Equal(t, want, s.Nearest[i])
	}
	assert.LessOrEqual(t, s.Min, s.Mean)
	assert.GreaterOrEqual(t, s.Max, s.Mean)
}

func TestDistanceHistogram_Errors(t *testing.T) {
	pl, err := New(testutil.NewRNG(21).UniformPoints(500))
	require.NoError(t, err)

	_, err = pl.DistanceHistogram(context.Background(), HistogramConfig{})
	assert.ErrorIs(t, err, ErrConfiguration)

	canceled, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = pl.DistanceHistogram(canceled, HistogramConfig{NumBins: 4, MinDist: 1e-3, MaxDist: 1})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDistanceHistogram_Metrics(t *testing.T) {
	metrics := &BasicMetricsCollector{}
	pl, err := New(testutil.NewRNG(22).UniformPoints(800), WithMetricsCollector(metrics), WithConcurrency(3))
	require.NoError(t, err)

	_, err = pl.DistanceHistogram(context.Background(), HistogramConfig{NumBins: 8, MinDist: 1e-4, MaxDist: 1})
	require.NoError(t, err)

	stats := metrics.GetStats()
	assert.Equal(t, int64(800), stats.QueryCount)
	assert.Zero(t, stats.QueryErrors)
	assert.GreaterOrEqual(t, stats.QueryAvgCandidates, 2.0)
}

func TestChunks(t *testing.T) {
	assert.Equal(t, [][2]int{{0, 4}, {4, 8}, {8, 10}}, chunks(10, 3))
	assert.Equal(t, [][2]int{{0, 2}, {2, 3}}, chunks(3, 2))
	assert.Equal(t, [][2]int{{0, 1}, {1, 2}}, chunks(2, 8))
	assert.Equal(t, [][2]int{{0, 5}}, chunks(5, 0))
}
