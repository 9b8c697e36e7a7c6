package pointloc

import (
	"cmp"
	"container/heap"
	"context"
	"errors"
	"math"
	"slices"
	"sync/atomic"
	"time"

	"github.com/hupe1980/pointloc/grid"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r3"
)

// Neighbour is a point found by a neighbour query.
type Neighbour struct {
	Index     int
	Distance2 float64 // squared distance to the query point
}

func compareNeighbours(a, b Neighbour) int {
	if c := cmp.Compare(a.Distance2, b.Distance2); c != 0 {
		return c
	}
	return cmp.Compare(a.Index, b.Index)
}

// walk drives the expand/bound protocol for point i. visit sees every
// candidate other than i together with its squared distance; done is asked
// after each level whether the current bound settles the query. candidates
// is the number of points the iterator exposed, the query point included.
func (pl *PointLocations) walk(ctx context.Context, i int, visit func(j int, d2 float64), done func(bound float64) bool) (levels, candidates int, err error) {
	it, err := pl.Query(i)
	if err != nil {
		return 0, 0, err
	}

	p := pl.grid.Position(i)
	for {
		for _, j := range it.Candidates() {
			if j == i {
				continue
			}
			visit(j, r3.Norm2(r3.Sub(pl.grid.Position(j), p)))
		}
		if done(it.BoundSquared()) || !it.Expand() {
			return it.Level(), int(it.Visited()), nil
		}
		if err := ctx.Err(); err != nil {
			return it.Level(), int(it.Visited()), err
		}
	}
}

func validateRadius(radius float64) error {
	if math.IsNaN(radius) || radius < 0 {
		return ErrInvalidRadius
	}
	return nil
}

// Neighbours returns every point strictly closer than radius to point i,
// excluding i itself, ordered by distance and then by index.
func (pl *PointLocations) Neighbours(ctx context.Context, i int, radius float64) ([]Neighbour, error) {
	start := time.Now()
	ns, levels, candidates, err := pl.neighbours(ctx, i, radius)
	pl.metrics.RecordQuery(levels, candidates, time.Since(start), err)
	pl.logger.WithRadius(radius).LogQuery(ctx, i, levels, candidates, err)
	return ns, err
}

func (pl *PointLocations) neighbours(ctx context.Context, i int, radius float64) ([]Neighbour, int, int, error) {
	if err := validateRadius(radius); err != nil {
		return nil, 0, 0, err
	}

	r2 := radius * radius
	var ns []Neighbour
	levels, candidates, err := pl.walk(ctx, i,
		func(j int, d2 float64) {
			if d2 < r2 {
				ns = append(ns, Neighbour{Index: j, Distance2: d2})
			}
		},
		func(bound float64) bool { return bound >= r2 },
	)
	if err != nil {
		return nil, levels, candidates, err
	}

	slices.SortFunc(ns, compareNeighbours)
	return ns, levels, candidates, nil
}

// NearestK returns the k points closest to point i, excluding i itself,
// ordered by distance and then by index. Fewer than k neighbours are
// returned when the point set is smaller than k+1.
func (pl *PointLocations) NearestK(ctx context.Context, i, k int) ([]Neighbour, error) {
	start := time.Now()
	ns, levels, candidates, err := pl.nearestK(ctx, i, k)
	pl.metrics.RecordQuery(levels, candidates, time.Since(start), err)
	pl.logger.WithK(k).LogQuery(ctx, i, levels, candidates, err)
	return ns, err
}

func (pl *PointLocations) nearestK(ctx context.Context, i, k int) ([]Neighbour, int, int, error) {
	if k <= 0 {
		return nil, 0, 0, ErrInvalidK
	}

	best := make(maxHeap, 0, k)
	levels, candidates, err := pl.walk(ctx, i,
		func(j int, d2 float64) {
			n := Neighbour{Index: j, Distance2: d2}
			if len(best) < k {
				heap.Push(&best, n)
			} else if compareNeighbours(n, best[0]) < 0 {
				best[0] = n
				heap.Fix(&best, 0)
			}
		},
		// Unvisited points lie at or beyond the bound, so they can only tie
		// with the current k-th neighbour when it reaches the bound.
		func(bound float64) bool { return len(best) == k && best[0].Distance2 < bound },
	)
	if err != nil {
		return nil, levels, candidates, err
	}

	ns := []Neighbour(best)
	slices.SortFunc(ns, compareNeighbours)
	return ns, levels, candidates, nil
}

// maxHeap keeps the worst of the current best neighbours on top.
type maxHeap []Neighbour

func (h maxHeap) Len() int           { return len(h) }
func (h maxHeap) Less(i, j int) bool { return compareNeighbours(h[i], h[j]) > 0 }
func (h maxHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *maxHeap) Push(x any)        { *h = append(*h, x.(Neighbour)) }
func (h *maxHeap) Pop() any {
	old := *h
	n := old[len(old)-1]
	*h = old[:len(old)-1]
	return n
}

// BatchNeighbours runs Neighbours for every index concurrently. The result
// at position k belongs to indices[k]. The first failing query cancels the
// remaining ones and its error is returned.
func (pl *PointLocations) BatchNeighbours(ctx context.Context, indices []int, radius float64) ([][]Neighbour, error) {
	start := time.Now()
	if err := validateRadius(radius); err != nil {
		pl.metrics.RecordBatch(len(indices), len(indices), time.Since(start))
		pl.logger.LogBatch(ctx, len(indices), len(indices))
		return nil, err
	}

	results := make([][]Neighbour, len(indices))
	var ran, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(pl.concurrency)
	for k, i := range indices {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			ran.Add(1)
			qstart := time.Now()
			ns, levels, candidates, err := pl.neighbours(gctx, i, radius)
			pl.metrics.RecordQuery(levels, candidates, time.Since(qstart), err)
			if err != nil {
				// Queries interrupted by the batch being cancelled did not fail themselves.
				if cerr := gctx.Err(); cerr == nil || !errors.Is(err, cerr) {
					failed.Add(1)
				}
				return err
			}
			results[k] = ns
			return nil
		})
	}
	err := g.Wait()

	nran, nfailed := int(ran.Load()), int(failed.Load())
	pl.metrics.RecordBatch(nran, nfailed, time.Since(start))
	pl.logger.WithRadius(radius).LogBatch(ctx, nran, nfailed)
	if err != nil {
		return nil, err
	}
	return results, nil
}

// BruteForceNeighbours is the exhaustive O(N) counterpart of Neighbours.
// It exists as a reference for verifying grid queries.
func (pl *PointLocations) BruteForceNeighbours(i int, radius float64) ([]Neighbour, error) {
	if err := validateRadius(radius); err != nil {
		return nil, err
	}
	if i < 0 || i >= pl.grid.Len() {
		return nil, translateError(&grid.IndexError{Index: i, Len: pl.grid.Len()})
	}

	r2 := radius * radius
	p := pl.grid.Position(i)
	var ns []Neighbour
	for j := range pl.grid.Len() {
		if j == i {
			continue
		}
		if d2 := r3.Norm2(r3.Sub(pl.grid.Position(j), p)); d2 < r2 {
			ns = append(ns, Neighbour{Index: j, Distance2: d2})
		}
	}
	slices.SortFunc(ns, compareNeighbours)
	return ns, nil
}
