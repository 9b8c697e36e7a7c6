package grid

import (
	"math"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/pointloc/shell"
	"gonum.org/v1/gonum/spatial/r3"
)

// boundSlack shrinks the distance bound by a relative 1e-12 so that rounding
// in the cell-unit transform can never push an unvisited point inside it.
const boundSlack = 1 - 1e-12

// Iterator walks the cells around the home cell of a query point in
// concentric cube shells.
//
// After level L has been visited, every point located in a cell at
// Chebyshev distance <= L from the home cell has been returned by
// Candidates exactly once. An Iterator is owned by a single caller and must
// not be shared between goroutines or reused for another query point.
type Iterator struct {
	g     *Grid
	index int
	home  Cell
	u     r3.Vec // query position in cell units

	level      int
	candidates []int
	seen       *roaring.Bitmap
	exhausted  bool
}

func newIterator(g *Grid, i int) *Iterator {
	it := &Iterator{
		g:     g,
		index: i,
		home:  g.CellOf(i),
		u:     g.units(g.points[i]),
		seen:  roaring.New(),
	}
	home := g.PointsInCell(it.home)
	it.candidates = make([]int, len(home))
	copy(it.candidates, home)
	it.mark(it.candidates)
	return it
}

func (it *Iterator) mark(indices []int) {
	for _, j := range indices {
		it.seen.Add(uint32(j))
	}
}

// Index returns the query point.
func (it *Iterator) Index() int { return it.index }

// Home returns the cell containing the query point.
func (it *Iterator) Home() Cell { return it.home }

// Level returns the last completely visited shell level.
func (it *Iterator) Level() int { return it.level }

// Exhausted reports whether Expand has signalled that no cells remain.
func (it *Iterator) Exhausted() bool { return it.exhausted }

// Candidates returns the points discovered by the most recent step: the
// home cell contents before any Expand, and afterwards only the points of
// the newest shell. The query point itself is included in the home cell.
// The slice belongs to the caller.
func (it *Iterator) Candidates() []int {
	return it.candidates
}

// BoundSquared returns a lower bound on the squared distance between the
// query point and any point whose cell has not been visited yet.
//
// At level L the visited cells form the cube of cells at Chebyshev distance
// <= L from the home cell. The bound is the squared distance from the exact
// query position to the nearest face of that cube, which is the nearest
// face of any cell at distance L+1.
func (it *Iterator) BoundSquared() float64 {
	l := float64(it.level)
	d := math.Min(
		axisGap(it.u.X, it.home.X, l),
		math.Min(axisGap(it.u.Y, it.home.Y, l), axisGap(it.u.Z, it.home.Z, l)),
	)
	if d <= 0 {
		return 0
	}
	d *= it.g.cellSize * boundSlack
	return d * d
}

// axisGap returns the distance, in cell units, from u to the nearer of the
// two cube faces home-level and home+level+1 along one axis.
func axisGap(u float64, home int, level float64) float64 {
	lo := float64(home) - level
	hi := float64(home) + level + 1
	return math.Min(u-lo, hi-u)
}

// Expand visits the next shell level. It returns false, without changing
// the candidates, once the visited cube already covers the populated bounds
// of the grid; at that point every point has been returned.
func (it *Iterator) Expand() bool {
	if it.exhausted {
		return false
	}
	if it.g.bounds.CoveredBy(it.home, it.level) {
		it.exhausted = true
		return false
	}

	it.level++
	fresh := make([]int, 0, len(it.candidates))
	lo := shell.Offset{X: it.g.bounds.Min.X - it.home.X, Y: it.g.bounds.Min.Y - it.home.Y, Z: it.g.bounds.Min.Z - it.home.Z}
	hi := shell.Offset{X: it.g.bounds.Max.X - it.home.X, Y: it.g.bounds.Max.Y - it.home.Y, Z: it.g.bounds.Max.Z - it.home.Z}
	// Cells outside the populated bounds are empty.
	shell.WalkWithin(it.level, lo, hi, func(o shell.Offset) bool {
		fresh = append(fresh, it.g.PointsInCell(it.home.Add(o))...)
		return true
	})
	it.candidates = fresh
	it.mark(fresh)
	return true
}

// Visited returns the number of points exposed so far, across all levels.
func (it *Iterator) Visited() uint64 {
	return it.seen.GetCardinality()
}

// Seen returns a copy of the set of points exposed so far.
func (it *Iterator) Seen() *roaring.Bitmap {
	return it.seen.Clone()
}
