package grid

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Grid is an immutable uniform partition of a point set into cubic cells.
//
// Cell contents are stored CSR-style over the dense box of populated cells:
// the points of the cell with linear id l are indices[start[l]:start[l+1]],
// in insertion order.
type Grid struct {
	points    []r3.Vec
	origin    r3.Vec
	cellSize  float64
	occupancy float64

	bounds     Bounds
	nx, ny, nz int

	start   []int
	indices []int
	cellIDs []int // linear cell id per point
}

// Build partitions points into cells holding targetOccupancy points on
// average.
//
// Build fails with a ConfigurationError when points is empty, when the
// bounding box has zero extent along any axis, when a coordinate is not
// finite, when targetOccupancy is not a positive finite number, or when the
// populated bounds would exceed the configured cell limit.
//
// The points slice is retained and must not be modified afterwards.
func Build(points []r3.Vec, targetOccupancy float64, optFns ...Option) (*Grid, error) {
	opts := applyOptions(optFns)

	if len(points) == 0 {
		return nil, configErrorf("empty point set")
	}
	if uint64(len(points)) > math.MaxUint32 {
		return nil, configErrorf("too many points: %d", len(points))
	}
	if !(targetOccupancy > 0) || math.IsInf(targetOccupancy, 0) {
		return nil, configErrorf("target occupancy must be positive and finite, got %g", targetOccupancy)
	}

	box, err := boundingBox(points)
	if err != nil {
		return nil, err
	}

	size := box.Size()
	if size.X <= 0 || size.Y <= 0 || size.Z <= 0 {
		return nil, configErrorf("degenerate bounding box with extent (%g, %g, %g)", size.X, size.Y, size.Z)
	}

	volume := size.X * size.Y * size.Z
	cellSize := math.Cbrt(volume * targetOccupancy / float64(len(points)))
	if !(cellSize > 0) || math.IsInf(cellSize, 0) {
		return nil, configErrorf("cannot derive cell size from volume %g", volume)
	}

	g := &Grid{
		points:    points,
		origin:    box.Min,
		cellSize:  cellSize,
		occupancy: targetOccupancy,
	}

	// Reject before allocating: the populated bounds span at most
	// floor(extent/cellSize)+1 cells per axis.
	est := (math.Floor(size.X/cellSize) + 1) *
		(math.Floor(size.Y/cellSize) + 1) *
		(math.Floor(size.Z/cellSize) + 1)
	if est > float64(opts.maxCells) {
		return nil, configErrorf("grid would span %.0f cells, limit is %d", est, opts.maxCells)
	}

	cells := make([]Cell, len(points))
	b := Bounds{
		Min: Cell{X: math.MaxInt, Y: math.MaxInt, Z: math.MaxInt},
		Max: Cell{X: math.MinInt, Y: math.MinInt, Z: math.MinInt},
	}
	for i, p := range points {
		c := g.CellAt(p)
		cells[i] = c
		b.Min = Cell{X: min(b.Min.X, c.X), Y: min(b.Min.Y, c.Y), Z: min(b.Min.Z, c.Z)}
		b.Max = Cell{X: max(b.Max.X, c.X), Y: max(b.Max.Y, c.Y), Z: max(b.Max.Z, c.Z)}
	}
	g.bounds = b
	g.nx, g.ny, g.nz = b.Dims()

	numCells := g.nx * g.ny * g.nz
	if numCells > opts.maxCells {
		return nil, configErrorf("grid spans %d cells, limit is %d", numCells, opts.maxCells)
	}

	// Stable counting sort of point indices by cell.
	g.cellIDs = make([]int, len(points))
	g.start = make([]int, numCells+1)
	for i, c := range cells {
		id := g.linear(c)
		g.cellIDs[i] = id
		g.start[id+1]++
	}
	for l := 1; l <= numCells; l++ {
		g.start[l] += g.start[l-1]
	}
	next := make([]int, numCells)
	copy(next, g.start[:numCells])
	g.indices = make([]int, len(points))
	for i, id := range g.cellIDs {
		g.indices[next[id]] = i
		next[id]++
	}

	return g, nil
}

func boundingBox(points []r3.Vec) (r3.Box, error) {
	box := r3.Box{Min: points[0], Max: points[0]}
	for i, p := range points {
		if !finite(p) {
			return r3.Box{}, configErrorf("point %d has non-finite coordinates %v", i, p)
		}
		box.Min = r3.Vec{X: math.Min(box.Min.X, p.X), Y: math.Min(box.Min.Y, p.Y), Z: math.Min(box.Min.Z, p.Z)}
		box.Max = r3.Vec{X: math.Max(box.Max.X, p.X), Y: math.Max(box.Max.Y, p.Y), Z: math.Max(box.Max.Z, p.Z)}
	}
	return box, nil
}

func finite(p r3.Vec) bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) &&
		!math.IsNaN(p.Y) && !math.IsInf(p.Y, 0) &&
		!math.IsNaN(p.Z) && !math.IsInf(p.Z, 0)
}

func (g *Grid) linear(c Cell) int {
	return ((c.Z-g.bounds.Min.Z)*g.ny+(c.Y-g.bounds.Min.Y))*g.nx + (c.X - g.bounds.Min.X)
}

func (g *Grid) cellFromLinear(id int) Cell {
	x := id % g.nx
	y := (id / g.nx) % g.ny
	z := id / (g.nx * g.ny)
	return Cell{X: x + g.bounds.Min.X, Y: y + g.bounds.Min.Y, Z: z + g.bounds.Min.Z}
}

// units converts a position into fractional cell units relative to the
// grid origin. The integer part of each component is the cell coordinate.
func (g *Grid) units(p r3.Vec) r3.Vec {
	return r3.Vec{
		X: (p.X - g.origin.X) / g.cellSize,
		Y: (p.Y - g.origin.Y) / g.cellSize,
		Z: (p.Z - g.origin.Z) / g.cellSize,
	}
}

// CellAt returns the coordinate of the cell containing p. The cell may lie
// outside the populated bounds.
func (g *Grid) CellAt(p r3.Vec) Cell {
	u := g.units(p)
	return Cell{X: int(math.Floor(u.X)), Y: int(math.Floor(u.Y)), Z: int(math.Floor(u.Z))}
}

// CellOf returns the cell holding point i. It panics if i is out of range.
func (g *Grid) CellOf(i int) Cell {
	return g.cellFromLinear(g.cellIDs[i])
}

// PointsInCell returns the indices of the points located in c, in insertion
// order. The result is empty for cells outside the populated bounds. The
// returned slice is shared with the grid and must not be modified.
func (g *Grid) PointsInCell(c Cell) []int {
	if !g.bounds.Contains(c) {
		return nil
	}
	id := g.linear(c)
	lo, hi := g.start[id], g.start[id+1]
	return g.indices[lo:hi:hi]
}

// Len returns the number of points.
func (g *Grid) Len() int { return len(g.points) }

// Position returns the coordinates of point i.
func (g *Grid) Position(i int) r3.Vec { return g.points[i] }

// CellSize returns the edge length of a cell.
func (g *Grid) CellSize() float64 { return g.cellSize }

// Origin returns the lower corner of cell (0, 0, 0).
func (g *Grid) Origin() r3.Vec { return g.origin }

// Bounds returns the minimum and maximum populated cell coordinates.
func (g *Grid) Bounds() Bounds { return g.bounds }

// NumCells returns the number of cells spanned by Bounds.
func (g *Grid) NumCells() int { return g.nx * g.ny * g.nz }

// Occupancy returns the target occupancy the grid was built with.
func (g *Grid) Occupancy() float64 { return g.occupancy }

// Query returns an iterator over the neighbours of point i, positioned on
// its home cell.
func (g *Grid) Query(i int) (*Iterator, error) {
	if i < 0 || i >= len(g.points) {
		return nil, &IndexError{Index: i, Len: len(g.points)}
	}
	return newIterator(g, i), nil
}
