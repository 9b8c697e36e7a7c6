package grid

import (
	"fmt"

	"github.com/hupe1980/pointloc/shell"
)

// Cell is an integer cell coordinate.
type Cell struct {
	X, Y, Z int
}

// Add returns the cell at the given offset from c.
func (c Cell) Add(o shell.Offset) Cell {
	return Cell{X: c.X + o.X, Y: c.Y + o.Y, Z: c.Z + o.Z}
}

// Chebyshev returns the Chebyshev distance between two cells.
func (c Cell) Chebyshev(o Cell) int {
	return max(absInt(c.X-o.X), absInt(c.Y-o.Y), absInt(c.Z-o.Z))
}

func (c Cell) String() string {
	return fmt.Sprintf("[%d %d %d]", c.X, c.Y, c.Z)
}

// Bounds is an inclusive box of cell coordinates.
type Bounds struct {
	Min, Max Cell
}

// Contains reports whether c lies inside b.
func (b Bounds) Contains(c Cell) bool {
	return c.X >= b.Min.X && c.X <= b.Max.X &&
		c.Y >= b.Min.Y && c.Y <= b.Max.Y &&
		c.Z >= b.Min.Z && c.Z <= b.Max.Z
}

// Dims returns the number of cells along each axis.
func (b Bounds) Dims() (nx, ny, nz int) {
	return b.Max.X - b.Min.X + 1, b.Max.Y - b.Min.Y + 1, b.Max.Z - b.Min.Z + 1
}

// CoveredBy reports whether every cell of b lies within Chebyshev distance
// level of home.
func (b Bounds) CoveredBy(home Cell, level int) bool {
	return home.X-level <= b.Min.X && home.X+level >= b.Max.X &&
		home.Y-level <= b.Min.Y && home.Y+level >= b.Max.Y &&
		home.Z-level <= b.Min.Z && home.Z+level >= b.Max.Z
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
