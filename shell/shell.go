package shell

import "fmt"

// Offset is an integer cell offset relative to a home cell.
type Offset struct {
	X, Y, Z int
}

// Level returns the Chebyshev radius of the offset.
func (o Offset) Level() int {
	return max(abs(o.X), abs(o.Y), abs(o.Z))
}

func (o Offset) String() string {
	return fmt.Sprintf("(%d,%d,%d)", o.X, o.Y, o.Z)
}

// First returns the first offset emitted for the given level.
func First(level int) Offset {
	return Offset{X: -level, Y: -level, Z: -level}
}

// Next advances the traversal cursor (off, level) by exactly one offset.
//
// Starting from the home cell (Offset{}, 0), the first call yields
// (-1,-1,-1) at level 1. Only offsets on the surface of the level cube are
// produced; interior runs along Z are skipped in a single step.
func Next(off Offset, level int) (Offset, int) {
	if level <= 0 {
		return First(1), 1
	}

	x, y, z := off.X, off.Y, off.Z

	if z < level {
		if z == -level && abs(x) < level && abs(y) < level {
			// Everything strictly between the two Z faces belongs to
			// smaller shells.
			z = level
		} else {
			z++
		}
		return Offset{X: x, Y: y, Z: z}, level
	}

	// Z wrapped: the new offset sits on the Z=-level face.
	z = -level
	if y < level {
		return Offset{X: x, Y: y + 1, Z: z}, level
	}

	y = -level
	if x < level {
		return Offset{X: x + 1, Y: y, Z: z}, level
	}

	next := level + 1
	return First(next), next
}

// Size returns the number of offsets in the shell of the given level.
func Size(level int) int {
	if level <= 0 {
		return 1
	}
	outer := 2*level + 1
	inner := 2*level - 1
	return outer*outer*outer - inner*inner*inner
}

// Walk calls fn for every offset of the given level in traversal order.
// It stops early if fn returns false.
func Walk(level int, fn func(Offset) bool) {
	if level <= 0 {
		fn(Offset{})
		return
	}
	for off, l := First(level), level; l == level; off, l = Next(off, l) {
		if !fn(off) {
			return
		}
	}
}

// WalkWithin calls fn, in traversal order, for every offset of the given
// level that lies inside the inclusive box [lo, hi]. The offsets are exactly
// those Walk would produce and fn accepts, but the parts of the shell
// outside the box are never enumerated.
func WalkWithin(level int, lo, hi Offset, fn func(Offset) bool) {
	if level <= 0 {
		if lo.X <= 0 && hi.X >= 0 && lo.Y <= 0 && hi.Y >= 0 && lo.Z <= 0 && hi.Z >= 0 {
			fn(Offset{})
		}
		return
	}

	zlo, zhi := max(-level, lo.Z), min(level, hi.Z)
	for x := max(-level, lo.X); x <= min(level, hi.X); x++ {
		for y := max(-level, lo.Y); y <= min(level, hi.Y); y++ {
			if abs(x) == level || abs(y) == level {
				for z := zlo; z <= zhi; z++ {
					if !fn(Offset{X: x, Y: y, Z: z}) {
						return
					}
				}
				continue
			}
			// Only the two Z faces of the column are on the shell.
			if zlo == -level && zhi >= -level && !fn(Offset{X: x, Y: y, Z: -level}) {
				return
			}
			if zhi == level && zlo <= level && !fn(Offset{X: x, Y: y, Z: level}) {
				return
			}
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
