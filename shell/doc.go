// Package shell enumerates the surfaces of concentric cube shells of grid
// cells around a home cell.
//
// A shell of level L is the set of integer offsets (X, Y, Z) whose Chebyshev
// radius max(|X|, |Y|, |Z|) equals L. Level 0 is the home cell itself.
// Offsets of a level are visited in ascending lexicographic (X, Y, Z) order,
// and the last offset of level L is followed by the first offset of level
// L+1:
//
//	off, level := shell.Offset{}, 0
//	for range 27 {
//	    off, level = shell.Next(off, level)
//	}
//	// off == Offset{-2, -2, -2}, level == 2
//
// The package is pure: it performs no grid lookups and holds no state.
package shell
