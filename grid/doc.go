// Package grid partitions a static 3D point set into a uniform grid of cubic
// cells and answers incremental neighbour queries over it.
//
// # Building
//
// A Grid is built once from the full point set and a target occupancy
// (average number of points per cell). The cell size is chosen so that the
// bounding box of the points holds roughly len(points)/occupancy cells:
//
//	g, err := grid.Build(points, 10)
//
// After Build the Grid is immutable and may be shared by any number of
// goroutines without locking.
//
// # Querying
//
// Query returns an Iterator positioned on the home cell of a point. The
// caller inspects Candidates, compares BoundSquared against the squared
// search radius and calls Expand until the bound exceeds the radius or the
// grid is exhausted:
//
//	it, _ := g.Query(i)
//	for {
//	    for _, j := range it.Candidates() {
//	        if j != i && r3.Norm2(r3.Sub(g.Position(j), g.Position(i))) < r*r { ... }
//	    }
//	    if it.BoundSquared() >= r*r || !it.Expand() {
//	        break
//	    }
//	}
//
// Candidates after an Expand contain only the points of the newly visited
// shell, so results must be accumulated by the caller. Candidates may lie
// farther than the radius and must be filtered with an explicit distance
// check. The query point itself is part of its home cell and is never
// dropped by the iterator.
package grid
