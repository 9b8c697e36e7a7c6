// Package pointloc provides incremental neighbour search over a fixed set of
// points in three dimensions.
//
// Points are partitioned once into a uniform grid of cubic cells. A query
// starts at the cell holding the query point and expands outwards one cube
// shell of cells at a time. After every step the iterator reports a lower
// bound on the distance to any point it has not yet returned, so callers can
// stop as soon as that bound reaches their search radius.
//
// # Quick Start
//
//	pl, err := pointloc.New(points, pointloc.WithTargetOccupancy(10))
//	if err != nil {
//	    return err
//	}
//
//	it, _ := pl.Query(i)
//	for {
//	    for _, j := range it.Candidates() {
//	        // check the distance between i and j
//	    }
//	    if it.BoundSquared() >= r*r || !it.Expand() {
//	        break
//	    }
//	}
//
// The same loop is packaged as Neighbours, NearestK and BatchNeighbours:
//
//	ns, _ := pl.Neighbours(ctx, i, 0.1)
//	for _, n := range ns {
//	    fmt.Println(n.Index, math.Sqrt(n.Distance2))
//	}
//
// # Concurrency
//
// A PointLocations is immutable after New returns and may be queried from
// any number of goroutines. Each iterator belongs to the goroutine that
// created it.
//
// # Snapshots
//
// Point sets are usually read from SPH particle snapshots; see the snapshot
// package for the reader and the blobstore package for the storage backends
// it reads from.
package pointloc
