// Package testutil provides testing utilities for pointloc.
//
// This package is intended for use in tests and benchmarks only.
// It provides seeded point generators and exhaustive reference searches.
//
// # Random Point Generation
//
//	rng := testutil.NewRNG(seed)
//	pts := rng.UniformPoints(10000)               // unit cube
//	pts = rng.ClusteredPoints(10000, 8, 0.02)     // Gaussian blobs
//
// # Exact Search (Ground Truth)
//
//	want := testutil.BruteForceWithin(pts, i, 0.1)
package testutil
