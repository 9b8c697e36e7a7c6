package testutil

import (
	"math/rand"
	"sort"
	"sync"

	"gonum.org/v1/gonum/spatial/r3"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// UniformPoints generates points uniformly distributed in the unit cube.
func (r *RNG) UniformPoints(num int) []r3.Vec {
	return r.UniformBoxPoints(num, r3.Box{Max: r3.Vec{X: 1, Y: 1, Z: 1}})
}

// UniformBoxPoints generates points uniformly distributed in box.
func (r *RNG) UniformBoxPoints(num int, box r3.Box) []r3.Vec {
	r.mu.Lock()
	defer r.mu.Unlock()

	size := box.Size()
	points := make([]r3.Vec, num)
	for i := range points {
		points[i] = r3.Vec{
			X: box.Min.X + r.rand.Float64()*size.X,
			Y: box.Min.Y + r.rand.Float64()*size.Y,
			Z: box.Min.Z + r.rand.Float64()*size.Z,
		}
	}
	return points
}

// GaussianPoints generates points from an isotropic normal distribution
// around the origin.
func (r *RNG) GaussianPoints(num int, sigma float64) []r3.Vec {
	r.mu.Lock()
	defer r.mu.Unlock()

	points := make([]r3.Vec, num)
	for i := range points {
		points[i] = r3.Vec{
			X: r.rand.NormFloat64() * sigma,
			Y: r.rand.NormFloat64() * sigma,
			Z: r.rand.NormFloat64() * sigma,
		}
	}
	return points
}

// ClusteredPoints generates points in Gaussian blobs around centres drawn
// uniformly from the unit cube. Useful for exercising strongly non-uniform
// cell occupancy.
func (r *RNG) ClusteredPoints(num, clusters int, spread float64) []r3.Vec {
	centres := r.UniformPoints(clusters)

	r.mu.Lock()
	defer r.mu.Unlock()

	points := make([]r3.Vec, num)
	for i := range points {
		c := centres[i%clusters]
		points[i] = r3.Vec{
			X: c.X + r.rand.NormFloat64()*spread,
			Y: c.Y + r.rand.NormFloat64()*spread,
			Z: c.Z + r.rand.NormFloat64()*spread,
		}
	}
	return points
}

// LatticePoints generates an n x n x n lattice with the given spacing.
// Lattice points fall exactly on cell faces for many occupancies, which
// stresses the distance bound.
func LatticePoints(n int, spacing float64) []r3.Vec {
	points := make([]r3.Vec, 0, n*n*n)
	for x := range n {
		for y := range n {
			for z := range n {
				points = append(points, r3.Vec{
					X: float64(x) * spacing,
					Y: float64(y) * spacing,
					Z: float64(z) * spacing,
				})
			}
		}
	}
	return points
}

// BruteForceWithin returns the indices of all points strictly closer than
// radius to points[center], excluding center itself, in ascending order.
func BruteForceWithin(points []r3.Vec, center int, radius float64) []int {
	r2 := radius * radius
	c := points[center]

	var out []int
	for i, p := range points {
		if i == center {
			continue
		}
		if r3.Norm2(r3.Sub(p, c)) < r2 {
			out = append(out, i)
		}
	}
	return out
}

// BruteForceNearest returns the indices of the k points closest to
// points[center], excluding center, ordered by distance then index.
func BruteForceNearest(points []r3.Vec, center, k int) []int {
	c := points[center]

	idx := make([]int, 0, len(points)-1)
	for i := range points {
		if i != center {
			idx = append(idx, i)
		}
	}
	sort.SliceStable(idx, func(a, b int) bool {
		da := r3.Norm2(r3.Sub(points[idx[a]], c))
		db := r3.Norm2(r3.Sub(points[idx[b]], c))
		if da != db {
			return da < db
		}
		return idx[a] < idx[b]
	})
	if k < len(idx) {
		idx = idx[:k]
	}
	return idx
}
