package snapshot

import (
	"fmt"
	"sync"

	"github.com/hupe1980/pointloc/record"
	"gonum.org/v1/gonum/spatial/r3"
)

// Block tags.
const (
	TagX = "x"
	TagY = "y"
	TagZ = "z"
	TagH = "h"
	TagM = "m"
)

// Snapshot holds the particle data of one simulation output.
type Snapshot struct {
	// Ident is the file identification string.
	Ident string
	// Version is the header layout version the snapshot was read with.
	Version uint32
	// Time is the simulation time. Version 1 headers do not store it.
	Time float64

	// Ints and Reals are the header dictionaries.
	Ints  *record.Dict
	Reals *record.Dict

	X, Y, Z []float64
	// H and M are nil when the snapshot has no such block.
	H, M []float64

	releaseOnce sync.Once
	release     func()
}

// New creates a snapshot of the given positions with an "npart" entry and
// no optional blocks.
func New(ident string, positions []r3.Vec) *Snapshot {
	s := &Snapshot{
		Ident: ident,
		X:     make([]float64, len(positions)),
		Y:     make([]float64, len(positions)),
		Z:     make([]float64, len(positions)),
	}
	for i, p := range positions {
		s.X[i], s.Y[i], s.Z[i] = p.X, p.Y, p.Z
	}
	s.Ints, _ = record.NewDict([]string{"npart"}, []any{int32(len(positions))})
	s.Reals, _ = record.NewDict(nil, nil)
	return s
}

// Len returns the number of particles.
func (s *Snapshot) Len() int { return len(s.X) }

// Positions returns the particle coordinates. The slice is freshly
// allocated on every call.
func (s *Snapshot) Positions() []r3.Vec {
	out := make([]r3.Vec, len(s.X))
	for i := range out {
		out[i] = r3.Vec{X: s.X[i], Y: s.Y[i], Z: s.Z[i]}
	}
	return out
}

// Release returns the memory reservation taken by Load. It is safe to call
// more than once, and on snapshots that were not loaded.
func (s *Snapshot) Release() {
	s.releaseOnce.Do(func() {
		if s.release != nil {
			s.release()
		}
	})
}

// blocks returns the data blocks in file order.
func (s *Snapshot) blocks() []block {
	out := []block{{TagX, s.X}, {TagY, s.Y}, {TagZ, s.Z}}
	if s.H != nil {
		out = append(out, block{TagH, s.H})
	}
	if s.M != nil {
		out = append(out, block{TagM, s.M})
	}
	return out
}

type block struct {
	tag    string
	values []float64
}

// validate checks that all blocks match the particle count.
func (s *Snapshot) validate() error {
	npart := len(s.X)
	if npart == 0 {
		return formatErrorf("no particles")
	}
	for _, b := range s.blocks() {
		if len(b.values) != npart {
			return formatErrorf("block %q holds %d values for %d particles", b.tag, len(b.values), npart)
		}
	}
	if s.Ints != nil {
		if n, ok := s.Ints.Int("npart"); ok && n != int64(npart) {
			return formatErrorf("npart is %d but blocks hold %d particles", n, npart)
		}
	}
	return nil
}

func (s *Snapshot) String() string {
	return fmt.Sprintf("snapshot %q v%d: %d particles, %d blocks", s.Ident, s.Version, s.Len(), len(s.blocks()))
}
