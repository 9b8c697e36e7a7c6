// Package snapshot loads particle positions from SPH simulation snapshots.
//
// A snapshot is a stream of Fortran unformatted records, optionally
// wrapped in a zstd or LZ4 frame:
//
//	fileident         space-padded string
//	header            version, tagged flag, block count (v2 adds time)
//	integer dict      tag/value pairs, must hold "npart"
//	real dict         tag/value pairs
//	block * nblocks   a 16-byte tag record, then npart float64 values
//
// Blocks x, y and z are required; h (smoothing length) and m (mass) are
// optional. Other blocks are skipped with a warning, or rejected in strict
// mode.
//
//	snap, err := snapshot.Load(ctx, blobstore.NewLocalStore("out", nil), "snap_042", snapshot.Options{})
//	if err != nil { ... }
//	defer snap.Release()
//
//	idx, err := pointloc.New(snap.Positions())
package snapshot
