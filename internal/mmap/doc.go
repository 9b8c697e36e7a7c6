// Package mmap maps snapshot files read-only into memory.
//
// A Mapping serves random reads through io.ReaderAt without copying the
// file through kernel buffers, which lets the snapshot loader decode large
// position blocks straight out of the page cache.
//
//	m, err := mmap.Open("snap_000.dat")
//	if err != nil { ... }
//	defer m.Close()
//
//	_ = m.Advise(mmap.Sequential)
//
// On Unix the mapping uses mmap(2) and madvise(2). On Windows it uses
// CreateFileMapping and MapViewOfFile, and Advise is a no-op.
//
// A Mapping is safe for concurrent reads. Close is idempotent; callers
// must not touch the slice returned by Bytes after Close.
package mmap
