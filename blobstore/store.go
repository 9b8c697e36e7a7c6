package blobstore

import (
	"bytes"
	"context"
	"io"
	"os"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations return an error satisfying errors.Is(err, ErrNotFound).
var ErrNotFound = os.ErrNotExist

// Store opens immutable blobs by name.
type Store interface {
	// Open opens a blob for reading. Remote implementations use ctx for
	// the lookup and for every subsequent read of the blob.
	Open(ctx context.Context, name string) (Blob, error)
}

// Blob is a read-only handle to a data blob.
type Blob interface {
	io.ReaderAt
	io.Closer
	// Size returns the size of the blob in bytes.
	Size() int64
}

// Mappable is an optional interface for blobs whose contents are already
// in memory.
type Mappable interface {
	// Bytes returns the blob contents. The slice is valid until the blob
	// is closed and must not be modified.
	Bytes() ([]byte, error)
}

// NewReader returns a reader over the whole blob.
func NewReader(b Blob) io.Reader {
	if m, ok := b.(Mappable); ok {
		if data, err := m.Bytes(); err == nil {
			return bytes.NewReader(data)
		}
	}
	return io.NewSectionReader(b, 0, b.Size())
}

// readAt serves ReadAt from an in-memory slice.
func readAt(data, p []byte, off int64) (int, error) {
	if off < 0 || off >= int64(len(data)) {
		return 0, io.EOF
	}
	n := copy(p, data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}
