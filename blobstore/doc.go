// Package blobstore provides read access to simulation snapshots wherever
// they are stored.
//
// A Store opens named, immutable blobs. Implementations must be safe for
// concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: local filesystem, memory-mapped
//   - MemoryStore: in-memory, for tests and fixtures
//   - s3.Store: Amazon S3 with ranged reads
//   - minio.Store: MinIO and other S3-compatible storage
//
// # Sequential Reads
//
// Snapshot files are record streams and are consumed front to back.
// NewReader turns any Blob into an io.Reader, reading straight from the
// mapped memory when the blob implements Mappable:
//
//	blob, err := store.Open(ctx, "snap_042")
//	if err != nil { ... }
//	defer blob.Close()
//
//	r := blobstore.NewReader(blobstore.Throttled(ctx, blob, 64<<20))
package blobstore
