// Package s3 opens snapshots stored in Amazon S3.
//
// # Usage
//
//	store, err := s3.NewFromConfig(ctx, "sim-output", "run-17/")
//	if err != nil { ... }
//
//	snap, err := snapshot.Load(ctx, store, "snap_042", snapshot.Options{})
//
// Blobs are read with ranged GetObject requests, so a reader only fetches
// the bytes it consumes. For S3-compatible services pass WithEndpoint.
package s3
