// Package minio reads snapshots from MinIO, or any S3-compatible server the
// MinIO client can talk to, such as Ceph or SeaweedFS.
//
// Objects are addressed as prefix + name inside one bucket. Open issues a
// StatObject for the size, and every ReadAt becomes a ranged GetObject, so
// only the bytes the decoder consumes cross the network.
//
//	store, err := minio.Dial("localhost:9000", "sim-output", "run-17/", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	snap, err := snapshot.Load(ctx, store, "snap_042", snapshot.Options{})
//
// Dial takes credentials from MINIO_ROOT_USER / MINIO_ROOT_PASSWORD or
// MINIO_ACCESS_KEY / MINIO_SECRET_KEY. Use NewStore to supply a configured
// *minio.Client instead.
package minio
