package blobstore

import (
	"context"

	"golang.org/x/time/rate"
)

// Throttled limits reads from b to bytesPerSec using a token bucket with a
// one second burst. Waiting honours ctx. A non-positive rate returns b
// unchanged.
//
// The returned blob does not implement Mappable.
func Throttled(ctx context.Context, b Blob, bytesPerSec int) Blob {
	if bytesPerSec <= 0 {
		return b
	}
	return &throttledBlob{
		blob:    b,
		ctx:     ctx,
		limiter: rate.NewLimiter(rate.Limit(bytesPerSec), bytesPerSec),
	}
}

type throttledBlob struct {
	blob    Blob
	ctx     context.Context
	limiter *rate.Limiter
}

// ReadAt waits for tokens in chunks no larger than the burst size, since
// WaitN rejects requests above it.
func (b *throttledBlob) ReadAt(p []byte, off int64) (int, error) {
	burst := b.limiter.Burst()
	read := 0
	for read < len(p) {
		chunk := min(len(p)-read, burst)
		if err := b.limiter.WaitN(b.ctx, chunk); err != nil {
			return read, err
		}
		n, err := b.blob.ReadAt(p[read:read+chunk], off+int64(read))
		read += n
		if err != nil {
			return read, err
		}
	}
	return read, nil
}

func (b *throttledBlob) Close() error { return b.blob.Close() }

func (b *throttledBlob) Size() int64 { return b.blob.Size() }
