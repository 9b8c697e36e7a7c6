package snapshot

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression selects the frame format wrapped around the record stream.
type Compression uint8

const (
	// CompressionAuto detects the format from the leading magic bytes.
	// Write treats it as CompressionNone.
	CompressionAuto Compression = iota
	CompressionNone
	CompressionZstd
	CompressionLZ4
)

var (
	zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}
	lz4Magic  = []byte{0x04, 0x22, 0x4D, 0x18}
)

func (c Compression) String() string {
	switch c {
	case CompressionAuto:
		return "auto"
	case CompressionNone:
		return "none"
	case CompressionZstd:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	}
	return fmt.Sprintf("Compression(%d)", uint8(c))
}

// ParseCompression parses the names produced by String. The empty string
// selects CompressionAuto.
func ParseCompression(s string) (Compression, error) {
	switch s {
	case "", "auto":
		return CompressionAuto, nil
	case "none":
		return CompressionNone, nil
	case "zstd":
		return CompressionZstd, nil
	case "lz4":
		return CompressionLZ4, nil
	}
	return 0, fmt.Errorf("snapshot: unknown compression %q", s)
}

// detect reports the compression of the stream behind br without
// consuming it.
func detect(br *bufio.Reader) (Compression, error) {
	magic, err := br.Peek(4)
	if err != nil && err != io.EOF {
		return 0, err
	}
	switch {
	case bytes.Equal(magic, zstdMagic):
		return CompressionZstd, nil
	case bytes.Equal(magic, lz4Magic):
		return CompressionLZ4, nil
	}
	return CompressionNone, nil
}

// decompress unwraps r. The returned close function releases decoder
// resources.
func decompress(r io.Reader, c Compression) (io.Reader, Compression, func(), error) {
	br := bufio.NewReaderSize(r, 1<<16)
	if c == CompressionAuto {
		var err error
		if c, err = detect(br); err != nil {
			return nil, 0, nil, err
		}
	}

	switch c {
	case CompressionNone:
		return br, c, func() {}, nil
	case CompressionZstd:
		dec, err := zstd.NewReader(br)
		if err != nil {
			return nil, 0, nil, err
		}
		return dec, c, dec.Close, nil
	case CompressionLZ4:
		return lz4.NewReader(br), c, func() {}, nil
	}
	return nil, 0, nil, fmt.Errorf("snapshot: unsupported compression %s", c)
}

// compress wraps w. Closing the returned writer flushes the frame but
// leaves w open.
func compress(w io.Writer, c Compression) (io.WriteCloser, error) {
	switch c {
	case CompressionAuto, CompressionNone:
		return nopCloser{w}, nil
	case CompressionZstd:
		return zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	case CompressionLZ4:
		return lz4.NewWriter(w), nil
	}
	return nil, fmt.Errorf("snapshot: unsupported compression %s", c)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
