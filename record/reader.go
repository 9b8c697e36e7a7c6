package record

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ByteOrder is satisfied by binary.LittleEndian and binary.BigEndian.
type ByteOrder interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// TagWidth is the width of a dictionary tag in bytes.
const TagWidth = 16

// DefaultMaxRecordSize bounds the payload a single length marker may
// announce.
const DefaultMaxRecordSize = 1 << 30

type readerOptions struct {
	order         ByteOrder
	maxRecordSize uint32
}

// ReaderOption configures a Reader.
type ReaderOption func(*readerOptions)

// WithByteOrder sets the byte order of length markers and values.
// Default: little endian.
func WithByteOrder(order ByteOrder) ReaderOption {
	return func(o *readerOptions) {
		if order != nil {
			o.order = order
		}
	}
}

// WithMaxRecordSize rejects records announcing more than n payload bytes
// before allocating them.
func WithMaxRecordSize(n uint32) ReaderOption {
	return func(o *readerOptions) {
		if n > 0 {
			o.maxRecordSize = n
		}
	}
}

// Reader reads framed records from a stream.
type Reader struct {
	r       io.Reader
	opts    readerOptions
	offset  int64
	scratch [4]byte
}

// NewReader returns a Reader consuming r.
func NewReader(r io.Reader, optFns ...ReaderOption) *Reader {
	opts := readerOptions{
		order:         binary.LittleEndian,
		maxRecordSize: DefaultMaxRecordSize,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&opts)
		}
	}
	return &Reader{r: r, opts: opts}
}

// Offset returns the number of bytes consumed so far.
func (r *Reader) Offset() int64 { return r.offset }

// ByteOrder returns the byte order the reader decodes with.
func (r *Reader) ByteOrder() ByteOrder { return r.opts.order }

// readMarker reads a length marker. It returns io.EOF only when the stream
// ends exactly before the marker.
func (r *Reader) readMarker() (uint32, error) {
	n, err := io.ReadFull(r.r, r.scratch[:])
	r.offset += int64(n)
	if err != nil {
		return 0, err
	}
	return r.opts.order.Uint32(r.scratch[:]), nil
}

func (r *Reader) header() (start int64, length uint32, err error) {
	start = r.offset
	length, err = r.readMarker()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return start, 0, io.EOF
		}
		return start, 0, &FrameError{Offset: start, Reason: "truncated length marker", cause: err}
	}
	if length > r.opts.maxRecordSize {
		return start, length, &FrameError{
			Offset: start,
			Length: length,
			Reason: fmt.Sprintf("exceeds limit of %d bytes", r.opts.maxRecordSize),
			cause:  ErrRecordTooLarge,
		}
	}
	return start, length, nil
}

func (r *Reader) trailer(start int64, length uint32) error {
	end, err := r.readMarker()
	if err != nil {
		return &FrameError{Offset: start, Length: length, Reason: "truncated trailing marker", cause: noEOF(err)}
	}
	if end != length {
		return &FrameError{Offset: start, Length: length, Reason: fmt.Sprintf("trailing marker %d does not match", end)}
	}
	return nil
}

// Next returns the payload of the next record. It returns io.EOF when the
// stream ends cleanly between records.
func (r *Reader) Next() ([]byte, error) {
	start, length, err := r.header()
	if err != nil {
		return nil, err
	}

	payload := make([]byte, length)
	n, err := io.ReadFull(r.r, payload)
	r.offset += int64(n)
	if err != nil {
		return nil, &FrameError{Offset: start, Length: length, Reason: "truncated payload", cause: noEOF(err)}
	}

	if err := r.trailer(start, length); err != nil {
		return nil, err
	}
	return payload, nil
}

// Skip discards the next record without allocating its payload.
func (r *Reader) Skip() error {
	start, length, err := r.header()
	if err != nil {
		return err
	}

	n, err := io.CopyN(io.Discard, r.r, int64(length))
	r.offset += n
	if err != nil {
		return &FrameError{Offset: start, Length: length, Reason: "truncated payload", cause: noEOF(err)}
	}
	return r.trailer(start, length)
}

// Decode reads the next record and interprets it through d.
func (r *Reader) Decode(d Descriptor) (Values, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	start := r.offset
	payload, err := r.Next()
	if err != nil {
		return nil, err
	}

	v, err := d.decode(r.opts.order, payload)
	if err != nil {
		return nil, &FrameError{Offset: start, Length: uint32(len(payload)), Reason: err.Error()}
	}
	return v, nil
}

// DecodeVersioned reads the next record, whose payload starts with a uint32
// layout version, and interprets it through the descriptor with that
// Version. Every descriptor should start with a Uint32 version field.
func (r *Reader) DecodeVersioned(ds ...Descriptor) (Values, Descriptor, error) {
	for _, d := range ds {
		if err := d.Validate(); err != nil {
			return nil, Descriptor{}, err
		}
	}

	start := r.offset
	payload, err := r.Next()
	if err != nil {
		return nil, Descriptor{}, err
	}
	if len(payload) < 4 {
		return nil, Descriptor{}, &FrameError{Offset: start, Length: uint32(len(payload)), Reason: "too short to hold a version"}
	}

	version := r.opts.order.Uint32(payload)
	for _, d := range ds {
		if uint32(d.Version) != version {
			continue
		}
		v, err := d.decode(r.opts.order, payload)
		if err != nil {
			return nil, Descriptor{}, &FrameError{Offset: start, Length: uint32(len(payload)), Reason: err.Error()}
		}
		return v, d, nil
	}
	return nil, Descriptor{}, &FrameError{
		Offset: start,
		Length: uint32(len(payload)),
		Reason: fmt.Sprintf("version %d", version),
		cause:  ErrUnsupportedVersion,
	}
}

// ReadString reads a record holding a single space-padded string.
func (r *Reader) ReadString() (string, error) {
	payload, err := r.Next()
	if err != nil {
		return "", err
	}
	return trimPadding(payload), nil
}

// ReadTags reads a record of n space-padded tags of TagWidth bytes each.
func (r *Reader) ReadTags(n int) ([]string, error) {
	start := r.offset
	payload, err := r.Next()
	if err != nil {
		return nil, err
	}
	if len(payload)%TagWidth != 0 {
		return nil, &FrameError{Offset: start, Length: uint32(len(payload)), Reason: "not a list of tags"}
	}
	if len(payload) != n*TagWidth {
		return nil, &FrameError{
			Offset: start,
			Length: uint32(len(payload)),
			Reason: fmt.Sprintf("holds %d tags, expected %d", len(payload)/TagWidth, n),
		}
	}

	tags := make([]string, n)
	for i := range tags {
		tags[i] = trimPadding(payload[i*TagWidth : (i+1)*TagWidth])
	}
	return tags, nil
}

// noEOF turns a clean EOF inside a record into io.ErrUnexpectedEOF.
func noEOF(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
