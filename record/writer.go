package record

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Writer writes framed records. The first error sticks: later calls return
// it without writing.
type Writer struct {
	w     io.Writer
	order ByteOrder
	err   error
}

// NewWriter returns a Writer emitting records to w. A nil order selects
// little endian.
func NewWriter(w io.Writer, order ByteOrder) *Writer {
	if order == nil {
		order = binary.LittleEndian
	}
	return &Writer{w: w, order: order}
}

// Err returns the first error encountered.
func (w *Writer) Err() error { return w.err }

// Write frames payload as one record.
func (w *Writer) Write(payload []byte) error {
	if w.err != nil {
		return w.err
	}
	if uint64(len(payload)) > math.MaxUint32 {
		w.err = fmt.Errorf("%w: %d bytes", ErrRecordTooLarge, len(payload))
		return w.err
	}

	marker := w.order.AppendUint32(nil, uint32(len(payload)))
	for _, b := range [][]byte{marker, payload, marker} {
		if _, err := w.w.Write(b); err != nil {
			w.err = err
			return err
		}
	}
	return nil
}

// Encode writes v as one record laid out by d.
func (w *Writer) Encode(d Descriptor, v Values) error {
	if w.err != nil {
		return w.err
	}
	payload, err := d.encode(w.order, v)
	if err != nil {
		return err
	}
	return w.Write(payload)
}

// WriteString writes s as a record of width bytes, padded with spaces. A
// width smaller than len(s) writes s unpadded.
func (w *Writer) WriteString(s string, width int) error {
	if pad := width - len(s); pad > 0 {
		s += spaces(pad)
	}
	return w.Write([]byte(s))
}

// WriteTags writes tags as one record of TagWidth-byte fields.
func (w *Writer) WriteTags(tags []string) error {
	if w.err != nil {
		return w.err
	}
	payload := make([]byte, 0, len(tags)*TagWidth)
	for _, tag := range tags {
		if len(tag) > TagWidth {
			return fmt.Errorf("record: tag %q longer than %d bytes", tag, TagWidth)
		}
		payload = append(payload, tag...)
		payload = append(payload, spaces(TagWidth-len(tag))...)
	}
	return w.Write(payload)
}

// WriteArray writes a slice of a fixed-size kind as one record.
func (w *Writer) WriteArray(kind Kind, values any) error {
	if w.err != nil {
		return w.err
	}
	if kind == String {
		return descriptorErrorf("WriteArray cannot write strings, use WriteString")
	}
	payload, _, err := kind.encode(w.order, nil, values)
	if err != nil {
		return err
	}
	return w.Write(payload)
}

// WriteDict writes the three-record dictionary layout read by ReadDict.
// values must be a slice of the Go type matching kind with one element per
// tag. With tagged false the tag record is omitted.
func (w *Writer) WriteDict(kind Kind, tags []string, values any, tagged bool) error {
	payload, n, err := kind.encode(w.order, nil, values)
	if err != nil {
		return err
	}
	if n != len(tags) {
		return fmt.Errorf("record: %d tags for %d values", len(tags), n)
	}

	if err := w.WriteArray(Uint32, []uint32{uint32(len(tags))}); err != nil {
		return err
	}
	if tagged {
		if err := w.WriteTags(tags); err != nil {
			return err
		}
	}
	return w.Write(payload)
}
