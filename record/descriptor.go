package record

import (
	"encoding/binary"
	"fmt"
)

// Remaining is the Count of a field that takes up the rest of the payload.
// Only the last field of a descriptor may use it.
const Remaining = -1

// Field is one typed entry of a record.
//
// Count is the number of elements: 0 and 1 describe a scalar, larger values
// a fixed-size array and Remaining an array filling the rest of the record.
// For String fields Count is the width in bytes. CountFrom names an earlier
// scalar integer field of the same record holding the element count; it
// takes precedence over Count.
type Field struct {
	Name      string
	Kind      Kind
	Count     int
	CountFrom string
}

func (f Field) array() bool {
	return f.CountFrom != "" || f.Count == Remaining || f.Count > 1
}

// Descriptor describes the layout of a record.
type Descriptor struct {
	Version uint16
	Name    string
	Fields  []Field
}

// Validate checks that every field is well formed and that every CountFrom
// reference points to an earlier scalar integer field.
func (d Descriptor) Validate() error {
	seen := make(map[string]Field, len(d.Fields))
	for i, f := range d.Fields {
		if f.Name == "" {
			return descriptorErrorf("%s v%d: field %d has no name", d.Name, d.Version, i)
		}
		if _, dup := seen[f.Name]; dup {
			return descriptorErrorf("%s v%d: duplicate field %q", d.Name, d.Version, f.Name)
		}
		if !f.Kind.valid() {
			return descriptorErrorf("%s v%d: field %q has unknown kind %s", d.Name, d.Version, f.Name, f.Kind)
		}
		if f.Count < Remaining {
			return descriptorErrorf("%s v%d: field %q has negative count %d", d.Name, d.Version, f.Name, f.Count)
		}
		if f.Count == Remaining && f.CountFrom == "" && i != len(d.Fields)-1 {
			return descriptorErrorf("%s v%d: field %q takes the remaining payload but is not last", d.Name, d.Version, f.Name)
		}
		if f.CountFrom != "" {
			ref, ok := seen[f.CountFrom]
			if !ok {
				return descriptorErrorf("%s v%d: field %q counts from unknown field %q", d.Name, d.Version, f.Name, f.CountFrom)
			}
			if ref.array() || !isInteger(ref.Kind) {
				return descriptorErrorf("%s v%d: field %q counts from non-integer field %q", d.Name, d.Version, f.Name, f.CountFrom)
			}
		}
		seen[f.Name] = f
	}
	return nil
}

func isInteger(k Kind) bool {
	return k == Int8 || k == Int32 || k == Uint32 || k == Uint64
}

// Values holds the decoded fields of a record by name. Scalars are stored as
// their Go type (int32, float64, ...), arrays as slices and String fields as
// strings with trailing spaces removed.
type Values map[string]any

// Get returns the field name as type T.
func Get[T any](v Values, name string) (T, error) {
	var zero T
	raw, ok := v[name]
	if !ok {
		return zero, fmt.Errorf("record: no field %q", name)
	}
	t, ok := raw.(T)
	if !ok {
		return zero, fmt.Errorf("record: field %q is %T, not %T", name, raw, zero)
	}
	return t, nil
}

// Int returns a scalar integer field widened to int64.
func (v Values) Int(name string) (int64, error) {
	raw, ok := v[name]
	if !ok {
		return 0, fmt.Errorf("record: no field %q", name)
	}
	switch x := raw.(type) {
	case int8:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case uint32:
		return int64(x), nil
	case uint64:
		return int64(x), nil
	}
	return 0, fmt.Errorf("record: field %q is %T, not an integer", name, raw)
}

// decode interprets payload according to d, which must be valid. The
// payload length must equal the sum of the field sizes.
func (d Descriptor) decode(order binary.ByteOrder, payload []byte) (Values, error) {
	pb := payloadCursor{buf: payload}
	out := make(Values, len(d.Fields))
	for _, f := range d.Fields {
		count, err := d.count(f, out, pb.remaining())
		if err != nil {
			return nil, err
		}
		raw := pb.next(count * f.Kind.Size())
		if pb.err != nil {
			return nil, fmt.Errorf("%s v%d: field %q needs %d bytes, %d left",
				d.Name, d.Version, f.Name, count*f.Kind.Size(), pb.remaining())
		}
		val := f.Kind.decode(order, raw)
		if !f.array() && f.Kind != String {
			val = first(val)
		}
		out[f.Name] = val
	}
	if pb.remaining() != 0 {
		return nil, fmt.Errorf("%s v%d: %d trailing bytes", d.Name, d.Version, pb.remaining())
	}
	return out, nil
}

func (d Descriptor) count(f Field, decoded Values, remaining int) (int, error) {
	switch {
	case f.CountFrom != "":
		n, err := decoded.Int(f.CountFrom)
		if err != nil {
			return 0, err
		}
		if n < 0 {
			return 0, fmt.Errorf("%s v%d: field %q has negative count %d", d.Name, d.Version, f.Name, n)
		}
		return int(n), nil
	case f.Count == Remaining:
		size := f.Kind.Size()
		if remaining%size != 0 {
			return 0, fmt.Errorf("%s v%d: %d remaining bytes are not a multiple of %s",
				d.Name, d.Version, remaining, f.Kind)
		}
		return remaining / size, nil
	case f.Count == 0:
		return 1, nil
	default:
		return f.Count, nil
	}
}

// encode is the inverse of decode.
func (d Descriptor) encode(order ByteOrder, v Values) ([]byte, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	var buf []byte
	for _, f := range d.Fields {
		raw, ok := v[f.Name]
		if !ok {
			return nil, fmt.Errorf("%s v%d: missing field %q", d.Name, d.Version, f.Name)
		}
		if !f.array() && f.Kind != String {
			var err error
			if raw, err = scalar(f.Kind, raw); err != nil {
				return nil, err
			}
		}

		want := -1
		switch {
		case f.CountFrom != "":
			n, err := v.Int(f.CountFrom)
			if err != nil {
				return nil, err
			}
			want = int(n)
		case f.Count == Remaining:
		case f.Count == 0:
			want = 1
		default:
			want = f.Count
		}

		if s, isString := raw.(string); isString && f.Kind == String && want >= 0 {
			if len(s) > want {
				return nil, fmt.Errorf("%s v%d: field %q is %d bytes wide, got %d", d.Name, d.Version, f.Name, want, len(s))
			}
			raw = s + spaces(want-len(s))
		}

		var n int
		var err error
		if buf, n, err = f.Kind.encode(order, buf, raw); err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Name, err)
		}
		if want >= 0 && n != want {
			return nil, fmt.Errorf("%s v%d: field %q needs %d elements, got %d", d.Name, d.Version, f.Name, want, n)
		}
	}
	return buf, nil
}

func spaces(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}

// payloadCursor walks a record payload; the first short read sticks.
type payloadCursor struct {
	buf []byte
	pos int
	err error
}

func (p *payloadCursor) remaining() int { return len(p.buf) - p.pos }

func (p *payloadCursor) next(n int) []byte {
	if p.err != nil {
		return nil
	}
	if n < 0 || p.pos+n > len(p.buf) {
		p.err = errShortPayload
		return nil
	}
	b := p.buf[p.pos : p.pos+n]
	p.pos += n
	return b
}
