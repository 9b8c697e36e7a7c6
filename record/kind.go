package record

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Kind is the element type of a record field.
type Kind uint8

const (
	Int8 Kind = iota + 1
	Int32
	Uint32
	Uint64
	Float32
	Float64
	// String is a fixed-width, space-padded character field.
	String
)

// Size returns the encoded size of one element in bytes.
func (k Kind) Size() int {
	switch k {
	case Int8, String:
		return 1
	case Int32, Uint32, Float32:
		return 4
	case Uint64, Float64:
		return 8
	default:
		return 0
	}
}

func (k Kind) String() string {
	switch k {
	case Int8:
		return "int8"
	case Int32:
		return "int32"
	case Uint32:
		return "uint32"
	case Uint64:
		return "uint64"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case String:
		return "string"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

func (k Kind) valid() bool { return k >= Int8 && k <= String }

// decode interprets b, which holds a whole number of elements, as a slice of
// the Go type matching k. String fields decode to a trimmed string.
func (k Kind) decode(order binary.ByteOrder, b []byte) any {
	n := len(b) / max(k.Size(), 1)
	switch k {
	case Int8:
		out := make([]int8, n)
		for i := range out {
			out[i] = int8(b[i])
		}
		return out
	case Int32:
		out := make([]int32, n)
		for i := range out {
			out[i] = int32(order.Uint32(b[4*i:]))
		}
		return out
	case Uint32:
		out := make([]uint32, n)
		for i := range out {
			out[i] = order.Uint32(b[4*i:])
		}
		return out
	case Uint64:
		out := make([]uint64, n)
		for i := range out {
			out[i] = order.Uint64(b[8*i:])
		}
		return out
	case Float32:
		out := make([]float32, n)
		for i := range out {
			out[i] = math.Float32frombits(order.Uint32(b[4*i:]))
		}
		return out
	case Float64:
		out := make([]float64, n)
		for i := range out {
			out[i] = math.Float64frombits(order.Uint64(b[8*i:]))
		}
		return out
	case String:
		return trimPadding(b)
	default:
		return nil
	}
}

// encode appends v, a slice (or for String a string) of the Go type
// matching k, and returns the number of elements written.
func (k Kind) encode(order ByteOrder, dst []byte, v any) ([]byte, int, error) {
	switch vs := v.(type) {
	case []int8:
		if k == Int8 {
			for _, x := range vs {
				dst = append(dst, byte(x))
			}
			return dst, len(vs), nil
		}
	case []int32:
		if k == Int32 {
			for _, x := range vs {
				dst = order.AppendUint32(dst, uint32(x))
			}
			return dst, len(vs), nil
		}
	case []uint32:
		if k == Uint32 {
			for _, x := range vs {
				dst = order.AppendUint32(dst, x)
			}
			return dst, len(vs), nil
		}
	case []uint64:
		if k == Uint64 {
			for _, x := range vs {
				dst = order.AppendUint64(dst, x)
			}
			return dst, len(vs), nil
		}
	case []float32:
		if k == Float32 {
			for _, x := range vs {
				dst = order.AppendUint32(dst, math.Float32bits(x))
			}
			return dst, len(vs), nil
		}
	case []float64:
		if k == Float64 {
			for _, x := range vs {
				dst = order.AppendUint64(dst, math.Float64bits(x))
			}
			return dst, len(vs), nil
		}
	case string:
		if k == String {
			return append(dst, vs...), len(vs), nil
		}
	}
	return dst, 0, fmt.Errorf("%w: cannot encode %T as %s", ErrDescriptor, v, k)
}

// scalar wraps a single value of the Go type matching k into a one element
// slice.
func scalar(k Kind, v any) (any, error) {
	switch x := v.(type) {
	case int8:
		return []int8{x}, nil
	case int32:
		return []int32{x}, nil
	case uint32:
		return []uint32{x}, nil
	case uint64:
		return []uint64{x}, nil
	case float32:
		return []float32{x}, nil
	case float64:
		return []float64{x}, nil
	case string:
		return x, nil
	}
	return nil, fmt.Errorf("%w: cannot encode %T as %s", ErrDescriptor, v, k)
}

// first returns element 0 of a decoded slice.
func first(v any) any {
	switch s := v.(type) {
	case []int8:
		return s[0]
	case []int32:
		return s[0]
	case []uint32:
		return s[0]
	case []uint64:
		return s[0]
	case []float32:
		return s[0]
	case []float64:
		return s[0]
	default:
		return v
	}
}

func trimPadding(b []byte) string {
	i := len(b)
	for i > 0 && b[i-1] == ' ' {
		i--
	}
	return string(b[:i])
}
