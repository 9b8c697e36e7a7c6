package record

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var headerV1 = Descriptor{
	Version: 1,
	Name:    "header",
	Fields: []Field{
		{Name: "magic", Kind: Int32},
		{Name: "title", Kind: String, Count: 12},
		{Name: "time", Kind: Float64},
		{Name: "flags", Kind: Int8, Count: 3},
		{Name: "n", Kind: Uint32},
		{Name: "ids", Kind: Uint64, CountFrom: "n"},
		{Name: "extra", Kind: Float32, Count: Remaining},
	},
}

func TestDescriptor_RoundTrip(t *testing.T) {
	in := Values{
		"magic": int32(60769),
		"title": "snapshot",
		"time":  12.5,
		"flags": []int8{1, -1, 0},
		"n":     uint32(2),
		"ids":   []uint64{7, 1 << 40},
		"extra": []float32{0.5, 0.25, 2},
	}

	var buf bytes.Buffer
	w := NewWriter(&buf, nil)
	require.NoError(t, w.Encode(headerV1, in))
	// 4 + 12 + 8 + 3 + 4 + 16 + 12 payload bytes plus two markers.
	assert.Equal(t, 59+8, buf.Len())

	out, err := NewReader(&buf).Decode(headerV1)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	title, err := Get[string](out, "title")
	require.NoError(t, err)
	assert.Equal(t, "snapshot", title)

	n, err := out.Int("n")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = Get[float64](out, "magic")
	assert.ErrorContains(t, err, "is int32")
	_, err = Get[int32](out, "missing")
	assert.Error(t, err)
	_, err = out.Int("time")
	assert.Error(t, err)
}

func TestDescriptor_SizeMismatch(t *testing.T) {
	d := Descriptor{Version: 2, Name: "pair", Fields: []Field{
		{Name: "a", Kind: Int32},
		{Name: "b", Kind: Float64},
	}}

	tests := []struct {
		name    string
		payload []byte
		reason  string
	}{
		{"Short", make([]byte, 8), `field "b" needs 8 bytes, 4 left`},
		{"Long", make([]byte, 13), "1 trailing bytes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, NewWriter(&buf, nil).Write(tt.payload))

			_, err := NewReader(&buf).Decode(d)
			assert.ErrorIs(t, err, ErrFrame)

			var fe *FrameError
			require.ErrorAs(t, err, &fe)
			assert.Contains(t, fe.Reason, tt.reason)
			assert.Contains(t, fe.Reason, "pair v2")
		})
	}
}

func TestDescriptor_RemainingMisaligned(t *testing.T) {
	d := Descriptor{Name: "floats", Fields: []Field{{Name: "v", Kind: Float64, Count: Remaining}}}

	var buf bytes.Buffer
	require.NoError(t, NewWriter(&buf, nil).Write(make([]byte, 12)))

	_, err := NewReader(&buf).Decode(d)
	assert.ErrorIs(t, err, ErrFrame)
	assert.ErrorContains(t, err, "not a multiple of float64")
}

func TestDescriptor_Validate(t *testing.T) {
	tests := []struct {
		name   string
		fields []Field
		valid  bool
	}{
		{"Empty", nil, true},
		{"Scalars", []Field{{Name: "a", Kind: Int8}, {Name: "b", Kind: Uint64}}, true},
		{"NoName", []Field{{Kind: Int8}}, false},
		{"Duplicate", []Field{{Name: "a", Kind: Int8}, {Name: "a", Kind: Int32}}, false},
		{"UnknownKind", []Field{{Name: "a", Kind: Kind(99)}}, false},
		{"ZeroKind", []Field{{Name: "a"}}, false},
		{"NegativeCount", []Field{{Name: "a", Kind: Int8, Count: -2}}, false},
		{"RemainingNotLast", []Field{{Name: "a", Kind: Int8, Count: Remaining}, {Name: "b", Kind: Int8}}, false},
		{"CountFromUnknown", []Field{{Name: "a", Kind: Int8, CountFrom: "n"}}, false},
		{"CountFromLater", []Field{{Name: "a", Kind: Int8, CountFrom: "n"}, {Name: "n", Kind: Int32}}, false},
		{"CountFromFloat", []Field{{Name: "n", Kind: Float64}, {Name: "a", Kind: Int8, CountFrom: "n"}}, false},
		{"CountFromArray", []Field{{Name: "n", Kind: Int32, Count: 2}, {Name: "a", Kind: Int8, CountFrom: "n"}}, false},
		{"CountFrom", []Field{{Name: "n", Kind: Int32}, {Name: "a", Kind: Int8, CountFrom: "n"}, {Name: "b", Kind: Int8}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Descriptor{Name: "t", Fields: tt.fields}.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrDescriptor)
			}
		})
	}
}

func TestDescriptor_EncodeErrors(t *testing.T) {
	w := NewWriter(&bytes.Buffer{}, nil)
	d := Descriptor{Name: "t", Fields: []Field{
		{Name: "n", Kind: Int32},
		{Name: "v", Kind: Float64, CountFrom: "n"},
		{Name: "s", Kind: String, Count: 4},
	}}

	assert.ErrorContains(t, w.Encode(d, Values{"n": int32(1)}), `missing field "v"`)
	assert.ErrorContains(t, w.Encode(d, Values{"n": int32(2), "v": []float64{1}, "s": "ab"}), "needs 2 elements, got 1")
	assert.ErrorContains(t, w.Encode(d, Values{"n": int32(1), "v": []float64{1}, "s": "abcde"}), "4 bytes wide")
	assert.ErrorIs(t, w.Encode(d, Values{"n": 1, "v": []float64{1}, "s": "ab"}), ErrDescriptor)
	assert.ErrorIs(t, w.Encode(d, Values{"n": int32(1), "v": []float32{1}, "s": "ab"}), ErrDescriptor)
	assert.NoError(t, w.Encode(d, Values{"n": int32(1), "v": []float64{1}, "s": "ab"}))
}

func TestReader_DecodeVersioned(t *testing.T) {
	v1 := Descriptor{Version: 1, Name: "hdr", Fields: []Field{
		{Name: "version", Kind: Uint32},
		{Name: "n", Kind: Int32},
	}}
	v2 := Descriptor{Version: 2, Name: "hdr", Fields: []Field{
		{Name: "version", Kind: Uint32},
		{Name: "n", Kind: Int32},
		{Name: "time", Kind: Float64},
	}}

	var buf bytes.Buffer
	w := NewWriter(&buf, nil)
	require.NoError(t, w.Encode(v2, Values{"version": uint32(2), "n": int32(5), "time": 0.5}))
	require.NoError(t, w.Encode(v1, Values{"version": uint32(1), "n": int32(3)}))
	require.NoError(t, w.Encode(v1, Values{"version": uint32(7), "n": int32(3)}))
	require.NoError(t, w.Write([]byte{1, 0}))

	r := NewReader(&buf)

	got, d, err := r.DecodeVersioned(v1, v2)
	require.NoError(t, err)
	assert.Equal(t, uint16(2), d.Version)
	assert.Equal(t, 0.5, got["time"])

	got, d, err = r.DecodeVersioned(v1, v2)
	require.NoError(t, err)
	assert.Equal(t, uint16(1), d.Version)
	assert.Equal(t, int32(3), got["n"])

	_, _, err = r.DecodeVersioned(v1, v2)
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
	assert.ErrorIs(t, err, ErrFrame)
	assert.ErrorContains(t, err, "version 7")

	_, _, err = r.DecodeVersioned(v1, v2)
	assert.ErrorContains(t, err, "too short to hold a version")

	_, _, err = r.DecodeVersioned(v1, Descriptor{Name: "bad", Fields: []Field{{Kind: Int32}}})
	assert.ErrorIs(t, err, ErrDescriptor)
}

func TestKind(t *testing.T) {
	sizes := map[Kind]int{Int8: 1, Int32: 4, Uint32: 4, Uint64: 8, Float32: 4, Float64: 8, String: 1, Kind(0): 0}
	for k, size := range sizes {
		assert.Equal(t, size, k.Size(), k.String())
	}
	assert.Equal(t, "float64", Float64.String())
	assert.Equal(t, "Kind(42)", Kind(42).String())
}
