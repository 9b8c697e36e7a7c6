package snapshot

import (
	"bytes"
	"cmp"
	"context"
	"encoding/binary"
	"encoding/json"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/hupe1980/pointloc/blobstore"
	"github.com/hupe1980/pointloc/record"
	"github.com/hupe1980/pointloc/resource"
	"github.com/hupe1980/pointloc/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func fixture(n int) *Snapshot {
	snap := New("FT:pointloc test", testutil.NewRNG(42).UniformPoints(n))
	snap.Time = 3.25
	snap.H = make([]float64, n)
	snap.M = make([]float64, n)
	for i := range n {
		snap.H[i] = 0.01 * float64(i%7+1)
		snap.M[i] = 1.0 / float64(n)
	}
	snap.Ints, _ = record.NewDict([]string{"npart", "nptmass", "npart"}, []any{int32(n), int32(0), int32(n)})
	snap.Reals, _ = record.NewDict([]string{"udist", "umass"}, []any{1.496e13, 1.989e33})
	return snap
}

func encode(t *testing.T, snap *Snapshot, c Compression) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, snap, c))
	return buf.Bytes()
}

func TestRoundTrip(t *testing.T) {
	want := fixture(257)

	for _, c := range []Compression{CompressionNone, CompressionZstd, CompressionLZ4} {
		t.Run(c.String(), func(t *testing.T) {
			data := encode(t, want, c)

			got, err := Read(context.Background(), bytes.NewReader(data), Options{Strict: true})
			require.NoError(t, err)

			assert.Equal(t, want.Ident, got.Ident)
			assert.Equal(t, uint32(2), got.Version)
			assert.Equal(t, want.Time, got.Time)
			assert.Equal(t, want.Positions(), got.Positions())
			assert.Equal(t, want.H, got.H)
			assert.Equal(t, want.M, got.M)
			assert.Equal(t, []string{"npart", "nptmass", "npart1"}, got.Ints.Tags())

			udist, ok := got.Reals.Float("udist")
			require.True(t, ok)
			assert.Equal(t, 1.496e13, udist)
		})
	}
}

func TestRead_ForcedCompression(t *testing.T) {
	data := encode(t, fixture(10), CompressionZstd)

	_, err := Read(context.Background(), bytes.NewReader(data), Options{Compression: CompressionZstd})
	assert.NoError(t, err)

	_, err = Read(context.Background(), bytes.NewReader(data), Options{Compression: CompressionNone})
	assert.Error(t, err)
}

func TestRead_WithoutOptionalBlocks(t *testing.T) {
	points := []r3.Vec{{X: 1, Y: 2, Z: 3}, {X: 4, Y: 5, Z: 6}}
	data := encode(t, New("plain", points), CompressionAuto)

	got, err := Read(context.Background(), bytes.NewReader(data), Options{})
	require.NoError(t, err)
	assert.Equal(t, points, got.Positions())
	assert.Nil(t, got.H)
	assert.Nil(t, got.M)
	assert.Zero(t, got.Reals.Len())
	assert.Equal(t, 2, got.Len())
	assert.Equal(t, `snapshot "plain" v2: 2 particles, 3 blocks`, got.String())
}

// legacy writes a version 1 snapshot by hand.
type legacy struct {
	order  record.ByteOrder
	tagged bool
	npart  int
	blocks []string
	values map[string][]float64
	extra  int // trailing records

	nblocks int32 // overrides the header block count when non-zero
}

func (l legacy) bytes(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := record.NewWriter(&buf, l.order)
	require.NoError(t, w.WriteString("FT:legacy", 100))

	tagged := int8(0)
	if l.tagged {
		tagged = 1
	}
	require.NoError(t, w.Encode(headerV1, record.Values{
		"version": uint32(1),
		"tagged":  tagged,
		"nblocks": cmp.Or(l.nblocks, int32(len(l.blocks))),
	}))
	require.NoError(t, w.WriteDict(record.Int32, []string{"npart", "nptmass"}, []int32{int32(l.npart), 2}, l.tagged))
	require.NoError(t, w.WriteDict(record.Float64, []string{"time"}, []float64{0.5}, l.tagged))

	for _, tag := range l.blocks {
		require.NoError(t, w.WriteTags([]string{tag}))
		values, ok := l.values[tag]
		if !ok {
			values = make([]float64, l.npart)
			for i := range values {
				values[i] = float64(i) + float64(len(tag))/10
			}
		}
		require.NoError(t, w.WriteArray(record.Float64, values))
	}
	for range l.extra {
		require.NoError(t, w.WriteArray(record.Int32, []int32{1}))
	}
	return buf.Bytes()
}

func TestRead_Legacy(t *testing.T) {
	data := legacy{
		order:  binary.BigEndian,
		tagged: false,
		npart:  4,
		blocks: []string{"x", "vx", "y", "z"},
	}.bytes(t)

	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	got, err := Read(context.Background(), bytes.NewReader(data), Options{Order: binary.BigEndian, Logger: logger})
	require.NoError(t, err)

	assert.Equal(t, "FT:legacy", got.Ident)
	assert.Equal(t, uint32(1), got.Version)
	assert.Zero(t, got.Time)
	assert.Equal(t, []string{"tag", "tag1"}, got.Ints.Tags())
	assert.Equal(t, 4, got.Len())
	assert.Equal(t, r3.Vec{X: 2.1, Y: 2.1, Z: 2.1}, got.Positions()[2])
	assert.Contains(t, logs.String(), "skipping unknown block")

	_, err = Read(context.Background(), bytes.NewReader(data), Options{Order: binary.BigEndian, Strict: true})
	assert.ErrorIs(t, err, ErrFormat)
	assert.ErrorContains(t, err, `unknown block "vx"`)

	_, err = Read(context.Background(), bytes.NewReader(data), Options{})
	assert.Error(t, err, "wrong byte order")
}

func TestRead_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		opts    Options
		wantErr error
		msg     string
	}{
		{
			name:    "Empty",
			data:    nil,
			wantErr: ErrFormat,
			msg:     "empty stream",
		},
		{
			name:    "MissingZ",
			data:    legacy{tagged: true, npart: 3, blocks: []string{"x", "y"}}.bytes(t),
			wantErr: ErrMissingBlock,
			msg:     `"z"`,
		},
		{
			name:    "Duplicate",
			data:    legacy{tagged: true, npart: 3, blocks: []string{"x", "y", "x", "z"}}.bytes(t),
			wantErr: ErrFormat,
			msg:     `duplicate block "x"`,
		},
		{
			name: "ShortBlock",
			data: legacy{tagged: true, npart: 3, blocks: []string{"x", "y", "z"},
				values: map[string][]float64{"y": {1, 2}}}.bytes(t),
			wantErr: ErrFormat,
			msg:     `block "y" holds 2 values for 3 particles`,
		},
		{
			name:    "NoParticles",
			data:    legacy{tagged: true, npart: 0, blocks: []string{"x", "y", "z"}}.bytes(t),
			wantErr: ErrFormat,
			msg:     "npart must be positive",
		},
		{
			name:    "Truncated",
			data:    legacy{tagged: true, npart: 3, blocks: []string{"x", "y", "z", "h"}}.bytes(t)[:200],
			wantErr: record.ErrFrame,
		},
		{
			name:    "TrailingStrict",
			data:    legacy{tagged: true, npart: 3, blocks: []string{"x", "y", "z"}, extra: 1}.bytes(t),
			opts:    Options{Strict: true},
			wantErr: ErrFormat,
			msg:     "trailing records",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(context.Background(), bytes.NewReader(tt.data), tt.opts)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			if tt.msg != "" {
				assert.ErrorContains(t, err, tt.msg)
			}
		})
	}
}

func TestRead_MissingBlockCountsAsTruncated(t *testing.T) {
	data := legacy{tagged: true, npart: 3, blocks: []string{"x", "y", "z"}}.bytes(t)

	// Cut the stream right after the y block.
	block := 4 + 16 + 4 + 4 + 3*8 + 4
	_, err := Read(context.Background(), bytes.NewReader(data[:len(data)-block]), Options{})
	assert.ErrorIs(t, err, ErrFormat)
	assert.ErrorContains(t, err, "truncated")
}

func TestRead_TrailingRecordsTolerated(t *testing.T) {
	data := legacy{tagged: true, npart: 3, blocks: []string{"x", "y", "z"}, extra: 2}.bytes(t)

	got, err := Read(context.Background(), bytes.NewReader(data), Options{})
	require.NoError(t, err)
	assert.Equal(t, 3, got.Len())
}

func TestRead_UnsupportedVersion(t *testing.T) {
	var buf bytes.Buffer
	w := record.NewWriter(&buf, nil)
	require.NoError(t, w.WriteString("FT:future", 100))
	require.NoError(t, w.Encode(headerV1, record.Values{"version": uint32(9), "tagged": int8(1), "nblocks": int32(0)}))

	_, err := Read(context.Background(), &buf, Options{})
	assert.ErrorIs(t, err, record.ErrUnsupportedVersion)
}

func TestLoad(t *testing.T) {
	want := fixture(100)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "snap_000"), encode(t, want, CompressionZstd), 0o600))

	var logs bytes.Buffer
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 1 << 20, MaxConcurrentLoads: 1})
	opts := Options{
		Strict:    true,
		Resources: rc,
		ReadLimit: 1 << 20,
		Logger:    slog.New(slog.NewJSONHandler(&logs, nil)),
	}

	got, err := Load(context.Background(), blobstore.NewLocalStore(dir, nil), "snap_000", opts)
	require.NoError(t, err)
	assert.Equal(t, want.Positions(), got.Positions())

	// Five blocks of 100 float64 values.
	assert.Equal(t, int64(5*100*8), rc.MemoryUsage())
	assert.True(t, rc.TryAcquireLoad(), "load slot is returned")
	rc.ReleaseLoad()

	got.Release()
	got.Release()
	assert.Zero(t, rc.MemoryUsage())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(logs.Bytes(), &entry))
	assert.Equal(t, "snapshot loaded", entry["msg"])
	assert.Equal(t, "snap_000", entry["name"])
	assert.EqualValues(t, 100, entry["particles"])
}

func TestRead_MemoryReservation(t *testing.T) {
	t.Run("CappedAtStoredBlocks", func(t *testing.T) {
		data := legacy{tagged: true, npart: 10, blocks: []string{"x", "vx", "vy", "vz", "y", "z"}}.bytes(t)
		rc := resource.NewController(resource.Config{MemoryLimitBytes: 1 << 20})

		snap, err := Read(context.Background(), bytes.NewReader(data), Options{Resources: rc})
		require.NoError(t, err)
		assert.Equal(t, int64(5*10*8), rc.MemoryUsage())
		snap.Release()
		assert.Zero(t, rc.MemoryUsage())
	})

	t.Run("HugeHeaderCounts", func(t *testing.T) {
		data := legacy{tagged: true, npart: math.MaxInt32, nblocks: math.MaxInt32}.bytes(t)
		rc := resource.NewController(resource.Config{MemoryLimitBytes: 1 << 20})

		_, err := Read(context.Background(), bytes.NewReader(data), Options{Resources: rc})
		require.ErrorIs(t, err, resource.ErrMemoryLimitExceeded)
		assert.Zero(t, rc.MemoryUsage())
		assert.Zero(t, rc.PeakMemoryUsage())
	})
}

func TestLoad_Errors(t *testing.T) {
	store := blobstore.NewMemoryStore()
	store.Put("snap", encode(t, fixture(1000), CompressionLZ4))

	t.Run("NotFound", func(t *testing.T) {
		_, err := Load(context.Background(), store, "missing", Options{})
		assert.ErrorIs(t, err, blobstore.ErrNotFound)
	})

	t.Run("MemoryLimit", func(t *testing.T) {
		rc := resource.NewController(resource.Config{MemoryLimitBytes: 1000})
		_, err := Load(context.Background(), store, "snap", Options{Resources: rc})
		assert.ErrorIs(t, err, resource.ErrMemoryLimitExceeded)
		assert.Zero(t, rc.MemoryUsage())
	})

	t.Run("Canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := Load(ctx, store, "snap", Options{})
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("ReleasedOnFailure", func(t *testing.T) {
		data := legacy{tagged: true, npart: 3, blocks: []string{"x", "y"}}.bytes(t)
		store.Put("broken", data)

		rc := resource.NewController(resource.Config{})
		_, err := Load(context.Background(), store, "broken", Options{Resources: rc})
		assert.ErrorIs(t, err, ErrMissingBlock)
		assert.Zero(t, rc.MemoryUsage())
		assert.Equal(t, int64(2*3*8), rc.PeakMemoryUsage())
	})
}

func TestWrite_Errors(t *testing.T) {
	snap := fixture(5)
	snap.H = snap.H[:4]
	assert.ErrorIs(t, Write(&bytes.Buffer{}, snap, CompressionNone), ErrFormat)

	snap = fixture(5)
	snap.Ints, _ = record.NewDict([]string{"npart"}, []any{int32(6)})
	assert.ErrorContains(t, Write(&bytes.Buffer{}, snap, CompressionNone), "npart is 6")

	assert.ErrorIs(t, Write(&bytes.Buffer{}, New("empty", nil), CompressionNone), ErrFormat)
	assert.Error(t, Write(&bytes.Buffer{}, fixture(5), Compression(9)))
}

func TestCompression(t *testing.T) {
	for _, c := range []Compression{CompressionAuto, CompressionNone, CompressionZstd, CompressionLZ4} {
		parsed, err := ParseCompression(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, parsed)
	}

	c, err := ParseCompression("")
	require.NoError(t, err)
	assert.Equal(t, CompressionAuto, c)

	_, err = ParseCompression("gzip")
	assert.Error(t, err)
	assert.Equal(t, "Compression(9)", Compression(9).String())
}
