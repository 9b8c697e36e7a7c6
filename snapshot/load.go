package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/hupe1980/pointloc/blobstore"
	"github.com/hupe1980/pointloc/record"
	"github.com/hupe1980/pointloc/resource"
)

// Options configures Load and Read.
type Options struct {
	// Order is the byte order of the record stream. Default: little endian.
	Order record.ByteOrder
	// Strict rejects unknown blocks and trailing records instead of
	// skipping them.
	Strict bool
	// Compression forces a frame format. Default: detect.
	Compression Compression
	// ReadLimit throttles blob reads to this many bytes per second.
	// Zero disables throttling.
	ReadLimit int
	// MaxRecordSize bounds a single record. Default: record.DefaultMaxRecordSize.
	MaxRecordSize uint32
	// Resources, if set, limits concurrent loads and reserves memory for
	// the decoded blocks until Snapshot.Release.
	Resources *resource.Controller
	// Logger receives load events. Default: discard.
	Logger *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.Logger
}

var (
	headerV1 = record.Descriptor{Version: 1, Name: "snapshot header", Fields: []record.Field{
		{Name: "version", Kind: record.Uint32},
		{Name: "tagged", Kind: record.Int8},
		{Name: "nblocks", Kind: record.Int32},
	}}
	headerV2 = record.Descriptor{Version: 2, Name: "snapshot header", Fields: []record.Field{
		{Name: "version", Kind: record.Uint32},
		{Name: "tagged", Kind: record.Int8},
		{Name: "nblocks", Kind: record.Int32},
		{Name: "time", Kind: record.Float64},
	}}
)

// currentVersion is the header layout written by Write.
const currentVersion = 2

// Load opens name in store and reads it as a snapshot.
func Load(ctx context.Context, store blobstore.Store, name string, opts Options) (*Snapshot, error) {
	if err := opts.Resources.AcquireLoad(ctx); err != nil {
		return nil, err
	}
	defer opts.Resources.ReleaseLoad()

	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("snapshot: open %s: %w", name, err)
	}
	defer blob.Close()

	snap, err := Read(ctx, blobstore.NewReader(blobstore.Throttled(ctx, blob, opts.ReadLimit)), opts)
	if err != nil {
		return nil, fmt.Errorf("snapshot: read %s: %w", name, err)
	}

	opts.logger().InfoContext(ctx, "snapshot loaded",
		slog.String("name", name),
		slog.Int64("bytes", blob.Size()),
		slog.Int("particles", snap.Len()),
		slog.Uint64("version", uint64(snap.Version)),
	)
	return snap, nil
}

// Read decodes a snapshot from r.
func Read(ctx context.Context, r io.Reader, opts Options) (*Snapshot, error) {
	src, c, closeFn, err := decompress(r, opts.Compression)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	opts.logger().DebugContext(ctx, "reading snapshot", slog.String("compression", c.String()))

	d := &decoder{
		r:    record.NewReader(src, record.WithByteOrder(opts.Order), record.WithMaxRecordSize(opts.MaxRecordSize)),
		opts: opts,
		log:  opts.logger(),
	}
	return d.decode(ctx)
}

type decoder struct {
	r    *record.Reader
	opts Options
	log  *slog.Logger
}

func (d *decoder) decode(ctx context.Context) (*Snapshot, error) {
	ident, err := d.r.ReadString()
	if errors.Is(err, io.EOF) {
		return nil, formatErrorf("empty stream")
	}
	if err != nil {
		return nil, err
	}

	hdr, desc, err := d.r.DecodeVersioned(headerV1, headerV2)
	if err != nil {
		return nil, err
	}
	snap := &Snapshot{Ident: ident, Version: uint32(desc.Version)}
	if t, ok := hdr["time"].(float64); ok {
		snap.Time = t
	}
	tagged := hdr["tagged"].(int8) != 0
	nblocks := int(hdr["nblocks"].(int32))
	if nblocks < 0 {
		return nil, formatErrorf("negative block count %d", nblocks)
	}

	if snap.Ints, err = d.r.ReadDict(record.Int32, tagged); err != nil {
		return nil, err
	}
	if snap.Reals, err = d.r.ReadDict(record.Float64, tagged); err != nil {
		return nil, err
	}

	npart, err := particleCount(snap.Ints, tagged)
	if err != nil {
		return nil, err
	}

	// Only the known blocks are kept, and each at most once.
	reserved := int64(npart) * 8 * int64(min(nblocks, storedBlocks))
	if err := d.opts.Resources.AcquireMemory(ctx, reserved); err != nil {
		return nil, err
	}
	snap.release = func() { d.opts.Resources.ReleaseMemory(reserved) }

	if err := d.readBlocks(ctx, snap, nblocks, npart); err != nil {
		snap.Release()
		return nil, err
	}
	return snap, nil
}

// particleCount finds npart. Untagged dictionaries carry it as their first
// entry.
func particleCount(ints *record.Dict, tagged bool) (int, error) {
	n, ok := ints.Int("npart")
	if !ok && !tagged && ints.Len() > 0 {
		n, ok = ints.Int(ints.Entries()[0].Tag)
	}
	if !ok {
		return 0, fmt.Errorf("%w: npart", ErrMissingBlock)
	}
	if n <= 0 {
		return 0, formatErrorf("npart must be positive, got %d", n)
	}
	return int(n), nil
}

// storedBlocks is the number of block tags readBlocks keeps.
const storedBlocks = 5

func (d *decoder) readBlocks(ctx context.Context, snap *Snapshot, nblocks, npart int) error {
	dst := map[string]*[]float64{
		TagX: &snap.X, TagY: &snap.Y, TagZ: &snap.Z,
		TagH: &snap.H, TagM: &snap.M,
	}

	for b := range nblocks {
		if err := ctx.Err(); err != nil {
			return err
		}

		tags, err := d.r.ReadTags(1)
		if err != nil {
			return noEOF(err)
		}
		tag := tags[0]

		target, known := dst[tag]
		if !known {
			if d.opts.Strict {
				return formatErrorf("unknown block %q", tag)
			}
			d.log.WarnContext(ctx, "skipping unknown block", slog.String("tag", tag), slog.Int("block", b))
			if err := d.r.Skip(); err != nil {
				return noEOF(err)
			}
			continue
		}
		if *target != nil {
			return formatErrorf("duplicate block %q", tag)
		}

		values, err := d.r.Decode(record.Descriptor{Name: tag, Fields: []record.Field{
			{Name: tag, Kind: record.Float64, Count: record.Remaining},
		}})
		if err != nil {
			return noEOF(err)
		}
		data := values[tag].([]float64)
		if len(data) != npart {
			return formatErrorf("block %q holds %d values for %d particles", tag, len(data), npart)
		}
		*target = data
	}

	for _, tag := range []string{TagX, TagY, TagZ} {
		if *dst[tag] == nil {
			return fmt.Errorf("%w: %q", ErrMissingBlock, tag)
		}
	}

	switch err := d.r.Skip(); {
	case errors.Is(err, io.EOF):
	case err != nil:
		return err
	case d.opts.Strict:
		return formatErrorf("trailing records after %d blocks", nblocks)
	default:
		d.log.WarnContext(ctx, "ignoring trailing records", slog.Int64("offset", d.r.Offset()))
	}
	return nil
}

// noEOF reports a stream that ends inside the block section as truncated.
func noEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return formatErrorf("truncated before all blocks were read")
	}
	return err
}
