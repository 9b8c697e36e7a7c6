package snapshot

import (
	"io"

	"github.com/hupe1980/pointloc/record"
)

// identWidth is the width of the fileident record.
const identWidth = 100

// Write encodes snap in little endian with a version 2 header and tagged
// dictionaries, wrapped in the given compression.
func Write(w io.Writer, snap *Snapshot, c Compression) error {
	if err := snap.validate(); err != nil {
		return err
	}

	cw, err := compress(w, c)
	if err != nil {
		return err
	}

	rw := record.NewWriter(cw, nil)
	blocks := snap.blocks()

	_ = rw.WriteString(snap.Ident, identWidth)
	_ = rw.Encode(headerV2, record.Values{
		"version": uint32(currentVersion),
		"tagged":  int8(1),
		"nblocks": int32(len(blocks)),
		"time":    snap.Time,
	})

	ints, reals := snap.Ints, snap.Reals
	if ints == nil {
		ints, _ = record.NewDict([]string{"npart"}, []any{int32(snap.Len())})
	}
	tags, values := intEntries(ints)
	if err := rw.WriteDict(record.Int32, tags, values, true); err != nil {
		return err
	}
	tags, reals64 := realEntries(reals)
	if err := rw.WriteDict(record.Float64, tags, reals64, true); err != nil {
		return err
	}

	for _, b := range blocks {
		if err := rw.WriteTags([]string{b.tag}); err != nil {
			return err
		}
		if err := rw.WriteArray(record.Float64, b.values); err != nil {
			return err
		}
	}
	if err := rw.Err(); err != nil {
		return err
	}
	return cw.Close()
}

func intEntries(d *record.Dict) ([]string, []int32) {
	tags := d.Tags()
	values := make([]int32, len(tags))
	for i, tag := range tags {
		n, _ := d.Int(tag)
		values[i] = int32(n)
	}
	return tags, values
}

func realEntries(d *record.Dict) ([]string, []float64) {
	if d == nil {
		return nil, nil
	}
	tags := d.Tags()
	values := make([]float64, len(tags))
	for i, tag := range tags {
		values[i], _ = d.Float(tag)
	}
	return tags, values
}
