package record

import (
	"fmt"
	"strconv"
)

// untaggedTag names the entries of a dictionary without a tag record.
const untaggedTag = "tag"

// Entry is one tag/value pair of a Dict.
type Entry struct {
	Tag   string
	Value any
}

// Dict is an ordered tag/value dictionary. Tags are unique: repeated tags
// in the file are renamed by appending 1, 2, ... to the original tag.
type Dict struct {
	entries []Entry
	index   map[string]int
}

// NewDict builds a Dict from parallel tag and value lists, renaming
// repeated tags.
func NewDict(tags []string, values []any) (*Dict, error) {
	if len(tags) != len(values) {
		return nil, fmt.Errorf("record: %d tags for %d values", len(tags), len(values))
	}
	d := &Dict{
		entries: make([]Entry, 0, len(tags)),
		index:   make(map[string]int, len(tags)),
	}
	for i, tag := range tags {
		d.add(tag, values[i])
	}
	return d, nil
}

func (d *Dict) add(tag string, value any) {
	if _, dup := d.index[tag]; dup {
		base := tag
		for n := 1; ; n++ {
			tag = base + strconv.Itoa(n)
			if _, dup := d.index[tag]; !dup {
				break
			}
		}
	}
	d.index[tag] = len(d.entries)
	d.entries = append(d.entries, Entry{Tag: tag, Value: value})
}

// Len returns the number of entries.
func (d *Dict) Len() int { return len(d.entries) }

// Entries returns the entries in file order.
func (d *Dict) Entries() []Entry { return d.entries }

// Tags returns the (renamed) tags in file order.
func (d *Dict) Tags() []string {
	tags := make([]string, len(d.entries))
	for i, e := range d.entries {
		tags[i] = e.Tag
	}
	return tags
}

// Get returns the value stored under tag.
func (d *Dict) Get(tag string) (any, bool) {
	i, ok := d.index[tag]
	if !ok {
		return nil, false
	}
	return d.entries[i].Value, true
}

// Int returns an integer value widened to int64.
func (d *Dict) Int(tag string) (int64, bool) {
	v, ok := d.Get(tag)
	if !ok {
		return 0, false
	}
	switch x := v.(type) {
	case int8:
		return int64(x), true
	case int32:
		return int64(x), true
	case uint32:
		return int64(x), true
	case uint64:
		return int64(x), true
	}
	return 0, false
}

// Float returns a floating point value widened to float64.
func (d *Dict) Float(tag string) (float64, bool) {
	v, ok := d.Get(tag)
	if !ok {
		return 0, false
	}
	switch x := v.(type) {
	case float32:
		return float64(x), true
	case float64:
		return x, true
	}
	return 0, false
}

// ReadDict reads the three-record dictionary layout: a record holding the
// number of entries as uint32, a record of TagWidth-byte tags, and a record
// of values of the given kind. Files written without tags omit the tag
// record; their entries are named "tag", "tag1", "tag2", ...
func (r *Reader) ReadDict(kind Kind, tagged bool) (*Dict, error) {
	if !kind.valid() || kind == String {
		return nil, descriptorErrorf("dictionary values cannot be %s", kind)
	}

	header, err := r.Decode(Descriptor{Name: "dict", Fields: []Field{{Name: "size", Kind: Uint32}}})
	if err != nil {
		return nil, err
	}
	size, _ := header.Int("size")

	var tags []string
	if tagged {
		if tags, err = r.ReadTags(int(size)); err != nil {
			return nil, err
		}
	}

	start := r.offset
	payload, err := r.Next()
	if err != nil {
		return nil, err
	}
	if want := int(size) * kind.Size(); len(payload) != want {
		return nil, &FrameError{
			Offset: start,
			Length: uint32(len(payload)),
			Reason: fmt.Sprintf("expected %d %s values (%d bytes)", size, kind, want),
		}
	}

	// The count is only trusted once the value record has confirmed it.
	if !tagged {
		tags = make([]string, size)
		for i := range tags {
			tags[i] = untaggedTag
		}
	}
	return NewDict(tags, spread(kind.decode(r.opts.order, payload)))
}

// spread turns a decoded slice into its elements.
func spread(v any) []any {
	var out []any
	switch s := v.(type) {
	case []int8:
		for _, x := range s {
			out = append(out, x)
		}
	case []int32:
		for _, x := range s {
			out = append(out, x)
		}
	case []uint32:
		for _, x := range s {
			out = append(out, x)
		}
	case []uint64:
		for _, x := range s {
			out = append(out, x)
		}
	case []float32:
		for _, x := range s {
			out = append(out, x)
		}
	case []float64:
		for _, x := range s {
			out = append(out, x)
		}
	}
	return out
}
