package riff

import (
	"fmt"

	"github.com/simonhull/audiotag/internal/binary"
	"github.com/simonhull/audiotag/internal/iff"
	"github.com/simonhull/audiotag/internal/keyed"
	"github.com/simonhull/audiotag/internal/registry"
	"github.com/simonhull/audiotag/internal/types"
)

var schema = &keyed.Schema{
	Scheme: types.TagRIFF,
	Keys: map[types.Field][]string{
		types.FieldTitle:       {"INAM"},
		types.FieldArtist:      {"IART"},
		types.FieldAlbum:       {"IPRD"},
		types.FieldGenre:       {"IGNR"},
		types.FieldYear:        {"ICRD"},
		types.FieldTrackNumber: {"ITRK", "IPRT"},
		types.FieldTrackTotal:  {"IFRM"},
		types.FieldComposer:    {"IMUS"},
		types.FieldLyricist:    {"IWRI"},
		types.FieldPublisher:   {"IPUB"},
		types.FieldComment:     {"ICMT"},
		types.FieldCopyright:   {"ICOP"},
		types.FieldRating:      {"IRTD"},
	},
}

// Info is a RIFF INFO list. Items keep their file order, and unknown ids
// are written back as read.
type Info struct {
	items *keyed.Store
	dirty bool
}

// NewInfo creates an empty list.
func NewInfo() *Info {
	return &Info{items: keyed.NewStore()}
}

// ParseInfo reads the subchunks of a LIST/INFO body, after the "INFO"
// type. base is the file offset of b, used in warnings.
func ParseInfo(b []byte, base int64) (*Info, []types.Warning) {
	info := NewInfo()
	var warnings []types.Warning
	for pos := 0; pos+8 <= len(b); {
		id := string(b[pos : pos+4])
		size := int(binary.Decode[uint32](b[pos+4:pos+8], binary.LittleEndian))
		pos += 8
		if size > len(b)-pos {
			warnings = append(warnings, types.Warning{
				Stage:   "metadata",
				Message: fmt.Sprintf("INFO item %q overruns its list; it will be removed on save", id),
				Offset:  base + int64(pos) - 8,
			})
			break
		}
		if v := iff.DecodeText(b[pos : pos+size]); v != "" {
			info.items.Add(id, v)
		}
		pos += size + size&1
	}
	return info, warnings
}

// Store exposes the raw items.
func (t *Info) Store() *keyed.Store { return t.items }

// Encode renders the LIST body, "INFO" type included, or nil when the
// list is empty.
func (t *Info) Encode() []byte {
	if t.items.Len() == 0 {
		return nil
	}
	out := []byte("INFO")
	for _, it := range t.items.Items() {
		if len(it.Key) != 4 {
			continue
		}
		value := append(iff.EncodeText(it.Value), 0)
		out = append(out, it.Key...)
		out = binary.Encode(out, uint32(len(value)), binary.LittleEndian)
		out = append(out, value...)
		if len(value)%2 == 1 {
			out = append(out, 0)
		}
	}
	return out
}

// TagType implements registry.Tag.
func (t *Info) TagType() types.TagType { return types.TagRIFF }

// Supports implements registry.Tag.
func (t *Info) Supports(f types.Field) bool { return schema.Supports(f) }

// ReadField implements registry.Tag.
func (t *Info) ReadField(f types.Field) types.Value { return schema.Read(t.items, f) }

// WriteField implements registry.Tag.
func (t *Info) WriteField(f types.Field, v types.Value) error {
	if !schema.Supports(f) {
		return nil
	}
	t.dirty = true
	return schema.Write(t.items, f, v)
}

// Pictures implements registry.Tag. INFO lists hold no pictures.
func (t *Info) Pictures() []types.Picture { return nil }

// SetPictures implements registry.Tag.
func (t *Info) SetPictures(pics []types.Picture) []types.Warning {
	_, warnings := registry.LimitPictures(pics, 0, types.TagRIFF)
	return warnings
}

// ReplayGain implements registry.Tag.
func (t *Info) ReplayGain() types.ReplayGain { return types.ReplayGain{} }

// SetReplayGain implements registry.Tag.
func (t *Info) SetReplayGain(types.ReplayGain) error { return nil }
