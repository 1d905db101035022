// Package ape reads and writes APEv2 tags and opens Monkey's Audio files.
//
// An APEv2 tag is a list of key/value items framed by a 32-byte footer and
// an optional header of the same shape. It sits at the end of the file,
// before a trailing ID3v1 tag when one is present.
package ape

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/simonhull/audiotag/internal/binary"
	"github.com/simonhull/audiotag/internal/keyed"
	"github.com/simonhull/audiotag/internal/registry"
	"github.com/simonhull/audiotag/internal/types"
)

const (
	preamble   = "APETAGEX"
	footerSize = 32
	version2   = 2000
	version1   = 1000

	flagHasHeader = 1 << 31
	flagIsHeader  = 1 << 29

	itemTypeMask = 3 << 1
	itemText     = 0
	itemBinary   = 1 << 1

	// maxItems bounds the item count read from a footer.
	maxItems = 65536
)

// MaxPictures is the number of pictures an APE tag keeps.
const MaxPictures = 1

// Region is the byte range a tag occupies, header included.
type Region struct {
	Start, End int64
}

// Len returns the region size.
func (r Region) Len() int64 { return r.End - r.Start }

type footer struct {
	version uint32
	size    uint32 // items + footer, excluding header
	count   uint32
	flags   uint32
}

// rawItem is a binary or link item kept verbatim.
type rawItem struct {
	key   string
	value []byte
	flags uint32
}

// Tag is an APEv2 tag.
type Tag struct {
	items    *keyed.Store
	raw      []rawItem
	pictures []types.Picture
}

// New creates an empty tag.
func New() *Tag {
	return &Tag{items: keyed.NewStore()}
}

// Find locates a tag whose footer ends at end. It reports false when no
// footer is there.
func Find(sr *binary.SafeReader, end int64) (Region, bool, error) {
	if end < footerSize {
		return Region{}, false, nil
	}
	ft, ok, err := readFooter(sr, end-footerSize)
	if err != nil || !ok {
		return Region{}, false, err
	}
	if ft.flags&flagIsHeader != 0 {
		return Region{}, false, nil
	}

	start := end - int64(ft.size)
	if ft.flags&flagHasHeader != 0 && ft.version >= version2 {
		start -= footerSize
	}
	if ft.size < footerSize || start < 0 {
		return Region{}, false, &types.CorruptedFileError{
			Path:   sr.Path(),
			Offset: end - footerSize,
			Reason: fmt.Sprintf("APE tag size %d exceeds file", ft.size),
		}
	}
	return Region{Start: start, End: end}, true, nil
}

func readFooter(sr *binary.SafeReader, off int64) (footer, bool, error) {
	c := binary.NewCursor(sr, off, binary.LittleEndian)
	if c.String(len(preamble), "APE preamble") != preamble {
		return footer{}, false, c.Err()
	}
	ft := footer{
		version: binary.Next[uint32](c, "APE version"),
		size:    binary.Next[uint32](c, "APE tag size"),
		count:   binary.Next[uint32](c, "APE item count"),
		flags:   binary.Next[uint32](c, "APE flags"),
	}
	if err := c.Err(); err != nil {
		return footer{}, false, err
	}
	return ft, true, nil
}

// Read parses the tag in region.
func Read(sr *binary.SafeReader, region Region) (*Tag, error) {
	ft, ok, err := readFooter(sr, region.End-footerSize)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &types.CorruptedFileError{Path: sr.Path(), Offset: region.End - footerSize, Reason: "APE footer missing"}
	}
	if ft.count > maxItems {
		return nil, &types.CorruptedFileError{
			Path:   sr.Path(),
			Offset: region.End - footerSize,
			Reason: fmt.Sprintf("APE item count %d too large", ft.count),
		}
	}

	itemsEnd := region.End - footerSize
	t := New()
	c := binary.NewCursor(sr, region.End-int64(ft.size), binary.LittleEndian)
	for range ft.count {
		size := binary.Next[uint32](c, "APE item size")
		flags := binary.Next[uint32](c, "APE item flags")
		key := readKey(c, itemsEnd)
		if c.Err() != nil {
			return nil, c.Err()
		}
		if c.Offset()+int64(size) > itemsEnd {
			return nil, &types.CorruptedFileError{
				Path:   sr.Path(),
				Offset: c.Offset(),
				Reason: fmt.Sprintf("APE item %q overruns tag", key),
			}
		}
		value := c.Bytes(int(size), "APE item value")
		if c.Err() != nil {
			return nil, c.Err()
		}
		t.addItem(key, value, flags, ft.version)
	}
	return t, nil
}

// readKey reads a NUL-terminated item key.
func readKey(c *binary.Cursor, limit int64) string {
	var key []byte
	for c.Offset() < limit {
		b := binary.Next[uint8](c, "APE item key")
		if c.Err() != nil || b == 0 {
			break
		}
		key = append(key, b)
	}
	return string(key)
}

func (t *Tag) addItem(key string, value []byte, flags uint32, version uint32) {
	kind := flags & itemTypeMask
	if version < version2 {
		// APEv1 items are always text.
		kind = itemText
	}

	if kind == itemText {
		for v := range strings.SplitSeq(string(value), "\x00") {
			t.items.Add(key, v)
		}
		return
	}

	if pt, ok := types.ParsePictureType(key); ok && kind == itemBinary {
		t.pictures = append(t.pictures, decodePicture(pt, value))
		return
	}
	t.raw = append(t.raw, rawItem{key: key, value: value, flags: flags})
}

// decodePicture splits a cover item into its description and image.
func decodePicture(pt types.PictureType, value []byte) types.Picture {
	var desc *string
	data := value
	if i := bytes.IndexByte(value, 0); i >= 0 {
		if i > 0 {
			d := string(value[:i])
			desc = &d
		}
		data = value[i+1:]
	}
	return types.NewPictureOfType(pt, types.DetectMIME(data), data, desc)
}

// Empty reports whether the tag holds no items.
func (t *Tag) Empty() bool {
	return t.items.Len() == 0 && len(t.raw) == 0 && len(t.pictures) == 0
}

// Encode renders the tag with header and footer. An empty tag renders as
// nothing.
func (t *Tag) Encode() []byte {
	if t.Empty() {
		return nil
	}

	var body bytes.Buffer
	sw := binary.NewSafeWriter(&body)
	count := 0
	put := func(key string, value []byte, flags uint32) {
		_ = binary.WriteLE(sw, uint32(len(value)))
		_ = binary.WriteLE(sw, flags)
		_ = sw.WriteString(key)
		_ = sw.WriteBytes([]byte{0})
		_ = sw.WriteBytes(value)
		count++
	}

	seen := make(map[string]bool)
	for _, it := range t.items.Items() {
		folded := strings.ToLower(it.Key)
		if seen[folded] {
			continue
		}
		seen[folded] = true
		put(it.Key, []byte(strings.Join(t.items.Get(it.Key), "\x00")), itemText)
	}
	for _, p := range t.pictures {
		value := append([]byte(p.DescriptionOrEmpty()), 0)
		put(p.Type.String(), append(value, p.Data()...), itemBinary)
	}
	for _, it := range t.raw {
		put(it.key, it.value, it.flags)
	}

	size := uint32(body.Len() + footerSize)
	out := make([]byte, 0, body.Len()+2*footerSize)
	out = appendFooter(out, size, count, flagHasHeader|flagIsHeader)
	out = append(out, body.Bytes()...)
	out = appendFooter(out, size, count, flagHasHeader)
	return out
}

func appendFooter(b []byte, size uint32, count int, flags uint32) []byte {
	b = append(b, preamble...)
	b = binary.Encode(b, uint32(version2), binary.LittleEndian)
	b = binary.Encode(b, size, binary.LittleEndian)
	b = binary.Encode(b, uint32(count), binary.LittleEndian)
	b = binary.Encode(b, flags, binary.LittleEndian)
	return append(b, make([]byte, 8)...)
}

var schema = &keyed.Schema{
	Scheme: types.TagAPE,
	Packed: true,
	Keys: map[types.Field][]string{
		types.FieldTitle:       {"Title"},
		types.FieldArtist:      {"Artist"},
		types.FieldAlbum:       {"Album"},
		types.FieldAlbumArtist: {"Album Artist", "AlbumArtist"},
		types.FieldGenre:       {"Genre"},
		types.FieldYear:        {"Year"},
		types.FieldTrackNumber: {"Track"},
		types.FieldDiscNumber:  {"Disc"},
		types.FieldComposer:    {"Composer"},
		types.FieldConductor:   {"Conductor"},
		types.FieldLyricist:    {"Lyricist"},
		types.FieldPublisher:   {"Publisher", "Label"},
		types.FieldComment:     {"Comment"},
		types.FieldLyrics:      {"Lyrics"},
		types.FieldCopyright:   {"Copyright"},
		types.FieldRating:      {"Rating"},
	},
}

// TagType implements registry.Tag.
func (t *Tag) TagType() types.TagType { return types.TagAPE }

// Supports implements registry.Tag.
func (t *Tag) Supports(f types.Field) bool { return schema.Supports(f) }

// ReadField implements registry.Tag.
func (t *Tag) ReadField(f types.Field) types.Value { return schema.Read(t.items, f) }

// WriteField implements registry.Tag.
func (t *Tag) WriteField(f types.Field, v types.Value) error { return schema.Write(t.items, f, v) }

// Pictures implements registry.Tag.
func (t *Tag) Pictures() []types.Picture { return types.ClonePictures(t.pictures) }

// SetPictures implements registry.Tag. Only the first picture is kept.
func (t *Tag) SetPictures(pics []types.Picture) []types.Warning {
	kept, warnings := registry.LimitPictures(pics, MaxPictures, types.TagAPE)
	t.pictures = kept
	return warnings
}

// ReplayGain implements registry.Tag.
func (t *Tag) ReplayGain() types.ReplayGain { return keyed.ReadReplayGain(t.items, strings.ToUpper) }

// SetReplayGain implements registry.Tag.
func (t *Tag) SetReplayGain(rg types.ReplayGain) error {
	keyed.WriteReplayGain(t.items, rg, strings.ToUpper)
	return nil
}
