package m4a

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/encoding/charmap"

	"github.com/simonhull/audiotag/internal/binary"
	"github.com/simonhull/audiotag/internal/id3"
	"github.com/simonhull/audiotag/internal/keyed"
	"github.com/simonhull/audiotag/internal/types"
)

// Data atom type indicators.
const (
	typeImplicit = 0
	typeUTF8     = 1
	typeGIF      = 12
	typeJPEG     = 13
	typePNG      = 14
	typeBMP      = 27
)

const (
	freeform       = "----"
	itunesFreeform = "----:com.apple.iTunes:"
)

var schema = &keyed.Schema{
	Scheme: types.TagILST,
	Keys: map[types.Field][]string{
		types.FieldTitle:       {"©nam"},
		types.FieldArtist:      {"©ART"},
		types.FieldAlbum:       {"©alb"},
		types.FieldAlbumArtist: {"aART"},
		types.FieldGenre:       {"©gen"},
		types.FieldYear:        {"©day"},
		types.FieldComposer:    {"©wrt"},
		types.FieldConductor:   {itunesFreeform + "CONDUCTOR"},
		types.FieldLyricist:    {itunesFreeform + "LYRICIST"},
		types.FieldPublisher:   {"©pub", itunesFreeform + "LABEL"},
		types.FieldComment:     {"©cmt"},
		types.FieldLyrics:      {"©lyr"},
		types.FieldCopyright:   {"cprt"},
		types.FieldRating:      {itunesFreeform + "RATING"},
	},
}

// Item names are MacRoman in principle; in practice only the copyright
// sign appears, which Latin-1 maps identically to the iTunes byte 0xA9.
var latin1 = charmap.ISO8859_1

var (
	errMalformedItem = errors.New("malformed item")
	errNotText       = errors.New("item has no text value")
)

// pair is a binary trkn or disk value. Zero means absent.
type pair struct {
	num, total int
}

func (p pair) empty() bool { return p.num == 0 && p.total == 0 }

// Tag is an iTunes metadata list.
type Tag struct {
	text     *keyed.Store
	track    pair
	disc     pair
	pictures []types.Picture
	raw      [][]byte // items without a text mapping, kept as whole atoms

	// dirty is set by the first mutation. An untouched list is written
	// back verbatim.
	dirty bool
}

// New creates an empty tag.
func New() *Tag {
	return &Tag{text: keyed.NewStore()}
}

// parseIlst decodes the items of an ilst payload. Items that cannot be
// decoded are kept verbatim and reported.
func parseIlst(payload []byte, base int64, path string) (*Tag, []types.Warning, error) {
	sr := binary.NewSafeReader(bytes.NewReader(payload), int64(len(payload)), path)
	t := New()
	var warnings []types.Warning
	var genre string

	for offset := int64(0); offset+8 <= sr.Size(); {
		atom, err := readAtomHeader(sr, offset, sr.Size())
		if err != nil {
			return nil, nil, err
		}
		g, err := t.addItem(sr, atom)
		if err != nil {
			if !errors.Is(err, errNotText) {
				warnings = append(warnings, types.Warning{
					Stage:   "metadata",
					Message: fmt.Sprintf("ilst item %q: %v; kept verbatim", atom.Type, err),
					Offset:  base + offset,
				})
			}
			raw, _ := sr.Slice(atom.Offset, int(atom.Size), "ilst item")
			t.raw = append(t.raw, raw)
		}
		if g != "" {
			genre = g
		}
		offset = atom.End()
	}

	// A numeric gnre item becomes a text genre unless one exists.
	if _, ok := t.text.First("©gen"); !ok && genre != "" {
		t.text.Add("©gen", genre)
	}
	return t, warnings, nil
}

type dataAtom struct {
	kind  uint32
	value []byte
}

// addItem decodes one item. It returns the genre name of a gnre item.
func (t *Tag) addItem(sr *binary.SafeReader, item *Atom) (string, error) {
	var mean, name string
	var data []dataAtom
	for offset := item.DataOffset(); offset+8 <= item.End(); {
		child, err := readAtomHeader(sr, offset, item.End())
		if err != nil {
			return "", errMalformedItem
		}
		body, err := sr.Slice(child.DataOffset(), int(child.DataSize()), child.Type)
		if err != nil || len(body) < 4 {
			return "", errMalformedItem
		}
		switch child.Type {
		case "mean":
			mean = string(body[4:])
		case "name":
			name = string(body[4:])
		case "data":
			if len(body) < 8 {
				return "", errMalformedItem
			}
			data = append(data, dataAtom{
				kind:  binary.Decode[uint32](body, binary.BigEndian) & 0xFFFFFF,
				value: body[8:],
			})
		}
		offset = child.End()
	}
	if len(data) == 0 {
		return "", errMalformedItem
	}

	key, err := latin1.NewDecoder().String(item.Type)
	if err != nil {
		return "", errMalformedItem
	}

	switch key {
	case "trkn", "disk":
		v := data[0].value
		if len(v) < 6 {
			return "", errMalformedItem
		}
		p := pair{
			num:   int(binary.Decode[uint16](v[2:], binary.BigEndian)),
			total: int(binary.Decode[uint16](v[4:], binary.BigEndian)),
		}
		if key == "trkn" {
			t.track = p
		} else {
			t.disc = p
		}
		return "", nil
	case "covr":
		for _, d := range data {
			t.pictures = append(t.pictures, types.NewPicture(pictureMIME(d), d.value, nil))
		}
		return "", nil
	case "gnre":
		if len(data[0].value) < 2 {
			return "", errMalformedItem
		}
		id := int(binary.Decode[uint16](data[0].value, binary.BigEndian))
		if g, ok := id3.GenreName(id - 1); ok {
			return g, nil
		}
		return "", fmt.Errorf("unknown genre index %d", id)
	case freeform:
		if mean == "" || name == "" {
			return "", errMalformedItem
		}
		key = freeform + ":" + mean + ":" + name
	}

	for _, d := range data {
		if d.kind != typeUTF8 {
			// Integer and binary items have no text mapping.
			return "", errNotText
		}
	}
	for _, d := range data {
		t.text.Add(key, string(d.value))
	}
	return "", nil
}

func pictureMIME(d dataAtom) string {
	switch d.kind {
	case typeJPEG:
		return "image/jpeg"
	case typePNG:
		return "image/png"
	case typeGIF:
		return "image/gif"
	case typeBMP:
		return "image/bmp"
	}
	if m := types.DetectMIME(d.value); m != "" {
		return m
	}
	return "application/octet-stream"
}

func pictureKind(mime string) uint32 {
	switch mime {
	case "image/jpeg", "image/jpg":
		return typeJPEG
	case "image/png":
		return typePNG
	case "image/gif":
		return typeGIF
	case "image/bmp":
		return typeBMP
	default:
		return typeImplicit
	}
}

// empty reports whether the list holds nothing.
func (t *Tag) empty() bool {
	return t.text.Len() == 0 && t.track.empty() && t.disc.empty() && len(t.pictures) == 0 && len(t.raw) == 0
}

// encode renders the ilst payload: text items in store order, then
// track and disc, then verbatim items, then artwork.
func (t *Tag) encode() ([]byte, error) {
	var out []byte
	var keys []string
	values := map[string][]string{}
	for key, value := range t.text.All() {
		k := strings.ToLower(key)
		if _, ok := values[k]; !ok {
			keys = append(keys, key)
		}
		values[k] = append(values[k], value)
	}
	for _, key := range keys {
		item, err := textItem(key, values[strings.ToLower(key)])
		if err != nil {
			return nil, err
		}
		out = append(out, item...)
	}

	if !t.track.empty() {
		v := binary.Encode([]byte{0, 0}, uint16(t.track.num), binary.BigEndian)
		v = binary.Encode(v, uint16(t.track.total), binary.BigEndian)
		out = append(out, atom("trkn", dataItem(typeImplicit, append(v, 0, 0)))...)
	}
	if !t.disc.empty() {
		v := binary.Encode([]byte{0, 0}, uint16(t.disc.num), binary.BigEndian)
		v = binary.Encode(v, uint16(t.disc.total), binary.BigEndian)
		out = append(out, atom("disk", dataItem(typeImplicit, v))...)
	}
	for _, raw := range t.raw {
		out = append(out, raw...)
	}
	if len(t.pictures) > 0 {
		var covr []byte
		for _, p := range t.pictures {
			covr = append(covr, dataItem(pictureKind(p.MIMEType), p.Data())...)
		}
		out = append(out, atom("covr", covr)...)
	}
	return out, nil
}

func textItem(key string, values []string) ([]byte, error) {
	var body []byte
	if rest, ok := strings.CutPrefix(key, freeform+":"); ok {
		mean, name, _ := strings.Cut(rest, ":")
		body = append(body, atom("mean", append([]byte{0, 0, 0, 0}, mean...))...)
		body = append(body, atom("name", append([]byte{0, 0, 0, 0}, name...))...)
		key = freeform
	}
	for _, v := range values {
		body = append(body, dataItem(typeUTF8, []byte(v))...)
	}

	name, err := latin1.NewEncoder().String(key)
	if err != nil || len(name) != 4 {
		return nil, fmt.Errorf("invalid ilst item name %q", key)
	}
	return atom(name, body), nil
}

func dataItem(kind uint32, value []byte) []byte {
	body := binary.Encode(nil, kind, binary.BigEndian)
	body = append(body, 0, 0, 0, 0) // locale
	return atom("data", append(body, value...))
}

// atom frames body with a 32-bit size header.
func atom(typ string, body []byte) []byte {
	out := binary.Encode(make([]byte, 0, 8+len(body)), uint32(8+len(body)), binary.BigEndian)
	out = append(out, typ...)
	return append(out, body...)
}

// TagType implements registry.Tag.
func (t *Tag) TagType() types.TagType { return types.TagILST }

// Supports implements registry.Tag.
func (t *Tag) Supports(f types.Field) bool {
	switch f {
	case types.FieldTrackNumber, types.FieldTrackTotal, types.FieldDiscNumber, types.FieldDiscsTotal:
		return true
	}
	return schema.Supports(f)
}

// ReadField implements registry.Tag.
func (t *Tag) ReadField(f types.Field) types.Value {
	var n int
	switch f {
	case types.FieldTrackNumber:
		n = t.track.num
	case types.FieldTrackTotal:
		n = t.track.total
	case types.FieldDiscNumber:
		n = t.disc.num
	case types.FieldDiscsTotal:
		n = t.disc.total
	default:
		return schema.Read(t.text, f)
	}
	if n == 0 {
		return types.Null()
	}
	return types.IntValue(n)
}

// WriteField implements registry.Tag. Track and disc values are stored
// as 16-bit integers.
func (t *Tag) WriteField(f types.Field, v types.Value) error {
	var slot *int
	switch f {
	case types.FieldTrackNumber:
		slot = &t.track.num
	case types.FieldTrackTotal:
		slot = &t.track.total
	case types.FieldDiscNumber:
		slot = &t.disc.num
	case types.FieldDiscsTotal:
		slot = &t.disc.total
	default:
		if !schema.Supports(f) {
			return nil
		}
		t.dirty = true
		return schema.Write(t.text, f, v)
	}

	n := 0
	if !v.IsNull() {
		var ok bool
		if n, ok = v.Int(); !ok {
			return types.InvalidFor(f, v, "expected integer")
		}
		if n > math.MaxUint16 {
			return types.InvalidFor(f, v, "MP4 stores track and disc numbers as 16-bit integers")
		}
	}
	*slot = n
	t.dirty = true
	return nil
}

// Pictures implements registry.Tag.
func (t *Tag) Pictures() []types.Picture { return types.ClonePictures(t.pictures) }

// SetPictures implements registry.Tag. covr atoms hold any number of
// images but no picture type or description; those are reported when lost.
func (t *Tag) SetPictures(pics []types.Picture) []types.Warning {
	t.pictures = make([]types.Picture, 0, len(pics))
	lost := 0
	for _, p := range pics {
		if p.Type != types.PictureFrontCover || p.Description != nil {
			lost++
		}
		t.pictures = append(t.pictures, types.NewPicture(p.MIMEType, p.Data(), nil))
	}
	t.dirty = true
	if lost == 0 {
		return nil
	}
	return []types.Warning{{
		Stage:   "pictures",
		Message: fmt.Sprintf("MP4 artwork stores no picture type or description; %d picture(s) will read back as front covers", lost),
	}}
}

func replayGainKey(key string) string { return itunesFreeform + key }

// ReplayGain implements registry.Tag.
func (t *Tag) ReplayGain() types.ReplayGain { return keyed.ReadReplayGain(t.text, replayGainKey) }

// SetReplayGain implements registry.Tag.
func (t *Tag) SetReplayGain(rg types.ReplayGain) error {
	keyed.WriteReplayGain(t.text, rg, replayGainKey)
	t.dirty = true
	return nil
}
