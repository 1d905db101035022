// Package aiff opens AIFF and AIFF-C files and edits their text chunks.
//
// The NAME, AUTH, "(c) " and ANNO chunks form the tag. Stream parameters
// come from COMM; every other chunk, an embedded "ID3 " chunk included,
// is written back unchanged.
package aiff

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/simonhull/audiotag/internal/binary"
	"github.com/simonhull/audiotag/internal/iff"
	"github.com/simonhull/audiotag/internal/keyed"
	"github.com/simonhull/audiotag/internal/registry"
	"github.com/simonhull/audiotag/internal/types"
)

const commSize = 18

// AIFF-C compression types.
var compressions = map[string]struct {
	name     string
	lossless bool
}{
	"NONE": {"PCM", true},
	"sowt": {"PCM", true},
	"twos": {"PCM", true},
	"fl32": {"IEEE Float", true},
	"FL32": {"IEEE Float", true},
	"fl64": {"IEEE Float", true},
	"ulaw": {"mu-law", false},
	"ULAW": {"mu-law", false},
	"alaw": {"A-law", false},
	"ALAW": {"A-law", false},
	"ima4": {"IMA ADPCM", false},
}

var textChunks = []string{"NAME", "AUTH", "(c) ", "ANNO"}

func isText(id string) bool {
	for _, t := range textChunks {
		if id == t {
			return true
		}
	}
	return false
}

type codec struct{}

// Open implements registry.Codec.
func (codec) Open(sr *binary.SafeReader, opts registry.OpenOptions) (*registry.Opened, error) {
	form, warnings, err := iff.Read(sr, "FORM", binary.BigEndian)
	if err != nil {
		return nil, err
	}
	if form.Type != "AIFF" && form.Type != "AIFC" {
		return nil, &types.CorruptedFileError{Path: sr.Path(), Offset: 8, Reason: fmt.Sprintf("FORM type %q is not AIFF", form.Type)}
	}

	props, err := properties(sr, form)
	if err != nil {
		return nil, err
	}

	a := &file{Text: New(), sr: sr, form: form}
	for _, c := range form.Chunks {
		if !isText(c.ID) {
			continue
		}
		body, err := form.Body(sr, c)
		if err != nil {
			return nil, err
		}
		a.found = true
		if v := iff.DecodeText(body); v != "" {
			a.items.Add(c.ID, v)
		}
	}
	if !a.found && opts.RequireTag {
		return nil, registry.ErrNoTag
	}

	return &registry.Opened{Adapter: a, Properties: props, Warnings: warnings}, nil
}

func properties(sr *binary.SafeReader, form *iff.Form) (types.Properties, error) {
	c, ok := form.Find("COMM")
	if !ok || form.Len(c) < commSize {
		return types.Properties{}, &types.CorruptedFileError{Path: sr.Path(), Offset: 12, Reason: "missing or short COMM chunk"}
	}
	comm, err := form.Body(sr, c)
	if err != nil {
		return types.Properties{}, err
	}

	channels := binary.Decode[uint16](comm[0:2], binary.BigEndian)
	frames := binary.Decode[uint32](comm[2:6], binary.BigEndian)
	bits := binary.Decode[uint16](comm[6:8], binary.BigEndian)
	rate := binary.Extended(comm[8:18])

	p := types.Properties{
		Codec:      "PCM",
		SampleRate: int(rate),
		Channels:   int(channels),
		BitDepth:   int(bits),
		Lossless:   true,
	}
	if form.Type == "AIFC" && len(comm) >= commSize+4 {
		kind := string(comm[18:22])
		if comp, ok := compressions[kind]; ok {
			p.Codec, p.Lossless = comp.name, comp.lossless
		} else {
			p.Codec, p.Lossless = strings.TrimSpace(kind), false
		}
		if !p.Lossless {
			p.BitDepth = 0
		}
	}

	if rate > 0 {
		p.Duration = time.Duration(float64(frames) / rate * float64(time.Second))
	}
	if p.Lossless && p.Codec == "PCM" {
		p.Bitrate = int(rate * float64(channels) * float64(bits) / 1000)
	} else if ssnd, ok := form.Find("SSND"); ok {
		p.Bitrate = types.EstimateBitrate(form.Len(ssnd), p.Duration)
	}
	return p, nil
}

// file is the text-chunk adapter bound to an AIFF file.
type file struct {
	*Text
	sr    *binary.SafeReader
	form  *iff.Form
	found bool
}

// Serialize implements registry.Adapter. The text chunks are written where
// the first one stood, or after the last chunk when the file had none.
func (a *file) Serialize(w io.Writer) error {
	if !a.dirty {
		return a.sr.CopyTo(w, 0, a.sr.Size())
	}

	var text []byte
	for _, it := range a.items.Items() {
		text = append(text, a.form.Encode(it.Key, iff.EncodeText(it.Value))...)
	}
	placed := false
	edit := func(c iff.Chunk) ([]byte, bool) {
		if !isText(c.ID) {
			return nil, false
		}
		if placed {
			return nil, true
		}
		placed = true
		return text, true
	}
	if a.found {
		return a.form.Write(w, a.sr, edit, nil)
	}
	return a.form.Write(w, a.sr, edit, text)
}

// Text holds the text chunks of one file.
type Text struct {
	items *keyed.Store
	dirty bool
}

// New creates an empty set of text chunks.
func New() *Text {
	return &Text{items: keyed.NewStore()}
}

var schema = &keyed.Schema{
	Scheme: types.TagAIFF,
	Keys: map[types.Field][]string{
		types.FieldTitle:     {"NAME"},
		types.FieldArtist:    {"AUTH"},
		types.FieldCopyright: {"(c) "},
		types.FieldComment:   {"ANNO"},
	},
}

// TagType implements registry.Tag.
func (t *Text) TagType() types.TagType { return types.TagAIFF }

// Supports implements registry.Tag.
func (t *Text) Supports(f types.Field) bool { return schema.Supports(f) }

// ReadField implements registry.Tag.
func (t *Text) ReadField(f types.Field) types.Value { return schema.Read(t.items, f) }

// WriteField implements registry.Tag.
func (t *Text) WriteField(f types.Field, v types.Value) error {
	if !schema.Supports(f) {
		return nil
	}
	t.dirty = true
	return schema.Write(t.items, f, v)
}

// Pictures implements registry.Tag. AIFF text chunks hold no pictures.
func (t *Text) Pictures() []types.Picture { return nil }

// SetPictures implements registry.Tag.
func (t *Text) SetPictures(pics []types.Picture) []types.Warning {
	_, warnings := registry.LimitPictures(pics, 0, types.TagAIFF)
	return warnings
}

// ReplayGain implements registry.Tag.
func (t *Text) ReplayGain() types.ReplayGain { return types.ReplayGain{} }

// SetReplayGain implements registry.Tag.
func (t *Text) SetReplayGain(types.ReplayGain) error { return nil }

func init() {
	registry.Register(types.FormatAIFF, codec{})
}
