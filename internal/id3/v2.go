// Package id3 adapts ID3v2 and ID3v1 tags to the canonical field model.
//
// ID3v2 frames are parsed and written by github.com/bogem/id3v2. ID3v1
// tags are read with github.com/dhowden/tag and written here, since the
// 128-byte layout has no maintained writer.
package id3

import (
	"bytes"
	"io"
	"math/big"
	"strings"

	id3v2 "github.com/bogem/id3v2/v2"

	"github.com/simonhull/audiotag/internal/keyed"
	"github.com/simonhull/audiotag/internal/types"
)

// textFrames maps plain text fields to their frame IDs.
var textFrames = map[types.Field]string{
	types.FieldTitle:       "TIT2",
	types.FieldArtist:      "TPE1",
	types.FieldAlbum:       "TALB",
	types.FieldAlbumArtist: "TPE2",
	types.FieldGenre:       "TCON",
	types.FieldComposer:    "TCOM",
	types.FieldConductor:   "TPE3",
	types.FieldLyricist:    "TEXT",
	types.FieldPublisher:   "TPUB",
	types.FieldCopyright:   "TCOP",
}

const defaultLanguage = "eng"

// popmRatings maps 1..5 stars to POPM rating bytes.
var popmRatings = [...]uint8{0, 1, 64, 128, 196, 255}

// V2 is an ID3v2.3 or ID3v2.4 tag.
type V2 struct {
	tag *id3v2.Tag
}

// NewV2 creates an empty ID3v2.4 tag.
func NewV2() *V2 {
	tag := id3v2.NewEmptyTag()
	tag.SetVersion(4)
	tag.SetDefaultEncoding(id3v2.EncodingUTF8)
	return &V2{tag: tag}
}

// ParseV2 parses an ID3v2 tag from the start of r.
// ID3v2.2 tags are rejected with id3v2.ErrUnsupportedVersion.
func ParseV2(r io.Reader) (*V2, error) {
	tag, err := id3v2.ParseReader(r, id3v2.Options{Parse: true})
	if err != nil {
		return nil, err
	}
	if tag.Version() == 4 {
		tag.SetDefaultEncoding(id3v2.EncodingUTF8)
	} else {
		tag.SetDefaultEncoding(id3v2.EncodingUTF16)
	}
	return &V2{tag: tag}, nil
}

// Version returns the major version (3 or 4).
func (t *V2) Version() byte {
	return t.tag.Version()
}

// Empty reports whether the tag holds no frames.
func (t *V2) Empty() bool {
	return t.tag.Count() == 0
}

// Encode renders the tag with header. An empty tag renders as nothing.
func (t *V2) Encode() ([]byte, error) {
	if t.Empty() {
		return nil, nil
	}
	var buf bytes.Buffer
	if _, err := t.tag.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (t *V2) encoding() id3v2.Encoding {
	return t.tag.DefaultEncoding()
}

// TagType implements registry.Tag.
func (t *V2) TagType() types.TagType { return types.TagID3v2 }

// Supports implements registry.Tag. ID3v2 stores every canonical field.
func (t *V2) Supports(f types.Field) bool { return f.Valid() }

func (t *V2) yearFrames() []string {
	if t.tag.Version() == 4 {
		return []string{"TDRC", "TYER"}
	}
	return []string{"TYER", "TDRC"}
}

func (t *V2) text(id string) (string, bool) {
	if len(t.tag.GetFrames(id)) == 0 {
		return "", false
	}
	text := t.tag.GetTextFrame(id).Text
	// ID3v2.4 separates multiple values with NUL.
	text, _, _ = strings.Cut(text, "\x00")
	return text, true
}

// ReadField implements registry.Tag.
func (t *V2) ReadField(f types.Field) types.Value {
	if id, ok := textFrames[f]; ok {
		s, ok := t.text(id)
		if !ok {
			return types.Null()
		}
		if f == types.FieldGenre {
			s = resolveTCON(s)
		}
		return types.StringValue(s)
	}

	switch f {
	case types.FieldYear:
		for _, id := range t.yearFrames() {
			if s, ok := t.text(id); ok {
				return leadingYear(s)
			}
		}
		return types.Null()
	case types.FieldTrackNumber, types.FieldTrackTotal:
		return t.pairPart("TRCK", f == types.FieldTrackTotal)
	case types.FieldDiscNumber, types.FieldDiscsTotal:
		return t.pairPart("TPOS", f == types.FieldDiscsTotal)
	case types.FieldComment:
		if c, ok := t.comment(); ok {
			return types.StringValue(c.Text)
		}
	case types.FieldLyrics:
		for _, fr := range t.tag.GetFrames("USLT") {
			if l, ok := fr.(id3v2.UnsynchronisedLyricsFrame); ok {
				return types.StringValue(l.Lyrics)
			}
		}
	case types.FieldRating:
		if p, ok := t.popularimeter(); ok {
			return ratingFromPOPM(p.Rating)
		}
	}
	return types.Null()
}

func leadingYear(s string) types.Value {
	s = strings.TrimSpace(s)
	if len(s) > 4 {
		s = s[:4]
	}
	return keyed.ParseInt(s)
}

func (t *V2) pairPart(id string, total bool) types.Value {
	s, ok := t.text(id)
	if !ok {
		return types.Null()
	}
	num, tot := keyed.SplitPair(s)
	if total {
		return tot
	}
	return num
}

func (t *V2) comment() (id3v2.CommentFrame, bool) {
	var fallback *id3v2.CommentFrame
	for _, fr := range t.tag.GetFrames("COMM") {
		c, ok := fr.(id3v2.CommentFrame)
		if !ok {
			continue
		}
		if c.Description == "" {
			return c, true
		}
		// iTunes stores normalization and gapless data in described comments.
		if fallback == nil && !strings.HasPrefix(c.Description, "iTun") {
			fallback = &c
		}
	}
	if fallback != nil {
		return *fallback, true
	}
	return id3v2.CommentFrame{}, false
}

func (t *V2) popularimeter() (id3v2.PopularimeterFrame, bool) {
	for _, fr := range t.tag.GetFrames("POPM") {
		if p, ok := fr.(id3v2.PopularimeterFrame); ok {
			return p, true
		}
	}
	return id3v2.PopularimeterFrame{}, false
}

func ratingFromPOPM(b uint8) types.Value {
	switch {
	case b == 0:
		return types.Null()
	case b < 32:
		return types.IntValue(1)
	case b < 96:
		return types.IntValue(2)
	case b < 160:
		return types.IntValue(3)
	case b < 224:
		return types.IntValue(4)
	default:
		return types.IntValue(5)
	}
}

// keepFrames rewrites a multi-instance frame ID, keeping only the frames
// for which keep returns true.
func (t *V2) keepFrames(id string, keep func(id3v2.Framer) bool) {
	frames := t.tag.GetFrames(id)
	t.tag.DeleteFrames(id)
	for _, fr := range frames {
		if keep(fr) {
			t.tag.AddFrame(id, fr)
		}
	}
}

func (t *V2) setText(id string, v types.Value) {
	if v.IsNull() {
		t.tag.DeleteFrames(id)
		return
	}
	t.tag.AddTextFrame(id, t.encoding(), v.String())
}

func (t *V2) setPairPart(id string, total bool, v types.Value) {
	var num, tot types.Value
	if s, ok := t.text(id); ok {
		num, tot = keyed.SplitPair(s)
	}
	if total {
		tot = v
	} else {
		num = v
	}
	t.setText(id, keyed.JoinPair(num, tot))
}

// WriteField implements registry.Tag.
func (t *V2) WriteField(f types.Field, v types.Value) error {
	if id, ok := textFrames[f]; ok {
		t.setText(id, v)
		return nil
	}

	switch f {
	case types.FieldYear:
		years := t.yearFrames()
		for _, id := range years {
			t.tag.DeleteFrames(id)
		}
		t.setText(years[0], v)
	case types.FieldTrackNumber, types.FieldTrackTotal:
		t.setPairPart("TRCK", f == types.FieldTrackTotal, v)
	case types.FieldDiscNumber, types.FieldDiscsTotal:
		t.setPairPart("TPOS", f == types.FieldDiscsTotal, v)
	case types.FieldComment:
		t.keepFrames("COMM", func(fr id3v2.Framer) bool {
			c, ok := fr.(id3v2.CommentFrame)
			return ok && c.Description != "" && strings.HasPrefix(c.Description, "iTun")
		})
		if s, ok := v.Str(); ok {
			t.tag.AddCommentFrame(id3v2.CommentFrame{
				Encoding: t.encoding(),
				Language: defaultLanguage,
				Text:     s,
			})
		}
	case types.FieldLyrics:
		t.tag.DeleteFrames("USLT")
		if s, ok := v.Str(); ok {
			t.tag.AddUnsynchronisedLyricsFrame(id3v2.UnsynchronisedLyricsFrame{
				Encoding: t.encoding(),
				Language: defaultLanguage,
				Lyrics:   s,
			})
		}
	case types.FieldRating:
		prev, _ := t.popularimeter()
		t.tag.DeleteFrames("POPM")
		if n, ok := v.Int(); ok {
			counter := prev.Counter
			if counter == nil {
				counter = big.NewInt(0)
			}
			t.tag.AddFrame("POPM", id3v2.PopularimeterFrame{
				Email:   prev.Email,
				Rating:  popmRatings[n],
				Counter: counter,
			})
		}
	}
	return nil
}

// Pictures implements registry.Tag.
func (t *V2) Pictures() []types.Picture {
	var out []types.Picture
	for _, fr := range t.tag.GetFrames("APIC") {
		pf, ok := fr.(id3v2.PictureFrame)
		if !ok {
			continue
		}
		var desc *string
		if pf.Description != "" {
			desc = &pf.Description
		}
		mime := pf.MimeType
		if mime == "" || !strings.Contains(mime, "/") {
			if sniffed := types.DetectMIME(pf.Picture); sniffed != "" {
				mime = sniffed
			}
		}
		out = append(out, types.NewPictureOfType(types.PictureTypeOf(int(pf.PictureType)), mime, pf.Picture, desc))
	}
	return out
}

// SetPictures implements registry.Tag. APIC frames are unique per picture
// type and description; later duplicates are dropped with a warning.
func (t *V2) SetPictures(pics []types.Picture) []types.Warning {
	t.tag.DeleteFrames("APIC")
	var warnings []types.Warning
	seen := make(map[string]bool)
	for _, p := range pics {
		key := p.Type.String() + "\x00" + p.DescriptionOrEmpty()
		if seen[key] {
			warnings = append(warnings, types.Warning{
				Stage:   "pictures",
				Message: "ID3v2 holds one picture per type and description; duplicate " + p.Type.String() + " dropped",
			})
			continue
		}
		seen[key] = true
		t.tag.AddAttachedPicture(id3v2.PictureFrame{
			Encoding:    t.encoding(),
			MimeType:    p.MIMEType,
			PictureType: byte(p.Type),
			Description: p.DescriptionOrEmpty(),
			Picture:     p.Data(),
		})
	}
	return warnings
}

func isReplayGainKey(desc string) bool {
	return strings.HasPrefix(strings.ToUpper(desc), "REPLAYGAIN_")
}

// ReplayGain implements registry.Tag.
func (t *V2) ReplayGain() types.ReplayGain {
	var rg types.ReplayGain
	for _, fr := range t.tag.GetFrames("TXXX") {
		u, ok := fr.(id3v2.UserDefinedTextFrame)
		if !ok || !isReplayGainKey(u.Description) {
			continue
		}
		if v, ok := types.ParseReplayGain(u.Value); ok {
			rg.Set(u.Description, &v)
		}
	}
	return rg
}

// SetReplayGain implements registry.Tag.
func (t *V2) SetReplayGain(rg types.ReplayGain) error {
	t.keepFrames("TXXX", func(fr id3v2.Framer) bool {
		u, ok := fr.(id3v2.UserDefinedTextFrame)
		return ok && !isReplayGainKey(u.Description)
	})
	for _, e := range rg.Entries() {
		if e.Value == nil {
			continue
		}
		t.tag.AddUserDefinedTextFrame(id3v2.UserDefinedTextFrame{
			Encoding:    t.encoding(),
			Description: e.Key,
			Value:       types.FormatReplayGain(e),
		})
	}
	return nil
}
