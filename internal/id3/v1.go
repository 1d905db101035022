package id3

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/dhowden/tag"
	"golang.org/x/text/encoding/charmap"

	"github.com/simonhull/audiotag/internal/binary"
	"github.com/simonhull/audiotag/internal/registry"
	"github.com/simonhull/audiotag/internal/types"
)

// V1Size is the fixed size of an ID3v1 tag at the end of a file.
const V1Size = 128

const (
	v1TextLen    = 30
	v1CommentLen = 28 // when a track byte is present
	v1MaxTrack   = 255
	noGenre      = 255
)

// V1 is an ID3v1.1 tag. Text is held decoded; it is encoded to Latin-1
// on write.
type V1 struct {
	title, artist, album, comment string
	year                          string
	track                         int
	genre                         byte
}

// NewV1 creates an empty ID3v1 tag.
func NewV1() *V1 {
	return &V1{genre: noGenre}
}

// ParseV1 reads the ID3v1 tag in the last 128 bytes of sr.
// It returns nil, nil when there is none.
func ParseV1(sr *binary.SafeReader) (*V1, error) {
	if sr.Size() < V1Size {
		return nil, nil
	}
	raw, err := sr.Slice(sr.Size()-V1Size, V1Size, "ID3v1 tag")
	if err != nil {
		return nil, err
	}
	if string(raw[:3]) != "TAG" {
		return nil, nil
	}

	m, err := tag.ReadID3v1Tags(bytes.NewReader(raw))
	if errors.Is(err, tag.ErrNotID3v1) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	track, _ := m.Track()
	// The year is read from the raw field so that "0000" survives.
	year := strings.Trim(string(raw[93:97]), "\x00 ")
	if _, err := strconv.Atoi(year); err != nil {
		year = ""
	}
	return &V1{
		title:   latin1(m.Title()),
		artist:  latin1(m.Artist()),
		album:   latin1(m.Album()),
		comment: latin1(m.Comment()),
		year:    year,
		track:   track,
		genre:   raw[V1Size-1],
	}, nil
}

// latin1 decodes ID3v1 text, which is Latin-1 by definition. Strings that
// already decode as UTF-8 are kept, since many writers ignore the rule.
func latin1(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	out, err := charmap.ISO8859_1.NewDecoder().String(s)
	if err != nil {
		return s
	}
	return out
}

// Empty reports whether every field is unset.
func (t *V1) Empty() bool {
	return t.title == "" && t.artist == "" && t.album == "" && t.comment == "" &&
		t.year == "" && t.track == 0 && t.genre == noGenre
}

// Encode renders the 128-byte tag.
func (t *V1) Encode() []byte {
	b := make([]byte, V1Size)
	copy(b, "TAG")
	putLatin1(b[3:33], t.title)
	putLatin1(b[33:63], t.artist)
	putLatin1(b[63:93], t.album)
	copy(b[93:97], t.year)
	if t.track > 0 {
		putLatin1(b[97:125], t.comment)
		b[126] = byte(t.track)
	} else {
		putLatin1(b[97:127], t.comment)
	}
	b[127] = t.genre
	return b
}

func putLatin1(dst []byte, s string) {
	enc, err := charmap.ISO8859_1.NewEncoder().String(s)
	if err != nil {
		enc = s
	}
	copy(dst, enc)
}

// TagType implements registry.Tag.
func (t *V1) TagType() types.TagType { return types.TagID3v1 }

// Supports implements registry.Tag.
func (t *V1) Supports(f types.Field) bool {
	switch f {
	case types.FieldTitle, types.FieldArtist, types.FieldAlbum, types.FieldYear,
		types.FieldComment, types.FieldTrackNumber, types.FieldGenre:
		return true
	}
	return false
}

func textValue(s string) types.Value {
	if s == "" {
		return types.Null()
	}
	return types.StringValue(s)
}

// ReadField implements registry.Tag.
func (t *V1) ReadField(f types.Field) types.Value {
	switch f {
	case types.FieldTitle:
		return textValue(t.title)
	case types.FieldArtist:
		return textValue(t.artist)
	case types.FieldAlbum:
		return textValue(t.album)
	case types.FieldComment:
		return textValue(t.comment)
	case types.FieldYear:
		if n, err := strconv.Atoi(t.year); err == nil {
			return types.IntValue(n)
		}
	case types.FieldTrackNumber:
		if t.track > 0 {
			return types.IntValue(t.track)
		}
	case types.FieldGenre:
		if name, ok := GenreName(int(t.genre)); ok {
			return types.StringValue(name)
		}
	}
	return types.Null()
}

// WriteField implements registry.Tag. Values that do not fit the fixed
// layout are rejected rather than truncated.
func (t *V1) WriteField(f types.Field, v types.Value) error {
	switch f {
	case types.FieldTitle:
		return setLatin1(&t.title, f, v, v1TextLen)
	case types.FieldArtist:
		return setLatin1(&t.artist, f, v, v1TextLen)
	case types.FieldAlbum:
		return setLatin1(&t.album, f, v, v1TextLen)
	case types.FieldComment:
		limit := v1TextLen
		if t.track > 0 {
			limit = v1CommentLen
		}
		return setLatin1(&t.comment, f, v, limit)
	case types.FieldYear:
		n, ok := v.Int()
		if !ok {
			t.year = ""
			return nil
		}
		t.year = fmt.Sprintf("%04d", n)
	case types.FieldTrackNumber:
		n, ok := v.Int()
		if !ok {
			t.track = 0
			return nil
		}
		if n > v1MaxTrack {
			return types.InvalidFor(f, v, "ID3v1 track must be at most 255")
		}
		if n > 0 && len(encodeLatin1(t.comment)) > v1CommentLen {
			return types.InvalidFor(f, v, "ID3v1 comment is too long to share space with a track number")
		}
		t.track = n
	case types.FieldGenre:
		s, ok := v.Str()
		if !ok {
			t.genre = noGenre
			return nil
		}
		id, ok := GenreIndex(strings.TrimSpace(s))
		if !ok {
			return types.InvalidFor(f, v, "not an ID3v1 genre")
		}
		t.genre = byte(id)
	}
	return nil
}

func encodeLatin1(s string) []byte {
	enc, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil
	}
	return enc
}

func setLatin1(dst *string, f types.Field, v types.Value, limit int) error {
	s, ok := v.Str()
	if !ok {
		*dst = ""
		return nil
	}
	enc := encodeLatin1(s)
	if enc == nil && s != "" {
		return types.InvalidFor(f, v, "not representable in Latin-1")
	}
	if len(enc) > limit {
		return types.InvalidFor(f, v, fmt.Sprintf("ID3v1 allows at most %d bytes", limit))
	}
	*dst = s
	return nil
}

// Pictures implements registry.Tag. ID3v1 has no pictures.
func (t *V1) Pictures() []types.Picture { return nil }

// SetPictures implements registry.Tag.
func (t *V1) SetPictures(pics []types.Picture) []types.Warning {
	_, warnings := registry.LimitPictures(pics, 0, types.TagID3v1)
	return warnings
}

// ReplayGain implements registry.Tag. ID3v1 has no ReplayGain.
func (t *V1) ReplayGain() types.ReplayGain { return types.ReplayGain{} }

// SetReplayGain implements registry.Tag.
func (t *V1) SetReplayGain(types.ReplayGain) error { return nil }
