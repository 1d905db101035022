package types

import "strings"

// Field identifies one canonical metadata property.
type Field int

// Canonical fields in presentation order.
const (
	FieldTitle Field = iota
	FieldArtist
	FieldAlbum
	FieldAlbumArtist
	FieldGenre
	FieldYear
	FieldTrackNumber
	FieldTrackTotal
	FieldDiscNumber
	FieldDiscsTotal
	FieldComposer
	FieldConductor
	FieldLyricist
	FieldPublisher
	FieldComment
	FieldLyrics
	FieldCopyright
	FieldRating

	fieldCount
)

var fieldNames = [fieldCount]string{
	FieldTitle:       "title",
	FieldArtist:      "artist",
	FieldAlbum:       "album",
	FieldAlbumArtist: "albumArtist",
	FieldGenre:       "genre",
	FieldYear:        "year",
	FieldTrackNumber: "trackNumber",
	FieldTrackTotal:  "trackTotal",
	FieldDiscNumber:  "discNumber",
	FieldDiscsTotal:  "discsTotal",
	FieldComposer:    "composer",
	FieldConductor:   "conductor",
	FieldLyricist:    "lyricist",
	FieldPublisher:   "publisher",
	FieldComment:     "comment",
	FieldLyrics:      "lyrics",
	FieldCopyright:   "copyright",
	FieldRating:      "rating",
}

// Fields returns every canonical field in order.
func Fields() []Field {
	out := make([]Field, fieldCount)
	for i := range out {
		out[i] = Field(i)
	}
	return out
}

// String returns the camelCase field name.
func (f Field) String() string {
	if f < 0 || f >= fieldCount {
		return "unknown"
	}
	return fieldNames[f]
}

// Valid reports whether f is a canonical field.
func (f Field) Valid() bool {
	return f >= 0 && f < fieldCount
}

// Numeric reports whether the field holds an integer.
func (f Field) Numeric() bool {
	switch f {
	case FieldYear, FieldTrackNumber, FieldTrackTotal, FieldDiscNumber, FieldDiscsTotal, FieldRating:
		return true
	default:
		return false
	}
}

// ParseField looks a field up by name, ignoring case, dashes, and underscores.
func ParseField(name string) (Field, bool) {
	norm := strings.NewReplacer("_", "", "-", "").Replace(strings.ToLower(name))
	for i, n := range fieldNames {
		if strings.ToLower(n) == norm {
			return Field(i), true
		}
	}
	return 0, false
}
