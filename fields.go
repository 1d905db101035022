package audiotag

import (
	"go.uber.org/zap"

	"github.com/simonhull/audiotag/internal/types"
)

// Get returns the value of f, or a null Value when the file has no entry
// for it or its tag scheme cannot store it.
//
// Text fields yield String values and numeric fields yield Int values.
func (t *Tagger) Get(f Field) (Value, error) {
	if err := t.loaded("get " + f.String()); err != nil {
		return Null(), err
	}
	if !f.Valid() {
		return Null(), &InvalidValueError{Field: f.String(), Reason: "unknown field"}
	}
	if !t.adapter.Supports(f) {
		return Null(), nil
	}
	return t.adapter.ReadField(f), nil
}

// Set validates v for f and stores it. A null Value removes the entry.
//
// Numeric fields accept Int values, integral Float values and decimal
// strings. Fields the tag scheme cannot store are silently ignored.
func (t *Tagger) Set(f Field, v Value) error {
	if err := t.loaded("set " + f.String()); err != nil {
		return err
	}
	norm, err := types.Normalize(f, v)
	if err != nil {
		return err
	}
	if !t.adapter.Supports(f) {
		t.opts.logger.Debug("field not supported", zap.Stringer("field", f), zap.Stringer("tag", t.adapter.TagType()))
		return nil
	}
	if err := t.adapter.WriteField(f, norm); err != nil {
		return err
	}
	t.dirty = true
	return nil
}

func (t *Tagger) text(f Field) (*string, error) {
	v, err := t.Get(f)
	if err != nil {
		return nil, err
	}
	if s, ok := v.Str(); ok {
		return &s, nil
	}
	return nil, nil
}

func (t *Tagger) setText(f Field, s *string) error {
	if s == nil {
		return t.Set(f, Null())
	}
	return t.Set(f, StringValue(*s))
}

func (t *Tagger) number(f Field) (*int, error) {
	v, err := t.Get(f)
	if err != nil {
		return nil, err
	}
	if n, ok := v.Int(); ok {
		return &n, nil
	}
	return nil, nil
}

func (t *Tagger) setNumber(f Field, n *int) error {
	if n == nil {
		return t.Set(f, Null())
	}
	return t.Set(f, IntValue(*n))
}

// Title returns the track title, or nil if absent.
func (t *Tagger) Title() (*string, error) { return t.text(FieldTitle) }

// SetTitle sets the track title. Nil removes it.
func (t *Tagger) SetTitle(s *string) error { return t.setText(FieldTitle, s) }

// Artist returns the track artist, or nil if absent.
func (t *Tagger) Artist() (*string, error) { return t.text(FieldArtist) }

// SetArtist sets the track artist. Nil removes it.
func (t *Tagger) SetArtist(s *string) error { return t.setText(FieldArtist, s) }

// Album returns the album title, or nil if absent.
func (t *Tagger) Album() (*string, error) { return t.text(FieldAlbum) }

// SetAlbum sets the album title. Nil removes it.
func (t *Tagger) SetAlbum(s *string) error { return t.setText(FieldAlbum, s) }

// AlbumArtist returns the album artist, or nil if absent.
func (t *Tagger) AlbumArtist() (*string, error) { return t.text(FieldAlbumArtist) }

// SetAlbumArtist sets the album artist. Nil removes it.
func (t *Tagger) SetAlbumArtist(s *string) error { return t.setText(FieldAlbumArtist, s) }

// Genre returns the genre, or nil if absent.
func (t *Tagger) Genre() (*string, error) { return t.text(FieldGenre) }

// SetGenre sets the genre. ID3v1 only accepts names from its genre list.
func (t *Tagger) SetGenre(s *string) error { return t.setText(FieldGenre, s) }

// Year returns the release year, or nil if absent.
func (t *Tagger) Year() (*int, error) { return t.number(FieldYear) }

// SetYear sets the release year (0 to 9999). Nil removes it.
func (t *Tagger) SetYear(n *int) error { return t.setNumber(FieldYear, n) }

// TrackNumber returns the track number, or nil if absent.
func (t *Tagger) TrackNumber() (*int, error) { return t.number(FieldTrackNumber) }

// SetTrackNumber sets the track number. Nil removes it.
func (t *Tagger) SetTrackNumber(n *int) error { return t.setNumber(FieldTrackNumber, n) }

// TrackTotal returns the number of tracks, or nil if absent.
func (t *Tagger) TrackTotal() (*int, error) { return t.number(FieldTrackTotal) }

// SetTrackTotal sets the number of tracks. Nil removes it.
func (t *Tagger) SetTrackTotal(n *int) error { return t.setNumber(FieldTrackTotal, n) }

// DiscNumber returns the disc number, or nil if absent.
func (t *Tagger) DiscNumber() (*int, error) { return t.number(FieldDiscNumber) }

// SetDiscNumber sets the disc number. Nil removes it.
func (t *Tagger) SetDiscNumber(n *int) error { return t.setNumber(FieldDiscNumber, n) }

// DiscsTotal returns the number of discs, or nil if absent.
func (t *Tagger) DiscsTotal() (*int, error) { return t.number(FieldDiscsTotal) }

// SetDiscsTotal sets the number of discs. Nil removes it.
func (t *Tagger) SetDiscsTotal(n *int) error { return t.setNumber(FieldDiscsTotal, n) }

// Composer returns the composer, or nil if absent.
func (t *Tagger) Composer() (*string, error) { return t.text(FieldComposer) }

// SetComposer sets the composer. Nil removes it.
func (t *Tagger) SetComposer(s *string) error { return t.setText(FieldComposer, s) }

// Conductor returns the conductor, or nil if absent.
func (t *Tagger) Conductor() (*string, error) { return t.text(FieldConductor) }

// SetConductor sets the conductor. Nil removes it.
func (t *Tagger) SetConductor(s *string) error { return t.setText(FieldConductor, s) }

// Lyricist returns the lyricist, or nil if absent.
func (t *Tagger) Lyricist() (*string, error) { return t.text(FieldLyricist) }

// SetLyricist sets the lyricist. Nil removes it.
func (t *Tagger) SetLyricist(s *string) error { return t.setText(FieldLyricist, s) }

// Publisher returns the publisher or label, or nil if absent.
func (t *Tagger) Publisher() (*string, error) { return t.text(FieldPublisher) }

// SetPublisher sets the publisher. Nil removes it.
func (t *Tagger) SetPublisher(s *string) error { return t.setText(FieldPublisher, s) }

// Comment returns the comment, or nil if absent.
func (t *Tagger) Comment() (*string, error) { return t.text(FieldComment) }

// SetComment sets the comment. Nil removes it.
func (t *Tagger) SetComment(s *string) error { return t.setText(FieldComment, s) }

// Lyrics returns the unsynchronised lyrics, or nil if absent.
func (t *Tagger) Lyrics() (*string, error) { return t.text(FieldLyrics) }

// SetLyrics sets the unsynchronised lyrics. Nil removes them.
func (t *Tagger) SetLyrics(s *string) error { return t.setText(FieldLyrics, s) }

// Copyright returns the copyright notice, or nil if absent.
func (t *Tagger) Copyright() (*string, error) { return t.text(FieldCopyright) }

// SetCopyright sets the copyright notice. Nil removes it.
func (t *Tagger) SetCopyright(s *string) error { return t.setText(FieldCopyright, s) }

// Rating returns the star rating from 1 to 5, or nil if absent.
func (t *Tagger) Rating() (*int, error) { return t.number(FieldRating) }

// SetRating sets the star rating (1 to 5). Nil removes it.
func (t *Tagger) SetRating(n *int) error { return t.setNumber(FieldRating, n) }
