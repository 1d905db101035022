// Package vorbis provides the Vorbis comment tag shared by FLAC, Ogg
// Vorbis, and Opus.
//
// The comment block layout is identical in every container: a vendor
// string followed by UTF-8 "KEY=VALUE" strings. Field names are
// case-insensitive but typically uppercase. Blocks are parsed and
// rendered with github.com/go-flac/flacvorbis; pictures use the FLAC
// PICTURE layout from github.com/go-flac/flacpicture.
package vorbis

import (
	"fmt"
	"strings"

	"github.com/go-flac/flacvorbis"
	flac "github.com/go-flac/go-flac"

	"github.com/simonhull/audiotag/internal/keyed"
	"github.com/simonhull/audiotag/internal/types"
)

// DefaultVendor is written when a block is created from scratch.
const DefaultVendor = "audiotag"

var schema = &keyed.Schema{
	Scheme: types.TagVorbis,
	Keys: map[types.Field][]string{
		types.FieldTitle:       {"TITLE"},
		types.FieldArtist:      {"ARTIST"},
		types.FieldAlbum:       {"ALBUM"},
		types.FieldAlbumArtist: {"ALBUMARTIST", "ALBUM ARTIST"},
		types.FieldGenre:       {"GENRE"},
		types.FieldYear:        {"DATE", "YEAR"},
		types.FieldTrackNumber: {"TRACKNUMBER"},
		types.FieldTrackTotal:  {"TRACKTOTAL", "TOTALTRACKS"},
		types.FieldDiscNumber:  {"DISCNUMBER"},
		types.FieldDiscsTotal:  {"DISCTOTAL", "TOTALDISCS"},
		types.FieldComposer:    {"COMPOSER"},
		types.FieldConductor:   {"CONDUCTOR"},
		types.FieldLyricist:    {"LYRICIST"},
		types.FieldPublisher:   {"PUBLISHER", "ORGANIZATION", "LABEL"},
		types.FieldComment:     {"COMMENT", "DESCRIPTION"},
		types.FieldLyrics:      {"LYRICS", "UNSYNCEDLYRICS"},
		types.FieldCopyright:   {"COPYRIGHT"},
		types.FieldRating:      {"RATING"},
	},
}

// Comments is a Vorbis comment block plus the pictures that travel with
// it. Where the pictures are stored is up to the container.
type Comments struct {
	Vendor   string
	store    *keyed.Store
	pictures []types.Picture
}

// New creates an empty comment block.
func New() *Comments {
	return &Comments{Vendor: DefaultVendor, store: keyed.NewStore()}
}

// Parse decodes a comment block body. Comments without '=' are dropped
// and reported as warnings.
func Parse(body []byte) (*Comments, []types.Warning, error) {
	block, err := flacvorbis.ParseFromMetaDataBlock(flac.MetaDataBlock{Type: flac.VorbisComment, Data: body})
	if err != nil {
		return nil, nil, fmt.Errorf("parse Vorbis comments: %w", err)
	}

	c := &Comments{Vendor: block.Vendor, store: keyed.NewStore()}
	var warnings []types.Warning
	for _, comment := range block.Comments {
		key, value, ok := strings.Cut(comment, "=")
		if !ok || key == "" {
			warnings = append(warnings, types.Warning{
				Stage:   "metadata",
				Message: fmt.Sprintf("invalid Vorbis comment: missing '=' in %q", comment),
			})
			continue
		}
		c.store.Add(key, value)
	}
	return c, warnings, nil
}

// Encode renders the comment block body. Pictures are not included.
func (c *Comments) Encode() []byte {
	block := flacvorbis.MetaDataBlockVorbisComment{Vendor: c.Vendor}
	for key, value := range c.store.All() {
		block.Comments = append(block.Comments, key+"="+value)
	}
	return block.Marshal().Data
}

// Store exposes the raw comments.
func (c *Comments) Store() *keyed.Store { return c.store }

// TagType implements registry.Tag.
func (c *Comments) TagType() types.TagType { return types.TagVorbis }

// Supports implements registry.Tag.
func (c *Comments) Supports(f types.Field) bool { return schema.Supports(f) }

// ReadField implements registry.Tag.
func (c *Comments) ReadField(f types.Field) types.Value { return schema.Read(c.store, f) }

// WriteField implements registry.Tag.
func (c *Comments) WriteField(f types.Field, v types.Value) error {
	return schema.Write(c.store, f, v)
}

// Pictures implements registry.Tag.
func (c *Comments) Pictures() []types.Picture { return types.ClonePictures(c.pictures) }

// SetPictures implements registry.Tag. Vorbis comments hold any number of
// pictures.
func (c *Comments) SetPictures(pics []types.Picture) []types.Warning {
	c.pictures = types.ClonePictures(pics)
	return nil
}

// ReplayGain implements registry.Tag.
func (c *Comments) ReplayGain() types.ReplayGain { return keyed.ReadReplayGain(c.store, strings.ToUpper) }

// SetReplayGain implements registry.Tag.
func (c *Comments) SetReplayGain(rg types.ReplayGain) error {
	keyed.WriteReplayGain(c.store, rg, strings.ToUpper)
	return nil
}
