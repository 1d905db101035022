package vorbis

import (
	"encoding/base64"
	"fmt"

	"github.com/go-flac/flacpicture"
	flac "github.com/go-flac/go-flac"

	"github.com/simonhull/audiotag/internal/types"
)

// PictureKey is the comment that carries a base64 FLAC picture block in
// Ogg streams.
const PictureKey = "METADATA_BLOCK_PICTURE"

// EncodePicture renders a picture as a FLAC PICTURE block body. Width,
// height, and color depth are filled in when the image decodes as JPEG or
// PNG and left zero otherwise.
func EncodePicture(p types.Picture) []byte {
	block := &flacpicture.MetadataBlockPicture{
		PictureType: flacpicture.PictureType(p.Type),
		MIME:        p.MIMEType,
		Description: p.DescriptionOrEmpty(),
		ImageData:   p.Data(),
	}
	_ = block.ParsePicture()
	return block.Marshal().Data
}

// DecodePicture parses a FLAC PICTURE block body.
func DecodePicture(body []byte) (types.Picture, error) {
	block, err := flacpicture.ParseFromMetaDataBlock(flac.MetaDataBlock{Type: flac.Picture, Data: body})
	if err != nil {
		return types.Picture{}, fmt.Errorf("parse picture block: %w", err)
	}
	var desc *string
	if block.Description != "" {
		desc = &block.Description
	}
	mime := block.MIME
	if mime == "" {
		mime = types.DetectMIME(block.ImageData)
	}
	return types.NewPictureOfType(types.PictureTypeOf(int(block.PictureType)), mime, block.ImageData, desc), nil
}

// TakeInlinePictures moves METADATA_BLOCK_PICTURE comments out of the
// store and into the picture list. Undecodable entries are dropped with a
// warning.
func (c *Comments) TakeInlinePictures() []types.Warning {
	var warnings []types.Warning
	for _, raw := range c.store.Get(PictureKey) {
		body, err := base64.StdEncoding.DecodeString(raw)
		if err == nil {
			var p types.Picture
			if p, err = DecodePicture(body); err == nil {
				c.pictures = append(c.pictures, p)
				continue
			}
		}
		warnings = append(warnings, types.Warning{
			Stage:   "pictures",
			Message: fmt.Sprintf("invalid %s comment: %v", PictureKey, err),
		})
	}
	c.store.Delete(PictureKey)
	return warnings
}

// EncodeInline renders the comment block with pictures appended as
// METADATA_BLOCK_PICTURE comments.
func (c *Comments) EncodeInline() []byte {
	inline := &Comments{Vendor: c.Vendor, store: c.store.Clone()}
	for _, p := range c.pictures {
		inline.store.Add(PictureKey, base64.StdEncoding.EncodeToString(EncodePicture(p)))
	}
	return inline.Encode()
}
