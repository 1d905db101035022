package types

import (
	"bytes"
	"fmt"
	"slices"
)

// PictureType is the role of an embedded picture.
//
// Values follow the ID3v2 APIC picture type numbering, which FLAC and
// Vorbis METADATA_BLOCK_PICTURE share.
type PictureType int

const (
	PictureOther PictureType = iota
	PictureIcon
	PictureOtherIcon
	PictureFrontCover
	PictureBackCover
	PictureLeaflet
	PictureMedia
	PictureLeadArtist
	PictureArtist
	PictureConductor
	PictureBand
	PictureComposer
	PictureLyricist
	PictureRecordingLocation
	PictureDuringRecording
	PictureDuringPerformance
	PictureVideoCapture
	PictureBrightFish
	PictureIllustration
	PictureBandLogotype
	PicturePublisherLogotype
)

// APE item keys, one per picture type.
var pictureKeys = [...]string{
	PictureOther:             "Cover Art (Other)",
	PictureIcon:              "Cover Art (Png Icon)",
	PictureOtherIcon:         "Cover Art (Icon)",
	PictureFrontCover:        "Cover Art (Front)",
	PictureBackCover:         "Cover Art (Back)",
	PictureLeaflet:           "Cover Art (Leaflet)",
	PictureMedia:             "Cover Art (Media)",
	PictureLeadArtist:        "Cover Art (Lead Artist)",
	PictureArtist:            "Cover Art (Artist)",
	PictureConductor:         "Cover Art (Conductor)",
	PictureBand:              "Cover Art (Band)",
	PictureComposer:          "Cover Art (Composer)",
	PictureLyricist:          "Cover Art (Lyricist)",
	PictureRecordingLocation: "Cover Art (Recording Location)",
	PictureDuringRecording:   "Cover Art (During Recording)",
	PictureDuringPerformance: "Cover Art (During Performance)",
	PictureVideoCapture:      "Cover Art (Video Capture)",
	PictureBrightFish:        "Cover Art (Fish)",
	PictureIllustration:      "Cover Art (Illustration)",
	PictureBandLogotype:      "Cover Art (Band Logotype)",
	PicturePublisherLogotype: "Cover Art (Publisher Logotype)",
}

// String returns the APE item key for the picture type, for example
// "Cover Art (Front)". Values outside the known range fall back to
// "Cover Art (Other)".
func (p PictureType) String() string {
	if p < 0 || int(p) >= len(pictureKeys) {
		return pictureKeys[PictureOther]
	}
	return pictureKeys[p]
}

// ParsePictureType maps an APE item key back to its picture type.
func ParsePictureType(key string) (PictureType, bool) {
	for i, k := range pictureKeys {
		if k == key {
			return PictureType(i), true
		}
	}
	return PictureOther, false
}

// PictureTypeOf clamps a numeric picture type read from a file into the
// known range.
func PictureTypeOf(n int) PictureType {
	if n < 0 || n >= len(pictureKeys) {
		return PictureOther
	}
	return PictureType(n)
}

// Picture is an embedded image.
//
// The image bytes are copied on construction and on every read, so a
// Picture never aliases caller or handle memory.
type Picture struct {
	// MIMEType such as "image/jpeg".
	MIMEType string

	// Description is optional.
	Description *string

	data []byte

	// Type is the picture's role.
	Type PictureType
}

// NewPicture builds a front-cover picture.
func NewPicture(mimeType string, data []byte, description *string) Picture {
	return NewPictureOfType(PictureFrontCover, mimeType, data, description)
}

// NewPictureOfType builds a picture with an explicit role.
func NewPictureOfType(t PictureType, mimeType string, data []byte, description *string) Picture {
	p := Picture{
		Type:     t,
		MIMEType: mimeType,
		data:     slices.Clone(data),
	}
	if description != nil {
		d := *description
		p.Description = &d
	}
	return p
}

// Data returns a copy of the image bytes.
func (p Picture) Data() []byte {
	return slices.Clone(p.data)
}

// Size returns the image size in bytes.
func (p Picture) Size() int {
	return len(p.data)
}

// DescriptionOrEmpty returns the description, or "" when absent.
func (p Picture) DescriptionOrEmpty() string {
	if p.Description == nil {
		return ""
	}
	return *p.Description
}

// Equal reports whether two pictures hold the same role, MIME type,
// description, and bytes.
func (p Picture) Equal(o Picture) bool {
	return p.Type == o.Type &&
		p.MIMEType == o.MIMEType &&
		p.DescriptionOrEmpty() == o.DescriptionOrEmpty() &&
		(p.Description == nil) == (o.Description == nil) &&
		bytes.Equal(p.data, o.data)
}

// String returns a short summary.
func (p Picture) String() string {
	return fmt.Sprintf("%s (%s, %d bytes)", p.Type, p.MIMEType, len(p.data))
}

// DetectMIME sniffs the image type from magic bytes.
// Returns "" when the format is not recognised.
func DetectMIME(data []byte) string {
	switch {
	case len(data) >= 3 && data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF:
		return "image/jpeg"
	case len(data) >= 8 && string(data[:8]) == "\x89PNG\r\n\x1a\n":
		return "image/png"
	case len(data) >= 6 && (string(data[:6]) == "GIF87a" || string(data[:6]) == "GIF89a"):
		return "image/gif"
	case len(data) >= 2 && string(data[:2]) == "BM":
		return "image/bmp"
	case len(data) >= 12 && string(data[:4]) == "RIFF" && string(data[8:12]) == "WEBP":
		return "image/webp"
	default:
		return ""
	}
}

// ClonePictures deep-copies a picture slice.
func ClonePictures(in []Picture) []Picture {
	if in == nil {
		return nil
	}
	out := make([]Picture, len(in))
	for i, p := range in {
		out[i] = NewPictureOfType(p.Type, p.MIMEType, p.data, p.Description)
	}
	return out
}
