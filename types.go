package audiotag

import (
	"io"

	"github.com/simonhull/audiotag/internal/types"

	// Register every container codec.
	_ "github.com/simonhull/audiotag/internal/aiff"
	_ "github.com/simonhull/audiotag/internal/ape"
	_ "github.com/simonhull/audiotag/internal/flac"
	_ "github.com/simonhull/audiotag/internal/m4a"
	_ "github.com/simonhull/audiotag/internal/mp3"
	_ "github.com/simonhull/audiotag/internal/ogg"
	_ "github.com/simonhull/audiotag/internal/riff"
)

// Field is an alias to types.Field.
type Field = types.Field

// Canonical fields in presentation order.
const (
	FieldTitle       = types.FieldTitle
	FieldArtist      = types.FieldArtist
	FieldAlbum       = types.FieldAlbum
	FieldAlbumArtist = types.FieldAlbumArtist
	FieldGenre       = types.FieldGenre
	FieldYear        = types.FieldYear
	FieldTrackNumber = types.FieldTrackNumber
	FieldTrackTotal  = types.FieldTrackTotal
	FieldDiscNumber  = types.FieldDiscNumber
	FieldDiscsTotal  = types.FieldDiscsTotal
	FieldComposer    = types.FieldComposer
	FieldConductor   = types.FieldConductor
	FieldLyricist    = types.FieldLyricist
	FieldPublisher   = types.FieldPublisher
	FieldComment     = types.FieldComment
	FieldLyrics      = types.FieldLyrics
	FieldCopyright   = types.FieldCopyright
	FieldRating      = types.FieldRating
)

// Fields returns every canonical field in order.
func Fields() []Field { return types.Fields() }

// ParseField maps a camelCase name such as "albumArtist" to its field.
// Matching ignores case.
func ParseField(name string) (Field, bool) { return types.ParseField(name) }

// Value is an alias to types.Value.
type Value = types.Value

// Null returns the null value, which removes a field when set.
func Null() Value { return types.Null() }

// StringValue wraps s.
func StringValue(s string) Value { return types.StringValue(s) }

// IntValue wraps n.
func IntValue(n int) Value { return types.IntValue(n) }

// FloatValue wraps f.
func FloatValue(f float64) Value { return types.FloatValue(f) }

// Picture is an alias to types.Picture.
type Picture = types.Picture

// PictureType is an alias to types.PictureType.
type PictureType = types.PictureType

// Picture roles, numbered as in ID3v2 APIC frames.
const (
	PictureOther             = types.PictureOther
	PictureIcon              = types.PictureIcon
	PictureOtherIcon         = types.PictureOtherIcon
	PictureFrontCover        = types.PictureFrontCover
	PictureBackCover         = types.PictureBackCover
	PictureLeaflet           = types.PictureLeaflet
	PictureMedia             = types.PictureMedia
	PictureLeadArtist        = types.PictureLeadArtist
	PictureArtist            = types.PictureArtist
	PictureConductor         = types.PictureConductor
	PictureBand              = types.PictureBand
	PictureComposer          = types.PictureComposer
	PictureLyricist          = types.PictureLyricist
	PictureRecordingLocation = types.PictureRecordingLocation
	PictureDuringRecording   = types.PictureDuringRecording
	PictureDuringPerformance = types.PictureDuringPerformance
	PictureVideoCapture      = types.PictureVideoCapture
	PictureBrightFish        = types.PictureBrightFish
	PictureIllustration      = types.PictureIllustration
	PictureBandLogotype      = types.PictureBandLogotype
	PicturePublisherLogotype = types.PicturePublisherLogotype
)

// NewPicture builds a front-cover picture. data and description are
// copied.
func NewPicture(mimeType string, data []byte, description *string) Picture {
	return types.NewPicture(mimeType, data, description)
}

// NewPictureOfType builds a picture with an explicit role.
func NewPictureOfType(t PictureType, mimeType string, data []byte, description *string) Picture {
	return types.NewPictureOfType(t, mimeType, data, description)
}

// ParsePictureType maps an APE cover key such as "Cover Art (Back)" to
// its role.
func ParsePictureType(key string) (PictureType, bool) { return types.ParsePictureType(key) }

// DetectMIME sniffs an image MIME type from magic bytes, or returns "".
func DetectMIME(data []byte) string { return types.DetectMIME(data) }

// ReplayGain is an alias to types.ReplayGain.
type ReplayGain = types.ReplayGain

// Properties is an alias to types.Properties.
type Properties = types.Properties

// Quality is an alias to types.Quality.
type Quality = types.Quality

// Quality tiers.
const (
	QualityHQ    = types.QualityHQ
	QualitySQ    = types.QualitySQ
	QualityHiRes = types.QualityHiRes
)

// Classify maps technical properties to a quality tier. Lossless audio
// above 48 kHz or 16 bits is HiRes, other lossless audio with known
// properties is SQ, and everything else is HQ.
func Classify(sampleRate, bitDepth, bitRate int, lossless bool) Quality {
	return types.Classify(sampleRate, bitDepth, bitRate, lossless)
}

// TagType is an alias to types.TagType.
type TagType = types.TagType

// Tag schemes.
const (
	TagNone   = types.TagNone
	TagAIFF   = types.TagAIFF
	TagAPE    = types.TagAPE
	TagID3v1  = types.TagID3v1
	TagID3v2  = types.TagID3v2
	TagILST   = types.TagILST
	TagRIFF   = types.TagRIFF
	TagVorbis = types.TagVorbis
)

// Format is an alias to types.Format.
type Format = types.Format

// Detected containers.
const (
	FormatUnknown = types.FormatUnknown
	FormatFLAC    = types.FormatFLAC
	FormatMP3     = types.FormatMP3
	FormatM4A     = types.FormatM4A
	FormatM4B     = types.FormatM4B
	FormatOgg     = types.FormatOgg
	FormatOpus    = types.FormatOpus
	FormatWAV     = types.FormatWAV
	FormatAIFF    = types.FormatAIFF
	FormatAPE     = types.FormatAPE
)

// DetectFormat identifies the container from magic bytes, falling back to
// the path's extension.
func DetectFormat(r io.ReaderAt, size int64, path string) (Format, error) {
	return types.DetectFormat(r, size, path)
}
