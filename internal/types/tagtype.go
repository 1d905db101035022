package types

// TagType identifies the tag scheme a file's primary tag uses.
type TagType int

const (
	TagNone TagType = iota
	TagAIFF
	TagAPE
	TagID3v1
	TagID3v2
	TagILST
	TagRIFF
	TagVorbis
)

func (t TagType) String() string {
	switch t {
	case TagAIFF:
		return "AIFF"
	case TagAPE:
		return "APE"
	case TagID3v1:
		return "ID3V1"
	case TagID3v2:
		return "ID3V2"
	case TagILST:
		return "ILST"
	case TagRIFF:
		return "RIFF"
	case TagVorbis:
		return "VORBIS"
	default:
		return ""
	}
}
