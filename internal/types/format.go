package types

import (
	"io"

	"github.com/simonhull/audiotag/internal/binary"
)

// Format represents the detected audio container.
type Format int

const (
	// FormatUnknown represents an unknown or unsupported format.
	FormatUnknown Format = iota // Unknown
	// FormatFLAC represents FLAC audio files.
	FormatFLAC // FLAC
	// FormatMP3 represents MP3 audio files.
	FormatMP3 // MP3
	// FormatM4A represents M4A audio files.
	FormatM4A // M4A
	// FormatM4B represents M4B audiobook files.
	FormatM4B // M4B
	// FormatOgg represents Ogg Vorbis audio files.
	FormatOgg // Ogg Vorbis
	// FormatOpus represents Opus audio files.
	FormatOpus // Opus
	// FormatWAV represents WAV audio files.
	FormatWAV // WAV
	// FormatAIFF represents AIFF audio files.
	FormatAIFF // AIFF
	// FormatAPE represents Monkey's Audio files.
	FormatAPE // APE
)

var formatNames = [...]string{
	FormatUnknown: "Unknown",
	FormatFLAC:    "FLAC",
	FormatMP3:     "MP3",
	FormatM4A:     "M4A",
	FormatM4B:     "M4B",
	FormatOgg:     "Ogg Vorbis",
	FormatOpus:    "Opus",
	FormatWAV:     "WAV",
	FormatAIFF:    "AIFF",
	FormatAPE:     "APE",
}

func (f Format) String() string {
	if f < 0 || int(f) >= len(formatNames) {
		return formatNames[FormatUnknown]
	}
	return formatNames[f]
}

// Extensions returns common file extensions for this format.
func (f Format) Extensions() []string {
	switch f {
	case FormatFLAC:
		return []string{".flac"}
	case FormatMP3:
		return []string{".mp3"}
	case FormatM4A:
		return []string{".m4a", ".mp4", ".m4p"}
	case FormatM4B:
		return []string{".m4b"}
	case FormatOgg:
		return []string{".ogg", ".oga"}
	case FormatOpus:
		return []string{".opus"}
	case FormatWAV:
		return []string{".wav"}
	case FormatAIFF:
		return []string{".aiff", ".aif", ".aifc"}
	case FormatAPE:
		return []string{".ape"}
	case FormatUnknown:
		return nil
	default:
		return nil
	}
}

// DetectFormat identifies the container from its leading magic bytes.
// It does not validate the rest of the file.
func DetectFormat(r io.ReaderAt, size int64, path string) (Format, error) {
	if size < 4 {
		return FormatUnknown, &UnsupportedFormatError{Path: path, Reason: "file too small"}
	}

	sr := binary.NewSafeReader(r, size, path)
	head := make([]byte, min(size, sniffLen))
	if err := sr.ReadAt(head, 0, "file header"); err != nil {
		return FormatUnknown, &UnsupportedFormatError{Path: path, Reason: "failed to read file header"}
	}

	switch magic := string(head[:4]); {
	case magic == "fLaC":
		return FormatFLAC, nil
	case magic == "MAC ":
		return FormatAPE, nil
	case magic[:3] == "ID3":
		return behindID3v2(sr), nil
	case head[0] == 0xFF && head[1]&0xE0 == 0xE0:
		return FormatMP3, nil
	case magic == "OggS":
		return oggCodec(head), nil
	case magic == "RIFF" && formType(head) == "WAVE":
		return FormatWAV, nil
	case magic == "FORM" && (formType(head) == "AIFF" || formType(head) == "AIFC"):
		return FormatAIFF, nil
	case len(head) >= 12 && string(head[4:8]) == "ftyp":
		return ftypBrand(head, path)
	}
	return FormatUnknown, &UnsupportedFormatError{Path: path, Reason: "unsupported file format"}
}

// sniffLen covers an Ogg page header with a full segment table plus the
// codec magic of the first packet.
const sniffLen = 27 + 255 + 8

func formType(head []byte) string {
	if len(head) < 12 {
		return ""
	}
	return string(head[8:12])
}

// behindID3v2 looks past a leading ID3v2 tag. FLAC and Monkey's Audio
// files are occasionally prefixed with one; anything else is MP3.
func behindID3v2(sr *binary.SafeReader) Format {
	end, ok := ID3v2End(sr)
	if !ok {
		return FormatMP3
	}
	inner := make([]byte, 4)
	if err := sr.ReadAt(inner, end, "post-ID3 magic"); err != nil {
		return FormatMP3
	}
	switch string(inner) {
	case "MAC ":
		return FormatAPE
	case "fLaC":
		return FormatFLAC
	}
	return FormatMP3
}

// oggCodec tells Opus from Vorbis by the first packet of the first page.
func oggCodec(head []byte) Format {
	if len(head) < 27 {
		return FormatOgg
	}
	packet := 27 + int(head[26])
	if packet+8 <= len(head) && string(head[packet:packet+8]) == "OpusHead" {
		return FormatOpus
	}
	return FormatOgg
}

func ftypBrand(head []byte, path string) (Format, error) {
	if binary.Decode[uint32](head[:4], binary.BigEndian) < 16 || len(head) < 12 {
		return FormatUnknown, &UnsupportedFormatError{Path: path, Reason: "ftyp atom too small"}
	}
	switch string(head[8:12]) {
	case "M4B ":
		return FormatM4B, nil
	case "M4A ", "mp42", "mp41", "isom":
		return FormatM4A, nil
	}
	return FormatUnknown, &UnsupportedFormatError{Path: path, Reason: "unsupported file brand"}
}

// ID3v2End returns the offset just past a leading ID3v2 tag. It reports
// false when the file does not start with one.
func ID3v2End(sr *binary.SafeReader) (int64, bool) {
	header := make([]byte, 10)
	if err := sr.ReadAt(header, 0, "ID3v2 header"); err != nil || string(header[:3]) != "ID3" {
		return 0, false
	}
	end := 10 + int64(binary.Synchsafe(header[6:10]))
	if header[5]&0x10 != 0 {
		end += 10 // footer
	}
	return end, true
}
