package m4a

import (
	"github.com/simonhull/audiotag/internal/binary"
)

// codecNames maps MP4 codec FourCC codes to human-readable names.
var codecNames = map[string]string{
	// AAC Family
	"mp4a": "AAC",
	"mhm1": "xHE-AAC",
	"mhm2": "xHE-AAC v2",

	// Dolby Family
	"ac-3": "AC-3",
	"ec-3": "E-AC-3",
	"ac-4": "AC-4",

	// Lossless
	"alac": "ALAC",
	"fLaC": "FLAC",

	// Other
	"Opus": "Opus",
	"mp3 ": "MP3",
	".mp3": "MP3",
}

// losslessCodecs lists the sample entry types that carry lossless audio.
var losslessCodecs = map[string]bool{
	"alac": true,
	"fLaC": true,
}

// aacProfiles maps AAC Audio Object Types to profile names.
var aacProfiles = map[uint8]string{
	1:  "AAC Main",
	2:  "AAC-LC",
	3:  "AAC-SSR",
	4:  "AAC-LTP",
	5:  "HE-AAC",
	6:  "AAC Scalable",
	29: "HE-AAC v2",
	42: "xHE-AAC",
}

// mapCodecName converts a FourCC codec identifier to a human-readable name.
func mapCodecName(fourCC string) string {
	if name, ok := codecNames[fourCC]; ok {
		return name
	}
	return fourCC
}

// esDescriptor holds the fields of an esds atom the properties need.
type esDescriptor struct {
	audioObjectType uint8
	avgBitrate      uint32 // bits per second, 0 when unknown
}

// Descriptor tags.
const (
	tagESDescriptor     = 0x03
	tagDecoderConfig    = 0x04
	tagDecoderSpecInfo  = 0x05
	decoderConfigLength = 13
)

// parseESDescriptors navigates the ESDS descriptor hierarchy (after the
// full-box version and flags) down to the AudioSpecificConfig.
func parseESDescriptors(data []byte) esDescriptor {
	var es esDescriptor
	pos := 0

	readSize := func() int {
		size := 0
		for range 4 {
			if pos >= len(data) {
				return -1
			}
			b := data[pos]
			pos++
			size = (size << 7) | int(b&0x7F)
			if (b & 0x80) == 0 {
				break
			}
		}
		return size
	}

	if pos >= len(data) || data[pos] != tagESDescriptor {
		return es
	}
	pos++
	if readSize() < 0 || pos+3 > len(data) {
		return es
	}
	flags := data[pos+2]
	pos += 3 // ES_ID and flags
	if flags&0x80 != 0 {
		pos += 2 // dependsOn_ES_ID
	}
	if flags&0x40 != 0 && pos < len(data) {
		pos += 1 + int(data[pos]) // URL
	}
	if flags&0x20 != 0 {
		pos += 2 // OCR_ES_Id
	}

	if pos >= len(data) || data[pos] != tagDecoderConfig {
		return es
	}
	pos++
	if size := readSize(); size < decoderConfigLength || pos+decoderConfigLength > len(data) {
		return es
	}
	es.avgBitrate = binary.Decode[uint32](data[pos+9:], binary.BigEndian)
	pos += decoderConfigLength

	if pos >= len(data) || data[pos] != tagDecoderSpecInfo {
		return es
	}
	pos++
	if size := readSize(); size < 1 || pos >= len(data) {
		return es
	}
	es.audioObjectType = data[pos] >> 3
	if es.audioObjectType == 31 && pos+1 < len(data) {
		// Escape value: the real type follows in six bits.
		es.audioObjectType = 32 + ((data[pos]&0x07)<<3 | data[pos+1]>>5)
	}
	return es
}

// alacConfig is the ALACSpecificConfig stored in an alac atom.
type alacConfig struct {
	bitDepth   int
	channels   int
	avgBitrate uint32
	sampleRate uint32
}

func parseALACConfig(body []byte) (alacConfig, bool) {
	// version and flags, then the 24-byte config
	if len(body) < 4+24 {
		return alacConfig{}, false
	}
	b := body[4:]
	return alacConfig{
		bitDepth:   int(b[5]),
		channels:   int(b[9]),
		avgBitrate: binary.Decode[uint32](b[16:], binary.BigEndian),
		sampleRate: binary.Decode[uint32](b[20:], binary.BigEndian),
	}, true
}

// flacStreamInfo reads the STREAMINFO block of a dfLa atom.
func flacStreamInfo(body []byte) (sampleRate, channels, bitDepth int, ok bool) {
	// version and flags, block header, 34-byte STREAMINFO
	if len(body) < 4+4+34 || body[4]&0x7F != 0 {
		return 0, 0, 0, false
	}
	b := body[8:]
	sampleRate = int(b[10])<<12 | int(b[11])<<4 | int(b[12])>>4
	channels = int(b[12]>>1&0x07) + 1
	bitDepth = int(b[12]&0x01)<<4 | int(b[13]>>4) + 1
	return sampleRate, channels, bitDepth, true
}
