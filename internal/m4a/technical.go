package m4a

import (
	"errors"
	"time"

	"github.com/simonhull/audiotag/internal/binary"
	"github.com/simonhull/audiotag/internal/types"
)

var errShortAtom = errors.New("atom too short")

// properties extracts duration, bitrate, sample rate, channels, and
// codec. Missing atoms leave the corresponding values at zero; technical
// info is best-effort.
func properties(moov *box, mediaSize int64) types.Properties {
	var p types.Properties

	if mvhd := moov.child("mvhd"); mvhd != nil {
		if timescale, duration, err := parseMvhd(mvhd.data); err == nil && timescale > 0 {
			p.Duration = scaleDuration(duration, timescale)
		}
	}

	trak := audioTrack(moov)
	if trak == nil {
		p.Bitrate = types.EstimateBitrate(mediaSize, p.Duration)
		return p
	}
	var mdhdScale uint32
	if mdhd := trak.find("mdia", "mdhd"); mdhd != nil {
		if timescale, duration, err := parseMvhd(mdhd.data); err == nil && timescale > 0 {
			mdhdScale = timescale
			if p.Duration == 0 {
				p.Duration = scaleDuration(duration, timescale)
			}
		}
	}

	var bitrate uint32
	if stsd := trak.find("mdia", "minf", "stbl", "stsd"); stsd != nil {
		bitrate = parseStsd(stsd.data, &p)
	}
	if p.SampleRate == 0 {
		// The 16.16 field cannot hold rates above 65535 Hz.
		p.SampleRate = int(mdhdScale)
	}

	if bitrate > 0 {
		p.Bitrate = int(bitrate / 1000)
	} else {
		p.Bitrate = types.EstimateBitrate(mediaSize, p.Duration)
	}
	return p
}

func scaleDuration(duration uint64, timescale uint32) time.Duration {
	return time.Duration(float64(duration) / float64(timescale) * float64(time.Second))
}

// audioTrack returns the first trak whose handler is "soun", or the first
// trak when no handler says so.
func audioTrack(moov *box) *box {
	var first *box
	for _, c := range moov.children {
		if c.typ != "trak" {
			continue
		}
		if first == nil {
			first = c
		}
		// hdlr: version and flags, pre_defined, handler_type
		if hdlr := c.find("mdia", "hdlr"); hdlr != nil && len(hdlr.data) >= 12 && string(hdlr.data[8:12]) == "soun" {
			return c
		}
	}
	return first
}

// parseMvhd parses a movie or media header. Both share the layout of
// their first fields.
func parseMvhd(data []byte) (timescale uint32, duration uint64, err error) {
	if len(data) < 4 {
		return 0, 0, errShortAtom
	}

	if data[0] == 1 {
		// 64-bit version: creation and modification times take 8 bytes each
		if len(data) < 4+16+4+8 {
			return 0, 0, errShortAtom
		}
		timescale = binary.Decode[uint32](data[20:], binary.BigEndian)
		duration = binary.Decode[uint64](data[24:], binary.BigEndian)
		return timescale, duration, nil
	}

	if len(data) < 4+8+4+4 {
		return 0, 0, errShortAtom
	}
	timescale = binary.Decode[uint32](data[12:], binary.BigEndian)
	duration = uint64(binary.Decode[uint32](data[16:], binary.BigEndian))
	return timescale, duration, nil
}

// Offsets within an audio sample entry, measured from its size field.
const (
	entryChannels   = 24
	entrySampleSize = 26
	entrySampleRate = 32
	entryChildren   = 36
)

// parseStsd parses the first sample description for codec, sample rate,
// channels and, for lossless codecs, bit depth. It returns the encoder's
// average bitrate in bits per second when the entry records one.
func parseStsd(data []byte, p *types.Properties) uint32 {
	// stsd structure:
	// [1 byte]  version
	// [3 bytes] flags
	// [4 bytes] number of entries
	if len(data) < 8 || binary.Decode[uint32](data[4:], binary.BigEndian) == 0 {
		return 0
	}
	entry := data[8:]
	if len(entry) < entryChildren {
		return 0
	}
	size := min(int(binary.Decode[uint32](entry, binary.BigEndian)), len(entry))
	fourCC := string(entry[4:8])

	p.Codec = mapCodecName(fourCC)
	p.Lossless = losslessCodecs[fourCC]
	p.Channels = int(binary.Decode[uint16](entry[entryChannels:], binary.BigEndian))
	p.SampleRate = int(binary.Decode[uint32](entry[entrySampleRate:], binary.BigEndian) >> 16)
	if p.Lossless {
		p.BitDepth = int(binary.Decode[uint16](entry[entrySampleSize:], binary.BigEndian))
	}

	if size < entryChildren {
		return 0
	}
	children, _, err := parseBoxes(sliceReader(entry[:size]), entryChildren, int64(size))
	if err != nil {
		return 0
	}

	var bitrate uint32
	for _, c := range children {
		switch c.typ {
		case "esds":
			if len(c.data) < 4 {
				continue
			}
			es := parseESDescriptors(c.data[4:])
			bitrate = es.avgBitrate
			if profile, ok := aacProfiles[es.audioObjectType]; ok && fourCC == "mp4a" && profile != "AAC-LC" {
				p.Codec = profile
			}
		case "alac":
			if cfg, ok := parseALACConfig(c.data); ok {
				p.BitDepth = cfg.bitDepth
				p.Channels = cfg.channels
				p.SampleRate = int(cfg.sampleRate)
				bitrate = cfg.avgBitrate
			}
		case "dfLa":
			if rate, ch, bits, ok := flacStreamInfo(c.data); ok {
				p.SampleRate, p.Channels, p.BitDepth = rate, ch, bits
			}
		}
	}
	return bitrate
}
