package mp3

import (
	"encoding/binary"
	"errors"
	"time"

	binutil "github.com/simonhull/audiotag/internal/binary"
	"github.com/simonhull/audiotag/internal/types"
)

// MPEG audio versions as encoded in the frame header.
const (
	mpeg25 = 0
	mpeg2  = 2
	mpeg1  = 3
)

// Layer III bitrate tables in kbps.
var (
	bitrateV1 = [16]int{0, 32, 40, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320, 0}
	bitrateV2 = [16]int{0, 8, 16, 24, 32, 40, 48, 56, 64, 80, 96, 112, 128, 144, 160, 0}
)

// Sample rate tables in Hz, indexed by version then rate index.
var sampleRates = map[uint32][3]int{
	mpeg1:  {44100, 48000, 32000},
	mpeg2:  {22050, 24000, 16000},
	mpeg25: {11025, 12000, 8000},
}

// maxSyncScan bounds the search for the first frame after the tag.
const maxSyncScan = 64 * 1024

var errNoFrame = errors.New("no valid MPEG audio frame found")

// frameHeader is a decoded Layer III frame header.
type frameHeader struct {
	version    uint32
	bitrate    int // kbps
	sampleRate int
	channels   int
	padding    bool
}

func (h frameHeader) samplesPerFrame() int {
	if h.version == mpeg1 {
		return 1152
	}
	return 576
}

// length returns the frame size in bytes.
func (h frameHeader) length() int {
	n := h.samplesPerFrame() / 8 * h.bitrate * 1000 / h.sampleRate
	if h.padding {
		n++
	}
	return n
}

// sideInfoSize is the Layer III side information size, which precedes a
// Xing or Info header in the first frame.
func (h frameHeader) sideInfoSize() int64 {
	switch {
	case h.version == mpeg1 && h.channels == 1:
		return 17
	case h.version == mpeg1:
		return 32
	case h.channels == 1:
		return 9
	default:
		return 17
	}
}

// parseFrameHeader decodes a 4-byte frame header. It reports false for
// anything that is not a valid Layer III header.
func parseFrameHeader(b []byte) (frameHeader, bool) {
	header := binary.BigEndian.Uint32(b)

	// Frame sync (11 bits set)
	if header&0xFFE00000 != 0xFFE00000 {
		return frameHeader{}, false
	}

	version := (header >> 19) & 0x3
	layer := (header >> 17) & 0x3
	if version == 1 || layer != 1 {
		return frameHeader{}, false
	}

	bitrateIdx := (header >> 12) & 0xF
	rateIdx := (header >> 10) & 0x3
	if bitrateIdx == 0 || bitrateIdx == 15 || rateIdx == 3 {
		return frameHeader{}, false
	}

	h := frameHeader{
		version:    version,
		sampleRate: sampleRates[version][rateIdx],
		padding:    (header>>9)&0x1 == 1,
		channels:   2,
	}
	if version == mpeg1 {
		h.bitrate = bitrateV1[bitrateIdx]
	} else {
		h.bitrate = bitrateV2[bitrateIdx]
	}
	if (header>>6)&0x3 == 3 {
		h.channels = 1
	}
	return h, true
}

// findFrame scans forward from start for the first frame header.
func findFrame(sr *binutil.SafeReader, start, end int64) (int64, frameHeader, error) {
	limit := min(end-4, start+maxSyncScan)
	buf := make([]byte, 4)
	for off := start; off <= limit; off++ {
		if err := sr.ReadAt(buf, off, "MPEG frame header"); err != nil {
			return 0, frameHeader{}, err
		}
		if buf[0] != 0xFF {
			continue
		}
		h, ok := parseFrameHeader(buf)
		if !ok {
			continue
		}
		// A real frame is followed by another frame or the end of the audio.
		next := off + int64(h.length())
		if next+4 <= end {
			if err := sr.ReadAt(buf, next, "MPEG frame header"); err != nil {
				return 0, frameHeader{}, err
			}
			if _, ok := parseFrameHeader(buf); !ok {
				continue
			}
		}
		return off, h, nil
	}
	return 0, frameHeader{}, errNoFrame
}

// parseTechnicalInfo extracts bitrate, sample rate, channels, and duration
// from the audio between start and end.
func parseTechnicalInfo(sr *binutil.SafeReader, start, end int64) (types.Properties, error) {
	props := types.Properties{Codec: "MP3"}

	off, h, err := findFrame(sr, start, end)
	if err != nil {
		return props, err
	}
	props.SampleRate = h.sampleRate
	props.Channels = h.channels
	props.Bitrate = h.bitrate

	audioSize := end - off
	if frames, ok := vbrFrameCount(sr, off, h); ok && frames > 0 {
		props.Duration = durationFromFrames(frames, h)
		if secs := props.Duration.Seconds(); secs > 0 {
			props.Bitrate = int(float64(audioSize*8) / secs / 1000)
		}
		return props, nil
	}

	// CBR: duration from bitrate and audio size
	props.Duration = time.Duration(float64(audioSize*8) / float64(h.bitrate*1000) * float64(time.Second))
	return props, nil
}

// vbrFrameCount reads the frame count from a Xing, Info, or VBRI header
// in the first frame.
func vbrFrameCount(sr *binutil.SafeReader, frameOffset int64, h frameHeader) (uint32, bool) {
	xing := make([]byte, 12)
	if err := sr.ReadAt(xing, frameOffset+4+h.sideInfoSize(), "Xing header"); err == nil {
		if tag := string(xing[:4]); tag == "Xing" || tag == "Info" {
			// Frames field is present if bit 0 is set
			if binary.BigEndian.Uint32(xing[4:8])&0x1 != 0 {
				return binary.BigEndian.Uint32(xing[8:12]), true
			}
			return 0, false
		}
	}

	// VBRI always sits 32 bytes after the frame header.
	vbri := make([]byte, 18)
	if err := sr.ReadAt(vbri, frameOffset+36, "VBRI header"); err == nil && string(vbri[:4]) == "VBRI" {
		return binary.BigEndian.Uint32(vbri[14:18]), true
	}
	return 0, false
}

func durationFromFrames(frames uint32, h frameHeader) time.Duration {
	samples := uint64(frames) * uint64(h.samplesPerFrame())
	return time.Duration(samples) * time.Second / time.Duration(h.sampleRate)
}
