package ogg

import (
	"encoding/binary"
	"fmt"

	"github.com/simonhull/audiotag/internal/types"
)

// opusRate is the Opus decoder output rate and granule clock.
const opusRate = 48000

var opusStream = &variant{
	format:       types.FormatOpus,
	headers:      2,
	commentMagic: "OpusTags",
	identify:     parseOpusHead,
}

// parseOpusHead parses the OpusHead identification header.
//
// The OpusHead header contains audio properties:
//   - Version (must be 1)
//   - Number of channels
//   - Pre-skip (samples to skip at start)
//   - Input sample rate (original recording rate, informational)
//   - Output gain (playback volume adjustment)
//   - Channel mapping family
//
// Note: Opus always outputs at 48kHz regardless of input sample rate.
func parseOpusHead(data []byte) (identification, []types.Warning, error) {
	if len(data) < 19 {
		return identification{}, nil, fmt.Errorf("OpusHead packet too short: %d bytes (need at least 19)", len(data))
	}
	if string(data[0:8]) != "OpusHead" {
		return identification{}, nil, fmt.Errorf("invalid OpusHead magic: %q", data[0:8])
	}
	// Only the major version in the upper four bits is significant.
	if version := data[8]; version>>4 != 0 {
		return identification{}, nil, fmt.Errorf("unsupported Opus version: %d", version)
	}

	channels := data[9]
	preSkip := binary.LittleEndian.Uint16(data[10:12])
	inputSampleRate := binary.LittleEndian.Uint32(data[12:16])
	outputGain := int16(binary.LittleEndian.Uint16(data[16:18]))

	var warnings []types.Warning
	if inputSampleRate != opusRate && inputSampleRate > 0 {
		warnings = append(warnings, types.Warning{
			Stage:   "technical",
			Message: fmt.Sprintf("original sample rate was %d Hz (Opus outputs at 48 kHz)", inputSampleRate),
		})
	}
	if outputGain != 0 {
		warnings = append(warnings, types.Warning{
			Stage:   "technical",
			Message: fmt.Sprintf("output gain: %.2f dB", float64(outputGain)/256),
		})
	}

	return identification{
		props: types.Properties{
			Codec:      "Opus",
			SampleRate: opusRate,
			Channels:   int(channels),
		},
		granuleRate: opusRate,
		preSkip:     int64(preSkip),
	}, warnings, nil
}
