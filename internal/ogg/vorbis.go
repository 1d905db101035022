package ogg

import (
	"encoding/binary"
	"fmt"

	"github.com/simonhull/audiotag/internal/types"
)

var vorbisStream = &variant{
	format:       types.FormatOgg,
	headers:      3,
	commentMagic: "\x03vorbis",
	framingBit:   true,
	identify:     parseVorbisIdentification,
}

// parseVorbisIdentification parses the Vorbis identification header (packet type 0x01).
//
// The identification header contains audio properties:
//   - Sample rate
//   - Number of channels
//   - Bitrate (nominal, maximum, minimum)
func parseVorbisIdentification(data []byte) (identification, []types.Warning, error) {
	if len(data) < 30 {
		return identification{}, nil, fmt.Errorf("identification header too short: %d bytes", len(data))
	}
	if data[0] != 0x01 || string(data[1:7]) != "vorbis" {
		return identification{}, nil, fmt.Errorf("invalid vorbis magic: %q", data[:7])
	}
	if v := binary.LittleEndian.Uint32(data[7:11]); v != 0 {
		return identification{}, nil, fmt.Errorf("unsupported Vorbis version: %d", v)
	}

	channels := data[11]
	sampleRate := binary.LittleEndian.Uint32(data[12:16])
	// Maximum and minimum bitrates at 16 and 24 are optional hints.
	nominal := int32(binary.LittleEndian.Uint32(data[20:24]))

	id := identification{
		props: types.Properties{
			Codec:      "Vorbis",
			SampleRate: int(sampleRate),
			Channels:   int(channels),
		},
		granuleRate: int64(sampleRate),
	}
	if nominal > 0 {
		id.props.Bitrate = int(nominal / 1000)
	}
	return id, nil, nil
}
