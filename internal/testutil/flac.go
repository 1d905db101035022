package testutil

// FLAC metadata block types used by the builders.
const (
	FLACPadding       byte = 1
	FLACSeekTable     byte = 3
	FLACVorbisComment byte = 4
	FLACPicture       byte = 6
)

// FLACBlock is one metadata block following STREAMINFO.
type FLACBlock struct {
	Type byte
	Data []byte
}

// FLACAudio is the filler frame data appended by FLAC. It starts with a
// frame sync code.
var FLACAudio = append([]byte{0xFF, 0xF8, 0x69, 0x08}, make([]byte, 60)...)

// FLACStreamInfo renders a STREAMINFO body.
func FLACStreamInfo(sampleRate uint32, channels, bits uint8, samples uint64) []byte {
	// Packed: sample rate (20 bits), channels-1 (3), bits-1 (5), total samples (36).
	packed := uint64(sampleRate)<<44 | uint64(channels-1)<<41 | uint64(bits-1)<<36 | samples&0xFFFFFFFFF
	return concat(
		be16(4096), be16(4096),
		[]byte{0, 0, 0, 0, 0, 0}, // frame sizes
		be32(uint32(packed>>32)), be32(uint32(packed)),
		make([]byte, 16), // MD5
	)
}

// FLAC builds a native FLAC file: STREAMINFO, the given blocks, and
// FLACAudio.
func FLAC(sampleRate uint32, channels, bits uint8, samples uint64, blocks ...FLACBlock) []byte {
	all := append([]FLACBlock{{Type: 0, Data: FLACStreamInfo(sampleRate, channels, bits, samples)}}, blocks...)
	out := []byte("fLaC")
	for i, b := range all {
		typ := b.Type
		if i == len(all)-1 {
			typ |= 0x80
		}
		n := len(b.Data)
		out = append(out, typ, byte(n>>16), byte(n>>8), byte(n))
		out = append(out, b.Data...)
	}
	return append(out, FLACAudio...)
}

// VorbisComments renders a Vorbis comment block body from KEY=VALUE
// strings.
func VorbisComments(vendor string, comments ...string) []byte {
	out := concat(le32(uint32(len(vendor))), []byte(vendor), le32(uint32(len(comments))))
	for _, c := range comments {
		out = append(out, le32(uint32(len(c)))...)
		out = append(out, c...)
	}
	return out
}
