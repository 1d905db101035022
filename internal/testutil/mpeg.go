package testutil

// MPEG-1 Layer III, 128 kbps, 44.1 kHz, stereo, no padding.
var mpegHeader = []byte{0xFF, 0xFB, 0x90, 0x00}

// MPEGFrameSize is the size of one frame produced by MPEGFrames.
const MPEGFrameSize = 417

// MPEGFrames builds n CBR frames with silent payloads.
func MPEGFrames(n int) []byte {
	out := make([]byte, 0, n*MPEGFrameSize)
	for range n {
		frame := make([]byte, MPEGFrameSize)
		copy(frame, mpegHeader)
		out = append(out, frame...)
	}
	return out
}

// MPEGXing builds a VBR stream: a Xing header frame announcing frames,
// followed by n audio frames.
func MPEGXing(frames uint32, n int) []byte {
	first := make([]byte, MPEGFrameSize)
	copy(first, mpegHeader)
	// Stereo MPEG-1 side information is 32 bytes.
	xing := concat([]byte("Xing"), be32(1), be32(frames))
	copy(first[4+32:], xing)
	return append(first, MPEGFrames(n)...)
}

// ID3v2 wraps frames in an ID3v2.4 header. Each frame is given as
// id and text; text frames are stored with UTF-8 encoding.
func ID3v2(frames ...[2]string) []byte {
	var body []byte
	for _, f := range frames {
		payload := append([]byte{3}, f[1]...)
		body = append(body, f[0]...)
		body = append(body, synchsafe(uint32(len(payload)))...)
		body = append(body, 0, 0)
		body = append(body, payload...)
	}
	header := concat([]byte("ID3"), []byte{4, 0, 0}, synchsafe(uint32(len(body))))
	return append(header, body...)
}

func synchsafe(v uint32) []byte {
	return []byte{byte(v >> 21 & 0x7F), byte(v >> 14 & 0x7F), byte(v >> 7 & 0x7F), byte(v & 0x7F)}
}

// MP3 builds an MP3 file with an ID3v2.4 tag holding a title and artist,
// followed by n CBR frames.
func MP3(title, artist string, n int) []byte {
	return append(ID3v2([2]string{"TIT2", title}, [2]string{"TPE1", artist}), MPEGFrames(n)...)
}

// ID3v1 builds a 128-byte ID3v1.1 tag.
func ID3v1(title, artist string, track byte, genre byte) []byte {
	b := make([]byte, 128)
	copy(b, "TAG")
	copy(b[3:33], title)
	copy(b[33:63], artist)
	b[126] = track
	b[127] = genre
	return b
}
