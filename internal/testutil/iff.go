package testutil

// RIFFChunk frames body as a little-endian chunk padded to even length.
func RIFFChunk(id string, body []byte) []byte {
	out := concat([]byte(id), le32(uint32(len(body))), body)
	if len(body)%2 == 1 {
		out = append(out, 0)
	}
	return out
}

// RIFFInfo builds a LIST/INFO chunk from id, value pairs.
func RIFFInfo(pairs ...string) []byte {
	body := []byte("INFO")
	for i := 0; i+1 < len(pairs); i += 2 {
		body = append(body, RIFFChunk(pairs[i], append([]byte(pairs[i+1]), 0))...)
	}
	return RIFFChunk("LIST", body)
}

// WAV builds a PCM WAV file with dataSize bytes of silence. extra chunks
// follow the data chunk.
func WAV(sampleRate uint32, channels, bits uint16, dataSize int, extra ...[]byte) []byte {
	blockAlign := channels * bits / 8
	fmtChunk := RIFFChunk("fmt ", concat(
		le16(1), le16(channels),
		le32(sampleRate),
		le32(sampleRate*uint32(blockAlign)),
		le16(blockAlign), le16(bits),
	))
	body := concat([]byte("WAVE"), fmtChunk, RIFFChunk("data", make([]byte, dataSize)), concat(extra...))
	return concat([]byte("RIFF"), le32(uint32(len(body))), body)
}

// AIFFChunk frames body as a big-endian chunk padded to even length.
func AIFFChunk(id string, body []byte) []byte {
	out := concat([]byte(id), be32(uint32(len(body))), body)
	if len(body)%2 == 1 {
		out = append(out, 0)
	}
	return out
}

// AIFF builds an uncompressed AIFF file holding frames sample frames.
// The sample rate must be a whole number of hertz. extra chunks precede
// the sound data.
func AIFF(sampleRate uint32, channels, bits uint16, frames uint32, extra ...[]byte) []byte {
	comm := AIFFChunk("COMM", concat(
		be16(channels), be32(frames), be16(bits),
		extended(sampleRate),
	))
	ssnd := AIFFChunk("SSND", concat(be32(0), be32(0), make([]byte, int(frames)*int(channels)*int(bits/8))))
	body := concat([]byte("AIFF"), comm, concat(extra...), ssnd)
	return concat([]byte("FORM"), be32(uint32(len(body))), body)
}

// extended encodes a positive integer as an 80-bit extended float.
func extended(v uint32) []byte {
	if v == 0 {
		return make([]byte, 10)
	}
	exp := 16383 + 31
	mant := uint64(v) << 32
	for mant&(1<<63) == 0 {
		mant <<= 1
		exp--
	}
	out := be16(uint16(exp))
	return concat(out, be32(uint32(mant>>32)), be32(uint32(mant)))
}
