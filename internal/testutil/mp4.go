package testutil

import "bytes"

// MP4Audio is the mdat payload of files built by MP4.
var MP4Audio = bytes.Repeat([]byte{0xA5}, 4096)

// Atom frames the concatenated parts as an MP4 atom.
func Atom(typ string, parts ...[]byte) []byte {
	body := concat(parts...)
	return concat(be32(uint32(8+len(body))), []byte(typ), body)
}

// MP4Data builds a data atom with the given type indicator.
func MP4Data(kind uint32, value []byte) []byte {
	return Atom("data", be32(kind), be32(0), value)
}

// MP4Text builds a UTF-8 ilst item. name is the raw four-byte atom type,
// so the copyright sign is written "\xa9".
func MP4Text(name, value string) []byte {
	return Atom(name, MP4Data(1, []byte(value)))
}

// MP4Freeform builds a "----" item in the com.apple.iTunes namespace.
func MP4Freeform(name, value string) []byte {
	return Atom("----",
		Atom("mean", be32(0), []byte("com.apple.iTunes")),
		Atom("name", be32(0), []byte(name)),
		MP4Data(1, []byte(value)),
	)
}

// MP4Pair builds a trkn or disk item.
func MP4Pair(name string, num, total uint16) []byte {
	return Atom(name, MP4Data(0, concat(be16(0), be16(num), be16(total), be16(0))))
}

// AACEntry builds an mp4a sample entry whose esds carries the audio
// object type and average bitrate.
func AACEntry(sampleRate uint32, channels uint16, aot byte, avgBitrate uint32) []byte {
	// audio object type, 44.1 kHz frequency index, channel configuration
	asc := []byte{aot<<3 | 0x02, byte(channels) << 3}
	decoderConfig := concat(
		[]byte{0x40, 0x15}, // MPEG-4 audio, audio stream
		[]byte{0, 0x18, 0}, // buffer size
		be32(avgBitrate),   // max bitrate
		be32(avgBitrate),
		[]byte{0x05, byte(len(asc))}, asc,
	)
	es := concat(
		[]byte{0, 1, 0}, // ES_ID, flags
		[]byte{0x04, byte(len(decoderConfig))}, decoderConfig,
		[]byte{0x06, 1, 2}, // SL config
	)
	esds := Atom("esds", be32(0), []byte{0x03, byte(len(es))}, es)
	return sampleEntry("mp4a", sampleRate, channels, 16, esds)
}

// ALACEntry builds an alac sample entry with its magic cookie.
func ALACEntry(sampleRate uint32, channels, bits uint8, avgBitrate uint32) []byte {
	cookie := Atom("alac", be32(0),
		be32(4096),                  // frame length
		[]byte{0, bits, 40, 10, 14}, // compatible version, bit depth, rice params
		[]byte{channels}, be16(255), // channels, max run
		be32(0),                     // max frame bytes
		be32(avgBitrate), be32(sampleRate),
	)
	return sampleEntry("alac", sampleRate, uint16(channels), uint16(bits), cookie)
}

func sampleEntry(fourCC string, sampleRate uint32, channels, bits uint16, children ...[]byte) []byte {
	return Atom(fourCC,
		make([]byte, 6), be16(1), // reserved, data reference index
		make([]byte, 8),          // version, revision, vendor
		be16(channels), be16(bits),
		be16(0), be16(0), // compression ID, packet size
		be32(sampleRate<<16),
		concat(children...),
	)
}

// MP4 builds a fast-start MP4 file (ftyp, moov, mdat) with one sound
// track described by entry. The track's stco points at the mdat payload.
// items become the children of moov/udta/meta/ilst; without items no
// udta atom is written.
func MP4(entry []byte, timescale, duration uint32, items ...[]byte) []byte {
	ftyp := Atom("ftyp", []byte("M4A "), be32(0), []byte("M4A mp42isom"))
	header := concat(be32(0), be32(0), be32(0), be32(timescale), be32(duration))

	moov := func(chunk uint32) []byte {
		stbl := Atom("stbl",
			Atom("stsd", be32(0), be32(1), entry),
			Atom("stts", be32(0), be32(0)),
			Atom("stco", be32(0), be32(1), be32(chunk)),
		)
		mdia := Atom("mdia",
			Atom("mdhd", header, be16(0x55c4), be16(0)),
			Atom("hdlr", be32(0), be32(0), []byte("soun"), make([]byte, 12), []byte{0}),
			Atom("minf", Atom("smhd", make([]byte, 8)), stbl),
		)
		parts := [][]byte{
			Atom("mvhd", header, make([]byte, 80)),
			Atom("trak", Atom("tkhd", make([]byte, 84)), mdia),
		}
		if len(items) > 0 {
			parts = append(parts, Atom("udta", Atom("meta", be32(0),
				Atom("hdlr", be32(0), be32(0), []byte("mdirappl"), make([]byte, 9)),
				Atom("ilst", items...),
			)))
		}
		return Atom("moov", parts...)
	}

	chunk := len(ftyp) + len(moov(0)) + 8
	return concat(ftyp, moov(uint32(chunk)), Atom("mdat", MP4Audio))
}

// M4A builds an AAC-LC file of the given length at 44.1 kHz stereo.
func M4A(seconds uint32, items ...[]byte) []byte {
	return MP4(AACEntry(44100, 2, 2, 128000), 44100, seconds*44100, items...)
}
