package types

import (
	"bytes"
	"errors"
	"testing"
)

func TestDetectFormat(t *testing.T) {
	id3Prefixed := append([]byte("ID3\x04\x00\x00\x00\x00\x00\x02\x00\x00"), []byte("MAC \x96\x0f")...)
	id3FLAC := append([]byte("ID3\x04\x00\x00\x00\x00\x00\x02\x00\x00"), []byte("fLaC\x00\x00")...)

	tests := []struct {
		name string
		data []byte
		want Format
	}{
		{name: "Opus", data: oggPage("OpusHead"), want: FormatOpus},
		{name: "Vorbis", data: oggPage("\x01vorbis"), want: FormatOgg},
		{name: "FLAC", data: []byte("fLaC\x00\x00\x00\x00"), want: FormatFLAC},
		{name: "MP3 with ID3v2", data: []byte("ID3\x04\x00\x00\x00\x00\x00\x00"), want: FormatMP3},
		{name: "MP3 frame sync", data: []byte{0xFF, 0xFB, 0x90, 0x00}, want: FormatMP3},
		{name: "WAV", data: []byte("RIFF\x24\x00\x00\x00WAVEfmt "), want: FormatWAV},
		{name: "AIFF", data: []byte("FORM\x00\x00\x00\x00AIFFCOMM"), want: FormatAIFF},
		{name: "AIFC", data: []byte("FORM\x00\x00\x00\x00AIFCCOMM"), want: FormatAIFF},
		{name: "Monkey's Audio", data: []byte("MAC \x96\x0f\x00\x00"), want: FormatAPE},
		{name: "Monkey's Audio behind ID3v2", data: id3Prefixed, want: FormatAPE},
		{name: "FLAC behind ID3v2", data: id3FLAC, want: FormatFLAC},
		{name: "M4A", data: ftyp("M4A "), want: FormatM4A},
		{name: "M4B", data: ftyp("M4B "), want: FormatM4B},
		{name: "mp42", data: ftyp("mp42"), want: FormatM4A},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectFormat(bytes.NewReader(tt.data), int64(len(tt.data)), "test")
			if err != nil {
				t.Fatalf("DetectFormat() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("DetectFormat() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDetectFormat_Unsupported(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "too small", data: []byte("abc")},
		{name: "five arbitrary bytes", data: []byte{0x01, 0x02, 0x03, 0x04, 0x05}},
		{name: "text", data: []byte("hello, world")},
		{name: "unknown ftyp brand", data: ftyp("qt  ")},
		{name: "RIFF without WAVE", data: []byte("RIFF\x00\x00\x00\x00AVI LIST")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DetectFormat(bytes.NewReader(tt.data), int64(len(tt.data)), "test.bin")
			var ufErr *UnsupportedFormatError
			if !errors.As(err, &ufErr) {
				t.Fatalf("DetectFormat() error = %v, want *UnsupportedFormatError", err)
			}
		})
	}
}

func TestFormat_String(t *testing.T) {
	if FormatOgg.String() != "Ogg Vorbis" {
		t.Errorf("FormatOgg.String() = %q", FormatOgg.String())
	}
	if Format(99).String() != "Unknown" {
		t.Errorf("out-of-range format = %q", Format(99).String())
	}
}

func TestFormat_Extensions(t *testing.T) {
	tests := []struct {
		format Format
		want   []string
	}{
		{FormatFLAC, []string{".flac"}},
		{FormatMP3, []string{".mp3"}},
		{FormatM4A, []string{".m4a", ".mp4", ".m4p"}},
		{FormatM4B, []string{".m4b"}},
		{FormatOgg, []string{".ogg", ".oga"}},
		{FormatOpus, []string{".opus"}},
		{FormatWAV, []string{".wav"}},
		{FormatAIFF, []string{".aiff", ".aif", ".aifc"}},
		{FormatAPE, []string{".ape"}},
		{FormatUnknown, nil},
	}

	for _, tc := range tests {
		got := tc.format.Extensions()
		if len(got) != len(tc.want) {
			t.Errorf("%v.Extensions() = %v, want %v", tc.format, got, tc.want)
			continue
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Errorf("%v.Extensions()[%d] = %q, want %q", tc.format, i, got[i], tc.want[i])
			}
		}
	}
}

// oggPage builds a beginning-of-stream page holding one packet. The
// checksum is left zero since detection never verifies it.
func oggPage(packet string) []byte {
	header := make([]byte, 27)
	copy(header, "OggS")
	header[5] = 0x02
	copy(header[6:14], bytes.Repeat([]byte{0xFF}, 8))
	header[14] = 0x01
	header[26] = 1
	return append(append(header, byte(len(packet))), packet...)
}

func ftyp(brand string) []byte {
	b := []byte{0, 0, 0, 20}
	b = append(b, "ftyp"...)
	b = append(b, brand...)
	b = append(b, 0, 0, 0, 0)
	b = append(b, brand...)
	return b
}
