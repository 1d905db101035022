package riff

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
	"time"

	audiobinary "github.com/simonhull/audiotag/internal/binary"
	"github.com/simonhull/audiotag/internal/registry"
	"github.com/simonhull/audiotag/internal/testutil"
	"github.com/simonhull/audiotag/internal/types"
)

func newReader(data []byte) *audiobinary.SafeReader {
	return audiobinary.NewSafeReader(bytes.NewReader(data), int64(len(data)), "test.wav")
}

func open(t *testing.T, data []byte) *registry.Opened {
	t.Helper()
	opened, err := codec{}.Open(newReader(data), registry.OpenOptions{})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return opened
}

func serialize(t *testing.T, a registry.Adapter) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := a.Serialize(&buf); err != nil {
		t.Fatalf("Serialize() error = %v", err)
	}
	return buf.Bytes()
}

func taggedWAV() []byte {
	return testutil.WAV(44100, 2, 16, 44100*4, testutil.RIFFInfo(
		"INAM", "Song",
		"IART", "Artist",
		"IPRD", "Album",
		"ICRD", "2024-05-01",
		"ITRK", "3",
		"IFRM", "12",
		"ISFT", "Encoder 1.0",
	))
}

func TestProperties(t *testing.T) {
	tests := []struct {
		name       string
		sampleRate uint32
		channels   uint16
		bits       uint16
		seconds    int
		bitrate    int
		quality    types.Quality
	}{
		{"CD", 44100, 2, 16, 2, 1411, types.QualitySQ},
		{"hi-res", 96000, 2, 24, 1, 4608, types.QualityHiRes},
		{"mono voice", 8000, 1, 8, 3, 64, types.QualitySQ},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dataSize := int(tt.sampleRate) * int(tt.channels) * int(tt.bits/8) * tt.seconds
			p := open(t, testutil.WAV(tt.sampleRate, tt.channels, tt.bits, dataSize)).Properties

			if p.Codec != "PCM" || !p.Lossless {
				t.Errorf("Codec = %q, Lossless = %v", p.Codec, p.Lossless)
			}
			if p.SampleRate != int(tt.sampleRate) || p.Channels != int(tt.channels) || p.BitDepth != int(tt.bits) {
				t.Errorf("Properties = %+v", p)
			}
			if p.Duration != time.Duration(tt.seconds)*time.Second {
				t.Errorf("Duration = %v, want %ds", p.Duration, tt.seconds)
			}
			if p.Bitrate != tt.bitrate {
				t.Errorf("Bitrate = %d, want %d", p.Bitrate, tt.bitrate)
			}
			if got := types.Classify(p.SampleRate, p.BitDepth, p.Bitrate, p.Lossless); got != tt.quality {
				t.Errorf("Classify() = %v, want %v", got, tt.quality)
			}
		})
	}
}

func TestOpen_Fields(t *testing.T) {
	a := open(t, taggedWAV()).Adapter

	if a.TagType() != types.TagRIFF {
		t.Errorf("TagType() = %v", a.TagType())
	}
	tests := []struct {
		field types.Field
		want  types.Value
	}{
		{types.FieldTitle, types.StringValue("Song")},
		{types.FieldArtist, types.StringValue("Artist")},
		{types.FieldAlbum, types.StringValue("Album")},
		{types.FieldYear, types.IntValue(2024)},
		{types.FieldTrackNumber, types.IntValue(3)},
		{types.FieldTrackTotal, types.IntValue(12)},
		{types.FieldGenre, types.Null()},
	}
	for _, tt := range tests {
		if got := a.ReadField(tt.field); got != tt.want {
			t.Errorf("ReadField(%v) = %v, want %v", tt.field, got, tt.want)
		}
	}

	for _, f := range []types.Field{types.FieldDiscNumber, types.FieldAlbumArtist, types.FieldLyrics} {
		if a.Supports(f) {
			t.Errorf("Supports(%v) = true", f)
		}
	}
}

func TestOpen_TrackAlias(t *testing.T) {
	data := testutil.WAV(44100, 2, 16, 400, testutil.RIFFInfo("IPRT", "7"))
	a := open(t, data).Adapter
	if got := a.ReadField(types.FieldTrackNumber); got != types.IntValue(7) {
		t.Errorf("track = %v, want 7", got)
	}

	if err := a.WriteField(types.FieldTrackNumber, types.IntValue(8)); err != nil {
		t.Fatal(err)
	}
	info := a.(*file).Store()
	if _, ok := info.First("IPRT"); ok {
		t.Error("IPRT alias should be removed on write")
	}
	if v, _ := info.First("ITRK"); v != "8" {
		t.Errorf("ITRK = %q, want 8", v)
	}
}

func TestSerialize_Untouched(t *testing.T) {
	data := taggedWAV()
	if out := serialize(t, open(t, data).Adapter); !bytes.Equal(out, data) {
		t.Error("untouched file should serialize unchanged")
	}
}

func TestSerialize_RoundTrip(t *testing.T) {
	data := taggedWAV()
	a := open(t, data).Adapter

	_ = a.WriteField(types.FieldTitle, types.StringValue("Café"))
	_ = a.WriteField(types.FieldTrackTotal, types.Null())
	_ = a.WriteField(types.FieldComment, types.StringValue("odd"))
	out := serialize(t, a)

	if size := binary.LittleEndian.Uint32(out[4:8]); int(size) != len(out)-8 {
		t.Errorf("RIFF size = %d, want %d", size, len(out)-8)
	}
	if !bytes.Contains(out, []byte("INAM\x05\x00\x00\x00Caf\xe9\x00")) {
		t.Error("title should be stored as Latin-1")
	}

	b := open(t, out)
	for f, want := range map[types.Field]types.Value{
		types.FieldTitle:       types.StringValue("Café"),
		types.FieldArtist:      types.StringValue("Artist"),
		types.FieldTrackTotal:  types.Null(),
		types.FieldTrackNumber: types.IntValue(3),
		types.FieldComment:     types.StringValue("odd"),
	} {
		if got := b.Adapter.ReadField(f); got != want {
			t.Errorf("ReadField(%v) = %v, want %v", f, got, want)
		}
	}
	if v, _ := b.Adapter.(*file).Store().First("ISFT"); v != "Encoder 1.0" {
		t.Errorf("ISFT = %q, unknown items should be kept", v)
	}
	if b.Properties.Duration != open(t, data).Properties.Duration {
		t.Errorf("Duration changed to %v", b.Properties.Duration)
	}
}

func TestSerialize_CreatesInfo(t *testing.T) {
	data := testutil.WAV(44100, 2, 16, 1000)

	a := open(t, data).Adapter
	_ = a.WriteField(types.FieldArtist, types.Null())
	if out := serialize(t, a); !bytes.Equal(out, data) {
		t.Error("clearing an absent field should leave the file unchanged")
	}

	_ = a.WriteField(types.FieldArtist, types.StringValue("Someone"))
	out := serialize(t, a)
	if !bytes.HasPrefix(out, data[:4]) || !bytes.Contains(out, []byte("LIST")) {
		t.Fatal("LIST chunk missing")
	}
	if got := open(t, out).Adapter.ReadField(types.FieldArtist); got != types.StringValue("Someone") {
		t.Errorf("artist = %v", got)
	}

	// Removing the last item removes the chunk.
	b := open(t, out).Adapter
	_ = b.WriteField(types.FieldArtist, types.Null())
	if cleared := serialize(t, b); !bytes.Equal(cleared, data) {
		t.Errorf("cleared file = %d bytes, want the original %d", len(cleared), len(data))
	}
}

func TestOpen_DuplicateInfo(t *testing.T) {
	data := testutil.WAV(44100, 2, 16, 1000,
		testutil.RIFFInfo("INAM", "First"),
		testutil.RIFFInfo("INAM", "Second"),
	)
	opened := open(t, data)
	if len(opened.Warnings) != 1 {
		t.Errorf("warnings = %v, want 1", opened.Warnings)
	}
	if got := opened.Adapter.ReadField(types.FieldTitle); got != types.StringValue("First") {
		t.Errorf("title = %v, want First", got)
	}
	out := serialize(t, opened.Adapter)
	if bytes.Contains(out, []byte("Second")) {
		t.Error("duplicate INFO list should be removed on save")
	}
}

func TestOpen_RequireTag(t *testing.T) {
	data := testutil.WAV(44100, 2, 16, 1000)
	_, err := codec{}.Open(newReader(data), registry.OpenOptions{RequireTag: true})
	if !errors.Is(err, registry.ErrNoTag) {
		t.Errorf("error = %v, want ErrNoTag", err)
	}
}

func TestOpen_Corrupt(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"not WAVE", []byte("RIFF\x04\x00\x00\x00AVI ")},
		{"no fmt chunk", append([]byte("RIFF\x0c\x00\x00\x00WAVE"), testutil.RIFFChunk("data", nil)...)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := codec{}.Open(newReader(tt.data), registry.OpenOptions{})
			var corrupt *types.CorruptedFileError
			if !errors.As(err, &corrupt) {
				t.Errorf("error = %v, want CorruptedFileError", err)
			}
		})
	}
}

func TestPictures(t *testing.T) {
	a := open(t, taggedWAV()).Adapter
	warnings := a.SetPictures([]types.Picture{types.NewPicture("image/png", []byte{0x89, 'P', 'N', 'G'}, nil)})
	if len(warnings) != 1 || len(a.Pictures()) != 0 {
		t.Errorf("SetPictures() warnings = %v, pictures = %d", warnings, len(a.Pictures()))
	}
}

func TestParseInfo_Overrun(t *testing.T) {
	body := append([]byte("INAM\x05\x00\x00\x00Song\x00\x00"), "IART\xff\x00\x00\x00abc"...)
	info, warnings := ParseInfo(body, 100)
	if len(warnings) != 1 || warnings[0].Offset != 114 {
		t.Errorf("warnings = %v", warnings)
	}
	if v, _ := info.Store().First("INAM"); v != "Song" {
		t.Errorf("INAM = %q", v)
	}
}
