package flac

import (
	"bytes"
	"errors"
	"testing"
	"time"

	binutil "github.com/simonhull/audiotag/internal/binary"
	"github.com/simonhull/audiotag/internal/registry"
	"github.com/simonhull/audiotag/internal/testutil"
	"github.com/simonhull/audiotag/internal/types"
	"github.com/simonhull/audiotag/internal/vorbis"
)

func open(t *testing.T, data []byte, opts registry.OpenOptions) *registry.Opened {
	t.Helper()
	sr := binutil.NewSafeReader(bytes.NewReader(data), int64(len(data)), "test.flac")
	opened, err := codec{}.Open(sr, opts)
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

func taggedFLAC(comments ...string) []byte {
	return testutil.FLAC(44100, 2, 16, 44100*3,
		testutil.FLACBlock{Type: testutil.FLACVorbisComment, Data: testutil.VorbisComments("reference libFLAC 1.4.3", comments...)},
		testutil.FLACBlock{Type: testutil.FLACPadding, Data: make([]byte, 128)},
	)
}

func TestOpen_Properties(t *testing.T) {
	tests := []struct {
		name       string
		sampleRate uint32
		bits       uint8
		channels   uint8
		samples    uint64
		quality    types.Quality
	}{
		{"CD", 44100, 16, 2, 44100 * 2, types.QualitySQ},
		{"hi-res rate", 96000, 24, 2, 96000, types.QualityHiRes},
		{"hi-res depth", 48000, 24, 1, 48000 * 4, types.QualityHiRes},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := testutil.FLAC(tt.sampleRate, tt.channels, tt.bits, tt.samples)
			p := open(t, data, registry.OpenOptions{}).Properties

			if p.SampleRate != int(tt.sampleRate) || p.BitDepth != int(tt.bits) || p.Channels != int(tt.channels) {
				t.Errorf("Properties = %+v", p)
			}
			want := time.Duration(tt.samples) * time.Second / time.Duration(tt.sampleRate)
			if p.Duration != want {
				t.Errorf("Duration = %v, want %v", p.Duration, want)
			}
			if !p.Lossless || p.Codec != "FLAC" {
				t.Errorf("Codec = %q, Lossless = %v", p.Codec, p.Lossless)
			}
			if got := types.Classify(p.SampleRate, p.BitDepth, p.Bitrate, p.Lossless); got != tt.quality {
				t.Errorf("Classify() = %v, want %v", got, tt.quality)
			}
		})
	}
}

func TestOpen_Comments(t *testing.T) {
	opened := open(t, taggedFLAC("TITLE=Test Song", "TRACKNUMBER=5", "TRACKTOTAL=12"), registry.OpenOptions{})
	a := opened.Adapter

	if a.TagType() != types.TagVorbis {
		t.Errorf("TagType() = %v", a.TagType())
	}
	if got := a.ReadField(types.FieldTitle); got != types.StringValue("Test Song") {
		t.Errorf("title = %v", got)
	}
	if got := a.ReadField(types.FieldTrackTotal); got != types.IntValue(12) {
		t.Errorf("track total = %v", got)
	}
}

func TestSerialize_Untouched(t *testing.T) {
	data := taggedFLAC("TITLE=Same", "ARTIST=Same")
	if got := serialize(t, open(t, data, registry.OpenOptions{}).Adapter); !bytes.Equal(got, data) {
		t.Error("untouched file should serialize to identical bytes")
	}
}

func TestSerialize_RoundTrip(t *testing.T) {
	data := taggedFLAC("TITLE=Old")
	a := open(t, data, registry.OpenOptions{}).Adapter

	_ = a.WriteField(types.FieldTitle, types.StringValue("New"))
	_ = a.WriteField(types.FieldAlbumArtist, types.StringValue("Various"))
	gain := -6.5
	_ = a.SetReplayGain(types.ReplayGain{TrackGain: &gain})
	out := serialize(t, a)

	if !bytes.HasSuffix(out, testutil.FLACAudio) {
		t.Error("audio frames were not preserved")
	}
	got := open(t, out, registry.OpenOptions{}).Adapter
	if v := got.ReadField(types.FieldTitle); v != types.StringValue("New") {
		t.Errorf("title = %v", v)
	}
	if v := got.ReadField(types.FieldAlbumArtist); v != types.StringValue("Various") {
		t.Errorf("album artist = %v", v)
	}
	if rg := got.ReplayGain(); rg.TrackGain == nil || *rg.TrackGain != gain {
		t.Errorf("ReplayGain() = %+v", rg)
	}
}

func TestSerialize_Pictures(t *testing.T) {
	front := types.NewPicture("image/png", []byte("\x89PNG\r\n\x1a\nfront"), nil)
	desc := "back side"
	back := types.NewPictureOfType(types.PictureBackCover, "image/jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0}, &desc)

	a := open(t, taggedFLAC("TITLE=x"), registry.OpenOptions{}).Adapter
	if w := a.SetPictures([]types.Picture{front, back}); len(w) != 0 {
		t.Fatalf("SetPictures() warnings = %v", w)
	}
	pics := open(t, serialize(t, a), registry.OpenOptions{}).Adapter.Pictures()
	if len(pics) != 2 {
		t.Fatalf("pictures = %d, want 2", len(pics))
	}
	if !pics[0].Equal(front) || !pics[1].Equal(back) {
		t.Errorf("pictures = %v", pics)
	}
}

func TestOpen_NoComments(t *testing.T) {
	bare := testutil.FLAC(44100, 2, 16, 44100)

	t.Run("creates comment block on write", func(t *testing.T) {
		a := open(t, bare, registry.OpenOptions{}).Adapter
		if got := serialize(t, a); !bytes.Equal(got, bare) {
			t.Error("untouched empty tag should not change the file")
		}
		_ = a.WriteField(types.FieldArtist, types.StringValue("Someone"))
		out := serialize(t, a)
		if got := open(t, out, registry.OpenOptions{}).Adapter.ReadField(types.FieldArtist); got != types.StringValue("Someone") {
			t.Errorf("artist = %v", got)
		}
	})

	t.Run("require tag", func(t *testing.T) {
		sr := binutil.NewSafeReader(bytes.NewReader(bare), int64(len(bare)), "bare.flac")
		if _, err := (codec{}).Open(sr, registry.OpenOptions{RequireTag: true}); !errors.Is(err, registry.ErrNoTag) {
			t.Errorf("Open() error = %v, want ErrNoTag", err)
		}
	})
}

func TestOpen_ID3v2Prefix(t *testing.T) {
	prefix := testutil.ID3v2([2]string{"TIT2", "ignored"})
	data := append(append([]byte{}, prefix...), taggedFLAC("TITLE=Inside")...)

	a := open(t, data, registry.OpenOptions{}).Adapter
	if got := a.ReadField(types.FieldTitle); got != types.StringValue("Inside") {
		t.Errorf("title = %v", got)
	}
	_ = a.WriteField(types.FieldTitle, types.StringValue("Changed"))
	if out := serialize(t, a); !bytes.HasPrefix(out, prefix) {
		t.Error("ID3v2 prefix should be preserved")
	}
}

func TestOpen_Corrupt(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"bad magic", []byte("fLaX\x80\x00\x00\x00")},
		{"truncated block", []byte("fLaC\x80\x00\x00\x22\x00\x00")},
		{"missing STREAMINFO", []byte("fLaC\x84\x00\x00\x08\x00\x00\x00\x00\x00\x00\x00\x00")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sr := binutil.NewSafeReader(bytes.NewReader(tt.data), int64(len(tt.data)), "bad.flac")
			_, err := codec{}.Open(sr, registry.OpenOptions{})
			var corrupt *types.CorruptedFileError
			if !errors.As(err, &corrupt) {
				t.Errorf("Open() error = %v, want CorruptedFileError", err)
			}
		})
	}
}

func TestOpen_BadPictureBlock(t *testing.T) {
	data := testutil.FLAC(44100, 2, 16, 44100,
		testutil.FLACBlock{Type: testutil.FLACPicture, Data: []byte{0, 0, 0, 3}},
	)
	opened := open(t, data, registry.OpenOptions{})
	if len(opened.Warnings) != 1 || opened.Warnings[0].Stage != "pictures" {
		t.Errorf("Warnings = %v", opened.Warnings)
	}
	if len(opened.Adapter.Pictures()) != 0 {
		t.Error("undecodable picture should be skipped")
	}
}

func TestMetadata_BlockOrder(t *testing.T) {
	data := testutil.FLAC(44100, 2, 16, 44100,
		testutil.FLACBlock{Type: testutil.FLACSeekTable, Data: make([]byte, 18)},
		testutil.FLACBlock{Type: testutil.FLACPadding, Data: make([]byte, 64)},
	)
	a := open(t, data, registry.OpenOptions{}).Adapter.(*file)
	_ = a.WriteField(types.FieldTitle, types.StringValue("x"))

	meta, err := a.metadata()
	if err != nil {
		t.Fatal(err)
	}
	var order []int
	for _, b := range meta {
		order = append(order, int(b.Type))
	}
	want := []int{0, 4, 3, 1}
	if len(order) != len(want) {
		t.Fatalf("block order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("block order = %v, want %v", order, want)
		}
	}
}

func BenchmarkOpen(b *testing.B) {
	pic := vorbis.EncodePicture(types.NewPicture("image/jpeg", bytes.Repeat([]byte{0xFF}, 4096), nil))
	data := testutil.FLAC(44100, 2, 16, 44100,
		testutil.FLACBlock{Type: testutil.FLACVorbisComment, Data: testutil.VorbisComments("bench", "TITLE=Bench")},
		testutil.FLACBlock{Type: testutil.FLACPicture, Data: pic},
	)
	b.ReportAllocs()
	for b.Loop() {
		sr := binutil.NewSafeReader(bytes.NewReader(data), int64(len(data)), "bench.flac")
		if _, err := (codec{}).Open(sr, registry.OpenOptions{}); err != nil {
			b.Fatal(err)
		}
	}
}
