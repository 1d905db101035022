package vorbis

import (
	"encoding/base64"
	"testing"

	"github.com/go-flac/flacvorbis"

	"github.com/simonhull/audiotag/internal/types"
)

func reparse(t *testing.T, c *Comments) *Comments {
	t.Helper()
	out, warnings, err := Parse(c.Encode())
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("Parse() warnings = %v", warnings)
	}
	return out
}

func TestComments_Fields(t *testing.T) {
	tests := []struct {
		name    string
		comment [2]string
		field   types.Field
		want    types.Value
	}{
		{"title", [2]string{"TITLE", "Test Song"}, types.FieldTitle, types.StringValue("Test Song")},
		{"lowercase key", [2]string{"artist", "Test Artist"}, types.FieldArtist, types.StringValue("Test Artist")},
		{"album artist", [2]string{"ALBUMARTIST", "Various Artists"}, types.FieldAlbumArtist, types.StringValue("Various Artists")},
		{"date full", [2]string{"DATE", "2024-05-15"}, types.FieldYear, types.IntValue(2024)},
		{"year alias", [2]string{"YEAR", "1999"}, types.FieldYear, types.IntValue(1999)},
		{"track number", [2]string{"TRACKNUMBER", "5"}, types.FieldTrackNumber, types.IntValue(5)},
		{"embedded total", [2]string{"TRACKNUMBER", "5/12"}, types.FieldTrackTotal, types.IntValue(12)},
		{"totaltracks", [2]string{"TOTALTRACKS", "15"}, types.FieldTrackTotal, types.IntValue(15)},
		{"totaldiscs", [2]string{"TOTALDISCS", "4"}, types.FieldDiscsTotal, types.IntValue(4)},
		{"organization", [2]string{"ORGANIZATION", "Sony Music"}, types.FieldPublisher, types.StringValue("Sony Music")},
		{"description", [2]string{"DESCRIPTION", "Great album!"}, types.FieldComment, types.StringValue("Great album!")},
		{"unsynced lyrics", [2]string{"UNSYNCEDLYRICS", "La la la"}, types.FieldLyrics, types.StringValue("La la la")},
		{"rating percent", [2]string{"RATING", "80"}, types.FieldRating, types.IntValue(4)},
		{"rating stars", [2]string{"RATING", "2"}, types.FieldRating, types.IntValue(2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New()
			c.Store().Add(tt.comment[0], tt.comment[1])
			if got := reparse(t, c).ReadField(tt.field); got != tt.want {
				t.Errorf("ReadField(%s) = %v, want %v", tt.field, got, tt.want)
			}
		})
	}
}

func TestComments_WriteSeparateTotals(t *testing.T) {
	c := New()
	c.Store().Add("TRACKNUMBER", "3/9")

	if err := c.WriteField(types.FieldTrackNumber, types.IntValue(4)); err != nil {
		t.Fatal(err)
	}
	got := reparse(t, c)
	if v, _ := got.Store().First("TRACKNUMBER"); v != "4" {
		t.Errorf("TRACKNUMBER = %q, want 4", v)
	}
	if v := got.ReadField(types.FieldTrackTotal); v != types.IntValue(9) {
		t.Errorf("track total = %v, want 9", v)
	}
}

func TestComments_VendorAndOrder(t *testing.T) {
	c := New()
	c.Vendor = "reference libFLAC 1.4.3"
	c.Store().Add("TITLE", "a")
	c.Store().Add("ARTIST", "b")
	c.Store().Add("ARTIST", "c")

	got := reparse(t, c)
	if got.Vendor != c.Vendor {
		t.Errorf("Vendor = %q", got.Vendor)
	}
	items := got.Store().Items()
	if len(items) != 3 || items[0].Key != "TITLE" || items[2].Value != "c" {
		t.Errorf("items = %+v", items)
	}
}

func TestParse_MalformedComment(t *testing.T) {
	block := flacvorbis.MetaDataBlockVorbisComment{
		Vendor:   "test",
		Comments: []string{"TITLE=ok", "NOEQUALS", "=empty key"},
	}

	got, warnings, err := Parse(block.Marshal().Data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(warnings) != 2 {
		t.Errorf("warnings = %v, want 2", warnings)
	}
	if v := got.ReadField(types.FieldTitle); v != types.StringValue("ok") {
		t.Errorf("title = %v", v)
	}
}

func TestParse_Truncated(t *testing.T) {
	if _, _, err := Parse([]byte{10, 0, 0, 0, 'a'}); err == nil {
		t.Error("Parse() of truncated block should fail")
	}
}

func TestComments_ReplayGain(t *testing.T) {
	gain := -7.25
	c := New()
	c.Store().Add("replaygain_track_gain", "-3.00 dB")
	_ = c.SetReplayGain(types.ReplayGain{TrackGain: &gain})

	got := reparse(t, c)
	if v, _ := got.Store().First(types.KeyTrackGain); v != "-7.25 dB" {
		t.Errorf("gain = %q", v)
	}
	if got.Store().Len() != 1 {
		t.Errorf("store = %+v, want one item", got.Store().Items())
	}
}

func TestInlinePictures(t *testing.T) {
	desc := "front"
	pic := types.NewPicture("image/jpeg", []byte{0xFF, 0xD8, 0xFF, 0xDB}, &desc)

	c := New()
	c.Store().Add("TITLE", "x")
	c.SetPictures([]types.Picture{pic})

	got := mustParse(t, c.EncodeInline())
	if n := len(got.Store().Get(PictureKey)); n != 1 {
		t.Fatalf("%s comments = %d, want 1", PictureKey, n)
	}
	if warnings := got.TakeInlinePictures(); len(warnings) != 0 {
		t.Fatalf("TakeInlinePictures() warnings = %v", warnings)
	}
	pics := got.Pictures()
	if len(pics) != 1 || !pics[0].Equal(pic) {
		t.Errorf("pictures = %v, want %v", pics, pic)
	}
	if _, ok := got.Store().First(PictureKey); ok {
		t.Error("picture comment should be removed from the store")
	}
	if c.Store().Len() != 1 {
		t.Error("EncodeInline must not modify the store")
	}
}

func TestTakeInlinePictures_Invalid(t *testing.T) {
	c := New()
	c.Store().Add(PictureKey, "not base64!")
	c.Store().Add(PictureKey, base64.StdEncoding.EncodeToString([]byte{1, 2}))
	if warnings := c.TakeInlinePictures(); len(warnings) != 2 {
		t.Errorf("warnings = %v, want 2", warnings)
	}
	if len(c.Pictures()) != 0 {
		t.Error("no picture should decode")
	}
}

func mustParse(t *testing.T, body []byte) *Comments {
	t.Helper()
	c, _, err := Parse(body)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return c
}
