package keyed

import (
	"strings"
	"testing"

	"github.com/simonhull/audiotag/internal/types"
)

var separate = &Schema{
	Scheme: types.TagVorbis,
	Keys: map[types.Field][]string{
		types.FieldTitle:       {"TITLE"},
		types.FieldYear:        {"DATE", "YEAR"},
		types.FieldTrackNumber: {"TRACKNUMBER"},
		types.FieldTrackTotal:  {"TRACKTOTAL", "TOTALTRACKS"},
		types.FieldDiscNumber:  {"DISCNUMBER"},
		types.FieldDiscsTotal:  {"DISCTOTAL"},
		types.FieldRating:      {"RATING"},
	},
}

var packed = &Schema{
	Scheme: types.TagAPE,
	Packed: true,
	Keys: map[types.Field][]string{
		types.FieldTitle:       {"Title"},
		types.FieldTrackNumber: {"Track"},
		types.FieldDiscNumber:  {"Disc"},
	},
}

func TestSchema_RoundTrip(t *testing.T) {
	schemas := map[string]*Schema{"separate": separate, "packed": packed}

	for name, sc := range schemas {
		t.Run(name, func(t *testing.T) {
			s := NewStore()
			values := map[types.Field]types.Value{
				types.FieldTitle:       types.StringValue("Song"),
				types.FieldTrackNumber: types.IntValue(3),
				types.FieldTrackTotal:  types.IntValue(12),
				types.FieldDiscNumber:  types.IntValue(1),
				types.FieldDiscsTotal:  types.IntValue(2),
			}
			for f, v := range values {
				if err := sc.Write(s, f, v); err != nil {
					t.Fatalf("Write(%s) error = %v", f, err)
				}
			}
			for f, want := range values {
				if got := sc.Read(s, f); got != want {
					t.Errorf("Read(%s) = %v, want %v", f, got, want)
				}
			}

			for f := range values {
				if err := sc.Write(s, f, types.Null()); err != nil {
					t.Fatalf("Write(%s, null) error = %v", f, err)
				}
				if got := sc.Read(s, f); !got.IsNull() {
					t.Errorf("after removal Read(%s) = %v, want null", f, got)
				}
			}
			if s.Len() != 0 {
				t.Errorf("store not empty after removals: %v", s.Items())
			}
		})
	}
}

func TestSchema_PackedStorage(t *testing.T) {
	s := NewStore()
	_ = packed.Write(s, types.FieldTrackTotal, types.IntValue(10))
	if v, _ := s.First("Track"); v != "/10" {
		t.Errorf("total only = %q, want /10", v)
	}
	_ = packed.Write(s, types.FieldTrackNumber, types.IntValue(4))
	if v, _ := s.First("Track"); v != "4/10" {
		t.Errorf("pair = %q, want 4/10", v)
	}
	if got := packed.Read(s, types.FieldTrackNumber); got != types.IntValue(4) {
		t.Errorf("number = %v", got)
	}
	_ = packed.Write(s, types.FieldTrackTotal, types.Null())
	if v, _ := s.First("Track"); v != "4" {
		t.Errorf("after total removal = %q, want 4", v)
	}
	if packed.Supports(types.FieldYear) {
		t.Error("packed schema has no year key")
	}
}

func TestSchema_EmbeddedTotal(t *testing.T) {
	s := NewStore(Item{Key: "TRACKNUMBER", Value: "3/12"})

	if got := separate.Read(s, types.FieldTrackTotal); got != types.IntValue(12) {
		t.Errorf("embedded total = %v, want 12", got)
	}

	_ = separate.Write(s, types.FieldTrackNumber, types.IntValue(5))
	if got := separate.Read(s, types.FieldTrackTotal); got != types.IntValue(12) {
		t.Errorf("total lost after number write: %v", got)
	}
	if v, _ := s.First("TRACKNUMBER"); v != "5" {
		t.Errorf("TRACKNUMBER = %q, want 5", v)
	}
}

func TestSchema_Year(t *testing.T) {
	tests := []struct {
		raw  string
		want types.Value
	}{
		{"2024", types.IntValue(2024)},
		{"2024-05-01", types.IntValue(2024)},
		{"20240501", types.IntValue(2024)},
		{"unknown", types.Null()},
	}
	for _, tt := range tests {
		s := NewStore(Item{Key: "DATE", Value: tt.raw})
		if got := separate.Read(s, types.FieldYear); got != tt.want {
			t.Errorf("year(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}

	s := NewStore(Item{Key: "YEAR", Value: "1999"})
	_ = separate.Write(s, types.FieldYear, types.IntValue(2001))
	if _, ok := s.First("YEAR"); ok {
		t.Error("alias key should be removed on write")
	}
	if v, _ := s.First("DATE"); v != "2001" {
		t.Errorf("DATE = %q", v)
	}
}

func TestRating(t *testing.T) {
	tests := []struct {
		raw  string
		want types.Value
	}{
		{"3", types.IntValue(3)},
		{"60", types.IntValue(3)},
		{"100", types.IntValue(5)},
		{"10", types.IntValue(1)},
		{"0", types.Null()},
		{"250", types.Null()},
	}
	for _, tt := range tests {
		if got := ParseRating(tt.raw); got != tt.want {
			t.Errorf("ParseRating(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
	for stars := 1; stars <= 5; stars++ {
		if got := ParseRating(FormatRating(stars)); got != types.IntValue(stars) {
			t.Errorf("rating %d round-trip = %v", stars, got)
		}
	}
}

func TestReplayGainKeys(t *testing.T) {
	s := NewStore(Item{Key: "replaygain_track_gain", Value: "-6.50 dB"}, Item{Key: "REPLAYGAIN_ALBUM_PEAK", Value: "junk"})
	rg := ReadReplayGain(s, strings.ToUpper)
	if rg.TrackGain == nil || *rg.TrackGain != -6.5 {
		t.Errorf("TrackGain = %v", rg.TrackGain)
	}
	if rg.AlbumPeak != nil {
		t.Error("unparsable peak should be absent")
	}

	peak := 0.75
	WriteReplayGain(s, types.ReplayGain{TrackPeak: &peak}, strings.ToLower)
	if _, ok := s.First("replaygain_track_gain"); ok {
		t.Error("nil gain should delete the key")
	}
	if v, _ := s.First("replaygain_track_peak"); v != "0.750000" {
		t.Errorf("peak = %q", v)
	}
}
