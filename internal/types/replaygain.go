package types

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ReplayGain holds loudness normalization data. Nil fields are absent.
type ReplayGain struct {
	TrackGain *float64
	TrackPeak *float64
	AlbumGain *float64
	AlbumPeak *float64
}

// IsZero reports whether no ReplayGain value is present.
func (rg ReplayGain) IsZero() bool {
	return rg.TrackGain == nil && rg.TrackPeak == nil && rg.AlbumGain == nil && rg.AlbumPeak == nil
}

// ReplayGain storage keys shared by ID3v2 TXXX frames, APE items, Vorbis
// comments, and MP4 freeform atoms.
const (
	KeyTrackGain = "REPLAYGAIN_TRACK_GAIN"
	KeyTrackPeak = "REPLAYGAIN_TRACK_PEAK"
	KeyAlbumGain = "REPLAYGAIN_ALBUM_GAIN"
	KeyAlbumPeak = "REPLAYGAIN_ALBUM_PEAK"
)

// ReplayGainEntry pairs a storage key with its field.
type ReplayGainEntry struct {
	Value *float64
	Key   string
	Gain  bool
}

// Entries lists the four values with their keys in a fixed order.
func (rg ReplayGain) Entries() []ReplayGainEntry {
	return []ReplayGainEntry{
		{Key: KeyTrackGain, Value: rg.TrackGain, Gain: true},
		{Key: KeyTrackPeak, Value: rg.TrackPeak},
		{Key: KeyAlbumGain, Value: rg.AlbumGain, Gain: true},
		{Key: KeyAlbumPeak, Value: rg.AlbumPeak},
	}
}

// Validate rejects NaN and infinite values, which have no text form any
// tag scheme can store.
func (rg ReplayGain) Validate() error {
	for _, e := range rg.Entries() {
		if e.Value == nil {
			continue
		}
		if v := *e.Value; math.IsNaN(v) || math.IsInf(v, 0) {
			return &InvalidValueError{
				Field:  strings.ToLower(e.Key),
				Value:  strconv.FormatFloat(v, 'g', -1, 64),
				Reason: "must be a finite number",
			}
		}
	}
	return nil
}

// Set assigns the value for a storage key. Unknown keys are ignored.
func (rg *ReplayGain) Set(key string, v *float64) {
	switch strings.ToUpper(key) {
	case KeyTrackGain:
		rg.TrackGain = v
	case KeyTrackPeak:
		rg.TrackPeak = v
	case KeyAlbumGain:
		rg.AlbumGain = v
	case KeyAlbumPeak:
		rg.AlbumPeak = v
	}
}

// FormatGain renders a gain such as "+1.50 dB".
func FormatGain(v float64) string {
	return fmt.Sprintf("%+.2f dB", v)
}

// FormatPeak renders a peak such as "0.988553".
func FormatPeak(v float64) string {
	return fmt.Sprintf("%.6f", v)
}

// FormatReplayGain renders an entry's value for storage.
func FormatReplayGain(e ReplayGainEntry) string {
	if e.Gain {
		return FormatGain(*e.Value)
	}
	return FormatPeak(*e.Value)
}

// ParseReplayGain parses a stored gain or peak. A trailing "dB" suffix in
// any case and surrounding whitespace are ignored.
func ParseReplayGain(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && strings.EqualFold(s[len(s)-2:], "db") {
		s = strings.TrimSpace(s[:len(s)-2])
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
