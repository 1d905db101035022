package keyed

import (
	"math"
	"strconv"
	"strings"

	"github.com/simonhull/audiotag/internal/types"
)

// Schema maps canonical fields onto the keys of one text tag scheme.
type Schema struct {
	// Keys lists the storage keys per field. The first key is written;
	// all of them are consulted on read.
	Keys map[types.Field][]string

	// Packed stores track and disc positions as a single "N/M" value under
	// the key of FieldTrackNumber / FieldDiscNumber. Total fields then need
	// no key of their own.
	Packed bool

	// Scheme names the tag type in error messages.
	Scheme types.TagType
}

// Supports reports whether the schema can store f.
func (sc *Schema) Supports(f types.Field) bool {
	if sc.Packed {
		switch f {
		case types.FieldTrackTotal:
			return len(sc.Keys[types.FieldTrackNumber]) > 0
		case types.FieldDiscsTotal:
			return len(sc.Keys[types.FieldDiscNumber]) > 0
		}
	}
	return len(sc.Keys[f]) > 0
}

// positionOf returns the number field that shares storage with a total.
func positionOf(f types.Field) (types.Field, bool) {
	switch f {
	case types.FieldTrackNumber, types.FieldTrackTotal:
		return types.FieldTrackNumber, true
	case types.FieldDiscNumber, types.FieldDiscsTotal:
		return types.FieldDiscNumber, true
	default:
		return f, false
	}
}

func isTotal(f types.Field) bool {
	return f == types.FieldTrackTotal || f == types.FieldDiscsTotal
}

// Read returns the field's value, or null when absent or unparsable.
func (sc *Schema) Read(s *Store, f types.Field) types.Value {
	if !sc.Supports(f) {
		return types.Null()
	}

	if pos, ok := positionOf(f); ok {
		return sc.readPosition(s, f, pos)
	}

	raw, ok := s.FirstOf(sc.Keys[f]...)
	if !ok {
		return types.Null()
	}
	switch {
	case f == types.FieldRating:
		return ParseRating(raw)
	case f == types.FieldYear:
		return ParseYear(raw)
	case f.Numeric():
		return ParseInt(raw)
	default:
		return types.StringValue(raw)
	}
}

func (sc *Schema) readPosition(s *Store, f, pos types.Field) types.Value {
	if !sc.Packed && isTotal(f) {
		if raw, ok := s.FirstOf(sc.Keys[f]...); ok {
			return ParseInt(raw)
		}
	}
	raw, ok := s.FirstOf(sc.Keys[pos]...)
	if !ok {
		return types.Null()
	}
	num, total := SplitPair(raw)
	if isTotal(f) {
		return total
	}
	return num
}

// Write stores a normalized value; null removes the field.
func (sc *Schema) Write(s *Store, f types.Field, v types.Value) error {
	if !sc.Supports(f) {
		return nil
	}

	if pos, ok := positionOf(f); ok {
		sc.writePosition(s, f, pos, v)
		return nil
	}

	keys := sc.Keys[f]
	for _, alias := range keys[1:] {
		s.Delete(alias)
	}
	if v.IsNull() {
		s.Delete(keys[0])
		return nil
	}

	switch f {
	case types.FieldRating:
		n, _ := v.Int()
		s.Set(keys[0], FormatRating(n))
	default:
		s.Set(keys[0], v.String())
	}
	return nil
}

func (sc *Schema) writePosition(s *Store, f, pos types.Field, v types.Value) {
	posKeys := sc.Keys[pos]
	var num, total types.Value
	if raw, ok := s.FirstOf(posKeys...); ok {
		num, total = SplitPair(raw)
	}

	if !sc.Packed {
		totalField := types.FieldTrackTotal
		if pos == types.FieldDiscNumber {
			totalField = types.FieldDiscsTotal
		}
		totalKeys := sc.Keys[totalField]

		if isTotal(f) {
			setOrDelete(s, totalKeys, v)
			// A total embedded in the number ("3/12") would shadow the new
			// value on the next read.
			if !total.IsNull() {
				setOrDelete(s, posKeys, num)
			}
			return
		}
		// Move an embedded total into its own key before overwriting.
		if !total.IsNull() {
			if _, ok := s.FirstOf(totalKeys...); !ok && len(totalKeys) > 0 {
				s.Set(totalKeys[0], total.String())
			}
		}
		setOrDelete(s, posKeys, v)
		return
	}

	if isTotal(f) {
		total = v
	} else {
		num = v
	}
	setOrDelete(s, posKeys, JoinPair(num, total))
}

func setOrDelete(s *Store, keys []string, v types.Value) {
	for _, alias := range keys[1:] {
		s.Delete(alias)
	}
	if v.IsNull() {
		s.Delete(keys[0])
		return
	}
	s.Set(keys[0], v.String())
}

// SplitPair parses "N", "N/M", or "/M".
func SplitPair(raw string) (num, total types.Value) {
	n, m, hasTotal := strings.Cut(strings.TrimSpace(raw), "/")
	num = ParseInt(n)
	if hasTotal {
		total = ParseInt(m)
	}
	return num, total
}

// JoinPair renders a position pair as "N/M", "N", or "/M". Both null
// yields null.
func JoinPair(num, total types.Value) types.Value {
	switch {
	case num.IsNull() && total.IsNull():
		return types.Null()
	case total.IsNull():
		return types.StringValue(num.String())
	case num.IsNull():
		return types.StringValue("/" + total.String())
	default:
		return types.StringValue(num.String() + "/" + total.String())
	}
}

// ParseInt reads the leading decimal digits of raw, or null when there are none.
func ParseInt(raw string) types.Value {
	raw = strings.TrimSpace(raw)
	end := 0
	for end < len(raw) && raw[end] >= '0' && raw[end] <= '9' {
		end++
	}
	if end == 0 {
		return types.Null()
	}
	n, err := strconv.Atoi(raw[:end])
	if err != nil {
		return types.Null()
	}
	return types.IntValue(n)
}

// ParseYear extracts the year from "2024", "2024-05-01", or "2024-05-01T10:00".
func ParseYear(raw string) types.Value {
	v := ParseInt(raw)
	if n, ok := v.Int(); ok && n > types.MaxYear {
		// Compact dates such as "20240501".
		s := strconv.Itoa(n)
		if len(s) >= 4 {
			y, _ := strconv.Atoi(s[:4])
			return types.IntValue(y)
		}
	}
	return v
}

// FormatRating stores 1..5 stars on a 0..100 scale.
func FormatRating(stars int) string {
	return strconv.Itoa(stars * 20)
}

// ParseRating accepts either 1..5 stars or a 0..100 percentage.
func ParseRating(raw string) types.Value {
	v := ParseInt(raw)
	n, ok := v.Int()
	if !ok || n <= 0 {
		return types.Null()
	}
	if n <= 5 {
		return types.IntValue(n)
	}
	if n > 100 {
		return types.Null()
	}
	stars := int(math.Round(float64(n) / 20))
	return types.IntValue(min(max(stars, 1), 5))
}

// ReadReplayGain collects the four ReplayGain values stored under the keys
// that keyOf derives from the standard ones. Values that do not parse are
// skipped.
func ReadReplayGain(s *Store, keyOf func(string) string) types.ReplayGain {
	var rg types.ReplayGain
	for _, e := range rg.Entries() {
		raw, ok := s.First(keyOf(e.Key))
		if !ok {
			continue
		}
		if v, ok := types.ParseReplayGain(raw); ok {
			rg.Set(e.Key, &v)
		}
	}
	return rg
}

// WriteReplayGain stores the four ReplayGain values under the keys keyOf
// derives from the standard ones ("REPLAYGAIN_TRACK_GAIN" for Vorbis,
// "----:com.apple.iTunes:REPLAYGAIN_TRACK_GAIN" for MP4).
func WriteReplayGain(s *Store, rg types.ReplayGain, keyOf func(string) string) {
	for _, e := range rg.Entries() {
		key := keyOf(e.Key)
		if e.Value == nil {
			s.Delete(key)
			continue
		}
		s.Set(key, types.FormatReplayGain(e))
	}
}
