package id3

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/simonhull/audiotag/internal/binary"
	"github.com/simonhull/audiotag/internal/types"
)

func parseV1Bytes(t *testing.T, b []byte) *V1 {
	t.Helper()
	tag, err := ParseV1(binary.NewSafeReader(bytes.NewReader(b), int64(len(b)), "test.mp3"))
	if err != nil {
		t.Fatalf("ParseV1() error = %v", err)
	}
	return tag
}

func TestV1_RoundTrip(t *testing.T) {
	values := map[types.Field]types.Value{
		types.FieldTitle:       types.StringValue("Café"),
		types.FieldArtist:      types.StringValue("Artist"),
		types.FieldAlbum:       types.StringValue("Album"),
		types.FieldYear:        types.IntValue(1999),
		types.FieldComment:     types.StringValue("comment"),
		types.FieldTrackNumber: types.IntValue(7),
		types.FieldGenre:       types.StringValue("Jazz"),
	}

	tag := NewV1()
	for f, v := range values {
		if err := tag.WriteField(f, v); err != nil {
			t.Fatalf("WriteField(%s) error = %v", f, err)
		}
	}

	// Audio bytes before the tag must not confuse the parser.
	file := append(bytes.Repeat([]byte{0xFF}, 64), tag.Encode()...)
	got := parseV1Bytes(t, file)
	if got == nil {
		t.Fatal("ParseV1() found no tag")
	}
	for f, want := range values {
		if v := got.ReadField(f); v != want {
			t.Errorf("ReadField(%s) = %v, want %v", f, v, want)
		}
	}
}

func TestV1_Latin1OnDisk(t *testing.T) {
	tag := NewV1()
	_ = tag.WriteField(types.FieldTitle, types.StringValue("é"))
	b := tag.Encode()
	if b[3] != 0xE9 || b[4] != 0 {
		t.Errorf("title bytes = % x, want e9 00", b[3:5])
	}
}

func TestV1_Absent(t *testing.T) {
	tests := map[string][]byte{
		"short":  []byte("TAG"),
		"no tag": make([]byte, 200),
	}
	for name, b := range tests {
		t.Run(name, func(t *testing.T) {
			if got := parseV1Bytes(t, b); got != nil {
				t.Errorf("ParseV1() = %+v, want nil", got)
			}
		})
	}
}

func TestV1_Limits(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*V1)
		field types.Field
		value types.Value
	}{
		{"long title", nil, types.FieldTitle, types.StringValue(strings.Repeat("a", 31))},
		{"track over 255", nil, types.FieldTrackNumber, types.IntValue(256)},
		{"unknown genre", nil, types.FieldGenre, types.StringValue("Vaporwave Deluxe")},
		{"not latin-1", nil, types.FieldArtist, types.StringValue("日本")},
		{
			"comment too long for track",
			func(tag *V1) { _ = tag.WriteField(types.FieldTrackNumber, types.IntValue(1)) },
			types.FieldComment,
			types.StringValue(strings.Repeat("c", 29)),
		},
		{
			"track with long comment",
			func(tag *V1) { _ = tag.WriteField(types.FieldComment, types.StringValue(strings.Repeat("c", 30))) },
			types.FieldTrackNumber,
			types.IntValue(1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tag := NewV1()
			if tt.setup != nil {
				tt.setup(tag)
			}
			err := tag.WriteField(tt.field, tt.value)
			var invalid *types.InvalidValueError
			if !errors.As(err, &invalid) {
				t.Fatalf("WriteField() error = %v, want InvalidValueError", err)
			}
		})
	}
}

func TestV1_Unsupported(t *testing.T) {
	tag := NewV1()
	for _, f := range []types.Field{types.FieldAlbumArtist, types.FieldDiscNumber, types.FieldTrackTotal, types.FieldLyrics} {
		if tag.Supports(f) {
			t.Errorf("Supports(%s) = true", f)
		}
	}
	warnings := tag.SetPictures([]types.Picture{types.NewPicture("image/png", []byte{1}, nil)})
	if len(warnings) != 1 {
		t.Errorf("SetPictures warnings = %v, want 1", warnings)
	}
	if !tag.Empty() {
		t.Error("new tag should be empty")
	}
}

func TestV1_YearZero(t *testing.T) {
	tag := NewV1()
	if err := tag.WriteField(types.FieldYear, types.IntValue(0)); err != nil {
		t.Fatal(err)
	}
	got := parseV1Bytes(t, tag.Encode())
	if v := got.ReadField(types.FieldYear); v != types.IntValue(0) {
		t.Errorf("year = %v, want 0", v)
	}

	blank := NewV1()
	_ = blank.WriteField(types.FieldTitle, types.StringValue("Song"))
	got = parseV1Bytes(t, blank.Encode())
	if v := got.ReadField(types.FieldYear); !v.IsNull() {
		t.Errorf("year = %v, want null for an unset year", v)
	}
}
