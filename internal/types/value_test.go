package types

import (
	"errors"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		field   Field
		in      Value
		want    Value
		wantErr bool
	}{
		{name: "text", field: FieldTitle, in: StringValue("Song"), want: StringValue("Song")},
		{name: "empty text removes", field: FieldComment, in: StringValue(""), want: Null()},
		{name: "null text", field: FieldTitle, in: Null(), want: Null()},
		{name: "int into text", field: FieldTitle, in: IntValue(5), wantErr: true},
		{name: "year int", field: FieldYear, in: IntValue(2024), want: IntValue(2024)},
		{name: "year numeric string", field: FieldYear, in: StringValue(" 2024 "), want: IntValue(2024)},
		{name: "year integral float", field: FieldYear, in: FloatValue(1999), want: IntValue(1999)},
		{name: "year fractional float", field: FieldYear, in: FloatValue(1999.5), wantErr: true},
		{name: "year non-numeric", field: FieldYear, in: StringValue("last year"), wantErr: true},
		{name: "year too large", field: FieldYear, in: IntValue(12345), wantErr: true},
		{name: "negative track", field: FieldTrackNumber, in: IntValue(-1), wantErr: true},
		{name: "track zero", field: FieldTrackNumber, in: IntValue(0), want: IntValue(0)},
		{name: "null track", field: FieldTrackTotal, in: Null(), want: Null()},
		{name: "rating 1", field: FieldRating, in: IntValue(1), want: IntValue(1)},
		{name: "rating 5", field: FieldRating, in: IntValue(5), want: IntValue(5)},
		{name: "rating 0", field: FieldRating, in: IntValue(0), wantErr: true},
		{name: "rating 6", field: FieldRating, in: IntValue(6), wantErr: true},
		{name: "unknown field", field: Field(99), in: StringValue("x"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.field, tt.in)
			if tt.wantErr {
				var ive *InvalidValueError
				if !errors.As(err, &ive) {
					t.Fatalf("Normalize() error = %v, want *InvalidValueError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Normalize() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Normalize() = %v (%s), want %v (%s)", got, got.Kind(), tt.want, tt.want.Kind())
			}
		})
	}
}

func TestValue_Accessors(t *testing.T) {
	var zero Value
	if !zero.IsNull() {
		t.Error("zero Value should be null")
	}
	if s, ok := StringValue("x").Str(); !ok || s != "x" {
		t.Errorf("Str() = %q, %v", s, ok)
	}
	if _, ok := StringValue("x").Int(); ok {
		t.Error("string value should not report an int")
	}
	if f, ok := FloatValue(-6.5).Float(); !ok || f != -6.5 {
		t.Errorf("Float() = %v, %v", f, ok)
	}
	if IntValue(7).String() != "7" || Null().String() != "null" {
		t.Error("String() formatting mismatch")
	}
}

func TestParseField(t *testing.T) {
	tests := []struct {
		in   string
		want Field
		ok   bool
	}{
		{"title", FieldTitle, true},
		{"albumArtist", FieldAlbumArtist, true},
		{"album_artist", FieldAlbumArtist, true},
		{"DISCS-TOTAL", FieldDiscsTotal, true},
		{"bpm", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseField(tt.in)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("ParseField(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}

	fields := Fields()
	if len(fields) != 18 {
		t.Fatalf("Fields() returned %d fields, want 18", len(fields))
	}
	for _, f := range fields {
		back, ok := ParseField(f.String())
		if !ok || back != f {
			t.Errorf("ParseField(%q) did not round-trip", f.String())
		}
	}
}
