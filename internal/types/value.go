package types

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind is the dynamic type held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindInt
	KindFloat
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "integer"
	case KindFloat:
		return "float"
	default:
		return "null"
	}
}

// Value is a nullable string, integer, or float.
//
// The zero Value is null.
type Value struct {
	s    string
	f    float64
	i    int
	kind Kind
}

// Null returns the null value.
func Null() Value { return Value{} }

// StringValue wraps s.
func StringValue(s string) Value { return Value{kind: KindString, s: s} }

// IntValue wraps i.
func IntValue(i int) Value { return Value{kind: KindInt, i: i} }

// FloatValue wraps f.
func FloatValue(f float64) Value { return Value{kind: KindFloat, f: f} }

// Kind returns the held type.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Str returns the string and whether v holds one.
func (v Value) Str() (string, bool) { return v.s, v.kind == KindString }

// Int returns the integer and whether v holds one.
func (v Value) Int() (int, bool) { return v.i, v.kind == KindInt }

// Float returns the float and whether v holds one.
func (v Value) Float() (float64, bool) { return v.f, v.kind == KindFloat }

// String formats the held value. Null formats as "null".
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.s
	case KindInt:
		return strconv.Itoa(v.i)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	default:
		return "null"
	}
}

// MaxYear bounds the year field to four digits.
const MaxYear = 9999

// Normalize validates v against the field's semantic type and returns the
// canonical representation: String for text fields, Int for numeric ones.
// Null passes through unchanged, and an empty string becomes null.
func Normalize(f Field, v Value) (Value, error) {
	if !f.Valid() {
		return Value{}, &InvalidValueError{Field: f.String(), Value: v.String(), Reason: "unknown field"}
	}
	if v.IsNull() {
		return v, nil
	}

	if !f.Numeric() {
		if v.kind != KindString {
			return Value{}, invalid(f, v, fmt.Sprintf("expected string, got %s", v.kind))
		}
		if v.s == "" {
			return Null(), nil
		}
		return v, nil
	}

	n, err := integerOf(v)
	if err != nil {
		return Value{}, invalid(f, v, err.Error())
	}
	if n < 0 {
		return Value{}, invalid(f, v, "must not be negative")
	}
	switch f {
	case FieldYear:
		if n > MaxYear {
			return Value{}, invalid(f, v, fmt.Sprintf("year must be at most %d", MaxYear))
		}
	case FieldRating:
		if n < 1 || n > 5 {
			return Value{}, invalid(f, v, "rating must be an integer in [1, 5]")
		}
	}
	return IntValue(n), nil
}

func integerOf(v Value) (int, error) {
	switch v.kind {
	case KindInt:
		return v.i, nil
	case KindFloat:
		if v.f != math.Trunc(v.f) || math.IsInf(v.f, 0) || math.IsNaN(v.f) {
			return 0, fmt.Errorf("expected integer, got %v", v.f)
		}
		return int(v.f), nil
	case KindString:
		n, err := strconv.Atoi(strings.TrimSpace(v.s))
		if err != nil {
			return 0, fmt.Errorf("expected integer, got %q", v.s)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("expected integer, got %s", v.kind)
	}
}

func invalid(f Field, v Value, reason string) *InvalidValueError {
	return &InvalidValueError{Field: f.String(), Value: v.String(), Reason: reason}
}

// InvalidFor builds an InvalidValueError for adapter-specific storage limits.
func InvalidFor(f Field, v Value, reason string) error {
	return invalid(f, v, reason)
}
