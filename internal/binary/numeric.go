package binary

import "math"

// Synchsafe decodes a 28-bit ID3v2 synchsafe integer from four bytes.
func Synchsafe(b []byte) uint32 {
	return uint32(b[0]&0x7F)<<21 | uint32(b[1]&0x7F)<<14 | uint32(b[2]&0x7F)<<7 | uint32(b[3]&0x7F)
}

// AppendSynchsafe appends v as a four-byte synchsafe integer.
func AppendSynchsafe(b []byte, v uint32) []byte {
	return append(b, byte(v>>21)&0x7F, byte(v>>14)&0x7F, byte(v>>7)&0x7F, byte(v)&0x7F)
}

// Extended decodes an IEEE 754 80-bit extended float, as used by the AIFF
// COMM chunk for sample rates.
func Extended(b []byte) float64 {
	exp := int(b[0]&0x7F)<<8 | int(b[1])
	mant := Decode[uint64](b[2:10], BigEndian)
	if exp == 0 && mant == 0 {
		return 0
	}
	v := math.Ldexp(float64(mant), exp-16383-63)
	if b[0]&0x80 != 0 {
		v = -v
	}
	return v
}

// AppendExtended appends v as an 80-bit extended float.
func AppendExtended(b []byte, v float64) []byte {
	if v == 0 {
		return append(b, make([]byte, 10)...)
	}
	var sign uint16
	if v < 0 {
		sign = 0x8000
		v = -v
	}
	frac, exp := math.Frexp(v) // v = frac * 2^exp, frac in [0.5, 1)
	mant := uint64(math.Ldexp(frac, 64))
	b = Encode(b, sign|uint16(exp-1+16383), BigEndian)
	return Encode(b, mant, BigEndian)
}
