// Package ibm converts between IBM System/360 hexadecimal floating point
// and float64. Edition 1 carries its reference values and vertical
// coordinate parameters in this format.
package ibm

import "math"

// ToFloat64 decodes a single precision hexadecimal float from its 32-bit
// representation.
//
// The layout is one sign bit, a 7-bit excess-64 base-16 exponent, and a
// 24-bit fraction: R = (-1)^s * 2^-24 * B * 16^(A-64).
func ToFloat64(bits uint32) float64 {
	a := (bits >> 24) & 0x7F
	b := bits & 0xFFFFFF

	out := math.Ldexp(float64(b), 4*(int(a)-64)-24)
	if bits&0x80000000 != 0 {
		return -out
	}

	return out
}

// FromFloat64 encodes v into the 32-bit hexadecimal float representation,
// rounding the fraction to the nearest representable value.
//
// Values beyond the format's range saturate at the largest magnitude; zero
// encodes as all-zero bits.
func FromFloat64(v float64) uint32 {
	if v == 0 || math.IsNaN(v) {
		return 0
	}

	var sign uint32
	if v < 0 {
		sign = 0x80000000
		v = -v
	}

	// Choose the smallest base-16 exponent that keeps the 24-bit fraction
	// in range, then round.
	frac, exp2 := math.Frexp(v)

	// 16^e = 2^(4e); pick e so the fraction falls in [1/16, 1).
	exp16 := (exp2 + 3) >> 2
	frac = math.Ldexp(frac, exp2-4*exp16)

	a := exp16 + 64
	b := uint32(math.RoundToEven(frac * (1 << 24)))

	// Rounding can carry the fraction to 2^24; renormalize.
	if b >= 1<<24 {
		b >>= 4
		a++
	}

	if a < 0 {
		return sign // underflow to zero magnitude
	}
	if a > 0x7F {
		return sign | 0x7FFFFFFF // saturate
	}

	return sign | uint32(a)<<24 | b //nolint:gosec
}
