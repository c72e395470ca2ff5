package machine

import (
	"math"
)

// SIC/XE floating point layout, from the most significant bit:
//
//	s: 1 bit sign
//	e: 11 bit exponent, excess 1024
//	f: 36 bit fraction, normalized so that 0.5 <= f < 1
//
// value = (-1)^s * f * 2^(e-1024). Zero is all bits clear.
const (
	FLOAT_EXP_BIAS  = 1024
	FLOAT_EXP_MAX   = 0x7ff
	FLOAT_FRAC_BITS = 36
	FLOAT_FRAC_MASK = (uint64(1) << FLOAT_FRAC_BITS) - 1
)

// Float48 encodes a value in the 6 byte SIC/XE float format.
// Values too small to represent encode as zero, values too large saturate.
func Float48(value float64) (data [FLOAT_SIZE]byte) {
	if value == 0 || math.IsNaN(value) {
		return
	}

	var bits uint64
	if math.Signbit(value) {
		bits |= 1 << 47
		value = -value
	}

	frac, exp := math.Frexp(value)
	exp += FLOAT_EXP_BIAS
	switch {
	case exp < 0:
		return
	case exp > FLOAT_EXP_MAX || math.IsInf(value, 0):
		bits |= uint64(FLOAT_EXP_MAX)<<FLOAT_FRAC_BITS | FLOAT_FRAC_MASK
	default:
		bits |= uint64(exp)<<FLOAT_FRAC_BITS | uint64(math.Ldexp(frac, FLOAT_FRAC_BITS))&FLOAT_FRAC_MASK
	}

	for n := range FLOAT_SIZE {
		data[n] = byte(bits >> (8 * (FLOAT_SIZE - 1 - n)))
	}

	return
}

// FloatValue decodes a 6 byte SIC/XE float.
func FloatValue(data [FLOAT_SIZE]byte) (value float64) {
	var bits uint64
	for _, b := range data {
		bits = bits<<8 | uint64(b)
	}

	frac := bits & FLOAT_FRAC_MASK
	if frac == 0 {
		return
	}

	exp := int((bits >> FLOAT_FRAC_BITS) & FLOAT_EXP_MAX)
	value = math.Ldexp(float64(frac), exp-FLOAT_EXP_BIAS-FLOAT_FRAC_BITS)
	if bits&(1<<47) != 0 {
		value = -value
	}

	return
}
