package safemath

import (
	"errors"
	"math/bits"
)

var ErrOverflow = errors.New("number overflow")

type Signed interface {
	~int8 | ~int16 | ~int32 | ~int64
}

func Add32(a, b uint32) (uint32, bool) {
	v, carry := bits.Add32(a, b, 0)
	return v, carry == 0
}

func Add64(a, b uint64) (uint64, bool) {
	v, carry := bits.Add64(a, b, 0)
	return v, carry == 0
}

func Sub32(a, b uint32) (uint32, bool) {
	v, carry := bits.Sub32(a, b, 0)
	return v, carry == 0
}

// Add wrapping signed add, ok is false when the true sum does not fit in T
func Add[T Signed](a, b T) (T, bool) {
	s := a + b
	if (a > 0 && b > 0 && s < 0) || (a < 0 && b < 0 && s >= 0) {
		return s, false
	}
	return s, true
}

// Sub wrapping signed subtract, ok is false when the true difference does not fit in T
func Sub[T Signed](a, b T) (T, bool) {
	d := a - b
	if (a >= 0 && b < 0 && d < 0) || (a < 0 && b > 0 && d >= 0) {
		return d, false
	}
	return d, true
}

// SatSigned clamps v to [-2^n, 2^n-1]. The second result reports whether
// clamping happened.
func SatSigned(v int64, n uint) (int64, bool) {
	if n >= 63 {
		return v, false
	}
	hi := int64(1)<<n - 1
	lo := -int64(1) << n
	switch {
	case v > hi:
		return hi, true
	case v < lo:
		return lo, true
	}
	return v, false
}

// SatUnsigned clamps v to [0, 2^n-1]
func SatUnsigned(v int64, n uint) (int64, bool) {
	if v < 0 {
		return 0, true
	}
	if n >= 63 {
		return v, false
	}
	hi := int64(1)<<n - 1
	if v > hi {
		return hi, true
	}
	return v, false
}

// SatUnsigned64 clamps an unsigned value to [0, 2^n-1]
func SatUnsigned64(v uint64, n uint) (uint64, bool) {
	if n >= 64 {
		return v, false
	}
	hi := uint64(1)<<n - 1
	if v > hi {
		return hi, true
	}
	return v, false
}

// Khm16 the Q15 saturating half multiply (a*b)>>15. -1.0 * -1.0 is the only
// product that does not fit and saturates to the largest positive value.
func Khm16(a, b int16) (int16, bool) {
	if a == -1<<15 && b == -1<<15 {
		return 1<<15 - 1, true
	}
	return int16(int32(a) * int32(b) >> 15), false
}

// Khm8 the Q7 form of Khm16
func Khm8(a, b int8) (int8, bool) {
	if a == -1<<7 && b == -1<<7 {
		return 1<<7 - 1, true
	}
	return int8(int16(a) * int16(b) >> 7), false
}

// Khm32 the Q31 form, used by the scalar word multiplies
func Khm32(a, b int32) (int32, bool) {
	if a == -1<<31 && b == -1<<31 {
		return 1<<31 - 1, true
	}
	return int32(int64(a) * int64(b) >> 31), false
}

// MulHi64 the upper half of the 128 bit signed product of a and b
func MulHi64(a, b int64) int64 {
	hi, _ := bits.Mul64(uint64(a), uint64(b))
	if a < 0 {
		hi -= uint64(b)
	}
	if b < 0 {
		hi -= uint64(a)
	}
	return int64(hi)
}

// MulHiSU64 the upper half of the 128 bit product of signed a and unsigned b
func MulHiSU64(a int64, b uint64) int64 {
	hi, _ := bits.Mul64(uint64(a), b)
	if a < 0 {
		hi -= b
	}
	return int64(hi)
}
