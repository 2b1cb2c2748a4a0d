package riscv

import "math"

// Float16ToFloat32 widens an IEEE binary16 value. The conversion is exact.
func Float16ToFloat32(h uint16) float32 {
	sign := uint32(h>>15) << 31
	exp := uint32(h>>10) & 0x1f
	frac := uint32(h) & 0x3ff

	switch {
	case exp == 0x1f:
		if frac != 0 {
			return math.Float32frombits(sign | 0x7f800000 | frac<<13 | 0x400000)
		}
		return math.Float32frombits(sign | 0x7f800000)
	case exp == 0:
		if frac == 0 {
			return math.Float32frombits(sign)
		}
		// subnormal, normalise
		e := uint32(127 - 15 + 1)
		for frac&0x400 == 0 {
			frac <<= 1
			e--
		}
		frac &= 0x3ff
		return math.Float32frombits(sign | e<<23 | frac<<13)
	}
	return math.Float32frombits(sign | (exp+127-15)<<23 | frac<<13)
}

// Float32ToFloat16 narrows a binary32 value, rounding to nearest even. The
// second result reports whether the conversion was inexact.
func Float32ToFloat16(f float32) (uint16, bool) {
	return Float64ToFloat16(float64(f), RoundNearestEven)
}

// Float64ToFloat16 narrows a binary64 value with the given rounding mode
func Float64ToFloat16(f float64, rm RoundingMode) (uint16, bool) {
	b := math.Float64bits(f)
	sign := uint16(b>>63) << 15
	if math.IsNaN(f) {
		return 0x7e00, false
	}
	if math.IsInf(f, 0) {
		return sign | 0x7c00, false
	}
	a := math.Abs(f)
	if a == 0 {
		return sign, false
	}
	// scale into units of the smallest subnormal (2^-24) or of the
	// mantissa lsb for normals
	exp := math.Ilogb(a)
	if exp < -14 {
		exp = -14
	}
	ulp := math.Ldexp(1, exp-10)
	q := a / ulp
	r := roundWith(q, rm, sign != 0)
	inexact := r != q
	m := uint64(r)
	if m >= 0x800 {
		// mantissa carried into the next binade
		m >>= 1
		exp++
	}
	if exp > 15 {
		if overflowToMax(rm, sign != 0) {
			return sign | 0x7bff, true
		}
		return sign | 0x7c00, true
	}
	if m < 0x400 {
		// subnormal or zero
		return sign | uint16(m), inexact
	}
	return sign | uint16(exp+15)<<10 | uint16(m&0x3ff), inexact
}

// BF16ToFloat32 widens a bfloat16 value, exact
func BF16ToFloat32(h uint16) float32 {
	return math.Float32frombits(uint32(h) << 16)
}

// Float32ToBF16 narrows to bfloat16 with the given rounding mode
func Float32ToBF16(f float32, rm RoundingMode) (uint16, bool) {
	b := math.Float32bits(f)
	if f != f {
		return 0x7fc0, false
	}
	upper := uint16(b >> 16)
	lower := b & 0xffff
	if lower == 0 {
		return upper, false
	}
	neg := b>>31 != 0
	up := false
	switch rm {
	case RoundNearestEven:
		up = lower > 0x8000 || (lower == 0x8000 && upper&1 == 1)
	case RoundNearestMaxMagnitude:
		up = lower >= 0x8000
	case RoundUp:
		up = !neg
	case RoundDown:
		up = neg
	}
	if up {
		upper++
	}
	return upper, true
}

func overflowToMax(rm RoundingMode, neg bool) bool {
	switch rm {
	case RoundTowardZero:
		return true
	case RoundDown:
		return !neg
	case RoundUp:
		return neg
	}
	return false
}
