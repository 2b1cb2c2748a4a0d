package riscv

import "math"

// RoundingMode the rm field of float instructions and the frm CSR
type RoundingMode uint8

const (
	RoundNearestEven         RoundingMode = 0 // RNE
	RoundTowardZero          RoundingMode = 1 // RTZ
	RoundDown                RoundingMode = 2 // RDN
	RoundUp                  RoundingMode = 3 // RUP
	RoundNearestMaxMagnitude RoundingMode = 4 // RMM
	RoundDynamic             RoundingMode = 7 // DYN, use frm
)

// Valid reports whether rm names a static rounding mode
func (rm RoundingMode) Valid() bool {
	return rm <= RoundNearestMaxMagnitude
}

// Round rounds f to an integral value
func (rm RoundingMode) Round(f float64) float64 {
	switch rm {
	case RoundTowardZero:
		return math.Trunc(f)
	case RoundDown:
		return math.Floor(f)
	case RoundUp:
		return math.Ceil(f)
	case RoundNearestMaxMagnitude:
		return math.Round(f)
	}
	return math.RoundToEven(f)
}

// roundWith rounds a magnitude whose sign is given separately
func roundWith(mag float64, rm RoundingMode, neg bool) float64 {
	switch rm {
	case RoundTowardZero:
		return math.Trunc(mag)
	case RoundDown:
		if neg {
			return math.Ceil(mag)
		}
		return math.Floor(mag)
	case RoundUp:
		if neg {
			return math.Floor(mag)
		}
		return math.Ceil(mag)
	case RoundNearestMaxMagnitude:
		return math.Round(mag)
	}
	return math.RoundToEven(mag)
}

// Float exception flags (fflags)
const (
	FlagInexact   uint64 = 1 << 0 // NX
	FlagUnderflow uint64 = 1 << 1 // UF
	FlagOverflow  uint64 = 1 << 2 // OF
	FlagDivZero   uint64 = 1 << 3 // DZ
	FlagInvalid   uint64 = 1 << 4 // NV
)

// ToInt32 converts with saturation as the fcvt.w.* instructions do
func ToInt32(f float64, rm RoundingMode) (int32, uint64) {
	if math.IsNaN(f) {
		return math.MaxInt32, FlagInvalid
	}
	r := rm.Round(f)
	switch {
	case r > math.MaxInt32:
		return math.MaxInt32, FlagInvalid
	case r < math.MinInt32:
		return math.MinInt32, FlagInvalid
	}
	return int32(r), inexact(r, f)
}

func ToUint32(f float64, rm RoundingMode) (uint32, uint64) {
	if math.IsNaN(f) {
		return math.MaxUint32, FlagInvalid
	}
	r := rm.Round(f)
	switch {
	case r > math.MaxUint32:
		return math.MaxUint32, FlagInvalid
	case r < 0:
		return 0, FlagInvalid
	}
	return uint32(r), inexact(r, f)
}

func ToInt64(f float64, rm RoundingMode) (int64, uint64) {
	if math.IsNaN(f) {
		return math.MaxInt64, FlagInvalid
	}
	r := rm.Round(f)
	switch {
	case r >= 0x1p63:
		return math.MaxInt64, FlagInvalid
	case r < -0x1p63:
		return math.MinInt64, FlagInvalid
	}
	return int64(r), inexact(r, f)
}

func ToUint64(f float64, rm RoundingMode) (uint64, uint64) {
	if math.IsNaN(f) {
		return math.MaxUint64, FlagInvalid
	}
	r := rm.Round(f)
	switch {
	case r >= 0x1p64:
		return math.MaxUint64, FlagInvalid
	case r < 0:
		return 0, FlagInvalid
	}
	return uint64(r), inexact(r, f)
}

func inexact(r, f float64) uint64 {
	if r != f {
		return FlagInexact
	}
	return 0
}

// Canonical quiet NaNs
const (
	CanonicalNaN16 uint16 = 0x7e00
	CanonicalNaN32 uint32 = 0x7fc00000
	CanonicalNaN64 uint64 = 0x7ff8000000000000
)

// Class values returned by fclass.*
const (
	ClassNegInf       uint64 = 1 << 0
	ClassNegNormal    uint64 = 1 << 1
	ClassNegSubnormal uint64 = 1 << 2
	ClassNegZero      uint64 = 1 << 3
	ClassPosZero      uint64 = 1 << 4
	ClassPosSubnormal uint64 = 1 << 5
	ClassPosNormal    uint64 = 1 << 6
	ClassPosInf       uint64 = 1 << 7
	ClassSignalingNaN uint64 = 1 << 8
	ClassQuietNaN     uint64 = 1 << 9
)

// Classify implements fclass for a format described by its exponent and
// fraction widths, given the raw bits
func Classify(bits uint64, expBits, fracBits uint) uint64 {
	sign := bits>>(expBits+fracBits)&1 == 1
	exp := bits >> fracBits & (1<<expBits - 1)
	frac := bits & (1<<fracBits - 1)
	expMax := uint64(1<<expBits - 1)
	switch {
	case exp == expMax && frac == 0:
		if sign {
			return ClassNegInf
		}
		return ClassPosInf
	case exp == expMax:
		if frac>>(fracBits-1) == 1 {
			return ClassQuietNaN
		}
		return ClassSignalingNaN
	case exp == 0 && frac == 0:
		if sign {
			return ClassNegZero
		}
		return ClassPosZero
	case exp == 0:
		if sign {
			return ClassNegSubnormal
		}
		return ClassPosSubnormal
	}
	if sign {
		return ClassNegNormal
	}
	return ClassPosNormal
}

// Float64ToFloat32 narrows a binary64 value with the given rounding mode,
// returning the accrued NX/OF/UF flags. NaNs become the canonical NaN.
func Float64ToFloat32(f float64, rm RoundingMode) (float32, uint64) {
	if math.IsNaN(f) {
		return math.Float32frombits(CanonicalNaN32), 0
	}
	if math.IsInf(f, 0) || f == 0 {
		return float32(f), 0
	}
	neg := f < 0
	a := math.Abs(f)
	exp := math.Ilogb(a)
	if exp < -126 {
		exp = -126
	}
	q := a / math.Ldexp(1, exp-23)
	r := roundWith(q, rm, neg)
	var flags uint64
	if r != q {
		flags |= FlagInexact
	}
	m := uint64(r)
	if m >= 1<<24 {
		m >>= 1
		exp++
	}
	if exp > 127 {
		v := float32(math.Inf(1))
		if overflowToMax(rm, neg) {
			v = math.MaxFloat32
		}
		if neg {
			v = -v
		}
		return v, FlagOverflow | FlagInexact
	}
	if m < 1<<23 && flags != 0 {
		flags |= FlagUnderflow
	}
	v := float32(math.Ldexp(float64(m), exp-23))
	if neg {
		v = -v
	}
	return v, flags
}

// IsSignalingNaN32 reports a signaling binary32 NaN
func IsSignalingNaN32(b uint32) bool {
	return b&0x7f800000 == 0x7f800000 && b&0x7fffff != 0 && b&0x400000 == 0
}

// IsSignalingNaN64 reports a signaling binary64 NaN
func IsSignalingNaN64(b uint64) bool {
	return b&0x7ff0000000000000 == 0x7ff0000000000000 && b&0xfffffffffffff != 0 && b&(1<<51) == 0
}

// IsSignalingNaN16 reports a signaling binary16 NaN
func IsSignalingNaN16(b uint16) bool {
	return b&0x7c00 == 0x7c00 && b&0x3ff != 0 && b&0x200 == 0
}
