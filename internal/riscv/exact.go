package riscv

import "math/big"

// RoundExact rounds a finite value once into the IEEE binary format with
// expBits exponent and fracBits fraction bits, returning the raw bits and
// the NX, UF and OF flags. sticky reports that x is the true value
// truncated toward zero with at least two bits to spare below the target
// precision. Tininess is detected after rounding.
func RoundExact(x *big.Float, sticky bool, expBits, fracBits uint, rm RoundingMode) (uint64, uint64) {
	neg := x.Signbit()
	var sign uint64
	if neg {
		sign = 1 << (expBits + fracBits)
	}
	if x.Sign() == 0 {
		return sign, 0
	}
	p := int(fracBits) + 1
	bias := 1<<(expBits-1) - 1
	emin := 1 - bias

	abs := new(big.Float).Abs(x)
	e := abs.MantExp(nil) - 1
	q := max(e, emin) - (p - 1)
	m, inexact := roundScaled(abs, q, sticky, neg, rm)
	if m == 1<<p {
		m >>= 1
		q++
	}

	var flags uint64
	if inexact {
		flags = FlagInexact
		if e < emin {
			tiny := true
			if e == emin-1 {
				// rounding may still reach 2^emin with an unbounded exponent
				u, _ := roundScaled(abs, e-(p-1), sticky, neg, rm)
				tiny = u < 1<<p
			}
			if tiny {
				flags |= FlagUnderflow
			}
		}
	}
	if m < 1<<(p-1) {
		return sign | m, flags
	}
	biased := q + p - 1 + bias
	expMax := uint64(1)<<expBits - 1
	if uint64(biased) >= expMax {
		flags |= FlagOverflow | FlagInexact
		if overflowToMax(rm, neg) {
			return sign | (expMax-1)<<fracBits | (1<<fracBits - 1), flags
		}
		return sign | expMax<<fracBits, flags
	}
	return sign | uint64(biased)<<fracBits | (m - 1<<(p-1)), flags
}

// roundScaled rounds abs/2^q to an integer under rm, neg being the sign of
// the value abs came from. The second result reports a discarded remainder.
func roundScaled(abs *big.Float, q int, sticky, neg bool, rm RoundingMode) (uint64, bool) {
	scaled := new(big.Float).SetMantExp(abs, -q)
	whole, _ := scaled.Int(nil)
	frac := new(big.Float).Sub(scaled, new(big.Float).SetInt(whole))
	m := whole.Uint64()
	inexact := sticky || frac.Sign() != 0
	half := frac.Cmp(big.NewFloat(0.5))
	if half == 0 && sticky {
		half = 1
	}
	var up bool
	switch rm {
	case RoundNearestEven:
		up = half > 0 || (half == 0 && m&1 == 1)
	case RoundNearestMaxMagnitude:
		up = half >= 0
	case RoundDown:
		up = inexact && neg
	case RoundUp:
		up = inexact && !neg
	}
	if up {
		m++
	}
	return m, inexact
}
