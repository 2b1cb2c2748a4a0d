package riscv

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func scaled(mant float64, exp int) *big.Float {
	return new(big.Float).SetMantExp(big.NewFloat(mant), exp)
}

func TestRoundExact(t *testing.T) {
	tests := []struct {
		name      string
		x         *big.Float
		sticky    bool
		expBits   uint
		fracBits  uint
		rm        RoundingMode
		wantBits  uint64
		wantFlags uint64
	}{
		{"exact", big.NewFloat(1.5), false, 8, 23, RoundNearestEven, 0x3fc00000, 0},
		{"negative zero", new(big.Float).Neg(big.NewFloat(0)), false, 8, 23, RoundNearestEven, 0x80000000, 0},
		{"tie to even down", big.NewFloat(1 + 0x1p-24), false, 8, 23, RoundNearestEven, 0x3f800000, FlagInexact},
		{"tie to even up", big.NewFloat(1 + 0x3p-24), false, 8, 23, RoundNearestEven, 0x3f800002, FlagInexact},
		{"tie away", big.NewFloat(1 + 0x1p-24), false, 8, 23, RoundNearestMaxMagnitude, 0x3f800001, FlagInexact},
		{"sticky breaks the tie", big.NewFloat(1 + 0x1p-24), true, 8, 23, RoundNearestEven, 0x3f800001, FlagInexact},
		{"sticky toward zero", big.NewFloat(1), true, 8, 23, RoundTowardZero, 0x3f800000, FlagInexact},
		{"sticky up", big.NewFloat(1), true, 8, 23, RoundUp, 0x3f800001, FlagInexact},
		{"sticky down negative", big.NewFloat(-1), true, 8, 23, RoundDown, 0xbf800001, FlagInexact},
		{"largest subnormal", scaled(1-0x1p-23, -126), false, 8, 23, RoundNearestEven, 0x007fffff, 0},
		{"subnormal tie", scaled(1.5, -149), false, 8, 23, RoundNearestEven, 0x00000002, FlagInexact | FlagUnderflow},
		{"underflow to zero", scaled(1, -151), false, 8, 23, RoundNearestEven, 0, FlagInexact | FlagUnderflow},
		{"underflow up to min subnormal", scaled(1, -151), false, 8, 23, RoundUp, 0x00000001, FlagInexact | FlagUnderflow},
		{"rounds up to min normal", scaled(1-0x1p-25, -126), false, 8, 23, RoundNearestEven, 0x00800000, FlagInexact},
		{"stays below min normal", scaled(1-0x1p-25, -126), false, 8, 23, RoundTowardZero, 0x007fffff, FlagInexact | FlagUnderflow},
		{"overflow to infinity", big.NewFloat(math.MaxFloat32 * 2), false, 8, 23, RoundNearestEven, 0x7f800000, FlagOverflow | FlagInexact},
		{"overflow toward zero", big.NewFloat(math.MaxFloat32 * 2), false, 8, 23, RoundTowardZero, 0x7f7fffff, FlagOverflow | FlagInexact},
		{"negative overflow rounding up", big.NewFloat(-math.MaxFloat32 * 2), false, 8, 23, RoundUp, 0xff7fffff, FlagOverflow | FlagInexact},
		{"carry into overflow", big.NewFloat(65520), false, 5, 10, RoundNearestEven, 0x7c00, FlagOverflow | FlagInexact},
		{"largest half", big.NewFloat(65504), false, 5, 10, RoundNearestEven, 0x7bff, 0},
		{"double", big.NewFloat(0.1), false, 11, 52, RoundNearestEven, math.Float64bits(0.1), 0},
		{"double sticky up", big.NewFloat(1), true, 11, 52, RoundUp, 0x3ff0000000000001, FlagInexact},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			bits, flags := RoundExact(tc.x, tc.sticky, tc.expBits, tc.fracBits, tc.rm)
			assert.Equal(t, tc.wantBits, bits)
			assert.Equal(t, tc.wantFlags, flags)
		})
	}
}
