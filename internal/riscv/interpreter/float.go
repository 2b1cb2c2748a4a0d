package interpreter

import (
	"math"
	"math/big"

	"github.com/eigerco/rvsim/internal/riscv"
)

// fpFormat describes one IEEE binary format. Operands widen exactly to
// float64; finite results are computed exactly in big.Float and rounded
// once into the format.
type fpFormat struct {
	expBits   uint
	fracBits  uint
	canonical uint64
	read      func(i *Instance, r riscv.Reg) uint64
	write     func(i *Instance, r riscv.Reg, bits uint64)
	toFloat   func(bits uint64) float64
	fromFloat func(f float64, rm riscv.RoundingMode) (bits uint64, flags uint64)
}

var (
	fmtS = &fpFormat{
		expBits:   8,
		fracBits:  23,
		canonical: uint64(riscv.CanonicalNaN32),
		read:      func(i *Instance, r riscv.Reg) uint64 { return uint64(i.f32(r)) },
		write:     func(i *Instance, r riscv.Reg, b uint64) { i.setF32(r, uint32(b)) },
		toFloat:   func(b uint64) float64 { return float64(math.Float32frombits(uint32(b))) },
		fromFloat: func(f float64, rm riscv.RoundingMode) (uint64, uint64) {
			v, flags := riscv.Float64ToFloat32(f, rm)
			return uint64(math.Float32bits(v)), flags
		},
	}
	fmtD = &fpFormat{
		expBits:   11,
		fracBits:  52,
		canonical: riscv.CanonicalNaN64,
		read:      func(i *Instance, r riscv.Reg) uint64 { return i.f64(r) },
		write:     func(i *Instance, r riscv.Reg, b uint64) { i.setF64(r, b) },
		toFloat:   math.Float64frombits,
		// only exact values and non-finite results are committed through here
		fromFloat: func(f float64, _ riscv.RoundingMode) (uint64, uint64) {
			if math.IsNaN(f) {
				return riscv.CanonicalNaN64, 0
			}
			return math.Float64bits(f), 0
		},
	}
	fmtH = &fpFormat{
		expBits:   5,
		fracBits:  10,
		canonical: uint64(riscv.CanonicalNaN16),
		read:      func(i *Instance, r riscv.Reg) uint64 { return uint64(i.f16(r)) },
		write:     func(i *Instance, r riscv.Reg, b uint64) { i.setF16(r, uint16(b)) },
		toFloat:   func(b uint64) float64 { return float64(riscv.Float16ToFloat32(uint16(b))) },
		fromFloat: func(f float64, rm riscv.RoundingMode) (uint64, uint64) {
			v, inexact := riscv.Float64ToFloat16(f, rm)
			var flags uint64
			if inexact {
				flags = riscv.FlagInexact
				if v&0x7fff == 0x7c00 {
					flags |= riscv.FlagOverflow
				}
			}
			return uint64(v), flags
		},
	}
)

func (f *fpFormat) signBit() uint64 {
	return 1 << (f.expBits + f.fracBits)
}

func (f *fpFormat) isNaN(b uint64) bool {
	expMask := uint64(1)<<f.expBits - 1
	return b>>f.fracBits&expMask == expMask && b&(1<<f.fracBits-1) != 0
}

func (f *fpFormat) isSignaling(b uint64) bool {
	return f.isNaN(b) && b&(1<<(f.fracBits-1)) == 0
}

// invalid the NV flag of an arithmetic result: a signaling operand or a NaN
// produced from non-NaN operands
func (f *fpFormat) invalid(result float64, operands ...uint64) uint64 {
	anyNaN := false
	for _, b := range operands {
		if f.isSignaling(b) {
			return riscv.FlagInvalid
		}
		anyNaN = anyNaN || f.isNaN(b)
	}
	if math.IsNaN(result) && !anyNaN {
		return riscv.FlagInvalid
	}
	return 0
}

// commit rounds a float64 result into the format and writes rd
func (i *Instance) commitFloat(f *fpFormat, rd riscv.Reg, v float64, rm riscv.RoundingMode, flags uint64) {
	bits, narrowFlags := f.fromFloat(v, rm)
	i.raiseFlags(flags | narrowFlags)
	f.write(i, rd, bits)
}

// Working precisions. exactPrec holds any sum of binary64 values and
// products without rounding, quoPrec leaves guard bits below binary64 for
// the truncated quotients and roots.
const (
	exactPrec = 4400
	quoPrec   = 128
)

func exact(v float64) *big.Float {
	return new(big.Float).SetPrec(exactPrec).SetFloat64(v)
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// zeroSum signs an exact zero sum: negative when both addends are -0, or
// when rounding down with addends of opposite sign
func zeroSum(z *big.Float, xneg, yneg bool, rm riscv.RoundingMode) {
	if z.Sign() != 0 {
		return
	}
	z.SetInt64(0)
	if (xneg && yneg) || (xneg != yneg && rm == riscv.RoundDown) {
		z.Neg(z)
	}
}

// commitExact rounds a finite result once into the format and writes rd
func (i *Instance) commitExact(f *fpFormat, rd riscv.Reg, x *big.Float, sticky bool, rm riscv.RoundingMode, flags uint64) {
	bits, roundFlags := riscv.RoundExact(x, sticky, f.expBits, f.fracBits, rm)
	i.raiseFlags(flags | roundFlags)
	f.write(i, rd, bits)
}

func fpLoad(f *fpFormat, size int) handler {
	return func(i *Instance, in *instr) (uint64, error) {
		v, err := i.load(in.pc, i.regs[riscv.Rs1(in.word)]+riscv.ImmI(in.word), size)
		if err != nil {
			return 0, err
		}
		f.write(i, riscv.Rd(in.word), v)
		return in.next, nil
	}
}

func fpStore(f *fpFormat, size int) handler {
	return func(i *Instance, in *instr) (uint64, error) {
		address := i.regs[riscv.Rs1(in.word)] + riscv.ImmS(in.word)
		if err := i.store(in.pc, address, size, f.read(i, riscv.Rs2(in.word))); err != nil {
			return 0, err
		}
		return in.next, nil
	}
}

type fpOp int

const (
	fpAdd fpOp = iota
	fpSub
	fpMul
	fpDiv
)

func fpArith(f *fpFormat, op fpOp) handler {
	return func(i *Instance, in *instr) (uint64, error) {
		rm, err := i.roundingMode(in)
		if err != nil {
			return 0, err
		}
		ab, bb := f.read(i, riscv.Rs1(in.word)), f.read(i, riscv.Rs2(in.word))
		a, b := f.toFloat(ab), f.toFloat(bb)
		rd := riscv.Rd(in.word)
		if finite(a, b) && (op != fpDiv || b != 0) {
			x, y := exact(a), exact(b)
			z := new(big.Float).SetPrec(exactPrec)
			sticky := false
			switch op {
			case fpAdd:
				zeroSum(z.Add(x, y), x.Signbit(), y.Signbit(), rm)
			case fpSub:
				zeroSum(z.Sub(x, y), x.Signbit(), !y.Signbit(), rm)
			case fpMul:
				z.Mul(x, y)
			case fpDiv:
				z.SetPrec(quoPrec).SetMode(big.ToZero).Quo(x, y)
				sticky = z.Acc() != big.Exact
			}
			i.commitExact(f, rd, z, sticky, rm, 0)
			return in.next, nil
		}
		// infinities, NaNs and division by zero come out exact in float64
		var v float64
		var flags uint64
		switch op {
		case fpAdd:
			v = a + b
		case fpSub:
			v = a - b
		case fpMul:
			v = a * b
		case fpDiv:
			v = a / b
			if b == 0 && a != 0 && !math.IsNaN(a) && !math.IsInf(a, 0) {
				flags |= riscv.FlagDivZero
			}
		}
		flags |= f.invalid(v, ab, bb)
		i.commitFloat(f, rd, v, rm, flags)
		return in.next, nil
	}
}

func fpSqrt(f *fpFormat) handler {
	return func(i *Instance, in *instr) (uint64, error) {
		rm, err := i.roundingMode(in)
		if err != nil {
			return 0, err
		}
		ab := f.read(i, riscv.Rs1(in.word))
		a := f.toFloat(ab)
		if finite(a) && a > 0 {
			x := exact(a)
			z := new(big.Float).SetPrec(quoPrec).SetMode(big.ToZero).Sqrt(x)
			// Sqrt does not report accuracy, squaring back does
			sq := new(big.Float).SetPrec(2*quoPrec).Mul(z, z)
			if sq.Cmp(x) > 0 {
				ulp := new(big.Float).SetMantExp(big.NewFloat(1), z.MantExp(nil)-quoPrec)
				z.Sub(z, ulp)
			}
			i.commitExact(f, riscv.Rd(in.word), z, sq.Cmp(x) != 0, rm, 0)
			return in.next, nil
		}
		v := math.Sqrt(a)
		i.commitFloat(f, riscv.Rd(in.word), v, rm, f.invalid(v, ab))
		return in.next, nil
	}
}

// fpFMA computes ±(rs1*rs2) ± rs3 with a single rounding
func fpFMA(f *fpFormat, negProduct, negAddend bool) handler {
	return func(i *Instance, in *instr) (uint64, error) {
		rm, err := i.roundingMode(in)
		if err != nil {
			return 0, err
		}
		ab := f.read(i, riscv.Rs1(in.word))
		bb := f.read(i, riscv.Rs2(in.word))
		cb := f.read(i, riscv.Rs3(in.word))
		a, b, c := f.toFloat(ab), f.toFloat(bb), f.toFloat(cb)
		if negProduct {
			a = -a
		}
		if negAddend {
			c = -c
		}
		if finite(a, b, c) {
			prod := new(big.Float).SetPrec(exactPrec).Mul(exact(a), exact(b))
			z := new(big.Float).SetPrec(exactPrec).Add(prod, exact(c))
			zeroSum(z, prod.Signbit(), math.Signbit(c), rm)
			i.commitExact(f, riscv.Rd(in.word), z, false, rm, 0)
			return in.next, nil
		}
		v := math.FMA(a, b, c)
		i.commitFloat(f, riscv.Rd(in.word), v, rm, f.invalid(v, ab, bb, cb))
		return in.next, nil
	}
}

type sgnjMode int

const (
	sgnjCopy sgnjMode = iota
	sgnjNegate
	sgnjXor
)

func fpSgnj(f *fpFormat, mode sgnjMode) handler {
	return func(i *Instance, in *instr) (uint64, error) {
		a := f.read(i, riscv.Rs1(in.word))
		b := f.read(i, riscv.Rs2(in.word))
		sign := f.signBit()
		var s uint64
		switch mode {
		case sgnjCopy:
			s = b & sign
		case sgnjNegate:
			s = ^b & sign
		case sgnjXor:
			s = (a ^ b) & sign
		}
		f.write(i, riscv.Rd(in.word), a&^sign|s)
		return in.next, nil
	}
}

func fpMinMax(f *fpFormat, isMax bool) handler {
	return func(i *Instance, in *instr) (uint64, error) {
		ab := f.read(i, riscv.Rs1(in.word))
		bb := f.read(i, riscv.Rs2(in.word))
		if f.isSignaling(ab) || f.isSignaling(bb) {
			i.raiseFlags(riscv.FlagInvalid)
		}
		a, b := f.toFloat(ab), f.toFloat(bb)
		var r uint64
		switch {
		case f.isNaN(ab) && f.isNaN(bb):
			r = f.canonical
		case f.isNaN(ab):
			r = bb
		case f.isNaN(bb):
			r = ab
		case a == b:
			// only the zeros' signs can differ
			if isMax {
				r = ab & bb
			} else {
				r = ab | bb
			}
		case (a < b) != isMax:
			r = ab
		default:
			r = bb
		}
		f.write(i, riscv.Rd(in.word), r)
		return in.next, nil
	}
}

type fpCmpKind int

const (
	fpEq fpCmpKind = iota
	fpLt
	fpLe
)

// fpCmp feq is a quiet compare, flt and fle signal on any NaN
func fpCmp(f *fpFormat, kind fpCmpKind) handler {
	return func(i *Instance, in *instr) (uint64, error) {
		ab := f.read(i, riscv.Rs1(in.word))
		bb := f.read(i, riscv.Rs2(in.word))
		var r bool
		if f.isNaN(ab) || f.isNaN(bb) {
			if kind != fpEq || f.isSignaling(ab) || f.isSignaling(bb) {
				i.raiseFlags(riscv.FlagInvalid)
			}
		} else {
			a, b := f.toFloat(ab), f.toFloat(bb)
			switch kind {
			case fpEq:
				r = a == b
			case fpLt:
				r = a < b
			case fpLe:
				r = a <= b
			}
		}
		i.setReg(riscv.Rd(in.word), boolToUint(r))
		return in.next, nil
	}
}

func fpClass(f *fpFormat) handler {
	return func(i *Instance, in *instr) (uint64, error) {
		b := f.read(i, riscv.Rs1(in.word))
		i.setReg(riscv.Rd(in.word), riscv.Classify(b, f.expBits, f.fracBits))
		return in.next, nil
	}
}

type intKind int

const (
	intW intKind = iota
	intWU
	intL
	intLU
)

// fpToInt converts with the instruction's rounding mode, saturating and
// raising NV on out of range values and NaN
func fpToInt(f *fpFormat, kind intKind) handler {
	return func(i *Instance, in *instr) (uint64, error) {
		rm, err := i.roundingMode(in)
		if err != nil {
			return 0, err
		}
		v := f.toFloat(f.read(i, riscv.Rs1(in.word)))
		var r, flags uint64
		switch kind {
		case intW:
			x, fl := riscv.ToInt32(v, rm)
			r, flags = uint64(int64(x)), fl
		case intWU:
			x, fl := riscv.ToUint32(v, rm)
			r, flags = sext32(x), fl
		case intL:
			x, fl := riscv.ToInt64(v, rm)
			r, flags = uint64(x), fl
		case intLU:
			r, flags = riscv.ToUint64(v, rm)
		}
		i.raiseFlags(flags)
		i.setReg(riscv.Rd(in.word), r)
		return in.next, nil
	}
}

func fpFromInt(f *fpFormat, kind intKind) handler {
	return func(i *Instance, in *instr) (uint64, error) {
		rm, err := i.roundingMode(in)
		if err != nil {
			return 0, err
		}
		x := i.regs[riscv.Rs1(in.word)]
		z := new(big.Float)
		switch kind {
		case intW:
			z.SetInt64(int64(int32(x)))
		case intWU:
			z.SetUint64(uint64(uint32(x)))
		case intL:
			z.SetInt64(int64(x))
		case intLU:
			z.SetUint64(x)
		}
		i.commitExact(f, riscv.Rd(in.word), z, false, rm, 0)
		return in.next, nil
	}
}

// fpConvert converts between float formats
func fpConvert(from, to *fpFormat) handler {
	return func(i *Instance, in *instr) (uint64, error) {
		rm, err := i.roundingMode(in)
		if err != nil {
			return 0, err
		}
		b := from.read(i, riscv.Rs1(in.word))
		var flags uint64
		if from.isSignaling(b) {
			flags = riscv.FlagInvalid
		}
		i.commitFloat(to, riscv.Rd(in.word), from.toFloat(b), rm, flags)
		return in.next, nil
	}
}

// fpMoveToInt copies the raw bits sign extended from the format's width
func fpMoveToInt(f *fpFormat) handler {
	width := f.expBits + f.fracBits + 1
	return func(i *Instance, in *instr) (uint64, error) {
		i.setReg(riscv.Rd(in.word), riscv.SignExtend(f.read(i, riscv.Rs1(in.word)), width))
		return in.next, nil
	}
}

func fpMoveFromInt(f *fpFormat) handler {
	return func(i *Instance, in *instr) (uint64, error) {
		f.write(i, riscv.Rd(in.word), i.regs[riscv.Rs1(in.word)])
		return in.next, nil
	}
}
