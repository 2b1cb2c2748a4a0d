package interpreter

import (
	"math"
	"math/bits"

	"github.com/eigerco/rvsim/internal/riscv"
	"github.com/eigerco/rvsim/internal/safemath"
)

func init() {
	register(riscv.ExtP, map[riscv.InsnID]handler{
		riscv.Add16:    laneOp(16, false, wrapAdd),
		riscv.Radd16:   laneOp(16, true, halvingAdd),
		riscv.Uradd16:  laneOp(16, false, halvingAdd),
		riscv.Kadd16:   laneOp(16, true, satAdd),
		riscv.Ukadd16:  laneOp(16, false, usatAdd),
		riscv.Sub16:    laneOp(16, false, wrapSub),
		riscv.Rsub16:   laneOp(16, true, halvingSub),
		riscv.Ursub16:  laneOp(16, false, halvingSub),
		riscv.Ksub16:   laneOp(16, true, satSub),
		riscv.Uksub16:  laneOp(16, false, usatSub),
		riscv.Cras16:   crossOp(16, false, wrapAdd, wrapSub, true),
		riscv.Rcras16:  crossOp(16, true, halvingAdd, halvingSub, true),
		riscv.Urcras16: crossOp(16, false, halvingAdd, halvingSub, true),
		riscv.Kcras16:  crossOp(16, true, satAdd, satSub, true),
		riscv.Ukcras16: crossOp(16, false, usatAdd, usatSub, true),
		riscv.Crsa16:   crossOp(16, false, wrapAdd, wrapSub, false),
		riscv.Rcrsa16:  crossOp(16, true, halvingAdd, halvingSub, false),
		riscv.Urcrsa16: crossOp(16, false, halvingAdd, halvingSub, false),
		riscv.Kcrsa16:  crossOp(16, true, satAdd, satSub, false),
		riscv.Ukcrsa16: crossOp(16, false, usatAdd, usatSub, false),

		riscv.Add8:   laneOp(8, false, wrapAdd),
		riscv.Radd8:  laneOp(8, true, halvingAdd),
		riscv.Uradd8: laneOp(8, false, halvingAdd),
		riscv.Kadd8:  laneOp(8, true, satAdd),
		riscv.Ukadd8: laneOp(8, false, usatAdd),
		riscv.Sub8:   laneOp(8, false, wrapSub),
		riscv.Rsub8:  laneOp(8, true, halvingSub),
		riscv.Ursub8: laneOp(8, false, halvingSub),
		riscv.Ksub8:  laneOp(8, true, satSub),
		riscv.Uksub8: laneOp(8, false, usatSub),

		riscv.Sra16:    laneShift(16, true, shiftByReg, sra),
		riscv.Srl16:    laneShift(16, false, shiftByReg, srl),
		riscv.Sll16:    laneShift(16, false, shiftByReg, sll),
		riscv.Sra16U:   laneShift(16, true, shiftByReg, sraRound),
		riscv.Srl16U:   laneShift(16, false, shiftByReg, srlRound),
		riscv.Ksll16:   laneShift(16, true, shiftByReg, ksll),
		riscv.Srai16:   laneShift(16, true, shiftByImm, sra),
		riscv.Srai16U:  laneShift(16, true, shiftByImm, sraRound),
		riscv.Srli16:   laneShift(16, false, shiftByImm, srl),
		riscv.Srli16U:  laneShift(16, false, shiftByImm, srlRound),
		riscv.Slli16:   laneShift(16, false, shiftByImm, sll),
		riscv.Kslli16:  laneShift(16, true, shiftByImm, ksll),
		riscv.Kslra16:  laneKslra(16, sra),
		riscv.Kslra16U: laneKslra(16, sraRound),

		riscv.Sra8:    laneShift(8, true, shiftByReg, sra),
		riscv.Srl8:    laneShift(8, false, shiftByReg, srl),
		riscv.Sll8:    laneShift(8, false, shiftByReg, sll),
		riscv.Sra8U:   laneShift(8, true, shiftByReg, sraRound),
		riscv.Srl8U:   laneShift(8, false, shiftByReg, srlRound),
		riscv.Ksll8:   laneShift(8, true, shiftByReg, ksll),
		riscv.Srai8:   laneShift(8, true, shiftByImm, sra),
		riscv.Srai8U:  laneShift(8, true, shiftByImm, sraRound),
		riscv.Srli8:   laneShift(8, false, shiftByImm, srl),
		riscv.Srli8U:  laneShift(8, false, shiftByImm, srlRound),
		riscv.Slli8:   laneShift(8, false, shiftByImm, sll),
		riscv.Kslli8:  laneShift(8, true, shiftByImm, ksll),
		riscv.Kslra8:  laneKslra(8, sra),
		riscv.Kslra8U: laneKslra(8, sraRound),

		riscv.Cmpeq16:  laneOp(16, false, laneCmp(func(a, b int64) bool { return a == b })),
		riscv.Scmplt16: laneOp(16, true, laneCmp(func(a, b int64) bool { return a < b })),
		riscv.Scmple16: laneOp(16, true, laneCmp(func(a, b int64) bool { return a <= b })),
		riscv.Ucmplt16: laneOp(16, false, laneCmp(func(a, b int64) bool { return a < b })),
		riscv.Ucmple16: laneOp(16, false, laneCmp(func(a, b int64) bool { return a <= b })),
		riscv.Cmpeq8:   laneOp(8, false, laneCmp(func(a, b int64) bool { return a == b })),
		riscv.Scmplt8:  laneOp(8, true, laneCmp(func(a, b int64) bool { return a < b })),
		riscv.Scmple8:  laneOp(8, true, laneCmp(func(a, b int64) bool { return a <= b })),
		riscv.Ucmplt8:  laneOp(8, false, laneCmp(func(a, b int64) bool { return a < b })),
		riscv.Ucmple8:  laneOp(8, false, laneCmp(func(a, b int64) bool { return a <= b })),

		riscv.Smul16:  widenMul(16, true, false),
		riscv.Smulx16: widenMul(16, true, true),
		riscv.Umul16:  widenMul(16, false, false),
		riscv.Umulx16: widenMul(16, false, true),
		riscv.Smul8:   widenMul(8, true, false),
		riscv.Smulx8:  widenMul(8, true, true),
		riscv.Umul8:   widenMul(8, false, false),
		riscv.Umulx8:  widenMul(8, false, true),
		riscv.Khm16:   laneKhm(16, false),
		riscv.Khmx16:  laneKhm(16, true),
		riscv.Khm8:    laneKhm(8, false),
		riscv.Khmx8:   laneKhm(8, true),

		riscv.Smin16:  laneOp(16, true, laneMin),
		riscv.Umin16:  laneOp(16, false, laneMin),
		riscv.Smax16:  laneOp(16, true, laneMax),
		riscv.Umax16:  laneOp(16, false, laneMax),
		riscv.Smin8:   laneOp(8, true, laneMin),
		riscv.Umin8:   laneOp(8, false, laneMin),
		riscv.Smax8:   laneOp(8, true, laneMax),
		riscv.Umax8:   laneOp(8, false, laneMax),
		riscv.Sclip16: laneClip(16, true),
		riscv.Uclip16: laneClip(16, false),
		riscv.Sclip8:  laneClip(8, true),
		riscv.Uclip8:  laneClip(8, false),
		riscv.Sclip32: laneClip(32, true),
		riscv.Uclip32: laneClip(32, false),

		riscv.Clrs8:  laneUnary(8, true, clrs),
		riscv.Clz8:   laneUnary(8, false, clz),
		riscv.Clo8:   laneUnary(8, false, clo),
		riscv.Clrs16: laneUnary(16, true, clrs),
		riscv.Clz16:  laneUnary(16, false, clz),
		riscv.Clo16:  laneUnary(16, false, clo),
		riscv.Clrs32: laneUnary(32, true, clrs),
		riscv.Clz32:  laneUnary(32, false, clz),
		riscv.Clo32:  laneUnary(32, false, clo),

		riscv.Sunpkd810: unpack(true, 1, 0),
		riscv.Sunpkd820: unpack(true, 2, 0),
		riscv.Sunpkd830: unpack(true, 3, 0),
		riscv.Sunpkd831: unpack(true, 3, 1),
		riscv.Sunpkd832: unpack(true, 3, 2),
		riscv.Zunpkd810: unpack(false, 1, 0),
		riscv.Zunpkd820: unpack(false, 2, 0),
		riscv.Zunpkd830: unpack(false, 3, 0),
		riscv.Zunpkd831: unpack(false, 3, 1),
		riscv.Zunpkd832: unpack(false, 3, 2),
		riscv.Kabs8:     laneUnary(8, true, kabs),
		riscv.Kabs16:    laneUnary(16, true, kabs),
		riscv.Kabs32:    laneUnary(32, true, kabs),
		riscv.Kabsw:     (*Instance).kabsw,
		riscv.Swap8:     (*Instance).swap8,
		riscv.Insb:      (*Instance).insb,

		riscv.Smaqa:   dotProduct(true, true),
		riscv.SmaqaSu: dotProduct(true, false),
		riscv.Umaqa:   dotProduct(false, false),

		riscv.Ave:     regOp(func(i *Instance, a, b uint64) uint64 { return uint64(ave(i.signed(a), i.signed(b))) }),
		riscv.Bitrev:  (*Instance).bitrev,
		riscv.Bitrevi: (*Instance).bitrevi,
		riscv.Wext:    (*Instance).wext,
		riscv.Wexti:   (*Instance).wext,
		riscv.Minw:    regOp(func(_ *Instance, a, b uint64) uint64 { return sext32(uint32(min(int32(a), int32(b)))) }),
		riscv.Maxw:    regOp(func(_ *Instance, a, b uint64) uint64 { return sext32(uint32(max(int32(a), int32(b)))) }),

		riscv.Kaddw: scalarOp(func(i *Instance, a, b uint64) uint64 {
			v, ok := safemath.Add(int32(a), int32(b))
			return i.kword(int32(a), v, ok)
		}),
		riscv.Ksubw: scalarOp(func(i *Instance, a, b uint64) uint64 {
			v, ok := safemath.Sub(int32(a), int32(b))
			return i.kword(int32(a), v, ok)
		}),
		riscv.Kaddh: scalarOp(func(i *Instance, a, b uint64) uint64 { return sext32(uint32(i.satS(sw(a)+sw(b), 15))) }),
		riscv.Ksubh: scalarOp(func(i *Instance, a, b uint64) uint64 { return sext32(uint32(i.satS(sw(a)-sw(b), 15))) }),
		riscv.Ukaddw: scalarOp(func(i *Instance, a, b uint64) uint64 {
			v, ok := safemath.Add32(uint32(a), uint32(b))
			return i.ukword(v, ok, math.MaxUint32)
		}),
		riscv.Uksubw: scalarOp(func(i *Instance, a, b uint64) uint64 {
			v, ok := safemath.Sub32(uint32(a), uint32(b))
			return i.ukword(v, ok, 0)
		}),
		riscv.Ukaddh: scalarOp(func(i *Instance, a, b uint64) uint64 { return sext16(i.satU(uw(a)+uw(b), 16)) }),
		riscv.Uksubh: scalarOp(func(i *Instance, a, b uint64) uint64 { return sext16(i.satU(uw(a)-uw(b), 16)) }),
		riscv.Kdmbb:  doublingMul(0, 0),
		riscv.Kdmbt:  doublingMul(0, 1),
		riscv.Kdmtt:  doublingMul(1, 1),
		riscv.Khmbb:  halfMul(0, 0),
		riscv.Khmbt:  halfMul(0, 1),
		riscv.Khmtt:  halfMul(1, 1),
		riscv.Kslraw: (*Instance).kslraw,
		riscv.Ksllw:  scalarOp(func(i *Instance, a, b uint64) uint64 { return sext32(uint32(i.satS(sw(a)<<(b&0x1f), 31))) }),
		riscv.Kslliw: (*Instance).kslliw,
		riscv.Raddw:  scalarOp(func(_ *Instance, a, b uint64) uint64 { return sext32(uint32((sw(a) + sw(b)) >> 1)) }),
		riscv.Rsubw:  scalarOp(func(_ *Instance, a, b uint64) uint64 { return sext32(uint32((sw(a) - sw(b)) >> 1)) }),
		riscv.Uraddw: scalarOp(func(_ *Instance, a, b uint64) uint64 { return sext32(uint32((uw(a) + uw(b)) >> 1)) }),
		riscv.Ursubw: scalarOp(func(_ *Instance, a, b uint64) uint64 { return sext32(uint32((uw(a) - uw(b)) >> 1)) }),
		riscv.Mulr64: (*Instance).mulr64,
		riscv.Mulsr64: func(i *Instance, in *instr) (uint64, error) {
			v := uint64(sw(i.regs[riscv.Rs1(in.word)]) * sw(i.regs[riscv.Rs2(in.word)]))
			if err := i.writePair(in, riscv.Rd(in.word), v); err != nil {
				return 0, err
			}
			return in.next, nil
		},
		riscv.Pkbb16: pack16(0, 0),
		riscv.Pkbt16: pack16(0, 1),
		riscv.Pktb16: pack16(1, 0),
		riscv.Pktt16: pack16(1, 1),

		riscv.Kmada:  mac16(true, true, func(a1, a0, b1, b0 int64) int64 { return a1*b1 + a0*b0 }),
		riscv.Kmaxda: mac16(true, true, func(a1, a0, b1, b0 int64) int64 { return a1*b0 + a0*b1 }),
		riscv.Kmads:  mac16(true, true, func(a1, a0, b1, b0 int64) int64 { return a1*b1 - a0*b0 }),
		riscv.Kmadrs: mac16(true, true, func(a1, a0, b1, b0 int64) int64 { return a0*b0 - a1*b1 }),
		riscv.Kmaxds: mac16(true, true, func(a1, a0, b1, b0 int64) int64 { return a1*b0 - a0*b1 }),
		riscv.Kmsda:  mac16(true, true, func(a1, a0, b1, b0 int64) int64 { return -a1*b1 - a0*b0 }),
		riscv.Kmsxda: mac16(true, true, func(a1, a0, b1, b0 int64) int64 { return -a1*b0 - a0*b1 }),
		riscv.Smds:   mac16(false, false, func(a1, a0, b1, b0 int64) int64 { return a1*b1 - a0*b0 }),
		riscv.Smdrs:  mac16(false, false, func(a1, a0, b1, b0 int64) int64 { return a0*b0 - a1*b1 }),
		riscv.Smxds:  mac16(false, false, func(a1, a0, b1, b0 int64) int64 { return a1*b0 - a0*b1 }),
		riscv.Kmabb:  mac16(true, true, func(_, a0, _, b0 int64) int64 { return a0 * b0 }),
		riscv.Kmabt:  mac16(true, true, func(_, a0, b1, _ int64) int64 { return a0 * b1 }),
		riscv.Kmatt:  mac16(true, true, func(a1, _, b1, _ int64) int64 { return a1 * b1 }),

		riscv.Kmmac:  mostSignificantMul(1, false),
		riscv.KmmacU: mostSignificantMul(1, true),
		riscv.Kmmsb:  mostSignificantMul(-1, false),
		riscv.KmmsbU: mostSignificantMul(-1, true),
		riscv.Smmul:  mostSignificantMul(0, false),
		riscv.SmmulU: mostSignificantMul(0, true),

		riscv.SraU: regOp(func(i *Instance, a, b uint64) uint64 {
			return uint64(roundShift(i.signed(a), uint(i.shiftMask(b))))
		}),
		riscv.SraiU: shiftImm(func(i *Instance, r riscv.Reg, sh uint64) uint64 {
			return uint64(roundShift(i.sreg(r), uint(sh)))
		}),
		riscv.Bpick: func(i *Instance, in *instr) (uint64, error) {
			c := i.regs[riscv.Rs3(in.word)]
			i.setReg(riscv.Rd(in.word), i.regs[riscv.Rs1(in.word)]&c|i.regs[riscv.Rs2(in.word)]&^c)
			return in.next, nil
		},

		riscv.Add32:   laneOp(32, false, wrapAdd),
		riscv.Radd32:  laneOp(32, true, halvingAdd),
		riscv.Uradd32: laneOp(32, false, halvingAdd),
		riscv.Kadd32:  laneOp(32, true, satAdd),
		riscv.Ukadd32: laneOp(32, false, usatAdd),
		riscv.Sub32:   laneOp(32, false, wrapSub),
		riscv.Rsub32:  laneOp(32, true, halvingSub),
		riscv.Ursub32: laneOp(32, false, halvingSub),
		riscv.Ksub32:  laneOp(32, true, satSub),
		riscv.Uksub32: laneOp(32, false, usatSub),
		riscv.Cras32:  crossOp(32, false, wrapAdd, wrapSub, true),
		riscv.Crsa32:  crossOp(32, false, wrapAdd, wrapSub, false),
		riscv.Sra32:   laneShift(32, true, shiftByReg, sra),
		riscv.Srl32:   laneShift(32, false, shiftByReg, srl),
		riscv.Sll32:   laneShift(32, false, shiftByReg, sll),
		riscv.Srai32:  laneShift(32, true, shiftByImm, sra),
		riscv.Srli32:  laneShift(32, false, shiftByImm, srl),
		riscv.Slli32:  laneShift(32, false, shiftByImm, sll),
		riscv.Smin32:  laneOp(32, true, laneMin),
		riscv.Smax32:  laneOp(32, true, laneMax),
		riscv.Umin32:  laneOp(32, false, laneMin),
		riscv.Umax32:  laneOp(32, false, laneMax),
	})
}

// satS saturates to a signed n+1 bit range and records the overflow
func (i *Instance) satS(v int64, n uint) int64 {
	r, clamped := safemath.SatSigned(v, n)
	if clamped {
		i.setOverflow()
	}
	return r
}

// satU saturates to an unsigned n bit range and records the overflow
func (i *Instance) satU(v int64, n uint) int64 {
	r, clamped := safemath.SatUnsigned(v, n)
	if clamped {
		i.setOverflow()
	}
	return r
}

// kword saturates a wrapped 32 bit sum or difference toward the sign of a
func (i *Instance) kword(a, v int32, ok bool) uint64 {
	if !ok {
		i.setOverflow()
		v = math.MaxInt32
		if a < 0 {
			v = math.MinInt32
		}
	}
	return sext32(uint32(v))
}

// ukword replaces a wrapped unsigned 32 bit result with limit
func (i *Instance) ukword(v uint32, ok bool, limit uint32) uint64 {
	if !ok {
		i.setOverflow()
		v = limit
	}
	return sext32(v)
}

// signed the XLEN signed view of a raw register value
func (i *Instance) signed(v uint64) int64 {
	if i.is32() {
		return int64(int32(v))
	}
	return int64(v)
}

// sw and uw the signed and unsigned views of the low word
func sw(v uint64) int64 { return int64(int32(v)) }
func uw(v uint64) int64 { return int64(uint32(v)) }

func sext16(v int64) uint64 { return uint64(int64(int16(v))) }

func getLane(v uint64, k int, width uint, signed bool) int64 {
	switch width {
	case 8:
		if signed {
			return int64(riscv.SLane8(v, k))
		}
		return int64(riscv.Lane8(v, k))
	case 16:
		if signed {
			return int64(riscv.SLane16(v, k))
		}
		return int64(riscv.Lane16(v, k))
	}
	if signed {
		return int64(riscv.SLane32(v, k))
	}
	return int64(riscv.Lane32(v, k))
}

func putLane(v uint64, k int, width uint, x int64) uint64 {
	switch width {
	case 8:
		return riscv.WithLane8(v, k, uint8(x))
	case 16:
		return riscv.WithLane16(v, k, uint16(x))
	}
	return riscv.WithLane32(v, k, uint32(x))
}

// laneFunc computes one lane from two lane operands, already sign or zero
// extended from width bits
type laneFunc func(i *Instance, a, b int64, width uint) int64

func wrapAdd(_ *Instance, a, b int64, _ uint) int64    { return a + b }
func wrapSub(_ *Instance, a, b int64, _ uint) int64    { return a - b }
func halvingAdd(_ *Instance, a, b int64, _ uint) int64 { return (a + b) >> 1 }
func halvingSub(_ *Instance, a, b int64, _ uint) int64 { return (a - b) >> 1 }
func satAdd(i *Instance, a, b int64, w uint) int64     { return i.satS(a+b, w-1) }
func satSub(i *Instance, a, b int64, w uint) int64     { return i.satS(a-b, w-1) }
func usatAdd(i *Instance, a, b int64, w uint) int64    { return i.satU(a+b, w) }
func usatSub(i *Instance, a, b int64, w uint) int64    { return i.satU(a-b, w) }
func laneMin(_ *Instance, a, b int64, _ uint) int64    { return min(a, b) }
func laneMax(_ *Instance, a, b int64, _ uint) int64    { return max(a, b) }

func laneCmp(f func(a, b int64) bool) laneFunc {
	return func(_ *Instance, a, b int64, _ uint) int64 {
		if f(a, b) {
			return -1
		}
		return 0
	}
}

// laneOp applies f to every lane pair of rs1 and rs2
func laneOp(width uint, signed bool, f laneFunc) handler {
	return func(i *Instance, in *instr) (uint64, error) {
		a, b := i.ureg(riscv.Rs1(in.word)), i.ureg(riscv.Rs2(in.word))
		var out uint64
		for k := range i.xlen.Lanes(int(width)) {
			out = putLane(out, k, width, f(i, getLane(a, k, width, signed), getLane(b, k, width, signed), width))
		}
		i.setReg(riscv.Rd(in.word), out)
		return in.next, nil
	}
}

// crossOp pairs the top lane of rs1 with the bottom lane of rs2 and vice
// versa inside every 2*width bit group. cras adds in the top lane and
// subtracts in the bottom one, crsa the other way round.
func crossOp(width uint, signed bool, add, sub laneFunc, cras bool) handler {
	return func(i *Instance, in *instr) (uint64, error) {
		a, b := i.ureg(riscv.Rs1(in.word)), i.ureg(riscv.Rs2(in.word))
		top, bottom := add, sub
		if !cras {
			top, bottom = sub, add
		}
		var out uint64
		for k := 0; k < i.xlen.Lanes(int(width)); k += 2 {
			a0, a1 := getLane(a, k, width, signed), getLane(a, k+1, width, signed)
			b0, b1 := getLane(b, k, width, signed), getLane(b, k+1, width, signed)
			out = putLane(out, k+1, width, top(i, a1, b0, width))
			out = putLane(out, k, width, bottom(i, a0, b1, width))
		}
		i.setReg(riscv.Rd(in.word), out)
		return in.next, nil
	}
}

// shiftFunc shifts one lane by sh < width
type shiftFunc func(i *Instance, a int64, sh, width uint) int64

func sra(_ *Instance, a int64, sh, _ uint) int64 { return a >> sh }

func srl(_ *Instance, a int64, sh, _ uint) int64 { return int64(uint64(a) >> sh) }

func sll(_ *Instance, a int64, sh, _ uint) int64 { return a << sh }

func sraRound(_ *Instance, a int64, sh, _ uint) int64 { return roundShift(a, sh) }

func srlRound(_ *Instance, a int64, sh, _ uint) int64 {
	if sh == 0 {
		return a
	}
	u := uint64(a)
	return int64(u>>sh + u>>(sh-1)&1)
}

func ksll(i *Instance, a int64, sh, w uint) int64 { return i.satS(a<<sh, w-1) }

// roundShift arithmetic right shift adding the last bit shifted out
func roundShift(a int64, sh uint) int64 {
	if sh == 0 {
		return a
	}
	return a>>sh + a>>(sh-1)&1
}

func shiftByReg(i *Instance, in *instr) uint64 { return i.regs[riscv.Rs2(in.word)] }

func shiftByImm(_ *Instance, in *instr) uint64 { return uint64(in.word >> 20) }

// laneShift shifts every lane of rs1 by the amount taken from amount,
// limited to the lane width
func laneShift(width uint, signed bool, amount func(i *Instance, in *instr) uint64, f shiftFunc) handler {
	return func(i *Instance, in *instr) (uint64, error) {
		sh := uint(amount(i, in) & uint64(width-1))
		a := i.ureg(riscv.Rs1(in.word))
		var out uint64
		for k := range i.xlen.Lanes(int(width)) {
			out = putLane(out, k, width, f(i, getLane(a, k, width, signed), sh, width))
		}
		i.setReg(riscv.Rd(in.word), out)
		return in.next, nil
	}
}

// shiftAmount the signed shift amount held in the low log2(width)+1 bits
func shiftAmount(v uint64, width uint) int64 {
	n := uint(bits.TrailingZeros(width)) + 1
	return int64(riscv.SignExtend(v&(1<<n-1), n))
}

// laneKslra shifts left with saturation for positive amounts and right
// with right for negative ones
func laneKslra(width uint, right shiftFunc) handler {
	return func(i *Instance, in *instr) (uint64, error) {
		sa := shiftAmount(i.regs[riscv.Rs2(in.word)], width)
		a := i.ureg(riscv.Rs1(in.word))
		var out uint64
		for k := range i.xlen.Lanes(int(width)) {
			x := getLane(a, k, width, true)
			if sa >= 0 {
				x = ksll(i, x, uint(sa), width)
			} else {
				x = right(i, x, min(uint(-sa), width-1), width)
			}
			out = putLane(out, k, width, x)
		}
		i.setReg(riscv.Rd(in.word), out)
		return in.next, nil
	}
}

func (i *Instance) kslraw(in *instr) (uint64, error) {
	sa := shiftAmount(i.regs[riscv.Rs2(in.word)], 32)
	a := sw(i.regs[riscv.Rs1(in.word)])
	if sa >= 0 {
		a = i.satS(a<<uint(sa), 31)
	} else {
		a >>= min(uint(-sa), 31)
	}
	i.setReg(riscv.Rd(in.word), sext32(uint32(a)))
	return in.next, nil
}

func (i *Instance) kslliw(in *instr) (uint64, error) {
	sh := uint(in.word >> 20 & 0x1f)
	i.setReg(riscv.Rd(in.word), sext32(uint32(i.satS(sw(i.regs[riscv.Rs1(in.word)])<<sh, 31))))
	return in.next, nil
}

// writePair writes a 64 bit result to rd on 64 bit harts and to the even/odd
// pair rd, rd+1 (low word first) on 32 bit harts
func (i *Instance) writePair(in *instr, rd riscv.Reg, v uint64) error {
	if !i.is32() {
		i.setReg(rd, v)
		return nil
	}
	if rd%2 != 0 {
		return riscv.IllegalInstructionf(in.pc, "%s: register pair must start at an even register, got %s", in.op.Name, rd)
	}
	i.setReg(rd, uint64(uint32(v)))
	i.setReg(rd+1, v>>32)
	return nil
}

// readPair the 64 bit operand held in rs, or in the pair rs, rs+1
func (i *Instance) readPair(in *instr, rs riscv.Reg) (uint64, error) {
	if !i.is32() {
		return i.regs[rs], nil
	}
	if rs%2 != 0 {
		return 0, riscv.IllegalInstructionf(in.pc, "%s: register pair must start at an even register, got %s", in.op.Name, rs)
	}
	return uint64(uint32(i.regs[rs])) | i.regs[rs+1]<<32, nil
}

// widenMul multiplies the lanes of the low word into double width lanes of
// a 64 bit result; crossed pairs lane k of rs1 with lane k^1 of rs2
func widenMul(width uint, signed, crossed bool) handler {
	return func(i *Instance, in *instr) (uint64, error) {
		a, b := i.ureg(riscv.Rs1(in.word)), i.ureg(riscv.Rs2(in.word))
		var out uint64
		for k := range int(32 / width) {
			j := k
			if crossed {
				j ^= 1
			}
			p := getLane(a, k, width, signed) * getLane(b, j, width, signed)
			out = putLane(out, k, 2*width, p)
		}
		if err := i.writePair(in, riscv.Rd(in.word), out); err != nil {
			return 0, err
		}
		return in.next, nil
	}
}

func laneKhm(width uint, crossed bool) handler {
	return func(i *Instance, in *instr) (uint64, error) {
		a, b := i.ureg(riscv.Rs1(in.word)), i.ureg(riscv.Rs2(in.word))
		var out uint64
		for k := range i.xlen.Lanes(int(width)) {
			j := k
			if crossed {
				j ^= 1
			}
			var r int64
			var ov bool
			if width == 16 {
				var v int16
				v, ov = safemath.Khm16(riscv.SLane16(a, k), riscv.SLane16(b, j))
				r = int64(v)
			} else {
				var v int8
				v, ov = safemath.Khm8(riscv.SLane8(a, k), riscv.SLane8(b, j))
				r = int64(v)
			}
			if ov {
				i.setOverflow()
			}
			out = putLane(out, k, width, r)
		}
		i.setReg(riscv.Rd(in.word), out)
		return in.next, nil
	}
}

// laneClip saturates every lane to the range given by the immediate
func laneClip(width uint, signed bool) handler {
	return func(i *Instance, in *instr) (uint64, error) {
		n := uint(in.word >> 20 & uint32(width-1))
		a := i.ureg(riscv.Rs1(in.word))
		var out uint64
		for k := range i.xlen.Lanes(int(width)) {
			x := getLane(a, k, width, true)
			if signed {
				x = i.satS(x, n)
			} else {
				x = i.satU(x, n)
			}
			out = putLane(out, k, width, x)
		}
		i.setReg(riscv.Rd(in.word), out)
		return in.next, nil
	}
}

func laneUnary(width uint, signed bool, f func(i *Instance, a int64, width uint) int64) handler {
	return func(i *Instance, in *instr) (uint64, error) {
		a := i.ureg(riscv.Rs1(in.word))
		var out uint64
		for k := range i.xlen.Lanes(int(width)) {
			out = putLane(out, k, width, f(i, getLane(a, k, width, signed), width))
		}
		i.setReg(riscv.Rd(in.word), out)
		return in.next, nil
	}
}

func clz(_ *Instance, a int64, width uint) int64 {
	return int64(bits.LeadingZeros64(uint64(a)) - (64 - int(width)))
}

func clo(i *Instance, a int64, width uint) int64 {
	return clz(i, int64(^uint64(a)&(1<<width-1)), width)
}

// clrs counts the redundant sign bits below the sign bit
func clrs(i *Instance, a int64, width uint) int64 {
	if a < 0 {
		return clo(i, a&(1<<width-1), width) - 1
	}
	return clz(i, a, width) - 1
}

func kabs(i *Instance, a int64, width uint) int64 {
	if a < 0 {
		a = -a
	}
	return i.satS(a, width-1)
}

func (i *Instance) kabsw(in *instr) (uint64, error) {
	i.setReg(riscv.Rd(in.word), sext32(uint32(kabs(i, sw(i.regs[riscv.Rs1(in.word)]), 32))))
	return in.next, nil
}

func (i *Instance) swap8(in *instr) (uint64, error) {
	a := i.ureg(riscv.Rs1(in.word))
	var out uint64
	for k := 0; k < i.xlen.Lanes(8); k += 2 {
		out = riscv.WithLane8(out, k, riscv.Lane8(a, k+1))
		out = riscv.WithLane8(out, k+1, riscv.Lane8(a, k))
	}
	i.setReg(riscv.Rd(in.word), out)
	return in.next, nil
}

func (i *Instance) insb(in *instr) (uint64, error) {
	k := int(in.word >> 20 & 0x7)
	if k >= i.xlen.Lanes(8) {
		return 0, riscv.IllegalInstructionf(in.pc, "insb: byte index %d out of range", k)
	}
	rd := riscv.Rd(in.word)
	i.setReg(rd, riscv.WithLane8(i.ureg(rd), k, riscv.Lane8(i.regs[riscv.Rs1(in.word)], 0)))
	return in.next, nil
}

// unpack widens bytes hi and lo of every word into its two halfwords
func unpack(signed bool, hi, lo int) handler {
	return func(i *Instance, in *instr) (uint64, error) {
		a := i.ureg(riscv.Rs1(in.word))
		var out uint64
		for w := range i.xlen.Lanes(32) {
			out = putLane(out, 2*w+1, 16, getLane(a, 4*w+hi, 8, signed))
			out = putLane(out, 2*w, 16, getLane(a, 4*w+lo, 8, signed))
		}
		i.setReg(riscv.Rd(in.word), out)
		return in.next, nil
	}
}

// dotProduct accumulates the four byte products of every word into the
// matching word of rd
func dotProduct(signedA, signedB bool) handler {
	return func(i *Instance, in *instr) (uint64, error) {
		rd := riscv.Rd(in.word)
		a, b, acc := i.ureg(riscv.Rs1(in.word)), i.ureg(riscv.Rs2(in.word)), i.ureg(rd)
		for w := range i.xlen.Lanes(32) {
			sum := getLane(acc, w, 32, true)
			for k := 4 * w; k < 4*w+4; k++ {
				sum += getLane(a, k, 8, signedA) * getLane(b, k, 8, signedB)
			}
			acc = putLane(acc, w, 32, sum)
		}
		i.setReg(rd, acc)
		return in.next, nil
	}
}

// ave the rounded average (a+b+1)>>1 without intermediate overflow
func ave(a, b int64) int64 {
	return a>>1 + b>>1 + (a|b)&1
}

func (i *Instance) bitrev(in *instr) (uint64, error) {
	msb := i.regs[riscv.Rs2(in.word)] & uint64(i.xlen-1)
	i.setReg(riscv.Rd(in.word), bits.Reverse64(i.ureg(riscv.Rs1(in.word)))>>(63-msb))
	return in.next, nil
}

func (i *Instance) bitrevi(in *instr) (uint64, error) {
	msb := riscv.Shamt(in.word)
	if msb >= 32 && i.is32() {
		return 0, riscv.IllegalInstructionf(in.pc, "bitrevi: immediate %d out of range", msb)
	}
	i.setReg(riscv.Rd(in.word), bits.Reverse64(i.ureg(riscv.Rs1(in.word)))>>(63-msb))
	return in.next, nil
}

// wext extracts a word from the 64 bit operand rs1 (a register pair on 32
// bit harts) at the bit offset given by rs2 or the immediate
func (i *Instance) wext(in *instr) (uint64, error) {
	v, err := i.readPair(in, riscv.Rs1(in.word))
	if err != nil {
		return 0, err
	}
	lsb := uint64(in.word >> 20 & 0x1f)
	if in.op.ID == riscv.Wext {
		lsb = i.regs[riscv.Rs2(in.word)] & 0x1f
	}
	i.setReg(riscv.Rd(in.word), sext32(uint32(v>>lsb)))
	return in.next, nil
}

// scalarOp operates on the low words of rs1 and rs2
func scalarOp(f func(i *Instance, a, b uint64) uint64) handler {
	return regOp(f)
}

// doublingMul the Q31 product 2*a*b of two Q15 halfwords
func doublingMul(ha, hb int) handler {
	return scalarOp(func(i *Instance, a, b uint64) uint64 {
		p := int64(riscv.SLane16(a, ha)) * int64(riscv.SLane16(b, hb)) * 2
		return sext32(uint32(i.satS(p, 31)))
	})
}

// halfMul the Q15 product of two Q15 halfwords
func halfMul(ha, hb int) handler {
	return scalarOp(func(i *Instance, a, b uint64) uint64 {
		r, ov := safemath.Khm16(riscv.SLane16(a, ha), riscv.SLane16(b, hb))
		if ov {
			i.setOverflow()
		}
		return uint64(int64(r))
	})
}

func (i *Instance) mulr64(in *instr) (uint64, error) {
	v := uint64(uint32(i.regs[riscv.Rs1(in.word)])) * uint64(uint32(i.regs[riscv.Rs2(in.word)]))
	if err := i.writePair(in, riscv.Rd(in.word), v); err != nil {
		return 0, err
	}
	return in.next, nil
}

// pack16 builds every word of rd from halfword ha of rs1 (top) and halfword
// hb of rs2 (bottom)
func pack16(ha, hb int) handler {
	return func(i *Instance, in *instr) (uint64, error) {
		a, b := i.ureg(riscv.Rs1(in.word)), i.ureg(riscv.Rs2(in.word))
		var out uint64
		for w := range i.xlen.Lanes(32) {
			out = riscv.WithLane16(out, 2*w+1, riscv.Lane16(a, 2*w+ha))
			out = riscv.WithLane16(out, 2*w, riscv.Lane16(b, 2*w+hb))
		}
		i.setReg(riscv.Rd(in.word), out)
		return in.next, nil
	}
}

// mac16 combines the signed halfwords of every word; accumulate adds the
// previous word of rd and saturate clamps to 32 bits
func mac16(accumulate, saturate bool, f func(a1, a0, b1, b0 int64) int64) handler {
	return func(i *Instance, in *instr) (uint64, error) {
		rd := riscv.Rd(in.word)
		a, b, acc := i.ureg(riscv.Rs1(in.word)), i.ureg(riscv.Rs2(in.word)), i.ureg(rd)
		var out uint64
		for w := range i.xlen.Lanes(32) {
			v := f(getLane(a, 2*w+1, 16, true), getLane(a, 2*w, 16, true),
				getLane(b, 2*w+1, 16, true), getLane(b, 2*w, 16, true))
			if accumulate {
				v += getLane(acc, w, 32, true)
			}
			if saturate {
				v = i.satS(v, 31)
			}
			out = putLane(out, w, 32, v)
		}
		i.setReg(rd, out)
		return in.next, nil
	}
}

// mostSignificantMul the upper word of every 32x32 product, rounded when
// round is set, then added to (sign 1) or subtracted from (sign -1) rd
// with saturation; sign 0 writes the product alone
func mostSignificantMul(sign int64, round bool) handler {
	return func(i *Instance, in *instr) (uint64, error) {
		rd := riscv.Rd(in.word)
		a, b, acc := i.ureg(riscv.Rs1(in.word)), i.ureg(riscv.Rs2(in.word)), i.ureg(rd)
		var out uint64
		for w := range i.xlen.Lanes(32) {
			p := getLane(a, w, 32, true) * getLane(b, w, 32, true)
			if round {
				p = roundShift(p, 32)
			} else {
				p >>= 32
			}
			if sign != 0 {
				p = i.satS(getLane(acc, w, 32, true)+sign*p, 31)
			}
			out = putLane(out, w, 32, p)
		}
		i.setReg(rd, out)
		return in.next, nil
	}
}
