package interpreter

import (
	"math"
	"math/bits"

	"github.com/eigerco/rvsim/internal/riscv"
	"github.com/eigerco/rvsim/internal/safemath"
)

func init() {
	register(riscv.ExtM, map[riscv.InsnID]handler{
		riscv.Mul:    regOp(func(_ *Instance, a, b uint64) uint64 { return a * b }),
		riscv.Mulh:   regOp((*Instance).mulh),
		riscv.Mulhsu: regOp((*Instance).mulhsu),
		riscv.Mulhu:  regOp((*Instance).mulhu),
		riscv.Div:    regOp((*Instance).div),
		riscv.Divu:   regOp((*Instance).divu),
		riscv.Rem:    regOp((*Instance).rem),
		riscv.Remu:   regOp((*Instance).remu),
		riscv.Mulw:   regOp(func(_ *Instance, a, b uint64) uint64 { return sext32(uint32(a) * uint32(b)) }),
		riscv.Divw:   regOp(func(_ *Instance, a, b uint64) uint64 { return sext32(uint32(div32(int32(a), int32(b)))) }),
		riscv.Divuw:  regOp(func(_ *Instance, a, b uint64) uint64 { return sext32(divu32(uint32(a), uint32(b))) }),
		riscv.Remw:   regOp(func(_ *Instance, a, b uint64) uint64 { return sext32(uint32(rem32(int32(a), int32(b)))) }),
		riscv.Remuw:  regOp(func(_ *Instance, a, b uint64) uint64 { return sext32(remu32(uint32(a), uint32(b))) }),
	})
}

func (i *Instance) mulh(a, b uint64) uint64 {
	if i.is32() {
		return uint64(int64(int32(a)) * int64(int32(b)) >> 32)
	}
	return uint64(safemath.MulHi64(int64(a), int64(b)))
}

func (i *Instance) mulhsu(a, b uint64) uint64 {
	if i.is32() {
		return uint64(int64(int32(a)) * int64(uint32(b)) >> 32)
	}
	return uint64(safemath.MulHiSU64(int64(a), b))
}

func (i *Instance) mulhu(a, b uint64) uint64 {
	if i.is32() {
		return uint64(uint32(a)) * uint64(uint32(b)) >> 32
	}
	hi, _ := bits.Mul64(a, b)
	return hi
}

func (i *Instance) div(a, b uint64) uint64 {
	if i.is32() {
		return uint64(div32(int32(a), int32(b)))
	}
	x, y := int64(a), int64(b)
	switch {
	case y == 0:
		return math.MaxUint64
	case x == math.MinInt64 && y == -1:
		return a
	}
	return uint64(x / y)
}

func (i *Instance) divu(a, b uint64) uint64 {
	if i.is32() {
		return uint64(divu32(uint32(a), uint32(b)))
	}
	if b == 0 {
		return math.MaxUint64
	}
	return a / b
}

func (i *Instance) rem(a, b uint64) uint64 {
	if i.is32() {
		return uint64(rem32(int32(a), int32(b)))
	}
	x, y := int64(a), int64(b)
	switch {
	case y == 0:
		return a
	case x == math.MinInt64 && y == -1:
		return 0
	}
	return uint64(x % y)
}

func (i *Instance) remu(a, b uint64) uint64 {
	if i.is32() {
		return uint64(remu32(uint32(a), uint32(b)))
	}
	if b == 0 {
		return a
	}
	return a % b
}

func div32(x, y int32) int32 {
	switch {
	case y == 0:
		return -1
	case x == math.MinInt32 && y == -1:
		return x
	}
	return x / y
}

func divu32(x, y uint32) uint32 {
	if y == 0 {
		return math.MaxUint32
	}
	return x / y
}

func rem32(x, y int32) int32 {
	switch {
	case y == 0:
		return x
	case x == math.MinInt32 && y == -1:
		return 0
	}
	return x % y
}

func remu32(x, y uint32) uint32 {
	if y == 0 {
		return x
	}
	return x % y
}
