package interpreter

import (
	"github.com/eigerco/rvsim/internal/riscv"
)

func init() {
	register(riscv.ExtA, map[riscv.InsnID]handler{
		riscv.LrW:      loadReserved(4),
		riscv.ScW:      storeConditional(4),
		riscv.AmoswapW: amo(4, func(_, b uint64) uint64 { return b }),
		riscv.AmoaddW:  amo(4, func(a, b uint64) uint64 { return a + b }),
		riscv.AmoxorW:  amo(4, func(a, b uint64) uint64 { return a ^ b }),
		riscv.AmoandW:  amo(4, func(a, b uint64) uint64 { return a & b }),
		riscv.AmoorW:   amo(4, func(a, b uint64) uint64 { return a | b }),
		riscv.AmominW:  amo(4, func(a, b uint64) uint64 { return pick(int32(a) < int32(b), a, b) }),
		riscv.AmomaxW:  amo(4, func(a, b uint64) uint64 { return pick(int32(a) > int32(b), a, b) }),
		riscv.AmominuW: amo(4, func(a, b uint64) uint64 { return pick(uint32(a) < uint32(b), a, b) }),
		riscv.AmomaxuW: amo(4, func(a, b uint64) uint64 { return pick(uint32(a) > uint32(b), a, b) }),
		riscv.LrD:      loadReserved(8),
		riscv.ScD:      storeConditional(8),
		riscv.AmoswapD: amo(8, func(_, b uint64) uint64 { return b }),
		riscv.AmoaddD:  amo(8, func(a, b uint64) uint64 { return a + b }),
		riscv.AmoxorD:  amo(8, func(a, b uint64) uint64 { return a ^ b }),
		riscv.AmoandD:  amo(8, func(a, b uint64) uint64 { return a & b }),
		riscv.AmoorD:   amo(8, func(a, b uint64) uint64 { return a | b }),
		riscv.AmominD:  amo(8, func(a, b uint64) uint64 { return pick(int64(a) < int64(b), a, b) }),
		riscv.AmomaxD:  amo(8, func(a, b uint64) uint64 { return pick(int64(a) > int64(b), a, b) }),
		riscv.AmominuD: amo(8, func(a, b uint64) uint64 { return pick(a < b, a, b) }),
		riscv.AmomaxuD: amo(8, func(a, b uint64) uint64 { return pick(a > b, a, b) }),
	})
}

func pick(cond bool, a, b uint64) uint64 {
	if cond {
		return a
	}
	return b
}

func loadReserved(size int) handler {
	return func(i *Instance, in *instr) (uint64, error) {
		address := i.addr(i.regs[riscv.Rs1(in.word)])
		v, err := i.loadSigned(in.pc, address, size)
		if err != nil {
			return 0, err
		}
		i.reservations.Reserve(address)
		i.setReg(riscv.Rd(in.word), v)
		return in.next, nil
	}
}

// storeConditional writes rd=0 on success and rd=1 when no reservation
// exists, in which case memory is left untouched
func storeConditional(size int) handler {
	return func(i *Instance, in *instr) (uint64, error) {
		address := i.addr(i.regs[riscv.Rs1(in.word)])
		value := i.regs[riscv.Rs2(in.word)]
		ok, err := i.reservations.Conditional(address, func() error {
			return i.store(in.pc, address, size, value)
		})
		if err != nil {
			return 0, err
		}
		i.setReg(riscv.Rd(in.word), boolToUint(!ok))
		return in.next, nil
	}
}

// amo loads the old value into rd and stores op(old, rs2)
func amo(size int, op func(a, b uint64) uint64) handler {
	return func(i *Instance, in *instr) (uint64, error) {
		address := i.addr(i.regs[riscv.Rs1(in.word)])
		src := i.regs[riscv.Rs2(in.word)]
		var old uint64
		err := i.reservations.Atomically(func() error {
			v, err := i.loadSigned(in.pc, address, size)
			if err != nil {
				return err
			}
			old = v
			return i.store(in.pc, address, size, op(v, src))
		})
		if err != nil {
			return 0, err
		}
		i.setReg(riscv.Rd(in.word), old)
		return in.next, nil
	}
}
