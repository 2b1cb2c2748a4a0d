package interpreter

import (
	"slices"

	"github.com/eigerco/rvsim/internal/riscv"
)

func init() {
	register(riscv.ExtAndes, map[riscv.InsnID]handler{
		riscv.Lbgp:   gpLoad(riscv.GpImm18, 1, 1, true),
		riscv.Lbugp:  gpLoad(riscv.GpImm18, 1, 1, false),
		riscv.Lhgp:   gpLoad(riscv.GpImm17, 2, 2, true),
		riscv.Lhugp:  gpLoad(riscv.GpImm17, 2, 2, false),
		riscv.Lwgp:   gpLoad(riscv.GpImm17, 4, 4, true),
		riscv.Lwugp:  gpLoad(riscv.GpImm17, 4, 4, false),
		riscv.Ldgp:   gpLoad(riscv.GpImm17, 8, 8, true),
		riscv.Sbgp:   gpStore(riscv.GpStoreImm18, 1, 1),
		riscv.Shgp:   gpStore(riscv.GpStoreImm17, 2, 2),
		riscv.Swgp:   gpStore(riscv.GpStoreImm17, 4, 4),
		riscv.Sdgp:   gpStore(riscv.GpStoreImm17, 8, 8),
		riscv.Addigp: (*Instance).addigp,

		riscv.LeaH:   lea(1, false),
		riscv.LeaW:   lea(2, false),
		riscv.LeaD:   lea(3, false),
		riscv.LeaBZe: lea(0, true),
		riscv.LeaHZe: lea(1, true),
		riscv.LeaWZe: lea(2, true),
		riscv.LeaDZe: lea(3, true),

		riscv.Ffb:     byteSearch(func(a, b uint64, k int) bool { return riscv.Lane8(a, k) == riscv.Lane8(b, 0) }, false),
		riscv.Ffzmism: byteSearch(func(a, b uint64, k int) bool { return riscv.Lane8(a, k) == 0 || riscv.Lane8(a, k) != riscv.Lane8(b, k) }, false),
		riscv.Ffmism:  byteSearch(func(a, b uint64, k int) bool { return riscv.Lane8(a, k) != riscv.Lane8(b, k) }, false),
		riscv.Flmism:  byteSearch(func(a, b uint64, k int) bool { return riscv.Lane8(a, k) != riscv.Lane8(b, k) }, true),

		riscv.Bfoz: bitField(false),
		riscv.Bfos: bitField(true),

		riscv.Beqc: func(i *Instance, in *instr) (uint64, error) {
			return i.branchIf(in, i.ureg(riscv.Rs1(in.word)) == riscv.CmpImm7(in.word)), nil
		},
		riscv.Bnec: func(i *Instance, in *instr) (uint64, error) {
			return i.branchIf(in, i.ureg(riscv.Rs1(in.word)) != riscv.CmpImm7(in.word)), nil
		},
		riscv.Bbc: bitBranch(false),
		riscv.Bbs: bitBranch(true),

		riscv.Lmw: (*Instance).multiple,
		riscv.Smw: (*Instance).multiple,
	})
}

// gpLoad loads size bytes from gp plus the decoded offset times scale
func gpLoad(imm func(uint32) uint64, scale uint64, size int, signed bool) handler {
	return func(i *Instance, in *instr) (uint64, error) {
		address := i.regs[riscv.GP] + imm(in.word)*scale
		var v uint64
		var err error
		if signed {
			v, err = i.loadSigned(in.pc, address, size)
		} else {
			v, err = i.load(in.pc, address, size)
		}
		if err != nil {
			return 0, err
		}
		i.setReg(riscv.Rd(in.word), v)
		return in.next, nil
	}
}

func gpStore(imm func(uint32) uint64, scale uint64, size int) handler {
	return func(i *Instance, in *instr) (uint64, error) {
		address := i.regs[riscv.GP] + imm(in.word)*scale
		if err := i.store(in.pc, address, size, i.regs[riscv.Rs2(in.word)]); err != nil {
			return 0, err
		}
		return in.next, nil
	}
}

func (i *Instance) addigp(in *instr) (uint64, error) {
	i.setReg(riscv.Rd(in.word), i.regs[riscv.GP]+riscv.GpImm18(in.word))
	return in.next, nil
}

// lea adds rs2 scaled by 1<<shift to rs1; ze zero extends the low word of
// rs2 first
func lea(shift uint, ze bool) handler {
	return func(i *Instance, in *instr) (uint64, error) {
		index := i.regs[riscv.Rs2(in.word)]
		if ze {
			index = uint64(uint32(index))
		}
		i.setReg(riscv.Rd(in.word), i.regs[riscv.Rs1(in.word)]+index<<shift)
		return in.next, nil
	}
}

// byteSearch scans the bytes of rs1 from the least significant one (or the
// most significant one when last is set) for the first that satisfies
// match. A hit at byte k yields k - XLEN/8, no hit yields 0.
func byteSearch(match func(a, b uint64, k int) bool, last bool) handler {
	return func(i *Instance, in *instr) (uint64, error) {
		a, b := i.ureg(riscv.Rs1(in.word)), i.ureg(riscv.Rs2(in.word))
		n := i.xlen.Lanes(8)
		result := uint64(0)
		for j := range n {
			k := j
			if last {
				k = n - 1 - j
			}
			if match(a, b, k) {
				result = uint64(int64(k - n))
				break
			}
		}
		i.setReg(riscv.Rd(in.word), result)
		return in.next, nil
	}
}

// bitField extracts rs1[msb:lsb] to the bottom of rd when msb >= lsb, and
// deposits rs1[lsb-msb:0] at rd[lsb:msb] when msb < lsb. msb 0 moves bit
// 0 to bit lsb. The signed form sign extends from the top of the field.
func bitField(signed bool) handler {
	return func(i *Instance, in *instr) (uint64, error) {
		msb, lsb := riscv.BfoMsb(in.word), riscv.BfoLsb(in.word)
		if i.is32() && (msb >= 32 || lsb >= 32) {
			return 0, riscv.IllegalInstructionf(in.pc, "%s: bit position out of range", in.op.Name)
		}
		a := i.ureg(riscv.Rs1(in.word))
		var v uint64
		var top uint
		switch {
		case msb == 0:
			v, top = (a&1)<<lsb, lsb
		case msb < lsb:
			width := lsb - msb + 1
			v, top = (a&(1<<width-1))<<msb, lsb
		default:
			width := msb - lsb + 1
			v, top = a>>lsb&(1<<width-1), msb-lsb
		}
		if signed {
			v = riscv.SignExtend(v, top+1)
		}
		i.setReg(riscv.Rd(in.word), v)
		return in.next, nil
	}
}

func (i *Instance) branchIf(in *instr, taken bool) uint64 {
	if taken {
		return in.pc + riscv.CmpBranchImm(in.word)
	}
	return in.next
}

func bitBranch(set bool) handler {
	return func(i *Instance, in *instr) (uint64, error) {
		bit := riscv.BitIndex(in.word)
		if bit >= 32 && i.is32() {
			return 0, riscv.IllegalInstructionf(in.pc, "%s: bit %d out of range", in.op.Name, bit)
		}
		return i.branchIf(in, i.regs[riscv.Rs1(in.word)]>>bit&1 == 1 == set), nil
	}
}

// Load/store-multiple visit registers in a fixed order, not by number. The
// reduced ABI only has the first sixteen registers.
var (
	multipleOrder = []riscv.Reg{
		riscv.RA, riscv.S0, riscv.S1, riscv.S2, riscv.S3, riscv.S4, riscv.S5,
		riscv.S6, riscv.S7, riscv.S8, riscv.S9, riscv.S10, riscv.S11,
		riscv.A0, riscv.A1, riscv.A2, riscv.A3, riscv.A4, riscv.A5, riscv.A6, riscv.A7,
		riscv.T0, riscv.T1, riscv.T2, riscv.T3, riscv.T4, riscv.T5, riscv.T6,
		riscv.GP, riscv.TP,
	}
	multipleOrderReduced = []riscv.Reg{
		riscv.RA, riscv.S0, riscv.S1,
		riscv.A0, riscv.A1, riscv.A2, riscv.A3, riscv.A4, riscv.A5,
		riscv.T0, riscv.T1, riscv.T2,
		riscv.GP, riscv.TP,
	}
)

// lmw/smw mode bits
const (
	multipleBefore     uint32 = 1 << 31
	multipleDecrement  uint32 = 1 << 30
	multipleModifyBase uint32 = 1 << 29
	multiplePaired     uint32 = 1 << 13
	multipleStore      uint32 = 1 << 12
)

// multiple loads (lmw) or stores (smw) the registers from rd to rs2 in
// visitation order, walking memory from the address in rs1
func (i *Instance) multiple(in *instr) (uint64, error) {
	start, base, end := riscv.Rd(in.word), riscv.Rs1(in.word), riscv.Rs2(in.word)
	if base == riscv.Zero && end == riscv.Zero {
		return 0, riscv.IllegalInstructionf(in.pc, "%s: base and end register are both zero", in.op.Name)
	}
	order := multipleOrder
	if i.abi == riscv.ABIReduced {
		order = multipleOrderReduced
	}
	first, last := slices.Index(order, start), slices.Index(order, end)
	if first < 0 || last < 0 {
		return 0, riscv.IllegalInstructionf(in.pc, "%s: register range %s-%s not in the visitation order", in.op.Name, start, end)
	}
	if first > last {
		return 0, riscv.IllegalInstructionf(in.pc, "%s: start register %s after end register %s", in.op.Name, start, end)
	}

	size := uint64(i.xlen.Bytes())
	address := i.regs[base]
	if address%size != 0 {
		return 0, riscv.IllegalInstructionf(in.pc, "%s: address 0x%x not aligned to %d", in.op.Name, address, size)
	}
	regs := slices.Clone(order[first : last+1])
	step := size
	if in.word&multipleDecrement != 0 {
		slices.Reverse(regs)
		step = -size
	}
	// paired accesses through sp keep it 16 byte aligned: the padding goes
	// below the block, so a descending push ends with it and an ascending
	// pop starts by skipping it
	var pad uint64
	if in.word&multiplePaired != 0 && base == riscv.SP {
		total := uint64(len(regs)) * size
		pad = (total+15)&^15 - total
	}
	if step == size {
		address += pad
	}
	before := in.word&multipleBefore != 0
	for _, r := range regs {
		if before {
			address += step
		}
		if in.word&multipleStore != 0 {
			if err := i.store(in.pc, address, int(size), i.regs[r]); err != nil {
				return 0, err
			}
		} else {
			v, err := i.load(in.pc, address, int(size))
			if err != nil {
				return 0, err
			}
			i.setReg(r, v)
		}
		if !before {
			address += step
		}
	}

	if step != size {
		address -= pad
	}
	if in.word&multipleModifyBase == 0 {
		return in.next, nil
	}
	i.setReg(base, address)
	if base == riscv.SP {
		if err := i.checkStack(in.pc); err != nil {
			return 0, err
		}
	}
	return in.next, nil
}
