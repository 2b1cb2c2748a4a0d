package interpreter

import (
	"github.com/eigerco/rvsim/internal/riscv"
)

func init() {
	register(riscv.ExtI, map[riscv.InsnID]handler{
		riscv.Lui:    (*Instance).lui,
		riscv.Auipc:  (*Instance).auipc,
		riscv.Jal:    (*Instance).jal,
		riscv.Jalr:   (*Instance).jalr,
		riscv.Beq:    branch(func(a, b uint64) bool { return a == b }),
		riscv.Bne:    branch(func(a, b uint64) bool { return a != b }),
		riscv.Blt:    branch(func(a, b uint64) bool { return int64(a) < int64(b) }),
		riscv.Bge:    branch(func(a, b uint64) bool { return int64(a) >= int64(b) }),
		riscv.Bltu:   branch(func(a, b uint64) bool { return a < b }),
		riscv.Bgeu:   branch(func(a, b uint64) bool { return a >= b }),
		riscv.Lb:     loadOp(1, true),
		riscv.Lh:     loadOp(2, true),
		riscv.Lw:     loadOp(4, true),
		riscv.Ld:     loadOp(8, true),
		riscv.Lbu:    loadOp(1, false),
		riscv.Lhu:    loadOp(2, false),
		riscv.Lwu:    loadOp(4, false),
		riscv.Sb:     storeOp(1),
		riscv.Sh:     storeOp(2),
		riscv.Sw:     storeOp(4),
		riscv.Sd:     storeOp(8),
		riscv.Addi:   (*Instance).addi,
		riscv.Slti:   immOp(func(i *Instance, a, imm uint64) uint64 { return boolToUint(int64(a) < int64(imm)) }),
		riscv.Sltiu:  immOp(func(i *Instance, a, imm uint64) uint64 { return boolToUint(i.addr(a) < i.addr(imm)) }),
		riscv.Xori:   immOp(func(_ *Instance, a, imm uint64) uint64 { return a ^ imm }),
		riscv.Ori:    immOp(func(_ *Instance, a, imm uint64) uint64 { return a | imm }),
		riscv.Andi:   immOp(func(_ *Instance, a, imm uint64) uint64 { return a & imm }),
		riscv.Slli:   shiftImm(func(i *Instance, r riscv.Reg, sh uint64) uint64 { return i.regs[r] << sh }),
		riscv.Srli:   shiftImm(func(i *Instance, r riscv.Reg, sh uint64) uint64 { return i.ureg(r) >> sh }),
		riscv.Srai:   shiftImm(func(i *Instance, r riscv.Reg, sh uint64) uint64 { return uint64(i.sreg(r) >> sh) }),
		riscv.Add:    (*Instance).add,
		riscv.Sub:    (*Instance).sub,
		riscv.Sll:    regOp(func(i *Instance, a, b uint64) uint64 { return a << i.shiftMask(b) }),
		riscv.Slt:    regOp(func(_ *Instance, a, b uint64) uint64 { return boolToUint(int64(a) < int64(b)) }),
		riscv.Sltu:   regOp(func(i *Instance, a, b uint64) uint64 { return boolToUint(i.addr(a) < i.addr(b)) }),
		riscv.Xor:    regOp(func(_ *Instance, a, b uint64) uint64 { return a ^ b }),
		riscv.Srl:    regOp(func(i *Instance, a, b uint64) uint64 { return i.addr(a) >> i.shiftMask(b) }),
		riscv.Sra:    regOp(func(i *Instance, a, b uint64) uint64 { return uint64(int64(a) >> i.shiftMask(b)) }),
		riscv.Or:     regOp(func(_ *Instance, a, b uint64) uint64 { return a | b }),
		riscv.And:    regOp(func(_ *Instance, a, b uint64) uint64 { return a & b }),
		riscv.Fence:  nop,
		riscv.FenceI: nop,
		riscv.Ecall:  (*Instance).ecall,
		riscv.Ebreak: func(_ *Instance, in *instr) (uint64, error) { return 0, riscv.Breakpointf(in.pc, "ebreak") },
		riscv.Csrrw:  csrOp(false, func(_, src uint64) uint64 { return src }),
		riscv.Csrrs:  csrOp(false, func(old, src uint64) uint64 { return old | src }),
		riscv.Csrrc:  csrOp(false, func(old, src uint64) uint64 { return old &^ src }),
		riscv.Csrrwi: csrOp(true, func(_, src uint64) uint64 { return src }),
		riscv.Csrrsi: csrOp(true, func(old, src uint64) uint64 { return old | src }),
		riscv.Csrrci: csrOp(true, func(old, src uint64) uint64 { return old &^ src }),
		riscv.Addiw:  immOp(func(_ *Instance, a, imm uint64) uint64 { return sext32(uint32(a + imm)) }),
		riscv.Slliw:  shiftImm(func(i *Instance, r riscv.Reg, sh uint64) uint64 { return sext32(uint32(i.regs[r]) << sh) }),
		riscv.Srliw:  shiftImm(func(i *Instance, r riscv.Reg, sh uint64) uint64 { return sext32(uint32(i.regs[r]) >> sh) }),
		riscv.Sraiw:  shiftImm(func(i *Instance, r riscv.Reg, sh uint64) uint64 { return uint64(int64(int32(i.regs[r]) >> sh)) }),
		riscv.Addw:   regOp(func(_ *Instance, a, b uint64) uint64 { return sext32(uint32(a + b)) }),
		riscv.Subw:   regOp(func(_ *Instance, a, b uint64) uint64 { return sext32(uint32(a - b)) }),
		riscv.Sllw:   regOp(func(_ *Instance, a, b uint64) uint64 { return sext32(uint32(a) << (b & 31)) }),
		riscv.Srlw:   regOp(func(_ *Instance, a, b uint64) uint64 { return sext32(uint32(a) >> (b & 31)) }),
		riscv.Sraw:   regOp(func(_ *Instance, a, b uint64) uint64 { return uint64(int64(int32(a) >> (b & 31))) }),
	})
}

func sext32(v uint32) uint64 {
	return uint64(int64(int32(v)))
}

func boolToUint(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

// shiftMask limits a variable shift amount to the register width
func (i *Instance) shiftMask(v uint64) uint64 {
	if i.is32() {
		return v & 31
	}
	return v & 63
}

func nop(_ *Instance, in *instr) (uint64, error) {
	return in.next, nil
}

func (i *Instance) lui(in *instr) (uint64, error) {
	i.setReg(riscv.Rd(in.word), riscv.ImmU(in.word))
	return in.next, nil
}

func (i *Instance) auipc(in *instr) (uint64, error) {
	i.setReg(riscv.Rd(in.word), in.pc+riscv.ImmU(in.word))
	return in.next, nil
}

func (i *Instance) jal(in *instr) (uint64, error) {
	target := in.pc + riscv.ImmJ(in.word)
	i.setReg(riscv.Rd(in.word), in.next)
	return target, nil
}

func (i *Instance) jalr(in *instr) (uint64, error) {
	target := (i.regs[riscv.Rs1(in.word)] + riscv.ImmI(in.word)) &^ 1
	i.setReg(riscv.Rd(in.word), in.next)
	return target, nil
}

// branch compares the stored register values; sign-extended storage keeps
// both the signed and the unsigned order of 32 bit values
func branch(cond func(a, b uint64) bool) handler {
	return func(i *Instance, in *instr) (uint64, error) {
		if cond(i.regs[riscv.Rs1(in.word)], i.regs[riscv.Rs2(in.word)]) {
			return in.pc + riscv.ImmB(in.word), nil
		}
		return in.next, nil
	}
}

func loadOp(size int, signed bool) handler {
	return func(i *Instance, in *instr) (uint64, error) {
		address := i.regs[riscv.Rs1(in.word)] + riscv.ImmI(in.word)
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

func storeOp(size int) handler {
	return func(i *Instance, in *instr) (uint64, error) {
		address := i.regs[riscv.Rs1(in.word)] + riscv.ImmS(in.word)
		if err := i.store(in.pc, address, size, i.regs[riscv.Rs2(in.word)]); err != nil {
			return 0, err
		}
		return in.next, nil
	}
}

func immOp(f func(i *Instance, a, imm uint64) uint64) handler {
	return func(i *Instance, in *instr) (uint64, error) {
		i.setReg(riscv.Rd(in.word), f(i, i.regs[riscv.Rs1(in.word)], riscv.ImmI(in.word)))
		return in.next, nil
	}
}

func regOp(f func(i *Instance, a, b uint64) uint64) handler {
	return func(i *Instance, in *instr) (uint64, error) {
		i.setReg(riscv.Rd(in.word), f(i, i.regs[riscv.Rs1(in.word)], i.regs[riscv.Rs2(in.word)]))
		return in.next, nil
	}
}

// shiftImm rejects shift amounts of 32 and up on 32 bit harts
func shiftImm(f func(i *Instance, r riscv.Reg, sh uint64) uint64) handler {
	return func(i *Instance, in *instr) (uint64, error) {
		sh := riscv.Shamt(in.word)
		if sh >= 32 && i.is32() {
			return 0, riscv.IllegalInstructionf(in.pc, "%s: shift amount %d out of range", in.op.Name, sh)
		}
		i.setReg(riscv.Rd(in.word), f(i, riscv.Rs1(in.word), sh))
		return in.next, nil
	}
}

func (i *Instance) addi(in *instr) (uint64, error) {
	rd := riscv.Rd(in.word)
	i.setReg(rd, i.regs[riscv.Rs1(in.word)]+riscv.ImmI(in.word))
	if rd == riscv.SP {
		if err := i.checkStack(in.pc); err != nil {
			return 0, err
		}
	}
	return in.next, nil
}

func (i *Instance) add(in *instr) (uint64, error) {
	rd := riscv.Rd(in.word)
	i.setReg(rd, i.regs[riscv.Rs1(in.word)]+i.regs[riscv.Rs2(in.word)])
	if rd == riscv.SP {
		if err := i.checkStack(in.pc); err != nil {
			return 0, err
		}
	}
	return in.next, nil
}

func (i *Instance) sub(in *instr) (uint64, error) {
	rd := riscv.Rd(in.word)
	i.setReg(rd, i.regs[riscv.Rs1(in.word)]-i.regs[riscv.Rs2(in.word)])
	if rd == riscv.SP {
		if err := i.checkStack(in.pc); err != nil {
			return 0, err
		}
	}
	return in.next, nil
}

// csrOp the read-modify-write CSR instructions. The CSR is always read
// first; the set/clear forms skip the write when the operand is x0 or zero.
func csrOp(immediate bool, update func(old, src uint64) uint64) handler {
	return func(i *Instance, in *instr) (uint64, error) {
		c := riscv.CSRField(in.word)
		rs1 := riscv.Rs1(in.word)
		src := i.ureg(rs1)
		if immediate {
			src = uint64(rs1)
		}
		old, err := i.FetchCSR(in.pc, c)
		if err != nil {
			return 0, err
		}
		write := true
		if f3 := riscv.Funct3(in.word) & 3; f3 != 1 && rs1 == riscv.Zero {
			write = false
		}
		if write {
			if err := i.StoreCSR(in.pc, c, update(old, src)); err != nil {
				return 0, err
			}
		}
		i.setReg(riscv.Rd(in.word), old)
		return in.next, nil
	}
}
