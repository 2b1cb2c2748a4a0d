package interpreter

import (
	"encoding/binary"

	"github.com/eigerco/rvsim/internal/riscv"
)

func init() {
	register(riscv.ExtC, map[riscv.InsnID]handler{
		riscv.CAddi4spn: (*Instance).cAddi4spn,
		riscv.CFld:      cLoad(riscv.CLdImm, 8, fmtD),
		riscv.CLw:       cLoad(riscv.CLwImm, 4, nil),
		riscv.CFlw:      cLoad(riscv.CLwImm, 4, fmtS),
		riscv.CLd:       cLoad(riscv.CLdImm, 8, nil),
		riscv.CFsd:      cStore(riscv.CLdImm, 8, fmtD),
		riscv.CSw:       cStore(riscv.CLwImm, 4, nil),
		riscv.CFsw:      cStore(riscv.CLwImm, 4, fmtS),
		riscv.CSd:       cStore(riscv.CLdImm, 8, nil),
		riscv.CNop:      nop,
		riscv.CAddi:     (*Instance).cAddi,
		riscv.CJal:      (*Instance).cJal,
		riscv.CAddiw:    (*Instance).cAddiw,
		riscv.CLi:       (*Instance).cLi,
		riscv.CAddi16sp: (*Instance).cAddi16sp,
		riscv.CLui:      (*Instance).cLui,
		riscv.CSrli:     cShift(func(i *Instance, r riscv.Reg, sh uint64) uint64 { return i.ureg(r) >> sh }),
		riscv.CSrai:     cShift(func(i *Instance, r riscv.Reg, sh uint64) uint64 { return uint64(i.sreg(r) >> sh) }),
		riscv.CAndi:     (*Instance).cAndi,
		riscv.CSub:      cArith(func(a, b uint64) uint64 { return a - b }),
		riscv.CXor:      cArith(func(a, b uint64) uint64 { return a ^ b }),
		riscv.COr:       cArith(func(a, b uint64) uint64 { return a | b }),
		riscv.CAnd:      cArith(func(a, b uint64) uint64 { return a & b }),
		riscv.CSubw:     cArith(func(a, b uint64) uint64 { return sext32(uint32(a - b)) }),
		riscv.CAddw:     cArith(func(a, b uint64) uint64 { return sext32(uint32(a + b)) }),
		riscv.CJ:        func(_ *Instance, in *instr) (uint64, error) { return in.pc + riscv.CJImm(in.word), nil },
		riscv.CBeqz:     cBranch(true),
		riscv.CBnez:     cBranch(false),
		riscv.CSlli:     (*Instance).cSlli,
		riscv.CFldsp:    cLoadSP(riscv.CLdspImm, 8, fmtD),
		riscv.CLwsp:     cLoadSP(riscv.CLwspImm, 4, nil),
		riscv.CFlwsp:    cLoadSP(riscv.CLwspImm, 4, fmtS),
		riscv.CLdsp:     cLoadSP(riscv.CLdspImm, 8, nil),
		riscv.CJr:       func(i *Instance, in *instr) (uint64, error) { return i.regs[riscv.CRd(in.word)] &^ 1, nil },
		riscv.CMv:       (*Instance).cMv,
		riscv.CEbreak:   func(_ *Instance, in *instr) (uint64, error) { return 0, riscv.Breakpointf(in.pc, "c.ebreak") },
		riscv.CJalr:     (*Instance).cJalr,
		riscv.CAdd:      (*Instance).cAdd,
		riscv.CFsdsp:    cStoreSP(riscv.CSdspImm, 8, fmtD),
		riscv.CSwsp:     cStoreSP(riscv.CSwspImm, 4, nil),
		riscv.CFswsp:    cStoreSP(riscv.CSwspImm, 4, fmtS),
		riscv.CSdsp:     cStoreSP(riscv.CSdspImm, 8, nil),
		riscv.ExecIt:    (*Instance).execIt,
	})
}

// setSP writes the stack pointer and checks its alignment
func (i *Instance) setSP(pc, v uint64) error {
	i.setReg(riscv.SP, v)
	return i.checkStack(pc)
}

func (i *Instance) cAddi4spn(in *instr) (uint64, error) {
	i.setReg(riscv.CRs2s(in.word), i.regs[riscv.SP]+riscv.CAddi4spnImm(in.word))
	return in.next, nil
}

// cLoad the rd'/rs1' register loads; fp selects a float destination
func cLoad(imm func(uint32) uint64, size int, fp *fpFormat) handler {
	return func(i *Instance, in *instr) (uint64, error) {
		address := i.regs[riscv.CRs1s(in.word)] + imm(in.word)
		return i.cLoadTo(in, address, riscv.CRs2s(in.word), size, fp)
	}
}

func cLoadSP(imm func(uint32) uint64, size int, fp *fpFormat) handler {
	return func(i *Instance, in *instr) (uint64, error) {
		address := i.regs[riscv.SP] + imm(in.word)
		return i.cLoadTo(in, address, riscv.CRd(in.word), size, fp)
	}
}

func (i *Instance) cLoadTo(in *instr, address uint64, rd riscv.Reg, size int, fp *fpFormat) (uint64, error) {
	if fp != nil {
		v, err := i.load(in.pc, address, size)
		if err != nil {
			return 0, err
		}
		fp.write(i, rd, v)
		return in.next, nil
	}
	v, err := i.loadSigned(in.pc, address, size)
	if err != nil {
		return 0, err
	}
	i.setReg(rd, v)
	return in.next, nil
}

func cStore(imm func(uint32) uint64, size int, fp *fpFormat) handler {
	return func(i *Instance, in *instr) (uint64, error) {
		address := i.regs[riscv.CRs1s(in.word)] + imm(in.word)
		return i.cStoreFrom(in, address, riscv.CRs2s(in.word), size, fp)
	}
}

func cStoreSP(imm func(uint32) uint64, size int, fp *fpFormat) handler {
	return func(i *Instance, in *instr) (uint64, error) {
		address := i.regs[riscv.SP] + imm(in.word)
		return i.cStoreFrom(in, address, riscv.CRs2(in.word), size, fp)
	}
}

func (i *Instance) cStoreFrom(in *instr, address uint64, rs riscv.Reg, size int, fp *fpFormat) (uint64, error) {
	v := i.regs[rs]
	if fp != nil {
		v = fp.read(i, rs)
	}
	if err := i.store(in.pc, address, size, v); err != nil {
		return 0, err
	}
	return in.next, nil
}

func (i *Instance) cAddi(in *instr) (uint64, error) {
	rd := riscv.CRd(in.word)
	v := i.regs[rd] + riscv.CImm(in.word)
	if rd == riscv.SP {
		if err := i.setSP(in.pc, v); err != nil {
			return 0, err
		}
		return in.next, nil
	}
	i.setReg(rd, v)
	return in.next, nil
}

func (i *Instance) cJal(in *instr) (uint64, error) {
	i.setReg(riscv.RA, in.next)
	return in.pc + riscv.CJImm(in.word), nil
}

func (i *Instance) cAddiw(in *instr) (uint64, error) {
	rd := riscv.CRd(in.word)
	i.setReg(rd, sext32(uint32(i.regs[rd]+riscv.CImm(in.word))))
	return in.next, nil
}

func (i *Instance) cLi(in *instr) (uint64, error) {
	i.setReg(riscv.CRd(in.word), riscv.CImm(in.word))
	return in.next, nil
}

func (i *Instance) cAddi16sp(in *instr) (uint64, error) {
	if err := i.setSP(in.pc, i.regs[riscv.SP]+riscv.CAddi16spImm(in.word)); err != nil {
		return 0, err
	}
	return in.next, nil
}

func (i *Instance) cLui(in *instr) (uint64, error) {
	i.setReg(riscv.CRd(in.word), riscv.CLuiImm(in.word))
	return in.next, nil
}

func cShift(f func(i *Instance, r riscv.Reg, sh uint64) uint64) handler {
	return func(i *Instance, in *instr) (uint64, error) {
		sh := riscv.CUimm(in.word)
		if sh >= 32 && i.is32() {
			return 0, riscv.IllegalInstructionf(in.pc, "%s: shift amount %d out of range", in.op.Name, sh)
		}
		rd := riscv.CRs1s(in.word)
		i.setReg(rd, f(i, rd, sh))
		return in.next, nil
	}
}

func (i *Instance) cAndi(in *instr) (uint64, error) {
	rd := riscv.CRs1s(in.word)
	i.setReg(rd, i.regs[rd]&riscv.CImm(in.word))
	return in.next, nil
}

func cArith(f func(a, b uint64) uint64) handler {
	return func(i *Instance, in *instr) (uint64, error) {
		rd := riscv.CRs1s(in.word)
		i.setReg(rd, f(i.regs[rd], i.regs[riscv.CRs2s(in.word)]))
		return in.next, nil
	}
}

func cBranch(zero bool) handler {
	return func(i *Instance, in *instr) (uint64, error) {
		if (i.regs[riscv.CRs1s(in.word)] == 0) == zero {
			return in.pc + riscv.CBImm(in.word), nil
		}
		return in.next, nil
	}
}

func (i *Instance) cSlli(in *instr) (uint64, error) {
	sh := riscv.CUimm(in.word)
	if sh >= 32 && i.is32() {
		return 0, riscv.IllegalInstructionf(in.pc, "c.slli: shift amount %d out of range", sh)
	}
	rd := riscv.CRd(in.word)
	i.setReg(rd, i.regs[rd]<<sh)
	return in.next, nil
}

func (i *Instance) cMv(in *instr) (uint64, error) {
	rd := riscv.CRd(in.word)
	v := i.regs[riscv.CRs2(in.word)]
	if rd == riscv.SP {
		if err := i.setSP(in.pc, v); err != nil {
			return 0, err
		}
		return in.next, nil
	}
	i.setReg(rd, v)
	return in.next, nil
}

func (i *Instance) cJalr(in *instr) (uint64, error) {
	target := i.regs[riscv.CRd(in.word)] &^ 1
	i.setReg(riscv.RA, in.next)
	return target, nil
}

func (i *Instance) cAdd(in *instr) (uint64, error) {
	rd := riscv.CRd(in.word)
	v := i.regs[rd] + i.regs[riscv.CRs2(in.word)]
	if rd == riscv.SP {
		if err := i.setSP(in.pc, v); err != nil {
			return 0, err
		}
		return in.next, nil
	}
	i.setReg(rd, v)
	return in.next, nil
}

// execIt runs the 32 bit instruction at uitb + index*4 in place of itself.
// Table entries may be neither compressed nor exec.it.
func (i *Instance) execIt(in *instr) (uint64, error) {
	if in.ex9 {
		return 0, riscv.IllegalInstructionf(in.pc, "nested exec.it")
	}
	entry := i.addr(i.csrs[riscv.CSRUitb] + riscv.ExecItIndex(in.word)*4)
	var buf [4]byte
	if err := i.memory.Read(riscv.AccessFetch, entry, buf[:]); err != nil {
		return 0, riscv.TrapErr(in.pc, err)
	}
	word := binary.LittleEndian.Uint32(buf[:])
	if riscv.InsnLength(uint16(word)) != 4 {
		return 0, riscv.IllegalInstructionf(in.pc, "exec.it entry 0x%x holds a compressed instruction", entry)
	}
	return i.execute(word, in.pc, true)
}
