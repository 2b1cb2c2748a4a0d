package riscv

// Operand field extraction for the standard and compressed encodings.

func Rd(insn uint32) Reg  { return Reg(insn >> 7 & 0x1f) }
func Rs1(insn uint32) Reg { return Reg(insn >> 15 & 0x1f) }
func Rs2(insn uint32) Reg { return Reg(insn >> 20 & 0x1f) }
func Rs3(insn uint32) Reg { return Reg(insn >> 27 & 0x1f) }

func Funct3(insn uint32) uint32 { return insn >> 12 & 0x7 }

// Rm the rounding mode field of float instructions
func Rm(insn uint32) RoundingMode { return RoundingMode(insn >> 12 & 0x7) }

// ImmI sign-extended 12 bit I-type immediate
func ImmI(insn uint32) uint64 {
	return uint64(int64(int32(insn) >> 20))
}

// ImmS sign-extended 12 bit S-type immediate
func ImmS(insn uint32) uint64 {
	raw := insn>>7&0x1f | insn>>25<<5
	return SignExtend(uint64(raw), 12)
}

// ImmB sign-extended 13 bit branch offset, imm[12|10:5|4:1|11]
func ImmB(insn uint32) uint64 {
	raw := insn>>31<<12 | insn>>7&0x1<<11 | insn>>25&0x3f<<5 | insn>>8&0xf<<1
	return SignExtend(uint64(raw), 13)
}

// ImmU upper immediate, sign-extended from bit 31
func ImmU(insn uint32) uint64 {
	return uint64(int64(int32(insn & 0xfffff000)))
}

// ImmJ sign-extended 21 bit jump offset, imm[20|10:1|11|19:12]
func ImmJ(insn uint32) uint64 {
	raw := insn>>31<<20 | insn>>12&0xff<<12 | insn>>20&0x1<<11 | insn>>21&0x3ff<<1
	return SignExtend(uint64(raw), 21)
}

// Shamt the 6 bit shift amount of shift-immediate instructions
func Shamt(insn uint32) uint64 { return uint64(insn >> 20 & 0x3f) }

// CSRField the CSR number of Zicsr instructions
func CSRField(insn uint32) CSR { return CSR(insn >> 20) }

// SignExtend interprets the low n bits of v as a signed number
func SignExtend(v uint64, n uint) uint64 {
	shift := 64 - n
	return uint64(int64(v<<shift) >> shift)
}

// compressed formats

// CRd the full 5 bit rd/rs1 field at bits 11:7
func CRd(insn uint32) Reg { return Reg(insn >> 7 & 0x1f) }

// CRs2 the full 5 bit rs2 field at bits 6:2
func CRs2(insn uint32) Reg { return Reg(insn >> 2 & 0x1f) }

// CRs1s the 3 bit rs1'/rd' field at bits 9:7 (x8-x15)
func CRs1s(insn uint32) Reg { return Reg(insn>>7&0x7) + 8 }

// CRs2s the 3 bit rs2'/rd' field at bits 4:2 (x8-x15)
func CRs2s(insn uint32) Reg { return Reg(insn>>2&0x7) + 8 }

// CImm the sign-extended 6 bit CI immediate imm[5|4:0]
func CImm(insn uint32) uint64 {
	raw := insn>>12&0x1<<5 | insn>>2&0x1f
	return SignExtend(uint64(raw), 6)
}

// CUimm the unsigned 6 bit CI immediate, used by shifts
func CUimm(insn uint32) uint64 {
	return uint64(insn>>12&0x1<<5 | insn>>2&0x1f)
}

// CAddi4spnImm nzuimm[5:4|9:6|2|3]
func CAddi4spnImm(insn uint32) uint64 {
	return uint64(insn>>7&0x30 | insn>>1&0x3c0 | insn>>4&0x4 | insn>>2&0x8)
}

// CAddi16spImm nzimm[9|4|6|8:7|5]
func CAddi16spImm(insn uint32) uint64 {
	raw := insn>>3&0x200 | insn>>2&0x10 | insn<<1&0x40 | insn<<4&0x180 | insn<<3&0x20
	return SignExtend(uint64(raw), 10)
}

// CLuiImm nzimm[17|16:12]
func CLuiImm(insn uint32) uint64 {
	return CImm(insn) << 12
}

// CLwImm uimm[5:3|2|6] of c.lw/c.sw/c.flw/c.fsw
func CLwImm(insn uint32) uint64 {
	return uint64(insn>>7&0x38 | insn>>4&0x4 | insn<<1&0x40)
}

// CLdImm uimm[5:3|7:6] of c.ld/c.sd/c.fld/c.fsd
func CLdImm(insn uint32) uint64 {
	return uint64(insn>>7&0x38 | insn<<1&0xc0)
}

// CLwspImm uimm[5|4:2|7:6] of c.lwsp/c.flwsp
func CLwspImm(insn uint32) uint64 {
	return uint64(insn>>7&0x20 | insn>>2&0x1c | insn<<4&0xc0)
}

// CLdspImm uimm[5|4:3|8:6] of c.ldsp/c.fldsp
func CLdspImm(insn uint32) uint64 {
	return uint64(insn>>7&0x20 | insn>>2&0x18 | insn<<4&0x1c0)
}

// CSwspImm uimm[5:2|7:6] of c.swsp/c.fswsp
func CSwspImm(insn uint32) uint64 {
	return uint64(insn>>7&0x3c | insn>>1&0xc0)
}

// CSdspImm uimm[5:3|8:6] of c.sdsp/c.fsdsp
func CSdspImm(insn uint32) uint64 {
	return uint64(insn>>7&0x38 | insn>>1&0x1c0)
}

// CJImm offset[11|4|9:8|10|6|7|3:1|5]
func CJImm(insn uint32) uint64 {
	raw := insn>>1&0x800 | insn>>7&0x10 | insn>>1&0x300 | insn<<2&0x400 |
		insn>>1&0x40 | insn<<1&0x80 | insn>>2&0xe | insn<<3&0x20
	return SignExtend(uint64(raw), 12)
}

// CBImm offset[8|4:3|7:6|2:1|5]
func CBImm(insn uint32) uint64 {
	raw := insn>>4&0x100 | insn>>7&0x18 | insn<<1&0xc0 | insn>>2&0x6 | insn<<3&0x20
	return SignExtend(uint64(raw), 9)
}

// ExecItIndex the table index of exec.it, bits 12:5
func ExecItIndex(insn uint32) uint64 {
	return uint64(insn >> 5 & 0xff)
}

// InsnLength length in bytes of the instruction starting with the given
// halfword
func InsnLength(low uint16) int {
	if low&0x3 != 0x3 {
		return 2
	}
	return 4
}
