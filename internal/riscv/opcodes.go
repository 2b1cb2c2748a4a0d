package riscv

import "slices"

// Extension an instruction set extension tag
type Extension string

const (
	ExtI     Extension = "I"
	ExtM     Extension = "M"
	ExtA     Extension = "A"
	ExtF     Extension = "F"
	ExtD     Extension = "D"
	ExtC     Extension = "C"
	ExtP     Extension = "P"
	ExtXH    Extension = "XH" // half precision float
	ExtXB    Extension = "XB" // bfloat16 conversions
	ExtAndes Extension = "XANDES"
)

// Opcode an immutable opcode descriptor
type Opcode struct {
	ID   InsnID
	Name string
	// XLEN the hart width the encoding is valid for, 0 when any
	XLEN       XLEN
	Extensions []Extension
	Match      uint32
	Mask       uint32
	Matcher    func(op *Opcode, insn uint32) bool
}

// Matches reports whether the descriptor accepts the instruction word
func (op *Opcode) Matches(insn uint32) bool {
	return op.Matcher(op, insn)
}

// Extension the extension whose executor runs the instruction. Compressed
// forms always go to the compressed executor even when they also belong to
// a float extension.
func (op *Opcode) Extension() Extension {
	for _, e := range op.Extensions {
		if e == ExtC {
			return ExtC
		}
	}
	return op.Extensions[0]
}

// Compressed reports whether the encoding is a 16 bit one
func (op *Opcode) Compressed() bool {
	return op.Match&0x3 != 0x3
}

// HashBuckets number of buckets of the opcode index
const HashBuckets = 128

// Hash the bucket of an instruction word: the quadrant for compressed words,
// the major opcode otherwise
func Hash(insn uint32) int {
	if insn&0x3 != 0x3 {
		return int(insn & 0x3)
	}
	return int(insn & 0x7f)
}

func matchOpcode(op *Opcode, insn uint32) bool {
	return insn&op.Mask == op.Match
}

func matchRdNonzero(op *Opcode, insn uint32) bool {
	return matchOpcode(op, insn) && Rd(insn) != Zero
}

func matchCAdd(op *Opcode, insn uint32) bool {
	return matchRdNonzero(op, insn) && CRs2(insn) != Zero
}

func matchCAddi4spn(op *Opcode, insn uint32) bool {
	return matchOpcode(op, insn) && CAddi4spnImm(insn) != 0
}

func matchCAddi16sp(op *Opcode, insn uint32) bool {
	return matchOpcode(op, insn) && Rd(insn) == SP && CAddi16spImm(insn) != 0
}

func matchCLui(op *Opcode, insn uint32) bool {
	return matchRdNonzero(op, insn) && Rd(insn) != SP && CImm(insn) != 0
}

func matchCSlli(op *Opcode, insn uint32) bool {
	return matchRdNonzero(op, insn) && CUimm(insn) != 0
}

func matchCShiftRight(op *Opcode, insn uint32) bool {
	return matchOpcode(op, insn) && CUimm(insn) != 0
}

// mask shapes
const (
	maskOpcode  uint32 = 0x0000007f
	maskF3      uint32 = 0x0000707f
	maskR       uint32 = 0xfe00707f
	maskRs2     uint32 = 0xfff0707f
	maskRm      uint32 = 0xfe00007f
	maskRs2Rm   uint32 = 0xfff0007f
	maskR4      uint32 = 0x0600007f
	maskAMO     uint32 = 0xf800707f
	maskLR      uint32 = 0xf9f0707f
	maskShift   uint32 = 0xfc00707f
	maskFull    uint32 = 0xffffffff
	maskSystem  uint32 = 0xffffffff
	maskFenceI  uint32 = 0x0000707f
	maskCQuad   uint32 = 0x0000e003
	maskCArith  uint32 = 0x0000ec03
	maskCReg    uint32 = 0x0000fc63
	maskCJr     uint32 = 0x0000f07f
	maskCMv     uint32 = 0x0000f003
	maskCNop    uint32 = 0x0000ef83
	maskCEbreak uint32 = 0x0000ffff
)

// major opcodes
const (
	opLoad    uint32 = 0x03
	opLoadFP  uint32 = 0x07
	opCustom0 uint32 = 0x0b
	opMiscMem uint32 = 0x0f
	opOpImm   uint32 = 0x13
	opAuipc   uint32 = 0x17
	opOpImm32 uint32 = 0x1b
	opStore   uint32 = 0x23
	opStoreFP uint32 = 0x27
	opCustom1 uint32 = 0x2b
	opAMO     uint32 = 0x2f
	opOp      uint32 = 0x33
	opLui     uint32 = 0x37
	opOp32    uint32 = 0x3b
	opMadd    uint32 = 0x43
	opMsub    uint32 = 0x47
	opNmsub   uint32 = 0x4b
	opNmadd   uint32 = 0x4f
	opOpFP    uint32 = 0x53
	opCustom2 uint32 = 0x5b
	opBranch  uint32 = 0x63
	opJalr    uint32 = 0x67
	opJal     uint32 = 0x6f
	opSystem  uint32 = 0x73
	opP       uint32 = 0x77
	opCustom3 uint32 = 0x7b
)

func mI(funct3, opcode uint32) uint32 {
	return funct3<<12 | opcode
}

func mR(funct7, funct3, opcode uint32) uint32 {
	return funct7<<25 | funct3<<12 | opcode
}

func mRs2(funct7, rs2, funct3, opcode uint32) uint32 {
	return funct7<<25 | rs2<<20 | funct3<<12 | opcode
}

func mR4(fmt, opcode uint32) uint32 {
	return fmt<<25 | opcode
}

func mAMO(funct5, funct3 uint32) uint32 {
	return funct5<<27 | funct3<<12 | opAMO
}

// compressed match: funct3 in bits 15:13 and the quadrant
func mC(funct3, quadrant uint32) uint32 {
	return funct3<<13 | quadrant
}

var (
	extI      = []Extension{ExtI}
	extM      = []Extension{ExtM}
	extA      = []Extension{ExtA}
	extF      = []Extension{ExtF}
	extD      = []Extension{ExtD}
	extXH     = []Extension{ExtXH}
	extXB     = []Extension{ExtXB}
	extC      = []Extension{ExtC}
	extFC     = []Extension{ExtF, ExtC}
	extDC     = []Extension{ExtD, ExtC}
	extP      = []Extension{ExtP}
	extAndes  = []Extension{ExtAndes}
	extCAndes = []Extension{ExtC, ExtAndes}
)

var integerOpcodes = []Opcode{
	{Lui, "lui", 0, extI, opLui, maskOpcode, matchOpcode},
	{Auipc, "auipc", 0, extI, opAuipc, maskOpcode, matchOpcode},
	{Jal, "jal", 0, extI, opJal, maskOpcode, matchOpcode},
	{Jalr, "jalr", 0, extI, mI(0, opJalr), maskF3, matchOpcode},
	{Beq, "beq", 0, extI, mI(0, opBranch), maskF3, matchOpcode},
	{Bne, "bne", 0, extI, mI(1, opBranch), maskF3, matchOpcode},
	{Blt, "blt", 0, extI, mI(4, opBranch), maskF3, matchOpcode},
	{Bge, "bge", 0, extI, mI(5, opBranch), maskF3, matchOpcode},
	{Bltu, "bltu", 0, extI, mI(6, opBranch), maskF3, matchOpcode},
	{Bgeu, "bgeu", 0, extI, mI(7, opBranch), maskF3, matchOpcode},
	{Lb, "lb", 0, extI, mI(0, opLoad), maskF3, matchOpcode},
	{Lh, "lh", 0, extI, mI(1, opLoad), maskF3, matchOpcode},
	{Lw, "lw", 0, extI, mI(2, opLoad), maskF3, matchOpcode},
	{Ld, "ld", XLEN64, extI, mI(3, opLoad), maskF3, matchOpcode},
	{Lbu, "lbu", 0, extI, mI(4, opLoad), maskF3, matchOpcode},
	{Lhu, "lhu", 0, extI, mI(5, opLoad), maskF3, matchOpcode},
	{Lwu, "lwu", XLEN64, extI, mI(6, opLoad), maskF3, matchOpcode},
	{Sb, "sb", 0, extI, mI(0, opStore), maskF3, matchOpcode},
	{Sh, "sh", 0, extI, mI(1, opStore), maskF3, matchOpcode},
	{Sw, "sw", 0, extI, mI(2, opStore), maskF3, matchOpcode},
	{Sd, "sd", XLEN64, extI, mI(3, opStore), maskF3, matchOpcode},
	{Addi, "addi", 0, extI, mI(0, opOpImm), maskF3, matchOpcode},
	{Slti, "slti", 0, extI, mI(2, opOpImm), maskF3, matchOpcode},
	{Sltiu, "sltiu", 0, extI, mI(3, opOpImm), maskF3, matchOpcode},
	{Xori, "xori", 0, extI, mI(4, opOpImm), maskF3, matchOpcode},
	{Ori, "ori", 0, extI, mI(6, opOpImm), maskF3, matchOpcode},
	{Andi, "andi", 0, extI, mI(7, opOpImm), maskF3, matchOpcode},
	{Slli, "slli", 0, extI, mI(1, opOpImm), maskShift, matchOpcode},
	{Srli, "srli", 0, extI, mI(5, opOpImm), maskShift, matchOpcode},
	{Srai, "srai", 0, extI, 0x40000000 | mI(5, opOpImm), maskShift, matchOpcode},
	{Add, "add", 0, extI, mR(0x00, 0, opOp), maskR, matchOpcode},
	{Sub, "sub", 0, extI, mR(0x20, 0, opOp), maskR, matchOpcode},
	{Sll, "sll", 0, extI, mR(0x00, 1, opOp), maskR, matchOpcode},
	{Slt, "slt", 0, extI, mR(0x00, 2, opOp), maskR, matchOpcode},
	{Sltu, "sltu", 0, extI, mR(0x00, 3, opOp), maskR, matchOpcode},
	{Xor, "xor", 0, extI, mR(0x00, 4, opOp), maskR, matchOpcode},
	{Srl, "srl", 0, extI, mR(0x00, 5, opOp), maskR, matchOpcode},
	{Sra, "sra", 0, extI, mR(0x20, 5, opOp), maskR, matchOpcode},
	{Or, "or", 0, extI, mR(0x00, 6, opOp), maskR, matchOpcode},
	{And, "and", 0, extI, mR(0x00, 7, opOp), maskR, matchOpcode},
	{Fence, "fence", 0, extI, mI(0, opMiscMem), maskF3, matchOpcode},
	{FenceI, "fence.i", 0, extI, mI(1, opMiscMem), maskFenceI, matchOpcode},
	{Ecall, "ecall", 0, extI, opSystem, maskSystem, matchOpcode},
	{Ebreak, "ebreak", 0, extI, 0x00100000 | opSystem, maskSystem, matchOpcode},
	{Csrrw, "csrrw", 0, extI, mI(1, opSystem), maskF3, matchOpcode},
	{Csrrs, "csrrs", 0, extI, mI(2, opSystem), maskF3, matchOpcode},
	{Csrrc, "csrrc", 0, extI, mI(3, opSystem), maskF3, matchOpcode},
	{Csrrwi, "csrrwi", 0, extI, mI(5, opSystem), maskF3, matchOpcode},
	{Csrrsi, "csrrsi", 0, extI, mI(6, opSystem), maskF3, matchOpcode},
	{Csrrci, "csrrci", 0, extI, mI(7, opSystem), maskF3, matchOpcode},
	{Addiw, "addiw", XLEN64, extI, mI(0, opOpImm32), maskF3, matchOpcode},
	{Slliw, "slliw", XLEN64, extI, mR(0x00, 1, opOpImm32), maskR, matchOpcode},
	{Srliw, "srliw", XLEN64, extI, mR(0x00, 5, opOpImm32), maskR, matchOpcode},
	{Sraiw, "sraiw", XLEN64, extI, mR(0x20, 5, opOpImm32), maskR, matchOpcode},
	{Addw, "addw", XLEN64, extI, mR(0x00, 0, opOp32), maskR, matchOpcode},
	{Subw, "subw", XLEN64, extI, mR(0x20, 0, opOp32), maskR, matchOpcode},
	{Sllw, "sllw", XLEN64, extI, mR(0x00, 1, opOp32), maskR, matchOpcode},
	{Srlw, "srlw", XLEN64, extI, mR(0x00, 5, opOp32), maskR, matchOpcode},
	{Sraw, "sraw", XLEN64, extI, mR(0x20, 5, opOp32), maskR, matchOpcode},
}

var multiplyOpcodes = []Opcode{
	{Mul, "mul", 0, extM, mR(0x01, 0, opOp), maskR, matchOpcode},
	{Mulh, "mulh", 0, extM, mR(0x01, 1, opOp), maskR, matchOpcode},
	{Mulhsu, "mulhsu", 0, extM, mR(0x01, 2, opOp), maskR, matchOpcode},
	{Mulhu, "mulhu", 0, extM, mR(0x01, 3, opOp), maskR, matchOpcode},
	{Div, "div", 0, extM, mR(0x01, 4, opOp), maskR, matchOpcode},
	{Divu, "divu", 0, extM, mR(0x01, 5, opOp), maskR, matchOpcode},
	{Rem, "rem", 0, extM, mR(0x01, 6, opOp), maskR, matchOpcode},
	{Remu, "remu", 0, extM, mR(0x01, 7, opOp), maskR, matchOpcode},
	{Mulw, "mulw", XLEN64, extM, mR(0x01, 0, opOp32), maskR, matchOpcode},
	{Divw, "divw", XLEN64, extM, mR(0x01, 4, opOp32), maskR, matchOpcode},
	{Divuw, "divuw", XLEN64, extM, mR(0x01, 5, opOp32), maskR, matchOpcode},
	{Remw, "remw", XLEN64, extM, mR(0x01, 6, opOp32), maskR, matchOpcode},
	{Remuw, "remuw", XLEN64, extM, mR(0x01, 7, opOp32), maskR, matchOpcode},
}

var atomicOpcodes = []Opcode{
	{LrW, "lr.w", 0, extA, mAMO(0x02, 2), maskLR, matchOpcode},
	{ScW, "sc.w", 0, extA, mAMO(0x03, 2), maskAMO, matchOpcode},
	{AmoswapW, "amoswap.w", 0, extA, mAMO(0x01, 2), maskAMO, matchOpcode},
	{AmoaddW, "amoadd.w", 0, extA, mAMO(0x00, 2), maskAMO, matchOpcode},
	{AmoxorW, "amoxor.w", 0, extA, mAMO(0x04, 2), maskAMO, matchOpcode},
	{AmoandW, "amoand.w", 0, extA, mAMO(0x0c, 2), maskAMO, matchOpcode},
	{AmoorW, "amoor.w", 0, extA, mAMO(0x08, 2), maskAMO, matchOpcode},
	{AmominW, "amomin.w", 0, extA, mAMO(0x10, 2), maskAMO, matchOpcode},
	{AmomaxW, "amomax.w", 0, extA, mAMO(0x14, 2), maskAMO, matchOpcode},
	{AmominuW, "amominu.w", 0, extA, mAMO(0x18, 2), maskAMO, matchOpcode},
	{AmomaxuW, "amomaxu.w", 0, extA, mAMO(0x1c, 2), maskAMO, matchOpcode},
	{LrD, "lr.d", XLEN64, extA, mAMO(0x02, 3), maskLR, matchOpcode},
	{ScD, "sc.d", XLEN64, extA, mAMO(0x03, 3), maskAMO, matchOpcode},
	{AmoswapD, "amoswap.d", XLEN64, extA, mAMO(0x01, 3), maskAMO, matchOpcode},
	{AmoaddD, "amoadd.d", XLEN64, extA, mAMO(0x00, 3), maskAMO, matchOpcode},
	{AmoxorD, "amoxor.d", XLEN64, extA, mAMO(0x04, 3), maskAMO, matchOpcode},
	{AmoandD, "amoand.d", XLEN64, extA, mAMO(0x0c, 3), maskAMO, matchOpcode},
	{AmoorD, "amoor.d", XLEN64, extA, mAMO(0x08, 3), maskAMO, matchOpcode},
	{AmominD, "amomin.d", XLEN64, extA, mAMO(0x10, 3), maskAMO, matchOpcode},
	{AmomaxD, "amomax.d", XLEN64, extA, mAMO(0x14, 3), maskAMO, matchOpcode},
	{AmominuD, "amominu.d", XLEN64, extA, mAMO(0x18, 3), maskAMO, matchOpcode},
	{AmomaxuD, "amomaxu.d", XLEN64, extA, mAMO(0x1c, 3), maskAMO, matchOpcode},
}

// float opcodes are listed per format; fmt 0 single, 1 double, 2 half
var singleOpcodes = []Opcode{
	{Flw, "flw", 0, extF, mI(2, opLoadFP), maskF3, matchOpcode},
	{Fsw, "fsw", 0, extF, mI(2, opStoreFP), maskF3, matchOpcode},
	{FmaddS, "fmadd.s", 0, extF, mR4(0, opMadd), maskR4, matchOpcode},
	{FmsubS, "fmsub.s", 0, extF, mR4(0, opMsub), maskR4, matchOpcode},
	{FnmsubS, "fnmsub.s", 0, extF, mR4(0, opNmsub), maskR4, matchOpcode},
	{FnmaddS, "fnmadd.s", 0, extF, mR4(0, opNmadd), maskR4, matchOpcode},
	{FaddS, "fadd.s", 0, extF, mR(0x00, 0, opOpFP), maskRm, matchOpcode},
	{FsubS, "fsub.s", 0, extF, mR(0x04, 0, opOpFP), maskRm, matchOpcode},
	{FmulS, "fmul.s", 0, extF, mR(0x08, 0, opOpFP), maskRm, matchOpcode},
	{FdivS, "fdiv.s", 0, extF, mR(0x0c, 0, opOpFP), maskRm, matchOpcode},
	{FsqrtS, "fsqrt.s", 0, extF, mRs2(0x2c, 0, 0, opOpFP), maskRs2Rm, matchOpcode},
	{FsgnjS, "fsgnj.s", 0, extF, mR(0x10, 0, opOpFP), maskR, matchOpcode},
	{FsgnjnS, "fsgnjn.s", 0, extF, mR(0x10, 1, opOpFP), maskR, matchOpcode},
	{FsgnjxS, "fsgnjx.s", 0, extF, mR(0x10, 2, opOpFP), maskR, matchOpcode},
	{FminS, "fmin.s", 0, extF, mR(0x14, 0, opOpFP), maskR, matchOpcode},
	{FmaxS, "fmax.s", 0, extF, mR(0x14, 1, opOpFP), maskR, matchOpcode},
	{FcvtWS, "fcvt.w.s", 0, extF, mRs2(0x60, 0, 0, opOpFP), maskRs2Rm, matchOpcode},
	{FcvtWuS, "fcvt.wu.s", 0, extF, mRs2(0x60, 1, 0, opOpFP), maskRs2Rm, matchOpcode},
	{FmvXW, "fmv.x.w", 0, extF, mRs2(0x70, 0, 0, opOpFP), maskRs2, matchOpcode},
	{FeqS, "feq.s", 0, extF, mR(0x50, 2, opOpFP), maskR, matchOpcode},
	{FltS, "flt.s", 0, extF, mR(0x50, 1, opOpFP), maskR, matchOpcode},
	{FleS, "fle.s", 0, extF, mR(0x50, 0, opOpFP), maskR, matchOpcode},
	{FclassS, "fclass.s", 0, extF, mRs2(0x70, 0, 1, opOpFP), maskRs2, matchOpcode},
	{FcvtSW, "fcvt.s.w", 0, extF, mRs2(0x68, 0, 0, opOpFP), maskRs2Rm, matchOpcode},
	{FcvtSWu, "fcvt.s.wu", 0, extF, mRs2(0x68, 1, 0, opOpFP), maskRs2Rm, matchOpcode},
	{FmvWX, "fmv.w.x", 0, extF, mRs2(0x78, 0, 0, opOpFP), maskRs2, matchOpcode},
	{FcvtLS, "fcvt.l.s", XLEN64, extF, mRs2(0x60, 2, 0, opOpFP), maskRs2Rm, matchOpcode},
	{FcvtLuS, "fcvt.lu.s", XLEN64, extF, mRs2(0x60, 3, 0, opOpFP), maskRs2Rm, matchOpcode},
	{FcvtSL, "fcvt.s.l", XLEN64, extF, mRs2(0x68, 2, 0, opOpFP), maskRs2Rm, matchOpcode},
	{FcvtSLu, "fcvt.s.lu", XLEN64, extF, mRs2(0x68, 3, 0, opOpFP), maskRs2Rm, matchOpcode},
}

var doubleOpcodes = []Opcode{
	{Fld, "fld", 0, extD, mI(3, opLoadFP), maskF3, matchOpcode},
	{Fsd, "fsd", 0, extD, mI(3, opStoreFP), maskF3, matchOpcode},
	{FmaddD, "fmadd.d", 0, extD, mR4(1, opMadd), maskR4, matchOpcode},
	{FmsubD, "fmsub.d", 0, extD, mR4(1, opMsub), maskR4, matchOpcode},
	{FnmsubD, "fnmsub.d", 0, extD, mR4(1, opNmsub), maskR4, matchOpcode},
	{FnmaddD, "fnmadd.d", 0, extD, mR4(1, opNmadd), maskR4, matchOpcode},
	{FaddD, "fadd.d", 0, extD, mR(0x01, 0, opOpFP), maskRm, matchOpcode},
	{FsubD, "fsub.d", 0, extD, mR(0x05, 0, opOpFP), maskRm, matchOpcode},
	{FmulD, "fmul.d", 0, extD, mR(0x09, 0, opOpFP), maskRm, matchOpcode},
	{FdivD, "fdiv.d", 0, extD, mR(0x0d, 0, opOpFP), maskRm, matchOpcode},
	{FsqrtD, "fsqrt.d", 0, extD, mRs2(0x2d, 0, 0, opOpFP), maskRs2Rm, matchOpcode},
	{FsgnjD, "fsgnj.d", 0, extD, mR(0x11, 0, opOpFP), maskR, matchOpcode},
	{FsgnjnD, "fsgnjn.d", 0, extD, mR(0x11, 1, opOpFP), maskR, matchOpcode},
	{FsgnjxD, "fsgnjx.d", 0, extD, mR(0x11, 2, opOpFP), maskR, matchOpcode},
	{FminD, "fmin.d", 0, extD, mR(0x15, 0, opOpFP), maskR, matchOpcode},
	{FmaxD, "fmax.d", 0, extD, mR(0x15, 1, opOpFP), maskR, matchOpcode},
	{FcvtSD, "fcvt.s.d", 0, extD, mRs2(0x20, 1, 0, opOpFP), maskRs2Rm, matchOpcode},
	{FcvtDS, "fcvt.d.s", 0, extD, mRs2(0x21, 0, 0, opOpFP), maskRs2Rm, matchOpcode},
	{FeqD, "feq.d", 0, extD, mR(0x51, 2, opOpFP), maskR, matchOpcode},
	{FltD, "flt.d", 0, extD, mR(0x51, 1, opOpFP), maskR, matchOpcode},
	{FleD, "fle.d", 0, extD, mR(0x51, 0, opOpFP), maskR, matchOpcode},
	{FclassD, "fclass.d", 0, extD, mRs2(0x71, 0, 1, opOpFP), maskRs2, matchOpcode},
	{FcvtWD, "fcvt.w.d", 0, extD, mRs2(0x61, 0, 0, opOpFP), maskRs2Rm, matchOpcode},
	{FcvtWuD, "fcvt.wu.d", 0, extD, mRs2(0x61, 1, 0, opOpFP), maskRs2Rm, matchOpcode},
	{FcvtDW, "fcvt.d.w", 0, extD, mRs2(0x69, 0, 0, opOpFP), maskRs2Rm, matchOpcode},
	{FcvtDWu, "fcvt.d.wu", 0, extD, mRs2(0x69, 1, 0, opOpFP), maskRs2Rm, matchOpcode},
	{FcvtLD, "fcvt.l.d", XLEN64, extD, mRs2(0x61, 2, 0, opOpFP), maskRs2Rm, matchOpcode},
	{FcvtLuD, "fcvt.lu.d", XLEN64, extD, mRs2(0x61, 3, 0, opOpFP), maskRs2Rm, matchOpcode},
	{FmvXD, "fmv.x.d", XLEN64, extD, mRs2(0x71, 0, 0, opOpFP), maskRs2, matchOpcode},
	{FcvtDL, "fcvt.d.l", XLEN64, extD, mRs2(0x69, 2, 0, opOpFP), maskRs2Rm, matchOpcode},
	{FcvtDLu, "fcvt.d.lu", XLEN64, extD, mRs2(0x69, 3, 0, opOpFP), maskRs2Rm, matchOpcode},
	{FmvDX, "fmv.d.x", XLEN64, extD, mRs2(0x79, 0, 0, opOpFP), maskRs2, matchOpcode},
}

var halfOpcodes = []Opcode{
	{Flh, "flh", 0, extXH, mI(1, opLoadFP), maskF3, matchOpcode},
	{Fsh, "fsh", 0, extXH, mI(1, opStoreFP), maskF3, matchOpcode},
	{FmaddH, "fmadd.h", 0, extXH, mR4(2, opMadd), maskR4, matchOpcode},
	{FmsubH, "fmsub.h", 0, extXH, mR4(2, opMsub), maskR4, matchOpcode},
	{FnmsubH, "fnmsub.h", 0, extXH, mR4(2, opNmsub), maskR4, matchOpcode},
	{FnmaddH, "fnmadd.h", 0, extXH, mR4(2, opNmadd), maskR4, matchOpcode},
	{FaddH, "fadd.h", 0, extXH, mR(0x02, 0, opOpFP), maskRm, matchOpcode},
	{FsubH, "fsub.h", 0, extXH, mR(0x06, 0, opOpFP), maskRm, matchOpcode},
	{FmulH, "fmul.h", 0, extXH, mR(0x0a, 0, opOpFP), maskRm, matchOpcode},
	{FdivH, "fdiv.h", 0, extXH, mR(0x0e, 0, opOpFP), maskRm, matchOpcode},
	{FsqrtH, "fsqrt.h", 0, extXH, mRs2(0x2e, 0, 0, opOpFP), maskRs2Rm, matchOpcode},
	{FsgnjH, "fsgnj.h", 0, extXH, mR(0x12, 0, opOpFP), maskR, matchOpcode},
	{FsgnjnH, "fsgnjn.h", 0, extXH, mR(0x12, 1, opOpFP), maskR, matchOpcode},
	{FsgnjxH, "fsgnjx.h", 0, extXH, mR(0x12, 2, opOpFP), maskR, matchOpcode},
	{FminH, "fmin.h", 0, extXH, mR(0x16, 0, opOpFP), maskR, matchOpcode},
	{FmaxH, "fmax.h", 0, extXH, mR(0x16, 1, opOpFP), maskR, matchOpcode},
	{FcvtSH, "fcvt.s.h", 0, extXH, mRs2(0x20, 2, 0, opOpFP), maskRs2Rm, matchOpcode},
	{FcvtHS, "fcvt.h.s", 0, extXH, mRs2(0x22, 0, 0, opOpFP), maskRs2Rm, matchOpcode},
	{FcvtDH, "fcvt.d.h", 0, extXH, mRs2(0x21, 2, 0, opOpFP), maskRs2Rm, matchOpcode},
	{FcvtHD, "fcvt.h.d", 0, extXH, mRs2(0x22, 1, 0, opOpFP), maskRs2Rm, matchOpcode},
	{FeqH, "feq.h", 0, extXH, mR(0x52, 2, opOpFP), maskR, matchOpcode},
	{FltH, "flt.h", 0, extXH, mR(0x52, 1, opOpFP), maskR, matchOpcode},
	{FleH, "fle.h", 0, extXH, mR(0x52, 0, opOpFP), maskR, matchOpcode},
	{FclassH, "fclass.h", 0, extXH, mRs2(0x72, 0, 1, opOpFP), maskRs2, matchOpcode},
	{FcvtWH, "fcvt.w.h", 0, extXH, mRs2(0x62, 0, 0, opOpFP), maskRs2Rm, matchOpcode},
	{FcvtWuH, "fcvt.wu.h", 0, extXH, mRs2(0x62, 1, 0, opOpFP), maskRs2Rm, matchOpcode},
	{FcvtHW, "fcvt.h.w", 0, extXH, mRs2(0x6a, 0, 0, opOpFP), maskRs2Rm, matchOpcode},
	{FcvtHWu, "fcvt.h.wu", 0, extXH, mRs2(0x6a, 1, 0, opOpFP), maskRs2Rm, matchOpcode},
	{FcvtLH, "fcvt.l.h", XLEN64, extXH, mRs2(0x62, 2, 0, opOpFP), maskRs2Rm, matchOpcode},
	{FcvtLuH, "fcvt.lu.h", XLEN64, extXH, mRs2(0x62, 3, 0, opOpFP), maskRs2Rm, matchOpcode},
	{FcvtHL, "fcvt.h.l", XLEN64, extXH, mRs2(0x6a, 2, 0, opOpFP), maskRs2Rm, matchOpcode},
	{FcvtHLu, "fcvt.h.lu", XLEN64, extXH, mRs2(0x6a, 3, 0, opOpFP), maskRs2Rm, matchOpcode},
	{FmvXH, "fmv.x.h", 0, extXH, mRs2(0x72, 0, 0, opOpFP), maskRs2, matchOpcode},
	{FmvHX, "fmv.h.x", 0, extXH, mRs2(0x7a, 0, 0, opOpFP), maskRs2, matchOpcode},
}

var bf16Opcodes = []Opcode{
	{FcvtSBF16, "fcvt.s.bf16", 0, extXB, mRs2(0x20, 6, 0, opOpFP), maskRs2Rm, matchOpcode},
	{FcvtBF16S, "fcvt.bf16.s", 0, extXB, mRs2(0x22, 6, 0, opOpFP), maskRs2Rm, matchOpcode},
}

var compressedOpcodes = []Opcode{
	{CAddi4spn, "c.addi4spn", 0, extC, mC(0, 0), maskCQuad, matchCAddi4spn},
	{CFld, "c.fld", 0, extDC, mC(1, 0), maskCQuad, matchOpcode},
	{CLw, "c.lw", 0, extC, mC(2, 0), maskCQuad, matchOpcode},
	{CFlw, "c.flw", XLEN32, extFC, mC(3, 0), maskCQuad, matchOpcode},
	{CLd, "c.ld", XLEN64, extC, mC(3, 0), maskCQuad, matchOpcode},
	{ExecIt, "exec.it", 0, extCAndes, mC(4, 0), maskCQuad, matchOpcode},
	{CFsd, "c.fsd", 0, extDC, mC(5, 0), maskCQuad, matchOpcode},
	{CSw, "c.sw", 0, extC, mC(6, 0), maskCQuad, matchOpcode},
	{CFsw, "c.fsw", XLEN32, extFC, mC(7, 0), maskCQuad, matchOpcode},
	{CSd, "c.sd", XLEN64, extC, mC(7, 0), maskCQuad, matchOpcode},
	{CNop, "c.nop", 0, extC, mC(0, 1), maskCNop, matchOpcode},
	{CAddi, "c.addi", 0, extC, mC(0, 1), maskCQuad, matchRdNonzero},
	{CJal, "c.jal", XLEN32, extC, mC(1, 1), maskCQuad, matchOpcode},
	{CAddiw, "c.addiw", XLEN64, extC, mC(1, 1), maskCQuad, matchRdNonzero},
	{CLi, "c.li", 0, extC, mC(2, 1), maskCQuad, matchOpcode},
	{CAddi16sp, "c.addi16sp", 0, extC, 0x6101, maskCNop, matchCAddi16sp},
	{CLui, "c.lui", 0, extC, mC(3, 1), maskCQuad, matchCLui},
	{CSrli, "c.srli", 0, extC, 0x8001, maskCArith, matchCShiftRight},
	{CSrai, "c.srai", 0, extC, 0x8401, maskCArith, matchCShiftRight},
	{CAndi, "c.andi", 0, extC, 0x8801, maskCArith, matchOpcode},
	{CSub, "c.sub", 0, extC, 0x8c01, maskCReg, matchOpcode},
	{CXor, "c.xor", 0, extC, 0x8c21, maskCReg, matchOpcode},
	{COr, "c.or", 0, extC, 0x8c41, maskCReg, matchOpcode},
	{CAnd, "c.and", 0, extC, 0x8c61, maskCReg, matchOpcode},
	{CSubw, "c.subw", XLEN64, extC, 0x9c01, maskCReg, matchOpcode},
	{CAddw, "c.addw", XLEN64, extC, 0x9c21, maskCReg, matchOpcode},
	{CJ, "c.j", 0, extC, mC(5, 1), maskCQuad, matchOpcode},
	{CBeqz, "c.beqz", 0, extC, mC(6, 1), maskCQuad, matchOpcode},
	{CBnez, "c.bnez", 0, extC, mC(7, 1), maskCQuad, matchOpcode},
	{CSlli, "c.slli", 0, extC, mC(0, 2), maskCQuad, matchCSlli},
	{CFldsp, "c.fldsp", 0, extDC, mC(1, 2), maskCQuad, matchOpcode},
	{CLwsp, "c.lwsp", 0, extC, mC(2, 2), maskCQuad, matchRdNonzero},
	{CFlwsp, "c.flwsp", XLEN32, extFC, mC(3, 2), maskCQuad, matchOpcode},
	{CLdsp, "c.ldsp", XLEN64, extC, mC(3, 2), maskCQuad, matchRdNonzero},
	{CJr, "c.jr", 0, extC, 0x8002, maskCJr, matchRdNonzero},
	{CMv, "c.mv", 0, extC, 0x8002, maskCMv, matchCAdd},
	{CEbreak, "c.ebreak", 0, extC, 0x9002, maskCEbreak, matchOpcode},
	{CJalr, "c.jalr", 0, extC, 0x9002, maskCJr, matchRdNonzero},
	{CAdd, "c.add", 0, extC, 0x9002, maskCMv, matchCAdd},
	{CFsdsp, "c.fsdsp", 0, extDC, mC(5, 2), maskCQuad, matchOpcode},
	{CSwsp, "c.swsp", 0, extC, mC(6, 2), maskCQuad, matchOpcode},
	{CFswsp, "c.fswsp", XLEN32, extFC, mC(7, 2), maskCQuad, matchOpcode},
	{CSdsp, "c.sdsp", XLEN64, extC, mC(7, 2), maskCQuad, matchOpcode},
}

// Opcodes the full opcode table in scan order. A hart filters it by width
// and keeps the relative order.
var Opcodes = slices.Concat(
	integerOpcodes,
	multiplyOpcodes,
	atomicOpcodes,
	singleOpcodes,
	doubleOpcodes,
	halfOpcodes,
	bf16Opcodes,
	compressedOpcodes,
	packedOpcodes,
	andesOpcodes,
)
