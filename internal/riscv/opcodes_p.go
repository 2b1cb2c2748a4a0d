package riscv

// Packed SIMD and DSP encodings. Everything lives under major opcode 0x77:
// funct3 000 carries the 8 and 16 bit lane operations, 001 the Q15/Q31
// scalar and multiply-accumulate operations, 010 the 32 bit lane operations
// of 64 bit harts and 011 bpick.

const (
	maskPImm3  uint32 = 0xff80707f // funct7 plus bits 24:23, 3 bit immediate
	maskPImm4  uint32 = 0xff00707f // funct7 plus bit 24, 4 bit immediate
	maskPBpick uint32 = 0x0600707f
)

func pR(funct7, funct3 uint32) uint32 {
	return mR(funct7, funct3, opP)
}

// pSub encodes a funct7 group where bits 24:23 select the instruction
func pSub(funct7, sel, funct3 uint32) uint32 {
	return funct7<<25 | sel<<23 | funct3<<12 | opP
}

func pRs2(funct7, rs2 uint32) uint32 {
	return mRs2(funct7, rs2, 0, opP)
}

var packedOpcodes = []Opcode{
	// 16 bit add/subtract
	{Add16, "add16", 0, extP, pR(0x20, 0), maskR, matchOpcode},
	{Radd16, "radd16", 0, extP, pR(0x00, 0), maskR, matchOpcode},
	{Uradd16, "uradd16", 0, extP, pR(0x10, 0), maskR, matchOpcode},
	{Kadd16, "kadd16", 0, extP, pR(0x08, 0), maskR, matchOpcode},
	{Ukadd16, "ukadd16", 0, extP, pR(0x18, 0), maskR, matchOpcode},
	{Sub16, "sub16", 0, extP, pR(0x21, 0), maskR, matchOpcode},
	{Rsub16, "rsub16", 0, extP, pR(0x01, 0), maskR, matchOpcode},
	{Ursub16, "ursub16", 0, extP, pR(0x11, 0), maskR, matchOpcode},
	{Ksub16, "ksub16", 0, extP, pR(0x09, 0), maskR, matchOpcode},
	{Uksub16, "uksub16", 0, extP, pR(0x19, 0), maskR, matchOpcode},
	{Cras16, "cras16", 0, extP, pR(0x22, 0), maskR, matchOpcode},
	{Rcras16, "rcras16", 0, extP, pR(0x02, 0), maskR, matchOpcode},
	{Urcras16, "urcras16", 0, extP, pR(0x12, 0), maskR, matchOpcode},
	{Kcras16, "kcras16", 0, extP, pR(0x0a, 0), maskR, matchOpcode},
	{Ukcras16, "ukcras16", 0, extP, pR(0x1a, 0), maskR, matchOpcode},
	{Crsa16, "crsa16", 0, extP, pR(0x23, 0), maskR, matchOpcode},
	{Rcrsa16, "rcrsa16", 0, extP, pR(0x03, 0), maskR, matchOpcode},
	{Urcrsa16, "urcrsa16", 0, extP, pR(0x13, 0), maskR, matchOpcode},
	{Kcrsa16, "kcrsa16", 0, extP, pR(0x0b, 0), maskR, matchOpcode},
	{Ukcrsa16, "ukcrsa16", 0, extP, pR(0x1b, 0), maskR, matchOpcode},

	// 8 bit add/subtract
	{Add8, "add8", 0, extP, pR(0x24, 0), maskR, matchOpcode},
	{Radd8, "radd8", 0, extP, pR(0x04, 0), maskR, matchOpcode},
	{Uradd8, "uradd8", 0, extP, pR(0x14, 0), maskR, matchOpcode},
	{Kadd8, "kadd8", 0, extP, pR(0x0c, 0), maskR, matchOpcode},
	{Ukadd8, "ukadd8", 0, extP, pR(0x1c, 0), maskR, matchOpcode},
	{Sub8, "sub8", 0, extP, pR(0x25, 0), maskR, matchOpcode},
	{Rsub8, "rsub8", 0, extP, pR(0x05, 0), maskR, matchOpcode},
	{Ursub8, "ursub8", 0, extP, pR(0x15, 0), maskR, matchOpcode},
	{Ksub8, "ksub8", 0, extP, pR(0x0d, 0), maskR, matchOpcode},
	{Uksub8, "uksub8", 0, extP, pR(0x1d, 0), maskR, matchOpcode},

	// 16 bit shifts
	{Sra16, "sra16", 0, extP, pR(0x28, 0), maskR, matchOpcode},
	{Srl16, "srl16", 0, extP, pR(0x29, 0), maskR, matchOpcode},
	{Sll16, "sll16", 0, extP, pR(0x2a, 0), maskR, matchOpcode},
	{Kslra16, "kslra16", 0, extP, pR(0x2b, 0), maskR, matchOpcode},
	{Sra16U, "sra16.u", 0, extP, pR(0x30, 0), maskR, matchOpcode},
	{Srl16U, "srl16.u", 0, extP, pR(0x31, 0), maskR, matchOpcode},
	{Ksll16, "ksll16", 0, extP, pR(0x32, 0), maskR, matchOpcode},
	{Kslra16U, "kslra16.u", 0, extP, pR(0x33, 0), maskR, matchOpcode},
	{Srai16, "srai16", 0, extP, pSub(0x38, 0, 0), maskPImm4, matchOpcode},
	{Srai16U, "srai16.u", 0, extP, pSub(0x38, 2, 0), maskPImm4, matchOpcode},
	{Srli16, "srli16", 0, extP, pSub(0x39, 0, 0), maskPImm4, matchOpcode},
	{Srli16U, "srli16.u", 0, extP, pSub(0x39, 2, 0), maskPImm4, matchOpcode},
	{Slli16, "slli16", 0, extP, pSub(0x3a, 0, 0), maskPImm4, matchOpcode},
	{Kslli16, "kslli16", 0, extP, pSub(0x3a, 2, 0), maskPImm4, matchOpcode},

	// 8 bit shifts
	{Sra8, "sra8", 0, extP, pR(0x2c, 0), maskR, matchOpcode},
	{Srl8, "srl8", 0, extP, pR(0x2d, 0), maskR, matchOpcode},
	{Sll8, "sll8", 0, extP, pR(0x2e, 0), maskR, matchOpcode},
	{Kslra8, "kslra8", 0, extP, pR(0x2f, 0), maskR, matchOpcode},
	{Sra8U, "sra8.u", 0, extP, pR(0x34, 0), maskR, matchOpcode},
	{Srl8U, "srl8.u", 0, extP, pR(0x35, 0), maskR, matchOpcode},
	{Ksll8, "ksll8", 0, extP, pR(0x36, 0), maskR, matchOpcode},
	{Kslra8U, "kslra8.u", 0, extP, pR(0x37, 0), maskR, matchOpcode},
	{Srai8, "srai8", 0, extP, pSub(0x3c, 0, 0), maskPImm3, matchOpcode},
	{Srai8U, "srai8.u", 0, extP, pSub(0x3c, 1, 0), maskPImm3, matchOpcode},
	{Srli8, "srli8", 0, extP, pSub(0x3d, 0, 0), maskPImm3, matchOpcode},
	{Srli8U, "srli8.u", 0, extP, pSub(0x3d, 1, 0), maskPImm3, matchOpcode},
	{Slli8, "slli8", 0, extP, pSub(0x3e, 0, 0), maskPImm3, matchOpcode},
	{Kslli8, "kslli8", 0, extP, pSub(0x3e, 1, 0), maskPImm3, matchOpcode},

	// compares
	{Cmpeq16, "cmpeq16", 0, extP, pR(0x26, 0), maskR, matchOpcode},
	{Scmplt16, "scmplt16", 0, extP, pR(0x06, 0), maskR, matchOpcode},
	{Scmple16, "scmple16", 0, extP, pR(0x0e, 0), maskR, matchOpcode},
	{Ucmplt16, "ucmplt16", 0, extP, pR(0x16, 0), maskR, matchOpcode},
	{Ucmple16, "ucmple16", 0, extP, pR(0x1e, 0), maskR, matchOpcode},
	{Cmpeq8, "cmpeq8", 0, extP, pR(0x27, 0), maskR, matchOpcode},
	{Scmplt8, "scmplt8", 0, extP, pR(0x07, 0), maskR, matchOpcode},
	{Scmple8, "scmple8", 0, extP, pR(0x0f, 0), maskR, matchOpcode},
	{Ucmplt8, "ucmplt8", 0, extP, pR(0x17, 0), maskR, matchOpcode},
	{Ucmple8, "ucmple8", 0, extP, pR(0x1f, 0), maskR, matchOpcode},

	// lane multiplies
	{Smul16, "smul16", 0, extP, pR(0x50, 0), maskR, matchOpcode},
	{Smulx16, "smulx16", 0, extP, pR(0x51, 0), maskR, matchOpcode},
	{Umul16, "umul16", 0, extP, pR(0x58, 0), maskR, matchOpcode},
	{Umulx16, "umulx16", 0, extP, pR(0x59, 0), maskR, matchOpcode},
	{Khm16, "khm16", 0, extP, pR(0x43, 0), maskR, matchOpcode},
	{Khmx16, "khmx16", 0, extP, pR(0x4b, 0), maskR, matchOpcode},
	{Smul8, "smul8", 0, extP, pR(0x54, 0), maskR, matchOpcode},
	{Smulx8, "smulx8", 0, extP, pR(0x55, 0), maskR, matchOpcode},
	{Umul8, "umul8", 0, extP, pR(0x5c, 0), maskR, matchOpcode},
	{Umulx8, "umulx8", 0, extP, pR(0x5d, 0), maskR, matchOpcode},
	{Khm8, "khm8", 0, extP, pR(0x47, 0), maskR, matchOpcode},
	{Khmx8, "khmx8", 0, extP, pR(0x4f, 0), maskR, matchOpcode},

	// min/max/clip
	{Smin16, "smin16", 0, extP, pR(0x40, 0), maskR, matchOpcode},
	{Umin16, "umin16", 0, extP, pR(0x48, 0), maskR, matchOpcode},
	{Smax16, "smax16", 0, extP, pR(0x41, 0), maskR, matchOpcode},
	{Umax16, "umax16", 0, extP, pR(0x49, 0), maskR, matchOpcode},
	{Smin8, "smin8", 0, extP, pR(0x44, 0), maskR, matchOpcode},
	{Umin8, "umin8", 0, extP, pR(0x4c, 0), maskR, matchOpcode},
	{Smax8, "smax8", 0, extP, pR(0x45, 0), maskR, matchOpcode},
	{Umax8, "umax8", 0, extP, pR(0x4d, 0), maskR, matchOpcode},
	{Sclip16, "sclip16", 0, extP, pSub(0x42, 0, 0), maskPImm4, matchOpcode},
	{Uclip16, "uclip16", 0, extP, pSub(0x42, 2, 0), maskPImm4, matchOpcode},
	{Sclip8, "sclip8", 0, extP, pSub(0x46, 0, 0), maskPImm3, matchOpcode},
	{Uclip8, "uclip8", 0, extP, pSub(0x46, 2, 0), maskPImm3, matchOpcode},
	{Sclip32, "sclip32", 0, extP, pR(0x72, 0), maskR, matchOpcode},
	{Uclip32, "uclip32", 0, extP, pR(0x7a, 0), maskR, matchOpcode},

	// bit counts, selected by rs2
	{Clrs8, "clrs8", 0, extP, pRs2(0x57, 0x00), maskRs2, matchOpcode},
	{Clz8, "clz8", 0, extP, pRs2(0x57, 0x01), maskRs2, matchOpcode},
	{Clo8, "clo8", 0, extP, pRs2(0x57, 0x03), maskRs2, matchOpcode},
	{Clrs16, "clrs16", 0, extP, pRs2(0x57, 0x08), maskRs2, matchOpcode},
	{Clz16, "clz16", 0, extP, pRs2(0x57, 0x09), maskRs2, matchOpcode},
	{Clo16, "clo16", 0, extP, pRs2(0x57, 0x0b), maskRs2, matchOpcode},
	{Clrs32, "clrs32", 0, extP, pRs2(0x57, 0x18), maskRs2, matchOpcode},
	{Clz32, "clz32", 0, extP, pRs2(0x57, 0x19), maskRs2, matchOpcode},
	{Clo32, "clo32", 0, extP, pRs2(0x57, 0x1b), maskRs2, matchOpcode},

	// unpack, absolute value and byte moves, selected by rs2
	{Sunpkd810, "sunpkd810", 0, extP, pRs2(0x56, 0x08), maskRs2, matchOpcode},
	{Sunpkd820, "sunpkd820", 0, extP, pRs2(0x56, 0x09), maskRs2, matchOpcode},
	{Sunpkd830, "sunpkd830", 0, extP, pRs2(0x56, 0x0a), maskRs2, matchOpcode},
	{Sunpkd831, "sunpkd831", 0, extP, pRs2(0x56, 0x0b), maskRs2, matchOpcode},
	{Sunpkd832, "sunpkd832", 0, extP, pRs2(0x56, 0x13), maskRs2, matchOpcode},
	{Zunpkd810, "zunpkd810", 0, extP, pRs2(0x56, 0x0c), maskRs2, matchOpcode},
	{Zunpkd820, "zunpkd820", 0, extP, pRs2(0x56, 0x0d), maskRs2, matchOpcode},
	{Zunpkd830, "zunpkd830", 0, extP, pRs2(0x56, 0x0e), maskRs2, matchOpcode},
	{Zunpkd831, "zunpkd831", 0, extP, pRs2(0x56, 0x0f), maskRs2, matchOpcode},
	{Zunpkd832, "zunpkd832", 0, extP, pRs2(0x56, 0x17), maskRs2, matchOpcode},
	{Kabs8, "kabs8", 0, extP, pRs2(0x56, 0x10), maskRs2, matchOpcode},
	{Kabs16, "kabs16", 0, extP, pRs2(0x56, 0x11), maskRs2, matchOpcode},
	{Kabs32, "kabs32", XLEN64, extP, pRs2(0x56, 0x12), maskRs2, matchOpcode},
	{Kabsw, "kabsw", 0, extP, pRs2(0x56, 0x14), maskRs2, matchOpcode},
	{Swap8, "swap8", 0, extP, pRs2(0x56, 0x18), maskRs2, matchOpcode},
	{Insb, "insb", 0, extP, pSub(0x56, 0, 0), maskPImm3, matchOpcode},

	// byte dot products
	{Smaqa, "smaqa", 0, extP, pR(0x60, 0), maskR, matchOpcode},
	{SmaqaSu, "smaqa.su", 0, extP, pR(0x61, 0), maskR, matchOpcode},
	{Umaqa, "umaqa", 0, extP, pR(0x62, 0), maskR, matchOpcode},

	// miscellaneous
	{Ave, "ave", 0, extP, pR(0x70, 0), maskR, matchOpcode},
	{Bitrev, "bitrev", 0, extP, pR(0x73, 0), maskR, matchOpcode},
	{Bitrevi, "bitrevi", 0, extP, pR(0x74, 0), maskShift, matchOpcode},
	{Wext, "wext", 0, extP, pR(0x67, 0), maskR, matchOpcode},
	{Wexti, "wexti", 0, extP, pR(0x6f, 0), maskR, matchOpcode},
	{Minw, "minw", 0, extP, pR(0x78, 0), maskR, matchOpcode},
	{Maxw, "maxw", 0, extP, pR(0x79, 0), maskR, matchOpcode},

	// Q15/Q31 scalar
	{Kaddw, "kaddw", 0, extP, pR(0x00, 1), maskR, matchOpcode},
	{Ksubw, "ksubw", 0, extP, pR(0x01, 1), maskR, matchOpcode},
	{Kaddh, "kaddh", 0, extP, pR(0x02, 1), maskR, matchOpcode},
	{Ksubh, "ksubh", 0, extP, pR(0x03, 1), maskR, matchOpcode},
	{Ukaddw, "ukaddw", 0, extP, pR(0x08, 1), maskR, matchOpcode},
	{Uksubw, "uksubw", 0, extP, pR(0x09, 1), maskR, matchOpcode},
	{Ukaddh, "ukaddh", 0, extP, pR(0x0a, 1), maskR, matchOpcode},
	{Uksubh, "uksubh", 0, extP, pR(0x0b, 1), maskR, matchOpcode},
	{Kdmbb, "kdmbb", 0, extP, pR(0x05, 1), maskR, matchOpcode},
	{Kdmbt, "kdmbt", 0, extP, pR(0x0d, 1), maskR, matchOpcode},
	{Kdmtt, "kdmtt", 0, extP, pR(0x15, 1), maskR, matchOpcode},
	{Khmbb, "khmbb", 0, extP, pR(0x06, 1), maskR, matchOpcode},
	{Khmbt, "khmbt", 0, extP, pR(0x0e, 1), maskR, matchOpcode},
	{Khmtt, "khmtt", 0, extP, pR(0x16, 1), maskR, matchOpcode},
	{Kslraw, "kslraw", 0, extP, pR(0x37, 1), maskR, matchOpcode},
	{Ksllw, "ksllw", 0, extP, pR(0x13, 1), maskR, matchOpcode},
	{Kslliw, "kslliw", 0, extP, pR(0x1b, 1), maskR, matchOpcode},
	{Raddw, "raddw", 0, extP, pR(0x10, 1), maskR, matchOpcode},
	{Rsubw, "rsubw", 0, extP, pR(0x11, 1), maskR, matchOpcode},
	{Uraddw, "uraddw", 0, extP, pR(0x18, 1), maskR, matchOpcode},
	{Ursubw, "ursubw", 0, extP, pR(0x19, 1), maskR, matchOpcode},
	{Mulr64, "mulr64", 0, extP, pR(0x78, 1), maskR, matchOpcode},
	{Mulsr64, "mulsr64", 0, extP, pR(0x70, 1), maskR, matchOpcode},
	{Pkbb16, "pkbb16", 0, extP, pR(0x07, 1), maskR, matchOpcode},
	{Pkbt16, "pkbt16", 0, extP, pR(0x0f, 1), maskR, matchOpcode},
	{Pktb16, "pktb16", 0, extP, pR(0x17, 1), maskR, matchOpcode},
	{Pktt16, "pktt16", 0, extP, pR(0x1f, 1), maskR, matchOpcode},

	// 16x16 multiply-accumulate into 32 bit words
	{Kmada, "kmada", 0, extP, pR(0x24, 1), maskR, matchOpcode},
	{Kmaxda, "kmaxda", 0, extP, pR(0x25, 1), maskR, matchOpcode},
	{Kmads, "kmads", 0, extP, pR(0x2e, 1), maskR, matchOpcode},
	{Kmadrs, "kmadrs", 0, extP, pR(0x36, 1), maskR, matchOpcode},
	{Kmaxds, "kmaxds", 0, extP, pR(0x3e, 1), maskR, matchOpcode},
	{Kmsda, "kmsda", 0, extP, pR(0x26, 1), maskR, matchOpcode},
	{Kmsxda, "kmsxda", 0, extP, pR(0x27, 1), maskR, matchOpcode},
	{Smds, "smds", 0, extP, pR(0x2c, 1), maskR, matchOpcode},
	{Smdrs, "smdrs", 0, extP, pR(0x34, 1), maskR, matchOpcode},
	{Smxds, "smxds", 0, extP, pR(0x3c, 1), maskR, matchOpcode},
	{Kmabb, "kmabb", 0, extP, pR(0x2d, 1), maskR, matchOpcode},
	{Kmabt, "kmabt", 0, extP, pR(0x35, 1), maskR, matchOpcode},
	{Kmatt, "kmatt", 0, extP, pR(0x3d, 1), maskR, matchOpcode},

	// 32x32 most significant word multiplies
	{Kmmac, "kmmac", 0, extP, pR(0x30, 1), maskR, matchOpcode},
	{KmmacU, "kmmac.u", 0, extP, pR(0x38, 1), maskR, matchOpcode},
	{Kmmsb, "kmmsb", 0, extP, pR(0x21, 1), maskR, matchOpcode},
	{KmmsbU, "kmmsb.u", 0, extP, pR(0x29, 1), maskR, matchOpcode},
	{Smmul, "smmul", 0, extP, pR(0x20, 1), maskR, matchOpcode},
	{SmmulU, "smmul.u", 0, extP, pR(0x28, 1), maskR, matchOpcode},

	{SraU, "sra.u", 0, extP, pR(0x12, 1), maskR, matchOpcode},
	{SraiU, "srai.u", 0, extP, pR(0x6a, 1), maskShift, matchOpcode},
	{Bpick, "bpick", 0, extP, mI(3, opP), maskPBpick, matchOpcode},

	// 32 bit lanes
	{Add32, "add32", XLEN64, extP, pR(0x20, 2), maskR, matchOpcode},
	{Radd32, "radd32", XLEN64, extP, pR(0x00, 2), maskR, matchOpcode},
	{Uradd32, "uradd32", XLEN64, extP, pR(0x10, 2), maskR, matchOpcode},
	{Kadd32, "kadd32", XLEN64, extP, pR(0x08, 2), maskR, matchOpcode},
	{Ukadd32, "ukadd32", XLEN64, extP, pR(0x18, 2), maskR, matchOpcode},
	{Sub32, "sub32", XLEN64, extP, pR(0x21, 2), maskR, matchOpcode},
	{Rsub32, "rsub32", XLEN64, extP, pR(0x01, 2), maskR, matchOpcode},
	{Ursub32, "ursub32", XLEN64, extP, pR(0x11, 2), maskR, matchOpcode},
	{Ksub32, "ksub32", XLEN64, extP, pR(0x09, 2), maskR, matchOpcode},
	{Uksub32, "uksub32", XLEN64, extP, pR(0x19, 2), maskR, matchOpcode},
	{Cras32, "cras32", XLEN64, extP, pR(0x22, 2), maskR, matchOpcode},
	{Crsa32, "crsa32", XLEN64, extP, pR(0x23, 2), maskR, matchOpcode},
	{Sra32, "sra32", XLEN64, extP, pR(0x28, 2), maskR, matchOpcode},
	{Srl32, "srl32", XLEN64, extP, pR(0x29, 2), maskR, matchOpcode},
	{Sll32, "sll32", XLEN64, extP, pR(0x2a, 2), maskR, matchOpcode},
	{Srai32, "srai32", XLEN64, extP, pR(0x38, 2), maskR, matchOpcode},
	{Srli32, "srli32", XLEN64, extP, pR(0x39, 2), maskR, matchOpcode},
	{Slli32, "slli32", XLEN64, extP, pR(0x3a, 2), maskR, matchOpcode},
	{Smin32, "smin32", XLEN64, extP, pR(0x48, 2), maskR, matchOpcode},
	{Smax32, "smax32", XLEN64, extP, pR(0x49, 2), maskR, matchOpcode},
	{Umin32, "umin32", XLEN64, extP, pR(0x50, 2), maskR, matchOpcode},
	{Umax32, "umax32", XLEN64, extP, pR(0x51, 2), maskR, matchOpcode},
}
