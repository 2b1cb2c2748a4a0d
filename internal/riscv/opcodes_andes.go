package riscv

// Vendor performance extension: gp-relative loads and stores on custom-0
// and custom-1, address generation, bit-field and string search helpers and
// compare-with-immediate branches on custom-2, load/store-multiple on
// custom-3.

const (
	maskGp0   uint32 = 0x0000307f
	maskBbx   uint32 = 0x4000707f
	maskMulti uint32 = 0x1e00107f
)

func mGp0(funct2 uint32) uint32 {
	return funct2<<12 | opCustom0
}

var andesOpcodes = []Opcode{
	{Lbgp, "lbgp", 0, extAndes, mGp0(0), maskGp0, matchOpcode},
	{Addigp, "addigp", 0, extAndes, mGp0(1), maskGp0, matchOpcode},
	{Lbugp, "lbugp", 0, extAndes, mGp0(2), maskGp0, matchOpcode},
	{Sbgp, "sbgp", 0, extAndes, mGp0(3), maskGp0, matchOpcode},

	{Shgp, "shgp", 0, extAndes, mI(0, opCustom1), maskF3, matchOpcode},
	{Lhgp, "lhgp", 0, extAndes, mI(1, opCustom1), maskF3, matchOpcode},
	{Lwgp, "lwgp", 0, extAndes, mI(2, opCustom1), maskF3, matchOpcode},
	{Ldgp, "ldgp", XLEN64, extAndes, mI(3, opCustom1), maskF3, matchOpcode},
	{Swgp, "swgp", 0, extAndes, mI(4, opCustom1), maskF3, matchOpcode},
	{Lhugp, "lhugp", 0, extAndes, mI(5, opCustom1), maskF3, matchOpcode},
	{Lwugp, "lwugp", XLEN64, extAndes, mI(6, opCustom1), maskF3, matchOpcode},
	{Sdgp, "sdgp", XLEN64, extAndes, mI(7, opCustom1), maskF3, matchOpcode},

	{LeaH, "lea.h", 0, extAndes, mR(0x05, 0, opCustom2), maskR, matchOpcode},
	{LeaW, "lea.w", 0, extAndes, mR(0x06, 0, opCustom2), maskR, matchOpcode},
	{LeaD, "lea.d", 0, extAndes, mR(0x07, 0, opCustom2), maskR, matchOpcode},
	{LeaBZe, "lea.b.ze", XLEN64, extAndes, mR(0x08, 0, opCustom2), maskR, matchOpcode},
	{LeaHZe, "lea.h.ze", XLEN64, extAndes, mR(0x09, 0, opCustom2), maskR, matchOpcode},
	{LeaWZe, "lea.w.ze", XLEN64, extAndes, mR(0x0a, 0, opCustom2), maskR, matchOpcode},
	{LeaDZe, "lea.d.ze", XLEN64, extAndes, mR(0x0b, 0, opCustom2), maskR, matchOpcode},
	{Ffb, "ffb", 0, extAndes, mR(0x10, 0, opCustom2), maskR, matchOpcode},
	{Ffzmism, "ffzmism", 0, extAndes, mR(0x11, 0, opCustom2), maskR, matchOpcode},
	{Ffmism, "ffmism", 0, extAndes, mR(0x12, 0, opCustom2), maskR, matchOpcode},
	{Flmism, "flmism", 0, extAndes, mR(0x13, 0, opCustom2), maskR, matchOpcode},
	{Bfoz, "bfoz", 0, extAndes, mI(2, opCustom2), maskF3, matchOpcode},
	{Bfos, "bfos", 0, extAndes, mI(3, opCustom2), maskF3, matchOpcode},
	{Beqc, "beqc", 0, extAndes, mI(5, opCustom2), maskF3, matchOpcode},
	{Bnec, "bnec", 0, extAndes, mI(6, opCustom2), maskF3, matchOpcode},
	{Bbc, "bbc", 0, extAndes, mI(7, opCustom2), maskBbx, matchOpcode},
	{Bbs, "bbs", 0, extAndes, 0x40000000 | mI(7, opCustom2), maskBbx, matchOpcode},

	{Lmw, "lmw", 0, extAndes, opCustom3, maskMulti, matchOpcode},
	{Smw, "smw", 0, extAndes, mI(1, opCustom3), maskMulti, matchOpcode},
}

// GpImm18 the signed byte offset of lbgp, lbugp and addigp,
// imm[17|16:15|14:12|11|10:1|0] from bits 31|16:15|19:17|20|30:21|14
func GpImm18(insn uint32) uint64 {
	raw := insn>>31<<17 | insn>>15&0x3<<15 | insn>>17&0x7<<12 |
		insn>>20&0x1<<11 | insn>>21&0x3ff<<1 | insn>>14&0x1
	return SignExtend(uint64(raw), 18)
}

// GpStoreImm18 the signed byte offset of sbgp, whose rs2 field displaces
// bits 24:20 of the load layout
func GpStoreImm18(insn uint32) uint64 {
	raw := insn>>31<<17 | insn>>15&0x3<<15 | insn>>17&0x7<<12 |
		insn>>7&0x1<<11 | insn>>25&0x3f<<5 | insn>>8&0xf<<1 | insn>>14&0x1
	return SignExtend(uint64(raw), 18)
}

// GpImm17 the signed element offset of the custom-1 loads, to be scaled by
// the access size
func GpImm17(insn uint32) uint64 {
	raw := insn>>31<<16 | insn>>15&0x3<<14 | insn>>17&0x7<<11 |
		insn>>20&0x1<<10 | insn>>21&0x3ff
	return SignExtend(uint64(raw), 17)
}

// GpStoreImm17 the signed element offset of the custom-1 stores
func GpStoreImm17(insn uint32) uint64 {
	raw := insn>>31<<16 | insn>>15&0x3<<14 | insn>>17&0x7<<11 |
		insn>>7&0x1<<10 | insn>>25&0x3f<<4 | insn>>8&0xf
	return SignExtend(uint64(raw), 17)
}

// CmpImm7 the unsigned compare constant of beqc/bnec, cimm[6|5|4:0] from
// bits 30|7|24:20
func CmpImm7(insn uint32) uint64 {
	return uint64(insn>>30&0x1<<6 | insn>>7&0x1<<5 | insn>>20&0x1f)
}

// BitIndex the bit number tested by bbc/bbs, from bits 7|24:20
func BitIndex(insn uint32) uint64 {
	return uint64(insn>>7&0x1<<5 | insn>>20&0x1f)
}

// CmpBranchImm the signed branch offset of beqc/bnec/bbc/bbs,
// offset[10|9:5|4:1] from bits 31|29:25|11:8
func CmpBranchImm(insn uint32) uint64 {
	raw := insn>>31<<10 | insn>>25&0x1f<<5 | insn>>8&0xf<<1
	return SignExtend(uint64(raw), 11)
}

// BfoMsb and BfoLsb the bit-field bounds of bfoz/bfos
func BfoMsb(insn uint32) uint { return uint(insn >> 26 & 0x3f) }
func BfoLsb(insn uint32) uint { return uint(insn >> 20 & 0x3f) }
