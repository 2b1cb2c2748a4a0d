package interpreter

import (
	"math"

	"github.com/eigerco/rvsim/internal/riscv"
)

// fmtBF16 bfloat16, only reachable through the conversions
var fmtBF16 = &fpFormat{
	expBits:   8,
	fracBits:  7,
	canonical: 0x7fc0,
	read:      func(i *Instance, r riscv.Reg) uint64 { return uint64(i.f16(r)) },
	write:     func(i *Instance, r riscv.Reg, b uint64) { i.setF16(r, uint16(b)) },
	toFloat:   func(b uint64) float64 { return float64(riscv.BF16ToFloat32(uint16(b))) },
	fromFloat: func(f float64, rm riscv.RoundingMode) (uint64, uint64) {
		if math.IsNaN(f) {
			return 0x7fc0, 0
		}
		v, inexact := riscv.Float32ToBF16(float32(f), rm)
		if inexact {
			return uint64(v), riscv.FlagInexact
		}
		return uint64(v), 0
	},
}

func init() {
	register(riscv.ExtXH, map[riscv.InsnID]handler{
		riscv.Flh:     fpLoad(fmtH, 2),
		riscv.Fsh:     fpStore(fmtH, 2),
		riscv.FmaddH:  fpFMA(fmtH, false, false),
		riscv.FmsubH:  fpFMA(fmtH, false, true),
		riscv.FnmsubH: fpFMA(fmtH, true, false),
		riscv.FnmaddH: fpFMA(fmtH, true, true),
		riscv.FaddH:   fpArith(fmtH, fpAdd),
		riscv.FsubH:   fpArith(fmtH, fpSub),
		riscv.FmulH:   fpArith(fmtH, fpMul),
		riscv.FdivH:   fpArith(fmtH, fpDiv),
		riscv.FsqrtH:  fpSqrt(fmtH),
		riscv.FsgnjH:  fpSgnj(fmtH, sgnjCopy),
		riscv.FsgnjnH: fpSgnj(fmtH, sgnjNegate),
		riscv.FsgnjxH: fpSgnj(fmtH, sgnjXor),
		riscv.FminH:   fpMinMax(fmtH, false),
		riscv.FmaxH:   fpMinMax(fmtH, true),
		riscv.FcvtSH:  fpConvert(fmtH, fmtS),
		riscv.FcvtHS:  fpConvert(fmtS, fmtH),
		riscv.FcvtDH:  fpConvert(fmtH, fmtD),
		riscv.FcvtHD:  fpConvert(fmtD, fmtH),
		riscv.FeqH:    fpCmp(fmtH, fpEq),
		riscv.FltH:    fpCmp(fmtH, fpLt),
		riscv.FleH:    fpCmp(fmtH, fpLe),
		riscv.FclassH: fpClass(fmtH),
		riscv.FcvtWH:  fpToInt(fmtH, intW),
		riscv.FcvtWuH: fpToInt(fmtH, intWU),
		riscv.FcvtHW:  fpFromInt(fmtH, intW),
		riscv.FcvtHWu: fpFromInt(fmtH, intWU),
		riscv.FcvtLH:  fpToInt(fmtH, intL),
		riscv.FcvtLuH: fpToInt(fmtH, intLU),
		riscv.FcvtHL:  fpFromInt(fmtH, intL),
		riscv.FcvtHLu: fpFromInt(fmtH, intLU),
		riscv.FmvXH:   fpMoveToInt(fmtH),
		riscv.FmvHX:   fpMoveFromInt(fmtH),

		riscv.FcvtSBF16: fpConvert(fmtBF16, fmtS),
		riscv.FcvtBF16S: fpConvert(fmtS, fmtBF16),
	})
	// the bf16 conversions share the half precision executor
	executors[riscv.ExtXB] = executors[riscv.ExtXH]
}
