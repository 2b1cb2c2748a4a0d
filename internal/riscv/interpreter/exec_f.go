package interpreter

import (
	"github.com/eigerco/rvsim/internal/riscv"
)

func init() {
	register(riscv.ExtF, map[riscv.InsnID]handler{
		riscv.Flw:     fpLoad(fmtS, 4),
		riscv.Fsw:     fpStore(fmtS, 4),
		riscv.FmaddS:  fpFMA(fmtS, false, false),
		riscv.FmsubS:  fpFMA(fmtS, false, true),
		riscv.FnmsubS: fpFMA(fmtS, true, false),
		riscv.FnmaddS: fpFMA(fmtS, true, true),
		riscv.FaddS:   fpArith(fmtS, fpAdd),
		riscv.FsubS:   fpArith(fmtS, fpSub),
		riscv.FmulS:   fpArith(fmtS, fpMul),
		riscv.FdivS:   fpArith(fmtS, fpDiv),
		riscv.FsqrtS:  fpSqrt(fmtS),
		riscv.FsgnjS:  fpSgnj(fmtS, sgnjCopy),
		riscv.FsgnjnS: fpSgnj(fmtS, sgnjNegate),
		riscv.FsgnjxS: fpSgnj(fmtS, sgnjXor),
		riscv.FminS:   fpMinMax(fmtS, false),
		riscv.FmaxS:   fpMinMax(fmtS, true),
		riscv.FcvtWS:  fpToInt(fmtS, intW),
		riscv.FcvtWuS: fpToInt(fmtS, intWU),
		riscv.FmvXW:   fpMoveToInt(fmtS),
		riscv.FeqS:    fpCmp(fmtS, fpEq),
		riscv.FltS:    fpCmp(fmtS, fpLt),
		riscv.FleS:    fpCmp(fmtS, fpLe),
		riscv.FclassS: fpClass(fmtS),
		riscv.FcvtSW:  fpFromInt(fmtS, intW),
		riscv.FcvtSWu: fpFromInt(fmtS, intWU),
		riscv.FmvWX:   fpMoveFromInt(fmtS),
		riscv.FcvtLS:  fpToInt(fmtS, intL),
		riscv.FcvtLuS: fpToInt(fmtS, intLU),
		riscv.FcvtSL:  fpFromInt(fmtS, intL),
		riscv.FcvtSLu: fpFromInt(fmtS, intLU),
	})
	register(riscv.ExtD, map[riscv.InsnID]handler{
		riscv.Fld:     fpLoad(fmtD, 8),
		riscv.Fsd:     fpStore(fmtD, 8),
		riscv.FmaddD:  fpFMA(fmtD, false, false),
		riscv.FmsubD:  fpFMA(fmtD, false, true),
		riscv.FnmsubD: fpFMA(fmtD, true, false),
		riscv.FnmaddD: fpFMA(fmtD, true, true),
		riscv.FaddD:   fpArith(fmtD, fpAdd),
		riscv.FsubD:   fpArith(fmtD, fpSub),
		riscv.FmulD:   fpArith(fmtD, fpMul),
		riscv.FdivD:   fpArith(fmtD, fpDiv),
		riscv.FsqrtD:  fpSqrt(fmtD),
		riscv.FsgnjD:  fpSgnj(fmtD, sgnjCopy),
		riscv.FsgnjnD: fpSgnj(fmtD, sgnjNegate),
		riscv.FsgnjxD: fpSgnj(fmtD, sgnjXor),
		riscv.FminD:   fpMinMax(fmtD, false),
		riscv.FmaxD:   fpMinMax(fmtD, true),
		riscv.FcvtSD:  fpConvert(fmtD, fmtS),
		riscv.FcvtDS:  fpConvert(fmtS, fmtD),
		riscv.FeqD:    fpCmp(fmtD, fpEq),
		riscv.FltD:    fpCmp(fmtD, fpLt),
		riscv.FleD:    fpCmp(fmtD, fpLe),
		riscv.FclassD: fpClass(fmtD),
		riscv.FcvtWD:  fpToInt(fmtD, intW),
		riscv.FcvtWuD: fpToInt(fmtD, intWU),
		riscv.FcvtDW:  fpFromInt(fmtD, intW),
		riscv.FcvtDWu: fpFromInt(fmtD, intWU),
		riscv.FcvtLD:  fpToInt(fmtD, intL),
		riscv.FcvtLuD: fpToInt(fmtD, intLU),
		riscv.FmvXD:   fpMoveToInt(fmtD),
		riscv.FcvtDL:  fpFromInt(fmtD, intL),
		riscv.FcvtDLu: fpFromInt(fmtD, intLU),
		riscv.FmvDX:   fpMoveFromInt(fmtD),
	})
}
