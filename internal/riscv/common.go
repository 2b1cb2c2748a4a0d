package riscv

import "fmt"

// XLEN is the native integer register width of a hart, fixed for its lifetime.
type XLEN uint8

const (
	XLEN32 XLEN = 32
	XLEN64 XLEN = 64
)

// Bytes size of a register in bytes
func (x XLEN) Bytes() int {
	return int(x) / 8
}

// Mask all ones for the register width
func (x XLEN) Mask() uint64 {
	if x == XLEN32 {
		return 0xffffffff
	}
	return ^uint64(0)
}

// ABI selects the integer calling convention. The reduced ABI uses the
// 16 register subset, passes the syscall number in t0 and does not require
// a 16 byte aligned stack.
type ABI uint8

const (
	ABIStandard ABI = iota
	ABIReduced
)

// FloatABI the configured floating point register width, used to bound
// register bank accesses from an attached debugger.
type FloatABI uint8

const (
	FloatABISoft FloatABI = iota
	FloatABISingle
	FloatABIDouble
	FloatABIQuad
)

// Bytes width of a floating point register under this ABI
func (f FloatABI) Bytes() int {
	switch f {
	case FloatABISingle:
		return 4
	case FloatABIDouble:
		return 8
	case FloatABIQuad:
		return 16
	}
	return 0
}

type Reg uint8

const (
	Zero Reg = iota
	RA
	SP
	GP
	TP
	T0
	T1
	T2
	S0
	S1
	A0
	A1
	A2
	A3
	A4
	A5
	A6
	A7
	S2
	S3
	S4
	S5
	S6
	S7
	S8
	S9
	S10
	S11
	T3
	T4
	T5
	T6
)

var regNames = [32]string{
	"zero", "ra", "sp", "gp", "tp", "t0", "t1", "t2",
	"s0", "s1", "a0", "a1", "a2", "a3", "a4", "a5",
	"a6", "a7", "s2", "s3", "s4", "s5", "s6", "s7",
	"s8", "s9", "s10", "s11", "t3", "t4", "t5", "t6",
}

func (r Reg) String() string {
	if int(r) < len(regNames) {
		return regNames[r]
	}
	return fmt.Sprintf("x%d", uint8(r))
}

// FReg a floating point register index
type FReg uint8

func (r FReg) String() string {
	return fmt.Sprintf("f%d", uint8(r))
}

// StackAlign required alignment of the stack pointer in the standard ABI
const StackAlign = 16
