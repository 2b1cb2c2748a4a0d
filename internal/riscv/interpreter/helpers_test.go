package interpreter

import (
	"encoding/binary"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/eigerco/rvsim/internal/riscv"
	"github.com/eigerco/rvsim/internal/riscv/memory"
)

const codeBase = 0x10000

var fixedNow = func() time.Time { return time.Unix(1700000000, 123456000) }

// opcode looks up a descriptor by mnemonic
func opcode(name string) *riscv.Opcode {
	for k := range riscv.Opcodes {
		if riscv.Opcodes[k].Name == name {
			return &riscv.Opcodes[k]
		}
	}
	panic(fmt.Sprintf("no opcode %q", name))
}

// enc builds an R shaped word from the mnemonic's match value
func enc(name string, rd, rs1, rs2 riscv.Reg) uint32 {
	return opcode(name).Match | uint32(rd)<<7 | uint32(rs1)<<15 | uint32(rs2)<<20
}

// encR4 adds rs3 to an R shaped word
func encR4(name string, rd, rs1, rs2, rs3 riscv.Reg) uint32 {
	return enc(name, rd, rs1, rs2) | uint32(rs3)<<27
}

func encI(name string, rd, rs1 riscv.Reg, imm int32) uint32 {
	return opcode(name).Match | uint32(rd)<<7 | uint32(rs1)<<15 | uint32(imm)<<20
}

func encS(name string, rs1, rs2 riscv.Reg, imm int32) uint32 {
	u := uint32(imm)
	return opcode(name).Match | (u&0x1f)<<7 | uint32(rs1)<<15 | uint32(rs2)<<20 | (u>>5&0x7f)<<25
}

func encB(name string, rs1, rs2 riscv.Reg, imm int32) uint32 {
	u := uint32(imm)
	return opcode(name).Match | uint32(rs1)<<15 | uint32(rs2)<<20 |
		(u>>11&1)<<7 | (u>>1&0xf)<<8 | (u>>5&0x3f)<<25 | (u>>12&1)<<31
}

func encU(name string, rd riscv.Reg, imm uint32) uint32 {
	return opcode(name).Match | uint32(rd)<<7 | imm&0xfffff000
}

func encJ(rd riscv.Reg, imm int32) uint32 {
	u := uint32(imm)
	return opcode("jal").Match | uint32(rd)<<7 |
		(u>>12&0xff)<<12 | (u>>11&1)<<20 | (u>>1&0x3ff)<<21 | (u>>20&1)<<31
}

// encCI a compressed CI word: funct3, quadrant, rd and a 6 bit immediate
func encCI(name string, rd riscv.Reg, imm int32) uint32 {
	u := uint32(imm)
	return opcode(name).Match | uint32(rd)<<7 | (u&0x1f)<<2 | (u>>5&1)<<12
}

// encCR a compressed CR word
func encCR(name string, rd, rs2 riscv.Reg) uint32 {
	return opcode(name).Match | uint32(rd)<<7 | uint32(rs2)<<2
}

// encCA a compressed CA word on the x8-x15 registers
func encCA(name string, rd, rs2 riscv.Reg) uint32 {
	return opcode(name).Match | uint32(rd-8)<<7 | uint32(rs2-8)<<2
}

// assemble lays out words little endian, two bytes for compressed ones
func assemble(words ...uint32) []byte {
	var buf []byte
	for _, w := range words {
		if riscv.InsnLength(uint16(w)) == 2 {
			buf = binary.LittleEndian.AppendUint16(buf, uint16(w))
			continue
		}
		buf = binary.LittleEndian.AppendUint32(buf, w)
	}
	return buf
}

type hartOption func(*Config)

func withABI(abi riscv.ABI) hartOption {
	return func(c *Config) { c.ABI = abi }
}

func withFloatABI(f riscv.FloatABI) hartOption {
	return func(c *Config) { c.FloatABI = f }
}

// newHart creates a hart with the program loaded at codeBase and the stack
// pointer at a 16 byte aligned address
func newHart(t *testing.T, xlen riscv.XLEN, sys riscv.Syscalls, words []uint32, opts ...hartOption) (*Instance, *memory.Memory) {
	t.Helper()
	cfg := Config{XLEN: xlen, FloatABI: riscv.FloatABIDouble, Now: fixedNow}
	for _, o := range opts {
		o(&cfg)
	}
	mem := memory.New()
	require.NoError(t, mem.Load(codeBase, assemble(words...)))
	i := New(cfg, mem, sys, nil)
	i.SetPC(codeBase)
	i.SetReg(riscv.SP, 0x80000)
	return i, mem
}

// run steps n instructions, failing the test on any halt
func run(t *testing.T, i *Instance, n int) {
	t.Helper()
	for range n {
		require.NoError(t, i.Step())
	}
}

func readWord(t *testing.T, mem *memory.Memory, address uint64, size int) uint64 {
	t.Helper()
	buf := make([]byte, 8)
	require.NoError(t, mem.Read(riscv.AccessRead, address, buf[:size]))
	return binary.LittleEndian.Uint64(buf)
}

func writeWord(t *testing.T, mem *memory.Memory, address uint64, size int, v uint64) {
	t.Helper()
	buf := binary.LittleEndian.AppendUint64(nil, v)
	require.NoError(t, mem.Write(address, buf[:size]))
}
