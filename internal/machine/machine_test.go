package machine

import (
	"bytes"
	"context"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eigerco/rvsim/internal/riscv"
	"github.com/eigerco/rvsim/internal/riscv/hostcall"
	"github.com/eigerco/rvsim/internal/riscv/memory"
)

const (
	entry   = 0x10000
	counter = 0x700
)

func match(name string) uint32 {
	for _, op := range riscv.Opcodes {
		if op.Name == name {
			return op.Match
		}
	}
	panic("no opcode " + name)
}

func encR(name string, rd, rs1, rs2 riscv.Reg) uint32 {
	return match(name) | uint32(rd)<<7 | uint32(rs1)<<15 | uint32(rs2)<<20
}

func encI(name string, rd, rs1 riscv.Reg, imm int32) uint32 {
	return match(name) | uint32(rd)<<7 | uint32(rs1)<<15 | uint32(imm)<<20
}

func encB(name string, rs1, rs2 riscv.Reg, imm int32) uint32 {
	u := uint32(imm)
	return match(name) | uint32(rs1)<<15 | uint32(rs2)<<20 |
		(u>>11&1)<<7 | (u>>1&0xf)<<8 | (u>>5&0x3f)<<25 | (u>>12&1)<<31
}

var ecall = match("ecall")

func load(t *testing.T, words ...uint32) *memory.Memory {
	t.Helper()
	mem := memory.New()
	var image []byte
	for _, w := range words {
		image = binary.LittleEndian.AppendUint32(image, w)
	}
	require.NoError(t, mem.Load(entry, image))
	return mem
}

func config() Config {
	return Config{
		XLEN:      riscv.XLEN64,
		FloatABI:  riscv.FloatABIDouble,
		Entry:     entry,
		StackTop:  0x80000,
		StackSize: 0x1000,
	}
}

// exitWithHartID exits with the code found in a0, which starts as the hart id
var exitWithHartID = []uint32{
	encI("addi", riscv.A7, riscv.Zero, int32(riscv.SysExit)),
	ecall,
}

// countTo adds one to the shared counter n times per hart, then exits
func countTo(n int32) []uint32 {
	return []uint32{
		encI("addi", riscv.T0, riscv.Zero, counter),
		encI("addi", riscv.T1, riscv.Zero, 1),
		encI("addi", riscv.T2, riscv.Zero, n),
		encR("amoadd.w", riscv.Zero, riscv.T0, riscv.T1),
		encI("addi", riscv.T2, riscv.T2, -1),
		encB("bne", riscv.T2, riscv.Zero, -8),
		encI("addi", riscv.A0, riscv.Zero, 0),
		encI("addi", riscv.A7, riscv.Zero, int32(riscv.SysExit)),
		ecall,
	}
}

func TestNew_PerHartSetup(t *testing.T) {
	m := New(config(), 3, memory.New(), nil)
	require.Len(t, m.Harts(), 3)
	for id, h := range m.Harts() {
		assert.Equal(t, uint64(entry), h.PC())
		assert.Equal(t, uint64(id), h.Reg(riscv.A0))
		assert.Equal(t, uint64(0x80000-id*0x1000), h.Reg(riscv.SP))
		hartID, err := h.FetchCSR(0, riscv.CSRMhartid)
		require.NoError(t, err)
		assert.Equal(t, uint64(id), hartID)
	}
}

func TestRun_ExitCodes(t *testing.T) {
	mem := load(t, exitWithHartID...)
	m := New(config(), 2, mem, hostcall.New(mem, riscv.XLEN64))

	states, err := m.Run(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, []HartState{
		{Steps: 2, Exited: true, Code: 0},
		{Steps: 2, Exited: true, Code: 1},
	}, states)
}

func TestRun_Interleaved(t *testing.T) {
	mem := load(t, countTo(50)...)
	m := New(config(), 4, mem, hostcall.New(mem, riscv.XLEN64))

	states, err := m.Run(context.Background(), 0)
	require.NoError(t, err)
	for _, st := range states {
		assert.True(t, st.Exited)
	}
	got := make([]byte, 4)
	require.NoError(t, mem.Read(riscv.AccessRead, counter, got))
	assert.Equal(t, uint32(200), binary.LittleEndian.Uint32(got))
}

func TestRun_StepBudget(t *testing.T) {
	// jal x0, 0 spins in place
	mem := load(t, match("jal"))
	m := New(config(), 2, mem, nil)

	states, err := m.Run(context.Background(), 10)
	require.NoError(t, err)
	for _, st := range states {
		assert.Equal(t, uint64(10), st.Steps)
		assert.False(t, st.Exited)
	}
}

func TestRun_HaltStopsMachine(t *testing.T) {
	mem := load(t, match("ebreak"))
	m := New(config(), 2, mem, nil)

	states, err := m.Run(context.Background(), 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, riscv.ErrBreakpoint)
	assert.Contains(t, err.Error(), "hart 0")
	assert.Zero(t, states[1].Steps)
}

func TestRun_Cancelled(t *testing.T) {
	mem := load(t, match("jal"))
	m := New(config(), 1, mem, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	states, err := m.Run(ctx, 0)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, uint64(1), states[0].Steps, "cancellation is seen after a full round")
}

func TestRunParallel_SharedCounter(t *testing.T) {
	mem := load(t, countTo(500)...)
	m := New(config(), 8, mem, hostcall.New(mem, riscv.XLEN64))

	states, err := m.RunParallel(context.Background(), 0)
	require.NoError(t, err)
	for id, st := range states {
		assert.True(t, st.Exited, "hart %d", id)
		assert.Zero(t, st.Code)
	}
	got := make([]byte, 4)
	require.NoError(t, mem.Read(riscv.AccessRead, counter, got))
	assert.Equal(t, uint32(8*500), binary.LittleEndian.Uint32(got))
}

func TestRunParallel_HaltCancelsOthers(t *testing.T) {
	// hart 0 skips the spin loop and faults on ebreak, every other hart spins
	mem := load(t,
		encB("beq", riscv.A0, riscv.Zero, 8),
		match("jal"),
		match("ebreak"),
	)
	m := New(config(), 3, mem, nil)

	_, err := m.RunParallel(context.Background(), 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, riscv.ErrBreakpoint)
}

func TestRunParallel_Output(t *testing.T) {
	const msg = 0x600
	mem := load(t,
		encI("addi", riscv.A1, riscv.Zero, msg),
		encI("addi", riscv.A2, riscv.Zero, 3),
		encI("addi", riscv.A0, riscv.Zero, 1),
		encI("addi", riscv.A7, riscv.Zero, int32(riscv.SysWrite)),
		ecall,
		encI("addi", riscv.A7, riscv.Zero, int32(riscv.SysExit)),
		encI("addi", riscv.A0, riscv.Zero, 0),
		ecall,
	)
	require.NoError(t, mem.Write(msg, []byte("hi\n")))
	var out bytes.Buffer
	m := New(config(), 2, mem, hostcall.New(mem, riscv.XLEN64, hostcall.WithStdout(&out)))

	_, err := m.RunParallel(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, "hi\nhi\n", out.String())
}
