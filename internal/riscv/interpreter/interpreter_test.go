package interpreter

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/eigerco/rvsim/internal/riscv"
)

func TestStep_Add(t *testing.T) {
	for _, xlen := range []riscv.XLEN{riscv.XLEN32, riscv.XLEN64} {
		i, _ := newHart(t, xlen, nil, []uint32{enc("add", 3, 1, 2)})
		i.SetReg(1, 5)
		i.SetReg(2, 3)

		run(t, i, 1)

		assert.Equal(t, uint64(8), i.Reg(3))
		assert.Equal(t, uint64(codeBase+4), i.PC())
		assert.Equal(t, uint64(1), i.Instret())
	}
}

func TestStep_DivwMostNegative(t *testing.T) {
	i, _ := newHart(t, riscv.XLEN64, nil, []uint32{enc("divw", 3, 1, 2)})
	i.SetReg(1, sext32(0x80000000))
	i.SetReg(2, ^uint64(0))

	run(t, i, 1)

	assert.Equal(t, sext32(0x80000000), i.Reg(3))
}

func TestRegisters_ZeroIsHardwired(t *testing.T) {
	i, _ := newHart(t, riscv.XLEN64, nil, []uint32{
		encI("addi", 0, 0, 5),
		encU("lui", 0, 0x12345000),
	})
	run(t, i, 2)
	assert.Zero(t, i.Reg(0))

	i.SetReg(0, 42)
	assert.Zero(t, i.Reg(0))

	for r := riscv.Reg(1); r < 32; r++ {
		v := uint64(0x0123456789abcdef) * uint64(r)
		i.SetReg(r, v)
		assert.Equal(t, v, i.Reg(r), r.String())
	}
}

func TestRegisters_SignExtendedOn32Bit(t *testing.T) {
	i, _ := newHart(t, riscv.XLEN32, nil, nil)
	i.SetReg(5, 0x80000000)
	assert.Equal(t, uint64(0xffffffff80000000), i.Reg(5))
	i.SetReg(5, 0x1_7fffffff)
	assert.Equal(t, uint64(0x7fffffff), i.Reg(5))
}

func TestDivision(t *testing.T) {
	tests := []struct {
		name   string
		xlen   riscv.XLEN
		op     string
		a, b   uint64
		expect uint64
	}{
		{"div by zero", riscv.XLEN64, "div", 1234, 0, ^uint64(0)},
		{"divu by zero", riscv.XLEN64, "divu", 1234, 0, ^uint64(0)},
		{"rem by zero", riscv.XLEN64, "rem", 1234, 0, 1234},
		{"remu by zero", riscv.XLEN64, "remu", 1234, 0, 1234},
		{"div overflow", riscv.XLEN64, "div", 1 << 63, ^uint64(0), 1 << 63},
		{"rem overflow", riscv.XLEN64, "rem", 1 << 63, ^uint64(0), 0},
		{"div signed", riscv.XLEN64, "div", 7, ^uint64(1), ^uint64(2)},
		{"rem signed", riscv.XLEN64, "rem", ^uint64(6), 2, ^uint64(0)},
		{"divw by zero", riscv.XLEN64, "divw", 99, 0, ^uint64(0)},
		{"remw by zero", riscv.XLEN64, "remw", 0xffffffff_00000063, 0, 0x63},
		{"div32 by zero", riscv.XLEN32, "div", 99, 0, ^uint64(0)},
		{"div32 overflow", riscv.XLEN32, "div", 0x80000000, 0xffffffff, 0xffffffff80000000},
		{"rem32 overflow", riscv.XLEN32, "rem", 0x80000000, 0xffffffff, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			i, _ := newHart(t, tc.xlen, nil, []uint32{enc(tc.op, 3, 1, 2)})
			i.SetReg(1, tc.a)
			i.SetReg(2, tc.b)
			run(t, i, 1)
			assert.Equal(t, tc.expect, i.Reg(3))
		})
	}
}

func TestMulh_ReconstructsProduct(t *testing.T) {
	values := []int64{0, 1, -1, 2, -2, 0x7fffffffffffffff, math.MinInt64, 0x123456789, -0x123456789abcdef}
	for _, a := range values {
		for _, b := range values {
			i, _ := newHart(t, riscv.XLEN64, nil, []uint32{
				enc("mul", 3, 1, 2),
				enc("mulh", 4, 1, 2),
			})
			i.SetReg(1, uint64(a))
			i.SetReg(2, uint64(b))
			run(t, i, 2)

			got := new(big.Int).Lsh(big.NewInt(int64(i.Reg(4))), 64)
			got.Or(got, new(big.Int).SetUint64(i.Reg(3)))
			want := new(big.Int).Mul(big.NewInt(a), big.NewInt(b))
			assert.Zero(t, want.Cmp(got), "%d * %d: got %s", a, b, got)
		}
	}
}

func TestMulhuMulhsu(t *testing.T) {
	i, _ := newHart(t, riscv.XLEN64, nil, []uint32{
		enc("mulhu", 3, 1, 2),
		enc("mulhsu", 4, 1, 2),
	})
	i.SetReg(1, ^uint64(0))
	i.SetReg(2, ^uint64(0))
	run(t, i, 2)
	assert.Equal(t, ^uint64(0)-1, i.Reg(3))
	// -1 * (2^64-1) = -(2^64-1), whose upper half is all ones
	assert.Equal(t, ^uint64(0), i.Reg(4))

	i, _ = newHart(t, riscv.XLEN32, nil, []uint32{enc("mulh", 3, 1, 2)})
	i.SetReg(1, 0x80000000)
	i.SetReg(2, 0x80000000)
	run(t, i, 1)
	assert.Equal(t, uint64(0x40000000), i.Reg(3))
}

func TestLoadReservedStoreConditional(t *testing.T) {
	const address = 0x2000
	i, mem := newHart(t, riscv.XLEN64, nil, []uint32{
		enc("lr.w", 3, 1, 0),
		enc("sc.w", 4, 1, 2),
		enc("sc.w", 5, 1, 6),
		enc("sc.w", 7, 8, 2),
	})
	writeWord(t, mem, address, 4, 0x11)
	i.SetReg(1, address)
	i.SetReg(2, 0x22)
	i.SetReg(6, 0x33)
	i.SetReg(8, address+0x100)

	run(t, i, 2)
	assert.Equal(t, uint64(0x11), i.Reg(3))
	assert.Equal(t, uint64(0), i.Reg(4), "first sc succeeds")
	assert.Equal(t, uint64(0x22), readWord(t, mem, address, 4))
	assert.Zero(t, i.reservations.Len())

	run(t, i, 1)
	assert.Equal(t, uint64(1), i.Reg(5), "second sc fails")
	assert.Equal(t, uint64(0x22), readWord(t, mem, address, 4))

	run(t, i, 1)
	assert.Equal(t, uint64(1), i.Reg(7), "sc without reservation fails")
	assert.Zero(t, readWord(t, mem, address+0x100, 4))
}

func TestReservations_SharedAndDeduplicated(t *testing.T) {
	r := NewReservations()
	r.Reserve(0x100)
	r.Reserve(0x100)
	assert.Equal(t, 1, r.Len())

	stored := 0
	ok, err := r.Conditional(0x100, func() error { stored++; return nil })
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = r.Conditional(0x100, func() error { stored++; return nil })
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, stored)
}

func TestAmo(t *testing.T) {
	const address = 0x3000
	i, mem := newHart(t, riscv.XLEN64, nil, []uint32{
		enc("amoadd.w", 3, 1, 2),
		enc("amomax.d", 4, 5, 2),
	})
	writeWord(t, mem, address, 4, 0xfffffffe)
	writeWord(t, mem, address+8, 8, 5)
	i.SetReg(1, address)
	i.SetReg(5, address+8)
	i.SetReg(2, 3)

	run(t, i, 2)
	assert.Equal(t, uint64(0xfffffffffffffffe), i.Reg(3))
	assert.Equal(t, uint64(1), readWord(t, mem, address, 4))
	assert.Equal(t, uint64(5), i.Reg(4))
	assert.Equal(t, uint64(5), readWord(t, mem, address+8, 8))
}

func TestLoadStore(t *testing.T) {
	i, mem := newHart(t, riscv.XLEN64, nil, []uint32{
		encS("sw", 1, 2, 8),
		encI("lb", 3, 1, 8),
		encI("lbu", 4, 1, 8),
		encI("lw", 5, 1, 8),
		encI("lwu", 6, 1, 8),
		encS("sd", 1, 2, -8),
		encI("ld", 7, 1, -8),
	})
	i.SetReg(1, 0x4000)
	i.SetReg(2, 0xfedcba98_87654380)

	run(t, i, 7)
	assert.Equal(t, uint64(0x87654380), readWord(t, mem, 0x4008, 4))
	assert.Equal(t, uint64(0xffffffffffffff80), i.Reg(3))
	assert.Equal(t, uint64(0x80), i.Reg(4))
	assert.Equal(t, uint64(0xffffffff87654380), i.Reg(5))
	assert.Equal(t, uint64(0x87654380), i.Reg(6))
	assert.Equal(t, uint64(0xfedcba98_87654380), i.Reg(7))
}

func TestBranchesAndJumps(t *testing.T) {
	i, _ := newHart(t, riscv.XLEN64, nil, []uint32{
		encB("blt", 1, 2, 8),  // taken: -1 < 1
		encI("addi", 5, 0, 1), // skipped
		encB("bltu", 1, 2, 8), // not taken: 0xff..ff > 1
		encJ(riscv.RA, 8),
		encI("addi", 6, 0, 1), // skipped
		encI("jalr", 7, riscv.RA, 16),
	})
	i.SetReg(1, ^uint64(0))
	i.SetReg(2, 1)

	run(t, i, 1)
	assert.Equal(t, uint64(codeBase+8), i.PC())
	run(t, i, 1)
	assert.Equal(t, uint64(codeBase+12), i.PC())
	run(t, i, 1)
	assert.Equal(t, uint64(codeBase+20), i.PC())
	assert.Equal(t, uint64(codeBase+16), i.Reg(riscv.RA))
	run(t, i, 1)
	assert.Equal(t, uint64(codeBase+32), i.PC())
	assert.Equal(t, uint64(codeBase+24), i.Reg(7))
	assert.Zero(t, i.Reg(5))
	assert.Zero(t, i.Reg(6))
}

func TestShifts(t *testing.T) {
	i, _ := newHart(t, riscv.XLEN64, nil, []uint32{
		enc("sra", 3, 1, 2),
		enc("sraw", 4, 1, 2),
		enc("srlw", 5, 1, 2),
		encI("srai", 6, 1, 63),
	})
	i.SetReg(1, 0x00000000_80000000)
	i.SetReg(2, 64+4)

	run(t, i, 4)
	assert.Equal(t, uint64(0x08000000), i.Reg(3))
	assert.Equal(t, uint64(0xfffffffff8000000), i.Reg(4))
	assert.Equal(t, uint64(0x08000000), i.Reg(5))
	assert.Zero(t, i.Reg(6))
}

func TestShiftImmediateOutOfRangeOn32Bit(t *testing.T) {
	i, _ := newHart(t, riscv.XLEN32, nil, []uint32{encI("slli", 1, 1, 32)})
	err := i.Step()
	require.ErrorIs(t, err, riscv.ErrIllegalInstruction)
	assert.Equal(t, uint64(codeBase), i.PC())
}

func TestIllegalInstructions(t *testing.T) {
	tests := []struct {
		name string
		xlen riscv.XLEN
		word uint32
	}{
		{"unmatched", riscv.XLEN64, 0x0000007f},
		{"64 bit only", riscv.XLEN32, enc("addw", 1, 2, 3)},
		{"all zero compressed", riscv.XLEN64, 0},
		{"jump to zero", riscv.XLEN64, encI("jalr", 0, 0, 0)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			i, _ := newHart(t, tc.xlen, nil, []uint32{tc.word})
			err := i.Step()
			require.ErrorIs(t, err, riscv.ErrIllegalInstruction)
			var halt *riscv.Halt
			require.ErrorAs(t, err, &halt)
			assert.Equal(t, uint64(codeBase), halt.Address)
		})
	}
}

func TestBreakpoint(t *testing.T) {
	i, _ := newHart(t, riscv.XLEN64, nil, []uint32{opcode("ebreak").Match})
	require.ErrorIs(t, i.Step(), riscv.ErrBreakpoint)

	i, _ = newHart(t, riscv.XLEN64, nil, []uint32{opcode("c.ebreak").Match})
	require.ErrorIs(t, i.Step(), riscv.ErrBreakpoint)
}

func TestMemoryFaultIsTrap(t *testing.T) {
	i, _ := newHart(t, riscv.XLEN64, nil, nil)
	i.SetPC(0x10)
	i.memory = faultyMemory{}
	require.ErrorIs(t, i.Step(), riscv.ErrTrap)
}

type faultyMemory struct{}

func (faultyMemory) Read(riscv.Access, uint64, []byte) error { return assert.AnError }
func (faultyMemory) Write(uint64, []byte) error              { return assert.AnError }

func TestStackAlignment(t *testing.T) {
	i, _ := newHart(t, riscv.XLEN64, nil, []uint32{
		encI("addi", riscv.SP, riscv.SP, -16),
		encI("addi", riscv.SP, riscv.SP, -8),
	})
	run(t, i, 1)
	require.ErrorIs(t, i.Step(), riscv.ErrIllegalInstruction)

	i, _ = newHart(t, riscv.XLEN64, nil, []uint32{encI("addi", riscv.SP, riscv.SP, -8)}, withABI(riscv.ABIReduced))
	run(t, i, 1)
	assert.Equal(t, uint64(0x80000-8), i.Reg(riscv.SP))
}

type mockSyscalls struct {
	mock.Mock
}

func (m *mockSyscalls) Invoke(id uint64, args [4]uint64) (uint64, error) {
	ret := m.Called(id, args)
	return ret.Get(0).(uint64), ret.Error(1)
}

func (m *mockSyscalls) HasHostEquivalent(id uint64) bool {
	return m.Called(id).Bool(0)
}

type mockLinker struct {
	mockSyscalls
}

func (m *mockLinker) Link(oldPath, newPath string) error {
	return m.Called(oldPath, newPath).Error(0)
}

func TestEcall_Delegates(t *testing.T) {
	sys := &mockSyscalls{}
	sys.On("HasHostEquivalent", riscv.SysWrite).Return(true)
	sys.On("Invoke", riscv.SysWrite, [4]uint64{1, 0x5000, 3, 0}).Return(uint64(3), nil)

	ecall := opcode("ecall").Match
	i, _ := newHart(t, riscv.XLEN64, sys, []uint32{ecall})
	i.SetReg(riscv.A7, riscv.SysWrite)
	i.SetReg(riscv.A0, 1)
	i.SetReg(riscv.A1, 0x5000)
	i.SetReg(riscv.A2, 3)

	run(t, i, 1)
	assert.Equal(t, uint64(3), i.Reg(riscv.A0))
	assert.Equal(t, uint64(codeBase+4), i.PC())
	sys.AssertExpectations(t)
}

func TestEcall_ReducedABIUsesT0(t *testing.T) {
	sys := &mockSyscalls{}
	sys.On("HasHostEquivalent", riscv.SysClose).Return(true)
	sys.On("Invoke", riscv.SysClose, [4]uint64{4, 0, 0, 0}).Return(uint64(0), nil)

	i, _ := newHart(t, riscv.XLEN32, sys, []uint32{opcode("ecall").Match}, withABI(riscv.ABIReduced))
	i.SetReg(riscv.T0, riscv.SysClose)
	i.SetReg(riscv.A7, riscv.SysWrite)
	i.SetReg(riscv.A0, 4)

	run(t, i, 1)
	assert.Zero(t, i.Reg(riscv.A0))
	sys.AssertExpectations(t)
}

func TestEcall_Unsupported(t *testing.T) {
	sys := &mockSyscalls{}
	sys.On("HasHostEquivalent", uint64(4242)).Return(false)

	i, _ := newHart(t, riscv.XLEN64, sys, []uint32{opcode("ecall").Match})
	i.SetReg(riscv.A7, 4242)
	run(t, i, 1)
	assert.Equal(t, uint64(0xffffffffffffffda), i.Reg(riscv.A0), "-ENOSYS")
}

func TestEcall_Exit(t *testing.T) {
	sys := &mockSyscalls{}
	sys.On("HasHostEquivalent", riscv.SysExit).Return(true)
	sys.On("Invoke", riscv.SysExit, [4]uint64{7, 0, 0, 0}).Return(uint64(0), &riscv.ErrExit{Code: 7})

	i, _ := newHart(t, riscv.XLEN64, sys, []uint32{opcode("ecall").Match})
	i.SetReg(riscv.A7, riscv.SysExit)
	i.SetReg(riscv.A0, 7)

	var exit *riscv.ErrExit
	require.ErrorAs(t, i.Step(), &exit)
	assert.Equal(t, int64(7), exit.Code)
}

func TestEcall_BrkAndGettimeofday(t *testing.T) {
	ecall := opcode("ecall").Match
	i, mem := newHart(t, riscv.XLEN32, nil, []uint32{ecall, ecall, ecall})
	i.SetBrk(0x9000)

	i.SetReg(riscv.A7, riscv.SysBrk)
	i.SetReg(riscv.A0, 0)
	run(t, i, 1)
	assert.Equal(t, uint64(0x9000), i.Reg(riscv.A0))

	i.SetReg(riscv.A0, 0xa000)
	run(t, i, 1)
	assert.Equal(t, uint64(0xa000), i.Brk())

	i.SetReg(riscv.A7, riscv.SysGettimeofday)
	i.SetReg(riscv.A0, 0x6000)
	run(t, i, 1)
	assert.Zero(t, i.Reg(riscv.A0))
	assert.Equal(t, uint64(1700000000), readWord(t, mem, 0x6000, 4))
	assert.Equal(t, uint64(123456), readWord(t, mem, 0x6004, 4))
}

func TestEcall_Link(t *testing.T) {
	sys := &mockLinker{}
	sys.On("Link", "old", "new").Return(nil)

	i, mem := newHart(t, riscv.XLEN64, sys, []uint32{opcode("ecall").Match})
	require.NoError(t, mem.Write(0x7000, []byte("old\x00new\x00")))
	i.SetReg(riscv.A7, riscv.SysLink)
	i.SetReg(riscv.A0, 0x7000)
	i.SetReg(riscv.A1, 0x7004)

	run(t, i, 1)
	assert.Zero(t, i.Reg(riscv.A0))
	sys.AssertExpectations(t)
}

func TestCsrReadModifyWrite(t *testing.T) {
	i, _ := newHart(t, riscv.XLEN64, nil, []uint32{
		encI("csrrw", 5, 1, int32(riscv.CSRUitb)),
		encI("csrrs", 6, 2, int32(riscv.CSRUitb)),
		encI("csrrc", 7, 0, int32(riscv.CSRUitb)),
		encI("csrrci", 8, 3, int32(riscv.CSRUitb)),
		encI("csrrs", 9, 0, int32(riscv.CSRInstret)),
	})
	i.SetReg(1, 0x100)
	i.SetReg(2, 0x011)

	run(t, i, 5)
	assert.Zero(t, i.Reg(5))
	assert.Equal(t, uint64(0x100), i.Reg(6))
	assert.Equal(t, uint64(0x111), i.Reg(7), "csrrc with x0 reads without clearing")
	assert.Equal(t, uint64(0x111), i.Reg(8))
	assert.Equal(t, uint64(4), i.Reg(9))

	v, err := i.FetchCSR(0, riscv.CSRUitb)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x110), v)
}

func TestFcsrRoundTrip(t *testing.T) {
	tests := []struct {
		value        uint64
		frm, fflags  uint64
		fcsrReadBack uint64
	}{
		{0x15, 0x0, 0x15, 0x15},
		{0x55, 0x2, 0x15, 0x55},
		{0x1ff, 0x7, 0x1f, 0xff},
	}
	for _, tc := range tests {
		i, _ := newHart(t, riscv.XLEN32, nil, []uint32{
			encI("csrrw", 0, 1, int32(riscv.CSRFcsr)),
			encI("csrrs", 5, 0, int32(riscv.CSRFcsr)),
			encI("csrrs", 6, 0, int32(riscv.CSRFrm)),
			encI("csrrs", 7, 0, int32(riscv.CSRFflags)),
		})
		i.SetReg(1, tc.value)
		run(t, i, 4)
		assert.Equal(t, tc.fcsrReadBack, i.Reg(5))
		assert.Equal(t, tc.frm, i.Reg(6))
		assert.Equal(t, tc.fflags, i.Reg(7))
	}
}
