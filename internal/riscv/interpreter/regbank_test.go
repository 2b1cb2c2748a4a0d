package interpreter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eigerco/rvsim/internal/riscv"
)

func TestRegisterBank_GeneralPurpose(t *testing.T) {
	i, _ := newHart(t, riscv.XLEN64, nil, nil)
	require.NoError(t, i.StoreRegister(5, []byte{0x88, 0x77, 0x66, 0x55, 0x44, 0x33, 0x22, 0x11}))
	assert.Equal(t, uint64(0x1122334455667788), i.Reg(5))

	b, err := i.FetchRegister(5, 2)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x88, 0x77}, b)

	// short writes zero extend
	require.NoError(t, i.StoreRegister(5, []byte{0x01}))
	assert.Equal(t, uint64(1), i.Reg(5))

	require.NoError(t, i.StoreRegister(0, []byte{0xff}))
	assert.Zero(t, i.Reg(0))
}

func TestRegisterBank_32BitWidth(t *testing.T) {
	i, _ := newHart(t, riscv.XLEN32, nil, nil)
	i.SetReg(5, 0x80000000)

	b, err := i.FetchRegister(5, 4)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0, 0x80}, b)

	_, err = i.FetchRegister(5, 8)
	assert.ErrorIs(t, err, ErrRegisterLength)
	assert.ErrorIs(t, i.StoreRegister(5, make([]byte, 5)), ErrRegisterLength)
}

func TestRegisterBank_PC(t *testing.T) {
	i, _ := newHart(t, riscv.XLEN64, nil, nil)
	require.NoError(t, i.StoreRegister(RegBankPC, []byte{0x00, 0x20}))
	assert.Equal(t, uint64(0x2000), i.PC())

	b, err := i.FetchRegister(RegBankPC, 8)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x20, 0, 0, 0, 0, 0, 0}, b)
}

func TestRegisterBank_FloatingPoint(t *testing.T) {
	i, _ := newHart(t, riscv.XLEN32, nil, nil)
	i.SetFReg(1, boxS(1))
	b, err := i.FetchRegister(RegBankFPR+1, 8)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x00, 0x80, 0x3f, 0xff, 0xff, 0xff, 0xff}, b)

	require.NoError(t, i.StoreRegister(RegBankFPR+2, []byte{1, 2, 3, 4, 5, 6, 7, 8}))
	assert.Equal(t, [2]uint64{0x0807060504030201}, i.FReg(2))

	_, err = i.FetchRegister(RegBankFPR+1, 16)
	assert.ErrorIs(t, err, ErrRegisterLength)

	soft, _ := newHart(t, riscv.XLEN32, nil, nil, withFloatABI(riscv.FloatABISoft))
	_, err = soft.FetchRegister(RegBankFPR, 4)
	assert.ErrorIs(t, err, ErrSoftFloat)
	assert.ErrorIs(t, soft.StoreRegister(RegBankFPR, []byte{1}), ErrSoftFloat)
}

func TestRegisterBank_CSRs(t *testing.T) {
	i, _ := newHart(t, riscv.XLEN64, nil, nil)
	uitb := RegBankCSR + int(riscv.CSRUitb)
	require.NoError(t, i.StoreRegister(uitb, []byte{0x00, 0x40}))
	v, err := i.FetchCSR(0, riscv.CSRUitb)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x4000), v)

	require.NoError(t, i.StoreRegister(RegBankCSR+int(riscv.CSRFcsr), []byte{0xe1}))
	b, err := i.FetchRegister(RegBankCSR+int(riscv.CSRFrm), 1)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x7}, b)
	b, err = i.FetchRegister(RegBankCSR+int(riscv.CSRFflags), 1)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x1}, b)

	_, err = i.FetchRegister(RegBankCSR+0x7ff, 8)
	assert.ErrorIs(t, err, ErrUnknownRegister)
	_, err = i.FetchRegister(-1, 8)
	assert.ErrorIs(t, err, ErrUnknownRegister)

	_, err = i.FetchRegister(RegBankCSR+int(riscv.CSRCycleh), 8)
	assert.ErrorIs(t, err, riscv.ErrIllegalInstruction)

	assert.Equal(t, RegBankCSR+4096, i.RegisterCount())
}

func TestCSR_Identification(t *testing.T) {
	i, _ := newHart(t, riscv.XLEN64, nil, nil)
	misa, err := i.FetchCSR(0, riscv.CSRMisa)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), misa>>62)
	for _, e := range "ACDFIMPX" {
		assert.NotZero(t, misa&(1<<(e-'A')), "misa %c", e)
	}
	assert.Zero(t, misa&(1<<('V'-'A')))

	v, err := i.FetchCSR(0, riscv.CSRMvendorid)
	require.NoError(t, err)
	assert.Equal(t, uint64(vendorID), v)

	i32 := New(Config{XLEN: riscv.XLEN32, HartID: 3}, nil, nil, nil)
	v, err = i32.FetchCSR(0, riscv.CSRMhartid)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), v)
	v, err = i32.FetchCSR(0, riscv.CSRMarchid)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x25), v)
	misa, err = i32.FetchCSR(0, riscv.CSRMisa)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), misa>>30)
}

func TestCSR_Unknown(t *testing.T) {
	i, _ := newHart(t, riscv.XLEN64, nil, nil)
	_, err := i.FetchCSR(0x40, riscv.CSR(0x7c0))
	assert.ErrorIs(t, err, riscv.ErrIllegalInstruction)
	assert.ErrorIs(t, i.StoreCSR(0x40, riscv.CSR(0x7c0), 1), riscv.ErrIllegalInstruction)
	assert.ErrorIs(t, i.StoreCSR(0x40, riscv.CSRInstreth, 1), riscv.ErrIllegalInstruction)
}

func TestCSR_CounterHalvesOn32Bit(t *testing.T) {
	i, _ := newHart(t, riscv.XLEN32, nil, nil)
	require.NoError(t, i.StoreCSR(0, riscv.CSRInstreth, 2))
	require.NoError(t, i.StoreCSR(0, riscv.CSRInstret, 5))
	assert.Equal(t, uint64(2<<32|5), i.Instret())

	for _, c := range []riscv.CSR{riscv.CSRCycleh, riscv.CSRTimeh, riscv.CSRInstreth} {
		v, err := i.FetchCSR(0, c)
		require.NoError(t, err)
		assert.Equal(t, uint64(2), v, c.String())
	}
	v, err := i.FetchCSR(0, riscv.CSRCycle)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), v)
}

func TestCSR_InstretCountsRetiredInstructions(t *testing.T) {
	i, _ := newHart(t, riscv.XLEN64, nil, []uint32{
		encI("addi", 5, 0, 1),
		encI("addi", 5, 5, 1),
		encI("csrrs", 6, 0, int32(riscv.CSRCycle)),
	})
	run(t, i, 3)
	assert.Equal(t, uint64(2), i.Reg(6))
	assert.Equal(t, uint64(3), i.Instret())
}
