package interpreter

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/eigerco/rvsim/internal/riscv"
)

// Register bank numbering used by an attached debugger
const (
	RegBankPC   = 32
	RegBankFPR  = 33
	RegBankCSR  = 65
	regBankFPRs = 32
)

var (
	ErrUnknownRegister = errors.New("unknown register")
	ErrRegisterLength  = errors.New("register access length out of range")
	ErrSoftFloat       = errors.New("no floating point registers under the soft float ABI")
)

// registerWidth the largest access allowed on register bank entry n
func (i *Instance) registerWidth(n int) (int, error) {
	switch {
	case n < 0:
		return 0, fmt.Errorf("%w: %d", ErrUnknownRegister, n)
	case n <= RegBankPC:
		return i.xlen.Bytes(), nil
	case n < RegBankFPR+regBankFPRs:
		if i.fpABI == riscv.FloatABISoft {
			return 0, ErrSoftFloat
		}
		return i.fpABI.Bytes(), nil
	}
	if !riscv.CSR(n - RegBankCSR).Known() {
		return 0, fmt.Errorf("%w: %d", ErrUnknownRegister, n)
	}
	return i.xlen.Bytes(), nil
}

// FetchRegister reads length bytes (little endian) of register bank entry n
func (i *Instance) FetchRegister(n, length int) ([]byte, error) {
	width, err := i.registerWidth(n)
	if err != nil {
		return nil, err
	}
	if length <= 0 || length > width {
		return nil, fmt.Errorf("%w: %d bytes from register %d, at most %d", ErrRegisterLength, length, n, width)
	}
	var buf [16]byte
	switch {
	case n < RegBankPC:
		binary.LittleEndian.PutUint64(buf[:], i.ureg(riscv.Reg(n)))
	case n == RegBankPC:
		binary.LittleEndian.PutUint64(buf[:], i.pc)
	case n < RegBankCSR:
		f := i.fregs[n-RegBankFPR]
		binary.LittleEndian.PutUint64(buf[:8], f[0])
		binary.LittleEndian.PutUint64(buf[8:], f[1])
	default:
		v, err := i.FetchCSR(i.pc, riscv.CSR(n-RegBankCSR))
		if err != nil {
			return nil, err
		}
		binary.LittleEndian.PutUint64(buf[:], v)
	}
	return buf[:length:length], nil
}

// StoreRegister writes data (little endian, zero extended) to register bank
// entry n
func (i *Instance) StoreRegister(n int, data []byte) error {
	width, err := i.registerWidth(n)
	if err != nil {
		return err
	}
	if len(data) == 0 || len(data) > width {
		return fmt.Errorf("%w: %d bytes to register %d, at most %d", ErrRegisterLength, len(data), n, width)
	}
	var buf [16]byte
	copy(buf[:], data)
	v := binary.LittleEndian.Uint64(buf[:8])
	switch {
	case n < RegBankPC:
		i.setReg(riscv.Reg(n), v)
	case n == RegBankPC:
		i.SetPC(v)
	case n < RegBankCSR:
		i.fregs[n-RegBankFPR] = [2]uint64{v, binary.LittleEndian.Uint64(buf[8:])}
	default:
		return i.StoreCSR(i.pc, riscv.CSR(n-RegBankCSR), v)
	}
	return nil
}

// RegisterCount the number of register bank entries, the CSR block
// spanning the whole 12 bit CSR space
func (i *Instance) RegisterCount() int {
	return RegBankCSR + 1<<12
}
