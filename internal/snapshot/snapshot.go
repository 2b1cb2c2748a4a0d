// Package snapshot captures the architectural state of a hart through its
// register bank, and encodes, hashes, compares and stores it.
package snapshot

import (
	"encoding/binary"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/eigerco/rvsim/internal/riscv"
	"github.com/eigerco/rvsim/internal/riscv/interpreter"
)

// Reflector the register bank view of a hart
type Reflector interface {
	XLEN() riscv.XLEN
	FetchRegister(n, length int) ([]byte, error)
	StoreRegister(n int, data []byte) error
}

type Snapshot struct {
	XLEN riscv.XLEN
	PC   uint64
	GPR  [32]uint64
	// FPRWidth the float register size in bytes, zero under soft float
	FPRWidth int
	FPR      [32][2]uint64
	CSR      map[riscv.CSR]uint64
}

// Take reads every register the hart exposes. Counter halves that do not
// exist on the hart's width are left out.
func Take(h Reflector) (*Snapshot, error) {
	xlen := h.XLEN()
	s := &Snapshot{XLEN: xlen, CSR: make(map[riscv.CSR]uint64)}

	word := func(n int) (uint64, error) {
		b, err := h.FetchRegister(n, xlen.Bytes())
		if err != nil {
			return 0, err
		}
		var buf [8]byte
		copy(buf[:], b)
		return binary.LittleEndian.Uint64(buf[:]), nil
	}

	for r := range s.GPR {
		v, err := word(r)
		if err != nil {
			return nil, fmt.Errorf("read x%d: %w", r, err)
		}
		s.GPR[r] = v
	}
	pc, err := word(interpreter.RegBankPC)
	if err != nil {
		return nil, fmt.Errorf("read pc: %w", err)
	}
	s.PC = pc

	width, err := fprWidth(h)
	if err != nil {
		return nil, err
	}
	s.FPRWidth = width
	for r := range s.FPR {
		if width == 0 {
			break
		}
		b, err := h.FetchRegister(interpreter.RegBankFPR+r, width)
		if err != nil {
			return nil, fmt.Errorf("read f%d: %w", r, err)
		}
		var buf [16]byte
		copy(buf[:], b)
		s.FPR[r] = [2]uint64{binary.LittleEndian.Uint64(buf[:8]), binary.LittleEndian.Uint64(buf[8:])}
	}

	for _, c := range riscv.CSRs {
		v, err := word(interpreter.RegBankCSR + int(c))
		if errors.Is(err, riscv.ErrIllegalInstruction) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", c, err)
		}
		s.CSR[c] = v
	}
	return s, nil
}

// fprWidth finds the widest float register access the hart accepts
func fprWidth(h Reflector) (int, error) {
	for _, width := range []int{16, 8, 4} {
		_, err := h.FetchRegister(interpreter.RegBankFPR, width)
		switch {
		case err == nil:
			return width, nil
		case errors.Is(err, interpreter.ErrSoftFloat):
			return 0, nil
		case !errors.Is(err, interpreter.ErrRegisterLength):
			return 0, fmt.Errorf("size float registers: %w", err)
		}
	}
	return 0, nil
}

// Restore writes the snapshot back through the register bank. fcsr is
// skipped, fflags and frm carry its contents.
func Restore(h Reflector, s *Snapshot) error {
	if h.XLEN() != s.XLEN {
		return fmt.Errorf("restore a %d bit snapshot on a %d bit hart", s.XLEN, h.XLEN())
	}
	size := s.XLEN.Bytes()
	word := func(v uint64) []byte {
		return binary.LittleEndian.AppendUint64(nil, v)[:size]
	}
	for r := 1; r < len(s.GPR); r++ {
		if err := h.StoreRegister(r, word(s.GPR[r])); err != nil {
			return fmt.Errorf("write x%d: %w", r, err)
		}
	}
	if err := h.StoreRegister(interpreter.RegBankPC, word(s.PC)); err != nil {
		return fmt.Errorf("write pc: %w", err)
	}
	for r := range s.FPR {
		if s.FPRWidth == 0 {
			break
		}
		buf := binary.LittleEndian.AppendUint64(nil, s.FPR[r][0])
		buf = binary.LittleEndian.AppendUint64(buf, s.FPR[r][1])
		if err := h.StoreRegister(interpreter.RegBankFPR+r, buf[:s.FPRWidth]); err != nil {
			return fmt.Errorf("write f%d: %w", r, err)
		}
	}
	for _, c := range s.csrOrder() {
		if c == riscv.CSRFcsr {
			continue
		}
		if err := h.StoreRegister(interpreter.RegBankCSR+int(c), word(s.CSR[c])); err != nil {
			return fmt.Errorf("write %s: %w", c, err)
		}
	}
	return nil
}

func (s *Snapshot) csrOrder() []riscv.CSR {
	return slices.Sorted(maps.Keys(s.CSR))
}

// Dump renders one register per line, the format Diff compares
func (s *Snapshot) Dump() string {
	digits := s.XLEN.Bytes() * 2
	var b strings.Builder
	fmt.Fprintf(&b, "xlen %d\n", s.XLEN)
	fmt.Fprintf(&b, "pc   0x%0*x\n", digits, s.PC)
	for r, v := range s.GPR {
		fmt.Fprintf(&b, "%-4s 0x%0*x\n", riscv.Reg(r), digits, v)
	}
	if s.FPRWidth > 0 {
		for r, v := range s.FPR {
			if s.FPRWidth > 8 {
				fmt.Fprintf(&b, "%-4s 0x%016x%016x\n", riscv.FReg(r), v[1], v[0])
			} else {
				fmt.Fprintf(&b, "%-4s 0x%0*x\n", riscv.FReg(r), s.FPRWidth*2, v[0])
			}
		}
	}
	for _, c := range s.csrOrder() {
		fmt.Fprintf(&b, "%s 0x%0*x\n", c, digits, s.CSR[c])
	}
	return b.String()
}
