package interpreter

import (
	"encoding/binary"
	"fmt"

	"github.com/eigerco/rvsim/internal/riscv"
)

// load reads size bytes little endian, zero extended
func (i *Instance) load(pc, address uint64, size int) (uint64, error) {
	var buf [8]byte
	if err := i.memory.Read(riscv.AccessRead, i.addr(address), buf[:size]); err != nil {
		return 0, riscv.TrapErr(pc, err)
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

// loadSigned reads size bytes and sign extends them
func (i *Instance) loadSigned(pc, address uint64, size int) (uint64, error) {
	v, err := i.load(pc, address, size)
	if err != nil {
		return 0, err
	}
	return riscv.SignExtend(v, uint(size*8)), nil
}

func (i *Instance) store(pc, address uint64, size int, v uint64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	if err := i.memory.Write(i.addr(address), buf[:size]); err != nil {
		return riscv.TrapErr(pc, err)
	}
	return nil
}

// fetch reads the instruction at pc: one halfword, and a second one when
// the first announces a 32 bit encoding
func (i *Instance) fetch(pc uint64) (uint32, int, error) {
	var buf [4]byte
	if err := i.memory.Read(riscv.AccessFetch, pc, buf[:2]); err != nil {
		return 0, 0, riscv.TrapErr(pc, err)
	}
	low := binary.LittleEndian.Uint16(buf[:2])
	if riscv.InsnLength(low) == 2 {
		return uint32(low), 2, nil
	}
	if err := i.memory.Read(riscv.AccessFetch, i.addr(pc+2), buf[2:]); err != nil {
		return 0, 0, riscv.TrapErr(pc, err)
	}
	return binary.LittleEndian.Uint32(buf[:]), 4, nil
}

// readString reads a NUL terminated guest string
func (i *Instance) readString(pc, address uint64) (string, error) {
	const maxLen = 4096
	var out []byte
	b := make([]byte, 1)
	for n := 0; n < maxLen; n++ {
		if err := i.memory.Read(riscv.AccessRead, i.addr(address+uint64(n)), b); err != nil {
			return "", riscv.TrapErr(pc, err)
		}
		if b[0] == 0 {
			return string(out), nil
		}
		out = append(out, b[0])
	}
	return "", riscv.TrapErr(pc, fmt.Errorf("unterminated string at 0x%x", address))
}
