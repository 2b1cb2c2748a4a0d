package interpreter

import (
	"github.com/eigerco/rvsim/internal/riscv"
)

const (
	// vendor identification reported through mvendorid/marchid/mimpid
	vendorID = 0x31e
	archID   = 0x8000_0000_0000_0025
	implID   = 0x0a25
)

func (i *Instance) resetCSRs(hartID uint64) {
	i.csrs = make(map[riscv.CSR]uint64, len(riscv.CSRs))
	for _, c := range riscv.CSRs {
		i.csrs[c] = 0
	}
	i.csrs[riscv.CSRMisa] = i.misa()
	i.csrs[riscv.CSRMvendorid] = vendorID
	i.csrs[riscv.CSRMarchid] = archID & i.xlen.Mask()
	i.csrs[riscv.CSRMimpid] = implID
	i.csrs[riscv.CSRMhartid] = hartID
}

// misa reports MXL and the implemented standard extensions
func (i *Instance) misa() uint64 {
	var v uint64
	for _, e := range "ACDFIMPX" {
		v |= 1 << (e - 'A')
	}
	if i.is32() {
		return v | 1<<30
	}
	return v | 2<<62
}

// FetchCSR reads a CSR. The upper counter halves only exist on 32 bit harts.
func (i *Instance) FetchCSR(pc uint64, c riscv.CSR) (uint64, error) {
	if !c.Known() {
		return 0, riscv.IllegalInstructionf(pc, "unknown csr 0x%03x", uint16(c))
	}
	if c.HighHalf() && !i.is32() {
		return 0, riscv.IllegalInstructionf(pc, "%s is only accessible in 32 bit mode", c)
	}
	switch c {
	case riscv.CSRCycle, riscv.CSRTime, riscv.CSRInstret:
		return i.instret & i.xlen.Mask(), nil
	case riscv.CSRCycleh, riscv.CSRTimeh, riscv.CSRInstreth:
		return i.instret >> 32, nil
	}
	return i.csrs[c], nil
}

// StoreCSR writes a CSR keeping fcsr consistent with frm and fflags
func (i *Instance) StoreCSR(pc uint64, c riscv.CSR, v uint64) error {
	if !c.Known() {
		return riscv.IllegalInstructionf(pc, "unknown csr 0x%03x", uint16(c))
	}
	if c.HighHalf() && !i.is32() {
		return riscv.IllegalInstructionf(pc, "%s is only accessible in 32 bit mode", c)
	}
	v &= i.xlen.Mask()
	switch c {
	case riscv.CSRFflags:
		i.csrs[riscv.CSRFflags] = v & riscv.FflagsMask
		i.syncFcsr()
	case riscv.CSRFrm:
		i.csrs[riscv.CSRFrm] = v & riscv.FrmMask
		i.syncFcsr()
	case riscv.CSRFcsr:
		i.csrs[riscv.CSRFflags] = v & riscv.FflagsMask
		i.csrs[riscv.CSRFrm] = v >> riscv.FrmShift & riscv.FrmMask
		i.syncFcsr()
	case riscv.CSRCycle, riscv.CSRTime, riscv.CSRInstret:
		if i.is32() {
			i.instret = i.instret&^0xffffffff | v
		} else {
			i.instret = v
		}
	case riscv.CSRCycleh, riscv.CSRTimeh, riscv.CSRInstreth:
		i.instret = i.instret&0xffffffff | v<<32
	default:
		i.csrs[c] = v
	}
	return nil
}

func (i *Instance) syncFcsr() {
	i.csrs[riscv.CSRFcsr] = i.csrs[riscv.CSRFrm]<<riscv.FrmShift | i.csrs[riscv.CSRFflags]
}

// raiseFlags accumulates float exception flags
func (i *Instance) raiseFlags(flags uint64) {
	if flags == 0 {
		return
	}
	i.csrs[riscv.CSRFflags] |= flags & riscv.FflagsMask
	i.syncFcsr()
}

// setOverflow records a saturation in ucode.OV
func (i *Instance) setOverflow() {
	i.csrs[riscv.CSRUcode] |= riscv.UcodeOV
}

// roundingMode resolves the rm field, dynamic meaning frm
func (i *Instance) roundingMode(in *instr) (riscv.RoundingMode, error) {
	rm := riscv.Rm(in.word)
	if rm == riscv.RoundDynamic {
		rm = riscv.RoundingMode(i.csrs[riscv.CSRFrm])
	}
	if !rm.Valid() {
		return 0, riscv.IllegalInstructionf(in.pc, "invalid rounding mode %d", rm)
	}
	return rm, nil
}
