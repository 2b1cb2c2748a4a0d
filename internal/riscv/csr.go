package riscv

import "fmt"

// CSR a control and status register number
type CSR uint16

const (
	CSRFflags    CSR = 0x001
	CSRFrm       CSR = 0x002
	CSRFcsr      CSR = 0x003
	CSRMstatus   CSR = 0x300
	CSRMisa      CSR = 0x301
	CSRUitb      CSR = 0x800 // execute-in-table base
	CSRUcode     CSR = 0x801 // vendor micro-op status, bit 0 is the saturation overflow flag
	CSRCycle     CSR = 0xC00
	CSRTime      CSR = 0xC01
	CSRInstret   CSR = 0xC02
	CSRCycleh    CSR = 0xC80
	CSRTimeh     CSR = 0xC81
	CSRInstreth  CSR = 0xC82
	CSRMvendorid CSR = 0xF11
	CSRMarchid   CSR = 0xF12
	CSRMimpid    CSR = 0xF13
	CSRMhartid   CSR = 0xF14
)

// UcodeOV the overflow bit of ucode
const UcodeOV uint64 = 1

// Field widths of the float control registers
const (
	FflagsMask uint64 = 0x1f
	FrmMask    uint64 = 0x7
	FrmShift          = 5
	FcsrMask   uint64 = 0xff
)

var csrNames = map[CSR]string{
	CSRFflags:    "fflags",
	CSRFrm:       "frm",
	CSRFcsr:      "fcsr",
	CSRMstatus:   "mstatus",
	CSRMisa:      "misa",
	CSRUitb:      "uitb",
	CSRUcode:     "ucode",
	CSRCycle:     "cycle",
	CSRTime:      "time",
	CSRInstret:   "instret",
	CSRCycleh:    "cycleh",
	CSRTimeh:     "timeh",
	CSRInstreth:  "instreth",
	CSRMvendorid: "mvendorid",
	CSRMarchid:   "marchid",
	CSRMimpid:    "mimpid",
	CSRMhartid:   "mhartid",
}

// CSRs every implemented CSR, in numeric order
var CSRs = []CSR{
	CSRFflags, CSRFrm, CSRFcsr, CSRMstatus, CSRMisa, CSRUitb, CSRUcode,
	CSRCycle, CSRTime, CSRInstret, CSRCycleh, CSRTimeh, CSRInstreth,
	CSRMvendorid, CSRMarchid, CSRMimpid, CSRMhartid,
}

func (c CSR) String() string {
	if name, ok := csrNames[c]; ok {
		return name
	}
	return fmt.Sprintf("csr0x%03x", uint16(c))
}

// Known reports whether the CSR is implemented
func (c CSR) Known() bool {
	_, ok := csrNames[c]
	return ok
}

// HighHalf reports whether the CSR is one of the upper half counters which
// only exist on 32 bit harts
func (c CSR) HighHalf() bool {
	return c == CSRCycleh || c == CSRTimeh || c == CSRInstreth
}
