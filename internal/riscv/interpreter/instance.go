package interpreter

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/eigerco/rvsim/internal/riscv"
)

// Config per hart settings, fixed for the lifetime of an Instance
type Config struct {
	XLEN     riscv.XLEN
	ABI      riscv.ABI
	FloatABI riscv.FloatABI
	HartID   uint64

	// Now the clock behind gettimeofday, time.Now when nil
	Now func() time.Time
	// Log receives one debug record per retired instruction
	Log *zerolog.Logger
}

// Instance a single hart: architectural state plus the opcode index
// filtered to its width
type Instance struct {
	xlen  riscv.XLEN
	abi   riscv.ABI
	fpABI riscv.FloatABI

	regs  [32]uint64
	fregs [32][2]uint64
	pc    uint64
	csrs  map[riscv.CSR]uint64

	// instret doubles as cycle and time
	instret uint64
	brk     uint64

	memory       riscv.Memory
	syscalls     riscv.Syscalls
	reservations *Reservations
	index        *index

	now func() time.Time
	log zerolog.Logger
}

// New creates a hart. Harts of one machine share memory and reservations;
// a nil reservation set gives the hart a private one.
func New(cfg Config, memory riscv.Memory, syscalls riscv.Syscalls, reservations *Reservations) *Instance {
	if cfg.XLEN == 0 {
		cfg.XLEN = riscv.XLEN64
	}
	if reservations == nil {
		reservations = NewReservations()
	}
	i := &Instance{
		xlen:         cfg.XLEN,
		abi:          cfg.ABI,
		fpABI:        cfg.FloatABI,
		memory:       memory,
		syscalls:     syscalls,
		reservations: reservations,
		index:        indexFor(cfg.XLEN),
		now:          cfg.Now,
		log:          zerolog.Nop(),
	}
	if i.now == nil {
		i.now = time.Now
	}
	if cfg.Log != nil {
		i.log = cfg.Log.With().Uint64("hart", cfg.HartID).Logger()
	}
	i.resetCSRs(cfg.HartID)
	return i
}

func (i *Instance) XLEN() riscv.XLEN { return i.xlen }
func (i *Instance) ABI() riscv.ABI   { return i.abi }

func (i *Instance) PC() uint64 { return i.pc }

func (i *Instance) SetPC(pc uint64) { i.pc = pc & i.xlen.Mask() }

// Reg the register value; on 32 bit harts values are kept sign-extended
func (i *Instance) Reg(r riscv.Reg) uint64 { return i.regs[r] }

// SetReg writes a register, discarding writes to x0
func (i *Instance) SetReg(r riscv.Reg, v uint64) { i.setReg(r, v) }

// FReg the raw 128 bit contents of a float register
func (i *Instance) FReg(r riscv.FReg) [2]uint64 { return i.fregs[r] }

func (i *Instance) SetFReg(r riscv.FReg, v [2]uint64) { i.fregs[r] = v }

// Brk the current program break
func (i *Instance) Brk() uint64 { return i.brk }

func (i *Instance) SetBrk(v uint64) { i.brk = v }

// Instret number of retired instructions
func (i *Instance) Instret() uint64 { return i.instret }

func (i *Instance) Memory() riscv.Memory { return i.memory }

func (i *Instance) setReg(r riscv.Reg, v uint64) {
	if r == riscv.Zero {
		return
	}
	if i.xlen == riscv.XLEN32 {
		v = uint64(int64(int32(v)))
	}
	i.regs[r] = v
}

// ureg the unsigned XLEN view of a register
func (i *Instance) ureg(r riscv.Reg) uint64 {
	return i.regs[r] & i.xlen.Mask()
}

// sreg the signed view, valid for both widths thanks to sign-extended storage
func (i *Instance) sreg(r riscv.Reg) int64 {
	return int64(i.regs[r])
}

func (i *Instance) addr(v uint64) uint64 {
	return v & i.xlen.Mask()
}

func (i *Instance) is32() bool {
	return i.xlen == riscv.XLEN32
}

// float registers hold NaN-boxed narrower values in their low lane

func (i *Instance) f64(r riscv.Reg) uint64 { return i.fregs[r][0] }
func (i *Instance) f32(r riscv.Reg) uint32 { return uint32(i.fregs[r][0]) }
func (i *Instance) f16(r riscv.Reg) uint16 { return uint16(i.fregs[r][0]) }

func (i *Instance) setF64(r riscv.Reg, v uint64) { i.fregs[r][0] = v }
func (i *Instance) setF32(r riscv.Reg, v uint32) {
	i.fregs[r][0] = 0xffffffff_00000000 | uint64(v)
}
func (i *Instance) setF16(r riscv.Reg, v uint16) {
	i.fregs[r][0] = 0xffffffff_ffff0000 | uint64(v)
}

// checkStack enforces the 16 byte stack alignment of the standard ABI
func (i *Instance) checkStack(pc uint64) error {
	if i.abi == riscv.ABIReduced {
		return nil
	}
	if sp := i.ureg(riscv.SP); sp%riscv.StackAlign != 0 {
		return riscv.IllegalInstructionf(pc, "stack pointer 0x%x is not %d byte aligned", sp, riscv.StackAlign)
	}
	return nil
}
