package interpreter

import (
	"errors"

	"github.com/eigerco/rvsim/internal/riscv"
)

// ecall reads the syscall number from a7, or t0 under the reduced ABI,
// passes a0..a3 and writes the result to a0. brk, gettimeofday and link are
// served by the core itself.
func (i *Instance) ecall(in *instr) (uint64, error) {
	numReg := riscv.A7
	if i.abi == riscv.ABIReduced {
		numReg = riscv.T0
	}
	id := i.ureg(numReg)
	args := [4]uint64{i.ureg(riscv.A0), i.ureg(riscv.A1), i.ureg(riscv.A2), i.ureg(riscv.A3)}

	var result uint64
	switch {
	case id == riscv.SysBrk:
		if args[0] != 0 {
			i.brk = args[0]
		}
		result = i.brk
	case id == riscv.SysGettimeofday:
		if err := i.gettimeofday(in.pc, args[0]); err != nil {
			return 0, err
		}
	case id == riscv.SysLink:
		r, err := i.link(in.pc, args[0], args[1])
		if err != nil {
			return 0, err
		}
		result = r
	case i.syscalls != nil && i.syscalls.HasHostEquivalent(id):
		r, err := i.syscalls.Invoke(id, args)
		if err != nil {
			var exit *riscv.ErrExit
			if errors.As(err, &exit) {
				return 0, err
			}
			return 0, riscv.TrapErr(in.pc, err)
		}
		result = r
	default:
		i.log.Debug().Uint64("id", id).Msg("unsupported syscall")
		result = riscv.Failed(riscv.ENOSYS)
	}
	i.setReg(riscv.A0, result)
	return in.next, nil
}

// gettimeofday stores {seconds, microseconds} as two XLEN words
func (i *Instance) gettimeofday(pc, address uint64) error {
	if address == 0 {
		return nil
	}
	now := i.now()
	size := i.xlen.Bytes()
	if err := i.store(pc, address, size, uint64(now.Unix())); err != nil {
		return err
	}
	return i.store(pc, address+uint64(size), size, uint64(now.Nanosecond()/1000))
}

func (i *Instance) link(pc, oldAddr, newAddr uint64) (uint64, error) {
	linker, ok := i.syscalls.(riscv.Linker)
	if !ok {
		return riscv.Failed(riscv.ENOSYS), nil
	}
	oldPath, err := i.readString(pc, oldAddr)
	if err != nil {
		return 0, err
	}
	newPath, err := i.readString(pc, newAddr)
	if err != nil {
		return 0, err
	}
	if err := linker.Link(oldPath, newPath); err != nil {
		i.log.Debug().Err(err).Str("old", oldPath).Str("new", newPath).Msg("link failed")
		return ^uint64(0), nil
	}
	return 0, nil
}
