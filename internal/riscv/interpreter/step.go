package interpreter

import (
	"errors"

	"github.com/eigerco/rvsim/internal/riscv"
)

// Step fetches, decodes and executes one instruction, advances the
// counters and commits the new pc. A returned error stops the hart; the
// state reflects whatever the failing instruction wrote before failing.
func (i *Instance) Step() error {
	pc := i.pc
	insn, _, err := i.fetch(pc)
	if err != nil {
		return i.halted(err)
	}
	next, err := i.execute(insn, pc, false)
	if err != nil {
		return i.halted(err)
	}
	i.instret++
	next &= i.xlen.Mask()
	if next == 0 {
		return i.halted(riscv.IllegalInstructionf(pc, "jump to address zero"))
	}
	i.pc = next
	return nil
}

// Run steps until the hart halts or maxSteps instructions retired; zero
// means no limit
func (i *Instance) Run(maxSteps uint64) error {
	for n := uint64(0); maxSteps == 0 || n < maxSteps; n++ {
		if err := i.Step(); err != nil {
			return err
		}
	}
	return nil
}

func (i *Instance) halted(err error) error {
	var exit *riscv.ErrExit
	if errors.As(err, &exit) {
		i.log.Debug().Int64("code", exit.Code).Msg("exit")
		return err
	}
	i.log.Warn().Err(err).Uint64("pc", i.pc).Msg("hart halted")
	return err
}
