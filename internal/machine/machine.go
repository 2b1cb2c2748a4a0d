// Package machine runs several harts over one shared memory, one syscall
// service and one reservation set.
package machine

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/eigerco/rvsim/internal/riscv"
	"github.com/eigerco/rvsim/internal/riscv/interpreter"
)

type Config struct {
	XLEN     riscv.XLEN
	ABI      riscv.ABI
	FloatABI riscv.FloatABI
	// Entry the pc every hart starts at
	Entry uint64
	// StackTop the initial sp of hart 0; hart n starts StackSize*n below it
	StackTop  uint64
	StackSize uint64
	Log       *zerolog.Logger
}

// HartState how far a hart got
type HartState struct {
	Steps  uint64
	Exited bool
	Code   int64
}

type Machine struct {
	harts []*interpreter.Instance
	log   zerolog.Logger
}

// New creates n harts with consecutive hart ids. The reservation set is
// shared so that lr/sc pairs see stores from every hart.
func New(cfg Config, n int, mem riscv.Memory, sys riscv.Syscalls) *Machine {
	m := &Machine{log: zerolog.Nop()}
	if cfg.Log != nil {
		m.log = *cfg.Log
	}
	reservations := interpreter.NewReservations()
	for id := range n {
		h := interpreter.New(interpreter.Config{
			XLEN:     cfg.XLEN,
			ABI:      cfg.ABI,
			FloatABI: cfg.FloatABI,
			HartID:   uint64(id),
			Log:      cfg.Log,
		}, mem, sys, reservations)
		h.SetPC(cfg.Entry)
		if cfg.StackTop != 0 {
			h.SetReg(riscv.SP, cfg.StackTop-uint64(id)*cfg.StackSize)
		}
		// a0 carries the hart id, the way a boot loader hands it over
		h.SetReg(riscv.A0, uint64(id))
		m.harts = append(m.harts, h)
	}
	return m
}

func (m *Machine) Harts() []*interpreter.Instance {
	return m.harts
}

// step advances one hart, turning a guest exit into a finished state
func step(h *interpreter.Instance, st *HartState) error {
	err := h.Step()
	if err == nil {
		st.Steps++
		return nil
	}
	var exit *riscv.ErrExit
	if errors.As(err, &exit) {
		st.Steps++
		st.Exited, st.Code = true, exit.Code
		return nil
	}
	return err
}

// Run interleaves the harts one instruction at a time until every hart
// exited or ran maxSteps instructions (zero for no limit). The first halt
// stops the whole machine.
func (m *Machine) Run(ctx context.Context, maxSteps uint64) ([]HartState, error) {
	states := make([]HartState, len(m.harts))
	for {
		active := false
		for id, h := range m.harts {
			st := &states[id]
			if st.Exited || (maxSteps != 0 && st.Steps >= maxSteps) {
				continue
			}
			active = true
			if err := step(h, st); err != nil {
				m.log.Warn().Err(err).Int("hart", id).Msg("hart halted")
				return states, fmt.Errorf("hart %d: %w", id, err)
			}
		}
		if !active {
			return states, nil
		}
		if err := ctx.Err(); err != nil {
			return states, err
		}
	}
}

// RunParallel gives every hart its own goroutine. A halt on one hart
// cancels the others at their next instruction boundary.
func (m *Machine) RunParallel(ctx context.Context, maxSteps uint64) ([]HartState, error) {
	states := make([]HartState, len(m.harts))
	g, ctx := errgroup.WithContext(ctx)
	for id, h := range m.harts {
		st := &states[id]
		g.Go(func() error {
			for !st.Exited && (maxSteps == 0 || st.Steps < maxSteps) {
				select {
				case <-ctx.Done():
					return ctx.Err()
				default:
				}
				if err := step(h, st); err != nil {
					m.log.Warn().Err(err).Int("hart", id).Msg("hart halted")
					return fmt.Errorf("hart %d: %w", id, err)
				}
			}
			return nil
		})
	}
	err := g.Wait()
	return states, err
}
