// rvsim runs a flat RISC-V image on one or more harts.
//
//	go run ./cmd/rvsim -xlen 32 -harts 2 -max-steps 1000000 image.bin
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/eigerco/rvsim/internal/machine"
	"github.com/eigerco/rvsim/internal/riscv"
	"github.com/eigerco/rvsim/internal/riscv/hostcall"
	"github.com/eigerco/rvsim/internal/riscv/memory"
	"github.com/eigerco/rvsim/internal/snapshot"
	"github.com/eigerco/rvsim/pkg/db/pebble"
	"github.com/eigerco/rvsim/pkg/log"
)

// Process exit statuses besides the guest's own exit code
const (
	exitHalt   = 1
	exitUsage  = 2
	exitBudget = 124
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, err := parseConfig(args)
	if err != nil {
		fmt.Fprintf(stderr, "rvsim: %v\n", err)
		return exitUsage
	}
	logOpts, _ := cfg.logOptions()
	logOpts.Output = stderr
	log.Init(logOpts)

	image, err := os.ReadFile(cfg.Image)
	if err != nil {
		log.Root.Error().Err(err).Msg("read image")
		return exitUsage
	}
	xlen := riscv.XLEN(cfg.XLEN)
	abi, _ := cfg.abi()
	floatABI, _ := cfg.floatABI()

	mem := memory.New(memory.WithExecutable(cfg.LoadAddress, uint64(len(image))))
	if err := mem.Load(cfg.LoadAddress, image); err != nil {
		log.Root.Error().Err(err).Msg("load image")
		return exitUsage
	}
	host := hostcall.New(mem, xlen,
		hostcall.WithStdin(stdin),
		hostcall.WithStdout(stdout),
		hostcall.WithStderr(stderr),
		hostcall.WithDir(cfg.Dir),
		hostcall.WithLogger(log.VM),
	)
	m := machine.New(machine.Config{
		XLEN:      xlen,
		ABI:       abi,
		FloatABI:  floatABI,
		Entry:     cfg.Entry,
		StackTop:  cfg.StackTop,
		StackSize: cfg.StackSize,
		Log:       &log.VM,
	}, cfg.Harts, mem, host)

	log.Root.Info().
		Str("image", cfg.Image).
		Int("size", len(image)).
		Int("xlen", cfg.XLEN).
		Int("harts", cfg.Harts).
		Msgf("starting at 0x%x", cfg.Entry)

	var states []machine.HartState
	if cfg.Parallel {
		states, err = m.RunParallel(ctx, cfg.MaxSteps)
	} else {
		states, err = m.Run(ctx, cfg.MaxSteps)
	}

	if cfg.SnapshotDB != "" {
		if err := saveSnapshots(cfg.SnapshotDB, m, states); err != nil {
			log.Store.Error().Err(err).Msg("save snapshots")
		}
	}
	return exitCode(states, err)
}

func exitCode(states []machine.HartState, err error) int {
	if err != nil {
		var halt *riscv.Halt
		if errors.As(err, &halt) {
			log.Root.Error().Err(err).Msgf("halted at 0x%x", halt.Address)
		} else {
			log.Root.Error().Err(err).Msg("stopped")
		}
		return exitHalt
	}
	for id, st := range states {
		if !st.Exited {
			log.Root.Warn().Int("hart", id).Uint64("steps", st.Steps).Msg("step budget exhausted")
			return exitBudget
		}
	}
	log.Root.Info().Int64("code", states[0].Code).Msg("exited")
	return int(uint8(states[0].Code))
}

// saveSnapshots stores every hart's final registers, keyed by the steps it
// ran
func saveSnapshots(dir string, m *machine.Machine, states []machine.HartState) (err error) {
	kv, err := pebble.NewKVStore(pebble.WithPath(dir))
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := kv.Close(); err == nil {
			err = closeErr
		}
	}()
	store := snapshot.NewStore(kv)
	for id, h := range m.Harts() {
		s, err := snapshot.Take(h)
		if err != nil {
			return fmt.Errorf("hart %d: %w", id, err)
		}
		if err := store.Save(uint64(id), states[id].Steps, s); err != nil {
			return err
		}
		log.Store.Info().Int("hart", id).Uint64("step", states[id].Steps).Hex("digest", digest(s)).Msg("snapshot saved")
	}
	return nil
}

func digest(s *snapshot.Snapshot) []byte {
	d := s.Digest()
	return d[:]
}
