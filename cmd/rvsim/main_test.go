package main

import (
	"bytes"
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eigerco/rvsim/internal/riscv"
	"github.com/eigerco/rvsim/internal/snapshot"
	"github.com/eigerco/rvsim/pkg/db/pebble"
)

const (
	exit7  = 0x00700513 // addi a0, zero, 7
	liExit = 0x05d00893 // addi a7, zero, 93
	ecall  = 0x00000073
	ebreak = 0x00100073
	spin   = 0x0000006f // jal zero, 0
)

func writeImage(t *testing.T, words ...uint32) string {
	t.Helper()
	var b []byte
	for _, w := range words {
		b = binary.LittleEndian.AppendUint32(b, w)
	}
	path := filepath.Join(t.TempDir(), "image.bin")
	require.NoError(t, os.WriteFile(path, b, 0o644))
	return path
}

func runArgs(t *testing.T, args ...string) (int, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, strings.NewReader(""), &stdout, &stderr)
	return code, stderr.String()
}

func TestParseConfig_Defaults(t *testing.T) {
	cfg, err := parseConfig([]string{"prog.bin"})
	require.NoError(t, err)
	assert.Equal(t, "prog.bin", cfg.Image)
	assert.Equal(t, 64, cfg.XLEN)
	assert.Equal(t, 1, cfg.Harts)
	assert.Equal(t, cfg.LoadAddress, cfg.Entry, "entry defaults to the load address")
}

func TestParseConfig_FlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rvsim.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"image": "from-file.bin",
		"xlen": 32,
		"harts": 4,
		"float_abi": "single",
		"max_steps": 1000
	}`), 0o644))

	cfg, err := parseConfig([]string{"-config", path, "-harts", "2", "-entry", "0x2000"})
	require.NoError(t, err)
	assert.Equal(t, "from-file.bin", cfg.Image)
	assert.Equal(t, 32, cfg.XLEN)
	assert.Equal(t, 2, cfg.Harts)
	assert.Equal(t, "single", cfg.FloatABI)
	assert.Equal(t, uint64(1000), cfg.MaxSteps)
	assert.Equal(t, uint64(0x2000), cfg.Entry)

	fp, err := cfg.floatABI()
	require.NoError(t, err)
	assert.Equal(t, riscv.FloatABISingle, fp)
}

func TestParseConfig_Invalid(t *testing.T) {
	for _, tc := range []struct {
		name string
		args []string
		want string
	}{
		{"no image", nil, "no image"},
		{"xlen", []string{"-xlen", "128", "a.bin"}, "xlen must be 32 or 64"},
		{"harts", []string{"-harts", "0", "a.bin"}, "at least one hart"},
		{"abi", []string{"-abi", "weird", "a.bin"}, `unknown abi "weird"`},
		{"float abi", []string{"-float-abi", "half", "a.bin"}, `unknown float abi "half"`},
		{"log type", []string{"-log-type", "xml", "a.bin"}, `unknown logger type "xml"`},
		{"unknown flag", []string{"-turbo", "a.bin"}, "turbo"},
		{"missing file", []string{"-config", "/nonexistent/rvsim.json", "a.bin"}, "read config"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parseConfig(tc.args)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestRun_GuestExitCode(t *testing.T) {
	image := writeImage(t, exit7, liExit, ecall)
	code, _ := runArgs(t, "-log-level", "error", image)
	assert.Equal(t, 7, code)
}

func TestRun_32BitHarts(t *testing.T) {
	image := writeImage(t, exit7, liExit, ecall)
	code, _ := runArgs(t, "-xlen", "32", "-harts", "3", "-parallel", "-float-abi", "soft", image)
	assert.Equal(t, 7, code)
}

func TestRun_Halt(t *testing.T) {
	image := writeImage(t, ebreak)
	code, logs := runArgs(t, "-log-type", "json", image)
	assert.Equal(t, exitHalt, code)
	assert.Contains(t, logs, `"message":"halted at 0x10000"`)
}

func TestRun_Budget(t *testing.T) {
	image := writeImage(t, spin)
	code, _ := runArgs(t, "-max-steps", "100", image)
	assert.Equal(t, exitBudget, code)
}

func TestRun_FetchOutsideImage(t *testing.T) {
	image := writeImage(t, exit7)
	code, _ := runArgs(t, image)
	assert.Equal(t, exitHalt, code, "execution runs off the end of the image")
}

func TestRun_Usage(t *testing.T) {
	code, logs := runArgs(t)
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, logs, "no image given")

	code, _ = runArgs(t, filepath.Join(t.TempDir(), "missing.bin"))
	assert.Equal(t, exitUsage, code)
}

func TestRun_Snapshots(t *testing.T) {
	image := writeImage(t, exit7, liExit, ecall)
	dbDir := filepath.Join(t.TempDir(), "snapshots")
	code, _ := runArgs(t, "-harts", "2", "-snapshot-db", dbDir, image)
	require.Equal(t, 7, code)

	kv, err := pebble.NewKVStore(pebble.WithPath(dbDir))
	require.NoError(t, err)
	defer kv.Close()
	store := snapshot.NewStore(kv)
	for hart := range uint64(2) {
		step, s, err := store.Latest(hart)
		require.NoError(t, err)
		assert.Equal(t, uint64(3), step)
		assert.Equal(t, uint64(7), s.GPR[riscv.A0])
		assert.Equal(t, uint64(93), s.GPR[riscv.A7])
	}
}
