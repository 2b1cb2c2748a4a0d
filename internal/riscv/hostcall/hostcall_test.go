package hostcall

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eigerco/rvsim/internal/riscv"
	"github.com/eigerco/rvsim/internal/riscv/memory"
)

const (
	bufAddr  = 0x4000
	pathAddr = 0x5000
	statAddr = 0x6000
)

func putString(t *testing.T, mem *memory.Memory, address uint64, s string) {
	t.Helper()
	require.NoError(t, mem.Write(address, append([]byte(s), 0)))
}

func failed(e Errno) uint64 { return riscv.Failed(uint64(e)) }

func TestWriteToStdout(t *testing.T) {
	mem := memory.New()
	var out bytes.Buffer
	h := New(mem, riscv.XLEN64, WithStdout(&out))
	require.NoError(t, mem.Write(bufAddr, []byte("hello\n")))

	n, err := h.Invoke(riscv.SysWrite, [4]uint64{1, bufAddr, 6})
	require.NoError(t, err)
	assert.Equal(t, uint64(6), n)
	assert.Equal(t, "hello\n", out.String())
}

func TestReadFromStdin(t *testing.T) {
	mem := memory.New()
	h := New(mem, riscv.XLEN64, WithStdin(strings.NewReader("abc")))

	n, err := h.Invoke(riscv.SysRead, [4]uint64{0, bufAddr, 16})
	require.NoError(t, err)
	assert.Equal(t, uint64(3), n)
	got := make([]byte, 3)
	require.NoError(t, mem.Read(riscv.AccessRead, bufAddr, got))
	assert.Equal(t, []byte("abc"), got)

	n, err = h.Invoke(riscv.SysRead, [4]uint64{0, bufAddr, 16})
	require.NoError(t, err)
	assert.Zero(t, n, "end of input")
}

func TestBadDescriptors(t *testing.T) {
	h := New(memory.New(), riscv.XLEN64)
	for _, tc := range []struct {
		name string
		id   uint64
		args [4]uint64
		want uint64
	}{
		{"write to stdin", riscv.SysWrite, [4]uint64{0, bufAddr, 1}, failed(EBADF)},
		{"read from stdout", riscv.SysRead, [4]uint64{1, bufAddr, 1}, failed(EBADF)},
		{"close unknown", riscv.SysClose, [4]uint64{42}, failed(EBADF)},
		{"lseek console", riscv.SysLseek, [4]uint64{1, 0, 0}, failed(ESPIPE)},
		{"fstat unknown", riscv.SysFstat, [4]uint64{7, statAddr}, failed(EBADF)},
		{"openat other dir", riscv.SysOpenat, [4]uint64{3, pathAddr, 0, 0}, failed(EBADF)},
		{"open null path", riscv.SysOpen, [4]uint64{0, 0, 0}, failed(EFAULT)},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, err := h.Invoke(tc.id, tc.args)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFileLifecycle(t *testing.T) {
	dir := t.TempDir()
	mem := memory.New()
	h := New(mem, riscv.XLEN32, WithDir(dir))
	putString(t, mem, pathAddr, "data.txt")
	require.NoError(t, mem.Write(bufAddr, []byte("0123456789")))

	// O_RDWR|O_CREAT|O_TRUNC, at AT_FDCWD written as a 32 bit -100
	fd, err := h.Invoke(riscv.SysOpenat, [4]uint64{0xffffff9c, pathAddr, oRdwr | oCreat | oTrunc, 0o644})
	require.NoError(t, err)
	assert.Equal(t, uint64(3), fd)

	n, err := h.Invoke(riscv.SysWrite, [4]uint64{fd, bufAddr, 10})
	require.NoError(t, err)
	assert.Equal(t, uint64(10), n)

	// seek back four bytes from the end, offset as a 32 bit negative
	pos, err := h.Invoke(riscv.SysLseek, [4]uint64{fd, 0xfffffffc, seekEnd})
	require.NoError(t, err)
	assert.Equal(t, uint64(6), pos)

	n, err = h.Invoke(riscv.SysRead, [4]uint64{fd, bufAddr + 0x100, 16})
	require.NoError(t, err)
	assert.Equal(t, uint64(4), n)
	got := make([]byte, 4)
	require.NoError(t, mem.Read(riscv.AccessRead, bufAddr+0x100, got))
	assert.Equal(t, []byte("6789"), got)

	r, err := h.Invoke(riscv.SysFstat, [4]uint64{fd, statAddr})
	require.NoError(t, err)
	assert.Zero(t, r)
	st := make([]byte, statSize)
	require.NoError(t, mem.Read(riscv.AccessRead, statAddr, st))
	mode := binary.LittleEndian.Uint32(st[16:])
	assert.Equal(t, uint32(sIFREG), mode&0o170000)
	assert.Equal(t, uint32(0o600), mode&0o600, "owner can read and write")
	assert.Equal(t, uint64(10), binary.LittleEndian.Uint64(st[48:]))

	r, err = h.Invoke(riscv.SysClose, [4]uint64{fd})
	require.NoError(t, err)
	assert.Zero(t, r)
	r, err = h.Invoke(riscv.SysClose, [4]uint64{fd})
	require.NoError(t, err)
	assert.Equal(t, failed(EBADF), r)

	content, err := os.ReadFile(filepath.Join(dir, "data.txt"))
	require.NoError(t, err)
	assert.Equal(t, "0123456789", string(content))

	r, err = h.Invoke(riscv.SysUnlink, [4]uint64{pathAddr})
	require.NoError(t, err)
	assert.Zero(t, r)
	_, err = os.Stat(filepath.Join(dir, "data.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	r, err = h.Invoke(riscv.SysUnlinkat, [4]uint64{0xffffff9c, pathAddr, 0})
	require.NoError(t, err)
	assert.Equal(t, failed(ENOENT), r)
}

func TestOpenExclusive(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "f"), nil, 0o644))
	mem := memory.New()
	h := New(mem, riscv.XLEN64, WithDir(dir))
	putString(t, mem, pathAddr, "f")

	r, err := h.Invoke(riscv.SysOpen, [4]uint64{pathAddr, oWronly | oCreat | oExcl, 0o644})
	require.NoError(t, err)
	assert.Equal(t, failed(EEXIST), r)

	putString(t, mem, pathAddr, "missing")
	r, err = h.Invoke(riscv.SysOpen, [4]uint64{pathAddr, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, failed(ENOENT), r)
}

func TestConsoleFstat(t *testing.T) {
	mem := memory.New()
	h := New(mem, riscv.XLEN64)
	r, err := h.Invoke(riscv.SysFstat, [4]uint64{1, statAddr})
	require.NoError(t, err)
	assert.Zero(t, r)
	st := make([]byte, statSize)
	require.NoError(t, mem.Read(riscv.AccessRead, statAddr, st))
	assert.Equal(t, uint32(sIFCHR|0o620), binary.LittleEndian.Uint32(st[16:]))
}

func TestExit(t *testing.T) {
	h := New(memory.New(), riscv.XLEN64)
	for _, id := range []uint64{riscv.SysExit, riscv.SysExitGroup} {
		_, err := h.Invoke(id, [4]uint64{0xffffffff})
		var exit *riscv.ErrExit
		require.ErrorAs(t, err, &exit)
		assert.Equal(t, int64(-1), exit.Code)
	}
}

func TestHostEquivalents(t *testing.T) {
	h := New(memory.New(), riscv.XLEN64)
	for _, id := range []uint64{
		riscv.SysExit, riscv.SysExitGroup, riscv.SysRead, riscv.SysWrite, riscv.SysClose,
		riscv.SysFstat, riscv.SysLseek, riscv.SysOpen, riscv.SysOpenat, riscv.SysUnlink, riscv.SysUnlinkat,
	} {
		assert.True(t, h.HasHostEquivalent(id), "syscall %d", id)
	}
	assert.False(t, h.HasHostEquivalent(riscv.SysGetcwd))
	assert.False(t, h.HasHostEquivalent(riscv.SysBrk), "brk belongs to the hart")

	r, err := h.Invoke(riscv.SysGetcwd, [4]uint64{})
	require.NoError(t, err)
	assert.Equal(t, uint64(0xffffffffffffffda), r)
}

func TestLink(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a"), []byte("x"), 0o644))
	h := New(memory.New(), riscv.XLEN64, WithDir(dir))

	require.NoError(t, h.Link("a", "b"))
	content, err := os.ReadFile(filepath.Join(dir, "b"))
	require.NoError(t, err)
	assert.Equal(t, "x", string(content))

	assert.Error(t, h.Link("missing", "c"))
}

func TestGuestMemoryFault(t *testing.T) {
	mem := memory.New(memory.WithMaxPages(0))
	h := New(mem, riscv.XLEN64, WithStdin(strings.NewReader("abc")))
	_, err := h.Invoke(riscv.SysRead, [4]uint64{0, bufAddr, 3})
	assert.ErrorIs(t, err, memory.ErrPageLimit)
}

func TestHostFlags(t *testing.T) {
	assert.Equal(t, os.O_RDONLY, hostFlags(0))
	assert.Equal(t, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, hostFlags(oWronly|oCreat|oTrunc))
	assert.Equal(t, os.O_RDWR|os.O_APPEND, hostFlags(oRdwr|oAppend))
	assert.Equal(t, os.O_RDONLY|os.O_EXCL, hostFlags(oExcl))
}

func TestBuffersPastTheAddressSpace(t *testing.T) {
	for _, tc := range []struct {
		name string
		xlen riscv.XLEN
		id   uint64
		args [4]uint64
	}{
		{"write wrapping", riscv.XLEN64, riscv.SysWrite, [4]uint64{1, 0xffff_ffff_ffff_fff0, 0x20}},
		{"read wrapping", riscv.XLEN64, riscv.SysRead, [4]uint64{0, 0xffff_ffff_ffff_fff0, 0x20}},
		{"fstat wrapping", riscv.XLEN64, riscv.SysFstat, [4]uint64{1, 0xffff_ffff_ffff_ffc0}},
		{"write past 4 GiB", riscv.XLEN32, riscv.SysWrite, [4]uint64{1, 0xffff_fff0, 0x20}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			h := New(memory.New(), tc.xlen, WithStdin(strings.NewReader("abc")), WithStdout(&out))
			got, err := h.Invoke(tc.id, tc.args)
			require.NoError(t, err)
			assert.Equal(t, failed(EFAULT), got)
			assert.Empty(t, out.String())
		})
	}
}
