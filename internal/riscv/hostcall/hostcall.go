// Package hostcall serves guest system calls from the host process: console
// and file I/O, links and unlinks, and exit. gettimeofday and brk never
// reach it, the hart answers those itself.
package hostcall

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"github.com/eigerco/rvsim/internal/riscv"
	"github.com/eigerco/rvsim/internal/safemath"
)

// Errno a guest visible error number, returned negated in a0
type Errno uint64

const (
	ENOENT       Errno = 2
	EIO          Errno = 5
	EBADF        Errno = 9
	EACCES       Errno = 13
	EFAULT       Errno = 14
	EEXIST       Errno = 17
	EINVAL       Errno = 22
	ESPIPE       Errno = 29
	ENAMETOOLONG Errno = 36
)

func (e Errno) String() string {
	switch e {
	case ENOENT:
		return "no such file or directory"
	case EIO:
		return "input/output error"
	case EBADF:
		return "bad file descriptor"
	case EACCES:
		return "permission denied"
	case EFAULT:
		return "bad address"
	case EEXIST:
		return "file exists"
	case EINVAL:
		return "invalid argument"
	case ESPIPE:
		return "illegal seek"
	case ENAMETOOLONG:
		return "file name too long"
	}
	return fmt.Sprintf("errno %d", uint64(e))
}

// result the a0 encoding of a failed call
func (e Errno) result() uint64 {
	return riscv.Failed(uint64(e))
}

const (
	// atFDCWD the only directory descriptor the *at calls accept
	atFDCWD = -100

	maxPath = 4096
	// maxTransfer caps a single read or write
	maxTransfer = 1 << 20
)

// file a guest descriptor. Console descriptors have no backing os.File.
type file struct {
	name string
	r    io.Reader
	w    io.Writer
	f    *os.File
}

type Option func(*Host)

func WithStdin(r io.Reader) Option  { return func(h *Host) { h.files[0].r = r } }
func WithStdout(w io.Writer) Option { return func(h *Host) { h.files[1].w = w } }
func WithStderr(w io.Writer) Option { return func(h *Host) { h.files[2].w = w } }

// WithDir resolves relative guest paths against dir instead of the working
// directory
func WithDir(dir string) Option { return func(h *Host) { h.dir = dir } }

func WithLogger(log zerolog.Logger) Option { return func(h *Host) { h.log = log } }

// Host the default riscv.Syscalls collaborator. One Host may serve several
// harts sharing the same memory.
type Host struct {
	mem  riscv.Memory
	xlen riscv.XLEN
	dir  string
	log  zerolog.Logger

	mu     sync.Mutex
	files  map[int64]*file
	nextFD int64
}

func New(mem riscv.Memory, xlen riscv.XLEN, opts ...Option) *Host {
	h := &Host{
		mem:  mem,
		xlen: xlen,
		dir:  ".",
		log:  zerolog.Nop(),
		files: map[int64]*file{
			0: {name: "stdin", r: os.Stdin},
			1: {name: "stdout", w: os.Stdout},
			2: {name: "stderr", w: os.Stderr},
		},
		nextFD: 3,
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

type call func(h *Host, args [4]uint64) (uint64, error)

// calls the guest syscall numbers with a host equivalent
var calls = map[uint64]call{
	riscv.SysExit:      (*Host).exit,
	riscv.SysExitGroup: (*Host).exit,
	riscv.SysRead:      (*Host).read,
	riscv.SysWrite:     (*Host).write,
	riscv.SysClose:     (*Host).close,
	riscv.SysFstat:     (*Host).fstat,
	riscv.SysLseek:     (*Host).lseek,
	riscv.SysOpen: func(h *Host, args [4]uint64) (uint64, error) {
		return h.open(atFDCWD, args[0], args[1], args[2])
	},
	riscv.SysOpenat: func(h *Host, args [4]uint64) (uint64, error) {
		return h.open(h.signed(args[0]), args[1], args[2], args[3])
	},
	riscv.SysUnlink: func(h *Host, args [4]uint64) (uint64, error) {
		return h.unlink(atFDCWD, args[0])
	},
	riscv.SysUnlinkat: func(h *Host, args [4]uint64) (uint64, error) {
		return h.unlink(h.signed(args[0]), args[1])
	},
}

// HasHostEquivalent implements riscv.Syscalls
func (h *Host) HasHostEquivalent(id uint64) bool {
	_, ok := calls[id]
	return ok
}

// Invoke implements riscv.Syscalls. Failures the guest can handle come
// back as a negated Errno, the error is reserved for exit and for faults
// on guest memory.
func (h *Host) Invoke(id uint64, args [4]uint64) (uint64, error) {
	c, ok := calls[id]
	if !ok {
		return riscv.Failed(riscv.ENOSYS), nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return c(h, args)
}

// Link implements riscv.Linker
func (h *Host) Link(oldPath, newPath string) error {
	return os.Link(h.resolve(oldPath), h.resolve(newPath))
}

// signed reinterprets an argument as a signed XLEN value
func (h *Host) signed(v uint64) int64 {
	return int64(riscv.SignExtend(v&h.xlen.Mask(), uint(h.xlen)))
}

func (h *Host) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(h.dir, path)
}

func (h *Host) exit(args [4]uint64) (uint64, error) {
	code := int64(int32(args[0]))
	h.log.Debug().Int64("code", code).Msg("guest exit")
	return 0, &riscv.ErrExit{Code: code}
}

func (h *Host) read(args [4]uint64) (uint64, error) {
	fd, buf, count := h.signed(args[0]), args[1], min(args[2], maxTransfer)
	f, ok := h.files[fd]
	if !ok || f.r == nil {
		return EBADF.result(), nil
	}
	if err := h.guestRange(buf, count); err != nil {
		h.log.Debug().Err(err).Int64("fd", fd).Msg("read failed")
		return errno(err).result(), nil
	}
	data := make([]byte, count)
	n, err := f.r.Read(data)
	if err != nil && !errors.Is(err, io.EOF) {
		h.log.Debug().Err(err).Int64("fd", fd).Msg("read failed")
		return errno(err).result(), nil
	}
	if err := h.mem.Write(buf, data[:n]); err != nil {
		return 0, fmt.Errorf("read into guest buffer 0x%x: %w", buf, err)
	}
	return uint64(n), nil
}

func (h *Host) write(args [4]uint64) (uint64, error) {
	fd, buf, count := h.signed(args[0]), args[1], min(args[2], maxTransfer)
	f, ok := h.files[fd]
	if !ok || f.w == nil {
		return EBADF.result(), nil
	}
	if err := h.guestRange(buf, count); err != nil {
		h.log.Debug().Err(err).Int64("fd", fd).Msg("write failed")
		return errno(err).result(), nil
	}
	data := make([]byte, count)
	if err := h.mem.Read(riscv.AccessRead, buf, data); err != nil {
		return 0, fmt.Errorf("write from guest buffer 0x%x: %w", buf, err)
	}
	n, err := f.w.Write(data)
	if err != nil {
		h.log.Debug().Err(err).Int64("fd", fd).Msg("write failed")
		return errno(err).result(), nil
	}
	return uint64(n), nil
}

func (h *Host) close(args [4]uint64) (uint64, error) {
	fd := h.signed(args[0])
	f, ok := h.files[fd]
	if !ok {
		return EBADF.result(), nil
	}
	// the console stays open for the host
	if f.f == nil {
		return 0, nil
	}
	delete(h.files, fd)
	if err := f.f.Close(); err != nil {
		return errno(err).result(), nil
	}
	return 0, nil
}

// Seek origins
const (
	seekSet = 0
	seekCur = 1
	seekEnd = 2
)

func (h *Host) lseek(args [4]uint64) (uint64, error) {
	fd, offset, whence := h.signed(args[0]), h.signed(args[1]), args[2]
	f, ok := h.files[fd]
	if !ok {
		return EBADF.result(), nil
	}
	if f.f == nil {
		return ESPIPE.result(), nil
	}
	if whence != seekSet && whence != seekCur && whence != seekEnd {
		return EINVAL.result(), nil
	}
	pos, err := f.f.Seek(offset, int(whence))
	if err != nil {
		return errno(err).result(), nil
	}
	return uint64(pos), nil
}

// Guest open flags
const (
	oAccMode = 0x3
	oWronly  = 0x1
	oRdwr    = 0x2
	oCreat   = 0x40
	oExcl    = 0x80
	oTrunc   = 0x200
	oAppend  = 0x400
)

// hostFlags translates guest open flags into os package flags
func hostFlags(guest uint64) int {
	var flags int
	switch guest & oAccMode {
	case oWronly:
		flags = os.O_WRONLY
	case oRdwr:
		flags = os.O_RDWR
	default:
		flags = os.O_RDONLY
	}
	for _, t := range []struct {
		guest uint64
		host  int
	}{
		{oCreat, os.O_CREATE},
		{oExcl, os.O_EXCL},
		{oTrunc, os.O_TRUNC},
		{oAppend, os.O_APPEND},
	} {
		if guest&t.guest != 0 {
			flags |= t.host
		}
	}
	return flags
}

func (h *Host) open(dirfd int64, pathAddr, flags, mode uint64) (uint64, error) {
	if dirfd != atFDCWD {
		return EBADF.result(), nil
	}
	path, e, err := h.readPath(pathAddr)
	if err != nil || e != 0 {
		return e.result(), err
	}
	f, err := os.OpenFile(h.resolve(path), hostFlags(flags), fs.FileMode(mode&0o777))
	if err != nil {
		h.log.Debug().Err(err).Str("path", path).Msg("open failed")
		return errno(err).result(), nil
	}
	fd := h.nextFD
	h.nextFD++
	h.files[fd] = &file{name: path, r: f, w: f, f: f}
	return uint64(fd), nil
}

func (h *Host) unlink(dirfd int64, pathAddr uint64) (uint64, error) {
	if dirfd != atFDCWD {
		return EBADF.result(), nil
	}
	path, e, err := h.readPath(pathAddr)
	if err != nil || e != 0 {
		return e.result(), err
	}
	if err := os.Remove(h.resolve(path)); err != nil {
		return errno(err).result(), nil
	}
	return 0, nil
}

// guestRange rejects buffers that run past the top of the guest address
// space
func (h *Host) guestRange(buf, count uint64) error {
	end, ok := safemath.Add64(buf, count)
	if !ok || (h.xlen == riscv.XLEN32 && end > 1<<32) {
		return fmt.Errorf("%w: buffer 0x%x+%d", safemath.ErrOverflow, buf, count)
	}
	return nil
}

// readPath reads a NUL terminated path out of guest memory
func (h *Host) readPath(address uint64) (string, Errno, error) {
	if address == 0 {
		return "", EFAULT, nil
	}
	var out []byte
	b := make([]byte, 1)
	for n := range maxPath {
		if err := h.mem.Read(riscv.AccessRead, address+uint64(n), b); err != nil {
			return "", 0, fmt.Errorf("path at 0x%x: %w", address, err)
		}
		if b[0] == 0 {
			return string(out), 0, nil
		}
		out = append(out, b[0])
	}
	return "", ENAMETOOLONG, nil
}

// File type bits of st_mode
const (
	sIFCHR = 0o020000
	sIFDIR = 0o040000
	sIFREG = 0o100000
)

// statSize the guest struct stat, laid out the same way for both widths
const statSize = 128

func (h *Host) fstat(args [4]uint64) (uint64, error) {
	fd, buf := h.signed(args[0]), args[1]
	f, ok := h.files[fd]
	if !ok {
		return EBADF.result(), nil
	}
	if err := h.guestRange(buf, statSize); err != nil {
		return errno(err).result(), nil
	}
	st := make([]byte, statSize)
	le := binary.LittleEndian
	if f.f == nil {
		le.PutUint32(st[16:], sIFCHR|0o620)
		le.PutUint32(st[20:], 1)
		le.PutUint32(st[56:], 1024)
	} else {
		info, err := f.f.Stat()
		if err != nil {
			return errno(err).result(), nil
		}
		mode := uint32(info.Mode().Perm())
		if info.IsDir() {
			mode |= sIFDIR
		} else {
			mode |= sIFREG
		}
		le.PutUint32(st[16:], mode)
		le.PutUint32(st[20:], 1)
		le.PutUint64(st[48:], uint64(info.Size()))
		le.PutUint32(st[56:], 4096)
		le.PutUint64(st[64:], uint64(info.Size()+511)/512)
		mtime := info.ModTime()
		for _, off := range []int{72, 88, 104} {
			le.PutUint64(st[off:], uint64(mtime.Unix()))
			le.PutUint64(st[off+8:], uint64(mtime.Nanosecond()))
		}
	}
	if err := h.mem.Write(buf, st); err != nil {
		return 0, fmt.Errorf("stat into guest buffer 0x%x: %w", buf, err)
	}
	return 0, nil
}

// errno maps a host error onto the closest guest error number
func errno(err error) Errno {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return ENOENT
	case errors.Is(err, fs.ErrExist):
		return EEXIST
	case errors.Is(err, fs.ErrPermission):
		return EACCES
	case errors.Is(err, fs.ErrClosed):
		return EBADF
	case errors.Is(err, fs.ErrInvalid):
		return EINVAL
	case errors.Is(err, safemath.ErrOverflow):
		return EFAULT
	}
	return EIO
}

var (
	_ riscv.Syscalls = (*Host)(nil)
	_ riscv.Linker   = (*Host)(nil)
)
