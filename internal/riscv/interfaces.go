package riscv

// Access the intent of a memory access. A collaborator may use it for
// protection checks; the core treats all intents the same.
type Access uint8

const (
	AccessFetch Access = iota
	AccessRead
	AccessWrite
)

// Memory a flat byte addressable space. Accesses are 1, 2, 4 or 8 bytes
// wide and may be unaligned.
type Memory interface {
	Read(access Access, address uint64, data []byte) error
	Write(address uint64, data []byte) error
}

// Syscalls the host syscall service behind ecall
type Syscalls interface {
	// Invoke runs the host equivalent of syscall id
	Invoke(id uint64, args [4]uint64) (uint64, error)
	// HasHostEquivalent reports whether Invoke understands id
	HasHostEquivalent(id uint64) bool
}

// Linker is implemented by syscall collaborators that can create hard links.
// The core reads the paths out of guest memory before calling it.
type Linker interface {
	Link(oldPath, newPath string) error
}

// Syscall numbers the core knows about
const (
	SysGetcwd       uint64 = 17
	SysUnlinkat     uint64 = 35
	SysOpenat       uint64 = 56
	SysClose        uint64 = 57
	SysLseek        uint64 = 62
	SysRead         uint64 = 63
	SysWrite        uint64 = 64
	SysFstat        uint64 = 80
	SysExit         uint64 = 93
	SysExitGroup    uint64 = 94
	SysGettimeofday uint64 = 169
	SysBrk          uint64 = 214
	SysOpen         uint64 = 1024
	SysLink         uint64 = 1025
	SysUnlink       uint64 = 1026
)

// ENOSYS returned (negated) for syscalls nobody implements
const ENOSYS = 38

// Failed the a0 value of a syscall that failed with errno: its two's
// complement negation at full width
func Failed(errno uint64) uint64 {
	return ^errno + 1
}
