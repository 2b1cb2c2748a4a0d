package riscv

import (
	"errors"
	"fmt"
)

// HaltReason why a hart stopped making forward progress
type HaltReason uint8

const (
	HaltIllegalInstruction HaltReason = iota
	HaltBreakpoint
	HaltTrap
)

func (r HaltReason) String() string {
	switch r {
	case HaltIllegalInstruction:
		return "illegal instruction"
	case HaltBreakpoint:
		return "breakpoint"
	case HaltTrap:
		return "trap"
	}
	return "unknown"
}

var (
	ErrIllegalInstruction = errors.New("illegal instruction")
	ErrBreakpoint         = errors.New("breakpoint")
	ErrTrap               = errors.New("trap")
)

// Halt a fatal condition raised while executing the instruction at Address.
// The hart does not resume after it, a debugger may decide otherwise for a
// breakpoint.
type Halt struct {
	Reason  HaltReason
	Address uint64
	msg     string
	args    []any
	cause   error
}

func IllegalInstructionf(address uint64, msg string, args ...any) *Halt {
	return &Halt{Reason: HaltIllegalInstruction, Address: address, msg: msg, args: args}
}

func Breakpointf(address uint64, msg string, args ...any) *Halt {
	return &Halt{Reason: HaltBreakpoint, Address: address, msg: msg, args: args}
}

// TrapErr wraps a failure reported by a collaborator (usually memory)
func TrapErr(address uint64, err error) *Halt {
	return &Halt{Reason: HaltTrap, Address: address, msg: "%v", args: []any{err}, cause: err}
}

func (h *Halt) Error() string {
	return fmt.Sprintf("%s at 0x%x: "+h.msg, append([]any{h.Reason, h.Address}, h.args...)...)
}

func (h *Halt) Is(target error) bool {
	switch target {
	case ErrIllegalInstruction:
		return h.Reason == HaltIllegalInstruction
	case ErrBreakpoint:
		return h.Reason == HaltBreakpoint
	case ErrTrap:
		return h.Reason == HaltTrap
	}
	return false
}

func (h *Halt) Unwrap() error {
	return h.cause
}

// ErrExit regular program termination requested by the guest
type ErrExit struct {
	Code int64
}

func (e *ErrExit) Error() string {
	return fmt.Sprintf("exit: code=%d", e.Code)
}
