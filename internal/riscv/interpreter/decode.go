package interpreter

import (
	"github.com/eigerco/rvsim/internal/riscv"
)

// instr the decoded instruction handed to a handler
type instr struct {
	word uint32
	pc   uint64
	op   *riscv.Opcode
	// ex9 marks a re-dispatch from exec.it
	ex9 bool
	// next the fall-through pc
	next uint64
}

// handler executes one instruction and returns the next pc
type handler func(i *Instance, in *instr) (uint64, error)

// executor the handlers of one extension keyed by instruction id
type executor struct {
	ext      riscv.Extension
	handlers [riscv.NumInsns]handler
}

var executors = map[riscv.Extension]*executor{}

// register adds handlers to an extension's executor; executors are only
// populated from init functions
func register(ext riscv.Extension, handlers map[riscv.InsnID]handler) {
	e, ok := executors[ext]
	if !ok {
		e = &executor{ext: ext}
		executors[ext] = e
	}
	for id, h := range handlers {
		e.handlers[id] = h
	}
}

// Decode finds the opcode descriptor of a raw instruction word
func (i *Instance) Decode(insn uint32) (*riscv.Opcode, bool) {
	op := i.index.lookup(insn)
	return op, op != nil
}

// execute decodes and runs one instruction at pc. ex9 marks the nested
// dispatch of exec.it whose fall-through is shortened by two bytes to
// account for the compressed exec.it itself.
func (i *Instance) execute(insn uint32, pc uint64, ex9 bool) (uint64, error) {
	op := i.index.lookup(insn)
	if op == nil {
		return 0, riscv.IllegalInstructionf(pc, "no opcode matches 0x%08x", insn)
	}
	e, ok := executors[op.Extension()]
	if !ok {
		return 0, riscv.IllegalInstructionf(pc, "%s: no executor for extension %s", op.Name, op.Extension())
	}
	h := e.handlers[op.ID]
	if h == nil {
		return 0, riscv.IllegalInstructionf(pc, "%s: not handled by the %s executor", op.Name, e.ext)
	}
	size := uint64(4)
	if op.Compressed() {
		size = 2
	}
	next := pc + size
	if ex9 {
		next -= 2
	}
	in := &instr{word: insn, pc: pc, op: op, ex9: ex9, next: i.addr(next)}
	if ev := i.log.Debug(); ev.Enabled() {
		ev.Msgf("%d: 0x%x %s 0x%08x", i.instret, pc, op.Name, insn)
	}
	return h(i, in)
}
