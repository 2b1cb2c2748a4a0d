package interpreter

import (
	"sync"

	"github.com/eigerco/rvsim/internal/riscv"
)

// index the opcode table filtered to one XLEN. heads holds, per hash
// bucket, the position of the first entry hashing there and chain links
// each entry to the next one of the same bucket, in table order.
type index struct {
	table []*riscv.Opcode
	heads [riscv.HashBuckets]int
	chain []int
}

func newIndex(xlen riscv.XLEN) *index {
	x := &index{}
	for k := range riscv.Opcodes {
		op := &riscv.Opcodes[k]
		if op.XLEN != 0 && op.XLEN != xlen {
			continue
		}
		x.table = append(x.table, op)
	}
	x.chain = make([]int, len(x.table))
	tails := [riscv.HashBuckets]int{}
	for b := range x.heads {
		x.heads[b] = -1
		tails[b] = -1
	}
	for k, op := range x.table {
		b := riscv.Hash(op.Match)
		x.chain[k] = -1
		if x.heads[b] < 0 {
			x.heads[b] = k
		} else {
			x.chain[tails[b]] = k
		}
		tails[b] = k
	}
	return x
}

// lookup the first entry accepting the word, nil when none does
func (x *index) lookup(insn uint32) *riscv.Opcode {
	for k := x.heads[riscv.Hash(insn)]; k >= 0; k = x.chain[k] {
		if x.table[k].Matches(insn) {
			return x.table[k]
		}
	}
	return nil
}

var (
	indexMu sync.Mutex
	indexes = map[riscv.XLEN]*index{}
)

// indexFor builds the index for a width once; the result is immutable and
// shared by every hart of that width
func indexFor(xlen riscv.XLEN) *index {
	indexMu.Lock()
	defer indexMu.Unlock()
	if x, ok := indexes[xlen]; ok {
		return x
	}
	x := newIndex(xlen)
	indexes[xlen] = x
	return x
}
