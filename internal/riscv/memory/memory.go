// Package memory implements a sparse, page based flat memory for harts.
// Pages are allocated on the first write; reading an untouched page yields
// zeros.
package memory

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/eigerco/rvsim/internal/riscv"
	"github.com/eigerco/rvsim/internal/safemath"
)

const (
	PageSize  = 4096
	PageShift = 12

	// DefaultMaxPages bounds allocations to 256 MiB
	DefaultMaxPages = 65536
)

var (
	ErrPageLimit = errors.New("page allocation limit exceeded")
	ErrReadOnly  = errors.New("write to read-only memory")
	ErrNoExecute = errors.New("instruction fetch outside executable memory")
)

type region struct {
	start, end uint64 // [start, end)
}

// span the region [start, start+size), cut short at the top of the address
// space
func span(start, size uint64) region {
	end, ok := safemath.Add64(start, size)
	if !ok {
		end = math.MaxUint64
	}
	return region{start, end}
}

func (r region) contains(address uint64, size int) bool {
	end, ok := safemath.Add64(address, uint64(size))
	return ok && address >= r.start && end <= r.end
}

func (r region) overlaps(address uint64, size int) bool {
	end, ok := safemath.Add64(address, uint64(size))
	if !ok {
		// the access wraps around to address zero
		return address < r.end || end > r.start
	}
	return address < r.end && end > r.start
}

// Memory sparse paged memory, safe for concurrent use by several harts
type Memory struct {
	mu       sync.RWMutex
	pages    map[uint64][]byte
	maxPages int
	readOnly []region
	exec     []region
}

type Option func(*Memory)

// WithMaxPages overrides DefaultMaxPages
func WithMaxPages(n int) Option {
	return func(m *Memory) {
		m.maxPages = n
	}
}

// WithReadOnly marks [start, start+size) as not writable by guests
func WithReadOnly(start, size uint64) Option {
	return func(m *Memory) {
		m.readOnly = append(m.readOnly, span(start, size))
	}
}

// WithExecutable restricts instruction fetches to the given ranges. Without
// it every address is executable.
func WithExecutable(start, size uint64) Option {
	return func(m *Memory) {
		m.exec = append(m.exec, span(start, size))
	}
}

func New(opts ...Option) *Memory {
	m := &Memory{
		pages:    make(map[uint64][]byte),
		maxPages: DefaultMaxPages,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Load copies an image into memory ignoring the read-only protection
func (m *Memory) Load(address uint64, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.write(address, data)
}

// Read implements riscv.Memory
func (m *Memory) Read(access riscv.Access, address uint64, data []byte) error {
	if access == riscv.AccessFetch && len(m.exec) > 0 && !m.executable(address, len(data)) {
		return fmt.Errorf("%w: 0x%x", ErrNoExecute, address)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for n := 0; n < len(data); {
		addr := address + uint64(n)
		off := addr & (PageSize - 1)
		chunk := min(len(data)-n, int(PageSize-off))
		if page, ok := m.pages[addr>>PageShift]; ok {
			copy(data[n:n+chunk], page[off:])
		} else {
			clear(data[n : n+chunk])
		}
		n += chunk
	}
	return nil
}

// Write implements riscv.Memory
func (m *Memory) Write(address uint64, data []byte) error {
	for _, r := range m.readOnly {
		if r.overlaps(address, len(data)) {
			return fmt.Errorf("%w: 0x%x", ErrReadOnly, address)
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.write(address, data)
}

func (m *Memory) write(address uint64, data []byte) error {
	for n := 0; n < len(data); {
		addr := address + uint64(n)
		off := addr & (PageSize - 1)
		chunk := min(len(data)-n, int(PageSize-off))
		page, err := m.page(addr >> PageShift)
		if err != nil {
			return err
		}
		copy(page[off:], data[n:n+chunk])
		n += chunk
	}
	return nil
}

func (m *Memory) page(index uint64) ([]byte, error) {
	if page, ok := m.pages[index]; ok {
		return page, nil
	}
	if len(m.pages) >= m.maxPages {
		return nil, ErrPageLimit
	}
	page := make([]byte, PageSize)
	m.pages[index] = page
	return page, nil
}

func (m *Memory) executable(address uint64, size int) bool {
	for _, r := range m.exec {
		if r.contains(address, size) {
			return true
		}
	}
	return false
}

// Pages the indices of the allocated pages in ascending order
func (m *Memory) Pages() []uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	indices := make([]uint64, 0, len(m.pages))
	for i := range m.pages {
		indices = append(indices, i)
	}
	sort.Slice(indices, func(a, b int) bool { return indices[a] < indices[b] })
	return indices
}

var _ riscv.Memory = (*Memory)(nil)
