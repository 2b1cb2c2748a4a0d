package snapshot

import (
	"encoding/binary"
	"errors"
	"fmt"
	"slices"

	"golang.org/x/crypto/blake2b"

	"github.com/eigerco/rvsim/internal/riscv"
)

const (
	magic   = "RVSN"
	version = 1
)

var (
	ErrBadMagic  = errors.New("not a snapshot")
	ErrVersion   = errors.New("unsupported snapshot version")
	ErrTruncated = errors.New("snapshot truncated")
	ErrMalformed = errors.New("malformed snapshot")
)

// Encode lays the snapshot out little endian:
//
//	"RVSN" version:u8 xlen:u8 fprWidth:u8 pc:u64 gpr:32*u64
//	fpr:32*fprWidth csrCount:natural (csr:u16 value:u64)*csrCount
//
// CSRs are written in ascending order so equal snapshots encode equally.
func (s *Snapshot) Encode() []byte {
	b := make([]byte, 0, len(magic)+3+8*33+32*s.FPRWidth+len(s.CSR)*10+9)
	b = append(b, magic...)
	b = append(b, version, uint8(s.XLEN), uint8(s.FPRWidth))
	b = binary.LittleEndian.AppendUint64(b, s.PC)
	for _, v := range s.GPR {
		b = binary.LittleEndian.AppendUint64(b, v)
	}
	for _, v := range s.FPR {
		if s.FPRWidth == 0 {
			break
		}
		var buf [16]byte
		binary.LittleEndian.PutUint64(buf[:8], v[0])
		binary.LittleEndian.PutUint64(buf[8:], v[1])
		b = append(b, buf[:s.FPRWidth]...)
	}
	order := s.csrOrder()
	b = appendNatural(b, uint64(len(order)))
	for _, c := range order {
		b = binary.LittleEndian.AppendUint16(b, uint16(c))
		b = binary.LittleEndian.AppendUint64(b, s.CSR[c])
	}
	return b
}

// decoder walks the encoded form, remembering the first failure
type decoder struct {
	b   []byte
	err error
}

func (d *decoder) take(n int) []byte {
	if d.err != nil {
		return nil
	}
	if len(d.b) < n {
		d.err = ErrTruncated
		return nil
	}
	out := d.b[:n]
	d.b = d.b[n:]
	return out
}

func (d *decoder) u8() uint8 {
	if b := d.take(1); b != nil {
		return b[0]
	}
	return 0
}

func (d *decoder) u16() uint16 {
	if b := d.take(2); b != nil {
		return binary.LittleEndian.Uint16(b)
	}
	return 0
}

func (d *decoder) u64() uint64 {
	if b := d.take(8); b != nil {
		return binary.LittleEndian.Uint64(b)
	}
	return 0
}

func (d *decoder) natural() uint64 {
	if d.err != nil {
		return 0
	}
	x, n, err := readNatural(d.b)
	if err != nil {
		d.err = err
		return 0
	}
	d.b = d.b[n:]
	return x
}

func Decode(b []byte) (*Snapshot, error) {
	d := &decoder{b: b}
	if m := d.take(len(magic)); d.err != nil || string(m) != magic {
		return nil, ErrBadMagic
	}
	if v := d.u8(); d.err == nil && v != version {
		return nil, fmt.Errorf("%w: %d", ErrVersion, v)
	}
	s := &Snapshot{
		XLEN:     riscv.XLEN(d.u8()),
		FPRWidth: int(d.u8()),
		CSR:      make(map[riscv.CSR]uint64),
	}
	if d.err == nil && s.XLEN != riscv.XLEN32 && s.XLEN != riscv.XLEN64 {
		return nil, fmt.Errorf("%w: xlen %d", ErrMalformed, s.XLEN)
	}
	if d.err == nil && !slices.Contains([]int{0, 4, 8, 16}, s.FPRWidth) {
		return nil, fmt.Errorf("%w: float register width %d", ErrMalformed, s.FPRWidth)
	}
	s.PC = d.u64()
	for r := range s.GPR {
		s.GPR[r] = d.u64()
	}
	for r := range s.FPR {
		if s.FPRWidth == 0 {
			break
		}
		var buf [16]byte
		copy(buf[:], d.take(s.FPRWidth))
		s.FPR[r] = [2]uint64{binary.LittleEndian.Uint64(buf[:8]), binary.LittleEndian.Uint64(buf[8:])}
	}
	n := d.natural()
	if d.err == nil && n > uint64(len(d.b))/10 {
		return nil, ErrTruncated
	}
	for range n {
		c := riscv.CSR(d.u16())
		v := d.u64()
		if d.err != nil {
			break
		}
		if _, dup := s.CSR[c]; dup {
			return nil, fmt.Errorf("%w: %s repeated", ErrMalformed, c)
		}
		s.CSR[c] = v
	}
	if d.err != nil {
		return nil, d.err
	}
	if len(d.b) != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrMalformed, len(d.b))
	}
	return s, nil
}

// Digest the blake2b-256 hash of the encoded snapshot
func (s *Snapshot) Digest() [32]byte {
	return blake2b.Sum256(s.Encode())
}
