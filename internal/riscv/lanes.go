package riscv

// Register lane views. A register value is reinterpreted as packed 8, 16 or
// 32 bit lanes, lane 0 being the least significant.

func Lane8(v uint64, i int) uint8 {
	return uint8(v >> (8 * i))
}

func SLane8(v uint64, i int) int8 {
	return int8(v >> (8 * i))
}

func WithLane8(v uint64, i int, x uint8) uint64 {
	shift := uint(8 * i)
	return v&^(0xff<<shift) | uint64(x)<<shift
}

func Lane16(v uint64, i int) uint16 {
	return uint16(v >> (16 * i))
}

func SLane16(v uint64, i int) int16 {
	return int16(v >> (16 * i))
}

func WithLane16(v uint64, i int, x uint16) uint64 {
	shift := uint(16 * i)
	return v&^(0xffff<<shift) | uint64(x)<<shift
}

func Lane32(v uint64, i int) uint32 {
	return uint32(v >> (32 * i))
}

func SLane32(v uint64, i int) int32 {
	return int32(v >> (32 * i))
}

func WithLane32(v uint64, i int, x uint32) uint64 {
	shift := uint(32 * i)
	return v&^(0xffffffff<<shift) | uint64(x)<<shift
}

// Lanes number of lanes of the given bit width in a register of width x
func (x XLEN) Lanes(width int) int {
	return int(x) / width
}
