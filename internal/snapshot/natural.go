package snapshot

import (
	"math"
	"math/bits"
)

// appendNatural encodes x in one to nine bytes. The count of leading one bits
// in the first byte gives the number of little endian bytes that follow, the
// rest of the first byte carries the most significant part of x.
func appendNatural(b []byte, x uint64) []byte {
	var l uint8
	for l = 0; l < 8; l++ {
		if x < 1<<(7*(l+1)) {
			break
		}
	}
	if l == 8 {
		b = append(b, math.MaxUint8)
	} else {
		b = append(b, uint8(256-(1<<(8-l))+(x>>(8*l))&math.MaxUint8))
	}
	for i := range l {
		b = append(b, uint8(x>>(8*i)))
	}
	return b
}

// readNatural decodes a natural from the front of b, returning the bytes
// consumed
func readNatural(b []byte) (uint64, int, error) {
	if len(b) == 0 {
		return 0, 0, ErrTruncated
	}
	prefix := b[0]
	l := bits.LeadingZeros8(^prefix)
	if len(b) < 1+l {
		return 0, 0, ErrTruncated
	}
	var x uint64
	if l == 8 {
		for i := range 8 {
			x |= uint64(b[1+i]) << (8 * i)
		}
		return x, 9, nil
	}
	for i := range l {
		x |= uint64(b[1+i]) << (8 * i)
	}
	x |= uint64(prefix&(math.MaxUint8>>l)) << (8 * l)
	return x, 1 + l, nil
}
