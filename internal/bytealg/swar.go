// Package bytealg holds word-at-a-time (SWAR) byte helpers used where no
// vector instructions are available.
package bytealg

const (
	lo7  = 0x7f7f7f7f7f7f7f7f
	lsb  = 0x0101010101010101
	gath = 0x0102040810204080
)

// Broadcast returns a word with every byte set to b.
func Broadcast(b byte) uint64 {
	return uint64(b) * lsb
}

// EqualLanes compares x and y byte by byte. Each byte of the result is 0xFF
// where the bytes are equal and 0x00 otherwise.
func EqualLanes(x, y uint64) uint64 {
	d := x ^ y
	// high bit set iff the byte of d is zero; the low 7 bits never carry
	// across lanes.
	z := ^(((d & lo7) + lo7) | d | lo7)
	return (z >> 7) * 0xff
}

// MoveMask packs the high bit of every byte of w into an 8-bit mask, bit i
// taken from byte i (little-endian lane order). Only the high bit is read, so
// w must be an EqualLanes result (every byte 0x00 or 0xFF) for bit i to mean
// "lane i is 0xFF".
//
// Each high bit is shifted down to bit 0 of its lane, then the multiply sums
// lane i into bit 56+i so the top byte holds the whole mask.
func MoveMask(w uint64) uint8 {
	return uint8((((w >> 7) & lsb) * gath) >> 56)
}
