package pattern

import (
	"encoding/binary"

	"github.com/mhr3/sigscan/internal/bytealg"
)

const vectorSize = 16

// vectorOps is the set of 128-bit register operations the scanner needs.
// V is an opaque register value that never outlives one comparison step.
type vectorOps[V any] interface {
	// broadcast sets all 16 lanes to b.
	broadcast(b byte) V
	// load reads p[0:16]; len(p) must be at least 16.
	load(p []byte) V
	// compareEqual sets a lane to 0xFF where a and b are equal, 0x00 otherwise.
	compareEqual(a, b V) V
	// extractMask sets bit i iff lane i of v is 0xFF.
	extractMask(v V) uint16
}

// swarVector is a 128-bit register held in two little-endian words.
type swarVector struct {
	lo, hi uint64
}

// swarOps implements vectorOps with plain integer arithmetic. It is the only
// backend on targets without a vector intrinsic package.
type swarOps struct{}

func (swarOps) broadcast(b byte) swarVector {
	w := bytealg.Broadcast(b)
	return swarVector{lo: w, hi: w}
}

func (swarOps) load(p []byte) swarVector {
	_ = p[vectorSize-1]
	return swarVector{
		lo: binary.LittleEndian.Uint64(p),
		hi: binary.LittleEndian.Uint64(p[8:]),
	}
}

func (swarOps) compareEqual(a, b swarVector) swarVector {
	return swarVector{
		lo: bytealg.EqualLanes(a.lo, b.lo),
		hi: bytealg.EqualLanes(a.hi, b.hi),
	}
}

func (swarOps) extractMask(v swarVector) uint16 {
	return uint16(bytealg.MoveMask(v.lo)) | uint16(bytealg.MoveMask(v.hi))<<8
}

// loadAt loads 16 bytes of buf starting at off. Windows that run past the end
// of buf are read from a zero padded copy, so callers may load anywhere in
// [0, len(buf)].
func loadAt[V any, O vectorOps[V]](ops O, buf []byte, off int) V {
	if off+vectorSize <= len(buf) {
		return ops.load(buf[off:])
	}
	var tail [vectorSize]byte
	copy(tail[:], buf[off:])
	return ops.load(tail[:])
}
