//go:build goexperiment.simd && amd64 && !noasm

package pattern

import "simd/archsimd"

// The archsimd backend is written as plain functions: archsimd vector types
// cannot instantiate vectorOps.

func simdBroadcast(b byte) archsimd.Int8x16 {
	return archsimd.BroadcastUint8x16(b).AsInt8x16()
}

// simdLoadAt loads buf[off:off+16], reading windows that run past the end of
// buf from a zero padded copy.
func simdLoadAt(buf []byte, off int) archsimd.Int8x16 {
	if off+vectorSize <= len(buf) {
		return archsimd.LoadUint8x16Slice(buf[off:]).AsInt8x16()
	}
	var tail [vectorSize]byte
	copy(tail[:], buf[off:])
	return archsimd.LoadUint8x16Slice(tail[:]).AsInt8x16()
}

// simdEqualMask sets bit i iff lane i of a and b are equal (VPCMPEQB +
// VPMOVMSKB).
func simdEqualMask(a, b archsimd.Int8x16) uint16 {
	return uint16(a.Equal(b).ToBits())
}
