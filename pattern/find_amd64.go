//go:build goexperiment.simd && amd64 && !noasm

package pattern

import (
	"math/bits"

	"golang.org/x/sys/cpu"
)

// archsimd 128-bit ops are VEX encoded and need AVX.
var hasAVX = cpu.X86.HasAVX

// Backend names the vector implementation used by Find.
func Backend() string {
	if hasAVX {
		return "archsimd"
	}
	return "swar"
}

func index(haystack []byte, p *Pattern) int {
	if hasAVX {
		return scanArchsimd(haystack, p)
	}
	return scan[swarVector, swarOps](swarOps{}, haystack, p)
}

// scanArchsimd is scan for the archsimd backend. Blocks are reloaded from
// p.blocks on each candidate rather than kept in a slice of vectors.
func scanArchsimd(haystack []byte, p *Pattern) int {
	n := len(p.Bytes)
	if n == 0 || len(haystack) < n {
		return -1
	}

	lead := p.LeadingIgnore
	last := len(haystack) - n
	bound := len(haystack) - max(n, vectorSize)

	anchor := simdBroadcast(p.Bytes[lead])

	cursor := 0
search:
	for cursor < bound {
		eq := simdEqualMask(anchor, simdLoadAt(haystack, cursor+lead))
		if eq == 0 {
			cursor += vectorSize - 1
			continue
		}

		cursor += bits.TrailingZeros16(eq)
		if cursor > last {
			return -1
		}

		t := 0
		for i := range p.blocks {
			blockOff := i * vectorSize
			block := simdLoadAt(p.blocks[i][:], 0)
			got := simdEqualMask(block, simdLoadAt(haystack, cursor+blockOff+1))

			var ok bool
			if t, ok = p.verifyBlock(t, blockOff, got); !ok {
				cursor++
				continue search
			}
		}
		return cursor
	}
	return p.scanTail(haystack, cursor)
}
