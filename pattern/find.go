package pattern

import (
	"math/bits"
	"unsafe"
)

// FindFirst compiles text and returns the offset of its first occurrence in
// haystack. found is false when there is no occurrence; err is non-nil only
// when text does not compile.
func FindFirst(haystack []byte, text string) (offset int, found bool, err error) {
	p, err := Compile(text)
	if err != nil {
		return 0, false, err
	}
	offset, found = p.Find(haystack)
	return offset, found, nil
}

// FindFirstPointer is FindFirst over n bytes starting at ptr, for buffers
// that do not live in Go memory (mapped images, foreign allocations).
// [ptr, ptr+n) must be readable and must not change during the call.
func FindFirstPointer(ptr unsafe.Pointer, n int, text string) (offset int, found bool, err error) {
	if ptr == nil || n <= 0 {
		return FindFirst(nil, text)
	}
	return FindFirst(unsafe.Slice((*byte)(ptr), n), text)
}

// Find returns the offset of the first occurrence of p in haystack.
func (p *Pattern) Find(haystack []byte) (int, bool) {
	idx := index(haystack, p)
	return idx, idx >= 0
}

// Index returns the offset of the first occurrence of p in haystack, or -1.
func (p *Pattern) Index(haystack []byte) int {
	return index(haystack, p)
}

// Match reports whether p occurs at haystack[off:].
func (p *Pattern) Match(haystack []byte, off int) bool {
	if off < 0 || off > len(haystack)-len(p.Bytes) {
		return false
	}
	return p.matchAt(haystack, off)
}

func (p *Pattern) matchAt(haystack []byte, off int) bool {
	h := haystack[off : off+len(p.Bytes)]
	for i, m := range p.Mask {
		if m == 1 && h[i] != p.Bytes[i] {
			return false
		}
	}
	return true
}

// scan is the vector search loop over any vectorOps backend. cursor is where
// the whole signature, leading wildcards included, would start; the anchor
// window is read at cursor+LeadingIgnore so the cursor only ever moves
// forward. scanArchsimd is the same loop written against archsimd types,
// which cannot be generic type arguments.
func scan[V any, O vectorOps[V]](ops O, haystack []byte, p *Pattern) int {
	n := len(p.Bytes)
	if n == 0 || len(haystack) < n {
		return -1
	}

	lead := p.LeadingIgnore
	last := len(haystack) - n
	bound := len(haystack) - max(n, vectorSize)

	anchor := ops.broadcast(p.Bytes[lead])
	blocks := make([]V, len(p.blocks))
	for i := range p.blocks {
		blocks[i] = ops.load(p.blocks[i][:])
	}

	cursor := 0
search:
	for cursor < bound {
		window := loadAt[V, O](ops, haystack, cursor+lead)
		eq := ops.extractMask(ops.compareEqual(anchor, window))
		if eq == 0 {
			// windows overlap by one byte
			cursor += vectorSize - 1
			continue
		}

		cursor += bits.TrailingZeros16(eq)
		if cursor > last {
			return -1
		}

		t := 0
		for i, block := range blocks {
			blockOff := i * vectorSize
			got := ops.extractMask(ops.compareEqual(block, loadAt[V, O](ops, haystack, cursor+blockOff+1)))

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

// verifyBlock checks the match table entries from t on that fall inside the
// block at blockOff. got is the block's equality mask. It returns the first
// entry past the block and whether every checked entry matched.
func (p *Pattern) verifyBlock(t, blockOff int, got uint16) (int, bool) {
	for ; t < len(p.table); t++ {
		rel := int(p.table[t]) - blockOff
		if rel >= vectorSize {
			break
		}
		if got&(1<<rel) == 0 {
			return t, false
		}
	}
	return t, true
}

// scanTail checks the starts from cursor on one by one. The vector loops hand
// over the last max(n, 16) starts, which are too close to the end for a full
// window.
func (p *Pattern) scanTail(haystack []byte, cursor int) int {
	lead := p.LeadingIgnore
	for last := len(haystack) - len(p.Bytes); cursor <= last; cursor++ {
		if haystack[cursor+lead] == p.Bytes[lead] && p.matchAt(haystack, cursor) {
			return cursor
		}
	}
	return -1
}
