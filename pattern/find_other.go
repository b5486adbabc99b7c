//go:build !goexperiment.simd || !amd64 || noasm

package pattern

// Backend names the vector implementation used by Find.
func Backend() string {
	return "swar"
}

func index(haystack []byte, p *Pattern) int {
	return scan[swarVector, swarOps](swarOps{}, haystack, p)
}
