package pattern

type testBackend struct {
	name    string
	index   func(haystack []byte, p *Pattern) int
	primops func() primitiveSet
}

// primitiveSet exposes one backend's primitives over plain byte arrays so
// tests can compare backends lane for lane.
type primitiveSet struct {
	broadcastMask func(b byte, data [16]byte) uint16
	equalMask     func(a, b [16]byte) uint16
}

func primitivesOf[V any, O vectorOps[V]](ops O) primitiveSet {
	return primitiveSet{
		broadcastMask: func(b byte, data [16]byte) uint16 {
			return ops.extractMask(ops.compareEqual(ops.broadcast(b), ops.load(data[:])))
		},
		equalMask: func(a, b [16]byte) uint16 {
			return ops.extractMask(ops.compareEqual(ops.load(a[:]), ops.load(b[:])))
		},
	}
}

var testBackends = []testBackend{
	{
		name: "swar",
		index: func(haystack []byte, p *Pattern) int {
			return scan[swarVector, swarOps](swarOps{}, haystack, p)
		},
		primops: func() primitiveSet { return primitivesOf[swarVector, swarOps](swarOps{}) },
	},
}
