package pattern

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVectorPrimitives(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for _, be := range testBackends {
		t.Run(be.name, func(t *testing.T) {
			ops := be.primops()

			var data [16]byte
			for i := range data {
				data[i] = byte(i)
			}
			assert.Equal(t, uint16(1<<5), ops.broadcastMask(5, data))
			assert.Equal(t, uint16(0), ops.broadcastMask(0x80, data))

			data[0], data[15] = 0xff, 0xff
			assert.Equal(t, uint16(1|1<<15), ops.broadcastMask(0xff, data))

			for n := 0; n < 2000; n++ {
				var a, b [16]byte
				rng.Read(a[:])
				b = a
				exp := uint16(0xffff)
				for i := range b {
					if rng.Intn(3) == 0 {
						b[i] ^= byte(rng.Intn(255) + 1)
						exp &^= 1 << i
					}
				}
				if got := ops.equalMask(a, b); got != exp {
					t.Fatalf("equalMask(%x, %x) = %016b; want %016b", a, b, got, exp)
				}
			}
		})
	}
}

func TestLoadAtPadsTail(t *testing.T) {
	buf := []byte{1, 2, 3, 4, 5}
	ops := swarOps{}

	v := loadAt[swarVector](ops, buf, 2)
	assert.Equal(t, uint16(0xfffd), ops.extractMask(ops.compareEqual(v, ops.load([]byte{3, 0, 5, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}))))
	assert.Equal(t, uint16(0xfff8), ops.extractMask(ops.compareEqual(v, ops.broadcast(0))))

	v = loadAt[swarVector](ops, buf, len(buf))
	assert.Equal(t, uint16(0xffff), ops.extractMask(ops.compareEqual(v, ops.broadcast(0))))
}

func TestBackendsAgree(t *testing.T) {
	if len(testBackends) < 2 {
		t.Skip("only one vector backend on this target")
	}
	rng := rand.New(rand.NewSource(11))
	ref := testBackends[0].primops()

	for _, be := range testBackends[1:] {
		ops := be.primops()
		for n := 0; n < 5000; n++ {
			var a, b [16]byte
			rng.Read(a[:])
			rng.Read(b[:])
			for i := range b {
				if rng.Intn(2) == 0 {
					b[i] = a[i]
				}
			}
			assert.Equal(t, ref.equalMask(a, b), ops.equalMask(a, b), "%s equalMask(%x, %x)", be.name, a, b)
			assert.Equal(t, ref.broadcastMask(a[0], b), ops.broadcastMask(a[0], b), "%s broadcastMask(%#x, %x)", be.name, a[0], b)
		}
	}
}
