package bytealg

import (
	"encoding/binary"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func lanes(w uint64) [8]byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], w)
	return b
}

func TestBroadcast(t *testing.T) {
	for _, b := range []byte{0x00, 0x01, 0x7f, 0x80, 0xaa, 0xff} {
		for i, got := range lanes(Broadcast(b)) {
			assert.Equalf(t, b, got, "Broadcast(%#x) lane %d", b, i)
		}
	}
}

func TestEqualLanes(t *testing.T) {
	tests := []struct {
		x, y uint64
		exp  uint64
	}{
		{0, 0, ^uint64(0)},
		{0x0102030405060708, 0x0102030405060708, ^uint64(0)},
		{0x0102030405060708, 0x0002030405060700, 0x00ffffffffffff00},
		{0x8080808080808080, 0x0000000000000000, 0},
		{0x0100000000000000, 0x0000000000000000, 0x00ffffffffffffff},
		{0xff00ff00ff00ff00, 0xff01ff01ff01ff01, 0xff00ff00ff00ff00},
	}

	for _, tt := range tests {
		if got := EqualLanes(tt.x, tt.y); got != tt.exp {
			t.Errorf("EqualLanes(%#016x, %#016x) = %#016x; want %#016x", tt.x, tt.y, got, tt.exp)
		}
	}
}

func TestEqualLanesRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for n := 0; n < 10000; n++ {
		x := rng.Uint64()
		y := x
		// flip a random subset of lanes
		for i := 0; i < 8; i++ {
			if rng.Intn(2) == 0 {
				y ^= uint64(rng.Intn(255)+1) << (8 * i)
			}
		}

		got := lanes(EqualLanes(x, y))
		xl, yl := lanes(x), lanes(y)
		for i := range got {
			exp := byte(0)
			if xl[i] == yl[i] {
				exp = 0xff
			}
			if got[i] != exp {
				t.Fatalf("EqualLanes(%#016x, %#016x) lane %d = %#x; want %#x", x, y, i, got[i], exp)
			}
		}
	}
}

func TestMoveMask(t *testing.T) {
	tests := []struct {
		in  uint64
		exp uint8
	}{
		{0, 0},
		{^uint64(0), 0xff},
		{0x00000000000000ff, 0x01},
		{0xff00000000000000, 0x80},
		{0x00ff00ff00ff00ff, 0x55},
		{0x8000000000000080, 0x81},
		{0x7f7f7f7f7f7f7f7f, 0},
	}

	for _, tt := range tests {
		if got := MoveMask(tt.in); got != tt.exp {
			t.Errorf("MoveMask(%#016x) = %#02x; want %#02x", tt.in, got, tt.exp)
		}
	}

	for m := 0; m < 256; m++ {
		var w uint64
		for i := 0; i < 8; i++ {
			if m&(1<<i) != 0 {
				w |= 0xff << (8 * i)
			}
		}
		assert.Equal(t, uint8(m), MoveMask(w))
	}
}

func TestMoveMaskOfEqualLanes(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	for n := 0; n < 10000; n++ {
		x, y := rng.Uint64(), rng.Uint64()
		// copy a random subset of lanes so some compare equal
		for i := 0; i < 8; i++ {
			if rng.Intn(2) == 0 {
				lane := uint64(0xff) << (8 * i)
				y = y&^lane | x&lane
			}
		}

		xl, yl := lanes(x), lanes(y)
		var exp uint8
		for i := range xl {
			if xl[i] == yl[i] {
				exp |= 1 << i
			}
		}
		if got := MoveMask(EqualLanes(x, y)); got != exp {
			t.Fatalf("MoveMask(EqualLanes(%#016x, %#016x)) = %08b; want %08b", x, y, got, exp)
		}
	}
}
