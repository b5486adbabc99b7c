package pattern

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile(t *testing.T) {
	tests := []struct {
		in    string
		bytes []byte
		mask  []byte
		lead  int
	}{
		{"?? AA BB", []byte{0, 0xaa, 0xbb}, []byte{0, 1, 1}, 1},
		{"11 ?? 33", []byte{0x11, 0, 0x33}, []byte{1, 0, 1}, 0},
		{"0x11 0X22 ff", []byte{0x11, 0x22, 0xff}, []byte{1, 1, 1}, 0},
		{"?? ?? 90 ?? 90", []byte{0, 0, 0x90, 0, 0x90}, []byte{0, 0, 1, 0, 1}, 2},
		{"aB", []byte{0xab}, []byte{1}, 0},
		{"  48 8b\t05 ?? ", []byte{0x48, 0x8b, 0x05, 0}, []byte{1, 1, 1, 0}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			p, err := Compile(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.bytes, p.Bytes)
			assert.Equal(t, tt.mask, p.Mask)
			assert.Equal(t, tt.lead, p.LeadingIgnore)
			assert.Equal(t, len(tt.bytes), p.Len())
			assert.Equal(t, tt.bytes[tt.lead], p.Anchor())
		})
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		in    string
		err   error
		token string
		index int
	}{
		{"ZZ", ErrInvalidToken, "ZZ", 0},
		{"11 2", ErrInvalidToken, "2", 1},
		{"11 223", ErrInvalidToken, "223", 1},
		{"0x1", ErrInvalidToken, "0x1", 0},
		{"0x0x11", ErrInvalidToken, "0x0x11", 0},
		{"11 ? 22", ErrInvalidToken, "?", 1},
		{"11 *", ErrInvalidToken, "*", 1},
		{"", ErrEmptyPattern, "", -1},
		{"   ", ErrEmptyPattern, "", -1},
		{"?? ??", ErrNoConcreteByte, "", -1},
		{"11 Ж", ErrNotASCII, "", -1},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			p, err := Compile(tt.in)
			assert.Nil(t, p)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.err)

			var perr *ParseError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, tt.in, perr.Pattern)
			assert.Equal(t, tt.token, perr.Token)
			assert.Equal(t, tt.index, perr.Index)
		})
	}
}

func TestCompileTooLong(t *testing.T) {
	text := strings.TrimSpace(strings.Repeat("90 ", MaxLen+1))
	_, err := Compile(text)
	assert.ErrorIs(t, err, ErrTooLong)

	text = strings.TrimSpace(strings.Repeat("90 ", MaxLen))
	p, err := Compile(text)
	require.NoError(t, err)
	assert.Equal(t, MaxLen, p.Len())
}

func TestMustCompile(t *testing.T) {
	assert.NotPanics(t, func() { MustCompile("E8 ?? ?? ?? ??") })
	assert.Panics(t, func() { MustCompile("E8 ?? ?? ?? G0") })
}

func TestString(t *testing.T) {
	tests := []struct {
		in, exp string
	}{
		{"?? aa bb", "?? AA BB"},
		{"0x11 ?? 0x33", "11 ?? 33"},
		{"48   8b", "48 8B"},
		{"00", "00"},
	}

	for _, tt := range tests {
		p := MustCompile(tt.in)
		if got := p.String(); got != tt.exp {
			t.Errorf("Compile(%q).String() = %q; want %q", tt.in, got, tt.exp)
		}

		again, err := Compile(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, again)
	}
}

func TestFromBytes(t *testing.T) {
	p, err := FromBytes([]byte{0xde, 0xad, 0xbe, 0xef}, []bool{true, false, true})
	require.NoError(t, err)
	assert.Equal(t, "?? AD ?? EF", p.String())
	assert.Equal(t, 1, p.LeadingIgnore)
	assert.Equal(t, MustCompile("?? AD ?? EF"), p)

	p, err = FromBytes([]byte{0x01, 0x02}, nil)
	require.NoError(t, err)
	assert.Equal(t, "01 02", p.String())

	_, err = FromBytes(nil, nil)
	assert.ErrorIs(t, err, ErrEmptyPattern)

	_, err = FromBytes([]byte{1, 2}, []bool{true, true})
	assert.ErrorIs(t, err, ErrNoConcreteByte)

	_, err = FromBytes([]byte{1}, []bool{false, false})
	assert.Error(t, err)
}
