// Package pattern finds byte signatures with wildcard positions inside
// read-only buffers such as executable text sections.
//
// A signature is written as space separated tokens, each a two digit hex byte
// (optionally prefixed with 0x) or the wildcard "??":
//
//	48 8B 05 ?? ?? ?? ?? 48 85 C0
//
// The first concrete byte is the anchor. Candidates for the anchor are found
// 16 bytes at a time with vector compares, then the remaining concrete bytes
// are verified block by block.
package pattern

import (
	"errors"
	"fmt"
	"strings"

	"github.com/segmentio/asm/ascii"
)

const wildcardToken = "??"

// MaxLen is the longest signature accepted, in bytes.
const MaxLen = 1 << 16

var (
	ErrEmptyPattern   = errors.New("empty pattern")
	ErrInvalidToken   = errors.New("invalid token")
	ErrNoConcreteByte = errors.New("pattern has no concrete byte")
	ErrNotASCII       = errors.New("pattern text is not ASCII")
	ErrTooLong        = fmt.Errorf("pattern longer than %d bytes", MaxLen)
)

// ParseError describes a signature that could not be compiled.
type ParseError struct {
	Pattern string
	Token   string // offending token, empty for whole-pattern errors
	Index   int    // token index, -1 for whole-pattern errors
	Err     error
}

func (e *ParseError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("pattern %q: %v", e.Pattern, e.Err)
	}
	return fmt.Sprintf("pattern %q: token %d %q: %v", e.Pattern, e.Index, e.Token, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Pattern is a compiled signature. It is immutable after construction and
// safe for concurrent use.
type Pattern struct {
	// Bytes holds the signature bytes; wildcard positions are 0.
	Bytes []byte
	// Mask is 1 where Bytes must match and 0 where the byte is ignored.
	Mask []byte
	// LeadingIgnore is the number of wildcards before the anchor.
	LeadingIgnore int

	table  []uint16
	blocks [][vectorSize]byte
}

// Compile parses a signature. No partial Pattern is returned on error.
func Compile(text string) (*Pattern, error) {
	if !ascii.ValidString(text) {
		return nil, &ParseError{Pattern: text, Index: -1, Err: ErrNotASCII}
	}

	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return nil, &ParseError{Pattern: text, Index: -1, Err: ErrEmptyPattern}
	}
	if len(tokens) > MaxLen {
		return nil, &ParseError{Pattern: text, Index: -1, Err: ErrTooLong}
	}

	p := &Pattern{
		Bytes: make([]byte, 0, len(tokens)),
		Mask:  make([]byte, 0, len(tokens)),
	}

	seenConcrete := false
	for i, tok := range tokens {
		if tok == wildcardToken {
			p.Bytes = append(p.Bytes, 0)
			p.Mask = append(p.Mask, 0)
			if !seenConcrete {
				p.LeadingIgnore++
			}
			continue
		}

		b, ok := parseHexByte(tok)
		if !ok {
			return nil, &ParseError{Pattern: text, Token: tok, Index: i, Err: ErrInvalidToken}
		}
		p.Bytes = append(p.Bytes, b)
		p.Mask = append(p.Mask, 1)
		seenConcrete = true
	}

	if !seenConcrete {
		return nil, &ParseError{Pattern: text, Index: -1, Err: ErrNoConcreteByte}
	}

	p.prepare()
	return p, nil
}

// MustCompile is like Compile but panics if the signature cannot be parsed.
// It simplifies initialization of package level signatures.
func MustCompile(text string) *Pattern {
	p, err := Compile(text)
	if err != nil {
		panic(err)
	}
	return p
}

// FromBytes builds a Pattern from raw bytes. Positions i with wildcard[i]
// set are ignored; wildcard may be shorter than b.
func FromBytes(b []byte, wildcard []bool) (*Pattern, error) {
	if len(b) == 0 {
		return nil, &ParseError{Index: -1, Err: ErrEmptyPattern}
	}
	if len(b) > MaxLen {
		return nil, &ParseError{Index: -1, Err: ErrTooLong}
	}
	if len(wildcard) > len(b) {
		return nil, &ParseError{Index: -1, Err: fmt.Errorf("%d wildcard flags for %d bytes", len(wildcard), len(b))}
	}

	p := &Pattern{
		Bytes: make([]byte, len(b)),
		Mask:  make([]byte, len(b)),
	}

	seenConcrete := false
	for i, c := range b {
		if i < len(wildcard) && wildcard[i] {
			if !seenConcrete {
				p.LeadingIgnore++
			}
			continue
		}
		p.Bytes[i] = c
		p.Mask[i] = 1
		seenConcrete = true
	}

	if !seenConcrete {
		return nil, &ParseError{Pattern: p.String(), Index: -1, Err: ErrNoConcreteByte}
	}

	p.prepare()
	return p, nil
}

func (p *Pattern) prepare() {
	p.table = buildMatchTable(p)
	p.blocks = buildBlocks(p)
}

// Len returns the signature length in bytes, wildcards included.
func (p *Pattern) Len() int { return len(p.Bytes) }

// Anchor returns the first concrete byte.
func (p *Pattern) Anchor() byte { return p.Bytes[p.LeadingIgnore] }

// String returns the canonical text form, which Compile accepts.
func (p *Pattern) String() string {
	const hexDigits = "0123456789ABCDEF"

	var sb strings.Builder
	sb.Grow(len(p.Bytes) * 3)
	for i, b := range p.Bytes {
		if i > 0 {
			sb.WriteByte(' ')
		}
		if p.Mask[i] == 0 {
			sb.WriteString(wildcardToken)
			continue
		}
		sb.WriteByte(hexDigits[b>>4])
		sb.WriteByte(hexDigits[b&0x0f])
	}
	return sb.String()
}

func parseHexByte(tok string) (byte, bool) {
	if len(tok) == 4 && tok[0] == '0' && (tok[1] == 'x' || tok[1] == 'X') {
		tok = tok[2:]
	}
	if len(tok) != 2 {
		return 0, false
	}
	hi, ok1 := fromHexChar(tok[0])
	lo, ok2 := fromHexChar(tok[1])
	return hi<<4 | lo, ok1 && ok2
}

func fromHexChar(c byte) (byte, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
