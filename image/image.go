// Package image loads the executable text of a binary, or a raw memory dump,
// into a buffer suitable for signature scanning.
package image

import (
	"bytes"
	"debug/elf"
	"debug/macho"
	"debug/pe"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pierrec/lz4/v4"
)

// Slack is the number of zeroed bytes kept addressable past the end of
// Image.Text, so consumers that scan through raw pointers may over-read a
// 16 byte window.
const Slack = 15

var ErrNoText = errors.New("no executable text section")

type Format int

const (
	FormatRaw Format = iota
	FormatELF
	FormatPE
	FormatMachO
)

func (f Format) String() string {
	switch f {
	case FormatELF:
		return "elf"
	case FormatPE:
		return "pe"
	case FormatMachO:
		return "macho"
	}
	return "raw"
}

// Image is a loaded text section.
type Image struct {
	Format Format
	// Base is the virtual address of Text[0].
	Base uint64
	// Text has at least Slack bytes of zeroed capacity past len(Text).
	Text []byte
}

// FromBytes copies b into a new Image based at base.
func FromBytes(base uint64, b []byte) *Image {
	return &Image{Format: FormatRaw, Base: base, Text: padded(b)}
}

// Open reads the file at path. Names ending in ".lz4" are decompressed
// first.
func Open(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".lz4") {
		r = lz4.NewReader(f)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	img, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

// Parse extracts the text section from an ELF, PE or Mach-O object. Any
// other input is returned whole as a raw image based at 0.
func Parse(data []byte) (*Image, error) {
	switch detect(data) {
	case FormatELF:
		return parseELF(data)
	case FormatPE:
		return parsePE(data)
	case FormatMachO:
		return parseMachO(data)
	}
	return FromBytes(0, data), nil
}

func detect(data []byte) Format {
	if len(data) < 4 {
		return FormatRaw
	}
	if bytes.HasPrefix(data, []byte(elf.ELFMAG)) {
		return FormatELF
	}
	if data[0] == 'M' && data[1] == 'Z' {
		return FormatPE
	}
	switch binary.LittleEndian.Uint32(data) {
	case macho.Magic32, macho.Magic64:
		return FormatMachO
	}
	switch binary.BigEndian.Uint32(data) {
	case macho.Magic32, macho.Magic64:
		return FormatMachO
	}
	return FormatRaw
}

func parseELF(data []byte) (*Image, error) {
	f, err := elf.NewFile(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("elf: %w", err)
	}
	defer f.Close()

	s := f.Section(".text")
	if s == nil || s.Type == elf.SHT_NOBITS {
		return nil, fmt.Errorf("elf: %w", ErrNoText)
	}
	text, err := s.Data()
	if err != nil {
		return nil, fmt.Errorf("elf: .text: %w", err)
	}
	return &Image{Format: FormatELF, Base: s.Addr, Text: padded(text)}, nil
}

func parsePE(data []byte) (*Image, error) {
	f, err := pe.NewFile(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("pe: %w", err)
	}
	defer f.Close()

	s := f.Section(".text")
	if s == nil {
		return nil, fmt.Errorf("pe: %w", ErrNoText)
	}
	text, err := s.Data()
	if err != nil {
		return nil, fmt.Errorf("pe: .text: %w", err)
	}
	if s.VirtualSize != 0 && uint32(len(text)) > s.VirtualSize {
		// raw data is file aligned; drop the trailing padding
		text = text[:s.VirtualSize]
	}

	var imageBase uint64
	switch oh := f.OptionalHeader.(type) {
	case *pe.OptionalHeader32:
		imageBase = uint64(oh.ImageBase)
	case *pe.OptionalHeader64:
		imageBase = oh.ImageBase
	}
	return &Image{Format: FormatPE, Base: imageBase + uint64(s.VirtualAddress), Text: padded(text)}, nil
}

func parseMachO(data []byte) (*Image, error) {
	f, err := macho.NewFile(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("macho: %w", err)
	}
	defer f.Close()

	s := f.Section("__text")
	if s == nil {
		return nil, fmt.Errorf("macho: %w", ErrNoText)
	}
	text, err := s.Data()
	if err != nil {
		return nil, fmt.Errorf("macho: __text: %w", err)
	}
	return &Image{Format: FormatMachO, Base: s.Addr, Text: padded(text)}, nil
}

func padded(b []byte) []byte {
	buf := make([]byte, len(b), len(b)+Slack)
	copy(buf, b)
	return buf
}

// Len returns the text length.
func (img *Image) Len() int { return len(img.Text) }

// Address converts a text offset into a virtual address.
func (img *Image) Address(offset int) uint64 {
	return img.Base + uint64(offset)
}

// Offset converts a virtual address into a text offset. ok is false when
// addr is outside the text.
func (img *Image) Offset(addr uint64) (off int, ok bool) {
	if addr < img.Base || addr-img.Base >= uint64(len(img.Text)) {
		return 0, false
	}
	return int(addr - img.Base), true
}
