package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mhr3/sigscan/image"
	"github.com/mhr3/sigscan/internal/logger"
	"github.com/mhr3/sigscan/pattern"
)

func newSigCmd() *cobra.Command {
	var (
		offset   int
		length   int
		wildcard []int
		address  bool
	)

	cmd := &cobra.Command{
		Use:   "sig <file>",
		Short: "Cut a signature out of a binary",
		Long: `sig prints the pattern text for length bytes at offset in the text of file.
Positions listed with --wildcard (relative to the start of the signature)
are replaced by ??. The command also reports whether the signature is
unique, i.e. whether its first match is the requested offset.`,
		Example: `  sigscan sig ./game.exe --offset 0x1a2b0 --length 12 --wildcard 3,4,5,6`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := image.Open(args[0])
			if err != nil {
				return err
			}

			off := offset
			if address {
				o, ok := img.Offset(uint64(offset))
				if !ok {
					return fmt.Errorf("address %#x outside text [%#x, %#x)", offset, img.Base, img.Address(img.Len()))
				}
				off = o
			}
			if off < 0 || length <= 0 || off+length > img.Len() {
				return fmt.Errorf("range [%#x, %#x) outside text of %d bytes", off, off+length, img.Len())
			}

			wild := make([]bool, length)
			for _, i := range wildcard {
				if i < 0 || i >= length {
					return fmt.Errorf("wildcard position %d outside signature of %d bytes", i, length)
				}
				wild[i] = true
			}

			p, err := pattern.FromBytes(img.Text[off:off+length], wild)
			if err != nil {
				return err
			}

			first := p.Index(img.Text)
			fmt.Fprintln(cmd.OutOrStdout(), p)
			if first != off {
				logger.Warn("signature is not unique", "first", fmt.Sprintf("%#x", first), "offset", fmt.Sprintf("%#x", off))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&offset, "offset", 0, "text offset of the signature")
	cmd.Flags().IntVar(&length, "length", 16, "signature length in bytes")
	cmd.Flags().IntSliceVar(&wildcard, "wildcard", nil, "positions to replace with ??")
	cmd.Flags().BoolVar(&address, "address", false, "interpret --offset as a virtual address")
	return cmd
}
