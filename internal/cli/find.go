package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mhr3/sigscan/image"
	"github.com/mhr3/sigscan/internal/logger"
	"github.com/mhr3/sigscan/resolve"
)

func newFindCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "find <file> <pattern>",
		Short: "Print the offset and address of the first match of a pattern",
		Example: `  sigscan find ./game.exe "48 8B 05 ?? ?? ?? ?? 48 85 C0"
  sigscan find dump.bin.lz4 "E8 ?? ?? ?? ?? 90"`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := image.Open(args[0])
			if err != nil {
				return err
			}
			logger.Info("loaded image", "path", args[0], "format", img.Format, "base", fmt.Sprintf("%#x", img.Base), "size", img.Len())

			r := resolve.New(img, resolve.WithLogger(logger.With("image", args[0])), resolve.WithConcurrency(v.GetInt("concurrency")))
			off, err := r.Offset(cmd.Context(), args[1])
			if err != nil {
				if isNotFound(err) {
					fmt.Fprintln(cmd.OutOrStdout(), "not found")
					return errNotFound
				}
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "offset %#x address %#x\n", off, img.Address(off))
			return nil
		},
	}
}
