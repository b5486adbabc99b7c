package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mhr3/sigscan/image"
	"github.com/mhr3/sigscan/internal/logger"
	"github.com/mhr3/sigscan/resolve"
)

type resolvedJSON struct {
	Name    string `json:"name"`
	Pattern string `json:"pattern"`
	Offset  int    `json:"offset,omitempty"`
	Address uint64 `json:"address,omitempty"`
	Error   string `json:"error,omitempty"`
}

func newResolveCmd(v *viper.Viper) *cobra.Command {
	var (
		sigFile string
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "resolve <file>",
		Short: "Resolve a YAML signature set against a binary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sigs, err := resolve.LoadSignatureFile(sigFile)
			if err != nil {
				return err
			}
			img, err := image.Open(args[0])
			if err != nil {
				return err
			}
			logger.Info("resolving signatures", "path", args[0], "count", len(sigs), "format", img.Format)

			r := resolve.New(img, resolve.WithLogger(logger.With("image", args[0])), resolve.WithConcurrency(v.GetInt("concurrency")))
			results, err := r.ResolveAll(cmd.Context(), sigs)

			out := cmd.OutOrStdout()
			if asJSON {
				rows := make([]resolvedJSON, len(results))
				for i, res := range results {
					rows[i] = resolvedJSON{
						Name:    res.Signature.Name,
						Pattern: res.Signature.Pattern,
						Offset:  res.Offset,
						Address: res.Address,
					}
					if res.Err != nil {
						rows[i].Error = res.Err.Error()
					}
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if jerr := enc.Encode(rows); jerr != nil {
					return jerr
				}
			} else {
				tw := tabwriter.NewWriter(out, 0, 8, 2, ' ', 0)
				for _, res := range results {
					if res.Err != nil {
						fmt.Fprintf(tw, "%s\t-\t-\t%v\n", res.Signature.Name, res.Err)
						continue
					}
					fmt.Fprintf(tw, "%s\t%#x\t%#x\t\n", res.Signature.Name, res.Offset, res.Address)
				}
				if ferr := tw.Flush(); ferr != nil {
					return ferr
				}
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&sigFile, "signatures", "s", "", "YAML signature file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print results as JSON")
	cobra.CheckErr(cmd.MarkFlagRequired("signatures"))
	return cmd
}

func isNotFound(err error) bool {
	return errors.Is(err, resolve.ErrNotFound)
}
