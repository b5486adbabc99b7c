package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sys/cpu"

	"github.com/mhr3/sigscan/pattern"
)

func newBackendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backend",
		Short: "Print the vector backend and relevant CPU features",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "backend: %s\n", pattern.Backend())
			fmt.Fprintf(out, "arch:    %s\n", runtime.GOARCH)
			switch runtime.GOARCH {
			case "amd64", "386":
				fmt.Fprintf(out, "sse2: %v avx: %v avx2: %v\n", cpu.X86.HasSSE2, cpu.X86.HasAVX, cpu.X86.HasAVX2)
			case "arm64":
				fmt.Fprintf(out, "asimd: %v\n", cpu.ARM64.HasASIMD)
			}
		},
	}
}
