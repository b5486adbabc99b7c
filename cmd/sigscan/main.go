package main

import (
	"os"

	"github.com/mhr3/sigscan/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
