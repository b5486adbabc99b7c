// Package cli implements the sigscan command line.
package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mhr3/sigscan/internal/logger"
)

// errNotFound makes the process exit non-zero without an error message.
var errNotFound = errors.New("not found")

// NewRootCmd builds the command tree. Each call returns an independent tree
// with its own viper instance.
func NewRootCmd() *cobra.Command {
	v := viper.New()
	var cfgFile string

	root := &cobra.Command{
		Use:           "sigscan",
		Short:         "sigscan finds byte signatures in executables",
		Long:          `sigscan locates byte signatures with wildcards ("48 8B 05 ?? ?? ?? ??") in the text section of ELF, PE and Mach-O files or in raw memory dumps.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initConfig(v, cfgFile); err != nil {
				return err
			}
			err := logger.Configure(logger.Options{
				Level:  v.GetString("log-level"),
				Format: v.GetString("log-format"),
				Writer: cmd.ErrOrStderr(),
			})
			if err != nil {
				return err
			}
			if f := v.ConfigFileUsed(); f != "" {
				logger.Debug("using config file", "path", f)
			}
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.sigscan.yaml)")
	pf.String("log-level", "warn", "log level: debug, info, warn or error")
	pf.String("log-format", "text", "log format: text or json")
	pf.Int("concurrency", 4, "signatures resolved in parallel")
	cobra.CheckErr(v.BindPFlags(pf))

	root.AddCommand(
		newFindCmd(v),
		newResolveCmd(v),
		newSigCmd(),
		newBackendCmd(),
	)
	return root
}

func initConfig(v *viper.Viper, cfgFile string) error {
	v.SetEnvPrefix("SIGSCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil
		}
		v.AddConfigPath(home)
		v.SetConfigType("yaml")
		v.SetConfigName(".sigscan")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Execute runs the sigscan command with os.Args.
func Execute() error {
	root := NewRootCmd()
	err := root.Execute()
	if err != nil && !errors.Is(err, errNotFound) {
		fmt.Fprintln(root.ErrOrStderr(), "Error:", err)
	}
	return err
}
