// Package main provides the inteinscan command-line tool.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "inteinscan",
		Short: "Identify candidate inteins in protein sequences",
		Long: `inteinscan finds putative intein-containing regions in protein
sequences by combining conserved-domain and intein-sequence homology
searches with alignment-driven splice-junction residue checks.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
	}

	root.AddCommand(newScanCmd())
	root.AddCommand(newConfigCmd())
	root.AddCommand(newVersionCmd())

	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("inteinscan version %s (%s) built %s\n", version, commit, date)
		},
	}
}

// initConfig wires the optional ~/.inteinscan.yaml config file and
// INTEINSCAN_* environment variables into viper.
func initConfig() error {
	home, err := os.UserHomeDir()
	if err == nil {
		viper.SetConfigName(".inteinscan")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(home)
		if err := viper.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return fmt.Errorf("read config %s: %w", filepath.Join(home, ".inteinscan.yaml"), err)
			}
		}
	}

	viper.SetEnvPrefix("INTEINSCAN")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()
	return nil
}
