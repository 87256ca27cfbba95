// Package main is the stockintel command line tool. It runs frontier and
// regime computations over CSV files and syncs the local price history.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/aristath/stockintel/internal/version"
	"github.com/aristath/stockintel/pkg/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// cliOptions holds the flags shared by every command
type cliOptions struct {
	logLevel string
	pretty   bool
	log      zerolog.Logger
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &cliOptions{}

	root := &cobra.Command{
		Use:   "stockintel",
		Short: "Portfolio frontier and market regime analytics",
		Long: `stockintel samples Monte-Carlo efficient frontiers and classifies
volatility regimes from daily prices.

Results are written to stdout as JSON; logs go to stderr.

Examples:
  stockintel frontier --csv returns.csv --trials 5000 --seed 42
  stockintel regime --csv nifty.csv --clusters 3
  stockintel sync`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			opts.log = logger.New(logger.Config{
				Level:   opts.logLevel,
				Pretty:  opts.pretty,
				Output:  stderr,
				Service: "stockintel-cli",
			})
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug|info|warn|error)")
	root.PersistentFlags().BoolVar(&opts.pretty, "pretty", false, "Human-readable logs")

	root.AddCommand(newFrontierCmd(opts))
	root.AddCommand(newRegimeCmd(opts))
	root.AddCommand(newSyncCmd(opts))

	return root
}

// writeJSON prints v as indented JSON to the command's stdout
func writeJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
