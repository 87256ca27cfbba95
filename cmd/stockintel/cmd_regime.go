package main

import (
	"fmt"
	"os"

	"github.com/aristath/stockintel/internal/market_regime"
	"github.com/spf13/cobra"
)

func newRegimeCmd(opts *cliOptions) *cobra.Command {
	var (
		csvPath  string
		clusters int
		window   int
		seed     uint64
	)

	cmd := &cobra.Command{
		Use:   "regime",
		Short: "Classify volatility regimes from a date,close CSV",
		Long: `Cluster daily returns and rolling volatility into labelled market regimes.

The CSV holds "date,close" rows in chronological order; a header row is optional.

Examples:
  stockintel regime --csv nifty.csv
  stockintel regime --csv spx.csv --clusters 4 --window 30 --seed 1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(csvPath)
			if err != nil {
				return fmt.Errorf("failed to open prices file: %w", err)
			}
			defer f.Close()

			prices, err := readPricesCSV(f)
			if err != nil {
				return err
			}

			rows, err := market_regime.ClassifyRegimes(prices, market_regime.ClassifierOptions{
				Clusters:         clusters,
				VolatilityWindow: window,
				Seed:             &seed,
			})
			if err != nil {
				return err
			}

			opts.log.Info().
				Int("prices", len(prices)).
				Int("rows", len(rows)).
				Msg("Classified market regimes")

			result := market_regime.RegimeResult{
				Symbol:  csvPath,
				Rows:    rows,
				Summary: market_regime.Summarize(rows),
			}
			if len(rows) > 0 {
				current := rows[len(rows)-1]
				result.Current = &current
			}
			return writeJSON(cmd, result)
		},
	}

	cmd.Flags().StringVar(&csvPath, "csv", "", "Prices CSV file (required)")
	cmd.Flags().IntVar(&clusters, "clusters", 3, "Number of regimes")
	cmd.Flags().IntVar(&window, "window", 20, "Rolling volatility window")
	cmd.Flags().Uint64Var(&seed, "seed", market_regime.DefaultSeed, "Clustering seed")
	_ = cmd.MarkFlagRequired("csv")

	return cmd
}
