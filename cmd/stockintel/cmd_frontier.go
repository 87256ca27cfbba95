package main

import (
	"fmt"
	"os"
	"time"

	"github.com/aristath/stockintel/internal/modules/optimization"
	"github.com/spf13/cobra"
)

func newFrontierCmd(opts *cliOptions) *cobra.Command {
	var (
		csvPath      string
		trials       int
		periods      int
		riskFreeRate float64
		seed         uint64
	)

	cmd := &cobra.Command{
		Use:   "frontier",
		Short: "Sample a Monte-Carlo efficient frontier from a returns CSV",
		Long: `Sample random long-only portfolios over a matrix of periodic returns.

The CSV has a header row of asset names, optionally led by a "date" column,
and one row of returns per period.

Examples:
  stockintel frontier --csv returns.csv
  stockintel frontier --csv returns.csv --trials 10000 --periods 52 --seed 7`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(csvPath)
			if err != nil {
				return fmt.Errorf("failed to open returns file: %w", err)
			}
			defer f.Close()

			returns, err := readReturnsCSV(f)
			if err != nil {
				return err
			}

			frontierOpts := optimization.FrontierOptions{
				Trials:         trials,
				PeriodsPerYear: periods,
				RiskFreeRate:   riskFreeRate,
			}
			if cmd.Flags().Changed("seed") {
				frontierOpts.Seed = &seed
			}

			start := time.Now()
			frontier, err := optimization.SampleFrontier(returns, frontierOpts)
			if err != nil {
				return err
			}

			opts.log.Info().
				Strs("assets", returns.Assets).
				Int("observations", returns.NumObservations()).
				Int("samples", len(frontier.Samples)).
				Int("skipped", frontier.Skipped).
				Dur("duration_ms", time.Since(start)).
				Msg("Sampled efficient frontier")

			return writeJSON(cmd, optimization.NewFrontierResult(returns, frontier, periods))
		},
	}

	cmd.Flags().StringVar(&csvPath, "csv", "", "Returns CSV file (required)")
	cmd.Flags().IntVar(&trials, "trials", 3000, "Number of random portfolios")
	cmd.Flags().IntVar(&periods, "periods", 252, "Return periods per year")
	cmd.Flags().Float64Var(&riskFreeRate, "risk-free-rate", 0, "Annualized risk-free rate")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Random seed (random when omitted)")
	_ = cmd.MarkFlagRequired("csv")

	return cmd
}
