package main

import (
	"os/signal"
	"syscall"

	"github.com/aristath/stockintel/internal/config"
	"github.com/aristath/stockintel/internal/di"
	"github.com/spf13/cobra"
)

func newSyncCmd(opts *cliOptions) *cobra.Command {
	var symbols []string

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Fetch new daily prices into the configured history database",
		Long: `Run one market data sync using the server's configuration
(.env, environment and STOCKINTEL_CONFIG).

Examples:
  stockintel sync
  stockintel sync --symbols AAPL,MSFT`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if len(symbols) > 0 {
				cfg.Portfolio.Tickers = symbols
				cfg.Regime.Index = ""
				cfg.Sync.Symbols = nil
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			container, err := di.Wire(ctx, cfg, opts.log)
			if err != nil {
				return err
			}
			defer container.Close()

			run, err := container.SyncService.SyncAll(ctx)
			if err != nil && run == nil {
				return err
			}
			if werr := writeJSON(cmd, run); werr != nil {
				return werr
			}
			return err
		},
	}

	cmd.Flags().StringSliceVar(&symbols, "symbols", nil, "Sync only these symbols")
	return cmd
}
