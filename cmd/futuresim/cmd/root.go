package cmd

import (
	"github.com/spf13/cobra"

	"github.com/rustyeddy/futuresim/internal/logging"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "futuresim",
	Short: "A deterministic futures strategy backtesting engine",
	Long: `Futuresim simulates rule-based trading strategies against historical
price bars and produces an auditable trade log, equity curve, and
performance summary.

It provides tools for:
  - Backtesting strategies over CSV bar data with realistic
    next-bar-open fill timing
  - Market, limit, and stop order matching against each bar's range
  - Futures tick economics, commission/slippage, and margin accounting
  - Journaling runs, fills, and equity curves to CSV or SQLite`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.SetDefault(logging.New(logLevel))
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
}
