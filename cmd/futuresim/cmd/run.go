package cmd

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/futuresim/backtest"
	"github.com/rustyeddy/futuresim/config"
	"github.com/rustyeddy/futuresim/journal"
	"github.com/rustyeddy/futuresim/market/data"
	"github.com/rustyeddy/futuresim/metrics"
	"github.com/rustyeddy/futuresim/sim"
	"github.com/rustyeddy/futuresim/strategies"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a backtest over CSV bar data",
	Long: `Run loads OHLCV bars from a CSV file, filters them by symbol, and
drives the selected strategy over them.

Supported strategies:
  - sma:  SMA crossover (requires --fast and --slow)
  - rsi:  RSI mean reversion (optional --rsi-lookback, --rsi-lower, --rsi-upper)
  - noop: does nothing (baseline)

Example:
  futuresim run --data bars.csv --symbol ES --strategy sma \
    --tick-size 0.25 --tick-value 12.5 --fast 10 --slow 30`,
	RunE: runBacktest,
}

var (
	runConfigPath string

	runDataPath string
	runSymbol   string

	runStrategy    string
	runQty         int
	runFast        int
	runSlow        int
	runRSILookback int
	runRSILower    float64
	runRSIUpper    float64

	runContractMonth     string
	runTickSize          float64
	runTickValue         float64
	runPointValue        float64
	runInitialMargin     float64
	runMaintenanceMargin float64

	runBalance    float64
	runCommission float64
	runSlippage   float64
	runLookback   int

	runEquityCSV string
	runTradesCSV string
	runJournalDB string
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "c", "", "path to YAML/JSON config file (flags below are ignored when set)")

	runCmd.Flags().StringVarP(&runDataPath, "data", "d", "", "path to bar CSV (timestamp,open,high,low,close,volume[,open_interest],symbol)")
	runCmd.Flags().StringVar(&runSymbol, "symbol", "", "symbol to trade (e.g. ES, NQ)")

	runCmd.Flags().StringVarP(&runStrategy, "strategy", "s", "", "strategy name (sma, rsi, noop)")
	runCmd.Flags().IntVar(&runQty, "qty", 1, "contracts per signal")
	runCmd.Flags().IntVar(&runFast, "fast", 0, "sma: fast window")
	runCmd.Flags().IntVar(&runSlow, "slow", 0, "sma: slow window")
	runCmd.Flags().IntVar(&runRSILookback, "rsi-lookback", 14, "rsi: lookback period")
	runCmd.Flags().Float64Var(&runRSILower, "rsi-lower", 30, "rsi: oversold threshold")
	runCmd.Flags().Float64Var(&runRSIUpper, "rsi-upper", 70, "rsi: overbought threshold")

	runCmd.Flags().StringVar(&runContractMonth, "contract-month", "2025-03", "contract month (e.g. 2025-03)")
	runCmd.Flags().Float64Var(&runTickSize, "tick-size", 0, "minimum price fluctuation")
	runCmd.Flags().Float64Var(&runTickValue, "tick-value", 0, "dollar value of one tick")
	runCmd.Flags().Float64Var(&runPointValue, "point-value", 0, "dollar value of one point (default tick-value/tick-size)")
	runCmd.Flags().Float64Var(&runInitialMargin, "initial-margin", 0, "initial margin per contract (default 10000)")
	runCmd.Flags().Float64Var(&runMaintenanceMargin, "maintenance-margin", 0, "maintenance margin per contract (default 80% of initial)")

	runCmd.Flags().Float64VarP(&runBalance, "balance", "b", 100000, "initial account balance")
	runCmd.Flags().Float64Var(&runCommission, "commission", 2.5, "commission per contract per side")
	runCmd.Flags().Float64Var(&runSlippage, "slippage", 1.0, "slippage per contract per side")
	runCmd.Flags().IntVar(&runLookback, "lookback", 500, "max bars of history visible to the strategy")

	runCmd.Flags().StringVar(&runEquityCSV, "output-equity-csv", "", "write the equity curve to this CSV file")
	runCmd.Flags().StringVar(&runTradesCSV, "output-trades-csv", "", "write the trade log to this CSV file")
	runCmd.Flags().StringVar(&runJournalDB, "journal-db", "", "journal the run to this SQLite database")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig()
	if err != nil {
		return err
	}

	bars, err := data.LoadCSV(cfg.Data.CSVPath)
	if err != nil {
		return fmt.Errorf("load data: %w", err)
	}
	bars = data.FilterSymbol(bars, cfg.DataSymbol())
	if len(bars) == 0 {
		return fmt.Errorf("no bars found for symbol %q in %s", cfg.DataSymbol(), cfg.Data.CSVPath)
	}

	strat, err := strategies.ByName(cfg.Strategy.Name, cfg.StrategyParams())
	if err != nil {
		return fmt.Errorf("strategy: %w", err)
	}

	runner := backtest.NewRunner(cfg.RunnerConfig(), bars, cfg.ContractSpec())

	j, err := openJournal(cfg)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	if j != nil {
		defer j.Close()
		runner.WithJournal(j)
	}

	result, err := runner.Run(strat)
	if err != nil {
		return fmt.Errorf("run backtest: %w", err)
	}

	fmt.Printf("Backtest complete: %s on %s, %d bars\n\n", strat.Name(), cfg.DataSymbol(), len(bars))
	fmt.Print(result.Summary.Render())

	if runEquityCSV != "" {
		if err := writeEquityCSV(runEquityCSV, result.EquityCurve); err != nil {
			return fmt.Errorf("write equity csv: %w", err)
		}
		fmt.Printf("\nEquity curve written to %s\n", runEquityCSV)
	}
	if runTradesCSV != "" {
		if err := writeTradesCSV(runTradesCSV, result.Trades); err != nil {
			return fmt.Errorf("write trades csv: %w", err)
		}
		fmt.Printf("Trade log written to %s\n", runTradesCSV)
	}

	return nil
}

// resolveConfig builds the effective config from --config or from the
// individual flags, validating either way before the run starts.
func resolveConfig() (*config.Config, error) {
	if runConfigPath != "" {
		return config.LoadFromFile(runConfigPath)
	}

	cfg := &config.Config{
		Account: config.AccountConfig{
			InitialBalance:        runBalance,
			CommissionPerContract: runCommission,
			SlippagePerContract:   runSlippage,
		},
		Contract: config.ContractConfig{
			Symbol:            runSymbol,
			ContractMonth:     runContractMonth,
			TickSize:          runTickSize,
			TickValue:         runTickValue,
			PointValue:        runPointValue,
			InitialMargin:     runInitialMargin,
			MaintenanceMargin: runMaintenanceMargin,
		},
		Strategy: config.StrategyConfig{
			Name:        runStrategy,
			Qty:         runQty,
			Fast:        runFast,
			Slow:        runSlow,
			RSILookback: runRSILookback,
			RSILower:    runRSILower,
			RSIUpper:    runRSIUpper,
		},
		Data: config.DataConfig{
			CSVPath: runDataPath,
			Symbol:  runSymbol,
		},
		Lookback: runLookback,
	}
	if runJournalDB != "" {
		cfg.Journal = config.JournalConfig{Type: "sqlite", DBPath: runJournalDB}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func openJournal(cfg *config.Config) (journal.Journal, error) {
	switch cfg.Journal.Type {
	case "csv":
		return journal.NewCSV(cfg.Journal.FillsFile, cfg.Journal.EquityFile)
	case "sqlite":
		return journal.NewSQLite(cfg.Journal.DBPath)
	}
	return nil, nil
}

func writeEquityCSV(path string, curve []metrics.EquityPoint) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"timestamp", "equity", "drawdown", "return"}); err != nil {
		return err
	}
	for _, p := range curve {
		err := w.Write([]string{
			p.Timestamp.Format(time.RFC3339),
			strconv.FormatFloat(p.Equity, 'f', 6, 64),
			strconv.FormatFloat(p.Drawdown, 'f', 6, 64),
			strconv.FormatFloat(p.Return, 'f', 6, 64),
		})
		if err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func writeTradesCSV(path string, trades []sim.Fill) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"fill_id", "order_id", "timestamp", "symbol", "qty", "side", "fill_price", "fees"}); err != nil {
		return err
	}
	for _, t := range trades {
		err := w.Write([]string{
			strconv.FormatInt(t.ID, 10),
			strconv.FormatInt(t.OrderID, 10),
			t.Timestamp.Format(time.RFC3339),
			t.Symbol,
			strconv.Itoa(t.Qty),
			t.Side.String(),
			strconv.FormatFloat(t.FillPrice, 'f', 6, 64),
			strconv.FormatFloat(t.Fees, 'f', 6, 64),
		})
		if err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
