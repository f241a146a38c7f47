package backtest

import (
	"log/slog"
	"time"

	"github.com/rustyeddy/futuresim/journal"
	"github.com/rustyeddy/futuresim/market"
	"github.com/rustyeddy/futuresim/metrics"
	"github.com/rustyeddy/futuresim/pkg/id"
	"github.com/rustyeddy/futuresim/sim"
)

// Strategy is the pluggable decision layer. The runner calls OnStart
// once before any bar, OnBar per bar, and OnEnd after the last bar
// (where strategies conventionally liquidate by submitting closing
// market orders).
type Strategy interface {
	OnStart(ctx *Context)
	OnBar(ctx *Context, bar market.Bar)
	OnEnd(ctx *Context)
	Name() string
}

// Config carries the account and history parameters for one run.
type Config struct {
	InitialBalance        float64
	CommissionPerContract float64
	SlippagePerContract   float64
	MaxLookback           int
}

// DefaultConfig mirrors the conventional account setup: $100k balance,
// $2.50 commission and $1 slippage per contract per side, 500 bars of
// lookback.
func DefaultConfig() Config {
	return Config{
		InitialBalance:        100000,
		CommissionPerContract: 2.5,
		SlippagePerContract:   1.0,
		MaxLookback:           500,
	}
}

// Result is the output of one run: the enriched equity curve, the
// fill-ordered trade log, and the aggregate summary.
type Result struct {
	RunID       string
	EquityCurve []metrics.EquityPoint
	Trades      []sim.Fill
	Summary     metrics.Summary
}

// Runner executes one backtest. It exclusively owns its matching
// engine and account for the duration of the run; the strategy reaches
// them only through the per-run Context. A Runner is single-use and
// single-threaded.
type Runner struct {
	cfg      Config
	bars     []market.Bar
	contract market.Contract

	engine  *sim.Engine
	account *sim.Account

	journal journal.Journal // optional
	log     *slog.Logger

	timestamps []time.Time
	equities   []float64
}

// NewRunner builds a runner over a chronologically sorted bar slice.
// The bars are assumed sorted by the loader; the runner does not
// re-sort.
func NewRunner(cfg Config, bars []market.Bar, contract market.Contract) *Runner {
	return &Runner{
		cfg:      cfg,
		bars:     bars,
		contract: contract,
		engine:   sim.NewEngine(),
		account:  sim.NewAccount(cfg.InitialBalance, cfg.CommissionPerContract, cfg.SlippagePerContract),
		log:      slog.Default(),
	}
}

// WithJournal attaches a journal that receives every applied fill and
// equity snapshot during the run, plus the run summary at the end.
func (r *Runner) WithJournal(j journal.Journal) *Runner {
	r.journal = j
	return r
}

// WithLogger replaces the runner's logger.
func (r *Runner) WithLogger(log *slog.Logger) *Runner {
	r.log = log
	return r
}

// Account exposes the run's ledger, mainly for inspection after Run.
func (r *Runner) Account() *sim.Account { return r.account }

// Run drives the strategy over the bar sequence.
//
// Timing: an order submitted while the strategy processes bar i is
// resolved against bar i+1's range in the next iteration (market
// orders fill at that bar's open). Orders submitted on bar 0 are
// therefore first resolved against bar 1; orders submitted on the last
// bar are resolved in the post-loop step against the final bar's
// (close, high, low), close standing in for open since no further bar
// exists.
//
// An empty bar slice yields an empty equity history, zero trades, and
// no error.
func (r *Runner) Run(strategy Strategy) (Result, error) {
	runID := id.New()
	ctx := NewContext(r.contract.Symbol, r.cfg.MaxLookback, r.engine, r.account)

	r.log.Info("backtest starting",
		"run_id", runID,
		"strategy", strategy.Name(),
		"symbol", r.contract.Symbol,
		"bars", len(r.bars),
		"initial_balance", r.cfg.InitialBalance,
	)
	start := time.Now()

	strategy.OnStart(ctx)

	for i, bar := range r.bars {
		ctx.PushBar(bar)
		strategy.OnBar(ctx, bar)

		// Orders submitted while processing bar i-1 resolve against bar
		// i's range. Bar 0 has no prior bar, so nothing resolves yet.
		if i > 0 {
			fills := r.engine.Process(bar.Open, bar.High, bar.Low)
			if err := r.applyFills(runID, fills); err != nil {
				return Result{}, err
			}
		}

		if err := r.snapshotEquity(runID, bar); err != nil {
			return Result{}, err
		}
	}

	if len(r.bars) > 0 {
		last := r.bars[len(r.bars)-1]

		// Resolve orders submitted on the final bar, using close in
		// place of open.
		fills := r.engine.Process(last.Close, last.High, last.Low)
		if err := r.applyFills(runID, fills); err != nil {
			return Result{}, err
		}

		strategy.OnEnd(ctx)

		// Resolve again for the end hook's orders. Limit/stop orders
		// that do not trigger here are dropped: there is no further
		// resolution opportunity.
		fills = r.engine.Process(last.Close, last.High, last.Low)
		if err := r.applyFills(runID, fills); err != nil {
			return Result{}, err
		}

		r.markToMarket(last.Close)
		r.equities[len(r.equities)-1] = r.account.Equity
	} else {
		strategy.OnEnd(ctx)
	}

	result := r.buildResult(runID)

	if r.journal != nil {
		rec := journal.RunRecord{
			RunID:          runID,
			Strategy:       strategy.Name(),
			Symbol:         r.contract.Symbol,
			Created:        time.Now().UTC(),
			InitialBalance: r.cfg.InitialBalance,
			FinalEquity:    r.account.Equity,
			Trades:         len(result.Trades),
		}
		if len(r.bars) > 0 {
			rec.Start = r.bars[0].Timestamp
			rec.End = r.bars[len(r.bars)-1].Timestamp
		}
		if err := r.journal.RecordRun(rec); err != nil {
			return Result{}, err
		}
	}

	r.log.Info("backtest finished",
		"run_id", runID,
		"final_equity", r.account.Equity,
		"fills", len(result.Trades),
		"elapsed", time.Since(start),
	)

	return result, nil
}

func (r *Runner) applyFills(runID string, fills []sim.Fill) error {
	for _, fill := range fills {
		r.account.ApplyFill(fill, r.contract)
		applied := r.account.TradeLog[len(r.account.TradeLog)-1]

		r.log.Debug("fill applied",
			"fill_id", applied.ID,
			"order_id", applied.OrderID,
			"qty", applied.Qty,
			"price", applied.FillPrice,
			"fees", applied.Fees,
		)

		if r.journal != nil {
			if err := r.journal.RecordFill(runID, applied); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Runner) markToMarket(price float64) {
	prices := map[string]float64{r.contract.Symbol: price}
	contracts := map[string]market.Contract{r.contract.Symbol: r.contract}
	r.account.MarkToMarket(prices, contracts)
}

func (r *Runner) snapshotEquity(runID string, bar market.Bar) error {
	r.markToMarket(bar.Close)
	r.timestamps = append(r.timestamps, bar.Timestamp)
	r.equities = append(r.equities, r.account.Equity)

	if r.journal != nil {
		return r.journal.RecordEquity(journal.EquityRecord{
			RunID:      runID,
			Time:       bar.Timestamp,
			Equity:     r.account.Equity,
			Cash:       r.account.Cash,
			MarginUsed: r.account.MarginUsed,
		})
	}
	return nil
}

func (r *Runner) buildResult(runID string) Result {
	curve := metrics.BuildEquityCurve(r.timestamps, r.equities, r.cfg.InitialBalance)
	trades := make([]sim.Fill, len(r.account.TradeLog))
	copy(trades, r.account.TradeLog)

	return Result{
		RunID:       runID,
		EquityCurve: curve,
		Trades:      trades,
		Summary:     metrics.Summarize(curve, trades, r.cfg.InitialBalance),
	}
}
