// Package journal persists backtest output: run summaries, the fill
// log, and per-bar equity snapshots. Implementations exist for CSV
// files and SQLite.
package journal

import (
	"time"

	"github.com/rustyeddy/futuresim/sim"
)

// RunRecord summarizes one completed backtest run.
type RunRecord struct {
	RunID          string
	Strategy       string
	Symbol         string
	Created        time.Time
	Start          time.Time
	End            time.Time
	InitialBalance float64
	FinalEquity    float64
	Trades         int
}

// EquityRecord is one per-bar equity snapshot for a run.
type EquityRecord struct {
	RunID      string
	Time       time.Time
	Equity     float64
	Cash       float64
	MarginUsed float64
}

// Journal records backtest output as a run progresses. A nil Journal
// is valid nowhere; callers that do not want journaling simply do not
// attach one.
type Journal interface {
	RecordRun(RunRecord) error
	RecordFill(runID string, f sim.Fill) error
	RecordEquity(EquityRecord) error
	Close() error
}
