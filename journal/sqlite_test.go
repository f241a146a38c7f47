package journal

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/futuresim/sim"
)

func newTestSQLite(t *testing.T) *SQLite {
	t.Helper()
	j, err := NewSQLite(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestSQLiteRunRoundTrip(t *testing.T) {
	t.Parallel()

	j := newTestSQLite(t)

	rec := RunRecord{
		RunID:          "run-1",
		Strategy:       "SMA Crossover",
		Symbol:         "ES",
		Created:        time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC),
		Start:          time.Date(2025, 1, 2, 9, 30, 0, 0, time.UTC),
		End:            time.Date(2025, 1, 2, 16, 0, 0, 0, time.UTC),
		InitialBalance: 100000,
		FinalEquity:    100293,
		Trades:         2,
	}
	require.NoError(t, j.RecordRun(rec))

	got, err := j.GetRun("run-1")
	require.NoError(t, err)
	assert.Equal(t, rec.RunID, got.RunID)
	assert.Equal(t, rec.Strategy, got.Strategy)
	assert.Equal(t, rec.Symbol, got.Symbol)
	assert.True(t, rec.Start.Equal(got.Start))
	assert.True(t, rec.End.Equal(got.End))
	assert.InDelta(t, rec.FinalEquity, got.FinalEquity, 1e-9)
	assert.Equal(t, rec.Trades, got.Trades)
}

func TestSQLiteGetRunMissing(t *testing.T) {
	t.Parallel()

	j := newTestSQLite(t)
	_, err := j.GetRun("nope")
	assert.Error(t, err)
}

func TestSQLiteFills(t *testing.T) {
	t.Parallel()

	j := newTestSQLite(t)
	ts := time.Date(2025, 1, 2, 9, 31, 0, 0, time.UTC)

	// Insert out of ID order; the listing sorts by fill ID.
	require.NoError(t, j.RecordFill("run-1", sim.Fill{
		ID: 2, OrderID: 2, Timestamp: ts.Add(time.Minute), Symbol: "ES",
		Qty: -1, Side: sim.Sell, FillPrice: 5010, Fees: 3.5,
	}))
	require.NoError(t, j.RecordFill("run-1", sim.Fill{
		ID: 1, OrderID: 1, Timestamp: ts, Symbol: "ES",
		Qty: 1, Side: sim.Buy, FillPrice: 5000, Fees: 3.5,
	}))
	require.NoError(t, j.RecordFill("run-2", sim.Fill{
		ID: 1, OrderID: 1, Timestamp: ts, Symbol: "NQ",
		Qty: 1, Side: sim.Buy, FillPrice: 18000, Fees: 3.5,
	}))

	fills, err := j.ListFillsByRun("run-1")
	require.NoError(t, err)
	require.Len(t, fills, 2)

	assert.Equal(t, int64(1), fills[0].ID)
	assert.Equal(t, 1, fills[0].Qty)
	assert.Equal(t, sim.Buy, fills[0].Side)
	assert.InDelta(t, 5000.0, fills[0].FillPrice, 1e-9)
	assert.True(t, ts.Equal(fills[0].Timestamp))

	assert.Equal(t, int64(2), fills[1].ID)
	assert.Equal(t, sim.Sell, fills[1].Side)
	assert.Equal(t, -1, fills[1].Qty)
}

func TestSQLiteEquity(t *testing.T) {
	t.Parallel()

	j := newTestSQLite(t)
	base := time.Date(2025, 1, 2, 9, 30, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		require.NoError(t, j.RecordEquity(EquityRecord{
			RunID:      "run-1",
			Time:       base.Add(time.Duration(i) * time.Minute),
			Equity:     100000 + float64(i)*50,
			Cash:       100000,
			MarginUsed: 13000,
		}))
	}

	records, err := j.ListEquityByRun("run-1")
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.InDelta(t, 100000.0, records[0].Equity, 1e-9)
	assert.InDelta(t, 100100.0, records[2].Equity, 1e-9)
	assert.InDelta(t, 13000.0, records[1].MarginUsed, 1e-9)

	empty, err := j.ListEquityByRun("run-9")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
