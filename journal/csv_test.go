package journal

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/futuresim/sim"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestCSVJournal(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	fillsPath := filepath.Join(dir, "fills.csv")
	equityPath := filepath.Join(dir, "equity.csv")

	j, err := NewCSV(fillsPath, equityPath)
	require.NoError(t, err)

	ts := time.Date(2025, 1, 2, 9, 31, 0, 0, time.UTC)
	require.NoError(t, j.RecordFill("run-1", sim.Fill{
		ID:        1,
		OrderID:   1,
		Timestamp: ts,
		Symbol:    "ES",
		Qty:       2,
		Side:      sim.Buy,
		FillPrice: 5000.25,
		Fees:      7,
	}))
	require.NoError(t, j.RecordEquity(EquityRecord{
		RunID:      "run-1",
		Time:       ts,
		Equity:     100043,
		Cash:       99993,
		MarginUsed: 26000,
	}))
	require.NoError(t, j.Close())

	fills := readCSV(t, fillsPath)
	require.Len(t, fills, 2)
	assert.Equal(t, []string{"run_id", "fill_id", "order_id", "timestamp", "symbol", "qty", "side", "fill_price", "fees"}, fills[0])
	assert.Equal(t, []string{"run-1", "1", "1", "2025-01-02T09:31:00Z", "ES", "2", "BUY", "5000.250000", "7.000000"}, fills[1])

	equity := readCSV(t, equityPath)
	require.Len(t, equity, 2)
	assert.Equal(t, []string{"run_id", "time", "equity", "cash", "margin_used"}, equity[0])
	assert.Equal(t, "100043.000000", equity[1][2])
}

func TestCSVJournalRecordRunIsNoop(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	j, err := NewCSV(filepath.Join(dir, "f.csv"), filepath.Join(dir, "e.csv"))
	require.NoError(t, err)
	assert.NoError(t, j.RecordRun(RunRecord{RunID: "run-1"}))
	require.NoError(t, j.Close())
}

func TestNewCSVBadPath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, err := NewCSV(filepath.Join(dir, "missing", "f.csv"), filepath.Join(dir, "e.csv"))
	assert.Error(t, err)

	_, err = NewCSV(filepath.Join(dir, "f.csv"), filepath.Join(dir, "missing", "e.csv"))
	assert.Error(t, err)
}
