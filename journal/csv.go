package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"

	"github.com/rustyeddy/futuresim/sim"
)

// CSV writes fills and equity snapshots to a pair of CSV files.
// Run summaries are not persisted by the CSV journal; they live in the
// printed report.
type CSV struct {
	fills  *csv.Writer
	equity *csv.Writer
	ff, ef *os.File
}

// NewCSV creates (truncating) the two output files and writes their
// header rows.
func NewCSV(fillsPath, equityPath string) (*CSV, error) {
	ff, err := os.Create(fillsPath)
	if err != nil {
		return nil, err
	}
	ef, err := os.Create(equityPath)
	if err != nil {
		ff.Close()
		return nil, err
	}

	fw := csv.NewWriter(ff)
	ew := csv.NewWriter(ef)

	if err := fw.Write([]string{"run_id", "fill_id", "order_id", "timestamp", "symbol", "qty", "side", "fill_price", "fees"}); err != nil {
		return nil, err
	}
	if err := ew.Write([]string{"run_id", "time", "equity", "cash", "margin_used"}); err != nil {
		return nil, err
	}

	fw.Flush()
	if err := fw.Error(); err != nil {
		return nil, err
	}
	ew.Flush()
	if err := ew.Error(); err != nil {
		return nil, err
	}

	return &CSV{fills: fw, equity: ew, ff: ff, ef: ef}, nil
}

func (j *CSV) RecordRun(RunRecord) error { return nil }

func (j *CSV) RecordFill(runID string, f sim.Fill) error {
	err := j.fills.Write([]string{
		runID,
		strconv.FormatInt(f.ID, 10),
		strconv.FormatInt(f.OrderID, 10),
		f.Timestamp.Format(time.RFC3339),
		f.Symbol,
		strconv.Itoa(f.Qty),
		f.Side.String(),
		ffloat(f.FillPrice),
		ffloat(f.Fees),
	})
	if err != nil {
		return err
	}
	j.fills.Flush()
	return j.fills.Error()
}

func (j *CSV) RecordEquity(e EquityRecord) error {
	err := j.equity.Write([]string{
		e.RunID,
		e.Time.Format(time.RFC3339),
		ffloat(e.Equity),
		ffloat(e.Cash),
		ffloat(e.MarginUsed),
	})
	if err != nil {
		return err
	}
	j.equity.Flush()
	return j.equity.Error()
}

func (j *CSV) Close() error {
	j.fills.Flush()
	if err := j.fills.Error(); err != nil {
		return err
	}
	j.equity.Flush()
	if err := j.equity.Error(); err != nil {
		return err
	}
	if err := j.ff.Close(); err != nil {
		return err
	}
	return j.ef.Close()
}

func ffloat(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
