package journal

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rustyeddy/futuresim/sim"
)

// SQLite persists runs, fills, and equity snapshots in a SQLite
// database. The schema is applied on open.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (creating if needed) the database at path.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordRun(r RunRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO runs
		(run_id, strategy, symbol, created, start, end, initial_balance, final_equity, trades)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Strategy, r.Symbol, r.Created, r.Start, r.End,
		r.InitialBalance, r.FinalEquity, r.Trades,
	)
	return err
}

func (j *SQLite) RecordFill(runID string, f sim.Fill) error {
	_, err := j.db.Exec(`
		INSERT INTO fills
		(run_id, fill_id, order_id, timestamp, symbol, qty, side, fill_price, fees)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, f.ID, f.OrderID, f.Timestamp, f.Symbol, f.Qty,
		f.Side.String(), f.FillPrice, f.Fees,
	)
	return err
}

func (j *SQLite) RecordEquity(e EquityRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO equity
		(run_id, time, equity, cash, margin_used)
		VALUES (?, ?, ?, ?, ?)`,
		e.RunID, e.Time, e.Equity, e.Cash, e.MarginUsed,
	)
	return err
}

// GetRun loads one run summary by ID.
func (j *SQLite) GetRun(runID string) (RunRecord, error) {
	var r RunRecord
	err := j.db.QueryRow(`
		SELECT run_id, strategy, symbol, created, start, end, initial_balance, final_equity, trades
		FROM runs WHERE run_id = ?`, runID).
		Scan(&r.RunID, &r.Strategy, &r.Symbol, &r.Created, &r.Start, &r.End,
			&r.InitialBalance, &r.FinalEquity, &r.Trades)
	return r, err
}

// ListFillsByRun returns a run's fills in fill-ID order.
func (j *SQLite) ListFillsByRun(runID string) ([]sim.Fill, error) {
	rows, err := j.db.Query(`
		SELECT fill_id, order_id, timestamp, symbol, qty, side, fill_price, fees
		FROM fills WHERE run_id = ? ORDER BY fill_id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fills []sim.Fill
	for rows.Next() {
		var f sim.Fill
		var side string
		var ts time.Time
		if err := rows.Scan(&f.ID, &f.OrderID, &ts, &f.Symbol, &f.Qty, &side, &f.FillPrice, &f.Fees); err != nil {
			return nil, err
		}
		f.Timestamp = ts
		if side == sim.Sell.String() {
			f.Side = sim.Sell
		} else {
			f.Side = sim.Buy
		}
		fills = append(fills, f)
	}
	return fills, rows.Err()
}

// ListEquityByRun returns a run's equity snapshots in time order.
func (j *SQLite) ListEquityByRun(runID string) ([]EquityRecord, error) {
	rows, err := j.db.Query(`
		SELECT run_id, time, equity, cash, margin_used
		FROM equity WHERE run_id = ? ORDER BY time`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []EquityRecord
	for rows.Next() {
		var e EquityRecord
		if err := rows.Scan(&e.RunID, &e.Time, &e.Equity, &e.Cash, &e.MarginUsed); err != nil {
			return nil, err
		}
		records = append(records, e)
	}
	return records, rows.Err()
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
