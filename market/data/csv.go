// Package data loads historical bar data from CSV files.
package data

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rustyeddy/futuresim/market"
)

// LoadCSV reads OHLCV bars from a CSV file with a header row:
//
//	timestamp,open,high,low,close,volume[,open_interest],symbol
//
// Timestamps are RFC3339. Bars are constructed without validation
// (bulk ingestion path) and sorted by timestamp before returning.
func LoadCSV(path string) ([]market.Bar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header %s: %w", path, err)
	}

	cols, err := mapColumns(header)
	if err != nil {
		return nil, fmt.Errorf("csv %s: %w", path, err)
	}

	var bars []market.Bar
	line := 1
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read csv %s line %d: %w", path, line, err)
		}

		bar, err := parseRow(row, cols)
		if err != nil {
			return nil, fmt.Errorf("csv %s line %d: %w", path, line, err)
		}
		bars = append(bars, bar)
	}

	sort.Slice(bars, func(i, j int) bool {
		return bars[i].Timestamp.Before(bars[j].Timestamp)
	})

	return bars, nil
}

// FilterSymbol returns the bars whose symbol matches, preserving order.
func FilterSymbol(bars []market.Bar, symbol string) []market.Bar {
	out := make([]market.Bar, 0, len(bars))
	for _, b := range bars {
		if b.Symbol == symbol {
			out = append(out, b)
		}
	}
	return out
}

type columns struct {
	timestamp    int
	open         int
	high         int
	low          int
	closeP       int
	volume       int
	openInterest int // -1 if absent
	symbol       int
}

func mapColumns(header []string) (columns, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}

	cols := columns{openInterest: -1}
	required := []struct {
		name string
		dst  *int
	}{
		{"timestamp", &cols.timestamp},
		{"open", &cols.open},
		{"high", &cols.high},
		{"low", &cols.low},
		{"close", &cols.closeP},
		{"volume", &cols.volume},
		{"symbol", &cols.symbol},
	}
	for _, req := range required {
		i, ok := idx[req.name]
		if !ok {
			return columns{}, fmt.Errorf("missing required column %q", req.name)
		}
		*req.dst = i
	}
	if i, ok := idx["open_interest"]; ok {
		cols.openInterest = i
	}
	return cols, nil
}

func parseRow(row []string, cols columns) (market.Bar, error) {
	get := func(i int) string {
		if i < 0 || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	ts, err := time.Parse(time.RFC3339, get(cols.timestamp))
	if err != nil {
		return market.Bar{}, fmt.Errorf("parse timestamp %q: %w", get(cols.timestamp), err)
	}

	var vals [5]float64
	for i, src := range []int{cols.open, cols.high, cols.low, cols.closeP, cols.volume} {
		v, err := strconv.ParseFloat(get(src), 64)
		if err != nil {
			return market.Bar{}, fmt.Errorf("parse field %q: %w", get(src), err)
		}
		vals[i] = v
	}

	var openInterest *float64
	if cols.openInterest >= 0 && get(cols.openInterest) != "" {
		oi, err := strconv.ParseFloat(get(cols.openInterest), 64)
		if err != nil {
			return market.Bar{}, fmt.Errorf("parse open_interest %q: %w", get(cols.openInterest), err)
		}
		openInterest = &oi
	}

	return market.NewBarUnchecked(
		ts.UTC(), vals[0], vals[1], vals[2], vals[3], vals[4],
		openInterest, get(cols.symbol),
	), nil
}
