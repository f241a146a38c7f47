// Package market provides the core market data types: OHLCV bars and
// futures contract specifications.
package market

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrHighBelowLow is returned when a bar's high is below its low.
	ErrHighBelowLow = errors.New("high below low")
	// ErrOpenOutOfRange is returned when a bar's open falls outside [low, high].
	ErrOpenOutOfRange = errors.New("open outside high-low range")
	// ErrCloseOutOfRange is returned when a bar's close falls outside [low, high].
	ErrCloseOutOfRange = errors.New("close outside high-low range")
	// ErrNegativeVolume is returned when a bar's volume is negative.
	ErrNegativeVolume = errors.New("negative volume")
)

// Bar is a single OHLCV candle for one symbol over a fixed interval.
// Bars are immutable once constructed.
type Bar struct {
	Timestamp    time.Time
	Open         float64
	High         float64
	Low          float64
	Close        float64
	Volume       float64
	OpenInterest *float64
	Symbol       string
}

// NewBar constructs a Bar and validates its OHLC range and volume:
// low <= open,close <= high and volume >= 0.
func NewBar(ts time.Time, open, high, low, closeP, volume float64, openInterest *float64, symbol string) (Bar, error) {
	if high < low {
		return Bar{}, fmt.Errorf("bar %s at %s: high %v < low %v: %w", symbol, ts.Format(time.RFC3339), high, low, ErrHighBelowLow)
	}
	if open < low || open > high {
		return Bar{}, fmt.Errorf("bar %s at %s: open %v outside [%v, %v]: %w", symbol, ts.Format(time.RFC3339), open, low, high, ErrOpenOutOfRange)
	}
	if closeP < low || closeP > high {
		return Bar{}, fmt.Errorf("bar %s at %s: close %v outside [%v, %v]: %w", symbol, ts.Format(time.RFC3339), closeP, low, high, ErrCloseOutOfRange)
	}
	if volume < 0 {
		return Bar{}, fmt.Errorf("bar %s at %s: volume %v: %w", symbol, ts.Format(time.RFC3339), volume, ErrNegativeVolume)
	}
	return NewBarUnchecked(ts, open, high, low, closeP, volume, openInterest, symbol), nil
}

// NewBarUnchecked constructs a Bar without validation. Intended for
// trusted bulk ingestion paths like the CSV loader.
func NewBarUnchecked(ts time.Time, open, high, low, closeP, volume float64, openInterest *float64, symbol string) Bar {
	return Bar{
		Timestamp:    ts,
		Open:         open,
		High:         high,
		Low:          low,
		Close:        closeP,
		Volume:       volume,
		OpenInterest: openInterest,
		Symbol:       symbol,
	}
}

// TypicalPrice returns (high + low + close) / 3.
func (b Bar) TypicalPrice() float64 {
	return (b.High + b.Low + b.Close) / 3.0
}

// MidPrice returns (high + low) / 2.
func (b Bar) MidPrice() float64 {
	return (b.High + b.Low) / 2.0
}

// Range returns high - low.
func (b Bar) Range() float64 {
	return b.High - b.Low
}
