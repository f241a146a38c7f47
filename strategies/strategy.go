// Package strategies provides the built-in trading strategies and the
// name-based constructor used by the CLI and config layers.
//
// A strategy observes the run through the backtest Context and submits
// orders through it; it never owns the engine or account.
package strategies

import (
	"fmt"
	"strings"

	"github.com/rustyeddy/futuresim/backtest"
)

// Params carries every parameter any built-in strategy understands.
// ByName validates the subset its strategy requires.
type Params struct {
	Qty int // contracts per signal

	// SMA crossover
	FastWindow int
	SlowWindow int

	// RSI reversion
	RSILookback int
	RSILower    float64
	RSIUpper    float64
}

// ByName constructs a strategy from its name and parameters. Unknown
// names and missing required parameters are reported here, before any
// run starts.
func ByName(name string, p Params) (backtest.Strategy, error) {
	qty := p.Qty
	if qty <= 0 {
		qty = 1
	}

	switch strings.ToLower(strings.TrimSpace(name)) {
	case "noop", "none":
		return Noop{}, nil

	case "sma", "sma-cross", "smacross":
		if p.FastWindow <= 0 || p.SlowWindow <= 0 {
			return nil, fmt.Errorf("sma strategy requires positive fast and slow windows, got fast=%d slow=%d", p.FastWindow, p.SlowWindow)
		}
		if p.FastWindow >= p.SlowWindow {
			return nil, fmt.Errorf("sma strategy requires fast window < slow window, got fast=%d slow=%d", p.FastWindow, p.SlowWindow)
		}
		return NewSMACross(p.FastWindow, p.SlowWindow, qty), nil

	case "rsi", "rsi-reversion":
		lookback := p.RSILookback
		if lookback <= 0 {
			lookback = 14
		}
		lower, upper := p.RSILower, p.RSIUpper
		if lower == 0 && upper == 0 {
			lower, upper = 30, 70
		}
		if lower <= 0 || upper >= 100 || lower >= upper {
			return nil, fmt.Errorf("rsi strategy requires 0 < lower < upper < 100, got lower=%v upper=%v", lower, upper)
		}
		return NewRSIReversion(lookback, lower, upper, qty), nil

	default:
		return nil, fmt.Errorf("unknown strategy %q (supported: sma, rsi, noop)", name)
	}
}
