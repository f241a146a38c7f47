package strategies

import (
	"github.com/rustyeddy/futuresim/backtest"
	"github.com/rustyeddy/futuresim/indicators"
	"github.com/rustyeddy/futuresim/market"
	"github.com/rustyeddy/futuresim/sim"
)

// RSIReversion is a mean-reversion oscillator strategy: long below the
// oversold threshold, short above the overbought threshold, flat in
// the neutral zone between them.
type RSIReversion struct {
	rsi        *indicators.RSI
	oversold   float64
	overbought float64
	qty        int
}

// NewRSIReversion builds the strategy with the given lookback,
// thresholds, and contracts per signal.
func NewRSIReversion(lookback int, oversold, overbought float64, qty int) *RSIReversion {
	return &RSIReversion{
		rsi:        indicators.NewRSI(lookback),
		oversold:   oversold,
		overbought: overbought,
		qty:        qty,
	}
}

func (r *RSIReversion) Name() string { return "RSI Reversion" }

func (r *RSIReversion) OnStart(*backtest.Context) {
	r.rsi.Reset()
}

func (r *RSIReversion) OnBar(ctx *backtest.Context, bar market.Bar) {
	r.rsi.Update(bar)
	if !r.rsi.Ready() {
		return
	}

	value := r.rsi.Value()
	netQty := ctx.NetQty()

	switch {
	case value < r.oversold:
		// Oversold: go long if not already.
		if netQty <= 0 {
			ctx.MarketOrder(-netQty+r.qty, sim.Buy)
		}
	case value > r.overbought:
		// Overbought: go short if not already.
		if netQty >= 0 {
			ctx.MarketOrder(netQty+r.qty, sim.Sell)
		}
	default:
		// Neutral zone: flatten any open position.
		liquidate(ctx)
	}
}

// OnEnd liquidates any residual position with a closing market order.
func (r *RSIReversion) OnEnd(ctx *backtest.Context) {
	liquidate(ctx)
}
