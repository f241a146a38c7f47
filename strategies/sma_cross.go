package strategies

import (
	"github.com/rustyeddy/futuresim/backtest"
	"github.com/rustyeddy/futuresim/indicators"
	"github.com/rustyeddy/futuresim/market"
	"github.com/rustyeddy/futuresim/sim"
)

// SMACross is a trend-following crossover strategy: long when the fast
// SMA crosses above the slow SMA, short when it crosses below. A
// crossover against an open position reverses it in a single order.
type SMACross struct {
	fast *indicators.SMA
	slow *indicators.SMA
	qty  int

	lastFast float64
	lastSlow float64
	havePrev bool
}

// NewSMACross builds the strategy with the given window sizes and
// contracts per signal.
func NewSMACross(fastWindow, slowWindow, qty int) *SMACross {
	return &SMACross{
		fast: indicators.NewSMA(fastWindow),
		slow: indicators.NewSMA(slowWindow),
		qty:  qty,
	}
}

func (s *SMACross) Name() string { return "SMA Crossover" }

func (s *SMACross) OnStart(*backtest.Context) {
	s.fast.Reset()
	s.slow.Reset()
	s.lastFast = 0
	s.lastSlow = 0
	s.havePrev = false
}

func (s *SMACross) OnBar(ctx *backtest.Context, bar market.Bar) {
	s.fast.Update(bar)
	s.slow.Update(bar)
	if !s.slow.Ready() {
		return
	}

	fast := s.fast.Value()
	slow := s.slow.Value()

	if s.havePrev {
		netQty := ctx.NetQty()

		switch {
		case s.lastFast <= s.lastSlow && fast > slow:
			// Bullish crossover: establish a long if flat or short.
			if netQty <= 0 {
				ctx.MarketOrder(-netQty+s.qty, sim.Buy)
			}
		case s.lastFast >= s.lastSlow && fast < slow:
			// Bearish crossover: establish a short if flat or long.
			if netQty >= 0 {
				ctx.MarketOrder(netQty+s.qty, sim.Sell)
			}
		}
	}

	s.lastFast = fast
	s.lastSlow = slow
	s.havePrev = true
}

// OnEnd liquidates any residual position with a closing market order.
func (s *SMACross) OnEnd(ctx *backtest.Context) {
	liquidate(ctx)
}

// liquidate submits a market order that flattens the current position,
// if any.
func liquidate(ctx *backtest.Context) {
	netQty := ctx.NetQty()
	switch {
	case netQty > 0:
		ctx.MarketOrder(netQty, sim.Sell)
	case netQty < 0:
		ctx.MarketOrder(-netQty, sim.Buy)
	}
}
