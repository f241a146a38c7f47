package strategies

import (
	"github.com/rustyeddy/futuresim/backtest"
	"github.com/rustyeddy/futuresim/market"
)

// Noop never trades. Useful as a baseline and in tests.
type Noop struct{}

func (Noop) OnStart(*backtest.Context)           {}
func (Noop) OnBar(*backtest.Context, market.Bar) {}
func (Noop) OnEnd(*backtest.Context)             {}
func (Noop) Name() string                        { return "Noop" }
