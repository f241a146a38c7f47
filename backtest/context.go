// Package backtest drives a strategy over a bar sequence: it owns the
// matching engine and account for one run, sequences strategy
// callbacks and order resolution with next-bar-open fill timing, and
// records the equity history.
package backtest

import (
	"time"

	"github.com/rustyeddy/futuresim/market"
	"github.com/rustyeddy/futuresim/sim"
)

// barWindow is a fixed-capacity ring buffer of bars. Once full, pushing
// evicts the oldest bar, so memory stays bounded by the lookback
// regardless of run length.
type barWindow struct {
	buf   []market.Bar
	head  int // index of the oldest bar
	count int
}

func newBarWindow(capacity int) *barWindow {
	if capacity < 1 {
		capacity = 1
	}
	return &barWindow{buf: make([]market.Bar, capacity)}
}

func (w *barWindow) push(b market.Bar) {
	if w.count < len(w.buf) {
		w.buf[(w.head+w.count)%len(w.buf)] = b
		w.count++
		return
	}
	w.buf[w.head] = b
	w.head = (w.head + 1) % len(w.buf)
}

// at returns the i-th bar, oldest first.
func (w *barWindow) at(i int) market.Bar {
	return w.buf[(w.head+i)%len(w.buf)]
}

func (w *barWindow) len() int { return w.count }

// Context is the strategy's bounded view into one run. It exposes the
// recent bar history, the account read surface, and order submission,
// without owning the engine or account. A Context is valid only for
// the run that created it and must not be retained or shared.
type Context struct {
	symbol      string
	window      *barWindow
	currentTime time.Time

	engine  *sim.Engine
	account *sim.Account
}

// NewContext builds a per-run context over the given engine and
// account with a bar history bounded by maxLookback.
func NewContext(symbol string, maxLookback int, engine *sim.Engine, account *sim.Account) *Context {
	return &Context{
		symbol:  symbol,
		window:  newBarWindow(maxLookback),
		engine:  engine,
		account: account,
	}
}

// PushBar advances the context to a new bar. Called by the runner only.
func (c *Context) PushBar(b market.Bar) {
	c.currentTime = b.Timestamp
	c.window.push(b)
}

// Symbol returns the symbol this run trades.
func (c *Context) Symbol() string { return c.symbol }

// CurrentTime returns the timestamp of the most recent bar.
func (c *Context) CurrentTime() time.Time { return c.currentTime }

// BarCount returns the number of bars currently held in history.
func (c *Context) BarCount() int { return c.window.len() }

// Bars returns up to the last n bars, oldest first.
func (c *Context) Bars(n int) []market.Bar {
	total := c.window.len()
	if n > total {
		n = total
	}
	out := make([]market.Bar, 0, n)
	for i := total - n; i < total; i++ {
		out = append(out, c.window.at(i))
	}
	return out
}

// AllBars returns every bar in history, oldest first.
func (c *Context) AllBars() []market.Bar {
	return c.Bars(c.window.len())
}

// LastBar returns the most recent bar and whether one exists.
func (c *Context) LastBar() (market.Bar, bool) {
	if c.window.len() == 0 {
		return market.Bar{}, false
	}
	return c.window.at(c.window.len() - 1), true
}

// ClosePrices returns the close prices of the last n bars, oldest
// first.
func (c *Context) ClosePrices(n int) []float64 {
	bars := c.Bars(n)
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}

// MarketOrder submits a market order stamped with the current bar time
// and returns its ID. It will resolve against the next processed bar.
func (c *Context) MarketOrder(qty int, side sim.Side) int64 {
	return c.engine.MarketOrder(c.currentTime, c.symbol, qty, side)
}

// LimitOrder submits a limit order stamped with the current bar time
// and returns its ID.
func (c *Context) LimitOrder(qty int, side sim.Side, limitPrice float64) (int64, error) {
	return c.engine.LimitOrder(c.currentTime, c.symbol, qty, side, limitPrice)
}

// StopOrder submits a stop order stamped with the current bar time and
// returns its ID.
func (c *Context) StopOrder(qty int, side sim.Side, stopPrice float64) (int64, error) {
	return c.engine.StopOrder(c.currentTime, c.symbol, qty, side, stopPrice)
}

// CancelAllOrders clears every pending order on the run's engine.
func (c *Context) CancelAllOrders() {
	c.engine.CancelAll()
}

// Position returns the account's position for the run's symbol, or nil
// if no fill has ever touched it.
func (c *Context) Position() *sim.Position {
	return c.account.Position(c.symbol)
}

// NetQty returns the signed open quantity for the run's symbol, 0 when
// no position exists.
func (c *Context) NetQty() int {
	if pos := c.Position(); pos != nil {
		return pos.NetQty
	}
	return 0
}

// Cash returns the account's current cash balance.
func (c *Context) Cash() float64 { return c.account.Cash }

// Equity returns the account's current equity.
func (c *Context) Equity() float64 { return c.account.Equity }
