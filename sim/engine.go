package sim

import "time"

// Engine is the order-matching engine. It owns the pending order set
// and converts bar OHLC ranges into fills. It is a pure price-discovery
// component: it knows nothing about accounts and always emits zero-fee
// fills.
//
// Order and fill IDs are strictly increasing per Engine instance,
// starting at 1, with independent counters. A new Engine always starts
// its counters fresh; nothing is process-global.
//
// An Engine is not safe for concurrent use. One backtest run owns one
// Engine.
type Engine struct {
	nextOrderID int64
	nextFillID  int64
	pending     []Order
}

// NewEngine returns an empty matching engine with fresh ID counters.
func NewEngine() *Engine {
	return &Engine{
		nextOrderID: 1,
		nextFillID:  1,
	}
}

// Submit adds an order to the pending set and returns its ID. The
// order must carry an ID already assigned by this engine's
// constructors; Submit exists so callers can build orders explicitly.
func (e *Engine) Submit(o Order) int64 {
	e.pending = append(e.pending, o)
	return o.ID
}

// MarketOrder creates and submits a market order, returning its ID.
func (e *Engine) MarketOrder(ts time.Time, symbol string, qty int, side Side) int64 {
	o := Order{
		ID:        e.nextOrderID,
		Timestamp: ts,
		Symbol:    symbol,
		Qty:       qty,
		Side:      side,
		Type:      Market,
	}
	e.nextOrderID++
	return e.Submit(o)
}

// LimitOrder creates and submits a limit order, returning its ID.
// A zero limit price is a construction error.
func (e *Engine) LimitOrder(ts time.Time, symbol string, qty int, side Side, limitPrice float64) (int64, error) {
	if limitPrice == 0 {
		return 0, ErrMissingPrice
	}
	o := Order{
		ID:         e.nextOrderID,
		Timestamp:  ts,
		Symbol:     symbol,
		Qty:        qty,
		Side:       side,
		Type:       Limit,
		LimitPrice: limitPrice,
	}
	e.nextOrderID++
	return e.Submit(o), nil
}

// StopOrder creates and submits a stop order, returning its ID.
// A zero stop price is a construction error.
func (e *Engine) StopOrder(ts time.Time, symbol string, qty int, side Side, stopPrice float64) (int64, error) {
	if stopPrice == 0 {
		return 0, ErrMissingPrice
	}
	o := Order{
		ID:        e.nextOrderID,
		Timestamp: ts,
		Symbol:    symbol,
		Qty:       qty,
		Side:      side,
		Type:      Stop,
		StopPrice: stopPrice,
	}
	e.nextOrderID++
	return e.Submit(o), nil
}

// Process resolves every pending order against one bar's range and
// returns the resulting fills in submission order. Market orders fill
// unconditionally at barOpen (the driver passes the *next* bar's open,
// never the bar that produced the order). Limit and stop orders fill at
// their own price when the range reaches it, otherwise they survive to
// the next call. There are no partial fills.
func (e *Engine) Process(barOpen, barHigh, barLow float64) []Fill {
	var fills []Fill
	var keep []Order

	for _, o := range e.pending {
		switch o.Type {
		case Market:
			fills = append(fills, e.emit(o, barOpen))

		case Limit:
			// Limit buy: low reached the limit. Limit sell: high reached it.
			filled := false
			switch o.Side {
			case Buy:
				filled = barLow <= o.LimitPrice
			case Sell:
				filled = barHigh >= o.LimitPrice
			}
			if filled {
				fills = append(fills, e.emit(o, o.LimitPrice))
			} else {
				keep = append(keep, o)
			}

		case Stop:
			// Stop buy triggers on high >= stop; stop sell on low <= stop.
			// Once triggered, fills at the stop price.
			triggered := false
			switch o.Side {
			case Buy:
				triggered = barHigh >= o.StopPrice
			case Sell:
				triggered = barLow <= o.StopPrice
			}
			if triggered {
				fills = append(fills, e.emit(o, o.StopPrice))
			} else {
				keep = append(keep, o)
			}
		}
	}

	e.pending = keep
	return fills
}

func (e *Engine) emit(o Order, price float64) Fill {
	f := fillFromOrder(e.nextFillID, o, price)
	e.nextFillID++
	return f
}

// CancelAll unconditionally clears the pending order set.
func (e *Engine) CancelAll() {
	e.pending = nil
}

// PendingCount returns the number of pending orders.
func (e *Engine) PendingCount() int {
	return len(e.pending)
}
