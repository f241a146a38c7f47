// Package sim contains the simulation core: the order-matching engine
// that resolves orders against bar ranges, and the position/account
// ledger that turns fills into P&L, margin usage, and cash.
package sim

import (
	"errors"
	"fmt"
	"time"
)

// ErrMissingPrice is returned when a limit or stop order is constructed
// without its required price. This is a caller bug, caught at
// construction time; the engine never tolerates a priceless order.
var ErrMissingPrice = errors.New("order missing required price")

// Side is the order direction.
type Side int8

const (
	Buy  Side = +1
	Sell Side = -1
)

// Sign returns +1 for Buy, -1 for Sell.
func (s Side) Sign() int {
	return int(s)
}

func (s Side) String() string {
	switch s {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	}
	return fmt.Sprintf("Side(%d)", int8(s))
}

// OrderType selects the matching rule for an order.
type OrderType int8

const (
	Market OrderType = iota
	Limit
	Stop
)

func (t OrderType) String() string {
	switch t {
	case Market:
		return "MARKET"
	case Limit:
		return "LIMIT"
	case Stop:
		return "STOP"
	}
	return fmt.Sprintf("OrderType(%d)", int8(t))
}

// Order is a single submitted order. Orders are immutable once
// submitted; the engine only removes them from its pending set when
// they fill or are cancelled.
type Order struct {
	ID         int64
	Timestamp  time.Time
	Symbol     string
	Qty        int // unsigned contract count
	Side       Side
	Type       OrderType
	LimitPrice float64 // meaningful only for Limit orders
	StopPrice  float64 // meaningful only for Stop orders
}

// SignedQty returns qty signed by side: positive for Buy, negative for
// Sell.
func (o Order) SignedQty() int {
	return o.Qty * o.Side.Sign()
}

// Fill is the executed result of an order. Fills are immutable and are
// appended to the account's trade log in processing order.
type Fill struct {
	ID        int64
	OrderID   int64
	Timestamp time.Time
	Symbol    string
	Qty       int // signed: positive long, negative short
	Side      Side
	FillPrice float64
	Fees      float64 // commission + slippage, set by the ledger
}

// fillFromOrder builds a fill for the full order quantity. The engine
// always emits zero-fee fills; fee attribution happens in the ledger.
func fillFromOrder(fillID int64, o Order, fillPrice float64) Fill {
	return Fill{
		ID:        fillID,
		OrderID:   o.ID,
		Timestamp: o.Timestamp,
		Symbol:    o.Symbol,
		Qty:       o.SignedQty(),
		Side:      o.Side,
		FillPrice: fillPrice,
		Fees:      0,
	}
}

// NotionalValue returns the notional dollar value of the fill for the
// given contract multiplier.
func (f Fill) NotionalValue(multiplier float64) float64 {
	qty := f.Qty
	if qty < 0 {
		qty = -qty
	}
	return f.FillPrice * multiplier * float64(qty)
}
