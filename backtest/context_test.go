package backtest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/futuresim/market"
	"github.com/rustyeddy/futuresim/sim"
)

func barAt(t *testing.T, i int, open, high, low, closeP float64) market.Bar {
	t.Helper()
	ts := time.Date(2025, 1, 2, 9, 30, 0, 0, time.UTC).Add(time.Duration(i) * time.Minute)
	b, err := market.NewBar(ts, open, high, low, closeP, 1000, nil, "ES")
	require.NoError(t, err)
	return b
}

func newTestContext(t *testing.T, lookback int) *Context {
	t.Helper()
	engine := sim.NewEngine()
	account := sim.NewAccount(100000, 0, 0)
	return NewContext("ES", lookback, engine, account)
}

func TestContextBarHistoryOrdering(t *testing.T) {
	t.Parallel()

	ctx := newTestContext(t, 10)
	for i := 0; i < 5; i++ {
		ctx.PushBar(barAt(t, i, 100+float64(i), 101+float64(i), 99+float64(i), 100.5+float64(i)))
	}

	assert.Equal(t, 5, ctx.BarCount())

	last, ok := ctx.LastBar()
	require.True(t, ok)
	assert.InDelta(t, 104.0, last.Open, 1e-12)
	assert.Equal(t, last.Timestamp, ctx.CurrentTime())

	closes := ctx.ClosePrices(3)
	assert.Equal(t, []float64{102.5, 103.5, 104.5}, closes)

	// Asking for more bars than exist returns everything.
	assert.Len(t, ctx.Bars(100), 5)
	assert.Len(t, ctx.AllBars(), 5)
}

func TestContextWindowEvictsOldest(t *testing.T) {
	t.Parallel()

	ctx := newTestContext(t, 3)
	for i := 0; i < 7; i++ {
		ctx.PushBar(barAt(t, i, 100+float64(i), 101+float64(i), 99+float64(i), 100.5+float64(i)))
	}

	// Capacity bounds history: only bars 4, 5, 6 remain, oldest first.
	assert.Equal(t, 3, ctx.BarCount())
	bars := ctx.AllBars()
	require.Len(t, bars, 3)
	assert.InDelta(t, 104.0, bars[0].Open, 1e-12)
	assert.InDelta(t, 106.0, bars[2].Open, 1e-12)
}

func TestContextEmptyHistory(t *testing.T) {
	t.Parallel()

	ctx := newTestContext(t, 10)
	_, ok := ctx.LastBar()
	assert.False(t, ok)
	assert.Empty(t, ctx.ClosePrices(5))
	assert.Equal(t, 0, ctx.BarCount())
}

func TestContextOrderSubmissionAndAccountReads(t *testing.T) {
	t.Parallel()

	engine := sim.NewEngine()
	account := sim.NewAccount(100000, 0, 0)
	ctx := NewContext("ES", 10, engine, account)
	ctx.PushBar(barAt(t, 0, 100, 102, 99, 101))

	orderID := ctx.MarketOrder(2, sim.Buy)
	assert.Equal(t, int64(1), orderID)

	_, err := ctx.LimitOrder(1, sim.Sell, 0)
	assert.ErrorIs(t, err, sim.ErrMissingPrice)

	stopID, err := ctx.StopOrder(1, sim.Sell, 95)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stopID)

	assert.Nil(t, ctx.Position())
	assert.Equal(t, 0, ctx.NetQty())
	assert.InDelta(t, 100000.0, ctx.Cash(), 1e-9)
	assert.InDelta(t, 100000.0, ctx.Equity(), 1e-9)
	assert.Equal(t, "ES", ctx.Symbol())

	ctx.CancelAllOrders()
	assert.Equal(t, 0, engine.PendingCount())
}
