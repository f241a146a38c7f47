package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 1, 2, 9, 30, 0, 0, time.UTC)

func TestMarketOrderFillsAtOpen(t *testing.T) {
	t.Parallel()

	e := NewEngine()
	orderID := e.MarketOrder(t0, "ES", 2, Buy)
	assert.Equal(t, int64(1), orderID)
	assert.Equal(t, 1, e.PendingCount())

	fills := e.Process(5000.25, 5010, 4990)
	require.Len(t, fills, 1)
	assert.Equal(t, int64(1), fills[0].ID)
	assert.Equal(t, orderID, fills[0].OrderID)
	assert.Equal(t, 2, fills[0].Qty)
	assert.InDelta(t, 5000.25, fills[0].FillPrice, 1e-12)
	assert.Zero(t, fills[0].Fees)
	assert.Equal(t, 0, e.PendingCount())
}

func TestLimitOrderRules(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		side       Side
		limitPrice float64
		high, low  float64
		wantFill   bool
	}{
		{"buy fills when low reaches limit", Buy, 100, 105, 99, true},
		{"buy fills when low equals limit", Buy, 100, 105, 100, true},
		{"buy stays pending above limit", Buy, 100, 105, 101, false},
		{"sell fills when high reaches limit", Sell, 104, 105, 95, true},
		{"sell fills when high equals limit", Sell, 105, 105, 95, true},
		{"sell stays pending below limit", Sell, 106, 105, 95, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e := NewEngine()
			_, err := e.LimitOrder(t0, "ES", 1, tt.side, tt.limitPrice)
			require.NoError(t, err)

			fills := e.Process(100, tt.high, tt.low)
			if tt.wantFill {
				require.Len(t, fills, 1)
				assert.InDelta(t, tt.limitPrice, fills[0].FillPrice, 1e-12)
				assert.Equal(t, 0, e.PendingCount())
			} else {
				assert.Empty(t, fills)
				assert.Equal(t, 1, e.PendingCount())
			}
		})
	}
}

func TestStopOrderRules(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		side      Side
		stopPrice float64
		high, low float64
		wantFill  bool
	}{
		{"buy triggers when high reaches stop", Buy, 104, 105, 95, true},
		{"buy stays pending below stop", Buy, 106, 105, 95, false},
		{"sell triggers when low reaches stop", Sell, 96, 105, 95, true},
		{"sell stays pending above stop", Sell, 94, 105, 95, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e := NewEngine()
			_, err := e.StopOrder(t0, "ES", 1, tt.side, tt.stopPrice)
			require.NoError(t, err)

			fills := e.Process(100, tt.high, tt.low)
			if tt.wantFill {
				require.Len(t, fills, 1)
				assert.InDelta(t, tt.stopPrice, fills[0].FillPrice, 1e-12)
			} else {
				assert.Empty(t, fills)
				assert.Equal(t, 1, e.PendingCount())
			}
		})
	}
}

func TestLimitOrderSurvivesUntilTriggered(t *testing.T) {
	t.Parallel()

	e := NewEngine()
	_, err := e.LimitOrder(t0, "ES", 1, Buy, 90)
	require.NoError(t, err)

	// Bars that never reach the limit leave it pending.
	for i := 0; i < 5; i++ {
		assert.Empty(t, e.Process(100, 105, 95))
		assert.Equal(t, 1, e.PendingCount())
	}

	fills := e.Process(100, 105, 89)
	require.Len(t, fills, 1)
	assert.InDelta(t, 90.0, fills[0].FillPrice, 1e-12)
	assert.Equal(t, 0, e.PendingCount())
}

func TestPricelessOrdersRejectedAtConstruction(t *testing.T) {
	t.Parallel()

	e := NewEngine()

	_, err := e.LimitOrder(t0, "ES", 1, Buy, 0)
	assert.ErrorIs(t, err, ErrMissingPrice)

	_, err = e.StopOrder(t0, "ES", 1, Sell, 0)
	assert.ErrorIs(t, err, ErrMissingPrice)

	assert.Equal(t, 0, e.PendingCount())
}

func TestFillsReturnedInSubmissionOrder(t *testing.T) {
	t.Parallel()

	e := NewEngine()
	first := e.MarketOrder(t0, "ES", 1, Buy)
	second, err := e.LimitOrder(t0, "ES", 1, Sell, 101)
	require.NoError(t, err)
	third := e.MarketOrder(t0, "ES", 1, Sell)

	fills := e.Process(100, 105, 95)
	require.Len(t, fills, 3)
	assert.Equal(t, []int64{first, second, third},
		[]int64{fills[0].OrderID, fills[1].OrderID, fills[2].OrderID})

	// Fill IDs increase monotonically, independent of order IDs.
	assert.Equal(t, int64(1), fills[0].ID)
	assert.Equal(t, int64(2), fills[1].ID)
	assert.Equal(t, int64(3), fills[2].ID)
}

func TestFillIDsContinueAcrossProcessCalls(t *testing.T) {
	t.Parallel()

	e := NewEngine()
	e.MarketOrder(t0, "ES", 1, Buy)
	fills := e.Process(100, 105, 95)
	require.Len(t, fills, 1)
	assert.Equal(t, int64(1), fills[0].ID)

	e.MarketOrder(t0, "ES", 1, Sell)
	fills = e.Process(101, 106, 96)
	require.Len(t, fills, 1)
	assert.Equal(t, int64(2), fills[0].ID)
}

func TestCancelAll(t *testing.T) {
	t.Parallel()

	e := NewEngine()
	e.MarketOrder(t0, "ES", 1, Buy)
	_, err := e.LimitOrder(t0, "ES", 1, Buy, 90)
	require.NoError(t, err)
	assert.Equal(t, 2, e.PendingCount())

	e.CancelAll()
	assert.Equal(t, 0, e.PendingCount())
	assert.Empty(t, e.Process(100, 105, 95))
}

func TestEngineCountersAreInstanceLocal(t *testing.T) {
	t.Parallel()

	a := NewEngine()
	a.MarketOrder(t0, "ES", 1, Buy)
	a.MarketOrder(t0, "ES", 1, Buy)

	b := NewEngine()
	assert.Equal(t, int64(1), b.MarketOrder(t0, "ES", 1, Buy))
}

func TestOrderSignedQty(t *testing.T) {
	t.Parallel()

	buy := Order{Qty: 3, Side: Buy}
	sell := Order{Qty: 4, Side: Sell}
	assert.Equal(t, 3, buy.SignedQty())
	assert.Equal(t, -4, sell.SignedQty())
}
