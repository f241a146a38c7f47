package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/futuresim/market"
)

func esMaps() (map[string]float64, map[string]market.Contract) {
	return map[string]float64{"ES": 5000},
		map[string]market.Contract{"ES": market.ES("2025-03")}
}

func buyFill(id int64, qty int, price float64) Fill {
	return Fill{ID: id, OrderID: id, Symbol: "ES", Qty: qty, Side: Buy, FillPrice: price}
}

func sellFill(id int64, qty int, price float64) Fill {
	return Fill{ID: id, OrderID: id, Symbol: "ES", Qty: -qty, Side: Sell, FillPrice: price}
}

func TestAccountApplyFillChargesFeesAndOpensPosition(t *testing.T) {
	t.Parallel()

	es := market.ES("2025-03")
	a := NewAccount(100000, 2.5, 1.0)

	a.ApplyFill(buyFill(1, 2, 5000), es)

	// 2 contracts * (2.50 + 1.00) per contract.
	assert.InDelta(t, 100000-7.0, a.Cash, 1e-9)
	require.NotNil(t, a.Position("ES"))
	assert.Equal(t, 2, a.Position("ES").NetQty)
	assert.InDelta(t, es.InitialMarginRequirement(2), a.MarginUsed, 1e-9)

	require.Len(t, a.TradeLog, 1)
	assert.InDelta(t, 7.0, a.TradeLog[0].Fees, 1e-9)
}

func TestAccountRoundTrip(t *testing.T) {
	t.Parallel()

	es := market.ES("2025-03")
	a := NewAccount(100000, 2.5, 1.0)

	a.ApplyFill(buyFill(1, 1, 5000), es)
	a.ApplyFill(sellFill(2, 1, 5010), es)

	// 10 points = 40 ticks = $500 realized, minus two sides of fees.
	fees := 2 * (2.5 + 1.0)
	assert.InDelta(t, 100000+500-fees, a.Cash, 1e-9)
	assert.InDelta(t, 500.0, a.TotalRealizedPnL(), 1e-9)
	assert.Zero(t, a.MarginUsed)
	assert.True(t, a.Position("ES").IsFlat())

	// After marking with a flat book, equity equals cash exactly.
	prices, contracts := esMaps()
	a.MarkToMarket(prices, contracts)
	assert.InDelta(t, a.Cash, a.Equity, 1e-9)
	assert.InDelta(t, (a.Equity-100000)/100000, a.TotalReturn(), 1e-12)
}

func TestAccountMarkToMarket(t *testing.T) {
	t.Parallel()

	es := market.ES("2025-03")
	a := NewAccount(100000, 0, 0)
	a.ApplyFill(buyFill(1, 2, 5000), es)

	prices := map[string]float64{"ES": 5005}
	contracts := map[string]market.Contract{"ES": es}
	a.MarkToMarket(prices, contracts)

	// 5 points * 2 contracts = $500 unrealized.
	assert.InDelta(t, 100500.0, a.Equity, 1e-9)
	assert.InDelta(t, 500.0, a.TotalUnrealizedPnL(prices, contracts), 1e-9)
	assert.InDelta(t, 500.0, a.TotalPnL(prices, contracts), 1e-9)
}

func TestAccountMarkToMarketSkipsSymbolsWithoutPrice(t *testing.T) {
	t.Parallel()

	es := market.ES("2025-03")
	a := NewAccount(100000, 0, 0)
	a.ApplyFill(buyFill(1, 2, 5000), es)

	// No price for ES: the open position contributes nothing.
	a.MarkToMarket(map[string]float64{}, map[string]market.Contract{"ES": es})
	assert.InDelta(t, a.Cash, a.Equity, 1e-9)
}

func TestAccountBuyingPowerAndMarginChecks(t *testing.T) {
	t.Parallel()

	es := market.ES("2025-03")
	a := NewAccount(100000, 0, 0)
	a.ApplyFill(buyFill(1, 2, 5000), es)

	wantBP := a.Cash - es.InitialMarginRequirement(2)
	assert.InDelta(t, wantBP, a.BuyingPower(), 1e-9)
	assert.True(t, a.HasSufficientMargin(wantBP))
	assert.False(t, a.HasSufficientMargin(wantBP+1))
}

func TestAccountMarginBreachToggles(t *testing.T) {
	t.Parallel()

	es := market.ES("2025-03")
	a := NewAccount(30000, 0, 0)
	a.ApplyFill(buyFill(1, 2, 5000), es)
	contracts := map[string]market.Contract{"ES": es}

	// Maintenance for 2 ES contracts is 24000. A deep adverse move
	// drags equity below it; recovery clears the breach.
	a.MarkToMarket(map[string]float64{"ES": 4900}, contracts) // -$10000
	assert.True(t, a.IsMarginBreach(contracts))

	a.MarkToMarket(map[string]float64{"ES": 5000}, contracts)
	assert.False(t, a.IsMarginBreach(contracts))
}

func TestAccountPositionNilForUnknownSymbol(t *testing.T) {
	t.Parallel()

	a := NewAccount(100000, 0, 0)
	assert.Nil(t, a.Position("NQ"))
}
