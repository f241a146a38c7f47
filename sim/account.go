package sim

import "github.com/rustyeddy/futuresim/market"

// Account is the ledger for one backtest run. It owns every open
// position, the cash balance, equity, margin usage, and the complete
// trade log. Positions are created lazily on first fill per symbol and
// never removed; a flat position simply has zero quantity.
type Account struct {
	InitialBalance float64
	Cash           float64
	Equity         float64
	MarginUsed     float64
	Positions      map[string]*Position
	TradeLog       []Fill

	CommissionPerContract float64
	SlippagePerContract   float64
}

// NewAccount returns an account funded with the initial balance and
// the given per-contract, per-side transaction costs.
func NewAccount(initialBalance, commissionPerContract, slippagePerContract float64) *Account {
	return &Account{
		InitialBalance:        initialBalance,
		Cash:                  initialBalance,
		Equity:                initialBalance,
		Positions:             make(map[string]*Position),
		CommissionPerContract: commissionPerContract,
		SlippagePerContract:   slippagePerContract,
	}
}

// ApplyFill routes a fill into the ledger: deducts transaction costs
// from cash, applies the fill to the symbol's position (creating it if
// absent), credits the realized P&L back to cash, recomputes margin in
// use, and appends the fill to the trade log, in that fixed order, so
// margin reflects the post-fill position and cash reflects both cost
// and realized gain before any subsequent read. The logged fill carries
// the fees charged.
func (a *Account) ApplyFill(fill Fill, contract market.Contract) {
	qty := absInt(fill.Qty)
	fees := (a.CommissionPerContract + a.SlippagePerContract) * float64(qty)
	a.Cash -= fees

	pos, ok := a.Positions[fill.Symbol]
	if !ok {
		pos = NewPosition(fill.Symbol)
		a.Positions[fill.Symbol] = pos
	}

	realized := pos.ApplyFill(fill.Qty, fill.FillPrice, contract)
	a.Cash += realized

	a.updateMarginUsed(contract)

	fill.Fees = fees
	a.TradeLog = append(a.TradeLog, fill)
}

// MarkToMarket recomputes equity as cash plus the unrealized P&L of
// every position whose symbol appears in both maps. Symbols missing a
// price are excluded from the unrealized sum; there is no fallback
// valuation.
func (a *Account) MarkToMarket(prices map[string]float64, contracts map[string]market.Contract) {
	var unrealized float64
	for symbol, pos := range a.Positions {
		price, okP := prices[symbol]
		contract, okC := contracts[symbol]
		if okP && okC {
			unrealized += pos.UnrealizedPnL(price, contract)
		}
	}
	a.Equity = a.Cash + unrealized
}

func (a *Account) updateMarginUsed(contract market.Contract) {
	a.MarginUsed = 0
	for _, pos := range a.Positions {
		if !pos.IsFlat() {
			a.MarginUsed += contract.InitialMarginRequirement(pos.NetQty)
		}
	}
}

// Position returns the position for a symbol, or nil if none has ever
// been opened.
func (a *Account) Position(symbol string) *Position {
	return a.Positions[symbol]
}

// BuyingPower returns cash minus margin in use.
func (a *Account) BuyingPower() float64 {
	return a.Cash - a.MarginUsed
}

// HasSufficientMargin reports whether buying power covers the given
// margin requirement.
func (a *Account) HasSufficientMargin(requiredMargin float64) bool {
	return a.BuyingPower() >= requiredMargin
}

// IsMarginBreach reports whether equity has fallen below the summed
// maintenance margin requirement of all non-flat positions.
func (a *Account) IsMarginBreach(contracts map[string]market.Contract) bool {
	var maintenance float64
	for symbol, pos := range a.Positions {
		contract, ok := contracts[symbol]
		if ok && !pos.IsFlat() {
			maintenance += contract.MaintenanceMarginRequirement(pos.NetQty)
		}
	}
	return a.Equity < maintenance
}

// TotalRealizedPnL sums realized P&L across all positions.
func (a *Account) TotalRealizedPnL() float64 {
	var total float64
	for _, pos := range a.Positions {
		total += pos.RealizedPnL
	}
	return total
}

// TotalUnrealizedPnL sums unrealized P&L at the given prices over
// symbols present in both maps.
func (a *Account) TotalUnrealizedPnL(prices map[string]float64, contracts map[string]market.Contract) float64 {
	var total float64
	for symbol, pos := range a.Positions {
		price, okP := prices[symbol]
		contract, okC := contracts[symbol]
		if okP && okC {
			total += pos.UnrealizedPnL(price, contract)
		}
	}
	return total
}

// TotalPnL returns realized plus unrealized P&L.
func (a *Account) TotalPnL(prices map[string]float64, contracts map[string]market.Contract) float64 {
	return a.TotalRealizedPnL() + a.TotalUnrealizedPnL(prices, contracts)
}

// TotalReturn returns (equity - initial) / initial.
func (a *Account) TotalReturn() float64 {
	return (a.Equity - a.InitialBalance) / a.InitialBalance
}
