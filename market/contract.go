package market

// Contract is a futures contract specification. It carries the tick
// economics and margin requirements for one symbol and exposes only
// pure functions; it holds no mutable state.
type Contract struct {
	Symbol            string
	ContractMonth     string
	TickSize          float64
	TickValue         float64
	PointValue        float64
	Exchange          string
	Currency          string
	Multiplier        float64
	InitialMargin     float64
	MaintenanceMargin float64
}

// PriceToTicks converts a price difference into tick counts.
func (c Contract) PriceToTicks(priceDiff float64) float64 {
	return priceDiff / c.TickSize
}

// PnLFromPriceMove converts a price move into dollar P&L for the given
// signed contract quantity. priceDiff is exit-entry for a long.
func (c Contract) PnLFromPriceMove(priceDiff float64, qty int) float64 {
	return c.PriceToTicks(priceDiff) * c.TickValue * float64(qty)
}

// NotionalValue returns the notional dollar value of qty contracts at
// the given price.
func (c Contract) NotionalValue(price float64, qty int) float64 {
	return price * c.Multiplier * float64(absInt(qty))
}

// InitialMarginRequirement returns the initial margin required to open
// qty contracts.
func (c Contract) InitialMarginRequirement(qty int) float64 {
	return c.InitialMargin * float64(absInt(qty))
}

// MaintenanceMarginRequirement returns the maintenance margin required
// to keep qty contracts open.
func (c Contract) MaintenanceMarginRequirement(qty int) float64 {
	return c.MaintenanceMargin * float64(absInt(qty))
}

// ES returns an E-mini S&P 500 contract for the given month.
func ES(contractMonth string) Contract {
	return Contract{
		Symbol:            "ES",
		ContractMonth:     contractMonth,
		TickSize:          0.25,
		TickValue:         12.50,
		PointValue:        50.0,
		Exchange:          "CME",
		Currency:          "USD",
		Multiplier:        50.0,
		InitialMargin:     13000.0,
		MaintenanceMargin: 12000.0,
	}
}

// NQ returns an E-mini Nasdaq-100 contract for the given month.
func NQ(contractMonth string) Contract {
	return Contract{
		Symbol:            "NQ",
		ContractMonth:     contractMonth,
		TickSize:          0.25,
		TickValue:         5.0,
		PointValue:        20.0,
		Exchange:          "CME",
		Currency:          "USD",
		Multiplier:        20.0,
		InitialMargin:     17000.0,
		MaintenanceMargin: 15500.0,
	}
}

// ContractParams are the user-supplied fields for a custom contract.
// Zero optional values fall back to sensible defaults.
type ContractParams struct {
	Symbol            string
	ContractMonth     string
	TickSize          float64
	TickValue         float64
	PointValue        float64 // 0 -> TickValue/TickSize
	InitialMargin     float64 // 0 -> 10000
	MaintenanceMargin float64 // 0 -> 0.8 * InitialMargin
}

// ContractFromParams builds a custom contract, filling defaults: point
// value = tick value / tick size, initial margin 10000, maintenance
// margin 80% of initial. The multiplier equals the point value.
func ContractFromParams(p ContractParams) Contract {
	pointValue := p.PointValue
	if pointValue == 0 {
		pointValue = p.TickValue / p.TickSize
	}
	initialMargin := p.InitialMargin
	if initialMargin == 0 {
		initialMargin = 10000.0
	}
	maintenanceMargin := p.MaintenanceMargin
	if maintenanceMargin == 0 {
		maintenanceMargin = initialMargin * 0.8
	}

	return Contract{
		Symbol:            p.Symbol,
		ContractMonth:     p.ContractMonth,
		TickSize:          p.TickSize,
		TickValue:         p.TickValue,
		PointValue:        pointValue,
		Exchange:          "UNKNOWN",
		Currency:          "USD",
		Multiplier:        pointValue,
		InitialMargin:     initialMargin,
		MaintenanceMargin: maintenanceMargin,
	}
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
