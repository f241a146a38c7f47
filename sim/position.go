package sim

import "github.com/rustyeddy/futuresim/market"

// Position is the per-symbol ledger entry: net signed quantity,
// volume-weighted average entry price, and cumulative realized P&L.
// Invariant: AvgEntryPrice is 0 whenever NetQty is 0.
type Position struct {
	Symbol        string
	NetQty        int
	AvgEntryPrice float64
	RealizedPnL   float64
}

// NewPosition returns a flat position for the symbol.
func NewPosition(symbol string) *Position {
	return &Position{Symbol: symbol}
}

// IsFlat reports whether the position has no open quantity.
func (p *Position) IsFlat() bool { return p.NetQty == 0 }

// IsLong reports whether net quantity is positive.
func (p *Position) IsLong() bool { return p.NetQty > 0 }

// IsShort reports whether net quantity is negative.
func (p *Position) IsShort() bool { return p.NetQty < 0 }

// ApplyFill updates the position with a signed fill quantity at the
// given price and returns the realized P&L from this fill.
//
// A fill in the position's direction blends the average entry price and
// realizes nothing. A fill against the position closes
// min(|fill|, |net|) contracts against the pre-fill average price,
// accumulating the realized P&L; if the fill is larger than the
// position, the excess opens a new position at the fill price.
func (p *Position) ApplyFill(fillQty int, fillPrice float64, contract market.Contract) float64 {
	if p.NetQty == 0 {
		p.NetQty = fillQty
		p.AvgEntryPrice = fillPrice
		return 0
	}

	sameDirection := (p.NetQty > 0) == (fillQty > 0)
	if sameDirection {
		totalQty := p.NetQty + fillQty
		totalCost := p.AvgEntryPrice*float64(p.NetQty) + fillPrice*float64(fillQty)
		p.AvgEntryPrice = totalCost / float64(totalQty)
		p.NetQty = totalQty
		return 0
	}

	// Reduction or reversal.
	closeQty := min(absInt(fillQty), absInt(p.NetQty))

	var priceDiff float64
	if p.NetQty > 0 {
		priceDiff = fillPrice - p.AvgEntryPrice
	} else {
		priceDiff = p.AvgEntryPrice - fillPrice
	}

	realized := contract.PnLFromPriceMove(priceDiff, closeQty)
	p.RealizedPnL += realized

	p.NetQty += fillQty

	// Reversed: the excess opened a new position at the fill price.
	if (p.NetQty > 0 && fillQty > 0) || (p.NetQty < 0 && fillQty < 0) {
		p.AvgEntryPrice = fillPrice
	}
	if p.NetQty == 0 {
		p.AvgEntryPrice = 0
	}

	return realized
}

// UnrealizedPnL returns the mark-to-market P&L at the current price,
// or 0 when flat.
func (p *Position) UnrealizedPnL(currentPrice float64, contract market.Contract) float64 {
	if p.NetQty == 0 {
		return 0
	}
	return contract.PnLFromPriceMove(currentPrice-p.AvgEntryPrice, p.NetQty)
}

// NotionalValue returns the position's notional dollar value at the
// current price.
func (p *Position) NotionalValue(currentPrice float64, contract market.Contract) float64 {
	return contract.NotionalValue(currentPrice, p.NetQty)
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
