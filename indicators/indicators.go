// Package indicators provides streaming technical indicators computed
// over closed bars. Indicators are deterministic, hold only their own
// state, and are safe to reuse across runs after Reset.
package indicators

import "github.com/rustyeddy/futuresim/market"

// Indicator computes a single streaming value from bars.
type Indicator interface {
	// Name returns a stable identifier like "SMA(20)" or "RSI(14)".
	Name() string

	// Warmup returns how many updates are needed before Ready() can be true.
	Warmup() int

	// Reset clears all internal state.
	Reset()

	// Update consumes the next *closed* bar and updates internal state.
	Update(b market.Bar)

	// Ready reports whether Value() is meaningful (warmup completed).
	Ready() bool

	// Value returns the current indicator value. Callers should always
	// check Ready() first.
	Value() float64
}
