package indicators

import (
	"fmt"

	"github.com/rustyeddy/futuresim/market"
)

// RSI is a streaming Relative Strength Index over bar closes. It uses
// the simple mean of gains and losses across the last 'period' changes
// rather than Wilder smoothing.
type RSI struct {
	period    int
	prevClose float64
	haveClose bool
	changes   []float64
}

// NewRSI creates an RSI with the given lookback period.
func NewRSI(period int) *RSI {
	return &RSI{
		period:  period,
		changes: make([]float64, 0, period),
	}
}

func (r *RSI) Name() string {
	return fmt.Sprintf("RSI(%d)", r.period)
}

// Warmup is period+1 bars: one to seed the previous close, then
// 'period' changes.
func (r *RSI) Warmup() int {
	return r.period + 1
}

func (r *RSI) Reset() {
	r.prevClose = 0
	r.haveClose = false
	r.changes = r.changes[:0]
}

func (r *RSI) Update(b market.Bar) {
	if !r.haveClose {
		r.prevClose = b.Close
		r.haveClose = true
		return
	}

	r.changes = append(r.changes, b.Close-r.prevClose)
	if len(r.changes) > r.period {
		r.changes = r.changes[1:]
	}
	r.prevClose = b.Close
}

func (r *RSI) Ready() bool {
	return len(r.changes) >= r.period
}

func (r *RSI) Value() float64 {
	if !r.Ready() {
		return 0
	}

	var gains, losses float64
	for _, ch := range r.changes {
		if ch > 0 {
			gains += ch
		} else {
			losses += -ch
		}
	}

	avgGain := gains / float64(r.period)
	avgLoss := losses / float64(r.period)

	if avgLoss == 0 {
		return 100
	}

	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}
