// Package metrics turns a backtest's raw equity history and trade log
// into an enriched equity curve and aggregate performance statistics.
// It consumes the simulation core's output and implements no
// simulation logic of its own.
package metrics

import "time"

// EquityPoint is one point of the enriched equity curve.
type EquityPoint struct {
	Timestamp time.Time
	Equity    float64
	Drawdown  float64 // fractional decline from the running peak
	Return    float64 // fractional change from the previous point
}

// BuildEquityCurve converts a raw (timestamp, equity) series into an
// equity curve with running-peak drawdowns and period returns. The
// peak starts at the initial balance, and the first point's return
// is 0. The two slices must be the same length.
func BuildEquityCurve(timestamps []time.Time, equities []float64, initialBalance float64) []EquityPoint {
	curve := make([]EquityPoint, 0, len(timestamps))
	peak := initialBalance
	prev := initialBalance

	for i := range timestamps {
		equity := equities[i]
		if equity > peak {
			peak = equity
		}

		var drawdown float64
		if peak > 0 {
			drawdown = (peak - equity) / peak
		}

		var ret float64
		if i > 0 {
			ret = (equity - prev) / prev
		}

		curve = append(curve, EquityPoint{
			Timestamp: timestamps[i],
			Equity:    equity,
			Drawdown:  drawdown,
			Return:    ret,
		})
		prev = equity
	}

	return curve
}

// MaxDrawdown returns the largest drawdown observed in the curve.
func MaxDrawdown(curve []EquityPoint) float64 {
	var maxDD float64
	for _, p := range curve {
		if p.Drawdown > maxDD {
			maxDD = p.Drawdown
		}
	}
	return maxDD
}

// Returns computes the period-to-period fractional returns of an
// equity series. A series shorter than two points has no returns.
func Returns(equities []float64) []float64 {
	if len(equities) < 2 {
		return nil
	}
	out := make([]float64, 0, len(equities)-1)
	for i := 1; i < len(equities); i++ {
		out = append(out, (equities[i]-equities[i-1])/equities[i-1])
	}
	return out
}
