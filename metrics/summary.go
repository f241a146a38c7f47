package metrics

import (
	"fmt"
	"math"
	"strings"

	"github.com/rustyeddy/futuresim/sim"
)

// tradingDaysPerYear annualizes Sharpe and Sortino assuming daily bars.
const tradingDaysPerYear = 252.0

// Summary aggregates a backtest's performance statistics.
type Summary struct {
	InitialBalance   float64
	FinalBalance     float64
	TotalReturn      float64
	TotalReturnPct   float64
	CAGR             float64
	MaxDrawdown      float64
	SharpeRatio      float64
	SortinoRatio     float64
	WinRate          float64
	AvgWin           float64
	AvgLoss          float64
	ProfitFactor     float64
	NumTrades        int
	NumWinningTrades int
	NumLosingTrades  int
	LargestWin       float64
	LargestLoss      float64
	Exposure         float64
}

// Summarize computes summary statistics from an equity curve and the
// fill-ordered trade log.
func Summarize(curve []EquityPoint, trades []sim.Fill, initialBalance float64) Summary {
	finalBalance := initialBalance
	if len(curve) > 0 {
		finalBalance = curve[len(curve)-1].Equity
	}

	totalReturn := finalBalance - initialBalance
	totalReturnPct := totalReturn / initialBalance

	var cagr float64
	if len(curve) >= 2 {
		days := curve[len(curve)-1].Timestamp.Sub(curve[0].Timestamp).Hours() / 24
		years := days / 365.25
		if years > 0 {
			cagr = (math.Pow(finalBalance/initialBalance, 1/years) - 1) * 100
		}
	}

	equities := make([]float64, len(curve))
	for i, p := range curve {
		equities[i] = p.Equity
	}
	returns := Returns(equities)

	stats := tradeStatistics(trades)

	return Summary{
		InitialBalance:   initialBalance,
		FinalBalance:     finalBalance,
		TotalReturn:      totalReturn,
		TotalReturnPct:   totalReturnPct,
		CAGR:             cagr,
		MaxDrawdown:      MaxDrawdown(curve),
		SharpeRatio:      sharpeRatio(returns),
		SortinoRatio:     sortinoRatio(returns),
		WinRate:          stats.winRate,
		AvgWin:           stats.avgWin,
		AvgLoss:          stats.avgLoss,
		ProfitFactor:     stats.profitFactor,
		NumTrades:        stats.numTrades,
		NumWinningTrades: stats.numWinning,
		NumLosingTrades:  stats.numLosing,
		LargestWin:       stats.largestWin,
		LargestLoss:      stats.largestLoss,
		Exposure:         exposure(curve, trades),
	}
}

// Render formats the summary as a two-column text table.
func (s Summary) Render() string {
	rows := []struct {
		metric string
		value  string
	}{
		{"Initial Balance", fmt.Sprintf("$%.2f", s.InitialBalance)},
		{"Final Balance", fmt.Sprintf("$%.2f", s.FinalBalance)},
		{"Total Return", fmt.Sprintf("$%.2f (%.2f%%)", s.TotalReturn, s.TotalReturnPct*100)},
		{"CAGR", fmt.Sprintf("%.2f%%", s.CAGR)},
		{"Max Drawdown", fmt.Sprintf("%.2f%%", s.MaxDrawdown*100)},
		{"Sharpe Ratio", fmt.Sprintf("%.3f", s.SharpeRatio)},
		{"Sortino Ratio", fmt.Sprintf("%.3f", s.SortinoRatio)},
		{"Number of Trades", fmt.Sprintf("%d", s.NumTrades)},
		{"Win Rate", fmt.Sprintf("%.2f%%", s.WinRate*100)},
		{"Avg Win", fmt.Sprintf("$%.2f", s.AvgWin)},
		{"Avg Loss", fmt.Sprintf("$%.2f", s.AvgLoss)},
		{"Largest Win", fmt.Sprintf("$%.2f", s.LargestWin)},
		{"Largest Loss", fmt.Sprintf("$%.2f", s.LargestLoss)},
		{"Profit Factor", fmt.Sprintf("%.3f", s.ProfitFactor)},
		{"Exposure", fmt.Sprintf("%.2f%%", s.Exposure*100)},
	}

	width := len("Metric")
	for _, r := range rows {
		if len(r.metric) > width {
			width = len(r.metric)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-*s  %s\n", width, "Metric", "Value")
	fmt.Fprintf(&b, "%s\n", strings.Repeat("-", width+24))
	for _, r := range rows {
		fmt.Fprintf(&b, "%-*s  %s\n", width, r.metric, r.value)
	}
	return b.String()
}

type tradeStats struct {
	numTrades    int
	numWinning   int
	numLosing    int
	winRate      float64
	avgWin       float64
	avgLoss      float64
	profitFactor float64
	largestWin   float64
	largestLoss  float64
}

// tradeStatistics groups the fill log into round trips (a run of
// same-direction entries closed by an opposing fill) and computes
// win/loss statistics over the round-trip P&Ls.
func tradeStatistics(trades []sim.Fill) tradeStats {
	if len(trades) == 0 {
		return tradeStats{}
	}

	var roundTrips []float64
	var open []sim.Fill

	for _, trade := range trades {
		if len(open) == 0 {
			open = append(open, trade)
			continue
		}

		last := open[len(open)-1]
		sameDirection := (last.Qty > 0) == (trade.Qty > 0)
		if sameDirection {
			open = append(open, trade)
			continue
		}

		// Opposing fill closes the run.
		totalQty := 0
		weighted := 0.0
		for _, t := range open {
			q := t.Qty
			if q < 0 {
				q = -q
			}
			totalQty += q
			weighted += t.FillPrice * float64(q)
		}
		avgEntry := weighted / float64(totalQty)

		closeQty := trade.Qty
		if closeQty < 0 {
			closeQty = -closeQty
		}
		if totalQty < closeQty {
			closeQty = totalQty
		}

		var pnl float64
		if open[0].Qty > 0 {
			pnl = (trade.FillPrice - avgEntry) * float64(closeQty)
		} else {
			pnl = (avgEntry - trade.FillPrice) * float64(closeQty)
		}
		roundTrips = append(roundTrips, pnl)

		// A fill larger than the open run reverses into a new one.
		exceedQty := trade.Qty
		if exceedQty < 0 {
			exceedQty = -exceedQty
		}
		open = open[:0]
		if exceedQty > totalQty {
			open = append(open, trade)
		}
	}

	if len(roundTrips) == 0 {
		return tradeStats{}
	}

	var wins, losses []float64
	for _, pnl := range roundTrips {
		switch {
		case pnl > 0:
			wins = append(wins, pnl)
		case pnl < 0:
			losses = append(losses, pnl)
		}
	}

	stats := tradeStats{
		numTrades:  len(roundTrips),
		numWinning: len(wins),
		numLosing:  len(losses),
		winRate:    float64(len(wins)) / float64(len(roundTrips)),
	}

	var totalWins, totalLosses float64
	for _, w := range wins {
		totalWins += w
		if w > stats.largestWin {
			stats.largestWin = w
		}
	}
	for _, l := range losses {
		totalLosses += -l
		if l < stats.largestLoss {
			stats.largestLoss = l
		}
	}

	if len(wins) > 0 {
		stats.avgWin = totalWins / float64(len(wins))
	}
	if len(losses) > 0 {
		stats.avgLoss = -totalLosses / float64(len(losses))
	}

	switch {
	case totalLosses > 0:
		stats.profitFactor = totalWins / totalLosses
	case totalWins > 0:
		stats.profitFactor = math.Inf(1)
	}

	return stats
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// stdDev is the sample standard deviation.
func stdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := mean(xs)
	var sum float64
	for _, x := range xs {
		d := x - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(xs)-1))
}

func sharpeRatio(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	sd := stdDev(returns)
	if sd == 0 {
		return 0
	}
	return mean(returns) / sd * math.Sqrt(tradingDaysPerYear)
}

func sortinoRatio(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	m := mean(returns)

	var downside []float64
	for _, r := range returns {
		if r < 0 {
			downside = append(downside, r)
		}
	}
	if len(downside) == 0 {
		if m > 0 {
			return math.Inf(1)
		}
		return 0
	}

	dd := stdDev(downside)
	if dd == 0 {
		return 0
	}
	return m / dd * math.Sqrt(tradingDaysPerYear)
}

// exposure is the fraction of equity-curve points at which the net
// position, replayed from the trade log, was non-flat.
func exposure(curve []EquityPoint, trades []sim.Fill) float64 {
	if len(curve) < 2 {
		return 0
	}

	inMarket := 0
	netPosition := 0
	tradeIdx := 0

	for _, point := range curve {
		for tradeIdx < len(trades) && !trades[tradeIdx].Timestamp.After(point.Timestamp) {
			netPosition += trades[tradeIdx].Qty
			tradeIdx++
		}
		if netPosition != 0 {
			inMarket++
		}
	}

	return float64(inMarket) / float64(len(curve))
}
