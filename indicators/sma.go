package indicators

import (
	"fmt"

	"github.com/rustyeddy/futuresim/market"
)

// SMA is a streaming simple moving average over bar closes.
type SMA struct {
	period int
	closes []float64
}

// NewSMA creates a simple moving average with the given period.
func NewSMA(period int) *SMA {
	return &SMA{
		period: period,
		closes: make([]float64, 0, period),
	}
}

func (s *SMA) Name() string {
	return fmt.Sprintf("SMA(%d)", s.period)
}

func (s *SMA) Warmup() int {
	return s.period
}

func (s *SMA) Reset() {
	s.closes = s.closes[:0]
}

func (s *SMA) Update(b market.Bar) {
	s.closes = append(s.closes, b.Close)
	// Keep only the last 'period' closes
	if len(s.closes) > s.period {
		s.closes = s.closes[1:]
	}
}

func (s *SMA) Ready() bool {
	return len(s.closes) >= s.period
}

func (s *SMA) Value() float64 {
	if !s.Ready() {
		return 0
	}

	sum := 0.0
	for _, c := range s.closes {
		sum += c
	}
	return sum / float64(len(s.closes))
}
