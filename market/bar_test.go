package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBarValidation(t *testing.T) {
	t.Parallel()

	ts := time.Date(2025, 1, 2, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name                         string
		open, high, low, closeP, vol float64
		wantErr                      error
	}{
		{"valid", 100, 105, 95, 102, 1000, nil},
		{"valid flat bar", 100, 100, 100, 100, 0, nil},
		{"high below low", 100, 95, 105, 102, 1000, ErrHighBelowLow},
		{"open above high", 106, 105, 95, 102, 1000, ErrOpenOutOfRange},
		{"open below low", 94, 105, 95, 102, 1000, ErrOpenOutOfRange},
		{"close above high", 100, 105, 95, 106, 1000, ErrCloseOutOfRange},
		{"close below low", 100, 105, 95, 94, 1000, ErrCloseOutOfRange},
		{"negative volume", 100, 105, 95, 102, -1, ErrNegativeVolume},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b, err := NewBar(ts, tt.open, tt.high, tt.low, tt.closeP, tt.vol, nil, "ES")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "ES", b.Symbol)
			assert.Equal(t, ts, b.Timestamp)
		})
	}
}

func TestNewBarUncheckedSkipsValidation(t *testing.T) {
	t.Parallel()

	// Deliberately malformed; the unchecked constructor must accept it.
	b := NewBarUnchecked(time.Now(), 100, 90, 110, 120, -5, nil, "NQ")
	assert.Equal(t, 90.0, b.High)
	assert.Equal(t, -5.0, b.Volume)
}

func TestBarDerivedPrices(t *testing.T) {
	t.Parallel()

	b, err := NewBar(time.Now(), 100, 110, 90, 104, 500, nil, "ES")
	require.NoError(t, err)

	assert.InDelta(t, (110.0+90.0+104.0)/3.0, b.TypicalPrice(), 1e-12)
	assert.InDelta(t, 100.0, b.MidPrice(), 1e-12)
	assert.InDelta(t, 20.0, b.Range(), 1e-12)
}

func TestBarOpenInterest(t *testing.T) {
	t.Parallel()

	oi := 12345.0
	b, err := NewBar(time.Now(), 100, 105, 95, 102, 1000, &oi, "ES")
	require.NoError(t, err)
	require.NotNil(t, b.OpenInterest)
	assert.Equal(t, 12345.0, *b.OpenInterest)
}
