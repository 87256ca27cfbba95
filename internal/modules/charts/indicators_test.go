package charts

import (
	"testing"
	"time"

	"github.com/aristath/stockintel/internal/modules/historical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var chartStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// linearPrices returns n closes rising by step each day from base.
func linearPrices(n int, base, step float64) []historical.DailyPrice {
	prices := make([]historical.DailyPrice, n)
	for i := range prices {
		prices[i] = historical.DailyPrice{
			Date:  chartStart.AddDate(0, 0, i),
			Close: base + step*float64(i),
		}
	}
	return prices
}

func TestComputeIndicators_DropsUndefinedRows(t *testing.T) {
	prices := linearPrices(60, 100, 1)
	rows := ComputeIndicators(prices)

	require.Len(t, rows, 60-LongSMAPeriod+1)
	assert.Equal(t, prices[LongSMAPeriod-1].Date, rows[0].Date)
	assert.Equal(t, prices[59].Date, rows[len(rows)-1].Date)
}

func TestComputeIndicators_Values(t *testing.T) {
	prices := linearPrices(60, 100, 1)
	rows := ComputeIndicators(prices)
	require.NotEmpty(t, rows)

	// Close at index 49 is 149; the mean of a linear run is its midpoint.
	first := rows[0]
	assert.InDelta(t, 149, first.Close, 1e-9)
	assert.InDelta(t, 149.0/148-1, first.DailyReturn, 1e-12)
	assert.InDelta(t, (130+149)/2.0, first.SMA20, 1e-9)
	assert.InDelta(t, (100+149)/2.0, first.SMA50, 1e-9)
	assert.Greater(t, first.Volatility, 0.0)
}

func TestComputeIndicators_ShortSeries(t *testing.T) {
	assert.Empty(t, ComputeIndicators(linearPrices(LongSMAPeriod-1, 100, 1)))
	assert.Empty(t, ComputeIndicators(nil))
}

func TestComputeIndicators_PrefersAdjustedClose(t *testing.T) {
	prices := linearPrices(55, 100, 1)
	for i := range prices {
		prices[i].AdjClose = prices[i].Close / 2
	}
	rows := ComputeIndicators(prices)
	require.NotEmpty(t, rows)
	assert.InDelta(t, 74.5, rows[0].Close, 1e-9)
}

func TestTradingSignal(t *testing.T) {
	tests := []struct {
		sma20, sma50 float64
		want         Signal
	}{
		{110, 100, SignalBuy},
		{90, 100, SignalSell},
		{100, 100, SignalHold},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TradingSignal(tt.sma20, tt.sma50))
	}
}
