package charts

import (
	"time"

	"github.com/aristath/stockintel/internal/modules/historical"
	"github.com/aristath/stockintel/pkg/formulas"
)

// Indicator windows, in trading days.
const (
	ShortSMAPeriod   = 20
	LongSMAPeriod    = 50
	VolatilityWindow = 20
)

// IndicatorRow is one fully defined row of technical indicators.
type IndicatorRow struct {
	Date        time.Time `json:"date"`
	Close       float64   `json:"close"`
	DailyReturn float64   `json:"daily_return"`
	SMA20       float64   `json:"sma_20"`
	SMA50       float64   `json:"sma_50"`
	Volatility  float64   `json:"volatility"`
}

// ComputeIndicators derives the daily return, the 20 and 50 day simple moving
// averages and the 20 day return volatility of prices (oldest first). Rows
// where any column is still undefined are dropped, so the output starts at
// the 50th close.
func ComputeIndicators(prices []historical.DailyPrice) []IndicatorRow {
	closes := make([]float64, len(prices))
	for i, p := range prices {
		closes[i] = p.Value()
	}

	returns := formulas.PercentChange(closes)
	sma20 := formulas.SMA(closes, ShortSMAPeriod)
	sma50 := formulas.SMA(closes, LongSMAPeriod)
	volatility := formulas.RollingStdDev(returns, VolatilityWindow)

	var rows []IndicatorRow
	for i, p := range prices {
		row := IndicatorRow{
			Date:        p.Date,
			Close:       closes[i],
			DailyReturn: returns[i],
			SMA20:       sma20[i],
			SMA50:       sma50[i],
			Volatility:  volatility[i],
		}
		if !formulas.IsFinite(row.DailyReturn) || !formulas.IsFinite(row.SMA20) ||
			!formulas.IsFinite(row.SMA50) || !formulas.IsFinite(row.Volatility) {
			continue
		}
		rows = append(rows, row)
	}
	return rows
}

// Signal is a moving average crossover recommendation.
type Signal string

const (
	SignalBuy  Signal = "BUY"
	SignalSell Signal = "SELL"
	SignalHold Signal = "HOLD"
)

// TradingSignal compares the short and long moving averages: the short
// average above the long one is a buy, below it a sell.
func TradingSignal(sma20, sma50 float64) Signal {
	switch {
	case sma20 > sma50:
		return SignalBuy
	case sma20 < sma50:
		return SignalSell
	default:
		return SignalHold
	}
}
