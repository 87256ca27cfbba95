package market_regime

import (
	"fmt"
	"math"
	"time"

	"github.com/aristath/stockintel/pkg/formulas"
)

// DefaultVolatilityWindow is the trailing window, in periods, of the rolling
// volatility feature.
const DefaultVolatilityWindow = 20

// PricePoint is one close observation of the classified index.
type PricePoint struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// FeatureRow is a price observation with its derived clustering features.
type FeatureRow struct {
	Date       time.Time `json:"date"`
	Close      float64   `json:"close"`
	Return     float64   `json:"return"`
	Volatility float64   `json:"volatility"`
}

// DeriveFeatures computes the periodic return and the trailing sample standard
// deviation of returns over window periods.
//
// Row t is kept only when its return and every return in t-window+1..t are
// defined, so the first window rows are always dropped. Input order is kept.
func DeriveFeatures(prices []PricePoint, window int) ([]FeatureRow, error) {
	if window < 2 {
		return nil, fmt.Errorf("%w: volatility window must be at least 2, got %d", ErrInvalidPrices, window)
	}
	if len(prices) <= window {
		return nil, fmt.Errorf("%w: %d prices do not fill a %d-period volatility window", ErrInsufficientData, len(prices), window)
	}

	closes := make([]float64, len(prices))
	for i, p := range prices {
		if !formulas.IsFinite(p.Close) {
			return nil, fmt.Errorf("%w: close at row %d is not finite", ErrInvalidPrices, i)
		}
		if i > 0 && p.Date.Before(prices[i-1].Date) {
			return nil, fmt.Errorf("%w: row %d (%s) precedes row %d", ErrInvalidPrices, i, p.Date.Format("2006-01-02"), i-1)
		}
		closes[i] = p.Close
	}

	returns := formulas.PercentChange(closes)
	volatility := formulas.RollingStdDev(returns, window)

	rows := make([]FeatureRow, 0, len(prices)-window)
	for i, p := range prices {
		if math.IsNaN(returns[i]) || math.IsNaN(volatility[i]) {
			continue
		}
		rows = append(rows, FeatureRow{
			Date:       p.Date,
			Close:      p.Close,
			Return:     returns[i],
			Volatility: volatility[i],
		})
	}
	return rows, nil
}
