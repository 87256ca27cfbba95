package testing

import (
	"math"
	"time"

	"github.com/aristath/stockintel/internal/modules/historical"
)

// FixtureStart is the first date of every generated series
var FixtureStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// OscillatingPrices returns n consecutive daily closes around base. The
// series is smooth but never constant, so returns and volatility are defined.
func OscillatingPrices(n int, base, amplitude, period, drift float64) []historical.DailyPrice {
	prices := make([]historical.DailyPrice, n)
	for i := range prices {
		x := float64(i)
		closePrice := base + amplitude*math.Sin(x/period) + drift*x
		prices[i] = historical.DailyPrice{
			Date:   FixtureStart.AddDate(0, 0, i),
			Open:   closePrice,
			High:   closePrice,
			Low:    closePrice,
			Close:  closePrice,
			Volume: 1_000_000,
		}
	}
	return prices
}

// DefaultBasket returns two seeded symbols with n days each
func DefaultBasket(n int) map[string][]historical.DailyPrice {
	return map[string][]historical.DailyPrice{
		"AAPL": OscillatingPrices(n, 180, 5, 3, 0.2),
		"MSFT": OscillatingPrices(n, 370, 8, 5, -0.1),
	}
}
