package market_regime

import (
	"math/rand/v2"
	"time"
)

var testStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// regimePrices builds a close series whose daily return volatility switches
// between the given sigmas, segmentLen observations each.
func regimePrices(seed uint64, segmentLen int, sigmas ...float64) []PricePoint {
	rng := rand.New(rand.NewPCG(seed, seed+1))
	prices := []PricePoint{{Date: testStart, Close: 100}}
	for _, sigma := range sigmas {
		for i := 0; i < segmentLen; i++ {
			prev := prices[len(prices)-1]
			prices = append(prices, PricePoint{
				Date:  prev.Date.AddDate(0, 0, 1),
				Close: prev.Close * (1 + rng.NormFloat64()*sigma),
			})
		}
	}
	return prices
}

func constantPrices(n int, close float64) []PricePoint {
	prices := make([]PricePoint, n)
	for i := range prices {
		prices[i] = PricePoint{Date: testStart.AddDate(0, 0, i), Close: close}
	}
	return prices
}

func ptr(v uint64) *uint64 { return &v }
