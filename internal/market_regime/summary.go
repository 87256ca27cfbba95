package market_regime

import (
	"sort"

	"github.com/aristath/stockintel/pkg/formulas"
)

// RegimeSummary aggregates the rows carrying one label.
type RegimeSummary struct {
	Regime         Label   `json:"regime"`
	Count          int     `json:"count"`
	Share          float64 `json:"share"`
	MeanReturn     float64 `json:"mean_return"`
	MeanVolatility float64 `json:"mean_volatility"`
}

// Summarize groups rows by label, ordered from the calmest regime to the most
// volatile one.
func Summarize(rows []RegimeRow) []RegimeSummary {
	if len(rows) == 0 {
		return nil
	}

	type bucket struct {
		returns    []float64
		volatility []float64
	}
	buckets := make(map[Label]*bucket)
	var order []Label
	for _, r := range rows {
		b, ok := buckets[r.Regime]
		if !ok {
			b = &bucket{}
			buckets[r.Regime] = b
			order = append(order, r.Regime)
		}
		b.returns = append(b.returns, r.Return)
		b.volatility = append(b.volatility, r.Volatility)
	}

	out := make([]RegimeSummary, 0, len(order))
	for _, label := range order {
		b := buckets[label]
		out = append(out, RegimeSummary{
			Regime:         label,
			Count:          len(b.returns),
			Share:          float64(len(b.returns)) / float64(len(rows)),
			MeanReturn:     formulas.Mean(b.returns),
			MeanVolatility: formulas.Mean(b.volatility),
		})
	}

	// Mean volatility ordering matches the label ranks.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].MeanVolatility < out[j].MeanVolatility
	})
	return out
}
