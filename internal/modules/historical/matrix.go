package historical

import (
	"fmt"
	"sort"
	"time"

	"github.com/aristath/stockintel/internal/market_regime"
	"github.com/aristath/stockintel/internal/modules/optimization"
	"github.com/aristath/stockintel/pkg/formulas"
)

// AlignCloses inner-joins the series on date and returns, for every date
// present in all of them, one row of closes in symbols order.
func AlignCloses(series map[string][]DailyPrice, symbols []string) ([]time.Time, [][]float64, error) {
	if len(symbols) == 0 {
		return nil, nil, fmt.Errorf("%w: no symbols requested", optimization.ErrInsufficientData)
	}

	byDate := make(map[int64][]float64)
	present := make(map[int64]int)
	for col, symbol := range symbols {
		prices := series[symbol]
		if len(prices) == 0 {
			return nil, nil, fmt.Errorf("%w: %s: %v", optimization.ErrInsufficientData, symbol, errNoPrices)
		}
		for _, p := range prices {
			key := truncateDay(p.Date).Unix()
			row, ok := byDate[key]
			if !ok {
				row = make([]float64, len(symbols))
				byDate[key] = row
			}
			row[col] = p.Value()
			present[key]++
		}
	}
	for key, n := range present {
		if n < len(symbols) {
			delete(byDate, key)
		}
	}

	keys := make([]int64, 0, len(byDate))
	for key := range byDate {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	dates := make([]time.Time, len(keys))
	rows := make([][]float64, len(keys))
	for i, key := range keys {
		dates[i] = time.Unix(key, 0).UTC()
		rows[i] = byDate[key]
	}
	return dates, rows, nil
}

// BuildReturnMatrix turns stored bars into periodic simple returns, one column
// per symbol. The first aligned date and any row with an undefined return are
// dropped.
func BuildReturnMatrix(series map[string][]DailyPrice, symbols []string) (optimization.ReturnMatrix, error) {
	dates, closes, err := AlignCloses(series, symbols)
	if err != nil {
		return optimization.ReturnMatrix{}, err
	}

	columns := make([][]float64, len(symbols))
	for col := range symbols {
		column := make([]float64, len(closes))
		for i, row := range closes {
			column[i] = row[col]
		}
		columns[col] = formulas.PercentChange(column)
	}

	m := optimization.ReturnMatrix{Assets: append([]string(nil), symbols...)}
	for i := 1; i < len(dates); i++ {
		row := make([]float64, len(symbols))
		complete := true
		for col := range symbols {
			v := columns[col][i]
			if !formulas.IsFinite(v) {
				complete = false
				break
			}
			row[col] = v
		}
		if !complete {
			continue
		}
		m.Dates = append(m.Dates, dates[i])
		m.Rows = append(m.Rows, row)
	}
	return m, nil
}

// ToPricePoints converts bars into the regime classifier input.
func ToPricePoints(prices []DailyPrice) []market_regime.PricePoint {
	points := make([]market_regime.PricePoint, len(prices))
	for i, p := range prices {
		points[i] = market_regime.PricePoint{Date: p.Date, Close: p.Value()}
	}
	return points
}
