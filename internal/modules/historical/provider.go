package historical

import (
	"context"
	"time"

	"github.com/aristath/stockintel/internal/market_regime"
	"github.com/aristath/stockintel/internal/modules/optimization"
)

func (h *HistoryDB) loadSeries(ctx context.Context, symbols []string, from, to time.Time) (map[string][]DailyPrice, error) {
	series := make(map[string][]DailyPrice, len(symbols))
	for _, symbol := range symbols {
		prices, err := h.GetDailyPrices(ctx, symbol, from, to)
		if err != nil {
			return nil, err
		}
		series[symbol] = prices
	}
	return series, nil
}

// ReturnMatrix implements optimization.PriceSeriesProvider.
func (h *HistoryDB) ReturnMatrix(ctx context.Context, symbols []string, from, to time.Time) (optimization.ReturnMatrix, error) {
	series, err := h.loadSeries(ctx, symbols, from, to)
	if err != nil {
		return optimization.ReturnMatrix{}, err
	}
	return BuildReturnMatrix(series, symbols)
}

// AlignedCloses implements optimization.PriceSeriesProvider.
func (h *HistoryDB) AlignedCloses(ctx context.Context, symbols []string, from, to time.Time) ([]time.Time, [][]float64, error) {
	series, err := h.loadSeries(ctx, symbols, from, to)
	if err != nil {
		return nil, nil, err
	}
	return AlignCloses(series, symbols)
}

// PricePoints implements market_regime.PriceProvider.
func (h *HistoryDB) PricePoints(ctx context.Context, symbol string, from, to time.Time) ([]market_regime.PricePoint, error) {
	prices, err := h.GetDailyPrices(ctx, symbol, from, to)
	if err != nil {
		return nil, err
	}
	return ToPricePoints(prices), nil
}
