// Package charts provides services for generating chart data from historical prices.
package charts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aristath/stockintel/internal/modules/historical"
	"github.com/rs/zerolog"
)

// ErrInsufficientHistory is returned when too few closes exist to define
// every indicator.
var ErrInsufficientHistory = errors.New("insufficient price history")

// PriceReader loads stored daily bars
type PriceReader interface {
	GetDailyPrices(ctx context.Context, symbol string, from, to time.Time) ([]historical.DailyPrice, error)
}

// ChartDataPoint represents a single point on a chart
type ChartDataPoint struct {
	Time  string  `json:"time"`  // YYYY-MM-DD format
	Value float64 `json:"value"` // Close price
}

// SignalResult is the latest crossover state of a symbol
type SignalResult struct {
	Symbol string    `json:"symbol"`
	Date   time.Time `json:"date"`
	Close  float64   `json:"close"`
	Signal Signal    `json:"signal"`
	SMA20  float64   `json:"sma_20"`
	SMA50  float64   `json:"sma_50"`
}

// Service provides chart data operations
type Service struct {
	prices PriceReader
	now    func() time.Time
	log    zerolog.Logger
}

// NewService creates a new charts service
func NewService(prices PriceReader, log zerolog.Logger) *Service {
	return &Service{
		prices: prices,
		now:    time.Now,
		log:    log.With().Str("service", "charts").Logger(),
	}
}

// Indicators returns the indicator rows of symbol. Closes before from still
// warm up the moving averages.
func (s *Service) Indicators(ctx context.Context, symbol string, from, to time.Time) ([]IndicatorRow, error) {
	warmupFrom := from
	if !from.IsZero() {
		// Calendar days comfortably covering LongSMAPeriod trading days.
		warmupFrom = from.AddDate(0, 0, -LongSMAPeriod*2)
	}

	prices, err := s.prices.GetDailyPrices(ctx, symbol, warmupFrom, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load prices for %s: %w", symbol, err)
	}

	rows := ComputeIndicators(prices)
	if from.IsZero() {
		return rows, nil
	}

	start := 0
	for start < len(rows) && rows[start].Date.Before(from) {
		start++
	}
	return rows[start:], nil
}

// LatestSignal computes the crossover signal from the most recent fully
// defined indicator row.
func (s *Service) LatestSignal(ctx context.Context, symbol string) (*SignalResult, error) {
	// One year of calendar days is enough to define the 50 day average.
	rows, err := s.Indicators(ctx, symbol, s.now().AddDate(-1, 0, 0), time.Time{})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s needs at least %d closes", ErrInsufficientHistory, symbol, LongSMAPeriod)
	}

	last := rows[len(rows)-1]
	result := &SignalResult{
		Symbol: symbol,
		Date:   last.Date,
		Close:  last.Close,
		Signal: TradingSignal(last.SMA20, last.SMA50),
		SMA20:  last.SMA20,
		SMA50:  last.SMA50,
	}

	s.log.Debug().
		Str("symbol", symbol).
		Str("signal", string(result.Signal)).
		Msg("Computed trading signal")

	return result, nil
}

// Sparkline returns the close series of symbol as chart points
func (s *Service) Sparkline(ctx context.Context, symbol string, from, to time.Time) ([]ChartDataPoint, error) {
	prices, err := s.prices.GetDailyPrices(ctx, symbol, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load prices for %s: %w", symbol, err)
	}

	points := make([]ChartDataPoint, len(prices))
	for i, p := range prices {
		points[i] = ChartDataPoint{
			Time:  p.Date.Format("2006-01-02"),
			Value: p.Value(),
		}
	}
	return points, nil
}
