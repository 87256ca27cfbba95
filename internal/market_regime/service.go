package market_regime

import (
	"context"
	"fmt"
	"time"

	"github.com/aristath/stockintel/internal/metrics"
	"github.com/rs/zerolog"
)

// PriceProvider supplies chronologically ordered closes for one symbol.
type PriceProvider interface {
	PricePoints(ctx context.Context, symbol string, from, to time.Time) ([]PricePoint, error)
}

// ClassifyRequest describes one regime classification run.
type ClassifyRequest struct {
	Symbol  string
	From    time.Time
	To      time.Time
	Options ClassifierOptions
}

// RegimeResult is the classified series of an index.
type RegimeResult struct {
	Symbol  string          `json:"symbol"`
	Rows    []RegimeRow     `json:"rows"`
	Summary []RegimeSummary `json:"summary"`
	Current *RegimeRow      `json:"current,omitempty"`
}

// RegimeService classifies stored index prices into volatility regimes.
type RegimeService struct {
	prices        PriceProvider
	defaultSymbol string
	log           zerolog.Logger
}

// NewRegimeService creates a new regime service. defaultSymbol is used when a
// request does not name an index.
func NewRegimeService(prices PriceProvider, defaultSymbol string, log zerolog.Logger) *RegimeService {
	return &RegimeService{
		prices:        prices,
		defaultSymbol: defaultSymbol,
		log:           log.With().Str("service", "market_regime").Logger(),
	}
}

// DefaultSymbol returns the index classified when a request names none.
func (s *RegimeService) DefaultSymbol() string {
	return s.defaultSymbol
}

// Classify loads the index series and labels each observation.
func (s *RegimeService) Classify(ctx context.Context, req ClassifyRequest) (*RegimeResult, error) {
	symbol := req.Symbol
	if symbol == "" {
		symbol = s.defaultSymbol
	}

	prices, err := s.prices.PricePoints(ctx, symbol, req.From, req.To)
	if err != nil {
		return nil, fmt.Errorf("failed to load prices for %s: %w", symbol, err)
	}

	start := time.Now()
	rows, err := ClassifyRegimes(prices, req.Options)
	metrics.ObserveComputation("regime", start, err)
	if err != nil {
		return nil, err
	}

	result := &RegimeResult{
		Symbol:  symbol,
		Rows:    rows,
		Summary: Summarize(rows),
	}
	if len(rows) > 0 {
		current := rows[len(rows)-1]
		result.Current = &current
	}

	s.log.Info().
		Str("symbol", symbol).
		Int("prices", len(prices)).
		Int("rows", len(rows)).
		Str("current_regime", string(result.Current.Regime)).
		Dur("duration_ms", time.Since(start)).
		Msg("Classified market regimes")

	return result, nil
}
