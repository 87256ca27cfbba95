package optimization

import (
	"context"
	"fmt"
	"time"

	"github.com/aristath/stockintel/internal/metrics"
	"github.com/rs/zerolog"
)

// FrontierRequest describes one frontier run over stored prices.
type FrontierRequest struct {
	Symbols []string
	From    time.Time
	To      time.Time
	Options FrontierOptions
}

// FrontierResult is a frontier plus the points the dashboard highlights.
type FrontierResult struct {
	*Frontier
	Observations  int             `json:"observations"`
	AssetStats    []AssetStat     `json:"asset_stats"`
	MaxSharpe     *FrontierSample `json:"max_sharpe,omitempty"`
	MinVolatility *FrontierSample `json:"min_volatility,omitempty"`
}

// NewFrontierResult pairs a sampled frontier with the standalone asset
// points and the max-Sharpe and min-volatility samples.
func NewFrontierResult(returns ReturnMatrix, frontier *Frontier, periodsPerYear int) *FrontierResult {
	if periodsPerYear == 0 {
		periodsPerYear = DefaultPeriodsPerYear
	}
	result := &FrontierResult{
		Frontier:     frontier,
		Observations: returns.NumObservations(),
		AssetStats:   PerAssetStats(returns, periodsPerYear),
	}
	if best, ok := MaxSharpe(frontier.Samples); ok {
		result.MaxSharpe = &best
	}
	if safest, ok := MinVolatility(frontier.Samples); ok {
		result.MinVolatility = &safest
	}
	return result
}

// CorrelationResult is the correlation surface of a basket of close prices.
type CorrelationResult struct {
	Symbols      []string    `json:"symbols"`
	Observations int         `json:"observations"`
	Matrix       [][]float64 `json:"matrix"`
}

// OptimizerService runs frontier searches against the historical price store.
type OptimizerService struct {
	provider PriceSeriesProvider
	log      zerolog.Logger
}

// NewOptimizerService creates a new optimizer service.
func NewOptimizerService(provider PriceSeriesProvider, log zerolog.Logger) *OptimizerService {
	return &OptimizerService{
		provider: provider,
		log:      log.With().Str("service", "optimizer").Logger(),
	}
}

// RunFrontier loads returns for the requested basket and samples the frontier.
func (s *OptimizerService) RunFrontier(ctx context.Context, req FrontierRequest) (*FrontierResult, error) {
	returns, err := s.provider.ReturnMatrix(ctx, req.Symbols, req.From, req.To)
	if err != nil {
		return nil, fmt.Errorf("failed to build return matrix: %w", err)
	}

	start := time.Now()
	frontier, err := SampleFrontier(returns, req.Options)
	metrics.ObserveComputation("frontier", start, err)
	if err != nil {
		return nil, err
	}

	result := NewFrontierResult(returns, frontier, req.Options.PeriodsPerYear)

	s.log.Info().
		Strs("symbols", req.Symbols).
		Int("observations", result.Observations).
		Int("samples", len(frontier.Samples)).
		Int("skipped", frontier.Skipped).
		Dur("duration_ms", time.Since(start)).
		Msg("Sampled efficient frontier")

	return result, nil
}

// Correlation computes the correlation matrix of aligned close prices.
func (s *OptimizerService) Correlation(ctx context.Context, symbols []string, from, to time.Time) (*CorrelationResult, error) {
	_, closes, err := s.provider.AlignedCloses(ctx, symbols, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load aligned closes: %w", err)
	}

	matrix, err := CorrelationMatrix(closes)
	if err != nil {
		return nil, err
	}

	return &CorrelationResult{
		Symbols:      symbols,
		Observations: len(closes),
		Matrix:       matrix,
	}, nil
}
