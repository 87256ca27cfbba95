package optimization

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	matrix ReturnMatrix
	dates  []time.Time
	closes [][]float64
	err    error
}

func (f *fakeProvider) ReturnMatrix(ctx context.Context, symbols []string, from, to time.Time) (ReturnMatrix, error) {
	return f.matrix, f.err
}

func (f *fakeProvider) AlignedCloses(ctx context.Context, symbols []string, from, to time.Time) ([]time.Time, [][]float64, error) {
	return f.dates, f.closes, f.err
}

func TestOptimizerService_RunFrontier(t *testing.T) {
	provider := &fakeProvider{matrix: basketMatrix(t)}
	service := NewOptimizerService(provider, zerolog.Nop())

	result, err := service.RunFrontier(context.Background(), FrontierRequest{
		Symbols: []string{"AAPL", "MSFT", "GOOG", "TSLA"},
		Options: FrontierOptions{Trials: 300, Seed: seed(42)},
	})
	require.NoError(t, err)

	assert.Equal(t, 8, result.Observations)
	assert.Len(t, result.Samples, 300)
	require.Len(t, result.AssetStats, 4)
	assert.Equal(t, "TSLA", result.AssetStats[3].Symbol)
	assert.Greater(t, result.AssetStats[3].AnnualVolatility, result.AssetStats[1].AnnualVolatility)
	require.NotNil(t, result.MaxSharpe)
	require.NotNil(t, result.MinVolatility)

	for _, s := range result.Samples {
		assert.LessOrEqual(t, s.SharpeRatio, result.MaxSharpe.SharpeRatio)
		assert.GreaterOrEqual(t, s.Volatility, result.MinVolatility.Volatility)
	}
}

func TestOptimizerService_RunFrontier_ProviderError(t *testing.T) {
	boom := errors.New("history unavailable")
	service := NewOptimizerService(&fakeProvider{err: boom}, zerolog.Nop())

	_, err := service.RunFrontier(context.Background(), FrontierRequest{Symbols: []string{"AAPL"}})
	assert.ErrorIs(t, err, boom)
}

func TestOptimizerService_RunFrontier_PropagatesCoreErrors(t *testing.T) {
	provider := &fakeProvider{matrix: ReturnMatrix{Assets: []string{"AAPL"}, Rows: [][]float64{{0.01}}}}
	service := NewOptimizerService(provider, zerolog.Nop())

	_, err := service.RunFrontier(context.Background(), FrontierRequest{Symbols: []string{"AAPL"}})
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestOptimizerService_Correlation(t *testing.T) {
	provider := &fakeProvider{
		closes: [][]float64{{100, 50}, {101, 49}, {103, 48}, {102, 49}},
	}
	service := NewOptimizerService(provider, zerolog.Nop())

	result, err := service.Correlation(context.Background(), []string{"AAPL", "MSFT"}, time.Time{}, time.Time{})
	require.NoError(t, err)

	assert.Equal(t, 4, result.Observations)
	require.Len(t, result.Matrix, 2)
	assert.InDelta(t, 1.0, result.Matrix[0][0], 1e-12)
	assert.Less(t, result.Matrix[0][1], 0.0, "the two series move in opposite directions")
}

func TestPerAssetStats(t *testing.T) {
	m := ReturnMatrix{
		Assets: []string{"FLAT", "SWING"},
		Rows:   [][]float64{{0.01, 0.01}, {0.01, -0.01}, {0.01, 0.01}, {0.01, -0.01}},
	}

	stats := PerAssetStats(m, 4)
	require.Len(t, stats, 2)

	assert.Equal(t, "FLAT", stats[0].Symbol)
	assert.InDelta(t, 0.04, stats[0].AnnualReturn, 1e-12)
	assert.InDelta(t, 0.0, stats[0].AnnualVolatility, 1e-12)

	assert.Equal(t, "SWING", stats[1].Symbol)
	assert.InDelta(t, 0.0, stats[1].AnnualReturn, 1e-12)
	assert.InDelta(t, math.Sqrt(0.0004/3)*2, stats[1].AnnualVolatility, 1e-12)
}
