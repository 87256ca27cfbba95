package charts

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aristath/stockintel/internal/modules/historical"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockPriceReader struct {
	prices   []historical.DailyPrice
	err      error
	gotFrom  time.Time
	gotTo    time.Time
	gotCalls int
}

func (m *mockPriceReader) GetDailyPrices(ctx context.Context, symbol string, from, to time.Time) ([]historical.DailyPrice, error) {
	m.gotFrom, m.gotTo = from, to
	m.gotCalls++
	if m.err != nil {
		return nil, m.err
	}
	var out []historical.DailyPrice
	for _, p := range m.prices {
		if (!from.IsZero() && p.Date.Before(from)) || (!to.IsZero() && p.Date.After(to)) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func TestService_Indicators_WarmsUpBeforeStart(t *testing.T) {
	reader := &mockPriceReader{prices: linearPrices(200, 100, 1)}
	svc := NewService(reader, zerolog.Nop())

	from := chartStart.AddDate(0, 0, 150)
	rows, err := svc.Indicators(context.Background(), "AAPL", from, time.Time{})
	require.NoError(t, err)

	require.Len(t, rows, 50)
	assert.Equal(t, from, rows[0].Date)
	assert.True(t, reader.gotFrom.Before(from))
}

func TestService_LatestSignal(t *testing.T) {
	tests := []struct {
		name string
		step float64
		want Signal
	}{
		{"uptrend", 1, SignalBuy},
		{"downtrend", -0.5, SignalSell},
		{"flat", 0, SignalHold},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := &mockPriceReader{prices: linearPrices(120, 200, tt.step)}
			svc := NewService(reader, zerolog.Nop())
			svc.now = func() time.Time { return chartStart.AddDate(0, 0, 120) }

			result, err := svc.LatestSignal(context.Background(), "AAPL")
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.Signal)
			assert.Equal(t, chartStart.AddDate(0, 0, 119), result.Date)
		})
	}
}

func TestService_LatestSignal_Errors(t *testing.T) {
	svc := NewService(&mockPriceReader{prices: linearPrices(30, 100, 1)}, zerolog.Nop())
	svc.now = func() time.Time { return chartStart.AddDate(0, 0, 30) }
	_, err := svc.LatestSignal(context.Background(), "AAPL")
	assert.ErrorIs(t, err, ErrInsufficientHistory)

	boom := errors.New("database is locked")
	svc = NewService(&mockPriceReader{err: boom}, zerolog.Nop())
	_, err = svc.LatestSignal(context.Background(), "AAPL")
	assert.ErrorIs(t, err, boom)
}

func TestService_Sparkline(t *testing.T) {
	svc := NewService(&mockPriceReader{prices: linearPrices(3, 10, 2)}, zerolog.Nop())
	points, err := svc.Sparkline(context.Background(), "AAPL", time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, []ChartDataPoint{
		{Time: "2024-01-01", Value: 10},
		{Time: "2024-01-02", Value: 12},
		{Time: "2024-01-03", Value: 14},
	}, points)
}
