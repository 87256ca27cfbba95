package historical

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/aristath/stockintel/internal/database"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// setupTestDB creates an in-memory SQLite database with the history schema
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(database.Schema)
	require.NoError(t, err)
	return db
}

func bars(start time.Time, closes ...float64) []DailyPrice {
	out := make([]DailyPrice, len(closes))
	for i, c := range closes {
		out[i] = DailyPrice{Date: start.AddDate(0, 0, i), Open: c, High: c, Low: c, Close: c, Volume: 1000}
	}
	return out
}

func TestHistoryDB_UpsertAndGet(t *testing.T) {
	ctx := context.Background()
	h := NewHistoryDB(setupTestDB(t), zerolog.Nop())

	prices := bars(day(2024, 1, 1), 100, 101, 102, 103)
	prices[1].AdjClose = 100.5
	// Intraday timestamps are stored at day granularity.
	prices[2].Date = prices[2].Date.Add(15 * time.Hour)

	require.NoError(t, h.UpsertDailyPrices(ctx, "AAPL", prices))

	got, err := h.GetDailyPrices(ctx, "AAPL", time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, day(2024, 1, 1), got[0].Date, "oldest first")
	assert.Equal(t, day(2024, 1, 3), got[2].Date)
	assert.InDelta(t, 100.5, got[1].AdjClose, 1e-12)
	assert.InDelta(t, 100.5, got[1].Value(), 1e-12)
	assert.Zero(t, got[0].AdjClose)
	assert.Equal(t, int64(1000), got[3].Volume)

	t.Run("replaces existing dates", func(t *testing.T) {
		require.NoError(t, h.UpsertDailyPrices(ctx, "AAPL", bars(day(2024, 1, 4), 110)))
		got, err := h.GetDailyPrices(ctx, "AAPL", day(2024, 1, 4), day(2024, 1, 4))
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.InDelta(t, 110, got[0].Close, 1e-12)
	})

	t.Run("range bounds are inclusive", func(t *testing.T) {
		got, err := h.GetDailyPrices(ctx, "AAPL", day(2024, 1, 2), day(2024, 1, 3))
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("unknown symbol is empty", func(t *testing.T) {
		got, err := h.GetDailyPrices(ctx, "MSFT", time.Time{}, time.Time{})
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestHistoryDB_GetLatestDate(t *testing.T) {
	ctx := context.Background()
	h := NewHistoryDB(setupTestDB(t), zerolog.Nop())

	_, ok, err := h.GetLatestDate(ctx, "AAPL")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, h.UpsertDailyPrices(ctx, "AAPL", bars(day(2024, 2, 1), 1, 2, 3)))
	latest, ok, err := h.GetLatestDate(ctx, "AAPL")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, day(2024, 2, 3), latest)
}

func TestHistoryDB_ListCoverage(t *testing.T) {
	ctx := context.Background()
	h := NewHistoryDB(setupTestDB(t), zerolog.Nop())

	require.NoError(t, h.UpsertDailyPrices(ctx, "MSFT", bars(day(2024, 3, 1), 1, 2)))
	require.NoError(t, h.UpsertDailyPrices(ctx, "AAPL", bars(day(2024, 2, 1), 1, 2, 3)))

	coverage, err := h.ListCoverage(ctx)
	require.NoError(t, err)
	require.Len(t, coverage, 2)
	assert.Equal(t, SymbolCoverage{Symbol: "AAPL", Bars: 3, First: day(2024, 2, 1), Last: day(2024, 2, 3)}, coverage[0])
	assert.Equal(t, "MSFT", coverage[1].Symbol)
}

func TestHistoryDB_SyncRuns(t *testing.T) {
	ctx := context.Background()
	h := NewHistoryDB(setupTestDB(t), zerolog.Nop())

	last, err := h.LastSyncRun(ctx)
	require.NoError(t, err)
	assert.Nil(t, last)

	older := SyncRun{ID: "run-1", StartedAt: day(2024, 1, 1), FinishedAt: day(2024, 1, 1).Add(time.Minute), Symbols: 2, Succeeded: 2, RowsWritten: 10}
	newer := SyncRun{ID: "run-2", StartedAt: day(2024, 1, 2), FinishedAt: day(2024, 1, 2).Add(time.Minute), Symbols: 2, Succeeded: 1, Failed: 1, Error: "timeout"}
	require.NoError(t, h.RecordSyncRun(ctx, older))
	require.NoError(t, h.RecordSyncRun(ctx, newer))

	runs, err := h.GetRecentSyncRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, newer, runs[0])
	assert.Equal(t, older, runs[1])

	last, err = h.LastSyncRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, "run-2", last.ID)

	assert.Error(t, h.RecordSyncRun(ctx, older), "duplicate run id")
}

func TestHistoryDB_Providers(t *testing.T) {
	ctx := context.Background()
	h := NewHistoryDB(setupTestDB(t), zerolog.Nop())

	require.NoError(t, h.UpsertDailyPrices(ctx, "AAPL", bars(day(2024, 1, 1), 100, 110, 99, 120)))
	require.NoError(t, h.UpsertDailyPrices(ctx, "MSFT", bars(day(2024, 1, 2), 50, 55, 60)))

	m, err := h.ReturnMatrix(ctx, []string{"AAPL", "MSFT"}, time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT"}, m.Assets)
	require.Equal(t, 2, m.NumObservations())
	assert.InDelta(t, 99.0/110-1, m.Rows[0][0], 1e-12)
	assert.InDelta(t, 0.1, m.Rows[0][1], 1e-12)

	dates, closes, err := h.AlignedCloses(ctx, []string{"AAPL", "MSFT"}, time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, []time.Time{day(2024, 1, 2), day(2024, 1, 3), day(2024, 1, 4)}, dates)
	assert.Equal(t, []float64{110, 50}, closes[0])

	points, err := h.PricePoints(ctx, "AAPL", day(2024, 1, 3), time.Time{})
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, day(2024, 1, 3), points[0].Date)
	assert.InDelta(t, 99, points[0].Close, 1e-12)
}
