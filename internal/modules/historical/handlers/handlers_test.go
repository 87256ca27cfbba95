package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aristath/stockintel/internal/database"
	"github.com/aristath/stockintel/internal/modules/historical"
	"github.com/go-chi/chi/v5"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRouter creates an in-memory history database with test data
func setupTestRouter(t *testing.T) *chi.Mux {
	t.Helper()
	logger := zerolog.New(nil).Level(zerolog.Disabled)

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec(database.Schema)
	require.NoError(t, err)

	historyDB := historical.NewHistoryDB(db, logger)
	recent := time.Now().UTC().AddDate(0, 0, -3)
	start := time.Date(recent.Year(), recent.Month(), recent.Day(), 0, 0, 0, 0, time.UTC)
	prices := []historical.DailyPrice{
		{Date: start, Open: 100, High: 101, Low: 99, Close: 100, Volume: 10},
		{Date: start.AddDate(0, 0, 1), Open: 100, High: 111, Low: 99, Close: 110, Volume: 12},
		{Date: start.AddDate(0, 0, 2), Open: 110, High: 112, Low: 98, Close: 99, Volume: 9},
	}
	require.NoError(t, historyDB.UpsertDailyPrices(context.Background(), "AAPL", prices))
	require.NoError(t, historyDB.RecordSyncRun(context.Background(), historical.SyncRun{
		ID: "run-1", StartedAt: start, FinishedAt: start.Add(time.Minute), Symbols: 1, Succeeded: 1, RowsWritten: 3,
	}))

	router := chi.NewRouter()
	NewHandler(historyDB, logger).RegisterRoutes(router)
	return router
}

func get(t *testing.T, router http.Handler, path string, into interface{}) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if into != nil && rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), into))
	}
	return rec.Code
}

func TestHandleGetDailyPrices(t *testing.T) {
	router := setupTestRouter(t)

	tests := []struct {
		name           string
		path           string
		expectedStatus int
		expectedCount  int
	}{
		{"all prices", "/historical/prices/daily/AAPL", http.StatusOK, 3},
		{"unknown symbol", "/historical/prices/daily/MSFT", http.StatusOK, 0},
		{"future range", "/historical/prices/daily/AAPL?start=2999-01-01", http.StatusOK, 0},
		{"bad date", "/historical/prices/daily/AAPL?start=yesterday", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp struct {
				Data struct {
					Count  int                     `json:"count"`
					Prices []historical.DailyPrice `json:"prices"`
				} `json:"data"`
			}
			status := get(t, router, tt.path, &resp)
			assert.Equal(t, tt.expectedStatus, status)
			assert.Equal(t, tt.expectedCount, resp.Data.Count)
		})
	}
}

func TestHandleGetLatestPrice(t *testing.T) {
	router := setupTestRouter(t)

	var resp struct {
		Data struct {
			Price historical.DailyPrice `json:"price"`
		} `json:"data"`
	}
	require.Equal(t, http.StatusOK, get(t, router, "/historical/prices/latest/AAPL", &resp))
	assert.InDelta(t, 99, resp.Data.Price.Close, 1e-12)

	assert.Equal(t, http.StatusNotFound, get(t, router, "/historical/prices/latest/MSFT", nil))
}

func TestHandleGetDailyReturns(t *testing.T) {
	router := setupTestRouter(t)

	var resp struct {
		Data struct {
			Returns []DailyReturn `json:"returns"`
		} `json:"data"`
	}
	require.Equal(t, http.StatusOK, get(t, router, "/historical/returns/daily/AAPL", &resp))
	require.Len(t, resp.Data.Returns, 2)
	assert.InDelta(t, 0.1, resp.Data.Returns[0].Return, 1e-12)
	assert.InDelta(t, -0.1, resp.Data.Returns[1].Return, 1e-12)
}

func TestHandleGetCoverageAndSyncRuns(t *testing.T) {
	router := setupTestRouter(t)

	var coverage struct {
		Data struct {
			Symbols []historical.SymbolCoverage `json:"symbols"`
		} `json:"data"`
	}
	require.Equal(t, http.StatusOK, get(t, router, "/historical/coverage", &coverage))
	require.Len(t, coverage.Data.Symbols, 1)
	assert.Equal(t, 3, coverage.Data.Symbols[0].Bars)

	var runs struct {
		Data struct {
			Runs []historical.SyncRun `json:"runs"`
		} `json:"data"`
	}
	require.Equal(t, http.StatusOK, get(t, router, "/historical/sync-runs?limit=5", &runs))
	require.Len(t, runs.Data.Runs, 1)
	assert.Equal(t, "run-1", runs.Data.Runs[0].ID)
}
