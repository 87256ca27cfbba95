// Package handlers provides HTTP handlers for historical data operations.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/aristath/stockintel/internal/httpapi"
	"github.com/aristath/stockintel/internal/modules/historical"
	"github.com/aristath/stockintel/pkg/formulas"
	"github.com/rs/zerolog"
)

// HistoryReader is the read side of the history database
type HistoryReader interface {
	GetDailyPrices(ctx context.Context, symbol string, from, to time.Time) ([]historical.DailyPrice, error)
	ListCoverage(ctx context.Context) ([]historical.SymbolCoverage, error)
	GetRecentSyncRuns(ctx context.Context, limit int) ([]historical.SyncRun, error)
}

// Handler handles historical data HTTP requests
type Handler struct {
	historyDB HistoryReader
	log       zerolog.Logger
}

// NewHandler creates a new historical data handler
func NewHandler(historyDB HistoryReader, log zerolog.Logger) *Handler {
	return &Handler{
		historyDB: historyDB,
		log:       log.With().Str("handler", "historical").Logger(),
	}
}

// DailyReturn is one close-to-close return
type DailyReturn struct {
	Date   time.Time `json:"date"`
	Return float64   `json:"return"`
}

// HandleGetDailyPrices handles GET /api/historical/prices/daily/{symbol}
func (h *Handler) HandleGetDailyPrices(w http.ResponseWriter, r *http.Request, symbol string) {
	from, to, err := httpapi.ParseDateRange(r)
	if err != nil {
		httpapi.WriteError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	prices, err := h.historyDB.GetDailyPrices(r.Context(), symbol, from, to)
	if err != nil {
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to get daily prices")
		httpapi.WriteError(w, r, http.StatusInternalServerError, "Failed to get daily prices")
		return
	}

	httpapi.WriteData(w, r, http.StatusOK, map[string]interface{}{
		"symbol": symbol,
		"prices": prices,
		"count":  len(prices),
	})
}

// HandleGetLatestPrice handles GET /api/historical/prices/latest/{symbol}
func (h *Handler) HandleGetLatestPrice(w http.ResponseWriter, r *http.Request, symbol string) {
	// A two-week window always covers the last trading day of a synced symbol.
	prices, err := h.historyDB.GetDailyPrices(r.Context(), symbol, time.Now().AddDate(0, 0, -14), time.Time{})
	if err != nil {
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to get latest price")
		httpapi.WriteError(w, r, http.StatusInternalServerError, "Failed to get latest price")
		return
	}
	if len(prices) == 0 {
		httpapi.WriteError(w, r, http.StatusNotFound, "No recent price for "+symbol)
		return
	}

	httpapi.WriteData(w, r, http.StatusOK, map[string]interface{}{
		"symbol": symbol,
		"price":  prices[len(prices)-1],
	})
}

// HandleGetDailyReturns handles GET /api/historical/returns/daily/{symbol}
func (h *Handler) HandleGetDailyReturns(w http.ResponseWriter, r *http.Request, symbol string) {
	from, to, err := httpapi.ParseDateRange(r)
	if err != nil {
		httpapi.WriteError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	prices, err := h.historyDB.GetDailyPrices(r.Context(), symbol, from, to)
	if err != nil {
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to get daily prices")
		httpapi.WriteError(w, r, http.StatusInternalServerError, "Failed to get daily prices")
		return
	}

	closes := make([]float64, len(prices))
	for i, p := range prices {
		closes[i] = p.Value()
	}
	changes := formulas.PercentChange(closes)

	returns := make([]DailyReturn, 0, len(prices))
	for i, p := range prices {
		if !formulas.IsFinite(changes[i]) {
			continue
		}
		returns = append(returns, DailyReturn{Date: p.Date, Return: changes[i]})
	}

	httpapi.WriteData(w, r, http.StatusOK, map[string]interface{}{
		"symbol":  symbol,
		"returns": returns,
		"count":   len(returns),
	})
}

// HandleGetCoverage handles GET /api/historical/coverage
func (h *Handler) HandleGetCoverage(w http.ResponseWriter, r *http.Request) {
	coverage, err := h.historyDB.ListCoverage(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get coverage")
		httpapi.WriteError(w, r, http.StatusInternalServerError, "Failed to get coverage")
		return
	}

	httpapi.WriteData(w, r, http.StatusOK, map[string]interface{}{
		"symbols": coverage,
		"count":   len(coverage),
	})
}

// HandleGetSyncRuns handles GET /api/historical/sync-runs
func (h *Handler) HandleGetSyncRuns(w http.ResponseWriter, r *http.Request) {
	limit := httpapi.QueryInt(r, "limit", 20)

	runs, err := h.historyDB.GetRecentSyncRuns(r.Context(), limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get sync runs")
		httpapi.WriteError(w, r, http.StatusInternalServerError, "Failed to get sync runs")
		return
	}

	httpapi.WriteData(w, r, http.StatusOK, map[string]interface{}{
		"runs":  runs,
		"count": len(runs),
	})
}
