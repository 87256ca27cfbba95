// Package handlers provides HTTP handlers for chart data.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/aristath/stockintel/internal/httpapi"
	"github.com/aristath/stockintel/internal/modules/charts"
	"github.com/rs/zerolog"
)

// ChartService is the part of the charts service used over HTTP
type ChartService interface {
	Indicators(ctx context.Context, symbol string, from, to time.Time) ([]charts.IndicatorRow, error)
	LatestSignal(ctx context.Context, symbol string) (*charts.SignalResult, error)
	Sparkline(ctx context.Context, symbol string, from, to time.Time) ([]charts.ChartDataPoint, error)
}

// Handler handles chart HTTP requests
type Handler struct {
	service ChartService
	log     zerolog.Logger
}

// NewHandler creates a new charts handler
func NewHandler(service ChartService, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "charts").Logger(),
	}
}

// HandleGetIndicators handles GET /api/charts/{symbol}/indicators
func (h *Handler) HandleGetIndicators(w http.ResponseWriter, r *http.Request, symbol string) {
	from, to, err := httpapi.ParseDateRange(r)
	if err != nil {
		httpapi.WriteError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	rows, err := h.service.Indicators(r.Context(), symbol, from, to)
	if err != nil {
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to compute indicators")
		httpapi.WriteError(w, r, http.StatusInternalServerError, "Failed to compute indicators")
		return
	}

	httpapi.WriteData(w, r, http.StatusOK, map[string]interface{}{
		"symbol": symbol,
		"rows":   rows,
		"count":  len(rows),
	})
}

// HandleGetSignal handles GET /api/charts/{symbol}/signal
func (h *Handler) HandleGetSignal(w http.ResponseWriter, r *http.Request, symbol string) {
	result, err := h.service.LatestSignal(r.Context(), symbol)
	if err != nil {
		if errors.Is(err, charts.ErrInsufficientHistory) {
			httpapi.WriteError(w, r, http.StatusUnprocessableEntity, err.Error())
			return
		}
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to compute signal")
		httpapi.WriteError(w, r, http.StatusInternalServerError, "Failed to compute signal")
		return
	}

	httpapi.WriteData(w, r, http.StatusOK, result)
}

// HandleGetSparkline handles GET /api/charts/{symbol}/sparkline
func (h *Handler) HandleGetSparkline(w http.ResponseWriter, r *http.Request, symbol string) {
	from, to, err := httpapi.ParseDateRange(r)
	if err != nil {
		httpapi.WriteError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	points, err := h.service.Sparkline(r.Context(), symbol, from, to)
	if err != nil {
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to get sparkline")
		httpapi.WriteError(w, r, http.StatusInternalServerError, "Failed to get sparkline")
		return
	}

	httpapi.WriteData(w, r, http.StatusOK, points)
}
