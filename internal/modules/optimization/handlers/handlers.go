// Package handlers provides HTTP handlers for portfolio optimization.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/aristath/stockintel/internal/httpapi"
	"github.com/aristath/stockintel/internal/modules/optimization"
	"github.com/rs/zerolog"
)

// Optimizer is the part of the optimizer service used over HTTP.
type Optimizer interface {
	RunFrontier(ctx context.Context, req optimization.FrontierRequest) (*optimization.FrontierResult, error)
	Correlation(ctx context.Context, symbols []string, from, to time.Time) (*optimization.CorrelationResult, error)
}

// Defaults fill request fields that depend on configuration.
type Defaults struct {
	Tickers []string
}

// Handler handles optimizer HTTP requests
type Handler struct {
	service  Optimizer
	defaults Defaults
	log      zerolog.Logger
}

// NewHandler creates a new optimizer handler
func NewHandler(service Optimizer, defaults Defaults, log zerolog.Logger) *Handler {
	return &Handler{
		service:  service,
		defaults: defaults,
		log:      log.With().Str("handler", "optimizer").Logger(),
	}
}

type frontierRequest struct {
	Tickers        []string `json:"tickers" validate:"omitempty,min=2,unique,dive,required"`
	Start          string   `json:"start" validate:"omitempty,datetime=2006-01-02"`
	End            string   `json:"end" validate:"omitempty,datetime=2006-01-02"`
	Trials         int      `json:"trials" default:"3000" validate:"gt=0,lte=100000"`
	PeriodsPerYear int      `json:"periods_per_year" default:"252" validate:"gt=0,lte=100000"`
	RiskFreeRate   float64  `json:"risk_free_rate"`
	Seed           *uint64  `json:"seed"`
}

type correlationRequest struct {
	Tickers []string `json:"tickers" validate:"omitempty,min=2,unique,dive,required"`
	Start   string   `json:"start" validate:"omitempty,datetime=2006-01-02"`
	End     string   `json:"end" validate:"omitempty,datetime=2006-01-02"`
}

// HandleFrontier handles POST /api/optimizer/frontier
func (h *Handler) HandleFrontier(w http.ResponseWriter, r *http.Request) {
	var req frontierRequest
	if err := httpapi.Bind(r, &req); err != nil {
		httpapi.WriteBindError(w, r, err)
		return
	}

	from, to, err := httpapi.ParseDates(req.Start, req.End)
	if err != nil {
		httpapi.WriteError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	tickers := req.Tickers
	if len(tickers) == 0 {
		tickers = h.defaults.Tickers
	}

	result, err := h.service.RunFrontier(r.Context(), optimization.FrontierRequest{
		Symbols: tickers,
		From:    from,
		To:      to,
		Options: optimization.FrontierOptions{
			Trials:         req.Trials,
			PeriodsPerYear: req.PeriodsPerYear,
			RiskFreeRate:   req.RiskFreeRate,
			Seed:           req.Seed,
		},
	})
	if err != nil {
		h.log.Error().Err(err).Strs("tickers", tickers).Msg("Failed to sample frontier")
		httpapi.WriteError(w, r, statusFor(err), err.Error())
		return
	}

	httpapi.WriteData(w, r, http.StatusOK, result)
}

// HandleCorrelation handles POST /api/optimizer/correlation
func (h *Handler) HandleCorrelation(w http.ResponseWriter, r *http.Request) {
	var req correlationRequest
	if err := httpapi.Bind(r, &req); err != nil {
		httpapi.WriteBindError(w, r, err)
		return
	}

	from, to, err := httpapi.ParseDates(req.Start, req.End)
	if err != nil {
		httpapi.WriteError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	tickers := req.Tickers
	if len(tickers) == 0 {
		tickers = h.defaults.Tickers
	}

	result, err := h.service.Correlation(r.Context(), tickers, from, to)
	if err != nil {
		h.log.Error().Err(err).Strs("tickers", tickers).Msg("Failed to compute correlation")
		httpapi.WriteError(w, r, statusFor(err), err.Error())
		return
	}

	httpapi.WriteData(w, r, http.StatusOK, result)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, optimization.ErrMalformedReturns), errors.Is(err, optimization.ErrInvalidOptions):
		return http.StatusBadRequest
	case errors.Is(err, optimization.ErrInsufficientData), errors.Is(err, optimization.ErrDegenerateVolatility):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
