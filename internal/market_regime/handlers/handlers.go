// Package handlers provides HTTP handlers for market regime classification.
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/aristath/stockintel/internal/httpapi"
	"github.com/aristath/stockintel/internal/market_regime"
	"github.com/rs/zerolog"
)

// Classifier is the part of the regime service used over HTTP.
type Classifier interface {
	Classify(ctx context.Context, req market_regime.ClassifyRequest) (*market_regime.RegimeResult, error)
}

// Defaults fill request fields that depend on configuration.
type Defaults struct {
	Seed uint64
}

// Handler handles regime HTTP requests
type Handler struct {
	service  Classifier
	defaults Defaults
	log      zerolog.Logger
}

// NewHandler creates a new regime handler
func NewHandler(service Classifier, defaults Defaults, log zerolog.Logger) *Handler {
	return &Handler{
		service:  service,
		defaults: defaults,
		log:      log.With().Str("handler", "market_regime").Logger(),
	}
}

type classifyRequest struct {
	Symbol           string  `json:"symbol"`
	Start            string  `json:"start" validate:"omitempty,datetime=2006-01-02"`
	End              string  `json:"end" validate:"omitempty,datetime=2006-01-02"`
	Clusters         int     `json:"n_clusters" default:"3" validate:"gt=0,lte=12"`
	VolatilityWindow int     `json:"volatility_window" default:"20" validate:"gt=0,lte=504"`
	Seed             *uint64 `json:"seed"`
}

// HandleClassify handles POST /api/regime/classify
func (h *Handler) HandleClassify(w http.ResponseWriter, r *http.Request) {
	var req classifyRequest
	if err := httpapi.Bind(r, &req); err != nil {
		httpapi.WriteBindError(w, r, err)
		return
	}

	from, to, err := httpapi.ParseDates(req.Start, req.End)
	if err != nil {
		httpapi.WriteError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	opts := market_regime.ClassifierOptions{
		Clusters:         req.Clusters,
		VolatilityWindow: req.VolatilityWindow,
		Seed:             req.Seed,
	}
	if opts.Seed == nil {
		seed := h.defaults.Seed
		opts.Seed = &seed
	}

	result, err := h.service.Classify(r.Context(), market_regime.ClassifyRequest{
		Symbol:  req.Symbol,
		From:    from,
		To:      to,
		Options: opts,
	})
	if err != nil {
		h.log.Error().Err(err).Str("symbol", req.Symbol).Msg("Failed to classify regimes")
		httpapi.WriteError(w, r, statusFor(err), err.Error())
		return
	}

	httpapi.WriteData(w, r, http.StatusOK, result)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, market_regime.ErrInvalidPrices):
		return http.StatusBadRequest
	case errors.Is(err, market_regime.ErrInsufficientData),
		errors.Is(err, market_regime.ErrClustering),
		errors.Is(err, market_regime.ErrUnsupportedClusterCount):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
