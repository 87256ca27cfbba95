package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aristath/stockintel/internal/market_regime"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockClassifier struct {
	req market_regime.ClassifyRequest
	err error
}

func (m *mockClassifier) Classify(ctx context.Context, req market_regime.ClassifyRequest) (*market_regime.RegimeResult, error) {
	m.req = req
	if m.err != nil {
		return nil, m.err
	}
	row := market_regime.RegimeRow{
		Date:       time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Close:      22000,
		Return:     0.004,
		Volatility: 0.009,
		Cluster:    1,
		Regime:     market_regime.LabelLowVolatility,
	}
	return &market_regime.RegimeResult{
		Symbol:  "^NSEI",
		Rows:    []market_regime.RegimeRow{row},
		Summary: market_regime.Summarize([]market_regime.RegimeRow{row}),
		Current: &row,
	}, nil
}

func serve(svc Classifier, body string) *httptest.ResponseRecorder {
	h := NewHandler(svc, Defaults{Seed: 42}, zerolog.Nop())
	router := chi.NewRouter()
	h.RegisterRoutes(router)

	req := httptest.NewRequest(http.MethodPost, "/regime/classify", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandleClassify_Defaults(t *testing.T) {
	svc := &mockClassifier{}
	rec := serve(svc, `{}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, svc.req.Symbol)
	assert.Equal(t, market_regime.DefaultClusters, svc.req.Options.Clusters)
	assert.Equal(t, market_regime.DefaultVolatilityWindow, svc.req.Options.VolatilityWindow)
	require.NotNil(t, svc.req.Options.Seed)
	assert.Equal(t, uint64(42), *svc.req.Options.Seed)

	var resp struct {
		Data struct {
			Symbol  string                        `json:"symbol"`
			Rows    []market_regime.RegimeRow     `json:"rows"`
			Summary []market_regime.RegimeSummary `json:"summary"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "^NSEI", resp.Data.Symbol)
	require.Len(t, resp.Data.Rows, 1)
	assert.Equal(t, market_regime.LabelLowVolatility, resp.Data.Rows[0].Regime)
	assert.Len(t, resp.Data.Summary, 1)
}

func TestHandleClassify_EmptyOrZeroFieldsBindToDefaults(t *testing.T) {
	for _, body := range []string{``, `{"n_clusters":0,"volatility_window":0}`} {
		svc := &mockClassifier{}
		rec := serve(svc, body)

		require.Equal(t, http.StatusOK, rec.Code, body)
		assert.Equal(t, market_regime.DefaultClusters, svc.req.Options.Clusters)
		assert.Equal(t, market_regime.DefaultVolatilityWindow, svc.req.Options.VolatilityWindow)
	}
}

func TestHandleClassify_PassesRequest(t *testing.T) {
	svc := &mockClassifier{}
	rec := serve(svc, `{"symbol":"^GSPC","start":"2020-01-01","end":"2024-12-31","n_clusters":4,"volatility_window":10,"seed":7}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "^GSPC", svc.req.Symbol)
	assert.Equal(t, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), svc.req.From)
	assert.Equal(t, time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), svc.req.To)
	assert.Equal(t, 4, svc.req.Options.Clusters)
	assert.Equal(t, 10, svc.req.Options.VolatilityWindow)
	assert.Equal(t, uint64(7), *svc.req.Options.Seed)
}

func TestHandleClassify_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		err    error
		status int
	}{
		{"invalid date", `{"start":"2024/01/01"}`, nil, http.StatusBadRequest},
		{"start after end", `{"start":"2024-03-01","end":"2023-03-01"}`, nil, http.StatusBadRequest},
		{"too many clusters", `{"n_clusters":50}`, nil, http.StatusBadRequest},
		{"negative window", `{"volatility_window":-2}`, nil, http.StatusBadRequest},
		{"insufficient data", `{}`, market_regime.ErrInsufficientData, http.StatusUnprocessableEntity},
		{"clustering", `{}`, market_regime.ErrClustering, http.StatusUnprocessableEntity},
		{"unsupported clusters", `{"n_clusters":1}`, market_regime.ErrUnsupportedClusterCount, http.StatusUnprocessableEntity},
		{"invalid prices", `{}`, market_regime.ErrInvalidPrices, http.StatusBadRequest},
		{"store failure", `{}`, errors.New("disk I/O error"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(&mockClassifier{err: tt.err}, tt.body)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}
