package yahoo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chartFixture = `{
  "chart": {
    "result": [{
      "meta": {"symbol": "AAPL", "gmtoffset": -14400},
      "timestamp": [1704205800, 1704292200, 1704378600],
      "indicators": {
        "quote": [{
          "open":   [187.15, 184.22, null],
          "high":   [188.44, 185.88, null],
          "low":    [183.89, 183.43, null],
          "close":  [185.64, 184.25, null],
          "volume": [82488700, 58414500, null]
        }],
        "adjclose": [{"adjclose": [184.94, 183.56, null]}]
      }
    }],
    "error": null
  }
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL, RatePerSecond: 1000}, zerolog.Nop())
}

func TestFetchDailyBars(t *testing.T) {
	var gotPath, gotInterval, gotPeriod1 string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		gotInterval = r.URL.Query().Get("interval")
		gotPeriod1 = r.URL.Query().Get("period1")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(chartFixture))
	})

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars, err := client.FetchDailyBars(context.Background(), "AAPL", from, from.AddDate(0, 0, 7))
	require.NoError(t, err)

	assert.Equal(t, "/v8/finance/chart/AAPL", gotPath)
	assert.Equal(t, "1d", gotInterval)
	assert.Equal(t, "1704067200", gotPeriod1)

	require.Len(t, bars, 2, "the day without a close is skipped")
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), bars[0].Date)
	assert.InDelta(t, 185.64, bars[0].Close, 1e-9)
	assert.InDelta(t, 184.94, bars[0].AdjClose, 1e-9)
	assert.InDelta(t, 187.15, bars[0].Open, 1e-9)
	assert.Equal(t, int64(82488700), bars[0].Volume)
	assert.Equal(t, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), bars[1].Date)
}

func TestFetchDailyBars_EscapesIndexSymbols(t *testing.T) {
	var gotPath string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		_, _ = w.Write([]byte(chartFixture))
	})

	_, err := client.FetchDailyBars(context.Background(), "^NSEI", time.Now().AddDate(0, -1, 0), time.Now())
	require.NoError(t, err)
	assert.Equal(t, "/v8/finance/chart/%5ENSEI", gotPath)
}

func TestFetchDailyBars_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`))
	})

	_, err := client.FetchDailyBars(context.Background(), "NOPE", time.Now().AddDate(0, -1, 0), time.Now())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFetchDailyBars_BreakerOpensOnServerErrors(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})

	for i := 0; i < 5; i++ {
		_, err := client.FetchDailyBars(context.Background(), "AAPL", time.Now().AddDate(0, -1, 0), time.Now())
		var statusErr *StatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, http.StatusBadGateway, statusErr.Status)
	}

	_, err := client.FetchDailyBars(context.Background(), "AAPL", time.Now().AddDate(0, -1, 0), time.Now())
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, int32(5), calls.Load(), "open breaker must not reach the server")
}

func TestFetchDailyBars_NotFoundDoesNotTripBreaker(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for i := 0; i < 8; i++ {
		_, err := client.FetchDailyBars(context.Background(), "NOPE", time.Now().AddDate(0, -1, 0), time.Now())
		assert.ErrorIs(t, err, ErrNotFound)
	}
}

func TestFetchDailyBars_ContextCancelled(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(chartFixture))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.FetchDailyBars(ctx, "AAPL", time.Now().AddDate(0, -1, 0), time.Now())
	assert.Error(t, err)
}
