package marketdata

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/stockwatch/internal/config"
	"github.com/turtacn/stockwatch/internal/infrastructure/monitoring"
	"github.com/turtacn/stockwatch/pkg/errors"
	"github.com/turtacn/stockwatch/pkg/logger"
)

const testKey = "fmp-test-key"

func newTestClient(t *testing.T, handler http.HandlerFunc, retries int) (*FMPClient, *monitoring.Metrics) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	metrics := monitoring.NewMetrics(prometheus.NewRegistry())
	cfg := &config.MarketConfig{BaseURL: srv.URL + "/api", APIKey: testKey, Timeout: 2 * time.Second, MaxRetries: retries}
	return NewFMPClient(cfg, logger.NewNoopLogger(), nil, metrics), metrics
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestFMPClient_Quotes(t *testing.T) {
	client, metrics := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/quote/AAPL,MSFT", r.URL.Path)
		assert.Equal(t, testKey, r.URL.Query().Get("apikey"))
		writeJSON(w, []map[string]interface{}{
			{"symbol": "AAPL", "name": "Apple Inc.", "price": 190.5, "changesPercentage": 1.2, "previousClose": 188.0},
			{"symbol": "MSFT", "name": "Microsoft", "price": 410.0, "changesPercentage": -0.4},
		})
	}, 0)

	quotes, err := client.Quotes(context.Background(), "AAPL", "MSFT")
	require.NoError(t, err)
	require.Len(t, quotes, 2)
	assert.Equal(t, 190.5, quotes[0].Price)
	require.NotNil(t, quotes[0].PreviousClose)
	assert.Equal(t, 188.0, *quotes[0].PreviousClose)
	assert.Nil(t, quotes[1].PreviousClose)
	assert.Equal(t, 1, testutil.CollectAndCount(metrics.UpstreamLatency))
}

func TestFMPClient_HistoryParams(t *testing.T) {
	from := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 2, 27, 0, 0, 0, 0, time.UTC)

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/historical-price-full/AAPL", r.URL.Path)
		q := r.URL.Query()
		if q.Get("timeseries") != "" {
			assert.Equal(t, "30", q.Get("timeseries"))
		} else {
			assert.Equal(t, "2024-01-02", q.Get("from"))
			assert.Equal(t, "2024-02-27", q.Get("to"))
		}
		writeJSON(w, map[string]interface{}{
			"symbol":     "AAPL",
			"historical": []map[string]interface{}{{"date": "2024-02-27", "close": 182.6}},
		})
	}, 0)

	h, err := client.History(context.Background(), "AAPL", 30)
	require.NoError(t, err)
	require.Len(t, h.Historical, 1)
	assert.Equal(t, 182.6, h.Historical[0].Close)

	_, err = client.HistoryRange(context.Background(), "AAPL", from, to)
	require.NoError(t, err)
}

func TestFMPClient_EmptyListsReturnNil(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []interface{}{})
	}, 0)

	ctx := context.Background()
	rating, err := client.Rating(ctx, "ZZZZ")
	require.NoError(t, err)
	assert.Nil(t, rating)

	profile, err := client.Profile(ctx, "ZZZZ")
	require.NoError(t, err)
	assert.Nil(t, profile)

	km, err := client.KeyMetrics(ctx, "ZZZZ")
	require.NoError(t, err)
	assert.Nil(t, km)
}

func TestFMPClient_ProfileEmployeesAsString(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"symbol":"AAPL","companyName":"Apple Inc.","fullTimeEmployees":"164000","mktCap":3.1e12}]`))
	}, 0)

	p, err := client.Profile(context.Background(), "AAPL")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, FlexInt(164000), p.FullTimeEmployees)
	assert.Nil(t, p.ProfitMargin)
}

func TestFMPClient_MissingAPIKey(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	client := NewFMPClient(&config.MarketConfig{BaseURL: srv.URL}, logger.NewNoopLogger(), nil, nil)
	assert.False(t, client.Configured())

	_, err := client.Actives(context.Background())
	assert.True(t, errors.Is(err, errors.ErrAPIKeyNotConfigured))
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestFMPClient_UpstreamFailure(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}, 0)

	_, err := client.Search(context.Background(), "apple", 10)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUpstreamUnavailable))
	assert.NotContains(t, err.Error(), testKey)
}

func TestFMPClient_UnexpectedBody(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Error Message":"Invalid API KEY."}`))
	}, 0)

	_, err := client.Quotes(context.Background(), "AAPL")
	assert.True(t, errors.Is(err, errors.ErrUpstreamUnavailable))
}

func TestFMPClient_RetriesServerErrors(t *testing.T) {
	var calls int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, []map[string]interface{}{{"symbol": "AAPL", "name": "Apple", "price": 1.0}})
	}, 2)

	actives, err := client.Actives(context.Background())
	require.NoError(t, err)
	assert.Len(t, actives, 1)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestFMPClient_TransportErrorIsRedacted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	cfg := &config.MarketConfig{BaseURL: srv.URL, APIKey: testKey, Timeout: time.Second}
	client := NewFMPClient(cfg, logger.NewNoopLogger(), nil, nil)

	_, err := client.PriceTargets(context.Background(), "AAPL")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUpstreamUnavailable))
	assert.NotContains(t, err.Error(), testKey)
}
