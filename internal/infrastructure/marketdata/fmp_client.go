// Package marketdata is the client for the Financial Modeling Prep market-data API.
package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/turtacn/stockwatch/internal/config"
	"github.com/turtacn/stockwatch/internal/infrastructure/monitoring"
	"github.com/turtacn/stockwatch/pkg/errors"
	"github.com/turtacn/stockwatch/pkg/logger"
)

const dateLayout = "2006-01-02"

// FMPClient calls the provider's REST endpoints. Every call is traced, timed and retried
// on transport errors and 5xx/429 responses.
type FMPClient struct {
	baseURL string
	apiKey  string
	http    *retryablehttp.Client
	tracer  *monitoring.TracingManager
	metrics *monitoring.Metrics
	logger  logger.Logger
}

// NewFMPClient creates a client. tracer and metrics may be nil.
func NewFMPClient(cfg *config.MarketConfig, log logger.Logger, tracer *monitoring.TracingManager, metrics *monitoring.Metrics) *FMPClient {
	log = log.WithComponent("FMPClient")

	rc := retryablehttp.NewClient()
	rc.RetryMax = cfg.MaxRetries
	rc.RetryWaitMin = 100 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	rc.Logger = leveledLogger{log: log, apiKey: cfg.APIKey}
	if cfg.Timeout > 0 {
		rc.HTTPClient.Timeout = cfg.Timeout
	}

	if tracer == nil {
		tracer = monitoring.NewNoopTracingManager()
	}

	return &FMPClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		http:    rc,
		tracer:  tracer,
		metrics: metrics,
		logger:  log,
	}
}

// Configured reports whether an API key is set.
func (c *FMPClient) Configured() bool {
	return c.apiKey != ""
}

// Quotes returns quotes for one or more symbols in a single call.
func (c *FMPClient) Quotes(ctx context.Context, symbols ...string) ([]Quote, error) {
	var out []Quote
	if err := c.get(ctx, "quote", "/v3/quote/"+joinSymbols(symbols), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Actives returns the most actively traded stocks.
func (c *FMPClient) Actives(ctx context.Context) ([]Active, error) {
	var out []Active
	if err := c.get(ctx, "actives", "/v3/stock_market/actives", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// History returns the latest n daily bars, newest first.
func (c *FMPClient) History(ctx context.Context, symbol string, n int) (*HistoricalPrices, error) {
	q := url.Values{}
	q.Set("timeseries", strconv.Itoa(n))
	var out HistoricalPrices
	if err := c.get(ctx, "historical_price", "/v3/historical-price-full/"+url.PathEscape(symbol), q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// HistoryRange returns daily bars between from and to, inclusive.
func (c *FMPClient) HistoryRange(ctx context.Context, symbol string, from, to time.Time) (*HistoricalPrices, error) {
	q := url.Values{}
	q.Set("from", from.Format(dateLayout))
	q.Set("to", to.Format(dateLayout))
	var out HistoricalPrices
	if err := c.get(ctx, "historical_price", "/v3/historical-price-full/"+url.PathEscape(symbol), q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Chart returns intraday bars at the given interval ("5min", "1hour", ...), newest first.
func (c *FMPClient) Chart(ctx context.Context, symbol, interval string) ([]Bar, error) {
	var out []Bar
	if err := c.get(ctx, "historical_chart", "/v3/historical-chart/"+url.PathEscape(interval)+"/"+url.PathEscape(symbol), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Rating returns the latest rating, or nil when the symbol has none.
func (c *FMPClient) Rating(ctx context.Context, symbol string) (*Rating, error) {
	var out []Rating
	if err := c.get(ctx, "rating", "/v3/rating/"+url.PathEscape(symbol), nil, &out); err != nil {
		return nil, err
	}
	return first(out), nil
}

// Search looks up tickers by name or symbol.
func (c *FMPClient) Search(ctx context.Context, query string, limit int) ([]SearchMatch, error) {
	q := url.Values{}
	q.Set("query", query)
	q.Set("limit", strconv.Itoa(limit))
	var out []SearchMatch
	if err := c.get(ctx, "search", "/v3/search", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Profile returns the company profile, or nil when unknown.
func (c *FMPClient) Profile(ctx context.Context, symbol string) (*Profile, error) {
	var out []Profile
	if err := c.get(ctx, "profile", "/v3/profile/"+url.PathEscape(symbol), nil, &out); err != nil {
		return nil, err
	}
	return first(out), nil
}

// KeyMetrics returns the most recent key-metrics row, or nil.
func (c *FMPClient) KeyMetrics(ctx context.Context, symbol string) (*KeyMetrics, error) {
	q := url.Values{}
	q.Set("limit", "1")
	var out []KeyMetrics
	if err := c.get(ctx, "key_metrics", "/v3/key-metrics/"+url.PathEscape(symbol), q, &out); err != nil {
		return nil, err
	}
	return first(out), nil
}

// Ratios returns the most recent ratios row, or nil.
func (c *FMPClient) Ratios(ctx context.Context, symbol string) (*Ratios, error) {
	q := url.Values{}
	q.Set("limit", "1")
	var out []Ratios
	if err := c.get(ctx, "ratios", "/v3/ratios/"+url.PathEscape(symbol), q, &out); err != nil {
		return nil, err
	}
	return first(out), nil
}

// PriceTargets returns analyst price targets, most recent first.
func (c *FMPClient) PriceTargets(ctx context.Context, symbol string) ([]PriceTarget, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	var out []PriceTarget
	if err := c.get(ctx, "price_target", "/v4/price-target", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *FMPClient) get(ctx context.Context, endpoint, path string, query url.Values, out interface{}) error {
	if c.apiKey == "" {
		return errors.ErrAPIKeyNotConfigured
	}
	if query == nil {
		query = url.Values{}
	}
	query.Set("apikey", c.apiKey)

	start := time.Now()
	err := monitoring.TraceOperation(ctx, c.tracer, "fmp."+endpoint, func(ctx context.Context) error {
		return c.do(ctx, path, query, out)
	}, map[string]interface{}{"fmp.endpoint": endpoint})
	if c.metrics != nil {
		c.metrics.RecordUpstream(endpoint, err, time.Since(start))
	}
	if err != nil {
		c.logger.Warn(ctx, "Provider call failed", logger.String("endpoint", endpoint), logger.Error(err))
	}
	return err
}

func (c *FMPClient) do(ctx context.Context, path string, query url.Values, out interface{}) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return errors.ErrUpstream(c.redact(err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return errors.ErrUpstream(c.redact(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return errors.ErrUpstream(fmt.Errorf("GET %s: status %d", path, resp.StatusCode))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.ErrUpstream(fmt.Errorf("decode %s: %w", path, err))
	}
	return nil
}

// redact strips the API key from transport errors, which embed the request URL.
func (c *FMPClient) redact(err error) error {
	return fmt.Errorf("%s", strings.ReplaceAll(err.Error(), c.apiKey, "REDACTED"))
}

func joinSymbols(symbols []string) string {
	escaped := make([]string, len(symbols))
	for i, s := range symbols {
		escaped[i] = url.PathEscape(s)
	}
	return strings.Join(escaped, ",")
}

func first[T any](xs []T) *T {
	if len(xs) == 0 {
		return nil
	}
	return &xs[0]
}

// leveledLogger routes retryablehttp's logging through the service logger.
type leveledLogger struct {
	log    logger.Logger
	apiKey string
}

func (l leveledLogger) Error(msg string, kv ...interface{}) {
	l.log.Warn(context.Background(), msg, l.fields(kv))
}

func (l leveledLogger) Info(msg string, kv ...interface{}) {
	l.log.Debug(context.Background(), msg, l.fields(kv))
}

func (l leveledLogger) Debug(msg string, kv ...interface{}) {
	l.log.Debug(context.Background(), msg, l.fields(kv))
}

func (l leveledLogger) Warn(msg string, kv ...interface{}) {
	l.log.Warn(context.Background(), msg, l.fields(kv))
}

// fields converts key/value pairs, masking the API key that request URLs carry.
func (l leveledLogger) fields(kv []interface{}) logger.Fields {
	fields := logger.Fields{}
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		value := fmt.Sprint(kv[i+1])
		if l.apiKey != "" {
			value = strings.ReplaceAll(value, l.apiKey, "REDACTED")
		}
		fields[key] = value
	}
	return fields
}

//Personal.AI order the ending
