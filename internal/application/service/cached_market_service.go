package service

import (
	"context"
	"strings"
	"time"

	"github.com/turtacn/stockwatch/internal/config"
	"github.com/turtacn/stockwatch/internal/domain/models"
	"github.com/turtacn/stockwatch/internal/domain/service"
	"github.com/turtacn/stockwatch/internal/infrastructure/cache"
	"github.com/turtacn/stockwatch/pkg/constants"
)

// CachedMarketService memoizes a MarketService through the response cache.
// Keys never include the caller's identity, so entries are shared across users.
type CachedMarketService struct {
	next  service.MarketService
	cache *cache.ResponseCache
	ttls  config.CacheConfig
}

// NewCachedMarketService wraps next. Per-operation TTLs come from cfg.TTLFor.
func NewCachedMarketService(next service.MarketService, rc *cache.ResponseCache, cfg config.CacheConfig) *CachedMarketService {
	return &CachedMarketService{next: next, cache: rc, ttls: cfg}
}

func (c *CachedMarketService) ttl(op string) time.Duration {
	return c.ttls.TTLFor(op)
}

func (c *CachedMarketService) PopularStocks(ctx context.Context) ([]models.PopularStock, error) {
	key := cache.MakeKey(constants.OpPopularStocks, nil, nil)
	return cache.Memoize(ctx, c.cache, key, c.ttl(constants.OpPopularStocks), c.next.PopularStocks)
}

func (c *CachedMarketService) Stock(ctx context.Context, symbol string) (models.StockSummary, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	key := cache.MakeKey(constants.OpStocks, []any{symbol}, nil)
	return cache.Memoize(ctx, c.cache, key, c.ttl(constants.OpStocks), func(ctx context.Context) (models.StockSummary, error) {
		return c.next.Stock(ctx, symbol)
	})
}

func (c *CachedMarketService) MultipleStocks(ctx context.Context, symbols []string) (map[string]models.StockSummary, error) {
	if len(symbols) == 0 {
		return map[string]models.StockSummary{}, nil
	}
	key := cache.MakeKey(constants.OpMultipleStocks, []any{strings.Join(symbols, ",")}, nil)
	return cache.Memoize(ctx, c.cache, key, c.ttl(constants.OpMultipleStocks), func(ctx context.Context) (map[string]models.StockSummary, error) {
		return c.next.MultipleStocks(ctx, symbols)
	})
}

func (c *CachedMarketService) Search(ctx context.Context, query string) (models.SearchResult, error) {
	query = strings.TrimSpace(query)
	key := cache.MakeKey(constants.OpSearch, []any{query}, map[string]any{"limit": constants.SearchLimit})
	return cache.Memoize(ctx, c.cache, key, c.ttl(constants.OpSearch), func(ctx context.Context) (models.SearchResult, error) {
		return c.next.Search(ctx, query)
	})
}

func (c *CachedMarketService) StockDetail(ctx context.Context, symbol string) (models.StockDetail, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	key := cache.MakeKey(constants.OpStockDetail, []any{symbol}, nil)
	return cache.Memoize(ctx, c.cache, key, c.ttl(constants.OpStockDetail), func(ctx context.Context) (models.StockDetail, error) {
		return c.next.StockDetail(ctx, symbol)
	})
}

var _ service.MarketService = (*CachedMarketService)(nil)
