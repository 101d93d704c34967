// internal/application/service/market_service.go
package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/stockwatch/internal/domain/models"
	"github.com/turtacn/stockwatch/internal/domain/service"
	"github.com/turtacn/stockwatch/internal/infrastructure/cache"
	"github.com/turtacn/stockwatch/internal/infrastructure/marketdata"
	"github.com/turtacn/stockwatch/pkg/constants"
	"github.com/turtacn/stockwatch/pkg/errors"
	"github.com/turtacn/stockwatch/pkg/logger"
)

const (
	dateLayout        = "2006-01-02"
	popularFrom       = 4
	popularTo         = 8
	miniChartPoints   = 8
	intradayPoints    = 78
	searchUnknown     = "Unknown"
	upstreamFanOut    = 4
	oneYear           = 365 * 24 * time.Hour
	fiveYears         = 5 * oneYear
	intradayInterval  = "5min"
	searchChartPeriod = "1hour"
)

// MarketDataProvider is the market-data API used by the market service.
// MarketDataProvider 行情数据提供方接口。
type MarketDataProvider interface {
	Quotes(ctx context.Context, symbols ...string) ([]marketdata.Quote, error)
	Actives(ctx context.Context) ([]marketdata.Active, error)
	History(ctx context.Context, symbol string, n int) (*marketdata.HistoricalPrices, error)
	HistoryRange(ctx context.Context, symbol string, from, to time.Time) (*marketdata.HistoricalPrices, error)
	Chart(ctx context.Context, symbol, interval string) ([]marketdata.Bar, error)
	Rating(ctx context.Context, symbol string) (*marketdata.Rating, error)
	Search(ctx context.Context, query string, limit int) ([]marketdata.SearchMatch, error)
	Profile(ctx context.Context, symbol string) (*marketdata.Profile, error)
	KeyMetrics(ctx context.Context, symbol string) (*marketdata.KeyMetrics, error)
	Ratios(ctx context.Context, symbol string) (*marketdata.Ratios, error)
	PriceTargets(ctx context.Context, symbol string) ([]marketdata.PriceTarget, error)
}

// marketServiceImpl shapes provider responses into the views served to clients.
// The primary call of each operation must succeed; secondary sections (charts, ratings,
// metrics) degrade to their defaults when the provider fails, and the result is marked
// degraded so the response cache does not keep it.
// marketServiceImpl 行情应用服务实现。
type marketServiceImpl struct {
	provider MarketDataProvider
	logger   logger.Logger
	now      func() time.Time
}

// NewMarketService creates a new instance of MarketService.
// NewMarketService 创建行情服务实例。
func NewMarketService(provider MarketDataProvider, log logger.Logger) service.MarketService {
	return &marketServiceImpl{
		provider: provider,
		logger:   log.WithComponent("MarketService"),
		now:      time.Now,
	}
}

// PopularStocks returns a slice of the most-active list with weekly mini charts.
func (s *marketServiceImpl) PopularStocks(ctx context.Context) ([]models.PopularStock, error) {
	actives, err := s.provider.Actives(ctx)
	if err != nil {
		return nil, err
	}
	if len(actives) == 0 {
		return nil, errors.ErrUpstream(fmt.Errorf("could not retrieve active stocks"))
	}

	window := actives[min(popularFrom, len(actives)):min(popularTo, len(actives))]
	out := make([]models.PopularStock, len(window))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(upstreamFanOut)
	for i, a := range window {
		g.Go(func() error {
			name := a.Name
			if name == "" {
				name = a.Symbol
			}
			out[i] = models.PopularStock{
				Symbol:        a.Symbol,
				CompanyName:   name,
				CurrentPrice:  a.Price,
				Change:        a.Change,
				PercentChange: a.ChangesPercentage,
				MiniChartData: s.miniChart(gctx, a.Symbol),
			}
			return nil
		})
	}
	_ = g.Wait()

	return out, nil
}

// miniChart keeps the newest close of each of the last eight ISO weeks, oldest first.
func (s *marketServiceImpl) miniChart(ctx context.Context, symbol string) models.MiniChart {
	chart := models.MiniChart{Timestamps: []string{}, Prices: []float64{}}

	now := s.now()
	hist, err := s.provider.HistoryRange(ctx, symbol, now.Add(-constants.PopularChartWindow), now)
	if err != nil {
		s.logger.Warn(ctx, "Mini chart unavailable", logger.String("symbol", symbol), logger.Error(err))
		cache.MarkDegraded(ctx)
		return chart
	}

	bars := append([]marketdata.Bar(nil), hist.Historical...)
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Date > bars[j].Date })

	var weekly []marketdata.Bar
	lastWeek := ""
	for _, b := range bars {
		if len(weekly) == miniChartPoints {
			break
		}
		t, err := time.Parse(dateLayout, b.Date)
		if err != nil {
			continue
		}
		if week := isoWeek(t); week != lastWeek {
			lastWeek = week
			weekly = append(weekly, b)
		}
	}

	for i := len(weekly) - 1; i >= 0; i-- {
		chart.Timestamps = append(chart.Timestamps, weekly[i].Date)
		chart.Prices = append(chart.Prices, weekly[i].Close)
	}
	return chart
}

// Stock returns the summary for one symbol. An empty symbol yields a zero summary.
func (s *marketServiceImpl) Stock(ctx context.Context, symbol string) (models.StockSummary, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return models.EmptySummary(""), nil
	}

	quotes, err := s.provider.Quotes(ctx, symbol)
	if err != nil {
		return models.StockSummary{}, err
	}
	if len(quotes) == 0 {
		return models.EmptySummary(symbol), nil
	}
	return s.summarize(ctx, quotes[0]), nil
}

// MultipleStocks returns summaries keyed by symbol, using one quote call for all symbols.
// Symbols the provider does not know are absent from the result.
func (s *marketServiceImpl) MultipleStocks(ctx context.Context, symbols []string) (map[string]models.StockSummary, error) {
	out := make(map[string]models.StockSummary, len(symbols))
	if len(symbols) == 0 {
		return out, nil
	}

	quotes, err := s.provider.Quotes(ctx, symbols...)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.StockSummary, len(quotes))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(upstreamFanOut)
	for i, q := range quotes {
		g.Go(func() error {
			summaries[i] = s.summarize(gctx, q)
			return nil
		})
	}
	_ = g.Wait()

	for _, summary := range summaries {
		out[summary.Symbol] = summary
	}
	return out, nil
}

func (s *marketServiceImpl) summarize(ctx context.Context, q marketdata.Quote) models.StockSummary {
	summary := models.StockSummary{
		Symbol:  q.Symbol,
		Price:   q.Price,
		Change:  q.ChangesPercentage,
		History: []models.PricePoint{},
	}

	if hist, err := s.provider.History(ctx, q.Symbol, constants.HistoryTimeseries); err != nil {
		s.logger.Warn(ctx, "History unavailable", logger.String("symbol", q.Symbol), logger.Error(err))
		cache.MarkDegraded(ctx)
	} else {
		bars := hist.Historical
		if len(bars) > constants.HistoryTimeseries {
			bars = bars[:constants.HistoryTimeseries]
		}
		for _, b := range bars {
			summary.History = append(summary.History, models.PricePoint{Date: b.Date, Price: b.Close})
		}
	}

	recommendation := s.recommendation(ctx, q.Symbol)
	summary.Recommendation = &recommendation
	return summary
}

func (s *marketServiceImpl) recommendation(ctx context.Context, symbol string) string {
	rating, err := s.provider.Rating(ctx, symbol)
	if err != nil {
		s.logger.Warn(ctx, "Rating unavailable", logger.String("symbol", symbol), logger.Error(err))
		cache.MarkDegraded(ctx)
		return constants.RecommendationNone
	}
	if rating == nil || rating.RatingRecommendation == "" {
		return constants.RecommendationNone
	}
	return rating.RatingRecommendation
}

// Search joins up to ten ticker matches with their quotes and an hourly close chart.
func (s *marketServiceImpl) Search(ctx context.Context, query string) (models.SearchResult, error) {
	result := models.SearchResult{Quotes: []models.SearchQuote{}}

	query = strings.TrimSpace(query)
	if query == "" {
		return result, nil
	}

	matches, err := s.provider.Search(ctx, query, constants.SearchLimit)
	if err != nil {
		return result, err
	}

	var symbols []string
	for _, m := range matches {
		if m.Symbol != "" {
			symbols = append(symbols, m.Symbol)
		}
	}
	if len(symbols) == 0 {
		return result, nil
	}

	quotes, err := s.provider.Quotes(ctx, symbols...)
	if err != nil {
		return result, err
	}
	bySymbol := make(map[string]marketdata.Quote, len(quotes))
	for _, q := range quotes {
		bySymbol[q.Symbol] = q
	}

	var joined []models.SearchQuote
	for _, m := range matches {
		q, ok := bySymbol[m.Symbol]
		if m.Symbol == "" || !ok {
			continue
		}
		joined = append(joined, models.SearchQuote{
			Symbol:                     m.Symbol,
			LongName:                   orUnknown(m.Name),
			ShortName:                  orUnknown(m.Name),
			Exchange:                   orUnknown(m.ExchangeShortName),
			ExchDisp:                   orUnknown(m.StockExchange),
			Industry:                   orUnknown(q.Industry),
			RegularMarketPrice:         q.Price,
			RegularMarketChangePercent: q.ChangesPercentage,
		})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(upstreamFanOut)
	for i := range joined {
		g.Go(func() error {
			joined[i].ChartData = s.hourlyCloses(gctx, joined[i].Symbol)
			return nil
		})
	}
	_ = g.Wait()

	if joined != nil {
		result.Quotes = joined
	}
	return result, nil
}

// hourlyCloses returns hourly closes oldest first, or a single zero when unavailable.
func (s *marketServiceImpl) hourlyCloses(ctx context.Context, symbol string) []float64 {
	bars, err := s.provider.Chart(ctx, symbol, searchChartPeriod)
	if err != nil {
		s.logger.Warn(ctx, "Search chart unavailable", logger.String("symbol", symbol), logger.Error(err))
		cache.MarkDegraded(ctx)
	}
	if len(bars) == 0 {
		return []float64{0}
	}
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[len(bars)-1-i] = b.Close
	}
	return closes
}

// detailInputs collects the provider responses a stock detail is assembled from.
type detailInputs struct {
	quote      *marketdata.Quote
	profile    *marketdata.Profile
	keyMetrics *marketdata.KeyMetrics
	ratios     *marketdata.Ratios
	rating     string
	targets    []marketdata.PriceTarget
	intraday   []marketdata.Bar
	monthly    *marketdata.HistoricalPrices
	yearly     *marketdata.HistoricalPrices
	fiveYear   *marketdata.HistoricalPrices
}

// StockDetail assembles the full page for a ticker. The quote call must succeed;
// every other section falls back to its default when the provider fails.
func (s *marketServiceImpl) StockDetail(ctx context.Context, symbol string) (models.StockDetail, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return models.StockDetail{}, errors.ErrInvalidSymbol(symbol)
	}

	quotes, err := s.provider.Quotes(ctx, symbol)
	if err != nil {
		return models.StockDetail{}, err
	}

	in := detailInputs{rating: constants.RecommendationNone}
	if len(quotes) > 0 {
		in.quote = &quotes[0]
	}

	now := s.now()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(upstreamFanOut)
	fetch := func(section string, fn func(ctx context.Context) error) {
		g.Go(func() error {
			if err := fn(gctx); err != nil {
				s.logger.Warn(gctx, "Detail section unavailable",
					logger.String("symbol", symbol), logger.String("section", section), logger.Error(err))
				cache.MarkDegraded(gctx)
			}
			return nil
		})
	}

	fetch("profile", func(ctx context.Context) (err error) {
		in.profile, err = s.provider.Profile(ctx, symbol)
		return err
	})
	fetch("key_metrics", func(ctx context.Context) (err error) {
		in.keyMetrics, err = s.provider.KeyMetrics(ctx, symbol)
		return err
	})
	fetch("ratios", func(ctx context.Context) (err error) {
		in.ratios, err = s.provider.Ratios(ctx, symbol)
		return err
	})
	fetch("rating", func(ctx context.Context) error {
		in.rating = s.recommendation(ctx, symbol)
		return nil
	})
	fetch("price_target", func(ctx context.Context) (err error) {
		in.targets, err = s.provider.PriceTargets(ctx, symbol)
		return err
	})
	fetch("1d", func(ctx context.Context) (err error) {
		in.intraday, err = s.provider.Chart(ctx, symbol, intradayInterval)
		return err
	})
	fetch("1mo", func(ctx context.Context) (err error) {
		in.monthly, err = s.provider.History(ctx, symbol, constants.HistoryTimeseries)
		return err
	})
	fetch("1y", func(ctx context.Context) (err error) {
		in.yearly, err = s.provider.HistoryRange(ctx, symbol, now.Add(-oneYear), now)
		return err
	})
	fetch("5y", func(ctx context.Context) (err error) {
		in.fiveYear, err = s.provider.HistoryRange(ctx, symbol, now.Add(-fiveYears), now)
		return err
	})
	_ = g.Wait()

	return assembleDetail(symbol, in), nil
}

func assembleDetail(symbol string, in detailInputs) models.StockDetail {
	d := models.NewStockDetail(symbol)
	pd := &d.PriceData
	fm := &d.FinancialMetrics

	if q := in.quote; q != nil {
		previousClose := valueOr(q.PreviousClose, q.Price)
		if q.Price != 0 && previousClose != 0 {
			change := q.Price - previousClose
			*pd = models.PriceData{
				CurrentPrice:     q.Price,
				PreviousClose:    previousClose,
				Open:             valueOr(q.Open, q.Price),
				DayHigh:          valueOr(q.DayHigh, q.Price),
				DayLow:           valueOr(q.DayLow, q.Price),
				DayChange:        change,
				DayChangePercent: change / previousClose * 100,
				YearHigh:         q.YearHigh,
				YearLow:          q.YearLow,
				Volume:           q.Volume,
			}
		}
	}

	if p := in.profile; p != nil {
		name := p.CompanyName
		if name == "" {
			name = symbol
		}
		d.CompanyInfo = models.CompanyInfo{
			Name:        name,
			Sector:      p.Sector,
			Industry:    p.Industry,
			Website:     p.Website,
			Description: p.Description,
			Exchange:    p.Exchange,
			MarketCap:   p.MktCap,
			Employees:   int64(p.FullTimeEmployees),
		}

		if pd.Volume == 0 {
			pd.Volume = p.Volume
		}
		if pd.YearHigh == 0 {
			pd.YearHigh = p.YearHigh
		}
		if pd.YearLow == 0 {
			pd.YearLow = p.YearLow
		}

		price := pd.CurrentPrice
		if price == 0 {
			price = p.Price
		}
		var divYield float64
		if p.LastDiv > 0 && price > 0 {
			divYield = p.LastDiv / price * 100
		}

		fm.PERatio = p.PE
		fm.EPS = p.EPS
		fm.DividendYield = divYield
		fm.DividendRate = p.LastDiv
		fm.ProfitMargin = valueOr(p.ProfitMargin, 0)
		fm.Beta = p.Beta
	}

	if km := in.keyMetrics; km != nil {
		fillZero(&fm.PERatio, km.PERatio)
		fillZero(&fm.EPS, km.NetIncomePerShare)
		fillZero(&fm.ProfitMargin, km.NetProfitMargin)
	}

	if r := in.ratios; r != nil {
		fillZero(&fm.PERatio, r.PriceEarningsRatio)
		if fm.EPS == 0 && r.PriceEarningsRatio > 0 {
			if eps := r.PriceToBookRatio / r.PriceEarningsRatio; eps > 0 {
				fm.EPS = eps
			}
		}
		fillZero(&fm.DividendYield, r.DividendYield*100)
		fillZero(&fm.ProfitMargin, r.NetProfitMargin)
	}

	fm.Recommendation = in.rating
	if len(in.targets) > 0 {
		fm.TargetPrice = in.targets[0].PriceTarget
	}

	if in.intraday != nil {
		bars := sortedByDate(in.intraday)
		if len(bars) > intradayPoints {
			bars = bars[len(bars)-intradayPoints:]
		}
		d.HistoricalData.OneDay = models.Series{Interval: intradayInterval, Data: closePoints(bars)}
	}
	if in.monthly != nil {
		d.HistoricalData.OneMonth.Data = closePoints(sortedByDate(in.monthly.Historical))
	}
	if in.yearly != nil {
		d.HistoricalData.OneYear.Data = latestPerBucket(in.yearly.Historical, isoWeek)
	}
	if in.fiveYear != nil {
		d.HistoricalData.FiveYears.Data = latestPerBucket(in.fiveYear.Historical, func(t time.Time) string {
			return t.Format("2006-01")
		})
	}

	return d
}

// latestPerBucket keeps the newest bar of each bucket, ordered by date.
func latestPerBucket(bars []marketdata.Bar, bucket func(time.Time) string) []models.ClosePoint {
	latest := make(map[string]marketdata.Bar)
	for _, b := range bars {
		t, err := time.Parse(dateLayout, b.Date)
		if err != nil {
			continue
		}
		key := bucket(t)
		if cur, ok := latest[key]; !ok || b.Date > cur.Date {
			latest[key] = b
		}
	}

	kept := make([]marketdata.Bar, 0, len(latest))
	for _, b := range latest {
		kept = append(kept, b)
	}
	return closePoints(sortedByDate(kept))
}

func sortedByDate(bars []marketdata.Bar) []marketdata.Bar {
	out := append([]marketdata.Bar(nil), bars...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

func closePoints(bars []marketdata.Bar) []models.ClosePoint {
	out := make([]models.ClosePoint, len(bars))
	for i, b := range bars {
		out[i] = models.ClosePoint{Date: b.Date, Close: b.Close}
	}
	return out
}

func isoWeek(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-%02d", year, week)
}

func valueOr(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}

func fillZero(dst *float64, v float64) {
	if *dst == 0 {
		*dst = v
	}
}

func orUnknown(s string) string {
	if s == "" {
		return searchUnknown
	}
	return s
}

//Personal.AI order the ending
