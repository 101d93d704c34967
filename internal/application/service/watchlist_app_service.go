package service

import (
	"context"
	"strings"

	"github.com/turtacn/stockwatch/internal/application/dto"
	"github.com/turtacn/stockwatch/internal/domain/models"
	"github.com/turtacn/stockwatch/internal/domain/repository"
	"github.com/turtacn/stockwatch/internal/domain/service"
	"github.com/turtacn/stockwatch/internal/infrastructure/marketdata"
	"github.com/turtacn/stockwatch/pkg/constants"
	"github.com/turtacn/stockwatch/pkg/errors"
	"github.com/turtacn/stockwatch/pkg/logger"
)

// QuoteSource provides live quotes.
type QuoteSource interface {
	Quotes(ctx context.Context, symbols ...string) ([]marketdata.Quote, error)
}

// WatchlistAppService manages a user's saved stocks.
type WatchlistAppService interface {
	Save(ctx context.Context, googleID, symbol string) (*dto.SaveStockResponse, error)
	List(ctx context.Context, googleID string) (*dto.WatchlistResponse, error)
	Remove(ctx context.Context, googleID, symbol string) (*dto.MessageResponse, error)
}

type watchlistAppServiceImpl struct {
	users  repository.UserRepository
	stocks repository.WatchlistRepository
	quotes QuoteSource
	market service.MarketService
	events service.EventPublisher
	logger logger.Logger
}

// NewWatchlistAppService creates a new instance of WatchlistAppService.
// Quotes for saving come straight from the provider; list summaries go through market,
// which is normally the cached service.
func NewWatchlistAppService(
	users repository.UserRepository,
	stocks repository.WatchlistRepository,
	quotes QuoteSource,
	market service.MarketService,
	events service.EventPublisher,
	log logger.Logger,
) WatchlistAppService {
	return &watchlistAppServiceImpl{
		users:  users,
		stocks: stocks,
		quotes: quotes,
		market: market,
		events: events,
		logger: log.WithComponent("WatchlistAppService"),
	}
}

func (s *watchlistAppServiceImpl) Save(ctx context.Context, googleID, raw string) (*dto.SaveStockResponse, error) {
	symbol, err := models.NormalizeSymbol(raw)
	if err != nil {
		return nil, err
	}

	if _, err := s.users.FindByGoogleID(ctx, googleID); err != nil {
		return nil, err
	}

	exists, err := s.stocks.Exists(ctx, googleID, symbol)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errors.ErrConflict("Stock is already added").WithMetadata("symbol", symbol)
	}

	quotes, err := s.quotes.Quotes(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if len(quotes) == 0 {
		return nil, errors.ErrInvalidRequest("Invalid or missing stock data").WithMetadata("symbol", symbol)
	}
	quote := quotes[0]
	if quote.Price == 0 {
		return nil, errors.ErrInvalidRequest("Invalid or missing stock price data").WithMetadata("symbol", symbol)
	}

	name := quote.Name
	if name == "" {
		name = symbol
	}
	stock := &models.SavedStock{
		GoogleID:    googleID,
		Symbol:      symbol,
		CompanyName: name,
		PriceAtSave: quote.Price,
	}
	if err := s.stocks.Add(ctx, stock); err != nil {
		return nil, err
	}

	publish(ctx, s.events, s.logger, models.NewEvent(constants.EventStockSaved, googleID, symbol))
	s.logger.Info(ctx, "Stock saved", logger.String("google_id", googleID), logger.String("symbol", symbol))

	return &dto.SaveStockResponse{
		Success:   true,
		Message:   "Stock saved successfully!",
		Timestamp: stock.DateSaved,
	}, nil
}

func (s *watchlistAppServiceImpl) List(ctx context.Context, googleID string) (*dto.WatchlistResponse, error) {
	saved, err := s.stocks.ListByGoogleID(ctx, googleID)
	if err != nil {
		return nil, err
	}

	symbols := make([]string, len(saved))
	for i, st := range saved {
		symbols[i] = st.Symbol
	}

	summaries, err := s.market.MultipleStocks(ctx, symbols)
	if err != nil {
		// The list is still useful without live prices.
		s.logger.Warn(ctx, "Live summaries unavailable for watchlist", logger.String("google_id", googleID), logger.Error(err))
		summaries = nil
	}

	views := make([]dto.SavedStockView, 0, len(saved))
	for _, st := range saved {
		var summary *models.StockSummary
		if sm, ok := summaries[st.Symbol]; ok {
			summary = &sm
		}
		views = append(views, dto.NewSavedStockView(st, summary))
	}

	return &dto.WatchlistResponse{Success: true, SavedStocks: views}, nil
}

func (s *watchlistAppServiceImpl) Remove(ctx context.Context, googleID, raw string) (*dto.MessageResponse, error) {
	symbol := strings.ToUpper(strings.TrimSpace(raw))
	if err := s.stocks.Remove(ctx, googleID, symbol); err != nil {
		return nil, err
	}

	publish(ctx, s.events, s.logger, models.NewEvent(constants.EventStockRemoved, googleID, symbol))
	return &dto.MessageResponse{Message: symbol + " deleted"}, nil
}
