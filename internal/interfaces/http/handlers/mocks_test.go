package handlers

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/turtacn/stockwatch/internal/application/dto"
	"github.com/turtacn/stockwatch/internal/domain/models"
)

// MockMarketService is a mock for the MarketService
type MockMarketService struct {
	mock.Mock
}

func (m *MockMarketService) PopularStocks(ctx context.Context) ([]models.PopularStock, error) {
	args := m.Called(ctx)
	stocks, _ := args.Get(0).([]models.PopularStock)
	return stocks, args.Error(1)
}

func (m *MockMarketService) Stock(ctx context.Context, symbol string) (models.StockSummary, error) {
	args := m.Called(ctx, symbol)
	return args.Get(0).(models.StockSummary), args.Error(1)
}

func (m *MockMarketService) MultipleStocks(ctx context.Context, symbols []string) (map[string]models.StockSummary, error) {
	args := m.Called(ctx, symbols)
	out, _ := args.Get(0).(map[string]models.StockSummary)
	return out, args.Error(1)
}

func (m *MockMarketService) Search(ctx context.Context, query string) (models.SearchResult, error) {
	args := m.Called(ctx, query)
	return args.Get(0).(models.SearchResult), args.Error(1)
}

func (m *MockMarketService) StockDetail(ctx context.Context, symbol string) (models.StockDetail, error) {
	args := m.Called(ctx, symbol)
	return args.Get(0).(models.StockDetail), args.Error(1)
}

// MockAuthAppService is a mock for the AuthAppService
type MockAuthAppService struct {
	mock.Mock
}

func (m *MockAuthAppService) Login(ctx context.Context, credential string) (*dto.LoginResponse, error) {
	args := m.Called(ctx, credential)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.LoginResponse), args.Error(1)
}

func (m *MockAuthAppService) Profile(ctx context.Context, googleID string) (*dto.UserProfile, error) {
	args := m.Called(ctx, googleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.UserProfile), args.Error(1)
}

// MockWatchlistAppService is a mock for the WatchlistAppService
type MockWatchlistAppService struct {
	mock.Mock
}

func (m *MockWatchlistAppService) Save(ctx context.Context, googleID, symbol string) (*dto.SaveStockResponse, error) {
	args := m.Called(ctx, googleID, symbol)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.SaveStockResponse), args.Error(1)
}

func (m *MockWatchlistAppService) List(ctx context.Context, googleID string) (*dto.WatchlistResponse, error) {
	args := m.Called(ctx, googleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.WatchlistResponse), args.Error(1)
}

func (m *MockWatchlistAppService) Remove(ctx context.Context, googleID, symbol string) (*dto.MessageResponse, error) {
	args := m.Called(ctx, googleID, symbol)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.MessageResponse), args.Error(1)
}
