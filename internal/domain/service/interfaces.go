// Package service declares the domain service contracts implemented by the
// application and infrastructure layers.
package service

import (
	"context"

	"github.com/turtacn/stockwatch/internal/domain/models"
)

// MarketService serves market data for the HTTP layer.
type MarketService interface {
	PopularStocks(ctx context.Context) ([]models.PopularStock, error)
	Stock(ctx context.Context, symbol string) (models.StockSummary, error)
	MultipleStocks(ctx context.Context, symbols []string) (map[string]models.StockSummary, error)
	Search(ctx context.Context, query string) (models.SearchResult, error)
	StockDetail(ctx context.Context, symbol string) (models.StockDetail, error)
}

// EventPublisher hands domain events to the event bus.
type EventPublisher interface {
	Publish(ctx context.Context, event models.Event) error
	Close() error
}

// GoogleIdentity is the verified content of a Google ID token.
type GoogleIdentity struct {
	Subject string
	Email   string
	Name    string
	Picture string
}

// IdentityVerifier verifies an ID token issued by the external identity provider.
type IdentityVerifier interface {
	Verify(ctx context.Context, rawIDToken string) (*GoogleIdentity, error)
}
