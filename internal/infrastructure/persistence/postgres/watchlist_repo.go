package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/turtacn/stockwatch/internal/domain/models"
	"github.com/turtacn/stockwatch/internal/domain/repository"
	"github.com/turtacn/stockwatch/pkg/errors"
	"github.com/turtacn/stockwatch/pkg/logger"
)

// WatchlistRepoImpl implements WatchlistRepository with gorm.
type WatchlistRepoImpl struct {
	db     *gorm.DB
	logger logger.Logger
}

// NewWatchlistRepository creates a gorm-backed watchlist repository.
func NewWatchlistRepository(db *gorm.DB, log logger.Logger) repository.WatchlistRepository {
	return &WatchlistRepoImpl{db: db, logger: log}
}

// Add saves a stock; the (google_id, symbol) unique index turns a race into a conflict.
func (r *WatchlistRepoImpl) Add(ctx context.Context, stock *models.SavedStock) error {
	startTime := time.Now()

	if err := r.db.WithContext(ctx).Create(stock).Error; err != nil {
		if isUniqueViolation(err) {
			return errors.ErrConflict("Stock already exists").WithMetadata("symbol", stock.Symbol)
		}
		r.logger.Error(ctx, "Failed to save stock", err,
			logger.String("google_id", stock.GoogleID),
			logger.String("symbol", stock.Symbol),
		)
		return errors.ErrServerError("Failed to save stock").WithCause(err)
	}

	r.logger.Info(ctx, "Stock saved",
		logger.String("google_id", stock.GoogleID),
		logger.String("symbol", stock.Symbol),
		logger.Int64("latency_ms", time.Since(startTime).Milliseconds()),
	)
	return nil
}

func (r *WatchlistRepoImpl) Exists(ctx context.Context, googleID, symbol string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.SavedStock{}).
		Where("google_id = ? AND symbol = ?", googleID, symbol).
		Count(&count).Error
	if err != nil {
		r.logger.Error(ctx, "Failed to check saved stock", err, logger.String("symbol", symbol))
		return false, errors.ErrServerError("failed to check saved stock").WithCause(err)
	}
	return count > 0, nil
}

func (r *WatchlistRepoImpl) ListByGoogleID(ctx context.Context, googleID string) ([]*models.SavedStock, error) {
	var stocks []*models.SavedStock
	err := r.db.WithContext(ctx).
		Where("google_id = ?", googleID).
		Order("id").
		Find(&stocks).Error
	if err != nil {
		r.logger.Error(ctx, "Failed to list saved stocks", err, logger.String("google_id", googleID))
		return nil, errors.ErrServerError("failed to list saved stocks").WithCause(err)
	}
	return stocks, nil
}

func (r *WatchlistRepoImpl) Remove(ctx context.Context, googleID, symbol string) error {
	result := r.db.WithContext(ctx).
		Where("google_id = ? AND symbol = ?", googleID, symbol).
		Delete(&models.SavedStock{})
	if result.Error != nil {
		r.logger.Error(ctx, "Failed to remove saved stock", result.Error, logger.String("symbol", symbol))
		return errors.ErrServerError("failed to remove saved stock").WithCause(result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.ErrNotFound("Stock not found").WithMetadata("symbol", symbol)
	}
	return nil
}
