package repository

import (
	"context"

	"github.com/turtacn/stockwatch/internal/domain/models"
)

// WatchlistRepository 定义自选股仓储接口
type WatchlistRepository interface {
	// Add 保存一条自选股记录
	// 同一用户重复保存同一代码时返回 conflict 错误
	Add(ctx context.Context, stock *models.SavedStock) error

	// Exists 判断用户是否已保存该代码
	Exists(ctx context.Context, googleID, symbol string) (bool, error)

	// ListByGoogleID 按保存顺序返回用户的全部自选股
	ListByGoogleID(ctx context.Context, googleID string) ([]*models.SavedStock, error)

	// Remove 删除一条自选股记录
	// 记录不存在时返回 not_found 错误
	Remove(ctx context.Context, googleID, symbol string) error
}
