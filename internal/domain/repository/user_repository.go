// Package repository 定义领域仓储接口
package repository

import (
	"context"

	"github.com/turtacn/stockwatch/internal/domain/models"
)

// UserRepository 定义用户仓储接口
// 实现类：internal/infrastructure/persistence/postgres/user_repo.go
type UserRepository interface {
	// FindByGoogleID 根据 Google 账号 ID 查询用户
	// 用户不存在时返回 ErrUserNotFound
	FindByGoogleID(ctx context.Context, googleID string) (*models.User, error)

	// Upsert 登录时创建或更新用户资料 (按 google_id 匹配)
	Upsert(ctx context.Context, user *models.User) error
}
