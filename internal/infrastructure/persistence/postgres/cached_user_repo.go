package postgres

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/turtacn/stockwatch/internal/domain/models"
	"github.com/turtacn/stockwatch/internal/domain/repository"
)

// CachedUserRepository keeps recent user lookups in memory, keyed by google_id.
// Guarded routes resolve the caller on every request.
type CachedUserRepository struct {
	next  repository.UserRepository
	cache *gocache.Cache
}

// NewCachedUserRepository wraps next with a per-identity cache of the given lifetime.
func NewCachedUserRepository(next repository.UserRepository, ttl time.Duration) *CachedUserRepository {
	return &CachedUserRepository{
		next:  next,
		cache: gocache.New(ttl, 2*ttl),
	}
}

func (r *CachedUserRepository) FindByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	if cached, ok := r.cache.Get(googleID); ok {
		u := *cached.(*models.User)
		return &u, nil
	}

	user, err := r.next.FindByGoogleID(ctx, googleID)
	if err != nil {
		return nil, err
	}
	stored := *user
	r.cache.SetDefault(googleID, &stored)
	return user, nil
}

func (r *CachedUserRepository) Upsert(ctx context.Context, user *models.User) error {
	r.cache.Delete(user.GoogleID)
	if err := r.next.Upsert(ctx, user); err != nil {
		return err
	}
	stored := *user
	r.cache.SetDefault(user.GoogleID, &stored)
	return nil
}

var _ repository.UserRepository = (*CachedUserRepository)(nil)
