// Package cache implements the response cache that memoizes market-data operations.
package cache

import (
	"context"
	"time"
)

// Store is the key-value backend behind a ResponseCache.
// Values returned by Get must be treated as read-only.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Purge(ctx context.Context) error
	Len() int
}
