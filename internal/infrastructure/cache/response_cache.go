package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/turtacn/stockwatch/internal/infrastructure/monitoring"
	"github.com/turtacn/stockwatch/pkg/constants"
	"github.com/turtacn/stockwatch/pkg/errors"
	"github.com/turtacn/stockwatch/pkg/logger"
)

// ComputeFunc produces the value to memoize.
type ComputeFunc func(ctx context.Context) ([]byte, error)

// Options configures a ResponseCache.
type Options struct {
	// DefaultTTL applies when a caller passes a ttl <= 0.
	DefaultTTL time.Duration

	// SingleFlight collapses concurrent misses on one key into a single compute.
	// When false, every concurrent miss computes.
	SingleFlight bool
}

// ResponseCache memoizes successful results of expensive operations.
// Failed, panicking or degraded computations are never stored.
// Store failures are logged and treated as misses.
type ResponseCache struct {
	store   Store
	opts    Options
	group   singleflight.Group
	log     logger.Logger
	metrics *monitoring.Metrics
}

// New wraps store. metrics may be nil.
func New(store Store, opts Options, log logger.Logger, metrics *monitoring.Metrics) *ResponseCache {
	if opts.DefaultTTL <= 0 {
		opts.DefaultTTL = constants.DefaultCacheTTL
	}
	return &ResponseCache{
		store:   store,
		opts:    opts,
		log:     log.WithComponent("response_cache"),
		metrics: metrics,
	}
}

// GetOrCompute returns the cached value for key, or runs compute and stores its result for ttl.
//
// With SingleFlight enabled the shared compute runs detached from any single caller's
// cancellation; each waiting caller still returns as soon as its own ctx is done.
// A panic in compute is returned as an internal error. The returned slice may be shared
// with other callers of the same flight and must not be modified.
func (rc *ResponseCache) GetOrCompute(ctx context.Context, key string, ttl time.Duration, compute ComputeFunc) ([]byte, error) {
	if ttl <= 0 {
		ttl = rc.opts.DefaultTTL
	}

	if v, ok := rc.lookup(ctx, key); ok {
		rc.record("hit")
		return v, nil
	}
	rc.record("miss")

	if !rc.opts.SingleFlight {
		return rc.computeAndStore(ctx, key, ttl, compute)
	}

	flightCtx := context.WithoutCancel(ctx)
	ch := rc.group.DoChan(key, func() (interface{}, error) {
		// A previous flight may have filled the key between our lookup and now.
		if v, ok := rc.lookup(flightCtx, key); ok {
			return v, nil
		}
		return rc.computeAndStore(flightCtx, key, ttl, compute)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Shared {
			rc.record("shared")
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	}
}

// Invalidate drops a single key.
func (rc *ResponseCache) Invalidate(ctx context.Context, key string) error {
	return rc.store.Delete(ctx, key)
}

// Purge drops every entry.
func (rc *ResponseCache) Purge(ctx context.Context) error {
	return rc.store.Purge(ctx)
}

// Len reports the number of stored entries.
func (rc *ResponseCache) Len() int {
	return rc.store.Len()
}

// DefaultTTL returns the TTL used for ttl <= 0.
func (rc *ResponseCache) DefaultTTL() time.Duration {
	return rc.opts.DefaultTTL
}

func (rc *ResponseCache) lookup(ctx context.Context, key string) ([]byte, bool) {
	v, ok, err := rc.store.Get(ctx, key)
	if err != nil {
		rc.log.Warn(ctx, "Cache read failed, computing instead", logger.String("key", key), logger.Error(err))
		return nil, false
	}
	return v, ok
}

func (rc *ResponseCache) computeAndStore(ctx context.Context, key string, ttl time.Duration, compute ComputeFunc) (v []byte, err error) {
	// singleflight re-panics on a fresh goroutine where no recovery middleware can reach it.
	defer func() {
		if r := recover(); r != nil {
			v = nil
			err = errors.ErrInternalServer.WithCause(fmt.Errorf("cache compute for %s panicked: %v", key, r))
			rc.log.Error(ctx, "Cache compute panicked", err,
				logger.String("key", key), logger.String("stack", string(debug.Stack())))
			if rc.metrics != nil {
				rc.metrics.CacheComputeErrors.Inc()
			}
		}
	}()

	degraded := new(atomic.Bool)
	v, err = compute(context.WithValue(ctx, degradedKey{}, degraded))
	if err != nil {
		if rc.metrics != nil {
			rc.metrics.CacheComputeErrors.Inc()
		}
		return nil, err
	}

	if degraded.Load() {
		rc.log.Info(ctx, "Degraded result served without caching", logger.String("key", key))
		return v, nil
	}

	if err := rc.store.Set(ctx, key, v, ttl); err != nil {
		rc.log.Warn(ctx, "Cache write failed", logger.String("key", key), logger.Error(err))
	}
	return v, nil
}

func (rc *ResponseCache) record(result string) {
	if rc.metrics != nil {
		rc.metrics.RecordCacheLookup(result)
	}
}

type degradedKey struct{}

// MarkDegraded flags the result being computed under ctx as partial, e.g. because a
// secondary upstream call fell back to a default. The result is still returned to
// callers but is not stored, so the next request retries the upstream.
// Outside a cache compute it does nothing.
func MarkDegraded(ctx context.Context) {
	if flag, ok := ctx.Value(degradedKey{}).(*atomic.Bool); ok {
		flag.Store(true)
	}
}

// Memoize is GetOrCompute for any JSON-encodable value.
func Memoize[V any](ctx context.Context, rc *ResponseCache, key string, ttl time.Duration, compute func(ctx context.Context) (V, error)) (V, error) {
	var zero V

	raw, err := rc.GetOrCompute(ctx, key, ttl, func(ctx context.Context) ([]byte, error) {
		v, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(v)
	})
	if err != nil {
		return zero, err
	}

	var out V
	if err := json.Unmarshal(raw, &out); err != nil {
		return zero, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return out, nil
}

//Personal.AI order the ending
