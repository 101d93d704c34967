package ratelimit

import (
	"context"
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type localBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// LocalLimiter keeps one token bucket per key in memory.
// 本地令牌桶池，Redis 不可用时作为降级方案
type LocalLimiter struct {
	mu      sync.Mutex
	buckets map[string]*localBucket
	cfg     Config
	now     func() time.Time
}

// LocalOption customises a LocalLimiter.
type LocalOption func(*LocalLimiter)

// WithLocalClock overrides the clock used for refills.
func WithLocalClock(now func() time.Time) LocalOption {
	return func(l *LocalLimiter) { l.now = now }
}

// NewLocalLimiter creates an in-process limiter.
func NewLocalLimiter(cfg Config, opts ...LocalOption) *LocalLimiter {
	l := &LocalLimiter{
		buckets: make(map[string]*localBucket),
		cfg:     cfg.normalize(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Allow takes one token from key's bucket.
func (l *LocalLimiter) Allow(_ context.Context, key string) (Result, error) {
	now := l.now()

	l.mu.Lock()
	b, ok := l.buckets[key]
	if !ok {
		b = &localBucket{limiter: rate.NewLimiter(rate.Limit(l.cfg.Rate), l.cfg.Burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now
	l.mu.Unlock()

	res := Result{Limit: l.cfg.Burst}
	if b.limiter.AllowN(now, 1) {
		res.Allowed = true
		res.Remaining = int(math.Max(0, math.Floor(b.limiter.TokensAt(now))))
		return res, nil
	}

	missing := 1 - b.limiter.TokensAt(now)
	res.RetryAfter = time.Duration(math.Ceil(missing / l.cfg.Rate * float64(time.Second)))
	return res, nil
}

// Cleanup drops buckets idle for longer than maxIdle and returns how many were removed.
func (l *LocalLimiter) Cleanup(maxIdle time.Duration) int {
	cutoff := l.now().Add(-maxIdle)

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, b := range l.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(l.buckets, key)
			removed++
		}
	}
	return removed
}

// Size returns the number of tracked keys.
func (l *LocalLimiter) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

var _ Limiter = (*LocalLimiter)(nil)
