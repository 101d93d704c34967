package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/turtacn/stockwatch/pkg/errors"
	"github.com/turtacn/stockwatch/pkg/logger"
)

// RedisRateLimiter implements a token bucket shared by every replica.
type RedisRateLimiter struct {
	client   redis.UniversalClient
	script   *redis.Script
	cfg      Config
	logger   logger.Logger
	fallback *LocalLimiter
	useLocal bool
	now      func() time.Time
}

// Lua script for atomic token bucket operations.
// Returns {allowed, remaining, capacity, retry_ms}.
const tokenBucketLuaScript = `
local key = KEYS[1]
local capacity = tonumber(ARGV[1])
local rate = tonumber(ARGV[2])
local now = tonumber(ARGV[3])

local bucket = redis.call('HMGET', key, 'tokens', 'last_refill')
local tokens = tonumber(bucket[1]) or capacity
local last_refill = tonumber(bucket[2]) or now

-- rate is per second, elapsed in ms
local elapsed = math.max(0, now - last_refill)
tokens = math.min(tokens + elapsed * rate / 1000, capacity)

local allowed = 0
local retry_ms = 0
if tokens >= 1 then
    tokens = tokens - 1
    allowed = 1
else
    retry_ms = math.ceil((1 - tokens) / rate * 1000)
end

local full_ms = math.ceil((capacity - tokens) / rate * 1000)

redis.call('HSET', key, 'tokens', tokens, 'last_refill', now)
redis.call('PEXPIRE', key, full_ms + 60000)

return {allowed, math.floor(tokens), capacity, retry_ms}
`

// RedisOption customises a RedisRateLimiter.
type RedisOption func(*RedisRateLimiter)

// WithLocalFallback serves requests from an in-process bucket while Redis is unavailable.
func WithLocalFallback() RedisOption {
	return func(rl *RedisRateLimiter) { rl.useLocal = true }
}

// WithRedisClock overrides the clock passed to the script.
func WithRedisClock(now func() time.Time) RedisOption {
	return func(rl *RedisRateLimiter) { rl.now = now }
}

// NewRedisRateLimiter creates a new Redis-based rate limiter.
//
// Parameters:
//   - client: Redis client
//   - cfg: Bucket configuration, zero fields take defaults
//   - log: Logger instance
func NewRedisRateLimiter(client redis.UniversalClient, cfg Config, log logger.Logger, opts ...RedisOption) (*RedisRateLimiter, error) {
	if client == nil {
		return nil, errors.ErrInvalidConfig.WithMetadata("field", "redis.addresses")
	}

	rl := &RedisRateLimiter{
		client: client,
		script: redis.NewScript(tokenBucketLuaScript),
		cfg:    cfg.normalize(),
		logger: log.WithComponent("ratelimit"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(rl)
	}
	if rl.useLocal {
		rl.fallback = NewLocalLimiter(rl.cfg, WithLocalClock(rl.now))
	}
	return rl, nil
}

// Allow takes one token for key.
func (rl *RedisRateLimiter) Allow(ctx context.Context, key string) (Result, error) {
	res, err := rl.eval(ctx, key)
	if err == nil {
		return res, nil
	}

	if rl.fallback != nil {
		rl.logger.Warn(ctx, "Redis rate limiter unavailable, using local bucket",
			logger.String("key", key), logger.Error(err))
		return rl.fallback.Allow(ctx, key)
	}
	return Result{}, err
}

func (rl *RedisRateLimiter) eval(ctx context.Context, key string) (Result, error) {
	vals, err := rl.script.Run(ctx, rl.client,
		[]string{rl.buildKey(key)},
		rl.cfg.Burst, rl.cfg.Rate, rl.now().UnixMilli(),
	).Int64Slice()
	if err != nil {
		return Result{}, fmt.Errorf("rate limit script: %w", err)
	}
	if len(vals) != 4 {
		return Result{}, fmt.Errorf("rate limit script: unexpected reply of %d values", len(vals))
	}

	return Result{
		Allowed:    vals[0] == 1,
		Remaining:  int(vals[1]),
		Limit:      int(vals[2]),
		RetryAfter: time.Duration(vals[3]) * time.Millisecond,
	}, nil
}

// Reset forgets the bucket for key.
func (rl *RedisRateLimiter) Reset(ctx context.Context, key string) error {
	return rl.client.Del(ctx, rl.buildKey(key)).Err()
}

func (rl *RedisRateLimiter) buildKey(key string) string {
	return rl.cfg.KeyPrefix + key
}

var _ Limiter = (*RedisRateLimiter)(nil)

//Personal.AI order the ending
