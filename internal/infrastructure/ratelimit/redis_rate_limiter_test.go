package ratelimit_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/stockwatch/internal/infrastructure/ratelimit"
	"github.com/turtacn/stockwatch/pkg/logger"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newClock() *clock {
	return &clock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func TestRedisRateLimiter_Allow(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	clk := newClock()
	rl, err := ratelimit.NewRedisRateLimiter(client, ratelimit.Config{Rate: 1, Burst: 2}, logger.NewNullLogger(),
		ratelimit.WithRedisClock(clk.Now))
	require.NoError(t, err)

	ctx := context.Background()
	ip := "127.0.0.1"

	first, err := rl.Allow(ctx, ip)
	require.NoError(t, err)
	assert.True(t, first.Allowed)
	assert.Equal(t, 2, first.Limit)
	assert.Equal(t, 1, first.Remaining)

	second, err := rl.Allow(ctx, ip)
	require.NoError(t, err)
	assert.True(t, second.Allowed)
	assert.Equal(t, 0, second.Remaining)

	denied, err := rl.Allow(ctx, ip)
	require.NoError(t, err)
	assert.False(t, denied.Allowed)
	assert.Equal(t, time.Second, denied.RetryAfter)

	// other clients have their own bucket
	other, err := rl.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, other.Allowed)

	clk.Advance(time.Second)
	refilled, err := rl.Allow(ctx, ip)
	require.NoError(t, err)
	assert.True(t, refilled.Allowed)

	require.NoError(t, rl.Reset(ctx, ip))
	assert.False(t, s.Exists("stockwatch:ratelimit:"+ip))
}

func TestRedisRateLimiter_Fallback(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })

	clk := newClock()
	cfg := ratelimit.Config{Rate: 1, Burst: 1}
	ctx := context.Background()

	withFallback, err := ratelimit.NewRedisRateLimiter(client, cfg, logger.NewNullLogger(),
		ratelimit.WithRedisClock(clk.Now), ratelimit.WithLocalFallback())
	require.NoError(t, err)
	strict, err := ratelimit.NewRedisRateLimiter(client, cfg, logger.NewNullLogger(),
		ratelimit.WithRedisClock(clk.Now))
	require.NoError(t, err)

	s.Close()

	res, err := withFallback.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	res, err = withFallback.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, res.Allowed)

	_, err = strict.Allow(ctx, "1.2.3.4")
	assert.Error(t, err)
}

func TestNewRedisRateLimiter_RequiresClient(t *testing.T) {
	_, err := ratelimit.NewRedisRateLimiter(nil, ratelimit.Config{}, logger.NewNullLogger())
	assert.Error(t, err)
}

func TestLocalLimiter(t *testing.T) {
	clk := newClock()
	l := ratelimit.NewLocalLimiter(ratelimit.Config{Rate: 2, Burst: 2}, ratelimit.WithLocalClock(clk.Now))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		res, err := l.Allow(ctx, "a")
		require.NoError(t, err)
		assert.True(t, res.Allowed, "request %d", i)
	}

	res, err := l.Allow(ctx, "a")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 500*time.Millisecond, res.RetryAfter)

	clk.Advance(500 * time.Millisecond)
	res, err = l.Allow(ctx, "a")
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	_, _ = l.Allow(ctx, "b")
	assert.Equal(t, 2, l.Size())

	clk.Advance(time.Minute)
	assert.Equal(t, 2, l.Cleanup(30*time.Second))
	assert.Equal(t, 0, l.Size())
}
