// Package ratelimit provides per-client request rate limiting, either in
// process or shared across replicas through Redis.
package ratelimit

import (
	"context"
	"time"
)

// Result describes the outcome of a rate limit check.
type Result struct {
	// Allowed indicates if the request may proceed
	Allowed bool
	// Limit is the bucket capacity
	Limit int
	// Remaining is the number of whole tokens left after this request
	Remaining int
	// RetryAfter is how long to wait before a token is available again
	RetryAfter time.Duration
}

// Limiter takes one token for key.
type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

// Config holds the token bucket parameters.
type Config struct {
	// Rate is the refill rate in tokens per second
	Rate float64
	// Burst is the bucket capacity
	Burst int
	// KeyPrefix is the Redis key prefix
	KeyPrefix string
}

// DefaultConfig returns a permissive limit suitable for development.
func DefaultConfig() Config {
	return Config{
		Rate:      10,
		Burst:     20,
		KeyPrefix: "stockwatch:ratelimit:",
	}
}

func (c Config) normalize() Config {
	def := DefaultConfig()
	if c.Rate <= 0 {
		c.Rate = def.Rate
	}
	if c.Burst <= 0 {
		c.Burst = def.Burst
	}
	if c.KeyPrefix == "" {
		c.KeyPrefix = def.KeyPrefix
	}
	return c
}
