package middleware

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/stockwatch/internal/application/dto"
	"github.com/turtacn/stockwatch/internal/infrastructure/monitoring"
	"github.com/turtacn/stockwatch/internal/infrastructure/ratelimit"
	"github.com/turtacn/stockwatch/pkg/errors"
	"github.com/turtacn/stockwatch/pkg/logger"
)

// RateLimit limits requests per client IP. Limiter failures let the request through.
func RateLimit(limiter ratelimit.Limiter, log logger.Logger, metrics *monitoring.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		res, err := limiter.Allow(c.Request.Context(), ip)
		if err != nil {
			log.Error(c.Request.Context(), "rate limiter failed", err, logger.String("client_ip", ip))
			c.Next() // Fail open
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(res.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))

		if !res.Allowed {
			metrics.RateLimitHits.Inc()
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(res.RetryAfter.Seconds()))))
			log.Warn(c.Request.Context(), "rate limit exceeded",
				logger.String("client_ip", ip),
				logger.Int("limit", res.Limit),
			)
			dto.SendError(c, errors.ErrRateLimitExceeded)
			return
		}

		c.Next()
	}
}
