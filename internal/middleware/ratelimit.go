package middleware

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"

	"anoa.com/storybloom/pkg/logger"
	"anoa.com/storybloom/pkg/ratelimiter"
	"github.com/gin-gonic/gin"
)

type Limiter interface {
	Allow(ctx context.Context, identifier, scope string) error
}

// RateLimit rejects callers that exhausted their window in scope with 429.
// Authenticated callers are keyed by user id, anonymous ones by client IP.
// Limiter failures let the request through.
func RateLimit(limiter Limiter, scope string, log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		log = logger.Nop()
	}
	return func(c *gin.Context) {
		identifier := c.GetString("user_id")
		if identifier == "" {
			identifier = c.ClientIP()
		}

		err := limiter.Allow(c.Request.Context(), identifier, scope)
		if err == nil {
			c.Next()
			return
		}

		var limited *ratelimiter.RateLimitError
		if errors.As(err, &limited) {
			retry := int(math.Ceil(limited.RetryAfter.Seconds()))
			c.Header("Retry-After", strconv.Itoa(retry))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       limited.Message,
				"retry_after": retry,
			})
			return
		}

		log.Warn("rate limiter unavailable", "scope", scope, "error", err)
		c.Next()
	}
}
