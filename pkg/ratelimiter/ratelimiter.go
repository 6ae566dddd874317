package ratelimiter

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	ScopeGlobal      = "global"
	ScopeAward       = "award"
	ScopePathCreate  = "path_create"
	ScopeCheckIn     = "check_in"
	keyPrefix        = "rate_limit"
	defaultRetryHint = time.Second
)

// RateLimitError is returned when a caller has used up its window.
type RateLimitError struct {
	Message    string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return e.Message
}

// Limiter is a fixed-window counter kept in redis so every instance shares it.
type Limiter struct {
	rdb    redis.Cmdable
	max    int
	window time.Duration
}

// New returns a limiter allowing max hits per window. A nil client disables limiting.
func New(rdb redis.Cmdable, max int, window time.Duration) *Limiter {
	return &Limiter{rdb: rdb, max: max, window: window}
}

func key(identifier, scope string) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, scope, identifier)
}

// Allow records one hit for identifier in scope. It returns a *RateLimitError
// when the window is exhausted.
func (l *Limiter) Allow(ctx context.Context, identifier, scope string) error {
	if l == nil || l.rdb == nil || l.max <= 0 {
		return nil
	}

	k := key(identifier, scope)

	pipe := l.rdb.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.ExpireNX(ctx, k, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to check rate limit in redis: %w", err)
	}

	if incr.Val() <= int64(l.max) {
		return nil
	}

	ttl, err := l.rdb.TTL(ctx, k).Result()
	if err != nil || ttl <= 0 {
		ttl = defaultRetryHint
	}
	return &RateLimitError{
		Message:    fmt.Sprintf("too many requests, please wait %.0f seconds", ttl.Seconds()),
		RetryAfter: ttl,
	}
}

