package handlers

import (
	"context"
	"fmt"
	"time"

	"log/slog"

	"github.com/redis/go-redis/v9"
)

// RateLimiter caps plan generation per profile using redis INCR with a
// rolling window. A nil client disables limiting, and redis errors fail
// open so an unavailable cache never blocks plan generation.
type RateLimiter struct {
	client *redis.Client
	logger *slog.Logger
	limit  int64
	window time.Duration
}

// NewRateLimiter creates a limiter; client may be nil.
func NewRateLimiter(client *redis.Client, limit int64, window time.Duration, logger *slog.Logger) *RateLimiter {
	return &RateLimiter{
		client: client,
		logger: logger.With("component", "ratelimit"),
		limit:  limit,
		window: window,
	}
}

// Allow reports whether another plan generation is permitted for key.
func (r *RateLimiter) Allow(ctx context.Context, key string) bool {
	if r.client == nil || r.limit <= 0 {
		return true
	}
	redisKey := fmt.Sprintf("rl:plan:%s", key)
	res := r.client.Incr(ctx, redisKey)
	if res.Err() != nil {
		r.logger.Warn("rate limit incr failed", "error", res.Err())
		return true
	}
	if res.Val() == 1 {
		r.client.Expire(ctx, redisKey, r.window)
	}
	return res.Val() <= r.limit
}
