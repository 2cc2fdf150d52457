package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const rateLimitKeyPrefix = "ratelimit:"

// RateLimiter implements a sliding-window limit per key (client IP) on top
// of a Redis sorted set.
type RateLimiter struct {
	client *Client
	limit  int
	window time.Duration
}

// NewRateLimiter creates a RateLimiter allowing limit requests per window.
func NewRateLimiter(client *Client, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		client: client,
		limit:  limit,
		window: window,
	}
}

// Allow checks whether another request for key fits inside the window, and
// records it when it does.
func (r *RateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := rateLimitKeyPrefix + key
	now := time.Now()
	windowStart := now.Add(-r.window)

	pipe := r.client.client.Pipeline()

	// Drop entries that have slid out of the window, then count what's left.
	pipe.ZRemRangeByScore(ctx, redisKey, "0", fmt.Sprintf("%d", windowStart.UnixNano()))
	countCmd := pipe.ZCard(ctx, redisKey)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("failed to check rate limit: %w", err)
	}

	if countCmd.Val() >= int64(r.limit) {
		return false, nil
	}

	member := fmt.Sprintf("%d", now.UnixNano())
	if err := r.client.client.ZAdd(ctx, redisKey, redis.Z{
		Score:  float64(now.UnixNano()),
		Member: member,
	}).Err(); err != nil {
		return false, fmt.Errorf("failed to record request: %w", err)
	}

	r.client.client.Expire(ctx, redisKey, 2*r.window)

	return true, nil
}
