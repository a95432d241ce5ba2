package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sneakerlib/auth-service/pkg/database"
)

// RateLimitResult is the limiter verdict for a single request.
type RateLimitResult struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// RateLimiter throttles requests per key with a sliding window log kept in
// a Redis sorted set. Scores are unix milliseconds.
type RateLimiter struct {
	redis *database.Redis
}

func NewRateLimiter(redis *database.Redis) *RateLimiter {
	return &RateLimiter{redis: redis}
}

// Allow records the request and reports whether it fits within limit
// requests per window for the key. When the limit is hit, RetryAfter says
// how long until the oldest entry falls out of the window.
func (r *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (RateLimitResult, error) {
	now := time.Now()
	redisKey := "ratelimit:" + key
	cutoff := strconv.FormatInt(now.Add(-window).UnixMilli(), 10)

	if err := r.redis.Client.ZRemRangeByScore(ctx, redisKey, "0", cutoff).Err(); err != nil {
		return RateLimitResult{}, fmt.Errorf("failed to trim rate limit window: %w", err)
	}

	count, err := r.redis.Client.ZCard(ctx, redisKey).Result()
	if err != nil {
		return RateLimitResult{}, fmt.Errorf("failed to count rate limit entries: %w", err)
	}

	if count >= int64(limit) {
		retryAfter := window
		if oldest, err := r.redis.Client.ZRangeWithScores(ctx, redisKey, 0, 0).Result(); err == nil && len(oldest) > 0 {
			oldestAt := time.UnixMilli(int64(oldest[0].Score))
			retryAfter = window - now.Sub(oldestAt)
			if retryAfter < 0 {
				retryAfter = 0
			}
		}
		return RateLimitResult{Allowed: false, Remaining: 0, RetryAfter: retryAfter}, nil
	}

	member := strconv.FormatInt(now.UnixNano(), 10)
	if err := r.redis.Client.ZAdd(ctx, redisKey, redis.Z{
		Score:  float64(now.UnixMilli()),
		Member: member,
	}).Err(); err != nil {
		return RateLimitResult{}, fmt.Errorf("failed to record rate limit entry: %w", err)
	}

	// The key only needs to outlive its window.
	_ = r.redis.Client.Expire(ctx, redisKey, window+time.Minute).Err()

	remaining := limit - int(count) - 1
	if remaining < 0 {
		remaining = 0
	}
	return RateLimitResult{Allowed: true, Remaining: remaining}, nil
}
