package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter implements sliding window rate limiting on hot Redis. It
// fails open: if Redis is unreachable the request is allowed.
type RateLimiter struct {
	redisClient *redis.Client
}

func NewRateLimiter(redisClient *redis.Client) *RateLimiter {
	return &RateLimiter{redisClient: redisClient}
}

func (rl *RateLimiter) Allow(ctx context.Context, userID string, limit int, window time.Duration) bool {
	key := fmt.Sprintf("rate_limit:%s", userID)
	now := time.Now().Unix()
	windowStart := now - int64(window.Seconds())

	pipe := rl.redisClient.Pipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart, 10))
	countCmd := pipe.ZCard(ctx, key)
	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(now),
		Member: fmt.Sprintf("%d", time.Now().UnixNano()),
	})
	pipe.Expire(ctx, key, window)

	if _, err := pipe.Exec(ctx); err != nil {
		return true
	}
	return countCmd.Val() < int64(limit)
}
