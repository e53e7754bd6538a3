package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/fastygo/taskbot/usecase"
)

type slidingWindowLimiter struct {
	client *redislib.Client
	prefix string
	limit  int
	window time.Duration
}

// NewRateLimiter returns a Redis-backed sliding-window limiter allowing limit commands
// per window for each key.
func NewRateLimiter(client *redislib.Client, limit int, window time.Duration) usecase.RateLimiter {
	if limit <= 0 {
		limit = 10
	}
	if window <= 0 {
		window = 10 * time.Second
	}
	return &slidingWindowLimiter{
		client: client,
		prefix: "taskbot:ratelimit:",
		limit:  limit,
		window: window,
	}
}

// Allow records the attempt in a sorted set scored by nanosecond timestamp and counts
// the attempts still inside the window.
func (r *slidingWindowLimiter) Allow(ctx context.Context, key string) (bool, error) {
	now := time.Now().UnixNano()
	windowStart := now - r.window.Nanoseconds()
	rkey := r.key(key)

	pipe := r.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, rkey, "0", strconv.FormatInt(windowStart, 10))
	pipe.ZAdd(ctx, rkey, redislib.Z{Score: float64(now), Member: strconv.FormatInt(now, 10)})
	count := pipe.ZCard(ctx, rkey)
	pipe.Expire(ctx, rkey, r.window*2)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("rate limiter pipeline for %q: %w", key, err)
	}
	return count.Val() <= int64(r.limit), nil
}

func (r *slidingWindowLimiter) key(id string) string {
	return fmt.Sprintf("%s%s", r.prefix, id)
}
