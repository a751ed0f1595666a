package redis

import (
	"context"
	"fmt"
	"time"
)

// RateLimiter applies a fixed-window counter per key backed by redis.
type RateLimiter struct {
	client Client
}

func NewRateLimiter(client Client) *RateLimiter {
	return &RateLimiter{client: client}
}

// Allow increments the counter for key and reports whether the caller is
// still within limit for the current window. The window TTL is set when
// the counter is first created.
func (rl *RateLimiter) Allow(ctx context.Context, key string, limit int64, window time.Duration) (bool, error) {
	count, err := rl.client.Incr(ctx, key)
	if err != nil {
		return false, fmt.Errorf("rate limiter incr: %w", err)
	}
	if count == 1 {
		if err := rl.client.Expire(ctx, key, window); err != nil {
			return false, fmt.Errorf("rate limiter expire: %w", err)
		}
	}
	return count <= limit, nil
}

// UploadKey builds the per-client counter key for audio uploads.
func UploadKey(clientIP string) string {
	return fmt.Sprintf("ratelimit:upload:%s", clientIP)
}
