package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateCounter implements a fixed-window request counter.
// Key format: ratelimit:<client_key>
type RateCounter struct {
	client *redis.Client
}

// NewRateCounter creates a RateCounter wrapping the given Redis client.
func NewRateCounter(client *redis.Client) *RateCounter {
	return &RateCounter{client: client}
}

// Hit counts one request for key and returns the number of requests seen in
// the current window together with the time left until it resets. The window
// starts with the first request.
func (r *RateCounter) Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	k := r.key(key)

	n, err := r.client.Incr(ctx, k).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("rate counter incr: %w", err)
	}
	if n == 1 {
		if err := r.client.Expire(ctx, k, window).Err(); err != nil {
			return n, window, fmt.Errorf("rate counter expire: %w", err)
		}
		return n, window, nil
	}

	ttl, err := r.client.PTTL(ctx, k).Result()
	if err != nil {
		return n, window, fmt.Errorf("rate counter ttl: %w", err)
	}
	// A key left without an expiry (expire failed earlier) would block the
	// client forever.
	if ttl < 0 {
		_ = r.client.Expire(ctx, k, window).Err()
		ttl = window
	}
	return n, ttl, nil
}

func (r *RateCounter) key(clientKey string) string {
	return "ratelimit:" + clientKey
}
