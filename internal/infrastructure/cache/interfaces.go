package cache

import (
	"context"
	"time"
)

// RateLimiter bounds how often a key may perform an action.
type RateLimiter interface {
	// Allow checks if a request is allowed under the rate limit
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)

	// Remaining returns how many requests are left in the current window
	Remaining(ctx context.Context, key string, limit int, window time.Duration) (int, error)

	// Reset clears the rate limit state for a key
	Reset(ctx context.Context, key string) error
}

// RateLimitPrefix namespaces rate limit keys in redis.
const RateLimitPrefix = "flarecast:ratelimit:"
