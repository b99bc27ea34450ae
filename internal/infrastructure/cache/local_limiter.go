package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// localRateLimiter keeps one token bucket per key in process memory. It is
// used when redis is disabled, so limits are per instance.
type localRateLimiter struct {
	mu       sync.Mutex
	burst    int
	limiters map[string]*rate.Limiter
}

// NewLocalRateLimiter creates an in-memory limiter with the given burst.
func NewLocalRateLimiter(burst int) RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &localRateLimiter{burst: burst, limiters: make(map[string]*rate.Limiter)}
}

func (l *localRateLimiter) limiter(key string, limit int, window time.Duration) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	every := rate.Every(window / time.Duration(max(limit, 1)))
	lim, ok := l.limiters[key]
	if !ok {
		lim = rate.NewLimiter(every, min(l.burst, max(limit, 1)))
		l.limiters[key] = lim
	} else if lim.Limit() != every {
		lim.SetLimit(every)
	}
	return lim
}

func (l *localRateLimiter) Allow(_ context.Context, key string, limit int, window time.Duration) (bool, error) {
	return l.limiter(key, limit, window).Allow(), nil
}

func (l *localRateLimiter) Remaining(_ context.Context, key string, limit int, window time.Duration) (int, error) {
	return max(int(l.limiter(key, limit, window).Tokens()), 0), nil
}

func (l *localRateLimiter) Reset(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.limiters, key)
	return nil
}
