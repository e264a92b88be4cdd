package rate

import (
	"context"
	"math"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter paces operations per key, such as RPC method names.
type Limiter interface {
	// Allow reports whether an operation for key may happen now.
	Allow(key string) bool

	// Wait blocks until an operation for key may happen or ctx is done.
	Wait(ctx context.Context, key string) error
}

type localRateLimiter struct {
	limit rate.Limit
	burst int

	sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewLocalRateLimiter returns an in memory limiter allowing limit operations
// per second for each key. A non-positive limit disables limiting.
func NewLocalRateLimiter(limit float64) Limiter {
	if limit <= 0 {
		return &NoLimiter{}
	}

	return &localRateLimiter{
		limit:    rate.Limit(limit),
		burst:    int(math.Max(1, math.Ceil(limit))),
		limiters: make(map[string]*rate.Limiter),
	}
}

func (l *localRateLimiter) get(key string) *rate.Limiter {
	l.Lock()
	defer l.Unlock()

	limiter, ok := l.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.limiters[key] = limiter
	}
	return limiter
}

func (l *localRateLimiter) Allow(key string) bool {
	return l.get(key).Allow()
}

func (l *localRateLimiter) Wait(ctx context.Context, key string) error {
	return l.get(key).Wait(ctx)
}

// NoLimiter never limits operations.
type NoLimiter struct{}

func (n *NoLimiter) Allow(string) bool {
	return true
}

func (n *NoLimiter) Wait(ctx context.Context, _ string) error {
	return ctx.Err()
}
