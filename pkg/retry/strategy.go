package retry

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/code-payments/dex-wallet/pkg/retry/backoff"
)

// Strategy decides whether another attempt is made after the attempts-th
// failure. A strategy may block, but must return false once ctx is done.
type Strategy func(ctx context.Context, attempts uint, err error) bool

// Limit stops after maxAttempts total attempts, including the first.
func Limit(maxAttempts uint) Strategy {
	return func(_ context.Context, attempts uint, _ error) bool {
		return attempts < maxAttempts
	}
}

// RetriableErrors only retries failures that match one of the targets.
func RetriableErrors(targets ...error) Strategy {
	return func(_ context.Context, _ uint, err error) bool {
		return matchesAny(err, targets)
	}
}

// NonRetriableErrors retries everything except failures matching a target.
func NonRetriableErrors(targets ...error) Strategy {
	return func(_ context.Context, _ uint, err error) bool {
		return !matchesAny(err, targets)
	}
}

// Backoff waits for the backoff delay, capped at maxDelay, before allowing
// the next attempt.
func Backoff(strategy backoff.Strategy, maxDelay time.Duration) Strategy {
	return BackoffWithJitter(strategy, maxDelay, 0)
}

// BackoffWithJitter is Backoff with the capped delay scaled by a random
// factor in [1-jitter, 1+jitter].
func BackoffWithJitter(strategy backoff.Strategy, maxDelay time.Duration, jitter float64) Strategy {
	return func(ctx context.Context, attempts uint, _ error) bool {
		delay := strategy(attempts)
		if delay > maxDelay {
			delay = maxDelay
		}
		if jitter > 0 {
			delay = time.Duration(float64(delay) * (1 - jitter + 2*jitter*rand.Float64()))
		}
		return wait(ctx, delay)
	}
}

func matchesAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// wait is swapped out in tests.
var wait = func(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
