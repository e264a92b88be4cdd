package retry

import (
	"context"
)

// Action is a function to be performed in a retriable manner.
type Action func() error

// Retrier retries the provided action.
type Retrier interface {
	Retry(ctx context.Context, action Action) (uint, error)
}

type retrier struct {
	strategies []Strategy
}

// NewRetrier returns a Retrier that will retry actions based off of the
// provided strategies. If no strategies are provided, the retrier retries
// until no error is returned or the context is done.
func NewRetrier(strategies ...Strategy) Retrier {
	return &retrier{
		strategies: strategies,
	}
}

func (r *retrier) Retry(ctx context.Context, action Action) (uint, error) {
	return Retry(ctx, action, r.strategies...)
}

// Retry executes the provided action, potentially multiple times based off of
// the provided strategies. Retry blocks until the action is successful, one of
// the strategies indicates no further retries should be performed, or ctx is
// done. In the last case the most recent action error is returned if there
// was one, otherwise the context error.
//
// Strategies run in order and stop at the first refusal, so ones that wait
// belong last.
func Retry(ctx context.Context, action Action, strategies ...Strategy) (uint, error) {
	var lastErr error
	for i := uint(1); ; i++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return i - 1, lastErr
			}
			return i - 1, err
		}

		err := action()
		if err == nil {
			return i, nil
		}
		lastErr = err

		for _, s := range strategies {
			if !s(ctx, i, err) {
				return i, err
			}
		}
	}
}
