package retry

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/dex-wallet/pkg/retry/backoff"
)

func recordWaits(t *testing.T) *[]time.Duration {
	var waits []time.Duration

	original := wait
	wait = func(ctx context.Context, d time.Duration) bool {
		waits = append(waits, d)
		return ctx.Err() == nil
	}
	t.Cleanup(func() { wait = original })

	return &waits
}

func TestLimit(t *testing.T) {
	ctx := context.Background()
	strategy := Limit(2)

	assert.True(t, strategy(ctx, 1, errors.New("test")))
	assert.False(t, strategy(ctx, 2, errors.New("test")))

	counter, err := Retry(ctx, func() error {
		return errors.New("test")
	}, Limit(2))

	assert.EqualError(t, err, "test")
	assert.Equal(t, uint(2), counter)
}

func TestRetriableErrors(t *testing.T) {
	ctx := context.Background()
	errRateLimited := errors.New("rate limited")
	errUnhealthy := errors.New("node unhealthy")

	strategy := RetriableErrors(errRateLimited, errUnhealthy)
	for _, err := range []error{errRateLimited, errUnhealthy} {
		assert.True(t, strategy(ctx, 1, err))
		assert.True(t, strategy(ctx, 1, errors.Wrap(err, "getAccountInfo")))
	}
	assert.False(t, strategy(ctx, 2, errors.New("unexpected")))
}

func TestNonRetriableErrors(t *testing.T) {
	ctx := context.Background()
	errDeclined := errors.New("declined")

	strategy := NonRetriableErrors(errDeclined)
	assert.False(t, strategy(ctx, 1, errDeclined))
	assert.False(t, strategy(ctx, 1, errors.Wrap(errDeclined, "sign")))
	assert.True(t, strategy(ctx, 1, errors.New("unexpected")))
}

func TestBackoff(t *testing.T) {
	waits := recordWaits(t)
	strategy := Backoff(backoff.BinaryExponential(100*time.Millisecond), 500*time.Millisecond)

	for i := uint(1); i <= 5; i++ {
		assert.True(t, strategy(context.Background(), i, errors.New("test-error")))
	}

	assert.Equal(t, []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		400 * time.Millisecond,
		500 * time.Millisecond,
		500 * time.Millisecond,
	}, *waits)
}

func TestBackoffWithJitter(t *testing.T) {
	waits := recordWaits(t)
	delay := time.Millisecond
	strategy := BackoffWithJitter(backoff.Constant(delay), delay, 0.1)

	for i := 0; i < 1000; i++ {
		require.True(t, strategy(context.Background(), 1, errors.New("err")))
	}

	var total time.Duration
	for _, d := range *waits {
		assert.True(t, d >= 900*time.Microsecond && d <= 1100*time.Microsecond, d)
		total += d
	}
	assert.InDelta(t, float64(delay), float64(total)/float64(len(*waits)), 0.1*float64(delay))
}

func TestBackoff_ContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	strategy := Backoff(backoff.Constant(time.Hour), time.Hour)

	start := time.Now()
	assert.False(t, strategy(ctx, 1, errors.New("err")))
	assert.Less(t, time.Since(start), time.Second)
}
