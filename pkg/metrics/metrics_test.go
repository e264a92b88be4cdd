package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledApplication(t *testing.T) {
	app, err := NewApplication("dex-wallet", "")
	require.NoError(t, err)
	assert.Nil(t, app)

	ctx, end := StartTransaction(context.Background(), app, "swap")
	defer end()

	assert.Equal(t, context.Background(), ctx)

	// Nothing below may panic without a New Relic application
	RecordCount(ctx, "count", 1)
	RecordDuration(ctx, "duration", time.Second)
	RecordEvent(ctx, "event", map[string]interface{}{"k": "v"})

	tracer := TraceMethodCall(ctx, "liquidity.assembler", "Swap")
	assert.Nil(t, tracer)
	tracer.AddAttribute("pool", "abc")
	tracer.OnError(errors.New("failure"))
	tracer.End()
}

func TestForwardedMessage(t *testing.T) {
	e := logrus.NewEntry(logrus.New())
	e.Message = "submitted"
	assert.Equal(t, "submitted", forwardedMessage(e))

	e = e.WithField("pool", "abc").WithError(errors.New("declined"))
	e.Message = "submitted"
	assert.Equal(t, `message="submitted", error="declined", data={"pool":"abc"}`, forwardedMessage(e))
}
