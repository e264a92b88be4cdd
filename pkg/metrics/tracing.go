package metrics

import (
	"context"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
)

// MethodTracer wraps a New Relic segment for one method call. A nil
// *MethodTracer is valid and does nothing, which is what TraceMethodCall
// hands out when ctx carries no transaction.
type MethodTracer struct {
	ctx     context.Context
	txn     *newrelic.Transaction
	seg     *newrelic.Segment
	name    string
	started time.Time
	failed  bool
}

// TraceMethodCall opens a segment named "<component> <method>" on the
// transaction in ctx.
func TraceMethodCall(ctx context.Context, component, method string) *MethodTracer {
	txn := newrelic.FromContext(ctx)
	if txn == nil {
		return nil
	}

	name := component + " " + method
	return &MethodTracer{
		ctx:     ctx,
		txn:     txn,
		seg:     txn.StartSegment(name),
		name:    name,
		started: time.Now(),
	}
}

func (t *MethodTracer) AddAttribute(key string, value interface{}) {
	if t == nil {
		return
	}
	t.seg.AddAttribute(key, value)
}

// OnError reports err against the transaction. Only the first error of a
// call is reported.
func (t *MethodTracer) OnError(err error) {
	if t == nil || err == nil || t.failed {
		return
	}
	t.failed = true
	t.seg.AddAttribute("error", err.Error())
	t.txn.NoticeError(err)
}

// End closes the segment and records the call latency under
// "Custom/<component> <method>/latency".
func (t *MethodTracer) End() {
	if t == nil {
		return
	}
	t.seg.End()
	RecordDuration(t.ctx, t.name+"/latency", time.Since(t.started))
}
