package metrics

import (
	"context"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
)

type applicationContextKey struct{}

// NewApplication connects to New Relic. A nil application is returned when
// licenseKey is empty, which disables every helper in this package.
func NewApplication(appName, licenseKey string) (*newrelic.Application, error) {
	if len(licenseKey) == 0 {
		return nil, nil
	}

	return newrelic.NewApplication(
		newrelic.ConfigFromEnvironment(),
		newrelic.ConfigAppName(appName),
		newrelic.ConfigLicense(licenseKey),
		newrelic.ConfigDistributedTracerEnabled(true),
		newrelic.ConfigAppLogForwardingEnabled(true),
	)
}

// StartTransaction starts a New Relic transaction named name and attaches
// both the transaction and app to the returned context. The returned function
// ends the transaction. With a nil app, ctx is returned unchanged.
func StartTransaction(ctx context.Context, app *newrelic.Application, name string) (context.Context, func()) {
	if app == nil {
		return ctx, func() {}
	}

	txn := app.StartTransaction(name)
	ctx = newrelic.NewContext(ctx, txn)
	ctx = context.WithValue(ctx, applicationContextKey{}, app)
	return ctx, txn.End
}

// RecordCount records a count metric
func RecordCount(ctx context.Context, metricName string, count uint64) {
	if nr, ok := ctx.Value(applicationContextKey{}).(*newrelic.Application); ok {
		nr.RecordCustomMetric(metricName, float64(count))
	}
}

// RecordDuration records a duration metric in milliseconds
func RecordDuration(ctx context.Context, metricName string, duration time.Duration) {
	if nr, ok := ctx.Value(applicationContextKey{}).(*newrelic.Application); ok {
		nr.RecordCustomMetric(metricName, float64(duration/time.Millisecond))
	}
}

// RecordEvent records a new event with a name and set of key-value pairs
func RecordEvent(ctx context.Context, eventName string, kvPairs map[string]interface{}) {
	if nr, ok := ctx.Value(applicationContextKey{}).(*newrelic.Application); ok {
		nr.RecordCustomEvent(eventName, kvPairs)
	}
}
