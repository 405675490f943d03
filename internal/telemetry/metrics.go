package telemetry

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/roosthq/roost"

// Metrics holds the OpenTelemetry metric instruments for the session service.
type Metrics struct {
	LoginsTotal        metric.Int64Counter
	LoginFailuresTotal metric.Int64Counter
	LogoutsTotal       metric.Int64Counter
	SignupsTotal       metric.Int64Counter
	SessionRestores    metric.Int64Counter
	CSRFRejections     metric.Int64Counter
}

var (
	once    sync.Once
	metrics *Metrics
)

// GetMetrics returns the singleton Metrics instance, initializing it if
// necessary.
func GetMetrics() *Metrics {
	once.Do(func() {
		metrics = initMetrics()
	})
	return metrics
}

func initMetrics() *Metrics {
	meter := otel.GetMeterProvider().Meter(meterName)

	m := &Metrics{}
	m.LoginsTotal, _ = meter.Int64Counter("session.logins.total",
		metric.WithDescription("Successful logins"))
	m.LoginFailuresTotal, _ = meter.Int64Counter("session.login_failures.total",
		metric.WithDescription("Failed login attempts"))
	m.LogoutsTotal, _ = meter.Int64Counter("session.logouts.total",
		metric.WithDescription("Logouts"))
	m.SignupsTotal, _ = meter.Int64Counter("session.signups.total",
		metric.WithDescription("Accounts created"))
	m.SessionRestores, _ = meter.Int64Counter("session.restores.total",
		metric.WithDescription("Session restore calls"))
	m.CSRFRejections, _ = meter.Int64Counter("session.csrf_rejections.total",
		metric.WithDescription("Requests rejected by the CSRF guard"))

	return m
}
