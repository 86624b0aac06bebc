package observability

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "mailwatch"

type instruments struct {
	httpAttempts  metric.Int64Counter
	httpRetries   metric.Int64Counter
	cycles        metric.Int64Counter
	items         metric.Int64Counter
	heartbeats    metric.Int64Counter
	cycleDuration metric.Float64Histogram
}

var (
	instOnce sync.Once
	inst     instruments
)

// initInstruments registers instruments against the current global
// MeterProvider. Before InitOTel runs that is the no-op provider.
func initInstruments() {
	instOnce.Do(func() {
		m := otel.GetMeterProvider().Meter(meterName)
		inst.httpAttempts, _ = m.Int64Counter("mailwatch.http.attempts.total",
			metric.WithDescription("Total Graph HTTP attempts"),
		)
		inst.httpRetries, _ = m.Int64Counter("mailwatch.http.retries.total",
			metric.WithDescription("Total Graph HTTP retries by reason"),
		)
		inst.cycles, _ = m.Int64Counter("mailwatch.cycles.total",
			metric.WithDescription("Total polling cycles"),
		)
		inst.items, _ = m.Int64Counter("mailwatch.items.total",
			metric.WithDescription("Total mail items classified by urgency"),
		)
		inst.heartbeats, _ = m.Int64Counter("mailwatch.heartbeats.total",
			metric.WithDescription("Total heartbeat fires"),
		)
		inst.cycleDuration, _ = m.Float64Histogram("mailwatch.cycle.duration_ms",
			metric.WithDescription("Polling cycle duration in milliseconds"),
			metric.WithUnit("ms"),
		)
	})
}

func resetInstruments() {
	instOnce = sync.Once{}
}

func statusStr(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func RecordHTTPAttempt(ctx context.Context, method string, status int) {
	initInstruments()
	inst.httpAttempts.Add(ctx, 1, metric.WithAttributes(
		attribute.String("method", method),
		attribute.Int("status", status),
	))
}

func RecordHTTPRetry(ctx context.Context, reason string, attempt int) {
	initInstruments()
	inst.httpRetries.Add(ctx, 1, metric.WithAttributes(
		attribute.String("reason", reason),
		attribute.Int("attempt", attempt),
	))
}

func RecordCycle(ctx context.Context, durationMs float64, err error) {
	initInstruments()
	attrs := metric.WithAttributes(attribute.String("status", statusStr(err)))
	inst.cycles.Add(ctx, 1, attrs)
	inst.cycleDuration.Record(ctx, durationMs, attrs)
}

func RecordItem(ctx context.Context, urgency string, err error) {
	initInstruments()
	inst.items.Add(ctx, 1, metric.WithAttributes(
		attribute.String("urgency", urgency),
		attribute.String("status", statusStr(err)),
	))
}

func RecordHeartbeat(ctx context.Context) {
	initInstruments()
	inst.heartbeats.Add(ctx, 1)
}
