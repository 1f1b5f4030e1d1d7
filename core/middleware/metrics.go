package middleware

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/miladsoleymani/mediamux/core"
)

// MetricsCollector is the interface that metrics backends must implement.
// This keeps the middleware decoupled from any specific metrics library.
type MetricsCollector interface {
	// ChangeDelivered records that a change event reached one listener.
	ChangeDelivered(media string, matches bool, duration time.Duration)
}

// Metrics returns middleware that reports dispatch metrics to the given collector.
func Metrics(collector MetricsCollector) core.Middleware {
	return func(next core.DispatchFunc) core.DispatchFunc {
		return func(l core.Listener, ev core.Event) {
			start := time.Now()
			next(l, ev)
			collector.ChangeDelivered(ev.Media, ev.Matches, time.Since(start))
		}
	}
}

// OtelCollector records dispatch metrics with an OpenTelemetry meter.
type OtelCollector struct {
	deliveries metric.Int64Counter
	duration   metric.Float64Histogram
}

// NewOtelCollector creates the instruments on meter.
func NewOtelCollector(meter metric.Meter) (*OtelCollector, error) {
	deliveries, err := meter.Int64Counter(
		"mediamux.listener.deliveries",
		metric.WithDescription("Media change events delivered to listeners."),
	)
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram(
		"mediamux.listener.duration",
		metric.WithDescription("Time spent in a listener handling one change."),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}
	return &OtelCollector{deliveries: deliveries, duration: duration}, nil
}

func (c *OtelCollector) ChangeDelivered(media string, matches bool, d time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("media", media),
		attribute.Bool("matches", matches),
	)
	ctx := context.Background()
	c.deliveries.Add(ctx, 1, attrs)
	c.duration.Record(ctx, float64(d)/float64(time.Millisecond), attrs)
}
