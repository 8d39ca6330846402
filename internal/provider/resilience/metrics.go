package resilience

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/geosmoke/geosmoke/internal/provider/resilience"

// Metrics holds instruments for outbound provider calls. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	requestDuration metric.Float64Histogram
	requestTotal    metric.Int64Counter
	cacheHits       metric.Int64Counter
	cacheMisses     metric.Int64Counter
}

// NewMetrics creates provider metrics on the global meter provider.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)

	requestDuration, err := meter.Float64Histogram(
		"provider.request.duration",
		metric.WithDescription("Duration of provider requests in seconds, retries included"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	requestTotal, err := meter.Int64Counter(
		"provider.request.total",
		metric.WithDescription("Total number of provider requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	cacheHits, err := meter.Int64Counter(
		"provider.cache.hit",
		metric.WithDescription("Number of provider cache hits"),
		metric.WithUnit("{hit}"),
	)
	if err != nil {
		return nil, err
	}

	cacheMisses, err := meter.Int64Counter(
		"provider.cache.miss",
		metric.WithDescription("Number of provider cache misses"),
		metric.WithUnit("{miss}"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
	}, nil
}

// RecordRequest records one logical provider call.
func (m *Metrics) RecordRequest(ctx context.Context, provider string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("provider.name", provider),
		attribute.Bool("error", err != nil),
	)
	// The request context may already be canceled; metrics should still land.
	ctx = context.WithoutCancel(ctx)
	m.requestDuration.Record(ctx, duration.Seconds(), attrs)
	m.requestTotal.Add(ctx, 1, attrs)
}

// RecordCacheHit records a cache hit for provider.
func (m *Metrics) RecordCacheHit(ctx context.Context, provider string) {
	if m == nil {
		return
	}
	m.cacheHits.Add(context.WithoutCancel(ctx), 1, metric.WithAttributes(attribute.String("provider.name", provider)))
}

// RecordCacheMiss records a cache miss for provider.
func (m *Metrics) RecordCacheMiss(ctx context.Context, provider string) {
	if m == nil {
		return
	}
	m.cacheMisses.Add(context.WithoutCancel(ctx), 1, metric.WithAttributes(attribute.String("provider.name", provider)))
}
