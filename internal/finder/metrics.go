package finder

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/geosmoke/geosmoke/internal/finder"

// Metrics holds the finder's OpenTelemetry instruments.
type Metrics struct {
	browseTotal     metric.Int64Counter
	matchPercentage metric.Float64Histogram
}

// NewMetrics creates the finder instruments on the global meter provider.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)

	browseTotal, err := meter.Int64Counter(
		"finder.browse.total",
		metric.WithDescription("Total number of area listings served"),
		metric.WithUnit("{listing}"),
	)
	if err != nil {
		return nil, err
	}

	matchPercentage, err := meter.Float64Histogram(
		"finder.match.percentage",
		metric.WithDescription("Preference match percentage of served areas"),
		metric.WithUnit("%"),
		metric.WithExplicitBucketBoundaries(0, 25, 50, 75, 100),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		browseTotal:     browseTotal,
		matchPercentage: matchPercentage,
	}, nil
}

func (m *Metrics) recordBrowse(ctx context.Context, mode string, source OriginSource) {
	if m == nil {
		return
	}
	m.browseTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("mode", mode),
		attribute.String("origin_source", string(source)),
	))
}

func (m *Metrics) recordMatch(ctx context.Context, pct float64) {
	if m == nil {
		return
	}
	m.matchPercentage.Record(ctx, pct)
}
