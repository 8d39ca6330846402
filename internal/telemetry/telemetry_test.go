package telemetry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/geosmoke/geosmoke/internal/telemetry"
)

func TestInit_Disabled(t *testing.T) {
	ctx := context.Background()

	provider, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    "geosmoke-test",
		ServiceVersion: "1.0.0",
		Environment:    "test",
		OTLPEndpoint:   "localhost:4317",
		Enabled:        false,
	})

	require.NoError(t, err)
	assert.NotNil(t, provider.Tracer)
	assert.NotNil(t, provider.Meter)
	assert.Nil(t, provider.TracerProvider)
	assert.Nil(t, provider.MeterProvider)
	assert.NoError(t, provider.Shutdown(ctx))
}

func TestInit_Disabled_InstallsPropagator(t *testing.T) {
	_, err := telemetry.Init(context.Background(), telemetry.Config{ServiceName: "geosmoke-test"})
	require.NoError(t, err)

	fields := otel.GetTextMapPropagator().Fields()
	assert.Contains(t, fields, "traceparent")
	assert.Contains(t, fields, "baggage")
}

func TestProvider_Shutdown_NilProviders(t *testing.T) {
	provider := &telemetry.Provider{}
	assert.NoError(t, provider.Shutdown(context.Background()))
}

func TestSampler(t *testing.T) {
	traceID := trace.TraceID{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}

	tests := []struct {
		name  string
		ratio float64
		want  sdktrace.SamplingDecision
	}{
		{"always", 1, sdktrace.RecordAndSample},
		{"above one", 2.5, sdktrace.RecordAndSample},
		{"never", 0, sdktrace.Drop},
		{"negative", -1, sdktrace.Drop},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := telemetry.Sampler(tt.ratio).ShouldSample(sdktrace.SamplingParameters{
				ParentContext: context.Background(),
				TraceID:       traceID,
				Name:          "GET /v1/areas",
			})
			assert.Equal(t, tt.want, result.Decision)
		})
	}
}

func TestSampler_HonorsSampledParent(t *testing.T) {
	parent := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{1},
		SpanID:     trace.SpanID{1},
		TraceFlags: trace.FlagsSampled,
		Remote:     true,
	})
	ctx := trace.ContextWithRemoteSpanContext(context.Background(), parent)

	result := telemetry.Sampler(0).ShouldSample(sdktrace.SamplingParameters{
		ParentContext: ctx,
		TraceID:       parent.TraceID(),
		Name:          "GET /v1/areas",
	})

	assert.Equal(t, sdktrace.RecordAndSample, result.Decision)
}
