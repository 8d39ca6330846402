package resilience_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/geosmoke/geosmoke/internal/provider/resilience"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func TestMetrics_RecordsClientCalls(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	otel.SetMeterProvider(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)))

	metrics, err := resilience.NewMetrics()
	require.NoError(t, err)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := fastConfig("metered")
	cfg.Metrics = metrics
	client := resilience.NewClient(cfg)

	for i := 0; i < 2; i++ {
		resp, err := get(t, client, server.URL)
		require.NoError(t, err)
		resp.Body.Close()
	}
	metrics.RecordCacheHit(context.Background(), "metered")
	metrics.RecordCacheMiss(context.Background(), "metered")

	got := collect(t, reader)

	total, ok := got["provider.request.total"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, total.DataPoints, 1)
	assert.Equal(t, int64(2), total.DataPoints[0].Value)

	duration, ok := got["provider.request.duration"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, duration.DataPoints, 1)
	assert.Equal(t, uint64(2), duration.DataPoints[0].Count)

	hits, ok := got["provider.cache.hit"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	assert.Equal(t, int64(1), hits.DataPoints[0].Value)

	misses, ok := got["provider.cache.miss"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	assert.Equal(t, int64(1), misses.DataPoints[0].Value)
}

func TestMetrics_NilIsSafe(t *testing.T) {
	var m *resilience.Metrics

	assert.NotPanics(t, func() {
		m.RecordRequest(context.Background(), "none", 0, nil)
		m.RecordCacheHit(context.Background(), "none")
		m.RecordCacheMiss(context.Background(), "none")
	})
}
