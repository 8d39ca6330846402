package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/geosmoke/geosmoke/internal/api/middleware"
)

func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	return sr
}

func spanAttr(span sdktrace.ReadOnlySpan, key attribute.Key) (attribute.Value, bool) {
	for _, kv := range span.Attributes() {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func statusHandler(status int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
	})
}

func TestTracing_CreatesServerSpan(t *testing.T) {
	sr := setupTestTracer(t)

	handler := middleware.Tracing("geosmoke-api")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, trace.SpanFromContext(r.Context()).SpanContext().IsValid())
		w.WriteHeader(http.StatusOK)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/ops/health", http.NoBody))

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "GET /v1/ops/health", spans[0].Name())
	assert.Equal(t, trace.SpanKindServer, spans[0].SpanKind())

	service, ok := spanAttr(spans[0], "service.name")
	require.True(t, ok)
	assert.Equal(t, "geosmoke-api", service.AsString())
}

func TestTracing_NamesSpanAfterRoutePattern(t *testing.T) {
	sr := setupTestTracer(t)

	r := chi.NewRouter()
	r.Use(middleware.Tracing("geosmoke-api"))
	r.Get("/v1/areas/{areaId}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/areas/sa_garden", http.NoBody))

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "GET /v1/areas/{areaId}", spans[0].Name())

	route, ok := spanAttr(spans[0], "http.route")
	require.True(t, ok)
	assert.Equal(t, "/v1/areas/{areaId}", route.AsString())
}

func TestTracing_PropagatesContext(t *testing.T) {
	sr := setupTestTracer(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/areas", http.NoBody)
	req.Header.Set("traceparent", "00-0af7651916cd43dd8448eb211c80319c-b7ad6b7169203331-01")

	middleware.Tracing("geosmoke-api")(statusHandler(http.StatusOK)).ServeHTTP(httptest.NewRecorder(), req)

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "0af7651916cd43dd8448eb211c80319c", spans[0].SpanContext().TraceID().String())
	assert.Equal(t, "b7ad6b7169203331", spans[0].Parent().SpanID().String())
}

func TestTracing_StatusHandling(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		wantCode codes.Code
	}{
		{"ok", http.StatusOK, codes.Unset},
		{"client error is not a span error", http.StatusNotFound, codes.Unset},
		{"server error", http.StatusInternalServerError, codes.Error},
		{"unavailable", http.StatusServiceUnavailable, codes.Error},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sr := setupTestTracer(t)

			middleware.Tracing("geosmoke-api")(statusHandler(tt.status)).
				ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/areas", http.NoBody))

			spans := sr.Ended()
			require.Len(t, spans, 1)

			status, ok := spanAttr(spans[0], "http.response.status_code")
			require.True(t, ok)
			assert.Equal(t, int64(tt.status), status.AsInt64())
			assert.Equal(t, tt.wantCode, spans[0].Status().Code)
		})
	}
}

func TestTracing_DoesNotRecordCoordinates(t *testing.T) {
	sr := setupTestTracer(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/areas?mode=facility&lat=-6.30&lon=106.65", http.NoBody)
	middleware.Tracing("geosmoke-api")(statusHandler(http.StatusOK)).ServeHTTP(httptest.NewRecorder(), req)

	spans := sr.Ended()
	require.Len(t, spans, 1)

	for _, kv := range spans[0].Attributes() {
		assert.False(t, strings.Contains(kv.Value.Emit(), "106.65"), "attribute %s leaks coordinates", kv.Key)
	}

	supplied, ok := spanAttr(spans[0], "geosmoke.coordinates_supplied")
	require.True(t, ok)
	assert.True(t, supplied.AsBool())

	mode, ok := spanAttr(spans[0], "geosmoke.mode")
	require.True(t, ok)
	assert.Equal(t, "facility", mode.AsString())
}

func TestTracing_IncludesRequestID(t *testing.T) {
	sr := setupTestTracer(t)

	handler := middleware.RequestID(middleware.Tracing("geosmoke-api")(statusHandler(http.StatusOK)))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/areas", http.NoBody))

	spans := sr.Ended()
	require.Len(t, spans, 1)

	id, ok := spanAttr(spans[0], "request.id")
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(id.AsString(), "req_"))
}
