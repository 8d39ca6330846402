package models_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geosmoke/geosmoke/internal/api/models"
)

func TestNewProblem_UnknownTypeUsesStatusText(t *testing.T) {
	p := models.NewProblem("https://api.geosmoke.app/problems/teapot", http.StatusTeapot, "req_1", "")

	assert.Equal(t, "I'm a teapot", p.Title)
	assert.Equal(t, http.StatusTeapot, p.Status)
	assert.Empty(t, p.Detail)
}

func TestProblem_WriteFor(t *testing.T) {
	p := models.NewBadRequest("req_test123", "validation failed", []models.FieldError{
		{Field: "lat,lon", Message: "must be provided together"},
	})

	w := httptest.NewRecorder()
	p.WriteFor(w, httptest.NewRequest(http.MethodGet, "/v1/areas?lat=1", http.NoBody))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
	assert.Equal(t, "req_test123", w.Header().Get("X-Request-Id"))

	var result models.Problem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))

	assert.Equal(t, models.ProblemTypeValidation, result.Type)
	assert.Equal(t, "Validation error", result.Title)
	assert.Equal(t, "validation failed", result.Detail)
	assert.Equal(t, "/v1/areas", result.Instance)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "lat,lon", result.Errors[0].Field)
}

func TestProblem_OmitsEmptyOptionalFields(t *testing.T) {
	w := httptest.NewRecorder()
	models.NewNotFound("req_1", "").Write(w)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))

	assert.NotContains(t, raw, "detail")
	assert.NotContains(t, raw, "instance")
	assert.NotContains(t, raw, "errors")
	assert.Equal(t, "req_1", raw["traceId"])
}

func TestProblem_Constructors(t *testing.T) {
	tests := []struct {
		name       string
		problem    *models.Problem
		wantType   string
		wantTitle  string
		wantStatus int
	}{
		{"unauthorized", models.NewUnauthorized("req_1", "token expired"), models.ProblemTypeUnauthorized, "Unauthorized", http.StatusUnauthorized},
		{"tls required", models.NewTLSRequired("req_1"), models.ProblemTypeTLSRequired, "TLS required", http.StatusForbidden},
		{"not found", models.NewNotFound("req_1", "smoking area"), models.ProblemTypeNotFound, "Not found", http.StatusNotFound},
		{"unsupported media type", models.NewUnsupportedMediaType("req_1", "send JSON"), models.ProblemTypeUnsupportedMedia, "Unsupported media type", http.StatusUnsupportedMediaType},
		{"too many requests", models.NewTooManyRequests("req_1", "slow down"), models.ProblemTypeTooManyRequests, "Too many requests", http.StatusTooManyRequests},
		{"internal", models.NewInternalError("req_1", "store error"), models.ProblemTypeInternal, "Internal server error", http.StatusInternalServerError},
		{"unavailable", models.NewServiceUnavailable("req_1", "store down"), models.ProblemTypeUnavailable, "Service unavailable", http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantType, tt.problem.Type)
			assert.Equal(t, tt.wantTitle, tt.problem.Title)
			assert.Equal(t, tt.wantStatus, tt.problem.Status)
			assert.Equal(t, "req_1", tt.problem.TraceID)
			assert.NotEmpty(t, tt.problem.Detail)
		})
	}
}
