package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/geosmoke/geosmoke/internal/api/middleware"
)

func TestRequireJSON(t *testing.T) {
	tests := []struct {
		name        string
		method      string
		contentType string
		want        int
	}{
		{"json", http.MethodPut, "application/json", http.StatusOK},
		{"json with charset", http.MethodPut, "application/json; charset=utf-8", http.StatusOK},
		{"structured json", http.MethodPost, "application/merge-patch+json", http.StatusOK},
		{"missing header on bodyless toggle", http.MethodPost, "", http.StatusOK},
		{"form", http.MethodPut, "application/x-www-form-urlencoded", http.StatusUnsupportedMediaType},
		{"json lookalike", http.MethodPut, "application/jsonp", http.StatusUnsupportedMediaType},
		{"malformed", http.MethodPut, "application/json; =", http.StatusUnsupportedMediaType},
		{"get is not checked", http.MethodGet, "text/plain", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := middleware.RequireJSON(statusHandler(http.StatusOK))

			req := httptest.NewRequest(tt.method, "/v1/me/preferences", strings.NewReader(`{}`))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusUnsupportedMediaType {
				assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
			}
		})
	}
}

func TestContentTypeJSON_KeepsHandlerChoice(t *testing.T) {
	handler := middleware.ContentTypeJSON(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/problem+json")
		w.WriteHeader(http.StatusNotFound)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/areas/sa_x", http.NoBody))

	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
}
