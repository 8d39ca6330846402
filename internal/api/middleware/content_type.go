package middleware

import (
	"mime"
	"net/http"
	"strings"

	"github.com/geosmoke/geosmoke/internal/api/models"
)

// ContentTypeJSON sets the Content-Type header to application/json unless a
// handler has already chosen one.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if w.Header().Get("Content-Type") == "" {
			w.Header().Set("Content-Type", "application/json")
		}
		next.ServeHTTP(w, r)
	})
}

// RequireJSON rejects POST, PUT and PATCH requests whose Content-Type is set
// to something other than JSON with 415. Bodyless requests such as the
// favorite toggle may omit the header.
func RequireJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			if contentType := r.Header.Get("Content-Type"); contentType != "" && !isJSON(contentType) {
				models.NewUnsupportedMediaType(GetRequestID(r.Context()), "Content-Type must be application/json").WriteFor(w, r)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// isJSON accepts application/json and structured +json types, with any
// parameters.
func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}
