package middleware

import (
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog"

	"github.com/geosmoke/geosmoke/internal/api/models"
)

// Recovery returns a middleware that turns handler panics into 500 problems.
// http.ErrAbortHandler is re-raised so the server can abort the connection.
func Recovery(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := newStatusRecorder(w)

			defer func() {
				v := recover()
				if v == nil {
					return
				}
				if err, ok := v.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(v)
				}

				requestID := GetRequestID(r.Context())
				log.Error().
					Str("request_id", requestID).
					Str("method", r.Method).
					Str("route", routePattern(r)).
					Interface("panic", v).
					Bytes("stack", debug.Stack()).
					Msg("panic recovered")

				// Headers already sent cannot be replaced.
				if rec.wroteHeader {
					return
				}
				models.NewInternalError(requestID, "an unexpected error occurred").WriteFor(rec, r)
			}()

			next.ServeHTTP(rec, r)
		})
	}
}
