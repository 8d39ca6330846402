package handler

import (
	"net"
	"net/http"

	"github.com/geosmoke/geosmoke/internal/api/middleware"
)

// deviceID returns the authenticated device ID of the request.
func deviceID(r *http.Request) string {
	return middleware.GetDeviceID(r.Context())
}

// clientIP returns the caller address without port. chi's RealIP middleware
// has already replaced RemoteAddr with the forwarded address when present.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
