package worker

import (
	"net/http"
	"time"

	"github.com/geosmoke/geosmoke/internal/api/response"
)

// HealthStatus is the body of the worker health endpoint.
type HealthStatus struct {
	Status    string     `json:"status"`
	Version   string     `json:"version"`
	Processed int64      `json:"processed"`
	Failed    int64      `json:"failed"`
	Skipped   int64      `json:"skipped"`
	LastJob   string     `json:"lastJob,omitempty"`
	LastJobAt *time.Time `json:"lastJobAt,omitempty"`
}

// HealthHandler reports liveness together with the processor counters.
func HealthHandler(p *Processor, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats := p.Stats()
		status := HealthStatus{
			Status:    "healthy",
			Version:   version,
			Processed: stats.Processed,
			Failed:    stats.Failed,
			Skipped:   stats.Skipped,
			LastJob:   stats.LastJob,
		}
		if !stats.LastJobAt.IsZero() {
			at := stats.LastJobAt.UTC()
			status.LastJobAt = &at
		}
		response.JSON(w, r, http.StatusOK, status)
	}
}
