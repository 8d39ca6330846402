package models

import (
	"encoding/json"
	"net/http"
)

// Problem is an RFC 7807 error body, served as application/problem+json.
type Problem struct {
	Type     string       `json:"type"`
	Title    string       `json:"title"`
	Status   int          `json:"status"`
	Detail   string       `json:"detail,omitempty"`
	Instance string       `json:"instance,omitempty"`
	TraceID  string       `json:"traceId"`
	Errors   []FieldError `json:"errors,omitempty"`
}

// FieldError represents a validation error on a specific field.
// Field uses the JSON name, with an index prefix for batch items
// ("areas[2].name") and a comma for paired query parameters ("lat,lon").
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

const problemBase = "https://api.geosmoke.app/problems/"

// Problem types.
const (
	ProblemTypeValidation       = problemBase + "validation-error"
	ProblemTypeUnauthorized     = problemBase + "unauthorized"
	ProblemTypeTLSRequired      = problemBase + "tls-required"
	ProblemTypeNotFound         = problemBase + "not-found"
	ProblemTypeUnsupportedMedia = problemBase + "unsupported-media-type"
	ProblemTypeTooManyRequests  = problemBase + "too-many-requests"
	ProblemTypeInternal         = problemBase + "internal-error"
	ProblemTypeUnavailable      = problemBase + "service-unavailable"
)

var problemTitles = map[string]string{
	ProblemTypeValidation:       "Validation error",
	ProblemTypeUnauthorized:     "Unauthorized",
	ProblemTypeTLSRequired:      "TLS required",
	ProblemTypeNotFound:         "Not found",
	ProblemTypeUnsupportedMedia: "Unsupported media type",
	ProblemTypeTooManyRequests:  "Too many requests",
	ProblemTypeInternal:         "Internal server error",
	ProblemTypeUnavailable:      "Service unavailable",
}

// NewProblem creates a Problem of a known type. Unknown types get the
// status text as title.
func NewProblem(problemType string, status int, traceID, detail string) *Problem {
	title, ok := problemTitles[problemType]
	if !ok {
		title = http.StatusText(status)
	}
	return &Problem{
		Type:    problemType,
		Title:   title,
		Status:  status,
		Detail:  detail,
		TraceID: traceID,
	}
}

// Write writes the Problem as JSON to the ResponseWriter.
func (p *Problem) Write(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.Header().Set("X-Request-Id", p.TraceID)
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

// WriteFor writes the Problem with Instance set to the request path.
func (p *Problem) WriteFor(w http.ResponseWriter, r *http.Request) {
	p.Instance = r.URL.Path
	p.Write(w)
}

// NewBadRequest creates a 400 Bad Request problem.
func NewBadRequest(traceID, detail string, errors []FieldError) *Problem {
	p := NewProblem(ProblemTypeValidation, http.StatusBadRequest, traceID, detail)
	p.Errors = errors
	return p
}

// NewUnauthorized creates a 401 Unauthorized problem.
func NewUnauthorized(traceID, detail string) *Problem {
	return NewProblem(ProblemTypeUnauthorized, http.StatusUnauthorized, traceID, detail)
}

// NewTLSRequired creates a 403 problem for plain-HTTP requests.
func NewTLSRequired(traceID string) *Problem {
	return NewProblem(ProblemTypeTLSRequired, http.StatusForbidden, traceID, "This endpoint requires HTTPS")
}

// NewNotFound creates a 404 Not Found problem.
func NewNotFound(traceID, detail string) *Problem {
	return NewProblem(ProblemTypeNotFound, http.StatusNotFound, traceID, detail)
}

// NewUnsupportedMediaType creates a 415 Unsupported Media Type problem.
func NewUnsupportedMediaType(traceID, detail string) *Problem {
	return NewProblem(ProblemTypeUnsupportedMedia, http.StatusUnsupportedMediaType, traceID, detail)
}

// NewTooManyRequests creates a 429 Too Many Requests problem.
func NewTooManyRequests(traceID, detail string) *Problem {
	return NewProblem(ProblemTypeTooManyRequests, http.StatusTooManyRequests, traceID, detail)
}

// NewInternalError creates a 500 Internal Server Error problem.
func NewInternalError(traceID, detail string) *Problem {
	return NewProblem(ProblemTypeInternal, http.StatusInternalServerError, traceID, detail)
}

// NewServiceUnavailable creates a 503 Service Unavailable problem.
func NewServiceUnavailable(traceID, detail string) *Problem {
	return NewProblem(ProblemTypeUnavailable, http.StatusServiceUnavailable, traceID, detail)
}
