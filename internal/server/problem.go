package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jansen-zhang20/covid-dashy-personal/core"
)

// Problem types for RFC 7807 Problem Details responses.
const (
	ProblemTypeNotFound      = "https://casetrack.dev/problems/not-found"
	ProblemTypeBadRequest    = "https://casetrack.dev/problems/bad-request"
	ProblemTypeUnprocessable = "https://casetrack.dev/problems/unprocessable"
	ProblemTypeUnavailable   = "https://casetrack.dev/problems/unavailable"
	ProblemTypeInternal      = "https://casetrack.dev/problems/internal-error"
	ProblemTypeRateLimited   = "https://casetrack.dev/problems/rate-limited"
)

// Problem represents an RFC 7807 Problem Details response.
type Problem struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
}

// WriteProblem writes an RFC 7807 Problem Details JSON response.
func WriteProblem(w http.ResponseWriter, p Problem) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

// NotFound writes a 404 problem response.
func NotFound(w http.ResponseWriter, detail, instance string) {
	WriteProblem(w, Problem{
		Type:     ProblemTypeNotFound,
		Title:    "Not Found",
		Status:   http.StatusNotFound,
		Detail:   detail,
		Instance: instance,
	})
}

// BadRequest writes a 400 problem response.
func BadRequest(w http.ResponseWriter, detail, instance string) {
	WriteProblem(w, Problem{
		Type:     ProblemTypeBadRequest,
		Title:    "Bad Request",
		Status:   http.StatusBadRequest,
		Detail:   detail,
		Instance: instance,
	})
}

// Unprocessable writes a 422 problem response for data the pipeline cannot evaluate.
func Unprocessable(w http.ResponseWriter, detail, instance string) {
	WriteProblem(w, Problem{
		Type:     ProblemTypeUnprocessable,
		Title:    "Unprocessable Entity",
		Status:   http.StatusUnprocessableEntity,
		Detail:   detail,
		Instance: instance,
	})
}

// Unavailable writes a 503 problem response.
func Unavailable(w http.ResponseWriter, detail, instance string) {
	WriteProblem(w, Problem{
		Type:     ProblemTypeUnavailable,
		Title:    "Service Unavailable",
		Status:   http.StatusServiceUnavailable,
		Detail:   detail,
		Instance: instance,
	})
}

// InternalError writes a 500 problem response.
func InternalError(w http.ResponseWriter, detail, instance string) {
	WriteProblem(w, Problem{
		Type:     ProblemTypeInternal,
		Title:    "Internal Server Error",
		Status:   http.StatusInternalServerError,
		Detail:   detail,
		Instance: instance,
	})
}

// RateLimited writes a 429 problem response.
func RateLimited(w http.ResponseWriter, detail, instance string) {
	WriteProblem(w, Problem{
		Type:     ProblemTypeRateLimited,
		Title:    "Too Many Requests",
		Status:   http.StatusTooManyRequests,
		Detail:   detail,
		Instance: instance,
	})
}

// pipelineStatus maps a pipeline error to the HTTP status reported for it.
func pipelineStatus(err error) int {
	switch {
	case errors.Is(err, core.ErrUnknownLocation):
		return http.StatusNotFound
	case errors.Is(err, core.ErrInvalidRate),
		errors.Is(err, core.ErrUnknownScenario),
		errors.Is(err, core.ErrInvalidWindow),
		errors.Is(err, core.ErrInvalidLag),
		errors.Is(err, core.ErrInvalidHorizon),
		errors.Is(err, core.ErrInvalidConvention),
		errors.Is(err, core.ErrInvalidSelection):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrInsufficientHistory),
		errors.Is(err, core.ErrEmptySeries),
		errors.Is(err, core.ErrUndefinedEstimate),
		errors.Is(err, core.ErrDuplicateDate),
		errors.Is(err, core.ErrOverlappingProjection),
		errors.Is(err, core.ErrProjectionOverflow):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// PipelineError writes the problem response matching err.
func PipelineError(w http.ResponseWriter, err error, instance string) {
	switch pipelineStatus(err) {
	case http.StatusNotFound:
		NotFound(w, err.Error(), instance)
	case http.StatusBadRequest:
		BadRequest(w, err.Error(), instance)
	case http.StatusUnprocessableEntity:
		Unprocessable(w, err.Error(), instance)
	default:
		InternalError(w, err.Error(), instance)
	}
}
