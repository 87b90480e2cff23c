package jobs

import (
	"errors"
	"net/http"
)

var (
	// ErrNotFound indicates the job does not exist or has expired.
	ErrNotFound = errors.New("job not found")
	// ErrDuplicate indicates a job with the same id already exists.
	ErrDuplicate = errors.New("job already exists")
	// ErrForbidden indicates the requesting principal does not own the job.
	ErrForbidden = errors.New("job belongs to another principal")
	// ErrInvalidTransition indicates a status transition from an
	// incompatible prior state, including re-entry on a terminal job.
	ErrInvalidTransition = errors.New("invalid job status transition")
)

// MapHTTPStatus maps job domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidTransition):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
