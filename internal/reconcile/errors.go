package reconcile

import (
	"errors"
	"net/http"
)

var (
	// ErrSourceUnavailable indicates the external tag source could not be reached.
	ErrSourceUnavailable = errors.New("tag source unavailable")
	// ErrPageCapExceeded indicates pagination hit the safety cap before draining.
	ErrPageCapExceeded = errors.New("tag source page cap exceeded")
)

// MapHTTPStatus maps reconciliation errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrSourceUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, ErrPageCapExceeded):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
