package classify

import (
	"errors"
	"net/http"
)

var (
	// ErrClassificationFailed indicates the model call exhausted its
	// retries or produced structurally unusable output.
	ErrClassificationFailed = errors.New("classification failed")
	// ErrValidationFailed indicates the enriched result violates the
	// mandatory taxonomy rules.
	ErrValidationFailed = errors.New("classification rule validation failed")
)

// MapHTTPStatus maps classification errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidationFailed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrClassificationFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
