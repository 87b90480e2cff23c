package auth

import (
	"errors"
	"net/http"
)

var (
	// ErrMissingKey indicates no API key was presented.
	ErrMissingKey = errors.New("api key required")
	// ErrInvalidKey indicates the presented key is not provisioned.
	ErrInvalidKey = errors.New("invalid api key")
	// ErrExpiredKey indicates the presented key has expired.
	ErrExpiredKey = errors.New("api key expired")
	// ErrNotAdmin indicates the key lacks admin scope.
	ErrNotAdmin = errors.New("admin key required")
	// ErrRateLimited indicates the principal exceeded its request budget.
	ErrRateLimited = errors.New("rate limit exceeded")
)

// MapHTTPStatus maps authentication errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrMissingKey), errors.Is(err, ErrInvalidKey), errors.Is(err, ErrExpiredKey):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotAdmin):
		return http.StatusForbidden
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
