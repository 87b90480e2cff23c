package tags

import (
	"errors"
	"net/http"
)

var (
	// ErrSnapshotNotFound indicates no canonical snapshot has been published.
	ErrSnapshotNotFound = errors.New("tag snapshot not found")
	// ErrSnapshotInvalid indicates the stored snapshot could not be decoded.
	ErrSnapshotInvalid = errors.New("tag snapshot invalid")
	// ErrCacheLoad indicates the snapshot could not be loaded and no cached copy exists.
	ErrCacheLoad = errors.New("tag cache load failed")
)

// MapHTTPStatus maps tag errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrSnapshotNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrSnapshotInvalid), errors.Is(err, ErrCacheLoad):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
