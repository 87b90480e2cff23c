package extract

import (
	"errors"
	"net/http"
)

var (
	// ErrUnsupportedFormat indicates the document MIME type is not accepted.
	ErrUnsupportedFormat = errors.New("unsupported document format")
	// ErrExtractionFailed indicates the extractor could not produce text.
	ErrExtractionFailed = errors.New("text extraction failed")
	// ErrTextTooShort indicates the extracted text is below the usable minimum.
	ErrTextTooShort = errors.New("extracted text too short")
)

// MapHTTPStatus maps extraction errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, ErrTextTooShort):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrExtractionFailed):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
