// Package extract defines the text extraction boundary. Per-format
// extraction (PDF, Office formats, image OCR) is an external
// collaborator; this package carries the contract, the plaintext
// implementation, and the shared format and length checks.
package extract

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// MinTextLength is the minimum number of characters a document must
// yield to be classifiable.
const MinTextLength = 50

// SupportedMIMETypes is the document format allow-list.
var SupportedMIMETypes = map[string]bool{
	"application/pdf": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   true,
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": true,
	"text/plain": true,
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// Extractor produces plain text from a document payload.
type Extractor interface {
	ExtractText(data []byte, mime, filename string) (string, error)
}

// Supported reports whether the MIME type is on the allow-list.
// Parameters after a semicolon (e.g. charset) are ignored.
func Supported(mime string) bool {
	base, _, _ := strings.Cut(mime, ";")
	return SupportedMIMETypes[strings.TrimSpace(strings.ToLower(base))]
}

// ValidateText checks extracted text against the usable minimum.
func ValidateText(text string) error {
	if utf8.RuneCountInString(strings.TrimSpace(text)) < MinTextLength {
		return fmt.Errorf("%w: need at least %d characters", ErrTextTooShort, MinTextLength)
	}
	return nil
}

// Plaintext extracts text from text/plain payloads and rejects every
// other format. Rich-format extraction plugs in behind Extractor.
type Plaintext struct{}

// ExtractText returns the payload as a UTF-8 string for text/plain
// documents. Other supported formats return ErrExtractionFailed so the
// caller can distinguish "needs a real extractor" from "bad format".
func (Plaintext) ExtractText(data []byte, mime, filename string) (string, error) {
	if !Supported(mime) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, mime)
	}

	base, _, _ := strings.Cut(mime, ";")
	if strings.TrimSpace(strings.ToLower(base)) != "text/plain" {
		return "", fmt.Errorf("%w: no extractor for %s", ErrExtractionFailed, mime)
	}

	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: payload is not valid UTF-8", ErrExtractionFailed)
	}

	return string(data), nil
}

// PDFPageCount probes a PDF payload for its page count. Returns nil for
// non-PDF payloads or when the probe fails; the count is advisory only.
func PDFPageCount(logger *slog.Logger, data []byte, mime string) *int {
	base, _, _ := strings.Cut(mime, ";")
	if strings.TrimSpace(strings.ToLower(base)) != "application/pdf" {
		return nil
	}

	count, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		logger.Warn("failed to extract PDF page count", "error", err)
		return nil
	}

	return &count
}
