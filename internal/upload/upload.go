// Package upload parses document submissions shared by the sync and
// async endpoints. Both accept a multipart form upload or a JSON body
// with base64-encoded content.
package upload

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
)

// ErrInvalidPayload indicates the request body could not be parsed
// into a document.
var ErrInvalidPayload = errors.New("invalid document payload")

// ErrTooLarge indicates the request body exceeded the read cap before a
// document could be parsed.
var ErrTooLarge = errors.New("document payload too large")

// BodyLimit returns the request body cap for a given payload limit,
// leaving room for base64 expansion and multipart framing so that a
// payload just over the limit still parses and gets a size rejection
// instead of a parse failure.
func BodyLimit(payloadMax int64) int64 {
	return payloadMax*2 + 4096
}

// Document is a parsed submission payload.
type Document struct {
	Data     []byte
	Filename string
	MIME     string
}

// Size returns the payload size in bytes.
func (d *Document) Size() int64 {
	return int64(len(d.Data))
}

type jsonPayload struct {
	Filename      string `json:"filename"`
	ContentType   string `json:"content_type"`
	ContentBase64 string `json:"content_base64"`
}

// FromRequest parses a document from a multipart form (field "file") or
// a JSON body with base64 content. maxBytes bounds how much of the body
// is read; a body past the bound returns ErrTooLarge. Oversize
// detection against endpoint thresholds is the caller's concern.
func FromRequest(r *http.Request, maxBytes int64) (*Document, error) {
	contentType := r.Header.Get("Content-Type")
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, ErrInvalidPayload
	}

	r.Body = http.MaxBytesReader(nil, r.Body, maxBytes)

	switch {
	case mediaType == "multipart/form-data":
		return fromMultipart(r, maxBytes)
	case mediaType == "application/json":
		return fromJSON(r.Body)
	default:
		return nil, ErrInvalidPayload
	}
}

func fromMultipart(r *http.Request, maxBytes int64) (*Document, error) {
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		return nil, parseError(err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, parseError(err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, parseError(err)
	}

	return &Document{
		Data:     data,
		Filename: header.Filename,
		MIME:     detectMIME(header.Header.Get("Content-Type"), header.Filename, data),
	}, nil
}

func fromJSON(body io.Reader) (*Document, error) {
	var payload jsonPayload
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		return nil, parseError(err)
	}
	if payload.Filename == "" || payload.ContentBase64 == "" {
		return nil, ErrInvalidPayload
	}

	data, err := base64.StdEncoding.DecodeString(payload.ContentBase64)
	if err != nil {
		return nil, ErrInvalidPayload
	}

	return &Document{
		Data:     data,
		Filename: payload.Filename,
		MIME:     detectMIME(payload.ContentType, payload.Filename, data),
	}, nil
}

// parseError keeps the body cap distinguishable from a malformed body
// so oversize submissions get a size rejection, not a parse failure.
func parseError(err error) error {
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		return ErrTooLarge
	}
	return ErrInvalidPayload
}

func detectMIME(declared, filename string, data []byte) string {
	declared = strings.TrimSpace(declared)
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	if byExt := mime.TypeByExtension(filepath.Ext(filename)); byExt != "" {
		return byExt
	}
	return http.DetectContentType(data)
}
