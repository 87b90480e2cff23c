// Package handlers provides JSON response helpers shared by HTTP handlers.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// ErrorResponse is the minimal error body for infrastructure failures.
type ErrorResponse struct {
	Error string `json:"error"`
}

// CodedError is the structured error envelope returned by API endpoints.
type CodedError struct {
	Status    string         `json:"status"`
	ErrorCode string         `json:"error_code"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	Timestamp string         `json:"timestamp"`
}

// RespondJSON writes data as a JSON response with the given status code.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// RespondError logs the error and writes a minimal JSON error body.
func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, err error) {
	logger.Error("request failed", "status", status, "error", err)
	RespondJSON(w, status, ErrorResponse{Error: err.Error()})
}

// RespondCode writes the structured error envelope with a machine-readable
// error code and a UTC timestamp.
func RespondCode(w http.ResponseWriter, logger *slog.Logger, status int, code, message string, details map[string]any) {
	logger.Error("request failed", "status", status, "error_code", code, "message", message)
	RespondJSON(w, status, CodedError{
		Status:    "error",
		ErrorCode: code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
