package worker

import "fmt"

// Failure codes recorded on jobs that fail for business reasons.
const (
	CodeExtractionFailed = "EXTRACTION_FAILED"
	CodeExtractionNoText = "EXTRACTION_NO_TEXT"
	CodeTagCacheLoad     = "TAG_CACHE_LOAD_FAILED"
	CodeClassification   = "CLASSIFICATION_FAILED"
	CodeValidation       = "VALIDATION_FAILED"
)

// BusinessError is a failure absorbed into the job record rather than
// surfaced as a delivery failure. The dispatcher must not retry it.
type BusinessError struct {
	Code    string
	Message string
}

func (e *BusinessError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func business(code, format string, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}
