// Package jobs provides the durable asynchronous classification job:
// the status state machine, the Postgres-backed store, and the
// submission, status, and listing endpoints.
package jobs

import (
	"time"

	"github.com/google/uuid"

	"github.com/fathomline/taxa/internal/classify"
)

// Status is the job lifecycle state.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// Terminal reports whether s is a terminal status.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// CanTransition reports whether from may advance to to. Transitions are
// monotonic: pending → processing → {completed, failed}. Terminal
// states accept no successor.
func CanTransition(from, to Status) bool {
	switch from {
	case StatusPending:
		return to == StatusProcessing
	case StatusProcessing:
		return to == StatusCompleted || to == StatusFailed
	}
	return false
}

// Progress is the worker's last durably recorded position.
type Progress struct {
	Stage   string `json:"stage"`
	Percent int    `json:"percent"`
}

// JobError is the structured failure recorded on a failed job.
type JobError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Job is the durable record tracking one asynchronous classification
// request. Once terminal it is immutable; records past TTLExpiresAt are
// treated as absent.
type Job struct {
	ID               uuid.UUID        `json:"id"`
	Status           Status           `json:"status"`
	Filename         string           `json:"filename"`
	SizeBytes        int64            `json:"size_bytes"`
	MIMEType         string           `json:"mime_type"`
	StorageKey       string           `json:"storage_key"`
	OwnerKeyHash     string           `json:"-"`
	Progress         *Progress        `json:"progress,omitempty"`
	Result           *classify.Result `json:"result,omitempty"`
	Error            *JobError        `json:"error,omitempty"`
	ProcessingTimeMs *int64           `json:"processing_time_ms,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
	CompletedAt      *time.Time       `json:"completed_at,omitempty"`
	FailedAt         *time.Time       `json:"failed_at,omitempty"`
	TTLExpiresAt     time.Time        `json:"ttl_expires_at"`
}

// DefaultTTL is how long a job record stays readable after creation.
const DefaultTTL = 24 * time.Hour

// EstimateSeconds predicts completion time for a payload of the given
// size: 5 seconds per MB, clamped to [10, 60].
func EstimateSeconds(sizeBytes int64) int {
	est := int(float64(sizeBytes) / (1024 * 1024) * 5)
	if est < 10 {
		return 10
	}
	if est > 60 {
		return 60
	}
	return est
}
