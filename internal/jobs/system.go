package jobs

import (
	"context"

	"github.com/google/uuid"

	"github.com/fathomline/taxa/internal/classify"
	"github.com/fathomline/taxa/pkg/pagination"
)

// CreateCommand carries a validated async submission.
type CreateCommand struct {
	Data         []byte
	Filename     string
	MIMEType     string
	OwnerKeyHash string
}

// Dispatcher hands a created job to the delivery mechanism that will
// eventually trigger a worker. Delivery is at-least-once.
type Dispatcher interface {
	Dispatch(ctx context.Context, id uuid.UUID) error
}

// System defines the public contract for job domain operations.
// Status transitions are compare-and-swap on the expected prior status;
// a transition from any other state returns ErrInvalidTransition, so a
// duplicate delivery of an already-claimed or terminal job never
// overwrites prior state.
type System interface {
	Handler(dispatcher Dispatcher, syncThreshold, asyncMax int64) *Handler

	// Create uploads the payload and inserts a pending job record.
	Create(ctx context.Context, cmd CreateCommand) (*Job, error)

	// Get returns the job, treating TTL-expired records as absent.
	Get(ctx context.Context, id uuid.UUID) (*Job, error)

	// GetOwned is Get scoped to an owner key hash; a hash mismatch
	// returns ErrForbidden.
	GetOwned(ctx context.Context, id uuid.UUID, ownerKeyHash string) (*Job, error)

	// List returns the owner's unexpired jobs, newest first.
	List(ctx context.Context, ownerKeyHash string, page pagination.PageRequest) (*pagination.PageResult[Job], error)

	// MarkProcessing advances pending → processing.
	MarkProcessing(ctx context.Context, id uuid.UUID) error

	// Release returns processing → pending after an infrastructure
	// failure so a redelivered message can re-claim the job.
	Release(ctx context.Context, id uuid.UUID) error

	// UpdateProgress durably records the worker's position. Valid only
	// while processing.
	UpdateProgress(ctx context.Context, id uuid.UUID, stage string, percent int) error

	// Complete advances processing → completed with the enriched result.
	Complete(ctx context.Context, id uuid.UUID, result *classify.Result, processingTimeMs int64) error

	// Fail advances processing → failed with a structured error.
	Fail(ctx context.Context, id uuid.UUID, code, message string) error
}
