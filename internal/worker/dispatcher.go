package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/fathomline/taxa/internal/jobs"
	"github.com/fathomline/taxa/pkg/queue"
)

// Message is the queue payload carrying one dispatched job.
type Message struct {
	JobID uuid.UUID `json:"job_id"`
}

type queueDispatcher struct {
	queue queue.System
}

// NewDispatcher creates a queue-backed job dispatcher.
func NewDispatcher(q queue.System) jobs.Dispatcher {
	return &queueDispatcher{queue: q}
}

func (d *queueDispatcher) Dispatch(ctx context.Context, id uuid.UUID) error {
	payload, err := json.Marshal(Message{JobID: id})
	if err != nil {
		return fmt.Errorf("encode dispatch message: %w", err)
	}

	if err := d.queue.Enqueue(ctx, payload); err != nil {
		return fmt.Errorf("dispatch job %s: %w", id, err)
	}

	return nil
}
