package worker

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fathomline/taxa/pkg/lifecycle"
	"github.com/fathomline/taxa/pkg/queue"
)

// Consumer pulls dispatched jobs off the queue and runs the pipeline
// with bounded concurrency. Infrastructure failures re-enqueue the
// message, preserving at-least-once delivery.
type Consumer struct {
	rt          *Runtime
	queue       queue.System
	concurrency int
	logger      *slog.Logger
}

// NewConsumer creates a queue consumer over the pipeline runtime.
func NewConsumer(rt *Runtime, q queue.System, concurrency int) *Consumer {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Consumer{
		rt:          rt,
		queue:       q,
		concurrency: concurrency,
		logger:      rt.Logger.With("system", "worker"),
	}
}

// Start runs the consume loop until shutdown and blocks shutdown until
// in-flight jobs finish.
func (c *Consumer) Start(lc *lifecycle.Coordinator) error {
	c.logger.Info("starting queue consumer", "concurrency", c.concurrency)

	done := make(chan struct{})

	go func() {
		defer close(done)
		c.run(lc.Context())
	}()

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		c.logger.Info("draining queue consumer")
		<-done
		c.logger.Info("queue consumer stopped")
	})

	return nil
}

func (c *Consumer) run(ctx context.Context) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for {
		if ctx.Err() != nil {
			break
		}

		payload, err := c.queue.Dequeue(ctx)
		if err != nil {
			if errors.Is(err, queue.ErrEmpty) || ctx.Err() != nil {
				continue
			}
			c.logger.Error("dequeue failed", "error", err)
			sleepCtx(ctx, time.Second)
			continue
		}

		g.Go(func() error {
			c.process(gctx, payload)
			return nil
		})
	}

	g.Wait()
}

func (c *Consumer) process(ctx context.Context, payload []byte) {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		c.logger.Error("discarding malformed queue message", "error", err)
		return
	}

	if err := Execute(ctx, c.rt, msg.JobID); err != nil {
		c.logger.Error("pipeline infrastructure failure, re-enqueueing",
			"id", msg.JobID,
			"error", err,
		)
		if reqErr := c.queue.Enqueue(context.WithoutCancel(ctx), payload); reqErr != nil {
			c.logger.Error("re-enqueue failed, job stays pending or processing",
				"id", msg.JobID,
				"error", reqErr,
			)
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
