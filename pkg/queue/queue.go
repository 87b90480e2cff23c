// Package queue provides a Redis-backed work queue with lifecycle coordination.
package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fathomline/taxa/pkg/lifecycle"
)

// ErrEmpty indicates no message was available within the dequeue timeout.
var ErrEmpty = errors.New("queue empty")

// System manages queue operations and lifecycle coordination.
type System interface {
	// Start registers startup and shutdown hooks with the lifecycle coordinator.
	Start(lc *lifecycle.Coordinator) error
	// Enqueue pushes a message onto the head of the queue.
	Enqueue(ctx context.Context, payload []byte) error
	// Dequeue pops the oldest message, blocking up to the configured
	// timeout. Returns ErrEmpty when the timeout elapses with no message.
	Dequeue(ctx context.Context) ([]byte, error)
	// Length returns the number of messages waiting in the queue.
	Length(ctx context.Context) (int64, error)
}

type redisQueue struct {
	client      *redis.Client
	key         string
	popTimeout  time.Duration
	connTimeout time.Duration
	logger      *slog.Logger
}

// New creates a queue system with the given configuration.
// The connection is not verified until Start is called.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse queue url: %w", err)
	}

	return &redisQueue{
		client:      redis.NewClient(opts),
		key:         cfg.Key,
		popTimeout:  cfg.PopTimeoutDuration(),
		connTimeout: cfg.ConnTimeoutDuration(),
		logger:      logger.With("system", "queue"),
	}, nil
}

func (q *redisQueue) Start(lc *lifecycle.Coordinator) error {
	q.logger.Info("starting queue connection")

	lc.OnStartup(func() {
		pingCtx, cancel := context.WithTimeout(lc.Context(), q.connTimeout)
		defer cancel()

		if err := q.client.Ping(pingCtx).Err(); err != nil {
			q.logger.Error("queue ping failed", "error", err)
			return
		}

		q.logger.Info("queue connection established", "key", q.key)
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		q.logger.Info("closing queue connection")

		if err := q.client.Close(); err != nil {
			q.logger.Error("queue close failed", "error", err)
			return
		}

		q.logger.Info("queue connection closed")
	})

	return nil
}

func (q *redisQueue) Enqueue(ctx context.Context, payload []byte) error {
	if err := q.client.LPush(ctx, q.key, payload).Err(); err != nil {
		return fmt.Errorf("enqueue: %w", err)
	}
	return nil
}

func (q *redisQueue) Dequeue(ctx context.Context) ([]byte, error) {
	res, err := q.client.BRPop(ctx, q.popTimeout, q.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrEmpty
		}
		return nil, fmt.Errorf("dequeue: %w", err)
	}

	// BRPOP returns [key, value]
	if len(res) != 2 {
		return nil, fmt.Errorf("dequeue: unexpected reply length %d", len(res))
	}

	return []byte(res[1]), nil
}

func (q *redisQueue) Length(ctx context.Context) (int64, error) {
	n, err := q.client.LLen(ctx, q.key).Result()
	if err != nil {
		return 0, fmt.Errorf("queue length: %w", err)
	}
	return n, nil
}
