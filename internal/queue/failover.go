package queue

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"roombook/internal/domain"
	"roombook/internal/events"

	"github.com/rs/zerolog"
)

// FailoverQueue prefers the primary (redis) queue and degrades to the
// in-memory fallback when it fails, probing the primary again after a
// minute.
type FailoverQueue struct {
	primary   domain.NotificationQueue
	fallback  domain.NotificationQueue
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64
}

func NewFailoverQueue(primary, fallback domain.NotificationQueue, logger *zerolog.Logger) *FailoverQueue {
	return &FailoverQueue{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (q *FailoverQueue) Push(ctx context.Context, task *events.NotificationTask) error {
	if q.primaryUp() {
		err := q.primary.Push(ctx, task)
		if err == nil {
			return nil
		}
		q.markDown(err)
	}
	return q.fallback.Push(ctx, task)
}

func (q *FailoverQueue) Pop(ctx context.Context) (*events.NotificationTask, error) {
	// Drain the fallback first so nothing queued during an outage is stuck
	// behind the primary.
	task, err := q.fallback.Pop(ctx)
	if err == nil {
		return task, nil
	}
	if !errors.Is(err, ErrEmpty) {
		return nil, err
	}

	if !q.primaryUp() {
		return nil, ErrEmpty
	}

	task, err = q.primary.Pop(ctx)
	if err != nil && !errors.Is(err, ErrEmpty) {
		q.markDown(err)
		return nil, ErrEmpty
	}
	return task, err
}

func (q *FailoverQueue) primaryUp() bool {
	if !q.isDown.Load() {
		return true
	}
	// Check again after a minute.
	if time.Since(time.Unix(q.lastCheck.Load(), 0)) > time.Minute {
		q.isDown.Store(false)
		return true
	}
	return false
}

func (q *FailoverQueue) markDown(err error) {
	q.logger.Error().Err(err).Msg("primary notification queue failed, falling back to memory")
	q.isDown.Store(true)
	q.lastCheck.Store(time.Now().Unix())
}
