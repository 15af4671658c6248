package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"roombook/internal/domain"
	"roombook/internal/events"
	"roombook/internal/metrics"
	"roombook/internal/queue"

	"github.com/rs/zerolog"
)

// Notifier drains the notification queue and delivers tasks to the sink
// with exponential backoff. Delivery is best-effort: a booking is never
// rolled back because its notification failed.
type Notifier struct {
	queue        domain.NotificationQueue
	sink         domain.NotificationSink
	retryPolicy  RetryPolicy
	pollInterval time.Duration
	logger       *zerolog.Logger
}

// NewNotifier builds a worker; zero policy fields get the stock backoff.
func NewNotifier(q domain.NotificationQueue, sink domain.NotificationSink, retry RetryPolicy, logger *zerolog.Logger) *Notifier {
	return &Notifier{
		queue:        q,
		sink:         sink,
		retryPolicy:  retry.withDefaults(),
		pollInterval: 500 * time.Millisecond,
		logger:       logger,
	}
}

// Enqueue schedules a task without blocking the caller's transaction.
// Failures are logged and dropped: notification is not authoritative state.
func (n *Notifier) Enqueue(ctx context.Context, task *events.NotificationTask) {
	if n == nil || task == nil {
		return
	}
	if err := n.queue.Push(ctx, task); err != nil {
		n.logger.Error().Err(err).Str("kind", task.Kind).Int64("booking_id", task.Payload.BookingID).
			Msg("notification enqueue failed")
		metrics.NotificationResult("enqueue_failed")
	}
}

// Run consumes tasks until the context is cancelled.
func (n *Notifier) Run(ctx context.Context) {
	n.logger.Info().Msg("notifier worker started")
	ticker := time.NewTicker(n.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			n.logger.Info().Msg("notifier worker stopped")
			return
		case <-ticker.C:
			n.drain(ctx)
		}
	}
}

func (n *Notifier) drain(ctx context.Context) {
	for {
		task, err := n.queue.Pop(ctx)
		if errors.Is(err, queue.ErrEmpty) {
			return
		}
		if err != nil {
			n.logger.Error().Err(err).Msg("notification queue pop failed")
			return
		}
		n.process(ctx, task)
	}
}

func (n *Notifier) process(ctx context.Context, task *events.NotificationTask) {
	var err error
	for attempt := 1; attempt <= n.retryPolicy.MaxRetries; attempt++ {
		err = n.deliver(ctx, task)
		if err == nil {
			metrics.NotificationResult("delivered")
			return
		}
		task.Attempts++
		n.logger.Warn().Err(err).Str("task_id", task.ID).Int("attempt", attempt).
			Msg("notification delivery failed")

		select {
		case <-ctx.Done():
			return
		case <-time.After(n.retryPolicy.NextDelay(attempt)):
		}
	}

	metrics.NotificationResult("dead_letter")
	n.logger.Error().Err(err).Str("task_id", task.ID).Str("kind", task.Kind).
		Int64("booking_id", task.Payload.BookingID).
		Msg("notification dead-lettered after max retries")
	if dl, ok := n.queue.(interface {
		DeadLetter(context.Context, *events.NotificationTask) error
	}); ok {
		_ = dl.DeadLetter(ctx, task)
	}
}

func (n *Notifier) deliver(ctx context.Context, task *events.NotificationTask) error {
	switch task.Kind {
	case events.EventBookingConfirmed:
		return n.sink.NotifyConfirmed(ctx, task)
	case events.EventBookingCancelled:
		return n.sink.NotifyCancelled(ctx, task)
	default:
		return fmt.Errorf("unknown notification kind %q", task.Kind)
	}
}
