package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"roombook/internal/events"
	"roombook/internal/queue"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryPolicyNextDelay(t *testing.T) {
	policy := RetryPolicy{
		MaxRetries:    5,
		InitialDelay:  time.Second,
		MaxDelay:      10 * time.Second,
		BackoffFactor: 2,
	}

	assert.Equal(t, time.Second, policy.NextDelay(1))
	assert.Equal(t, 2*time.Second, policy.NextDelay(2))
	assert.Equal(t, 4*time.Second, policy.NextDelay(3))
	assert.Equal(t, 8*time.Second, policy.NextDelay(4))
	// Clamped to MaxDelay.
	assert.Equal(t, 10*time.Second, policy.NextDelay(5))
	assert.Equal(t, 10*time.Second, policy.NextDelay(20))

	// A zero-value policy falls back to the stock backoff.
	assert.Equal(t, 2*time.Second, RetryPolicy{}.NextDelay(1))
	assert.Equal(t, time.Second, policy.NextDelay(0))
}

func TestRetryPolicyDefaults(t *testing.T) {
	filled := RetryPolicy{}.withDefaults()
	assert.Equal(t, 5, filled.MaxRetries)
	assert.Equal(t, 2*time.Second, filled.InitialDelay)
	assert.Equal(t, time.Minute, filled.MaxDelay)
	assert.Equal(t, 2.0, filled.BackoffFactor)

	// Explicit settings are left alone.
	custom := RetryPolicy{MaxRetries: 1, InitialDelay: time.Millisecond, MaxDelay: time.Second, BackoffFactor: 3}.withDefaults()
	assert.Equal(t, 1, custom.MaxRetries)
	assert.Equal(t, time.Millisecond, custom.InitialDelay)
}

// flakySink fails the first failures deliveries, then succeeds.
type flakySink struct {
	failures  int
	confirmed []*events.NotificationTask
	cancelled []*events.NotificationTask
}

func (s *flakySink) NotifyConfirmed(_ context.Context, task *events.NotificationTask) error {
	if s.failures > 0 {
		s.failures--
		return errors.New("smtp unavailable")
	}
	s.confirmed = append(s.confirmed, task)
	return nil
}

func (s *flakySink) NotifyCancelled(_ context.Context, task *events.NotificationTask) error {
	if s.failures > 0 {
		s.failures--
		return errors.New("smtp unavailable")
	}
	s.cancelled = append(s.cancelled, task)
	return nil
}

func fastRetry() RetryPolicy {
	return RetryPolicy{
		MaxRetries:    3,
		InitialDelay:  time.Millisecond,
		MaxDelay:      5 * time.Millisecond,
		BackoffFactor: 2,
	}
}

func testTask(kind string) *events.NotificationTask {
	return events.NewNotificationTask(kind, events.BookingEventPayload{BookingID: 1, RoomName: "Room"})
}

func TestNotifierDelivers(t *testing.T) {
	logger := zerolog.New(zerolog.NewConsoleWriter())
	q := queue.NewMemoryQueue(4)
	sink := &flakySink{}
	n := NewNotifier(q, sink, fastRetry(), &logger)

	ctx := context.Background()
	n.Enqueue(ctx, testTask(events.EventBookingConfirmed))
	n.Enqueue(ctx, testTask(events.EventBookingCancelled))

	n.drain(ctx)

	assert.Len(t, sink.confirmed, 1)
	assert.Len(t, sink.cancelled, 1)
}

func TestNotifierRetriesTransientFailure(t *testing.T) {
	logger := zerolog.New(zerolog.NewConsoleWriter())
	q := queue.NewMemoryQueue(4)
	sink := &flakySink{failures: 2}
	n := NewNotifier(q, sink, fastRetry(), &logger)

	ctx := context.Background()
	n.Enqueue(ctx, testTask(events.EventBookingConfirmed))
	n.drain(ctx)

	require.Len(t, sink.confirmed, 1)
	assert.Equal(t, 2, sink.confirmed[0].Attempts)
}

// deadLetterQueue records tasks that exhausted retries.
type deadLetterQueue struct {
	*queue.MemoryQueue
	dead []*events.NotificationTask
}

func (q *deadLetterQueue) DeadLetter(_ context.Context, task *events.NotificationTask) error {
	q.dead = append(q.dead, task)
	return nil
}

func TestNotifierDeadLettersAfterMaxRetries(t *testing.T) {
	logger := zerolog.New(zerolog.NewConsoleWriter())
	q := &deadLetterQueue{MemoryQueue: queue.NewMemoryQueue(4)}
	sink := &flakySink{failures: 100}
	n := NewNotifier(q, sink, fastRetry(), &logger)

	ctx := context.Background()
	n.Enqueue(ctx, testTask(events.EventBookingConfirmed))
	n.drain(ctx)

	assert.Empty(t, sink.confirmed)
	require.Len(t, q.dead, 1)
	assert.Equal(t, 3, q.dead[0].Attempts)
}

func TestNotifierUnknownKind(t *testing.T) {
	logger := zerolog.New(zerolog.NewConsoleWriter())
	q := &deadLetterQueue{MemoryQueue: queue.NewMemoryQueue(4)}
	sink := &flakySink{}
	n := NewNotifier(q, sink, fastRetry(), &logger)

	ctx := context.Background()
	n.Enqueue(ctx, testTask("unknown_kind"))
	n.drain(ctx)

	assert.Empty(t, sink.confirmed)
	assert.Len(t, q.dead, 1)
}

func TestNotifierRunStopsOnCancel(t *testing.T) {
	logger := zerolog.New(zerolog.NewConsoleWriter())
	q := queue.NewMemoryQueue(4)
	n := NewNotifier(q, &flakySink{}, fastRetry(), &logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		n.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("notifier did not stop after context cancellation")
	}
}
