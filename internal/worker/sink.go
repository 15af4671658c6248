package worker

import (
	"context"

	"roombook/internal/events"

	"github.com/rs/zerolog"
)

// LogSink stands in for the email gateway: it records what would have been
// sent. Swap in a real sink behind domain.NotificationSink.
type LogSink struct {
	logger *zerolog.Logger
}

func NewLogSink(logger *zerolog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) NotifyConfirmed(ctx context.Context, task *events.NotificationTask) error {
	s.logger.Info().
		Str("event", events.EventBookingConfirmed).
		Int64("booking_id", task.Payload.BookingID).
		Str("user_email", task.Payload.UserEmail).
		Str("room", task.Payload.RoomName).
		Str("date", task.Payload.Date).
		Str("slot", task.Payload.Start+"-"+task.Payload.End).
		Str("receipt", task.Payload.ReceiptToken).
		Msg("booking confirmation notification")
	return nil
}

func (s *LogSink) NotifyCancelled(ctx context.Context, task *events.NotificationTask) error {
	s.logger.Info().
		Str("event", events.EventBookingCancelled).
		Int64("booking_id", task.Payload.BookingID).
		Str("user_email", task.Payload.UserEmail).
		Str("room", task.Payload.RoomName).
		Str("date", task.Payload.Date).
		Msg("booking cancellation notification")
	return nil
}
