package domain

import (
	"context"
	"time"

	"roombook/internal/events"
	"roombook/internal/models"
)

// BookingStore owns all booking records. No other component holds mutable
// references to them.
type BookingStore interface {
	FindConflict(ctx context.Context, roomID int64, date time.Time, iv models.Interval) (*models.Booking, error)
	CreateBookingWithLock(ctx context.Context, booking *models.Booking, token func(bookingID int64) string) error
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	CancelBooking(ctx context.Context, userID, bookingID int64) (*models.Booking, error)
	GetUserBookings(ctx context.Context, userID int64) ([]*models.Booking, error)
	GetRoomDayBookings(ctx context.Context, roomID int64, date time.Time) ([]*models.Booking, error)
	GetBookingsByDateRange(ctx context.Context, start, end time.Time) ([]*models.Booking, error)
}

// RoomCatalog is the external read-only room collaborator.
type RoomCatalog interface {
	GetRoom(id int64) (*models.Room, error)
	GetRooms() []*models.Room
}

// UserDirectory resolves authenticated user ids to profiles.
type UserDirectory interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// NotificationQueue buffers delivery tasks between the booking transaction
// and the notifier worker.
type NotificationQueue interface {
	Push(ctx context.Context, task *events.NotificationTask) error
	Pop(ctx context.Context) (*events.NotificationTask, error)
}

// NotificationSink is the external delivery collaborator (email in the
// reference system). Errors are logged, never propagated to bookings.
type NotificationSink interface {
	NotifyConfirmed(ctx context.Context, task *events.NotificationTask) error
	NotifyCancelled(ctx context.Context, task *events.NotificationTask) error
}

// Notifier schedules best-effort notification delivery.
type Notifier interface {
	Enqueue(ctx context.Context, task *events.NotificationTask)
}

type BookingService interface {
	CreateBooking(ctx context.Context, userID, roomID int64, date time.Time, start, end string) (*models.Booking, error)
	CancelBooking(ctx context.Context, userID, bookingID int64) (*models.Booking, error)
	ListMyBookings(ctx context.Context, userID int64) ([]*models.Booking, error)
	GetRoomAvailability(ctx context.Context, roomID int64, date time.Time) ([]models.Interval, error)
	GetBookingsByDateRange(ctx context.Context, start, end time.Time) ([]*models.Booking, error)
}

// Authenticator maps a bearer token to a verified user id. Pure lookup, no
// shared mutable state.
type Authenticator interface {
	Authenticate(token string) (int64, error)
}
