package service

import (
	"context"
	"errors"
	"time"

	"roombook/internal/database"
	"roombook/internal/domain"
	"roombook/internal/events"
	"roombook/internal/metrics"
	"roombook/internal/models"
	"roombook/internal/receipt"

	"github.com/rs/zerolog"
)

// BookingService orchestrates the booking lifecycle: validation, conflict
// gating, pricing, receipt issuance and best-effort notification.
type BookingService struct {
	store        domain.BookingStore
	catalog      domain.RoomCatalog
	directory    domain.UserDirectory
	eventBus     domain.EventPublisher
	notifier     domain.Notifier
	window       models.Window
	storeTimeout time.Duration
	logger       *zerolog.Logger
}

func NewBookingService(
	store domain.BookingStore,
	catalog domain.RoomCatalog,
	directory domain.UserDirectory,
	eventBus domain.EventPublisher,
	notifier domain.Notifier,
	window models.Window,
	storeTimeout time.Duration,
	logger *zerolog.Logger,
) *BookingService {
	if storeTimeout <= 0 {
		storeTimeout = time.Duration(models.DefaultStoreTimeout) * time.Millisecond
	}
	return &BookingService{
		store:        store,
		catalog:      catalog,
		directory:    directory,
		eventBus:     eventBus,
		notifier:     notifier,
		window:       window,
		storeTimeout: storeTimeout,
		logger:       logger,
	}
}

// Window returns the configured operating window.
func (s *BookingService) Window() models.Window {
	return s.window
}

// CreateBooking confirms a slot for the user or fails with one of the
// deterministic taxonomy errors. The conflict check and insert run as one
// atomic unit per (room, date) partition; the notification is emitted after
// the partition lock is released.
func (s *BookingService) CreateBooking(ctx context.Context, userID, roomID int64, date time.Time, start, end string) (*models.Booking, error) {
	iv, err := models.NewInterval(start, end, s.window)
	if err != nil {
		return nil, err
	}

	room, err := s.catalog.GetRoom(roomID)
	if err != nil {
		return nil, err
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	user, err := s.directory.GetUserByID(storeCtx, userID)
	if err != nil {
		return nil, err
	}

	hours, err := iv.Hours()
	if err != nil {
		return nil, err
	}

	booking := &models.Booking{
		UserID:      userID,
		UserName:    user.Name,
		RoomID:      room.ID,
		RoomName:    room.Name,
		Date:        date,
		Interval:    iv,
		TotalHours:  hours,
		TotalAmount: room.PricePerHour * hours,
	}

	err = s.store.CreateBookingWithLock(storeCtx, booking, func(bookingID int64) string {
		return receipt.Generate(bookingID, room.Name, date, iv, user.Email)
	})
	if err != nil {
		if errors.Is(err, database.ErrSlotConflict) {
			metrics.BookingConflict()
		}
		return nil, err
	}

	metrics.BookingCreated()
	s.logger.Info().Int64("booking_id", booking.ID).Int64("room_id", room.ID).
		Str("date", booking.DateKey()).Str("slot", iv.String()).
		Msg("booking confirmed")

	// Fire-and-forget: delivery failures never roll back the booking.
	payload := eventPayload(booking, user)
	s.publishEvent(events.EventBookingConfirmed, payload)
	s.notifier.Enqueue(ctx, events.NewNotificationTask(events.EventBookingConfirmed, payload))

	return booking, nil
}

// CancelBooking transitions the booking to cancelled and frees its slot.
// Only the owner may cancel; a foreign booking reads as absent.
func (s *BookingService) CancelBooking(ctx context.Context, userID, bookingID int64) (*models.Booking, error) {
	storeCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	booking, err := s.store.CancelBooking(storeCtx, userID, bookingID)
	if err != nil {
		return nil, err
	}

	metrics.BookingCancelled()
	s.logger.Info().Int64("booking_id", booking.ID).Int64("user_id", userID).
		Msg("booking cancelled")

	var payload events.BookingEventPayload
	if user, err := s.directory.GetUserByID(storeCtx, userID); err == nil {
		payload = eventPayload(booking, user)
	} else {
		payload = eventPayload(booking, &models.User{ID: userID})
	}
	s.publishEvent(events.EventBookingCancelled, payload)
	s.notifier.Enqueue(ctx, events.NewNotificationTask(events.EventBookingCancelled, payload))

	return booking, nil
}

// ListMyBookings returns the user's bookings, newest first.
func (s *BookingService) ListMyBookings(ctx context.Context, userID int64) ([]*models.Booking, error) {
	storeCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	return s.store.GetUserBookings(storeCtx, userID)
}

// GetRoomAvailability returns the free intervals of the operating window
// for a room and date, derived from its confirmed bookings.
func (s *BookingService) GetRoomAvailability(ctx context.Context, roomID int64, date time.Time) ([]models.Interval, error) {
	if _, err := s.catalog.GetRoom(roomID); err != nil {
		return nil, err
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	booked, err := s.store.GetRoomDayBookings(storeCtx, roomID, date)
	if err != nil {
		return nil, err
	}

	free := make([]models.Interval, 0, len(booked)+1)
	cursor := s.window.OpenMin
	for _, b := range booked {
		if b.Interval.StartMin > cursor {
			free = append(free, models.Interval{StartMin: cursor, EndMin: b.Interval.StartMin})
		}
		if b.Interval.EndMin > cursor {
			cursor = b.Interval.EndMin
		}
	}
	if cursor < s.window.CloseMin {
		free = append(free, models.Interval{StartMin: cursor, EndMin: s.window.CloseMin})
	}
	return free, nil
}

// GetBookingsByDateRange feeds the export endpoint.
func (s *BookingService) GetBookingsByDateRange(ctx context.Context, start, end time.Time) ([]*models.Booking, error) {
	storeCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	return s.store.GetBookingsByDateRange(storeCtx, start, end)
}

func eventPayload(b *models.Booking, user *models.User) events.BookingEventPayload {
	return events.BookingEventPayload{
		BookingID:    b.ID,
		UserID:       b.UserID,
		UserName:     user.Name,
		UserEmail:    user.Email,
		RoomID:       b.RoomID,
		RoomName:     b.RoomName,
		Date:         b.DateKey(),
		Start:        b.Interval.Start(),
		End:          b.Interval.End(),
		Status:       b.Status,
		TotalAmount:  b.TotalAmount,
		ReceiptToken: b.ReceiptToken,
	}
}

func (s *BookingService) publishEvent(eventType string, payload events.BookingEventPayload) {
	if s.eventBus == nil {
		return
	}
	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("booking_id", payload.BookingID).Msg("publish event error")
	}
}
