package database

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrSlotConflict: another confirmed booking overlaps the requested
	// interval on the same room and date.
	ErrSlotConflict = errors.New("slot already booked")

	ErrRoomNotFound    = errors.New("room not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrBookingNotFound = errors.New("booking not found")

	// ErrAlreadyCancelled: re-cancellation is rejected explicitly so callers
	// can detect double submission.
	ErrAlreadyCancelled = errors.New("booking already cancelled")

	// ErrStoreUnavailable: the store did not answer within the bounded
	// timeout. The only retryable error in the taxonomy.
	ErrStoreUnavailable = errors.New("booking store unavailable")
)

// storeErr wraps a low-level failure, surfacing deadline and cancellation
// as ErrStoreUnavailable.
func storeErr(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", op, ErrStoreUnavailable)
	}
	return fmt.Errorf("%s: %w", op, err)
}
