package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"roombook/internal/models"
)

const bookingColumns = `id, user_id, room_id, room_name, date, start_min, end_min,
                 total_hours, total_amount, status, payment_status, receipt_token,
                 created_at, updated_at`

func scanBooking(row interface{ Scan(...any) error }) (*models.Booking, error) {
	b := &models.Booking{}
	var dateStr string
	err := row.Scan(
		&b.ID, &b.UserID, &b.RoomID, &b.RoomName, &dateStr,
		&b.Interval.StartMin, &b.Interval.EndMin,
		&b.TotalHours, &b.TotalAmount, &b.Status, &b.PaymentStatus,
		&b.ReceiptToken, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	b.Date, err = time.Parse("2006-01-02", dateStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse booking date %s: %w", dateStr, err)
	}
	return b, nil
}

// FindConflict returns any confirmed booking for the room and date whose
// interval overlaps the candidate per the half-open rule. Pure read, no
// side effects.
func (db *DB) FindConflict(ctx context.Context, roomID int64, date time.Time, iv models.Interval) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + `
              FROM bookings
              WHERE room_id = ? AND date = ? AND status = ?
                AND start_min < ? AND ? < end_min
              ORDER BY start_min LIMIT 1`

	row := db.QueryRowContext(ctx, query, roomID, date.Format("2006-01-02"),
		models.StatusConfirmed, iv.EndMin, iv.StartMin)
	booking, err := scanBooking(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("find conflict", err)
	}
	return booking, nil
}

// CreateBookingWithLock inserts a booking under the (roomID, date) partition
// lock, re-running the conflict check inside the same transaction. The
// receipt token is written in the same transaction so a confirmed record is
// never observable without it.
func (db *DB) CreateBookingWithLock(ctx context.Context, booking *models.Booking, token func(bookingID int64) string) error {
	dateKey := booking.DateKey()
	release := db.locks.acquire(booking.RoomID, dateKey)
	defer release()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return storeErr("begin transaction", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// 1. Conflict check inside the transaction
	queryConflict := `SELECT COUNT(*) FROM bookings
                      WHERE room_id = ? AND date = ? AND status = ?
                        AND start_min < ? AND ? < end_min`
	var overlapping int
	err = tx.QueryRowContext(ctx, queryConflict, booking.RoomID, dateKey,
		models.StatusConfirmed, booking.Interval.EndMin, booking.Interval.StartMin).Scan(&overlapping)
	if err != nil {
		return storeErr("check conflict in tx", err)
	}
	if overlapping > 0 {
		return ErrSlotConflict
	}

	// 2. Insert booking
	queryInsert := `INSERT INTO bookings (
                user_id, room_id, room_name, date, start_min, end_min,
                total_hours, total_amount, status, payment_status, receipt_token,
                created_at, updated_at
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := tx.ExecContext(ctx, queryInsert,
		booking.UserID,
		booking.RoomID,
		booking.RoomName,
		dateKey,
		booking.Interval.StartMin,
		booking.Interval.EndMin,
		booking.TotalHours,
		booking.TotalAmount,
		models.StatusConfirmed,
		models.PaymentCompleted,
		"",
		now,
		now,
	)
	if err != nil {
		return storeErr("insert booking in tx", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return storeErr("get last insert id in tx", err)
	}

	// 3. Derive the receipt token from the final booking id and persist it
	// before commit. Set exactly once, immutable thereafter.
	receipt := token(id)
	if _, err := tx.ExecContext(ctx, `UPDATE bookings SET receipt_token = ? WHERE id = ?`, receipt, id); err != nil {
		return storeErr("set receipt token in tx", err)
	}

	if err := tx.Commit(); err != nil {
		return storeErr("commit booking", err)
	}

	booking.ID = id
	booking.Status = models.StatusConfirmed
	booking.PaymentStatus = models.PaymentCompleted
	booking.ReceiptToken = receipt
	booking.CreatedAt = now
	booking.UpdatedAt = now
	return nil
}

// GetBooking returns a booking by id.
func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	booking, err := scanBooking(db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("booking %d: %w", id, ErrBookingNotFound)
	}
	if err != nil {
		return nil, storeErr("get booking", err)
	}
	return booking, nil
}

// CancelBooking transitions confirmed -> cancelled with a single guarded
// update. Ownership is checked in the same statement; a foreign booking is
// indistinguishable from an absent one.
func (db *DB) CancelBooking(ctx context.Context, userID, bookingID int64) (*models.Booking, error) {
	query := `UPDATE bookings
              SET status = ?, payment_status = ?, updated_at = ?
              WHERE id = ? AND user_id = ? AND status = ?`
	result, err := db.ExecContext(ctx, query,
		models.StatusCancelled, models.PaymentRefunded, time.Now(),
		bookingID, userID, models.StatusConfirmed)
	if err != nil {
		return nil, storeErr("cancel booking", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return nil, db.resolveCancelFailure(ctx, userID, bookingID)
	}

	return db.GetBooking(ctx, bookingID)
}

// resolveCancelFailure distinguishes AlreadyCancelled from NotFound after a
// guarded update matched nothing.
func (db *DB) resolveCancelFailure(ctx context.Context, userID, bookingID int64) error {
	var ownerID int64
	var status string
	err := db.QueryRowContext(ctx, `SELECT user_id, status FROM bookings WHERE id = ?`, bookingID).
		Scan(&ownerID, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("booking %d: %w", bookingID, ErrBookingNotFound)
	}
	if err != nil {
		return storeErr("resolve cancel failure", err)
	}
	if ownerID != userID {
		// Do not leak existence to non-owners.
		return fmt.Errorf("booking %d: %w", bookingID, ErrBookingNotFound)
	}
	if status == models.StatusCancelled {
		return fmt.Errorf("booking %d: %w", bookingID, ErrAlreadyCancelled)
	}
	return fmt.Errorf("booking %d status %s: %w", bookingID, status, ErrBookingNotFound)
}

// GetUserBookings returns all bookings of a user, newest first.
func (db *DB) GetUserBookings(ctx context.Context, userID int64) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + `
              FROM bookings WHERE user_id = ?
              ORDER BY created_at DESC, id DESC`
	rows, err := db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, storeErr("get user bookings", err)
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, storeErr("scan booking", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("get user bookings", err)
	}
	return bookings, nil
}

// GetRoomDayBookings returns confirmed bookings for a room and date ordered
// by start time.
func (db *DB) GetRoomDayBookings(ctx context.Context, roomID int64, date time.Time) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + `
              FROM bookings
              WHERE room_id = ? AND date = ? AND status = ?
              ORDER BY start_min`
	rows, err := db.QueryContext(ctx, query, roomID, date.Format("2006-01-02"), models.StatusConfirmed)
	if err != nil {
		return nil, storeErr("get room day bookings", err)
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, storeErr("scan booking", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("get room day bookings", err)
	}
	return bookings, nil
}

// GetBookingsByDateRange returns bookings for export, any status, ordered by
// date and start time.
func (db *DB) GetBookingsByDateRange(ctx context.Context, startDate, endDate time.Time) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + `
              FROM bookings
              WHERE date >= ? AND date <= ?
              ORDER BY date, start_min`
	rows, err := db.QueryContext(ctx, query,
		startDate.Format("2006-01-02"), endDate.Format("2006-01-02"))
	if err != nil {
		return nil, storeErr("get bookings by date range", err)
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, storeErr("scan booking", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("get bookings by date range", err)
	}
	return bookings, nil
}
