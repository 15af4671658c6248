package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"roombook/internal/models"
)

// CreateOrUpdateUser upserts a directory entry keyed by email.
func (db *DB) CreateOrUpdateUser(ctx context.Context, user *models.User) error {
	// NULLIF on id lets sqlite autoincrement when no explicit id is given,
	// while seeded directory entries keep their configured ids. NULLIF on
	// phone turns an empty string into NULL so an update without a phone
	// does not wipe a stored one.
	query := `
        INSERT INTO users (id, name, email, phone, created_at, updated_at)
        VALUES (NULLIF(?, 0), ?, ?, NULLIF(?, ''), ?, ?)
        ON CONFLICT(email) DO UPDATE SET
            name = excluded.name,
            phone = COALESCE(excluded.phone, phone),
            updated_at = excluded.updated_at
    `
	now := time.Now()
	result, err := db.ExecContext(ctx, query, user.ID, user.Name, user.Email, user.Phone, now, now)
	if err != nil {
		return storeErr("create or update user", err)
	}

	if user.ID == 0 {
		if id, err := result.LastInsertId(); err == nil {
			user.ID = id
		}
	}
	return nil
}

// GetUserByID resolves a user from the directory.
func (db *DB) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT id, name, email, phone, created_at, updated_at FROM users WHERE id = ?`

	var user models.User
	var phone sql.NullString
	err := db.QueryRowContext(ctx, query, id).Scan(
		&user.ID, &user.Name, &user.Email, &phone, &user.CreatedAt, &user.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %d: %w", id, ErrUserNotFound)
	}
	if err != nil {
		return nil, storeErr("get user", err)
	}
	user.Phone = phone.String
	return &user, nil
}

// GetUserByEmail resolves a user by email.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT id, name, email, phone, created_at, updated_at FROM users WHERE email = ?`

	var user models.User
	var phone sql.NullString
	err := db.QueryRowContext(ctx, query, email).Scan(
		&user.ID, &user.Name, &user.Email, &phone, &user.CreatedAt, &user.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", email, ErrUserNotFound)
	}
	if err != nil {
		return nil, storeErr("get user by email", err)
	}
	user.Phone = phone.String
	return &user, nil
}
