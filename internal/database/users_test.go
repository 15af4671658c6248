package database

import (
	"context"
	"testing"

	"roombook/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOrUpdateUser(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	user := &models.User{Name: "Alice", Email: "alice@example.com", Phone: "+1-555-0101"}
	require.NoError(t, db.CreateOrUpdateUser(ctx, user))
	assert.NotZero(t, user.ID)

	// Upsert by email keeps the id and refreshes the profile.
	update := &models.User{Name: "Alice Renamed", Email: "alice@example.com"}
	require.NoError(t, db.CreateOrUpdateUser(ctx, update))

	stored, err := db.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, stored.ID)
	assert.Equal(t, "Alice Renamed", stored.Name)
	// An update without a phone keeps the stored one.
	assert.Equal(t, "+1-555-0101", stored.Phone)

	// An update with a phone replaces it.
	require.NoError(t, db.CreateOrUpdateUser(ctx, &models.User{Name: "Alice Renamed", Email: "alice@example.com", Phone: "+1-555-0202"}))
	stored, err = db.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "+1-555-0202", stored.Phone)
}

func TestCreateOrUpdateUserSeededID(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	// Seeded directory entries keep their configured ids.
	user := &models.User{ID: 42, Name: "Ops Bot", Email: "ops@example.com"}
	require.NoError(t, db.CreateOrUpdateUser(ctx, user))

	stored, err := db.GetUserByID(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "Ops Bot", stored.Name)
	assert.Equal(t, "ops@example.com", stored.Email)
}

func TestGetUserNotFound(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_, err := db.GetUserByID(ctx, 404)
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = db.GetUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
