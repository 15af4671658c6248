package config

import (
	"os"
	"path/filepath"
	"testing"

	"roombook/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
app:
  name: roombook
  environment: test

database:
  path: data/test.db

logging:
  level: debug
  format: json

api:
  port: 9999
  auth:
    enabled: true
    tokens:
      - token: secret-token
        name: alice
        user_id: 1
        permissions: ["bookings:read", "bookings:write"]

booking:
  open_time: "08:00"
  close_time: "20:00"

users:
  - id: 1
    name: Alice
    email: alice@example.com
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "roombook", cfg.App.Name)
	assert.Equal(t, "data/test.db", cfg.Database.Path)
	assert.Equal(t, 9999, cfg.API.Port)
	assert.Equal(t, "08:00", cfg.Booking.OpenTime)
	assert.Equal(t, "20:00", cfg.Booking.CloseTime)
	require.Len(t, cfg.API.Auth.Tokens, 1)
	assert.Equal(t, int64(1), cfg.API.Auth.Tokens[0].UserID)
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
database:
  path: data/test.db
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.API.Port)
	assert.Equal(t, models.DefaultOpenTime, cfg.Booking.OpenTime)
	assert.Equal(t, models.DefaultCloseTime, cfg.Booking.CloseTime)
	assert.Equal(t, models.DefaultStoreTimeout, cfg.Booking.StoreTimeoutMS)
	assert.Equal(t, float64(models.RateLimitRPS), cfg.API.RateLimit.RPS)
	assert.Equal(t, "exports", cfg.Exports.Path)
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("TEST_DB_PATH", "data/from-env.db")
	path := writeConfig(t, `
database:
  path: ${TEST_DB_PATH}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "data/from-env.db", cfg.Database.Path)
}

func TestValidateRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing database path", `
app:
  name: roombook
`},
		{"inverted window", `
database:
  path: data/test.db
booking:
  open_time: "21:00"
  close_time: "09:00"
`},
		{"token without user", `
database:
  path: data/test.db
api:
  auth:
    tokens:
      - token: abc
        name: nobody
`},
		{"duplicate token", `
database:
  path: data/test.db
api:
  auth:
    tokens:
      - token: abc
        name: one
        user_id: 1
      - token: abc
        name: two
        user_id: 2
`},
		{"duplicate user email", `
database:
  path: data/test.db
users:
  - name: A
    email: same@example.com
  - name: B
    email: same@example.com
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestValidateRooms(t *testing.T) {
	assert.NoError(t, ValidateRooms([]models.Room{
		{ID: 1, Name: "A", PricePerHour: 500},
		{ID: 2, Name: "B", PricePerHour: 0},
	}))

	assert.Error(t, ValidateRooms([]models.Room{{ID: 0, Name: "A"}}))
	assert.Error(t, ValidateRooms([]models.Room{
		{ID: 1, Name: "A"},
		{ID: 1, Name: "B"},
	}))
	assert.Error(t, ValidateRooms([]models.Room{{ID: 1, Name: "A", PricePerHour: -5}}))
}
