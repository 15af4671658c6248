package database

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"roombook/internal/config"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPerformBackup(t *testing.T) {
	logger := zerolog.New(zerolog.NewConsoleWriter())
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "bookings.db")

	db, err := NewDB(dbPath, &logger)
	require.NoError(t, err)
	defer db.Close()

	date := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	booking := newBooking(1, date, "09:00", "11:00")
	require.NoError(t, db.CreateBookingWithLock(context.Background(), booking, testToken))

	backupDir := filepath.Join(dir, "backups")
	svc := NewBackupService(dbPath, config.BackupConfig{
		Enabled:     true,
		StoragePath: backupDir,
	}, &logger)

	require.NoError(t, svc.PerformBackup())

	entries, err := os.ReadDir(backupDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	// The copy is a usable database with the booking in it.
	copyDB, err := sql.Open("sqlite3", filepath.Join(backupDir, entries[0].Name()))
	require.NoError(t, err)
	defer copyDB.Close()

	var count int
	require.NoError(t, copyDB.QueryRow("SELECT COUNT(*) FROM bookings").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestCleanupOldBackups(t *testing.T) {
	logger := zerolog.New(zerolog.NewConsoleWriter())
	backupDir := t.TempDir()

	oldFile := filepath.Join(backupDir, "bookings_old.db")
	require.NoError(t, os.WriteFile(oldFile, []byte("stale"), 0o644))
	oldTime := time.Now().AddDate(0, 0, -30)
	require.NoError(t, os.Chtimes(oldFile, oldTime, oldTime))

	freshFile := filepath.Join(backupDir, "bookings_fresh.db")
	require.NoError(t, os.WriteFile(freshFile, []byte("fresh"), 0o644))

	svc := NewBackupService("unused.db", config.BackupConfig{
		Enabled:       true,
		StoragePath:   backupDir,
		RetentionDays: 14,
	}, &logger)

	svc.CleanupOldBackups()

	_, err := os.Stat(oldFile)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(freshFile)
	assert.NoError(t, err)
}
