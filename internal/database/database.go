package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"roombook/internal/models"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

// DB is the booking store. It exclusively owns all booking records; rooms
// come from the catalog and are cached read-only in memory.
type DB struct {
	*sql.DB
	mu         sync.RWMutex
	roomsCache map[int64]*models.Room
	rooms      []*models.Room
	locks      *partitionLocks
	logger     *zerolog.Logger
}

func NewDB(path string, logger *zerolog.Logger) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	logger.Info().Str("path", path).Msg("database initialized")
	return &DB{
		DB:         db,
		roomsCache: make(map[int64]*models.Room),
		locks:      newPartitionLocks(),
		logger:     logger,
	}, nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            name TEXT NOT NULL,
            email TEXT UNIQUE NOT NULL,
            phone TEXT,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,
		`CREATE TABLE IF NOT EXISTS bookings (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            user_id INTEGER NOT NULL,
            room_id INTEGER NOT NULL,
            room_name TEXT NOT NULL,
            date TEXT NOT NULL,
            start_min INTEGER NOT NULL,
            end_min INTEGER NOT NULL,
            total_hours REAL NOT NULL,
            total_amount REAL NOT NULL,
            status TEXT NOT NULL DEFAULT 'confirmed',
            payment_status TEXT NOT NULL DEFAULT 'completed',
            receipt_token TEXT NOT NULL,
            created_at DATETIME NOT NULL,
            updated_at DATETIME NOT NULL
        )`,

		`CREATE INDEX IF NOT EXISTS idx_bookings_room_date_status ON bookings(room_id, date, status)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_user_id ON bookings(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_users_email ON users(email)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}
	return nil
}

// SetRooms replaces the cached room catalog.
func (db *DB) SetRooms(rooms []*models.Room) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.roomsCache = make(map[int64]*models.Room, len(rooms))
	for _, room := range rooms {
		db.roomsCache[room.ID] = room
	}
	db.rooms = rooms
}

// GetRoom resolves a room from the catalog cache.
func (db *DB) GetRoom(id int64) (*models.Room, error) {
	db.mu.RLock()
	room, ok := db.roomsCache[id]
	db.mu.RUnlock()
	if !ok || !room.IsActive {
		return nil, fmt.Errorf("room %d: %w", id, ErrRoomNotFound)
	}
	return room, nil
}

// GetRooms returns the active rooms in catalog order.
func (db *DB) GetRooms() []*models.Room {
	db.mu.RLock()
	defer db.mu.RUnlock()
	out := make([]*models.Room, 0, len(db.rooms))
	for _, room := range db.rooms {
		if room.IsActive {
			out = append(out, room)
		}
	}
	return out
}
