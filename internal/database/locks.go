package database

import (
	"fmt"
	"sync"
)

// partitionLocks serializes writes per (roomID, date) partition so that
// conflict-check-then-insert behaves as a single atomic unit. Bookings for
// different rooms or dates proceed in parallel.
type partitionLocks struct {
	mu    sync.Mutex
	locks map[string]*partitionLock
}

type partitionLock struct {
	mu   sync.Mutex
	refs int
}

func newPartitionLocks() *partitionLocks {
	return &partitionLocks{locks: make(map[string]*partitionLock)}
}

func partitionKey(roomID int64, dateKey string) string {
	return fmt.Sprintf("%d:%s", roomID, dateKey)
}

// acquire blocks until the partition is exclusively held and returns the
// release function. Entries are reference counted so the table does not
// grow without bound.
func (p *partitionLocks) acquire(roomID int64, dateKey string) func() {
	key := partitionKey(roomID, dateKey)

	p.mu.Lock()
	l, ok := p.locks[key]
	if !ok {
		l = &partitionLock{}
		p.locks[key] = l
	}
	l.refs++
	p.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()
		p.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(p.locks, key)
		}
		p.mu.Unlock()
	}
}
