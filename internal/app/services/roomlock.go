package services

import (
	"sync"

	domainrooms "rentsync/internal/domain/rooms"
)

// roomLocks serializes calendar writes per room. Conflict checks and ledger
// swaps are check-then-write sequences; the per-room lock makes each one
// atomic with respect to other writers of the same room while leaving other
// rooms untouched.
type roomLocks struct {
	mu    sync.Mutex
	locks map[domainrooms.RoomID]*sync.Mutex
}

func newRoomLocks() *roomLocks {
	return &roomLocks{locks: make(map[domainrooms.RoomID]*sync.Mutex)}
}

func (l *roomLocks) lock(roomID domainrooms.RoomID) (unlock func()) {
	l.mu.Lock()
	m, ok := l.locks[roomID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[roomID] = m
	}
	l.mu.Unlock()
	m.Lock()
	return m.Unlock
}
