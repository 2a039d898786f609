package lock

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	holder  string
	expires time.Time
}

// MemoryLocker is an in-process SeatLocker with the same contract as the
// redis implementation. It backs single-node deployments and the engine's
// tests.
type MemoryLocker struct {
	mu    sync.Mutex
	locks map[int64]entry
	now   func() time.Time
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{
		locks: make(map[int64]entry),
		now:   time.Now,
	}
}

// WithNow overrides the time source, for TTL tests.
func (l *MemoryLocker) WithNow(now func() time.Time) *MemoryLocker {
	l.now = now
	return l
}

func (l *MemoryLocker) TryLockSeats(_ context.Context, seatIDs []int64, holder string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for _, id := range seatIDs {
		if e, ok := l.locks[id]; ok && e.holder != holder && e.expires.After(now) {
			return false, nil
		}
	}
	expires := now.Add(ttl)
	for _, id := range seatIDs {
		l.locks[id] = entry{holder: holder, expires: expires}
	}
	return true, nil
}

func (l *MemoryLocker) ReleaseSeatLocks(_ context.Context, seatIDs []int64, holder string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, id := range seatIDs {
		if e, ok := l.locks[id]; ok && e.holder == holder {
			delete(l.locks, id)
		}
	}
	return nil
}

// Held reports the current holder of a seat lock, if any.
func (l *MemoryLocker) Held(seatID int64) (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.locks[seatID]
	if !ok || !e.expires.After(l.now()) {
		return "", false
	}
	return e.holder, true
}
