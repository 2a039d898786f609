// Package lock defines the distributed seat-lock contract the reservation
// engine requires: no two holders ever hold the same seat id concurrently.
package lock

import (
	"context"
	"time"
)

// SeatLocker provides cross-process mutual exclusion per seat with a TTL
// backstop. TryLockSeats is all-or-nothing: if any seat is already locked by
// a different holder, the whole batch fails and none are locked. The lock is
// released explicitly on confirm/cancel/expire; the TTL only covers crashed
// holders. Callers must sort seat ids before locking so independent batches
// cannot deadlock.
type SeatLocker interface {
	TryLockSeats(ctx context.Context, seatIDs []int64, holder string, ttl time.Duration) (bool, error)
	ReleaseSeatLocks(ctx context.Context, seatIDs []int64, holder string) error
}
