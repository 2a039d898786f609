package domain

import "time"

// Entity carries the identity, audit and optimistic-concurrency fields shared
// by the persisted aggregates. Repositories reject a save whose Version does
// not match the stored row.
type Entity struct {
	ID        int64
	CreatedAt time.Time
	UpdatedAt time.Time
	Version   int64
}

// Touch bumps the version and update timestamp. Every successful state
// transition must call it exactly once.
func (e *Entity) Touch(now time.Time) {
	e.Version++
	e.UpdatedAt = now
}
