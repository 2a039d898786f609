package domain

import (
	"fmt"
	"strings"
	"time"
)

// Allocation is a named carve-out of an event's inventory for a restricted
// purpose (VIP, press, staff). It is a claim over capacity already carved out
// elsewhere and never double-counts against TicketType.Capacity.
//
// Invariants: AllocatedQuantity() <= TotalQuantity and
// UsedQuantity <= AllocatedQuantity(); SeatIDs keeps insertion order so a
// shrink deterministically releases the oldest-added seats first.
type Allocation struct {
	Entity
	EventID       int64
	TicketTypeID  *int64
	Name          string
	TotalQuantity int
	UsedQuantity  int
	SeatIDs       []int64 // append order, de-duplicated

	AccessCode     string
	AllowedUserIDs []int64
	AllowedDomains []string

	AvailableFrom  *time.Time
	AvailableUntil *time.Time
	ExpiresAt      *time.Time
	Active         bool
}

func NewAllocation(eventID int64, name string, totalQuantity int, now time.Time) (*Allocation, error) {
	if eventID <= 0 || strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("allocation %q: %w", name, ErrInvalidInput)
	}
	if totalQuantity <= 0 {
		return nil, fmt.Errorf("allocation %q total %d: %w", name, totalQuantity, ErrInvalidInput)
	}
	return &Allocation{
		Entity:        Entity{CreatedAt: now, UpdatedAt: now, Version: 1},
		EventID:       eventID,
		Name:          name,
		TotalQuantity: totalQuantity,
		Active:        true,
	}, nil
}

// AllocatedQuantity is the number of seats currently carved into this
// allocation.
func (a *Allocation) AllocatedQuantity() int {
	return len(a.SeatIDs)
}

// AllocateSeats adds seats to the carve-out. Already-allocated ids are
// skipped; adding beyond TotalQuantity fails with nothing applied.
func (a *Allocation) AllocateSeats(seatIDs []int64, now time.Time) error {
	seen := make(map[int64]struct{}, len(a.SeatIDs))
	for _, id := range a.SeatIDs {
		seen[id] = struct{}{}
	}

	var fresh []int64
	for _, id := range seatIDs {
		if id <= 0 {
			return fmt.Errorf("allocation %q: seat id %d: %w", a.Name, id, ErrInvalidInput)
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		fresh = append(fresh, id)
	}
	if len(fresh) == 0 {
		return nil
	}
	if len(a.SeatIDs)+len(fresh) > a.TotalQuantity {
		return fmt.Errorf("allocation %q: %d seats over total %d: %w",
			a.Name, len(a.SeatIDs)+len(fresh), a.TotalQuantity, ErrCapacityExceeded)
	}
	a.SeatIDs = append(a.SeatIDs, fresh...)
	a.Touch(now)
	return nil
}

// UseQuantity consumes n units from the allocated pool.
func (a *Allocation) UseQuantity(n int, now time.Time) error {
	if n <= 0 {
		return fmt.Errorf("allocation %q: use %d: %w", a.Name, n, ErrInvalidInput)
	}
	limit := a.AllocatedQuantity()
	if limit == 0 {
		// quantity-backed allocation: the carve-out itself is the limit
		limit = a.TotalQuantity
	}
	if a.UsedQuantity+n > limit {
		return fmt.Errorf("allocation %q: use %d over %d: %w", a.Name, a.UsedQuantity+n, limit, ErrCapacityExceeded)
	}
	a.UsedQuantity += n
	a.Touch(now)
	return nil
}

// ReleaseUsedQuantity returns n units to the allocated pool, clamping at
// zero.
func (a *Allocation) ReleaseUsedQuantity(n int, now time.Time) {
	if n <= 0 {
		return
	}
	a.UsedQuantity -= n
	if a.UsedQuantity < 0 {
		a.UsedQuantity = 0
	}
	a.Touch(now)
}

// AdjustTotalQuantity resizes the carve-out. Shrinking below the currently
// allocated seat count releases the oldest-added excess seats and returns
// their ids so the caller can free them. Shrinking below UsedQuantity fails.
func (a *Allocation) AdjustTotalQuantity(newTotal int, now time.Time) ([]int64, error) {
	if newTotal <= 0 {
		return nil, fmt.Errorf("allocation %q: total %d: %w", a.Name, newTotal, ErrInvalidInput)
	}
	if newTotal < a.UsedQuantity {
		return nil, fmt.Errorf("allocation %q: total %d below used %d: %w", a.Name, newTotal, a.UsedQuantity, ErrCapacityExceeded)
	}

	var released []int64
	if excess := len(a.SeatIDs) - newTotal; excess > 0 {
		released = append(released, a.SeatIDs[:excess]...)
		a.SeatIDs = append([]int64(nil), a.SeatIDs[excess:]...)
	}
	a.TotalQuantity = newTotal
	a.Touch(now)
	return released, nil
}

// IsAvailableNow reports whether the allocation is active and inside its
// availability window.
func (a *Allocation) IsAvailableNow(now time.Time) bool {
	if !a.Active {
		return false
	}
	if a.AvailableFrom != nil && now.Before(*a.AvailableFrom) {
		return false
	}
	if a.AvailableUntil != nil && !now.Before(*a.AvailableUntil) {
		return false
	}
	if a.ExpiresAt != nil && !now.Before(*a.ExpiresAt) {
		return false
	}
	return true
}

// CanAccess gates a buyer against the allocation's access controls. Each
// configured check must pass; an allocation with no controls is open.
func (a *Allocation) CanAccess(code string, userID int64, email string) bool {
	if a.AccessCode != "" && !strings.EqualFold(a.AccessCode, code) {
		return false
	}
	if len(a.AllowedUserIDs) > 0 {
		found := false
		for _, id := range a.AllowedUserIDs {
			if id == userID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(a.AllowedDomains) > 0 {
		at := strings.LastIndex(email, "@")
		if at < 0 {
			return false
		}
		dom := email[at+1:]
		found := false
		for _, d := range a.AllowedDomains {
			if strings.EqualFold(d, dom) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (a *Allocation) Deactivate(now time.Time) {
	if !a.Active {
		return
	}
	a.Active = false
	a.Touch(now)
}
