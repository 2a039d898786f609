package domain

import "fmt"

// Capacity tracks total/reserved counters for a fungible (general-admission)
// inventory pool. It is an immutable value: operations return a new Capacity
// and never mutate the receiver, so the owning TicketType can be saved with
// compare-and-swap semantics. The caller must serialize concurrent
// reserve/release against the same pool (version-guarded save + retry).
//
// Invariant: 0 <= Reserved <= Total.
type Capacity struct {
	Total    int `json:"total"`
	Reserved int `json:"reserved"`
}

func NewCapacity(total int) (Capacity, error) {
	if total < 0 {
		return Capacity{}, fmt.Errorf("total %d: %w", total, ErrInvalidInput)
	}
	return Capacity{Total: total}, nil
}

func (c Capacity) Available() int {
	return c.Total - c.Reserved
}

// Reserve returns a new Capacity with qty more seats reserved.
func (c Capacity) Reserve(qty int) (Capacity, error) {
	if qty <= 0 {
		return c, fmt.Errorf("quantity %d: %w", qty, ErrInvalidInput)
	}
	if qty > c.Available() {
		return c, fmt.Errorf("requested %d, available %d: %w", qty, c.Available(), ErrCapacityExceeded)
	}
	return Capacity{Total: c.Total, Reserved: c.Reserved + qty}, nil
}

// Release returns a new Capacity with qty fewer seats reserved. Releasing
// more than is reserved clamps to zero instead of failing, so a double
// release cannot drive the counter negative.
func (c Capacity) Release(qty int) Capacity {
	if qty <= 0 {
		return c
	}
	reserved := c.Reserved - qty
	if reserved < 0 {
		reserved = 0
	}
	return Capacity{Total: c.Total, Reserved: reserved}
}

// AdjustTotal returns a new Capacity with the given total. Shrinking below
// the currently reserved count is rejected.
func (c Capacity) AdjustTotal(newTotal int) (Capacity, error) {
	if newTotal < 0 {
		return c, fmt.Errorf("total %d: %w", newTotal, ErrInvalidInput)
	}
	if newTotal < c.Reserved {
		return c, fmt.Errorf("total %d below reserved %d: %w", newTotal, c.Reserved, ErrCapacityExceeded)
	}
	return Capacity{Total: newTotal, Reserved: c.Reserved}, nil
}
