package domain

import (
	"fmt"
	"time"
)

type InventoryType string

const (
	GeneralAdmission InventoryType = "general_admission"
	ReservedSeating  InventoryType = "reserved_seating"
)

// TimeRange is a half-open [From, Until) interval.
type TimeRange struct {
	From  time.Time `json:"from"`
	Until time.Time `json:"until"`
}

func (r TimeRange) Contains(t time.Time) bool {
	return !t.Before(r.From) && t.Before(r.Until)
}

func (r TimeRange) Overlaps(other TimeRange) bool {
	return r.From.Before(other.Until) && other.From.Before(r.Until)
}

// TicketType is an inventory pool for an event. General-admission types own
// a Capacity counter pair; reserved-seating types derive availability from
// the seats allocated to them, which live outside this aggregate.
type TicketType struct {
	Entity
	EventID       int64
	Code          string // unique per event
	Name          string
	Price         Money
	Inventory     InventoryType
	Capacity      Capacity // general admission only
	OnSaleWindows []TimeRange
	MinPerOrder   int
	MaxPerOrder   int
	MaxPerBuyer   int
	Visible       bool
}

func NewTicketType(eventID int64, code, name string, inv InventoryType, total int, now time.Time) (*TicketType, error) {
	if eventID <= 0 || code == "" || name == "" {
		return nil, fmt.Errorf("ticket type %q: %w", code, ErrInvalidInput)
	}
	if inv != GeneralAdmission && inv != ReservedSeating {
		return nil, fmt.Errorf("inventory type %q: %w", inv, ErrInvalidInput)
	}
	cap := Capacity{}
	if inv == GeneralAdmission {
		var err error
		cap, err = NewCapacity(total)
		if err != nil {
			return nil, err
		}
	}
	return &TicketType{
		Entity:      Entity{CreatedAt: now, UpdatedAt: now, Version: 1},
		EventID:     eventID,
		Code:        code,
		Name:        name,
		Inventory:   inv,
		Capacity:    cap,
		MinPerOrder: 1,
		MaxPerOrder: 10,
		Visible:     true,
	}, nil
}

// IsOnSale reports whether the type is visible and the instant falls inside
// one of its on-sale windows. A type with no windows is never on sale.
func (t *TicketType) IsOnSale(now time.Time) bool {
	if !t.Visible {
		return false
	}
	for _, w := range t.OnSaleWindows {
		if w.Contains(now) {
			return true
		}
	}
	return false
}

// AddOnSaleWindow appends a window, rejecting intersections with existing
// ones.
func (t *TicketType) AddOnSaleWindow(r TimeRange, now time.Time) error {
	if !r.Until.After(r.From) {
		return fmt.Errorf("window %v..%v: %w", r.From, r.Until, ErrInvalidInput)
	}
	for _, w := range t.OnSaleWindows {
		if w.Overlaps(r) {
			return fmt.Errorf("window %v..%v intersects %v..%v: %w", r.From, r.Until, w.From, w.Until, ErrOverlappingWindow)
		}
	}
	t.OnSaleWindows = append(t.OnSaleWindows, r)
	t.Touch(now)
	return nil
}

// SetPurchaseLimits replaces the per-order and per-buyer quantity limits.
func (t *TicketType) SetPurchaseLimits(minPerOrder, maxPerOrder, maxPerBuyer int, now time.Time) error {
	if minPerOrder <= 0 || maxPerOrder < minPerOrder || maxPerBuyer < 0 {
		return fmt.Errorf("limits %d/%d/%d: %w", minPerOrder, maxPerOrder, maxPerBuyer, ErrInvalidInput)
	}
	t.MinPerOrder = minPerOrder
	t.MaxPerOrder = maxPerOrder
	t.MaxPerBuyer = maxPerBuyer
	t.Touch(now)
	return nil
}

// ValidateQuantity checks a requested quantity against the purchase limits.
func (t *TicketType) ValidateQuantity(qty int) error {
	if qty <= 0 {
		return fmt.Errorf("quantity %d: %w", qty, ErrInvalidInput)
	}
	if qty < t.MinPerOrder || qty > t.MaxPerOrder {
		return fmt.Errorf("quantity %d outside %d..%d: %w", qty, t.MinPerOrder, t.MaxPerOrder, ErrInvalidInput)
	}
	return nil
}

// ReserveCapacity consumes general-admission capacity. Nothing is partially
// applied: on error the ticket type is unchanged.
func (t *TicketType) ReserveCapacity(qty int, now time.Time) error {
	if t.Inventory != GeneralAdmission {
		return fmt.Errorf("ticket type %q is not general admission: %w", t.Code, ErrInvalidStateTransition)
	}
	next, err := t.Capacity.Reserve(qty)
	if err != nil {
		return fmt.Errorf("ticket type %q: %w", t.Code, err)
	}
	t.Capacity = next
	t.Touch(now)
	return nil
}

// ReleaseCapacity returns general-admission capacity to the pool.
func (t *TicketType) ReleaseCapacity(qty int, now time.Time) {
	if t.Inventory != GeneralAdmission || qty <= 0 {
		return
	}
	t.Capacity = t.Capacity.Release(qty)
	t.Touch(now)
}

// AdjustTotalCapacity resizes the general-admission pool.
func (t *TicketType) AdjustTotalCapacity(newTotal int, now time.Time) error {
	if t.Inventory != GeneralAdmission {
		return fmt.Errorf("ticket type %q is not general admission: %w", t.Code, ErrInvalidStateTransition)
	}
	next, err := t.Capacity.AdjustTotal(newTotal)
	if err != nil {
		return fmt.Errorf("ticket type %q: %w", t.Code, err)
	}
	t.Capacity = next
	t.Touch(now)
	return nil
}

// IsAvailable reports whether qty general-admission tickets can be bought
// right now: visible, on sale, inside purchase limits and enough capacity.
func (t *TicketType) IsAvailable(qty int, now time.Time) bool {
	if !t.IsOnSale(now) {
		return false
	}
	if err := t.ValidateQuantity(qty); err != nil {
		return false
	}
	if t.Inventory == GeneralAdmission && t.Capacity.Available() < qty {
		return false
	}
	return true
}
