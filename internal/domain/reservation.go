package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type ReservationStatus string

const (
	ReservationActive    ReservationStatus = "active"
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationCancelled ReservationStatus = "cancelled"
	ReservationExpired   ReservationStatus = "expired"
)

// ReservationItem is a line of a reservation: either a fungible quantity
// against a ticket type (SeatID nil, Quantity > 0) or one specific seat
// (SeatID set, Quantity == 1).
type ReservationItem struct {
	TicketTypeID int64  `json:"ticket_type_id"`
	SeatID       *int64 `json:"seat_id,omitempty"`
	AllocationID *int64 `json:"allocation_id,omitempty"`
	UnitPrice    Money  `json:"unit_price_cents"`
	Quantity     int    `json:"quantity"`
}

func (i ReservationItem) seatKey() int64 {
	if i.SeatID == nil {
		return 0
	}
	return *i.SeatID
}

// Reservation is the aggregate root of a time-bounded hold. It owns its
// items but not the seats or capacity they reference; those shared counters
// are adjusted by the orchestrating service under the locking discipline.
type Reservation struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
	Version   int64

	EventID int64
	UserID  int64
	Number  string

	Status    ReservationStatus
	ExpiresAt time.Time
	Items     []ReservationItem

	Subtotal     Money
	Discount     Money
	Total        Money
	DiscountCode string

	ConfirmedAt  *time.Time
	CancelledAt  *time.Time
	CancelReason string
}

func NewReservation(eventID, userID int64, number string, expiresAt, now time.Time) (*Reservation, error) {
	if eventID <= 0 || userID <= 0 {
		return nil, fmt.Errorf("reservation for event %d user %d: %w", eventID, userID, ErrInvalidInput)
	}
	if !expiresAt.After(now) {
		return nil, fmt.Errorf("reservation expiry %v not in the future: %w", expiresAt, ErrInvalidInput)
	}
	return &Reservation{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
		Version:   1,
		EventID:   eventID,
		UserID:    userID,
		Number:    number,
		Status:    ReservationActive,
		ExpiresAt: expiresAt,
	}, nil
}

func (r *Reservation) touch(now time.Time) {
	r.Version++
	r.UpdatedAt = now
}

func (r *Reservation) IsExpired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

// TimeRemaining is zero once the reservation has passed its expiry.
func (r *Reservation) TimeRemaining(now time.Time) time.Duration {
	if r.IsExpired(now) {
		return 0
	}
	return r.ExpiresAt.Sub(now)
}

func (r *Reservation) mutable(now time.Time) error {
	if r.Status != ReservationActive {
		return fmt.Errorf("reservation %s is %s: %w", r.Number, r.Status, ErrInvalidStateTransition)
	}
	if r.IsExpired(now) {
		return fmt.Errorf("reservation %s: %w", r.Number, ErrExpired)
	}
	return nil
}

// AddItem appends a line while the reservation is active and unexpired. An
// item with the same (ticket type, seat) key merges by summing quantity.
// Seat items must reference a resolved seat and carry quantity 1;
// zero-quantity items without a seat are rejected outright.
func (r *Reservation) AddItem(ticketTypeID int64, seatID *int64, unitPrice Money, qty int, now time.Time) error {
	if err := r.mutable(now); err != nil {
		return err
	}
	if ticketTypeID <= 0 || unitPrice < 0 {
		return fmt.Errorf("item for ticket type %d: %w", ticketTypeID, ErrInvalidInput)
	}
	if seatID != nil {
		if *seatID <= 0 {
			return fmt.Errorf("item seat id %d: %w", *seatID, ErrInvalidInput)
		}
		if qty != 1 {
			return fmt.Errorf("seat item quantity %d: %w", qty, ErrInvalidInput)
		}
	} else if qty <= 0 {
		return fmt.Errorf("item quantity %d: %w", qty, ErrInvalidInput)
	}

	for i := range r.Items {
		it := &r.Items[i]
		if it.TicketTypeID != ticketTypeID || it.seatKey() != keyOf(seatID) {
			continue
		}
		if seatID != nil {
			// the same seat cannot be added twice
			return fmt.Errorf("seat %d already in reservation %s: %w", *seatID, r.Number, ErrInvalidInput)
		}
		it.Quantity += qty
		it.UnitPrice = unitPrice
		r.recompute()
		r.touch(now)
		return nil
	}

	r.Items = append(r.Items, ReservationItem{
		TicketTypeID: ticketTypeID,
		SeatID:       seatID,
		UnitPrice:    unitPrice,
		Quantity:     qty,
	})
	r.recompute()
	r.touch(now)
	return nil
}

// RemoveItem drops the line with the given key. Removing a missing item is a
// no-op.
func (r *Reservation) RemoveItem(ticketTypeID int64, seatID *int64, now time.Time) error {
	if err := r.mutable(now); err != nil {
		return err
	}
	for i := range r.Items {
		if r.Items[i].TicketTypeID == ticketTypeID && r.Items[i].seatKey() == keyOf(seatID) {
			r.Items = append(r.Items[:i], r.Items[i+1:]...)
			r.recompute()
			r.touch(now)
			return nil
		}
	}
	return nil
}

// ApplyPricing stores externally computed amounts. The discount is supplied
// by the pricing collaborator; the aggregate never derives it.
func (r *Reservation) ApplyPricing(subtotal, discount, total Money, code string, now time.Time) error {
	if err := r.mutable(now); err != nil {
		return err
	}
	if subtotal < 0 || discount < 0 || total < 0 {
		return fmt.Errorf("pricing %d/%d/%d: %w", subtotal, discount, total, ErrInvalidInput)
	}
	r.Subtotal = subtotal
	r.Discount = discount
	r.Total = total
	r.DiscountCode = code
	r.touch(now)
	return nil
}

// recompute refreshes the derived amounts after an item change. A later
// ApplyPricing overwrites them with the priced figures.
func (r *Reservation) recompute() {
	r.Subtotal = r.SubtotalAmount()
	if r.Discount > r.Subtotal {
		r.Discount = r.Subtotal
	}
	r.Total = r.Subtotal - r.Discount
}

// SubtotalAmount derives sum(unitPrice*qty) from the items.
func (r *Reservation) SubtotalAmount() Money {
	var sum Money
	for _, it := range r.Items {
		sum += it.UnitPrice.Mul(it.Quantity)
	}
	return sum
}

// SeatIDs lists the specific seats referenced by the items, in item order.
func (r *Reservation) SeatIDs() []int64 {
	var ids []int64
	for _, it := range r.Items {
		if it.SeatID != nil {
			ids = append(ids, *it.SeatID)
		}
	}
	return ids
}

// GeneralAdmissionQuantities sums fungible quantities per ticket type.
func (r *Reservation) GeneralAdmissionQuantities() map[int64]int {
	out := make(map[int64]int)
	for _, it := range r.Items {
		if it.SeatID == nil {
			out[it.TicketTypeID] += it.Quantity
		}
	}
	return out
}

// Confirm finalizes the reservation. The caller must already have confirmed
// every seat the items reference: reserve/hold first, confirm seats, then
// confirm the reservation, never the reverse.
func (r *Reservation) Confirm(now time.Time) ([]InventoryEvent, error) {
	if r.Status != ReservationActive {
		return nil, fmt.Errorf("confirm reservation %s in status %s: %w", r.Number, r.Status, ErrInvalidStateTransition)
	}
	if r.IsExpired(now) {
		return nil, fmt.Errorf("confirm reservation %s: %w", r.Number, ErrExpired)
	}
	if len(r.Items) == 0 {
		return nil, fmt.Errorf("confirm empty reservation %s: %w", r.Number, ErrInvalidInput)
	}
	for _, it := range r.Items {
		if it.SeatID != nil && *it.SeatID <= 0 {
			return nil, fmt.Errorf("reservation %s has unresolved seat item: %w", r.Number, ErrInvalidInput)
		}
	}
	r.Status = ReservationConfirmed
	t := now
	r.ConfirmedAt = &t
	r.touch(now)
	return []InventoryEvent{{
		Kind:          EventReservationConfirmed,
		EventID:       r.EventID,
		ReservationID: r.ID,
		SeatIDs:       r.SeatIDs(),
		At:            now,
	}}, nil
}

// Cancel terminates the reservation. Cancelling twice is an idempotent
// no-op; cancelling a completed sale fails. Releasing the held capacity and
// seats is the caller's job, using SeatIDs and the quantity map.
func (r *Reservation) Cancel(reason string, now time.Time) ([]InventoryEvent, error) {
	switch r.Status {
	case ReservationCancelled:
		return nil, nil
	case ReservationConfirmed:
		return nil, fmt.Errorf("cancel confirmed reservation %s: %w", r.Number, ErrInvalidStateTransition)
	case ReservationExpired:
		return nil, fmt.Errorf("cancel expired reservation %s: %w", r.Number, ErrInvalidStateTransition)
	}
	r.Status = ReservationCancelled
	t := now
	r.CancelledAt = &t
	r.CancelReason = reason
	r.touch(now)
	return []InventoryEvent{{
		Kind:          EventReservationCanceled,
		EventID:       r.EventID,
		ReservationID: r.ID,
		SeatIDs:       r.SeatIDs(),
		At:            now,
	}}, nil
}

// Expire transitions an active reservation to expired. Anything else is a
// no-op, which keeps the sweep idempotent across instances.
func (r *Reservation) Expire(now time.Time) ([]InventoryEvent, bool) {
	if r.Status != ReservationActive {
		return nil, false
	}
	r.Status = ReservationExpired
	r.touch(now)
	return []InventoryEvent{{
		Kind:          EventReservationExpired,
		EventID:       r.EventID,
		ReservationID: r.ID,
		SeatIDs:       r.SeatIDs(),
		At:            now,
	}}, true
}

func keyOf(seatID *int64) int64 {
	if seatID == nil {
		return 0
	}
	return *seatID
}
