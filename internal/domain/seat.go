package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type SeatStatus string

const (
	SeatAvailable SeatStatus = "available"
	SeatHeld      SeatStatus = "held"
	SeatReserved  SeatStatus = "reserved"
	SeatConfirmed SeatStatus = "confirmed"
	SeatBlocked   SeatStatus = "blocked"
)

// SeatPosition locates a seat within a venue. No two seats in a venue share
// the same position; the repository enforces uniqueness on save.
type SeatPosition struct {
	Section string `json:"section"`
	Row     string `json:"row"`
	Number  int    `json:"number"`
}

func (p SeatPosition) String() string {
	return fmt.Sprintf("%s/%s/%d", p.Section, p.Row, p.Number)
}

// Seat is one individually addressable unit of reserved-seating inventory.
//
// available -> held -> reserved -> confirmed
// available <-> blocked
// held|reserved -> available (release or expiry)
//
// Transitions on seats shared across processes must be applied while holding
// the distributed seat lock; Version guards the save either way.
type Seat struct {
	Entity
	VenueID        int64
	Position       SeatPosition
	Status         SeatStatus
	HolderID       uuid.UUID // reservation currently holding the seat, Nil when none
	HeldUntil      *time.Time
	TicketTypeID   *int64 // ticket type this seat is allocated to, nil when unallocated
	Accessible     bool
	RestrictedView bool
	PriceCategory  string
}

func NewSeat(venueID int64, pos SeatPosition, now time.Time) (*Seat, error) {
	if venueID <= 0 || pos.Section == "" || pos.Row == "" || pos.Number <= 0 {
		return nil, fmt.Errorf("seat %d %s: %w", venueID, pos, ErrInvalidInput)
	}
	return &Seat{
		Entity:   Entity{CreatedAt: now, UpdatedAt: now, Version: 1},
		VenueID:  venueID,
		Position: pos,
		Status:   SeatAvailable,
	}, nil
}

// Hold places a temporary claim on an available seat.
func (s *Seat) Hold(reservationID uuid.UUID, until, now time.Time) error {
	if reservationID == uuid.Nil {
		return fmt.Errorf("hold seat %d: empty reservation: %w", s.ID, ErrInvalidInput)
	}
	if !until.After(now) {
		return fmt.Errorf("hold seat %d: expiry not in the future: %w", s.ID, ErrInvalidInput)
	}
	if s.Status != SeatAvailable {
		return fmt.Errorf("hold seat %d in status %s: %w", s.ID, s.Status, ErrSeatNotAvailable)
	}
	s.Status = SeatHeld
	s.HolderID = reservationID
	s.HeldUntil = &until
	s.Touch(now)
	return nil
}

// Reserve promotes an available seat, or a seat held by the same
// reservation, to reserved. A seat held by a different reservation fails.
func (s *Seat) Reserve(reservationID uuid.UUID, until, now time.Time) error {
	if reservationID == uuid.Nil {
		return fmt.Errorf("reserve seat %d: empty reservation: %w", s.ID, ErrInvalidInput)
	}
	if !until.After(now) {
		return fmt.Errorf("reserve seat %d: expiry not in the future: %w", s.ID, ErrInvalidInput)
	}
	switch s.Status {
	case SeatAvailable:
	case SeatHeld:
		if s.HolderID != reservationID {
			return fmt.Errorf("seat %d held by another reservation: %w", s.ID, ErrSeatNotAvailable)
		}
	default:
		return fmt.Errorf("reserve seat %d in status %s: %w", s.ID, s.Status, ErrSeatNotAvailable)
	}
	s.Status = SeatReserved
	s.HolderID = reservationID
	s.HeldUntil = &until
	s.Touch(now)
	return nil
}

// Confirm finalizes the sale of a reserved seat for its holder.
func (s *Seat) Confirm(reservationID uuid.UUID, now time.Time) error {
	if s.Status != SeatReserved {
		return fmt.Errorf("confirm seat %d in status %s: %w", s.ID, s.Status, ErrInvalidStateTransition)
	}
	if s.HolderID != reservationID {
		return fmt.Errorf("seat %d reserved by another reservation: %w", s.ID, ErrInvalidStateTransition)
	}
	s.Status = SeatConfirmed
	s.HeldUntil = nil
	s.Touch(now)
	return nil
}

// Unconfirm rolls a just-confirmed seat back to reserved for the same
// holder, restoring the hold expiry. A multi-seat confirmation that fails
// partway uses this so the earlier seats stay reclaimable by cancel or the
// expiration sweep.
func (s *Seat) Unconfirm(reservationID uuid.UUID, until, now time.Time) error {
	if s.Status != SeatConfirmed {
		return fmt.Errorf("unconfirm seat %d in status %s: %w", s.ID, s.Status, ErrInvalidStateTransition)
	}
	if s.HolderID != reservationID {
		return fmt.Errorf("seat %d confirmed by another reservation: %w", s.ID, ErrInvalidStateTransition)
	}
	s.Status = SeatReserved
	s.HeldUntil = &until
	s.Touch(now)
	return nil
}

// Release returns the seat to the pool, clearing holder, expiry and
// allocation. It reports whether anything changed: releasing an available or
// blocked seat is a no-op.
func (s *Seat) Release(now time.Time) bool {
	if s.Status == SeatAvailable || s.Status == SeatBlocked {
		return false
	}
	s.Status = SeatAvailable
	s.HolderID = uuid.Nil
	s.HeldUntil = nil
	s.TicketTypeID = nil
	s.Touch(now)
	return true
}

// Block takes the seat out of sale. Confirmed seats cannot be blocked.
func (s *Seat) Block(now time.Time) error {
	if s.Status == SeatConfirmed {
		return fmt.Errorf("block confirmed seat %d: %w", s.ID, ErrInvalidStateTransition)
	}
	if s.Status == SeatBlocked {
		return nil
	}
	s.Status = SeatBlocked
	s.HolderID = uuid.Nil
	s.HeldUntil = nil
	s.Touch(now)
	return nil
}

func (s *Seat) Unblock(now time.Time) error {
	if s.Status != SeatBlocked {
		return fmt.Errorf("unblock seat %d in status %s: %w", s.ID, s.Status, ErrInvalidStateTransition)
	}
	s.Status = SeatAvailable
	s.Touch(now)
	return nil
}

// ExpireIfPast releases a held or reserved seat whose hold expiry has
// passed. HeldUntil is advisory: the sweep calls this, and the release still
// goes through the regular transition so the version bumps.
func (s *Seat) ExpireIfPast(now time.Time) bool {
	if s.Status != SeatHeld && s.Status != SeatReserved {
		return false
	}
	if s.HeldUntil == nil || s.HeldUntil.After(now) {
		return false
	}
	return s.Release(now)
}

// HeldBy reports whether the seat is currently claimed by the reservation.
func (s *Seat) HeldBy(reservationID uuid.UUID) bool {
	return (s.Status == SeatHeld || s.Status == SeatReserved) && s.HolderID == reservationID
}
