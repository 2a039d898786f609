// Package repository defines the persistence boundary of the reservation
// engine. The core produces next-states; implementations load, optimistically
// version and save them. Every Save* compares the aggregate's previous
// version against the stored row and fails with ErrVersionConflict on a
// mismatch, so callers retry the whole read-modify-write.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/resv-go/internal/domain"
)

type Venues interface {
	CreateVenue(ctx context.Context, v *domain.Venue) error
	GetVenue(ctx context.Context, id int64) (*domain.Venue, error)
}

type Events interface {
	CreateEvent(ctx context.Context, e *domain.Event) error
	GetEvent(ctx context.Context, id int64) (*domain.Event, error)
	SaveEvent(ctx context.Context, e *domain.Event, prevVersion int64) error
}

type TicketTypes interface {
	CreateTicketType(ctx context.Context, t *domain.TicketType) error
	GetTicketType(ctx context.Context, id int64) (*domain.TicketType, error)
	ListTicketTypes(ctx context.Context, eventID int64) ([]*domain.TicketType, error)
	SaveTicketType(ctx context.Context, t *domain.TicketType, prevVersion int64) error
}

type Seats interface {
	CreateSeats(ctx context.Context, seats []*domain.Seat) error
	GetSeat(ctx context.Context, id int64) (*domain.Seat, error)
	ListSeats(ctx context.Context, venueID int64, status domain.SeatStatus) ([]*domain.Seat, error)
	SaveSeat(ctx context.Context, s *domain.Seat, prevVersion int64) error
	// ListDueSeats returns held/reserved seats whose hold expiry has passed.
	ListDueSeats(ctx context.Context, now time.Time, limit int) ([]*domain.Seat, error)
	CountAvailableByTicketType(ctx context.Context, ticketTypeID int64) (int, error)
}

type Allocations interface {
	CreateAllocation(ctx context.Context, a *domain.Allocation) error
	GetAllocation(ctx context.Context, id int64) (*domain.Allocation, error)
	SaveAllocation(ctx context.Context, a *domain.Allocation, prevVersion int64) error
}

type Reservations interface {
	CreateReservation(ctx context.Context, r *domain.Reservation) error
	GetReservation(ctx context.Context, id uuid.UUID) (*domain.Reservation, error)
	SaveReservation(ctx context.Context, r *domain.Reservation, prevVersion int64) error
	// ListDueReservations returns active reservations past their expiry.
	ListDueReservations(ctx context.Context, now time.Time, limit int) ([]*domain.Reservation, error)
	CountActiveByBuyer(ctx context.Context, eventID, userID, ticketTypeID int64) (int, error)
}

// Store bundles the aggregate repositories behind one handle, the way the
// services consume them.
type Store interface {
	Venues
	Events
	TicketTypes
	Seats
	Allocations
	Reservations
}
