package domain

import (
	"time"

	"github.com/google/uuid"
)

type EventKind string

const (
	EventCapacityReserved     EventKind = "capacity_reserved"
	EventCapacityReleased     EventKind = "capacity_released"
	EventSeatsHeld            EventKind = "seats_held"
	EventSeatsReleased        EventKind = "seats_released"
	EventReservationCreated   EventKind = "reservation_created"
	EventReservationConfirmed EventKind = "reservation_confirmed"
	EventReservationCanceled  EventKind = "reservation_cancelled"
	EventReservationExpired   EventKind = "reservation_expired"
)

// InventoryEvent is a tagged record of a capacity-changing transition.
// Operations return these alongside the new aggregate state instead of
// buffering them on the aggregate; the orchestrating service dispatches them
// (cache invalidation, pubsub) after the save commits.
type InventoryEvent struct {
	Kind          EventKind
	EventID       int64
	TicketTypeID  int64
	ReservationID uuid.UUID
	SeatIDs       []int64
	Quantity      int
	At            time.Time
}
