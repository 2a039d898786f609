package inventory

import "errors"

var (
	ErrVenueNotFound      = errors.New("venue not found")
	ErrEventNotFound      = errors.New("event not found")
	ErrEventPublished     = errors.New("event is already published")
	ErrNoTicketTypes      = errors.New("event has no ticket types")
	ErrTicketTypeNotFound = errors.New("ticket type not found")
	ErrTicketTypeConflict = errors.New("ticket type code already exists")
	ErrSeatConflict       = errors.New("seat position already exists")
	ErrSeatNotFound       = errors.New("seat not found")
	ErrSeatNotAvailable   = errors.New("seat is not available")
	ErrAllocationNotFound = errors.New("allocation not found")
	ErrConflict           = errors.New("conflicting concurrent update")
)
