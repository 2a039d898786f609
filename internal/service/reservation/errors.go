package reservation

import "errors"

var (
	ErrEventNotFound       = errors.New("event not found")
	ErrEventNotPublished   = errors.New("event is not published")
	ErrTicketTypeNotFound  = errors.New("ticket type not found")
	ErrNotOnSale           = errors.New("ticket type is not on sale")
	ErrQuantityLimit       = errors.New("quantity outside purchase limits")
	ErrBuyerLimit          = errors.New("per-buyer limit reached")
	ErrSoldOut             = errors.New("not enough capacity")
	ErrSeatsUnavailable    = errors.New("some seats are unavailable")
	ErrAllocationDenied    = errors.New("allocation access denied")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrReservationExpired  = errors.New("reservation is expired")
	ErrNotActive           = errors.New("reservation is not active")
	ErrRateLimited         = errors.New("rate limited")
	ErrConflict            = errors.New("conflicting concurrent update")
)
