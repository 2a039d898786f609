package query

import (
	"errors"
)

var (
	ErrEventNotFound      = errors.New("event not found")
	ErrTicketTypeNotFound = errors.New("ticket type not found")
	ErrVenueNotFound      = errors.New("venue not found")
)
