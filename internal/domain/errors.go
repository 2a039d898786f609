package domain

import "errors"

// Error kinds of the reservation engine. All of them are expected, routine
// outcomes that callers recover from at the call site; only infrastructure
// failures propagate as anything else.
var (
	ErrInvalidInput           = errors.New("invalid input")
	ErrCapacityExceeded       = errors.New("capacity exceeded")
	ErrSeatNotAvailable       = errors.New("seat not available")
	ErrOverlappingWindow      = errors.New("overlapping on-sale window")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrExpired                = errors.New("expired")
	ErrConflict               = errors.New("conflict")
)
