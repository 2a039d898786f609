package repository

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrVersionConflict = errors.New("version conflict")
	ErrDuplicateSeat   = errors.New("seat position already exists")
	ErrDuplicateCode   = errors.New("ticket type code already exists")
)
