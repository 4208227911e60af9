package repository

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrSeatTaken        = errors.New("seat already booked")
	ErrSoldOut          = errors.New("no seats available")
	ErrInvalidSeat      = errors.New("seat number out of range")
	ErrAlreadyCancelled = errors.New("booking already cancelled")
)
