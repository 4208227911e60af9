package reservation

import "errors"

var (
	ErrSeatTaken        = errors.New("seat already booked")
	ErrSoldOut          = errors.New("no seats available")
	ErrInvalidSeat      = errors.New("invalid seat number")
	ErrBusNotFound      = errors.New("bus not found")
	ErrBookingNotFound  = errors.New("booking not found")
	ErrAlreadyCancelled = errors.New("booking already cancelled")
)
