package domain

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type Bus struct {
	ID             int64  `json:"bus_id"`
	Name           string `json:"bus_name"`
	Source         string `json:"source"`
	Destination    string `json:"destination"`
	FareCents      int64  `json:"fare_cents"`
	TotalSeats     int    `json:"total_seats"`
	AvailableSeats int    `json:"available_seats"`
}

type Booking struct {
	ID            uuid.UUID     `json:"booking_id"`
	UserID        int64         `json:"user_id"`
	BusID         int64         `json:"bus_id"`
	PassengerName string        `json:"passenger_name"`
	SeatNumber    int           `json:"seat_number"`
	Status        BookingStatus `json:"status"`
	CreatedAt     time.Time     `json:"booking_date"`
}

// BookingWithBus is the shape returned by the my-bookings listing:
// the booking joined with the bus it was made on.
type BookingWithBus struct {
	Booking Booking `json:"booking"`
	Bus     Bus     `json:"bus"`
}

// ReserveParams carries one seat request through the reservation engine.
type ReserveParams struct {
	BusID         int64
	UserID        int64
	PassengerName string
	SeatNumber    int
}
