package httpgin

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type CreateBookingRequest struct {
	BusID         int64  `json:"bus_id" binding:"required"`
	PassengerName string `json:"passenger_name" binding:"required"`
	SeatNumber    int    `json:"seat_number" binding:"required,gt=0"`
}

type CreateBusRequest struct {
	Name        string `json:"bus_name" binding:"required"`
	Source      string `json:"source" binding:"required"`
	Destination string `json:"destination" binding:"required"`
	FareCents   int64  `json:"fare_cents" binding:"gte=0"`
	TotalSeats  int    `json:"total_seats" binding:"required,gt=0"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type UserResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type RegisterResponse struct {
	User UserResponse `json:"user"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type CreateBookingResponse struct {
	BookingID string `json:"booking_id"`
	Status    string `json:"status"`
}

type CancelBookingResponse struct {
	Status string `json:"status"`
}

type BookedSeatsResponse struct {
	BookedSeats []int `json:"bookedSeats"`
}

type CreateBusResponse struct {
	BusID int64 `json:"bus_id"`
}
