package postgres

import (
	"context"
	"fmt"

	"github.com/olexh/busline/internal/domain"
)

type QueryRepo struct {
	db DB
}

// GetBus retrieves a bus by its ID.
//
// Returns:
//   - *domain.Bus: the bus when found.
//   - error: repository.ErrNotFound if the bus is not found.
func (r *QueryRepo) GetBus(ctx context.Context, id int64) (*domain.Bus, error) {
	const op = "postgres.QueryRepo.GetBus"

	var b domain.Bus
	err := r.db.QueryRow(ctx,
		`SELECT id, name, source, destination, fare_cents, total_seats, available_seats
		 FROM buses WHERE id = $1`,
		id,
	).Scan(&b.ID, &b.Name, &b.Source, &b.Destination, &b.FareCents, &b.TotalSeats, &b.AvailableSeats)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return &b, nil
}

// ListBuses lists every bus ordered by name.
func (r *QueryRepo) ListBuses(ctx context.Context) ([]domain.Bus, error) {
	const op = "postgres.QueryRepo.ListBuses"

	rows, err := r.db.Query(ctx,
		`SELECT id, name, source, destination, fare_cents, total_seats, available_seats
		 FROM buses
		 ORDER BY name ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	defer rows.Close()

	var out []domain.Bus
	for rows.Next() {
		var b domain.Bus
		if err := rows.Scan(
			&b.ID, &b.Name, &b.Source, &b.Destination,
			&b.FareCents, &b.TotalSeats, &b.AvailableSeats,
		); err != nil {
			return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
		}

		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return out, nil
}

// SearchBuses lists buses on a route that still have free seats,
// cheapest first. Source and destination match case-insensitively.
func (r *QueryRepo) SearchBuses(ctx context.Context, source, destination string) ([]domain.Bus, error) {
	const op = "postgres.QueryRepo.SearchBuses"

	rows, err := r.db.Query(ctx,
		`SELECT id, name, source, destination, fare_cents, total_seats, available_seats
		 FROM buses
		 WHERE LOWER(source) = LOWER($1)
		   AND LOWER(destination) = LOWER($2)
		   AND available_seats > 0
		 ORDER BY fare_cents ASC`,
		source, destination,
	)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	defer rows.Close()

	var out []domain.Bus
	for rows.Next() {
		var b domain.Bus
		if err := rows.Scan(
			&b.ID, &b.Name, &b.Source, &b.Destination,
			&b.FareCents, &b.TotalSeats, &b.AvailableSeats,
		); err != nil {
			return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
		}

		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return out, nil
}

// BookedSeats lists the seat numbers with a confirmed booking on a bus.
func (r *QueryRepo) BookedSeats(ctx context.Context, busID int64) ([]int, error) {
	const op = "postgres.QueryRepo.BookedSeats"

	rows, err := r.db.Query(ctx,
		`SELECT seat_number
		 FROM bookings
		 WHERE bus_id = $1 AND status = 'confirmed'
		 ORDER BY seat_number`,
		busID,
	)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	defer rows.Close()

	var seats []int
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
		}

		seats = append(seats, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return seats, nil
}

// ListUserBookings lists a user's bookings joined with their buses,
// newest first.
func (r *QueryRepo) ListUserBookings(ctx context.Context, userID int64) ([]domain.BookingWithBus, error) {
	const op = "postgres.QueryRepo.ListUserBookings"

	rows, err := r.db.Query(ctx,
		`SELECT b.id, b.user_id, b.bus_id, b.passenger_name, b.seat_number, b.status, b.created_at,
		        bus.id, bus.name, bus.source, bus.destination, bus.fare_cents,
		        bus.total_seats, bus.available_seats
		 FROM bookings b
		 JOIN buses bus ON bus.id = b.bus_id
		 WHERE b.user_id = $1
		 ORDER BY b.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	defer rows.Close()

	var out []domain.BookingWithBus
	for rows.Next() {
		var bb domain.BookingWithBus
		if err := rows.Scan(
			&bb.Booking.ID, &bb.Booking.UserID, &bb.Booking.BusID,
			&bb.Booking.PassengerName, &bb.Booking.SeatNumber,
			&bb.Booking.Status, &bb.Booking.CreatedAt,
			&bb.Bus.ID, &bb.Bus.Name, &bb.Bus.Source, &bb.Bus.Destination,
			&bb.Bus.FareCents, &bb.Bus.TotalSeats, &bb.Bus.AvailableSeats,
		); err != nil {
			return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
		}

		out = append(out, bb)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return out, nil
}
