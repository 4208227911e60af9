package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/olexh/busline/internal/domain"
	"github.com/olexh/busline/internal/repository"
)

// ReservationRepo owns the two mutating paths of the seat ledger: reserving
// a seat and cancelling a booking. Each runs as one serializable transaction
// so the booking row and the available_seats counter always move together.
type ReservationRepo struct {
	store *Store
}

// Reserve books one seat on a bus.
//
// Parameters:
//   - ctx: request-scoped context for cancellation and timeouts.
//   - p: bus, user, passenger name and seat number of the request.
//
// Returns:
//   - *domain.Booking: the confirmed booking when successful.
//   - error: repository.ErrNotFound if the bus does not exist.
//   - error: repository.ErrInvalidSeat if the seat number is out of range.
//   - error: repository.ErrSeatTaken if the seat has a confirmed booking.
//   - error: repository.ErrSoldOut if the bus has no seats left.
func (r *ReservationRepo) Reserve(ctx context.Context, p domain.ReserveParams) (*domain.Booking, error) {
	const op = "postgres.ReservationRepo.Reserve"

	b, err := r.reserveTx(ctx, p)
	if err != nil && IsRetryable(err) {
		// serialization failure: the whole unit is safe to retry once
		b, err = r.reserveTx(ctx, p)
	}
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateReserveErr(err))
	}

	return b, nil
}

// Cancel cancels a booking owned by the given user and restores the seat.
//
// Parameters:
//   - ctx: request-scoped context for cancellation and timeouts.
//   - bookingID: unique identifier of the booking.
//   - userID: the requesting user; a booking owned by someone else is
//     reported exactly like a missing one.
//
// Returns:
//   - int64: the bus ID the seat was restored on.
//   - error: repository.ErrNotFound if the booking does not exist or is not
//     owned by userID.
//   - error: repository.ErrAlreadyCancelled if the booking is already cancelled.
func (r *ReservationRepo) Cancel(ctx context.Context, bookingID uuid.UUID, userID int64) (int64, error) {
	const op = "postgres.ReservationRepo.Cancel"

	busID, err := r.cancelTx(ctx, bookingID, userID)
	if err != nil && IsRetryable(err) {
		busID, err = r.cancelTx(ctx, bookingID, userID)
	}
	if err != nil {
		return 0, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return busID, nil
}

func (r *ReservationRepo) reserveTx(ctx context.Context, p domain.ReserveParams) (*domain.Booking, error) {
	var b *domain.Booking

	err := r.store.RunTx(ctx, nil, func(ctx context.Context, tx DB) error {
		var err error
		b, err = reserveCore(ctx, tx, p)
		return err
	})
	if err != nil {
		return nil, err
	}

	return b, nil
}

func reserveCore(ctx context.Context, db DB, p domain.ReserveParams) (*domain.Booking, error) {
	// Lock the inventory row first: every reservation and cancellation on
	// this bus serializes on it, which closes the check-then-act race.
	var totalSeats, availableSeats int
	err := db.QueryRow(ctx,
		`SELECT total_seats, available_seats
		 FROM buses
		 WHERE id = $1
		 FOR UPDATE`,
		p.BusID,
	).Scan(&totalSeats, &availableSeats)
	if err != nil {
		return nil, err
	}

	if p.SeatNumber < 1 || p.SeatNumber > totalSeats {
		return nil, repository.ErrInvalidSeat
	}

	var taken bool
	err = db.QueryRow(ctx,
		`SELECT EXISTS (
		 	SELECT 1 FROM bookings
		 	WHERE bus_id = $1 AND seat_number = $2 AND status = 'confirmed'
		 )`,
		p.BusID, p.SeatNumber,
	).Scan(&taken)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, repository.ErrSeatTaken
	}

	if availableSeats <= 0 {
		return nil, repository.ErrSoldOut
	}

	b := &domain.Booking{
		ID:            uuid.New(),
		UserID:        p.UserID,
		BusID:         p.BusID,
		PassengerName: p.PassengerName,
		SeatNumber:    p.SeatNumber,
		Status:        domain.BookingConfirmed,
	}

	// The partial unique index on confirmed (bus_id, seat_number) backs up
	// the check above at lower isolation levels.
	err = db.QueryRow(ctx,
		`INSERT INTO bookings (id, user_id, bus_id, passenger_name, seat_number, status)
		 VALUES ($1, $2, $3, $4, $5, 'confirmed')
		 RETURNING created_at`,
		b.ID, b.UserID, b.BusID, b.PassengerName, b.SeatNumber,
	).Scan(&b.CreatedAt)
	if err != nil {
		return nil, err
	}

	tag, err := db.Exec(ctx,
		`UPDATE buses
		 SET available_seats = available_seats - 1
		 WHERE id = $1 AND available_seats > 0`,
		p.BusID,
	)
	if err != nil {
		return nil, err
	}

	// A decrement that applied to no row means the counter was already at
	// zero; abort so the inserted booking never becomes visible.
	if tag.RowsAffected() == 0 {
		return nil, repository.ErrSoldOut
	}

	return b, nil
}

func (r *ReservationRepo) cancelTx(ctx context.Context, bookingID uuid.UUID, userID int64) (int64, error) {
	var busID int64

	err := r.store.RunTx(ctx, nil, func(ctx context.Context, tx DB) error {
		var err error
		busID, err = cancelCore(ctx, tx, bookingID, userID)
		return err
	})
	if err != nil {
		return 0, err
	}

	return busID, nil
}

func cancelCore(ctx context.Context, db DB, bookingID uuid.UUID, userID int64) (int64, error) {
	var busID int64
	var status domain.BookingStatus

	err := db.QueryRow(ctx,
		`SELECT bus_id, status
		 FROM bookings
		 WHERE id = $1 AND user_id = $2
		 FOR UPDATE`,
		bookingID, userID,
	).Scan(&busID, &status)
	if err != nil {
		return 0, err
	}

	if status == domain.BookingCancelled {
		return 0, repository.ErrAlreadyCancelled
	}

	if _, err := db.Exec(ctx,
		`UPDATE bookings SET status = 'cancelled' WHERE id = $1`,
		bookingID,
	); err != nil {
		return 0, err
	}

	// Clamp to total_seats so a manually shrunk bus can never report more
	// free seats than it has.
	if _, err := db.Exec(ctx,
		`UPDATE buses
		 SET available_seats = LEAST(available_seats + 1, total_seats)
		 WHERE id = $1`,
		busID,
	); err != nil {
		return 0, err
	}

	return busID, nil
}

// translateReserveErr keeps the ledger sentinels intact and maps everything
// else through the shared translation. A unique violation here can only come
// from the confirmed-seat index, so it surfaces as ErrSeatTaken.
func translateReserveErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrInvalidSeat),
		errors.Is(err, repository.ErrSeatTaken),
		errors.Is(err, repository.ErrSoldOut):
		return err
	}

	translated := translateDBErr(err)
	if errors.Is(translated, repository.ErrConflict) {
		return repository.ErrSeatTaken
	}

	return translated
}
