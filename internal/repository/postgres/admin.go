package postgres

import (
	"context"
	"fmt"

	"github.com/olexh/busline/internal/domain"
)

type AdminRepo struct {
	db DB
}

// CreateBus inserts a new bus with a full set of available seats.
//
// Returns:
//   - int64: the new bus ID.
//   - error: repository.ErrConflict on a duplicate bus name.
func (r *AdminRepo) CreateBus(ctx context.Context, b domain.Bus) (int64, error) {
	const op = "postgres.AdminRepo.CreateBus"

	var id int64
	err := r.db.QueryRow(ctx,
		`INSERT INTO buses (name, source, destination, fare_cents, total_seats, available_seats)
		 VALUES ($1, $2, $3, $4, $5, $5)
		 RETURNING id`,
		b.Name, b.Source, b.Destination, b.FareCents, b.TotalSeats,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return id, nil
}
