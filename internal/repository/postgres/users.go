package postgres

import (
	"context"
	"fmt"

	"github.com/olexh/busline/internal/domain"
)

type UserRepo struct {
	db DB
}

// Create inserts a new user.
//
// Returns:
//   - *domain.User: the created user with its assigned ID.
//   - error: repository.ErrConflict if the email is already registered.
func (r *UserRepo) Create(ctx context.Context, name, email, passwordHash string) (*domain.User, error) {
	const op = "postgres.UserRepo.Create"

	u := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
	}

	err := r.db.QueryRow(ctx,
		`INSERT INTO users (name, email, password_hash)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		name, email, passwordHash,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return u, nil
}

// GetByEmail retrieves a user by email.
//
// Returns:
//   - error: repository.ErrNotFound if no user has this email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const op = "postgres.UserRepo.GetByEmail"

	var u domain.User
	err := r.db.QueryRow(ctx,
		`SELECT id, name, email, password_hash, created_at
		 FROM users WHERE email = $1`,
		email,
	).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return &u, nil
}

// GetByID retrieves a user by ID.
//
// Returns:
//   - error: repository.ErrNotFound if the user is not found.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	const op = "postgres.UserRepo.GetByID"

	var u domain.User
	err := r.db.QueryRow(ctx,
		`SELECT id, name, email, password_hash, created_at
		 FROM users WHERE id = $1`,
		id,
	).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return &u, nil
}
