package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/olexh/busline/internal/domain"
	"github.com/olexh/busline/internal/repository"
	redisrepo "github.com/olexh/busline/internal/repository/redis"
	"github.com/olexh/busline/internal/token"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 6

// UserStore is the identity storage the auth service works against.
type UserStore interface {
	Create(ctx context.Context, name, email, passwordHash string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

type Service struct {
	store      UserStore
	tokens     *token.Service
	limiter    *redisrepo.SlidingWindowLimiter
	bcryptCost int
}

func New(store UserStore, tokens *token.Service, limiter *redisrepo.SlidingWindowLimiter, bcryptCost int) *Service {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}

	return &Service{
		store:      store,
		tokens:     tokens,
		limiter:    limiter,
		bcryptCost: bcryptCost,
	}
}

// Register creates a new user with a hashed password.
//
// Returns:
//   - error: auth.ErrWeakPassword if the password is shorter than 6 characters.
//   - error: auth.ErrEmailTaken if the email is already registered.
func (s *Service) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	const op = "service.auth.Register"

	if len(password) < minPasswordLen {
		return nil, fmt.Errorf("%s:%w", op, ErrWeakPassword)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	u, err := s.store.Create(ctx, name, email, string(hash))
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("%s:%w", op, ErrEmailTaken)
		}

		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return u, nil
}

// Login verifies credentials and issues a bearer token.
//
// Parameters:
//   - rlKey: rate-limiter key for the caller, empty to skip limiting.
//
// Returns:
//   - string: the signed token.
//   - *domain.User: the authenticated user.
//   - error: auth.ErrUserNotFound if the email is unknown.
//   - error: auth.ErrInvalidCredentials if the password does not match.
func (s *Service) Login(ctx context.Context, email, password, rlKey string) (string, *domain.User, error) {
	const op = "service.auth.Login"

	if s.limiter != nil && rlKey != "" {
		ok, _, retry, err := s.limiter.Allow(ctx, rlKey)
		if err != nil {
			return "", nil, fmt.Errorf("%s:%w", op, err)
		}
		if !ok {
			return "", nil, fmt.Errorf("%s: rate limited, retry in %s", op, retry)
		}
	}

	u, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, fmt.Errorf("%s:%w", op, ErrUserNotFound)
		}

		return "", nil, fmt.Errorf("%s:%w", op, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", nil, fmt.Errorf("%s:%w", op, ErrInvalidCredentials)
	}

	tok, err := s.tokens.Generate(u.ID, u.Name, u.Email)
	if err != nil {
		return "", nil, fmt.Errorf("%s:%w", op, err)
	}

	return tok, u, nil
}

// Profile retrieves the authenticated user's record.
//
// Returns:
//   - error: auth.ErrUserNotFound if the user no longer exists.
func (s *Service) Profile(ctx context.Context, userID int64) (*domain.User, error) {
	const op = "service.auth.Profile"

	u, err := s.store.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s:%w", op, ErrUserNotFound)
		}

		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return u, nil
}
