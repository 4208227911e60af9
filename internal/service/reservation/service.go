package reservation

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/olexh/busline/internal/domain"
	"github.com/olexh/busline/internal/repository"
	redisrepo "github.com/olexh/busline/internal/repository/redis"
)

// SeatStore is the transactional seat ledger the engine commits against.
// Both methods are atomic units: either the booking row and the inventory
// counter move together, or nothing is written.
type SeatStore interface {
	Reserve(ctx context.Context, p domain.ReserveParams) (*domain.Booking, error)
	Cancel(ctx context.Context, bookingID uuid.UUID, userID int64) (busID int64, err error)
}

type Service struct {
	store   SeatStore
	cache   *redisrepo.Cache
	pubsub  *redisrepo.BusPubSub
	limiter *redisrepo.SlidingWindowLimiter
}

func New(
	store SeatStore,
	cache *redisrepo.Cache,
	pubsub *redisrepo.BusPubSub,
	limiter *redisrepo.SlidingWindowLimiter,
) *Service {
	return &Service{
		store:   store,
		cache:   cache,
		pubsub:  pubsub,
		limiter: limiter,
	}
}

// Reserve books one seat for a user.
//
// Parameters:
//   - ctx: request-scoped context.
//   - p: bus, user, passenger name and seat number of the request.
//   - rlKey: rate-limiter key for the caller, empty to skip limiting.
//
// Returns:
//   - *domain.Booking: the confirmed booking.
//   - error: reservation.ErrBusNotFound if the bus does not exist.
//   - error: reservation.ErrInvalidSeat if the seat number is out of range.
//   - error: reservation.ErrSeatTaken if the seat already has a confirmed booking.
//   - error: reservation.ErrSoldOut if the bus has no seats left.
func (s *Service) Reserve(ctx context.Context, p domain.ReserveParams, rlKey string) (*domain.Booking, error) {
	const op = "service.reservation.Reserve"

	if p.SeatNumber < 1 {
		return nil, fmt.Errorf("%s:%w", op, ErrInvalidSeat)
	}

	if s.limiter != nil && rlKey != "" {
		ok, _, retry, err := s.limiter.Allow(ctx, rlKey)
		if err != nil {
			return nil, fmt.Errorf("%s:%w", op, err)
		}
		if !ok {
			return nil, fmt.Errorf("%s: rate limited, retry in %s", op, retry)
		}
	}

	b, err := s.store.Reserve(ctx, p)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, fmt.Errorf("%s:%w", op, ErrBusNotFound)
		case errors.Is(err, repository.ErrInvalidSeat):
			return nil, fmt.Errorf("%s:%w", op, ErrInvalidSeat)
		case errors.Is(err, repository.ErrSeatTaken):
			return nil, fmt.Errorf("%s:%w", op, ErrSeatTaken)
		case errors.Is(err, repository.ErrSoldOut):
			return nil, fmt.Errorf("%s:%w", op, ErrSoldOut)
		}

		return nil, fmt.Errorf("%s:%w", op, err)
	}

	s.busChanged(ctx, b.BusID)

	return b, nil
}

// Cancel cancels a booking owned by the user and restores the seat.
//
// Parameters:
//   - ctx: request-scoped context.
//   - bookingID: ID of the booking to cancel.
//   - userID: the authenticated caller. A booking owned by someone else is
//     indistinguishable from a missing one.
//
// Returns:
//   - error: reservation.ErrBookingNotFound if the booking does not exist
//     or belongs to another user.
//   - error: reservation.ErrAlreadyCancelled on repeat cancellation.
func (s *Service) Cancel(ctx context.Context, bookingID uuid.UUID, userID int64) error {
	const op = "service.reservation.Cancel"

	busID, err := s.store.Cancel(ctx, bookingID, userID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return fmt.Errorf("%s:%w", op, ErrBookingNotFound)
		case errors.Is(err, repository.ErrAlreadyCancelled):
			return fmt.Errorf("%s:%w", op, ErrAlreadyCancelled)
		}

		return fmt.Errorf("%s:%w", op, err)
	}

	s.busChanged(ctx, busID)

	return nil
}

// busChanged runs after a committed mutation: the store has already made the
// change durable, so stale cache entries are dropped and listeners notified.
func (s *Service) busChanged(ctx context.Context, busID int64) {
	if s.cache != nil {
		_ = s.cache.InvalidateBus(ctx, busID)
	}
	if s.pubsub != nil {
		_ = s.pubsub.PublishBusChanged(ctx, busID)
	}
}
