package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/olexh/busline/internal/domain"
	"github.com/olexh/busline/internal/repository"
	redisrepo "github.com/olexh/busline/internal/repository/redis"
)

// BusStore is the read side of the bus inventory and seat ledger.
type BusStore interface {
	GetBus(ctx context.Context, id int64) (*domain.Bus, error)
	ListBuses(ctx context.Context) ([]domain.Bus, error)
	SearchBuses(ctx context.Context, source, destination string) ([]domain.Bus, error)
	BookedSeats(ctx context.Context, busID int64) ([]int, error)
	ListUserBookings(ctx context.Context, userID int64) ([]domain.BookingWithBus, error)
}

type Config struct {
	BusListTTL time.Duration
	SearchTTL  time.Duration
	SeatMapTTL time.Duration
}

type Service struct {
	store BusStore
	cache *redisrepo.Cache
	cfg   Config
}

func New(store BusStore, cache *redisrepo.Cache, cfg Config) *Service {
	if cfg.BusListTTL <= 0 {
		cfg.BusListTTL = 60 * time.Second
	}

	if cfg.SearchTTL <= 0 {
		cfg.SearchTTL = 15 * time.Second
	}

	if cfg.SeatMapTTL <= 0 {
		cfg.SeatMapTTL = 15 * time.Second
	}

	return &Service{
		store: store,
		cache: cache,
		cfg:   cfg,
	}
}

// GetBus retrieves a single bus.
//
// Returns:
//   - error: query.ErrBusNotFound if the bus is not found.
func (s *Service) GetBus(ctx context.Context, id int64) (*domain.Bus, error) {
	const op = "service.query.GetBus"

	b, err := readOnce(ctx, func(ctx context.Context) (*domain.Bus, error) {
		return s.store.GetBus(ctx, id)
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s:%w", op, ErrBusNotFound)
		}

		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return b, nil
}

// ListBuses lists every bus ordered by name, through the cache.
func (s *Service) ListBuses(ctx context.Context) ([]domain.Bus, error) {
	const op = "service.query.ListBuses"

	loader := func(ctx context.Context) ([]domain.Bus, error) {
		return readOnce(ctx, s.store.ListBuses)
	}

	var buses []domain.Bus
	var err error

	if s.cache != nil {
		buses, err = redisrepo.GetOrSetJSON(ctx, s.cache, redisrepo.KeyBuses(), s.cfg.BusListTTL, loader)
	} else {
		buses, err = loader(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return buses, nil
}

// SearchBuses lists buses on a route with seats left, cheapest first,
// through the cache.
func (s *Service) SearchBuses(ctx context.Context, source, destination string) ([]domain.Bus, error) {
	const op = "service.query.SearchBuses"

	loader := func(ctx context.Context) ([]domain.Bus, error) {
		return readOnce(ctx, func(ctx context.Context) ([]domain.Bus, error) {
			return s.store.SearchBuses(ctx, source, destination)
		})
	}

	var buses []domain.Bus
	var err error

	if s.cache != nil {
		key := redisrepo.KeyBusSearch(source, destination)
		buses, err = redisrepo.GetOrSetJSON(ctx, s.cache, key, s.cfg.SearchTTL, loader)
	} else {
		buses, err = loader(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return buses, nil
}

// BookedSeats lists the confirmed seat numbers of a bus, through the cache.
func (s *Service) BookedSeats(ctx context.Context, busID int64) ([]int, error) {
	const op = "service.query.BookedSeats"

	loader := func(ctx context.Context) ([]int, error) {
		return readOnce(ctx, func(ctx context.Context) ([]int, error) {
			return s.store.BookedSeats(ctx, busID)
		})
	}

	var seats []int
	var err error

	if s.cache != nil {
		key := redisrepo.KeyBusSeats(busID)
		seats, err = redisrepo.GetOrSetJSON(ctx, s.cache, key, s.cfg.SeatMapTTL, loader)
	} else {
		seats, err = loader(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return seats, nil
}

// ListUserBookings lists the caller's bookings joined with their buses,
// newest first. Never cached: it is per-user and must reflect the latest
// reservation immediately.
func (s *Service) ListUserBookings(ctx context.Context, userID int64) ([]domain.BookingWithBus, error) {
	const op = "service.query.ListUserBookings"

	bookings, err := readOnce(ctx, func(ctx context.Context) ([]domain.BookingWithBus, error) {
		return s.store.ListUserBookings(ctx, userID)
	})
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return bookings, nil
}

// readOnce retries a read-only call a single time on a transient failure.
// Sentinel outcomes are returned as-is.
func readOnce[T any](ctx context.Context, fn func(ctx context.Context) (T, error)) (T, error) {
	v, err := fn(ctx)
	if err == nil || errors.Is(err, repository.ErrNotFound) || ctx.Err() != nil {
		return v, err
	}

	return fn(ctx)
}
