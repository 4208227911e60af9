package admin

import (
	"context"
	"errors"
	"fmt"

	"github.com/olexh/busline/internal/domain"
	"github.com/olexh/busline/internal/repository"
	redisrepo "github.com/olexh/busline/internal/repository/redis"
)

// BusAdminStore is the write side of the bus inventory used by operators.
type BusAdminStore interface {
	CreateBus(ctx context.Context, b domain.Bus) (int64, error)
}

type Service struct {
	store  BusAdminStore
	cache  *redisrepo.Cache
	pubsub *redisrepo.BusPubSub
}

func New(store BusAdminStore, cache *redisrepo.Cache, pubsub *redisrepo.BusPubSub) *Service {
	return &Service{
		store:  store,
		cache:  cache,
		pubsub: pubsub,
	}
}

// CreateBus registers a new bus with every seat available.
//
// Returns:
//   - int64: the new bus ID.
//   - error: admin.ErrInvalidBus if a required field is missing or the seat
//     count is not positive.
//   - error: admin.ErrBusConflict on a duplicate bus name.
func (s *Service) CreateBus(ctx context.Context, b domain.Bus) (int64, error) {
	const op = "service.admin.CreateBus"

	if b.Name == "" || b.Source == "" || b.Destination == "" ||
		b.TotalSeats <= 0 || b.FareCents < 0 {
		return 0, fmt.Errorf("%s:%w", op, ErrInvalidBus)
	}

	id, err := s.store.CreateBus(ctx, b)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return 0, fmt.Errorf("%s:%w", op, ErrBusConflict)
		}

		return 0, fmt.Errorf("%s:%w", op, err)
	}

	if s.cache != nil {
		_ = s.cache.Del(ctx, redisrepo.KeyBuses())
	}
	if s.pubsub != nil {
		_ = s.pubsub.PublishBusChanged(ctx, id)
	}

	return id, nil
}
