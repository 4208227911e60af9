package service

import (
	postgres "github.com/olexh/busline/internal/repository/postgres"
	redis "github.com/olexh/busline/internal/repository/redis"
	"github.com/olexh/busline/internal/service/admin"
	"github.com/olexh/busline/internal/service/auth"
	"github.com/olexh/busline/internal/service/query"
	"github.com/olexh/busline/internal/service/reservation"
	"github.com/olexh/busline/internal/token"
)

type Services struct {
	Auth        *auth.Service
	Reservation *reservation.Service
	Query       *query.Service
	Admin       *admin.Service
}

type Config struct {
	Query      query.Config
	BcryptCost int
}

func NewServices(
	store *postgres.Store,
	cache *redis.Cache,
	pubsub *redis.BusPubSub,
	limiter *redis.SlidingWindowLimiter,
	tokens *token.Service,
	cfg Config,
) *Services {
	return &Services{
		Auth:        auth.New(store.Users(), tokens, limiter, cfg.BcryptCost),
		Reservation: reservation.New(store.Reservations(), cache, pubsub, limiter),
		Query:       query.New(store.Query(), cache, cfg.Query),
		Admin:       admin.New(store.Admin(), cache, pubsub),
	}
}
