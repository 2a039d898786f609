package service

import (
	"github.com/kirinyoku/resv-go/internal/clock"
	"github.com/kirinyoku/resv-go/internal/lock"
	"github.com/kirinyoku/resv-go/internal/pricing"
	redisx "github.com/kirinyoku/resv-go/internal/redis"
	"github.com/kirinyoku/resv-go/internal/repository"
	redisrepo "github.com/kirinyoku/resv-go/internal/repository/redis"
	"github.com/kirinyoku/resv-go/internal/service/inventory"
	"github.com/kirinyoku/resv-go/internal/service/query"
	"github.com/kirinyoku/resv-go/internal/service/reservation"
)

type Services struct {
	Reservation *reservation.Service
	Inventory   *inventory.Service
	Query       *query.Service
}

type Config struct {
	Reservation reservation.Config
	Query       query.Config
}

func NewServices(
	store repository.Store,
	locker lock.SeatLocker,
	pricer pricing.Pricer,
	clk clock.Clock,
	cache *redisrepo.Cache,
	pubsub *redisx.InventoryPubSub,
	limiter *redisrepo.SlidingWindowLimiter,
	cfg Config,
) *Services {
	return &Services{
		Reservation: reservation.New(store, locker, pricer, clk, cache, pubsub, limiter, cfg.Reservation),
		Inventory:   inventory.New(store, clk, cache, pubsub, cfg.Reservation.Retry),
		Query:       query.New(store, clk, cache, cfg.Query),
	}
}
