// Package query serves the read side: event listings, ticket-type
// availability and seat maps, cached in redis with short TTLs. Counts can lag
// a write by up to the TTL; the write path re-checks everything, so a stale
// read never oversells.
package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kirinyoku/resv-go/internal/clock"
	"github.com/kirinyoku/resv-go/internal/domain"
	redisx "github.com/kirinyoku/resv-go/internal/redis"
	"github.com/kirinyoku/resv-go/internal/repository"
	redisrepo "github.com/kirinyoku/resv-go/internal/repository/redis"
)

type Config struct {
	TicketTypesTTL  time.Duration
	AvailabilityTTL time.Duration
}

type Service struct {
	store repository.Store
	clk   clock.Clock
	cache *redisrepo.Cache
	cfg   Config
}

func New(store repository.Store, clk clock.Clock, cache *redisrepo.Cache, cfg Config) *Service {
	if cfg.TicketTypesTTL <= 0 {
		cfg.TicketTypesTTL = 30 * time.Second
	}

	if cfg.AvailabilityTTL <= 0 {
		cfg.AvailabilityTTL = 5 * time.Second
	}

	return &Service{
		store: store,
		clk:   clk,
		cache: cache,
		cfg:   cfg,
	}
}

// TicketTypeView is the public projection of a ticket type: what a buyer
// needs to decide, without the reserved counters.
type TicketTypeView struct {
	ID          int64              `json:"id"`
	Code        string             `json:"code"`
	Name        string             `json:"name"`
	PriceCents  int64              `json:"price_cents"`
	Inventory   string             `json:"inventory"`
	OnSale      bool               `json:"on_sale"`
	Available   int                `json:"available"`
	MinPerOrder int                `json:"min_per_order"`
	MaxPerOrder int                `json:"max_per_order"`
	Windows     []domain.TimeRange `json:"windows"`
}

func (s *Service) GetEvent(ctx context.Context, id int64) (*domain.Event, error) {
	const op = "service.query.GetEvent"

	e, err := s.store.GetEvent(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s:%w", op, ErrEventNotFound)
		}
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return e, nil
}

// ListTicketTypes returns the visible ticket types of an event with live
// availability, served from cache when warm.
func (s *Service) ListTicketTypes(ctx context.Context, eventID int64) ([]TicketTypeView, error) {
	const op = "service.query.ListTicketTypes"

	key := redisx.KeyEventTicketTypes(eventID)

	loader := func(ctx context.Context) ([]TicketTypeView, error) {
		return s.loadTicketTypes(ctx, eventID)
	}

	if s.cache == nil {
		views, err := loader(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s:%w", op, err)
		}
		return views, nil
	}

	views, err := redisrepo.GetOrSetJSON(ctx, s.cache, key, s.cfg.TicketTypesTTL, loader)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return views, nil
}

// Availability reports how many units of one ticket type can currently be
// bought: the free capacity counter for general admission, the count of
// available allocated seats for reserved seating.
func (s *Service) Availability(ctx context.Context, ticketTypeID int64) (int, error) {
	const op = "service.query.Availability"

	key := redisx.KeyTicketTypeAvailability(ticketTypeID)

	loader := func(ctx context.Context) (int, error) {
		return s.loadAvailability(ctx, ticketTypeID)
	}

	if s.cache == nil {
		n, err := loader(ctx)
		if err != nil {
			return 0, fmt.Errorf("%s:%w", op, err)
		}
		return n, nil
	}

	n, err := redisrepo.GetOrSetJSON(ctx, s.cache, key, s.cfg.AvailabilityTTL, loader)
	if err != nil {
		return 0, fmt.Errorf("%s:%w", op, err)
	}

	return n, nil
}

func (s *Service) ListSeats(ctx context.Context, venueID int64, status domain.SeatStatus) ([]*domain.Seat, error) {
	const op = "service.query.ListSeats"

	if _, err := s.store.GetVenue(ctx, venueID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s:%w", op, ErrVenueNotFound)
		}
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	seats, err := s.store.ListSeats(ctx, venueID, status)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return seats, nil
}

func (s *Service) loadTicketTypes(ctx context.Context, eventID int64) ([]TicketTypeView, error) {
	if _, err := s.store.GetEvent(ctx, eventID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}

	tts, err := s.store.ListTicketTypes(ctx, eventID)
	if err != nil {
		return nil, err
	}

	now := s.clk.Now()
	views := make([]TicketTypeView, 0, len(tts))
	for _, tt := range tts {
		if !tt.Visible {
			continue
		}
		avail, err := s.availabilityOf(ctx, tt)
		if err != nil {
			return nil, err
		}
		views = append(views, TicketTypeView{
			ID:          tt.ID,
			Code:        tt.Code,
			Name:        tt.Name,
			PriceCents:  int64(tt.Price),
			Inventory:   string(tt.Inventory),
			OnSale:      tt.IsOnSale(now),
			Available:   avail,
			MinPerOrder: tt.MinPerOrder,
			MaxPerOrder: tt.MaxPerOrder,
			Windows:     tt.OnSaleWindows,
		})
	}

	return views, nil
}

func (s *Service) loadAvailability(ctx context.Context, ticketTypeID int64) (int, error) {
	tt, err := s.store.GetTicketType(ctx, ticketTypeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, ErrTicketTypeNotFound
		}
		return 0, err
	}

	return s.availabilityOf(ctx, tt)
}

func (s *Service) availabilityOf(ctx context.Context, tt *domain.TicketType) (int, error) {
	if tt.Inventory == domain.GeneralAdmission {
		return tt.Capacity.Available(), nil
	}

	return s.store.CountAvailableByTicketType(ctx, tt.ID)
}
