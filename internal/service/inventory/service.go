// Package inventory is the admin-facing service: venue and seat setup, event
// publication, ticket-type structure and allocation carve-outs.
package inventory

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
	"github.com/kirinyoku/resv-go/internal/retry"
)

type Service struct {
	store  repository.Store
	clk    clock.Clock
	cache  *redisrepo.Cache
	pubsub *redisx.InventoryPubSub
	retry  retry.Config
}

func New(
	store repository.Store,
	clk clock.Clock,
	cache *redisrepo.Cache,
	pubsub *redisx.InventoryPubSub,
	retryCfg retry.Config,
) *Service {
	if retryCfg.MaxAttempts <= 0 {
		retryCfg = retry.DefaultConfig()
	}

	return &Service{
		store:  store,
		clk:    clk,
		cache:  cache,
		pubsub: pubsub,
		retry:  retryCfg,
	}
}

func (s *Service) CreateVenue(ctx context.Context, name string) (*domain.Venue, error) {
	const op = "service.inventory.CreateVenue"

	if name == "" {
		return nil, fmt.Errorf("%s: empty name: %w", op, domain.ErrInvalidInput)
	}

	now := s.clk.Now()
	v := &domain.Venue{Entity: domain.Entity{CreatedAt: now, UpdatedAt: now, Version: 1}, Name: name}

	if err := s.store.CreateVenue(ctx, v); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return v, nil
}

type SeatSpec struct {
	Position       domain.SeatPosition
	Accessible     bool
	RestrictedView bool
	PriceCategory  string
}

// CreateSeats inserts a batch of seats for a venue. Positions must be unique
// within the venue; a duplicate fails the whole batch.
func (s *Service) CreateSeats(ctx context.Context, venueID int64, specs []SeatSpec) ([]*domain.Seat, error) {
	const op = "service.inventory.CreateSeats"

	if _, err := s.store.GetVenue(ctx, venueID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s:%w", op, ErrVenueNotFound)
		}
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	now := s.clk.Now()
	seats := make([]*domain.Seat, 0, len(specs))
	for _, spec := range specs {
		seat, err := domain.NewSeat(venueID, spec.Position, now)
		if err != nil {
			return nil, fmt.Errorf("%s:%w", op, err)
		}
		seat.Accessible = spec.Accessible
		seat.RestrictedView = spec.RestrictedView
		seat.PriceCategory = spec.PriceCategory
		seats = append(seats, seat)
	}

	if err := s.store.CreateSeats(ctx, seats); err != nil {
		if errors.Is(err, repository.ErrDuplicateSeat) {
			return nil, fmt.Errorf("%s:%w", op, ErrSeatConflict)
		}
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return seats, nil
}

func (s *Service) CreateEvent(ctx context.Context, venueID int64, title string, starts, ends time.Time) (*domain.Event, error) {
	const op = "service.inventory.CreateEvent"

	e, err := domain.NewEvent(venueID, title, starts, ends, s.clk.Now())
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if err := s.store.CreateEvent(ctx, e); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s:%w", op, ErrVenueNotFound)
		}
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return e, nil
}

// PublishEvent opens an event for sale. An event with no ticket types cannot
// be published.
func (s *Service) PublishEvent(ctx context.Context, eventID int64) (*domain.Event, error) {
	const op = "service.inventory.PublishEvent"

	tts, err := s.store.ListTicketTypes(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}
	if len(tts) == 0 {
		return nil, fmt.Errorf("%s:%w", op, ErrNoTicketTypes)
	}

	var e *domain.Event
	err = retry.Do(ctx, s.retry, func(ctx context.Context) error {
		cur, err := s.store.GetEvent(ctx, eventID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return retry.Permanent{Err: ErrEventNotFound}
			}
			return retry.Permanent{Err: err}
		}
		if cur.Published {
			e = cur
			return nil
		}
		prev := cur.Version
		cur.Publish(s.clk.Now())
		if err := s.store.SaveEvent(ctx, cur, prev); err != nil {
			if errors.Is(err, repository.ErrVersionConflict) {
				return err
			}
			return retry.Permanent{Err: err}
		}
		e = cur
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateRetryErr(err))
	}

	return e, nil
}

type TicketTypeInput struct {
	EventID       int64
	Code          string
	Name          string
	Price         domain.Money
	Inventory     domain.InventoryType
	TotalCapacity int
}

// CreateTicketType adds an inventory pool to an unpublished event. Once the
// event is live the sale structure is frozen; only capacity, windows and
// limits remain adjustable.
func (s *Service) CreateTicketType(ctx context.Context, in TicketTypeInput) (*domain.TicketType, error) {
	const op = "service.inventory.CreateTicketType"

	event, err := s.store.GetEvent(ctx, in.EventID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s:%w", op, ErrEventNotFound)
		}
		return nil, fmt.Errorf("%s:%w", op, err)
	}
	if event.Published {
		return nil, fmt.Errorf("%s:%w", op, ErrEventPublished)
	}

	tt, err := domain.NewTicketType(in.EventID, in.Code, in.Name, in.Inventory, in.TotalCapacity, s.clk.Now())
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}
	tt.Price = in.Price

	if err := s.store.CreateTicketType(ctx, tt); err != nil {
		if errors.Is(err, repository.ErrDuplicateCode) {
			return nil, fmt.Errorf("%s:%w", op, ErrTicketTypeConflict)
		}
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return tt, nil
}

func (s *Service) AddOnSaleWindow(ctx context.Context, ttID int64, window domain.TimeRange) (*domain.TicketType, error) {
	const op = "service.inventory.AddOnSaleWindow"

	tt, err := s.casTicketType(ctx, ttID, func(tt *domain.TicketType) error {
		return tt.AddOnSaleWindow(window, s.clk.Now())
	})
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	s.invalidate(ctx, tt.EventID, ttID)

	return tt, nil
}

func (s *Service) SetPurchaseLimits(ctx context.Context, ttID int64, minPerOrder, maxPerOrder, maxPerBuyer int) (*domain.TicketType, error) {
	const op = "service.inventory.SetPurchaseLimits"

	tt, err := s.casTicketType(ctx, ttID, func(tt *domain.TicketType) error {
		return tt.SetPurchaseLimits(minPerOrder, maxPerOrder, maxPerBuyer, s.clk.Now())
	})
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return tt, nil
}

// AdjustCapacity resizes a general-admission pool. Shrinking below the
// currently reserved count fails; sold or held tickets are never revoked.
func (s *Service) AdjustCapacity(ctx context.Context, ttID int64, newTotal int) (*domain.TicketType, error) {
	const op = "service.inventory.AdjustCapacity"

	tt, err := s.casTicketType(ctx, ttID, func(tt *domain.TicketType) error {
		return tt.AdjustTotalCapacity(newTotal, s.clk.Now())
	})
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	s.invalidate(ctx, tt.EventID, ttID)

	return tt, nil
}

// AssignSeatsToTicketType binds available seats to a reserved-seating pool so
// they sell at its price and count toward its availability.
func (s *Service) AssignSeatsToTicketType(ctx context.Context, ttID int64, seatIDs []int64) error {
	const op = "service.inventory.AssignSeatsToTicketType"

	tt, err := s.store.GetTicketType(ctx, ttID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%s:%w", op, ErrTicketTypeNotFound)
		}
		return fmt.Errorf("%s:%w", op, err)
	}
	if tt.Inventory != domain.ReservedSeating {
		return fmt.Errorf("%s: ticket type %q is not reserved seating: %w", op, tt.Code, domain.ErrInvalidInput)
	}

	for _, seatID := range seatIDs {
		err := s.casSeat(ctx, seatID, func(seat *domain.Seat) error {
			if seat.Status != domain.SeatAvailable {
				return ErrSeatNotAvailable
			}
			id := ttID
			seat.TicketTypeID = &id
			seat.Touch(s.clk.Now())
			return nil
		})
		if err != nil {
			return fmt.Errorf("%s: seat %d: %w", op, seatID, err)
		}
	}

	s.invalidate(ctx, tt.EventID, ttID)

	return nil
}

func (s *Service) BlockSeat(ctx context.Context, seatID int64) error {
	const op = "service.inventory.BlockSeat"

	if err := s.casSeat(ctx, seatID, func(seat *domain.Seat) error {
		return seat.Block(s.clk.Now())
	}); err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}

func (s *Service) UnblockSeat(ctx context.Context, seatID int64) error {
	const op = "service.inventory.UnblockSeat"

	if err := s.casSeat(ctx, seatID, func(seat *domain.Seat) error {
		return seat.Unblock(s.clk.Now())
	}); err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}

type AllocationInput struct {
	EventID        int64
	TicketTypeID   *int64
	Name           string
	TotalQuantity  int
	AccessCode     string
	AllowedUserIDs []int64
	AllowedDomains []string
	AvailableFrom  *time.Time
	AvailableUntil *time.Time
	ExpiresAt      *time.Time
}

func (s *Service) CreateAllocation(ctx context.Context, in AllocationInput) (*domain.Allocation, error) {
	const op = "service.inventory.CreateAllocation"

	a, err := domain.NewAllocation(in.EventID, in.Name, in.TotalQuantity, s.clk.Now())
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}
	a.TicketTypeID = in.TicketTypeID
	a.AccessCode = in.AccessCode
	a.AllowedUserIDs = in.AllowedUserIDs
	a.AllowedDomains = in.AllowedDomains
	a.AvailableFrom = in.AvailableFrom
	a.AvailableUntil = in.AvailableUntil
	a.ExpiresAt = in.ExpiresAt

	if err := s.store.CreateAllocation(ctx, a); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s:%w", op, ErrEventNotFound)
		}
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return a, nil
}

// AllocateSeats carves specific seats into an allocation. The seats must
// exist and be available; carving beyond the allocation's total fails with
// nothing applied.
func (s *Service) AllocateSeats(ctx context.Context, allocID int64, seatIDs []int64) (*domain.Allocation, error) {
	const op = "service.inventory.AllocateSeats"

	for _, seatID := range seatIDs {
		seat, err := s.store.GetSeat(ctx, seatID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("%s: seat %d: %w", op, seatID, ErrSeatNotFound)
			}
			return nil, fmt.Errorf("%s:%w", op, err)
		}
		if seat.Status != domain.SeatAvailable {
			return nil, fmt.Errorf("%s: seat %d: %w", op, seatID, ErrSeatNotAvailable)
		}
	}

	a, err := s.casAllocation(ctx, allocID, func(a *domain.Allocation) error {
		return a.AllocateSeats(seatIDs, s.clk.Now())
	})
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return a, nil
}

// AdjustAllocation resizes a carve-out. Shrinking releases the oldest-added
// seats beyond the new total back to the public pool; shrinking below the
// used quantity fails.
func (s *Service) AdjustAllocation(ctx context.Context, allocID int64, newTotal int) (*domain.Allocation, []int64, error) {
	const op = "service.inventory.AdjustAllocation"

	var released []int64
	a, err := s.casAllocation(ctx, allocID, func(a *domain.Allocation) error {
		ids, err := a.AdjustTotalQuantity(newTotal, s.clk.Now())
		if err != nil {
			return err
		}
		released = ids
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%s:%w", op, err)
	}

	return a, released, nil
}

func (s *Service) DeactivateAllocation(ctx context.Context, allocID int64) (*domain.Allocation, error) {
	const op = "service.inventory.DeactivateAllocation"

	a, err := s.casAllocation(ctx, allocID, func(a *domain.Allocation) error {
		a.Deactivate(s.clk.Now())
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return a, nil
}

func (s *Service) casTicketType(ctx context.Context, id int64, mutate func(*domain.TicketType) error) (*domain.TicketType, error) {
	var out *domain.TicketType
	err := retry.Do(ctx, s.retry, func(ctx context.Context) error {
		tt, err := s.store.GetTicketType(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return retry.Permanent{Err: ErrTicketTypeNotFound}
			}
			return retry.Permanent{Err: err}
		}
		prev := tt.Version
		if err := mutate(tt); err != nil {
			return retry.Permanent{Err: err}
		}
		if err := s.store.SaveTicketType(ctx, tt, prev); err != nil {
			if errors.Is(err, repository.ErrVersionConflict) {
				return err
			}
			return retry.Permanent{Err: err}
		}
		out = tt
		return nil
	})
	return out, translateRetryErr(err)
}

func (s *Service) casSeat(ctx context.Context, id int64, mutate func(*domain.Seat) error) error {
	err := retry.Do(ctx, s.retry, func(ctx context.Context) error {
		seat, err := s.store.GetSeat(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return retry.Permanent{Err: ErrSeatNotFound}
			}
			return retry.Permanent{Err: err}
		}
		prev := seat.Version
		if err := mutate(seat); err != nil {
			return retry.Permanent{Err: err}
		}
		if err := s.store.SaveSeat(ctx, seat, prev); err != nil {
			if errors.Is(err, repository.ErrVersionConflict) {
				return err
			}
			return retry.Permanent{Err: err}
		}
		return nil
	})
	return translateRetryErr(err)
}

func (s *Service) casAllocation(ctx context.Context, id int64, mutate func(*domain.Allocation) error) (*domain.Allocation, error) {
	var out *domain.Allocation
	err := retry.Do(ctx, s.retry, func(ctx context.Context) error {
		a, err := s.store.GetAllocation(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return retry.Permanent{Err: ErrAllocationNotFound}
			}
			return retry.Permanent{Err: err}
		}
		prev := a.Version
		if err := mutate(a); err != nil {
			return retry.Permanent{Err: err}
		}
		if err := s.store.SaveAllocation(ctx, a, prev); err != nil {
			if errors.Is(err, repository.ErrVersionConflict) {
				return err
			}
			return retry.Permanent{Err: err}
		}
		out = a
		return nil
	})
	return out, translateRetryErr(err)
}

func (s *Service) invalidate(ctx context.Context, eventID, ttID int64) {
	if s.cache != nil {
		_ = s.cache.InvalidateAvailability(ctx, eventID, ttID)
	}
	if s.pubsub != nil {
		_ = s.pubsub.PublishInventoryChanged(ctx, eventID, ttID)
	}
}

func translateRetryErr(err error) error {
	if errors.Is(err, retry.ErrAttemptsExhausted) {
		return ErrConflict
	}
	return err
}
