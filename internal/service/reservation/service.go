// Package reservation orchestrates the reservation lifecycle: creating
// time-bounded holds against shared inventory, confirming them into sales and
// returning everything to the pool on cancel or expiry.
//
// Cross-aggregate writes never share one transaction. Each aggregate is saved
// with a version check; the seat lock serializes writers per seat, and
// partially applied inventory is compensated on failure. The TTL on the seat
// lock only covers crashed instances.
package reservation

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/resv-go/internal/clock"
	"github.com/kirinyoku/resv-go/internal/domain"
	"github.com/kirinyoku/resv-go/internal/lock"
	"github.com/kirinyoku/resv-go/internal/pricing"
	redisx "github.com/kirinyoku/resv-go/internal/redis"
	"github.com/kirinyoku/resv-go/internal/repository"
	redisrepo "github.com/kirinyoku/resv-go/internal/repository/redis"
	"github.com/kirinyoku/resv-go/internal/retry"
)

type Config struct {
	DefaultHoldTTL time.Duration
	MinHoldTTL     time.Duration
	MaxHoldTTL     time.Duration
	// LockGrace is added to the hold TTL when acquiring seat locks, so the
	// lock always outlives the hold it protects.
	LockGrace time.Duration
	Retry     retry.Config
}

type Service struct {
	store   repository.Store
	locker  lock.SeatLocker
	pricer  pricing.Pricer
	clk     clock.Clock
	cache   *redisrepo.Cache
	pubsub  *redisx.InventoryPubSub
	limiter *redisrepo.SlidingWindowLimiter
	cfg     Config
}

func New(
	store repository.Store,
	locker lock.SeatLocker,
	pricer pricing.Pricer,
	clk clock.Clock,
	cache *redisrepo.Cache,
	pubsub *redisx.InventoryPubSub,
	limiter *redisrepo.SlidingWindowLimiter,
	cfg Config,
) *Service {
	if cfg.MinHoldTTL <= 0 {
		cfg.MinHoldTTL = time.Minute
	}

	if cfg.MaxHoldTTL <= 0 || cfg.MaxHoldTTL < cfg.MinHoldTTL {
		cfg.MaxHoldTTL = 30 * time.Minute
	}

	if cfg.DefaultHoldTTL <= 0 {
		cfg.DefaultHoldTTL = 10 * time.Minute
	}

	if cfg.LockGrace <= 0 {
		cfg.LockGrace = 30 * time.Second
	}

	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry = retry.DefaultConfig()
	}

	return &Service{
		store:   store,
		locker:  locker,
		pricer:  pricer,
		clk:     clk,
		cache:   cache,
		pubsub:  pubsub,
		limiter: limiter,
		cfg:     cfg,
	}
}

// ItemInput is one requested line: a quantity against a general-admission
// ticket type, or a single specific seat. AllocationID draws the line from a
// carve-out instead of the public pool.
type ItemInput struct {
	TicketTypeID int64
	SeatID       *int64
	Quantity     int
	AllocationID *int64
}

type CreateInput struct {
	UserID       int64
	EventID      int64
	Email        string
	HoldTTL      time.Duration
	DiscountCode string
	AccessCode   string
	Items        []ItemInput
	RateLimitKey string
}

// Create reserves inventory for every requested item and returns the active
// reservation. All-or-nothing: if any line cannot be satisfied, everything
// already applied is compensated and the request fails.
//
// Returns:
//   - error: reservation.ErrSeatsUnavailable if a seat is taken or locked.
//   - error: reservation.ErrSoldOut if general-admission capacity is short.
//   - error: reservation.ErrNotOnSale, ErrQuantityLimit, ErrBuyerLimit,
//     ErrAllocationDenied on the corresponding gate.
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Reservation, error) {
	const op = "service.reservation.Create"

	if len(in.Items) == 0 {
		return nil, fmt.Errorf("%s: no items requested: %w", op, domain.ErrInvalidInput)
	}

	if s.limiter != nil && in.RateLimitKey != "" {
		ok, _, retryAfter, err := s.limiter.Allow(ctx, in.RateLimitKey)
		if err != nil {
			return nil, fmt.Errorf("%s:%w", op, err)
		}
		if !ok {
			return nil, fmt.Errorf("%s: retry in %s: %w", op, retryAfter, ErrRateLimited)
		}
	}

	event, err := s.store.GetEvent(ctx, in.EventID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s:%w", op, ErrEventNotFound)
		}
		return nil, fmt.Errorf("%s:%w", op, err)
	}
	if !event.Published {
		return nil, fmt.Errorf("%s:%w", op, ErrEventNotPublished)
	}

	now := s.clk.Now()
	ttl := s.clampTTL(in.HoldTTL)
	expiresAt := now.Add(ttl)

	r, err := domain.NewReservation(in.EventID, in.UserID, newNumber(), expiresAt, now)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	types, err := s.gateItems(ctx, in, now)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	for _, it := range in.Items {
		qty := it.Quantity
		if it.SeatID != nil {
			qty = 1
		}
		if err := r.AddItem(it.TicketTypeID, it.SeatID, types[it.TicketTypeID].Price, qty, now); err != nil {
			return nil, fmt.Errorf("%s:%w", op, err)
		}
	}
	s.markAllocations(r, in.Items)

	if err := s.applyInventory(ctx, r, event, in, ttl, now); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	quote, err := s.pricer.PriceItems(ctx, in.EventID, r.Items, in.DiscountCode)
	if err == nil {
		err = r.ApplyPricing(quote.Subtotal, quote.Discount, quote.Total, in.DiscountCode, now)
	}
	if err == nil {
		err = s.store.CreateReservation(ctx, r)
	}
	if err != nil {
		s.releaseInventory(ctx, r)
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	s.notifyChanged(ctx, r)

	return r, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.Reservation, error) {
	const op = "service.reservation.Get"

	r, err := s.store.GetReservation(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s:%w", op, ErrReservationNotFound)
		}
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return r, nil
}

// Confirm finalizes an active reservation into a sale. An active reservation
// past its expiry is expired on the spot and the confirm fails; the window is
// authoritative even before the sweep has run.
func (s *Service) Confirm(ctx context.Context, id uuid.UUID) (*domain.Reservation, error) {
	const op = "service.reservation.Confirm"

	r, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.clk.Now()
	if r.Status == domain.ReservationActive && r.IsExpired(now) {
		s.expireOne(ctx, r)
		return nil, fmt.Errorf("%s:%w", op, ErrReservationExpired)
	}
	if r.Status != domain.ReservationActive {
		return nil, fmt.Errorf("%s: reservation is %s: %w", op, r.Status, ErrNotActive)
	}

	// seats first: the reservation flips only after every seat is secured
	seatIDs := r.SeatIDs()
	confirmed := make([]int64, 0, len(seatIDs))
	for _, seatID := range seatIDs {
		if err := s.confirmSeat(ctx, seatID, r.ID, now); err != nil {
			s.unconfirmSeats(ctx, confirmed, r)
			return nil, fmt.Errorf("%s:%w", op, err)
		}
		confirmed = append(confirmed, seatID)
	}

	err = retry.Do(ctx, s.cfg.Retry, func(ctx context.Context) error {
		cur, err := s.store.GetReservation(ctx, id)
		if err != nil {
			return retry.Permanent{Err: err}
		}
		prev := cur.Version
		if _, err := cur.Confirm(s.clk.Now()); err != nil {
			return retry.Permanent{Err: err}
		}
		if err := s.store.SaveReservation(ctx, cur, prev); err != nil {
			if errors.Is(err, repository.ErrVersionConflict) {
				return err
			}
			return retry.Permanent{Err: err}
		}
		r = cur
		return nil
	})
	if err != nil {
		// leave the seats confirmed when a concurrent caller won the
		// confirmation; roll them back in every other failure
		if cur, gerr := s.store.GetReservation(ctx, id); gerr != nil || cur.Status != domain.ReservationConfirmed {
			s.unconfirmSeats(ctx, confirmed, r)
		}
		return nil, fmt.Errorf("%s:%w", op, translateDomainErr(err))
	}

	s.releaseLocks(ctx, r)
	s.notifyChanged(ctx, r)

	return r, nil
}

// Cancel releases an active reservation's inventory. Cancelling an already
// cancelled reservation is a no-op; a confirmed or expired one fails.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, reason string) (*domain.Reservation, error) {
	const op = "service.reservation.Cancel"

	var r *domain.Reservation
	var changed bool

	err := retry.Do(ctx, s.cfg.Retry, func(ctx context.Context) error {
		cur, err := s.store.GetReservation(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return retry.Permanent{Err: ErrReservationNotFound}
			}
			return retry.Permanent{Err: err}
		}
		prev := cur.Version
		events, err := cur.Cancel(reason, s.clk.Now())
		if err != nil {
			return retry.Permanent{Err: err}
		}
		if len(events) == 0 {
			// already cancelled
			r, changed = cur, false
			return nil
		}
		if err := s.store.SaveReservation(ctx, cur, prev); err != nil {
			if errors.Is(err, repository.ErrVersionConflict) {
				return err
			}
			return retry.Permanent{Err: err}
		}
		r, changed = cur, true
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDomainErr(err))
	}

	// the CAS above means exactly one caller gets here for a given cancel
	if changed {
		s.releaseInventory(ctx, r)
		s.notifyChanged(ctx, r)
	}

	return r, nil
}

// ExpireDue transitions every active reservation past its expiry and returns
// the inventory to the pool. Racing sweeps are safe: the version check lets
// only one instance win each reservation.
func (s *Service) ExpireDue(ctx context.Context, limit int) (int, error) {
	const op = "service.reservation.ExpireDue"

	due, err := s.store.ListDueReservations(ctx, s.clk.Now(), limit)
	if err != nil {
		return 0, fmt.Errorf("%s:%w", op, err)
	}

	expired := 0
	for _, r := range due {
		if ctx.Err() != nil {
			return expired, ctx.Err()
		}
		if s.expireOne(ctx, r) {
			expired++
		}
	}

	return expired, nil
}

// expireOne flips a single reservation to expired and releases what it held.
// Reports false when another writer got there first.
func (s *Service) expireOne(ctx context.Context, r *domain.Reservation) bool {
	prev := r.Version
	_, ok := r.Expire(s.clk.Now())
	if !ok {
		return false
	}
	if err := s.store.SaveReservation(ctx, r, prev); err != nil {
		return false
	}

	s.releaseInventory(ctx, r)
	s.notifyChanged(ctx, r)
	return true
}

// gateItems loads the referenced ticket types and checks every sale gate that
// does not consume inventory: on-sale window, purchase limits, per-buyer
// limits and allocation access.
func (s *Service) gateItems(ctx context.Context, in CreateInput, now time.Time) (map[int64]*domain.TicketType, error) {
	types := make(map[int64]*domain.TicketType)
	gaQty := make(map[int64]int)

	for _, it := range in.Items {
		if _, ok := types[it.TicketTypeID]; !ok {
			tt, err := s.store.GetTicketType(ctx, it.TicketTypeID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return nil, ErrTicketTypeNotFound
				}
				return nil, err
			}
			if tt.EventID != in.EventID {
				return nil, ErrTicketTypeNotFound
			}
			types[it.TicketTypeID] = tt
		}

		tt := types[it.TicketTypeID]
		if it.SeatID != nil && tt.Inventory != domain.ReservedSeating {
			return nil, fmt.Errorf("seat item on %q: %w", tt.Code, domain.ErrInvalidInput)
		}
		if it.SeatID == nil && tt.Inventory != domain.GeneralAdmission {
			return nil, fmt.Errorf("quantity item on %q: %w", tt.Code, domain.ErrInvalidInput)
		}

		if it.AllocationID != nil {
			if err := s.checkAllocationAccess(ctx, *it.AllocationID, in, now); err != nil {
				return nil, err
			}
		} else if !types[it.TicketTypeID].IsOnSale(now) {
			return nil, ErrNotOnSale
		}

		if it.SeatID == nil {
			gaQty[it.TicketTypeID] += it.Quantity
		}
	}

	for ttID, qty := range gaQty {
		tt := types[ttID]
		if err := tt.ValidateQuantity(qty); err != nil {
			return nil, ErrQuantityLimit
		}
		if tt.MaxPerBuyer > 0 {
			held, err := s.store.CountActiveByBuyer(ctx, in.EventID, in.UserID, ttID)
			if err != nil {
				return nil, err
			}
			if held+qty > tt.MaxPerBuyer {
				return nil, ErrBuyerLimit
			}
		}
	}

	return types, nil
}

func (s *Service) checkAllocationAccess(ctx context.Context, allocID int64, in CreateInput, now time.Time) error {
	a, err := s.store.GetAllocation(ctx, allocID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAllocationDenied
		}
		return err
	}
	if a.EventID != in.EventID || !a.IsAvailableNow(now) || !a.CanAccess(in.AccessCode, in.UserID, in.Email) {
		return ErrAllocationDenied
	}
	return nil
}

// applyInventory consumes capacity, allocation quantity and seats for the
// reservation, compensating everything already applied on the first failure.
func (s *Service) applyInventory(ctx context.Context, r *domain.Reservation, event *domain.Event, in CreateInput, ttl time.Duration, now time.Time) error {
	var undo []func()

	fail := func(err error) error {
		for i := len(undo) - 1; i >= 0; i-- {
			undo[i]()
		}
		return err
	}

	for ttID, qty := range r.GeneralAdmissionQuantities() {
		if err := s.reserveCapacity(ctx, ttID, qty); err != nil {
			return fail(err)
		}
		ttID, qty := ttID, qty
		undo = append(undo, func() { s.releaseCapacity(ctx, ttID, qty) })
	}

	for _, it := range r.Items {
		if it.AllocationID == nil {
			continue
		}
		if err := s.useAllocation(ctx, *it.AllocationID, it.Quantity); err != nil {
			return fail(err)
		}
		allocID, qty := *it.AllocationID, it.Quantity
		undo = append(undo, func() { s.releaseAllocation(ctx, allocID, qty) })
	}

	seatIDs := r.SeatIDs()
	if len(seatIDs) == 0 {
		return nil
	}

	sort.Slice(seatIDs, func(i, j int) bool { return seatIDs[i] < seatIDs[j] })
	holder := r.ID.String()

	locked, err := s.locker.TryLockSeats(ctx, seatIDs, holder, ttl+s.cfg.LockGrace)
	if err != nil {
		return fail(err)
	}
	if !locked {
		return fail(ErrSeatsUnavailable)
	}
	undo = append(undo, func() { _ = s.locker.ReleaseSeatLocks(ctx, seatIDs, holder) })

	for _, seatID := range seatIDs {
		if err := s.reserveSeat(ctx, seatID, r, event, now); err != nil {
			return fail(err)
		}
		seatID := seatID
		undo = append(undo, func() { s.releaseSeat(ctx, seatID, r.ID) })
	}

	return nil
}

func (s *Service) reserveCapacity(ctx context.Context, ttID int64, qty int) error {
	return s.casTicketType(ctx, ttID, func(tt *domain.TicketType) error {
		if err := tt.ReserveCapacity(qty, s.clk.Now()); err != nil {
			if errors.Is(err, domain.ErrCapacityExceeded) {
				return ErrSoldOut
			}
			return err
		}
		return nil
	})
}

func (s *Service) releaseCapacity(ctx context.Context, ttID int64, qty int) {
	_ = s.casTicketType(ctx, ttID, func(tt *domain.TicketType) error {
		tt.ReleaseCapacity(qty, s.clk.Now())
		return nil
	})
}

func (s *Service) useAllocation(ctx context.Context, allocID int64, qty int) error {
	return s.casAllocation(ctx, allocID, func(a *domain.Allocation) error {
		if err := a.UseQuantity(qty, s.clk.Now()); err != nil {
			if errors.Is(err, domain.ErrCapacityExceeded) {
				return ErrSoldOut
			}
			return err
		}
		return nil
	})
}

func (s *Service) releaseAllocation(ctx context.Context, allocID int64, qty int) {
	_ = s.casAllocation(ctx, allocID, func(a *domain.Allocation) error {
		a.ReleaseUsedQuantity(qty, s.clk.Now())
		return nil
	})
}

func (s *Service) reserveSeat(ctx context.Context, seatID int64, r *domain.Reservation, event *domain.Event, now time.Time) error {
	ttBySeat := make(map[int64]int64)
	for _, it := range r.Items {
		if it.SeatID != nil {
			ttBySeat[*it.SeatID] = it.TicketTypeID
		}
	}

	return s.casSeat(ctx, seatID, func(seat *domain.Seat) error {
		if seat.VenueID != event.VenueID {
			return ErrSeatsUnavailable
		}
		if seat.TicketTypeID != nil && *seat.TicketTypeID != ttBySeat[seatID] {
			return ErrSeatsUnavailable
		}
		if err := seat.Reserve(r.ID, r.ExpiresAt, now); err != nil {
			if errors.Is(err, domain.ErrSeatNotAvailable) {
				return ErrSeatsUnavailable
			}
			return err
		}
		return nil
	})
}

func (s *Service) releaseSeat(ctx context.Context, seatID int64, holder uuid.UUID) {
	_ = s.casSeat(ctx, seatID, func(seat *domain.Seat) error {
		if !seat.HeldBy(holder) {
			return errSkipSave
		}
		seat.Release(s.clk.Now())
		return nil
	})
}

func (s *Service) confirmSeat(ctx context.Context, seatID int64, holder uuid.UUID, now time.Time) error {
	return s.casSeat(ctx, seatID, func(seat *domain.Seat) error {
		if seat.Status == domain.SeatConfirmed && seat.HolderID == holder {
			return errSkipSave
		}
		if err := seat.Confirm(holder, now); err != nil {
			// the seat slipped away, e.g. released by a racing sweep
			return ErrSeatsUnavailable
		}
		return nil
	})
}

// unconfirmSeats returns seats confirmed during a failed confirmation to
// reserved under the original hold expiry, so the reservation's cancel or
// the expiration sweep can still reclaim them.
func (s *Service) unconfirmSeats(ctx context.Context, seatIDs []int64, r *domain.Reservation) {
	for _, seatID := range seatIDs {
		_ = s.casSeat(ctx, seatID, func(seat *domain.Seat) error {
			if seat.Status != domain.SeatConfirmed || seat.HolderID != r.ID {
				return errSkipSave
			}
			return seat.Unconfirm(r.ID, r.ExpiresAt, s.clk.Now())
		})
	}
}

// errSkipSave aborts a CAS loop whose mutation turned out to be a no-op.
var errSkipSave = errors.New("skip save")

func (s *Service) casTicketType(ctx context.Context, id int64, mutate func(*domain.TicketType) error) error {
	return casLoop(ctx, s.cfg.Retry,
		func(ctx context.Context) (*domain.TicketType, int64, error) {
			tt, err := s.store.GetTicketType(ctx, id)
			if err != nil {
				return nil, 0, err
			}
			return tt, tt.Version, nil
		},
		mutate,
		func(ctx context.Context, tt *domain.TicketType, prev int64) error {
			return s.store.SaveTicketType(ctx, tt, prev)
		},
	)
}

func (s *Service) casAllocation(ctx context.Context, id int64, mutate func(*domain.Allocation) error) error {
	return casLoop(ctx, s.cfg.Retry,
		func(ctx context.Context) (*domain.Allocation, int64, error) {
			a, err := s.store.GetAllocation(ctx, id)
			if err != nil {
				return nil, 0, err
			}
			return a, a.Version, nil
		},
		mutate,
		func(ctx context.Context, a *domain.Allocation, prev int64) error {
			return s.store.SaveAllocation(ctx, a, prev)
		},
	)
}

func (s *Service) casSeat(ctx context.Context, id int64, mutate func(*domain.Seat) error) error {
	return casLoop(ctx, s.cfg.Retry,
		func(ctx context.Context) (*domain.Seat, int64, error) {
			seat, err := s.store.GetSeat(ctx, id)
			if err != nil {
				return nil, 0, err
			}
			return seat, seat.Version, nil
		},
		mutate,
		func(ctx context.Context, seat *domain.Seat, prev int64) error {
			return s.store.SaveSeat(ctx, seat, prev)
		},
	)
}

// casLoop is one bounded read-mutate-save round trip: reload on version
// conflict, stop on anything else.
func casLoop[T any](
	ctx context.Context,
	cfg retry.Config,
	load func(ctx context.Context) (T, int64, error),
	mutate func(T) error,
	save func(ctx context.Context, v T, prev int64) error,
) error {
	return retry.Do(ctx, cfg, func(ctx context.Context) error {
		v, prev, err := load(ctx)
		if err != nil {
			return retry.Permanent{Err: err}
		}
		if err := mutate(v); err != nil {
			if errors.Is(err, errSkipSave) {
				return nil
			}
			return retry.Permanent{Err: err}
		}
		if err := save(ctx, v, prev); err != nil {
			if errors.Is(err, repository.ErrVersionConflict) {
				return err
			}
			return retry.Permanent{Err: err}
		}
		return nil
	})
}

// releaseInventory returns everything a no-longer-active reservation held.
// Every step is idempotent, so a crash halfway is repaired by rerunning.
func (s *Service) releaseInventory(ctx context.Context, r *domain.Reservation) {
	for _, seatID := range r.SeatIDs() {
		s.releaseSeat(ctx, seatID, r.ID)
	}

	for ttID, qty := range r.GeneralAdmissionQuantities() {
		s.releaseCapacity(ctx, ttID, qty)
	}

	for _, it := range r.Items {
		if it.AllocationID != nil {
			s.releaseAllocation(ctx, *it.AllocationID, it.Quantity)
		}
	}

	s.releaseLocks(ctx, r)
}

func (s *Service) releaseLocks(ctx context.Context, r *domain.Reservation) {
	if ids := r.SeatIDs(); len(ids) > 0 {
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		_ = s.locker.ReleaseSeatLocks(ctx, ids, r.ID.String())
	}
}

func (s *Service) notifyChanged(ctx context.Context, r *domain.Reservation) {
	seen := make(map[int64]struct{})
	var ttIDs []int64
	for _, it := range r.Items {
		if _, ok := seen[it.TicketTypeID]; !ok {
			seen[it.TicketTypeID] = struct{}{}
			ttIDs = append(ttIDs, it.TicketTypeID)
		}
	}

	if s.cache != nil {
		_ = s.cache.InvalidateAvailability(ctx, r.EventID, ttIDs...)
	}
	if s.pubsub != nil {
		for _, ttID := range ttIDs {
			_ = s.pubsub.PublishInventoryChanged(ctx, r.EventID, ttID)
		}
	}
}

func (s *Service) markAllocations(r *domain.Reservation, items []ItemInput) {
	for _, in := range items {
		if in.AllocationID == nil {
			continue
		}
		for i := range r.Items {
			if r.Items[i].TicketTypeID == in.TicketTypeID && sameSeat(r.Items[i].SeatID, in.SeatID) {
				id := *in.AllocationID
				r.Items[i].AllocationID = &id
			}
		}
	}
}

func sameSeat(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func translateDomainErr(err error) error {
	switch {
	case errors.Is(err, domain.ErrExpired):
		return ErrReservationExpired
	case errors.Is(err, domain.ErrInvalidStateTransition):
		return ErrNotActive
	case errors.Is(err, retry.ErrAttemptsExhausted):
		return ErrConflict
	default:
		return err
	}
}

func (s *Service) clampTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return s.cfg.DefaultHoldTTL
	}

	if ttl < s.cfg.MinHoldTTL {
		return s.cfg.MinHoldTTL
	}

	if ttl > s.cfg.MaxHoldTTL {
		return s.cfg.MaxHoldTTL
	}

	return ttl
}

func newNumber() string {
	b := make([]byte, 5)
	_, _ = rand.Read(b)
	return "R-" + strings.ToUpper(hex.EncodeToString(b))
}
