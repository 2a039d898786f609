package reservation_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kirinyoku/resv-go/internal/clock"
	"github.com/kirinyoku/resv-go/internal/domain"
	"github.com/kirinyoku/resv-go/internal/lock"
	"github.com/kirinyoku/resv-go/internal/pricing"
	"github.com/kirinyoku/resv-go/internal/repository/memory"
	"github.com/kirinyoku/resv-go/internal/retry"
	"github.com/kirinyoku/resv-go/internal/service/reservation"
)

var base = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	store  *memory.Store
	clk    *clock.Fake
	locker *lock.MemoryLocker
	svc    *reservation.Service

	event *domain.Event
	ga    *domain.TicketType
	rs    *domain.TicketType
	seats []*domain.Seat
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	f := &fixture{
		store: memory.NewStore(),
		clk:   clock.NewFake(base),
	}
	f.locker = lock.NewMemoryLocker().WithNow(f.clk.Now)

	pricer := pricing.NewStaticPricer(map[string]domain.Money{"SAVE5": 500})
	f.svc = reservation.New(f.store, f.locker, pricer, f.clk, nil, nil, nil, reservation.Config{
		Retry: retry.Config{MaxAttempts: 50, BaseDelay: time.Microsecond, MaxDelay: time.Microsecond},
	})

	venue := &domain.Venue{Entity: domain.Entity{CreatedAt: base, UpdatedAt: base, Version: 1}, Name: "Hall"}
	require.NoError(t, f.store.CreateVenue(ctx, venue))

	var err error
	f.event, err = domain.NewEvent(venue.ID, "Show", base.Add(48*time.Hour), base.Add(51*time.Hour), base)
	require.NoError(t, err)
	f.event.Publish(base)
	require.NoError(t, f.store.CreateEvent(ctx, f.event))

	window := domain.TimeRange{From: base.Add(-time.Hour), Until: base.Add(24 * time.Hour)}

	f.ga, err = domain.NewTicketType(f.event.ID, "ga", "General", domain.GeneralAdmission, 10, base)
	require.NoError(t, err)
	f.ga.Price = 2500
	require.NoError(t, f.ga.AddOnSaleWindow(window, base))
	require.NoError(t, f.store.CreateTicketType(ctx, f.ga))

	f.rs, err = domain.NewTicketType(f.event.ID, "seats", "Stalls", domain.ReservedSeating, 0, base)
	require.NoError(t, err)
	f.rs.Price = 4000
	require.NoError(t, f.rs.AddOnSaleWindow(window, base))
	require.NoError(t, f.store.CreateTicketType(ctx, f.rs))

	for i := 1; i <= 3; i++ {
		seat, err := domain.NewSeat(venue.ID, domain.SeatPosition{Section: "A", Row: "1", Number: i}, base)
		require.NoError(t, err)
		f.seats = append(f.seats, seat)
	}
	require.NoError(t, f.store.CreateSeats(ctx, f.seats))

	return f
}

func (f *fixture) gaItem(qty int) reservation.ItemInput {
	return reservation.ItemInput{TicketTypeID: f.ga.ID, Quantity: qty}
}

func (f *fixture) seatItem(i int) reservation.ItemInput {
	id := f.seats[i].ID
	return reservation.ItemInput{TicketTypeID: f.rs.ID, SeatID: &id}
}

func (f *fixture) create(t *testing.T, userID int64, items ...reservation.ItemInput) *domain.Reservation {
	t.Helper()
	r, err := f.svc.Create(context.Background(), reservation.CreateInput{
		UserID:  userID,
		EventID: f.event.ID,
		Items:   items,
	})
	require.NoError(t, err)
	return r
}

func (f *fixture) gaReserved(t *testing.T) int {
	t.Helper()
	tt, err := f.store.GetTicketType(context.Background(), f.ga.ID)
	require.NoError(t, err)
	return tt.Capacity.Reserved
}

func (f *fixture) seatState(t *testing.T, i int) *domain.Seat {
	t.Helper()
	seat, err := f.store.GetSeat(context.Background(), f.seats[i].ID)
	require.NoError(t, err)
	return seat
}

func TestCreateGeneralAdmission(t *testing.T) {
	f := newFixture(t)

	r := f.create(t, 7, f.gaItem(3))

	require.Equal(t, domain.ReservationActive, r.Status)
	require.Equal(t, base.Add(10*time.Minute), r.ExpiresAt)
	require.Equal(t, domain.Money(7500), r.Total)
	require.Equal(t, 3, f.gaReserved(t))
}

func TestCreateWithDiscountCode(t *testing.T) {
	f := newFixture(t)

	r, err := f.svc.Create(context.Background(), reservation.CreateInput{
		UserID:       7,
		EventID:      f.event.ID,
		Items:        []reservation.ItemInput{f.gaItem(2)},
		DiscountCode: "save5",
	})
	require.NoError(t, err)
	require.Equal(t, domain.Money(5000), r.Subtotal)
	require.Equal(t, domain.Money(500), r.Discount)
	require.Equal(t, domain.Money(4500), r.Total)
}

func TestCreateGates(t *testing.T) {
	t.Run("unpublished event", func(t *testing.T) {
		f := newFixture(t)
		draft, err := domain.NewEvent(f.event.VenueID, "Draft", base.Add(time.Hour), base.Add(2*time.Hour), base)
		require.NoError(t, err)
		require.NoError(t, f.store.CreateEvent(context.Background(), draft))

		_, err = f.svc.Create(context.Background(), reservation.CreateInput{
			UserID: 7, EventID: draft.ID, Items: []reservation.ItemInput{f.gaItem(1)},
		})
		require.ErrorIs(t, err, reservation.ErrEventNotPublished)
	})

	t.Run("outside on-sale window", func(t *testing.T) {
		f := newFixture(t)
		f.clk.Advance(25 * time.Hour)

		_, err := f.svc.Create(context.Background(), reservation.CreateInput{
			UserID: 7, EventID: f.event.ID, Items: []reservation.ItemInput{f.gaItem(1)},
		})
		require.ErrorIs(t, err, reservation.ErrNotOnSale)
	})

	t.Run("over per-order limit", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.Create(context.Background(), reservation.CreateInput{
			UserID: 7, EventID: f.event.ID, Items: []reservation.ItemInput{f.gaItem(11)},
		})
		require.ErrorIs(t, err, reservation.ErrQuantityLimit)
		require.Equal(t, 0, f.gaReserved(t))
	})

	t.Run("unknown ticket type", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.Create(context.Background(), reservation.CreateInput{
			UserID: 7, EventID: f.event.ID,
			Items: []reservation.ItemInput{{TicketTypeID: 999, Quantity: 1}},
		})
		require.ErrorIs(t, err, reservation.ErrTicketTypeNotFound)
	})
}

func TestCreateBuyerLimit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tt, err := f.store.GetTicketType(ctx, f.ga.ID)
	require.NoError(t, err)
	prev := tt.Version
	require.NoError(t, tt.SetPurchaseLimits(1, 10, 4, base))
	require.NoError(t, f.store.SaveTicketType(ctx, tt, prev))

	f.create(t, 7, f.gaItem(3))

	_, err = f.svc.Create(ctx, reservation.CreateInput{
		UserID: 7, EventID: f.event.ID, Items: []reservation.ItemInput{f.gaItem(2)},
	})
	require.ErrorIs(t, err, reservation.ErrBuyerLimit)

	// the limit is per buyer, another user still buys
	f.create(t, 8, f.gaItem(2))
}

func TestCreateSoldOut(t *testing.T) {
	f := newFixture(t)

	f.create(t, 7, f.gaItem(6))

	_, err := f.svc.Create(context.Background(), reservation.CreateInput{
		UserID: 8, EventID: f.event.ID, Items: []reservation.ItemInput{f.gaItem(6)},
	})
	require.ErrorIs(t, err, reservation.ErrSoldOut)
	require.Equal(t, 6, f.gaReserved(t))
}

func TestCreateReservedSeats(t *testing.T) {
	f := newFixture(t)

	r := f.create(t, 7, f.seatItem(0), f.seatItem(1))

	require.Equal(t, domain.Money(8000), r.Total)
	for i := 0; i < 2; i++ {
		seat := f.seatState(t, i)
		require.Equal(t, domain.SeatReserved, seat.Status)
		require.Equal(t, r.ID, seat.HolderID)
		require.NotNil(t, seat.HeldUntil)
		require.True(t, seat.HeldUntil.Equal(r.ExpiresAt))
	}

	holder, held := f.locker.Held(f.seats[0].ID)
	require.True(t, held)
	require.Equal(t, r.ID.String(), holder)
}

func TestCreateSeatTakenCompensates(t *testing.T) {
	f := newFixture(t)

	f.create(t, 7, f.seatItem(0))

	// second request mixes a free GA line with the taken seat; nothing sticks
	_, err := f.svc.Create(context.Background(), reservation.CreateInput{
		UserID: 8, EventID: f.event.ID,
		Items: []reservation.ItemInput{f.gaItem(2), f.seatItem(0)},
	})
	require.ErrorIs(t, err, reservation.ErrSeatsUnavailable)
	require.Equal(t, 0, f.gaReserved(t))
}

func TestCreateCompensatesOnPricingFailure(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), reservation.CreateInput{
		UserID: 7, EventID: f.event.ID,
		Items:        []reservation.ItemInput{f.gaItem(2), f.seatItem(0)},
		DiscountCode: "NOPE",
	})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	require.Equal(t, 0, f.gaReserved(t))
	require.Equal(t, domain.SeatAvailable, f.seatState(t, 0).Status)
	_, held := f.locker.Held(f.seats[0].ID)
	require.False(t, held)
}

func TestConfirm(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r := f.create(t, 7, f.gaItem(2), f.seatItem(0))

	confirmed, err := f.svc.Confirm(ctx, r.ID)
	require.NoError(t, err)
	require.Equal(t, domain.ReservationConfirmed, confirmed.Status)
	require.NotNil(t, confirmed.ConfirmedAt)

	seat := f.seatState(t, 0)
	require.Equal(t, domain.SeatConfirmed, seat.Status)
	require.Equal(t, r.ID, seat.HolderID)

	_, held := f.locker.Held(f.seats[0].ID)
	require.False(t, held)

	// capacity stays consumed by the sale
	require.Equal(t, 2, f.gaReserved(t))

	_, err = f.svc.Confirm(ctx, r.ID)
	require.ErrorIs(t, err, reservation.ErrNotActive)
}

func TestConfirmExpiredReservation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r := f.create(t, 7, f.gaItem(2), f.seatItem(0))
	f.clk.Advance(11 * time.Minute)

	_, err := f.svc.Confirm(ctx, r.ID)
	require.ErrorIs(t, err, reservation.ErrReservationExpired)

	// the deadline is authoritative: the confirm attempt expired it in place
	stored, err := f.store.GetReservation(ctx, r.ID)
	require.NoError(t, err)
	require.Equal(t, domain.ReservationExpired, stored.Status)
	require.Equal(t, 0, f.gaReserved(t))
	require.Equal(t, domain.SeatAvailable, f.seatState(t, 0).Status)
}

func TestConfirmSeatFailureRollsBackConfirmedSeats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r := f.create(t, 7, f.seatItem(0), f.seatItem(1))

	// the second seat slips away mid-confirmation, as a racing sweep would
	// take it at the expiry boundary
	lost, err := f.store.GetSeat(ctx, f.seats[1].ID)
	require.NoError(t, err)
	prev := lost.Version
	lost.Release(f.clk.Now())
	require.NoError(t, f.store.SaveSeat(ctx, lost, prev))

	_, err = f.svc.Confirm(ctx, r.ID)
	require.ErrorIs(t, err, reservation.ErrSeatsUnavailable)

	// the first seat went through its confirm before the failure; it must be
	// back to reserved for the same holder, not stranded as sold
	seat := f.seatState(t, 0)
	require.Equal(t, domain.SeatReserved, seat.Status)
	require.Equal(t, r.ID, seat.HolderID)
	require.NotNil(t, seat.HeldUntil)
	require.True(t, seat.HeldUntil.Equal(r.ExpiresAt))

	stored, err := f.store.GetReservation(ctx, r.ID)
	require.NoError(t, err)
	require.Equal(t, domain.ReservationActive, stored.Status)

	// and the sweep can still reclaim it
	f.clk.Advance(11 * time.Minute)
	n, err := f.svc.ExpireDue(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, domain.SeatAvailable, f.seatState(t, 0).Status)
}

func TestCancel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r := f.create(t, 7, f.gaItem(3), f.seatItem(1))

	cancelled, err := f.svc.Cancel(ctx, r.ID, "changed my mind")
	require.NoError(t, err)
	require.Equal(t, domain.ReservationCancelled, cancelled.Status)
	require.Equal(t, "changed my mind", cancelled.CancelReason)

	require.Equal(t, 0, f.gaReserved(t))
	require.Equal(t, domain.SeatAvailable, f.seatState(t, 1).Status)
	_, held := f.locker.Held(f.seats[1].ID)
	require.False(t, held)

	// cancelling again is a no-op, not an error
	again, err := f.svc.Cancel(ctx, r.ID, "again")
	require.NoError(t, err)
	require.Equal(t, domain.ReservationCancelled, again.Status)
	require.Equal(t, "changed my mind", again.CancelReason)
}

func TestCancelConfirmedFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r := f.create(t, 7, f.gaItem(1))
	_, err := f.svc.Confirm(ctx, r.ID)
	require.NoError(t, err)

	_, err = f.svc.Cancel(ctx, r.ID, "")
	require.ErrorIs(t, err, reservation.ErrNotActive)
	require.Equal(t, 1, f.gaReserved(t))
}

func TestExpireDue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.create(t, 7, f.gaItem(2))
	f.create(t, 8, f.gaItem(3), f.seatItem(0))
	require.Equal(t, 5, f.gaReserved(t))

	f.clk.Advance(11 * time.Minute)

	n, err := f.svc.ExpireDue(ctx, 100)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	require.Equal(t, 0, f.gaReserved(t))
	require.Equal(t, domain.SeatAvailable, f.seatState(t, 0).Status)

	// a second sweep finds nothing
	n, err = f.svc.ExpireDue(ctx, 100)
	require.NoError(t, err)
	require.Equal(t, 0, n)
}

func TestAllocationAccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	alloc, err := domain.NewAllocation(f.event.ID, "VIP", 5, base)
	require.NoError(t, err)
	alloc.AccessCode = "VIP123"
	require.NoError(t, f.store.CreateAllocation(ctx, alloc))

	item := f.gaItem(2)
	item.AllocationID = &alloc.ID

	_, err = f.svc.Create(ctx, reservation.CreateInput{
		UserID: 7, EventID: f.event.ID, AccessCode: "wrong",
		Items: []reservation.ItemInput{item},
	})
	require.ErrorIs(t, err, reservation.ErrAllocationDenied)

	// allocation items bypass the public on-sale window
	f.clk.Advance(25 * time.Hour)

	r, err := f.svc.Create(ctx, reservation.CreateInput{
		UserID: 7, EventID: f.event.ID, AccessCode: "vip123",
		Items: []reservation.ItemInput{item},
	})
	require.NoError(t, err)

	got, err := f.store.GetAllocation(ctx, alloc.ID)
	require.NoError(t, err)
	require.Equal(t, 2, got.UsedQuantity)

	_, err = f.svc.Cancel(ctx, r.ID, "")
	require.NoError(t, err)

	got, err = f.store.GetAllocation(ctx, alloc.ID)
	require.NoError(t, err)
	require.Equal(t, 0, got.UsedQuantity)
}

func TestConcurrentGeneralAdmissionNeverOversells(t *testing.T) {
	f := newFixture(t)

	const buyers = 20
	var wg sync.WaitGroup
	results := make([]error, buyers)

	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.svc.Create(context.Background(), reservation.CreateInput{
				UserID:  int64(i + 1),
				EventID: f.event.ID,
				Items:   []reservation.ItemInput{f.gaItem(1)},
			})
			results[i] = err
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
			continue
		}
		require.True(t, errors.Is(err, reservation.ErrSoldOut) || errors.Is(err, reservation.ErrConflict),
			"unexpected failure: %v", err)
	}
	require.Equal(t, 10, succeeded)
	require.Equal(t, 10, f.gaReserved(t))
}

func TestConcurrentSeatClaim(t *testing.T) {
	f := newFixture(t)

	const buyers = 8
	var wg sync.WaitGroup
	results := make([]error, buyers)

	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.svc.Create(context.Background(), reservation.CreateInput{
				UserID:  int64(i + 1),
				EventID: f.event.ID,
				Items:   []reservation.ItemInput{f.seatItem(0)},
			})
			results[i] = err
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
		} else {
			require.ErrorIs(t, err, reservation.ErrSeatsUnavailable)
		}
	}
	require.Equal(t, 1, succeeded)
	require.Equal(t, domain.SeatReserved, f.seatState(t, 0).Status)
}
