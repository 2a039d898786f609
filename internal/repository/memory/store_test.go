package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kirinyoku/resv-go/internal/domain"
	"github.com/kirinyoku/resv-go/internal/repository"
)

var memNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func seedEvent(t *testing.T, s *Store) *domain.Event {
	t.Helper()
	ctx := context.Background()

	v := &domain.Venue{Entity: domain.Entity{CreatedAt: memNow, UpdatedAt: memNow, Version: 1}, Name: "Hall"}
	if err := s.CreateVenue(ctx, v); err != nil {
		t.Fatalf("create venue: %v", err)
	}
	e, err := domain.NewEvent(v.ID, "Show", memNow.Add(24*time.Hour), memNow.Add(27*time.Hour), memNow)
	if err != nil {
		t.Fatalf("new event: %v", err)
	}
	if err := s.CreateEvent(ctx, e); err != nil {
		t.Fatalf("create event: %v", err)
	}
	return e
}

func TestSaveVersionConflict(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	e := seedEvent(t, s)

	tt, err := domain.NewTicketType(e.ID, "ga", "General", domain.GeneralAdmission, 10, memNow)
	if err != nil {
		t.Fatalf("new ticket type: %v", err)
	}
	if err := s.CreateTicketType(ctx, tt); err != nil {
		t.Fatalf("create ticket type: %v", err)
	}

	// two readers load the same version, only the first save lands
	a, _ := s.GetTicketType(ctx, tt.ID)
	b, _ := s.GetTicketType(ctx, tt.ID)

	if err := a.ReserveCapacity(2, memNow); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if err := s.SaveTicketType(ctx, a, 1); err != nil {
		t.Fatalf("first save: %v", err)
	}

	if err := b.ReserveCapacity(3, memNow); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if err := s.SaveTicketType(ctx, b, 1); !errors.Is(err, repository.ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict, got %v", err)
	}

	cur, _ := s.GetTicketType(ctx, tt.ID)
	if cur.Capacity.Reserved != 2 {
		t.Fatalf("expected reserved 2 after lost race, got %d", cur.Capacity.Reserved)
	}
}

func TestDuplicateTicketTypeCode(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	e := seedEvent(t, s)

	first, _ := domain.NewTicketType(e.ID, "vip", "VIP", domain.GeneralAdmission, 5, memNow)
	if err := s.CreateTicketType(ctx, first); err != nil {
		t.Fatalf("create: %v", err)
	}
	second, _ := domain.NewTicketType(e.ID, "vip", "VIP again", domain.GeneralAdmission, 5, memNow)
	if err := s.CreateTicketType(ctx, second); !errors.Is(err, repository.ErrDuplicateCode) {
		t.Fatalf("expected ErrDuplicateCode, got %v", err)
	}
}

func TestDuplicateSeatPosition(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	e := seedEvent(t, s)

	pos := domain.SeatPosition{Section: "A", Row: "1", Number: 1}
	s1, _ := domain.NewSeat(e.VenueID, pos, memNow)
	if err := s.CreateSeats(ctx, []*domain.Seat{s1}); err != nil {
		t.Fatalf("create seats: %v", err)
	}

	s2, _ := domain.NewSeat(e.VenueID, pos, memNow)
	s3, _ := domain.NewSeat(e.VenueID, domain.SeatPosition{Section: "A", Row: "1", Number: 2}, memNow)
	if err := s.CreateSeats(ctx, []*domain.Seat{s3, s2}); !errors.Is(err, repository.ErrDuplicateSeat) {
		t.Fatalf("expected ErrDuplicateSeat, got %v", err)
	}
	// the whole batch fails, seat 3 was not inserted
	if seats, _ := s.ListSeats(ctx, e.VenueID, ""); len(seats) != 1 {
		t.Fatalf("expected 1 seat after failed batch, got %d", len(seats))
	}
}

func TestListDueSeats(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	e := seedEvent(t, s)

	var seats []*domain.Seat
	for i := 1; i <= 3; i++ {
		seat, _ := domain.NewSeat(e.VenueID, domain.SeatPosition{Section: "A", Row: "1", Number: i}, memNow)
		seats = append(seats, seat)
	}
	if err := s.CreateSeats(ctx, seats); err != nil {
		t.Fatalf("create seats: %v", err)
	}

	r, _ := domain.NewReservation(e.ID, 7, "R-1", memNow.Add(time.Minute), memNow)
	for i, seat := range seats[:2] {
		prev := seat.Version
		until := memNow.Add(time.Duration(i+1) * time.Minute)
		if err := seat.Reserve(r.ID, until, memNow); err != nil {
			t.Fatalf("reserve: %v", err)
		}
		if err := s.SaveSeat(ctx, seat, prev); err != nil {
			t.Fatalf("save seat: %v", err)
		}
	}

	due, err := s.ListDueSeats(ctx, memNow.Add(90*time.Second), 10)
	if err != nil {
		t.Fatalf("list due: %v", err)
	}
	if len(due) != 1 || due[0].ID != seats[0].ID {
		t.Fatalf("expected only the first seat due, got %v", due)
	}
}

func TestListDueReservationsOrderAndLimit(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	e := seedEvent(t, s)

	mk := func(num string, ttl time.Duration) *domain.Reservation {
		r, err := domain.NewReservation(e.ID, 7, num, memNow.Add(ttl), memNow)
		if err != nil {
			t.Fatalf("new reservation: %v", err)
		}
		if err := s.CreateReservation(ctx, r); err != nil {
			t.Fatalf("create reservation: %v", err)
		}
		return r
	}

	late := mk("R-late", 10*time.Minute)
	early := mk("R-early", time.Minute)
	mk("R-future", time.Hour)

	due, err := s.ListDueReservations(ctx, memNow.Add(30*time.Minute), 10)
	if err != nil {
		t.Fatalf("list due: %v", err)
	}
	if len(due) != 2 || due[0].ID != early.ID || due[1].ID != late.ID {
		t.Fatalf("expected [early, late], got %v", due)
	}

	if due, _ = s.ListDueReservations(ctx, memNow.Add(30*time.Minute), 1); len(due) != 1 || due[0].ID != early.ID {
		t.Fatalf("expected limit to keep the earliest, got %v", due)
	}
}

func TestCountActiveByBuyer(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	e := seedEvent(t, s)

	tt, _ := domain.NewTicketType(e.ID, "ga", "General", domain.GeneralAdmission, 100, memNow)
	if err := s.CreateTicketType(ctx, tt); err != nil {
		t.Fatalf("create ticket type: %v", err)
	}

	add := func(userID int64, qty int, mutate func(*domain.Reservation)) {
		r, _ := domain.NewReservation(e.ID, userID, "R-x", memNow.Add(time.Hour), memNow)
		if err := r.AddItem(tt.ID, nil, 1000, qty, memNow); err != nil {
			t.Fatalf("add item: %v", err)
		}
		if mutate != nil {
			mutate(r)
		}
		if err := s.CreateReservation(ctx, r); err != nil {
			t.Fatalf("create reservation: %v", err)
		}
	}

	add(7, 2, nil)
	add(7, 3, func(r *domain.Reservation) {
		if _, err := r.Confirm(memNow); err != nil {
			t.Fatalf("confirm: %v", err)
		}
	})
	add(7, 4, func(r *domain.Reservation) {
		if _, err := r.Cancel("", memNow); err != nil {
			t.Fatalf("cancel: %v", err)
		}
	})
	add(8, 5, nil)

	n, err := s.CountActiveByBuyer(ctx, e.ID, 7, tt.ID)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	// active + confirmed count, cancelled and other buyers don't
	if n != 5 {
		t.Fatalf("expected 5, got %d", n)
	}
}

func TestClonesDoNotShareMemory(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	e := seedEvent(t, s)

	tt, _ := domain.NewTicketType(e.ID, "ga", "General", domain.GeneralAdmission, 10, memNow)
	if err := s.CreateTicketType(ctx, tt); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, _ := s.GetTicketType(ctx, tt.ID)
	got.Code = "mutated"
	got.OnSaleWindows = append(got.OnSaleWindows, domain.TimeRange{From: memNow, Until: memNow.Add(time.Hour)})

	again, _ := s.GetTicketType(ctx, tt.ID)
	if again.Code != "ga" || len(again.OnSaleWindows) != 0 {
		t.Fatalf("store state leaked through a returned pointer: %+v", again)
	}
}
