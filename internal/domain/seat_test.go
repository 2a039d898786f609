package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

var seatNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestSeat(t *testing.T) *Seat {
	t.Helper()
	s, err := NewSeat(1, SeatPosition{Section: "A", Row: "1", Number: 7}, seatNow)
	if err != nil {
		t.Fatalf("new seat: %v", err)
	}
	s.ID = 7
	return s
}

func TestSeatHold(t *testing.T) {
	rid := uuid.New()
	until := seatNow.Add(10 * time.Minute)

	t.Run("holds an available seat", func(t *testing.T) {
		s := newTestSeat(t)
		v := s.Version
		if err := s.Hold(rid, until, seatNow); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s.Status != SeatHeld || s.HolderID != rid {
			t.Fatalf("unexpected state %s holder %s", s.Status, s.HolderID)
		}
		if s.HeldUntil == nil || !s.HeldUntil.Equal(until) {
			t.Fatalf("unexpected held until %v", s.HeldUntil)
		}
		if s.Version != v+1 {
			t.Fatalf("version not bumped: %d", s.Version)
		}
	})

	t.Run("rejects past expiry", func(t *testing.T) {
		s := newTestSeat(t)
		if err := s.Hold(rid, seatNow, seatNow); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("rejects non-available seat", func(t *testing.T) {
		s := newTestSeat(t)
		_ = s.Hold(rid, until, seatNow)
		if err := s.Hold(uuid.New(), until, seatNow); !errors.Is(err, ErrSeatNotAvailable) {
			t.Fatalf("expected ErrSeatNotAvailable, got %v", err)
		}
	})
}

func TestSeatReserve(t *testing.T) {
	rid := uuid.New()
	other := uuid.New()
	until := seatNow.Add(10 * time.Minute)

	t.Run("reserves from available", func(t *testing.T) {
		s := newTestSeat(t)
		if err := s.Reserve(rid, until, seatNow); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s.Status != SeatReserved {
			t.Fatalf("expected reserved, got %s", s.Status)
		}
	})

	t.Run("promotes own hold", func(t *testing.T) {
		s := newTestSeat(t)
		_ = s.Hold(rid, until, seatNow)
		if err := s.Reserve(rid, until, seatNow); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s.Status != SeatReserved || s.HolderID != rid {
			t.Fatalf("unexpected state %s holder %s", s.Status, s.HolderID)
		}
	})

	t.Run("rejects foreign hold", func(t *testing.T) {
		s := newTestSeat(t)
		_ = s.Hold(rid, until, seatNow)
		if err := s.Reserve(other, until, seatNow); !errors.Is(err, ErrSeatNotAvailable) {
			t.Fatalf("expected ErrSeatNotAvailable, got %v", err)
		}
	})
}

func TestSeatConfirm(t *testing.T) {
	rid := uuid.New()
	until := seatNow.Add(10 * time.Minute)

	t.Run("confirms own reserved seat", func(t *testing.T) {
		s := newTestSeat(t)
		_ = s.Reserve(rid, until, seatNow)
		if err := s.Confirm(rid, seatNow); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s.Status != SeatConfirmed || s.HeldUntil != nil {
			t.Fatalf("unexpected state %s heldUntil %v", s.Status, s.HeldUntil)
		}
	})

	t.Run("rejects wrong holder", func(t *testing.T) {
		s := newTestSeat(t)
		_ = s.Reserve(rid, until, seatNow)
		if err := s.Confirm(uuid.New(), seatNow); !errors.Is(err, ErrInvalidStateTransition) {
			t.Fatalf("expected ErrInvalidStateTransition, got %v", err)
		}
	})

	t.Run("rejects held seat", func(t *testing.T) {
		s := newTestSeat(t)
		_ = s.Hold(rid, until, seatNow)
		if err := s.Confirm(rid, seatNow); !errors.Is(err, ErrInvalidStateTransition) {
			t.Fatalf("expected ErrInvalidStateTransition, got %v", err)
		}
	})
}

func TestSeatUnconfirm(t *testing.T) {
	rid := uuid.New()
	until := seatNow.Add(10 * time.Minute)

	t.Run("rolls a confirmed seat back to reserved", func(t *testing.T) {
		s := newTestSeat(t)
		_ = s.Reserve(rid, until, seatNow)
		_ = s.Confirm(rid, seatNow)
		if err := s.Unconfirm(rid, until, seatNow); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s.Status != SeatReserved || s.HolderID != rid {
			t.Fatalf("unexpected state %s holder %s", s.Status, s.HolderID)
		}
		if s.HeldUntil == nil || !s.HeldUntil.Equal(until) {
			t.Fatalf("hold expiry not restored: %v", s.HeldUntil)
		}
	})

	t.Run("rejects wrong holder", func(t *testing.T) {
		s := newTestSeat(t)
		_ = s.Reserve(rid, until, seatNow)
		_ = s.Confirm(rid, seatNow)
		if err := s.Unconfirm(uuid.New(), until, seatNow); !errors.Is(err, ErrInvalidStateTransition) {
			t.Fatalf("expected ErrInvalidStateTransition, got %v", err)
		}
	})

	t.Run("rejects unconfirmed seat", func(t *testing.T) {
		s := newTestSeat(t)
		_ = s.Reserve(rid, until, seatNow)
		if err := s.Unconfirm(rid, until, seatNow); !errors.Is(err, ErrInvalidStateTransition) {
			t.Fatalf("expected ErrInvalidStateTransition, got %v", err)
		}
	})
}

func TestSeatRelease(t *testing.T) {
	rid := uuid.New()
	until := seatNow.Add(10 * time.Minute)

	s := newTestSeat(t)
	tt := int64(3)
	s.TicketTypeID = &tt
	_ = s.Hold(rid, until, seatNow)

	if !s.Release(seatNow) {
		t.Fatal("expected release to act")
	}
	if s.Status != SeatAvailable || s.HolderID != uuid.Nil || s.HeldUntil != nil || s.TicketTypeID != nil {
		t.Fatalf("release left state behind: %+v", s)
	}
	// releasing an available seat is a no-op
	if s.Release(seatNow) {
		t.Fatal("expected no-op release")
	}
}

func TestSeatBlockUnblock(t *testing.T) {
	rid := uuid.New()
	until := seatNow.Add(10 * time.Minute)

	s := newTestSeat(t)
	if err := s.Block(seatNow); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Release(seatNow) {
		t.Fatal("blocked seat must not release")
	}
	if err := s.Unblock(seatNow); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Status != SeatAvailable {
		t.Fatalf("expected available, got %s", s.Status)
	}

	_ = s.Reserve(rid, until, seatNow)
	_ = s.Confirm(rid, seatNow)
	if err := s.Block(seatNow); !errors.Is(err, ErrInvalidStateTransition) {
		t.Fatalf("expected ErrInvalidStateTransition blocking a sold seat, got %v", err)
	}
}

func TestSeatExpireIfPast(t *testing.T) {
	rid := uuid.New()
	until := seatNow.Add(10 * time.Minute)

	s := newTestSeat(t)
	_ = s.Hold(rid, until, seatNow)

	if s.ExpireIfPast(seatNow.Add(5 * time.Minute)) {
		t.Fatal("expired before heldUntil")
	}
	if !s.ExpireIfPast(until) {
		t.Fatal("expected expiry at heldUntil")
	}
	if s.Status != SeatAvailable {
		t.Fatalf("expected available after expiry, got %s", s.Status)
	}
	// confirmed seats never expire
	s2 := newTestSeat(t)
	_ = s2.Reserve(rid, until, seatNow)
	_ = s2.Confirm(rid, seatNow)
	if s2.ExpireIfPast(until.Add(time.Hour)) {
		t.Fatal("confirmed seat expired")
	}
}
