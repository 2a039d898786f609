package domain

import (
	"errors"
	"testing"
	"time"
)

var ttNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newGATicketType(t *testing.T, total int) *TicketType {
	t.Helper()
	tt, err := NewTicketType(1, "ga", "General Admission", GeneralAdmission, total, ttNow)
	if err != nil {
		t.Fatalf("new ticket type: %v", err)
	}
	if err := tt.AddOnSaleWindow(TimeRange{From: ttNow.Add(-time.Hour), Until: ttNow.Add(time.Hour)}, ttNow); err != nil {
		t.Fatalf("add window: %v", err)
	}
	return tt
}

func TestTicketTypeOnSale(t *testing.T) {
	tt := newGATicketType(t, 100)

	if !tt.IsOnSale(ttNow) {
		t.Fatal("expected on sale inside window")
	}
	if tt.IsOnSale(ttNow.Add(2 * time.Hour)) {
		t.Fatal("expected off sale outside window")
	}

	tt.Visible = false
	if tt.IsOnSale(ttNow) {
		t.Fatal("hidden type must not be on sale")
	}
}

func TestTicketTypeAddOnSaleWindow(t *testing.T) {
	tt := newGATicketType(t, 100)

	overlapping := TimeRange{From: ttNow, Until: ttNow.Add(3 * time.Hour)}
	if err := tt.AddOnSaleWindow(overlapping, ttNow); !errors.Is(err, ErrOverlappingWindow) {
		t.Fatalf("expected ErrOverlappingWindow, got %v", err)
	}

	adjacent := TimeRange{From: ttNow.Add(time.Hour), Until: ttNow.Add(2 * time.Hour)}
	if err := tt.AddOnSaleWindow(adjacent, ttNow); err != nil {
		t.Fatalf("adjacent window must not overlap: %v", err)
	}

	inverted := TimeRange{From: ttNow.Add(5 * time.Hour), Until: ttNow.Add(4 * time.Hour)}
	if err := tt.AddOnSaleWindow(inverted, ttNow); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestTicketTypeReserveReleaseCapacity(t *testing.T) {
	tt := newGATicketType(t, 5)

	if err := tt.ReserveCapacity(3, ttNow); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tt.Capacity.Reserved != 3 {
		t.Fatalf("expected reserved 3, got %d", tt.Capacity.Reserved)
	}

	err := tt.ReserveCapacity(3, ttNow)
	if !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("expected ErrCapacityExceeded, got %v", err)
	}
	if tt.Capacity.Reserved != 3 {
		t.Fatalf("failed reserve mutated capacity: %d", tt.Capacity.Reserved)
	}

	tt.ReleaseCapacity(2, ttNow)
	if tt.Capacity.Reserved != 1 {
		t.Fatalf("expected reserved 1, got %d", tt.Capacity.Reserved)
	}

	seatType, err := NewTicketType(1, "vip", "VIP", ReservedSeating, 0, ttNow)
	if err != nil {
		t.Fatalf("new ticket type: %v", err)
	}
	if err := seatType.ReserveCapacity(1, ttNow); !errors.Is(err, ErrInvalidStateTransition) {
		t.Fatalf("expected ErrInvalidStateTransition, got %v", err)
	}
}

func TestTicketTypeIsAvailable(t *testing.T) {
	tt := newGATicketType(t, 10)
	if err := tt.SetPurchaseLimits(2, 6, 8, ttNow); err != nil {
		t.Fatalf("set limits: %v", err)
	}

	tests := []struct {
		name string
		qty  int
		at   time.Time
		want bool
	}{
		{name: "inside limits with capacity", qty: 4, at: ttNow, want: true},
		{name: "below min", qty: 1, at: ttNow, want: false},
		{name: "above max", qty: 7, at: ttNow, want: false},
		{name: "off sale", qty: 4, at: ttNow.Add(2 * time.Hour), want: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tt.IsAvailable(tc.qty, tc.at); got != tc.want {
				t.Fatalf("IsAvailable(%d) = %v, want %v", tc.qty, got, tc.want)
			}
		})
	}

	if err := tt.ReserveCapacity(8, ttNow); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if tt.IsAvailable(4, ttNow) {
		t.Fatal("expected unavailable once capacity short")
	}
}

func TestTicketTypeAdjustTotalCapacity(t *testing.T) {
	tt := newGATicketType(t, 10)
	if err := tt.ReserveCapacity(6, ttNow); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if err := tt.AdjustTotalCapacity(6, ttNow); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := tt.AdjustTotalCapacity(5, ttNow); !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("expected ErrCapacityExceeded, got %v", err)
	}
}
