package domain

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

var allocNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestAllocation(t *testing.T, total int) *Allocation {
	t.Helper()
	a, err := NewAllocation(1, "press", total, allocNow)
	if err != nil {
		t.Fatalf("new allocation: %v", err)
	}
	return a
}

func TestAllocationAllocateSeats(t *testing.T) {
	a := newTestAllocation(t, 5)

	if err := a.AllocateSeats([]int64{10, 11, 12}, allocNow); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// duplicates inside and across calls are skipped
	if err := a.AllocateSeats([]int64{12, 13, 13}, allocNow); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.AllocatedQuantity() != 4 {
		t.Fatalf("expected 4 allocated, got %d", a.AllocatedQuantity())
	}

	if err := a.AllocateSeats([]int64{14, 15}, allocNow); !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("expected ErrCapacityExceeded, got %v", err)
	}
	if a.AllocatedQuantity() != 4 {
		t.Fatalf("failed allocate mutated seats: %d", a.AllocatedQuantity())
	}

	if err := a.AllocateSeats([]int64{0}, allocNow); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestAllocationUseRelease(t *testing.T) {
	a := newTestAllocation(t, 10)
	if err := a.AllocateSeats([]int64{1, 2, 3}, allocNow); err != nil {
		t.Fatalf("allocate: %v", err)
	}

	if err := a.UseQuantity(3, allocNow); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := a.UseQuantity(1, allocNow); !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("expected ErrCapacityExceeded over allocated seats, got %v", err)
	}

	a.ReleaseUsedQuantity(5, allocNow)
	if a.UsedQuantity != 0 {
		t.Fatalf("expected used clamped to 0, got %d", a.UsedQuantity)
	}

	// quantity-backed allocation limits by total
	q := newTestAllocation(t, 4)
	if err := q.UseQuantity(4, allocNow); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := q.UseQuantity(1, allocNow); !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("expected ErrCapacityExceeded over total, got %v", err)
	}
}

func TestAllocationAdjustTotalQuantityShrink(t *testing.T) {
	a := newTestAllocation(t, 10)
	seats := []int64{101, 102, 103, 104, 105, 106, 107, 108, 109, 110}
	if err := a.AllocateSeats(seats, allocNow); err != nil {
		t.Fatalf("allocate: %v", err)
	}

	released, err := a.AdjustTotalQuantity(7, allocNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// deterministically the three earliest-added
	if !reflect.DeepEqual(released, []int64{101, 102, 103}) {
		t.Fatalf("expected oldest three released, got %v", released)
	}
	if a.AllocatedQuantity() != 7 || a.TotalQuantity != 7 {
		t.Fatalf("expected 7/7, got %d/%d", a.AllocatedQuantity(), a.TotalQuantity)
	}
	if !reflect.DeepEqual(a.SeatIDs, []int64{104, 105, 106, 107, 108, 109, 110}) {
		t.Fatalf("unexpected remaining seats %v", a.SeatIDs)
	}

	if err := a.UseQuantity(5, allocNow); err != nil {
		t.Fatalf("use: %v", err)
	}
	if _, err := a.AdjustTotalQuantity(4, allocNow); !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("expected ErrCapacityExceeded below used, got %v", err)
	}
}

func TestAllocationAvailability(t *testing.T) {
	a := newTestAllocation(t, 5)
	from := allocNow.Add(time.Hour)
	until := allocNow.Add(2 * time.Hour)
	a.AvailableFrom = &from
	a.AvailableUntil = &until

	if a.IsAvailableNow(allocNow) {
		t.Fatal("available before window")
	}
	if !a.IsAvailableNow(from) {
		t.Fatal("unavailable at window start")
	}
	if a.IsAvailableNow(until) {
		t.Fatal("available at window end")
	}

	a.Deactivate(allocNow)
	if a.IsAvailableNow(from) {
		t.Fatal("inactive allocation available")
	}
}

func TestAllocationCanAccess(t *testing.T) {
	a := newTestAllocation(t, 5)
	a.AccessCode = "VIP2025"
	a.AllowedUserIDs = []int64{7, 8}
	a.AllowedDomains = []string{"press.example.com"}

	tests := []struct {
		name   string
		code   string
		userID int64
		email  string
		want   bool
	}{
		{name: "all checks pass", code: "vip2025", userID: 7, email: "a@press.example.com", want: true},
		{name: "code case-insensitive", code: "Vip2025", userID: 8, email: "b@PRESS.example.COM", want: true},
		{name: "wrong code", code: "nope", userID: 7, email: "a@press.example.com", want: false},
		{name: "user not listed", code: "vip2025", userID: 9, email: "a@press.example.com", want: false},
		{name: "wrong domain", code: "vip2025", userID: 7, email: "a@other.example.com", want: false},
		{name: "email without domain", code: "vip2025", userID: 7, email: "nodomain", want: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := a.CanAccess(tc.code, tc.userID, tc.email); got != tc.want {
				t.Fatalf("CanAccess = %v, want %v", got, tc.want)
			}
		})
	}

	open := newTestAllocation(t, 5)
	if !open.CanAccess("", 0, "") {
		t.Fatal("allocation without controls must be open")
	}
}
