package domain

import (
	"errors"
	"testing"
)

func TestCapacityReserve(t *testing.T) {
	tests := []struct {
		name     string
		cap      Capacity
		qty      int
		wantErr  error
		wantRsvd int
	}{
		{name: "reserves within available", cap: Capacity{Total: 10, Reserved: 3}, qty: 5, wantRsvd: 8},
		{name: "reserves exactly remaining", cap: Capacity{Total: 10, Reserved: 3}, qty: 7, wantRsvd: 10},
		{name: "fails over available", cap: Capacity{Total: 10, Reserved: 3}, qty: 8, wantErr: ErrCapacityExceeded},
		{name: "fails on zero", cap: Capacity{Total: 10}, qty: 0, wantErr: ErrInvalidInput},
		{name: "fails on negative", cap: Capacity{Total: 10}, qty: -1, wantErr: ErrInvalidInput},
		{name: "fails on empty pool", cap: Capacity{Total: 1, Reserved: 1}, qty: 1, wantErr: ErrCapacityExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.cap.Reserve(tt.qty)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				if got != tt.cap {
					t.Fatalf("capacity changed on failure: %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Reserved != tt.wantRsvd {
				t.Fatalf("expected reserved %d, got %d", tt.wantRsvd, got.Reserved)
			}
			if got.Total != tt.cap.Total {
				t.Fatalf("total changed: %d", got.Total)
			}
		})
	}
}

func TestCapacityRelease(t *testing.T) {
	c := Capacity{Total: 10, Reserved: 4}

	if got := c.Release(3); got.Reserved != 1 {
		t.Fatalf("expected reserved 1, got %d", got.Reserved)
	}
	// double release clamps to zero, never negative
	if got := c.Release(9); got.Reserved != 0 {
		t.Fatalf("expected reserved clamped to 0, got %d", got.Reserved)
	}
	if got := c.Release(0); got != c {
		t.Fatalf("zero release changed capacity: %+v", got)
	}
}

func TestCapacityRoundTrip(t *testing.T) {
	c := Capacity{Total: 100, Reserved: 37}
	for _, q := range []int{1, 10, 63} {
		next, err := c.Reserve(q)
		if err != nil {
			t.Fatalf("reserve %d: %v", q, err)
		}
		if got := next.Release(q); got != c {
			t.Fatalf("reserve(%d).release(%d) = %+v, want %+v", q, q, got, c)
		}
	}
}

func TestCapacityAdjustTotal(t *testing.T) {
	c := Capacity{Total: 10, Reserved: 6}

	got, err := c.AdjustTotal(6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Total != 6 || got.Reserved != 6 {
		t.Fatalf("unexpected capacity %+v", got)
	}

	if _, err := c.AdjustTotal(5); !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("expected ErrCapacityExceeded, got %v", err)
	}
	if _, err := c.AdjustTotal(-1); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestNewCapacity(t *testing.T) {
	if _, err := NewCapacity(-1); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	c, err := NewCapacity(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Available() != 0 {
		t.Fatalf("expected zero available, got %d", c.Available())
	}
}
