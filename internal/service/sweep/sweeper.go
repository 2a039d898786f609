// Package sweep runs the background expiration pass. Expiry is lazy
// everywhere else (reads and confirms treat the deadline as authoritative),
// so the sweep only has to reclaim inventory, not enforce correctness.
package sweep

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/resv-go/internal/clock"
	"github.com/kirinyoku/resv-go/internal/domain"
	"github.com/kirinyoku/resv-go/internal/repository"
	"github.com/kirinyoku/resv-go/internal/service/reservation"
)

type Config struct {
	Interval  time.Duration
	BatchSize int
}

type Sweeper struct {
	reservations *reservation.Service
	store        repository.Store
	clk          clock.Clock
	log          *slog.Logger
	cfg          Config
}

func New(
	reservations *reservation.Service,
	store repository.Store,
	clk clock.Clock,
	log *slog.Logger,
	cfg Config,
) *Sweeper {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Second
	}

	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 200
	}

	return &Sweeper{
		reservations: reservations,
		store:        store,
		clk:          clk,
		log:          log,
		cfg:          cfg,
	}
}

// Run sweeps on a fixed interval until the context ends. Multiple instances
// may run concurrently: the version checks make each expiry land exactly
// once.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep runs one pass: expired reservations first, then any seat whose hold
// outlived its reservation (e.g. a crash between the seat save and the
// reservation create).
func (s *Sweeper) Sweep(ctx context.Context) {
	expired, err := s.reservations.ExpireDue(ctx, s.cfg.BatchSize)
	if err != nil {
		s.log.Error("expire reservations", "error", err)
	}
	if expired > 0 {
		s.log.Info("expired reservations", "count", expired)
	}

	released, err := s.releaseOrphanSeats(ctx)
	if err != nil {
		s.log.Error("release orphan seats", "error", err)
	}
	if released > 0 {
		s.log.Info("released orphan seats", "count", released)
	}
}

func (s *Sweeper) releaseOrphanSeats(ctx context.Context) (int, error) {
	due, err := s.store.ListDueSeats(ctx, s.clk.Now(), s.cfg.BatchSize)
	if err != nil {
		return 0, err
	}

	released := 0
	for _, seat := range due {
		if ctx.Err() != nil {
			return released, ctx.Err()
		}

		// skip seats whose reservation is still active; those belong to the
		// reservation sweep
		if seat.HolderID != uuid.Nil {
			r, err := s.store.GetReservation(ctx, seat.HolderID)
			if err == nil && r.Status == domain.ReservationActive && !r.IsExpired(s.clk.Now()) {
				continue
			}
			if err != nil && !errors.Is(err, repository.ErrNotFound) {
				return released, err
			}
		}

		prev := seat.Version
		if !seat.ExpireIfPast(s.clk.Now()) {
			continue
		}
		if err := s.store.SaveSeat(ctx, seat, prev); err != nil {
			// lost the race to another instance
			continue
		}
		released++
	}

	return released, nil
}
