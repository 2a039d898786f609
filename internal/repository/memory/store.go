// Package memory is a mutex-guarded in-memory implementation of the
// repository boundary with real version CAS. It backs the engine's tests and
// single-node runs; semantics mirror the postgres implementation.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/resv-go/internal/domain"
	"github.com/kirinyoku/resv-go/internal/repository"
)

type Store struct {
	mu sync.Mutex

	nextID int64

	venues       map[int64]*domain.Venue
	events       map[int64]*domain.Event
	ticketTypes  map[int64]*domain.TicketType
	seats        map[int64]*domain.Seat
	allocations  map[int64]*domain.Allocation
	reservations map[uuid.UUID]*domain.Reservation
}

func NewStore() *Store {
	return &Store{
		venues:       make(map[int64]*domain.Venue),
		events:       make(map[int64]*domain.Event),
		ticketTypes:  make(map[int64]*domain.TicketType),
		seats:        make(map[int64]*domain.Seat),
		allocations:  make(map[int64]*domain.Allocation),
		reservations: make(map[uuid.UUID]*domain.Reservation),
	}
}

func (s *Store) nextSeq() int64 {
	s.nextID++
	return s.nextID
}

// --- venues ---

func (s *Store) CreateVenue(_ context.Context, v *domain.Venue) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v.ID = s.nextSeq()
	cp := *v
	s.venues[v.ID] = &cp
	return nil
}

func (s *Store) GetVenue(_ context.Context, id int64) (*domain.Venue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.venues[id]
	if !ok {
		return nil, fmt.Errorf("venue %d: %w", id, repository.ErrNotFound)
	}
	cp := *v
	return &cp, nil
}

// --- events ---

func (s *Store) CreateEvent(_ context.Context, e *domain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.venues[e.VenueID]; !ok {
		return fmt.Errorf("venue %d: %w", e.VenueID, repository.ErrNotFound)
	}
	e.ID = s.nextSeq()
	cp := *e
	s.events[e.ID] = &cp
	return nil
}

func (s *Store) GetEvent(_ context.Context, id int64) (*domain.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.events[id]
	if !ok {
		return nil, fmt.Errorf("event %d: %w", id, repository.ErrNotFound)
	}
	cp := *e
	return &cp, nil
}

func (s *Store) SaveEvent(_ context.Context, e *domain.Event, prevVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.events[e.ID]
	if !ok {
		return fmt.Errorf("event %d: %w", e.ID, repository.ErrNotFound)
	}
	if cur.Version != prevVersion {
		return fmt.Errorf("event %d at version %d, expected %d: %w", e.ID, cur.Version, prevVersion, repository.ErrVersionConflict)
	}
	cp := *e
	s.events[e.ID] = &cp
	return nil
}

// --- ticket types ---

func (s *Store) CreateTicketType(_ context.Context, t *domain.TicketType) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[t.EventID]; !ok {
		return fmt.Errorf("event %d: %w", t.EventID, repository.ErrNotFound)
	}
	for _, other := range s.ticketTypes {
		if other.EventID == t.EventID && other.Code == t.Code {
			return fmt.Errorf("ticket type %q on event %d: %w", t.Code, t.EventID, repository.ErrDuplicateCode)
		}
	}
	t.ID = s.nextSeq()
	s.ticketTypes[t.ID] = cloneTicketType(t)
	return nil
}

func (s *Store) GetTicketType(_ context.Context, id int64) (*domain.TicketType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.ticketTypes[id]
	if !ok {
		return nil, fmt.Errorf("ticket type %d: %w", id, repository.ErrNotFound)
	}
	return cloneTicketType(t), nil
}

func (s *Store) ListTicketTypes(_ context.Context, eventID int64) ([]*domain.TicketType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*domain.TicketType
	for _, t := range s.ticketTypes {
		if t.EventID == eventID {
			out = append(out, cloneTicketType(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) SaveTicketType(_ context.Context, t *domain.TicketType, prevVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.ticketTypes[t.ID]
	if !ok {
		return fmt.Errorf("ticket type %d: %w", t.ID, repository.ErrNotFound)
	}
	if cur.Version != prevVersion {
		return fmt.Errorf("ticket type %d at version %d, expected %d: %w", t.ID, cur.Version, prevVersion, repository.ErrVersionConflict)
	}
	s.ticketTypes[t.ID] = cloneTicketType(t)
	return nil
}

// --- seats ---

func (s *Store) CreateSeats(_ context.Context, seats []*domain.Seat) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	taken := make(map[string]struct{})
	for _, existing := range s.seats {
		taken[posKey(existing.VenueID, existing.Position)] = struct{}{}
	}
	for _, seat := range seats {
		key := posKey(seat.VenueID, seat.Position)
		if _, dup := taken[key]; dup {
			return fmt.Errorf("seat %s in venue %d: %w", seat.Position, seat.VenueID, repository.ErrDuplicateSeat)
		}
		taken[key] = struct{}{}
	}
	for _, seat := range seats {
		seat.ID = s.nextSeq()
		s.seats[seat.ID] = cloneSeat(seat)
	}
	return nil
}

func (s *Store) GetSeat(_ context.Context, id int64) (*domain.Seat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seat, ok := s.seats[id]
	if !ok {
		return nil, fmt.Errorf("seat %d: %w", id, repository.ErrNotFound)
	}
	return cloneSeat(seat), nil
}

func (s *Store) ListSeats(_ context.Context, venueID int64, status domain.SeatStatus) ([]*domain.Seat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*domain.Seat
	for _, seat := range s.seats {
		if seat.VenueID != venueID {
			continue
		}
		if status != "" && seat.Status != status {
			continue
		}
		out = append(out, cloneSeat(seat))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) SaveSeat(_ context.Context, seat *domain.Seat, prevVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.seats[seat.ID]
	if !ok {
		return fmt.Errorf("seat %d: %w", seat.ID, repository.ErrNotFound)
	}
	if cur.Version != prevVersion {
		return fmt.Errorf("seat %d at version %d, expected %d: %w", seat.ID, cur.Version, prevVersion, repository.ErrVersionConflict)
	}
	s.seats[seat.ID] = cloneSeat(seat)
	return nil
}

func (s *Store) ListDueSeats(_ context.Context, now time.Time, limit int) ([]*domain.Seat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*domain.Seat
	for _, seat := range s.seats {
		if seat.Status != domain.SeatHeld && seat.Status != domain.SeatReserved {
			continue
		}
		if seat.HeldUntil == nil || seat.HeldUntil.After(now) {
			continue
		}
		out = append(out, cloneSeat(seat))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) CountAvailableByTicketType(_ context.Context, ticketTypeID int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, seat := range s.seats {
		if seat.Status != domain.SeatAvailable {
			continue
		}
		if seat.TicketTypeID == nil || *seat.TicketTypeID == ticketTypeID {
			n++
		}
	}
	return n, nil
}

// --- allocations ---

func (s *Store) CreateAllocation(_ context.Context, a *domain.Allocation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[a.EventID]; !ok {
		return fmt.Errorf("event %d: %w", a.EventID, repository.ErrNotFound)
	}
	a.ID = s.nextSeq()
	s.allocations[a.ID] = cloneAllocation(a)
	return nil
}

func (s *Store) GetAllocation(_ context.Context, id int64) (*domain.Allocation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.allocations[id]
	if !ok {
		return nil, fmt.Errorf("allocation %d: %w", id, repository.ErrNotFound)
	}
	return cloneAllocation(a), nil
}

func (s *Store) SaveAllocation(_ context.Context, a *domain.Allocation, prevVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.allocations[a.ID]
	if !ok {
		return fmt.Errorf("allocation %d: %w", a.ID, repository.ErrNotFound)
	}
	if cur.Version != prevVersion {
		return fmt.Errorf("allocation %d at version %d, expected %d: %w", a.ID, cur.Version, prevVersion, repository.ErrVersionConflict)
	}
	s.allocations[a.ID] = cloneAllocation(a)
	return nil
}

// --- reservations ---

func (s *Store) CreateReservation(_ context.Context, r *domain.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, dup := s.reservations[r.ID]; dup {
		return fmt.Errorf("reservation %s: %w", r.ID, repository.ErrConflict)
	}
	s.reservations[r.ID] = cloneReservation(r)
	return nil
}

func (s *Store) GetReservation(_ context.Context, id uuid.UUID) (*domain.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reservations[id]
	if !ok {
		return nil, fmt.Errorf("reservation %s: %w", id, repository.ErrNotFound)
	}
	return cloneReservation(r), nil
}

func (s *Store) SaveReservation(_ context.Context, r *domain.Reservation, prevVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.reservations[r.ID]
	if !ok {
		return fmt.Errorf("reservation %s: %w", r.ID, repository.ErrNotFound)
	}
	if cur.Version != prevVersion {
		return fmt.Errorf("reservation %s at version %d, expected %d: %w", r.ID, cur.Version, prevVersion, repository.ErrVersionConflict)
	}
	s.reservations[r.ID] = cloneReservation(r)
	return nil
}

func (s *Store) ListDueReservations(_ context.Context, now time.Time, limit int) ([]*domain.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*domain.Reservation
	for _, r := range s.reservations {
		if r.Status == domain.ReservationActive && !now.Before(r.ExpiresAt) {
			out = append(out, cloneReservation(r))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExpiresAt.Before(out[j].ExpiresAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) CountActiveByBuyer(_ context.Context, eventID, userID, ticketTypeID int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, r := range s.reservations {
		if r.EventID != eventID || r.UserID != userID {
			continue
		}
		if r.Status != domain.ReservationActive && r.Status != domain.ReservationConfirmed {
			continue
		}
		for _, it := range r.Items {
			if it.TicketTypeID == ticketTypeID {
				n += it.Quantity
			}
		}
	}
	return n, nil
}

// --- clone helpers: callers never share memory with the store ---

func posKey(venueID int64, p domain.SeatPosition) string {
	return fmt.Sprintf("%d/%s/%s/%d", venueID, p.Section, p.Row, p.Number)
}

func cloneTicketType(t *domain.TicketType) *domain.TicketType {
	cp := *t
	cp.OnSaleWindows = append([]domain.TimeRange(nil), t.OnSaleWindows...)
	return &cp
}

func cloneSeat(seat *domain.Seat) *domain.Seat {
	cp := *seat
	if seat.HeldUntil != nil {
		t := *seat.HeldUntil
		cp.HeldUntil = &t
	}
	if seat.TicketTypeID != nil {
		id := *seat.TicketTypeID
		cp.TicketTypeID = &id
	}
	return &cp
}

func cloneAllocation(a *domain.Allocation) *domain.Allocation {
	cp := *a
	cp.SeatIDs = append([]int64(nil), a.SeatIDs...)
	cp.AllowedUserIDs = append([]int64(nil), a.AllowedUserIDs...)
	cp.AllowedDomains = append([]string(nil), a.AllowedDomains...)
	if a.AvailableFrom != nil {
		t := *a.AvailableFrom
		cp.AvailableFrom = &t
	}
	if a.AvailableUntil != nil {
		t := *a.AvailableUntil
		cp.AvailableUntil = &t
	}
	if a.ExpiresAt != nil {
		t := *a.ExpiresAt
		cp.ExpiresAt = &t
	}
	return &cp
}

func cloneReservation(r *domain.Reservation) *domain.Reservation {
	cp := *r
	cp.Items = make([]domain.ReservationItem, len(r.Items))
	for i, it := range r.Items {
		cp.Items[i] = it
		if it.SeatID != nil {
			id := *it.SeatID
			cp.Items[i].SeatID = &id
		}
	}
	if r.ConfirmedAt != nil {
		t := *r.ConfirmedAt
		cp.ConfirmedAt = &t
	}
	if r.CancelledAt != nil {
		t := *r.CancelledAt
		cp.CancelledAt = &t
	}
	return &cp
}
