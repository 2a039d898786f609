package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/resv-go/internal/domain"
	"github.com/kirinyoku/resv-go/internal/repository"
)

// Reservations live in a single row with the items as a jsonb document, so
// the whole aggregate swaps atomically under one version check.

func (s *Store) CreateReservation(ctx context.Context, r *domain.Reservation) error {
	const op = "postgres.Store.CreateReservation"

	db := s.handle()

	items, err := json.Marshal(r.Items)
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	_, err = db.Exec(ctx,
		`INSERT INTO reservations(
			id, event_id, user_id, number, status, expires_at, items,
			subtotal_cents, discount_cents, total_cents, discount_code,
			confirmed_at, cancelled_at, cancel_reason,
			created_at, updated_at, version)
       	 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		r.ID, r.EventID, r.UserID, r.Number, string(r.Status), r.ExpiresAt, items,
		int64(r.Subtotal), int64(r.Discount), int64(r.Total), r.DiscountCode,
		r.ConfirmedAt, r.CancelledAt, r.CancelReason,
		r.CreatedAt, r.UpdatedAt, r.Version,
	)
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return nil
}

// GetReservation retrieves a reservation by its ID.
//
// Returns:
//   - *domain.Reservation: the reservation when found.
//   - error: repository.ErrNotFound if the reservation is not found.
func (s *Store) GetReservation(ctx context.Context, id uuid.UUID) (*domain.Reservation, error) {
	const op = "postgres.Store.GetReservation"

	db := s.handle()

	row := db.QueryRow(ctx, reservationSelect+` WHERE id = $1`, id)
	r, err := scanReservation(row)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return r, nil
}

func (s *Store) SaveReservation(ctx context.Context, r *domain.Reservation, prevVersion int64) error {
	const op = "postgres.Store.SaveReservation"

	db := s.handle()

	items, err := json.Marshal(r.Items)
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	tag, err := db.Exec(ctx,
		`UPDATE reservations
         SET status = $2, expires_at = $3, items = $4,
             subtotal_cents = $5, discount_cents = $6, total_cents = $7, discount_code = $8,
             confirmed_at = $9, cancelled_at = $10, cancel_reason = $11,
             updated_at = $12, version = $13
      	 WHERE id = $1 AND version = $14`,
		r.ID, string(r.Status), r.ExpiresAt, items,
		int64(r.Subtotal), int64(r.Discount), int64(r.Total), r.DiscountCode,
		r.ConfirmedAt, r.CancelledAt, r.CancelReason,
		r.UpdatedAt, r.Version, prevVersion,
	)
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: reservation %s at version %d: %w", op, r.ID, prevVersion, repository.ErrVersionConflict)
	}

	return nil
}

// ListDueReservations returns active reservations past their expiry, oldest
// expiry first, for the expiration sweep.
func (s *Store) ListDueReservations(ctx context.Context, now time.Time, limit int) ([]*domain.Reservation, error) {
	const op = "postgres.Store.ListDueReservations"

	db := s.handle()

	rows, err := db.Query(ctx,
		reservationSelect+`
	  	 WHERE status = 'active' AND expires_at <= $1
	  	 ORDER BY expires_at
	  	 LIMIT $2`,
		now, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	defer rows.Close()

	var out []*domain.Reservation
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
		}

		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return out, nil
}

// CountActiveByBuyer sums the quantities a buyer already holds against a
// ticket type across active and confirmed reservations, for per-buyer limits.
func (s *Store) CountActiveByBuyer(ctx context.Context, eventID, userID, ticketTypeID int64) (int, error) {
	const op = "postgres.Store.CountActiveByBuyer"

	db := s.handle()

	var n int
	err := db.QueryRow(ctx,
		`SELECT COALESCE(SUM((it->>'quantity')::int), 0)
	   	 FROM reservations r, jsonb_array_elements(r.items) it
	  	 WHERE r.event_id = $1
	    	AND r.user_id = $2
	    	AND r.status IN ('active', 'confirmed')
	    	AND (it->>'ticket_type_id')::bigint = $3`,
		eventID, userID, ticketTypeID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return n, nil
}

const reservationSelect = `SELECT id, event_id, user_id, number, status, expires_at, items,
		subtotal_cents, discount_cents, total_cents, discount_code,
		confirmed_at, cancelled_at, cancel_reason,
		created_at, updated_at, version
	 FROM reservations`

func scanReservation(row rowScanner) (*domain.Reservation, error) {
	var r domain.Reservation
	var status string
	var items []byte
	var subtotal, discount, total int64

	if err := row.Scan(
		&r.ID, &r.EventID, &r.UserID, &r.Number, &status, &r.ExpiresAt, &items,
		&subtotal, &discount, &total, &r.DiscountCode,
		&r.ConfirmedAt, &r.CancelledAt, &r.CancelReason,
		&r.CreatedAt, &r.UpdatedAt, &r.Version,
	); err != nil {
		return nil, err
	}

	r.Status = domain.ReservationStatus(status)
	r.Subtotal = domain.Money(subtotal)
	r.Discount = domain.Money(discount)
	r.Total = domain.Money(total)
	if len(items) > 0 {
		if err := json.Unmarshal(items, &r.Items); err != nil {
			return nil, err
		}
	}

	return &r, nil
}
