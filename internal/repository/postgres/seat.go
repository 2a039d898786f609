package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/kirinyoku/resv-go/internal/domain"
	"github.com/kirinyoku/resv-go/internal/repository"
)

// CreateSeats inserts a batch of seats. The unique index on
// (venue_id, section, row, number) rejects duplicate positions.
func (s *Store) CreateSeats(ctx context.Context, seats []*domain.Seat) error {
	const op = "postgres.Store.CreateSeats"

	db := s.handle()

	batch := &pgx.Batch{}
	for _, seat := range seats {
		seat := seat
		batch.Queue(
			`INSERT INTO seats(
				venue_id, section, row, number, status,
				accessible, restricted_view, price_category,
				created_at, updated_at, version)
         	 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
       		 RETURNING id`,
			seat.VenueID, seat.Position.Section, seat.Position.Row, seat.Position.Number,
			string(seat.Status), seat.Accessible, seat.RestrictedView, seat.PriceCategory,
			seat.CreatedAt, seat.UpdatedAt, seat.Version,
		).QueryRow(func(row pgx.Row) error {
			return row.Scan(&seat.ID)
		})
	}
	if err := db.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return nil
}

func (s *Store) GetSeat(ctx context.Context, id int64) (*domain.Seat, error) {
	const op = "postgres.Store.GetSeat"

	db := s.handle()

	row := db.QueryRow(ctx, seatSelect+` WHERE id = $1`, id)
	seat, err := scanSeat(row)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return seat, nil
}

func (s *Store) ListSeats(ctx context.Context, venueID int64, status domain.SeatStatus) ([]*domain.Seat, error) {
	const op = "postgres.Store.ListSeats"

	db := s.handle()

	var rows pgx.Rows
	var err error

	if status != "" {
		rows, err = db.Query(ctx,
			seatSelect+` WHERE venue_id = $1 AND status = $2 ORDER BY section, row, number`,
			venueID, string(status),
		)
	} else {
		rows, err = db.Query(ctx,
			seatSelect+` WHERE venue_id = $1 ORDER BY section, row, number`,
			venueID,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	defer rows.Close()

	out, err := collectSeats(rows)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return out, nil
}

func (s *Store) SaveSeat(ctx context.Context, seat *domain.Seat, prevVersion int64) error {
	const op = "postgres.Store.SaveSeat"

	db := s.handle()

	tag, err := db.Exec(ctx,
		`UPDATE seats
         SET status = $2, holder_id = $3, held_until = $4, ticket_type_id = $5,
             accessible = $6, restricted_view = $7, price_category = $8,
             updated_at = $9, version = $10
      	 WHERE id = $1 AND version = $11`,
		seat.ID, string(seat.Status), nullUUID(seat.HolderID), seat.HeldUntil, seat.TicketTypeID,
		seat.Accessible, seat.RestrictedView, seat.PriceCategory,
		seat.UpdatedAt, seat.Version, prevVersion,
	)
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: seat %d at version %d: %w", op, seat.ID, prevVersion, repository.ErrVersionConflict)
	}

	return nil
}

// ListDueSeats returns held or reserved seats whose hold expiry has passed,
// oldest first, for the expiration sweep.
func (s *Store) ListDueSeats(ctx context.Context, now time.Time, limit int) ([]*domain.Seat, error) {
	const op = "postgres.Store.ListDueSeats"

	db := s.handle()

	rows, err := db.Query(ctx,
		seatSelect+`
	  	 WHERE status IN ('held', 'reserved') AND held_until <= $1
	  	 ORDER BY held_until
	  	 LIMIT $2`,
		now, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	defer rows.Close()

	out, err := collectSeats(rows)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return out, nil
}

func (s *Store) CountAvailableByTicketType(ctx context.Context, ticketTypeID int64) (int, error) {
	const op = "postgres.Store.CountAvailableByTicketType"

	db := s.handle()

	var n int
	err := db.QueryRow(ctx,
		`SELECT COUNT(*)
	   	 FROM seats
	  	 WHERE status = 'available'
	    	AND (ticket_type_id IS NULL OR ticket_type_id = $1)`,
		ticketTypeID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return n, nil
}

const seatSelect = `SELECT id, venue_id, section, row, number, status,
		holder_id, held_until, ticket_type_id,
		accessible, restricted_view, price_category,
		created_at, updated_at, version
	 FROM seats`

func scanSeat(row rowScanner) (*domain.Seat, error) {
	var seat domain.Seat
	var status string
	var holder *uuid.UUID

	if err := row.Scan(
		&seat.ID, &seat.VenueID, &seat.Position.Section, &seat.Position.Row, &seat.Position.Number, &status,
		&holder, &seat.HeldUntil, &seat.TicketTypeID,
		&seat.Accessible, &seat.RestrictedView, &seat.PriceCategory,
		&seat.CreatedAt, &seat.UpdatedAt, &seat.Version,
	); err != nil {
		return nil, err
	}

	seat.Status = domain.SeatStatus(status)
	if holder != nil {
		seat.HolderID = *holder
	}

	return &seat, nil
}

func collectSeats(rows pgx.Rows) ([]*domain.Seat, error) {
	var out []*domain.Seat
	for rows.Next() {
		seat, err := scanSeat(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, seat)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func nullUUID(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}
