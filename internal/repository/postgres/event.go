package postgres

import (
	"context"
	"fmt"

	"github.com/kirinyoku/resv-go/internal/domain"
	"github.com/kirinyoku/resv-go/internal/repository"
)

func (s *Store) CreateVenue(ctx context.Context, v *domain.Venue) error {
	const op = "postgres.Store.CreateVenue"

	db := s.handle()

	err := db.QueryRow(ctx,
		`INSERT INTO venues(name, created_at, updated_at, version)
       	 VALUES ($1, $2, $3, $4)
     	 RETURNING id`,
		v.Name, v.CreatedAt, v.UpdatedAt, v.Version,
	).Scan(&v.ID)
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return nil
}

func (s *Store) GetVenue(ctx context.Context, id int64) (*domain.Venue, error) {
	const op = "postgres.Store.GetVenue"

	db := s.handle()

	var v domain.Venue
	err := db.QueryRow(ctx,
		`SELECT id, name, created_at, updated_at, version
       	 FROM venues WHERE id = $1`,
		id,
	).Scan(&v.ID, &v.Name, &v.CreatedAt, &v.UpdatedAt, &v.Version)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return &v, nil
}

func (s *Store) CreateEvent(ctx context.Context, e *domain.Event) error {
	const op = "postgres.Store.CreateEvent"

	db := s.handle()

	err := db.QueryRow(ctx,
		`INSERT INTO events(venue_id, title, starts_at, ends_at, published, created_at, updated_at, version)
       	 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
     	 RETURNING id`,
		e.VenueID, e.Title, e.Starts, e.Ends, e.Published, e.CreatedAt, e.UpdatedAt, e.Version,
	).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return nil
}

// GetEvent retrieves an event by its ID.
//
// Returns:
//   - *domain.Event: the event when found.
//   - error: repository.ErrNotFound if the event is not found.
func (s *Store) GetEvent(ctx context.Context, id int64) (*domain.Event, error) {
	const op = "postgres.Store.GetEvent"

	db := s.handle()

	var e domain.Event
	err := db.QueryRow(ctx,
		`SELECT id, venue_id, title, starts_at, ends_at, published, created_at, updated_at, version
       	 FROM events WHERE id = $1`,
		id,
	).Scan(&e.ID, &e.VenueID, &e.Title, &e.Starts, &e.Ends, &e.Published, &e.CreatedAt, &e.UpdatedAt, &e.Version)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return &e, nil
}

func (s *Store) SaveEvent(ctx context.Context, e *domain.Event, prevVersion int64) error {
	const op = "postgres.Store.SaveEvent"

	db := s.handle()

	tag, err := db.Exec(ctx,
		`UPDATE events
         SET title = $2, starts_at = $3, ends_at = $4, published = $5, updated_at = $6, version = $7
      	 WHERE id = $1 AND version = $8`,
		e.ID, e.Title, e.Starts, e.Ends, e.Published, e.UpdatedAt, e.Version, prevVersion,
	)
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: event %d at version %d: %w", op, e.ID, prevVersion, repository.ErrVersionConflict)
	}

	return nil
}
