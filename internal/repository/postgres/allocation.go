package postgres

import (
	"context"
	"fmt"

	"github.com/kirinyoku/resv-go/internal/domain"
	"github.com/kirinyoku/resv-go/internal/repository"
)

func (s *Store) CreateAllocation(ctx context.Context, a *domain.Allocation) error {
	const op = "postgres.Store.CreateAllocation"

	db := s.handle()

	err := db.QueryRow(ctx,
		`INSERT INTO allocations(
			event_id, ticket_type_id, name, total_quantity, used_quantity, seat_ids,
			access_code, allowed_user_ids, allowed_domains,
			available_from, available_until, expires_at, active,
			created_at, updated_at, version)
       	 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
     	 RETURNING id`,
		a.EventID, a.TicketTypeID, a.Name, a.TotalQuantity, a.UsedQuantity, a.SeatIDs,
		a.AccessCode, a.AllowedUserIDs, a.AllowedDomains,
		a.AvailableFrom, a.AvailableUntil, a.ExpiresAt, a.Active,
		a.CreatedAt, a.UpdatedAt, a.Version,
	).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return nil
}

func (s *Store) GetAllocation(ctx context.Context, id int64) (*domain.Allocation, error) {
	const op = "postgres.Store.GetAllocation"

	db := s.handle()

	var a domain.Allocation
	err := db.QueryRow(ctx,
		`SELECT id, event_id, ticket_type_id, name, total_quantity, used_quantity, seat_ids,
			access_code, allowed_user_ids, allowed_domains,
			available_from, available_until, expires_at, active,
			created_at, updated_at, version
	   	 FROM allocations WHERE id = $1`,
		id,
	).Scan(
		&a.ID, &a.EventID, &a.TicketTypeID, &a.Name, &a.TotalQuantity, &a.UsedQuantity, &a.SeatIDs,
		&a.AccessCode, &a.AllowedUserIDs, &a.AllowedDomains,
		&a.AvailableFrom, &a.AvailableUntil, &a.ExpiresAt, &a.Active,
		&a.CreatedAt, &a.UpdatedAt, &a.Version,
	)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return &a, nil
}

func (s *Store) SaveAllocation(ctx context.Context, a *domain.Allocation, prevVersion int64) error {
	const op = "postgres.Store.SaveAllocation"

	db := s.handle()

	tag, err := db.Exec(ctx,
		`UPDATE allocations
         SET ticket_type_id = $2, name = $3, total_quantity = $4, used_quantity = $5, seat_ids = $6,
             access_code = $7, allowed_user_ids = $8, allowed_domains = $9,
             available_from = $10, available_until = $11, expires_at = $12, active = $13,
             updated_at = $14, version = $15
      	 WHERE id = $1 AND version = $16`,
		a.ID, a.TicketTypeID, a.Name, a.TotalQuantity, a.UsedQuantity, a.SeatIDs,
		a.AccessCode, a.AllowedUserIDs, a.AllowedDomains,
		a.AvailableFrom, a.AvailableUntil, a.ExpiresAt, a.Active,
		a.UpdatedAt, a.Version, prevVersion,
	)
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: allocation %d at version %d: %w", op, a.ID, prevVersion, repository.ErrVersionConflict)
	}

	return nil
}
