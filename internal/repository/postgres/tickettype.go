package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kirinyoku/resv-go/internal/domain"
	"github.com/kirinyoku/resv-go/internal/repository"
)

func (s *Store) CreateTicketType(ctx context.Context, t *domain.TicketType) error {
	const op = "postgres.Store.CreateTicketType"

	db := s.handle()

	windows, err := json.Marshal(t.OnSaleWindows)
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	err = db.QueryRow(ctx,
		`INSERT INTO ticket_types(
			event_id, code, name, price_cents, inventory,
			cap_total, cap_reserved, on_sale_windows,
			min_per_order, max_per_order, max_per_buyer, visible,
			created_at, updated_at, version)
       	 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
     	 RETURNING id`,
		t.EventID, t.Code, t.Name, int64(t.Price), string(t.Inventory),
		t.Capacity.Total, t.Capacity.Reserved, windows,
		t.MinPerOrder, t.MaxPerOrder, t.MaxPerBuyer, t.Visible,
		t.CreatedAt, t.UpdatedAt, t.Version,
	).Scan(&t.ID)
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return nil
}

func (s *Store) GetTicketType(ctx context.Context, id int64) (*domain.TicketType, error) {
	const op = "postgres.Store.GetTicketType"

	db := s.handle()

	row := db.QueryRow(ctx, ticketTypeSelect+` WHERE id = $1`, id)
	t, err := scanTicketType(row)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return t, nil
}

func (s *Store) ListTicketTypes(ctx context.Context, eventID int64) ([]*domain.TicketType, error) {
	const op = "postgres.Store.ListTicketTypes"

	db := s.handle()

	rows, err := db.Query(ctx, ticketTypeSelect+` WHERE event_id = $1 ORDER BY id`, eventID)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	defer rows.Close()

	var out []*domain.TicketType
	for rows.Next() {
		t, err := scanTicketType(rows)
		if err != nil {
			return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
		}

		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return out, nil
}

func (s *Store) SaveTicketType(ctx context.Context, t *domain.TicketType, prevVersion int64) error {
	const op = "postgres.Store.SaveTicketType"

	db := s.handle()

	windows, err := json.Marshal(t.OnSaleWindows)
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	tag, err := db.Exec(ctx,
		`UPDATE ticket_types
         SET name = $2, price_cents = $3, cap_total = $4, cap_reserved = $5, on_sale_windows = $6,
             min_per_order = $7, max_per_order = $8, max_per_buyer = $9, visible = $10,
             updated_at = $11, version = $12
      	 WHERE id = $1 AND version = $13`,
		t.ID, t.Name, int64(t.Price), t.Capacity.Total, t.Capacity.Reserved, windows,
		t.MinPerOrder, t.MaxPerOrder, t.MaxPerBuyer, t.Visible,
		t.UpdatedAt, t.Version, prevVersion,
	)
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: ticket type %d at version %d: %w", op, t.ID, prevVersion, repository.ErrVersionConflict)
	}

	return nil
}

const ticketTypeSelect = `SELECT id, event_id, code, name, price_cents, inventory,
		cap_total, cap_reserved, on_sale_windows,
		min_per_order, max_per_order, max_per_buyer, visible,
		created_at, updated_at, version
	 FROM ticket_types`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTicketType(row rowScanner) (*domain.TicketType, error) {
	var t domain.TicketType
	var inventory string
	var windows []byte
	var price int64

	if err := row.Scan(
		&t.ID, &t.EventID, &t.Code, &t.Name, &price, &inventory,
		&t.Capacity.Total, &t.Capacity.Reserved, &windows,
		&t.MinPerOrder, &t.MaxPerOrder, &t.MaxPerBuyer, &t.Visible,
		&t.CreatedAt, &t.UpdatedAt, &t.Version,
	); err != nil {
		return nil, err
	}

	t.Price = domain.Money(price)
	t.Inventory = domain.InventoryType(inventory)
	if len(windows) > 0 {
		if err := json.Unmarshal(windows, &t.OnSaleWindows); err != nil {
			return nil, err
		}
	}

	return &t, nil
}
