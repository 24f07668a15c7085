package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/garagedesk/internal/inventory"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(s scanner) (*inventory.Item, error) {
	var item inventory.Item

	var unit sql.NullString

	if err := s.Scan(&item.ID, &item.Name, &item.SalePrice, &item.CurrentStock,
		&item.MinStock, &unit, &item.CreatedAt, &item.UpdatedAt); err != nil {
		return nil, err
	}

	item.Unit = unit.String

	return &item, nil
}

const selectItemColumns = `id, name, sale_price, current_stock, min_stock, unit, created_at, updated_at`

func (s *Store) CreateItem(ctx context.Context, item *inventory.Item) error {
	query := `
		INSERT INTO inventory_items (name, sale_price, current_stock, min_stock, unit, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		item.Name, item.SalePrice, item.CurrentStock, item.MinStock, item.Unit).
		Scan(&item.ID, &item.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating inventory item: %w", err)
	}

	return nil
}

func (s *Store) UpsertItemByName(ctx context.Context, item *inventory.Item) error {
	query := `
		INSERT INTO inventory_items (name, sale_price, current_stock, min_stock, unit, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (name) DO UPDATE
		SET sale_price = EXCLUDED.sale_price, current_stock = EXCLUDED.current_stock,
		    min_stock = EXCLUDED.min_stock, unit = EXCLUDED.unit, updated_at = NOW()
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		item.Name, item.SalePrice, item.CurrentStock, item.MinStock, item.Unit).
		Scan(&item.ID, &item.CreatedAt)
	if err != nil {
		return fmt.Errorf("upserting inventory item: %w", err)
	}

	return nil
}

func (s *Store) GetItem(ctx context.Context, id uuid.UUID) (*inventory.Item, error) {
	query := `SELECT ` + selectItemColumns + ` FROM inventory_items WHERE id = $1`

	item, err := scanItem(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, inventory.ErrNotFound
		}

		return nil, fmt.Errorf("getting inventory item: %w", err)
	}

	return item, nil
}

func (s *Store) ListItems(ctx context.Context) ([]*inventory.Item, error) {
	query := `SELECT ` + selectItemColumns + ` FROM inventory_items ORDER BY name`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing inventory items: %w", err)
	}
	defer rows.Close()

	var items []*inventory.Item

	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning inventory item: %w", err)
		}

		items = append(items, item)
	}

	return items, rows.Err()
}
