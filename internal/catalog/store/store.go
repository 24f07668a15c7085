package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/garagedesk/internal/catalog"
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

func scanItem(s scanner) (*catalog.Item, error) {
	var item catalog.Item

	var typeStr string

	if err := s.Scan(&item.ID, &item.Name, &item.Price, &typeStr, &item.Active, &item.CreatedAt, &item.UpdatedAt); err != nil {
		return nil, err
	}

	item.Type = catalog.Type(typeStr)

	return &item, nil
}

const selectItemColumns = `id, name, price, type, active, created_at, updated_at`

func (s *Store) CreateItem(ctx context.Context, item *catalog.Item) error {
	query := `
		INSERT INTO catalog_items (name, price, type, active, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query, item.Name, item.Price, item.Type, item.Active).
		Scan(&item.ID, &item.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating catalog item: %w", err)
	}

	return nil
}

func (s *Store) UpsertItemByName(ctx context.Context, item *catalog.Item) error {
	query := `
		INSERT INTO catalog_items (name, price, type, active, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (name) DO UPDATE
		SET price = EXCLUDED.price, type = EXCLUDED.type, active = EXCLUDED.active, updated_at = NOW()
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query, item.Name, item.Price, item.Type, item.Active).
		Scan(&item.ID, &item.CreatedAt)
	if err != nil {
		return fmt.Errorf("upserting catalog item: %w", err)
	}

	return nil
}

func (s *Store) GetItem(ctx context.Context, id uuid.UUID) (*catalog.Item, error) {
	query := `SELECT ` + selectItemColumns + ` FROM catalog_items WHERE id = $1`

	item, err := scanItem(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, catalog.ErrNotFound
		}

		return nil, fmt.Errorf("getting catalog item: %w", err)
	}

	return item, nil
}

func (s *Store) ListItems(ctx context.Context, activeOnly bool) ([]*catalog.Item, error) {
	query := `SELECT ` + selectItemColumns + ` FROM catalog_items`

	if activeOnly {
		query += ` WHERE active`
	}

	query += ` ORDER BY name`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing catalog items: %w", err)
	}
	defer rows.Close()

	var items []*catalog.Item

	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning catalog item: %w", err)
		}

		items = append(items, item)
	}

	return items, rows.Err()
}
