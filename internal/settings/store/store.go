package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/MrJamesThe3rd/garagedesk/internal/settings"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) GetSettings(ctx context.Context) (*settings.Settings, error) {
	var cfg settings.Settings

	var name, phone, address sql.NullString

	err := s.db.QueryRowContext(ctx,
		`SELECT business_name, business_phone, business_address FROM settings LIMIT 1`).
		Scan(&name, &phone, &address)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("getting settings: %w", err)
	}

	cfg.BusinessName = name.String
	cfg.BusinessPhone = phone.String
	cfg.BusinessAddress = address.String

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, label, tax_rate_bps FROM payment_methods ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("listing payment methods: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m settings.PaymentMethod
		if err := rows.Scan(&m.ID, &m.Label, &m.TaxRateBps); err != nil {
			return nil, fmt.Errorf("scanning payment method: %w", err)
		}

		cfg.Methods = append(cfg.Methods, m)
	}

	return &cfg, rows.Err()
}
