package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/garagedesk/internal/vehicle"
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

func scanVehicle(s scanner) (*vehicle.Vehicle, error) {
	var v vehicle.Vehicle

	var plate sql.NullString

	var year sql.NullInt64

	if err := s.Scan(&v.ID, &v.CustomerID, &v.Make, &v.Model, &year, &plate, &v.CreatedAt, &v.UpdatedAt); err != nil {
		return nil, err
	}

	v.Year = int(year.Int64)
	v.PlateNo = plate.String

	return &v, nil
}

const selectVehicleColumns = `id, customer_id, make, model, year, plate_no, created_at, updated_at`

func (s *Store) CreateVehicle(ctx context.Context, v *vehicle.Vehicle) error {
	query := `
		INSERT INTO vehicles (customer_id, make, model, year, plate_no, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query, v.CustomerID, v.Make, v.Model, v.Year, v.PlateNo).
		Scan(&v.ID, &v.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating vehicle: %w", err)
	}

	return nil
}

func (s *Store) GetVehicle(ctx context.Context, id uuid.UUID) (*vehicle.Vehicle, error) {
	query := `SELECT ` + selectVehicleColumns + ` FROM vehicles WHERE id = $1`

	v, err := scanVehicle(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, vehicle.ErrNotFound
		}

		return nil, fmt.Errorf("getting vehicle: %w", err)
	}

	return v, nil
}

func (s *Store) ListVehicles(ctx context.Context, filter vehicle.ListFilter) ([]*vehicle.Vehicle, error) {
	query := `SELECT ` + selectVehicleColumns + ` FROM vehicles WHERE 1=1`

	args := []any{}

	if filter.CustomerID != nil {
		args = append(args, *filter.CustomerID)
		query += fmt.Sprintf(` AND customer_id = $%d`, len(args))
	}

	if filter.Search != "" {
		args = append(args, filter.Search)
		n := len(args)
		query += fmt.Sprintf(` AND (make ILIKE '%%' || $%d || '%%' OR model ILIKE '%%' || $%d || '%%' OR plate_no ILIKE '%%' || $%d || '%%')`, n, n, n)
	}

	query += ` ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing vehicles: %w", err)
	}
	defer rows.Close()

	var vehicles []*vehicle.Vehicle

	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning vehicle: %w", err)
		}

		vehicles = append(vehicles, v)
	}

	return vehicles, rows.Err()
}
