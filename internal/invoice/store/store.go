package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/garagedesk/internal/invoice"
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

func scanInvoice(s scanner) (*invoice.Invoice, error) {
	var inv invoice.Invoice

	var statusStr string

	var method, technician, supervisor, notes, terms sql.NullString

	var vehMake, vehModel, vehPlate sql.NullString

	var vehYear sql.NullInt64

	if err := s.Scan(
		&inv.ID, &inv.CustomerID,
		&vehMake, &vehModel, &vehYear, &vehPlate,
		&inv.Subtotal, &inv.Discount, &inv.Tax, &inv.Total,
		&statusStr, &method, &technician, &supervisor, &notes, &terms,
		&inv.Date, &inv.CreatedAt, &inv.UpdatedAt,
	); err != nil {
		return nil, err
	}

	inv.Status = invoice.Status(statusStr)
	inv.Technician = technician.String
	inv.Supervisor = supervisor.String
	inv.Notes = notes.String
	inv.Terms = terms.String

	if method.Valid {
		inv.PaymentMethod = &method.String
	}

	// A row with no make and no model never had a vehicle attached.
	if vehMake.Valid || vehModel.Valid {
		inv.Vehicle = &vehicle.Snapshot{
			Make:    vehMake.String,
			Model:   vehModel.String,
			Year:    int(vehYear.Int64),
			PlateNo: vehPlate.String,
		}
	}

	return &inv, nil
}

const selectInvoiceColumns = `
	id, customer_id,
	vehicle_make, vehicle_model, vehicle_year, vehicle_plate_no,
	subtotal, discount, tax, total,
	status, payment_method, technician, supervisor, notes, terms,
	date, created_at, updated_at
`

func (s *Store) CreateInvoice(ctx context.Context, inv *invoice.Invoice) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning create: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO invoices (
			customer_id,
			vehicle_make, vehicle_model, vehicle_year, vehicle_plate_no,
			subtotal, discount, tax, total,
			status, payment_method, technician, supervisor, notes, terms,
			date, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, NOW())
		RETURNING id, created_at
	`

	var vehMake, vehModel, vehPlate *string

	var vehYear *int

	if inv.Vehicle != nil {
		vehMake, vehModel = &inv.Vehicle.Make, &inv.Vehicle.Model
		vehYear, vehPlate = &inv.Vehicle.Year, &inv.Vehicle.PlateNo
	}

	err = tx.QueryRowContext(ctx, query,
		inv.CustomerID,
		vehMake, vehModel, vehYear, vehPlate,
		inv.Subtotal, inv.Discount, inv.Tax, inv.Total,
		inv.Status, inv.PaymentMethod, inv.Technician, inv.Supervisor, inv.Notes, inv.Terms,
		inv.Date,
	).Scan(&inv.ID, &inv.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating invoice: %w", err)
	}

	if err := insertItems(ctx, tx, inv.ID, inv.Items); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing create: %w", err)
	}

	return nil
}

func (s *Store) UpdateInvoice(ctx context.Context, inv *invoice.Invoice) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning update: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE invoices SET
			customer_id = $2,
			vehicle_make = $3, vehicle_model = $4, vehicle_year = $5, vehicle_plate_no = $6,
			subtotal = $7, discount = $8, tax = $9, total = $10,
			status = $11, payment_method = $12, technician = $13, supervisor = $14,
			notes = $15, terms = $16, date = $17, updated_at = NOW()
		WHERE id = $1
	`

	var vehMake, vehModel, vehPlate *string

	var vehYear *int

	if inv.Vehicle != nil {
		vehMake, vehModel = &inv.Vehicle.Make, &inv.Vehicle.Model
		vehYear, vehPlate = &inv.Vehicle.Year, &inv.Vehicle.PlateNo
	}

	res, err := tx.ExecContext(ctx, query,
		inv.ID, inv.CustomerID,
		vehMake, vehModel, vehYear, vehPlate,
		inv.Subtotal, inv.Discount, inv.Tax, inv.Total,
		inv.Status, inv.PaymentMethod, inv.Technician, inv.Supervisor, inv.Notes, inv.Terms,
		inv.Date,
	)
	if err != nil {
		return fmt.Errorf("updating invoice: %w", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return invoice.ErrNotFound
	}

	// Items are replaced wholesale; they have no identity of their own.
	if _, err := tx.ExecContext(ctx, `DELETE FROM invoice_items WHERE invoice_id = $1`, inv.ID); err != nil {
		return fmt.Errorf("clearing invoice items: %w", err)
	}

	if err := insertItems(ctx, tx, inv.ID, inv.Items); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing update: %w", err)
	}

	return nil
}

func insertItems(ctx context.Context, tx *sql.Tx, invoiceID uuid.UUID, items []invoice.Item) error {
	query := `
		INSERT INTO invoice_items (invoice_id, position, description, quantity, price, catalog_item_id, inventory_item_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	for i, item := range items {
		_, err := tx.ExecContext(ctx, query,
			invoiceID, i, item.Description, item.Quantity, item.Price,
			item.CatalogItemID, item.InventoryItemID,
		)
		if err != nil {
			return fmt.Errorf("inserting invoice item: %w", err)
		}
	}

	return nil
}

func (s *Store) GetInvoice(ctx context.Context, id uuid.UUID) (*invoice.Invoice, error) {
	query := `SELECT ` + selectInvoiceColumns + ` FROM invoices WHERE id = $1`

	inv, err := scanInvoice(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, invoice.ErrNotFound
		}

		return nil, fmt.Errorf("getting invoice: %w", err)
	}

	if err := s.loadItems(ctx, inv); err != nil {
		return nil, err
	}

	return inv, nil
}

func (s *Store) loadItems(ctx context.Context, inv *invoice.Invoice) error {
	query := `
		SELECT description, quantity, price, catalog_item_id, inventory_item_id
		FROM invoice_items
		WHERE invoice_id = $1
		ORDER BY position
	`

	rows, err := s.db.QueryContext(ctx, query, inv.ID)
	if err != nil {
		return fmt.Errorf("listing invoice items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item invoice.Item
		if err := rows.Scan(&item.Description, &item.Quantity, &item.Price,
			&item.CatalogItemID, &item.InventoryItemID); err != nil {
			return fmt.Errorf("scanning invoice item: %w", err)
		}

		inv.Items = append(inv.Items, item)
	}

	return rows.Err()
}

func (s *Store) ListInvoices(ctx context.Context, filter invoice.ListFilter) ([]*invoice.Invoice, error) {
	query := `SELECT ` + selectInvoiceColumns + ` FROM invoices WHERE 1=1`

	args := []any{}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		query += fmt.Sprintf(` AND status = $%d`, len(args))
	}

	if filter.CustomerID != nil {
		args = append(args, *filter.CustomerID)
		query += fmt.Sprintf(` AND customer_id = $%d`, len(args))
	}

	if filter.DraftsOnly {
		query += ` AND payment_method IS NULL`
	}

	query += ` ORDER BY date DESC, created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing invoices: %w", err)
	}
	defer rows.Close()

	var invoices []*invoice.Invoice

	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning invoice: %w", err)
		}

		invoices = append(invoices, inv)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, inv := range invoices {
		if err := s.loadItems(ctx, inv); err != nil {
			return nil, err
		}
	}

	return invoices, nil
}
