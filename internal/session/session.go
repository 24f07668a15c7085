// Package session holds the only two values that survive a composition view
// remount: the draft pointer and the edit marker. The persistence orchestrator
// is their single writer.
package session

import (
	"context"

	"github.com/google/uuid"
)

// Draft points at the invoice record an abandoned composition was autosaved
// to, plus the vehicle that was selected at the time, so resuming can re-select
// it by id once the vehicle list loads.
type Draft struct {
	InvoiceID uuid.UUID `json:"invoice_id"`
	VehicleID uuid.UUID `json:"vehicle_id,omitempty"`
}

type Store interface {
	Draft(ctx context.Context, key string) (*Draft, error)
	SetDraft(ctx context.Context, key string, d Draft) error
	ClearDraft(ctx context.Context, key string) error

	// EditTarget is set while a persisted invoice is open for edit-in-place.
	EditTarget(ctx context.Context, key string) (*uuid.UUID, error)
	SetEditTarget(ctx context.Context, key string, id uuid.UUID) error
	ClearEditTarget(ctx context.Context, key string) error
}
