package invoice

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/garagedesk/internal/vehicle"
)

// Status is the backend lifecycle of a persisted invoice.
type Status string

const (
	StatusPending Status = "Pending"
	StatusPaid    Status = "Paid"
)

// Invoice is the persisted record. The vehicle is embedded by value, not
// referenced; PaymentMethod nil means the record is an abandoned draft.
type Invoice struct {
	ID            uuid.UUID
	CustomerID    uuid.UUID
	Vehicle       *vehicle.Snapshot
	Items         []Item
	Subtotal      int64
	Discount      int64
	Tax           int64
	Total         int64
	Status        Status
	PaymentMethod *string
	Technician    string
	Supervisor    string
	Notes         string
	Terms         string
	Date          time.Time
	CreatedAt     time.Time
	UpdatedAt     *time.Time
}

// Item is one persisted invoice line. Catalog and inventory bindings are kept
// so a later edit can restore stock ceilings and duplicate checks.
type Item struct {
	Description     string
	Quantity        int64
	Price           int64 // cents
	CatalogItemID   *uuid.UUID
	InventoryItemID *uuid.UUID
}

// IsDraft reports whether the record is unfinished work: autosaved on abandon,
// never explicitly completed.
func (inv *Invoice) IsDraft() bool {
	return inv.PaymentMethod == nil
}
