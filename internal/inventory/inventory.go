package inventory

import (
	"time"

	"github.com/google/uuid"
)

// Item is a stock-tracked part. CurrentStock bounds how many units a single
// invoice may sell; the actual decrement happens when the invoice persists,
// not while it is being composed.
type Item struct {
	ID           uuid.UUID
	Name         string
	SalePrice    int64 // cents
	CurrentStock int64
	MinStock     int64
	Unit         string
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}

// LowStock reports whether the item is at or below its reorder threshold.
func (i *Item) LowStock() bool {
	return i.CurrentStock <= i.MinStock
}
