package catalog

import (
	"time"

	"github.com/google/uuid"
)

// Type distinguishes labor from parts sold without stock tracking.
type Type string

const (
	TypeService Type = "service"
	TypeProduct Type = "product"
)

// Item is a priced catalog entry. Stock-tracked goods live in the inventory
// package instead.
type Item struct {
	ID        uuid.UUID
	Name      string
	Price     int64 // cents
	Type      Type
	Active    bool
	CreatedAt time.Time
	UpdatedAt *time.Time
}
