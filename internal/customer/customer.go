package customer

import (
	"time"

	"github.com/google/uuid"
)

// Customer is a workshop client. Vehicles hang off a customer and live in
// their own package.
type Customer struct {
	ID        uuid.UUID
	Name      string
	Phone     string
	Email     string
	CreatedAt time.Time
	UpdatedAt *time.Time
}
