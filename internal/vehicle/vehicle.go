package vehicle

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Vehicle is the canonical record, referenced live by id while composing an
// invoice. Persisted invoices embed a Snapshot instead of a reference.
type Vehicle struct {
	ID         uuid.UUID
	CustomerID uuid.UUID
	Make       string
	Model      string
	Year       int
	PlateNo    string
	CreatedAt  time.Time
	UpdatedAt  *time.Time
}

// Snapshot is the by-value copy of a vehicle stored inside an invoice record.
// It carries no id, which is why restoring an invoice has to match it back to
// a canonical record heuristically.
type Snapshot struct {
	Make    string
	Model   string
	Year    int
	PlateNo string
}

func (v *Vehicle) Snapshot() Snapshot {
	return Snapshot{Make: v.Make, Model: v.Model, Year: v.Year, PlateNo: v.PlateNo}
}

func (s Snapshot) IsZero() bool {
	return s.Make == "" && s.Model == "" && s.PlateNo == "" && s.Year == 0
}

// Label renders a short human-readable description, e.g. "Toyota Corolla (ABC-123)".
func (s Snapshot) Label() string {
	label := strings.TrimSpace(s.Make + " " + s.Model)
	if s.PlateNo != "" {
		label += " (" + s.PlateNo + ")"
	}

	return label
}
