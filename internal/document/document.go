// Package document is the narrow seam between invoice finalization and
// whatever produces the printable artifact.
package document

import (
	"context"

	"github.com/MrJamesThe3rd/garagedesk/internal/customer"
	"github.com/MrJamesThe3rd/garagedesk/internal/invoice"
	"github.com/MrJamesThe3rd/garagedesk/internal/settings"
)

type Renderer interface {
	RenderInvoice(ctx context.Context, inv *invoice.Invoice, cust *customer.Customer, cfg *settings.Settings) ([]byte, error)
}
