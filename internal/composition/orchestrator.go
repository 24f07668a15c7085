package composition

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/garagedesk/internal/invoice"
	"github.com/MrJamesThe3rd/garagedesk/internal/session"
	"github.com/MrJamesThe3rd/garagedesk/internal/settings"
)

type SaveOp string

const (
	SaveCreated SaveOp = "created"
	SaveUpdated SaveOp = "updated"
)

type SaveResult struct {
	ID uuid.UUID
	Op SaveOp
	// Document is the rendered invoice, produced only on a Paid completion.
	Document []byte
}

type saveKind int

const (
	saveExplicit saveKind = iota
	saveCompletion
	saveAutosave
)

// Complete finalizes the invoice. Unpaid completions persist as "Pending"
// with the "Other" payment method sentinel, which distinguishes a
// deliberately-unpaid invoice from an abandoned draft (where the method is
// absent entirely). Paid completions carry the canonical label of the
// selected method and produce the printable document.
//
// A processing flag rejects a second call while one is in flight; it is
// released on success and failure alike. On success the session's draft
// pointer and edit marker are cleared, so later saves cannot target the
// finalized record.
func (c *Controller) Complete(ctx context.Context, status InvoiceStatus) (*SaveResult, error) {
	if c.processing {
		return nil, ErrBusy
	}

	c.processing = true
	defer func() { c.processing = false }()

	if err := c.validateForSave(); err != nil {
		return nil, err
	}

	rec := c.buildRecord()

	switch status {
	case StatusPaid:
		method, ok := c.settings.MethodByID(c.paymentMethodID)
		if !ok {
			return nil, &ValidationError{Field: "payment method", Reason: "must be selected for a paid invoice"}
		}

		rec.Status = invoice.StatusPaid
		label := method.Label
		rec.PaymentMethod = &label
	default:
		rec.Status = invoice.StatusPending
		label := settings.LabelOther
		rec.PaymentMethod = &label
	}

	res, err := c.decideAndSave(ctx, rec, saveCompletion)
	if err != nil {
		return nil, err
	}

	c.completed = true
	c.editingID = nil
	c.status = status

	if err := c.session.ClearDraft(ctx, c.key); err != nil {
		c.log.Error("failed to clear draft pointer", "error", err)
	}

	if err := c.session.ClearEditTarget(ctx, c.key); err != nil {
		c.log.Error("failed to clear edit marker", "error", err)
	}

	if status == StatusPaid && c.renderer != nil {
		doc, err := c.renderer.RenderInvoice(ctx, rec, c.cust, c.settings)
		if err != nil {
			// The invoice is final either way; the document can be reprinted.
			c.log.Error("failed to render invoice document", "invoice_id", res.ID, "error", err)
		} else {
			res.Document = doc
		}
	}

	return res, nil
}

// Save persists the current state without finalizing: the explicit
// update-while-editing path, or a manual draft save.
func (c *Controller) Save(ctx context.Context) (*SaveResult, error) {
	if err := c.validateForSave(); err != nil {
		return nil, err
	}

	rec := c.buildRecord()
	rec.Status = invoice.StatusPending

	if c.editingID == nil {
		// Still a draft: no payment method.
		rec.PaymentMethod = nil
	} else {
		label := settings.LabelOther
		if m, ok := c.settings.MethodByID(c.paymentMethodID); ok {
			label = m.Label
		}

		if c.status == StatusPaid {
			rec.Status = invoice.StatusPaid
		}

		rec.PaymentMethod = &label
	}

	return c.decideAndSave(ctx, rec, saveExplicit)
}

// Teardown runs when the composition view unmounts. It fires at most once,
// and autosaves only when there is something worth keeping: a customer, a
// vehicle and at least one item, on a session that was neither completed nor
// editing an existing record. Fire-and-forget: failures are logged, never
// surfaced.
func (c *Controller) Teardown(ctx context.Context) {
	if c.tornDown {
		return
	}

	c.tornDown = true

	if c.completed || c.editingID != nil {
		return
	}

	if c.cust == nil || c.veh == nil || len(c.items) == 0 {
		return
	}

	rec := c.buildRecord()
	rec.Status = invoice.StatusPending
	rec.PaymentMethod = nil

	if _, err := c.decideAndSave(ctx, rec, saveAutosave); err != nil {
		c.log.Error("autosave on teardown failed", "error", err)
	}
}

func (c *Controller) validateForSave() error {
	switch {
	case c.cust == nil:
		return &ValidationError{Field: "customer", Reason: "must be selected"}
	case c.veh == nil:
		return &ValidationError{Field: "vehicle", Reason: "must be selected"}
	case len(c.items) == 0:
		return &ValidationError{Field: "items", Reason: "at least one is required"}
	}

	return nil
}

// buildRecord assembles the persisted payload from live state. Totals are
// derived here, at the moment of persistence; they are never stored during
// composition.
func (c *Controller) buildRecord() *invoice.Invoice {
	totals := c.Totals()

	items := make([]invoice.Item, len(c.items))
	for i, item := range c.items {
		items[i] = invoice.Item{
			Description:     item.Description,
			Quantity:        item.Quantity,
			Price:           item.UnitPrice,
			CatalogItemID:   item.CatalogItemID,
			InventoryItemID: item.InventoryItemID,
		}
	}

	rec := &invoice.Invoice{
		CustomerID: c.cust.ID,
		Items:      items,
		Subtotal:   totals.Subtotal,
		Discount:   totals.DiscountAmount,
		Tax:        totals.Tax,
		Total:      totals.Total,
		Technician: c.technician,
		Supervisor: c.supervisor,
		Notes:      c.notes,
		Terms:      c.terms,
		Date:       c.now(),
	}

	if c.veh != nil {
		snap := c.veh.Snapshot()
		rec.Vehicle = &snap
	}

	return rec
}

// decideAndSave picks exactly one outcome for any save:
//
//  1. editing a specific persisted invoice: update it;
//  2. the session already autosaved a draft: update that draft, never
//     duplicate it;
//  3. otherwise create, and for non-completion saves remember the new id as
//     the session's draft pointer.
func (c *Controller) decideAndSave(ctx context.Context, rec *invoice.Invoice, kind saveKind) (*SaveResult, error) {
	if c.editingID != nil {
		rec.ID = *c.editingID

		if err := c.invoices.UpdateInvoice(ctx, rec); err != nil {
			return nil, fmt.Errorf("updating invoice: %w", err)
		}

		return &SaveResult{ID: rec.ID, Op: SaveUpdated}, nil
	}

	d, err := c.session.Draft(ctx, c.key)
	if err != nil {
		// Failing the save beats risking a duplicate record.
		return nil, fmt.Errorf("reading draft pointer: %w", err)
	}

	if d != nil {
		rec.ID = d.InvoiceID

		if err := c.invoices.UpdateInvoice(ctx, rec); err != nil {
			return nil, fmt.Errorf("updating draft: %w", err)
		}

		return &SaveResult{ID: rec.ID, Op: SaveUpdated}, nil
	}

	if err := c.invoices.CreateInvoice(ctx, rec); err != nil {
		return nil, fmt.Errorf("creating invoice: %w", err)
	}

	if kind != saveCompletion {
		pointer := session.Draft{InvoiceID: rec.ID}
		if c.veh != nil {
			pointer.VehicleID = c.veh.ID
		}

		if err := c.session.SetDraft(ctx, c.key, pointer); err != nil {
			c.log.Error("failed to store draft pointer", "error", err)
		}
	}

	return &SaveResult{ID: rec.ID, Op: SaveCreated}, nil
}
