package composition

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/garagedesk/internal/invoice"
	"github.com/MrJamesThe3rd/garagedesk/internal/pricing"
	"github.com/MrJamesThe3rd/garagedesk/internal/vehicle"
)

// Phase is the restoration state machine. RestoredComplete lingers for a
// short grace window (so the view can show a "restored" notice) and then
// reads as Idle again.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseRestoring
	PhaseRestoredComplete
)

func (p Phase) String() string {
	switch p {
	case PhaseRestoring:
		return "restoring"
	case PhaseRestoredComplete:
		return "restored"
	default:
		return "idle"
	}
}

// Phase returns the current restoration phase, auto-reverting to Idle once
// the grace window after completion has passed.
func (c *Controller) Phase() Phase {
	if c.phase == PhaseRestoredComplete && c.now().Sub(c.restoredAt) >= c.grace {
		c.phase = PhaseIdle
	}

	return c.phase
}

// BeginEdit loads a persisted invoice and seeds the composition from it.
// The embedded vehicle snapshot cannot be resolved until the customer's
// vehicle list arrives, so it is parked as a pending match target and the
// session enters Restoring; VehiclesLoaded finishes the job.
func (c *Controller) BeginEdit(ctx context.Context, id uuid.UUID) error {
	inv, err := c.invoices.GetInvoice(ctx, id)
	if err != nil {
		return fmt.Errorf("loading invoice for edit: %w", err)
	}

	if err := c.seedFromRecord(ctx, inv); err != nil {
		return err
	}

	c.editingID = &inv.ID

	if err := c.session.SetEditTarget(ctx, c.key, inv.ID); err != nil {
		c.log.Error("failed to store edit marker", "error", err)
	}

	if inv.Vehicle != nil && !inv.Vehicle.IsZero() {
		snap := *inv.Vehicle
		c.pendingSnapshot = &snap
	}

	c.phase = PhaseRestoring

	return nil
}

// ResumeDraft picks up the session's abandoned work, if any. Reports whether
// there was something to resume. An interrupted edit takes precedence: when
// the session's edit marker is still set, the record under edit is reopened
// instead of the draft. Otherwise the vehicle is re-selected by id once the
// vehicle list loads, since the draft marker remembers which vehicle was
// chosen.
func (c *Controller) ResumeDraft(ctx context.Context) (bool, error) {
	target, err := c.session.EditTarget(ctx, c.key)
	if err != nil {
		return false, fmt.Errorf("reading edit marker: %w", err)
	}

	if target != nil {
		if err := c.BeginEdit(ctx, *target); err != nil {
			return false, err
		}

		return true, nil
	}

	d, err := c.session.Draft(ctx, c.key)
	if err != nil {
		return false, fmt.Errorf("reading draft pointer: %w", err)
	}

	if d == nil {
		return false, nil
	}

	inv, err := c.invoices.GetInvoice(ctx, d.InvoiceID)
	if err != nil {
		return false, fmt.Errorf("loading draft: %w", err)
	}

	if err := c.seedFromRecord(ctx, inv); err != nil {
		return false, err
	}

	if d.VehicleID != uuid.Nil {
		vid := d.VehicleID
		c.pendingVehicleID = &vid
	}

	c.phase = PhaseRestoring

	return true, nil
}

// seedFromRecord copies the restorable parts of a persisted record into the
// controller: customer, discount, notes, terms, staff, payment method and
// status. Items are staged, not committed; they land when the vehicle list
// arrives so restoration stays a single observable transition.
func (c *Controller) seedFromRecord(ctx context.Context, inv *invoice.Invoice) error {
	cust, err := c.customers.GetCustomer(ctx, inv.CustomerID)
	if err != nil {
		return fmt.Errorf("loading customer %s: %w", inv.CustomerID, err)
	}

	c.cust = cust
	c.veh = nil
	c.validatedCustomer = uuid.Nil

	// The record stores a computed discount amount, not the original
	// kind/value pair, so it restores as a fixed discount.
	c.discount = pricing.Discount{Kind: pricing.DiscountFixed, Value: inv.Discount}
	c.notes = inv.Notes
	c.terms = inv.Terms
	c.technician = inv.Technician
	c.supervisor = inv.Supervisor

	c.paymentMethodID = ""

	if inv.PaymentMethod != nil {
		if m, ok := c.settings.MethodByLabel(*inv.PaymentMethod); ok {
			c.paymentMethodID = m.ID
		}
	}

	// Only an explicit "Paid" restores as paid; "Pending" and anything
	// unexpected read as unpaid.
	c.status = StatusUnpaid
	if inv.Status == invoice.StatusPaid {
		c.status = StatusPaid
	}

	c.stagedItems = c.rebuildItems(ctx, inv)
	c.items = nil

	return nil
}

// rebuildItems turns persisted items back into composable line items with
// fresh ephemeral ids. Stock ceilings are refreshed from inventory where
// possible; failing that, the restored quantity itself becomes the ceiling so
// the invariant quantity <= MaxStock keeps holding.
func (c *Controller) rebuildItems(ctx context.Context, inv *invoice.Invoice) []LineItem {
	items := make([]LineItem, 0, len(inv.Items))

	for _, rec := range inv.Items {
		item := LineItem{
			ID:              uuid.New(),
			Description:     rec.Description,
			Quantity:        rec.Quantity,
			UnitPrice:       rec.Price,
			CatalogItemID:   rec.CatalogItemID,
			InventoryItemID: rec.InventoryItemID,
		}

		if rec.InventoryItemID != nil {
			item.InventoryBacked = true
			item.MaxStock = rec.Quantity

			if c.inventory != nil {
				if stock, err := c.inventory.CurrentStock(ctx, *rec.InventoryItemID); err == nil && stock > item.MaxStock {
					item.MaxStock = stock
				}
			}
		}

		items = append(items, item)
	}

	return items
}

// commitRestoration lands the staged items and finishes the state machine.
func (c *Controller) commitRestoration() {
	c.items = c.stagedItems
	c.stagedItems = nil
	c.pendingSnapshot = nil
	c.pendingVehicleID = nil
	c.phase = PhaseRestoredComplete
	c.restoredAt = c.now()
}

// cancelRestoration aborts any pending restoration in favour of a manual
// choice. Restoration and manual editing are mutually exclusive at every
// instant, so the staged and committed item lists are both dropped.
func (c *Controller) cancelRestoration() {
	if c.phase != PhaseRestoring && c.pendingSnapshot == nil && c.pendingVehicleID == nil {
		return
	}

	c.pendingSnapshot = nil
	c.pendingVehicleID = nil
	c.stagedItems = nil
	c.items = nil
	c.phase = PhaseIdle
}

// MatchKind tags how a persisted vehicle snapshot was reconciled against the
// live vehicle list.
type MatchKind int

const (
	MatchNone MatchKind = iota
	MatchExact
	MatchPartial
)

func (k MatchKind) String() string {
	switch k {
	case MatchExact:
		return "exact"
	case MatchPartial:
		return "partial"
	default:
		return "none"
	}
}

type VehicleMatch struct {
	Kind    MatchKind
	Vehicle *vehicle.Vehicle
}

// The strategies run in declared order; the first hit wins. Keeping them as
// named entries rather than nested conditionals keeps the policy auditable.
var matchStrategies = []struct {
	kind  MatchKind
	apply func(vehicle.Snapshot, []*vehicle.Vehicle) *vehicle.Vehicle
}{
	{MatchExact, matchExact},
	{MatchPartial, matchPartial},
}

func resolveVehicle(snap vehicle.Snapshot, list []*vehicle.Vehicle) VehicleMatch {
	for _, s := range matchStrategies {
		if v := s.apply(snap, list); v != nil {
			return VehicleMatch{Kind: s.kind, Vehicle: v}
		}
	}

	return VehicleMatch{Kind: MatchNone}
}

// matchExact requires make, model and plate number to all agree,
// case-insensitive and trimmed. Two empty plate numbers count as equal.
func matchExact(snap vehicle.Snapshot, list []*vehicle.Vehicle) *vehicle.Vehicle {
	for _, v := range list {
		if fieldsEqual(v.Make, snap.Make) &&
			fieldsEqual(v.Model, snap.Model) &&
			fieldsEqual(v.PlateNo, snap.PlateNo) {
			return v
		}
	}

	return nil
}

// matchPartial settles for make and model alone. When several vehicles share
// both, the first in list order wins; that mirrors long-standing behaviour
// and is deliberately not tie-broken further.
func matchPartial(snap vehicle.Snapshot, list []*vehicle.Vehicle) *vehicle.Vehicle {
	for _, v := range list {
		if fieldsEqual(v.Make, snap.Make) && fieldsEqual(v.Model, snap.Model) {
			return v
		}
	}

	return nil
}

func fieldsEqual(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func normalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
