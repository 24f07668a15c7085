// Package composition drives the multi-step invoice-building workflow: one
// controller instance per composition session owns the invoice under
// construction, the restoration state machine and the persistence decisions.
//
// The controller is written for a single-threaded, cooperative caller (the
// bubbletea update loop). Directory results arrive as events tagged with the
// selector that requested them, so stale responses are discarded instead of
// clobbering newer state.
package composition

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/garagedesk/internal/customer"
	"github.com/MrJamesThe3rd/garagedesk/internal/document"
	"github.com/MrJamesThe3rd/garagedesk/internal/invoice"
	"github.com/MrJamesThe3rd/garagedesk/internal/pricing"
	"github.com/MrJamesThe3rd/garagedesk/internal/session"
	"github.com/MrJamesThe3rd/garagedesk/internal/settings"
	"github.com/MrJamesThe3rd/garagedesk/internal/vehicle"
)

// InvoiceStatus is the staff-facing payment state during composition. It maps
// onto invoice.Status only at persistence time.
type InvoiceStatus string

const (
	StatusUnpaid InvoiceStatus = "Unpaid"
	StatusPaid   InvoiceStatus = "Paid"
)

// CustomerSource resolves a customer id while restoring a persisted invoice.
type CustomerSource interface {
	GetCustomer(ctx context.Context, id uuid.UUID) (*customer.Customer, error)
}

// InventorySource refreshes stock ceilings for restored inventory-backed
// items. Optional; restoration degrades gracefully without it.
type InventorySource interface {
	CurrentStock(ctx context.Context, id uuid.UUID) (int64, error)
}

type Config struct {
	Invoices   invoice.Repository
	Session    session.Store
	SessionKey string
	Settings   *settings.Settings
	Customers  CustomerSource
	Inventory  InventorySource
	Renderer   document.Renderer
	Logger     *slog.Logger
	Now        func() time.Time
	// Grace is how long the RestoredComplete phase lingers before reverting
	// to Idle. Defaults to one second.
	Grace time.Duration
}

// Controller is the composition session. All fields are owned here rather
// than scattered across the view so that the teardown autosave always reads
// live values, never a stale captured copy.
type Controller struct {
	invoices  invoice.Repository
	session   session.Store
	key       string
	settings  *settings.Settings
	customers CustomerSource
	inventory InventorySource
	renderer  document.Renderer
	log       *slog.Logger
	now       func() time.Time
	grace     time.Duration

	cust *customer.Customer
	veh  *vehicle.Vehicle

	items           []LineItem
	discount        pricing.Discount
	paymentMethodID string
	notes           string
	terms           string
	technician      string
	supervisor      string
	status          InvoiceStatus

	// editingID is set while editing a specific persisted invoice; every save
	// then targets that record.
	editingID *uuid.UUID

	phase            Phase
	restoredAt       time.Time
	pendingSnapshot  *vehicle.Snapshot
	pendingVehicleID *uuid.UUID
	stagedItems      []LineItem

	// validatedCustomer remembers which customer's vehicle list has already
	// been checked against the current selection, so a transient refetch
	// cannot wrongly clear a valid vehicle.
	validatedCustomer uuid.UUID

	completed  bool
	tornDown   bool
	processing bool
}

func NewController(cfg Config) *Controller {
	c := &Controller{
		invoices:  cfg.Invoices,
		session:   cfg.Session,
		key:       cfg.SessionKey,
		settings:  cfg.Settings,
		customers: cfg.Customers,
		inventory: cfg.Inventory,
		renderer:  cfg.Renderer,
		log:       cfg.Logger,
		now:       cfg.Now,
		grace:     cfg.Grace,
		status:    StatusUnpaid,
		discount:  pricing.Discount{Kind: pricing.DiscountPercent},
	}

	if c.log == nil {
		c.log = slog.Default()
	}

	if c.now == nil {
		c.now = time.Now
	}

	if c.grace == 0 {
		c.grace = time.Second
	}

	if c.settings == nil {
		c.settings = &settings.Settings{Methods: settings.DefaultMethods()}
	}

	return c
}

// SelectCustomer applies a manual customer choice. Manual selection and
// restoration are mutually exclusive: any pending restoration is cancelled and
// its staged items dropped.
func (c *Controller) SelectCustomer(cust *customer.Customer) {
	c.cancelRestoration()

	if c.cust == nil || cust == nil || c.cust.ID != cust.ID {
		// Vehicle belongs to the previous customer.
		c.veh = nil
		c.validatedCustomer = uuid.Nil
	}

	c.cust = cust
}

// SelectVehicle applies a manual vehicle choice, cancelling any pending
// restoration the same way SelectCustomer does.
func (c *Controller) SelectVehicle(v *vehicle.Vehicle) {
	c.cancelRestoration()
	c.veh = v
}

// VehiclesLoaded feeds in a vehicle directory result. The customerID tags
// which selection the request was issued for; results for anyone but the
// currently selected customer are stale and ignored.
//
// When a restoration is pending this completes it and reports the match
// outcome; otherwise it runs the one-shot selected-vehicle validation pass.
func (c *Controller) VehiclesLoaded(customerID uuid.UUID, list []*vehicle.Vehicle) *VehicleMatch {
	if c.cust == nil || c.cust.ID != customerID {
		return nil
	}

	if c.pendingSnapshot != nil {
		match := resolveVehicle(*c.pendingSnapshot, list)
		if match.Vehicle != nil {
			c.veh = match.Vehicle
		}

		c.commitRestoration()

		return &match
	}

	if c.pendingVehicleID != nil {
		match := VehicleMatch{Kind: MatchNone}

		want := normalizeID(c.pendingVehicleID.String())
		for _, v := range list {
			if normalizeID(v.ID.String()) == want {
				c.veh = v
				match = VehicleMatch{Kind: MatchExact, Vehicle: v}

				break
			}
		}

		// The marker is cleared whether or not the vehicle still exists.
		c.commitRestoration()

		return &match
	}

	// Restoring a record that carried no vehicle: there is nothing to match,
	// so the staged items land as-is and the vehicle stays unselected.
	if c.phase == PhaseRestoring {
		match := VehicleMatch{Kind: MatchNone}
		c.commitRestoration()

		return &match
	}

	c.validateSelection(customerID, list)

	return nil
}

// validateSelection clears a selected vehicle that no longer exists in its
// customer's list. It runs at most once per customer selection: a later
// refetch returning a transiently empty list must not clear a valid choice.
func (c *Controller) validateSelection(customerID uuid.UUID, list []*vehicle.Vehicle) {
	if c.Phase() != PhaseIdle || c.veh == nil || c.validatedCustomer == customerID {
		return
	}

	c.validatedCustomer = customerID

	for _, v := range list {
		if v.ID == c.veh.ID {
			return
		}
	}

	c.veh = nil
}

func (c *Controller) SetDiscount(d pricing.Discount) {
	c.discount = d
}

func (c *Controller) SetPaymentMethod(id string) {
	c.paymentMethodID = id
}

func (c *Controller) SetNotes(notes string)   { c.notes = notes }
func (c *Controller) SetTerms(terms string)   { c.terms = terms }
func (c *Controller) SetTechnician(t string)  { c.technician = t }
func (c *Controller) SetSupervisor(s string)  { c.supervisor = s }
func (c *Controller) SetStatus(s InvoiceStatus) { c.status = s }

// Totals recomputes the full breakdown from current state. Nothing is cached:
// the pricing engine runs on every render.
func (c *Controller) Totals() pricing.Totals {
	lines := make([]pricing.Line, len(c.items))
	for i, item := range c.items {
		lines[i] = pricing.Line{Quantity: item.Quantity, UnitPrice: item.UnitPrice}
	}

	return pricing.Compute(lines, c.discount, c.settings.TaxRateBpsFor(c.paymentMethodID))
}

// State is the read-only snapshot handed to the view for rendering.
type State struct {
	Customer        *customer.Customer
	Vehicle         *vehicle.Vehicle
	Items           []LineItem
	Discount        pricing.Discount
	PaymentMethodID string
	Notes           string
	Terms           string
	Technician      string
	Supervisor      string
	Status          InvoiceStatus
	EditingID       *uuid.UUID
	Phase           Phase
}

func (c *Controller) Snapshot() State {
	items := make([]LineItem, len(c.items))
	copy(items, c.items)

	return State{
		Customer:        c.cust,
		Vehicle:         c.veh,
		Items:           items,
		Discount:        c.discount,
		PaymentMethodID: c.paymentMethodID,
		Notes:           c.notes,
		Terms:           c.terms,
		Technician:      c.technician,
		Supervisor:      c.supervisor,
		Status:          c.status,
		EditingID:       c.editingID,
		Phase:           c.Phase(),
	}
}

// Settings exposes the tax table and payment methods the controller was
// configured with, for the view's pickers.
func (c *Controller) Settings() *settings.Settings {
	return c.settings
}
