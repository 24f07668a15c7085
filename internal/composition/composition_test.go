package composition_test

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/garagedesk/internal/composition"
	"github.com/MrJamesThe3rd/garagedesk/internal/customer"
	"github.com/MrJamesThe3rd/garagedesk/internal/invoice"
	"github.com/MrJamesThe3rd/garagedesk/internal/session"
	"github.com/MrJamesThe3rd/garagedesk/internal/settings"
	"github.com/MrJamesThe3rd/garagedesk/internal/vehicle"
)

// fakeInvoiceRepo records every write so tests can assert on the exact
// sequence of creates and updates.
type fakeInvoiceRepo struct {
	records map[uuid.UUID]*invoice.Invoice
	creates int
	updates int

	// onCreate, when set, runs inside CreateInvoice after the id is assigned.
	onCreate func()
}

func newFakeInvoiceRepo() *fakeInvoiceRepo {
	return &fakeInvoiceRepo{records: make(map[uuid.UUID]*invoice.Invoice)}
}

func (f *fakeInvoiceRepo) CreateInvoice(_ context.Context, inv *invoice.Invoice) error {
	inv.ID = uuid.New()
	inv.CreatedAt = time.Now()

	stored := *inv
	f.records[inv.ID] = &stored
	f.creates++

	if f.onCreate != nil {
		f.onCreate()
	}

	return nil
}

func (f *fakeInvoiceRepo) UpdateInvoice(_ context.Context, inv *invoice.Invoice) error {
	if _, ok := f.records[inv.ID]; !ok {
		return invoice.ErrNotFound
	}

	stored := *inv
	f.records[inv.ID] = &stored
	f.updates++

	return nil
}

func (f *fakeInvoiceRepo) GetInvoice(_ context.Context, id uuid.UUID) (*invoice.Invoice, error) {
	inv, ok := f.records[id]
	if !ok {
		return nil, invoice.ErrNotFound
	}

	copied := *inv

	return &copied, nil
}

func (f *fakeInvoiceRepo) ListInvoices(_ context.Context, _ invoice.ListFilter) ([]*invoice.Invoice, error) {
	var out []*invoice.Invoice
	for _, inv := range f.records {
		copied := *inv
		out = append(out, &copied)
	}

	return out, nil
}

type fakeCustomers struct {
	byID map[uuid.UUID]*customer.Customer
}

func (f *fakeCustomers) GetCustomer(_ context.Context, id uuid.UUID) (*customer.Customer, error) {
	c, ok := f.byID[id]
	if !ok {
		return nil, customer.ErrNotFound
	}

	return c, nil
}

type fakeRenderer struct {
	calls atomic.Int32
}

func (f *fakeRenderer) RenderInvoice(_ context.Context, _ *invoice.Invoice, _ *customer.Customer, _ *settings.Settings) ([]byte, error) {
	f.calls.Add(1)
	return []byte("%PDF-fake"), nil
}

func testSettings() *settings.Settings {
	return &settings.Settings{
		BusinessName: "Test Workshop",
		Methods: []settings.PaymentMethod{
			{ID: "cash", Label: settings.LabelCash, TaxRateBps: 0},
			{ID: "card", Label: settings.LabelCardPOS, TaxRateBps: 750},
			{ID: "transfer", Label: settings.LabelTransfer, TaxRateBps: 0},
		},
	}
}

// harness bundles a controller with the fakes behind it and a controllable
// clock.
type harness struct {
	ctrl     *composition.Controller
	repo     *fakeInvoiceRepo
	sessions session.Store
	cust     *fakeCustomers
	renderer *fakeRenderer
	now      *time.Time
}

func newHarness(opts ...func(*composition.Config)) *harness {
	repo := newFakeInvoiceRepo()
	sessions := session.NewMemoryStore()
	customers := &fakeCustomers{byID: make(map[uuid.UUID]*customer.Customer)}
	renderer := &fakeRenderer{}
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	cfg := composition.Config{
		Invoices:   repo,
		Session:    sessions,
		SessionKey: "workstation-1",
		Settings:   testSettings(),
		Customers:  customers,
		Renderer:   renderer,
		Now:        func() time.Time { return now },
		Grace:      time.Second,
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return &harness{
		ctrl:     composition.NewController(cfg),
		repo:     repo,
		sessions: sessions,
		cust:     customers,
		renderer: renderer,
		now:      &now,
	}
}

// persist seeds the fake repository with an existing record.
func (h *harness) persist(inv *invoice.Invoice) uuid.UUID {
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}

	stored := *inv
	h.repo.records[inv.ID] = &stored

	return inv.ID
}

func (h *harness) advance(d time.Duration) {
	*h.now = h.now.Add(d)
}

func (h *harness) addCustomer(name string) *customer.Customer {
	c := &customer.Customer{ID: uuid.New(), Name: name}
	h.cust.byID[c.ID] = c

	return c
}

func testVehicle(customerID uuid.UUID, make, model, plate string) *vehicle.Vehicle {
	return &vehicle.Vehicle{
		ID:         uuid.New(),
		CustomerID: customerID,
		Make:       make,
		Model:      model,
		Year:       2019,
		PlateNo:    plate,
	}
}
