package main

import (
	"context"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/garagedesk/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/garagedesk/internal/catalog"
	catalogStore "github.com/MrJamesThe3rd/garagedesk/internal/catalog/store"
	"github.com/MrJamesThe3rd/garagedesk/internal/composition"
	"github.com/MrJamesThe3rd/garagedesk/internal/config"
	"github.com/MrJamesThe3rd/garagedesk/internal/customer"
	customerStore "github.com/MrJamesThe3rd/garagedesk/internal/customer/store"
	"github.com/MrJamesThe3rd/garagedesk/internal/database"
	"github.com/MrJamesThe3rd/garagedesk/internal/document/pdf"
	"github.com/MrJamesThe3rd/garagedesk/internal/inventory"
	inventoryStore "github.com/MrJamesThe3rd/garagedesk/internal/inventory/store"
	"github.com/MrJamesThe3rd/garagedesk/internal/invoice"
	invoiceStore "github.com/MrJamesThe3rd/garagedesk/internal/invoice/store"
	"github.com/MrJamesThe3rd/garagedesk/internal/session"
	"github.com/MrJamesThe3rd/garagedesk/internal/settings"
	settingsStore "github.com/MrJamesThe3rd/garagedesk/internal/settings/store"
	"github.com/MrJamesThe3rd/garagedesk/internal/vehicle"
	vehicleStore "github.com/MrJamesThe3rd/garagedesk/internal/vehicle/store"
)

type model struct {
	customerSvc  *customer.Service
	vehicleSvc   *vehicle.Service
	catalogSvc   *catalog.Service
	inventorySvc *inventory.Service
	invoiceSvc   *invoice.Service

	workshopCfg *settings.Settings
	sessions    session.Store
	sessionKey  string
	priceEdit   bool

	currentView View

	composeView  view.ComposeModel
	invoicesView view.InvoicesModel
}

type View int

const (
	ViewMenu View = iota
	ViewCompose
	ViewInvoices
)

// stockSource adapts the inventory service to the narrow lookup the
// composition controller wants while restoring items.
type stockSource struct {
	svc *inventory.Service
}

func (s stockSource) CurrentStock(ctx context.Context, id uuid.UUID) (int64, error) {
	item, err := s.svc.Get(ctx, id)
	if err != nil {
		return 0, err
	}

	return item.CurrentStock, nil
}

// customerSource adapts the customer service for restoration lookups.
type customerSource struct {
	svc *customer.Service
}

func (s customerSource) GetCustomer(ctx context.Context, id uuid.UUID) (*customer.Customer, error) {
	return s.svc.Get(ctx, id)
}

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(context.Background(), cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	customerSvc := customer.NewService(customerStore.New(db))
	vehicleSvc := vehicle.NewService(vehicleStore.New(db))
	catalogSvc := catalog.NewService(catalogStore.New(db))
	inventorySvc := inventory.NewService(inventoryStore.New(db))
	invoiceSvc := invoice.NewService(invoiceStore.New(db))
	settingsSvc := settings.NewService(settingsStore.New(db))

	workshopCfg, err := settingsSvc.Get(context.Background())
	if err != nil {
		slog.Warn("failed to load settings, using defaults", "error", err)
		workshopCfg = &settings.Settings{Methods: settings.DefaultMethods()}
	}

	var sessions session.Store = session.NewMemoryStore()
	if cfg.Redis.Addr != "" {
		sessions = session.NewRedisStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	}

	key, err := os.Hostname()
	if err != nil || key == "" {
		key = "workstation"
	}

	return model{
		customerSvc:  customerSvc,
		vehicleSvc:   vehicleSvc,
		catalogSvc:   catalogSvc,
		inventorySvc: inventorySvc,
		invoiceSvc:   invoiceSvc,
		workshopCfg:  workshopCfg,
		sessions:     sessions,
		sessionKey:   key,
		priceEdit:    cfg.Workshop.AllowPriceEditing,
		currentView:  ViewMenu,
		invoicesView: view.NewInvoicesModel(invoiceSvc),
	}
}

// newComposeView builds a fresh composition session. One controller per
// session; it is dropped when the view goes back to the menu.
func (m model) newComposeView(editID *uuid.UUID, resume bool) view.ComposeModel {
	ctrl := composition.NewController(composition.Config{
		Invoices:   invoiceRepo{m.invoiceSvc},
		Session:    m.sessions,
		SessionKey: m.sessionKey,
		Settings:   m.workshopCfg,
		Customers:  customerSource{m.customerSvc},
		Inventory:  stockSource{m.inventorySvc},
		Renderer:   pdf.New(),
	})

	return view.NewComposeModel(view.ComposeDeps{
		Controller:        ctrl,
		Customers:         m.customerSvc,
		Vehicles:          m.vehicleSvc,
		Catalog:           m.catalogSvc,
		Inventory:         m.inventorySvc,
		AllowPriceEditing: m.priceEdit,
	}, editID, resume)
}

// invoiceRepo exposes the invoice service under the repository interface the
// controller persists through.
type invoiceRepo struct {
	svc *invoice.Service
}

func (r invoiceRepo) CreateInvoice(ctx context.Context, inv *invoice.Invoice) error {
	return r.svc.Create(ctx, inv)
}

func (r invoiceRepo) UpdateInvoice(ctx context.Context, inv *invoice.Invoice) error {
	return r.svc.Update(ctx, inv)
}

func (r invoiceRepo) GetInvoice(ctx context.Context, id uuid.UUID) (*invoice.Invoice, error) {
	return r.svc.Get(ctx, id)
}

func (r invoiceRepo) ListInvoices(ctx context.Context, filter invoice.ListFilter) ([]*invoice.Invoice, error) {
	return r.svc.List(ctx, filter)
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewCompose
				m.composeView = m.newComposeView(nil, false)

				return m, m.composeView.Init()
			case "2":
				m.currentView = ViewCompose
				m.composeView = m.newComposeView(nil, true)

				return m, m.composeView.Init()
			case "3":
				m.currentView = ViewInvoices
				m.invoicesView = view.NewInvoicesModel(m.invoiceSvc)

				return m, m.invoicesView.Init()
			}
		}

	case view.OpenInvoiceMsg:
		id, err := uuid.Parse(msg.ID)
		if err != nil {
			return m, nil
		}

		m.currentView = ViewCompose
		m.composeView = m.newComposeView(&id, false)

		return m, m.composeView.Init()

	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewCompose:
		var newModel tea.Model
		newModel, cmd = m.composeView.Update(msg)
		m.composeView = newModel.(view.ComposeModel)
	case ViewInvoices:
		var newModel tea.Model
		newModel, cmd = m.invoicesView.Update(msg)
		m.invoicesView = newModel.(view.InvoicesModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"GarageDesk\n\n" +
				"1. New Invoice\n" +
				"2. Resume Draft\n" +
				"3. Invoices\n\n" +
				"q. Quit",
		)
	case ViewCompose:
		return m.composeView.View()
	case ViewInvoices:
		return m.invoicesView.View()
	}

	return "Unknown View"
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
