package view

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/garagedesk/internal/catalog"
	"github.com/MrJamesThe3rd/garagedesk/internal/composition"
	"github.com/MrJamesThe3rd/garagedesk/internal/customer"
	"github.com/MrJamesThe3rd/garagedesk/internal/inventory"
	"github.com/MrJamesThe3rd/garagedesk/internal/pricing"
	"github.com/MrJamesThe3rd/garagedesk/internal/vehicle"
)

const restoredNotice = time.Second + 100*time.Millisecond

type composeState int

const (
	composeStateCustomers composeState = iota
	composeStateNewCustomer
	composeStateVehicles
	composeStateNewVehicle
	composeStateItems
	composeStatePicker
	composeStateFreeText
	composeStatePriceEdit
	composeStateReview
	composeStateDone
)

type pickerSource int

const (
	pickerCatalog pickerSource = iota
	pickerInventory
)

type ComposeModel struct {
	CommonModel
	ctrl           *composition.Controller
	customerSvc    *customer.Service
	vehicleSvc     *vehicle.Service
	catalogSvc     *catalog.Service
	inventorySvc   *inventory.Service
	allowPriceEdit bool

	// editID opens the composer on a persisted invoice; resume picks up the
	// session draft instead. Both empty means a fresh invoice.
	editID *uuid.UUID
	resume bool

	state  composeState
	source pickerSource

	customerTable  table.Model
	vehicleTable   table.Model
	itemTable      table.Model
	pickerTable    table.Model
	customers      []*customer.Customer
	vehicles       []*vehicle.Vehicle
	catalogItems   []*catalog.Item
	inventoryItems []*inventory.Item

	form *huh.Form

	// Form bindings
	formName      string
	formPhone     string
	formEmail     string
	formMake      string
	formModel     string
	formYear      string
	formPlate     string
	formDesc      string
	formPrice     string
	formStatus    string
	formMethod    string
	formDiscKind  string
	formDiscValue string
	formTech      string
	formSuper     string
	formNotes     string

	result  *composition.SaveResult
	docPath string
	status  string
	err     error
}

type ComposeDeps struct {
	Controller *composition.Controller
	Customers  *customer.Service
	Vehicles   *vehicle.Service
	Catalog    *catalog.Service
	Inventory  *inventory.Service

	AllowPriceEditing bool
}

func NewComposeModel(deps ComposeDeps, editID *uuid.UUID, resume bool) ComposeModel {
	return ComposeModel{
		ctrl:           deps.Controller,
		customerSvc:    deps.Customers,
		vehicleSvc:     deps.Vehicles,
		catalogSvc:     deps.Catalog,
		inventorySvc:   deps.Inventory,
		allowPriceEdit: deps.AllowPriceEditing,
		editID:         editID,
		resume:         resume,
		customerTable:  newTable([]table.Column{{Title: "Name", Width: 28}, {Title: "Phone", Width: 16}, {Title: "Email", Width: 26}}),
		vehicleTable:   newTable([]table.Column{{Title: "Make", Width: 14}, {Title: "Model", Width: 16}, {Title: "Year", Width: 6}, {Title: "Plate", Width: 10}}),
		itemTable:      newTable([]table.Column{{Title: "Description", Width: 32}, {Title: "Qty", Width: 5}, {Title: "Unit", Width: 12}, {Title: "Line", Width: 12}, {Title: "Stock", Width: 7}}),
		pickerTable:    newTable([]table.Column{{Title: "Name", Width: 36}, {Title: "Price", Width: 12}, {Title: "Stock", Width: 7}}),
	}
}

func newTable(columns []table.Column) table.Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

func (m ComposeModel) Title() string {
	if m.editID != nil {
		return "Edit Invoice"
	}

	return "New Invoice"
}

func (m ComposeModel) ShortHelp() string {
	switch m.state {
	case composeStateCustomers:
		return "Enter: select | a: new customer | r: refresh | Esc: back"
	case composeStateVehicles:
		return "Enter: select | a: new vehicle | Esc: customers"
	case composeStateItems:
		help := "c: catalog | i: inventory | f: free text | +/-: qty | x: remove | s: save draft | v: vehicle | Enter: finalize | Esc: back"
		if m.allowPriceEdit {
			help = "p: price | " + help
		}

		return help
	case composeStatePicker:
		return "Enter: add | Esc: back"
	case composeStateDone:
		return "Esc: back to menu"
	}

	return "Navigate form | Esc: cancel"
}

// Teardown forwards the unmount signal to the controller, which decides
// whether an autosave is warranted. Called by the root model on exit paths.
func (m ComposeModel) Teardown() {
	ctx, cancel := DbCtx()
	defer cancel()
	m.ctrl.Teardown(ctx)
}

func (m ComposeModel) Init() tea.Cmd {
	switch {
	case m.editID != nil:
		return m.beginEditCmd(*m.editID)
	case m.resume:
		return m.resumeDraftCmd()
	}

	return m.loadCustomersCmd()
}

// Messages. Directory loads carry the selector that issued them so the
// controller can discard stale responses.

type composeCustomersMsg struct {
	customers []*customer.Customer
	err       error
}

type composeVehiclesMsg struct {
	customerID uuid.UUID
	vehicles   []*vehicle.Vehicle
	err        error
}

type composeSourcesMsg struct {
	catalogItems   []*catalog.Item
	inventoryItems []*inventory.Item
	err            error
}

type composeSeededMsg struct {
	resumed bool
	err     error
}

type composeSavedMsg struct {
	res *composition.SaveResult
	err error
}

type composeDoneMsg struct {
	res     *composition.SaveResult
	docPath string
	err     error
}

type composeCreatedMsg struct {
	err error
}

type restoredNoticeMsg struct{}

func (m ComposeModel) loadCustomersCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		customers, err := m.customerSvc.List(ctx, "")

		return composeCustomersMsg{customers: customers, err: err}
	}
}

func (m ComposeModel) loadVehiclesCmd(customerID uuid.UUID) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		vehicles, err := m.vehicleSvc.List(ctx, vehicle.ListFilter{CustomerID: &customerID})

		return composeVehiclesMsg{customerID: customerID, vehicles: vehicles, err: err}
	}
}

func (m ComposeModel) loadSourcesCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		catalogItems, err := m.catalogSvc.List(ctx, true)
		if err != nil {
			return composeSourcesMsg{err: err}
		}

		inventoryItems, err := m.inventorySvc.List(ctx)

		return composeSourcesMsg{catalogItems: catalogItems, inventoryItems: inventoryItems, err: err}
	}
}

func (m ComposeModel) beginEditCmd(id uuid.UUID) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		return composeSeededMsg{err: m.ctrl.BeginEdit(ctx, id)}
	}
}

func (m ComposeModel) resumeDraftCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		resumed, err := m.ctrl.ResumeDraft(ctx)

		return composeSeededMsg{resumed: resumed, err: err}
	}
}

func (m ComposeModel) saveDraftCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		res, err := m.ctrl.Save(ctx)

		return composeSavedMsg{res: res, err: err}
	}
}

func (m ComposeModel) completeCmd(status composition.InvoiceStatus) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		res, err := m.ctrl.Complete(ctx, status)
		if err != nil {
			return composeDoneMsg{err: err}
		}

		docPath := ""
		if len(res.Document) > 0 {
			docPath = fmt.Sprintf("invoice-%s.pdf", res.ID)
			if writeErr := os.WriteFile(docPath, res.Document, 0o644); writeErr != nil {
				docPath = ""
			}
		}

		return composeDoneMsg{res: res, docPath: docPath}
	}
}

func (m ComposeModel) createCustomerCmd(params customer.CreateParams) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		_, err := m.customerSvc.Create(ctx, params)

		return composeCreatedMsg{err: err}
	}
}

func (m ComposeModel) createVehicleCmd(params vehicle.CreateParams) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		_, err := m.vehicleSvc.Create(ctx, params)

		return composeCreatedMsg{err: err}
	}
}

func (m ComposeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Quit must work from every state, forms and pickers included, and still
	// run the unmount autosave.
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "ctrl+c" {
		m.Teardown()
		return m, tea.Quit
	}

	switch msg := msg.(type) {
	case composeCustomersMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.customers = msg.customers
		m.refreshCustomerTable()

		return m, nil

	case composeVehiclesMsg:
		return m.handleVehiclesLoaded(msg)

	case composeSourcesMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Load failed: %v", msg.err)
			m.state = composeStateItems

			return m, nil
		}

		m.catalogItems = msg.catalogItems
		m.inventoryItems = msg.inventoryItems
		m.refreshPickerTable()

		return m, nil

	case composeSeededMsg:
		return m.handleSeeded(msg)

	case composeSavedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Save failed: %v", msg.err)
			return m, nil
		}

		m.status = fmt.Sprintf("Draft saved (%s)", msg.res.Op)

		return m, nil

	case composeDoneMsg:
		if msg.err != nil {
			m.status = completionError(msg.err)
			m.state = composeStateItems

			return m, nil
		}

		m.result = msg.res
		m.docPath = msg.docPath
		m.state = composeStateDone

		return m, nil

	case composeCreatedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}

		switch m.state {
		case composeStateNewCustomer:
			m.state = composeStateCustomers
			m.form = nil

			return m, m.loadCustomersCmd()
		case composeStateNewVehicle:
			m.state = composeStateVehicles
			m.form = nil

			if c := m.ctrl.Snapshot().Customer; c != nil {
				return m, m.loadVehiclesCmd(c.ID)
			}
		}

		return m, nil

	case restoredNoticeMsg:
		// Re-render; the controller's phase has reverted to idle by now.
		return m, nil
	}

	switch m.state {
	case composeStateCustomers:
		return m.updateCustomers(msg)
	case composeStateVehicles:
		return m.updateVehicles(msg)
	case composeStateItems:
		return m.updateItems(msg)
	case composeStatePicker:
		return m.updatePicker(msg)
	case composeStateNewCustomer, composeStateNewVehicle, composeStateFreeText, composeStatePriceEdit:
		return m.updateForm(msg)
	case composeStateReview:
		return m.updateReview(msg)
	case composeStateDone:
		if _, ok := msg.(tea.KeyMsg); ok {
			return m, Back
		}
	}

	return m, nil
}

func completionError(err error) string {
	var vErr *composition.ValidationError
	if errors.As(err, &vErr) {
		return fmt.Sprintf("Cannot finalize: %s %s", vErr.Field, vErr.Reason)
	}

	if errors.Is(err, composition.ErrBusy) {
		return "Already finalizing, hold on"
	}

	return fmt.Sprintf("Error: %v", err)
}

func (m ComposeModel) handleSeeded(msg composeSeededMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.status = fmt.Sprintf("Error: %v", msg.err)
		m.state = composeStateCustomers

		return m, m.loadCustomersCmd()
	}

	if m.resume && !msg.resumed {
		m.status = "No saved draft to resume"
		m.state = composeStateCustomers

		return m, m.loadCustomersCmd()
	}

	// Customer and items are seeded; the vehicle is matched once the
	// directory answers.
	m.state = composeStateItems
	m.refreshItemTable()

	if c := m.ctrl.Snapshot().Customer; c != nil {
		return m, m.loadVehiclesCmd(c.ID)
	}

	return m, nil
}

func (m ComposeModel) handleVehiclesLoaded(msg composeVehiclesMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.status = fmt.Sprintf("Load failed: %v", msg.err)
		return m, nil
	}

	match := m.ctrl.VehiclesLoaded(msg.customerID, msg.vehicles)

	snap := m.ctrl.Snapshot()
	if snap.Customer == nil || snap.Customer.ID != msg.customerID {
		// Stale response; the controller ignored it too.
		return m, nil
	}

	m.vehicles = msg.vehicles
	m.refreshVehicleTable()
	m.refreshItemTable()

	if match == nil {
		return m, nil
	}

	switch match.Kind {
	case composition.MatchExact:
		m.status = "Vehicle restored"
	case composition.MatchPartial:
		m.status = fmt.Sprintf("Vehicle matched by make and model: %s", match.Vehicle.Snapshot().Label())
	default:
		m.status = "Saved vehicle is no longer on file; press v to pick one"
	}

	return m, tea.Tick(restoredNotice, func(time.Time) tea.Msg { return restoredNoticeMsg{} })
}

func (m ComposeModel) updateCustomers(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			m.Teardown()
			return m, Back
		case "r":
			return m, m.loadCustomersCmd()
		case "a":
			return m.enterCustomerForm()
		case "enter":
			idx := m.customerTable.Cursor()
			if idx < 0 || idx >= len(m.customers) {
				return m, nil
			}

			cust := m.customers[idx]
			m.ctrl.SelectCustomer(cust)
			m.state = composeStateVehicles
			m.vehicles = nil
			m.refreshVehicleTable()
			m.refreshItemTable()

			return m, m.loadVehiclesCmd(cust.ID)
		}
	}

	var cmd tea.Cmd
	m.customerTable, cmd = m.customerTable.Update(msg)

	return m, cmd
}

func (m ComposeModel) updateVehicles(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			m.state = composeStateCustomers
			return m, nil
		case "a":
			return m.enterVehicleForm()
		case "enter":
			idx := m.vehicleTable.Cursor()
			if idx < 0 || idx >= len(m.vehicles) {
				return m, nil
			}

			m.ctrl.SelectVehicle(m.vehicles[idx])
			m.state = composeStateItems
			m.refreshItemTable()

			return m, nil
		}
	}

	var cmd tea.Cmd
	m.vehicleTable, cmd = m.vehicleTable.Update(msg)

	return m, cmd
}

func (m ComposeModel) updateItems(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.itemTable, cmd = m.itemTable.Update(msg)

		return m, cmd
	}

	switch keyMsg.String() {
	case "esc":
		m.state = composeStateVehicles
		return m, nil
	case "v":
		m.state = composeStateVehicles
		return m, nil
	case "c":
		m.source = pickerCatalog
		m.state = composeStatePicker
		m.refreshPickerTable()

		return m, m.loadSourcesCmd()
	case "i":
		m.source = pickerInventory
		m.state = composeStatePicker
		m.refreshPickerTable()

		return m, m.loadSourcesCmd()
	case "f":
		return m.enterFreeTextForm()
	case "p":
		if m.allowPriceEdit {
			return m.enterPriceForm()
		}

		m.status = "Price editing is disabled"

		return m, nil
	case "+", "=":
		return m.adjustQuantity(1), nil
	case "-":
		return m.adjustQuantity(-1), nil
	case "x":
		if item := m.selectedItem(); item != nil {
			m.ctrl.RemoveItem(item.ID)
			m.refreshItemTable()
		}

		return m, nil
	case "s":
		return m, m.saveDraftCmd()
	case "enter":
		return m.enterReviewForm()
	}

	var cmd tea.Cmd
	m.itemTable, cmd = m.itemTable.Update(msg)

	return m, cmd
}

func (m ComposeModel) selectedItem() *composition.LineItem {
	items := m.ctrl.Snapshot().Items
	idx := m.itemTable.Cursor()

	if idx < 0 || idx >= len(items) {
		return nil
	}

	return &items[idx]
}

func (m ComposeModel) adjustQuantity(delta int64) ComposeModel {
	item := m.selectedItem()
	if item == nil {
		return m
	}

	applied, limited := m.ctrl.UpdateQuantity(item.ID, item.Quantity+delta)
	if limited {
		m.status = fmt.Sprintf("Only %d in stock", applied)
	} else {
		m.status = ""
	}

	m.refreshItemTable()

	return m
}

func (m ComposeModel) updatePicker(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			m.state = composeStateItems
			return m, nil
		case "enter":
			return m.addPicked()
		}
	}

	var cmd tea.Cmd
	m.pickerTable, cmd = m.pickerTable.Update(msg)

	return m, cmd
}

func (m ComposeModel) addPicked() (tea.Model, tea.Cmd) {
	var sel composition.Selection

	idx := m.pickerTable.Cursor()

	switch m.source {
	case pickerCatalog:
		if idx < 0 || idx >= len(m.catalogItems) {
			return m, nil
		}

		sel = composition.SelectionFromCatalog(m.catalogItems[idx])
	case pickerInventory:
		if idx < 0 || idx >= len(m.inventoryItems) {
			return m, nil
		}

		sel = composition.SelectionFromInventory(m.inventoryItems[idx])
	}

	if _, err := m.ctrl.AddItem(sel); err != nil {
		m.status = addItemError(err)
		return m, nil
	}

	m.status = ""
	m.state = composeStateItems
	m.refreshItemTable()

	return m, nil
}

func addItemError(err error) string {
	switch {
	case errors.Is(err, composition.ErrOutOfStock):
		return "Out of stock"
	case errors.Is(err, composition.ErrDuplicateItem):
		return "Already on the invoice"
	case errors.Is(err, composition.ErrMissingPrice):
		return "Item has no usable price"
	}

	return fmt.Sprintf("Error: %v", err)
}

// Forms.

func (m ComposeModel) enterCustomerForm() (tea.Model, tea.Cmd) {
	m.formName, m.formPhone, m.formEmail = "", "", ""
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Name").Value(&m.formName).Validate(required("name")),
			huh.NewInput().Title("Phone").Value(&m.formPhone),
			huh.NewInput().Title("Email").Value(&m.formEmail),
		),
	).WithWidth(45).WithShowHelp(false)
	m.state = composeStateNewCustomer

	return m, m.form.Init()
}

func (m ComposeModel) enterVehicleForm() (tea.Model, tea.Cmd) {
	m.formMake, m.formModel, m.formYear, m.formPlate = "", "", "", ""
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Make").Value(&m.formMake).Validate(required("make")),
			huh.NewInput().Title("Model").Value(&m.formModel).Validate(required("model")),
			huh.NewInput().Title("Year").Value(&m.formYear),
			huh.NewInput().Title("Plate").Value(&m.formPlate),
		),
	).WithWidth(45).WithShowHelp(false)
	m.state = composeStateNewVehicle

	return m, m.form.Init()
}

func (m ComposeModel) enterFreeTextForm() (tea.Model, tea.Cmd) {
	m.formDesc, m.formPrice = "", ""
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Description").Value(&m.formDesc).Validate(required("description")),
			huh.NewInput().Title("Unit price").Placeholder("34,90").Value(&m.formPrice).Validate(validMoney),
		),
	).WithWidth(45).WithShowHelp(false)
	m.state = composeStateFreeText

	return m, m.form.Init()
}

func (m ComposeModel) enterPriceForm() (tea.Model, tea.Cmd) {
	item := m.selectedItem()
	if item == nil {
		return m, nil
	}

	m.formPrice = strings.TrimSuffix(FormatMoney(item.UnitPrice), " €")
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Unit price for " + item.Description).Value(&m.formPrice).Validate(validMoney),
		),
	).WithWidth(45).WithShowHelp(false)
	m.state = composeStatePriceEdit

	return m, m.form.Init()
}

func (m ComposeModel) enterReviewForm() (tea.Model, tea.Cmd) {
	snap := m.ctrl.Snapshot()

	m.formStatus = string(snap.Status)
	m.formMethod = snap.PaymentMethodID
	m.formTech = snap.Technician
	m.formSuper = snap.Supervisor
	m.formNotes = snap.Notes
	m.formDiscKind = string(snap.Discount.Kind)
	m.formDiscValue = ""

	methods := m.ctrl.Settings().Methods
	methodOptions := make([]huh.Option[string], 0, len(methods))
	for _, method := range methods {
		methodOptions = append(methodOptions, huh.NewOption(method.Label, method.ID))
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Payment status").
				Options(
					huh.NewOption("Unpaid", string(composition.StatusUnpaid)),
					huh.NewOption("Paid", string(composition.StatusPaid)),
				).
				Value(&m.formStatus),

			huh.NewSelect[string]().
				Title("Payment method").
				Options(methodOptions...).
				Value(&m.formMethod),

			huh.NewSelect[string]().
				Title("Discount").
				Options(
					huh.NewOption("None", ""),
					huh.NewOption("Percent", string(pricing.DiscountPercent)),
					huh.NewOption("Fixed amount", string(pricing.DiscountFixed)),
				).
				Value(&m.formDiscKind),

			huh.NewInput().Title("Discount value").Placeholder("10 or 25,00").Value(&m.formDiscValue),
			huh.NewInput().Title("Technician").Value(&m.formTech),
			huh.NewInput().Title("Supervisor").Value(&m.formSuper),
			huh.NewInput().Title("Notes").Value(&m.formNotes),
		),
	).WithWidth(60).WithShowHelp(false)
	m.state = composeStateReview

	return m, m.form.Init()
}

func (m ComposeModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.form = nil

		switch m.state {
		case composeStateNewCustomer:
			m.state = composeStateCustomers
		case composeStateNewVehicle:
			m.state = composeStateVehicles
		default:
			m.state = composeStateItems
		}

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m.submitForm()
}

func (m ComposeModel) submitForm() (tea.Model, tea.Cmd) {
	state := m.state
	m.form = nil

	switch state {
	case composeStateNewCustomer:
		return m, m.createCustomerCmd(customer.CreateParams{
			Name:  m.formName,
			Phone: m.formPhone,
			Email: m.formEmail,
		})

	case composeStateNewVehicle:
		snap := m.ctrl.Snapshot()
		if snap.Customer == nil {
			m.state = composeStateCustomers
			return m, nil
		}

		year := 0
		fmt.Sscanf(m.formYear, "%d", &year)

		return m, m.createVehicleCmd(vehicle.CreateParams{
			CustomerID: snap.Customer.ID,
			Make:       m.formMake,
			Model:      m.formModel,
			Year:       year,
			PlateNo:    m.formPlate,
		})

	case composeStateFreeText:
		price, _ := parseMoney(m.formPrice)
		if _, err := m.ctrl.AddItem(composition.FreeTextSelection(m.formDesc, price)); err != nil {
			m.status = addItemError(err)
		}

		m.state = composeStateItems
		m.refreshItemTable()

		return m, nil

	case composeStatePriceEdit:
		if item := m.selectedItem(); item != nil {
			price, _ := parseMoney(m.formPrice)
			if err := m.ctrl.UpdateUnitPrice(item.ID, price); err != nil {
				m.status = fmt.Sprintf("Error: %v", err)
			}
		}

		m.state = composeStateItems
		m.refreshItemTable()

		return m, nil
	}

	m.state = composeStateItems

	return m, nil
}

func (m ComposeModel) updateReview(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.form = nil
		m.state = composeStateItems

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.form = nil

	status := composition.InvoiceStatus(m.formStatus)
	m.ctrl.SetStatus(status)
	m.ctrl.SetPaymentMethod(m.formMethod)
	m.ctrl.SetTechnician(m.formTech)
	m.ctrl.SetSupervisor(m.formSuper)
	m.ctrl.SetNotes(m.formNotes)
	m.ctrl.SetDiscount(m.parseDiscount())

	return m, m.completeCmd(status)
}

func (m ComposeModel) parseDiscount() pricing.Discount {
	value := strings.TrimSpace(m.formDiscValue)

	switch pricing.DiscountKind(m.formDiscKind) {
	case pricing.DiscountPercent:
		d, err := decimal.NewFromString(strings.ReplaceAll(value, ",", "."))
		if err != nil {
			return pricing.Discount{Kind: pricing.DiscountPercent}
		}

		// Percent entered by the user, stored in basis points.
		return pricing.Discount{
			Kind:  pricing.DiscountPercent,
			Value: d.Mul(decimal.NewFromInt(100)).Round(0).IntPart(),
		}
	case pricing.DiscountFixed:
		cents, err := parseMoney(value)
		if err != nil {
			return pricing.Discount{Kind: pricing.DiscountFixed}
		}

		return pricing.Discount{Kind: pricing.DiscountFixed, Value: cents}
	}

	return pricing.Discount{Kind: pricing.DiscountPercent}
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s cannot be empty", field)
		}

		return nil
	}
}

func validMoney(s string) error {
	if _, err := parseMoney(s); err != nil {
		return fmt.Errorf("not a valid amount")
	}

	return nil
}

// parseMoney accepts "34,90", "34.90" and "1.234,56", returning cents.
func parseMoney(s string) (int64, error) {
	clean := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "€"))
	if strings.Contains(clean, ",") {
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.ReplaceAll(clean, ",", ".")
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return 0, err
	}

	return d.Mul(decimal.NewFromInt(100)).Round(0).IntPart(), nil
}

// Tables.

func (m *ComposeModel) refreshCustomerTable() {
	rows := make([]table.Row, 0, len(m.customers))
	for _, c := range m.customers {
		rows = append(rows, table.Row{c.Name, c.Phone, c.Email})
	}

	m.customerTable.SetRows(rows)
}

func (m *ComposeModel) refreshVehicleTable() {
	rows := make([]table.Row, 0, len(m.vehicles))
	for _, v := range m.vehicles {
		year := ""
		if v.Year != 0 {
			year = fmt.Sprintf("%d", v.Year)
		}

		rows = append(rows, table.Row{v.Make, v.Model, year, v.PlateNo})
	}

	m.vehicleTable.SetRows(rows)
}

func (m *ComposeModel) refreshItemTable() {
	items := m.ctrl.Snapshot().Items

	rows := make([]table.Row, 0, len(items))
	for _, item := range items {
		stock := "-"
		if item.InventoryBacked {
			stock = fmt.Sprintf("%d", item.MaxStock)
		}

		rows = append(rows, table.Row{
			item.Description,
			fmt.Sprintf("%d", item.Quantity),
			FormatMoney(item.UnitPrice),
			FormatMoney(item.Quantity * item.UnitPrice),
			stock,
		})
	}

	m.itemTable.SetRows(rows)
}

func (m *ComposeModel) refreshPickerTable() {
	var rows []table.Row

	switch m.source {
	case pickerCatalog:
		for _, item := range m.catalogItems {
			rows = append(rows, table.Row{item.Name, FormatMoney(item.Price), "-"})
		}
	case pickerInventory:
		for _, item := range m.inventoryItems {
			rows = append(rows, table.Row{item.Name, FormatMoney(item.SalePrice), fmt.Sprintf("%d", item.CurrentStock)})
		}
	}

	m.pickerTable.SetRows(rows)
}

// Rendering.

var (
	panelStyle  = lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("240"))
	faintStyle  = lipgloss.NewStyle().Faint(true)
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
)

func (m ComposeModel) View() string {
	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	var content string

	switch m.state {
	case composeStateCustomers:
		content = "Select customer\n\n" + panelStyle.Render(m.customerTable.View())
	case composeStateVehicles:
		content = m.header() + "Select vehicle\n\n" + panelStyle.Render(m.vehicleTable.View())
	case composeStateItems:
		content = m.header() + panelStyle.Render(m.itemTable.View()) + "\n" + m.totalsPanel()
	case composeStatePicker:
		title := "Catalog"
		if m.source == pickerInventory {
			title = "Inventory"
		}

		content = m.header() + title + "\n\n" + panelStyle.Render(m.pickerTable.View())
	case composeStateNewCustomer, composeStateNewVehicle, composeStateFreeText, composeStatePriceEdit, composeStateReview:
		if m.form != nil {
			content = m.header() + m.form.View()
		}
	case composeStateDone:
		content = m.donePanel()
	}

	if m.status != "" {
		content = noticeStyle.Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m ComposeModel) header() string {
	snap := m.ctrl.Snapshot()

	parts := make([]string, 0, 3)
	if snap.Customer != nil {
		parts = append(parts, snap.Customer.Name)
	}

	if snap.Vehicle != nil {
		parts = append(parts, snap.Vehicle.Snapshot().Label())
	}

	if snap.Phase == composition.PhaseRestoring {
		parts = append(parts, "restoring...")
	} else if snap.Phase == composition.PhaseRestoredComplete {
		parts = append(parts, "restored")
	}

	if len(parts) == 0 {
		return ""
	}

	return faintStyle.Render(strings.Join(parts, " | ")) + "\n\n"
}

func (m ComposeModel) totalsPanel() string {
	totals := m.ctrl.Totals()
	snap := m.ctrl.Snapshot()

	lines := []string{
		fmt.Sprintf("Subtotal  %s", FormatMoney(totals.Subtotal)),
	}

	if totals.DiscountAmount != 0 {
		lines = append(lines, fmt.Sprintf("Discount  -%s", FormatMoney(totals.DiscountAmount)))
	}

	if totals.Tax != 0 {
		lines = append(lines, fmt.Sprintf("Tax       %s", FormatMoney(totals.Tax)))
	}

	lines = append(lines, fmt.Sprintf("Total     %s", FormatMoney(totals.Total)))

	if snap.EditingID != nil {
		lines = append(lines, faintStyle.Render("editing saved invoice"))
	}

	return strings.Join(lines, "\n")
}

func (m ComposeModel) donePanel() string {
	verb := "saved"
	if m.result != nil && m.result.Op == composition.SaveCreated {
		verb = "created"
	}

	msg := fmt.Sprintf("Invoice %s.", verb)
	if m.docPath != "" {
		msg += fmt.Sprintf("\nDocument written to %s", m.docPath)
	}

	return lipgloss.NewStyle().
		Padding(1, 2).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("63")).
		Render(msg)
}
