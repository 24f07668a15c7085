package view

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/garagedesk/internal/invoice"
)

type InvoicesModel struct {
	CommonModel
	svc *invoice.Service

	table      table.Model
	invoices   []*invoice.Invoice
	draftsOnly bool
	loading    bool
	err        error
}

func NewInvoicesModel(svc *invoice.Service) InvoicesModel {
	columns := []table.Column{
		{Title: "Date", Width: 12},
		{Title: "Vehicle", Width: 28},
		{Title: "Total", Width: 12},
		{Title: "Status", Width: 10},
		{Title: "Payment", Width: 16},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
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

	return InvoicesModel{svc: svc, table: t}
}

func (m InvoicesModel) Title() string { return "Invoices" }

func (m InvoicesModel) ShortHelp() string {
	return "Enter: edit | d: drafts only | r: refresh | Esc: back"
}

type invoicesLoadedMsg struct {
	invoices []*invoice.Invoice
	err      error
}

func (m InvoicesModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		invoices, err := m.svc.List(ctx, invoice.ListFilter{DraftsOnly: m.draftsOnly})

		return invoicesLoadedMsg{invoices: invoices, err: err}
	}
}

func (m InvoicesModel) Init() tea.Cmd {
	m.loading = true
	return m.loadCmd()
}

func (m InvoicesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case invoicesLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.invoices = msg.invoices
		m.refreshTable()

		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "d":
			m.draftsOnly = !m.draftsOnly
			m.loading = true

			return m, m.loadCmd()
		case "enter", "e":
			idx := m.table.Cursor()
			if idx < 0 || idx >= len(m.invoices) {
				return m, nil
			}

			id := m.invoices[idx].ID

			return m, func() tea.Msg { return OpenInvoiceMsg{ID: id.String()} }
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m *InvoicesModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.invoices))

	for _, inv := range m.invoices {
		vehicleLabel := ""
		if inv.Vehicle != nil {
			vehicleLabel = inv.Vehicle.Label()
		}

		payment := "draft"
		if inv.PaymentMethod != nil {
			payment = *inv.PaymentMethod
		}

		rows = append(rows, table.Row{
			FormatDate(inv.Date),
			vehicleLabel,
			FormatMoney(inv.Total),
			string(inv.Status),
			payment,
		})
	}

	m.table.SetRows(rows)
}

func (m InvoicesModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading invoices...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	header := "All invoices"
	if m.draftsOnly {
		header = "Drafts"
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			Render(m.table.View()),
	)

	return lipgloss.NewStyle().Padding(1).Render(content)
}
