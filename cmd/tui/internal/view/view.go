package view

import (
	tea "github.com/charmbracelet/bubbletea"
)

// View is the interface that all TUI screens implement.
type View interface {
	tea.Model
	Title() string
	ShortHelp() string
}

// CommonModel is embedded by all views.
type CommonModel struct{}

type BackMsg struct{}

func Back() tea.Msg {
	return BackMsg{}
}

// OpenInvoiceMsg asks the root model to open the composer on a persisted
// invoice for in-place editing.
type OpenInvoiceMsg struct {
	ID string
}
