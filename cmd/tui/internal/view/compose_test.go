package view

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/garagedesk/internal/composition"
	"github.com/MrJamesThe3rd/garagedesk/internal/session"
)

func TestComposeUpdate_CtrlCQuitsFromEveryState(t *testing.T) {
	states := []composeState{
		composeStateCustomers,
		composeStateNewCustomer,
		composeStateVehicles,
		composeStateNewVehicle,
		composeStateItems,
		composeStatePicker,
		composeStateFreeText,
		composeStatePriceEdit,
		composeStateReview,
		composeStateDone,
	}

	for _, state := range states {
		m := NewComposeModel(ComposeDeps{
			Controller: composition.NewController(composition.Config{
				Session: session.NewMemoryStore(),
			}),
		}, nil, false)
		m.state = state

		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})

		require.NotNil(t, cmd, "state %d swallowed ctrl+c", state)
		assert.IsType(t, tea.QuitMsg{}, cmd(), "state %d swallowed ctrl+c", state)
	}
}
