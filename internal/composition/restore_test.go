package composition_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/garagedesk/internal/composition"
	"github.com/MrJamesThe3rd/garagedesk/internal/invoice"
	"github.com/MrJamesThe3rd/garagedesk/internal/pricing"
	"github.com/MrJamesThe3rd/garagedesk/internal/session"
	"github.com/MrJamesThe3rd/garagedesk/internal/vehicle"
)

func persistedInvoice(customerID uuid.UUID, snap *vehicle.Snapshot) *invoice.Invoice {
	method := "Card/POS"

	return &invoice.Invoice{
		CustomerID: customerID,
		Vehicle:    snap,
		Items: []invoice.Item{
			{Description: "Oil change", Quantity: 1, Price: 3500},
			{Description: "Brake pads", Quantity: 2, Price: 8000},
		},
		Subtotal:      19500,
		Discount:      500,
		Tax:           0,
		Total:         19000,
		Status:        invoice.StatusPaid,
		PaymentMethod: &method,
		Notes:         "customer waiting",
		Terms:         "due on receipt",
		Technician:    "Sam",
		Date:          time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC),
	}
}

func TestBeginEdit_SeedsCompositionAndEntersRestoring(t *testing.T) {
	h := newHarness()
	cust := h.addCustomer("Ada")

	id := h.persist(persistedInvoice(cust.ID, &vehicle.Snapshot{Make: "Toyota", Model: "Corolla", PlateNo: "ABC-123"}))

	require.NoError(t, h.ctrl.BeginEdit(context.Background(), id))

	st := h.ctrl.Snapshot()
	assert.Equal(t, composition.PhaseRestoring, st.Phase)
	assert.Equal(t, cust.ID, st.Customer.ID)
	assert.Nil(t, st.Vehicle)
	// Items stay staged until the vehicle list arrives.
	assert.Empty(t, st.Items)
	assert.Equal(t, pricing.Discount{Kind: pricing.DiscountFixed, Value: 500}, st.Discount)
	assert.Equal(t, "customer waiting", st.Notes)
	assert.Equal(t, "due on receipt", st.Terms)
	assert.Equal(t, "Sam", st.Technician)
	assert.Equal(t, "card", st.PaymentMethodID)
	assert.Equal(t, composition.StatusPaid, st.Status)
	require.NotNil(t, st.EditingID)
	assert.Equal(t, id, *st.EditingID)
}

func TestBeginEdit_PendingStatusRestoresAsUnpaid(t *testing.T) {
	h := newHarness()
	cust := h.addCustomer("Ada")

	rec := persistedInvoice(cust.ID, nil)
	rec.Status = invoice.StatusPending
	other := "Other"
	rec.PaymentMethod = &other
	id := h.persist(rec)

	require.NoError(t, h.ctrl.BeginEdit(context.Background(), id))
	assert.Equal(t, composition.StatusUnpaid, h.ctrl.Snapshot().Status)
}

func TestVehiclesLoaded_ExactMatch(t *testing.T) {
	h := newHarness()
	cust := h.addCustomer("Ada")

	id := h.persist(persistedInvoice(cust.ID, &vehicle.Snapshot{Make: "Toyota", Model: "Corolla", PlateNo: "ABC-123"}))
	require.NoError(t, h.ctrl.BeginEdit(context.Background(), id))

	other := testVehicle(cust.ID, "Honda", "Civic", "XYZ-999")
	target := testVehicle(cust.ID, "toyota", "COROLLA", " abc-123 ")

	match := h.ctrl.VehiclesLoaded(cust.ID, []*vehicle.Vehicle{other, target})

	require.NotNil(t, match)
	assert.Equal(t, composition.MatchExact, match.Kind)
	require.NotNil(t, match.Vehicle)
	assert.Equal(t, target.ID, match.Vehicle.ID)

	st := h.ctrl.Snapshot()
	assert.Equal(t, target.ID, st.Vehicle.ID)
	assert.Equal(t, composition.PhaseRestoredComplete, st.Phase)

	// Persisted items arrive unmodified.
	require.Len(t, st.Items, 2)
	assert.Equal(t, "Oil change", st.Items[0].Description)
	assert.Equal(t, int64(3500), st.Items[0].UnitPrice)
	assert.Equal(t, "Brake pads", st.Items[1].Description)
	assert.Equal(t, int64(2), st.Items[1].Quantity)
}

func TestVehiclesLoaded_ExactMatchEmptyPlates(t *testing.T) {
	h := newHarness()
	cust := h.addCustomer("Ada")

	id := h.persist(persistedInvoice(cust.ID, &vehicle.Snapshot{Make: "Toyota", Model: "Corolla"}))
	require.NoError(t, h.ctrl.BeginEdit(context.Background(), id))

	target := testVehicle(cust.ID, "Toyota", "Corolla", "")

	match := h.ctrl.VehiclesLoaded(cust.ID, []*vehicle.Vehicle{target})
	require.NotNil(t, match)
	assert.Equal(t, composition.MatchExact, match.Kind)
}

func TestVehiclesLoaded_PartialMatchTakesFirstInListOrder(t *testing.T) {
	h := newHarness()
	cust := h.addCustomer("Ada")

	id := h.persist(persistedInvoice(cust.ID, &vehicle.Snapshot{Make: "Toyota", Model: "Corolla", PlateNo: "GONE-1"}))
	require.NoError(t, h.ctrl.BeginEdit(context.Background(), id))

	first := testVehicle(cust.ID, "Toyota", "Corolla", "AAA-111")
	second := testVehicle(cust.ID, "Toyota", "Corolla", "BBB-222")

	match := h.ctrl.VehiclesLoaded(cust.ID, []*vehicle.Vehicle{first, second})

	require.NotNil(t, match)
	assert.Equal(t, composition.MatchPartial, match.Kind)
	assert.Equal(t, first.ID, match.Vehicle.ID)
}

func TestVehiclesLoaded_NoMatchStillCommitsItems(t *testing.T) {
	h := newHarness()
	cust := h.addCustomer("Ada")

	id := h.persist(persistedInvoice(cust.ID, &vehicle.Snapshot{Make: "Lada", Model: "Niva", PlateNo: "OLD-1"}))
	require.NoError(t, h.ctrl.BeginEdit(context.Background(), id))

	match := h.ctrl.VehiclesLoaded(cust.ID, []*vehicle.Vehicle{testVehicle(cust.ID, "Honda", "Civic", "X")})

	require.NotNil(t, match)
	assert.Equal(t, composition.MatchNone, match.Kind)

	st := h.ctrl.Snapshot()
	assert.Nil(t, st.Vehicle)
	assert.Len(t, st.Items, 2)
	assert.Equal(t, composition.PhaseRestoredComplete, st.Phase)
}

func TestVehiclesLoaded_RecordWithoutVehicleStillCommits(t *testing.T) {
	h := newHarness()
	cust := h.addCustomer("Ada")

	id := h.persist(persistedInvoice(cust.ID, nil))
	require.NoError(t, h.ctrl.BeginEdit(context.Background(), id))
	assert.Equal(t, composition.PhaseRestoring, h.ctrl.Snapshot().Phase)

	match := h.ctrl.VehiclesLoaded(cust.ID, []*vehicle.Vehicle{testVehicle(cust.ID, "Honda", "Civic", "H-1")})

	require.NotNil(t, match)
	assert.Equal(t, composition.MatchNone, match.Kind)

	st := h.ctrl.Snapshot()
	assert.Nil(t, st.Vehicle)
	assert.Len(t, st.Items, 2)
	assert.Equal(t, composition.PhaseRestoredComplete, st.Phase)
}

func TestVehiclesLoaded_ZeroSnapshotTreatedAsNoVehicle(t *testing.T) {
	h := newHarness()
	cust := h.addCustomer("Ada")

	id := h.persist(persistedInvoice(cust.ID, &vehicle.Snapshot{}))
	require.NoError(t, h.ctrl.BeginEdit(context.Background(), id))

	match := h.ctrl.VehiclesLoaded(cust.ID, nil)

	require.NotNil(t, match)
	assert.Equal(t, composition.MatchNone, match.Kind)
	assert.Len(t, h.ctrl.Snapshot().Items, 2)
	assert.Equal(t, composition.PhaseRestoredComplete, h.ctrl.Snapshot().Phase)
}

func TestVehiclesLoaded_StaleCustomerDiscarded(t *testing.T) {
	h := newHarness()
	cust := h.addCustomer("Ada")

	id := h.persist(persistedInvoice(cust.ID, &vehicle.Snapshot{Make: "Toyota", Model: "Corolla", PlateNo: "ABC-123"}))
	require.NoError(t, h.ctrl.BeginEdit(context.Background(), id))

	staleCustomer := uuid.New()
	match := h.ctrl.VehiclesLoaded(staleCustomer, []*vehicle.Vehicle{testVehicle(staleCustomer, "Toyota", "Corolla", "ABC-123")})

	assert.Nil(t, match)
	assert.Equal(t, composition.PhaseRestoring, h.ctrl.Snapshot().Phase)
}

func TestPhase_RevertsToIdleAfterGrace(t *testing.T) {
	h := newHarness()
	cust := h.addCustomer("Ada")

	id := h.persist(persistedInvoice(cust.ID, &vehicle.Snapshot{Make: "Toyota", Model: "Corolla", PlateNo: "ABC-123"}))
	require.NoError(t, h.ctrl.BeginEdit(context.Background(), id))
	h.ctrl.VehiclesLoaded(cust.ID, []*vehicle.Vehicle{testVehicle(cust.ID, "Toyota", "Corolla", "ABC-123")})

	assert.Equal(t, composition.PhaseRestoredComplete, h.ctrl.Phase())

	h.advance(1100 * time.Millisecond)
	assert.Equal(t, composition.PhaseIdle, h.ctrl.Phase())
}

func TestManualSelectionCancelsRestoration(t *testing.T) {
	h := newHarness()
	cust := h.addCustomer("Ada")

	id := h.persist(persistedInvoice(cust.ID, &vehicle.Snapshot{Make: "Toyota", Model: "Corolla", PlateNo: "ABC-123"}))
	require.NoError(t, h.ctrl.BeginEdit(context.Background(), id))

	walkIn := h.addCustomer("Grace")
	h.ctrl.SelectCustomer(walkIn)

	st := h.ctrl.Snapshot()
	assert.Equal(t, composition.PhaseIdle, st.Phase)
	assert.Equal(t, walkIn.ID, st.Customer.ID)
	assert.Empty(t, st.Items)

	// A later vehicle list for the new customer runs no restoration.
	match := h.ctrl.VehiclesLoaded(walkIn.ID, []*vehicle.Vehicle{testVehicle(walkIn.ID, "Toyota", "Corolla", "ABC-123")})
	assert.Nil(t, match)
	assert.Empty(t, h.ctrl.Snapshot().Items)
}

func TestValidationPass_ClearsMissingVehicleOnce(t *testing.T) {
	h := newHarness()
	cust := h.addCustomer("Ada")
	v := testVehicle(cust.ID, "Toyota", "Corolla", "ABC-123")

	h.ctrl.SelectCustomer(cust)
	h.ctrl.SelectVehicle(v)

	// First load: the vehicle is gone from the directory, so it is cleared.
	h.ctrl.VehiclesLoaded(cust.ID, []*vehicle.Vehicle{testVehicle(cust.ID, "Honda", "Civic", "H-1")})
	assert.Nil(t, h.ctrl.Snapshot().Vehicle)
}

func TestValidationPass_OneShotPerCustomerSelection(t *testing.T) {
	h := newHarness()
	cust := h.addCustomer("Ada")
	v := testVehicle(cust.ID, "Toyota", "Corolla", "ABC-123")

	h.ctrl.SelectCustomer(cust)
	h.ctrl.SelectVehicle(v)

	// First load confirms the selection and consumes the one-shot pass.
	h.ctrl.VehiclesLoaded(cust.ID, []*vehicle.Vehicle{v})
	require.NotNil(t, h.ctrl.Snapshot().Vehicle)

	// A transiently empty refetch must not clear a valid selection.
	h.ctrl.VehiclesLoaded(cust.ID, nil)
	assert.NotNil(t, h.ctrl.Snapshot().Vehicle)
}

func TestValidationPass_RearmsOnNewCustomerSelection(t *testing.T) {
	h := newHarness()
	cust := h.addCustomer("Ada")
	v := testVehicle(cust.ID, "Toyota", "Corolla", "ABC-123")

	h.ctrl.SelectCustomer(cust)
	h.ctrl.SelectVehicle(v)
	h.ctrl.VehiclesLoaded(cust.ID, []*vehicle.Vehicle{v})

	// Switching customers and back re-arms the pass; a list without the
	// selected vehicle now clears it.
	h.ctrl.SelectCustomer(h.addCustomer("Grace"))
	h.ctrl.SelectCustomer(cust)
	h.ctrl.SelectVehicle(v)
	h.ctrl.VehiclesLoaded(cust.ID, nil)
	assert.Nil(t, h.ctrl.Snapshot().Vehicle)
}

func TestResumeDraft_SelectsVehicleByID(t *testing.T) {
	h := newHarness()
	cust := h.addCustomer("Ada")
	v := testVehicle(cust.ID, "Toyota", "Corolla", "ABC-123")

	rec := persistedInvoice(cust.ID, nil)
	rec.Status = invoice.StatusPending
	rec.PaymentMethod = nil
	id := h.persist(rec)

	require.NoError(t, h.sessions.SetDraft(context.Background(), "workstation-1",
		session.Draft{InvoiceID: id, VehicleID: v.ID}))

	resumed, err := h.ctrl.ResumeDraft(context.Background())
	require.NoError(t, err)
	assert.True(t, resumed)
	assert.Equal(t, composition.PhaseRestoring, h.ctrl.Snapshot().Phase)

	match := h.ctrl.VehiclesLoaded(cust.ID, []*vehicle.Vehicle{v})
	require.NotNil(t, match)
	assert.Equal(t, v.ID, h.ctrl.Snapshot().Vehicle.ID)
	assert.Len(t, h.ctrl.Snapshot().Items, 2)
}

func TestResumeDraft_VehicleGoneStillCompletes(t *testing.T) {
	h := newHarness()
	cust := h.addCustomer("Ada")

	rec := persistedInvoice(cust.ID, nil)
	rec.PaymentMethod = nil
	id := h.persist(rec)

	require.NoError(t, h.sessions.SetDraft(context.Background(), "workstation-1",
		session.Draft{InvoiceID: id, VehicleID: uuid.New()}))

	resumed, err := h.ctrl.ResumeDraft(context.Background())
	require.NoError(t, err)
	require.True(t, resumed)

	match := h.ctrl.VehiclesLoaded(cust.ID, []*vehicle.Vehicle{testVehicle(cust.ID, "Honda", "Civic", "H-1")})
	require.NotNil(t, match)
	assert.Equal(t, composition.MatchNone, match.Kind)

	st := h.ctrl.Snapshot()
	assert.Nil(t, st.Vehicle)
	// Items restore regardless; the pending marker is gone.
	assert.Len(t, st.Items, 2)
	assert.Equal(t, composition.PhaseRestoredComplete, st.Phase)
}

func TestResumeDraft_ReopensInterruptedEdit(t *testing.T) {
	h := newHarness()
	cust := h.addCustomer("Ada")

	id := h.persist(persistedInvoice(cust.ID, &vehicle.Snapshot{Make: "Toyota", Model: "Corolla", PlateNo: "ABC-123"}))
	require.NoError(t, h.ctrl.BeginEdit(context.Background(), id))

	// A remounted session on the same workstation picks the edit back up.
	next := newHarness(func(cfg *composition.Config) {
		cfg.Invoices = h.repo
		cfg.Session = h.sessions
		cfg.Customers = h.cust
	})

	resumed, err := next.ctrl.ResumeDraft(context.Background())
	require.NoError(t, err)
	require.True(t, resumed)

	st := next.ctrl.Snapshot()
	require.NotNil(t, st.EditingID)
	assert.Equal(t, id, *st.EditingID)
	assert.Equal(t, composition.PhaseRestoring, st.Phase)

	v := testVehicle(cust.ID, "Toyota", "Corolla", "ABC-123")
	next.ctrl.VehiclesLoaded(cust.ID, []*vehicle.Vehicle{v})

	// Saving targets the record under edit, never a new one.
	res, err := next.ctrl.Save(context.Background())
	require.NoError(t, err)
	assert.Equal(t, composition.SaveUpdated, res.Op)
	assert.Equal(t, id, res.ID)
	assert.Zero(t, h.repo.creates)
}

func TestResumeDraft_EditMarkerTakesPrecedenceOverDraft(t *testing.T) {
	h := newHarness()
	cust := h.addCustomer("Ada")

	draftID := h.persist(persistedInvoice(cust.ID, nil))
	editedID := h.persist(persistedInvoice(cust.ID, nil))

	require.NoError(t, h.sessions.SetDraft(context.Background(), "workstation-1",
		session.Draft{InvoiceID: draftID}))
	require.NoError(t, h.sessions.SetEditTarget(context.Background(), "workstation-1", editedID))

	resumed, err := h.ctrl.ResumeDraft(context.Background())
	require.NoError(t, err)
	require.True(t, resumed)

	st := h.ctrl.Snapshot()
	require.NotNil(t, st.EditingID)
	assert.Equal(t, editedID, *st.EditingID)
}

func TestResumeDraft_NothingToResume(t *testing.T) {
	h := newHarness()

	resumed, err := h.ctrl.ResumeDraft(context.Background())
	require.NoError(t, err)
	assert.False(t, resumed)
}
