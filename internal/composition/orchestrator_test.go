package composition_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/garagedesk/internal/composition"
	"github.com/MrJamesThe3rd/garagedesk/internal/invoice"
	"github.com/MrJamesThe3rd/garagedesk/internal/pricing"
	"github.com/MrJamesThe3rd/garagedesk/internal/vehicle"
)

// ready puts the harness controller into a saveable state: customer, vehicle
// and one line item.
func ready(t *testing.T, h *harness) {
	t.Helper()

	cust := h.addCustomer("Ada")
	v := testVehicle(cust.ID, "Toyota", "Corolla", "ABC-123")

	h.ctrl.SelectCustomer(cust)
	h.ctrl.SelectVehicle(v)

	_, err := h.ctrl.AddItem(composition.FreeTextSelection("Oil change", 3500))
	require.NoError(t, err)
}

func TestComplete_UnpaidMapsToPendingOther(t *testing.T) {
	h := newHarness()
	ready(t, h)

	res, err := h.ctrl.Complete(context.Background(), composition.StatusUnpaid)
	require.NoError(t, err)
	assert.Equal(t, composition.SaveCreated, res.Op)

	rec := h.repo.records[res.ID]
	assert.Equal(t, invoice.StatusPending, rec.Status)
	require.NotNil(t, rec.PaymentMethod)
	assert.Equal(t, "Other", *rec.PaymentMethod)

	// No document for an unpaid completion.
	assert.Nil(t, res.Document)
	assert.Zero(t, h.renderer.calls.Load())
}

func TestComplete_PaidMapsCanonicalLabelAndRenders(t *testing.T) {
	h := newHarness()
	ready(t, h)
	h.ctrl.SetPaymentMethod("card")

	res, err := h.ctrl.Complete(context.Background(), composition.StatusPaid)
	require.NoError(t, err)

	rec := h.repo.records[res.ID]
	assert.Equal(t, invoice.StatusPaid, rec.Status)
	require.NotNil(t, rec.PaymentMethod)
	assert.Equal(t, "Card/POS", *rec.PaymentMethod)

	assert.NotEmpty(t, res.Document)
	assert.Equal(t, int32(1), h.renderer.calls.Load())
}

func TestComplete_PaidRequiresPaymentMethod(t *testing.T) {
	h := newHarness()
	ready(t, h)

	_, err := h.ctrl.Complete(context.Background(), composition.StatusPaid)

	var vErr *composition.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "payment method", vErr.Field)
	assert.Zero(t, h.repo.creates)
}

func TestComplete_ValidationBeforePersistence(t *testing.T) {
	h := newHarness()
	h.ctrl.SelectCustomer(h.addCustomer("Ada"))

	_, err := h.ctrl.Complete(context.Background(), composition.StatusUnpaid)

	var vErr *composition.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "vehicle", vErr.Field)
	assert.Zero(t, h.repo.creates)
}

func TestComplete_ComputesTotalsAtPersistence(t *testing.T) {
	h := newHarness()
	ready(t, h)
	h.ctrl.SetPaymentMethod("card") // 7.5% tax

	item, err := h.ctrl.AddItem(composition.FreeTextSelection("Brake service", 10000))
	require.NoError(t, err)
	h.ctrl.UpdateQuantity(item.ID, 2)

	h.ctrl.SetDiscount(pricing.Discount{Kind: pricing.DiscountPercent, Value: 1000}) // 10%

	res, err := h.ctrl.Complete(context.Background(), composition.StatusPaid)
	require.NoError(t, err)

	rec := h.repo.records[res.ID]
	assert.Equal(t, int64(23500), rec.Subtotal)
	assert.Equal(t, int64(2350), rec.Discount)
	assert.Equal(t, int64(1586), rec.Tax) // 21150 * 7.5%, rounded
	assert.Equal(t, int64(22736), rec.Total)
	require.Len(t, rec.Items, 2)
}

func TestComplete_ProcessingFlagBlocksReentry(t *testing.T) {
	h := newHarness()
	ready(t, h)

	var reentry error

	h.repo.onCreate = func() {
		_, reentry = h.ctrl.Complete(context.Background(), composition.StatusUnpaid)
	}

	_, err := h.ctrl.Complete(context.Background(), composition.StatusUnpaid)
	require.NoError(t, err)

	assert.ErrorIs(t, reentry, composition.ErrBusy)
	assert.Equal(t, 1, h.repo.creates)
}

func TestComplete_ProcessingFlagReleasedAfterFailure(t *testing.T) {
	h := newHarness()
	ready(t, h)

	// First attempt fails validation-wise: paid without a method.
	_, err := h.ctrl.Complete(context.Background(), composition.StatusPaid)
	require.Error(t, err)

	// The guard must not stay latched.
	_, err = h.ctrl.Complete(context.Background(), composition.StatusUnpaid)
	assert.NoError(t, err)
}

func TestComplete_ClearsSessionMarkers(t *testing.T) {
	h := newHarness()
	ready(t, h)

	// Prime a draft pointer by saving once.
	_, err := h.ctrl.Save(context.Background())
	require.NoError(t, err)

	d, err := h.sessions.Draft(context.Background(), "workstation-1")
	require.NoError(t, err)
	require.NotNil(t, d)

	_, err = h.ctrl.Complete(context.Background(), composition.StatusUnpaid)
	require.NoError(t, err)

	d, err = h.sessions.Draft(context.Background(), "workstation-1")
	require.NoError(t, err)
	assert.Nil(t, d)
}

func TestSave_TwiceYieldsOneCreateOneUpdate(t *testing.T) {
	h := newHarness()
	ready(t, h)

	first, err := h.ctrl.Save(context.Background())
	require.NoError(t, err)
	assert.Equal(t, composition.SaveCreated, first.Op)

	second, err := h.ctrl.Save(context.Background())
	require.NoError(t, err)
	assert.Equal(t, composition.SaveUpdated, second.Op)
	assert.Equal(t, first.ID, second.ID)

	assert.Equal(t, 1, h.repo.creates)
	assert.Equal(t, 1, h.repo.updates)
}

func TestSave_DraftHasNoPaymentMethod(t *testing.T) {
	h := newHarness()
	ready(t, h)

	res, err := h.ctrl.Save(context.Background())
	require.NoError(t, err)

	rec := h.repo.records[res.ID]
	assert.Nil(t, rec.PaymentMethod)
	assert.Equal(t, invoice.StatusPending, rec.Status)
	assert.True(t, rec.IsDraft())
}

func TestSave_WhileEditingUpdatesThatRecord(t *testing.T) {
	h := newHarness()
	cust := h.addCustomer("Ada")

	id := h.persist(persistedInvoice(cust.ID, &vehicle.Snapshot{Make: "Toyota", Model: "Corolla", PlateNo: "ABC-123"}))
	require.NoError(t, h.ctrl.BeginEdit(context.Background(), id))

	v := testVehicle(cust.ID, "Toyota", "Corolla", "ABC-123")
	h.ctrl.VehiclesLoaded(cust.ID, []*vehicle.Vehicle{v})

	h.ctrl.SetNotes("updated notes")

	res, err := h.ctrl.Save(context.Background())
	require.NoError(t, err)
	assert.Equal(t, composition.SaveUpdated, res.Op)
	assert.Equal(t, id, res.ID)
	assert.Equal(t, "updated notes", h.repo.records[id].Notes)
	assert.Zero(t, h.repo.creates)
}

func TestTeardown_AutosavesCompleteComposition(t *testing.T) {
	h := newHarness()
	ready(t, h)

	h.ctrl.Teardown(context.Background())

	require.Equal(t, 1, h.repo.creates)

	for _, rec := range h.repo.records {
		assert.Nil(t, rec.PaymentMethod)
		assert.Equal(t, invoice.StatusPending, rec.Status)
	}

	// The draft pointer now targets the autosaved record.
	d, err := h.sessions.Draft(context.Background(), "workstation-1")
	require.NoError(t, err)
	require.NotNil(t, d)
}

func TestTeardown_InsufficientDataPersistsNothing(t *testing.T) {
	h := newHarness()
	h.ctrl.SelectCustomer(h.addCustomer("Ada"))

	h.ctrl.Teardown(context.Background())

	assert.Zero(t, h.repo.creates)
	assert.Zero(t, h.repo.updates)
}

func TestTeardown_FiresOnlyOnce(t *testing.T) {
	h := newHarness()
	ready(t, h)

	h.ctrl.Teardown(context.Background())
	h.ctrl.Teardown(context.Background())

	assert.Equal(t, 1, h.repo.creates)
	assert.Zero(t, h.repo.updates)
}

func TestTeardown_SkippedAfterCompletion(t *testing.T) {
	h := newHarness()
	ready(t, h)

	_, err := h.ctrl.Complete(context.Background(), composition.StatusUnpaid)
	require.NoError(t, err)

	h.ctrl.Teardown(context.Background())

	assert.Equal(t, 1, h.repo.creates)
}

func TestTeardown_SkippedInEditMode(t *testing.T) {
	h := newHarness()
	cust := h.addCustomer("Ada")

	id := h.persist(persistedInvoice(cust.ID, &vehicle.Snapshot{Make: "Toyota", Model: "Corolla", PlateNo: "ABC-123"}))
	require.NoError(t, h.ctrl.BeginEdit(context.Background(), id))
	h.ctrl.VehiclesLoaded(cust.ID, []*vehicle.Vehicle{testVehicle(cust.ID, "Toyota", "Corolla", "ABC-123")})

	h.ctrl.Teardown(context.Background())

	assert.Zero(t, h.repo.creates)
	assert.Zero(t, h.repo.updates)
}

func TestAutosaveThenResumeUpdatesSameRecord(t *testing.T) {
	h := newHarness()
	cust := h.addCustomer("Ada")
	v := testVehicle(cust.ID, "Toyota", "Corolla", "ABC-123")

	h.ctrl.SelectCustomer(cust)
	h.ctrl.SelectVehicle(v)
	_, err := h.ctrl.AddItem(composition.FreeTextSelection("Oil change", 3500))
	require.NoError(t, err)

	h.ctrl.Teardown(context.Background())
	require.Equal(t, 1, h.repo.creates)

	// A fresh session on the same workstation resumes the draft; its own
	// teardown updates the same record instead of creating a second one.
	next := newHarness(func(cfg *composition.Config) {
		cfg.Invoices = h.repo
		cfg.Session = h.sessions
		cfg.Customers = h.cust
	})
	next.repo = h.repo
	next.sessions = h.sessions

	resumed, err := next.ctrl.ResumeDraft(context.Background())
	require.NoError(t, err)
	require.True(t, resumed)

	next.ctrl.VehiclesLoaded(cust.ID, []*vehicle.Vehicle{v})
	next.ctrl.Teardown(context.Background())

	assert.Equal(t, 1, h.repo.creates)
	assert.Equal(t, 1, h.repo.updates)
	assert.Len(t, h.repo.records, 1)
}
