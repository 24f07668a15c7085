package session_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/garagedesk/internal/session"
)

func TestMemoryStore_DraftLifecycle(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()

	d, err := store.Draft(ctx, "front-desk")
	require.NoError(t, err)
	assert.Nil(t, d)

	want := session.Draft{InvoiceID: uuid.New(), VehicleID: uuid.New()}
	require.NoError(t, store.SetDraft(ctx, "front-desk", want))

	d, err = store.Draft(ctx, "front-desk")
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, want, *d)

	// Keys are isolated per workstation.
	other, err := store.Draft(ctx, "bay-2")
	require.NoError(t, err)
	assert.Nil(t, other)

	require.NoError(t, store.ClearDraft(ctx, "front-desk"))

	d, err = store.Draft(ctx, "front-desk")
	require.NoError(t, err)
	assert.Nil(t, d)
}

func TestMemoryStore_EditTargetLifecycle(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()

	id, err := store.EditTarget(ctx, "front-desk")
	require.NoError(t, err)
	assert.Nil(t, id)

	want := uuid.New()
	require.NoError(t, store.SetEditTarget(ctx, "front-desk", want))

	id, err = store.EditTarget(ctx, "front-desk")
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, want, *id)

	require.NoError(t, store.ClearEditTarget(ctx, "front-desk"))

	id, err = store.EditTarget(ctx, "front-desk")
	require.NoError(t, err)
	assert.Nil(t, id)
}
