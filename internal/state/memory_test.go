package state

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripware/travel-skill/internal/dialog"
)

func TestMemoryStoreLoadMissingReturnsEmptyState(t *testing.T) {
	store := NewMemoryStore()

	st, err := store.Load(context.Background(), "unknown")
	require.NoError(t, err)
	assert.True(t, st.Empty())
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	saved := &dialog.DialogState{Stack: []dialog.Frame{
		{DialogID: "BookingDialog", Step: 2, Await: dialog.AwaitText, Prompt: "Where are you traveling from?"},
	}}
	require.NoError(t, store.Save(ctx, "conv-1", saved))

	loaded, err := store.Load(ctx, "conv-1")
	require.NoError(t, err)
	require.Len(t, loaded.Stack, 1)
	assert.Equal(t, saved.Stack[0], loaded.Stack[0])
}

func TestMemoryStoreConversationsIsolated(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "conv-a", &dialog.DialogState{Stack: []dialog.Frame{{DialogID: "A"}}}))
	require.NoError(t, store.Save(ctx, "conv-b", &dialog.DialogState{Stack: []dialog.Frame{{DialogID: "B"}}}))

	a, err := store.Load(ctx, "conv-a")
	require.NoError(t, err)
	b, err := store.Load(ctx, "conv-b")
	require.NoError(t, err)

	assert.Equal(t, "A", a.Stack[0].DialogID)
	assert.Equal(t, "B", b.Stack[0].DialogID)
}

func TestMemoryStoreClear(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "conv-1", &dialog.DialogState{Stack: []dialog.Frame{{DialogID: "A"}}}))
	require.NoError(t, store.Clear(ctx, "conv-1"))

	st, err := store.Load(ctx, "conv-1")
	require.NoError(t, err)
	assert.True(t, st.Empty())

	// Clearing an absent conversation is not an error.
	require.NoError(t, store.Clear(ctx, "never-seen"))
}
