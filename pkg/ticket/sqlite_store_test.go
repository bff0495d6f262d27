package ticket

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/oakrp/warden/pkg/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSqliteStore(t *testing.T) *SqliteStore {
	t.Helper()

	store, err := NewSqliteStore(filepath.Join(t.TempDir(), "tickets.db"))
	require.NoError(t, err, "Failed to open sqlite store")
	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})
	return store
}

func TestSqliteStoreCreateAndGet(t *testing.T) {
	store := newTestSqliteStore(t)
	ctx := context.Background()

	tk := entities.NewTicket(entities.CategoryDesk, "chan-1", "user-1", "Wolf", time.Now())
	tk.MessageID = "msg-1"
	require.NoError(t, store.Create(ctx, tk))

	got, err := store.Get(ctx, "chan-1")
	require.NoError(t, err)
	assert.Equal(t, tk.ID, got.ID)
	assert.Equal(t, entities.CategoryDesk, got.Category)
	assert.Equal(t, "user-1", got.OpenerID)
	assert.False(t, got.Claimed())
	assert.Empty(t, got.AddedMembers)
	assert.Equal(t, "msg-1", got.MessageID)
}

func TestSqliteStoreCreateConflict(t *testing.T) {
	store := newTestSqliteStore(t)
	ctx := context.Background()

	tk := entities.NewTicket(entities.CategoryDesk, "chan-1", "user-1", "Wolf", time.Now())
	require.NoError(t, store.Create(ctx, tk))
	require.ErrorIs(t, store.Create(ctx, tk), ErrConflict)
}

func TestSqliteStoreGetNotFound(t *testing.T) {
	store := newTestSqliteStore(t)

	_, err := store.Get(context.Background(), "never-a-ticket")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSqliteStoreUpdate(t *testing.T) {
	store := newTestSqliteStore(t)
	ctx := context.Background()

	tk := entities.NewTicket(entities.CategoryDesk, "chan-1", "user-1", "Wolf", time.Now())
	require.NoError(t, store.Create(ctx, tk))

	updated, err := store.Update(ctx, "chan-1", func(t *entities.Ticket) error {
		t.ClaimedBy = "mod-1"
		t.ClaimedByName = "Mod"
		t.AddMember("user-2")
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "mod-1", updated.ClaimedBy)

	got, err := store.Get(ctx, "chan-1")
	require.NoError(t, err)
	assert.Equal(t, "mod-1", got.ClaimedBy)
	assert.Equal(t, "Mod", got.ClaimedByName)
	assert.Equal(t, []string{"user-2"}, got.AddedMembers)
}

func TestSqliteStoreUpdateAborts(t *testing.T) {
	store := newTestSqliteStore(t)
	ctx := context.Background()

	tk := entities.NewTicket(entities.CategoryDesk, "chan-1", "user-1", "Wolf", time.Now())
	require.NoError(t, store.Create(ctx, tk))

	_, err := store.Update(ctx, "chan-1", func(t *entities.Ticket) error {
		t.ClaimedBy = "mod-1"
		return ErrAlreadyClaimed
	})
	require.ErrorIs(t, err, ErrAlreadyClaimed)

	// The aborted mutation must not be persisted.
	got, err := store.Get(ctx, "chan-1")
	require.NoError(t, err)
	assert.False(t, got.Claimed())
}

func TestSqliteStoreDelete(t *testing.T) {
	store := newTestSqliteStore(t)
	ctx := context.Background()

	tk := entities.NewTicket(entities.CategoryDesk, "chan-1", "user-1", "Wolf", time.Now())
	require.NoError(t, store.Create(ctx, tk))

	require.NoError(t, store.Delete(ctx, "chan-1"))

	_, err := store.Get(ctx, "chan-1")
	require.ErrorIs(t, err, ErrNotFound)

	require.ErrorIs(t, store.Delete(ctx, "chan-1"), ErrNotFound)
}

func TestSqliteStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tickets.db")
	ctx := context.Background()

	store, err := NewSqliteStore(path)
	require.NoError(t, err)

	tk := entities.NewTicket(entities.CategoryHR, "chan-1", "user-1", "Wolf", time.Now())
	require.NoError(t, store.Create(ctx, tk))
	require.NoError(t, store.Close())

	// A fresh process must see the record.
	reopened, err := NewSqliteStore(path)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, reopened.Close())
	})

	got, err := reopened.Get(ctx, "chan-1")
	require.NoError(t, err)
	assert.Equal(t, tk.ID, got.ID)
	assert.Equal(t, entities.CategoryHR, got.Category)
}
