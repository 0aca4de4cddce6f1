package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"diskwise/internal/common"
	"diskwise/internal/model"
	"diskwise/internal/storage"
)

func testStore(t *testing.T) *storage.SQLiteStorage {
	t.Helper()
	store, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	require.NoError(t, store.Migrate(context.Background()))
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestManager_Start(t *testing.T) {
	ctx := context.Background()
	manager := NewManager(testStore(t), 20)

	session, err := manager.Start(ctx, "/data")
	require.NoError(t, err)
	assert.NotEmpty(t, session.ID)
	assert.Equal(t, "/data", session.Scope)
	assert.Equal(t, model.StateInitializing, session.State)
	assert.False(t, session.StartedAt.IsZero())
}

func TestManager_OneActiveSessionPerScope(t *testing.T) {
	ctx := context.Background()
	manager := NewManager(testStore(t), 20)

	first, err := manager.Start(ctx, "/data")
	require.NoError(t, err)

	t.Run("second start on the same scope fails", func(t *testing.T) {
		_, err := manager.Start(ctx, "/data")
		assert.ErrorIs(t, err, common.ErrSessionActive)
	})

	t.Run("different scope is fine", func(t *testing.T) {
		_, err := manager.Start(ctx, "/other")
		assert.NoError(t, err)
	})

	t.Run("terminal session frees the scope", func(t *testing.T) {
		require.NoError(t, manager.Transition(ctx, first, model.StateCompleted))
		_, err := manager.Start(ctx, "/data")
		assert.NoError(t, err)
	})
}

func TestManager_OneActivePerScopeSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	store := testStore(t)

	manager := NewManager(store, 20)
	_, err := manager.Start(ctx, "/data")
	require.NoError(t, err)

	// A fresh manager over the same store still sees the active session.
	fresh := NewManager(store, 20)
	_, err = fresh.Start(ctx, "/data")
	assert.ErrorIs(t, err, common.ErrSessionActive)
}

func TestManager_Transition(t *testing.T) {
	ctx := context.Background()
	manager := NewManager(testStore(t), 20)

	session, err := manager.Start(ctx, "/data")
	require.NoError(t, err)

	require.NoError(t, manager.Transition(ctx, session, model.StateScanningFiles))
	assert.Equal(t, model.StateScanningFiles, session.State)
	assert.Nil(t, session.CompletedAt)

	require.NoError(t, manager.Transition(ctx, session, model.StateCompleted))
	assert.NotNil(t, session.CompletedAt)

	t.Run("terminal rejects further transitions", func(t *testing.T) {
		err := manager.Transition(ctx, session, model.StateExecuting)
		assert.ErrorIs(t, err, common.ErrSessionTerminal)
		assert.Equal(t, model.StateCompleted, session.State)
	})
}

func TestManager_FailRecordsCause(t *testing.T) {
	ctx := context.Background()
	manager := NewManager(testStore(t), 20)

	session, err := manager.Start(ctx, "/data")
	require.NoError(t, err)

	require.NoError(t, manager.Fail(ctx, session, errors.New("disk went away")))
	assert.Equal(t, model.StateFailed, session.State)
	assert.Equal(t, "disk went away", session.Error)
}

func TestManager_GetLoadsFromStore(t *testing.T) {
	ctx := context.Background()
	store := testStore(t)

	manager := NewManager(store, 20)
	session, err := manager.Start(ctx, "/data")
	require.NoError(t, err)

	t.Run("registry hit", func(t *testing.T) {
		got, err := manager.Get(ctx, session.ID)
		require.NoError(t, err)
		assert.Same(t, session, got)
	})

	t.Run("store fallback", func(t *testing.T) {
		fresh := NewManager(store, 20)
		got, err := fresh.Get(ctx, session.ID)
		require.NoError(t, err)
		assert.Equal(t, session.ID, got.ID)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := manager.Get(ctx, "no-such-id")
		assert.ErrorIs(t, err, common.ErrSessionNotFound)
	})
}

func TestManager_PruneHistory(t *testing.T) {
	ctx := context.Background()
	store := testStore(t)
	manager := NewManager(store, 2)

	for i := 0; i < 4; i++ {
		session, err := manager.Start(ctx, "/data")
		require.NoError(t, err)
		require.NoError(t, manager.Transition(ctx, session, model.StateCompleted))
	}

	removed, err := manager.PruneHistory(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	remaining, err := manager.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, remaining, 2)
}
