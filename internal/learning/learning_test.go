package learning

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

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

func TestRecorder_RecordAppDecision(t *testing.T) {
	ctx := context.Background()
	store := testStore(t)
	recorder := NewRecorder(store)

	rec := &model.AppRecommendation{
		App: model.InstalledApp{Name: "OldGame", Publisher: "Contoso"},
		Decision: model.Decision{
			Category:   model.CategoryUnknown,
			Safe:       true,
			Confidence: 0.8,
			Reason:     "unused",
		},
	}
	recorder.RecordAppDecision(ctx, "sess-1", rec, true)

	memories, err := store.FindSimilarMemories(ctx, model.MemoryKey{Publisher: "Contoso"})
	require.NoError(t, err)
	require.Len(t, memories, 1)
	assert.Equal(t, model.MemoryAppRemoval, memories[0].Type)
	assert.Equal(t, "remove", memories[0].Decision)
	assert.True(t, memories[0].UserAgreed, "approval of a safe verdict counts as agreement")
}

func TestRecorder_DisagreementIsRecorded(t *testing.T) {
	ctx := context.Background()
	store := testStore(t)
	recorder := NewRecorder(store)

	// The model called it safe; the user rejected it.
	rec := &model.CleanupRecommendation{
		Path: "/home/alice/projects/build",
		Decision: model.Decision{
			Category:   model.CategoryBuildOutput,
			Safe:       true,
			Confidence: 0.85,
			Reason:     "build output",
		},
	}
	recorder.RecordCleanupDecision(ctx, "sess-1", rec, false)

	memories, err := store.FindSimilarMemories(ctx, model.MemoryKey{Category: string(model.CategoryBuildOutput)})
	require.NoError(t, err)
	require.Len(t, memories, 1)
	assert.Equal(t, "rejected", memories[0].Decision)
	assert.False(t, memories[0].UserAgreed)
}

func TestRecorder_RelocationCarriesTargetDrive(t *testing.T) {
	ctx := context.Background()
	store := testStore(t)
	recorder := NewRecorder(store)

	rec := &model.RelocationRecommendation{
		Cluster:     model.FileCluster{RootPath: "/data/videos", ClusterType: "video"},
		TargetDrive: "D:",
		Decision:    model.Decision{Safe: true, Confidence: 0.9, Reason: "bulk media"},
	}
	recorder.RecordRelocationDecision(ctx, "sess-1", rec, true)

	pattern, err := store.GetRelocationPattern(ctx, "video")
	require.NoError(t, err)
	assert.Equal(t, 1, pattern.Total)
	assert.Equal(t, "D:", pattern.PreferredValue)
}

func TestRecorder_BestEffortNeverPanics(t *testing.T) {
	ctx := context.Background()

	t.Run("nil recorder", func(t *testing.T) {
		var recorder *Recorder
		assert.NotPanics(t, func() {
			recorder.RecordCorrection(ctx, "sess-1", "folder x", "keep", 0.5)
		})
	})

	t.Run("nil store", func(t *testing.T) {
		recorder := NewRecorder(nil)
		assert.NotPanics(t, func() {
			recorder.RecordExecutionOutcome(ctx, "sess-1", "folder y", model.MemoryCleanup, true)
		})
	})
}
