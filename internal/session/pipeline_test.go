package session

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"diskwise/internal/engine"
	"diskwise/internal/model"
	"diskwise/internal/scan"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

// stubHeuristic classifies any path ending in "somecache" as confidently
// disposable and everything else as unknown. Test directories live under the
// OS temp root, which the real classifier would flag wholesale.
type stubHeuristic struct{}

func (stubHeuristic) ClassifyCandidate(cand model.Candidate) model.Decision {
	if strings.HasSuffix(cand.Path(), "somecache") {
		return model.Decision{
			Category:    model.CategoryTempFiles,
			Safe:        true,
			Confidence:  0.95,
			AutoApprove: true,
			Reason:      "disposable",
		}
	}
	return model.Decision{
		Category:   model.CategoryUnknown,
		Safe:       false,
		Confidence: 0.3,
		Reason:     "no safe pattern recognized",
	}
}

// testEngine builds an engine whose model always returns the given canned
// verdict for escalations.
func testEngine(response string) *engine.Engine {
	cfg := engine.DefaultConfig()
	cfg.MaxRetries = 0
	return engine.New(stubHeuristic{}, nil, engine.NewMockClient(response), cfg, nil)
}

func TestPipeline_AnalyzeFolders(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "somecache", "entry.dat"), "cached-bytes")
	writeFile(t, filepath.Join(root, "docs", "thesis.txt"), "important")
	writeFile(t, filepath.Join(root, "dup1.bin"), "same-bytes")
	writeFile(t, filepath.Join(root, "dup2.bin"), "same-bytes")

	store := testStore(t)
	manager := NewManager(store, 20)
	// Model keeps unknown folders unsafe.
	eng := testEngine(`{"safe_to_delete": false, "confidence": 0.6, "reason": "not clearly disposable"}`)
	pipeline := NewPipeline(manager, scan.NewScanner(scan.DefaultOptions()), eng, store, DefaultPipelineConfig())

	session, err := manager.Start(ctx, root)
	require.NoError(t, err)

	require.NoError(t, pipeline.AnalyzeFolders(ctx, session, root))

	assert.Equal(t, model.StateAwaitingApproval, session.State)
	assert.NotZero(t, session.Summary.TotalCandidates)

	// The cache-named folder became a pending cleanup recommendation.
	require.Len(t, session.Cleanups, 1)
	rec := session.Cleanups[0]
	assert.Equal(t, filepath.Join(root, "somecache"), rec.Path)
	assert.Equal(t, model.StatusPending, rec.Status)
	assert.Equal(t, int64(len("cached-bytes")), rec.EstimatedBytes)

	// The duplicate pair was attached.
	require.Len(t, session.DuplicateGroups, 1)
	assert.Len(t, session.DuplicateGroups[0].Files, 2)

	// All of it was persisted.
	persisted, err := store.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Len(t, persisted.Cleanups, 1)
	assert.Equal(t, model.StateAwaitingApproval, persisted.State)
}

func TestPipeline_AnalyzeFolders_ScanFailureFailsSession(t *testing.T) {
	ctx := context.Background()
	missing := filepath.Join(t.TempDir(), "vanished")
	store := testStore(t)
	manager := NewManager(store, 20)
	pipeline := NewPipeline(manager, scan.NewScanner(scan.DefaultOptions()), testEngine(`{}`), store, DefaultPipelineConfig())

	session, err := manager.Start(ctx, missing)
	require.NoError(t, err)

	err = pipeline.AnalyzeFolders(ctx, session, missing)
	require.Error(t, err)
	assert.Equal(t, model.StateFailed, session.State)
	assert.NotEmpty(t, session.Error)
}

func TestPipeline_AnalyzeApps(t *testing.T) {
	ctx := context.Background()
	store := testStore(t)
	manager := NewManager(store, 20)
	eng := testEngine(`{"safe_to_delete": true, "confidence": 0.8, "reason": "unused for two years"}`)
	pipeline := NewPipeline(manager, scan.NewScanner(scan.DefaultOptions()), eng, store, DefaultPipelineConfig())

	session, err := manager.Start(ctx, "apps:test")
	require.NoError(t, err)

	apps := []model.InstalledApp{
		{Name: "OldGame", Publisher: "Contoso", SizeBytes: 1 << 30, LastUsed: time.Now().AddDate(-2, 0, 0)},
		{Name: "Editor", Publisher: "Fabrikam", SizeBytes: 1 << 28, LastUsed: time.Now()},
	}

	require.NoError(t, pipeline.AnalyzeApps(ctx, session, apps))

	require.Len(t, session.Apps, 2)
	for _, rec := range session.Apps {
		assert.Equal(t, model.StatusPending, rec.Status)
		assert.True(t, rec.ShouldRemove, "model marked every app safe to remove")
		assert.True(t, rec.Decision.IsModelDecision)
	}
	assert.Equal(t, model.StateAwaitingApproval, session.State)
}

type fixedPatterns struct {
	preferred string
}

func (f fixedPatterns) GetRelocationPattern(_ context.Context, _ string) (*model.Pattern, error) {
	return &model.Pattern{PreferredValue: f.preferred}, nil
}

func TestPipeline_AnalyzeClusters(t *testing.T) {
	ctx := context.Background()
	store := testStore(t)
	manager := NewManager(store, 20)
	eng := testEngine(`{"safe_to_delete": true, "confidence": 0.85, "reason": "bulk media, rarely accessed"}`)

	clusters := []model.FileCluster{
		{RootPath: "/data/videos", ClusterType: "video", Drive: "C:", FileCount: 120, SizeBytes: 40 << 30},
	}

	t.Run("learned preference picks the target drive", func(t *testing.T) {
		cfg := DefaultPipelineConfig()
		cfg.DefaultTargetDrive = "E:"
		pipeline := NewPipeline(manager, scan.NewScanner(scan.DefaultOptions()), eng, fixedPatterns{preferred: "D:"}, cfg)

		session, err := manager.Start(ctx, "relocate:learned")
		require.NoError(t, err)
		require.NoError(t, pipeline.AnalyzeClusters(ctx, session, clusters))

		require.Len(t, session.Relocations, 1)
		assert.Equal(t, "D:", session.Relocations[0].TargetDrive)
		assert.True(t, session.Relocations[0].ShouldRelocate)
	})

	t.Run("no precedent falls back to the default drive", func(t *testing.T) {
		cfg := DefaultPipelineConfig()
		cfg.DefaultTargetDrive = "E:"
		pipeline := NewPipeline(manager, scan.NewScanner(scan.DefaultOptions()), eng, nil, cfg)

		session, err := manager.Start(ctx, "relocate:default")
		require.NoError(t, err)
		require.NoError(t, pipeline.AnalyzeClusters(ctx, session, clusters))

		require.Len(t, session.Relocations, 1)
		assert.Equal(t, "E:", session.Relocations[0].TargetDrive)
	})

	t.Run("no target drive at all blocks relocation", func(t *testing.T) {
		pipeline := NewPipeline(manager, scan.NewScanner(scan.DefaultOptions()), eng, nil, DefaultPipelineConfig())

		session, err := manager.Start(ctx, "relocate:none")
		require.NoError(t, err)
		require.NoError(t, pipeline.AnalyzeClusters(ctx, session, clusters))

		require.Len(t, session.Relocations, 1)
		assert.False(t, session.Relocations[0].ShouldRelocate)
	})
}

func TestRiskFor(t *testing.T) {
	tests := []struct {
		name     string
		decision model.Decision
		want     model.RiskLevel
	}{
		{
			name:     "auto approved and confident is low risk",
			decision: model.Decision{AutoApprove: true, Confidence: 0.95},
			want:     model.RiskLow,
		},
		{
			name:     "confident but not auto approved is medium",
			decision: model.Decision{Confidence: 0.85},
			want:     model.RiskMedium,
		},
		{
			name:     "low confidence is high risk",
			decision: model.Decision{Confidence: 0.5},
			want:     model.RiskHigh,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, riskFor(tt.decision))
		})
	}
}
