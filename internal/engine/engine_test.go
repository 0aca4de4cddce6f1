package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"diskwise/internal/classify"
	"diskwise/internal/model"
	"diskwise/internal/service"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.MaxRetries = 0
	return cfg
}

func folderCandidate(path string, files ...string) model.Candidate {
	return model.FolderCandidateOf(&model.FolderCandidate{
		Path:      path,
		FileNames: files,
		FileCount: len(files),
	})
}

func TestEngine_Decide_Bypass(t *testing.T) {
	tests := []struct {
		name       string
		heuristic  model.Decision
		wantBypass bool
	}{
		{
			name: "confident safe tier verdict skips the model",
			heuristic: model.Decision{
				Category:   model.CategoryTempFiles,
				Safe:       true,
				Confidence: 0.95,
			},
			wantBypass: true,
		},
		{
			name: "confidence exactly at threshold still bypasses",
			heuristic: model.Decision{
				Category:   model.CategoryBrowserCache,
				Safe:       true,
				Confidence: 0.9,
			},
			wantBypass: true,
		},
		{
			name: "confidence below threshold escalates",
			heuristic: model.Decision{
				Category:   model.CategoryBrowserCache,
				Safe:       true,
				Confidence: 0.89,
			},
			wantBypass: false,
		},
		{
			name: "unsafe verdict always escalates",
			heuristic: model.Decision{
				Category:   model.CategoryUnknown,
				Safe:       false,
				Confidence: 0.95,
			},
			wantBypass: false,
		},
		{
			name: "confident verdict outside the safe tier escalates",
			heuristic: model.Decision{
				Category:   model.CategoryDependencyTree,
				Safe:       true,
				Confidence: 0.95,
			},
			wantBypass: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewMockClient(`{"safe_to_delete": true, "confidence": 0.8, "reason": "model says yes"}`)
			eng := New(classify.NewClassifier(nil), nil, client, testConfig(), nil)

			decision := eng.Decide(context.Background(), folderCandidate("/data/x"), tt.heuristic)

			if tt.wantBypass {
				assert.Equal(t, tt.heuristic, decision)
				assert.Zero(t, client.CallCount(), "bypass must not call the model")
			} else {
				assert.Equal(t, 1, client.CallCount())
				assert.True(t, decision.IsModelDecision)
			}
		})
	}
}

func TestEngine_Decide_ModelVerdictWins(t *testing.T) {
	client := NewMockClient(`{"safe_to_delete": true, "confidence": 0.82, "reason": "old cache folder", "category": "generic_cache", "auto_approve": false}`)
	eng := New(classify.NewClassifier(nil), nil, client, testConfig(), nil)

	heuristic := model.Decision{Category: model.CategoryUnknown, Safe: false, Confidence: 0.3}
	decision := eng.Decide(context.Background(), folderCandidate("/data/oldcache"), heuristic)

	assert.True(t, decision.Safe)
	assert.InDelta(t, 0.82, decision.Confidence, 0.001)
	assert.Equal(t, model.CategoryGenericCache, decision.Category)
	assert.Equal(t, "old cache folder", decision.Reason)
	assert.True(t, decision.IsModelDecision)
}

func TestEngine_Decide_ConservativeFallback(t *testing.T) {
	tests := []struct {
		name   string
		client *MockClient
	}{
		{
			name:   "model error",
			client: &MockClient{Err: errors.New("connection refused")},
		},
		{
			name:   "non JSON response",
			client: NewMockClient("I cannot help with that."),
		},
		{
			name:   "missing required field",
			client: NewMockClient(`{"confidence": 0.9, "reason": "no verdict"}`),
		},
		{
			name:   "empty reason",
			client: NewMockClient(`{"safe_to_delete": true, "confidence": 0.9, "reason": "  "}`),
		},
		{
			name:   "nil client",
			client: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			heuristic := model.Decision{Category: model.CategoryDependencyTree, Safe: true, Confidence: 0.85}

			var eng *Engine
			if tt.client == nil {
				eng = New(classify.NewClassifier(nil), nil, nil, testConfig(), nil)
			} else {
				eng = New(classify.NewClassifier(nil), nil, tt.client, testConfig(), nil)
			}

			decision := eng.Decide(context.Background(), folderCandidate("/srv/app/node_modules"), heuristic)

			assert.False(t, decision.Safe)
			assert.Zero(t, decision.Confidence)
			assert.Equal(t, "unable to analyze", decision.Reason)
			assert.Equal(t, model.CategoryDependencyTree, decision.Category)
			assert.False(t, decision.IsModelDecision)
		})
	}
}

type failingRetriever struct{}

func (failingRetriever) FindSimilarMemories(_ context.Context, _ model.MemoryKey) ([]model.Memory, error) {
	return nil, errors.New("database is locked")
}

type cannedRetriever struct {
	memories []model.Memory
}

func (r cannedRetriever) FindSimilarMemories(_ context.Context, _ model.MemoryKey) ([]model.Memory, error) {
	return r.memories, nil
}

func TestEngine_Decide_MemoryStoreFailureDegrades(t *testing.T) {
	client := NewMockClient(`{"safe_to_delete": false, "confidence": 0.6, "reason": "looks risky"}`)
	eng := New(classify.NewClassifier(nil), failingRetriever{}, client, testConfig(), nil)

	heuristic := model.Decision{Category: model.CategoryUnknown, Safe: false, Confidence: 0.3}
	decision := eng.Decide(context.Background(), folderCandidate("/data/misc"), heuristic)

	// Retrieval failure must not fail the decision; the escalation proceeds
	// without precedent.
	require.Equal(t, 1, client.CallCount())
	assert.True(t, decision.IsModelDecision)
	assert.False(t, decision.Safe)
}

func TestEngine_Decide_PrecedentReachesPrompt(t *testing.T) {
	retriever := cannedRetriever{memories: []model.Memory{
		{Context: "/data/old-vm-images", Decision: "approved deletion", ModelConfidence: 0.9, UserAgreed: true},
	}}
	client := NewMockClient(`{"safe_to_delete": true, "confidence": 0.85, "reason": "matches precedent"}`)
	eng := New(classify.NewClassifier(nil), retriever, client, testConfig(), nil)

	heuristic := model.Decision{Category: model.CategoryUnknown, Safe: false, Confidence: 0.3}
	eng.Decide(context.Background(), folderCandidate("/data/vm-images"), heuristic)

	prompts := client.Prompts()
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], "/data/old-vm-images")
}

func TestEngine_Decide_EventSinkPanicIsContained(t *testing.T) {
	client := NewMockClient(`{"safe_to_delete": true, "confidence": 0.8, "reason": "fine"}`)
	sink := func(_ service.ModelEvent) { panic("sink exploded") }
	eng := New(classify.NewClassifier(nil), nil, client, testConfig(), sink)

	heuristic := model.Decision{Category: model.CategoryUnknown, Safe: false, Confidence: 0.3}

	assert.NotPanics(t, func() {
		decision := eng.Decide(context.Background(), folderCandidate("/data/misc"), heuristic)
		assert.True(t, decision.IsModelDecision)
	})
}

func TestEngine_Analyze_UsesHeuristicFirst(t *testing.T) {
	client := NewMockClient(`{"safe_to_delete": true, "confidence": 0.8, "reason": "unused"}`)
	eng := New(classify.NewClassifier(nil), nil, client, testConfig(), nil)

	decision := eng.Analyze(context.Background(), folderCandidate(`C:\Windows\Temp`))

	assert.Equal(t, model.CategoryTempFiles, decision.Category)
	assert.True(t, decision.Safe)
	assert.Zero(t, client.CallCount())
}
