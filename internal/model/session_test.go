package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSessionState_Terminal(t *testing.T) {
	assert.True(t, StateCompleted.Terminal())
	assert.True(t, StateFailed.Terminal())
	assert.True(t, StateCancelled.Terminal())
	assert.False(t, StateInitializing.Terminal())
	assert.False(t, StateExecuting.Terminal())
	assert.False(t, StateAwaitingApproval.Terminal())
}

func TestSession_Recount(t *testing.T) {
	session := &Session{
		Apps: []*AppRecommendation{
			{Status: StatusApproved},
			{Status: StatusRejected},
		},
		Cleanups: []*CleanupRecommendation{
			{Status: StatusCompleted, EstimatedBytes: 100},
			{Status: StatusFailed, EstimatedBytes: 50},
			{Status: StatusPending, EstimatedBytes: 25},
		},
		Relocations: []*RelocationRecommendation{
			{Status: StatusExecuting},
		},
		DuplicateGroups: []*DuplicateGroup{
			{Status: StatusPending, WastedBytes: 10},
		},
	}
	session.Summary.FreedBytes = 77

	session.Recount()

	assert.Equal(t, 7, session.Summary.TotalRecommendations)
	assert.Equal(t, 2, session.Summary.ApprovedCount, "executing counts as approved")
	assert.Equal(t, 1, session.Summary.RejectedCount)
	assert.Equal(t, 1, session.Summary.ExecutedCount)
	assert.Equal(t, 1, session.Summary.FailedCount)
	assert.Equal(t, int64(185), session.Summary.EstimatedBytes)
	assert.Equal(t, int64(77), session.Summary.FreedBytes, "freed bytes survive a recount")
}

func TestKeyForCandidate(t *testing.T) {
	t.Run("app keys on publisher and category", func(t *testing.T) {
		cand := AppCandidateOf(&InstalledApp{Name: "Editor", Publisher: "Fabrikam"})
		key := KeyForCandidate(cand, CategoryUnknown)
		assert.Equal(t, "Fabrikam", key.Publisher)
		assert.Equal(t, string(CategoryUnknown), key.Category)
	})

	t.Run("cluster keys on cluster type", func(t *testing.T) {
		cand := ClusterCandidateOf(&FileCluster{ClusterType: "video"})
		key := KeyForCandidate(cand, CategoryUnknown)
		assert.Equal(t, "video", key.ClusterType)
		assert.Empty(t, key.Category)
	})

	t.Run("folder keys on category", func(t *testing.T) {
		cand := FolderCandidateOf(&FolderCandidate{Path: "/x"})
		key := KeyForCandidate(cand, CategoryGenericCache)
		assert.Equal(t, string(CategoryGenericCache), key.Category)
		assert.Empty(t, key.Publisher)
	})
}

func TestClampConfidence(t *testing.T) {
	assert.Equal(t, 0.0, ClampConfidence(-1))
	assert.Equal(t, 0.5, ClampConfidence(0.5))
	assert.Equal(t, 1.0, ClampConfidence(3.2))
}
