package model

import "time"

// SessionState tracks a session through the scan/recommend/execute lifecycle.
type SessionState string

// Session state constants.
const (
	StateInitializing              SessionState = "INITIALIZING"
	StateScanningFiles             SessionState = "SCANNING_FILES"
	StateScanningApps              SessionState = "SCANNING_APPS"
	StateAnalyzingWithAI           SessionState = "ANALYZING_WITH_AI"
	StateGeneratingRecommendations SessionState = "GENERATING_RECOMMENDATIONS"
	StateAwaitingApproval          SessionState = "AWAITING_APPROVAL"
	StateExecuting                 SessionState = "EXECUTING"
	StateCompleted                 SessionState = "COMPLETED"
	StateFailed                    SessionState = "FAILED"
	StateCancelled                 SessionState = "CANCELLED"
)

// Terminal reports whether the state permits no further transitions.
func (s SessionState) Terminal() bool {
	return s == StateCompleted || s == StateFailed || s == StateCancelled
}

// FolderState is the simpler per-folder analysis loop used for ad hoc
// single-folder triage. It cycles back to Idle after each report.
type FolderState string

// Folder flow state constants.
const (
	FolderIdle      FolderState = "IDLE"
	FolderTriage    FolderState = "TRIAGE"
	FolderProposal  FolderState = "PROPOSAL"
	FolderApproval  FolderState = "APPROVAL"
	FolderExecution FolderState = "EXECUTION"
	FolderReport    FolderState = "REPORT"
)

// NextFolderState returns the successor in the per-folder loop.
func NextFolderState(s FolderState) FolderState {
	switch s {
	case FolderIdle:
		return FolderTriage
	case FolderTriage:
		return FolderProposal
	case FolderProposal:
		return FolderApproval
	case FolderApproval:
		return FolderExecution
	case FolderExecution:
		return FolderReport
	case FolderReport:
		return FolderIdle
	}
	return FolderIdle
}

// SessionSummary aggregates headline numbers for display and reporting.
type SessionSummary struct {
	TotalCandidates      int
	TotalRecommendations int
	ApprovedCount        int
	RejectedCount        int
	ExecutedCount        int
	FailedCount          int
	EstimatedBytes       int64
	FreedBytes           int64
}

// Session is the top-level unit of work: one scan scope, its recommendations
// and their approval statuses, and the lifecycle state. The session itself is
// a passive record; components drive its transitions externally.
type Session struct {
	StartedAt       time.Time
	CompletedAt     *time.Time
	ID              string
	Scope           string
	State           SessionState
	Error           string
	Apps            []*AppRecommendation
	Cleanups        []*CleanupRecommendation
	Relocations     []*RelocationRecommendation
	DuplicateGroups []*DuplicateGroup
	Summary         SessionSummary
}

// Recount recomputes the summary from current recommendation statuses.
func (s *Session) Recount() {
	sum := SessionSummary{}
	count := func(st RecommendationStatus) {
		sum.TotalRecommendations++
		switch st {
		case StatusApproved, StatusExecuting:
			sum.ApprovedCount++
		case StatusRejected:
			sum.RejectedCount++
		case StatusCompleted:
			sum.ExecutedCount++
		case StatusFailed:
			sum.FailedCount++
		}
	}
	for _, r := range s.Apps {
		count(r.Status)
	}
	for _, r := range s.Cleanups {
		count(r.Status)
		sum.EstimatedBytes += r.EstimatedBytes
	}
	for _, r := range s.Relocations {
		count(r.Status)
	}
	for _, g := range s.DuplicateGroups {
		count(g.Status)
		sum.EstimatedBytes += g.WastedBytes
	}
	sum.FreedBytes = s.Summary.FreedBytes
	s.Summary = sum
}
