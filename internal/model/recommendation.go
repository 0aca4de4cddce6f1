package model

import "time"

// RecommendationStatus tracks a recommendation through its approval lifecycle.
type RecommendationStatus string

// Recommendation status constants.
const (
	StatusPending    RecommendationStatus = "PENDING"
	StatusApproved   RecommendationStatus = "APPROVED"
	StatusRejected   RecommendationStatus = "REJECTED"
	StatusExecuting  RecommendationStatus = "EXECUTING"
	StatusCompleted  RecommendationStatus = "COMPLETED"
	StatusFailed     RecommendationStatus = "FAILED"
	StatusRolledBack RecommendationStatus = "ROLLED_BACK"
)

var statusOrder = map[RecommendationStatus]int{
	StatusPending:    0,
	StatusApproved:   1,
	StatusRejected:   1,
	StatusExecuting:  2,
	StatusCompleted:  3,
	StatusFailed:     3,
	StatusRolledBack: 4,
}

// CanTransition reports whether a status change is allowed. Transitions are
// monotonic forward; in particular a Failed recommendation never returns to
// Pending — retry requires a fresh analysis pass.
func CanTransition(from, to RecommendationStatus) bool {
	if from == to {
		return false
	}
	if from == StatusFailed && to == StatusPending {
		return false
	}
	return statusOrder[to] > statusOrder[from]
}

// RiskLevel grades how risky a cleanup action is.
type RiskLevel string

// Risk level constants.
const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// AppRecommendation is a removal recommendation for an installed application.
type AppRecommendation struct {
	App          InstalledApp
	Decision     Decision
	Status       RecommendationStatus
	ID           string
	ShouldRemove bool
}

// CleanupRecommendation is a recommendation to empty a disposable directory.
// Execution removes the directory contents and preserves the directory itself.
type CleanupRecommendation struct {
	Decision       Decision
	Status         RecommendationStatus
	ID             string
	Path           string
	Risk           RiskLevel
	EstimatedBytes int64
}

// RelocationRecommendation proposes moving a file cluster to another drive.
type RelocationRecommendation struct {
	Cluster        FileCluster
	Decision       Decision
	Status         RecommendationStatus
	ID             string
	TargetDrive    string
	ShouldRelocate bool
}

// DuplicateFile is one member of a duplicate group.
type DuplicateFile struct {
	ModTime   time.Time
	Path      string
	SizeBytes int64
}

// DuplicateGroup is a set of byte-identical files. Execution keeps the
// oldest-modified member and removes the rest.
type DuplicateGroup struct {
	ID          string
	Hash        string
	Status      RecommendationStatus
	Files       []DuplicateFile
	WastedBytes int64
}

// Survivor returns the oldest-modified file in the group, which duplicate
// removal always preserves. Ties keep the first-seen file.
func (g *DuplicateGroup) Survivor() *DuplicateFile {
	if len(g.Files) == 0 {
		return nil
	}
	survivor := &g.Files[0]
	for i := 1; i < len(g.Files); i++ {
		if g.Files[i].ModTime.Before(survivor.ModTime) {
			survivor = &g.Files[i]
		}
	}
	return survivor
}
