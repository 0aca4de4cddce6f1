package model

import "time"

// MemoryType categorizes a recorded decision.
type MemoryType string

// Memory type constants.
const (
	MemoryAppRemoval      MemoryType = "APP_REMOVAL"
	MemoryRelocation      MemoryType = "RELOCATION"
	MemoryCleanup         MemoryType = "CLEANUP"
	MemoryPreference      MemoryType = "PREFERENCE"
	MemoryPatternLearning MemoryType = "PATTERN_LEARNING"
	MemoryCorrection      MemoryType = "CORRECTION"
)

// Metadata keys used for similarity lookup and pattern aggregation.
const (
	MetaPublisher   = "publisher"
	MetaCategory    = "category"
	MetaClusterType = "cluster_type"
	MetaTargetDrive = "target_drive"
	MetaSessionID   = "session_id"
)

// Memory is one persisted record of a past human decision. Memories are
// write-once: the store only appends, and corrections are stored as new
// Memories of type MemoryCorrection so history is preserved.
type Memory struct {
	Timestamp       time.Time
	Metadata        map[string]string
	ID              string
	Type            MemoryType
	Context         string
	Decision        string
	ModelConfidence float64
	UserAgreed      bool
}

// MemoryKey identifies the metadata fields a similarity lookup matches on.
// A memory matching any populated field qualifies.
type MemoryKey struct {
	Publisher   string
	Category    string
	ClusterType string
}

// KeyForCandidate derives the lookup key for a candidate by kind.
func KeyForCandidate(c Candidate, category Category) MemoryKey {
	switch c.Kind {
	case KindApp:
		if c.App != nil {
			return MemoryKey{Publisher: c.App.Publisher, Category: string(category)}
		}
	case KindCluster:
		if c.Cluster != nil {
			return MemoryKey{ClusterType: c.Cluster.ClusterType}
		}
	case KindFolder:
		return MemoryKey{Category: string(category)}
	}
	return MemoryKey{Category: string(category)}
}

// Pattern is an aggregate derived on demand from Memories sharing a key.
// It is never persisted; it is recomputed from current Memories on each read.
type Pattern struct {
	Key            string
	PreferredValue string
	Total          int
	Removals       int
	Rate           float64
}

// LearningStats summarizes the whole memory store.
type LearningStats struct {
	CountByType   map[MemoryType]int
	TotalMemories int
	AgreedCount   int
	AccuracyRate  float64
}

// BaselineAccuracy is reported by stats queries when no memories exist yet,
// so an empty store does not present as evidence of poor performance.
const BaselineAccuracy = 0.75
