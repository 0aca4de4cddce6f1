package engine

import (
	"context"

	"diskwise/internal/model"
)

// MemoryRetriever supplies past-decision precedent for escalations.
type MemoryRetriever interface {
	FindSimilarMemories(ctx context.Context, key model.MemoryKey) ([]model.Memory, error)
}

// Heuristic produces the fast first-pass verdict for a candidate.
type Heuristic interface {
	ClassifyCandidate(cand model.Candidate) model.Decision
}
