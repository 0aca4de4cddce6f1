package execution

import (
	"context"

	"diskwise/internal/model"
)

// ApproveAllSafe auto-approves Pending recommendations that clear both the
// caller's confidence floor and their kind-specific safety gate: apps must
// be flagged for removal, cleanups must be low risk, relocations must be
// flagged for relocation. Items already approved or rejected are left
// untouched, so a second call approves nothing new.
func (e *Executor) ApproveAllSafe(ctx context.Context, session *model.Session, minConfidence float64) int {
	unlock := e.lockSession(session.ID)
	defer unlock()

	approved := 0

	for _, rec := range session.Apps {
		if rec.Status != model.StatusPending {
			continue
		}
		if rec.Decision.Confidence >= minConfidence && rec.ShouldRemove {
			rec.Status = model.StatusApproved
			approved++
			if e.learner != nil {
				e.learner.RecordAppDecision(ctx, session.ID, rec, true)
			}
		}
	}

	for _, rec := range session.Cleanups {
		if rec.Status != model.StatusPending {
			continue
		}
		if rec.Decision.Confidence >= minConfidence && rec.Risk == model.RiskLow {
			rec.Status = model.StatusApproved
			approved++
			if e.learner != nil {
				e.learner.RecordCleanupDecision(ctx, session.ID, rec, true)
			}
		}
	}

	for _, rec := range session.Relocations {
		if rec.Status != model.StatusPending {
			continue
		}
		if rec.Decision.Confidence >= minConfidence && rec.ShouldRelocate {
			rec.Status = model.StatusApproved
			approved++
			if e.learner != nil {
				e.learner.RecordRelocationDecision(ctx, session.ID, rec, true)
			}
		}
	}

	if approved > 0 {
		_ = e.persist(ctx, session)
	}

	return approved
}
