package execution

import (
	"context"
	"fmt"
	"log/slog"

	"diskwise/internal/model"
)

// executeCleanupLocked empties approved cleanup folders. The folder itself
// is preserved; only its contents are removed. Callers hold the session lock.
func (e *Executor) executeCleanupLocked(ctx context.Context, session *model.Session) (ExecutionResult, error) {
	var result ExecutionResult

	approved := make([]*model.CleanupRecommendation, 0, len(session.Cleanups))
	for _, rec := range session.Cleanups {
		if rec.Status == model.StatusApproved {
			approved = append(approved, rec)
		}
	}

	total := len(approved)
	for i, rec := range approved {
		// Cancellation is observed before each item's destructive action,
		// never mid-delete.
		if err := ctx.Err(); err != nil {
			return result, err
		}

		e.report("cleanup", i, total, rec.Path)
		rec.Status = model.StatusExecuting

		freed, err := removeDirContents(rec.Path)
		result.BytesFreed += freed
		if err != nil {
			rec.Status = model.StatusFailed
			result.ItemsFailed++
			result.Errors = append(result.Errors, fmt.Sprintf("cleanup %s: %v", rec.Path, err))
			slog.Warn("Cleanup failed", "path", rec.Path, "error", err)
		} else {
			rec.Status = model.StatusCompleted
			result.ItemsProcessed++
		}

		if e.learner != nil {
			e.learner.RecordExecutionOutcome(ctx, session.ID,
				fmt.Sprintf("folder %q", rec.Path), model.MemoryCleanup, err == nil)
		}
		e.report("cleanup", i+1, total, rec.Path)
	}

	return result, nil
}
