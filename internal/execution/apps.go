package execution

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"diskwise/internal/model"
)

// executeAppRemovalLocked removes approved applications by deleting their
// install directories. Callers hold the session lock.
func (e *Executor) executeAppRemovalLocked(ctx context.Context, session *model.Session) (ExecutionResult, error) {
	var result ExecutionResult

	approved := make([]*model.AppRecommendation, 0, len(session.Apps))
	for _, rec := range session.Apps {
		if rec.Status == model.StatusApproved {
			approved = append(approved, rec)
		}
	}

	total := len(approved)
	for i, rec := range approved {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		e.report("app-removal", i, total, rec.App.Name)
		rec.Status = model.StatusExecuting

		err := e.removeApp(rec)
		if err != nil {
			rec.Status = model.StatusFailed
			result.ItemsFailed++
			result.Errors = append(result.Errors, fmt.Sprintf("app %s: %v", rec.App.Name, err))
			slog.Warn("App removal failed", "app", rec.App.Name, "error", err)
		} else {
			rec.Status = model.StatusCompleted
			result.ItemsProcessed++
			result.BytesFreed += rec.App.SizeBytes
		}

		if e.learner != nil {
			e.learner.RecordExecutionOutcome(ctx, session.ID,
				fmt.Sprintf("application %q", rec.App.Name), model.MemoryAppRemoval, err == nil)
		}
		e.report("app-removal", i+1, total, rec.App.Name)
	}

	return result, nil
}

func (e *Executor) removeApp(rec *model.AppRecommendation) error {
	if rec.App.InstallPath == "" {
		return fmt.Errorf("no install path recorded")
	}
	if _, err := os.Lstat(rec.App.InstallPath); err != nil {
		return fmt.Errorf("install path missing: %w", err)
	}
	return os.RemoveAll(rec.App.InstallPath)
}
