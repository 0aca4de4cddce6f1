package execution

import (
	"context"
	"fmt"
	"log/slog"

	"diskwise/internal/model"
)

// executeRelocationLocked moves approved file clusters to their target
// drives. Callers hold the session lock.
func (e *Executor) executeRelocationLocked(ctx context.Context, session *model.Session) (ExecutionResult, error) {
	var result ExecutionResult

	approved := make([]*model.RelocationRecommendation, 0, len(session.Relocations))
	for _, rec := range session.Relocations {
		if rec.Status == model.StatusApproved {
			approved = append(approved, rec)
		}
	}

	total := len(approved)
	for i, rec := range approved {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		e.report("relocation", i, total, rec.Cluster.RootPath)
		rec.Status = model.StatusExecuting

		dst, err := moveTree(rec.Cluster.RootPath, rec.TargetDrive)
		if err != nil {
			rec.Status = model.StatusFailed
			result.ItemsFailed++
			result.Errors = append(result.Errors, fmt.Sprintf("relocate %s: %v", rec.Cluster.RootPath, err))
			slog.Warn("Relocation failed", "path", rec.Cluster.RootPath, "error", err)
		} else {
			rec.Status = model.StatusCompleted
			result.ItemsProcessed++
			result.BytesFreed += rec.Cluster.SizeBytes
			slog.Info("Relocated cluster",
				"from", rec.Cluster.RootPath,
				"to", dst,
				"bytes", rec.Cluster.SizeBytes)
		}

		if e.learner != nil {
			e.learner.RecordExecutionOutcome(ctx, session.ID,
				fmt.Sprintf("cluster %q", rec.Cluster.RootPath), model.MemoryRelocation, err == nil)
		}
		e.report("relocation", i+1, total, rec.Cluster.RootPath)
	}

	return result, nil
}
