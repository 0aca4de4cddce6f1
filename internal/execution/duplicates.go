package execution

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"diskwise/internal/model"
)

// executeDuplicateRemovalLocked prunes approved duplicate groups. The
// oldest-modified file in each group always survives; a non-survivor that
// has already vanished is tolerated and counts as neither processed nor
// failed. Callers hold the session lock.
func (e *Executor) executeDuplicateRemovalLocked(ctx context.Context, session *model.Session) (ExecutionResult, error) {
	var result ExecutionResult

	approved := make([]*model.DuplicateGroup, 0, len(session.DuplicateGroups))
	for _, g := range session.DuplicateGroups {
		if g.Status == model.StatusApproved {
			approved = append(approved, g)
		}
	}

	total := len(approved)
	for i, group := range approved {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		survivor := group.Survivor()
		if survivor == nil {
			continue
		}

		e.report("duplicates", i, total, survivor.Path)
		group.Status = model.StatusExecuting

		groupFailed := false
		for _, file := range group.Files {
			if file.Path == survivor.Path {
				continue
			}
			if err := ctx.Err(); err != nil {
				group.Status = model.StatusFailed
				return result, err
			}

			if err := os.Remove(file.Path); err != nil {
				if errors.Is(err, os.ErrNotExist) {
					// Already gone; survivor selection still completes.
					continue
				}
				groupFailed = true
				result.Errors = append(result.Errors, fmt.Sprintf("duplicate %s: %v", file.Path, err))
				slog.Warn("Duplicate removal failed", "path", file.Path, "error", err)
				continue
			}
			result.BytesFreed += file.SizeBytes
		}

		if groupFailed {
			group.Status = model.StatusFailed
			result.ItemsFailed++
		} else {
			group.Status = model.StatusCompleted
			result.ItemsProcessed++
		}
		e.report("duplicates", i+1, total, survivor.Path)
	}

	return result, nil
}
