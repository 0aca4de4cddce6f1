// Package execution turns approved recommendations into filesystem actions:
// emptying disposable folders, pruning duplicate files, relocating clusters,
// and removing application directories. Batches tolerate per-item failure,
// report progress through an explicit callback, and honor cooperative
// cancellation between items — never mid-delete.
package execution

import (
	"context"
	"sync"
	"time"

	"diskwise/internal/learning"
	"diskwise/internal/model"
	"diskwise/internal/service"
)

// Executor carries out approved recommendations for a session.
type Executor struct {
	store    service.Storage
	learner  *learning.Recorder
	progress service.ProgressFunc
	locks    sync.Map // session id -> *sync.Mutex
}

// NewExecutor creates an executor. learner and progress may be nil.
func NewExecutor(store service.Storage, learner *learning.Recorder, progress service.ProgressFunc) *Executor {
	return &Executor{
		store:    store,
		learner:  learner,
		progress: progress,
	}
}

// lockSession serializes execute calls per session. Executions for
// different sessions run concurrently.
func (e *Executor) lockSession(id string) func() {
	v, _ := e.locks.LoadOrStore(id, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// report emits one progress update; a nil callback is a no-op.
func (e *Executor) report(phase string, completed, total int, current string) {
	if e.progress == nil {
		return
	}
	e.progress(service.ProgressUpdate{
		Phase:       phase,
		Completed:   completed,
		Total:       total,
		CurrentItem: current,
	})
}

// persist writes the session's mutated recommendation statuses back to the
// store. Persist failures surface in the result message, not as batch
// errors, since the filesystem work already happened.
func (e *Executor) persist(ctx context.Context, session *model.Session) error {
	if e.store == nil {
		return nil
	}
	session.Recount()
	return e.store.SaveSession(ctx, session)
}

// ExecuteAllApproved runs every kind-specific batch in sequence and then
// transitions the session to Completed. Partial item failures do not change
// the session state; they are signaled through Success=false and Errors.
func (e *Executor) ExecuteAllApproved(ctx context.Context, session *model.Session) (ExecutionResult, error) {
	unlock := e.lockSession(session.ID)
	defer unlock()

	started := time.Now()
	session.State = model.StateExecuting

	var result ExecutionResult

	batches := []func(context.Context, *model.Session) (ExecutionResult, error){
		e.executeCleanupLocked,
		e.executeDuplicateRemovalLocked,
		e.executeRelocationLocked,
		e.executeAppRemovalLocked,
	}

	for _, batch := range batches {
		r, err := batch(ctx, session)
		result.merge(r)
		if err != nil {
			// Cancellation is a distinct outcome, not a failure result.
			session.State = model.StateCancelled
			_ = e.persist(ctx, session)
			result.finalize(started)
			return result, err
		}
	}

	now := time.Now()
	session.State = model.StateCompleted
	session.CompletedAt = &now
	session.Summary.FreedBytes += result.BytesFreed

	if err := e.persist(ctx, session); err != nil {
		result.Message = "session persistence failed: " + err.Error()
	}

	result.finalize(started)
	return result, nil
}

// ExecuteCleanup processes approved cleanup recommendations.
func (e *Executor) ExecuteCleanup(ctx context.Context, session *model.Session) (ExecutionResult, error) {
	unlock := e.lockSession(session.ID)
	defer unlock()

	started := time.Now()
	result, err := e.executeCleanupLocked(ctx, session)
	if persistErr := e.persist(ctx, session); persistErr != nil && result.Message == "" {
		result.Message = "session persistence failed: " + persistErr.Error()
	}
	result.finalize(started)
	return result, err
}

// ExecuteDuplicateRemoval processes approved duplicate groups.
func (e *Executor) ExecuteDuplicateRemoval(ctx context.Context, session *model.Session) (ExecutionResult, error) {
	unlock := e.lockSession(session.ID)
	defer unlock()

	started := time.Now()
	result, err := e.executeDuplicateRemovalLocked(ctx, session)
	if persistErr := e.persist(ctx, session); persistErr != nil && result.Message == "" {
		result.Message = "session persistence failed: " + persistErr.Error()
	}
	result.finalize(started)
	return result, err
}

// ExecuteRelocation processes approved relocation recommendations.
func (e *Executor) ExecuteRelocation(ctx context.Context, session *model.Session) (ExecutionResult, error) {
	unlock := e.lockSession(session.ID)
	defer unlock()

	started := time.Now()
	result, err := e.executeRelocationLocked(ctx, session)
	if persistErr := e.persist(ctx, session); persistErr != nil && result.Message == "" {
		result.Message = "session persistence failed: " + persistErr.Error()
	}
	result.finalize(started)
	return result, err
}

// ExecuteAppRemoval processes approved application removals.
func (e *Executor) ExecuteAppRemoval(ctx context.Context, session *model.Session) (ExecutionResult, error) {
	unlock := e.lockSession(session.ID)
	defer unlock()

	started := time.Now()
	result, err := e.executeAppRemovalLocked(ctx, session)
	if persistErr := e.persist(ctx, session); persistErr != nil && result.Message == "" {
		result.Message = "session persistence failed: " + persistErr.Error()
	}
	result.finalize(started)
	return result, err
}
