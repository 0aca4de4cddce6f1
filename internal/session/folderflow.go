package session

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"diskwise/internal/engine"
	"diskwise/internal/execution"
	"diskwise/internal/model"
)

// FolderFlow is the lightweight per-folder analysis loop used for ad hoc
// single-folder triage: Idle → Triage → Proposal → Approval → Execution →
// Report, then back to Idle. Each step validates the current state so
// callers cannot skip phases.
type FolderFlow struct {
	engine   *engine.Engine
	executor *execution.Executor
	proposal *model.CleanupRecommendation
	result   *execution.ExecutionResult
	folder   *model.FolderCandidate
	state    model.FolderState
}

// NewFolderFlow creates an idle per-folder flow.
func NewFolderFlow(eng *engine.Engine, executor *execution.Executor) *FolderFlow {
	return &FolderFlow{
		engine:   eng,
		executor: executor,
		state:    model.FolderIdle,
	}
}

// State returns the current flow state.
func (f *FolderFlow) State() model.FolderState {
	return f.state
}

// Triage starts a cycle for one folder.
func (f *FolderFlow) Triage(folder *model.FolderCandidate) error {
	if f.state != model.FolderIdle {
		return fmt.Errorf("triage requires idle flow, state is %s", f.state)
	}
	f.folder = folder
	f.proposal = nil
	f.result = nil
	f.state = model.FolderTriage
	return nil
}

// Propose runs the decision engine and produces a cleanup proposal.
func (f *FolderFlow) Propose(ctx context.Context) (*model.CleanupRecommendation, error) {
	if f.state != model.FolderTriage {
		return nil, fmt.Errorf("propose requires triaged flow, state is %s", f.state)
	}

	decision := f.engine.Analyze(ctx, model.FolderCandidateOf(f.folder))
	f.proposal = &model.CleanupRecommendation{
		ID:             uuid.NewString(),
		Path:           f.folder.Path,
		Decision:       decision,
		Status:         model.StatusPending,
		Risk:           riskFor(decision),
		EstimatedBytes: f.folder.SizeBytes,
	}
	f.state = model.FolderProposal
	return f.proposal, nil
}

// Approve records the human verdict on the proposal.
func (f *FolderFlow) Approve(approved bool) error {
	if f.state != model.FolderProposal {
		return fmt.Errorf("approve requires a proposal, state is %s", f.state)
	}
	if approved {
		f.proposal.Status = model.StatusApproved
	} else {
		f.proposal.Status = model.StatusRejected
	}
	f.state = model.FolderApproval
	return nil
}

// Execute runs the approved proposal through the execution engine. A
// rejected proposal skips straight to the report phase.
func (f *FolderFlow) Execute(ctx context.Context) error {
	if f.state != model.FolderApproval {
		return fmt.Errorf("execute requires an approval verdict, state is %s", f.state)
	}
	f.state = model.FolderExecution

	if f.proposal.Status == model.StatusApproved {
		scratch := &model.Session{
			ID:       "folder-flow-" + f.proposal.ID,
			State:    model.StateExecuting,
			Cleanups: []*model.CleanupRecommendation{f.proposal},
		}
		result, err := f.executor.ExecuteCleanup(ctx, scratch)
		f.result = &result
		if err != nil {
			return err
		}
	}

	f.state = model.FolderReport
	return nil
}

// Report returns the cycle's outcome and resets the flow to Idle.
func (f *FolderFlow) Report() (*model.CleanupRecommendation, *execution.ExecutionResult, error) {
	if f.state != model.FolderReport {
		return nil, nil, fmt.Errorf("report requires an executed flow, state is %s", f.state)
	}
	proposal, result := f.proposal, f.result
	f.folder = nil
	f.proposal = nil
	f.result = nil
	f.state = model.FolderIdle
	return proposal, result, nil
}
