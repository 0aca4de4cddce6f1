// Package learning is the write-side façade over the memory store. It turns
// approvals, rejections, and execution outcomes into Memory records.
// Recording is best-effort: a failed write is logged and never rolls back
// the action it describes.
package learning

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"diskwise/internal/model"
	"diskwise/internal/service"
)

// Recorder writes decision outcomes into the memory store.
type Recorder struct {
	store service.Storage
}

// NewRecorder creates a learning recorder over the given store.
func NewRecorder(store service.Storage) *Recorder {
	return &Recorder{store: store}
}

// RecordAppDecision records a human verdict on an application removal.
func (r *Recorder) RecordAppDecision(ctx context.Context, sessionID string, rec *model.AppRecommendation, approved bool) {
	decision := "rejected"
	if approved {
		decision = "remove"
	}
	r.record(ctx, &model.Memory{
		Type:            model.MemoryAppRemoval,
		Context:         fmt.Sprintf("application %q", rec.App.Name),
		Decision:        decision,
		UserAgreed:      approved == rec.Decision.Safe,
		ModelConfidence: rec.Decision.Confidence,
		Metadata: map[string]string{
			model.MetaPublisher: rec.App.Publisher,
			model.MetaCategory:  string(rec.Decision.Category),
			model.MetaSessionID: sessionID,
		},
	})
}

// RecordCleanupDecision records a human verdict on a cleanup opportunity.
func (r *Recorder) RecordCleanupDecision(ctx context.Context, sessionID string, rec *model.CleanupRecommendation, approved bool) {
	decision := "rejected"
	if approved {
		decision = "clean"
	}
	r.record(ctx, &model.Memory{
		Type:            model.MemoryCleanup,
		Context:         fmt.Sprintf("folder %q", rec.Path),
		Decision:        decision,
		UserAgreed:      approved == rec.Decision.Safe,
		ModelConfidence: rec.Decision.Confidence,
		Metadata: map[string]string{
			model.MetaCategory:  string(rec.Decision.Category),
			model.MetaSessionID: sessionID,
		},
	})
}

// RecordRelocationDecision records a human verdict on a relocation.
func (r *Recorder) RecordRelocationDecision(ctx context.Context, sessionID string, rec *model.RelocationRecommendation, approved bool) {
	decision := "rejected"
	if approved {
		decision = "relocate"
	}
	r.record(ctx, &model.Memory{
		Type:            model.MemoryRelocation,
		Context:         fmt.Sprintf("cluster %q", rec.Cluster.RootPath),
		Decision:        decision,
		UserAgreed:      approved == rec.Decision.Safe,
		ModelConfidence: rec.Decision.Confidence,
		Metadata: map[string]string{
			model.MetaClusterType: rec.Cluster.ClusterType,
			model.MetaTargetDrive: rec.TargetDrive,
			model.MetaSessionID:   sessionID,
		},
	})
}

// RecordCorrection appends a Correction memory when a user reverses an
// earlier decision. The original memory is preserved.
func (r *Recorder) RecordCorrection(ctx context.Context, sessionID, subject, newDecision string, confidence float64) {
	r.record(ctx, &model.Memory{
		Type:            model.MemoryCorrection,
		Context:         subject,
		Decision:        newDecision,
		UserAgreed:      false,
		ModelConfidence: confidence,
		Metadata: map[string]string{
			model.MetaSessionID: sessionID,
		},
	})
}

// RecordExecutionOutcome records what actually happened when an approved
// recommendation was executed.
func (r *Recorder) RecordExecutionOutcome(ctx context.Context, sessionID, subject string, memType model.MemoryType, succeeded bool) {
	decision := "failed"
	if succeeded {
		decision = "cleaned"
	}
	r.record(ctx, &model.Memory{
		Type:            memType,
		Context:         subject,
		Decision:        decision,
		UserAgreed:      succeeded,
		ModelConfidence: 1.0,
		Metadata: map[string]string{
			model.MetaSessionID: sessionID,
		},
	})
}

// record appends one memory, logging failures without propagating them.
func (r *Recorder) record(ctx context.Context, mem *model.Memory) {
	if r == nil || r.store == nil {
		return
	}
	mem.Timestamp = time.Now()
	if err := r.store.SaveMemory(ctx, mem); err != nil {
		slog.Warn("Failed to record learning memory",
			"type", mem.Type,
			"context", mem.Context,
			"error", err)
	}
}
