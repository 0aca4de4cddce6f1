// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"diskwise/internal/model"
)

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Session operations
	SaveSession(ctx context.Context, session *model.Session) error
	GetSession(ctx context.Context, id string) (*model.Session, error)
	GetRecentSessions(ctx context.Context, limit int) ([]*model.Session, error)
	GetActiveSession(ctx context.Context, scope string) (*model.Session, error)
	PruneSessions(ctx context.Context, keep int) (int, error)

	// Memory operations
	SaveMemory(ctx context.Context, memory *model.Memory) error
	FindSimilarMemories(ctx context.Context, key model.MemoryKey) ([]model.Memory, error)
	GetPattern(ctx context.Context, key string) (*model.Pattern, error)
	GetRelocationPattern(ctx context.Context, clusterType string) (*model.Pattern, error)
	GetLearningStats(ctx context.Context) (*model.LearningStats, error)
	PurgeSessionMemories(ctx context.Context, sessionID string) (int, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// RetryOptions configures retry behavior for an operation.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// ProgressUpdate reports execution progress for a single phase.
type ProgressUpdate struct {
	Phase       string
	CurrentItem string
	Completed   int
	Total       int
}

// ProgressFunc receives progress updates during execution. Implementations
// must be fast and must never fail the caller.
type ProgressFunc func(ProgressUpdate)

// ModelEvent describes one model-call escalation for observability sinks.
// Prompt and Response are truncated before the event is emitted.
type ModelEvent struct {
	Timestamp time.Time
	Provider  string
	Prompt    string
	Response  string
	Duration  time.Duration
	Success   bool
}

// ModelEventFunc receives model interaction events, fire-and-forget.
type ModelEventFunc func(ModelEvent)
