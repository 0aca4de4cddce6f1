// Package engine implements the hybrid decision engine that combines the
// rule-based classifier, memory-store precedent, and a slow model call into
// a single confidence-scored Decision per candidate.
package engine

import (
	"context"
	"log/slog"
	"time"

	"diskwise/internal/classify"
	"diskwise/internal/common"
	"diskwise/internal/llm"
	"diskwise/internal/model"
	"diskwise/internal/service"
)

// Config holds tuning knobs for the decision engine. All thresholds are
// passed in explicitly so tests can vary them deterministically.
type Config struct {
	EscalationThreshold float64
	ModelTimeout        time.Duration
	MaxFileNames        int
	MaxPrecedents       int
	MaxRetries          int
	EventTruncateLen    int
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{
		EscalationThreshold: 0.9,
		ModelTimeout:        30 * time.Second,
		MaxFileNames:        20,
		MaxPrecedents:       5,
		MaxRetries:          2,
		EventTruncateLen:    500,
	}
}

// Engine orchestrates heuristic classification, precedent retrieval, and
// model escalation.
type Engine struct {
	heuristic Heuristic
	memories  MemoryRetriever
	client    llm.Client
	onEvent   service.ModelEventFunc
	cfg       Config
}

// New creates a decision engine. memories and client may be nil: without a
// client every escalation takes the conservative-fallback path, and without
// a store escalations proceed with no precedent.
func New(heuristic Heuristic, memories MemoryRetriever, client llm.Client, cfg Config, onEvent service.ModelEventFunc) *Engine {
	return &Engine{
		heuristic: heuristic,
		memories:  memories,
		client:    client,
		onEvent:   onEvent,
		cfg:       cfg,
	}
}

// Analyze runs the heuristic pass and then Decide on its output.
func (e *Engine) Analyze(ctx context.Context, cand model.Candidate) model.Decision {
	heuristic := e.heuristic.ClassifyCandidate(cand)
	return e.Decide(ctx, cand, heuristic)
}

// Decide returns the final verdict for a candidate. When the heuristic is
// already confident and in the known-safe tier the heuristic decision is
// returned unchanged; otherwise the engine escalates to the model call with
// retrieved precedent, falling back to a conservative verdict when the model
// cannot produce a valid answer.
func (e *Engine) Decide(ctx context.Context, cand model.Candidate, heuristic model.Decision) model.Decision {
	if e.bypass(heuristic) {
		return heuristic
	}

	precedents := e.retrievePrecedents(ctx, cand, heuristic)
	prompt := buildPrompt(cand, heuristic, precedents, e.cfg.MaxFileNames, e.cfg.MaxPrecedents)

	raw, err := e.generate(ctx, prompt)
	if err != nil {
		slog.Warn("Model escalation failed, using conservative fallback",
			"path", cand.Path(),
			"error", err)
		return fallbackDecision(heuristic)
	}

	decision, err := parseModelDecision(raw, heuristic)
	if err != nil {
		slog.Warn("Model response unparseable, using conservative fallback",
			"path", cand.Path(),
			"error", err)
		return fallbackDecision(heuristic)
	}

	return decision
}

// bypass reports whether the heuristic verdict is strong enough to skip the
// slow model call entirely.
func (e *Engine) bypass(heuristic model.Decision) bool {
	return heuristic.Safe &&
		heuristic.Confidence >= e.cfg.EscalationThreshold &&
		classify.SafeTier(heuristic.Category)
}

// retrievePrecedents queries the memory store for similar past decisions.
// A store failure degrades to no precedent rather than failing the decision.
func (e *Engine) retrievePrecedents(ctx context.Context, cand model.Candidate, heuristic model.Decision) []model.Memory {
	if e.memories == nil {
		return nil
	}

	key := model.KeyForCandidate(cand, heuristic.Category)
	memories, err := e.memories.FindSimilarMemories(ctx, key)
	if err != nil {
		slog.Warn("Memory retrieval failed, proceeding without precedent",
			"path", cand.Path(),
			"error", err)
		return nil
	}
	return memories
}

// generate invokes the model-call adapter under the configured timeout and
// retry policy, and emits an observability event for every attempt outcome.
func (e *Engine) generate(ctx context.Context, prompt string) (string, error) {
	if e.client == nil {
		return "", common.ErrEscalationFailed
	}

	callCtx, cancel := context.WithTimeout(ctx, e.cfg.ModelTimeout)
	defer cancel()

	var raw string
	start := time.Now()
	err := common.WithRetry(callCtx, func() error {
		var genErr error
		raw, genErr = e.client.Generate(callCtx, prompt)
		if genErr != nil {
			return &common.RetryableError{Err: genErr, Retryable: llm.IsRateLimited(genErr)}
		}
		return nil
	}, service.RetryOptions{
		MaxAttempts:  e.cfg.MaxRetries + 1,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Multiplier:   2.0,
	})

	e.emit(service.ModelEvent{
		Timestamp: start,
		Provider:  e.client.Provider(),
		Prompt:    truncate(prompt, e.cfg.EventTruncateLen),
		Response:  truncate(raw, e.cfg.EventTruncateLen),
		Duration:  time.Since(start),
		Success:   err == nil,
	})

	return raw, err
}

// emit delivers an observability event; sink failures never propagate.
func (e *Engine) emit(ev service.ModelEvent) {
	if e.onEvent == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("Model event sink panicked", "panic", r)
		}
	}()
	e.onEvent(ev)
}

// fallbackDecision is the conservative verdict used when an escalation was
// requested but the model could not answer. The heuristic's optimistic
// verdict is deliberately not reused: escalation happened precisely because
// it was not trusted alone.
func fallbackDecision(heuristic model.Decision) model.Decision {
	return model.Decision{
		Category:   heuristic.Category,
		Safe:       false,
		Confidence: 0,
		Reason:     "unable to analyze",
	}
}

func truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}
