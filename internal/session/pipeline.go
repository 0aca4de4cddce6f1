package session

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"diskwise/internal/engine"
	"diskwise/internal/model"
	"diskwise/internal/scan"
)

// PipelineConfig tunes the analysis pipeline.
type PipelineConfig struct {
	// Workers bounds how many candidates are analyzed concurrently.
	// Heuristic classification is cheap and candidates are independent;
	// only the model call inside the engine is slow.
	Workers int
	// DefaultTargetDrive is used for relocations when no learned pattern
	// suggests a better one.
	DefaultTargetDrive string
}

// DefaultPipelineConfig returns the default pipeline configuration.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Workers:            8,
		DefaultTargetDrive: "",
	}
}

// PatternSource supplies learned relocation preferences to the pipeline.
type PatternSource interface {
	GetRelocationPattern(ctx context.Context, clusterType string) (*model.Pattern, error)
}

// Pipeline drives a session through scan, analysis, and recommendation
// generation.
type Pipeline struct {
	manager  *Manager
	scanner  *scan.Scanner
	engine   *engine.Engine
	patterns PatternSource
	cfg      PipelineConfig
}

// NewPipeline wires the analysis pipeline. patterns may be nil.
func NewPipeline(manager *Manager, scanner *scan.Scanner, eng *engine.Engine, patterns PatternSource, cfg PipelineConfig) *Pipeline {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &Pipeline{
		manager:  manager,
		scanner:  scanner,
		engine:   eng,
		patterns: patterns,
		cfg:      cfg,
	}
}

// AnalyzeFolders scans root, classifies every folder candidate, escalates
// where the heuristic is not confident, and attaches Pending cleanup
// recommendations plus duplicate groups to the session.
func (p *Pipeline) AnalyzeFolders(ctx context.Context, session *model.Session, root string) error {
	if err := p.manager.Transition(ctx, session, model.StateScanningFiles); err != nil {
		return err
	}

	folders, err := p.scanner.ScanFolders(ctx, root)
	if err != nil {
		return p.failOrCancel(ctx, session, fmt.Errorf("folder scan failed: %w", err))
	}

	groups, err := p.scanner.FindDuplicates(ctx, root)
	if err != nil {
		return p.failOrCancel(ctx, session, fmt.Errorf("duplicate scan failed: %w", err))
	}

	if err := p.manager.Transition(ctx, session, model.StateAnalyzingWithAI); err != nil {
		return err
	}

	decisions := make([]model.Decision, len(folders))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Workers)
	for i, folder := range folders {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			decisions[i] = p.engine.Analyze(gctx, model.FolderCandidateOf(folder))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return p.failOrCancel(ctx, session, err)
	}

	if err := p.manager.Transition(ctx, session, model.StateGeneratingRecommendations); err != nil {
		return err
	}

	session.Summary.TotalCandidates += len(folders)
	for i, folder := range folders {
		decision := decisions[i]
		if !decision.Safe {
			continue
		}
		session.Cleanups = append(session.Cleanups, &model.CleanupRecommendation{
			ID:             uuid.NewString(),
			Path:           folder.Path,
			Decision:       decision,
			Status:         model.StatusPending,
			Risk:           riskFor(decision),
			EstimatedBytes: folder.SizeBytes,
		})
	}
	session.DuplicateGroups = append(session.DuplicateGroups, groups...)

	if err := p.manager.Transition(ctx, session, model.StateAwaitingApproval); err != nil {
		return err
	}
	return p.manager.Save(ctx, session)
}

// AnalyzeApps classifies an installed-application inventory and attaches
// Pending removal recommendations to the session.
func (p *Pipeline) AnalyzeApps(ctx context.Context, session *model.Session, apps []model.InstalledApp) error {
	if err := p.manager.Transition(ctx, session, model.StateScanningApps); err != nil {
		return err
	}
	if err := p.manager.Transition(ctx, session, model.StateAnalyzingWithAI); err != nil {
		return err
	}

	decisions := make([]model.Decision, len(apps))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Workers)
	for i := range apps {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			decisions[i] = p.engine.Analyze(gctx, model.AppCandidateOf(&apps[i]))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return p.failOrCancel(ctx, session, err)
	}

	if err := p.manager.Transition(ctx, session, model.StateGeneratingRecommendations); err != nil {
		return err
	}

	session.Summary.TotalCandidates += len(apps)
	for i := range apps {
		session.Apps = append(session.Apps, &model.AppRecommendation{
			ID:           uuid.NewString(),
			App:          apps[i],
			Decision:     decisions[i],
			Status:       model.StatusPending,
			ShouldRemove: decisions[i].Safe,
		})
	}

	if err := p.manager.Transition(ctx, session, model.StateAwaitingApproval); err != nil {
		return err
	}
	return p.manager.Save(ctx, session)
}

// AnalyzeClusters evaluates file clusters for relocation, preferring the
// target drive the memory store has learned for the cluster type.
func (p *Pipeline) AnalyzeClusters(ctx context.Context, session *model.Session, clusters []model.FileCluster) error {
	if err := p.manager.Transition(ctx, session, model.StateAnalyzingWithAI); err != nil {
		return err
	}

	session.Summary.TotalCandidates += len(clusters)
	for i := range clusters {
		decision := p.engine.Analyze(ctx, model.ClusterCandidateOf(&clusters[i]))

		target := p.cfg.DefaultTargetDrive
		if p.patterns != nil {
			if pattern, err := p.patterns.GetRelocationPattern(ctx, clusters[i].ClusterType); err == nil && pattern.PreferredValue != "" {
				target = pattern.PreferredValue
			}
		}

		session.Relocations = append(session.Relocations, &model.RelocationRecommendation{
			ID:             uuid.NewString(),
			Cluster:        clusters[i],
			Decision:       decision,
			Status:         model.StatusPending,
			TargetDrive:    target,
			ShouldRelocate: decision.Safe && target != "",
		})
	}

	if err := p.manager.Transition(ctx, session, model.StateAwaitingApproval); err != nil {
		return err
	}
	return p.manager.Save(ctx, session)
}

// failOrCancel routes a pipeline error to the matching terminal state.
func (p *Pipeline) failOrCancel(ctx context.Context, session *model.Session, cause error) error {
	if ctx.Err() != nil {
		_ = p.manager.Cancel(context.WithoutCancel(ctx), session)
		return ctx.Err()
	}
	_ = p.manager.Fail(ctx, session, cause)
	return cause
}

// riskFor grades a cleanup decision for the approval gate.
func riskFor(decision model.Decision) model.RiskLevel {
	switch {
	case decision.AutoApprove && decision.Confidence >= 0.9:
		return model.RiskLow
	case decision.Confidence >= 0.7:
		return model.RiskMedium
	default:
		return model.RiskHigh
	}
}
