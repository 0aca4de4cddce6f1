package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/viper"

	"diskwise/internal/classify"
	"diskwise/internal/config"
	"diskwise/internal/engine"
	"diskwise/internal/learning"
	"diskwise/internal/llm"
	"diskwise/internal/service"
	"diskwise/internal/session"
	"diskwise/internal/storage"
)

// initStorage initializes the storage service with proper path expansion.
func initStorage(ctx context.Context) (service.Storage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = "$HOME/.local/share/diskwise/diskwise.db"
	}

	// Expand tilde and environment variables
	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	// Run migrations
	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// initClassifier builds the rule-based classifier, loading the optional
// known-safe rule file when one is configured.
func initClassifier() (*classify.Classifier, error) {
	rulesPath := config.ExpandPath(viper.GetString("rules.path"))
	if rulesPath == "" {
		return classify.NewClassifier(classify.NewStaticRuleDB(nil)), nil
	}

	ruleDB, err := classify.NewFileRuleDB(rulesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load rule file: %w", err)
	}
	slog.Debug("loaded rule file", "path", rulesPath, "rules", ruleDB.Len())
	return classify.NewClassifier(ruleDB), nil
}

// initLLMClient builds the model client from config.
func initLLMClient() (llm.Client, error) {
	cfg := llm.DefaultConfig()
	if v := viper.GetString("llm.provider"); v != "" {
		cfg.Provider = v
	}
	if v := viper.GetString("llm.api_key"); v != "" {
		cfg.APIKey = v
	}
	if v := viper.GetString("llm.model"); v != "" {
		cfg.Model = v
	}
	if v := viper.GetString("llm.base_url"); v != "" {
		cfg.BaseURL = v
	}
	if v := viper.GetInt("llm.rate_limit"); v > 0 {
		cfg.RateLimit = v
	}
	if v := viper.GetDuration("llm.timeout"); v > 0 {
		cfg.Timeout = v
	}
	return llm.NewClient(cfg)
}

// initEngine wires the heuristic classifier, memory store, and model client
// into the decision engine.
func initEngine(store service.Storage) (*engine.Engine, error) {
	classifier, err := initClassifier()
	if err != nil {
		return nil, err
	}

	client, err := initLLMClient()
	if err != nil {
		return nil, err
	}

	cfg := engine.DefaultConfig()
	if v := viper.GetFloat64("engine.escalation_threshold"); v > 0 {
		cfg.EscalationThreshold = v
	}
	if v := viper.GetDuration("engine.model_timeout"); v > 0 {
		cfg.ModelTimeout = v
	}

	onEvent := func(ev service.ModelEvent) {
		slog.Debug("model call",
			"provider", ev.Provider,
			"duration", ev.Duration.Round(time.Millisecond),
			"success", ev.Success)
	}

	return engine.New(classifier, store, client, cfg, onEvent), nil
}

// initPipeline assembles the analysis pipeline for a fresh session run.
func initPipeline(store service.Storage, eng *engine.Engine, manager *session.Manager) *session.Pipeline {
	cfg := session.DefaultPipelineConfig()
	if v := viper.GetInt("analysis.workers"); v > 0 {
		cfg.Workers = v
	}
	cfg.DefaultTargetDrive = viper.GetString("relocation.target_drive")

	return session.NewPipeline(manager, newScanner(), eng, store, cfg)
}

func initManager(store service.Storage) *session.Manager {
	keep := viper.GetInt("sessions.keep")
	return session.NewManager(store, keep)
}

func newRecorder(store service.Storage) *learning.Recorder {
	return learning.NewRecorder(store)
}
