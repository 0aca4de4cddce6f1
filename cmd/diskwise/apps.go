package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"diskwise/internal/cli"
	"diskwise/internal/config"
	"diskwise/internal/model"
)

func appsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "apps <inventory.json>",
		Short: "Analyze an installed-application inventory for removal candidates",
		Long: `Read an application inventory (a JSON array of installed applications
with name, publisher, install path, size, and last-used time) and analyze
each entry for removal. Results are recorded in a new session.`,
		Args: cobra.ExactArgs(1),
		RunE: runApps,
	}
}

func runApps(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	apps, err := loadAppInventory(args[0])
	if err != nil {
		return err
	}
	if len(apps) == 0 {
		slog.Info(cli.FormatWarning("Inventory is empty, nothing to analyze"))
		return nil
	}

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Warn("failed to close storage", "error", closeErr)
		}
	}()

	eng, err := initEngine(store)
	if err != nil {
		return err
	}

	manager := initManager(store)
	pipeline := initPipeline(store, eng, manager)

	session, err := manager.Start(ctx, "apps:"+args[0])
	if err != nil {
		return err
	}

	slog.Info(cli.FormatTitle(fmt.Sprintf("Analyzing %d applications...", len(apps))))

	if err := pipeline.AnalyzeApps(ctx, session, apps); err != nil {
		return err
	}

	removable := 0
	for _, rec := range session.Apps {
		if rec.ShouldRemove {
			removable++
		}
	}
	slog.Info(cli.FormatSuccess(fmt.Sprintf("%d of %d applications recommended for removal", removable, len(apps))))
	slog.Info(cli.FormatInfo(fmt.Sprintf("Review with: diskwise approve %s", session.ID)))
	return nil
}

func loadAppInventory(path string) ([]model.InstalledApp, error) {
	data, err := os.ReadFile(config.ExpandPath(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read inventory: %w", err)
	}

	var apps []model.InstalledApp
	if err := json.Unmarshal(data, &apps); err != nil {
		return nil, fmt.Errorf("failed to parse inventory: %w", err)
	}
	return apps, nil
}
