package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"diskwise/internal/cli"
	"diskwise/internal/config"
	"diskwise/internal/model"
)

func relocateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "relocate <clusters.json>",
		Short: "Analyze file clusters for relocation to another drive",
		Long: `Read a file-cluster listing (a JSON array of clusters with root path,
cluster type, drive, file count, and size) and analyze each for relocation
to a roomier drive. Learned preferences pick the target drive; the
--target-drive flag overrides the fallback for clusters without precedent.`,
		Args: cobra.ExactArgs(1),
		RunE: runRelocate,
	}

	cmd.Flags().String("target-drive", "", "Fallback target drive for clusters without a learned preference")
	_ = viper.BindPFlag("relocation.target_drive", cmd.Flags().Lookup("target-drive"))

	return cmd
}

func runRelocate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	clusters, err := loadClusters(args[0])
	if err != nil {
		return err
	}
	if len(clusters) == 0 {
		slog.Info(cli.FormatWarning("Cluster listing is empty, nothing to analyze"))
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

	session, err := manager.Start(ctx, "relocate:"+args[0])
	if err != nil {
		return err
	}

	slog.Info(cli.FormatTitle(fmt.Sprintf("Analyzing %d file clusters...", len(clusters))))

	if err := pipeline.AnalyzeClusters(ctx, session, clusters); err != nil {
		return err
	}

	movable := 0
	for _, rec := range session.Relocations {
		if rec.ShouldRelocate {
			movable++
		}
	}
	slog.Info(cli.FormatSuccess(fmt.Sprintf("%d of %d clusters recommended for relocation", movable, len(clusters))))
	slog.Info(cli.FormatInfo(fmt.Sprintf("Review with: diskwise approve %s", session.ID)))
	return nil
}

func loadClusters(path string) ([]model.FileCluster, error) {
	data, err := os.ReadFile(config.ExpandPath(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read cluster listing: %w", err)
	}

	var clusters []model.FileCluster
	if err := json.Unmarshal(data, &clusters); err != nil {
		return nil, fmt.Errorf("failed to parse cluster listing: %w", err)
	}
	return clusters, nil
}
