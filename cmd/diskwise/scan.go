package main

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"diskwise/internal/cli"
	"diskwise/internal/model"
	"diskwise/internal/scan"
)

func scanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan <root>",
		Short: "Scan a directory tree and generate cleanup recommendations",
		Long: `Walk the given directory tree, classify every folder with the rule
engine (escalating uncertain cases to the model), detect duplicate files,
and record the resulting recommendations in a new session.

Nothing is deleted. Review the session with 'diskwise approve' and run it
with 'diskwise execute'.`,
		Args: cobra.ExactArgs(1),
		RunE: runScan,
	}

	cmd.Flags().Int64("min-file-size", 1, "Smallest file size considered for duplicate detection (bytes)")
	cmd.Flags().Int("max-depth", 0, "Maximum folder depth to walk (0 = unlimited)")

	_ = viper.BindPFlag("scan.min_file_size", cmd.Flags().Lookup("min-file-size"))
	_ = viper.BindPFlag("scan.max_depth", cmd.Flags().Lookup("max-depth"))

	return cmd
}

func newScanner() *scan.Scanner {
	opts := scan.DefaultOptions()
	if v := viper.GetInt64("scan.min_file_size"); v > 0 {
		opts.MinFileSize = v
	}
	if v := viper.GetInt("scan.max_depth"); v > 0 {
		opts.MaxDepth = v
	}
	return scan.NewScanner(opts)
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	root, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("invalid scan root: %w", err)
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

	session, err := manager.Start(ctx, root)
	if err != nil {
		return err
	}

	slog.Info(cli.FormatTitle("Analyzing " + root + "..."))

	if err := pipeline.AnalyzeFolders(ctx, session, root); err != nil {
		return err
	}

	printSessionSummary(session)
	slog.Info(cli.FormatInfo(fmt.Sprintf("Review with: diskwise approve %s", session.ID)))
	return nil
}

func printSessionSummary(session *model.Session) {
	var reclaimable int64
	for _, rec := range session.Cleanups {
		reclaimable += rec.EstimatedBytes
	}
	for _, group := range session.DuplicateGroups {
		reclaimable += group.WastedBytes
	}

	content := fmt.Sprintf(`Cleanup candidates:  %d
Duplicate groups:    %d
App candidates:      %d
Relocation targets:  %d
Reclaimable space:   %s`,
		len(session.Cleanups),
		len(session.DuplicateGroups),
		len(session.Apps),
		len(session.Relocations),
		humanize.Bytes(uint64(reclaimable)))

	slog.Info(cli.RenderBox(fmt.Sprintf("Session %s", session.ID), content))
}
