package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"diskwise/internal/cli"
)

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show learning statistics from past decisions",
		RunE:  runStats,
	}
}

func runStats(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Warn("failed to close storage", "error", closeErr)
		}
	}()

	stats, err := store.GetLearningStats(ctx)
	if err != nil {
		return err
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Recorded decisions:  %d\n", stats.TotalMemories))
	sb.WriteString(fmt.Sprintf("User agreed:         %d\n", stats.AgreedCount))
	sb.WriteString(fmt.Sprintf("Accuracy rate:       %.0f%%\n", stats.AccuracyRate*100))
	for memType, count := range stats.CountByType {
		sb.WriteString(fmt.Sprintf("  %-24s %d\n", memType, count))
	}
	slog.Info(cli.RenderBox("Learning statistics", strings.TrimRight(sb.String(), "\n")))
	return nil
}
