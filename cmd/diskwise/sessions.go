package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"diskwise/internal/cli"
)

func sessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List recent analysis sessions",
		RunE:  runSessions,
	}

	cmd.Flags().IntP("limit", "n", 10, "Number of sessions to show")
	_ = viper.BindPFlag("sessions.limit", cmd.Flags().Lookup("limit"))

	cmd.AddCommand(sessionsPruneCmd())
	return cmd
}

func sessionsPruneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete old terminal sessions, keeping the most recent",
		RunE:  runSessionsPrune,
	}

	cmd.Flags().Int("keep", 20, "Number of sessions to keep")
	_ = viper.BindPFlag("sessions.keep", cmd.Flags().Lookup("keep"))

	return cmd
}

func runSessions(cmd *cobra.Command, _ []string) error {
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

	sessions, err := store.GetRecentSessions(ctx, viper.GetInt("sessions.limit"))
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		slog.Info(cli.FormatInfo("No sessions yet. Start one with 'diskwise scan'."))
		return nil
	}

	var sb strings.Builder
	for _, session := range sessions {
		sb.WriteString(fmt.Sprintf("%s  %-20s %-10s %3d recs  %s\n",
			session.StartedAt.Format("2006-01-02 15:04"),
			session.State,
			session.ID[:8],
			session.Summary.TotalRecommendations,
			session.Scope))
	}
	slog.Info(cli.RenderBox("Recent sessions", strings.TrimRight(sb.String(), "\n")))

	var freed int64
	for _, session := range sessions {
		freed += session.Summary.FreedBytes
	}
	slog.Info(cli.FormatInfo("Total space freed: " + humanize.Bytes(uint64(freed))))
	return nil
}

func runSessionsPrune(cmd *cobra.Command, _ []string) error {
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

	removed, err := store.PruneSessions(ctx, viper.GetInt("sessions.keep"))
	if err != nil {
		return err
	}
	slog.Info(cli.FormatSuccess(fmt.Sprintf("Pruned %d old sessions", removed)))
	return nil
}
