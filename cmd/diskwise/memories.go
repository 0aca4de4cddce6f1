package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"diskwise/internal/cli"
)

func memoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "memories",
		Short: "Manage the decision memory store",
	}

	cmd.AddCommand(memoriesPurgeCmd())
	return cmd
}

func memoriesPurgeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "purge <session-id>",
		Short: "Delete all memories recorded during a session",
		Long: `Remove every memory tied to the given session, for when a session's
decisions were made in error and should not influence future analysis.`,
		Args: cobra.ExactArgs(1),
		RunE: runMemoriesPurge,
	}
}

func runMemoriesPurge(cmd *cobra.Command, args []string) error {
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

	removed, err := store.PurgeSessionMemories(ctx, args[0])
	if err != nil {
		return err
	}
	slog.Info(cli.FormatSuccess(fmt.Sprintf("Purged %d memories from session %s", removed, args[0])))
	return nil
}
