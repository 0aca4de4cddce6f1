package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"diskwise/internal/cli"
	"diskwise/internal/execution"
)

func approveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "approve <session-id>",
		Short: "Review and approve a session's recommendations",
		Long: `Walk through a session's pending recommendations one at a time,
approving or rejecting each. With --all, every recommendation the engine
marked safe above the confidence floor is approved without prompting.`,
		Args: cobra.ExactArgs(1),
		RunE: runApprove,
	}

	cmd.Flags().Bool("all", false, "Approve all safe recommendations without prompting")
	cmd.Flags().Float64("min-confidence", 0.85, "Confidence floor for --all approval")

	_ = viper.BindPFlag("approve.all", cmd.Flags().Lookup("all"))
	_ = viper.BindPFlag("approve.min_confidence", cmd.Flags().Lookup("min-confidence"))

	return cmd
}

func runApprove(cmd *cobra.Command, args []string) error {
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

	session, err := store.GetSession(ctx, args[0])
	if err != nil {
		return err
	}

	recorder := newRecorder(store)

	if viper.GetBool("approve.all") {
		executor := execution.NewExecutor(store, recorder, nil)
		approved := executor.ApproveAllSafe(ctx, session, viper.GetFloat64("approve.min_confidence"))
		slog.Info(cli.FormatSuccess(fmt.Sprintf("Approved %d safe recommendations", approved)))
		return nil
	}

	prompter := cli.NewPrompter(os.Stdin, os.Stdout, recorder)
	approved, rejected, err := prompter.ReviewSession(ctx, session)
	if err != nil {
		return err
	}

	session.Recount()
	if err := store.SaveSession(ctx, session); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	slog.Info(cli.FormatSuccess(fmt.Sprintf("Approved %d, rejected %d", approved, rejected)))
	if approved > 0 {
		slog.Info(cli.FormatInfo(fmt.Sprintf("Run with: diskwise execute %s", session.ID)))
	}
	return nil
}
