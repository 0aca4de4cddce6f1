package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"diskwise/internal/cli"
	"diskwise/internal/execution"
	"diskwise/internal/service"
)

func executeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "execute <session-id>",
		Short: "Execute a session's approved recommendations",
		Long: `Run every approved recommendation in the session: empty approved
cleanup folders, remove duplicate copies, relocate clusters, and uninstall
applications. Items that fail are recorded and the rest continue.`,
		Args: cobra.ExactArgs(1),
		RunE: runExecute,
	}
}

func runExecute(cmd *cobra.Command, args []string) error {
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

	renderer := &progressRenderer{}
	executor := execution.NewExecutor(store, newRecorder(store), renderer.update)

	result, err := executor.ExecuteAllApproved(ctx, session)
	renderer.finish()
	if err != nil {
		return err
	}

	content := fmt.Sprintf(`Items processed:  %d
Items failed:     %d
Space freed:      %s
Duration:         %s`,
		result.ItemsProcessed,
		result.ItemsFailed,
		humanize.Bytes(uint64(result.BytesFreed)),
		result.Duration.Round(time.Millisecond))
	slog.Info(cli.RenderBox("Execution complete", content))

	for _, itemErr := range result.Errors {
		slog.Warn(cli.FormatWarning(itemErr))
	}
	return nil
}

// progressRenderer adapts execution progress updates to a per-phase
// progress bar.
type progressRenderer struct {
	bar   *progressbar.ProgressBar
	phase string
}

func (r *progressRenderer) update(update service.ProgressUpdate) {
	if update.Phase != r.phase {
		r.finish()
		r.phase = update.Phase
		r.bar = progressbar.NewOptions(update.Total,
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(40),
			progressbar.OptionSetDescription(fmt.Sprintf("[cyan][bold]%s[reset]", update.Phase)),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "[green]=[reset]",
				SaucerHead:    "[green]>[reset]",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}),
		)
	}
	if r.bar != nil {
		if err := r.bar.Set(update.Completed); err != nil {
			slog.Debug("failed to advance progress bar", "error", err)
		}
	}
}

func (r *progressRenderer) finish() {
	if r.bar == nil {
		return
	}
	if err := r.bar.Finish(); err != nil {
		slog.Debug("failed to finish progress bar", "error", err)
	}
	fmt.Fprintln(os.Stderr)
	r.bar = nil
}
