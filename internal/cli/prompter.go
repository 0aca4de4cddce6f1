package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"

	"diskwise/internal/learning"
	"diskwise/internal/model"
)

// Prompter walks a user through the Pending recommendations of a session
// and records each verdict.
type Prompter struct {
	reader   *NonBlockingReader
	writer   io.Writer
	recorder *learning.Recorder
}

// NewPrompter creates an interactive approval prompter. recorder may be nil.
func NewPrompter(reader io.Reader, writer io.Writer, recorder *learning.Recorder) *Prompter {
	return &Prompter{
		reader:   NewNonBlockingReader(reader),
		writer:   writer,
		recorder: recorder,
	}
}

// ReviewSession prompts for every Pending recommendation. It returns the
// number approved and rejected. Entering "q" stops the review early, leaving
// the remaining items Pending.
func (p *Prompter) ReviewSession(ctx context.Context, session *model.Session) (approved, rejected int, err error) {
	fmt.Fprintln(p.writer, TitleStyle.Render("Review recommendations"))

	for _, rec := range session.Cleanups {
		if rec.Status != model.StatusPending {
			continue
		}
		fmt.Fprintf(p.writer, "%s\n", p.formatCleanup(rec))
		verdict, promptErr := p.ask(ctx)
		if promptErr != nil {
			return approved, rejected, promptErr
		}
		if verdict == verdictQuit {
			return approved, rejected, nil
		}
		ok := verdict == verdictYes
		if ok {
			rec.Status = model.StatusApproved
			approved++
		} else {
			rec.Status = model.StatusRejected
			rejected++
		}
		if p.recorder != nil {
			p.recorder.RecordCleanupDecision(ctx, session.ID, rec, ok)
		}
	}

	for _, rec := range session.Apps {
		if rec.Status != model.StatusPending {
			continue
		}
		fmt.Fprintf(p.writer, "%s\n", p.formatApp(rec))
		verdict, promptErr := p.ask(ctx)
		if promptErr != nil {
			return approved, rejected, promptErr
		}
		if verdict == verdictQuit {
			return approved, rejected, nil
		}
		ok := verdict == verdictYes
		if ok {
			rec.Status = model.StatusApproved
			approved++
		} else {
			rec.Status = model.StatusRejected
			rejected++
		}
		if p.recorder != nil {
			p.recorder.RecordAppDecision(ctx, session.ID, rec, ok)
		}
	}

	for _, rec := range session.Relocations {
		if rec.Status != model.StatusPending {
			continue
		}
		fmt.Fprintf(p.writer, "%s\n", p.formatRelocation(rec))
		verdict, promptErr := p.ask(ctx)
		if promptErr != nil {
			return approved, rejected, promptErr
		}
		if verdict == verdictQuit {
			return approved, rejected, nil
		}
		ok := verdict == verdictYes
		if ok {
			rec.Status = model.StatusApproved
			approved++
		} else {
			rec.Status = model.StatusRejected
			rejected++
		}
		if p.recorder != nil {
			p.recorder.RecordRelocationDecision(ctx, session.ID, rec, ok)
		}
	}

	for _, group := range session.DuplicateGroups {
		if group.Status != model.StatusPending {
			continue
		}
		fmt.Fprintf(p.writer, "%s\n", p.formatDuplicates(group))
		verdict, promptErr := p.ask(ctx)
		if promptErr != nil {
			return approved, rejected, promptErr
		}
		if verdict == verdictQuit {
			return approved, rejected, nil
		}
		if verdict == verdictYes {
			group.Status = model.StatusApproved
			approved++
		} else {
			group.Status = model.StatusRejected
			rejected++
		}
	}

	return approved, rejected, nil
}

type verdict int

const (
	verdictYes verdict = iota
	verdictNo
	verdictQuit
)

// ask reads one y/n/q answer, re-prompting on anything else.
func (p *Prompter) ask(ctx context.Context) (verdict, error) {
	for {
		fmt.Fprint(p.writer, BoldStyle.Render("Approve? [y/n/q] "))
		line, err := p.reader.ReadLine(ctx)
		if err != nil {
			return verdictNo, err
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return verdictYes, nil
		case "n", "no":
			return verdictNo, nil
		case "q", "quit":
			return verdictQuit, nil
		}
		fmt.Fprintln(p.writer, SubtleStyle.Render("please answer y, n, or q"))
	}
}

func (p *Prompter) formatCleanup(rec *model.CleanupRecommendation) string {
	return fmt.Sprintf("%s %s\n  %s",
		InfoStyle.Render("cleanup"),
		BoldStyle.Render(rec.Path),
		SubtleStyle.Render(fmt.Sprintf("%s, risk %s, confidence %.0f%%: %s",
			humanize.Bytes(uint64(rec.EstimatedBytes)), rec.Risk, rec.Decision.Confidence*100, rec.Decision.Reason)))
}

func (p *Prompter) formatApp(rec *model.AppRecommendation) string {
	return fmt.Sprintf("%s %s\n  %s",
		InfoStyle.Render("app"),
		BoldStyle.Render(rec.App.Name),
		SubtleStyle.Render(fmt.Sprintf("%s, %s, confidence %.0f%%: %s",
			rec.App.Publisher, humanize.Bytes(uint64(rec.App.SizeBytes)), rec.Decision.Confidence*100, rec.Decision.Reason)))
}

func (p *Prompter) formatRelocation(rec *model.RelocationRecommendation) string {
	return fmt.Sprintf("%s %s\n  %s",
		InfoStyle.Render("relocate"),
		BoldStyle.Render(rec.Cluster.RootPath),
		SubtleStyle.Render(fmt.Sprintf("%s of %s files to %s, confidence %.0f%%",
			humanize.Bytes(uint64(rec.Cluster.SizeBytes)), rec.Cluster.ClusterType, rec.TargetDrive, rec.Decision.Confidence*100)))
}

func (p *Prompter) formatDuplicates(group *model.DuplicateGroup) string {
	survivor := group.Survivor()
	keep := ""
	if survivor != nil {
		keep = survivor.Path
	}
	return fmt.Sprintf("%s %d copies, %s wasted\n  %s",
		InfoStyle.Render("duplicates"),
		len(group.Files),
		humanize.Bytes(uint64(group.WastedBytes)),
		SubtleStyle.Render("keeping "+keep))
}
