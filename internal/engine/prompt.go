package engine

import (
	"fmt"
	"strings"

	"diskwise/internal/model"
)

// buildPrompt assembles the bounded escalation prompt: the heuristic verdict,
// a capped file listing, and up to maxPrecedents precedent lines from the
// memory store.
func buildPrompt(cand model.Candidate, heuristic model.Decision, precedents []model.Memory, maxFiles, maxPrecedents int) string {
	var b strings.Builder

	b.WriteString("Evaluate whether the following filesystem object can be safely deleted.\n\n")

	switch cand.Kind {
	case model.KindApp:
		app := cand.App
		fmt.Fprintf(&b, "Object: installed application %q\n", app.Name)
		fmt.Fprintf(&b, "Publisher: %s\n", app.Publisher)
		fmt.Fprintf(&b, "Install path: %s\n", app.InstallPath)
		if !app.LastUsed.IsZero() {
			fmt.Fprintf(&b, "Last used: %s\n", app.LastUsed.Format("2006-01-02"))
		}
	case model.KindCluster:
		cl := cand.Cluster
		fmt.Fprintf(&b, "Object: file cluster %q (%s)\n", cl.RootPath, cl.ClusterType)
		fmt.Fprintf(&b, "Files: %d, total bytes: %d, drive: %s\n", cl.FileCount, cl.SizeBytes, cl.Drive)
	default:
		fmt.Fprintf(&b, "Object: folder %q\n", cand.Path())
	}

	fmt.Fprintf(&b, "\nHeuristic verdict: category=%s safe=%t confidence=%.2f\n", heuristic.Category, heuristic.Safe, heuristic.Confidence)
	fmt.Fprintf(&b, "Heuristic reason: %s\n", heuristic.Reason)

	if names := cand.FileNames(); len(names) > 0 {
		b.WriteString("\nFile listing:\n")
		shown := names
		if maxFiles > 0 && len(names) > maxFiles {
			shown = names[:maxFiles]
		}
		for _, name := range shown {
			fmt.Fprintf(&b, "  - %s\n", name)
		}
		if overflow := len(names) - len(shown); overflow > 0 {
			fmt.Fprintf(&b, "  ... and %d more files\n", overflow)
		}
	}

	if len(precedents) > 0 {
		if maxPrecedents > 0 && len(precedents) > maxPrecedents {
			precedents = precedents[:maxPrecedents]
		}
		b.WriteString("\nPast decisions on similar objects:\n")
		for _, mem := range precedents {
			b.WriteString("  - ")
			b.WriteString(precedentLine(mem))
			b.WriteString("\n")
		}
	}

	b.WriteString("\nRespond with a single JSON object:\n")
	b.WriteString(`{"safe_to_delete": bool, "confidence": number 0..1, "reason": string, "category": string (optional), "auto_approve": bool (optional)}`)
	b.WriteString("\n")

	return b.String()
}

// precedentLine summarizes one memory as a short precedent sentence.
func precedentLine(mem model.Memory) string {
	agreed := "user agreed"
	if !mem.UserAgreed {
		agreed = "user overrode"
	}
	subject := mem.Context
	if pub := mem.Metadata[model.MetaPublisher]; pub != "" {
		subject = fmt.Sprintf("%s (publisher %s)", subject, pub)
	}
	return fmt.Sprintf("%s: decided %q, %s", subject, mem.Decision, agreed)
}
