package output

import (
	"io"
	"strings"

	"github.com/dshills/crucible/internal/report"
)

// TextWriter prints a compact plain-text summary for the terminal.
type TextWriter struct{}

func (t *TextWriter) Write(w io.Writer, r *report.Report) error {
	ew := &errWriter{w: w}

	ew.printf("Crucible Review — %s @ %s (%s)\n", r.ReviewType, r.Head, r.RepoLabel)
	ew.printf("Scope: %s\n", r.Scope)
	ew.println(strings.Repeat("─", 60))
	ew.printf("Verdict: %d confirmed, %d dismissed, %d contested\n",
		r.Counts.Confirmed, r.Counts.Dismissed, r.Counts.Contested)

	if len(r.Top) == 0 {
		ew.println("\nNo CONFIRMED findings.")
		return ew.err
	}
	ew.println("")
	for _, e := range r.Top {
		prio := e.FixPriority
		if prio == "" {
			prio = "--"
		}
		ew.printf("[%s] %-8s %s  %s\n", prio, e.Severity, e.ID, e.Title)
		if e.Location != "" {
			ew.printf("     %s\n", e.Location)
		}
	}
	if more := len(r.Confirmed) - len(r.Top); more > 0 {
		ew.printf("\n... and %d more confirmed (see 5-report.md)\n", more)
	}
	return ew.err
}
