package output

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/dshills/crucible/internal/report"
)

// ArtifactNames are the protocol files a review report refers to.
var ArtifactNames = []string{"1-critique.txt", "2-defense.txt", "3-rebuttal.txt", "4-verdict.txt"}

// MarkdownWriter writes the shareable 5-report.md document.
type MarkdownWriter struct{}

func (m *MarkdownWriter) Write(w io.Writer, r *report.Report) error {
	var buf bytes.Buffer
	ew := &errWriter{w: &buf}

	ew.printf("# Review Report: %s — %s @ %s\n\n", r.ReviewType, r.RepoLabel, r.Head)
	ew.printf("- Date: %s\n", r.Date.Format("2006-01-02"))
	ew.printf("- Scope: %s\n", r.Scope)
	ew.println("- Artifacts:")
	for _, name := range ArtifactNames {
		ew.printf("  - %s\n", name)
	}

	ew.println("\n## Executive summary")
	if len(r.Top) == 0 {
		ew.println("- No CONFIRMED findings.")
	}
	for _, e := range r.Top {
		ew.println(confirmedLine(e))
	}

	ew.println("\n## Counts")
	ew.printf("- CONFIRMED: %d\n", r.Counts.Confirmed)
	ew.printf("- DISMISSED: %d\n", r.Counts.Dismissed)
	ew.printf("- CONTESTED: %d\n", r.Counts.Contested)

	ew.println("\n## Top findings (P0/P1)")
	writeList(ew, r.Top, confirmedLine)

	ew.println("\n## Full verdict")
	ew.println("### CONFIRMED")
	writeList(ew, r.Confirmed, confirmedLine)
	ew.println("\n### DISMISSED")
	writeList(ew, r.Dismissed, titleLine)
	ew.println("\n### CONTESTED")
	writeList(ew, r.Contested, titleLine)

	if ew.err != nil {
		return ew.err
	}
	_, err := io.WriteString(w, strings.TrimRight(buf.String(), " \n")+"\n")
	return err
}

func writeList(ew *errWriter, entries []report.Entry, line func(report.Entry) string) {
	if len(entries) == 0 {
		ew.println("- None.")
		return
	}
	for _, e := range entries {
		ew.println(line(e))
	}
}

func confirmedLine(e report.Entry) string {
	return strings.TrimRight(fmt.Sprintf("- %s (%s, %s): %s — %s", e.ID, e.Severity, e.FixPriority, e.Title, e.Location), " ")
}

func titleLine(e report.Entry) string {
	return strings.TrimRight(fmt.Sprintf("- %s: %s", e.ID, e.Title), " ")
}

// Markdown renders r with MarkdownWriter.
func Markdown(r *report.Report) string {
	var b strings.Builder
	_ = (&MarkdownWriter{}).Write(&b, r)
	return b.String()
}
