package validate

import "regexp"

var (
	ideaItemRe     = regexp.MustCompile(`(?m)^\d+\.\s+\S`)
	alignmentRe    = regexp.MustCompile(`(?m)^Alignment:\s*(PASS|PARTIAL|FAIL)\s*$`)
	misalignmentRe = regexp.MustCompile(`(?m)^###\s+(SA-\d{2}):\s+\S`)
)

// IdeationReport checks the feature ideation report headings and that at
// least minIdeas numbered ideas are present.
func IdeationReport(text string, minIdeas int) error {
	const artifact = "ideation report"
	if err := requireAll(artifact, text, "# Feature Ideation Report", "## Ideas (prioritized)", "## Next steps", "## Open questions"); err != nil {
		return err
	}
	if n := len(ideaItemRe.FindAllString(text, -1)); n < minIdeas {
		return formatErr(artifact, "expected at least %d ideas (found %d)", minIdeas, n)
	}
	return nil
}

// ProgressMarkdown checks the markdown progress update sections.
func ProgressMarkdown(text string) error {
	const artifact = "progress update"
	if err := requireAll(artifact, text, "# Progress Update"); err != nil {
		return err
	}
	if err := requireAny(artifact, text, "## Done", "## Completed"); err != nil {
		return err
	}
	if err := requireAll(artifact, text, "## Next"); err != nil {
		return err
	}
	if err := requireAny(artifact, text, "## Risks / blockers", "## Risks", "## Blockers"); err != nil {
		return err
	}
	return requireAny(artifact, text, "## Verification", "## Validation")
}

// ProgressSlack checks the slack-formatted progress update labels.
func ProgressSlack(text string) error {
	return requireAll("progress update", text, "Done:", "Next:", "Risks:", "Verification:")
}

// AlignmentReport checks the spec alignment report. Any result other than
// PASS must list at least one "### SA-NN:" misalignment.
func AlignmentReport(text string) error {
	const artifact = "alignment report"
	if err := requireAll(artifact, text, "# Spec Alignment Report", "## Summary", "## Misalignments", "## Spec updates needed", "## Questions"); err != nil {
		return err
	}
	m := alignmentRe.FindStringSubmatch(text)
	if m == nil {
		return formatErr(artifact, "missing Alignment line (expected 'Alignment: PASS|PARTIAL|FAIL')")
	}
	if m[1] != "PASS" && !misalignmentRe.MatchString(text) {
		return formatErr(artifact, "Alignment=%s requires at least one SA-XX misalignment item", m[1])
	}
	return nil
}
