package validate

import (
	"regexp"
	"sort"
	"strings"
)

// FindingHeader is the parsed "### ID: title (SEVERITY, CONFIDENCE: LEVEL)" line.
type FindingHeader struct {
	ID         string
	Title      string
	Severity   string
	Confidence string
}

var (
	findingHeaderRe = regexp.MustCompile(`^###\s+([A-Z0-9]+-\d{2}):\s+(.+?)\s+\((CRITICAL|HIGH|MEDIUM|LOW),\s+CONFIDENCE:\s+(HIGH|MEDIUM|LOW)\)\s*$`)
	blockSplitRe    = regexp.MustCompile(`(?m)^###\s+`)
	bucketRe        = regexp.MustCompile(`^##\s+(CONFIRMED|DISMISSED|CONTESTED)\s*$`)
)

var (
	defenseStatuses  = map[string]bool{"ACCEPT": true, "DISPUTE": true, "CONTEXT": true}
	rebuttalStatuses = map[string]bool{"CONCEDE": true, "MAINTAIN": true, "ESCALATE": true}
)

// MatchBucketHeading reports which verdict bucket a line opens. Only a bare
// "## CONFIRMED", "## DISMISSED" or "## CONTESTED" line counts.
func MatchBucketHeading(line string) (string, bool) {
	m := bucketRe.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return "", false
	}
	return m[1], true
}

// MatchFindingHeader parses a critique finding header line.
func MatchFindingHeader(line string) (FindingHeader, bool) {
	m := findingHeaderRe.FindStringSubmatch(strings.TrimRight(line, "\r"))
	if m == nil {
		return FindingHeader{}, false
	}
	return FindingHeader{ID: m[1], Title: strings.TrimSpace(m[2]), Severity: m[3], Confidence: m[4]}, true
}

// Critique checks a critique: 1..maxFindings uniquely numbered findings, each
// with a well-formed header and Location, Evidence and Fix fields.
func Critique(text string, maxFindings int) error {
	const artifact = "critique"
	ids := FindingIDs(text)
	if len(ids) == 0 {
		return formatErr(artifact, "no findings found (expected '### <ID>: ...')")
	}
	if len(ids) > maxFindings {
		return formatErr(artifact, "too many findings: %d (max %d)", len(ids), maxFindings)
	}
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return formatErr(artifact, "duplicate finding ID %s", id)
		}
		seen[id] = true
	}
	for _, line := range strings.Split(text, "\n") {
		if !findingIDRe.MatchString(line) {
			continue
		}
		if _, ok := MatchFindingHeader(line); !ok {
			return formatErr(artifact, "malformed finding header %q (expected '### <ID>: <title> (<SEVERITY>, CONFIDENCE: <HIGH|MEDIUM|LOW>)')", strings.TrimSpace(line))
		}
	}
	for _, id := range ids {
		block := blockFor(text, id)
		for _, field := range []string{"- Location:", "- Evidence:", "- Fix:"} {
			if !strings.Contains(block, field) {
				return formatErr(artifact, "%s missing required field: %s", id, field)
			}
		}
	}
	return nil
}

// Defense checks that a defense answers exactly the critique's findings with
// ACCEPT, DISPUTE or CONTEXT.
func Defense(defense, critique string) error {
	expected := FindingIDs(critique)
	if len(expected) == 0 {
		return formatErr("defense", "cannot validate defense without critique IDs")
	}
	if err := sameIDs("defense", expected, FindingIDs(defense)); err != nil {
		return err
	}
	return statusHeaders("defense", defense, defenseStatuses)
}

// Rebuttal checks that a rebuttal answers exactly the critique's findings with
// CONCEDE, MAINTAIN or ESCALATE.
func Rebuttal(rebuttal, critique string) error {
	if err := sameIDs("rebuttal", FindingIDs(critique), FindingIDs(rebuttal)); err != nil {
		return err
	}
	return statusHeaders("rebuttal", rebuttal, rebuttalStatuses)
}

// Verdict checks that every critique finding is placed under exactly one of
// the CONFIRMED, DISMISSED and CONTESTED sections.
func Verdict(verdict, critique string) error {
	const artifact = "verdict"
	expected := FindingIDs(critique)
	if len(expected) == 0 {
		return formatErr(artifact, "cannot validate verdict without critique IDs")
	}
	seen := make(map[string]bool)
	bucketOf := make(map[string]string)
	bucket := ""
	for _, line := range strings.Split(verdict, "\n") {
		if b, ok := MatchBucketHeading(line); ok {
			bucket = b
			seen[b] = true
			continue
		}
		m := findingIDRe.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		if bucket == "" {
			return formatErr(artifact, "%s appears before any bucket heading", m[1])
		}
		if prev, ok := bucketOf[m[1]]; ok && prev != bucket {
			return formatErr(artifact, "%s appears under both %s and %s", m[1], prev, bucket)
		}
		bucketOf[m[1]] = bucket
	}
	for _, b := range []string{"CONFIRMED", "DISMISSED", "CONTESTED"} {
		if !seen[b] {
			return formatErr(artifact, "missing required section: ## %s", b)
		}
	}
	if len(bucketOf) == 0 {
		return formatErr(artifact, "verdict contains no finding IDs")
	}
	var missing []string
	for _, id := range expected {
		if _, ok := bucketOf[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return formatErr(artifact, "verdict missing finding IDs: %s", strings.Join(missing, ", "))
	}
	return nil
}

func sameIDs(artifact string, expected, found []string) error {
	e, f := toSet(expected), toSet(found)
	equal := len(e) == len(f)
	for id := range e {
		if !f[id] {
			equal = false
		}
	}
	if !equal {
		return formatErr(artifact, "IDs mismatch: expected [%s], got [%s]", strings.Join(sortedKeys(e), ", "), strings.Join(sortedKeys(f), ", "))
	}
	return nil
}

// statusHeaders checks every "### <ID> — <STATUS>" line against allowed.
func statusHeaders(artifact, text string, allowed map[string]bool) error {
	bad := make(map[string]bool)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "### ") {
			continue
		}
		_, after, ok := strings.Cut(line, "—")
		if !ok {
			continue
		}
		fields := strings.Fields(after)
		if len(fields) == 0 {
			bad["(empty)"] = true
			continue
		}
		if status := strings.Trim(fields[0], "*_:."); !allowed[status] {
			bad[fields[0]] = true
		}
	}
	if len(bad) > 0 {
		return formatErr(artifact, "unexpected status values: %s (allowed: %s)", strings.Join(sortedKeys(bad), ", "), strings.Join(sortedKeys(allowed), ", "))
	}
	return nil
}

func blockFor(text, id string) string {
	for _, part := range blockSplitRe.Split(text, -1) {
		if strings.HasPrefix(part, id) {
			return part
		}
	}
	return ""
}

func toSet(ids []string) map[string]bool {
	s := make(map[string]bool, len(ids))
	for _, id := range ids {
		s[id] = true
	}
	return s
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
