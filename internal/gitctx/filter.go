package gitctx

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// FilterDiff drops whole file sections whose path is outside include or inside exclude.
// Sections without a new-side path are kept.
func FilterDiff(diff string, include, exclude []string) string {
	if len(include) == 0 && len(exclude) == 0 {
		return diff
	}
	var kept []string
	for _, section := range splitDiffSections(diff) {
		path := sectionPath(section)
		if path == "" || Selected(path, include, exclude) {
			kept = append(kept, section)
		}
	}
	return strings.Join(kept, "")
}

// Selected reports whether path passes the include/exclude globs.
// An empty include list selects everything.
func Selected(path string, include, exclude []string) bool {
	if len(include) > 0 && !MatchesAny(path, include) {
		return false
	}
	return !MatchesAny(path, exclude)
}

// MatchesAny returns true if the path matches any of the doublestar patterns.
func MatchesAny(path string, patterns []string) bool {
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, path); err == nil && ok {
			return true
		}
	}
	return false
}

// MaskSections keeps the header of every file section whose path satisfies
// match and replaces its hunks with a single note line. Deleted files are
// matched by their old-side path.
func MaskSections(diff string, match func(path string) bool, note string) string {
	sections := splitDiffSections(diff)
	for i, section := range sections {
		path := sectionPath(section)
		if path == "" {
			path = oldSectionPath(section)
		}
		if path == "" || !match(path) {
			continue
		}
		var b strings.Builder
		for _, line := range strings.SplitAfter(section, "\n") {
			if strings.HasPrefix(line, "@@") || strings.HasPrefix(line, "Binary files ") {
				break
			}
			b.WriteString(line)
		}
		b.WriteString(note + "\n")
		sections[i] = b.String()
	}
	return strings.Join(sections, "")
}

func splitDiffSections(diff string) []string {
	var sections []string
	var current strings.Builder
	for _, line := range strings.SplitAfter(diff, "\n") {
		if strings.HasPrefix(line, "diff --git ") && current.Len() > 0 {
			sections = append(sections, current.String())
			current.Reset()
		}
		current.WriteString(line)
	}
	if current.Len() > 0 {
		sections = append(sections, current.String())
	}
	return sections
}

func sectionPath(section string) string {
	for _, line := range strings.Split(section, "\n") {
		if strings.HasPrefix(line, "+++ b/") {
			return strings.TrimSpace(strings.TrimPrefix(line, "+++ b/"))
		}
	}
	return ""
}

func oldSectionPath(section string) string {
	for _, line := range strings.Split(section, "\n") {
		if strings.HasPrefix(line, "--- a/") {
			return strings.TrimSpace(strings.TrimPrefix(line, "--- a/"))
		}
	}
	return ""
}
