package gitctx

import (
	"strconv"
	"strings"
)

// Hunk is the new-side range of one diff hunk.
type Hunk struct {
	NewStart int
	NewCount int
}

// FileChange is one file entry of a unified diff. Path is empty when the
// new side is /dev/null; such entries are kept but never excerpted.
type FileChange struct {
	Path  string
	Hunks []Hunk
}

// ParseUnifiedDiff splits a unified diff into per-file changes in input order.
// Text without any "diff --git " marker yields no entries.
func ParseUnifiedDiff(diff string) []FileChange {
	var (
		changes []FileChange
		current *FileChange
	)
	flush := func() {
		if current != nil {
			changes = append(changes, *current)
		}
	}
	for _, line := range strings.Split(diff, "\n") {
		line = strings.TrimSuffix(line, "\r")
		switch {
		case strings.HasPrefix(line, "diff --git "):
			flush()
			current = &FileChange{}
		case current == nil:
		case strings.HasPrefix(line, "+++ "):
			if rest := strings.TrimPrefix(line, "+++ "); strings.HasPrefix(rest, "b/") {
				current.Path = strings.TrimSpace(rest[2:])
			}
		case strings.HasPrefix(line, "@@ "):
			if h, ok := parseHunkHeader(line); ok {
				current.Hunks = append(current.Hunks, h)
			}
		}
	}
	flush()
	return changes
}

// parseHunkHeader reads the "+start[,count]" range of "@@ -a,b +c,d @@".
func parseHunkHeader(line string) (Hunk, bool) {
	parts := strings.Split(line, "@@")
	if len(parts) < 3 {
		return Hunk{}, false
	}
	var newRange string
	for _, field := range strings.Fields(parts[1]) {
		if strings.HasPrefix(field, "+") {
			newRange = field[1:]
			break
		}
	}
	if newRange == "" {
		return Hunk{}, false
	}
	startStr, countStr, hasCount := strings.Cut(newRange, ",")
	start, err := strconv.Atoi(startStr)
	if err != nil {
		return Hunk{}, false
	}
	count := 1
	if hasCount {
		if count, err = strconv.Atoi(countStr); err != nil {
			return Hunk{}, false
		}
	}
	return Hunk{NewStart: start, NewCount: count}, true
}
