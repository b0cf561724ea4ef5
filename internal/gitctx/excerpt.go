package gitctx

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"unicode/utf8"
)

// Interval is a 1-based inclusive line range.
type Interval struct {
	Start int
	End   int
}

// MergeIntervals sorts intervals and merges overlapping or adjacent ones.
// Intervals with Start > End are dropped.
func MergeIntervals(in []Interval) []Interval {
	var valid []Interval
	for _, iv := range in {
		if iv.Start <= iv.End {
			valid = append(valid, iv)
		}
	}
	sort.Slice(valid, func(i, j int) bool {
		if valid[i].Start != valid[j].Start {
			return valid[i].Start < valid[j].Start
		}
		return valid[i].End < valid[j].End
	})
	var merged []Interval
	for _, iv := range valid {
		if n := len(merged); n > 0 && iv.Start <= merged[n-1].End+1 {
			if iv.End > merged[n-1].End {
				merged[n-1].End = iv.End
			}
			continue
		}
		merged = append(merged, iv)
	}
	return merged
}

// ExcerptOptions bounds excerpt construction.
type ExcerptOptions struct {
	ContextLines    int
	MaxLinesPerFile int
}

// Excerpts maps a repo-relative path to its rendered excerpt block.
type Excerpts map[string]string

// SortedPaths returns the excerpt paths in lexicographic order.
func SortedPaths(e Excerpts) []string {
	paths := make([]string, 0, len(e))
	for p := range e {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// BuildExcerpts renders line-numbered windows of the post-change files around
// each hunk. Files that are missing, not regular, or not valid UTF-8 are skipped.
// No file contributes more than MaxLinesPerFile lines.
func BuildExcerpts(fsys fs.FS, changes []FileChange, opts ExcerptOptions) Excerpts {
	out := make(Excerpts)
	for _, fc := range changes {
		if fc.Path == "" || len(fc.Hunks) == 0 {
			continue
		}
		lines, ok := readTextLines(fsys, fc.Path)
		if !ok {
			continue
		}
		if block := renderExcerpt(fc, lines, opts); block != "" {
			out[fc.Path] = block
		}
	}
	return out
}

func renderExcerpt(fc FileChange, lines []string, opts ExcerptOptions) string {
	margin := max(opts.ContextLines, 0)
	var raw []Interval
	for _, h := range fc.Hunks {
		start := max(1, h.NewStart-margin)
		end := min(len(lines), h.NewStart+max(h.NewCount-1, 0)+margin)
		raw = append(raw, Interval{Start: start, End: end})
	}

	var b strings.Builder
	total := 0
	for _, iv := range MergeIntervals(raw) {
		if total >= opts.MaxLinesPerFile {
			break
		}
		chunk := lines[iv.Start-1 : iv.End]
		if remaining := opts.MaxLinesPerFile - total; len(chunk) > remaining {
			chunk = chunk[:remaining]
		}
		fmt.Fprintf(&b, "--- %s:%d-%d ---\n", fc.Path, iv.Start, iv.Start+len(chunk)-1)
		for i, text := range chunk {
			fmt.Fprintf(&b, "%6d | %s\n", iv.Start+i, text)
		}
		b.WriteString("\n")
		total += len(chunk)
	}
	rendered := strings.TrimSpace(b.String())
	if rendered == "" {
		return ""
	}
	return rendered + "\n"
}

func readTextLines(fsys fs.FS, name string) ([]string, bool) {
	name = path.Clean(strings.TrimPrefix(name, "/"))
	info, err := fs.Stat(fsys, name)
	if err != nil || !info.Mode().IsRegular() {
		return nil, false
	}
	data, err := fs.ReadFile(fsys, name)
	if err != nil || !utf8.Valid(data) {
		return nil, false
	}
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil, true
	}
	return strings.Split(text, "\n"), true
}
