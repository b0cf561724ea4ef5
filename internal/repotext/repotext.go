package repotext

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
)

const truncatedMarker = "[... truncated ...]"

var (
	readmeNames     = []string{"README.md", "README.rst", "README.txt"}
	topLevelSkipped = map[string]bool{".git": true, ".codex": true, ".venv": true, "venv": true, "__pycache__": true}
	bundleSkipped   = []string{".git", ".codex", ".venv", "venv", "__pycache__", "node_modules", "dist", ".next"}
)

// SpecExts is the default set of extensions bundled from spec folders.
var SpecExts = []string{".md", ".mdx", ".txt", ".yml", ".yaml", ".json", ".toml", ".proto"}

// ReadReadme returns the first README found in dir, bounded to maxChars.
// A repository without a README yields "".
func ReadReadme(dir string, maxChars int) string {
	for _, name := range readmeNames {
		p := filepath.Join(dir, name)
		if info, err := os.Stat(p); err != nil || !info.Mode().IsRegular() {
			continue
		}
		return readText(p, maxChars)
	}
	return ""
}

// ListTopLevel lists the entries of dir, directories suffixed with "/",
// sorted case-insensitively and capped at maxEntries.
func ListTopLevel(dir string, maxEntries int) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	sort.Slice(entries, func(i, j int) bool {
		return strings.ToLower(entries[i].Name()) < strings.ToLower(entries[j].Name())
	})
	var out []string
	for _, e := range entries {
		if topLevelSkipped[e.Name()] {
			continue
		}
		name := e.Name()
		if e.IsDir() {
			name += "/"
		}
		out = append(out, name)
		if len(out) >= maxEntries {
			out = append(out, "... (truncated)")
			break
		}
	}
	if len(out) == 0 {
		return ""
	}
	return strings.TrimSpace(strings.Join(out, "\n")) + "\n"
}

// BundleOptions bounds BundleDirectory.
type BundleOptions struct {
	Exts        []string
	MaxFiles    int
	MaxChars    int
	ExcludeDirs []string
	// Exclude holds doublestar globs matched against slash-separated relative paths.
	Exclude []string
}

// BundledFile is one file selected for a bundle.
type BundledFile struct {
	Rel  string
	Text string
}

// BundleDirectory concatenates text files under dir whose extension is in
// opts.Exts, in case-insensitive path order, up to opts.MaxFiles files and
// opts.MaxChars characters. A missing directory yields "".
func BundleDirectory(dir string, opts BundleOptions) string {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return ""
	}
	exts := make(map[string]bool, len(opts.Exts))
	for _, e := range opts.Exts {
		exts[strings.ToLower(e)] = true
	}
	skipped := make(map[string]bool)
	for _, d := range append(append([]string{}, bundleSkipped...), opts.ExcludeDirs...) {
		skipped[d] = true
	}

	var rels []string
	fsys := os.DirFS(dir)
	_ = fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if p != "." && skipped[d.Name()] {
				return fs.SkipDir
			}
			return nil
		}
		if !exts[strings.ToLower(path.Ext(p))] {
			return nil
		}
		for _, pattern := range opts.Exclude {
			if ok, _ := doublestar.Match(pattern, p); ok {
				return nil
			}
		}
		rels = append(rels, p)
		return nil
	})
	sort.Slice(rels, func(i, j int) bool { return strings.ToLower(rels[i]) < strings.ToLower(rels[j]) })
	if opts.MaxFiles > 0 && len(rels) > opts.MaxFiles {
		rels = rels[:opts.MaxFiles]
	}

	var files []BundledFile
	for _, rel := range rels {
		text := readText(filepath.Join(dir, filepath.FromSlash(rel)), opts.MaxChars)
		if strings.TrimSpace(text) == "" {
			continue
		}
		files = append(files, BundledFile{Rel: rel, Text: text})
	}
	return FormatBundled(files, opts.MaxChars)
}

// FormatBundled renders files as "--- rel ---" sections within maxChars.
func FormatBundled(files []BundledFile, maxChars int) string {
	var b strings.Builder
	total := 0
	for _, f := range files {
		chunk := "--- " + f.Rel + " ---\n" + strings.TrimRight(f.Text, " \t\r\n") + "\n\n"
		remaining := maxChars - total
		if remaining <= 0 {
			b.WriteString(truncatedMarker + "\n")
			break
		}
		if len(chunk) <= remaining {
			b.WriteString(chunk)
			total += len(chunk)
			continue
		}
		b.WriteString(Cut(chunk, remaining-50) + "\n" + truncatedMarker + "\n")
		break
	}
	if b.Len() == 0 {
		return ""
	}
	return strings.TrimSpace(b.String()) + "\n"
}

// Cut returns at most n bytes of s without splitting a UTF-8 sequence.
func Cut(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// Bound caps text at maxChars, reserving room for a trailing marker.
func Bound(text string, maxChars int, marker string) string {
	if maxChars <= 0 || len(text) <= maxChars {
		return text
	}
	return Cut(text, maxChars-200) + "\n\n" + marker + "\n"
}

func readText(p string, maxChars int) string {
	data, err := os.ReadFile(p)
	if err != nil || !utf8.Valid(data) {
		return ""
	}
	return Bound(string(data), maxChars, truncatedMarker)
}
