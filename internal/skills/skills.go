package skills

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/dshills/crucible/internal/repotext"
)

const hintsTruncated = "[... skill hints truncated ...]"

// DefaultHintMaxChars bounds a merged hint document when no limit is configured.
const DefaultHintMaxChars = 8000

// DirError reports a skills directory that cannot be located or is incomplete.
type DirError struct {
	Dir     string
	Missing []string
	Msg     string
}

func (e *DirError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("invalid skills dir %s (missing required files): %s", e.Dir, strings.Join(e.Missing, ", "))
	}
	return e.Msg
}

// requiredFiles must exist under any usable skills directory.
var requiredFiles = []string{
	filepath.Join("review-protocol", "SKILL.md"),
	filepath.Join("enterprise-web-app-workflow", "SKILL.md"),
}

// ResolveDir locates the skills library. Lookup order: provided, the
// CRUCIBLE_SKILLS_DIR and ESB_SKILLS_DIR environment variables, ~/.codex/skills,
// then every ancestor of the working directory containing review-protocol/SKILL.md.
func ResolveDir(provided string) (string, error) {
	if provided != "" {
		return validateDir(provided)
	}
	for _, env := range []string{"CRUCIBLE_SKILLS_DIR", "ESB_SKILLS_DIR"} {
		if v := os.Getenv(env); v != "" {
			return validateDir(v)
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		def := filepath.Join(home, ".codex", "skills")
		if info, err := os.Stat(def); err == nil && info.IsDir() {
			return validateDir(def)
		}
	}
	if cwd, err := os.Getwd(); err == nil {
		if root, ok := findUpward(cwd); ok {
			return validateDir(root)
		}
	}
	return "", &DirError{Msg: "could not locate the skills library; pass --skills-dir or set CRUCIBLE_SKILLS_DIR"}
}

func findUpward(start string) (string, bool) {
	dir := filepath.Clean(start)
	for {
		if fileExists(filepath.Join(dir, "review-protocol", "SKILL.md")) {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

func validateDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving skills dir: %w", err)
	}
	var missing []string
	for _, rel := range requiredFiles {
		p := filepath.Join(abs, rel)
		if !fileExists(p) {
			missing = append(missing, p)
		}
	}
	if len(missing) > 0 {
		return "", &DirError{Dir: abs, Missing: missing}
	}
	return abs, nil
}

// IsDirError reports whether err is a skills directory error.
func IsDirError(err error) bool {
	var de *DirError
	return errors.As(err, &de)
}

var reviewTypeFiles = map[string][]string{
	"security":        {"apply-security-patterns/SKILL.md"},
	"resilience":      {"apply-resilience-patterns/SKILL.md"},
	"testing":         {"consumer-test-coverage/SKILL.md"},
	"correctness":     {"consumer-test-coverage/SKILL.md"},
	"performance":     {"apply-observability-patterns/SKILL.md"},
	"maintainability": {"typescript-style-guide/SKILL.md"},
	"architecture":    {"select-architecture-pattern/SKILL.md", "select-design-pattern/SKILL.md"},
	"api-design":      {"spec-driven-development/SKILL.md", "shared-platform-library/SKILL.md"},
	"general":         {"enterprise-web-app-workflow/SKILL.md"},
}

var taskFiles = map[string][]string{
	"ideation":       {"enterprise-web-app-workflow/SKILL.md", "spec-driven-development/SKILL.md"},
	"progress":       {"enterprise-web-app-workflow/SKILL.md", "spec-driven-development/SKILL.md"},
	"spec-alignment": {"spec-driven-development/SKILL.md"},
}

// HintsForReviewType returns the bounded checklist document for a review type,
// or "" when the type has no mapped skills or none of them exist.
func HintsForReviewType(dir, reviewType string, maxChars int) string {
	return hints(dir, reviewTypeFiles[reviewType], maxChars)
}

// HintsForTask is HintsForReviewType for the non-review commands
// ("ideation", "progress", "spec-alignment").
func HintsForTask(dir, task string, maxChars int) string {
	return hints(dir, taskFiles[strings.ToLower(strings.TrimSpace(task))], maxChars)
}

func hints(dir string, rels []string, maxChars int) string {
	if dir == "" || len(rels) == 0 {
		return ""
	}
	if maxChars <= 0 {
		maxChars = DefaultHintMaxChars
	}
	var parts []string
	for _, rel := range rels {
		data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(rel)))
		if err != nil || !utf8.Valid(data) {
			continue
		}
		body := strings.TrimSpace(StripFrontmatter(string(data)))
		parts = append(parts, fmt.Sprintf("## %s\n\n%s\n", rel, body))
	}
	if len(parts) == 0 {
		return ""
	}
	merged := strings.TrimSpace(strings.Join(parts, "\n")) + "\n"
	return repotext.Bound(merged, maxChars, hintsTruncated)
}

func fileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.Mode().IsRegular()
}
