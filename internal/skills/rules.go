package skills

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dshills/crucible/internal/gitctx"
)

// Info describes one discovered skill.
type Info struct {
	Name        string
	Description string
	// Rel is the slash-separated path of SKILL.md relative to the library root.
	Rel string
}

// Tool is a coding assistant that reads a rules file.
type Tool struct {
	Key     string
	Display string
	// Path is the rules file location relative to the project.
	Path string
}

// Tools lists the supported rule targets.
var Tools = []Tool{
	{Key: "codex", Display: "Codex", Path: filepath.Join(".codex", "AGENTS.md")},
	{Key: "claude", Display: "Claude", Path: filepath.Join(".claude", "AGENTS.md")},
	{Key: "cursor", Display: "Cursor", Path: ".cursorrules"},
	{Key: "copilot", Display: "GitHub Copilot", Path: filepath.Join(".github", "copilot-instructions.md")},
}

// RulesOptions configures GenerateRules.
type RulesOptions struct {
	ProjectDir string
	SkillsDir  string
	// Tool is one of the Tools keys or "all".
	Tool  string
	Force bool
}

// Discover lists every <dir>/*/SKILL.md, ordered by the library's skillOrder
// when skills-config.json is present, then by directory name.
func Discover(skillsDir string) ([]Info, error) {
	entries, err := os.ReadDir(skillsDir)
	if err != nil {
		return nil, fmt.Errorf("reading skills dir: %w", err)
	}
	var out []Info
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		p := filepath.Join(skillsDir, e.Name(), "SKILL.md")
		if !fileExists(p) {
			continue
		}
		fm, err := ReadFrontmatter(p)
		if err != nil {
			return nil, err
		}
		info := Info{Name: fm.Name, Description: fm.Description, Rel: e.Name() + "/SKILL.md"}
		if info.Name == "" {
			info.Name = e.Name()
		}
		out = append(out, info)
	}

	index := map[string]int{}
	for i, name := range readSkillOrder(filepath.Join(skillsDir, "skills-config.json")) {
		if _, ok := index[name]; !ok {
			index[name] = i
		}
	}
	rank := func(name string) int {
		if i, ok := index[name]; ok {
			return i
		}
		return 10000
	}
	sort.SliceStable(out, func(i, j int) bool { return rank(out[i].Name) < rank(out[j].Name) })
	return out, nil
}

func readSkillOrder(path string) []string {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var cfg struct {
		SkillOrder []string `json:"skillOrder"`
	}
	if json.Unmarshal(data, &cfg) != nil {
		return nil
	}
	return cfg.SkillOrder
}

// RenderRules produces the progressive-disclosure rules document for one tool.
// libRel is the skills library path relative to the project.
func RenderRules(toolName, libRel, version string, skills []Info) string {
	var b strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format, args...)
		b.WriteByte('\n')
	}
	line("# Progressive Disclosure Skill Rules")
	line("")
	line("This project vendors the skills library at `%s` (version: `%s`).", libRel, version)
	line("")
	line("## Rules")
	line("")
	line("- DO NOT load all skill files at once.")
	line("- First, decide which skill(s) apply (language + task keywords).")
	line("- Then open only the relevant `*/SKILL.md` files and follow their workflows.")
	line("- Use a tight loop: **Evaluate → Implement → Verify** (run checks until green).")
	line("")
	line("## Workflow")
	line("")
	line("1. **Evaluate**: restate the goal + constraints; identify entry points; pick 1–3 relevant skills.")
	line("2. **Implement**: make the smallest change that meets the goal; keep diffs reviewable.")
	line("3. **Verify**: run tests/lint/build; iterate until green; summarize behavior changes (if any).")
	line("")
	line("## Quick Picker")
	line("")
	for _, s := range skills {
		rel := libRel + "/" + s.Rel
		switch {
		case s.Name == "select-design-pattern":
			line("- Need to choose a GoF pattern: `%s` (use before any `apply-*` skills)", rel)
		case s.Name == "consumer-test-coverage":
			line("- Adding/expanding consumer-facing tests: `%s`", rel)
		case s.Name == "typescript-style-guide":
			line("- Working in TypeScript code: `%s`", rel)
		case strings.HasPrefix(s.Name, "apply-"):
			line("- Applying a GoF pattern: `%s`", rel)
		default:
			line("- `%s`: `%s`", s.Name, rel)
		}
	}
	line("")
	line("## Helper: Recommend Skills")
	line("")
	line("If you're unsure which skill(s) to use, run:")
	line("")
	line("`crucible skills recommend --project-dir . --prompt \"<your prompt>\"`")
	line("")
	line("## Skill Index")
	line("")
	for _, s := range skills {
		desc := ""
		if s.Description != "" {
			desc = " - " + s.Description
		}
		line("- `%s`: `%s/%s`%s", s.Name, libRel, s.Rel, desc)
	}
	line("")
	line("(Generated for %s.)", toolName)
	return b.String()
}

// GenerateRules writes the rules file for the selected tools and returns the
// paths written. Existing files are left alone unless Force is set.
func GenerateRules(opts RulesOptions) ([]string, error) {
	targets, err := selectTools(opts.Tool)
	if err != nil {
		return nil, err
	}
	skills, err := Discover(opts.SkillsDir)
	if err != nil {
		return nil, err
	}
	version := gitctx.ShortSHA(opts.SkillsDir)
	if version == "" {
		version = "unknown"
	}
	libRel, err := relPath(opts.ProjectDir, opts.SkillsDir)
	if err != nil {
		return nil, err
	}

	var written []string
	for _, t := range targets {
		dst := filepath.Join(opts.ProjectDir, t.Path)
		if _, err := os.Stat(dst); err == nil && !opts.Force {
			return written, fmt.Errorf("%s already exists (use --force to overwrite)", dst)
		}
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return written, fmt.Errorf("creating %s: %w", filepath.Dir(dst), err)
		}
		if err := os.WriteFile(dst, []byte(RenderRules(t.Display, libRel, version, skills)), 0o644); err != nil {
			return written, fmt.Errorf("writing %s: %w", dst, err)
		}
		written = append(written, dst)
	}
	return written, nil
}

func selectTools(key string) ([]Tool, error) {
	if key == "" || key == "all" {
		return Tools, nil
	}
	for _, t := range Tools {
		if t.Key == key {
			return []Tool{t}, nil
		}
	}
	return nil, fmt.Errorf("unknown tool %q (want codex, claude, cursor, copilot, or all)", key)
}

func relPath(from, to string) (string, error) {
	absFrom, err := filepath.Abs(from)
	if err != nil {
		return "", err
	}
	absTo, err := filepath.Abs(to)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(absFrom, absTo)
	if err != nil {
		return "", fmt.Errorf("relating %s to %s: %w", to, from, err)
	}
	return filepath.ToSlash(rel), nil
}
