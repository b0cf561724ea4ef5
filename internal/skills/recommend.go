package skills

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// RecommendConfig is the skills-config.json document.
type RecommendConfig struct {
	SkillOrder       []string          `json:"skillOrder"`
	ProjectDetectors []ProjectDetector `json:"projectDetectors"`
	PromptDetectors  []PromptDetector  `json:"promptDetectors"`
}

// ProjectDetector selects skills from files present in the project.
// Only the "typescript" detector is evaluated.
type ProjectDetector struct {
	Name               string   `json:"name"`
	Skills             []string `json:"skills"`
	MarkersAny         []string `json:"markersAny"`
	PackageJSONDepsAny []string `json:"packageJsonDepsAny"`
}

// PromptDetector selects skills from keywords in the user's prompt.
type PromptDetector struct {
	Name        string   `json:"name"`
	KeywordsAny []string `json:"keywordsAny"`
	Skills      []string `json:"skills"`
}

// Recommendation is one selected skill with the signals that selected it.
type Recommendation struct {
	Name    string   `json:"name"`
	Reasons []string `json:"reasons"`
}

// Detection records why a project detector fired.
type Detection struct {
	Reasons []string `json:"reasons"`
}

// RecommendMeta describes the inputs of a recommendation.
type RecommendMeta struct {
	Detected       map[string]Detection `json:"detected"`
	ProjectDir     string               `json:"project_dir"`
	SelectedSkills []string             `json:"selected_skills"`
}

// LoadRecommendConfig reads a skills-config.json file.
func LoadRecommendConfig(path string) (RecommendConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RecommendConfig{}, fmt.Errorf("reading skills config: %w", err)
	}
	var cfg RecommendConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return RecommendConfig{}, fmt.Errorf("parsing skills config %s: %w", path, err)
	}
	return cfg, nil
}

// Recommend selects skills for a project directory and a free-text prompt.
func Recommend(projectDir, prompt string, cfg RecommendConfig) ([]Recommendation, RecommendMeta) {
	reasons := map[string][]string{}
	selected := map[string]bool{}
	detected := map[string]Detection{}

	for _, d := range cfg.ProjectDetectors {
		if len(d.Skills) == 0 || d.Name != "typescript" {
			continue
		}
		ok, why := detectTypeScript(projectDir, d)
		if !ok {
			continue
		}
		detected[d.Name] = Detection{Reasons: why}
		for _, s := range d.Skills {
			selected[s] = true
			for _, r := range why {
				reasons[s] = append(reasons[s], d.Name+": "+r)
			}
		}
	}

	promptReasons := map[string][]string{}
	for _, d := range cfg.PromptDetectors {
		if len(d.KeywordsAny) == 0 || len(d.Skills) == 0 {
			continue
		}
		name := d.Name
		if name == "" {
			name = "detector"
		}
		kw, ok := firstKeyword(prompt, d.KeywordsAny)
		if !ok {
			continue
		}
		for _, s := range d.Skills {
			selected[s] = true
			promptReasons[s] = append(promptReasons[s], fmt.Sprintf("Prompt matched %s keyword: '%s'", name, kw))
		}
	}

	ordered := orderSkills(selected, cfg.SkillOrder)
	recs := make([]Recommendation, 0, len(ordered))
	for _, s := range ordered {
		why := append([]string{}, reasons[s]...)
		recs = append(recs, Recommendation{Name: s, Reasons: append(why, promptReasons[s]...)})
	}
	return recs, RecommendMeta{Detected: detected, ProjectDir: projectDir, SelectedSkills: ordered}
}

func detectTypeScript(projectDir string, d ProjectDetector) (bool, []string) {
	for _, m := range d.MarkersAny {
		if _, err := os.Stat(filepath.Join(projectDir, m)); err == nil {
			return true, []string{"Found marker file: " + m}
		}
	}
	deps := packageJSONDeps(projectDir)
	for _, dep := range d.PackageJSONDepsAny {
		if deps[dep] {
			return true, []string{"package.json dependency: " + dep}
		}
	}
	return false, nil
}

func packageJSONDeps(projectDir string) map[string]bool {
	data, err := os.ReadFile(filepath.Join(projectDir, "package.json"))
	if err != nil {
		return nil
	}
	var pkg map[string]json.RawMessage
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil
	}
	deps := map[string]bool{}
	for _, key := range []string{"dependencies", "devDependencies", "peerDependencies", "optionalDependencies"} {
		var m map[string]any
		if raw, ok := pkg[key]; ok && json.Unmarshal(raw, &m) == nil {
			for name := range m {
				deps[name] = true
			}
		}
	}
	return deps
}

func firstKeyword(prompt string, keywords []string) (string, bool) {
	lower := strings.ToLower(prompt)
	for _, kw := range keywords {
		if MatchKeyword(lower, kw) {
			return kw, true
		}
	}
	return "", false
}

// MatchKeyword reports whether keyword occurs in text, case-insensitively.
// Simple tokens ([a-z0-9_-]+) must not touch another token character on either
// side, so "test" does not match inside "latest".
func MatchKeyword(text, keyword string) bool {
	kw := strings.ToLower(strings.TrimSpace(keyword))
	if kw == "" {
		return false
	}
	text = strings.ToLower(text)
	if !isSimpleToken(kw) {
		return strings.Contains(text, kw)
	}
	for from := 0; from <= len(text)-len(kw); {
		i := strings.Index(text[from:], kw)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(kw)
		if (start == 0 || !isTokenByte(text[start-1])) && (end == len(text) || !isTokenByte(text[end])) {
			return true
		}
		from = start + 1
	}
	return false
}

func isSimpleToken(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isTokenByte(s[i]) {
			return false
		}
	}
	return true
}

func isTokenByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '_' || c == '-'
}

func orderSkills(selected map[string]bool, order []string) []string {
	index := make(map[string]int, len(order))
	for i, name := range order {
		if _, seen := index[name]; !seen {
			index[name] = i
		}
	}
	rank := func(s string) int {
		if i, ok := index[s]; ok {
			return i
		}
		return 10000
	}
	out := make([]string, 0, len(selected))
	for s := range selected {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		ri, rj := rank(out[i]), rank(out[j])
		if ri != rj {
			return ri < rj
		}
		return out[i] < out[j]
	})
	return out
}

// RenderRecommendations formats recommendations for a terminal. skillsDir
// anchors the SKILL.md paths listed at the end.
func RenderRecommendations(recs []Recommendation, skillsDir string) string {
	if len(recs) == 0 {
		return "No skill recommendations (no matching signals).\n"
	}
	names := make([]string, len(recs))
	for i, r := range recs {
		names[i] = r.Name
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Skills (in order): %s\n\nWhy:\n", strings.Join(names, ", "))
	for _, r := range recs {
		if len(r.Reasons) == 0 {
			fmt.Fprintf(&b, "- %s: selected by default ordering\n", r.Name)
			continue
		}
		for _, why := range r.Reasons {
			fmt.Fprintf(&b, "- %s: %s\n", r.Name, why)
		}
	}
	b.WriteString("\nPaths:\n")
	for _, r := range recs {
		fmt.Fprintf(&b, "- %s: %s\n", r.Name, filepath.Join(skillsDir, r.Name, "SKILL.md"))
	}
	return b.String()
}
