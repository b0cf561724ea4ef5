package skills

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Frontmatter is the metadata block at the top of a SKILL.md.
type Frontmatter struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

var frontmatterLine = regexp.MustCompile(`^([a-zA-Z0-9_-]+)\s*:\s*(.*?)\s*$`)

// ReadFrontmatter parses the frontmatter of the markdown file at path.
// A file without a leading "---" block yields a zero Frontmatter.
func ReadFrontmatter(path string) (Frontmatter, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Frontmatter{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return ParseFrontmatter(string(data)), nil
}

// ParseFrontmatter decodes the block as YAML. Skill descriptions are often
// written as unquoted prose containing colons, which YAML rejects; those blocks
// fall back to one "key: value" pair per line.
func ParseFrontmatter(markdown string) Frontmatter {
	block, ok := frontmatterBlock(markdown)
	if !ok {
		return Frontmatter{}
	}
	var fm Frontmatter
	if err := yaml.Unmarshal([]byte(block), &fm); err == nil {
		return fm
	}
	fm = Frontmatter{}
	for _, line := range strings.Split(block, "\n") {
		m := frontmatterLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		switch m[1] {
		case "name":
			fm.Name = m[2]
		case "description":
			fm.Description = m[2]
		}
	}
	return fm
}

// StripFrontmatter returns markdown without its leading frontmatter block.
func StripFrontmatter(markdown string) string {
	lines := strings.Split(markdown, "\n")
	if len(lines) < 2 || strings.TrimSpace(lines[0]) != "---" {
		return markdown
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			return strings.Join(lines[i+1:], "\n")
		}
	}
	return markdown
}

func frontmatterBlock(markdown string) (string, bool) {
	lines := strings.Split(strings.ReplaceAll(markdown, "\r\n", "\n"), "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != "---" {
		return "", false
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			return strings.Join(lines[1:i], "\n"), true
		}
	}
	return strings.Join(lines[1:], "\n"), true
}
