package review

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// ProtocolError reports a protocol document that is missing or cannot be parsed.
type ProtocolError struct {
	Path string
	Msg  string
}

func (e *ProtocolError) Error() string {
	if e.Path == "" {
		return "protocol: " + e.Msg
	}
	return fmt.Sprintf("protocol %s: %s", e.Path, e.Msg)
}

// IsProtocolError reports whether err is a *ProtocolError.
func IsProtocolError(err error) bool {
	var pe *ProtocolError
	return errors.As(err, &pe)
}

// Addon is the review-type specific part of the attacker prompt.
type Addon struct {
	Type ReviewType
	// Prefix starts every finding ID of this type (CR, SEC, ...).
	Prefix string
	Text   string
}

// Templates are the role prompts of the review protocol. They are not
// modified after loading.
type Templates struct {
	AttackerBase string
	Addons       map[ReviewType]Addon
	Defender     string
	Rebuttal     string
	Judge        string
}

const (
	attackerBaseMarker = "**Base prompt (always include):**"
	defenderHeading    = "### Defender (defense)"
	rebuttalHeading    = "### Attacker (rebuttal)"
	judgeHeading       = "### Judge (verdict)"

	// findingBudget is the phrase in the base prompt that caps critique length.
	findingBudget = "top 10–12"
)

// ProtocolDir returns the directory holding the protocol documents.
func ProtocolDir(skillsDir string) string {
	return filepath.Join(skillsDir, "review-protocol", "references")
}

// LoadTemplates reads protocol.yaml from the skills library, falling back to
// the protocol.md document when no YAML file exists.
func LoadTemplates(skillsDir string) (*Templates, error) {
	dir := ProtocolDir(skillsDir)
	yamlPath := filepath.Join(dir, "protocol.yaml")
	if data, err := os.ReadFile(yamlPath); err == nil {
		t, err := ParseProtocolYAML(data)
		if err != nil {
			return nil, withPath(err, yamlPath)
		}
		return t, nil
	}

	mdPath := filepath.Join(dir, "protocol.md")
	data, err := os.ReadFile(mdPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &ProtocolError{Path: mdPath, Msg: "missing protocol template"}
		}
		return nil, &ProtocolError{Path: mdPath, Msg: err.Error()}
	}
	t, err := ParseProtocolMarkdown(string(data))
	if err != nil {
		return nil, withPath(err, mdPath)
	}
	return t, nil
}

func withPath(err error, path string) error {
	var pe *ProtocolError
	if errors.As(err, &pe) && pe.Path == "" {
		return &ProtocolError{Path: path, Msg: pe.Msg}
	}
	return err
}

// AttackerPrompt returns the base attacker prompt, with its finding budget set
// to maxFindings, and the add-on for t.
func (tp *Templates) AttackerPrompt(t ReviewType, maxFindings int) (base, addon string, err error) {
	a, ok := tp.Addons[t]
	if !ok {
		return "", "", &ProtocolError{Msg: fmt.Sprintf("unknown review type addon: %s", t)}
	}
	base = strings.ReplaceAll(tp.AttackerBase, findingBudget, fmt.Sprintf("top %d", maxFindings))
	return base, a.Text, nil
}

// PrefixFor returns the finding ID prefix of t.
func (tp *Templates) PrefixFor(t ReviewType) (string, error) {
	a, ok := tp.Addons[t]
	if !ok {
		return "", &ProtocolError{Msg: fmt.Sprintf("unknown review type addon: %s", t)}
	}
	return a.Prefix, nil
}

type protocolYAML struct {
	AttackerBase string `yaml:"attacker_base"`
	Addons       map[string]struct {
		Prefix string `yaml:"prefix"`
		Text   string `yaml:"text"`
	} `yaml:"addons"`
	Defender string `yaml:"defender"`
	Rebuttal string `yaml:"rebuttal"`
	Judge    string `yaml:"judge"`
}

// ParseProtocolYAML decodes the structured protocol document.
func ParseProtocolYAML(data []byte) (*Templates, error) {
	var doc protocolYAML
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &ProtocolError{Msg: "invalid YAML: " + err.Error()}
	}
	t := &Templates{
		AttackerBase: strings.TrimSpace(doc.AttackerBase),
		Addons:       make(map[ReviewType]Addon, len(doc.Addons)),
		Defender:     strings.TrimSpace(doc.Defender),
		Rebuttal:     strings.TrimSpace(doc.Rebuttal),
		Judge:        strings.TrimSpace(doc.Judge),
	}
	for _, f := range []struct{ key, val string }{
		{"attacker_base", t.AttackerBase},
		{"defender", t.Defender},
		{"rebuttal", t.Rebuttal},
		{"judge", t.Judge},
	} {
		if f.val == "" {
			return nil, &ProtocolError{Msg: "missing " + f.key}
		}
	}
	for name, a := range doc.Addons {
		rt, err := ParseReviewType(name)
		if err != nil {
			return nil, &ProtocolError{Msg: "unknown review type in protocol: " + name}
		}
		if a.Prefix == "" {
			return nil, &ProtocolError{Msg: "addon " + name + " has no prefix"}
		}
		t.Addons[rt] = Addon{Type: rt, Prefix: strings.TrimSpace(a.Prefix), Text: strings.TrimSpace(a.Text)}
	}
	if len(t.Addons) == 0 {
		return nil, &ProtocolError{Msg: "no type add-ons defined"}
	}
	return t, nil
}

// ParseProtocolMarkdown extracts the templates from the human-readable
// protocol document.
func ParseProtocolMarkdown(text string) (*Templates, error) {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	base, err := blockquoteAfter(lines, attackerBaseMarker)
	if err != nil {
		return nil, err
	}
	addons, err := typeAddons(lines)
	if err != nil {
		return nil, err
	}
	t := &Templates{AttackerBase: base, Addons: addons}
	for _, s := range []struct {
		heading string
		dst     *string
	}{
		{defenderHeading, &t.Defender},
		{rebuttalHeading, &t.Rebuttal},
		{judgeHeading, &t.Judge},
	} {
		if *s.dst, err = sentenceAfter(lines, s.heading); err != nil {
			return nil, err
		}
	}
	return t, nil
}

var quotePrefix = regexp.MustCompile(`^\s*>\s?`)

func blockquoteAfter(lines []string, needle string) (string, error) {
	start := -1
	for i, l := range lines {
		if strings.Contains(l, needle) {
			start = i
			break
		}
	}
	if start < 0 {
		return "", &ProtocolError{Msg: "failed to locate protocol section: " + needle}
	}
	var quoted []string
	for _, l := range lines[start+1:] {
		if strings.HasPrefix(strings.TrimSpace(l), ">") {
			quoted = append(quoted, quotePrefix.ReplaceAllString(l, ""))
			continue
		}
		if len(quoted) > 0 {
			break
		}
	}
	text := strings.TrimSpace(strings.Join(quoted, "\n"))
	if text == "" {
		return "", &ProtocolError{Msg: "failed to parse blockquote after: " + needle}
	}
	return text, nil
}

func sentenceAfter(lines []string, heading string) (string, error) {
	start := -1
	for i, l := range lines {
		if strings.TrimSpace(l) == heading {
			start = i
			break
		}
	}
	if start < 0 {
		return "", &ProtocolError{Msg: "failed to locate protocol section: " + heading}
	}
	for _, l := range lines[start+1:] {
		if s := strings.TrimSpace(l); s != "" {
			return strings.TrimSpace(strings.Trim(s, "“”\"")), nil
		}
	}
	return "", &ProtocolError{Msg: "failed to parse sentence after: " + heading}
}

var addonHeader = regexp.MustCompile("^- `([^`]+)` \\(PREFIX=`([^`]+)`\\):\\s*$")

func typeAddons(lines []string) (map[ReviewType]Addon, error) {
	addons := map[ReviewType]Addon{}
	for i := 0; i < len(lines); {
		m := addonHeader.FindStringSubmatch(lines[i])
		if m == nil {
			i++
			continue
		}
		name, prefix := strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
		var body []string
		for i++; i < len(lines) && !addonHeader.MatchString(lines[i]); i++ {
			if strings.HasPrefix(lines[i], "  - ") {
				body = append(body, lines[i][4:])
			}
		}
		rt, err := ParseReviewType(name)
		if err != nil {
			return nil, &ProtocolError{Msg: "unknown review type in protocol: " + name}
		}
		addons[rt] = Addon{Type: rt, Prefix: prefix, Text: strings.TrimSpace(strings.Join(body, "\n"))}
	}
	if len(addons) == 0 {
		return nil, &ProtocolError{Msg: "failed to parse type add-ons"}
	}
	return addons, nil
}
