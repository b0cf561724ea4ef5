package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/crucible/internal/report"
)

func sampleReport() *report.Report {
	meta := report.Meta{
		ReviewType: "security",
		RepoLabel:  "shop",
		Head:       "abc123",
		Scope:      "git diff main...HEAD",
		Date:       time.Date(2026, 5, 6, 12, 0, 0, 0, time.UTC),
	}
	critique := `### SEC-01: SQL built by concatenation (CRITICAL, CONFIDENCE: HIGH)
- Location: db/query.go:12
- Evidence: "SELECT ... " + name
- Fix: use placeholders

### SEC-02: Token logged (HIGH, CONFIDENCE: MEDIUM)
- Evidence: log.Printf("%s", token)
- Fix: drop the log line

### SEC-03: Weak hash (LOW, CONFIDENCE: LOW)
- Location: auth/hash.go:4
- Evidence: md5.Sum
- Fix: bcrypt
`
	verdict := `## CONFIRMED
### SEC-02 (HIGH)
- Fix priority: P1
### SEC-01 (CRITICAL)
- Fix priority: P0

## DISMISSED

## CONTESTED
### SEC-03
`
	return report.Build(meta, critique, verdict)
}

func TestMarkdownWriter(t *testing.T) {
	want := `# Review Report: security — shop @ abc123

- Date: 2026-05-06
- Scope: git diff main...HEAD
- Artifacts:
  - 1-critique.txt
  - 2-defense.txt
  - 3-rebuttal.txt
  - 4-verdict.txt

## Executive summary
- SEC-01 (CRITICAL, P0): SQL built by concatenation — db/query.go:12
- SEC-02 (HIGH, P1): Token logged —

## Counts
- CONFIRMED: 2
- DISMISSED: 0
- CONTESTED: 1

## Top findings (P0/P1)
- SEC-01 (CRITICAL, P0): SQL built by concatenation — db/query.go:12
- SEC-02 (HIGH, P1): Token logged —

## Full verdict
### CONFIRMED
- SEC-01 (CRITICAL, P0): SQL built by concatenation — db/query.go:12
- SEC-02 (HIGH, P1): Token logged —

### DISMISSED
- None.

### CONTESTED
- SEC-03: Weak hash
`
	var buf bytes.Buffer
	require.NoError(t, (&MarkdownWriter{}).Write(&buf, sampleReport()))
	assert.Equal(t, want, buf.String())
}

func TestMarkdownWriter_Empty(t *testing.T) {
	r := report.Build(report.Meta{ReviewType: "general", RepoLabel: "repo", Head: "NO_GIT", Scope: "Diff file: x.patch"}, "", "")
	out := Markdown(r)

	assert.Contains(t, out, "## Executive summary\n- No CONFIRMED findings.\n")
	assert.Contains(t, out, "## Top findings (P0/P1)\n- None.\n")
	assert.Contains(t, out, "- CONFIRMED: 0\n- DISMISSED: 0\n- CONTESTED: 0\n")
	assert.Contains(t, out, "### CONTESTED\n- None.\n")
}

func TestJSONWriter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&JSONWriter{}).Write(&buf, sampleReport()))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "crucible", got["tool"])
	assert.Equal(t, "security", got["reviewType"])
	assert.Equal(t, float64(2), got["counts"].(map[string]any)["confirmed"])
	assert.Len(t, got["confirmed"], 2)
}

func TestTextWriter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&TextWriter{}).Write(&buf, sampleReport()))
	out := buf.String()

	assert.Contains(t, out, "Crucible Review — security @ abc123 (shop)")
	assert.Contains(t, out, "Verdict: 2 confirmed, 0 dismissed, 1 contested")
	assert.Contains(t, out, "[P0] CRITICAL SEC-01  SQL built by concatenation")
	assert.Contains(t, out, "     db/query.go:12")
}

func TestTextWriter_NoFindings(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&TextWriter{}).Write(&buf, report.Build(report.Meta{}, "", "")))
	assert.Contains(t, buf.String(), "No CONFIRMED findings.")
}

func TestTerminalWriter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&TerminalWriter{Style: "notty", Width: 120}).Write(&buf, sampleReport()))
	out := buf.String()
	assert.Contains(t, out, "Review Report")
	assert.Contains(t, out, "SEC-01")
}

func TestGetWriter(t *testing.T) {
	for _, f := range Formats {
		w, err := GetWriter(f)
		require.NoError(t, err, f)
		assert.NotNil(t, w)
	}
	_, err := GetWriter("sarif")
	assert.Error(t, err)
}

func TestWriteReport_File(t *testing.T) {
	p := filepath.Join(t.TempDir(), "5-report.md")
	var stdout bytes.Buffer
	require.NoError(t, WriteReport(&stdout, sampleReport(), "markdown", p))
	data, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, Markdown(sampleReport()), string(data))
	assert.Empty(t, stdout.String())
}

func TestWriteReport_Writer(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, sampleReport(), "text", ""))
	assert.Contains(t, buf.String(), "SEC-01")

	assert.Error(t, WriteReport(&buf, sampleReport(), "sarif", ""))
}
