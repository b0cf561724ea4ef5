package validate

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func finding(id, sev string) string {
	return fmt.Sprintf("### %s: Unchecked error (%s, CONFIDENCE: HIGH)\n- Location: main.go:10\n- Evidence: err ignored\n- Fix: return err\n\n", id, sev)
}

func critiqueOf(ids ...string) string {
	var b strings.Builder
	for _, id := range ids {
		b.WriteString(finding(id, "HIGH"))
	}
	return b.String()
}

func TestFindingIDs(t *testing.T) {
	text := "intro\n### CR-01: a (LOW, CONFIDENCE: LOW)\n#### CR-02 nope\n###   SEC-10 — ACCEPT\n### cr-03 lower\n### CR-123 three digits\n"
	assert.Equal(t, []string{"CR-01", "SEC-10"}, FindingIDs(text))
}

func TestMatchFindingHeader(t *testing.T) {
	h, ok := MatchFindingHeader("### SEC-02: SQL built by concatenation (CRITICAL, CONFIDENCE: MEDIUM)")
	require.True(t, ok)
	assert.Equal(t, FindingHeader{ID: "SEC-02", Title: "SQL built by concatenation", Severity: "CRITICAL", Confidence: "MEDIUM"}, h)

	for _, bad := range []string{
		"### SEC-02 SQL (HIGH, CONFIDENCE: HIGH)",
		"### SEC-02: SQL (SEVERE, CONFIDENCE: HIGH)",
		"### SEC-02: SQL",
		"## SEC-02: SQL (HIGH, CONFIDENCE: HIGH)",
	} {
		_, ok := MatchFindingHeader(bad)
		assert.False(t, ok, bad)
	}
}

func TestCritique(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		max     int
		wantErr string
	}{
		{name: "valid", text: critiqueOf("CR-01", "CR-02"), max: 12},
		{name: "at max", text: critiqueOf("CR-01", "CR-02", "CR-03"), max: 3},
		{name: "empty", text: "Nothing to report.", max: 12, wantErr: "no findings"},
		{name: "too many", text: critiqueOf("CR-01", "CR-02", "CR-03"), max: 2, wantErr: "too many findings: 3"},
		{name: "duplicate", text: critiqueOf("CR-01", "CR-01"), max: 12, wantErr: "duplicate finding ID CR-01"},
		{name: "missing fix", text: "### CR-01: x (LOW, CONFIDENCE: LOW)\n- Location: a\n- Evidence: b\n", max: 12, wantErr: "CR-01 missing required field: - Fix:"},
		{name: "field in other block does not count", text: "### CR-01: x (LOW, CONFIDENCE: LOW)\n- Location: a\n- Evidence: b\n" + finding("CR-02", "LOW"), max: 12, wantErr: "CR-01 missing required field: - Fix:"},
		{name: "malformed header", text: "### CR-01 something\n- Location: a\n- Evidence: b\n- Fix: c\n", max: 12, wantErr: "malformed finding header"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Critique(tt.text, tt.max)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, IsFormatError(err))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDefense(t *testing.T) {
	critique := critiqueOf("CR-01", "CR-02")
	tests := []struct {
		name     string
		defense  string
		critique string
		wantErr  string
	}{
		{name: "valid", defense: "### CR-01 — ACCEPT\nok\n### CR-02 — DISPUTE\nno\n", critique: critique},
		{name: "context status", defense: "### CR-01 — CONTEXT\n### CR-02 — ACCEPT (partly)\n", critique: critique},
		{name: "no critique ids", defense: "### CR-01 — ACCEPT\n", critique: "none", wantErr: "without critique IDs"},
		{name: "missing id", defense: "### CR-01 — ACCEPT\n", critique: critique, wantErr: "IDs mismatch"},
		{name: "extra id", defense: "### CR-01 — ACCEPT\n### CR-02 — ACCEPT\n### CR-03 — ACCEPT\n", critique: critique, wantErr: "IDs mismatch"},
		{name: "bad status", defense: "### CR-01 — MAINTAIN\n### CR-02 — ACCEPT\n", critique: critique, wantErr: "unexpected status values: MAINTAIN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Defense(tt.defense, tt.critique)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRebuttal(t *testing.T) {
	critique := critiqueOf("CR-01")
	assert.NoError(t, Rebuttal("### CR-01 — MAINTAIN\nstill wrong\n", critique))
	assert.NoError(t, Rebuttal("### CR-01 — **ESCALATE**\n", critique))
	assert.ErrorContains(t, Rebuttal("### CR-01 — ACCEPT\n", critique), "unexpected status values")
	assert.ErrorContains(t, Rebuttal("no ids\n", critique), "IDs mismatch")
}

func TestVerdict(t *testing.T) {
	critique := critiqueOf("CR-01", "CR-02", "CR-03")
	valid := "## CONFIRMED\n### CR-01 (HIGH)\n- Fix priority: P1\n\n## DISMISSED\n### CR-02 (LOW)\n\n## CONTESTED\n### CR-03 (MEDIUM)\n"
	tests := []struct {
		name     string
		verdict  string
		critique string
		wantErr  string
	}{
		{name: "valid", verdict: valid, critique: critique},
		{name: "no critique ids", verdict: valid, critique: "", wantErr: "without critique IDs"},
		{name: "missing section", verdict: strings.Replace(valid, "## CONTESTED", "## OTHER", 1), critique: critique, wantErr: "## CONTESTED"},
		{name: "no ids", verdict: "## CONFIRMED\n## DISMISSED\n## CONTESTED\n", critique: critique, wantErr: "no finding IDs"},
		{name: "missing id", verdict: strings.Replace(valid, "### CR-03 (MEDIUM)\n", "", 1), critique: critique, wantErr: "missing finding IDs: CR-03"},
		{name: "two buckets", verdict: valid + "\n## DISMISSED\n### CR-01 (HIGH)\n", critique: critique, wantErr: "CR-01 appears under both CONFIRMED and DISMISSED"},
		{name: "annotated heading", verdict: "## CONFIRMED (1)\n### CR-01 (HIGH)\n- Fix priority: P0\n## DISMISSED\n## CONTESTED\n", critique: critiqueOf("CR-01"), wantErr: "CR-01 appears before any bucket heading"},
		{name: "id before buckets", verdict: "### CR-01 (HIGH)\n## CONFIRMED\n## DISMISSED\n## CONTESTED\n", critique: critiqueOf("CR-01"), wantErr: "CR-01 appears before any bucket heading"},
		{name: "heading trailing space", verdict: strings.Replace(valid, "## DISMISSED\n", "## DISMISSED  \n", 1), critique: critique},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Verdict(tt.verdict, tt.critique)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMatchBucketHeading(t *testing.T) {
	tests := []struct {
		line   string
		want   string
		wantOK bool
	}{
		{line: "## CONFIRMED", want: "CONFIRMED", wantOK: true},
		{line: "  ## CONTESTED \r", want: "CONTESTED", wantOK: true},
		{line: "##\tDISMISSED", want: "DISMISSED", wantOK: true},
		{line: "## CONFIRMED (1)"},
		{line: "## CONFIRMEDX"},
		{line: "### CONFIRMED"},
		{line: "## Confirmed"},
	}
	for _, tt := range tests {
		got, ok := MatchBucketHeading(tt.line)
		assert.Equal(t, tt.wantOK, ok, tt.line)
		assert.Equal(t, tt.want, got, tt.line)
	}
}
