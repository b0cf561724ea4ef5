package report

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/crucible/internal/validate"
)

const sampleCritique = `### CR-01: Nil map write (HIGH, CONFIDENCE: HIGH)
- Location: cache/store.go:42
- Evidence: m[k] = v before make
- Fix: initialize the map

### CR-02: Leaked file handle (MEDIUM, CONFIDENCE: MEDIUM)
- Location: io/read.go:10
- Evidence: os.Open without Close
- Fix: defer f.Close()

### CR-03: Typo in log (LOW, CONFIDENCE: LOW)
- Location: main.go:3
- Evidence: "recieved"
- Fix: spell it right
`

const sampleVerdict = `## CONFIRMED
### CR-02 (MEDIUM)
- Fix priority: P2
### CR-01 (HIGH)
- Fix priority: P0

## DISMISSED
### CR-03
- Reason: cosmetic

## CONTESTED
`

func TestParseCritique(t *testing.T) {
	got := ParseCritique(sampleCritique)
	want := map[string]CritiqueFinding{
		"CR-01": {ID: "CR-01", Title: "Nil map write", Severity: "HIGH", Confidence: "HIGH", Location: "cache/store.go:42"},
		"CR-02": {ID: "CR-02", Title: "Leaked file handle", Severity: "MEDIUM", Confidence: "MEDIUM", Location: "io/read.go:10"},
		"CR-03": {ID: "CR-03", Title: "Typo in log", Severity: "LOW", Confidence: "LOW", Location: "main.go:3"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseCritique (-want +got):\n%s", diff)
	}
}

func TestParseCritique_IgnoresLooseHeaders(t *testing.T) {
	got := ParseCritique("### CR-01 missing colon\n- Location: a.go:1\n")
	assert.Empty(t, got)
}

func TestParseVerdict(t *testing.T) {
	got := ParseVerdict(sampleVerdict)
	want := []VerdictItem{
		{ID: "CR-02", Severity: "MEDIUM", FixPriority: "P2", Status: Confirmed},
		{ID: "CR-01", Severity: "HIGH", FixPriority: "P0", Status: Confirmed},
		{ID: "CR-03", Status: Dismissed},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseVerdict (-want +got):\n%s", diff)
	}
}

func TestParseVerdict_LooseConfirmedHeader(t *testing.T) {
	got := ParseVerdict("## CONFIRMED\n### SEC-04 — severity omitted\n- Fix priority: P1\n")
	assert.Equal(t, []VerdictItem{{ID: "SEC-04", FixPriority: "P1", Status: Confirmed}}, got)
}

func TestParseVerdict_HeadersOutsideBuckets(t *testing.T) {
	assert.Empty(t, ParseVerdict("### CR-01 (HIGH)\n- Fix priority: P0\n"))
}

func TestParseVerdict_AgreesWithVerdictCheck(t *testing.T) {
	critique := "### CR-01: Nil map write (HIGH, CONFIDENCE: HIGH)\n- Location: a.go:1\n"
	accepted := "## CONFIRMED \n### CR-01 (HIGH)\n- Fix priority: P0\n## DISMISSED\n## CONTESTED\n"
	require.NoError(t, validate.Verdict(accepted, critique))
	got := ParseVerdict(accepted)
	want := []VerdictItem{{ID: "CR-01", Status: Confirmed, Severity: "HIGH", FixPriority: "P0"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseVerdict (-want +got):\n%s", diff)
	}

	rejected := "## CONFIRMED (1)\n### CR-01 (HIGH)\n- Fix priority: P0\n## DISMISSED\n## CONTESTED\n"
	require.Error(t, validate.Verdict(rejected, critique))
	assert.Empty(t, ParseVerdict(rejected))
}

func TestBuild(t *testing.T) {
	meta := Meta{ReviewType: "general", RepoLabel: "repo", Head: "abc", Scope: "git diff HEAD (staged + unstaged)", Date: time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)}
	r := Build(meta, sampleCritique, sampleVerdict)

	assert.Equal(t, "crucible", r.Tool)
	assert.Equal(t, Counts{Confirmed: 2, Dismissed: 1, Contested: 0}, r.Counts)
	assert.True(t, r.HasConfirmed())
	want := []Entry{
		{ID: "CR-01", Title: "Nil map write", Location: "cache/store.go:42", Severity: "HIGH", FixPriority: "P0"},
		{ID: "CR-02", Title: "Leaked file handle", Location: "io/read.go:10", Severity: "MEDIUM", FixPriority: "P2"},
	}
	if diff := cmp.Diff(want, r.Confirmed); diff != "" {
		t.Errorf("confirmed (-want +got):\n%s", diff)
	}
	assert.Equal(t, want, r.Top)
	assert.Equal(t, []Entry{{ID: "CR-03", Title: "Typo in log", Location: "main.go:3"}}, r.Dismissed)
	assert.Empty(t, r.Contested)
}

func TestBuild_TopIsCappedAndOrdered(t *testing.T) {
	var critique, verdict strings.Builder
	verdict.WriteString("## CONFIRMED\n")
	prios := []string{"P3", "P1", "", "P0", "P2", "P1", "P0"}
	for i, p := range prios {
		id := fmt.Sprintf("CR-%02d", i+1)
		fmt.Fprintf(&critique, "### %s: Finding %d (LOW, CONFIDENCE: LOW)\n- Location: f.go:%d\n- Evidence: e\n- Fix: f\n\n", id, i+1, i+1)
		fmt.Fprintf(&verdict, "### %s (LOW)\n", id)
		if p != "" {
			fmt.Fprintf(&verdict, "- Fix priority: %s\n", p)
		}
	}
	verdict.WriteString("## DISMISSED\n## CONTESTED\n")

	r := Build(Meta{}, critique.String(), verdict.String())
	var ids []string
	for _, e := range r.Top {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{"CR-04", "CR-07", "CR-02", "CR-06", "CR-05"}, ids)
	assert.Len(t, r.Confirmed, 7)
}

func TestBuild_Empty(t *testing.T) {
	r := Build(Meta{}, "", "")
	assert.False(t, r.HasConfirmed())
	assert.Equal(t, Counts{}, r.Counts)
	assert.NotNil(t, r.Top)
}
