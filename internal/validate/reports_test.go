package validate

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

const ideation = `# Feature Ideation Report

## Ideas (prioritized)
1. Offline mode
2. Bulk export

## Next steps
- spike

## Open questions
- who owns it?
`

func TestIdeationReport(t *testing.T) {
	assert.NoError(t, IdeationReport(ideation, 2))
	assert.ErrorContains(t, IdeationReport(ideation, 3), "expected at least 3 ideas (found 2)")
	assert.ErrorContains(t, IdeationReport("# Feature Ideation Report\n", 0), "## Ideas (prioritized)")
}

func TestProgressMarkdown(t *testing.T) {
	ok := "# Progress Update\n## Completed\n- a\n## Next\n- b\n## Risks\n- none\n## Validation\n- tests\n"
	assert.NoError(t, ProgressMarkdown(ok))
	assert.ErrorContains(t, ProgressMarkdown("# Progress Update\n## Done\n## Next\n## Risks\n"), "## Verification")
	assert.ErrorContains(t, ProgressMarkdown("# Progress Update\n## Next\n"), "## Done")
}

func TestProgressSlack(t *testing.T) {
	assert.NoError(t, ProgressSlack("Done: a\nNext: b\nRisks: none\nVerification: go test\n"))
	assert.ErrorContains(t, ProgressSlack("Done: a\nNext: b\n"), "Risks:")
}

func TestAlignmentReport(t *testing.T) {
	base := "# Spec Alignment Report\n## Summary\n%s\n## Misalignments\n%s\n## Spec updates needed\n- none\n## Questions\n- none\n"
	tests := []struct {
		name    string
		text    string
		wantErr string
	}{
		{name: "pass without items", text: fmt.Sprintf(base, "Alignment: PASS", "")},
		{name: "partial with item", text: fmt.Sprintf(base, "Alignment: PARTIAL", "### SA-01: missing endpoint")},
		{name: "fail without item", text: fmt.Sprintf(base, "Alignment: FAIL", ""), wantErr: "requires at least one SA-XX"},
		{name: "no alignment line", text: fmt.Sprintf(base, "Alignment: MAYBE", ""), wantErr: "missing Alignment line"},
		{name: "missing heading", text: "# Spec Alignment Report\nAlignment: PASS\n", wantErr: "## Summary"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := AlignmentReport(tt.text)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
