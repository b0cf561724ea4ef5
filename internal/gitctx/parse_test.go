package gitctx

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseUnifiedDiff(t *testing.T) {
	tests := []struct {
		name string
		diff string
		want []FileChange
	}{
		{
			name: "no marker",
			diff: "just some text\n+++ b/foo.go\n@@ -1 +1 @@\n",
			want: nil,
		},
		{
			name: "single file single hunk",
			diff: "diff --git a/foo.txt b/foo.txt\n--- a/foo.txt\n+++ b/foo.txt\n@@ -1,1 +1,1 @@\n-OLD\n+NEW\n",
			want: []FileChange{{Path: "foo.txt", Hunks: []Hunk{{NewStart: 1, NewCount: 1}}}},
		},
		{
			name: "missing count defaults to one",
			diff: "diff --git a/a.go b/a.go\n+++ b/a.go\n@@ -3 +7 @@ func x()\n",
			want: []FileChange{{Path: "a.go", Hunks: []Hunk{{NewStart: 7, NewCount: 1}}}},
		},
		{
			name: "deleted file keeps entry without path",
			diff: "diff --git a/gone.go b/gone.go\ndeleted file mode 100644\n--- a/gone.go\n+++ /dev/null\n@@ -1,3 +0,0 @@\n-a\n-b\n-c\n",
			want: []FileChange{{Path: "", Hunks: []Hunk{{NewStart: 0, NewCount: 0}}}},
		},
		{
			name: "malformed hunk header skipped",
			diff: "diff --git a/a.go b/a.go\n+++ b/a.go\n@@ broken\n@@ -1,2 +x,2 @@\n@@ -1,2 +4,2 @@\n",
			want: []FileChange{{Path: "a.go", Hunks: []Hunk{{NewStart: 4, NewCount: 2}}}},
		},
		{
			name: "binary file without +++ line still flushed",
			diff: "diff --git a/img.png b/img.png\nBinary files differ\ndiff --git a/b.go b/b.go\n+++ b/b.go\n@@ -10,2 +10,5 @@\n@@ -40,0 +44,3 @@\n",
			want: []FileChange{
				{Path: ""},
				{Path: "b.go", Hunks: []Hunk{{NewStart: 10, NewCount: 5}, {NewStart: 44, NewCount: 3}}},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseUnifiedDiff(tt.diff)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseUnifiedDiff mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseUnifiedDiff_EntryPerMarker(t *testing.T) {
	diff := "diff --git a/a b/a\ndiff --git a/b b/b\n+++ b/b\ndiff --git a/c b/c\n"
	got := ParseUnifiedDiff(diff)
	if len(got) != 3 {
		t.Fatalf("got %d entries, want 3", len(got))
	}
	if got[1].Path != "b" {
		t.Errorf("entry 1 path = %q, want b", got[1].Path)
	}
}

func TestParseUnifiedDiff_Deterministic(t *testing.T) {
	diff := "diff --git a/z b/z\n+++ b/z\n@@ -1 +1,2 @@\ndiff --git a/a b/a\n+++ b/a\n@@ -1 +5 @@\n"
	first := ParseUnifiedDiff(diff)
	for i := 0; i < 5; i++ {
		if d := cmp.Diff(first, ParseUnifiedDiff(diff)); d != "" {
			t.Fatalf("non-deterministic parse:\n%s", d)
		}
	}
	if first[0].Path != "z" {
		t.Errorf("input order not preserved: %+v", first)
	}
}
