package core

import (
	"fmt"
	"strings"
	"testing"
)

func TestUnifiedDiff(t *testing.T) {
	before := []byte("{\n  \"lamports\": 1\n}\n")
	after := []byte("{\n  \"lamports\": 2\n}\n")

	if got := UnifiedDiff("x", before, before); got != "" {
		t.Errorf("identical input should produce no diff, got %q", got)
	}

	want := "--- a/x\n+++ b/x\n@@ -1,3 +1,3 @@\n {\n-  \"lamports\": 1\n+  \"lamports\": 2\n }\n"
	if got := UnifiedDiff("x", before, after); got != want {
		t.Errorf("diff mismatch\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestUnifiedDiffLineRanges(t *testing.T) {
	var before, after strings.Builder
	for i := 1; i <= 10; i++ {
		fmt.Fprintf(&before, "line %d\n", i)
		switch i {
		case 1, 10:
			fmt.Fprintf(&after, "changed %d\n", i)
		default:
			fmt.Fprintf(&after, "line %d\n", i)
		}
	}

	got := UnifiedDiff("x", []byte(before.String()), []byte(after.String()))
	for _, header := range []string{"@@ -1,4 +1,4 @@\n", "@@ -7,4 +7,4 @@\n"} {
		if !strings.Contains(got, header) {
			t.Errorf("missing hunk header %q in:\n%s", header, got)
		}
	}
	if strings.Contains(got, " line 5\n") {
		t.Errorf("line 5 is outside both hunks:\n%s", got)
	}
}

func TestUnifiedDiffInsertOnly(t *testing.T) {
	got := UnifiedDiff("x", []byte(""), []byte("a\n"))
	want := "--- a/x\n+++ b/x\n@@ -0,0 +1,1 @@\n+a\n"
	if got != want {
		t.Errorf("diff mismatch\ngot:\n%q\nwant:\n%q", got, want)
	}
}
