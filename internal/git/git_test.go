package git

import (
	"strings"
	"testing"
)

func TestFormat(t *testing.T) {
	if got := Format(&GitStatus{}); got != "" {
		t.Errorf("outside a repo Format should be empty, got %q", got)
	}

	out := Format(&GitStatus{IsRepo: true, Tracked: []string{".solvault-keys"}, Unignored: []string{".solvault"}})
	if !strings.Contains(out, "error: .solvault-keys is tracked") {
		t.Errorf("missing tracked error in %q", out)
	}
	if !strings.Contains(out, "warning: .solvault not in .gitignore") {
		t.Errorf("missing unignored warning in %q", out)
	}

	out = Format(&GitStatus{IsRepo: true})
	if !strings.Contains(out, "ok:") {
		t.Errorf("expected ok line, got %q", out)
	}
}

func TestCheckOutsideRepo(t *testing.T) {
	status := Check(t.TempDir(), []string{".solvault"})
	if status.IsRepo {
		t.Skip("temp dir is inside a git work tree")
	}
	if len(status.Tracked) != 0 || len(status.Unignored) != 0 {
		t.Errorf("no paths should be reported outside a repo: %+v", status)
	}
}
