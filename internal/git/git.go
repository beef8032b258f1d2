package git

import (
	"fmt"
	"os/exec"
	"strings"
)

// GitStatus reports how local-only solvault files relate to git.
type GitStatus struct {
	IsRepo    bool
	Tracked   []string // committed to git (bad: sealed keys or ledger in history)
	Unignored []string // not tracked but not ignored either (warning)
}

// IsGitRepo checks if the working directory is inside a git repository
func IsGitRepo(workDir string) bool {
	cmd := exec.Command("git", "rev-parse", "--is-inside-work-tree")
	cmd.Dir = workDir
	return cmd.Run() == nil
}

// IsTracked checks if a path (file or directory) has files tracked by git
func IsTracked(workDir, path string) bool {
	cmd := exec.Command("git", "ls-files", "--", path)
	cmd.Dir = workDir
	output, err := cmd.Output()
	if err != nil {
		return false
	}
	return len(strings.TrimSpace(string(output))) > 0
}

// IsIgnored checks if a path is ignored by git (handles all .gitignore files)
func IsIgnored(workDir, path string) bool {
	cmd := exec.Command("git", "check-ignore", "-q", "--", path)
	cmd.Dir = workDir
	// git check-ignore returns exit code 0 if the path is ignored
	return cmd.Run() == nil
}

// Check inspects the given local-only paths (ledger, keystore).
func Check(workDir string, paths []string) *GitStatus {
	status := &GitStatus{}
	if !IsGitRepo(workDir) {
		return status
	}
	status.IsRepo = true

	for _, p := range paths {
		switch {
		case IsTracked(workDir, p):
			status.Tracked = append(status.Tracked, p)
		case !IsIgnored(workDir, p):
			status.Unignored = append(status.Unignored, p)
		}
	}
	return status
}

// Format renders status for display, or "" outside a repository.
func Format(status *GitStatus) string {
	if !status.IsRepo {
		return ""
	}

	var result strings.Builder
	result.WriteString("\nGit:\n")
	for _, p := range status.Tracked {
		result.WriteString(fmt.Sprintf("   error: %s is tracked by git (run: git rm -r --cached %s)\n", p, p))
	}
	for _, p := range status.Unignored {
		result.WriteString(fmt.Sprintf("   warning: %s not in .gitignore\n", p))
	}
	if len(status.Tracked) == 0 && len(status.Unignored) == 0 {
		result.WriteString("   ok: ledger and keystore are ignored by git\n")
	}
	return result.String()
}
