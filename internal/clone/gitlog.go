package clone

import (
	"context"
	"fmt"
	"os/exec"
	"time"
)

// Log returns the commit history with diffs across all branches for the
// window. The log is optional context for generation, so any failure turns
// into an empty string instead of an error.
func (m *Manager) Log(ctx context.Context, path string, since, until time.Time) string {
	logCtx, cancel := context.WithTimeout(ctx, m.cfg.GitLogTimeout)
	defer cancel()

	cmd := exec.CommandContext(logCtx, "git", "log", "-p", "--all",
		"--since="+since.Format(time.RFC3339),
		"--until="+until.Format(time.RFC3339),
	)
	cmd.Dir = path

	output, err := cmd.Output()
	if err != nil {
		m.logger.Warn("failed to read git log", "path", path, "error", err.Error())
		return ""
	}

	return tailTruncate(string(output), m.cfg.GitLogMaxChars)
}

// tailTruncate keeps the last max characters of s behind a truncation banner
func tailTruncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	banner := fmt.Sprintf("[Output truncated; showing last %d characters.]\n", max)
	return banner + s[len(s)-max:]
}
