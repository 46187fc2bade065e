package generator

import (
	"fmt"
	"strings"
	"time"

	"github.com/maxbolgarin/lang"
	"github.com/maxbolgarin/taskry/internal/model"
)

const (
	maxRenderedCommits      = 50
	maxRenderedPullRequests = 30
)

// RenderActivity formats a snapshot into the plain text block consumed by
// the task prompt. Long histories are capped so prompts stay bounded.
func RenderActivity(snapshot *model.ActivitySnapshot) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Commits (%d), across all branches:\n", len(snapshot.Commits))
	for i, commit := range snapshot.Commits {
		if i == maxRenderedCommits {
			fmt.Fprintf(&b, "  ... and %d more\n", len(snapshot.Commits)-maxRenderedCommits)
			break
		}
		status := lang.If(commit.IsMerged, "merged", "open")
		fmt.Fprintf(&b, "  - [%s] branch=%s [%s] %s (%s)\n",
			lang.Check(commit.Author, "?"),
			lang.Check(commit.Branch, "?"),
			status,
			strings.TrimSpace(commit.Message),
			commit.Timestamp.Format(time.RFC3339),
		)
	}

	b.WriteString("\n")

	fmt.Fprintf(&b, "Pull requests (%d):\n", len(snapshot.PullRequests))
	for i, pr := range snapshot.PullRequests {
		if i == maxRenderedPullRequests {
			fmt.Fprintf(&b, "  ... and %d more\n", len(snapshot.PullRequests)-maxRenderedPullRequests)
			break
		}
		fmt.Fprintf(&b, "  - #%d %s [%s] by %s\n",
			pr.Number, pr.Title, pr.State, lang.Check(pr.Author, "?"))
	}

	return strings.TrimRight(b.String(), "\n")
}
