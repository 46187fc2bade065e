package generator

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/maxbolgarin/taskry/internal/model"
)

func TestRenderActivity(t *testing.T) {
	ts := time.Date(2025, 3, 10, 12, 30, 0, 0, time.UTC)
	snapshot := &model.ActivitySnapshot{
		Repository: "owner/repo",
		Commits: []model.Commit{
			{Hash: "a1", Message: "add provider config", Author: "alice", Branch: "main", IsMerged: true, Timestamp: ts},
			{Hash: "b2", Message: "  wip feature  ", Author: "bob", Branch: "feature/x", Timestamp: ts.Add(-time.Hour)},
		},
		PullRequests: []model.PullRequest{
			{Number: 7, Title: "Add provider config", State: "merged", Author: "alice"},
		},
	}

	got := RenderActivity(snapshot)
	want := strings.Join([]string{
		"Commits (2), across all branches:",
		"  - [alice] branch=main [merged] add provider config (2025-03-10T12:30:00Z)",
		"  - [bob] branch=feature/x [open] wip feature (2025-03-10T11:30:00Z)",
		"",
		"Pull requests (1):",
		"  - #7 Add provider config [merged] by alice",
	}, "\n")
	assert.Equal(t, want, got)
}

func TestRenderActivityEmpty(t *testing.T) {
	got := RenderActivity(&model.ActivitySnapshot{Repository: "owner/repo"})
	assert.Equal(t, "Commits (0), across all branches:\n\nPull requests (0):", got)
}

func TestRenderActivityUnknownFields(t *testing.T) {
	snapshot := &model.ActivitySnapshot{
		Commits:      []model.Commit{{Hash: "c3", Message: "mystery"}},
		PullRequests: []model.PullRequest{{Number: 1, Title: "untitled", State: "open"}},
	}

	got := RenderActivity(snapshot)
	assert.Contains(t, got, "  - [?] branch=? [open] mystery")
	assert.Contains(t, got, "by ?")
}

func TestRenderActivityCapsCommits(t *testing.T) {
	snapshot := &model.ActivitySnapshot{}
	for i := 0; i < maxRenderedCommits+13; i++ {
		snapshot.Commits = append(snapshot.Commits, model.Commit{
			Hash:    fmt.Sprintf("%04d", i),
			Message: fmt.Sprintf("commit %d", i),
			Author:  "alice",
			Branch:  "main",
		})
	}

	got := RenderActivity(snapshot)
	assert.Contains(t, got, fmt.Sprintf("Commits (%d)", maxRenderedCommits+13))
	assert.Contains(t, got, "  ... and 13 more")
	assert.Contains(t, got, fmt.Sprintf("commit %d", maxRenderedCommits-1))
	assert.NotContains(t, got, fmt.Sprintf("commit %d (", maxRenderedCommits))
}

func TestRenderActivityCapsPullRequests(t *testing.T) {
	snapshot := &model.ActivitySnapshot{}
	for i := 0; i < maxRenderedPullRequests+4; i++ {
		snapshot.PullRequests = append(snapshot.PullRequests, model.PullRequest{
			Number: i + 1,
			Title:  fmt.Sprintf("change %d", i),
			State:  "open",
			Author: "bob",
		})
	}

	got := RenderActivity(snapshot)
	assert.Contains(t, got, "  ... and 4 more")
	assert.NotContains(t, got, fmt.Sprintf("change %d", maxRenderedPullRequests))
}

func TestRenderActivityExactCapHasNoSuffix(t *testing.T) {
	snapshot := &model.ActivitySnapshot{}
	for i := 0; i < maxRenderedCommits; i++ {
		snapshot.Commits = append(snapshot.Commits, model.Commit{Hash: fmt.Sprintf("%d", i), Message: "m"})
	}

	assert.NotContains(t, RenderActivity(snapshot), "more")
}

func TestRenderActivityNoTrailingNewline(t *testing.T) {
	snapshot := &model.ActivitySnapshot{
		Commits: []model.Commit{{Hash: "a", Message: "m", Author: "a", Branch: "main"}},
	}
	assert.False(t, strings.HasSuffix(RenderActivity(snapshot), "\n"))
}
