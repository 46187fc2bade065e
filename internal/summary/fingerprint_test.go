package summary

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/maxbolgarin/taskry/internal/model"
)

func TestFingerprintStableAcrossOrder(t *testing.T) {
	ts := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	a := &model.ActivitySnapshot{
		Commits: []model.Commit{
			{Hash: "a1", Message: "first", Timestamp: ts},
			{Hash: "b2", Message: "second", Timestamp: ts.Add(time.Hour)},
		},
		PullRequests: []model.PullRequest{
			{Number: 1, State: "open", UpdatedAt: ts},
			{Number: 2, State: "merged", UpdatedAt: ts.Add(time.Hour)},
		},
	}
	b := &model.ActivitySnapshot{
		Commits:      []model.Commit{a.Commits[1], a.Commits[0]},
		PullRequests: []model.PullRequest{a.PullRequests[1], a.PullRequests[0]},
	}

	assert.Equal(t, Fingerprint(a), Fingerprint(b))
}

func TestFingerprintIgnoresRequestTime(t *testing.T) {
	ts := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	commits := []model.Commit{{Hash: "a1", Message: "first", Timestamp: ts}}

	a := &model.ActivitySnapshot{Since: ts.AddDate(0, 0, -7), Until: ts, Commits: commits}
	b := &model.ActivitySnapshot{Since: ts.AddDate(0, 0, -6), Until: ts.Add(time.Minute), Commits: commits}

	assert.Equal(t, Fingerprint(a), Fingerprint(b))
}

func TestFingerprintSensitivity(t *testing.T) {
	ts := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	base := func() *model.ActivitySnapshot {
		return &model.ActivitySnapshot{
			Commits:      []model.Commit{{Hash: "a1", Message: "first", Timestamp: ts}},
			PullRequests: []model.PullRequest{{Number: 1, State: "open", UpdatedAt: ts}},
		}
	}
	original := Fingerprint(base())

	changedHash := base()
	changedHash.Commits[0].Hash = "a2"
	assert.NotEqual(t, original, Fingerprint(changedHash))

	changedMessage := base()
	changedMessage.Commits[0].Message = "second"
	assert.NotEqual(t, original, Fingerprint(changedMessage))

	changedState := base()
	changedState.PullRequests[0].State = "merged"
	assert.NotEqual(t, original, Fingerprint(changedState))

	extraCommit := base()
	extraCommit.Commits = append(extraCommit.Commits, model.Commit{Hash: "c3", Timestamp: ts})
	assert.NotEqual(t, original, Fingerprint(extraCommit))
}

func TestFingerprintUsesMessagePrefix(t *testing.T) {
	ts := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	prefix := strings.Repeat("x", messagePrefixLen)

	a := &model.ActivitySnapshot{Commits: []model.Commit{{Hash: "a1", Message: prefix + "tail one", Timestamp: ts}}}
	b := &model.ActivitySnapshot{Commits: []model.Commit{{Hash: "a1", Message: prefix + "other tail", Timestamp: ts}}}

	assert.Equal(t, Fingerprint(a), Fingerprint(b))
	assert.Len(t, Fingerprint(a), fingerprintLen)
}

func TestCacheKeySeparatesRepoAndWindow(t *testing.T) {
	snapshot := &model.ActivitySnapshot{}
	fp := Fingerprint(snapshot)

	assert.NotEqual(t,
		cacheKey("owner/repo", model.WindowWeek, fp),
		cacheKey("owner/repo", model.WindowDay, fp))
	assert.NotEqual(t,
		cacheKey("owner/repo", model.WindowWeek, fp),
		cacheKey("owner/other", model.WindowWeek, fp))
}
