package provider

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/maxbolgarin/taskry/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	defaultBranch string
	branches      []model.Branch
	commits       map[string][]model.Commit
	pullRequests  []model.PullRequest

	defaultBranchErr error
}

func (f *fakeProvider) GetDefaultBranch(_ context.Context, _ string) (string, error) {
	if f.defaultBranchErr != nil {
		return "", f.defaultBranchErr
	}
	return f.defaultBranch, nil
}

func (f *fakeProvider) ListBranches(_ context.Context, _ string, limit int) ([]model.Branch, error) {
	if len(f.branches) > limit {
		return f.branches[:limit], nil
	}
	return f.branches, nil
}

func (f *fakeProvider) ListCommits(_ context.Context, _, branch string, _, _ time.Time) ([]model.Commit, error) {
	return f.commits[branch], nil
}

func (f *fakeProvider) ListPullRequests(_ context.Context, _ string, _, _ time.Time) ([]model.PullRequest, error) {
	return f.pullRequests, nil
}

func (f *fakeProvider) ListRepositories(_ context.Context) ([]model.Repository, error) {
	return nil, nil
}

func (f *fakeProvider) CountContributors(_ context.Context, _ string) (int, error) {
	return 0, nil
}

func (f *fakeProvider) CloneURL(repo string) string {
	return "https://example.com/" + repo + ".git"
}

var (
	testSince = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	testUntil = testSince.Add(24 * time.Hour)
)

func testCommit(hash string, age time.Duration) model.Commit {
	return model.Commit{
		Hash:      hash,
		Message:   "commit " + hash,
		Author:    "alice",
		Timestamp: testUntil.Add(-age),
	}
}

func TestCollectorDeduplicatesAcrossBranches(t *testing.T) {
	shared := testCommit("aaa", time.Hour)
	mainOnly := testCommit("bbb", 2*time.Hour)
	featureOnly := testCommit("ccc", 3*time.Hour)

	fake := &fakeProvider{
		defaultBranch: "main",
		branches: []model.Branch{
			{Name: "main", IsDefault: true},
			{Name: "feature"},
		},
		commits: map[string][]model.Commit{
			"main":    {shared, mainOnly},
			"feature": {shared, featureOnly},
		},
	}

	collector := NewCollector(fake, Config{MaxBranches: 25})
	snapshot, err := collector.Collect(context.Background(), "owner/repo", testSince, testUntil)
	require.NoError(t, err)

	require.Len(t, snapshot.Commits, 3)

	byHash := make(map[string]model.Commit)
	for _, commit := range snapshot.Commits {
		byHash[commit.Hash] = commit
	}

	assert.Equal(t, "main", byHash["aaa"].Branch, "shared commit belongs to the branch that showed it first")
	assert.True(t, byHash["aaa"].IsMerged)
	assert.Equal(t, "main", byHash["bbb"].Branch)
	assert.True(t, byHash["bbb"].IsMerged)
	assert.Equal(t, "feature", byHash["ccc"].Branch)
	assert.False(t, byHash["ccc"].IsMerged)
}

func TestCollectorDefaultBranchFirst(t *testing.T) {
	fake := &fakeProvider{
		defaultBranch: "main",
		branches: []model.Branch{
			{Name: "feature-a"},
			{Name: "main", IsDefault: true},
			{Name: "feature-b"},
		},
		commits: map[string][]model.Commit{},
	}

	collector := NewCollector(fake, Config{MaxBranches: 25})
	snapshot, err := collector.Collect(context.Background(), "owner/repo", testSince, testUntil)
	require.NoError(t, err)

	assert.Equal(t, []string{"main", "feature-a", "feature-b"}, snapshot.Branches)
	assert.Equal(t, "main", snapshot.DefaultBranch)
}

func TestCollectorDefaultBranchMissingFromListing(t *testing.T) {
	fake := &fakeProvider{
		defaultBranch: "develop",
		branches: []model.Branch{
			{Name: "feature-a"},
		},
		commits: map[string][]model.Commit{
			"develop": {testCommit("aaa", time.Hour)},
		},
	}

	collector := NewCollector(fake, Config{MaxBranches: 25})
	snapshot, err := collector.Collect(context.Background(), "owner/repo", testSince, testUntil)
	require.NoError(t, err)

	assert.Equal(t, []string{"develop", "feature-a"}, snapshot.Branches)
	require.Len(t, snapshot.Commits, 1)
	assert.True(t, snapshot.Commits[0].IsMerged)
}

func TestCollectorEnforcesWindow(t *testing.T) {
	atSince := model.Commit{Hash: "at-since", Timestamp: testSince}
	beforeSince := model.Commit{Hash: "before", Timestamp: testSince.Add(-time.Minute)}
	atUntil := model.Commit{Hash: "at-until", Timestamp: testUntil}

	fake := &fakeProvider{
		defaultBranch: "main",
		branches:      []model.Branch{{Name: "main", IsDefault: true}},
		commits: map[string][]model.Commit{
			"main": {atSince, beforeSince, atUntil},
		},
	}

	collector := NewCollector(fake, Config{MaxBranches: 25})
	snapshot, err := collector.Collect(context.Background(), "owner/repo", testSince, testUntil)
	require.NoError(t, err)

	require.Len(t, snapshot.Commits, 1, "window start is inclusive, window end is exclusive")
	assert.Equal(t, "at-since", snapshot.Commits[0].Hash)
}

func TestCollectorSortsCommitsNewestFirst(t *testing.T) {
	fake := &fakeProvider{
		defaultBranch: "main",
		branches: []model.Branch{
			{Name: "main", IsDefault: true},
			{Name: "feature"},
		},
		commits: map[string][]model.Commit{
			"main":    {testCommit("old", 10 * time.Hour)},
			"feature": {testCommit("new", time.Hour), testCommit("mid", 5 * time.Hour)},
		},
	}

	collector := NewCollector(fake, Config{MaxBranches: 25})
	snapshot, err := collector.Collect(context.Background(), "owner/repo", testSince, testUntil)
	require.NoError(t, err)

	require.Len(t, snapshot.Commits, 3)
	assert.Equal(t, "new", snapshot.Commits[0].Hash)
	assert.Equal(t, "mid", snapshot.Commits[1].Hash)
	assert.Equal(t, "old", snapshot.Commits[2].Hash)
}

func TestCollectorFiltersPullRequests(t *testing.T) {
	fake := &fakeProvider{
		defaultBranch: "main",
		branches:      []model.Branch{{Name: "main", IsDefault: true}},
		commits:       map[string][]model.Commit{},
		pullRequests: []model.PullRequest{
			{Number: 1, Title: "old", UpdatedAt: testSince.Add(-time.Hour)},
			{Number: 2, Title: "in window", UpdatedAt: testSince.Add(2 * time.Hour)},
			{Number: 3, Title: "at until", UpdatedAt: testUntil},
			{Number: 4, Title: "newer in window", UpdatedAt: testSince.Add(6 * time.Hour)},
		},
	}

	collector := NewCollector(fake, Config{MaxBranches: 25})
	snapshot, err := collector.Collect(context.Background(), "owner/repo", testSince, testUntil)
	require.NoError(t, err)

	require.Len(t, snapshot.PullRequests, 2)
	assert.Equal(t, 4, snapshot.PullRequests[0].Number)
	assert.Equal(t, 2, snapshot.PullRequests[1].Number)
}

func TestCollectorPropagatesNotFound(t *testing.T) {
	fake := &fakeProvider{
		defaultBranchErr: fmt.Errorf("%w: failed to get repository", model.ErrRepositoryNotFound),
	}

	collector := NewCollector(fake, Config{MaxBranches: 25})
	_, err := collector.Collect(context.Background(), "owner/missing", testSince, testUntil)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrRepositoryNotFound)
}

func TestCollectorBranchLimit(t *testing.T) {
	branches := make([]model.Branch, 0, 30)
	for i := 0; i < 30; i++ {
		branches = append(branches, model.Branch{Name: fmt.Sprintf("branch-%02d", i)})
	}

	fake := &fakeProvider{
		defaultBranch: "main",
		branches:      branches,
		commits:       map[string][]model.Commit{},
	}

	collector := NewCollector(fake, Config{MaxBranches: 5})
	snapshot, err := collector.Collect(context.Background(), "owner/repo", testSince, testUntil)
	require.NoError(t, err)

	// 5 listed branches plus the default one missing from the listing
	assert.Len(t, snapshot.Branches, 6)
	assert.Equal(t, "main", snapshot.Branches[0])
}
