package provider

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/maxbolgarin/abstract"
	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/lang"
	"github.com/maxbolgarin/logze/v2"
	"github.com/maxbolgarin/taskry/internal/model"
	"github.com/maxbolgarin/taskry/internal/model/interfaces"
)

var _ interfaces.ActivityCollector = (*Collector)(nil)

// Collector aggregates cross-branch repository activity into a single snapshot.
// Branch commit listings run in parallel, deduplication and window enforcement
// happen here so provider quirks around boundary timestamps cannot leak through.
type Collector struct {
	provider    interfaces.ActivityProvider
	maxBranches int
	logger      logze.Logger
}

// NewCollector creates a new activity collector on top of a provider
func NewCollector(provider interfaces.ActivityProvider, cfg Config) *Collector {
	return &Collector{
		provider:    provider,
		maxBranches: lang.Check(cfg.MaxBranches, defaultMaxBranches),
		logger:      logze.With("component", "collector"),
	}
}

// Collect gathers commits and pull requests of a repository in the half-open
// window [since, until). Commits are deduplicated across branches, the branch
// that shows a commit first keeps it, and the default branch goes first.
func (c *Collector) Collect(ctx context.Context, repo string, since, until time.Time) (*model.ActivitySnapshot, error) {
	timer := abstract.StartTimer()

	defaultBranch, err := c.provider.GetDefaultBranch(ctx, repo)
	if err != nil {
		return nil, errm.Wrap(err, "failed to get default branch")
	}

	branches, err := c.provider.ListBranches(ctx, repo, c.maxBranches)
	if err != nil {
		return nil, errm.Wrap(err, "failed to list branches")
	}

	names := orderBranches(branches, defaultBranch)

	var (
		mu           sync.Mutex
		perBranch    = make(map[string][]model.Commit, len(names))
		pullRequests []model.PullRequest
	)

	waiterSet := abstract.NewWaiterSet(c.logger)
	for _, name := range names {
		waiterSet.Add(ctx, func(ctx context.Context) error {
			commits, err := c.provider.ListCommits(ctx, repo, name, since, until)
			if err != nil {
				return errm.Wrap(err, "failed to list commits")
			}
			mu.Lock()
			defer mu.Unlock()
			perBranch[name] = commits
			return nil
		})
	}
	waiterSet.Add(ctx, func(ctx context.Context) error {
		prs, err := c.provider.ListPullRequests(ctx, repo, since, until)
		if err != nil {
			return errm.Wrap(err, "failed to list pull requests")
		}
		mu.Lock()
		defer mu.Unlock()
		pullRequests = prs
		return nil
	})
	if err := waiterSet.Await(ctx); err != nil {
		return nil, errm.Wrap(err, "failed to load repository activity")
	}

	// Commits reachable from the default branch count as merged
	merged := make(map[string]struct{}, len(perBranch[defaultBranch]))
	for _, commit := range perBranch[defaultBranch] {
		merged[commit.Hash] = struct{}{}
	}

	seen := make(map[string]struct{})
	var commits []model.Commit
	for _, name := range names {
		for _, commit := range perBranch[name] {
			if _, ok := seen[commit.Hash]; ok {
				continue
			}
			if commit.Timestamp.Before(since) || !commit.Timestamp.Before(until) {
				continue
			}
			seen[commit.Hash] = struct{}{}

			commit.Branch = name
			_, commit.IsMerged = merged[commit.Hash]
			commits = append(commits, commit)
		}
	}

	slices.SortStableFunc(commits, func(a, b model.Commit) int {
		return b.Timestamp.Compare(a.Timestamp)
	})

	pullRequests = slices.DeleteFunc(pullRequests, func(pr model.PullRequest) bool {
		return pr.UpdatedAt.Before(since) || !pr.UpdatedAt.Before(until)
	})
	slices.SortStableFunc(pullRequests, func(a, b model.PullRequest) int {
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})

	snapshot := &model.ActivitySnapshot{
		Repository:    repo,
		Since:         since,
		Until:         until,
		DefaultBranch: defaultBranch,
		Branches:      names,
		Commits:       commits,
		PullRequests:  pullRequests,
	}

	c.logger.Debug("collected repository activity",
		"repo", repo,
		"branches", len(names),
		"commits", len(commits),
		"pull_requests", len(pullRequests),
		"elapsed", timer.ElapsedTime().String(),
	)

	return snapshot, nil
}

// orderBranches returns branch names with the default branch forced to the
// front, commits found there win first-seen deduplication
func orderBranches(branches []model.Branch, defaultBranch string) []string {
	names := make([]string, 0, len(branches)+1)
	names = append(names, defaultBranch)
	for _, branch := range branches {
		if branch.Name == defaultBranch {
			continue
		}
		names = append(names, branch.Name)
	}
	return names
}
