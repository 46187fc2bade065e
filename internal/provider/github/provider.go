package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-github/v57/github"
	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/lang"
	"github.com/maxbolgarin/logze/v2"
	"github.com/maxbolgarin/taskry/internal/model"
	"github.com/maxbolgarin/taskry/internal/model/interfaces"
	"golang.org/x/oauth2"
)

var _ interfaces.ActivityProvider = (*Provider)(nil)

const (
	defaultBaseURL = "https://github.com"

	// fallbackBranch is assumed when the API omits the default branch
	fallbackBranch = "main"
)

// Provider implements the ActivityProvider interface for GitHub
type Provider struct {
	client *github.Client
	config model.ProviderConfig
	logger logze.Logger
}

// New creates a new GitHub provider
func New(config model.ProviderConfig) (*Provider, error) {
	if config.Token == "" {
		return nil, errm.New("GitHub token is required")
	}
	log := logze.With("provider", "github")

	// Create OAuth2 token source
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: config.Token},
	)
	tc := oauth2.NewClient(context.Background(), ts)

	// Create GitHub client
	client := github.NewClient(tc)

	// Set base URL if provided (for GitHub Enterprise)
	if config.BaseURL != "" && config.BaseURL != defaultBaseURL {
		var err error
		client, err = github.NewClient(tc).WithEnterpriseURLs(config.BaseURL, config.BaseURL)
		if err != nil {
			return nil, errm.Wrap(err, "failed to create GitHub Enterprise client")
		}
	}

	return &Provider{
		client: client,
		config: config,
		logger: log,
	}, nil
}

// GetDefaultBranch retrieves the default branch of a repository
func (p *Provider) GetDefaultBranch(ctx context.Context, repo string) (string, error) {
	owner, name, err := splitRepo(repo)
	if err != nil {
		return "", err
	}

	repository, _, err := p.client.Repositories.Get(ctx, owner, name)
	if err != nil {
		return "", p.mapError(err, "failed to get repository")
	}

	return lang.Check(repository.GetDefaultBranch(), fallbackBranch), nil
}

// ListBranches retrieves up to limit branches of a repository
func (p *Provider) ListBranches(ctx context.Context, repo string, limit int) ([]model.Branch, error) {
	owner, name, err := splitRepo(repo)
	if err != nil {
		return nil, err
	}

	opts := &github.BranchListOptions{
		ListOptions: github.ListOptions{PerPage: limit},
	}

	branches, _, err := p.client.Repositories.ListBranches(ctx, owner, name, opts)
	if err != nil {
		return nil, p.mapError(err, "failed to list branches")
	}

	result := make([]model.Branch, 0, len(branches))
	for _, branch := range branches {
		result = append(result, model.Branch{Name: branch.GetName()})
	}
	if len(result) > limit {
		result = result[:limit]
	}

	return result, nil
}

// ListCommits retrieves branch commits in the half-open window [since, until)
func (p *Provider) ListCommits(ctx context.Context, repo, branch string, since, until time.Time) ([]model.Commit, error) {
	owner, name, err := splitRepo(repo)
	if err != nil {
		return nil, err
	}

	opts := &github.CommitsListOptions{
		SHA:         branch,
		Since:       since,
		Until:       until,
		ListOptions: github.ListOptions{PerPage: p.config.PageSize},
	}

	var allCommits []*github.RepositoryCommit
	for {
		commits, resp, err := p.client.Repositories.ListCommits(ctx, owner, name, opts)
		if err != nil {
			return nil, p.mapError(err, "failed to list commits")
		}

		allCommits = append(allCommits, commits...)

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	result := make([]model.Commit, 0, len(allCommits))
	for _, commit := range allCommits {
		result = append(result, model.Commit{
			Hash:      commit.GetSHA(),
			Message:   firstLine(commit.GetCommit().GetMessage()),
			Author:    commitAuthor(commit),
			Timestamp: commit.GetCommit().GetAuthor().GetDate().Time,
		})
	}

	return result, nil
}

// ListPullRequests retrieves pull requests updated in the half-open window [since, until)
func (p *Provider) ListPullRequests(ctx context.Context, repo string, since, until time.Time) ([]model.PullRequest, error) {
	owner, name, err := splitRepo(repo)
	if err != nil {
		return nil, err
	}

	opts := &github.PullRequestListOptions{
		State:       "all",
		Sort:        "updated",
		Direction:   "desc",
		ListOptions: github.ListOptions{PerPage: p.config.PageSize},
	}

	var result []model.PullRequest
	for {
		prs, resp, err := p.client.PullRequests.List(ctx, owner, name, opts)
		if err != nil {
			return nil, p.mapError(err, "failed to list pull requests")
		}

		// Results are sorted by updated_at desc, stop once we leave the window
		done := false
		for _, pr := range prs {
			updated := pr.GetUpdatedAt().Time
			if updated.Before(since) {
				done = true
				break
			}
			if !updated.Before(until) {
				continue
			}

			result = append(result, model.PullRequest{
				Number:    pr.GetNumber(),
				Title:     pr.GetTitle(),
				State:     pr.GetState(),
				Author:    lang.Check(pr.GetUser().GetLogin(), "?"),
				UpdatedAt: updated,
				MergedAt:  pr.GetMergedAt().Time,
			})
		}

		if done || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return result, nil
}

// ListRepositories retrieves repositories visible to the authenticated user
func (p *Provider) ListRepositories(ctx context.Context) ([]model.Repository, error) {
	opts := &github.RepositoryListOptions{
		Sort:        "updated",
		ListOptions: github.ListOptions{PerPage: p.config.PageSize},
	}

	repos, _, err := p.client.Repositories.List(ctx, "", opts)
	if err != nil {
		return nil, p.mapError(err, "failed to list repositories")
	}

	result := make([]model.Repository, 0, len(repos))
	for _, repo := range repos {
		result = append(result, model.Repository{
			FullName:      repo.GetFullName(),
			Description:   repo.GetDescription(),
			DefaultBranch: repo.GetDefaultBranch(),
			IsPrivate:     repo.GetPrivate(),
			UpdatedAt:     repo.GetUpdatedAt().Time,
		})
	}

	return result, nil
}

// CountContributors returns the number of repository contributors
func (p *Provider) CountContributors(ctx context.Context, repo string) (int, error) {
	owner, name, err := splitRepo(repo)
	if err != nil {
		return 0, err
	}

	opts := &github.ListContributorsOptions{
		ListOptions: github.ListOptions{PerPage: p.config.PageSize},
	}

	contributors, _, err := p.client.Repositories.ListContributors(ctx, owner, name, opts)
	if err != nil {
		return 0, p.mapError(err, "failed to list contributors")
	}

	return len(contributors), nil
}

// CloneURL builds an authenticated clone URL for the repository
func (p *Provider) CloneURL(repo string) string {
	host := strings.TrimPrefix(lang.Check(p.config.BaseURL, defaultBaseURL), "https://")
	return fmt.Sprintf("https://x-access-token:%s@%s/%s.git", p.config.Token, host, repo)
}

// mapError converts go-github errors to the provider error taxonomy
func (p *Provider) mapError(err error, msg string) error {
	var rateErr *github.RateLimitError
	var abuseErr *github.AbuseRateLimitError
	var respErr *github.ErrorResponse

	switch {
	case errors.As(err, &rateErr), errors.As(err, &abuseErr):
		return fmt.Errorf("%w: %s: %v", model.ErrRateLimited, msg, err)

	case errors.As(err, &respErr):
		if respErr.Response == nil {
			break
		}
		switch respErr.Response.StatusCode {
		case http.StatusNotFound:
			return fmt.Errorf("%w: %s", model.ErrRepositoryNotFound, msg)
		case http.StatusForbidden, http.StatusTooManyRequests:
			if strings.Contains(strings.ToLower(respErr.Message), "rate limit") {
				return fmt.Errorf("%w: %s: %v", model.ErrRateLimited, msg, err)
			}
		}
	}

	return fmt.Errorf("%w: %s: %v", model.ErrUpstreamUnavailable, msg, err)
}

// splitRepo parses owner and name from the 'owner/repo' format
func splitRepo(repo string) (string, string, error) {
	parts := strings.Split(repo, "/")
	if len(parts) != 2 {
		return "", "", errm.New("invalid GitHub repository format, expected 'owner/repo'")
	}
	return parts[0], parts[1], nil
}

// firstLine returns the commit subject without the message body
func firstLine(message string) string {
	line, _, _ := strings.Cut(message, "\n")
	return strings.TrimSpace(line)
}

// commitAuthor picks a display name for the commit author
func commitAuthor(commit *github.RepositoryCommit) string {
	if name := commit.GetCommit().GetAuthor().GetName(); name != "" {
		return name
	}
	if login := commit.GetAuthor().GetLogin(); login != "" {
		return login
	}
	return "?"
}
