package bitbucket

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/maxbolgarin/cliex"
	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/lang"
	"github.com/maxbolgarin/logze/v2"
	"github.com/maxbolgarin/taskry/internal/model"
	"github.com/maxbolgarin/taskry/internal/model/interfaces"
)

var _ interfaces.ActivityProvider = (*Provider)(nil)

const (
	defaultBaseURL = "https://api.bitbucket.org/2.0"

	// fallbackBranch is assumed when the API omits the main branch
	fallbackBranch = "main"
)

// Provider implements the ActivityProvider interface for Bitbucket
type Provider struct {
	config model.ProviderConfig
	logger logze.Logger
	client *cliex.HTTP
}

// New creates a new Bitbucket provider
func New(config model.ProviderConfig) (*Provider, error) {
	if config.Token == "" {
		return nil, errm.New("Bitbucket token is required")
	}
	log := logze.With("provider", "bitbucket")

	// Set base URL
	baseURL := defaultBaseURL
	if config.BaseURL != "" {
		baseURL = strings.TrimSuffix(config.BaseURL, "/")
	}

	cli, err := cliex.New(cliex.WithBaseURL(baseURL), cliex.WithLogger(log))
	if err != nil {
		return nil, errm.Wrap(err, "failed to create Bitbucket client")
	}
	cli.C().SetBasicAuth("x-auth-token", config.Token)

	return &Provider{
		client: cli,
		config: config,
		logger: log,
	}, nil
}

// GetDefaultBranch retrieves the main branch of a repository
func (p *Provider) GetDefaultBranch(ctx context.Context, repo string) (string, error) {
	workspace, repoSlug, err := splitRepo(repo)
	if err != nil {
		return "", err
	}

	apiURL := fmt.Sprintf("repositories/%s/%s", workspace, repoSlug)

	var repository bitbucketRepository
	if _, err := p.client.Get(ctx, apiURL, &repository); err != nil {
		return "", p.mapError(err, "failed to get repository from Bitbucket")
	}

	return lang.Check(repository.MainBranch.Name, fallbackBranch), nil
}

// ListBranches retrieves up to limit branches of a repository
func (p *Provider) ListBranches(ctx context.Context, repo string, limit int) ([]model.Branch, error) {
	workspace, repoSlug, err := splitRepo(repo)
	if err != nil {
		return nil, err
	}

	apiURL := fmt.Sprintf("repositories/%s/%s/refs/branches?pagelen=%d", workspace, repoSlug, limit)

	var page bitbucketBranchesPage
	if _, err := p.client.Get(ctx, apiURL, &page); err != nil {
		return nil, p.mapError(err, "failed to list branches")
	}

	result := make([]model.Branch, 0, len(page.Values))
	for _, branch := range page.Values {
		result = append(result, model.Branch{Name: branch.Name})
	}
	if len(result) > limit {
		result = result[:limit]
	}

	return result, nil
}

// ListCommits retrieves branch commits in the half-open window [since, until).
// The commits endpoint has no time filters, so pages are walked newest-first
// until a commit older than since shows up.
func (p *Provider) ListCommits(ctx context.Context, repo, branch string, since, until time.Time) ([]model.Commit, error) {
	workspace, repoSlug, err := splitRepo(repo)
	if err != nil {
		return nil, err
	}

	apiURL := fmt.Sprintf("repositories/%s/%s/commits/%s?pagelen=%d", workspace, repoSlug, branch, p.config.PageSize)

	var result []model.Commit
	for apiURL != "" {
		var page bitbucketCommitsPage
		if _, err := p.client.Get(ctx, apiURL, &page); err != nil {
			return nil, p.mapError(err, "failed to list commits")
		}

		done := false
		for _, commit := range page.Values {
			date := parseTime(commit.Date)
			if date.Before(since) {
				done = true
				break
			}
			if !date.Before(until) {
				continue
			}

			result = append(result, model.Commit{
				Hash:      commit.Hash,
				Message:   firstLine(commit.Message),
				Author:    commitAuthor(commit),
				Timestamp: date,
			})
		}

		if done {
			break
		}
		apiURL = page.Next
	}

	return result, nil
}

// ListPullRequests retrieves pull requests updated in the half-open window [since, until)
func (p *Provider) ListPullRequests(ctx context.Context, repo string, since, until time.Time) ([]model.PullRequest, error) {
	workspace, repoSlug, err := splitRepo(repo)
	if err != nil {
		return nil, err
	}

	// Bitbucket returns only OPEN pull requests unless states are spelled out
	apiURL := fmt.Sprintf("repositories/%s/%s/pullrequests?state=OPEN&state=MERGED&state=DECLINED&sort=-updated_on&pagelen=%d",
		workspace, repoSlug, p.config.PageSize)

	var result []model.PullRequest
	for apiURL != "" {
		var page bitbucketPullRequestsPage
		if _, err := p.client.Get(ctx, apiURL, &page); err != nil {
			return nil, p.mapError(err, "failed to list pull requests")
		}

		done := false
		for _, pr := range page.Values {
			updated := parseTime(pr.UpdatedOn)
			if updated.Before(since) {
				done = true
				break
			}
			if !updated.Before(until) {
				continue
			}

			state := strings.ToLower(pr.State)
			merged := time.Time{}
			if state == "merged" {
				merged = updated
			}

			result = append(result, model.PullRequest{
				Number:    pr.ID,
				Title:     pr.Title,
				State:     state,
				Author:    userName(pr.Author),
				UpdatedAt: updated,
				MergedAt:  merged,
			})
		}

		if done {
			break
		}
		apiURL = page.Next
	}

	return result, nil
}

// ListRepositories retrieves repositories the authenticated user is a member of
func (p *Provider) ListRepositories(ctx context.Context) ([]model.Repository, error) {
	apiURL := fmt.Sprintf("repositories?role=member&sort=-updated_on&pagelen=%d", p.config.PageSize)

	var page bitbucketRepositoriesPage
	if _, err := p.client.Get(ctx, apiURL, &page); err != nil {
		return nil, p.mapError(err, "failed to list repositories")
	}

	result := make([]model.Repository, 0, len(page.Values))
	for _, repository := range page.Values {
		result = append(result, model.Repository{
			FullName:      repository.FullName,
			Description:   repository.Description,
			DefaultBranch: repository.MainBranch.Name,
			IsPrivate:     repository.IsPrivate,
			UpdatedAt:     parseTime(repository.UpdatedOn),
		})
	}

	return result, nil
}

// CountContributors approximates the contributor count from recent main branch
// commit authors, there is no contributors endpoint in the Bitbucket API
func (p *Provider) CountContributors(ctx context.Context, repo string) (int, error) {
	workspace, repoSlug, err := splitRepo(repo)
	if err != nil {
		return 0, err
	}

	apiURL := fmt.Sprintf("repositories/%s/%s/commits?pagelen=%d", workspace, repoSlug, p.config.PageSize)

	var page bitbucketCommitsPage
	if _, err := p.client.Get(ctx, apiURL, &page); err != nil {
		return 0, p.mapError(err, "failed to list commits")
	}

	authors := make(map[string]struct{})
	for _, commit := range page.Values {
		authors[commitAuthor(commit)] = struct{}{}
	}

	return len(authors), nil
}

// CloneURL builds an authenticated clone URL for the repository
func (p *Provider) CloneURL(repo string) string {
	return fmt.Sprintf("https://x-token-auth:%s@bitbucket.org/%s.git", p.config.Token, repo)
}

// mapError converts Bitbucket HTTP errors to the provider error taxonomy
func (p *Provider) mapError(err error, msg string) error {
	errText := err.Error()
	switch {
	case strings.Contains(errText, "404"):
		return fmt.Errorf("%w: %s", model.ErrRepositoryNotFound, msg)
	case strings.Contains(errText, "429") || strings.Contains(errText, "rate limit"):
		return fmt.Errorf("%w: %s: %v", model.ErrRateLimited, msg, err)
	default:
		return fmt.Errorf("%w: %s: %v", model.ErrUpstreamUnavailable, msg, err)
	}
}

// splitRepo parses workspace/repo_slug from the repository name
func splitRepo(repo string) (string, string, error) {
	parts := strings.Split(repo, "/")
	if len(parts) != 2 {
		return "", "", errm.New("invalid Bitbucket repository format, expected 'workspace/repo_slug'")
	}
	return parts[0], parts[1], nil
}

// firstLine returns the first line of a commit message
func firstLine(message string) string {
	line, _, _ := strings.Cut(message, "\n")
	return strings.TrimSpace(line)
}

// parseTime parses a Bitbucket RFC3339 timestamp, zero time on failure
func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

// commitAuthor picks the best available author name for a commit
func commitAuthor(commit bitbucketCommit) string {
	if name := lang.Check(commit.Author.User.DisplayName, commit.Author.User.Username); name != "" {
		return name
	}
	if raw, _, ok := strings.Cut(commit.Author.Raw, "<"); ok && strings.TrimSpace(raw) != "" {
		return strings.TrimSpace(raw)
	}
	return "?"
}

// userName picks the best available name for a user
func userName(user bitbucketUser) string {
	name := lang.Check(user.Username, user.DisplayName)
	return lang.Check(name, "?")
}
