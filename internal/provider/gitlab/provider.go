package gitlab

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/lang"
	"github.com/maxbolgarin/logze/v2"
	"github.com/maxbolgarin/taskry/internal/model"
	"github.com/maxbolgarin/taskry/internal/model/interfaces"
	gitlab "gitlab.com/gitlab-org/api/client-go"
)

const (
	defaultBaseURL = "https://gitlab.com"

	// fallbackBranch is assumed when the API omits the default branch
	fallbackBranch = "main"
)

var _ interfaces.ActivityProvider = (*Provider)(nil)

// Provider implements the ActivityProvider interface for GitLab
type Provider struct {
	client *gitlab.Client
	config model.ProviderConfig
	logger logze.Logger
}

// New creates a new GitLab provider
func New(config model.ProviderConfig) (*Provider, error) {
	if config.Token == "" {
		return nil, errm.New("GitLab token is required")
	}
	logger := logze.With("provider", "gitlab")

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	client, err := gitlab.NewClient(config.Token, gitlab.WithBaseURL(baseURL))
	if err != nil {
		return nil, errm.Wrap(err, "failed to create GitLab client")
	}

	return &Provider{
		client: client,
		config: config,
		logger: logger,
	}, nil
}

// GetDefaultBranch retrieves the default branch of a project
func (p *Provider) GetDefaultBranch(ctx context.Context, repo string) (string, error) {
	project, resp, err := p.client.Projects.GetProject(repo, nil, gitlab.WithContext(ctx))
	if err != nil {
		return "", p.mapError(err, resp, "failed to get project")
	}

	return lang.Check(project.DefaultBranch, fallbackBranch), nil
}

// ListBranches retrieves up to limit branches of a project
func (p *Provider) ListBranches(ctx context.Context, repo string, limit int) ([]model.Branch, error) {
	opts := &gitlab.ListBranchesOptions{
		ListOptions: gitlab.ListOptions{PerPage: limit},
	}

	branches, resp, err := p.client.Branches.ListBranches(repo, opts, gitlab.WithContext(ctx))
	if err != nil {
		return nil, p.mapError(err, resp, "failed to list branches")
	}

	result := make([]model.Branch, 0, len(branches))
	for _, branch := range branches {
		result = append(result, model.Branch{
			Name:      branch.Name,
			IsDefault: branch.Default,
		})
	}
	if len(result) > limit {
		result = result[:limit]
	}

	return result, nil
}

// ListCommits retrieves branch commits in the half-open window [since, until)
func (p *Provider) ListCommits(ctx context.Context, repo, branch string, since, until time.Time) ([]model.Commit, error) {
	opts := &gitlab.ListCommitsOptions{
		RefName:     &branch,
		Since:       &since,
		Until:       &until,
		ListOptions: gitlab.ListOptions{PerPage: p.config.PageSize},
	}

	var result []model.Commit
	for {
		commits, resp, err := p.client.Commits.ListCommits(repo, opts, gitlab.WithContext(ctx))
		if err != nil {
			return nil, p.mapError(err, resp, "failed to list commits")
		}

		for _, commit := range commits {
			result = append(result, model.Commit{
				Hash:      commit.ID,
				Message:   commit.Title,
				Author:    lang.Check(commit.AuthorName, "?"),
				Timestamp: lang.Check(lang.Deref(commit.CommittedDate), lang.Deref(commit.CreatedAt)),
			})
		}

		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return result, nil
}

// ListPullRequests retrieves merge requests updated in the half-open window [since, until)
func (p *Provider) ListPullRequests(ctx context.Context, repo string, since, until time.Time) ([]model.PullRequest, error) {
	state := "all"
	orderBy := "updated_at"

	opts := &gitlab.ListProjectMergeRequestsOptions{
		State:         &state,
		OrderBy:       &orderBy,
		UpdatedAfter:  &since,
		UpdatedBefore: &until,
		ListOptions:   gitlab.ListOptions{PerPage: p.config.PageSize},
	}

	var result []model.PullRequest
	for {
		mrs, resp, err := p.client.MergeRequests.ListProjectMergeRequests(repo, opts, gitlab.WithContext(ctx))
		if err != nil {
			return nil, p.mapError(err, resp, "failed to list merge requests")
		}

		for _, mr := range mrs {
			updated := lang.Deref(mr.UpdatedAt)
			if updated.Before(since) || !updated.Before(until) {
				continue
			}

			author := "?"
			if mr.Author != nil {
				author = lang.Check(mr.Author.Username, mr.Author.Name)
			}

			result = append(result, model.PullRequest{
				Number:    mr.IID,
				Title:     mr.Title,
				State:     mr.State,
				Author:    author,
				UpdatedAt: updated,
				MergedAt:  lang.Deref(mr.MergedAt),
			})
		}

		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return result, nil
}

// ListRepositories retrieves projects the authenticated user is a member of
func (p *Provider) ListRepositories(ctx context.Context) ([]model.Repository, error) {
	membership := true
	orderBy := "last_activity_at"

	opts := &gitlab.ListProjectsOptions{
		Membership:  &membership,
		OrderBy:     &orderBy,
		ListOptions: gitlab.ListOptions{PerPage: p.config.PageSize},
	}

	projects, resp, err := p.client.Projects.ListProjects(opts, gitlab.WithContext(ctx))
	if err != nil {
		return nil, p.mapError(err, resp, "failed to list projects")
	}

	result := make([]model.Repository, 0, len(projects))
	for _, project := range projects {
		result = append(result, model.Repository{
			FullName:      project.PathWithNamespace,
			Description:   project.Description,
			DefaultBranch: project.DefaultBranch,
			IsPrivate:     project.Visibility == gitlab.PrivateVisibility,
			UpdatedAt:     lang.Deref(project.LastActivityAt),
		})
	}

	return result, nil
}

// CountContributors returns the number of project contributors
func (p *Provider) CountContributors(ctx context.Context, repo string) (int, error) {
	opts := &gitlab.ListContributorsOptions{
		ListOptions: gitlab.ListOptions{PerPage: p.config.PageSize},
	}

	contributors, resp, err := p.client.Repositories.Contributors(repo, opts, gitlab.WithContext(ctx))
	if err != nil {
		return 0, p.mapError(err, resp, "failed to list contributors")
	}

	return len(contributors), nil
}

// CloneURL builds an authenticated clone URL for the project
func (p *Provider) CloneURL(repo string) string {
	host := strings.TrimPrefix(lang.Check(p.config.BaseURL, defaultBaseURL), "https://")
	return fmt.Sprintf("https://oauth2:%s@%s/%s.git", p.config.Token, host, repo)
}

// mapError converts client-go errors to the provider error taxonomy
func (p *Provider) mapError(err error, resp *gitlab.Response, msg string) error {
	if resp != nil {
		switch resp.StatusCode {
		case http.StatusNotFound:
			return fmt.Errorf("%w: %s", model.ErrRepositoryNotFound, msg)
		case http.StatusTooManyRequests:
			return fmt.Errorf("%w: %s: %v", model.ErrRateLimited, msg, err)
		}
	}
	return fmt.Errorf("%w: %s: %v", model.ErrUpstreamUnavailable, msg, err)
}
