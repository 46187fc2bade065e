package interfaces

import (
	"context"
	"time"

	"github.com/maxbolgarin/taskry/internal/model"
)

// ActivityProvider defines the interface for different VCS providers (GitHub, GitLab, etc.)
type ActivityProvider interface {
	// Repository metadata
	GetDefaultBranch(ctx context.Context, repo string) (string, error)
	ListBranches(ctx context.Context, repo string, limit int) ([]model.Branch, error)

	// Activity in the half-open window [since, until)
	ListCommits(ctx context.Context, repo, branch string, since, until time.Time) ([]model.Commit, error)
	ListPullRequests(ctx context.Context, repo string, since, until time.Time) ([]model.PullRequest, error)

	// Account-level operations
	ListRepositories(ctx context.Context) ([]model.Repository, error)
	CountContributors(ctx context.Context, repo string) (int, error)

	// CloneURL builds an authenticated clone URL for the repository
	CloneURL(repo string) string
}

// GeneratorAPI defines the interface for calling a single generation backend
type GeneratorAPI interface {
	Generate(ctx context.Context, req model.BackendRequest) (model.BackendResponse, error)
}

// ActivityCollector aggregates repository activity into a snapshot
type ActivityCollector interface {
	Collect(ctx context.Context, repo string, since, until time.Time) (*model.ActivitySnapshot, error)
}

// TaskGenerator produces raw task text for repository activity
type TaskGenerator interface {
	GenerateTasks(ctx context.Context, req model.GenerateRequest) (string, error)

	// RequiresWorkspace reports whether the backend needs a local clone
	RequiresWorkspace() bool
}

// WorkspaceManager maintains local repository clones for subprocess generation
type WorkspaceManager interface {
	EnsureCloned(ctx context.Context, repo, cloneURL string) (string, error)
	Log(ctx context.Context, path string, since, until time.Time) string
}

// Summarizer runs summarization jobs and exposes their state
type Summarizer interface {
	Submit(repo string, window model.Window) (string, error)
	Poll(jobID string) (model.JobStatus, error)
	Summarize(ctx context.Context, repo string, window model.Window) (*model.SummaryResult, error)
}
