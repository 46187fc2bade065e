package clone

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/logze/v2"
	"github.com/maxbolgarin/taskry/internal/model"
	"github.com/maxbolgarin/taskry/internal/model/interfaces"
	"golang.org/x/sync/semaphore"
)

var _ interfaces.WorkspaceManager = (*Manager)(nil)

// Manager keeps working clones of repositories under a cache directory.
// Every repository has its own lease so two jobs never run git against
// the same clone at the same time.
type Manager struct {
	cfg    Config
	logger logze.Logger

	mu     sync.Mutex
	leases map[string]*semaphore.Weighted
}

// NewManager creates a new clone manager
func NewManager(cfg Config) (*Manager, error) {
	if err := cfg.PrepareAndValidate(); err != nil {
		return nil, errm.Wrap(err, "validate config")
	}
	if err := os.MkdirAll(cfg.CacheDir, 0755); err != nil {
		return nil, errm.Wrap(err, "failed to create cache directory")
	}

	return &Manager{
		cfg:    cfg,
		logger: logze.With("component", "clone"),
		leases: make(map[string]*semaphore.Weighted),
	}, nil
}

// EnsureCloned brings a working clone of the repository up to date and
// returns its path. The lease is held only while git runs and is released
// before the caller starts reading the clone.
func (m *Manager) EnsureCloned(ctx context.Context, repo, cloneURL string) (string, error) {
	lease := m.lease(repo)

	leaseCtx, leaseCancel := context.WithTimeout(ctx, m.cfg.LockTimeout)
	defer leaseCancel()
	if err := lease.Acquire(leaseCtx, 1); err != nil {
		return "", fmt.Errorf("%w: repository %s", model.ErrLockTimeout, repo)
	}
	defer lease.Release(1)

	path := filepath.Join(m.cfg.CacheDir, sanitizeRepoName(repo))

	gitCtx, gitCancel := context.WithTimeout(ctx, m.cfg.CloneTimeout)
	defer gitCancel()

	if _, err := os.Stat(filepath.Join(path, ".git")); os.IsNotExist(err) {
		cmd := exec.CommandContext(gitCtx, "git", "clone", "--no-single-branch", cloneURL, path)
		if output, err := cmd.CombinedOutput(); err != nil {
			return "", fmt.Errorf("%w: %v: %s", model.ErrCloneFailed, err, output)
		}
		m.logger.Info("cloned repository", "repo", repo, "path", path)
		return path, nil
	}

	// A stale clone is still usable, fetch failures only get logged
	cmd := exec.CommandContext(gitCtx, "git", "fetch", "origin", "--prune")
	cmd.Dir = path
	if output, err := cmd.CombinedOutput(); err != nil {
		m.logger.Warn("failed to fetch repository, using cached clone",
			"repo", repo, "error", err.Error(), "output", string(output))
	}

	return path, nil
}

// lease returns the semaphore guarding a repository clone
func (m *Manager) lease(repo string) *semaphore.Weighted {
	m.mu.Lock()
	defer m.mu.Unlock()

	lease, ok := m.leases[repo]
	if !ok {
		lease = semaphore.NewWeighted(1)
		m.leases[repo] = lease
	}
	return lease
}

// sanitizeRepoName flattens a repository name into a single directory name
func sanitizeRepoName(repo string) string {
	var b strings.Builder
	b.Grow(len(repo))
	for _, r := range repo {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
