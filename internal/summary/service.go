package summary

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/maxbolgarin/abstract"
	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/logze/v2"
	"github.com/panjf2000/ants/v2"

	"github.com/maxbolgarin/taskry/internal/generator"
	"github.com/maxbolgarin/taskry/internal/model"
	"github.com/maxbolgarin/taskry/internal/model/interfaces"
	"github.com/maxbolgarin/taskry/internal/tasks"
)

var _ interfaces.Summarizer = (*Service)(nil)

// job is the internal record behind a token, all fields except live are
// guarded by Service.jobsMu
type job struct {
	id         string
	repository string
	window     model.Window
	state      model.JobState
	live       *liveBuffer
	result     *model.SummaryResult
	err        string
	createdAt  time.Time
	finishedAt time.Time
}

// Service runs summarization jobs over a worker pool and keeps their state
// pollable until eviction
type Service struct {
	cfg       Config
	collector interfaces.ActivityCollector
	generator interfaces.TaskGenerator
	workspace interfaces.WorkspaceManager
	provider  interfaces.ActivityProvider
	logger    logze.Logger

	pool  *ants.Pool
	cache *resultCache

	jobs   map[string]*job
	jobsMu sync.RWMutex
}

// NewService creates a new summarization service
func NewService(
	cfg Config,
	collector interfaces.ActivityCollector,
	gen interfaces.TaskGenerator,
	workspace interfaces.WorkspaceManager,
	provider interfaces.ActivityProvider,
) (*Service, error) {
	if err := cfg.PrepareAndValidate(); err != nil {
		return nil, errm.Wrap(err, "prepare config")
	}

	logger := logze.With("component", "summary")

	pool, err := ants.NewPool(cfg.Workers)
	if err != nil {
		return nil, errm.Wrap(err, "failed to create ants pool")
	}

	cache, err := newResultCache(cfg.CacheDir, logger)
	if err != nil {
		return nil, errm.Wrap(err, "failed to create result cache")
	}

	return &Service{
		cfg:       cfg,
		collector: collector,
		generator: gen,
		workspace: workspace,
		provider:  provider,
		logger:    logger,
		pool:      pool,
		cache:     cache,
		jobs:      make(map[string]*job),
	}, nil
}

// Start launches the eviction janitor, it stops when ctx is canceled
func (s *Service) Start(ctx context.Context) {
	go s.janitor(ctx)
}

// Stop releases the worker pool, running jobs finish on their own timeouts
func (s *Service) Stop() {
	s.pool.Release()
}

// Submit queues a summarization job and returns its token. Two submissions
// for the same repository and window are two independent jobs.
func (s *Service) Submit(repo string, window model.Window) (string, error) {
	j := s.newJob(repo, window)

	err := s.pool.Submit(func() {
		s.run(context.Background(), j)
	})
	if err != nil {
		s.dropJob(j.id)
		return "", errm.Wrap(err, "failed to submit job")
	}

	s.logger.Info("job submitted", "job_id", j.id, "repository", repo, "window", window)
	return j.id, nil
}

// Poll returns the current state of a job
func (s *Service) Poll(jobID string) (model.JobStatus, error) {
	s.jobsMu.RLock()
	defer s.jobsMu.RUnlock()

	j, ok := s.jobs[jobID]
	if !ok {
		return model.JobStatus{}, fmt.Errorf("%w: %s", model.ErrJobNotFound, jobID)
	}

	return model.JobStatus{
		ID:         j.id,
		Repository: j.repository,
		Window:     j.window,
		State:      j.state,
		LiveOutput: j.live.String(),
		Result:     j.result,
		Error:      j.err,
		CreatedAt:  j.createdAt,
		FinishedAt: j.finishedAt,
	}, nil
}

// Summarize runs the pipeline inline and blocks until the result is ready.
// The run is still recorded as a job so it shows up in polling.
func (s *Service) Summarize(ctx context.Context, repo string, window model.Window) (*model.SummaryResult, error) {
	j := s.newJob(repo, window)

	result, err := s.execute(ctx, j)
	if err != nil {
		s.failJob(j.id, err)
		return nil, err
	}

	s.succeedJob(j.id, result)
	return result, nil
}

// run is the worker body of an async job
func (s *Service) run(ctx context.Context, j *job) {
	log := s.logger.WithFields("job_id", j.id, "repository", j.repository, "window", j.window)
	timer := abstract.StartTimer()

	result, err := s.execute(ctx, j)
	if err != nil {
		s.failJob(j.id, err)
		log.Err(err, "job failed", "elapsed", timer.ElapsedTime().String())
		return
	}

	s.succeedJob(j.id, result)
	log.Info("job finished", "tasks", len(result.Tasks), "elapsed", timer.ElapsedTime().String())
}

// execute runs the summarization pipeline for one job
func (s *Service) execute(ctx context.Context, j *job) (*model.SummaryResult, error) {
	since, until := j.window.Bounds(time.Now().UTC())

	snapshot, err := s.collector.Collect(ctx, j.repository, since, until)
	if err != nil {
		return nil, errm.Wrap(err, "failed to collect activity")
	}

	key := cacheKey(j.repository, j.window, Fingerprint(snapshot))
	if cached := s.cache.Get(key); cached != nil {
		s.logger.Info("result cache hit", "job_id", j.id, "repository", j.repository)
		return cached, nil
	}

	req := model.GenerateRequest{
		Repository:   j.repository,
		WindowLabel:  j.window.Label(),
		Since:        snapshot.Since,
		Until:        snapshot.Until,
		ActivityText: generator.RenderActivity(snapshot),
		Output:       j.live.Append,
	}

	if s.generator.RequiresWorkspace() {
		s.setJobState(j.id, model.JobStateRunningSubprocess)

		path, err := s.workspace.EnsureCloned(ctx, j.repository, s.provider.CloneURL(j.repository))
		if err != nil {
			return nil, errm.Wrap(err, "failed to prepare workspace")
		}
		req.ClonePath = path
		req.GitLog = s.workspace.Log(ctx, path, since, until)
	} else {
		s.setJobState(j.id, model.JobStateRunningGeneration)
	}

	raw, err := s.generator.GenerateTasks(ctx, req)
	if err != nil {
		return nil, errm.Wrap(err, "failed to generate tasks")
	}

	extracted := tasks.Extract(raw)

	result := &model.SummaryResult{
		Repository: j.repository,
		Window:     j.window,
		Since:      snapshot.Since,
		Until:      snapshot.Until,
		Tasks:      extracted,
		Activity:   snapshot,
	}
	if len(extracted) > 0 {
		result.Summary = extracted[0].Description
	}

	s.cache.Put(key, result)

	return result, nil
}

// janitor periodically evicts expired terminal jobs
func (s *Service) janitor(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.EvictInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.evictExpired(time.Now())
		}
	}
}

// evictExpired drops terminal jobs past the retention period
func (s *Service) evictExpired(now time.Time) int {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()

	evicted := 0
	for id, j := range s.jobs {
		if j.state.IsTerminal() && now.Sub(j.finishedAt) > s.cfg.Retention {
			delete(s.jobs, id)
			evicted++
		}
	}
	if evicted > 0 {
		s.logger.Debug("evicted finished jobs", "count", evicted)
	}

	return evicted
}

func (s *Service) newJob(repo string, window model.Window) *job {
	j := &job{
		id:         uuid.New().String(),
		repository: repo,
		window:     window,
		state:      model.JobStateQueued,
		live:       newLiveBuffer(s.cfg.LiveOutputMaxChars),
		createdAt:  time.Now(),
	}

	s.jobsMu.Lock()
	s.jobs[j.id] = j
	s.jobsMu.Unlock()

	return j
}

func (s *Service) dropJob(id string) {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()
	delete(s.jobs, id)
}

func (s *Service) setJobState(id string, state model.JobState) {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()
	if j, ok := s.jobs[id]; ok {
		j.state = state
	}
}

func (s *Service) succeedJob(id string, result *model.SummaryResult) {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()
	if j, ok := s.jobs[id]; ok {
		j.state = model.JobStateSucceeded
		j.result = result
		j.finishedAt = time.Now()
	}
}

func (s *Service) failJob(id string, err error) {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()
	if j, ok := s.jobs[id]; ok {
		j.state = model.JobStateFailed
		j.err = err.Error()
		j.finishedAt = time.Now()
	}
}
