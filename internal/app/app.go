package app

import (
	"context"

	"github.com/maxbolgarin/contem"
	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/logze/v2"

	"github.com/maxbolgarin/taskry/internal/clone"
	"github.com/maxbolgarin/taskry/internal/config"
	"github.com/maxbolgarin/taskry/internal/generator"
	"github.com/maxbolgarin/taskry/internal/model"
	"github.com/maxbolgarin/taskry/internal/model/interfaces"
	"github.com/maxbolgarin/taskry/internal/provider"
	"github.com/maxbolgarin/taskry/internal/server"
	"github.com/maxbolgarin/taskry/internal/summary"
)

// Taskry is the main service that wires all components together
type Taskry struct {
	provider   interfaces.ActivityProvider
	collector  interfaces.ActivityCollector
	generator  interfaces.TaskGenerator
	workspace  *clone.Manager
	summarizer *summary.Service
	apiServer  *server.Server

	cfg config.Config
	log logze.Logger
}

// New creates a new summarization service
func New(ctx contem.Context, cfg config.Config) (*Taskry, error) {
	service := &Taskry{
		cfg: cfg,
		log: logze.With("component", "app"),
	}

	if err := service.init(ctx, cfg); err != nil {
		return nil, errm.Wrap(err, "failed to initialize service")
	}

	return service, nil
}

// StartServer launches the job janitor and the HTTP API
func (s *Taskry) StartServer(ctx context.Context) error {
	s.summarizer.Start(ctx)

	if err := s.apiServer.Start(ctx); err != nil {
		return errm.Wrap(err, "failed to start server")
	}

	s.log.Info("server started", "address", s.cfg.Server.Address)
	return nil
}

// SummarizeOnce runs a single blocking summarization, used by the one-shot
// CLI mode
func (s *Taskry) SummarizeOnce(ctx context.Context, repo string, window model.Window) (*model.SummaryResult, error) {
	result, err := s.summarizer.Summarize(ctx, repo, window)
	if err != nil {
		return nil, errm.Wrap(err, "failed to summarize repository")
	}
	return result, nil
}

func (s *Taskry) init(ctx contem.Context, cfg config.Config) (err error) {

	// Create VCS provider and the aggregating collector on top of it
	s.provider, err = provider.NewProvider(cfg.Provider)
	if err != nil {
		return errm.Wrap(err, "failed to create VCS provider")
	}
	s.collector = provider.NewCollector(s.provider, cfg.Provider)

	// Create generation backend
	s.generator, err = generator.New(ctx, cfg.Generator)
	if err != nil {
		return errm.Wrap(err, "failed to create generator")
	}

	// Create clone cache for the subprocess backend
	s.workspace, err = clone.NewManager(cfg.Clone)
	if err != nil {
		return errm.Wrap(err, "failed to create clone manager")
	}

	// Create job orchestrator - this is the central pipeline
	s.summarizer, err = summary.NewService(cfg.Summary, s.collector, s.generator, s.workspace, s.provider)
	if err != nil {
		return errm.Wrap(err, "failed to create summary service")
	}
	ctx.Add(func(context.Context) error {
		s.summarizer.Stop()
		return nil
	})

	// Create API server - just a front for the orchestrator
	s.apiServer, err = server.New(cfg.Server, s.summarizer, s.collector, s.provider)
	if err != nil {
		return errm.Wrap(err, "failed to create server")
	}
	ctx.Add(s.apiServer.Stop)

	return nil
}
