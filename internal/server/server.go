package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	jsoniter "github.com/json-iterator/go"
	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/erro"
	"github.com/maxbolgarin/lang"
	"github.com/maxbolgarin/logze/v2"
	"github.com/maxbolgarin/servex/v2"

	"github.com/maxbolgarin/taskry/internal/model"
	"github.com/maxbolgarin/taskry/internal/model/interfaces"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Server exposes the summarization API
type Server struct {
	summarizer interfaces.Summarizer
	collector  interfaces.ActivityCollector
	provider   interfaces.ActivityProvider
	config     Config
	log        logze.Logger
	server     *servex.Server
}

type summarizeRequest struct {
	Repository string `json:"repository"`
	Window     string `json:"window"`
}

type submitResponse struct {
	JobID string `json:"job_id"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// New creates a new API server
func New(cfg Config, summarizer interfaces.Summarizer, collector interfaces.ActivityCollector, provider interfaces.ActivityProvider) (*Server, error) {
	if err := cfg.PrepareAndValidate(); err != nil {
		return nil, erro.Wrap(err, "validate config")
	}

	log := logze.With("module", "server")

	server, err := servex.NewServer(
		servex.WithReadTimeout(cfg.Timeout),
		servex.WithIdleTimeout(cfg.Timeout*2),
		servex.WithLogger(log),
		servex.WithHealthEndpoint(),
		servex.WithDefaultMetrics(),
		servex.WithCertificate(cfg.Certificate),
	)
	if err != nil {
		return nil, erro.Wrap(err, "failed to create server")
	}

	h := &Server{
		summarizer: summarizer,
		collector:  collector,
		provider:   provider,
		config:     cfg,
		log:        log,
		server:     server,
	}

	server.HandleFunc("/api/v1/summarize", h.handleSummarize)
	server.HandleFunc("/api/v1/jobs/{id}", h.handleJob)
	server.HandleFunc("/api/v1/activity/{owner}/{repo}", h.handleActivity)
	server.HandleFunc("/api/v1/repos", h.handleRepos)

	return h, nil
}

// Start starts the API server
func (h *Server) Start(ctx context.Context) error {
	if h.config.EnableHTTPS {
		return h.server.StartHTTPS(h.config.Address)
	}
	return h.server.StartHTTP(h.config.Address)
}

// Stop stops the API server
func (h *Server) Stop(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}

// handleSummarize starts a job on POST and runs the pipeline inline on GET
func (h *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	ctx := servex.NewContext(w, r)

	switch r.Method {
	case http.MethodPost:
		h.submitJob(ctx)
	case http.MethodGet:
		h.summarizeBlocking(ctx, r)
	default:
		ctx.Response(http.StatusMethodNotAllowed)
	}
}

func (h *Server) submitJob(ctx *servex.Context) {
	body, err := ctx.Read()
	if err != nil {
		ctx.BadRequest(err, "failed to read request body")
		return
	}

	var req summarizeRequest
	if err := json.Unmarshal(body, &req); err != nil {
		ctx.BadRequest(err, "failed to parse request body")
		return
	}
	if req.Repository == "" {
		ctx.BadRequest(errm.New("repository is required"), "repository is required")
		return
	}

	window, err := model.ParseWindow(lang.Check(req.Window, string(model.WindowWeek)))
	if err != nil {
		ctx.BadRequest(err, "unsupported window")
		return
	}

	jobID, err := h.summarizer.Submit(req.Repository, window)
	if err != nil {
		ctx.InternalServerError(err, "failed to submit job")
		return
	}

	h.log.Info("job submitted", "job_id", jobID, "repository", req.Repository, "window", window)
	ctx.Response(http.StatusAccepted, submitResponse{JobID: jobID})
}

func (h *Server) summarizeBlocking(ctx *servex.Context, r *http.Request) {
	repo := r.URL.Query().Get("repository")
	if repo == "" {
		ctx.BadRequest(errm.New("repository query parameter is required"), "repository query parameter is required")
		return
	}

	window, err := model.ParseWindow(lang.Check(r.URL.Query().Get("window"), string(model.WindowWeek)))
	if err != nil {
		ctx.BadRequest(err, "unsupported window")
		return
	}

	result, err := h.summarizer.Summarize(ctx, repo, window)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	ctx.Response(http.StatusOK, result)
}

// handleJob returns the current state of a job
func (h *Server) handleJob(w http.ResponseWriter, r *http.Request) {
	ctx := servex.NewContext(w, r)
	if r.Method != http.MethodGet {
		ctx.Response(http.StatusMethodNotAllowed)
		return
	}

	status, err := h.summarizer.Poll(mux.Vars(r)["id"])
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	ctx.Response(http.StatusOK, status)
}

// handleActivity returns the raw deduplicated snapshot without generation
func (h *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	ctx := servex.NewContext(w, r)
	if r.Method != http.MethodGet {
		ctx.Response(http.StatusMethodNotAllowed)
		return
	}

	vars := mux.Vars(r)
	repo := vars["owner"] + "/" + vars["repo"]

	window, err := model.ParseWindow(lang.Check(r.URL.Query().Get("window"), string(model.WindowWeek)))
	if err != nil {
		ctx.BadRequest(err, "unsupported window")
		return
	}

	since, until := window.Bounds(time.Now().UTC())
	snapshot, err := h.collector.Collect(ctx, repo, since, until)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	ctx.Response(http.StatusOK, snapshot)
}

// handleRepos lists repositories visible to the configured token
func (h *Server) handleRepos(w http.ResponseWriter, r *http.Request) {
	ctx := servex.NewContext(w, r)
	if r.Method != http.MethodGet {
		ctx.Response(http.StatusMethodNotAllowed)
		return
	}

	repos, err := h.provider.ListRepositories(ctx)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	if r.URL.Query().Get("multi_contributor") == "true" {
		repos = h.filterMultiContributor(ctx, repos)
	}

	ctx.Response(http.StatusOK, repos)
}

// filterMultiContributor keeps repositories with at least two recent authors.
// Count failures drop the repository rather than the whole listing.
func (h *Server) filterMultiContributor(ctx context.Context, repos []model.Repository) []model.Repository {
	filtered := make([]model.Repository, 0, len(repos))
	for _, repo := range repos {
		count, err := h.provider.CountContributors(ctx, repo.FullName)
		if err != nil {
			h.log.Err(err, "failed to count contributors", "repository", repo.FullName)
			continue
		}
		if count >= 2 {
			filtered = append(filtered, repo)
		}
	}
	return filtered
}

// respondError maps pipeline errors onto API status codes
func (h *Server) respondError(ctx *servex.Context, err error) {
	switch {
	case errm.Is(err, model.ErrJobNotFound), errm.Is(err, model.ErrRepositoryNotFound):
		ctx.Response(http.StatusNotFound, errorResponse{Error: err.Error()})
	case errm.Is(err, model.ErrRateLimited):
		ctx.Response(http.StatusTooManyRequests, errorResponse{Error: err.Error()})
	case errm.Is(err, model.ErrUpstreamUnavailable),
		errm.Is(err, model.ErrCloneFailed),
		errm.Is(err, model.ErrLockTimeout),
		errm.Is(err, model.ErrBackendUnavailable),
		errm.Is(err, model.ErrBackendTimeout),
		errm.Is(err, model.ErrBackendProtocolError):
		ctx.Response(http.StatusBadGateway, errorResponse{Error: err.Error()})
	default:
		ctx.InternalServerError(err, "request failed")
	}
}
