package generator

import (
	"context"

	"github.com/maxbolgarin/cliex"
	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/logze/v2"
	"github.com/maxbolgarin/taskry/internal/generator/agentcli"
	"github.com/maxbolgarin/taskry/internal/generator/gemini"
	"github.com/maxbolgarin/taskry/internal/generator/huggingface"
	"github.com/maxbolgarin/taskry/internal/generator/ollama"
	"github.com/maxbolgarin/taskry/internal/generator/prompts"
	"github.com/maxbolgarin/taskry/internal/model"
	"github.com/maxbolgarin/taskry/internal/model/interfaces"
)

var _ interfaces.TaskGenerator = (*Generator)(nil)

// Generator turns repository activity into a raw task list response using
// the configured backend
type Generator struct {
	cfg    Config
	logger logze.Logger
	pb     *prompts.Builder
	api    interfaces.GeneratorAPI
}

// New creates a new generator with the configured backend
func New(ctx context.Context, cfg Config) (*Generator, error) {
	if err := cfg.PrepareAndValidate(); err != nil {
		return nil, errm.Wrap(err, "validate config")
	}
	cli, err := cliex.NewWithConfig(cliex.Config{
		BaseURL:        cfg.BaseURL,
		UserAgent:      cfg.UserAgent,
		ProxyAddress:   cfg.ProxyURL,
		RequestTimeout: cfg.Timeout,
	})
	if err != nil {
		return nil, errm.Wrap(err, "failed to create HTTP client")
	}

	gen := &Generator{
		cfg:    cfg,
		logger: logze.Default(),
		pb:     prompts.NewBuilder(),
	}

	backendCfg := model.BackendConfig{
		APIKey:    cfg.APIKey,
		Model:     cfg.Model,
		URL:       cfg.BaseURL,
		ProxyURL:  cfg.ProxyURL,
		IsTest:    cfg.IsTest,
		Commands:  cfg.Commands,
		KeyEnvVar: cfg.KeyEnvVar,
		Timeout:   cfg.SubprocessTimeout,
	}

	switch cfg.Type {
	case Ollama:
		gen.api, err = ollama.New(ctx, cli, backendCfg)
	case HuggingFace:
		gen.api, err = huggingface.New(ctx, cli, backendCfg)
	case Gemini:
		gen.api, err = gemini.New(ctx, backendCfg)
	case AgentCLI:
		gen.api, err = agentcli.New(ctx, backendCfg)
	default:
		return nil, errm.Errorf("unsupported backend type: %s", cfg.Type)
	}
	if err != nil {
		return nil, errm.Wrap(err, "failed to create backend")
	}

	return gen, nil
}

// GenerateTasks produces the raw task list response for repository activity.
// HTTP backends get the rendered activity text, the subprocess backend gets
// a workspace prompt and runs inside the clone.
func (g *Generator) GenerateTasks(ctx context.Context, req model.GenerateRequest) (string, error) {
	var prompt model.Prompt
	if g.RequiresWorkspace() {
		prompt = g.pb.BuildWorkspacePrompt(req)
	} else {
		prompt = g.pb.BuildTasksPrompt(req)
	}

	response, err := g.api.Generate(ctx, model.BackendRequest{
		Instructions: prompt.SystemPrompt,
		Input:        prompt.UserPrompt,
		MaxTokens:    g.cfg.MaxTokens,
		Temperature:  g.cfg.Temperature,
		ResponseType: "application/json",
		WorkDir:      req.ClonePath,
		Output:       req.Output,
	})
	if err != nil {
		return "", errm.Wrap(err, "failed to call backend")
	}

	if response.Content == "" {
		return "", errm.New("empty response from backend")
	}

	return response.Content, nil
}

// RequiresWorkspace reports whether the backend needs a repository clone
func (g *Generator) RequiresWorkspace() bool {
	return g.cfg.Type == AgentCLI
}
