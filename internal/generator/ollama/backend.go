package ollama

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/maxbolgarin/cliex"
	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/lang"
	"github.com/maxbolgarin/taskry/internal/model"
	"github.com/maxbolgarin/taskry/internal/model/interfaces"
)

const (
	defaultModel = "llama3.2"
	defaultURL   = "http://localhost:11434"
)

var _ interfaces.GeneratorAPI = (*Backend)(nil)

// Backend implements the GeneratorAPI interface using the Ollama API
type Backend struct {
	cli *cliex.HTTP
	cfg model.BackendConfig
}

// New creates a new Ollama backend
func New(ctx context.Context, cli *cliex.HTTP, config model.BackendConfig) (*Backend, error) {
	config.Model = lang.Check(config.Model, defaultModel)
	config.URL = strings.TrimSuffix(lang.Check(config.URL, defaultURL), "/")

	backend := &Backend{
		cli: cli,
		cfg: config,
	}

	// Test connection if needed (may take tokens)
	if config.IsTest {
		if err := backend.testConnection(ctx); err != nil {
			return nil, errm.Wrap(err, "failed to connect to Ollama")
		}
	}

	return backend, nil
}

// Generate makes a request to the Ollama generate API. Instructions and
// input travel as a single prompt, the generate endpoint has no separate
// system slot in the non-chat mode used here.
func (b *Backend) Generate(ctx context.Context, req model.BackendRequest) (model.BackendResponse, error) {
	prompt := req.Input
	if req.Instructions != "" {
		prompt = req.Instructions + "\n\n" + req.Input
	}

	reqBody := generateRequest{
		Model:  b.cfg.Model,
		Prompt: prompt,
		Stream: false,
	}
	if req.Temperature > 0 {
		reqBody.Options = &generateOptions{
			Temperature: req.Temperature,
			NumPredict:  req.MaxTokens,
		}
	}

	var respBody generateResponse
	_, err := b.cli.Post(ctx, b.cfg.URL+"/api/generate", reqBody, &respBody)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return model.BackendResponse{}, fmt.Errorf("%w: %v", model.ErrBackendTimeout, err)
		}
		return model.BackendResponse{}, fmt.Errorf("%w: %v", model.ErrBackendUnavailable, err)
	}

	createdAt, _ := time.Parse(time.RFC3339, respBody.CreatedAt)

	return model.BackendResponse{
		CreateTime:       createdAt,
		Content:          strings.TrimSpace(respBody.Response),
		PromptTokens:     respBody.PromptEvalCount,
		CompletionTokens: respBody.EvalCount,
		TotalTokens:      respBody.PromptEvalCount + respBody.EvalCount,
	}, nil
}

// testConnection checks that the model responds at all
func (b *Backend) testConnection(ctx context.Context) error {
	_, err := b.Generate(ctx, model.BackendRequest{
		Input:     "Respond with 'OK' if you can understand this message.",
		MaxTokens: 10,
	})
	if err != nil {
		return errm.Wrap(err, "connection test failed")
	}
	return nil
}
