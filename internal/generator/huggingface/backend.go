package huggingface

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/maxbolgarin/cliex"
	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/lang"
	"github.com/maxbolgarin/taskry/internal/model"
	"github.com/maxbolgarin/taskry/internal/model/interfaces"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	defaultModel = "mistralai/Mistral-7B-Instruct-v0.2"

	// The old api-inference endpoint is deprecated, the router hosts the
	// Responses API now
	defaultURL = "https://router.huggingface.co/v1/responses"
)

var _ interfaces.GeneratorAPI = (*Backend)(nil)

// Backend implements the GeneratorAPI interface using the Hugging Face
// router Responses API
type Backend struct {
	cli *cliex.HTTP
	cfg model.BackendConfig
}

// New creates a new Hugging Face backend
func New(ctx context.Context, cli *cliex.HTTP, config model.BackendConfig) (*Backend, error) {
	if config.APIKey == "" {
		return nil, errm.New("Hugging Face token is required")
	}
	config.Model = lang.Check(config.Model, defaultModel)
	config.URL = lang.Check(config.URL, defaultURL)

	cli.C().SetAuthToken(config.APIKey)

	backend := &Backend{
		cli: cli,
		cfg: config,
	}

	// Test connection if needed (may take tokens)
	if config.IsTest {
		if err := backend.testConnection(ctx); err != nil {
			return nil, errm.Wrap(err, "failed to connect to Hugging Face API")
		}
	}

	return backend, nil
}

// Generate makes a request to the Responses API
func (b *Backend) Generate(ctx context.Context, req model.BackendRequest) (model.BackendResponse, error) {
	reqBody := responsesRequest{
		Model:        b.cfg.Model,
		Instructions: req.Instructions,
		Input:        req.Input,
	}

	resp, err := b.cli.Post(ctx, b.cfg.URL, reqBody)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return model.BackendResponse{}, fmt.Errorf("%w: %v", model.ErrBackendTimeout, err)
		}
		return model.BackendResponse{}, fmt.Errorf("%w: %v", model.ErrBackendUnavailable, err)
	}

	var data any
	if err := json.Unmarshal(resp.Body(), &data); err != nil {
		return model.BackendResponse{}, fmt.Errorf("%w: invalid JSON in response: %v", model.ErrBackendProtocolError, err)
	}

	content := extractText(data)
	if content == "" {
		return model.BackendResponse{}, fmt.Errorf("%w: no output text in response", model.ErrBackendProtocolError)
	}

	return model.BackendResponse{
		CreateTime: time.Now(),
		Content:    content,
	}, nil
}

// testConnection checks that the model responds at all
func (b *Backend) testConnection(ctx context.Context) error {
	_, err := b.Generate(ctx, model.BackendRequest{
		Input: "Respond with 'OK' if you can understand this message.",
	})
	if err != nil {
		return errm.Wrap(err, "connection test failed")
	}
	return nil
}

// extractText digs the output text out of a Responses API payload. The
// router returns different shapes depending on model and routing, all of
// the known ones are handled here.
func extractText(data any) string {
	switch v := data.(type) {
	case []any:
		// A bare list of output items
		var parts []string
		for _, item := range v {
			fields, ok := item.(map[string]any)
			if !ok || fields["type"] != "output_text" {
				continue
			}
			if t := joinText(fields["text"]); t != "" {
				parts = append(parts, t)
			}
		}
		return strings.TrimSpace(strings.Join(parts, "\n\n"))
	case map[string]any:
		return extractFromObject(v)
	}
	return ""
}

func extractFromObject(data map[string]any) string {
	// Top-level output_text first
	if t := joinText(data["output_text"]); t != "" {
		return t
	}

	// A single output item at the top level
	if data["type"] == "output_text" {
		if t := joinText(data["text"]); t != "" {
			return t
		}
	}

	// output[] items, each carrying content as a string or a list of parts
	if output, ok := data["output"].([]any); ok {
		var parts []string
		for _, item := range output {
			switch item := item.(type) {
			case string:
				parts = append(parts, item)
			case map[string]any:
				content := item["content"]
				if content == nil {
					content = item["text"]
				}
				switch content := content.(type) {
				case string:
					parts = append(parts, content)
				case []any:
					for _, part := range content {
						switch part := part.(type) {
						case string:
							parts = append(parts, part)
						case map[string]any:
							if t := joinText(part["text"]); t != "" {
								parts = append(parts, t)
							} else if t := joinText(part["content"]); t != "" {
								parts = append(parts, t)
							}
						}
					}
				}
			}
		}
		if joined := strings.TrimSpace(strings.Join(parts, "\n\n")); joined != "" {
			return joined
		}
	}

	// OpenAI-style choices as the last known shape
	if choices, ok := data["choices"].([]any); ok && len(choices) > 0 {
		if choice, ok := choices[0].(map[string]any); ok {
			message, ok := choice["message"].(map[string]any)
			if !ok {
				message = choice
			}
			if t := joinText(message["content"]); t != "" {
				return t
			}
			if t := joinText(message["text"]); t != "" {
				return t
			}
		}
	}

	return ""
}

// joinText flattens a string or a list of strings into one trimmed string
func joinText(value any) string {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				parts = append(parts, s)
			} else if item != nil {
				parts = append(parts, fmt.Sprint(item))
			}
		}
		return strings.TrimSpace(strings.Join(parts, " "))
	}
	return ""
}
