package gemini

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/maxbolgarin/erro"
	"github.com/maxbolgarin/lang"
	"github.com/maxbolgarin/taskry/internal/model"
	"github.com/maxbolgarin/taskry/internal/model/interfaces"
	"google.golang.org/genai"
)

const (
	defaultModel = "gemini-2.5-flash"
)

var _ interfaces.GeneratorAPI = (*Backend)(nil)

// Backend implements the GeneratorAPI interface for Google Gemini
type Backend struct {
	client *genai.Client
	config model.BackendConfig
}

// New creates a new Gemini backend
func New(ctx context.Context, cfg model.BackendConfig) (*Backend, error) {
	if cfg.APIKey == "" {
		return nil, erro.New("Gemini API key is required")
	}
	cfg.Model = lang.Check(cfg.Model, defaultModel)

	transport := &http.Transport{}
	if cfg.ProxyURL != "" {
		proxyURL, err := url.Parse(cfg.ProxyURL)
		if err != nil {
			return nil, erro.Wrap(err, "failed to parse proxy URL")
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
		HTTPClient: &http.Client{
			Transport: transport,
		},
	})
	if err != nil {
		return nil, erro.Wrap(err, "failed to create Gemini client")
	}

	backend := &Backend{
		client: client,
		config: cfg,
	}

	if cfg.IsTest {
		if err := backend.testConnection(ctx); err != nil {
			return nil, erro.Wrap(err, "failed to connect to Gemini API")
		}
	}

	return backend, nil
}

// Generate calls the Gemini API to generate content
func (b *Backend) Generate(ctx context.Context, req model.BackendRequest) (model.BackendResponse, error) {
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: lang.Check(req.ResponseType, "text/plain"),
		Temperature:      &req.Temperature,
		MaxOutputTokens:  int32(req.MaxTokens),
	}
	if req.Instructions != "" {
		config.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: req.Instructions}}}
	}

	result, err := b.client.Models.GenerateContent(ctx,
		b.config.Model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: req.Input}}}},
		config,
	)
	if err != nil {
		return model.BackendResponse{}, b.handleAPIError(err)
	}

	var content string
	if len(result.Candidates) > 0 {
		candidate := result.Candidates[0]
		if candidate.Content != nil && len(candidate.Content.Parts) > 0 {
			content = candidate.Content.Parts[0].Text
		}
	}
	if content == "" {
		return model.BackendResponse{}, fmt.Errorf("%w: no candidates in response", model.ErrBackendProtocolError)
	}

	out := model.BackendResponse{
		CreateTime:       result.CreateTime,
		Content:          strings.TrimSpace(content),
		PromptTokens:     int(result.UsageMetadata.PromptTokenCount),
		CompletionTokens: int(result.UsageMetadata.CandidatesTokenCount),
		TotalTokens:      int(result.UsageMetadata.TotalTokenCount),
	}

	return out, nil
}

// handleAPIError maps Gemini API failures to the backend error taxonomy
func (b *Backend) handleAPIError(err error) error {
	errStr := err.Error()

	switch {
	case strings.Contains(errStr, "429"):
		return fmt.Errorf("%w: rate limit exceeded: %v", model.ErrBackendUnavailable, err)
	case strings.Contains(errStr, "401") || strings.Contains(errStr, "403"):
		return fmt.Errorf("%w: authentication failed: %v", model.ErrBackendUnavailable, err)
	case strings.Contains(errStr, "400"):
		return fmt.Errorf("%w: bad request: %v", model.ErrBackendProtocolError, err)
	case strings.Contains(errStr, "deadline exceeded") || strings.Contains(errStr, "timeout"):
		return fmt.Errorf("%w: %v", model.ErrBackendTimeout, err)
	case strings.Contains(errStr, "location is not supported"):
		return fmt.Errorf("%w: region not supported by Gemini API", model.ErrBackendUnavailable)
	default:
		return fmt.Errorf("%w: %v", model.ErrBackendUnavailable, err)
	}
}

func (b *Backend) testConnection(ctx context.Context) error {
	_, err := b.Generate(ctx, model.BackendRequest{
		Input:       "Respond with 'OK' if you can understand this message.",
		MaxTokens:   10,
		Temperature: 0.5,
	})
	return err
}
