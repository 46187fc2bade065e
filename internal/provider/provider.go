package provider

import (
	"github.com/maxbolgarin/erro"
	"github.com/maxbolgarin/taskry/internal/model"
	"github.com/maxbolgarin/taskry/internal/model/interfaces"
	"github.com/maxbolgarin/taskry/internal/provider/bitbucket"
	"github.com/maxbolgarin/taskry/internal/provider/github"
	"github.com/maxbolgarin/taskry/internal/provider/gitlab"
)

// NewProvider creates a new VCS provider based on the configuration
func NewProvider(cfg Config) (interfaces.ActivityProvider, error) {
	if err := cfg.PrepareAndValidate(); err != nil {
		return nil, erro.Wrap(err, "validate config")
	}

	cfgForProvider := model.ProviderConfig{
		BaseURL:  cfg.BaseURL,
		Token:    cfg.Token,
		PageSize: cfg.PageSize,
	}

	var provider interfaces.ActivityProvider
	var err error

	switch cfg.Type {
	case GitHub:
		provider, err = github.New(cfgForProvider)
	case GitLab:
		provider, err = gitlab.New(cfgForProvider)
	case Bitbucket:
		provider, err = bitbucket.New(cfgForProvider)
	default:
		return nil, erro.New("unsupported provider type: %s", cfg.Type)
	}
	if err != nil {
		return nil, erro.Wrap(err, "failed to create provider")
	}

	return provider, nil
}
