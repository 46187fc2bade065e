package provider

import (
	"slices"

	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/lang"
)

type ProviderType string

// SupportedProviderTypes defines the supported VCS provider types
const (
	GitHub    ProviderType = "github"
	GitLab    ProviderType = "gitlab"
	Bitbucket ProviderType = "bitbucket"
)

var supportedProviderTypes = []ProviderType{GitHub, GitLab, Bitbucket}

const (
	defaultMaxBranches = 25
	defaultPageSize    = 100
)

// Config represents VCS provider configuration
type Config struct {
	Type    ProviderType `yaml:"type" env:"PROVIDER_TYPE"`
	BaseURL string       `yaml:"base_url" env:"PROVIDER_BASE_URL"`
	Token   string       `yaml:"token" env:"PROVIDER_TOKEN"`

	// MaxBranches bounds how many branches a single aggregation inspects
	MaxBranches int `yaml:"max_branches" env:"PROVIDER_MAX_BRANCHES"`

	// PageSize is the per-request page size for commit and PR listings
	PageSize int `yaml:"page_size" env:"PROVIDER_PAGE_SIZE"`
}

func (c *Config) PrepareAndValidate() error {
	if c.Token == "" {
		return errm.New("token is required")
	}

	if c.Type == "" || !slices.Contains(supportedProviderTypes, c.Type) {
		return errm.New("invalid provider type: %s", c.Type)
	}

	c.MaxBranches = lang.Check(c.MaxBranches, defaultMaxBranches)
	c.PageSize = lang.Check(c.PageSize, defaultPageSize)

	return nil
}
