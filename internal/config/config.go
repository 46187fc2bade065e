package config

import (
	"github.com/maxbolgarin/taskry/internal/clone"
	"github.com/maxbolgarin/taskry/internal/generator"
	"github.com/maxbolgarin/taskry/internal/provider"
	"github.com/maxbolgarin/taskry/internal/server"
	"github.com/maxbolgarin/taskry/internal/summary"
)

// Config represents the main application configuration
type Config struct {
	Server    server.Config    `yaml:"server"`
	Provider  provider.Config  `yaml:"provider"`
	Generator generator.Config `yaml:"generator"`
	Clone     clone.Config     `yaml:"clone"`
	Summary   summary.Config   `yaml:"summary"`
}

// Validate checks settings that have no usable default. Component
// constructors run their own deeper validation on top.
func (c *Config) Validate() error {
	if c.Provider.Token == "" {
		return ErrMissingProviderToken
	}
	if c.Provider.Type == "" {
		return ErrMissingProviderType
	}
	return nil
}

// SetDefaults sets default values for configuration
func (c *Config) SetDefaults() {
	if c.Generator.Type == "" {
		c.Generator.Type = generator.Ollama
	}
}
