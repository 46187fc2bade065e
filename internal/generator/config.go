package generator

import (
	"slices"
	"time"

	"github.com/maxbolgarin/erro"
	"github.com/maxbolgarin/lang"
)

const (
	defaultTemperature       = 0.4
	defaultMaxTokens         = 10000
	defaultTimeout           = 2 * time.Minute
	defaultSubprocessTimeout = 5 * time.Minute
	defaultUserAgent         = "taskry/0.1.0 (https://github.com/maxbolgarin/taskry)"

	// defaultKeyEnvVar carries the API key into the agent subprocess
	defaultKeyEnvVar = "CURSOR_API_KEY"
)

// BackendType represents the type of generation backend
type BackendType string

// Supported generation backends
const (
	Ollama      BackendType = "ollama"
	HuggingFace BackendType = "huggingface"
	Gemini      BackendType = "gemini"
	AgentCLI    BackendType = "agentcli"
)

var supportedBackendTypes = []BackendType{Ollama, HuggingFace, Gemini, AgentCLI}

// defaultAgentCommands are tried in order until a binary is found on PATH,
// the prompt is appended as the last argument
var defaultAgentCommands = [][]string{
	{"agent", "--trust", "-p"},
	{"cursor", "agent", "--trust", "-p"},
}

// Config represents generation backend configuration
type Config struct {
	Type        BackendType `yaml:"type" env:"GENERATOR_TYPE"` // ollama, huggingface, gemini, agentcli
	APIKey      string      `yaml:"api_key" env:"GENERATOR_API_KEY"`
	Model       string      `yaml:"model" env:"GENERATOR_MODEL"`
	Temperature float32     `yaml:"temperature" env:"GENERATOR_TEMPERATURE"`
	MaxTokens   int         `yaml:"max_tokens" env:"GENERATOR_MAX_TOKENS"`

	BaseURL   string        `yaml:"base_url" env:"GENERATOR_BASE_URL"` // Ollama host, custom router, etc.
	ProxyURL  string        `yaml:"proxy_url" env:"GENERATOR_PROXY_URL"`
	Timeout   time.Duration `yaml:"timeout" env:"GENERATOR_TIMEOUT"`
	UserAgent string        `yaml:"user_agent" env:"GENERATOR_USER_AGENT"`
	IsTest    bool          `yaml:"is_test" env:"GENERATOR_IS_TEST"`

	// Subprocess backend settings
	Commands          [][]string    `yaml:"commands"`
	KeyEnvVar         string        `yaml:"key_env_var" env:"GENERATOR_KEY_ENV_VAR"`
	SubprocessTimeout time.Duration `yaml:"subprocess_timeout" env:"GENERATOR_SUBPROCESS_TIMEOUT"`
}

func (c *Config) PrepareAndValidate() error {
	if c.Type == "" || !slices.Contains(supportedBackendTypes, c.Type) {
		return erro.New("invalid backend type: %s", c.Type)
	}
	if c.APIKey == "" && (c.Type == HuggingFace || c.Type == Gemini) {
		return erro.New("api key is required for %s backend", c.Type)
	}

	c.Temperature = lang.Check(c.Temperature, defaultTemperature)
	c.MaxTokens = lang.Check(c.MaxTokens, defaultMaxTokens)
	c.Timeout = lang.Check(c.Timeout, defaultTimeout)
	c.UserAgent = lang.Check(c.UserAgent, defaultUserAgent)
	c.KeyEnvVar = lang.Check(c.KeyEnvVar, defaultKeyEnvVar)
	c.SubprocessTimeout = lang.Check(c.SubprocessTimeout, defaultSubprocessTimeout)
	if len(c.Commands) == 0 {
		c.Commands = defaultAgentCommands
	}

	return nil
}
