package model

import "time"

// BackendConfig represents backend-specific configuration
type BackendConfig struct {
	APIKey   string
	Model    string
	URL      string
	ProxyURL string
	IsTest   bool

	// Subprocess backend settings
	Commands  [][]string
	KeyEnvVar string
	Timeout   time.Duration
}

// BackendRequest represents a request to a generation backend
type BackendRequest struct {
	Instructions string
	Input        string
	MaxTokens    int
	Temperature  float32
	ResponseType string

	// WorkDir is the repository clone the subprocess backend runs in
	WorkDir string

	// Output receives live output lines from the subprocess backend
	Output func(line string)
}

// BackendResponse represents a response from a generation backend
type BackendResponse struct {
	CreateTime       time.Time
	Content          string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Prompt represents a structured prompt for a generation backend
type Prompt struct {
	SystemPrompt string
	UserPrompt   string
}

// GenerateRequest carries everything a backend may need to produce tasks
type GenerateRequest struct {
	Repository  string
	WindowLabel string
	Since       time.Time
	Until       time.Time

	// ActivityText is the rendered activity consumed by HTTP backends
	ActivityText string

	// ClonePath and GitLog feed the subprocess backend
	ClonePath string
	GitLog    string

	// Output receives live output lines from the subprocess backend
	Output func(line string)
}
