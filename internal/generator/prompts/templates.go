package prompts

import (
	"fmt"
	"strings"

	"github.com/maxbolgarin/taskry/internal/model"
)

// promptTimeLayout renders window bounds inside workspace prompts
const promptTimeLayout = "2006-01-02T15:04:05Z"

// Builder provides methods to build prompts for generation backends
type Builder struct{}

// NewBuilder creates a new prompt builder
func NewBuilder() *Builder {
	return &Builder{}
}

// BuildTasksPrompt creates the prompt pair for HTTP backends, rendered
// activity goes into the user part and the rules into the system part
func (tb *Builder) BuildTasksPrompt(req model.GenerateRequest) model.Prompt {
	userPrompt := fmt.Sprintf(tasksInputTemplate, req.Repository, req.WindowLabel, req.ActivityText)

	return model.Prompt{
		SystemPrompt: tasksInstructions,
		UserPrompt:   userPrompt,
	}
}

// BuildWorkspacePrompt creates the single-shot prompt for the subprocess
// backend. With a pre-collected git log the agent only analyzes, without
// one it is told to run git inside the clone itself.
func (tb *Builder) BuildWorkspacePrompt(req model.GenerateRequest) model.Prompt {
	since := req.Since.UTC().Format(promptTimeLayout)
	until := req.Until.UTC().Format(promptTimeLayout)

	repoLine := "You are in the repository root."
	if req.Repository != "" {
		repoLine = fmt.Sprintf("Repository: %s.", req.Repository)
	}

	if gitLog := strings.TrimSpace(req.GitLog); gitLog != "" {
		return model.Prompt{
			UserPrompt: fmt.Sprintf(workspaceLogPromptTemplate, repoLine, since, until, req.WindowLabel, gitLog),
		}
	}

	return model.Prompt{
		UserPrompt: fmt.Sprintf(workspaceExplorePromptTemplate, repoLine, since, until, req.WindowLabel, since, until),
	}
}
