package tasks

import (
	"strings"
	"testing"

	"github.com/maxbolgarin/taskry/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractCleanArray(t *testing.T) {
	raw := `[{"title": "Add health endpoint", "description": "Expose liveness over HTTP"}]`

	tasks := Extract(raw)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Add health endpoint", tasks[0].Title)
	assert.Equal(t, "Expose liveness over HTTP", tasks[0].Description)
}

func TestExtractFencedArray(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{
			name: "json fence",
			raw:  "```json\n[{\"title\": \"T\", \"description\": \"D\"}]\n```",
		},
		{
			name: "bare fence",
			raw:  "```\n[{\"title\": \"T\", \"description\": \"D\"}]\n```",
		},
		{
			name: "fence with prose around",
			raw:  "Sure, here you go:\n```json\n[{\"title\": \"T\", \"description\": \"D\"}]\n```\nLet me know!",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks := Extract(tt.raw)
			require.Len(t, tasks, 1)
			assert.Equal(t, "T", tasks[0].Title)
			assert.Equal(t, "D", tasks[0].Description)
		})
	}
}

func TestExtractArrayInsideProse(t *testing.T) {
	raw := `Here are the tasks I found: [{"title": "A", "description": "B"}] hope this helps`

	tasks := Extract(raw)
	require.Len(t, tasks, 1)
	assert.Equal(t, "A", tasks[0].Title)
}

func TestExtractNestedBrackets(t *testing.T) {
	raw := `[{"title": "Parser", "description": "Handle [1, 2] style input"}]`

	tasks := Extract(raw)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Handle [1, 2] style input", tasks[0].Description)
}

func TestExtractTrailingCommas(t *testing.T) {
	raw := `[{"title": "A", "description": "B",}, {"title": "C", "description": "D"},]`

	tasks := Extract(raw)
	require.Len(t, tasks, 2)
	assert.Equal(t, "A", tasks[0].Title)
	assert.Equal(t, "C", tasks[1].Title)
}

func TestExtractAlternativeKeys(t *testing.T) {
	raw := `[
		{"name": "From name", "detail": "from detail"},
		{"title": "From title", "text": "from text"}
	]`

	tasks := Extract(raw)
	require.Len(t, tasks, 2)
	assert.Equal(t, "From name", tasks[0].Title)
	assert.Equal(t, "from detail", tasks[0].Description)
	assert.Equal(t, "From title", tasks[1].Title)
	assert.Equal(t, "from text", tasks[1].Description)
}

func TestExtractSkipsUselessItems(t *testing.T) {
	raw := `["just a string", {"irrelevant": "keys"}, {"title": "Kept", "description": "yes"}, 42]`

	tasks := Extract(raw)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Kept", tasks[0].Title)
}

func TestExtractTitleFallback(t *testing.T) {
	raw := `[{"description": "only a description"}, {"title": "only a title"}]`

	tasks := Extract(raw)
	require.Len(t, tasks, 2)
	assert.Equal(t, "Task", tasks[0].Title)
	assert.Equal(t, "only a description", tasks[0].Description)
	assert.Equal(t, "only a title", tasks[1].Title)
	assert.Empty(t, tasks[1].Description)
}

func TestExtractCoercesNonStringValues(t *testing.T) {
	raw := `[{"title": 42, "description": "numeric title"}]`

	tasks := Extract(raw)
	require.Len(t, tasks, 1)
	assert.Equal(t, "42", tasks[0].Title)
}

func TestExtractPlainTextFallback(t *testing.T) {
	raw := "The repository saw three bugfixes and a refactor of the storage layer."

	tasks := Extract(raw)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Summary", tasks[0].Title)
	assert.Equal(t, raw, tasks[0].Description)
}

func TestExtractPlainTextTooLongIsDropped(t *testing.T) {
	raw := strings.Repeat("words without any structure ", 40)

	tasks := Extract(raw)
	assert.Empty(t, tasks)
}

func TestExtractLastResortSanitizes(t *testing.T) {
	// Broken JSON that still mentions tasks, too mangled for the parser
	raw := "```json\n[{\"title\": \"Unterminated" + strings.Repeat(" filler", 400)

	tasks := Extract(raw)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Summary", tasks[0].Title)
	assert.NotContains(t, tasks[0].Description, "```")
	assert.True(t, strings.HasSuffix(tasks[0].Description, "..."))
	assert.LessOrEqual(t, len(tasks[0].Description), sanitizedLimit+3)
}

func TestExtractEmpty(t *testing.T) {
	assert.Empty(t, Extract(""))
	assert.Empty(t, Extract("   \n\t  "))
}

func TestExtractUnbalancedArray(t *testing.T) {
	raw := `[{"title": "A", "description": "B"}`

	// No balanced array and no parseable JSON, falls through to sanitize
	tasks := Extract(raw)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Summary", tasks[0].Title)
}

func TestNormalizeTasks(t *testing.T) {
	tasks := normalizeTasks([]model.Task{
		{Title: "  Fix Healtcheck  ", Description: "multi\nline\n\n  description  "},
		{Title: "", Description: "healt monitoring"},
	})

	require.Len(t, tasks, 2)
	assert.Equal(t, "Fix Health check", tasks[0].Title)
	assert.Equal(t, "multi line description", tasks[0].Description)
	assert.Equal(t, "Task", tasks[1].Title)
	assert.Equal(t, "health monitoring", tasks[1].Description)
}

func TestScrapeArray(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `[1, 2]`, `[1, 2]`},
		{"embedded", `text [1] tail`, `[1]`},
		{"nested", `[[1], [2]]`, `[[1], [2]]`},
		{"unbalanced", `[1, 2`, ``},
		{"none", `no brackets here`, ``},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, scrapeArray(tt.in))
		})
	}
}
