package tasks

import (
	"strings"

	"github.com/maxbolgarin/lang"
	"github.com/maxbolgarin/taskry/internal/model"
)

// typoReplacer fixes recurring model misspellings before tasks reach clients
var typoReplacer = strings.NewReplacer(
	"Healt ", "Health ",
	"healt ", "health ",
	"Healtcheck", "Health check",
	"healtcheck", "health check",
)

// normalizeTasks trims whitespace, collapses description newlines into
// single spaces and applies the typo fixes
func normalizeTasks(tasks []model.Task) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	for _, task := range tasks {
		title := typoReplacer.Replace(strings.TrimSpace(task.Title))
		description := typoReplacer.Replace(strings.Join(strings.Fields(task.Description), " "))

		out = append(out, model.Task{
			Title:       lang.Check(title, "Task"),
			Description: description,
		})
	}
	return out
}
