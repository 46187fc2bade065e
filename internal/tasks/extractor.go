package tasks

import (
	"fmt"
	"regexp"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/maxbolgarin/lang"
	"github.com/maxbolgarin/taskry/internal/model"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	// plainTextLimit is the longest raw response treated as a one-task summary
	plainTextLimit = 500

	// sanitizedLimit caps the last resort fallback text
	sanitizedLimit = 2000
)

var (
	fencedBlockRe = regexp.MustCompile("```(?:json)?" + `\s*([\s\S]*?)` + "```")
	fenceMarkerRe = regexp.MustCompile("```(?:json)?" + `\s*`)

	trailingArrayCommaRe  = regexp.MustCompile(`,\s*]`)
	trailingObjectCommaRe = regexp.MustCompile(`,\s*}`)
)

// Extract turns a raw model response into a task list. It never returns an
// error, each recovery step handles a weaker form of the expected JSON and
// the last ones degrade to a single summary task. An empty result means the
// response carried nothing usable at all.
func Extract(raw string) []model.Task {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	// Well-formed or fenced JSON array somewhere in the response
	if block := scrapeArray(raw); block != "" {
		if parsed := parseArray(block); len(parsed) > 0 {
			return normalizeTasks(parsed)
		}
	}

	// The whole response as a JSON array, with trailing commas tolerated
	if parsed := parseArray(raw); len(parsed) > 0 {
		return normalizeTasks(parsed)
	}

	// Short plain text without any JSON structure becomes one summary task
	if len(raw) < plainTextLimit && !strings.ContainsAny(raw, "{[") {
		return normalizeTasks([]model.Task{{Title: "Summary", Description: raw}})
	}

	// Last resort: content mentions tasks but cannot be parsed, show it
	// sanitized instead of dropping the generation on the floor
	if strings.Contains(raw, "title") || strings.Contains(raw, "description") || strings.Contains(raw, "[") {
		sanitized := strings.TrimSpace(fenceMarkerRe.ReplaceAllString(raw, ""))
		if len(sanitized) > sanitizedLimit {
			sanitized = sanitized[:sanitizedLimit] + "..."
		}
		if sanitized != "" {
			return normalizeTasks([]model.Task{{Title: "Summary", Description: sanitized}})
		}
	}

	return nil
}

// scrapeArray strips markdown code fences and returns the first balanced
// JSON array slice, or an empty string if there is none
func scrapeArray(s string) string {
	s = strings.TrimSpace(s)
	if match := fencedBlockRe.FindStringSubmatch(s); match != nil {
		s = strings.TrimSpace(match[1])
	}

	start := strings.IndexByte(s, '[')
	if start == -1 {
		return ""
	}

	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

// parseArray parses a JSON array of task objects, retrying once with
// trailing commas removed. Items that are not objects are skipped, title
// and description accept the usual alternative key spellings.
func parseArray(block string) []model.Task {
	for _, attempt := range []string{block, fixTrailingCommas(block)} {
		var items []jsoniter.RawMessage
		if err := json.UnmarshalFromString(attempt, &items); err != nil {
			continue
		}

		var out []model.Task
		for _, item := range items {
			var fields map[string]any
			if err := json.Unmarshal(item, &fields); err != nil {
				continue
			}

			title := stringField(fields, "title", "name")
			description := stringField(fields, "description", "detail", "text")
			if title == "" && description == "" {
				continue
			}

			out = append(out, model.Task{
				Title:       lang.Check(title, "Task"),
				Description: description,
			})
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}

// fixTrailingCommas removes trailing commas before closing brackets
func fixTrailingCommas(s string) string {
	s = trailingArrayCommaRe.ReplaceAllString(s, "]")
	s = trailingObjectCommaRe.ReplaceAllString(s, "}")
	return s
}

// stringField returns the first non-empty value among the given keys
func stringField(fields map[string]any, keys ...string) string {
	for _, key := range keys {
		value, ok := fields[key]
		if !ok || value == nil {
			continue
		}
		s, isString := value.(string)
		if !isString {
			s = fmt.Sprint(value)
		}
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}
