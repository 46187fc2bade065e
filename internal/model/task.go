package model

import "time"

// Task is a single actionable item extracted from generated text
type Task struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// SummaryResult is the final output of a summarization run
type SummaryResult struct {
	Repository string    `json:"repository"`
	Window     Window    `json:"window"`
	Since      time.Time `json:"since"`
	Until      time.Time `json:"until"`

	// Summary is a one-line narrative taken from the first task
	Summary string `json:"summary"`
	Tasks   []Task `json:"tasks"`

	Activity *ActivitySnapshot `json:"activity,omitempty"`
}
