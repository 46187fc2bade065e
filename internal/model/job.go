package model

import "time"

// JobState represents the lifecycle state of a summarization job
type JobState string

const (
	JobStateQueued            JobState = "queued"
	JobStateRunningGeneration JobState = "running_generation"
	JobStateRunningSubprocess JobState = "running_subprocess"
	JobStateSucceeded         JobState = "succeeded"
	JobStateFailed            JobState = "failed"
)

// IsTerminal reports whether the job reached a final state
func (s JobState) IsTerminal() bool {
	return s == JobStateSucceeded || s == JobStateFailed
}

// JobStatus is the poll view of a summarization job
type JobStatus struct {
	ID         string   `json:"id"`
	Repository string   `json:"repository"`
	Window     Window   `json:"window"`
	State      JobState `json:"state"`

	// LiveOutput holds the captured subprocess output tail, if any
	LiveOutput string `json:"live_output,omitempty"`

	Result *SummaryResult `json:"result,omitempty"`
	Error  string         `json:"error,omitempty"`

	CreatedAt  time.Time `json:"created_at"`
	FinishedAt time.Time `json:"finished_at"`
}
