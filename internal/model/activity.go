package model

import "time"

// Commit represents a single commit found in the aggregation window
type Commit struct {
	Hash      string    `json:"hash"`
	Message   string    `json:"message"`
	Author    string    `json:"author"`
	Timestamp time.Time `json:"timestamp"`

	// Branch is the first branch (in snapshot order) the commit was seen on
	Branch string `json:"branch"`

	// IsMerged reports whether the commit is reachable from the default branch
	IsMerged bool `json:"is_merged"`
}

// Branch represents a repository branch
type Branch struct {
	Name      string `json:"name"`
	IsDefault bool   `json:"is_default"`
}

// PullRequest represents a pull or merge request updated in the window
type PullRequest struct {
	Number    int       `json:"number"`
	Title     string    `json:"title"`
	State     string    `json:"state"`
	Author    string    `json:"author"`
	UpdatedAt time.Time `json:"updated_at"`
	MergedAt  time.Time `json:"merged_at"`
}

// ActivitySnapshot is the deduplicated view of repository activity in [since, until)
type ActivitySnapshot struct {
	Repository    string        `json:"repository"`
	Since         time.Time     `json:"since"`
	Until         time.Time     `json:"until"`
	DefaultBranch string        `json:"default_branch"`
	Branches      []string      `json:"branches"`
	Commits       []Commit      `json:"commits"`
	PullRequests  []PullRequest `json:"pull_requests"`
}

// IsEmpty reports whether the snapshot carries no activity at all
func (s *ActivitySnapshot) IsEmpty() bool {
	return len(s.Commits) == 0 && len(s.PullRequests) == 0
}

// Repository represents a repository visible to the configured token
type Repository struct {
	FullName      string    `json:"full_name"`
	Description   string    `json:"description"`
	DefaultBranch string    `json:"default_branch"`
	IsPrivate     bool      `json:"is_private"`
	UpdatedAt     time.Time `json:"updated_at"`
}
