package bitbucket

// Bitbucket API structures
type bitbucketUser struct {
	UUID        string `json:"uuid"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Nickname    string `json:"nickname"`
}

type bitbucketRepository struct {
	UUID        string `json:"uuid"`
	Name        string `json:"name"`
	FullName    string `json:"full_name"`
	Description string `json:"description"`
	IsPrivate   bool   `json:"is_private"`
	UpdatedOn   string `json:"updated_on"`
	MainBranch  struct {
		Name string `json:"name"`
	} `json:"mainbranch"`
}

type bitbucketBranch struct {
	Name   string `json:"name"`
	Target struct {
		Hash string `json:"hash"`
		Date string `json:"date"`
	} `json:"target"`
}

type bitbucketCommit struct {
	Hash    string `json:"hash"`
	Date    string `json:"date"`
	Message string `json:"message"`
	Author  struct {
		Raw  string        `json:"raw"`
		User bitbucketUser `json:"user"`
	} `json:"author"`
}

type bitbucketPullRequest struct {
	ID          int           `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	State       string        `json:"state"`
	CreatedOn   string        `json:"created_on"`
	UpdatedOn   string        `json:"updated_on"`
	Author      bitbucketUser `json:"author"`
	Source      struct {
		Branch struct {
			Name string `json:"name"`
		} `json:"branch"`
	} `json:"source"`
	Destination struct {
		Branch struct {
			Name string `json:"name"`
		} `json:"branch"`
	} `json:"destination"`
}

type bitbucketBranchesPage struct {
	Values []bitbucketBranch `json:"values"`
	Next   string            `json:"next"`
}

type bitbucketCommitsPage struct {
	Values []bitbucketCommit `json:"values"`
	Next   string            `json:"next"`
}

type bitbucketPullRequestsPage struct {
	Values []bitbucketPullRequest `json:"values"`
	Next   string                 `json:"next"`
}

type bitbucketRepositoriesPage struct {
	Values []bitbucketRepository `json:"values"`
	Next   string                `json:"next"`
}
