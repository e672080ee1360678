package github

// repoResponse is the subset of the repository-metadata payload this
// pipeline reads.
type repoResponse struct {
	FullName        string `json:"full_name"`
	StargazersCount int    `json:"stargazers_count"`
}
