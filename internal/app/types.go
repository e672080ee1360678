package app

import (
	"strings"
	"time"
)

// Entry is one catalog item extracted from the curated document.
type Entry struct {
	Name        string `json:"name"`
	Owner       string `json:"owner"`
	Repo        string `json:"repo"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Stars       *int   `json:"stars"`
	URL         string `json:"url"`
}

// Key returns the lowercased owner/repo pair identifying the repository.
// Owner and repo keep their original case for display; matching is
// case-insensitive.
func (e Entry) Key() string {
	return strings.ToLower(e.Owner) + "/" + strings.ToLower(e.Repo)
}

// Dataset is the artifact handed to the presentation layer.
// It is constructed once per run and never mutated after construction.
type Dataset struct {
	GeneratedAt time.Time `json:"generated_at"`
	Entries     []Entry   `json:"repos"`
}

// Summary reports run outcomes for logging.
type Summary struct {
	Entries    int
	Skipped    int
	Unresolved int
}
