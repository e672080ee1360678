package mock

import (
	"context"
	"sync"

	"github.com/starlist/starlist/internal/app"
)

// Source mocks app.Source.
type Source struct {
	FetchFunc func(ctx context.Context) (string, error)
}

// Fetch returns the document text.
func (m *Source) Fetch(ctx context.Context) (string, error) {
	if m.FetchFunc != nil {
		return m.FetchFunc(ctx)
	}

	return "", nil
}

// Extractor mocks app.Extractor.
type Extractor struct {
	ExtractFunc func(doc string) ([]app.Entry, int, error)
}

// Extract parses markdown into catalog entries.
func (m *Extractor) Extract(doc string) ([]app.Entry, int, error) {
	if m.ExtractFunc != nil {
		return m.ExtractFunc(doc)
	}

	return nil, 0, nil
}

// Enricher mocks app.Enricher.
type Enricher struct {
	EnrichFunc func(ctx context.Context, entries []app.Entry) ([]app.Entry, int, error)
}

// Enrich populates star counts.
func (m *Enricher) Enrich(ctx context.Context, entries []app.Entry) ([]app.Entry, int, error) {
	if m.EnrichFunc != nil {
		return m.EnrichFunc(ctx, entries)
	}

	return entries, 0, nil
}

// ArtifactWriter mocks app.ArtifactWriter.
type ArtifactWriter struct {
	WriteFunc func(d app.Dataset) error
	Written   []app.Dataset
}

// Write records the dataset.
func (m *ArtifactWriter) Write(d app.Dataset) error {
	m.Written = append(m.Written, d)
	if m.WriteFunc != nil {
		return m.WriteFunc(d)
	}

	return nil
}

// RepoClient mocks the github repository-metadata client.
// Safe for concurrent use, enricher workers call it in parallel.
type RepoClient struct {
	StarsByRepoFunc func(ctx context.Context, owner, repo string) (int, error)

	mu    sync.Mutex
	calls []string
}

// StarsByRepo returns the stargazer count for owner/repo.
func (m *RepoClient) StarsByRepo(ctx context.Context, owner, repo string) (int, error) {
	m.mu.Lock()
	m.calls = append(m.calls, owner+"/"+repo)
	m.mu.Unlock()

	if m.StarsByRepoFunc != nil {
		return m.StarsByRepoFunc(ctx, owner, repo)
	}

	return 0, nil
}

// Calls returns the owner/repo pairs requested so far.
func (m *RepoClient) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}
