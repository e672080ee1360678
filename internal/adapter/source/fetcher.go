// Package source retrieves the raw markdown text of the curated list.
package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/starlist/starlist/internal/app"
)

// HTTPDoer can execute http request.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Fetcher downloads the upstream document. Any failure to obtain a
// non-empty body is an app.FetchError, fatal to the run.
type Fetcher struct {
	doer        HTTPDoer
	url         string
	maxBodySize int64
}

var _ app.Source = &Fetcher{}

// NewFetcher creates new Fetcher instance.
// url must point at the raw markdown document, not an html-rendered page.
func NewFetcher(doer HTTPDoer, url string, maxBodySize int64) *Fetcher {
	return &Fetcher{
		doer:        doer,
		url:         url,
		maxBodySize: maxBodySize,
	}
}

// Fetch returns the document body as UTF-8 text.
func (f *Fetcher) Fetch(ctx context.Context) (string, error) {
	req, err := http.NewRequest(http.MethodGet, f.url, nil)
	if err != nil {
		return "", app.FetchError(fmt.Sprintf("creating http request: %v", err))
	}

	resp, err := f.doer.Do(req.WithContext(ctx))
	if err != nil {
		return "", app.FetchError(fmt.Sprintf("requesting %s: %v", f.url, err))
	}
	// Always drain body before close to allow connection reuse.
	defer func() {
		_, _ = io.CopyN(io.Discard, resp.Body, 1024)
		resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return "", app.FetchError(fmt.Sprintf("requesting %s: got status code %d", f.url, resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return "", app.FetchError(fmt.Sprintf("reading response body: %v", err))
	}
	if strings.TrimSpace(string(body)) == "" {
		return "", app.FetchError(fmt.Sprintf("requesting %s: got empty body", f.url))
	}

	return string(body), nil
}
