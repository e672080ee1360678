// Package github enriches catalog entries with repository metadata from
// the github rest api.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/starlist/starlist/internal/app"
)

// HTTPDoer can execute http request.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// RepoClient returns repository metadata.
type RepoClient interface {
	StarsByRepo(ctx context.Context, owner, repo string) (int, error)
}

// Client queries the github repository-metadata endpoint.
type Client struct {
	doer      HTTPDoer
	address   string
	authToken string

	responseMaxSize int64
	// fallback suspension when a rate-limited response carries no usable
	// reset header
	defaultPenalty time.Duration
}

var _ RepoClient = &Client{}

// NewClient creates new Client instance.
// authToken is optional; without it github applies a much lower rate limit.
func NewClient(doer HTTPDoer, address string, authToken string) *Client {
	return &Client{
		doer:      doer,
		address:   address,
		authToken: authToken,

		responseMaxSize: 1024 * 1024,
		defaultPenalty:  time.Minute,
	}
}

// StarsByRepo returns the stargazer count for owner/repo.
//
// A missing or moved repository yields app.NotFoundError. An exhausted rate
// limit yields *app.RateLimitError with the reset time taken from the
// response headers. Anything else is a transient failure.
func (c *Client) StarsByRepo(ctx context.Context, owner, repo string) (int, error) {
	if owner == "" || repo == "" {
		return 0, app.NotFoundError("owner and repo cannot be empty")
	}

	u, err := url.Parse(c.address + "/repos/" + url.PathEscape(owner) + "/" + url.PathEscape(repo))
	if err != nil {
		return 0, fmt.Errorf("invalid url: %w", err)
	}

	httpReq, err := http.NewRequest(http.MethodGet, u.String(), nil)
	if err != nil {
		return 0, fmt.Errorf("creating http request: %w", err)
	}

	body, err := c.makeRequest(ctx, httpReq)
	if err != nil {
		return 0, err
	}

	var resp repoResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, fmt.Errorf("unmarshalling response: %w", err)
	}

	return resp.StargazersCount, nil
}

func (c *Client) makeRequest(ctx context.Context, req *http.Request) ([]byte, error) {
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	if c.authToken != "" {
		req.Header.Set("Authorization", "token "+c.authToken)
	}

	resp, err := c.doer.Do(req.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("doing http request: %w", err)
	}
	// Always drain body before close to allow connection reuse.
	defer func() {
		_, _ = io.CopyN(io.Discard, resp.Body, 1024)
		resp.Body.Close()
	}()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound, http.StatusGone, http.StatusUnavailableForLegalReasons:
		return nil, app.NotFoundError(fmt.Sprintf("repository not found: status %d", resp.StatusCode))
	case http.StatusForbidden, http.StatusTooManyRequests:
		if reset, ok := c.rateLimitReset(resp.Header); ok {
			return nil, &app.RateLimitError{Reset: reset}
		}
		return nil, fmt.Errorf("got invalid http status code: %d", resp.StatusCode)
	default:
		return nil, fmt.Errorf("got invalid http status code: %d", resp.StatusCode)
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, c.responseMaxSize))
	if err != nil {
		return nil, fmt.Errorf("reading http response body: %w", err)
	}

	return b, nil
}

// rateLimitReset reports whether the response headers mark the rate limit
// as exhausted, and when it resets.
func (c *Client) rateLimitReset(h http.Header) (time.Time, bool) {
	if s := h.Get("Retry-After"); s != "" {
		if secs, err := strconv.Atoi(s); err == nil && secs >= 0 {
			return time.Now().Add(time.Duration(secs) * time.Second), true
		}
	}

	if s := h.Get("X-RateLimit-Remaining"); s != "" {
		if remaining, err := strconv.Atoi(s); err == nil && remaining == 0 {
			if r := h.Get("X-RateLimit-Reset"); r != "" {
				if unix, err := strconv.ParseInt(r, 10, 64); err == nil {
					return time.Unix(unix, 0), true
				}
			}
			return time.Now().Add(c.defaultPenalty), true
		}
	}

	return time.Time{}, false
}
