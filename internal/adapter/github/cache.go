package github

import (
	"context"
	"errors"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru"

	"github.com/starlist/starlist/internal/app"
)

// CachedClient wraps a RepoClient with a run-scoped memoization layer.
//
// The same repository may appear under several categories in the source
// document; memoizing by owner/repo guarantees one api lookup per unique
// pair and that duplicates always share one result. Successful lookups and
// not-found outcomes are cached; transient failures are not, so a retry of
// a duplicate later in the sequence still gets a fresh attempt.
type CachedClient struct {
	client RepoClient
	cache  *lru.Cache
}

var _ RepoClient = &CachedClient{}

// NewCachedClient creates new CachedClient instance.
func NewCachedClient(client RepoClient, size int) (*CachedClient, error) {
	if size <= 0 {
		return nil, errors.New("cache size must be greater than 0")
	}
	cache, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("creating lru cache: %w", err)
	}

	return &CachedClient{
		client: client,
		cache:  cache,
	}, nil
}

// StarsByRepo returns the stargazer count for owner/repo.
func (c *CachedClient) StarsByRepo(ctx context.Context, owner, repo string) (int, error) {
	key := c.cacheKey(owner, repo)
	if val, ok := c.cache.Get(key); ok {
		entry := val.(starsCacheEntry)
		return entry.stars, entry.err
	}

	stars, err := c.client.StarsByRepo(ctx, owner, repo)
	if err != nil && !app.IsNotFound(err) {
		return stars, err
	}

	c.cache.Add(key, starsCacheEntry{
		stars: stars,
		err:   err,
	})

	return stars, err
}

func (c *CachedClient) cacheKey(owner, repo string) string {
	return strings.ToLower(owner) + "/" + strings.ToLower(repo)
}

type starsCacheEntry struct {
	stars int
	err   error
}
