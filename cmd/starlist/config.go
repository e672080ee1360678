package main

import "time"

// Config is the container for app configuration
type Config struct {
	// SourceURL - location of the raw markdown document with the curated list
	SourceURL string `default:"https://raw.githubusercontent.com/seandavi/awesome-single-cell/refs/heads/master/README.md"`

	// SourceMaxBodySize - maximum accepted size of the fetched document in bytes
	SourceMaxBodySize int64 `default:"10485760"`

	// GithubAPIAddress - address for rest api with protocol
	GithubAPIAddress string `default:"https://api.github.com"`

	// GithubAPIToken - auth token for rest github api (optional, rate limit is lower without this token)
	GithubAPIToken string `default:""`

	// GithubAPIRateLimit - max frequency for github rest api calls
	GithubAPIRateLimit float64 `default:"2"`

	// GithubCachePath - filepath for the etag cache. Empty disables conditional requests
	GithubCachePath string `default:"./starlist.cache"`

	// GithubCacheBucket - bolt db bucket name
	GithubCacheBucket string `default:"github"`

	// GithubClientCacheSize - maximum number of memoized star lookups
	GithubClientCacheSize int `default:"10000"`

	// HTTPTimeout - timeout for every outbound http call
	HTTPTimeout time.Duration `default:"20s"`

	// EnrichWorkers - number of concurrent star lookups. 1 means sequential
	EnrichWorkers int `default:"4"`

	// RetryMaxAttempts - attempts per lookup for transient failures
	RetryMaxAttempts int `default:"3"`

	// RetryBaseDelay - base delay for the exponential backoff
	RetryBaseDelay time.Duration `default:"500ms"`

	// RetryMaxDelay - backoff cap
	RetryMaxDelay time.Duration `default:"10s"`

	// RateLimitMaxWait - longest tolerated suspension waiting for a rate limit reset
	RateLimitMaxWait time.Duration `default:"15m"`

	// OutputPath - filepath for the produced JSON artifact
	OutputPath string `default:"./repos_data.json"`
}
