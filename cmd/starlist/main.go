package main

import (
	"context"
	netHttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"

	"github.com/starlist/starlist/internal/adapter/github"
	"github.com/starlist/starlist/internal/adapter/source"
	"github.com/starlist/starlist/internal/app"
	"github.com/starlist/starlist/internal/artifact"
	"github.com/starlist/starlist/internal/database"
	"github.com/starlist/starlist/internal/extract"
	"github.com/starlist/starlist/internal/limiter"
	"github.com/starlist/starlist/internal/ratelimit"
	"github.com/starlist/starlist/internal/retry"
)

func main() {
	l := logrus.New()
	l.Level = logrus.InfoLevel

	var conf Config
	if err := envconfig.Process("", &conf); err != nil {
		l.Fatalf("couldn't parse config: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	httpClient := &netHttp.Client{
		Timeout: conf.HTTPTimeout,
	}

	fetcher := source.NewFetcher(
		httpClient,
		conf.SourceURL,
		conf.SourceMaxBodySize,
	)

	extractor := extract.New()

	var apiDoer github.HTTPDoer = httpClient
	if conf.GithubCachePath != "" {
		kvStore, err := database.NewBoltKVStore(
			conf.GithubCachePath,
			conf.GithubCacheBucket,
		)
		if err != nil {
			l.Fatalf("couldn't create bolt kv store: %v", err)
		}
		defer kvStore.Close()

		apiDoer = github.NewConditionalDoer(
			apiDoer,
			kvStore,
			l.WithField("component", "conditionalDoer"),
		)
	}
	apiDoer = limiter.NewHTTPDoer(apiDoer, conf.GithubAPIRateLimit)

	githubClient := github.NewClient(
		apiDoer,
		conf.GithubAPIAddress,
		conf.GithubAPIToken,
	)
	githubCachedClient, err := github.NewCachedClient(
		githubClient,
		conf.GithubClientCacheSize,
	)
	if err != nil {
		l.Fatalf("couldn't create github client cache: %v", err)
	}

	enricher := github.NewEnricher(
		githubCachedClient,
		ratelimit.NewGate(conf.RateLimitMaxWait),
		retry.Policy{
			MaxAttempts: conf.RetryMaxAttempts,
			BaseDelay:   conf.RetryBaseDelay,
			MaxDelay:    conf.RetryMaxDelay,
			Jitter:      0.2,
		},
		conf.EnrichWorkers,
		l.WithField("component", "enricher"),
	)

	service := app.NewService(
		fetcher,
		extractor,
		enricher,
		artifact.NewWriter(conf.OutputPath),
		l.WithField("component", "service"),
	)

	start := time.Now()
	summary, err := service.Run(ctx)
	if err != nil {
		l.Fatalf("run failed: %v", err)
	}

	l.WithFields(logrus.Fields{
		"entries":    summary.Entries,
		"skipped":    summary.Skipped,
		"unresolved": summary.Unresolved,
		"duration":   time.Since(start).Round(time.Millisecond).String(),
	}).Info("catalog written")
}
