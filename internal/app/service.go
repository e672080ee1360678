package app

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// Source fetches the raw markdown text of the curated document.
type Source interface {
	Fetch(ctx context.Context) (string, error)
}

// Extractor parses markdown into catalog entries.
// skipped counts list lines dropped because of malformed repository links.
type Extractor interface {
	Extract(doc string) (entries []Entry, skipped int, err error)
}

// Enricher populates star counts. The returned slice has the same length
// and order as the input; unresolved counts entries left with nil stars.
type Enricher interface {
	Enrich(ctx context.Context, entries []Entry) (enriched []Entry, unresolved int, err error)
}

// ArtifactWriter persists the dataset.
type ArtifactWriter interface {
	Write(d Dataset) error
}

// Service runs the whole pipeline: fetch, extract, enrich, serialize.
type Service struct {
	source    Source
	extractor Extractor
	enricher  Enricher
	writer    ArtifactWriter
	now       func() time.Time
	l         logrus.FieldLogger
}

// NewService creates new Service instance.
func NewService(
	source Source,
	extractor Extractor,
	enricher Enricher,
	writer ArtifactWriter,
	l logrus.FieldLogger,
) *Service {
	return &Service{
		source:    source,
		extractor: extractor,
		enricher:  enricher,
		writer:    writer,
		now:       time.Now,
		l:         l,
	}
}

// Run executes one full pipeline pass and writes the artifact.
//
// Persistence is all-or-nothing: the writer is called exactly once, after
// enrichment completes. Fatal errors (failed fetch, zero entries from a
// non-empty document, failed write) abort the run before or instead of the
// write; partial enrichment is a normal outcome.
func (s *Service) Run(ctx context.Context) (Summary, error) {
	var sum Summary

	doc, err := s.source.Fetch(ctx)
	if err != nil {
		return sum, fmt.Errorf("fetching source document: %w", err)
	}

	entries, skipped, err := s.extractor.Extract(doc)
	if err != nil {
		return sum, fmt.Errorf("extracting entries: %w", err)
	}
	if len(entries) == 0 {
		return sum, ParseFailure("no entries extracted from non-empty document")
	}
	sum.Skipped = skipped
	sum.Entries = len(entries)
	if skipped > 0 {
		s.l.Warnf("extractor skipped %d malformed line(s)", skipped)
	}
	s.l.Infof("extracted %d entries", len(entries))

	enriched, unresolved, err := s.enricher.Enrich(ctx, entries)
	if err != nil {
		return sum, fmt.Errorf("enriching entries: %w", err)
	}
	sum.Unresolved = unresolved
	if unresolved > 0 {
		s.l.Warnf("%d entries left unresolved", unresolved)
	}

	if err := ctx.Err(); err != nil {
		return sum, fmt.Errorf("run aborted: %w", err)
	}

	dataset := Dataset{
		GeneratedAt: s.now().UTC(),
		Entries:     enriched,
	}
	if err := s.writer.Write(dataset); err != nil {
		return sum, fmt.Errorf("writing artifact: %w", err)
	}

	return sum, nil
}
