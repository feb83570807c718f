// Package service wires the similarity pipeline together: normalization,
// embedding, persistence and nearest-neighbor querying.
package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/pkg/errors"

	"hackmatch/internal/domain"
	"hackmatch/internal/normalize"
)

const defaultCandidateMultiplier = 20

// Service is the application core. All external collaborators are
// injected so tests can swap in doubles.
type Service struct {
	fetcher             domain.Fetcher
	summarizer          domain.Summarizer
	embedder            domain.Embedder
	store               domain.ProjectStore
	candidateMultiplier int
	logger              *slog.Logger
}

// New assembles the pipeline. Fetcher and summarizer may be nil when only
// backfill and query paths are used (for example the TUI explorer).
func New(fetcher domain.Fetcher, summarizer domain.Summarizer, embedder domain.Embedder, store domain.ProjectStore, candidateMultiplier int, logger *slog.Logger) *Service {
	if candidateMultiplier <= 0 {
		candidateMultiplier = defaultCandidateMultiplier
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		fetcher:             fetcher,
		summarizer:          summarizer,
		embedder:            embedder,
		store:               store,
		candidateMultiplier: candidateMultiplier,
		logger:              logger,
	}
}

// EnsureIndex recreates the vector index for the embedder's dimension and
// waits for readiness. It must complete before Backfill or Query are
// issued; callers treat it as a singleton startup step.
func (s *Service) EnsureIndex(ctx context.Context) error {
	return s.store.EnsureVectorIndex(ctx, domain.IndexOptions{
		Dimension:   s.embedder.Dimension(),
		Metric:      "cosine",
		FilterField: "hackathon_title",
	})
}

// Ingest normalizes and stores one scraped project. Summarizer failures
// are tolerated: the document keeps its raw title and gets no summary.
// Embedding is best-effort; on no-text or embedder failure the document
// is left for a later backfill pass. The returned document carries the
// assigned id and, when one was persisted, the embedding.
func (s *Service) Ingest(ctx context.Context, raw *domain.RawProject, hk *domain.Hackathon) (*domain.Project, error) {
	sum := s.summarize(ctx, raw)
	p := normalize.Project(raw, sum, hk)

	id, err := s.store.InsertProject(ctx, p)
	if err != nil {
		return nil, err
	}
	p.ID = id

	text, ok := normalize.ProjectEmbeddingText(p)
	if !ok {
		s.logger.Warn("no embeddable text, skipping embedding", "id", id, "title", p.Title)
		return p, nil
	}
	vector, err := s.embedder.Embed(ctx, text)
	if err != nil {
		s.logger.Warn("embedding failed, leaving document for backfill", "id", id, "error", err)
		return p, nil
	}
	updated, err := s.store.SetEmbedding(ctx, id, vector, false)
	if err != nil {
		return nil, errors.Wrapf(err, "persist embedding for %s", id)
	}
	if updated {
		p.Embedding = vector
	}
	return p, nil
}

// IngestSummary counts the outcome of one gallery ingestion run.
type IngestSummary struct {
	Ingested int
	Embedded int
	Failed   int
}

// IngestHackathon walks a hackathon's project gallery page by page and
// ingests every listed project. Individual project failures are logged
// and counted, never fatal to the run.
func (s *Service) IngestHackathon(ctx context.Context, hk *domain.Hackathon) (IngestSummary, error) {
	var summary IngestSummary
	for page := 1; ; page++ {
		links, err := s.fetcher.FetchGalleryPage(ctx, hk.URL, page)
		if err != nil {
			return summary, errors.Wrapf(err, "gallery page %d", page)
		}
		if len(links) == 0 {
			break
		}
		for _, url := range links {
			if err := ctx.Err(); err != nil {
				return summary, err
			}
			raw, err := s.fetcher.FetchProject(ctx, url)
			if err != nil {
				s.logger.Warn("fetch failed", "url", url, "error", err)
				summary.Failed++
				continue
			}
			p, err := s.Ingest(ctx, raw, hk)
			if err != nil {
				s.logger.Warn("ingest failed", "url", url, "error", err)
				summary.Failed++
				continue
			}
			summary.Ingested++
			if p.Embedding != nil {
				summary.Embedded++
			}
		}
	}
	s.logger.Info("gallery ingestion finished", "hackathon", hk.Title,
		"ingested", summary.Ingested, "embedded", summary.Embedded, "failed", summary.Failed)
	return summary, nil
}

// BackfillOptions controls one backfill pass. Force re-embeds every
// document, including those that already carry a vector; it exists for
// the stale-embedding case after summaries were edited.
type BackfillOptions struct {
	Force bool
}

// BackfillSummary counts the outcome of one backfill pass.
type BackfillSummary struct {
	Updated             int `json:"updated"`
	SkippedNoText       int `json:"skipped_no_text"`
	SkippedEmbedFailure int `json:"skipped_embed_failure"`
}

// Backfill embeds every document still lacking a vector. It is
// idempotent: a second pass with no new documents performs zero updates.
// Per-document failures are counted and skipped, never fatal; the commit
// is the store's conditional set-if-absent, so a concurrent pass cannot
// persist a duplicate vector (duplicate embedder calls remain possible).
func (s *Service) Backfill(ctx context.Context, opts BackfillOptions) (BackfillSummary, error) {
	var summary BackfillSummary
	var docs []*domain.Project
	var err error
	if opts.Force {
		docs, err = s.store.ListProjects(ctx, 0)
	} else {
		docs, err = s.store.ListProjectsWithoutEmbedding(ctx, 0)
	}
	if err != nil {
		return summary, err
	}

	for _, p := range docs {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		text, ok := normalize.ProjectEmbeddingText(p)
		if !ok {
			summary.SkippedNoText++
			s.logger.Warn("skipping document without embeddable text", "id", p.ID, "title", p.Title)
			continue
		}
		vector, err := s.embedder.Embed(ctx, text)
		if err != nil {
			summary.SkippedEmbedFailure++
			s.logger.Warn("embedding failed, skipping document", "id", p.ID, "error", err)
			continue
		}
		updated, err := s.store.SetEmbedding(ctx, p.ID, vector, opts.Force)
		if err != nil {
			summary.SkippedEmbedFailure++
			s.logger.Warn("persisting embedding failed, skipping document", "id", p.ID, "error", err)
			continue
		}
		if updated {
			summary.Updated++
			s.logger.Info("added embedding", "id", p.ID, "title", p.Title)
		} else {
			// Lost the race against a concurrent pass; nothing to do.
			s.logger.Info("embedding already present, not overwritten", "id", p.ID)
		}
	}
	s.logger.Info("backfill finished", "updated", summary.Updated,
		"skipped_no_text", summary.SkippedNoText, "skipped_embed_failure", summary.SkippedEmbedFailure)
	return summary, nil
}

// Query embeds free text and returns the top-k most similar documents,
// optionally restricted to one hackathon. An embedder failure fails the
// whole operation; there are no partial results.
func (s *Service) Query(ctx context.Context, text string, k int, partition string) ([]domain.ScoredProject, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrNoEmbeddableText
	}
	if k <= 0 {
		return nil, errors.Errorf("invalid k: %d", k)
	}
	vector, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	return s.store.VectorSearch(ctx, domain.SearchOptions{
		Vector:        vector,
		K:             k,
		Partition:     partition,
		NumCandidates: k * s.candidateMultiplier,
	})
}

// Analyze fetches and summarizes one project URL, then returns the most
// similar stored projects. The analyzed project itself is not persisted.
func (s *Service) Analyze(ctx context.Context, url string, k int) ([]domain.ScoredProject, error) {
	raw, err := s.fetcher.FetchProject(ctx, url)
	if err != nil {
		return nil, err
	}
	p := normalize.Project(raw, s.summarize(ctx, raw), nil)
	text, ok := normalize.ProjectEmbeddingText(p)
	if !ok {
		return nil, errors.Wrapf(domain.ErrNoEmbeddableText, "project %q", p.Title)
	}
	return s.Query(ctx, text, k, "")
}

// summarize runs the summarizer when one is configured, degrading to raw
// fields on any failure.
func (s *Service) summarize(ctx context.Context, raw *domain.RawProject) *domain.ProjectSummary {
	if s.summarizer == nil {
		return nil
	}
	sum, err := s.summarizer.Summarize(ctx, raw)
	if err != nil {
		s.logger.Warn("summarization failed, keeping raw fields", "title", raw.Title, "error", err)
		return nil
	}
	return sum
}
