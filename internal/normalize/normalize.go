// Package normalize merges scraped records and summarizer output into
// canonical project documents and derives the text fed to the embedder.
// Everything here is pure: no network, no storage.
package normalize

import (
	"strings"

	"hackmatch/internal/domain"
)

// Project builds one canonical document from a raw scraped record, an
// optional structured summary and optional hackathon provenance. The raw
// title is kept whenever summarization failed or produced no title, and
// missing provenance fields default to the empty string. The returned
// document never carries an id or an embedding; both belong to the store.
func Project(raw *domain.RawProject, sum *domain.ProjectSummary, hk *domain.Hackathon) *domain.Project {
	p := &domain.Project{}
	if raw != nil {
		p.Title = raw.Title
		p.SourceURL = raw.GithubURL
		p.DevpostURL = raw.URL
	}
	if sum != nil {
		if sum.Title != "" {
			p.Title = sum.Title
		}
		p.Summary = sum.Summary
		p.Features = sum.Features
	}
	if hk != nil {
		p.HackathonTitle = hk.Title
		p.HackathonLocation = hk.Location
		p.HackathonSubmissionDates = hk.SubmissionDates
		p.HackathonOrganization = hk.Organization
	}
	return p
}

// EmbeddingText derives the exact string submitted to the embedder:
// the summary and all features joined by single spaces, trimmed. The
// second return value is false when there is nothing to embed, in which
// case the embedder must not be called and the document is skipped.
func EmbeddingText(summary string, features []string) (string, bool) {
	combined := strings.TrimSpace(summary + " " + strings.Join(features, " "))
	if combined == "" {
		return "", false
	}
	return combined, true
}

// ProjectEmbeddingText applies EmbeddingText to a canonical document.
func ProjectEmbeddingText(p *domain.Project) (string, bool) {
	return EmbeddingText(p.Summary, p.Features)
}
