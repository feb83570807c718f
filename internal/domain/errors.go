package domain

import "github.com/pkg/errors"

var (
	// ErrEmbeddingUnavailable marks failures of the external embedding
	// capability (network, timeout, quota). Batch callers skip the affected
	// document; single-item callers surface it as a failed result.
	ErrEmbeddingUnavailable = errors.New("embedding unavailable")

	// ErrIndexNotReady is returned when the vector index did not reach the
	// ready state within the configured polling budget.
	ErrIndexNotReady = errors.New("vector index not ready")

	// ErrMalformedSummary marks summarizer output that could not be parsed
	// into the structured project summary shape.
	ErrMalformedSummary = errors.New("malformed summarizer response")

	// ErrNoEmbeddableText is returned by single-item operations when a
	// document carries no summary and no features. In batch contexts the
	// same condition is a counted skip, not an error.
	ErrNoEmbeddableText = errors.New("no embeddable text")

	// ErrNotFound is returned when a document id has no match in the store.
	ErrNotFound = errors.New("project not found")
)
