// Package openai implements the embedder against any OpenAI-compatible
// embeddings endpoint.
package openai

import (
	"context"

	"github.com/pkg/errors"
	openai "github.com/sashabaranov/go-openai"

	"hackmatch/internal/domain"
)

// Config configures the embeddings client. BaseURL may point at any
// OpenAI-compatible provider; the API key comes from the environment,
// never from config files.
type Config struct {
	APIKey    string
	BaseURL   string
	Model     string
	Dimension int
}

// Embedder wraps the external embedding capability behind domain.Embedder.
type Embedder struct {
	client    *openai.Client
	model     string
	dimension int
}

// New creates an embeddings client for the configured provider.
func New(cfg Config) (*Embedder, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("embedding api key is required")
	}
	if cfg.Dimension <= 0 {
		return nil, errors.Errorf("invalid embedding dimension: %d", cfg.Dimension)
	}
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = string(openai.AdaEmbeddingV2)
	}
	return &Embedder{
		client:    openai.NewClientWithConfig(clientConfig),
		model:     model,
		dimension: cfg.Dimension,
	}, nil
}

func (e *Embedder) Name() string { return "openai" }

func (e *Embedder) Dimension() int { return e.dimension }

// Embed generates the vector for a single non-empty text. External-call
// failures come back wrapped in domain.ErrEmbeddingUnavailable so batch
// callers can skip the affected document and continue.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, errors.New("cannot embed empty text")
	}
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(e.model),
	})
	if err != nil {
		return nil, errors.Wrapf(domain.ErrEmbeddingUnavailable, "create embeddings: %v", err)
	}
	if len(resp.Data) == 0 {
		return nil, errors.Wrap(domain.ErrEmbeddingUnavailable, "empty embedding response")
	}
	vector := resp.Data[0].Embedding
	if len(vector) != e.dimension {
		// A mismatched vector must never reach the collection.
		return nil, errors.Errorf("embedder returned %d dimensions, want %d", len(vector), e.dimension)
	}
	return vector, nil
}

var _ domain.Embedder = (*Embedder)(nil)
