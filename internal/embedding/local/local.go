// Package local provides a deterministic offline embedder. It hashes text
// into a unit-length vector so development runs and tests need no API key.
// The vectors carry no semantics beyond "same text, same vector".
package local

import (
	"context"
	"hash/fnv"
	"math"

	"github.com/pkg/errors"

	"hackmatch/internal/domain"
)

const defaultDimension = 64

// Embedder produces pseudo-random but stable vectors of a fixed dimension.
type Embedder struct {
	dimension int
}

func New(dimension int) *Embedder {
	if dimension <= 0 {
		dimension = defaultDimension
	}
	return &Embedder{dimension: dimension}
}

func (e *Embedder) Name() string { return "local" }

func (e *Embedder) Dimension() int { return e.dimension }

func (e *Embedder) Embed(_ context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, errors.New("cannot embed empty text")
	}
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	seed := h.Sum64()

	vector := make([]float32, e.dimension)
	var norm float64
	for i := range vector {
		seed = seed*1099511628211 + 1469598103934665603
		v := float64(seed%2003)/1001.5 - 1 // spread into [-1, 1)
		vector[i] = float32(v)
		norm += v * v
	}
	// L2-normalize so cosine scores stay comparable across texts.
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vector {
			vector[i] *= scale
		}
	}
	return vector, nil
}

var _ domain.Embedder = (*Embedder)(nil)
