package memory

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hackmatch/internal/domain"
)

func newReadyStore(t *testing.T, dim int) *Store {
	t.Helper()
	s := New()
	require.NoError(t, s.EnsureVectorIndex(context.Background(), domain.IndexOptions{
		Dimension:   dim,
		Metric:      "cosine",
		FilterField: "hackathon_title",
	}))
	return s
}

func insert(t *testing.T, s *Store, title, hackathon string, vec []float32) string {
	t.Helper()
	ctx := context.Background()
	id, err := s.InsertProject(ctx, &domain.Project{Title: title, HackathonTitle: hackathon})
	require.NoError(t, err)
	if vec != nil {
		ok, err := s.SetEmbedding(ctx, id, vec, false)
		require.NoError(t, err)
		require.True(t, ok)
	}
	return id
}

func TestSearchBeforeEnsureIndex(t *testing.T) {
	s := New()
	_, err := s.VectorSearch(context.Background(), domain.SearchOptions{Vector: []float32{1}, K: 1})
	assert.True(t, errors.Is(err, domain.ErrIndexNotReady))
}

func TestSetEmbedding_ConditionalOnAbsence(t *testing.T) {
	ctx := context.Background()
	s := newReadyStore(t, 2)
	id := insert(t, s, "p", "H1", nil)

	ok, err := s.SetEmbedding(ctx, id, []float32{1, 0}, false)
	require.NoError(t, err)
	assert.True(t, ok)

	// A second conditional set is a no-op; force overwrites.
	ok, err = s.SetEmbedding(ctx, id, []float32{0, 1}, false)
	require.NoError(t, err)
	assert.False(t, ok)

	p, err := s.GetProject(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0}, p.Embedding)

	ok, err = s.SetEmbedding(ctx, id, []float32{0, 1}, true)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSetEmbedding_RejectsDimensionMismatch(t *testing.T) {
	s := newReadyStore(t, 3)
	id := insert(t, s, "p", "H1", nil)

	_, err := s.SetEmbedding(context.Background(), id, []float32{1, 0}, false)
	assert.Error(t, err)
}

func TestVectorSearch_PartitionAndOrdering(t *testing.T) {
	ctx := context.Background()
	s := newReadyStore(t, 2)
	insert(t, s, "close", "H1", []float32{1, 0})
	insert(t, s, "far", "H1", []float32{0, 1})
	insert(t, s, "other", "H2", []float32{1, 0})

	hits, err := s.VectorSearch(ctx, domain.SearchOptions{Vector: []float32{1, 0}, K: 5, Partition: "H1"})
	require.NoError(t, err)

	// k beyond the partition population returns what exists, no padding.
	require.Len(t, hits, 2)
	for _, h := range hits {
		assert.Equal(t, "H1", h.Project.HackathonTitle)
	}
	assert.Equal(t, "close", hits[0].Project.Title)
	assert.GreaterOrEqual(t, hits[0].Score, hits[1].Score)
}

func TestVectorSearch_EmptyCollection(t *testing.T) {
	s := newReadyStore(t, 2)
	hits, err := s.VectorSearch(context.Background(), domain.SearchOptions{Vector: []float32{1, 0}, K: 3})
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestListProjectsWithoutEmbedding(t *testing.T) {
	ctx := context.Background()
	s := newReadyStore(t, 2)
	insert(t, s, "a", "H1", []float32{1, 0})
	insert(t, s, "b", "H1", nil)
	insert(t, s, "c", "H2", nil)

	missing, err := s.ListProjectsWithoutEmbedding(ctx, 0)
	require.NoError(t, err)
	require.Len(t, missing, 2)
	assert.Equal(t, "b", missing[0].Title)
	assert.Equal(t, "c", missing[1].Title)

	limited, err := s.ListProjectsWithoutEmbedding(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestGetProject_NotFound(t *testing.T) {
	s := New()
	_, err := s.GetProject(context.Background(), "nope")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
