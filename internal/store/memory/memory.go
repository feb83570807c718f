// Package memory is an in-memory ProjectStore with brute-force cosine
// search. It backs tests and keyless development runs; searches are exact,
// so the candidate pool option is ignored.
package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"hackmatch/internal/domain"
)

// Store keeps canonical project documents in insertion order.
type Store struct {
	mu        sync.RWMutex
	projects  map[string]*domain.Project
	order     []string
	dimension int
	ready     bool
}

func New() *Store {
	return &Store{projects: map[string]*domain.Project{}}
}

func (s *Store) InsertProject(_ context.Context, p *domain.Project) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := clone(p)
	if cp.ID == "" {
		cp.ID = uuid.NewString()
	}
	if _, ok := s.projects[cp.ID]; ok {
		return "", errors.Errorf("duplicate project id %s", cp.ID)
	}
	s.projects[cp.ID] = cp
	s.order = append(s.order, cp.ID)
	return cp.ID, nil
}

func (s *Store) GetProject(_ context.Context, id string) (*domain.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.projects[id]
	if !ok {
		return nil, errors.Wrap(domain.ErrNotFound, id)
	}
	return clone(p), nil
}

func (s *Store) ListProjectsWithoutEmbedding(_ context.Context, limit int) ([]*domain.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.Project
	for _, id := range s.order {
		if p := s.projects[id]; p.Embedding == nil {
			out = append(out, clone(p))
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (s *Store) ListProjects(_ context.Context, limit int) ([]*domain.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.Project
	for _, id := range s.order {
		out = append(out, clone(s.projects[id]))
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *Store) SetEmbedding(_ context.Context, id string, vector []float32, force bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[id]
	if !ok {
		return false, errors.Wrap(domain.ErrNotFound, id)
	}
	if s.dimension > 0 && len(vector) != s.dimension {
		return false, errors.Errorf("vector has %d dimensions, index wants %d", len(vector), s.dimension)
	}
	if p.Embedding != nil && !force {
		return false, nil
	}
	p.Embedding = append([]float32(nil), vector...)
	return true, nil
}

func (s *Store) EnsureVectorIndex(_ context.Context, opts domain.IndexOptions) error {
	if opts.Dimension <= 0 {
		return errors.Errorf("invalid index dimension: %d", opts.Dimension)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dimension = opts.Dimension
	s.ready = true
	return nil
}

func (s *Store) VectorSearch(_ context.Context, opts domain.SearchOptions) ([]domain.ScoredProject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.ready {
		return nil, domain.ErrIndexNotReady
	}
	if opts.K <= 0 {
		return nil, errors.Errorf("invalid k: %d", opts.K)
	}
	if len(opts.Vector) != s.dimension {
		return nil, errors.Errorf("query vector has %d dimensions, index wants %d", len(opts.Vector), s.dimension)
	}

	var hits []domain.ScoredProject
	for _, id := range s.order {
		p := s.projects[id]
		if p.Embedding == nil {
			continue
		}
		if opts.Partition != "" && p.HackathonTitle != opts.Partition {
			continue
		}
		hits = append(hits, domain.ScoredProject{Project: *clone(p), Score: cosine(opts.Vector, p.Embedding)})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > opts.K {
		hits = hits[:opts.K]
	}
	return hits, nil
}

func (s *Store) Close(context.Context) error { return nil }

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func clone(p *domain.Project) *domain.Project {
	cp := *p
	cp.Features = append([]string(nil), p.Features...)
	if p.Embedding != nil {
		cp.Embedding = append([]float32(nil), p.Embedding...)
	}
	return &cp
}

var _ domain.ProjectStore = (*Store)(nil)
