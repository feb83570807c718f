package domain

import "context"

// Embedder converts free text into a fixed-dimension vector. The same
// embedder configuration must serve ingestion and querying so stored and
// query vectors share one embedding space.
type Embedder interface {
	Name() string
	Dimension() int
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Summarizer turns a raw scraped project into a structured summary.
type Summarizer interface {
	Summarize(ctx context.Context, raw *RawProject) (*ProjectSummary, error)
}

// Fetcher retrieves project pages from the showcase site.
type Fetcher interface {
	FetchProject(ctx context.Context, url string) (*RawProject, error)
	FetchGalleryPage(ctx context.Context, galleryURL string, page int) ([]string, error)
}

// IndexOptions describes the similarity index over the embedding field.
type IndexOptions struct {
	Dimension   int
	Metric      string // "cosine" unless overridden
	FilterField string // categorical partition field, e.g. hackathon_title
}

// SearchOptions describes one nearest-neighbor query.
type SearchOptions struct {
	Vector []float32
	K      int
	// Partition restricts results to one hackathon title; empty means all.
	Partition string
	// NumCandidates is the approximate-search candidate pool, already
	// multiplied out by the caller. Zero lets the store pick a default.
	NumCandidates int
}

// ProjectStore persists canonical project documents and answers vector
// similarity queries over them.
type ProjectStore interface {
	// InsertProject stores a new document and returns the assigned id.
	InsertProject(ctx context.Context, p *Project) (string, error)

	// GetProject fetches one document by id, ErrNotFound when missing.
	GetProject(ctx context.Context, id string) (*Project, error)

	// ListProjectsWithoutEmbedding returns documents lacking an embedding.
	// A limit of 0 means no limit.
	ListProjectsWithoutEmbedding(ctx context.Context, limit int) ([]*Project, error)

	// ListProjects returns all documents, regardless of embedding state.
	ListProjects(ctx context.Context, limit int) ([]*Project, error)

	// SetEmbedding persists the vector for one document. With force=false
	// the update applies only while the document still lacks an embedding
	// (the atomic commit point for concurrent backfills); it reports
	// whether the document was updated.
	SetEmbedding(ctx context.Context, id string, vector []float32, force bool) (bool, error)

	// EnsureVectorIndex drops any index of the configured name and
	// recreates it, then waits until the backing store reports it ready.
	EnsureVectorIndex(ctx context.Context, opts IndexOptions) error

	// VectorSearch runs an approximate nearest-neighbor query and returns
	// up to K hits ordered by descending similarity score.
	VectorSearch(ctx context.Context, opts SearchOptions) ([]ScoredProject, error)

	Close(ctx context.Context) error
}
