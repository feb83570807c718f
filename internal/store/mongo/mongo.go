// Package mongo implements ProjectStore on MongoDB Atlas, using an Atlas
// Search index of type vectorSearch for nearest-neighbor queries.
package mongo

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"hackmatch/internal/domain"
)

const (
	defaultPollInterval    = 5 * time.Second
	defaultMaxPollAttempts = 60
	defaultCandidateFactor = 20
)

// Config holds connection and index settings for the Atlas-backed store.
type Config struct {
	URI        string
	Database   string
	Collection string
	IndexName  string
	// PollInterval and MaxPollAttempts bound the index readiness wait.
	PollInterval    time.Duration
	MaxPollAttempts int
}

// Store is a ProjectStore over one Atlas collection and one named
// vector search index.
type Store struct {
	client          *mongo.Client
	coll            *mongo.Collection
	indexName       string
	pollInterval    time.Duration
	maxPollAttempts int
	logger          *slog.Logger
}

// New connects to the cluster and pings it before returning.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Store, error) {
	if cfg.URI == "" {
		return nil, errors.New("mongodb uri is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, errors.Wrap(err, "connect to mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, errors.Wrap(err, "ping mongodb")
	}
	pollInterval := cfg.PollInterval
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}
	maxPollAttempts := cfg.MaxPollAttempts
	if maxPollAttempts <= 0 {
		maxPollAttempts = defaultMaxPollAttempts
	}
	return &Store{
		client:          client,
		coll:            client.Database(cfg.Database).Collection(cfg.Collection),
		indexName:       cfg.IndexName,
		pollInterval:    pollInterval,
		maxPollAttempts: maxPollAttempts,
		logger:          logger.With("component", "mongo-store"),
	}, nil
}

func (s *Store) InsertProject(ctx context.Context, p *domain.Project) (string, error) {
	doc := *p
	if doc.ID == "" {
		doc.ID = primitive.NewObjectID().Hex()
	}
	if _, err := s.coll.InsertOne(ctx, &doc); err != nil {
		return "", errors.Wrapf(err, "insert project %q", doc.Title)
	}
	return doc.ID, nil
}

func (s *Store) GetProject(ctx context.Context, id string) (*domain.Project, error) {
	var p domain.Project
	err := s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errors.Wrap(domain.ErrNotFound, id)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get project %s", id)
	}
	return &p, nil
}

func (s *Store) ListProjectsWithoutEmbedding(ctx context.Context, limit int) ([]*domain.Project, error) {
	filter := bson.D{{Key: "embedding", Value: bson.D{{Key: "$exists", Value: false}}}}
	return s.list(ctx, filter, limit)
}

func (s *Store) ListProjects(ctx context.Context, limit int) ([]*domain.Project, error) {
	return s.list(ctx, bson.D{}, limit)
}

func (s *Store) list(ctx context.Context, filter bson.D, limit int) ([]*domain.Project, error) {
	opts := options.Find()
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, errors.Wrap(err, "list projects")
	}
	var out []*domain.Project
	if err := cursor.All(ctx, &out); err != nil {
		return nil, errors.Wrap(err, "decode projects")
	}
	return out, nil
}

// SetEmbedding persists the vector for one document. Without force the
// filter requires the embedding to still be absent, which makes the write
// the atomic commit point between concurrent backfill passes.
func (s *Store) SetEmbedding(ctx context.Context, id string, vector []float32, force bool) (bool, error) {
	filter := bson.D{{Key: "_id", Value: id}}
	if !force {
		filter = append(filter, bson.E{Key: "embedding", Value: bson.D{{Key: "$exists", Value: false}}})
	}
	res, err := s.coll.UpdateOne(ctx, filter, bson.D{
		{Key: "$set", Value: bson.D{{Key: "embedding", Value: vector}}},
	})
	if err != nil {
		return false, errors.Wrapf(err, "set embedding for %s", id)
	}
	return res.ModifiedCount > 0, nil
}

// EnsureVectorIndex drops any index of the configured name and recreates
// it, then polls until Atlas reports it queryable. Recreating on every
// call mirrors the deployment flow where dimension or metric changed; the
// poll is bounded and expiry surfaces as ErrIndexNotReady.
func (s *Store) EnsureVectorIndex(ctx context.Context, opts domain.IndexOptions) error {
	if opts.Dimension <= 0 {
		return errors.Errorf("invalid index dimension: %d", opts.Dimension)
	}
	metric := opts.Metric
	if metric == "" {
		metric = "cosine"
	}
	filterField := opts.FilterField
	if filterField == "" {
		filterField = "hackathon_title"
	}

	exists, _, err := s.indexStatus(ctx)
	if err != nil {
		return err
	}
	if exists {
		s.logger.Info("dropping existing vector index before recreate", "index", s.indexName)
		if err := s.coll.SearchIndexes().DropOne(ctx, s.indexName); err != nil {
			return errors.Wrapf(err, "drop search index %s", s.indexName)
		}
		if err := s.waitForDeletion(ctx); err != nil {
			return err
		}
	}

	definition := bson.D{{Key: "fields", Value: bson.A{
		bson.D{
			{Key: "type", Value: "vector"},
			{Key: "path", Value: "embedding"},
			{Key: "numDimensions", Value: opts.Dimension},
			{Key: "similarity", Value: metric},
		},
		bson.D{
			{Key: "type", Value: "filter"},
			{Key: "path", Value: filterField},
		},
	}}}
	_, err = s.coll.SearchIndexes().CreateOne(ctx, mongo.SearchIndexModel{
		Definition: definition,
		Options:    options.SearchIndexes().SetName(s.indexName).SetType("vectorSearch"),
	})
	if err != nil {
		return errors.Wrapf(err, "create search index %s", s.indexName)
	}

	s.logger.Info("waiting for vector index to become ready",
		"index", s.indexName, "dimension", opts.Dimension, "metric", metric)
	for attempt := 0; attempt < s.maxPollAttempts; attempt++ {
		_, ready, err := s.indexStatus(ctx)
		if err != nil {
			return err
		}
		if ready {
			s.logger.Info("vector index is ready", "index", s.indexName)
			return nil
		}
		if err := sleep(ctx, s.pollInterval); err != nil {
			return err
		}
	}
	return errors.Wrapf(domain.ErrIndexNotReady, "index %s after %d polls", s.indexName, s.maxPollAttempts)
}

func (s *Store) waitForDeletion(ctx context.Context) error {
	for attempt := 0; attempt < s.maxPollAttempts; attempt++ {
		exists, _, err := s.indexStatus(ctx)
		if err != nil {
			return err
		}
		if !exists {
			return nil
		}
		if err := sleep(ctx, s.pollInterval); err != nil {
			return err
		}
	}
	return errors.Wrapf(domain.ErrIndexNotReady, "index %s still present after drop", s.indexName)
}

func (s *Store) indexStatus(ctx context.Context) (exists, ready bool, err error) {
	cursor, err := s.coll.SearchIndexes().List(ctx, options.SearchIndexes().SetName(s.indexName))
	if err != nil {
		return false, false, errors.Wrap(err, "list search indexes")
	}
	var indexes []bson.M
	if err := cursor.All(ctx, &indexes); err != nil {
		return false, false, errors.Wrap(err, "decode search indexes")
	}
	for _, idx := range indexes {
		if idx["name"] != s.indexName {
			continue
		}
		queryable, _ := idx["queryable"].(bool)
		status, _ := idx["status"].(string)
		return true, queryable || status == "READY", nil
	}
	return false, false, nil
}

// VectorSearch runs the $vectorSearch aggregation. The candidate pool
// keeps approximate ranking stable; when the caller did not size it, k
// times the default factor is used.
func (s *Store) VectorSearch(ctx context.Context, opts domain.SearchOptions) ([]domain.ScoredProject, error) {
	if opts.K <= 0 {
		return nil, errors.Errorf("invalid k: %d", opts.K)
	}
	candidates := opts.NumCandidates
	if candidates <= 0 {
		candidates = opts.K * defaultCandidateFactor
	}

	search := bson.D{
		{Key: "index", Value: s.indexName},
		{Key: "path", Value: "embedding"},
		{Key: "queryVector", Value: opts.Vector},
		{Key: "numCandidates", Value: candidates},
		{Key: "limit", Value: opts.K},
	}
	if opts.Partition != "" {
		search = append(search, bson.E{
			Key:   "filter",
			Value: bson.D{{Key: "hackathon_title", Value: opts.Partition}},
		})
	}
	pipeline := mongo.Pipeline{
		{{Key: "$vectorSearch", Value: search}},
		{{Key: "$addFields", Value: bson.D{
			{Key: "score", Value: bson.D{{Key: "$meta", Value: "vectorSearchScore"}}},
		}}},
		{{Key: "$project", Value: bson.D{{Key: "embedding", Value: 0}}}},
	}

	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, errors.Wrap(err, "vector search")
	}
	var docs []scoredDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "decode vector search results")
	}
	out := make([]domain.ScoredProject, 0, len(docs))
	for _, d := range docs {
		out = append(out, domain.ScoredProject{Project: d.Project, Score: d.Score})
	}
	return out, nil
}

type scoredDoc struct {
	domain.Project `bson:",inline"`
	Score          float64 `bson:"score"`
}

func (s *Store) Close(ctx context.Context) error {
	return errors.Wrap(s.client.Disconnect(ctx), "disconnect mongodb")
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

var _ domain.ProjectStore = (*Store)(nil)
