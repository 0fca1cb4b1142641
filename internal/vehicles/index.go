package vehicles

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/matchd/internal/qdrant"
)

// Listing is a vehicle document to be written into the index.
type Listing struct {
	ID      string
	Vector  []float32
	Payload map[string]interface{}
}

// SearchFilter narrows a similarity search with structured constraints.
type SearchFilter struct {
	// PriceBand restricts results to a single price band when set.
	PriceBand string
}

// Index provides vehicle retrieval over a Qdrant collection.
type Index struct {
	client     qdrant.Client
	collection string
	dimension  int
	logger     *zap.Logger
}

// NewIndex wraps a Qdrant client with the vehicle collection settings.
func NewIndex(client qdrant.Client, collection string, dimension int, logger *zap.Logger) (*Index, error) {
	if client == nil {
		return nil, fmt.Errorf("qdrant client is required")
	}
	if collection == "" {
		return nil, fmt.Errorf("collection name is required")
	}
	if dimension <= 0 {
		return nil, fmt.Errorf("invalid vector dimension: %d", dimension)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Index{
		client:     client,
		collection: collection,
		dimension:  dimension,
		logger:     logger,
	}, nil
}

// EnsureCollection creates the vehicle collection if it does not exist.
func (ix *Index) EnsureCollection(ctx context.Context) error {
	exists, err := ix.client.CollectionExists(ctx, ix.collection)
	if err != nil {
		return fmt.Errorf("checking collection: %w", err)
	}
	if exists {
		return nil
	}

	ix.logger.Info("creating vehicle collection",
		zap.String("collection", ix.collection),
		zap.Int("dimension", ix.dimension),
	)
	if err := ix.client.CreateCollection(ctx, ix.collection, uint64(ix.dimension)); err != nil {
		return fmt.Errorf("creating collection: %w", err)
	}
	return nil
}

// Reset drops and recreates the vehicle collection.
func (ix *Index) Reset(ctx context.Context) error {
	exists, err := ix.client.CollectionExists(ctx, ix.collection)
	if err != nil {
		return fmt.Errorf("checking collection: %w", err)
	}
	if exists {
		ix.logger.Info("dropping vehicle collection", zap.String("collection", ix.collection))
		if err := ix.client.DeleteCollection(ctx, ix.collection); err != nil {
			return fmt.Errorf("deleting collection: %w", err)
		}
	}
	if err := ix.client.CreateCollection(ctx, ix.collection, uint64(ix.dimension)); err != nil {
		return fmt.Errorf("creating collection: %w", err)
	}
	return nil
}

// Upsert writes listings into the index.
func (ix *Index) Upsert(ctx context.Context, listings []Listing) error {
	if len(listings) == 0 {
		return nil
	}

	points := make([]*qdrant.Point, 0, len(listings))
	for _, l := range listings {
		if l.ID == "" {
			return fmt.Errorf("listing missing ID")
		}
		if len(l.Vector) != ix.dimension {
			return fmt.Errorf("listing %s: vector dimension %d, want %d", l.ID, len(l.Vector), ix.dimension)
		}
		points = append(points, &qdrant.Point{
			ID:      l.ID,
			Vector:  l.Vector,
			Payload: l.Payload,
		})
	}

	if err := ix.client.Upsert(ctx, ix.collection, points); err != nil {
		return fmt.Errorf("upserting listings: %w", err)
	}
	ix.logger.Debug("upserted listings",
		zap.String("collection", ix.collection),
		zap.Int("count", len(points)),
	)
	return nil
}

// Search returns the listings nearest to the query vector, optionally
// filtered. Results keep Qdrant's similarity ordering.
func (ix *Index) Search(ctx context.Context, vector []float32, limit int, filter *SearchFilter) ([]Candidate, error) {
	if len(vector) == 0 {
		return nil, fmt.Errorf("query vector is empty")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("invalid limit: %d", limit)
	}

	var qf *qdrant.Filter
	if filter != nil && filter.PriceBand != "" {
		qf = &qdrant.Filter{
			Must: []qdrant.Condition{
				{Field: "price_band", Match: filter.PriceBand},
			},
		}
	}

	points, err := ix.client.Search(ctx, ix.collection, vector, uint64(limit), qf)
	if err != nil {
		return nil, fmt.Errorf("searching vehicles: %w", err)
	}

	candidates := make([]Candidate, 0, len(points))
	for _, p := range points {
		candidates = append(candidates, Candidate{
			ID:         p.ID,
			Similarity: p.Score,
			Metadata:   p.Payload,
		})
	}
	return candidates, nil
}

// IndexStats summarizes the vehicle collection.
type IndexStats struct {
	Collection string `json:"collection"`
	Points     uint64 `json:"points"`
	Dimension  int    `json:"dimension"`
}

// Stats reports the collection's point count for introspection.
func (ix *Index) Stats(ctx context.Context) (IndexStats, error) {
	count, err := ix.client.Count(ctx, ix.collection)
	if err != nil {
		return IndexStats{}, fmt.Errorf("counting listings: %w", err)
	}
	return IndexStats{
		Collection: ix.collection,
		Points:     count,
		Dimension:  ix.dimension,
	}, nil
}

// Health reports whether the underlying vector store is reachable.
func (ix *Index) Health(ctx context.Context) error {
	return ix.client.Health(ctx)
}
